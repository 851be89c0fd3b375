//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package otext implements the IKNP oblivious transfer extension
// with the KOS correlation check. The extension turns K base OTs into
// any number of correlated or random OTs.
package otext

import (
	"fmt"

	"github.com/markkurossi/mascot/env"
)

const (
	// K defines the security parameter k of the IKNP protocol. It is
	// the number of base OTs.
	K = 128

	// Padding is the number of extra OTs extended for the
	// correlation check.
	Padding = 256
)

// ErrCorrelationCheck is returned when the peer's extension
// messages fail the correlation check.
var ErrCorrelationCheck = fmt.Errorf("%w: OT extension correlation check failed",
	env.ErrSecurity)

// Options define the extension options.
type Options struct {
	// Passive disables the correlation check.
	Passive bool
}

// extendedLength returns the number of OTs to extend for n output
// OTs: n plus the check padding rounded up to a multiple of K.
func extendedLength(n int) int {
	return (n + Padding + K - 1) / K * K
}
