//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"errors"
)

var (
	// ErrSecurity is wrapped by all errors indicating a cheating peer:
	// failed correlation checks, failed sacrifice checks, failed MAC
	// checks, and invalid commitment openings.
	ErrSecurity = errors.New("security violation")

	// ErrConfig is wrapped by configuration errors, including
	// configuration mismatches between parties.
	ErrConfig = errors.New("configuration error")

	// ErrInsufficientMaterial is returned when more preprocessed
	// material is requested than is available. It is recoverable by
	// producing more material.
	ErrInsufficientMaterial = errors.New("insufficient preprocessed material")
)

// ErrorKind classifies errors.
type ErrorKind int

// Error kinds.
const (
	KindNone ErrorKind = iota
	KindTransport
	KindSecurity
	KindResource
	KindConfig
)

var kindNames = map[ErrorKind]string{
	KindNone:      "none",
	KindTransport: "transport",
	KindSecurity:  "security",
	KindResource:  "resource",
	KindConfig:    "config",
}

func (k ErrorKind) String() string {
	return kindNames[k]
}

// Classify returns the kind of the error. Errors not wrapping any of
// the sentinel errors are transport errors.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSecurity):
		return KindSecurity
	case errors.Is(err, ErrInsufficientMaterial):
		return KindResource
	case errors.Is(err, ErrConfig):
		return KindConfig
	default:
		return KindTransport
	}
}
