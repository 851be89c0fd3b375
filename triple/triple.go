//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package triple implements an n-party generator of authenticated
// multiplication triples over a prime field and authenticated random
// bits over GF(2^128). The generator runs an OT multiplier against
// every peer, amplifies the raw triples with public random
// combinations, authenticates them with VOLE-based MACs, and verifies
// them by sacrificing one triple for each produced triple.
package triple

import (
	"fmt"

	"github.com/markkurossi/mascot/env"
	"github.com/markkurossi/mascot/field"
)

var (
	// ErrSacrificeCheck is returned when a sacrificed triple or
	// square tuple does not satisfy its algebraic relation.
	ErrSacrificeCheck = fmt.Errorf("%w: sacrifice check failed",
		env.ErrSecurity)

	// ErrInsufficientMaterial is returned when more triples or bits
	// are requested than are available.
	ErrInsufficientMaterial = env.ErrInsufficientMaterial
)

// Share is a party's additive share of a value with its share of the
// value's MAC.
type Share[E any] struct {
	Value E
	MAC   E
}

// Triple is a party's share of an authenticated triple (a, b, c)
// where c = a·b.
type Triple[E any] struct {
	A Share[E]
	B Share[E]
	C Share[E]
}

// Scale returns k·s.
func Scale[E any](f field.Field[E], s Share[E], k E) Share[E] {
	return Share[E]{
		Value: f.Mul(k, s.Value),
		MAC:   f.Mul(k, s.MAC),
	}
}

// Add returns a + b.
func Add[E any](f field.Field[E], a, b Share[E]) Share[E] {
	return Share[E]{
		Value: f.Add(a.Value, b.Value),
		MAC:   f.Add(a.MAC, b.MAC),
	}
}

// Sub returns a − b.
func Sub[E any](f field.Field[E], a, b Share[E]) Share[E] {
	return Share[E]{
		Value: f.Sub(a.Value, b.Value),
		MAC:   f.Sub(a.MAC, b.MAC),
	}
}

func values[E any](shares []Share[E]) []E {
	result := make([]E, len(shares))
	for i, s := range shares {
		result[i] = s.Value
	}
	return result
}

func macs[E any](shares []Share[E]) []E {
	result := make([]E, len(shares))
	for i, s := range shares {
		result[i] = s.MAC
	}
	return result
}
