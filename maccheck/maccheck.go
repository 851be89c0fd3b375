//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package maccheck implements opening of authenticated shares and the
// batched MAC check. Each party holds an additive share x_i of a
// value x and a share m_i of its MAC α·x where α = Σ α_i is the
// global MAC key.
package maccheck

import (
	"fmt"
	"io"

	"github.com/markkurossi/mascot/coin"
	"github.com/markkurossi/mascot/env"
	"github.com/markkurossi/mascot/field"
)

// ErrMACCheck is returned when opened values fail the MAC check.
var ErrMACCheck = fmt.Errorf("%w: MAC check failed", env.ErrSecurity)

// Checker opens shared values and checks their MACs in batches.
type Checker[E any] struct {
	f      field.Field[E]
	ex     coin.Exchanger
	rand   io.Reader
	id     int
	alpha  E
	values []E
	macs   []E
}

// New creates a new checker for the party id with the MAC key share
// alpha.
func New[E any](f field.Field[E], ex coin.Exchanger, rand io.Reader,
	id int, alpha E) *Checker[E] {

	return &Checker[E]{
		f:     f,
		ex:    ex,
		rand:  rand,
		id:    id,
		alpha: alpha,
	}
}

// Pending returns the number of opened values not yet checked.
func (c *Checker[E]) Pending() int {
	return len(c.values)
}

// Open opens the shared values. The opened values and the MAC shares
// are recorded for the next Check.
func (c *Checker[E]) Open(shares, macs []E) ([]E, error) {
	if len(shares) != len(macs) {
		return nil, fmt.Errorf("maccheck: %d shares with %d MACs",
			len(shares), len(macs))
	}
	values, err := OpenUnchecked(c.f, c.ex, shares)
	if err != nil {
		return nil, err
	}
	c.values = append(c.values, values...)
	c.macs = append(c.macs, macs...)
	return values, nil
}

// OpenUnchecked opens the shared values without recording them for
// MAC checking.
func OpenUnchecked[E any](f field.Field[E], ex coin.Exchanger,
	shares []E) ([]E, error) {

	all, err := ex.ExchangeAll(field.PackAll(f, shares))
	if err != nil {
		return nil, err
	}
	values := make([]E, len(shares))
	for i := range values {
		values[i] = f.Zero()
	}
	for party, data := range all {
		s, err := field.UnpackAll(f, data, len(shares))
		if err != nil {
			return nil, fmt.Errorf("maccheck: party %d: %w", party, err)
		}
		for i := range values {
			values[i] = f.Add(values[i], s[i])
		}
	}
	return values, nil
}

// Check verifies the MACs of all values opened since the previous
// Check. The values are combined with coin-tossed coefficients and
// each party commits to its share σ_i = m_i − α_i·y of the combined
// MAC difference. The check passes if the σ_i sum to zero.
func (c *Checker[E]) Check() error {
	defer func() {
		c.values = nil
		c.macs = nil
	}()
	if len(c.values) == 0 {
		return nil
	}
	seed, err := coin.Toss(c.ex, c.rand)
	if err != nil {
		return err
	}
	r := coin.Elements(c.f, seed.PRG("maccheck"), len(c.values))

	y := field.Dot(c.f, c.values, r)
	m := field.Dot(c.f, c.macs, r)
	sigma := c.f.Sub(m, c.f.Mul(c.alpha, y))

	buf := make([]byte, c.f.Size())
	c.f.Pack(buf, sigma)
	all, err := coin.CommitAndOpen(c.ex, "maccheck sigma", buf, c.rand)
	if err != nil {
		return err
	}
	sum := c.f.Zero()
	for party, data := range all {
		if len(data) != c.f.Size() {
			return fmt.Errorf("%w: party %d: invalid share", ErrMACCheck, party)
		}
		s, err := c.f.Unpack(data)
		if err != nil {
			return fmt.Errorf("%w: party %d: %v", ErrMACCheck, party, err)
		}
		sum = c.f.Add(sum, s)
	}
	if !c.f.Equal(sum, c.f.Zero()) {
		return ErrMACCheck
	}
	return nil
}

// AddConstant adds the public constant k to the shared value with the
// share and MAC share of the party id. Party 0 adds k to its share and
// every party adds α_i·k to its MAC share.
func AddConstant[E any](f field.Field[E], id int, alpha, share, mac,
	k E) (E, E) {

	if id == 0 {
		share = f.Add(share, k)
	}
	return share, f.Add(mac, f.Mul(alpha, k))
}
