//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triple

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/mascot/coin"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/maccheck"
)

type bitRound struct {
	n  int
	x  []Share[field.Block]
	a  []Share[field.Block]
	a2 []Share[field.Block]
	b  []Share[field.Block]
	b2 []Share[field.Block]
}

// GenerateBits produces NumBits authenticated random bits over
// GF(2^128) into out. It returns the number of bits emitted.
//
// Each party contributes a random bit so the shared value x is a bit
// for honest parties. The bits are verified with square tuples
// (a, a²): a party samples its share of a² and takes the square root
// locally since squaring is linear in characteristic 2. A bit x
// satisfies x + x² = 0, which is checked as x + a² + (x + a)² = 0.
func (g *Generator) GenerateBits(ctx context.Context,
	out BitSink[field.Block]) (int, error) {

	count, err := g.generateBits(ctx, out)
	if err != nil {
		return count, g.fail(err)
	}
	return count, nil
}

func (g *Generator) generateBits(ctx context.Context,
	out BitSink[field.Block]) (int, error) {

	var r *bitRound
	var count int
	total := g.config.NumBits

	g.state = StateInit
	for g.state != StateDone {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		state := g.state
		start := time.Now()
		before := g.nw.Stats().Sum()

		var next State
		var err error

		switch state {
		case StateInit:
			err = g.Init(ctx)
			next = StateExpand
			if total == 0 {
				next = StateDone
			}

		case StateExpand:
			r, err = g.sampleBits(min(g.config.BatchSize, total-count))
			next = StateAuthenticate

		case StateAuthenticate:
			err = g.authenticateBits(ctx, r)
			next = StateSacrifice

		case StateSacrifice:
			err = g.sacrificeBits(r)
			next = StateEmit

		case StateEmit:
			for _, x := range r.x {
				if err = out.WriteBit(x); err != nil {
					break
				}
				count++
			}
			g.log.Debug().Int("bits", r.n).Int("total", count).Msg("emitted")
			next = StateExpand
			if count >= total {
				next = StateDone
			}

		default:
			err = fmt.Errorf("invalid state %v", state)
		}
		if err != nil {
			return count, fmt.Errorf("bits: %v: %w", state, err)
		}
		g.sample(state, start, before)
		g.setState(next)
	}
	g.log.Info().Int("bits", count).Msg("done")
	return count, nil
}

func (g *Generator) sampleBits(n int) (*bitRound, error) {
	r := &bitRound{
		n:  n,
		x:  make([]Share[field.Block], n),
		a:  make([]Share[field.Block], n),
		a2: make([]Share[field.Block], n),
		b:  make([]Share[field.Block], n),
		b2: make([]Share[field.Block], n),
	}
	var buf [1]byte
	for k := 0; k < n; k++ {
		if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
			return nil, err
		}
		r.x[k].Value = field.Block{
			Lo: uint64(buf[0] & 1),
		}
		if err := g.squareTuple(&r.a[k], &r.a2[k]); err != nil {
			return nil, err
		}
		if err := g.squareTuple(&r.b[k], &r.b2[k]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (g *Generator) squareTuple(a, a2 *Share[field.Block]) error {
	s, err := g.gf.Random(g.rand)
	if err != nil {
		return err
	}
	a.Value = g.gf.Sqrt(s)
	a2.Value = s
	return nil
}

func (g *Generator) authenticateBits(ctx context.Context, r *bitRound) error {
	n := r.n
	x := make([]field.Block, 0, 5*n)
	for _, v := range [][]Share[field.Block]{r.x, r.a, r.a2, r.b, r.b2} {
		x = append(x, values(v)...)
	}
	if g.Hooks.Bits != nil {
		g.Hooks.Bits(x[:n])
	}
	shares, err := authenticate(ctx, g, g.fb, g.alpha2, x,
		func(p *peer) *Authenticator[field.Block] {
			return p.bitAuth
		})
	if err != nil {
		return err
	}
	copy(r.x, shares[:n])
	copy(r.a, shares[n:2*n])
	copy(r.a2, shares[2*n:3*n])
	copy(r.b, shares[3*n:4*n])
	copy(r.b2, shares[4*n:])
	return nil
}

// sacrificeBits opens ρ = t·a + b and ε = x + a, and checks that
// σ = t²·a² + b² + ρ² and ζ = x + a² + ε² are zero.
func (g *Generator) sacrificeBits(r *bitRound) error {
	f := g.fb
	id := g.config.PartyID
	checker := maccheck.New(f, g.nw, g.rand, id, g.alpha2)

	seed, err := coin.Toss(g.nw, g.rand)
	if err != nil {
		return err
	}
	t := coin.Elements(f, seed.PRG("bits"), r.n)

	open := make([]Share[field.Block], 2*r.n)
	for k := 0; k < r.n; k++ {
		open[k] = Add(f, Scale(f, r.a[k], t[k]), r.b[k])
		open[r.n+k] = Add(f, r.x[k], r.a[k])
	}
	opened, err := checker.Open(values(open), macs(open))
	if err != nil {
		return err
	}

	for k := 0; k < r.n; k++ {
		rho := opened[k]
		eps := opened[r.n+k]

		sigma := Add(f, Scale(f, r.a2[k], g.gf.Square(t[k])), r.b2[k])
		sigma.Value, sigma.MAC = maccheck.AddConstant(f, id, g.alpha2,
			sigma.Value, sigma.MAC, g.gf.Square(rho))
		open[k] = sigma

		zeta := Add(f, r.x[k], r.a2[k])
		zeta.Value, zeta.MAC = maccheck.AddConstant(f, id, g.alpha2,
			zeta.Value, zeta.MAC, g.gf.Square(eps))
		open[r.n+k] = zeta
	}
	opened, err = checker.Open(values(open), macs(open))
	if err != nil {
		return err
	}
	for k, v := range opened {
		if !f.Equal(v, f.Zero()) {
			if k < r.n {
				return fmt.Errorf("%w: square tuple %d", ErrSacrificeCheck, k)
			}
			return fmt.Errorf("%w: bit %d", ErrSacrificeCheck, k-r.n)
		}
	}
	return checker.Check()
}
