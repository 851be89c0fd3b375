//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triple

import (
	"context"
	"fmt"
	"time"

	"github.com/cronokirby/saferith"

	"github.com/markkurossi/mascot/coin"
	"github.com/markkurossi/mascot/maccheck"
)

type round struct {
	n          int
	b          []*saferith.Nat
	a          [][]*saferith.Nat
	c          [][]*saferith.Nat
	triples    []Triple[*saferith.Nat]
	sacrificed []Triple[*saferith.Nat]
}

// Run produces NumTriples authenticated triples into out. It returns
// the number of triples emitted. Triples are emitted only after their
// round has passed all checks.
func (g *Generator) Run(ctx context.Context, out Sink[*saferith.Nat]) (
	int, error) {

	count, err := g.run(ctx, out)
	if err != nil {
		return count, g.fail(err)
	}
	return count, nil
}

func (g *Generator) run(ctx context.Context, out Sink[*saferith.Nat]) (
	int, error) {

	var r *round
	var count int
	total := g.config.NumTriples

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
			r, err = g.expand(ctx, min(g.config.BatchSize, total-count))
			next = StateCorrelate

		case StateCorrelate:
			_, err = barrier(ctx, g, func(p *peer) (bool, error) {
				return true, p.mult.Correlate(r.a)
			})
			next = StateReduce

		case StateReduce:
			err = g.reduce(ctx, r)
			next = StateAmplify

		case StateAmplify:
			err = g.amplify(r)
			next = StateAuthenticate

		case StateAuthenticate:
			err = g.authenticateRound(ctx, r)
			next = StateSacrifice

		case StateSacrifice:
			err = g.sacrifice(r)
			next = StateEmit

		case StateEmit:
			for _, t := range r.triples {
				if err = out.WriteTriple(t); err != nil {
					break
				}
				count++
			}
			g.log.Debug().Int("triples", r.n).Int("total", count).
				Msg("emitted")
			next = StateExpand
			if count >= total {
				next = StateDone
			}

		default:
			err = fmt.Errorf("invalid state %v", state)
		}
		if err != nil {
			return count, fmt.Errorf("%v: %w", state, err)
		}
		g.sample(state, start, before)
		g.setState(next)
	}
	g.log.Info().Int("triples", count).Msg("done")
	return count, nil
}

func (g *Generator) expand(ctx context.Context, n int) (*round, error) {
	width := 2 * g.config.Amplification

	r := &round{
		n: n,
		a: make([][]*saferith.Nat, n),
	}
	var err error
	r.b, err = g.randomElements(n)
	if err != nil {
		return nil, err
	}
	for k := range r.a {
		r.a[k], err = g.randomElements(width)
		if err != nil {
			return nil, err
		}
	}
	_, err = barrier(ctx, g, func(p *peer) (bool, error) {
		return true, p.mult.Expand(r.b, width)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// reduce combines the peers' cross product shares with the local
// products into the raw triples c = a·b.
func (g *Generator) reduce(ctx context.Context, r *round) error {
	cross, err := barrier(ctx, g, func(p *peer) ([][]*saferith.Nat, error) {
		return p.mult.ReduceSquares(), nil
	})
	if err != nil {
		return err
	}
	f := g.fp
	r.c = make([][]*saferith.Nat, r.n)
	for k := range r.c {
		r.c[k] = make([]*saferith.Nat, len(r.a[k]))
		for t := range r.c[k] {
			c := f.Mul(r.a[k][t], r.b[k])
			for _, pc := range cross {
				if pc != nil {
					c = f.Add(c, pc[k][t])
				}
			}
			r.c[k][t] = c
		}
	}
	return nil
}

// amplify combines the raw triples of each b with public random
// coefficients. The first half of the raw triples gives the output
// triple and the second half its sacrificed companion.
func (g *Generator) amplify(r *round) error {
	seed, err := coin.Toss(g.nw, g.rand)
	if err != nil {
		return err
	}
	f := g.fp
	tau := g.config.Amplification
	width := 2 * tau
	coeffs := coin.Elements(f, seed.PRG("amplify"), r.n*width)

	r.triples = make([]Triple[*saferith.Nat], r.n)
	r.sacrificed = make([]Triple[*saferith.Nat], r.n)

	for k := 0; k < r.n; k++ {
		a, c := f.Zero(), f.Zero()
		ah, ch := f.Zero(), f.Zero()
		for t := 0; t < tau; t++ {
			rt := coeffs[k*width+t]
			rh := coeffs[k*width+tau+t]

			a = f.Add(a, f.Mul(rt, r.a[k][t]))
			c = f.Add(c, f.Mul(rt, r.c[k][t]))
			ah = f.Add(ah, f.Mul(rh, r.a[k][tau+t]))
			ch = f.Add(ch, f.Mul(rh, r.c[k][tau+t]))
		}
		r.triples[k] = Triple[*saferith.Nat]{
			A: Share[*saferith.Nat]{Value: a},
			B: Share[*saferith.Nat]{Value: r.b[k]},
			C: Share[*saferith.Nat]{Value: c},
		}
		r.sacrificed[k] = Triple[*saferith.Nat]{
			A: Share[*saferith.Nat]{Value: ah},
			B: Share[*saferith.Nat]{Value: r.b[k]},
			C: Share[*saferith.Nat]{Value: ch},
		}
	}
	r.a = nil
	r.c = nil
	return nil
}

func (g *Generator) authenticateRound(ctx context.Context, r *round) error {
	n := r.n
	x := make([]*saferith.Nat, 0, 5*n)
	for _, t := range r.triples {
		x = append(x, t.A.Value)
	}
	for _, t := range r.triples {
		x = append(x, t.B.Value)
	}
	for _, t := range r.triples {
		x = append(x, t.C.Value)
	}
	for _, t := range r.sacrificed {
		x = append(x, t.A.Value)
	}
	for _, t := range r.sacrificed {
		x = append(x, t.C.Value)
	}
	shares, err := authenticate(ctx, g, g.fp, g.alpha, x,
		func(p *peer) *Authenticator[*saferith.Nat] {
			return p.auth
		})
	if err != nil {
		return err
	}
	for k := 0; k < n; k++ {
		r.triples[k].A = shares[k]
		r.triples[k].B = shares[n+k]
		r.triples[k].C = shares[2*n+k]
		r.sacrificed[k].A = shares[3*n+k]
		r.sacrificed[k].B = shares[n+k]
		r.sacrificed[k].C = shares[4*n+k]
	}
	if g.Hooks.Authenticated != nil {
		g.Hooks.Authenticated(r.triples, r.sacrificed)
	}
	return nil
}

// sacrifice verifies each triple (a, b, c) with its companion (â, b,
// ĉ). With a public random s, the parties open ρ = s·a − â and
// σ = s·c − ĉ − ρ·b and check that σ is zero. Finally the MACs of all
// opened values are checked.
func (g *Generator) sacrifice(r *round) error {
	f := g.fp
	checker := maccheck.New(f, g.nw, g.rand, g.config.PartyID, g.alpha)

	seed, err := coin.Toss(g.nw, g.rand)
	if err != nil {
		return err
	}
	s := coin.Elements(f, seed.PRG("sacrifice"), r.n)

	rho := make([]Share[*saferith.Nat], r.n)
	for k, t := range r.triples {
		rho[k] = Sub(f, Scale(f, t.A, s[k]), r.sacrificed[k].A)
	}
	rhoV, err := checker.Open(values(rho), macs(rho))
	if err != nil {
		return err
	}

	sigma := make([]Share[*saferith.Nat], r.n)
	for k, t := range r.triples {
		sigma[k] = Sub(f, Sub(f, Scale(f, t.C, s[k]), r.sacrificed[k].C),
			Scale(f, t.B, rhoV[k]))
	}
	sigmaV, err := checker.Open(values(sigma), macs(sigma))
	if err != nil {
		return err
	}
	for k, v := range sigmaV {
		if !f.Equal(v, f.Zero()) {
			return fmt.Errorf("%w: triple %d", ErrSacrificeCheck, k)
		}
	}
	return checker.Check()
}
