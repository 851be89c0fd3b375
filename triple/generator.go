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
	"sync"
	"time"

	"github.com/cronokirby/saferith"
	"github.com/google/uuid"
	"github.com/markkurossi/text/superscript"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/env"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
	"github.com/markkurossi/mascot/otext"
	"github.com/markkurossi/mascot/p2p"
	"github.com/markkurossi/mascot/vole"
)

// State defines the generator states.
type State int

// Generator states.
const (
	StateInit State = iota
	StateExpand
	StateCorrelate
	StateReduce
	StateAmplify
	StateAuthenticate
	StateSacrifice
	StateEmit
	StateDone
)

var stateNames = map[State]string{
	StateInit:         "Init",
	StateExpand:       "Expand",
	StateCorrelate:    "Correlate",
	StateReduce:       "Reduce",
	StateAmplify:      "Amplify",
	StateAuthenticate: "Authenticate",
	StateSacrifice:    "Sacrifice",
	StateEmit:         "Emit",
	StateDone:         "Done",
}

func (s State) String() string {
	name, ok := stateNames[s]
	if ok {
		return name
	}
	return fmt.Sprintf("{State %d}", int(s))
}

// Hooks define fault injection points for tests.
type Hooks struct {
	// Tamper is called with the OT extension sender matrix of each
	// peer before it is transposed.
	Tamper func(peer int, m *bitmat.BitMatrix)

	// Authenticated is called with the authenticated triples and
	// their sacrificed companions before the sacrifice.
	Authenticated func(triples, sacrificed []Triple[*saferith.Nat])

	// Bits is called with the local bit shares before they are
	// authenticated.
	Bits func(x []field.Block)
}

type peer struct {
	id      int
	conn    *p2p.Conn
	first   bool
	mult    *Multiplier[*saferith.Nat]
	auth    *Authenticator[*saferith.Nat]
	bitAuth *Authenticator[field.Block]
}

// Generator implements the n-party triple generator. It produces
// authenticated triples over the prime field with Run and
// authenticated bits over GF(2^128) with GenerateBits.
type Generator struct {
	Hooks  Hooks
	Timing *Timing

	config  *env.Config
	nw      *p2p.Network
	rand    io.Reader
	log     zerolog.Logger
	session uuid.UUID
	prime   *field.Prime
	fp      field.Field[*saferith.Nat]
	gf      *field.GF2n
	fb      field.Field[field.Block]
	alpha   *saferith.Nat
	alpha2  field.Block
	peers   []*peer
	state   State
	ready   bool
	abort   sync.Once
}

// NewGenerator creates a new generator for the configuration over the
// network.
func NewGenerator(config *env.Config, nw *p2p.Network) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if nw.ID != config.PartyID || nw.NumParties() != config.NumParties {
		return nil, fmt.Errorf("%w: network P%d/%d does not match P%d/%d",
			env.ErrConfig, nw.ID, nw.NumParties(),
			config.PartyID, config.NumParties)
	}
	prime, err := field.NewPrime(config.Modulus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", env.ErrConfig, err)
	}
	gf := field.NewGF2n()

	return &Generator{
		Timing: NewTiming(),
		config: config,
		nw:     nw,
		rand:   config.GetRandom(),
		log: config.Log.With().
			Str("party", "P"+superscript.Itoa(config.PartyID)).Logger(),
		prime: prime,
		fp:    prime,
		gf:    gf,
		fb:    gf,
		peers: make([]*peer, config.NumParties),
	}, nil
}

// State returns the current generator state.
func (g *Generator) State() State {
	return g.state
}

// Session returns the session ID. It is valid after Init.
func (g *Generator) Session() uuid.UUID {
	return g.session
}

// MACKey returns the local share of the prime field MAC key.
func (g *Generator) MACKey() *saferith.Nat {
	return g.alpha
}

// BitMACKey returns the local share of the GF(2^128) MAC key.
func (g *Generator) BitMACKey() field.Block {
	return g.alpha2
}

// Config returns the generator configuration.
func (g *Generator) Config() *env.Config {
	return g.config
}

// Field returns the prime field of the triples.
func (g *Generator) Field() *field.Prime {
	return g.prime
}

func (g *Generator) setState(state State) {
	g.log.Debug().Stringer("from", g.state).Stringer("to", state).
		Msg("state")
	g.state = state
}

func (g *Generator) fail(err error) error {
	kind := env.Classify(err)
	ev := g.log.Error()
	if kind == env.KindSecurity {
		ev = g.log.Error().Bool("cheating", true)
	}
	ev.Stringer("kind", kind).Stringer("state", g.state).Err(err).
		Msg("generation failed")
	return err
}

// abortOthers aborts the connections of all peers except failed so
// that workers blocked on them return.
func (g *Generator) abortOthers(failed int) {
	g.abort.Do(func() {
		for _, p := range g.peers {
			if p != nil && p.id != failed {
				p.conn.Abort()
			}
		}
	})
}

// barrier runs fn for all peers in ascending peer order with at most
// NumThreads concurrent workers and waits for all of them to
// complete. Each worker's result is returned at its peer's index.
func barrier[T any](ctx context.Context, g *Generator,
	fn func(p *peer) (T, error)) ([]T, error) {

	type result struct {
		peer  int
		value T
	}
	ch := make(chan result, len(g.peers))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.GetNumThreads())
	for _, p := range g.peers {
		if p == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			v, err := fn(p)
			if err != nil {
				g.abortOthers(p.id)
				return fmt.Errorf("peer %d: %w", p.id, err)
			}
			ch <- result{
				peer:  p.id,
				value: v,
			}
			return nil
		})
	}
	err := eg.Wait()
	close(ch)
	if err != nil {
		return nil, err
	}
	values := make([]T, len(g.peers))
	for r := range ch {
		values[r.peer] = r.value
	}
	return values, nil
}

// Init runs the configuration handshake, samples the MAC key shares,
// and runs the base OTs with all peers. It is called automatically
// by Run and GenerateBits.
func (g *Generator) Init(ctx context.Context) error {
	if g.ready {
		return nil
	}
	if err := g.handshake(); err != nil {
		return err
	}
	var err error
	g.alpha, err = g.prime.Random(g.rand)
	if err != nil {
		return err
	}
	g.alpha2, err = g.gf.Random(g.rand)
	if err != nil {
		return err
	}
	for id, conn := range g.nw.Peers {
		if conn == nil {
			continue
		}
		g.peers[id] = &peer{
			id:    id,
			conn:  conn,
			first: g.config.PartyID < id,
		}
	}
	_, err = barrier(ctx, g, func(p *peer) (bool, error) {
		return true, g.setupPeer(p)
	})
	if err != nil {
		return err
	}
	g.ready = true
	return nil
}

func (g *Generator) handshake() error {
	msg := env.Hello{
		Params: g.config.Params(),
	}
	if g.config.PartyID == 0 {
		id := uuid.New()
		msg.Session = id[:]
	}
	data, err := msg.Marshal()
	if err != nil {
		return err
	}
	all, err := g.nw.ExchangeAll(data)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	for id, d := range all {
		peerMsg, err := env.UnmarshalHello(d)
		if err != nil {
			return fmt.Errorf("P%d: %w", id, err)
		}
		if err := msg.Params.Match(peerMsg.Params); err != nil {
			return fmt.Errorf("P%d: %w", id, err)
		}
		if id == 0 {
			g.session, err = uuid.FromBytes(peerMsg.Session)
			if err != nil {
				return fmt.Errorf("%w: invalid session: %v", env.ErrConfig, err)
			}
		}
	}
	g.log = g.log.With().Str("session", g.session.String()).Logger()
	g.log.Info().Int("parties", g.config.NumParties).
		Bool("passive", g.config.Passive).Msg("session started")
	return nil
}

func (g *Generator) setupPeer(p *peer) error {
	numOTs := g.config.NumBaseOTs

	extBase, err := ot.NewBaseOT(p.conn, numOTs, numOTs, g.rand,
		g.config.FakeBaseOT)
	if err != nil {
		return err
	}
	if err := extBase.Run(ot.RoleBoth, p.first); err != nil {
		return err
	}
	ext, err := otext.NewExtension(extBase, p.conn, g.rand, p.first,
		otext.Options{
			Passive: g.config.Passive,
		})
	if err != nil {
		return err
	}
	if g.Hooks.Tamper != nil {
		ext.Sender.Tamper = func(m *bitmat.BitMatrix) {
			g.Hooks.Tamper(p.id, m)
		}
	}
	p.mult = NewMultiplier(g.fp, p.id, p.conn, p.first, ext)

	p.auth, err = setupAuth(g, p, g.fp, g.alpha)
	if err != nil {
		return err
	}
	p.bitAuth, err = setupAuth(g, p, g.fb, g.alpha2)
	if err != nil {
		return err
	}
	g.log.Debug().Int("peer", p.id).Bool("fake", g.config.FakeBaseOT).
		Msg("base OTs done")
	return nil
}

func setupAuth[E any](g *Generator, p *peer, f field.Field[E], alpha E) (
	*Authenticator[E], error) {

	base, err := ot.NewBaseOT(p.conn, f.Bits(), g.config.NumBaseOTs, g.rand,
		g.config.FakeBaseOT)
	if err != nil {
		return nil, err
	}
	if err := base.SetChoices(vole.Choices(f, alpha)); err != nil {
		return nil, err
	}
	if err := base.Run(ot.RoleBoth, p.first); err != nil {
		return nil, err
	}
	return NewAuthenticator(f, base, p.conn, p.first, alpha)
}

// authenticate computes the MAC shares of the value shares x under
// the key share alpha.
func authenticate[E any](ctx context.Context, g *Generator,
	f field.Field[E], alpha E, x []E,
	auth func(p *peer) *Authenticator[E]) ([]Share[E], error) {

	contribs, err := barrier(ctx, g, func(p *peer) ([]E, error) {
		return auth(p).Authenticate(x)
	})
	if err != nil {
		return nil, err
	}
	result := make([]Share[E], len(x))
	for j, v := range x {
		mac := f.Mul(alpha, v)
		for _, c := range contribs {
			if c != nil {
				mac = f.Add(mac, c[j])
			}
		}
		result[j] = Share[E]{
			Value: v,
			MAC:   mac,
		}
	}
	return result, nil
}

func (g *Generator) randomElements(n int) ([]*saferith.Nat, error) {
	result := make([]*saferith.Nat, n)
	for i := range result {
		var err error
		result[i], err = g.prime.Random(g.rand)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// sample records the duration and transfer of the state into the
// timing report.
func (g *Generator) sample(state State, start time.Time, before uint64) {
	g.Timing.Add(state, time.Since(start), g.nw.Stats().Sum()-before)
}
