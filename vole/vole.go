//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"fmt"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
)

// Choices returns the base OT choice bits for the key delta.
func Choices[E any](f field.Field[E], delta E) *bitmat.BitVector {
	bits := f.Bits()
	choices := bitmat.NewBitVector(bits)
	for i := 0; i < bits; i++ {
		choices.SetBit(i, f.Bit(delta, i))
	}
	return choices
}

func checkBase[E any](f field.Field[E], base *ot.BaseOT) error {
	if f.Bits() > 128 {
		return fmt.Errorf("vole: field too large: %d bits", f.Bits())
	}
	if base.NumOTs != f.Bits() {
		return fmt.Errorf("vole: %d base OTs for %d-bit field",
			base.NumOTs, f.Bits())
	}
	return nil
}

// expand draws n blocks from each PRG into the rows of a 128×128n
// matrix. Square j of the matrix holds the blocks j of all PRGs.
func expand(prgs []*ot.PRG, n int) *bitmat.BitMatrix {
	m := bitmat.NewBitMatrix(128, n*128)
	buf := make([]byte, n*16)
	for i, prg := range prgs {
		prg.Read(buf)
		if err := m.SetRowBytes(i, buf); err != nil {
			panic(err)
		}
	}
	return m
}

// Sender implements the inputter side of VOLE.
type Sender[E any] struct {
	f    field.Field[E]
	conn ot.IO
	prgs [2][]*ot.PRG
}

// NewSender creates a new VOLE sender from base OTs where this party
// was the sender.
func NewSender[E any](f field.Field[E], base *ot.BaseOT, conn ot.IO) (
	*Sender[E], error) {

	if err := checkBase(f, base); err != nil {
		return nil, err
	}
	if !base.Role().Sends() || base.SenderInputs == nil {
		return nil, fmt.Errorf("vole: sender needs sender base OTs, got %v",
			base.Role())
	}
	s := &Sender[E]{
		f:    f,
		conn: conn,
	}
	for b := 0; b < 2; b++ {
		s.prgs[b] = make([]*ot.PRG, base.NumOTs)
		for i, in := range base.SenderInputs {
			s.prgs[b][i] = ot.NewPRG(in[b].Block(0))
		}
	}
	return s, nil
}

// Input runs VOLE with the input vector x. It returns the masks r.
func (s *Sender[E]) Input(x []E) ([]E, error) {
	n := len(x)
	if n == 0 {
		return nil, nil
	}
	bits := s.f.Bits()
	m0 := expand(s.prgs[0], n)
	m1 := expand(s.prgs[1], n)

	u := make([]E, bits*n)
	for j := 0; j < n; j++ {
		s0 := m0.Square(0, j)
		s1 := m1.Square(0, j)
		for i := 0; i < bits; i++ {
			d := s.f.Sub(s.f.FromBlock(s0.Rows[i]), s.f.FromBlock(s1.Rows[i]))
			u[i*n+j] = s.f.Add(d, x[j])
		}
	}
	if err := s.conn.SendData(field.PackAll(s.f, u)); err != nil {
		return nil, err
	}
	if err := s.conn.Flush(); err != nil {
		return nil, err
	}
	return bitmat.ReduceSquares(s.f, m0), nil
}

// Receiver implements the key holder side of VOLE.
type Receiver[E any] struct {
	f     field.Field[E]
	conn  ot.IO
	delta E
	bits  *bitmat.BitVector
	prgs  []*ot.PRG
}

// NewReceiver creates a new VOLE receiver with the key delta from
// base OTs where this party was the receiver. The base OT choices
// must be Choices(f, delta).
func NewReceiver[E any](f field.Field[E], base *ot.BaseOT, conn ot.IO,
	delta E) (*Receiver[E], error) {

	if err := checkBase(f, base); err != nil {
		return nil, err
	}
	if !base.Role().Receives() || base.ReceiverOutputs == nil {
		return nil, fmt.Errorf("vole: receiver needs receiver base OTs, got %v",
			base.Role())
	}
	bits := Choices(f, delta)
	if !bits.Equal(base.Choices) {
		return nil, fmt.Errorf("vole: base OT choices do not match key")
	}
	r := &Receiver[E]{
		f:     f,
		conn:  conn,
		delta: delta,
		bits:  bits,
		prgs:  make([]*ot.PRG, base.NumOTs),
	}
	for i, out := range base.ReceiverOutputs {
		r.prgs[i] = ot.NewPRG(out.Block(0))
	}
	return r, nil
}

// Key returns the receiver's key Δ.
func (r *Receiver[E]) Key() E {
	return r.delta
}

// Receive runs VOLE for n sender inputs. It returns q[j] = r[j] +
// Δ·x[j].
func (r *Receiver[E]) Receive(n int) ([]E, error) {
	if n == 0 {
		return nil, nil
	}
	bits := r.f.Bits()
	m := expand(r.prgs, n)

	data, err := r.conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	u, err := field.UnpackAll(r.f, data, bits*n)
	if err != nil {
		return nil, fmt.Errorf("vole: invalid correction message: %w", err)
	}
	q := bitmat.ReduceSquares(r.f, m)
	for j := 0; j < n; j++ {
		// Σ_i Δ_i·2^i·u_ij
		acc := r.f.Zero()
		for i := bits - 1; i >= 0; i-- {
			acc = r.f.Double(acc)
			if r.bits.Bit(i) == 1 {
				acc = r.f.Add(acc, u[i*n+j])
			}
		}
		q[j] = r.f.Add(q[j], acc)
	}
	return q, nil
}
