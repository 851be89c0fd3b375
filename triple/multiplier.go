//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triple

import (
	"fmt"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
	"github.com/markkurossi/mascot/otext"
)

// Multiplier computes shares of the cross products between the local
// party's and one peer's triple inputs with Gilboa multiplication
// over extended OTs. For input element b_k the receiver uses the bits
// of b_k as choice bits; for each OT the sender sends the correction
// F(m0) − F(m1) + a, where F maps the OT message to a field element.
//
// The multiplier runs in phases: Expand, Correlate, and
// ReduceSquares. The generator runs each phase for all peers before
// advancing to the next phase.
type Multiplier[E any] struct {
	f     field.Field[E]
	peer  int
	conn  ot.IO
	first bool
	ext   *otext.Extension

	n     int
	width int
	bits  *bitmat.BitVector
	sent  [][2][]field.Block
	recv  [][]field.Block
	peerD []E
}

// NewMultiplier creates a new multiplier for the peer.
func NewMultiplier[E any](f field.Field[E], peer int, conn ot.IO,
	first bool, ext *otext.Extension) *Multiplier[E] {

	return &Multiplier[E]{
		f:     f,
		peer:  peer,
		conn:  conn,
		first: first,
		ext:   ext,
	}
}

// Peer returns the peer's party ID.
func (m *Multiplier[E]) Peer() int {
	return m.peer
}

// Expand extends the OTs for multiplying width values with each of
// the n elements of b. The peer must call Expand with the same number
// of elements and the same width.
func (m *Multiplier[E]) Expand(b []E, width int) error {
	m.n = len(b)
	m.width = width
	m.bits = bitmat.NewBitVector(m.n * otext.K)
	for k, e := range b {
		for l := 0; l < m.f.Bits(); l++ {
			m.bits.SetBit(k*otext.K+l, m.f.Bit(e, l))
		}
	}
	var err error
	m.sent, m.recv, err = m.ext.ExtendWide(m.n*otext.K, m.bits, width)
	if err != nil {
		return fmt.Errorf("expand: %w", err)
	}
	return nil
}

// Correlate sends the corrections for multiplying a with the peer's
// b and receives the peer's corrections for the local b. The a[k]
// holds the width values multiplied with b_k.
func (m *Multiplier[E]) Correlate(a [][]E) error {
	if len(a) != m.n {
		return fmt.Errorf("correlate: %d inputs, expected %d", len(a), m.n)
	}
	d := make([]E, m.n*otext.K*m.width)
	for k := 0; k < m.n; k++ {
		if len(a[k]) != m.width {
			return fmt.Errorf("correlate: input %d: width %d, expected %d",
				k, len(a[k]), m.width)
		}
		for l := 0; l < otext.K; l++ {
			j := k*otext.K + l
			for t := 0; t < m.width; t++ {
				f0 := m.f.FromBlock(m.sent[j][0][t])
				f1 := m.f.FromBlock(m.sent[j][1][t])
				d[j*m.width+t] = m.f.Add(m.f.Sub(f0, f1), a[k][t])
			}
		}
	}
	data, err := ot.Exchange(m.conn, m.first, field.PackAll(m.f, d))
	if err != nil {
		return fmt.Errorf("correlate: %w", err)
	}
	m.peerD, err = field.UnpackAll(m.f, data, len(d))
	if err != nil {
		return fmt.Errorf("correlate: invalid corrections: %w", err)
	}
	return nil
}

// ReduceSquares folds each 128-row block of OT outputs into one field
// element. It returns the local party's shares of the cross products:
// result[k][t] is a share of a_local[k][t]·b_peer[k] +
// a_peer[k][t]·b_local[k].
func (m *Multiplier[E]) ReduceSquares() [][]E {
	result := make([][]E, m.n)
	for k := range result {
		result[k] = make([]E, m.width)
	}
	rows := m.n * otext.K
	for t := 0; t < m.width; t++ {
		s := bitmat.NewBitMatrix(rows, otext.K)
		r := bitmat.NewBitMatrix(rows, otext.K)
		for j := 0; j < rows; j++ {
			s.SetRowBlock(j, 0, m.sent[j][0][t])
			r.SetRowBlock(j, 0, m.recv[j][t])
		}
		sf := bitmat.ReduceSquares(m.f, s)
		rf := bitmat.ReduceSquares(m.f, r)

		for k := 0; k < m.n; k++ {
			// Σ_l 2^l·b_kl·d_klt
			acc := m.f.Zero()
			for l := m.f.Bits() - 1; l >= 0; l-- {
				acc = m.f.Double(acc)
				j := k*otext.K + l
				if m.bits.Bit(j) == 1 {
					acc = m.f.Add(acc, m.peerD[j*m.width+t])
				}
			}
			result[k][t] = m.f.Add(m.f.Sub(rf[k], sf[k]), acc)
		}
	}
	m.sent = nil
	m.recv = nil
	m.peerD = nil

	return result
}
