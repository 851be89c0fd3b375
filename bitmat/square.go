//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bitmat

import (
	"io"

	"github.com/markkurossi/mascot/field"
)

// Square128 implements a 128×128 bit block. The bit at row r, column
// c is bit c of Rows[r].
type Square128 struct {
	Rows [128]field.Block
}

// Get returns the bit at row r, column c.
func (s *Square128) Get(r, c int) uint {
	return s.Rows[r].Bit(c)
}

// Set sets the bit at row r, column c.
func (s *Square128) Set(r, c int, v uint) {
	s.Rows[r].SetBit(c, v)
}

// Transpose transposes the block in place using the active
// Transposer.
func (s *Square128) Transpose() {
	Transposer.TransposeBlock(&s.Rows)
}

// Xor sets s to s XOR o.
func (s *Square128) Xor(o *Square128) {
	for i := range s.Rows {
		s.Rows[i] = s.Rows[i].Xor(o.Rows[i])
	}
}

// Randomize fills the block with random bits.
func (s *Square128) Randomize(rand io.Reader) error {
	var buf [128 * 16]byte
	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return err
	}
	for i := range s.Rows {
		s.Rows[i] = field.BlockFromBytes(buf[i*16:])
	}
	return nil
}

// FoldSquare interprets each row of the square as a field element and
// returns the sum of 2^i·row_i over all rows i < f.Bits().
func FoldSquare[E any](f field.Field[E], s *Square128) E {
	result := f.Zero()
	for i := f.Bits() - 1; i >= 0; i-- {
		result = f.Add(f.Double(result), f.FromBlock(s.Rows[i]))
	}
	return result
}
