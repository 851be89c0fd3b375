//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

import (
	"io"
)

var (
	_ Field[Block] = &GF2n{}
)

// GF2n implements the binary extension field GF(2^128) with the
// reduction polynomial x^128 + x^7 + x^2 + x + 1.
type GF2n struct{}

// NewGF2n creates a new GF(2^128) context.
func NewGF2n() *GF2n {
	return &GF2n{}
}

// Zero implements Field.Zero.
func (f *GF2n) Zero() Block {
	return Block{}
}

// One implements Field.One.
func (f *GF2n) One() Block {
	return Block{Lo: 1}
}

// Add implements Field.Add.
func (f *GF2n) Add(a, b Block) Block {
	return a.Xor(b)
}

// Sub implements Field.Sub. Subtraction equals addition in
// characteristic 2.
func (f *GF2n) Sub(a, b Block) Block {
	return a.Xor(b)
}

// Neg implements Field.Neg.
func (f *GF2n) Neg(a Block) Block {
	return a
}

// Mul implements Field.Mul.
func (f *GF2n) Mul(a, b Block) Block {
	return Reduce(Mul128(a, b))
}

// Equal implements Field.Equal.
func (f *GF2n) Equal(a, b Block) bool {
	return a == b
}

// Random implements Field.Random.
func (f *GF2n) Random(rand io.Reader) (Block, error) {
	return NewBlock(rand)
}

// FromBlock implements Field.FromBlock.
func (f *GF2n) FromBlock(b Block) Block {
	return b
}

// Double implements Field.Double and returns x·a.
func (f *GF2n) Double(a Block) Block {
	carry := a.Hi >> 63
	return Block{
		Lo: a.Lo<<1 ^ carry*0x87,
		Hi: a.Hi<<1 | a.Lo>>63,
	}
}

// Pow2 implements Field.Pow2 and returns x^i.
func (f *GF2n) Pow2(i int) Block {
	var b Block
	b.SetBit(i, 1)
	return b
}

// Bit implements Field.Bit.
func (f *GF2n) Bit(e Block, i int) uint {
	return e.Bit(i)
}

// Bits implements Field.Bits.
func (f *GF2n) Bits() int {
	return 128
}

// Size implements Field.Size.
func (f *GF2n) Size() int {
	return 16
}

// Pack implements Field.Pack.
func (f *GF2n) Pack(buf []byte, e Block) {
	e.PutBytes(buf)
}

// Unpack implements Field.Unpack.
func (f *GF2n) Unpack(buf []byte) (Block, error) {
	if len(buf) < 16 {
		return Block{}, ErrLength
	}
	return BlockFromBytes(buf), nil
}

// Square returns a^2.
func (f *GF2n) Square(a Block) Block {
	return f.Mul(a, a)
}

// Sqrt returns the unique square root of a, a^(2^127). The map is
// linear so additive shares of a square can be rooted locally.
func (f *GF2n) Sqrt(a Block) Block {
	for i := 0; i < 127; i++ {
		a = f.Square(a)
	}
	return a
}
