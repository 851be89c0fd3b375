//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

var (
	_ Field[*saferith.Nat] = &Prime{}

	// ErrNonCanonical is returned when unpacking a value not reduced
	// modulo the field prime.
	ErrNonCanonical = errors.New("field: value not reduced")
)

// DefaultModulus is the largest 128-bit prime 2^128-159.
const DefaultModulus = "ffffffffffffffffffffffffffffff61"

// Prime implements a prime field context. The modulus travels with
// the context so several fields can coexist in one process.
//
// A Prime is shared by concurrent workers. Its methods only pass the
// modulus and their arguments to saferith operations that read them;
// comparisons run on private reduced copies since Nat.Cmp rewrites
// the limbs of both operands.
type Prime struct {
	m    *saferith.Modulus
	bits int
	size int
	pow2 []*saferith.Nat
}

// NewPrime creates a prime field context for the hex-encoded modulus.
// The modulus must be an odd prime of at most 128 bits.
func NewPrime(modulus string) (*Prime, error) {
	p, ok := new(big.Int).SetString(modulus, 16)
	if !ok {
		return nil, fmt.Errorf("field: invalid modulus %q", modulus)
	}
	if p.BitLen() > 128 || p.BitLen() < 2 {
		return nil, fmt.Errorf("field: modulus must be 2..128 bits: %d",
			p.BitLen())
	}
	if !p.ProbablyPrime(32) {
		return nil, fmt.Errorf("field: modulus %q is not prime", modulus)
	}
	m := saferith.ModulusFromBytes(p.Bytes())

	f := &Prime{
		m:    m,
		bits: m.BitLen(),
		size: (m.BitLen() + 7) / 8,
	}
	f.pow2 = make([]*saferith.Nat, f.bits)
	for i := 0; i < f.bits; i++ {
		v := new(big.Int).Lsh(big.NewInt(1), uint(i))
		f.pow2[i] = new(saferith.Nat).Mod(new(saferith.Nat).SetBig(v, i+1), m)
	}
	return f, nil
}

// Modulus returns the field modulus.
func (f *Prime) Modulus() *saferith.Modulus {
	return f.m
}

// String returns the modulus as a hex string.
func (f *Prime) String() string {
	return fmt.Sprintf("%x", f.m.Big())
}

// Zero implements Field.Zero.
func (f *Prime) Zero() *saferith.Nat {
	return new(saferith.Nat).SetUint64(0).Resize(f.bits)
}

// One implements Field.One.
func (f *Prime) One() *saferith.Nat {
	return new(saferith.Nat).SetUint64(1).Resize(f.bits)
}

// Uint64 returns the element v mod p.
func (f *Prime) Uint64(v uint64) *saferith.Nat {
	return new(saferith.Nat).Mod(new(saferith.Nat).SetUint64(v), f.m)
}

// Add implements Field.Add.
func (f *Prime) Add(a, b *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModAdd(a, b, f.m)
}

// Sub implements Field.Sub.
func (f *Prime) Sub(a, b *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModSub(a, b, f.m)
}

// Neg implements Field.Neg.
func (f *Prime) Neg(a *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModNeg(a, f.m)
}

// Mul implements Field.Mul.
func (f *Prime) Mul(a, b *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(a, b, f.m)
}

// Double implements Field.Double.
func (f *Prime) Double(a *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModAdd(a, a, f.m)
}

// Equal implements Field.Equal.
func (f *Prime) Equal(a, b *saferith.Nat) bool {
	x := new(saferith.Nat).Mod(a, f.m)
	y := new(saferith.Nat).Mod(b, f.m)
	return x.Eq(y) == 1
}

// Random implements Field.Random. It reduces 64 extra random bits to
// keep the bias negligible.
func (f *Prime) Random(rand io.Reader) (*saferith.Nat, error) {
	buf := make([]byte, f.size+8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, err
	}
	return new(saferith.Nat).Mod(new(saferith.Nat).SetBytes(buf), f.m), nil
}

// FromBlock implements Field.FromBlock.
func (f *Prime) FromBlock(b Block) *saferith.Nat {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], b.Hi)
	binary.BigEndian.PutUint64(buf[8:16], b.Lo)
	return new(saferith.Nat).Mod(new(saferith.Nat).SetBytes(buf[:]), f.m)
}

// Pow2 implements Field.Pow2. The result is a fresh copy.
func (f *Prime) Pow2(i int) *saferith.Nat {
	return new(saferith.Nat).SetNat(f.pow2[i])
}

// Bit implements Field.Bit.
func (f *Prime) Bit(e *saferith.Nat, i int) uint {
	var buf [16]byte
	e.FillBytes(buf[:])
	return uint(buf[15-i/8]>>(i%8)) & 1
}

// Bits implements Field.Bits.
func (f *Prime) Bits() int {
	return f.bits
}

// Size implements Field.Size.
func (f *Prime) Size() int {
	return f.size
}

// Pack implements Field.Pack. Elements are encoded big-endian.
func (f *Prime) Pack(buf []byte, e *saferith.Nat) {
	e.FillBytes(buf[:f.size])
}

// Unpack implements Field.Unpack.
func (f *Prime) Unpack(buf []byte) (*saferith.Nat, error) {
	if len(buf) < f.size {
		return nil, ErrLength
	}
	v := new(saferith.Nat).SetBytes(buf[:f.size])
	r := new(saferith.Nat).Mod(v, f.m)
	if r.Eq(v) != 1 {
		return nil, ErrNonCanonical
	}
	return r, nil
}
