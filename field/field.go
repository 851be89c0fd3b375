//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package field implements the finite fields used by the triple
// generator: a prime field with an explicit modulus context and the
// binary extension field GF(2^128).
package field

import (
	"io"
)

// Field defines arithmetic over field elements of type E. All
// operations return fresh values and never modify their arguments.
type Field[E any] interface {
	// Zero returns the additive identity.
	Zero() E
	// One returns the multiplicative identity.
	One() E
	Add(a, b E) E
	Sub(a, b E) E
	Neg(a E) E
	Mul(a, b E) E
	// Double returns Pow2(1)·a.
	Double(a E) E
	Equal(a, b E) bool
	// Random samples a uniformly random element.
	Random(rand io.Reader) (E, error)
	// FromBlock interprets the 128-bit block as a field element.
	FromBlock(b Block) E
	// Pow2 returns the element whose bit decomposition weight is 2^i
	// for the prime field and x^i for the binary field.
	Pow2(i int) E
	// Bit returns the bit i of the element's canonical encoding.
	Bit(e E, i int) uint
	// Bits returns the number of bits needed to decompose an element.
	Bits() int
	// Size returns the packed element size in bytes.
	Size() int
	// Pack encodes the element into buf[:Size()].
	Pack(buf []byte, e E)
	// Unpack decodes an element from buf[:Size()].
	Unpack(buf []byte) (E, error)
}

// PackAll encodes the elements into a new byte slice.
func PackAll[E any](f Field[E], elems []E) []byte {
	size := f.Size()
	buf := make([]byte, len(elems)*size)
	for i, e := range elems {
		f.Pack(buf[i*size:], e)
	}
	return buf
}

// UnpackAll decodes count elements from data.
func UnpackAll[E any](f Field[E], data []byte, count int) ([]E, error) {
	size := f.Size()
	if len(data) != count*size {
		return nil, ErrLength
	}
	result := make([]E, count)
	for i := 0; i < count; i++ {
		e, err := f.Unpack(data[i*size:])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// Sum returns the sum of the elements.
func Sum[E any](f Field[E], elems []E) E {
	result := f.Zero()
	for _, e := range elems {
		result = f.Add(result, e)
	}
	return result
}

// Dot returns the inner product of the vectors a and b.
func Dot[E any](f Field[E], a, b []E) E {
	result := f.Zero()
	for i := range a {
		result = f.Add(result, f.Mul(a[i], b[i]))
	}
	return result
}
