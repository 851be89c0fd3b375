//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package bitmat implements bit vectors and 128×128 block bit
// matrices with fast transposition.
package bitmat

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"

	"github.com/markkurossi/mascot/field"
)

// BitVector implements a bit string with an explicit bit length. The
// storage is padded to whole 128-bit blocks; padding bits are always
// zero.
type BitVector struct {
	bits *bitset.BitSet
	n    int
}

func numWords(n int) int {
	return (n + 127) / 128 * 2
}

// NewBitVector creates a zero bit vector of n bits.
func NewBitVector(n int) *BitVector {
	return &BitVector{
		bits: bitset.From(make([]uint64, numWords(n))),
		n:    n,
	}
}

// Len returns the length of the vector in bits.
func (bv *BitVector) Len() int {
	return bv.n
}

func (bv *BitVector) String() string {
	return fmt.Sprintf("%x", bv.Bytes())
}

func (bv *BitVector) words() []uint64 {
	return bv.bits.Bytes()
}

func (bv *BitVector) check(o *BitVector) {
	if bv.n != o.n {
		panic(fmt.Sprintf("bitmat: length mismatch: %d != %d", bv.n, o.n))
	}
}

// Clone returns a copy of the vector.
func (bv *BitVector) Clone() *BitVector {
	return &BitVector{
		bits: bv.bits.Clone(),
		n:    bv.n,
	}
}

// Resize sets the vector length to n bits. Existing bits are
// preserved and new bits are zero.
func (bv *BitVector) Resize(n int) {
	words := make([]uint64, numWords(n))
	copy(words, bv.words())
	if n < bv.n {
		for i := n; i < len(words)*64; i++ {
			words[i/64] &^= 1 << (i % 64)
		}
	}
	bv.bits = bitset.From(words)
	bv.n = n
}

// Bit returns the bit i.
func (bv *BitVector) Bit(i int) uint {
	if bv.bits.Test(uint(i)) {
		return 1
	}
	return 0
}

// SetBit sets the bit i to v.
func (bv *BitVector) SetBit(i int, v uint) {
	bv.bits.SetTo(uint(i), v&1 == 1)
}

// Byte returns the byte i holding bits 8i...8i+7.
func (bv *BitVector) Byte(i int) byte {
	return byte(bv.words()[i/8] >> (8 * (i % 8)))
}

// SetByte sets the byte i.
func (bv *BitVector) SetByte(i int, v byte) {
	w := bv.words()
	shift := 8 * (i % 8)
	w[i/8] = w[i/8]&^(0xff<<shift) | uint64(v)<<shift
}

// Word returns the 64-bit word i.
func (bv *BitVector) Word(i int) uint64 {
	return bv.words()[i]
}

// SetWord sets the 64-bit word i.
func (bv *BitVector) SetWord(i int, v uint64) {
	bv.words()[i] = v
}

// NumBlocks returns the number of 128-bit blocks in the vector.
func (bv *BitVector) NumBlocks() int {
	return len(bv.words()) / 2
}

// Block returns the 128-bit block i.
func (bv *BitVector) Block(i int) field.Block {
	w := bv.words()
	return field.Block{
		Lo: w[2*i],
		Hi: w[2*i+1],
	}
}

// SetBlock sets the 128-bit block i.
func (bv *BitVector) SetBlock(i int, b field.Block) {
	w := bv.words()
	w[2*i] = b.Lo
	w[2*i+1] = b.Hi
}

// Xor sets bv to bv XOR o. The vectors must have equal lengths.
func (bv *BitVector) Xor(o *BitVector) {
	bv.check(o)
	bv.bits.InPlaceSymmetricDifference(o.bits)
}

// Equal tests if the vectors have equal lengths and contents.
func (bv *BitVector) Equal(o *BitVector) bool {
	if bv.n != o.n {
		return false
	}
	a := bv.words()
	b := o.words()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Weight returns the number of set bits.
func (bv *BitVector) Weight() int {
	return int(bv.bits.Count())
}

// Sub returns a copy of the bits [start, end).
func (bv *BitVector) Sub(start, end int) *BitVector {
	if start < 0 || end > bv.n || start > end {
		panic(fmt.Sprintf("bitmat: invalid range [%d,%d) of %d",
			start, end, bv.n))
	}
	result := NewBitVector(end - start)
	if start%64 == 0 {
		w := result.words()
		copy(w, bv.words()[start/64:])
		result.clearPadding()
		return result
	}
	for i := start; i < end; i++ {
		result.SetBit(i-start, bv.Bit(i))
	}
	return result
}

func (bv *BitVector) clearPadding() {
	w := bv.words()
	for i := bv.n; i < len(w)*64; {
		if i%64 == 0 {
			w[i/64] = 0
			i += 64
			continue
		}
		w[i/64] &= (1 << (i % 64)) - 1
		i += 64 - i%64
	}
}

// Randomize fills the vector with random bits.
func (bv *BitVector) Randomize(rand io.Reader) error {
	buf := make([]byte, (bv.n+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return err
	}
	bv.SetBytes(buf)
	return nil
}

// Bytes returns the vector as little-endian bytes.
func (bv *BitVector) Bytes() []byte {
	buf := make([]byte, (bv.n+7)/8)
	for i := range buf {
		buf[i] = bv.Byte(i)
	}
	return buf
}

// SetBytes sets the vector bits from the little-endian bytes.
func (bv *BitVector) SetBytes(data []byte) {
	count := (bv.n + 7) / 8
	if len(data) < count {
		count = len(data)
	}
	for i := 0; i < count; i++ {
		bv.SetByte(i, data[i])
	}
	bv.clearPadding()
}

// MarshalBinary encodes the vector as a 32-bit big-endian length
// followed by the vector bytes.
func (bv *BitVector) MarshalBinary() ([]byte, error) {
	data := make([]byte, 4, 4+(bv.n+7)/8)
	binary.BigEndian.PutUint32(data, uint32(bv.n))
	return append(data, bv.Bytes()...), nil
}

// UnmarshalBinary decodes the vector from MarshalBinary data.
func (bv *BitVector) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("bitmat: truncated bit vector")
	}
	n := int(binary.BigEndian.Uint32(data))
	if len(data) != 4+(n+7)/8 {
		return fmt.Errorf("bitmat: invalid bit vector length %d for %d bits",
			len(data)-4, n)
	}
	*bv = *NewBitVector(n)
	bv.SetBytes(data[4:])
	return nil
}
