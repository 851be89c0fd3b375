//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bitmat

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitVectorAccess(t *testing.T) {
	bv := NewBitVector(300)
	if bv.Len() != 300 {
		t.Fatalf("Len: got %v, expected 300", bv.Len())
	}
	bv.SetBit(0, 1)
	bv.SetBit(65, 1)
	bv.SetBit(299, 1)

	if bv.Bit(0) != 1 || bv.Bit(1) != 0 || bv.Bit(65) != 1 || bv.Bit(299) != 1 {
		t.Fatalf("bit access failed: %v", bv)
	}
	if bv.Word(1) != 2 {
		t.Errorf("Word(1): got %x, expected 2", bv.Word(1))
	}
	if bv.Byte(8) != 2 {
		t.Errorf("Byte(8): got %x, expected 2", bv.Byte(8))
	}
	blk := bv.Block(0)
	if blk.Lo != 1 || blk.Hi != 2 {
		t.Errorf("Block(0): got %v", blk)
	}
	if bv.Weight() != 3 {
		t.Errorf("Weight: got %v, expected 3", bv.Weight())
	}

	bv.SetByte(8, 0xff)
	for i := 64; i < 72; i++ {
		if bv.Bit(i) != 1 {
			t.Errorf("SetByte: bit %d not set", i)
		}
	}
}

func TestBitVectorResize(t *testing.T) {
	bv := NewBitVector(100)
	require.NoError(t, bv.Randomize(rand.Reader))
	orig := bv.Clone()

	bv.Resize(1000)
	require.Equal(t, 1000, bv.Len())
	for i := 0; i < 100; i++ {
		require.Equal(t, orig.Bit(i), bv.Bit(i), "bit %d", i)
	}
	for i := 100; i < 1000; i++ {
		require.Equal(t, uint(0), bv.Bit(i), "bit %d", i)
	}

	bv.Resize(50)
	require.True(t, bv.Equal(orig.Sub(0, 50)))
	bv.Resize(100)
	for i := 50; i < 100; i++ {
		require.Equal(t, uint(0), bv.Bit(i), "bit %d", i)
	}
}

func TestBitVectorXor(t *testing.T) {
	a := NewBitVector(200)
	b := NewBitVector(200)
	require.NoError(t, a.Randomize(rand.Reader))
	require.NoError(t, b.Randomize(rand.Reader))

	c := a.Clone()
	c.Xor(b)
	for i := 0; i < 200; i++ {
		require.Equal(t, a.Bit(i)^b.Bit(i), c.Bit(i))
	}
	c.Xor(b)
	require.True(t, c.Equal(a))

	require.Panics(t, func() {
		a.Xor(NewBitVector(199))
	})
	require.False(t, a.Equal(NewBitVector(199)))
}

func TestBitVectorSub(t *testing.T) {
	bv := NewBitVector(500)
	require.NoError(t, bv.Randomize(rand.Reader))

	for _, r := range [][2]int{{0, 500}, {64, 300}, {3, 77}, {130, 131}} {
		sub := bv.Sub(r[0], r[1])
		require.Equal(t, r[1]-r[0], sub.Len())
		for i := r[0]; i < r[1]; i++ {
			require.Equal(t, bv.Bit(i), sub.Bit(i-r[0]))
		}
		for i := sub.Len(); i < sub.NumBlocks()*128; i++ {
			require.Equal(t, uint(0), sub.Bit(i), "padding bit %d", i)
		}
	}
}

func TestBitVectorMarshal(t *testing.T) {
	bv := NewBitVector(333)
	require.NoError(t, bv.Randomize(rand.Reader))

	data, err := bv.MarshalBinary()
	require.NoError(t, err)

	var got BitVector
	require.NoError(t, got.UnmarshalBinary(data))
	require.True(t, got.Equal(bv))

	require.Error(t, got.UnmarshalBinary(data[:len(data)-1]))
}
