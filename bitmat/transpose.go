//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bitmat

import (
	"github.com/markkurossi/mascot/field"
)

// BlockTransposer transposes 128×128 bit blocks in place.
type BlockTransposer interface {
	Name() string
	TransposeBlock(rows *[128]field.Block)
}

var (
	// NaiveTransposer transposes bit by bit. It is the correctness
	// oracle for the other transposers.
	NaiveTransposer BlockTransposer = naiveTransposer{}

	// ByteTransposer transposes 8×8 bit sub-blocks with word
	// operations. It is the portable fallback.
	ByteTransposer BlockTransposer = byteTransposer{}

	// RecursiveTransposer implements the recursive block swap
	// transpose on 64-bit lanes.
	RecursiveTransposer BlockTransposer = recursiveTransposer{}
)

type naiveTransposer struct{}

func (t naiveTransposer) Name() string {
	return "naive"
}

func (t naiveTransposer) TransposeBlock(rows *[128]field.Block) {
	var result [128]field.Block
	for r := 0; r < 128; r++ {
		for c := 0; c < 128; c++ {
			result[c].SetBit(r, rows[r].Bit(c))
		}
	}
	*rows = result
}

type byteTransposer struct{}

func (t byteTransposer) Name() string {
	return "bytes"
}

func getByte(b field.Block, i int) uint64 {
	if i < 8 {
		return (b.Lo >> (8 * i)) & 0xff
	}
	return (b.Hi >> (8 * (i - 8))) & 0xff
}

func orByte(b *field.Block, i int, v uint64) {
	if i < 8 {
		b.Lo |= v << (8 * i)
	} else {
		b.Hi |= v << (8 * (i - 8))
	}
}

// transpose8 transposes an 8×8 bit matrix where byte k holds row k and
// bit b of a byte is column b.
func transpose8(x uint64) uint64 {
	t := (x ^ (x >> 7)) & 0x00aa00aa00aa00aa
	x ^= t ^ (t << 7)
	t = (x ^ (x >> 14)) & 0x0000cccc0000cccc
	x ^= t ^ (t << 14)
	t = (x ^ (x >> 28)) & 0x00000000f0f0f0f0
	x ^= t ^ (t << 28)
	return x
}

func (t byteTransposer) TransposeBlock(rows *[128]field.Block) {
	src := *rows
	*rows = [128]field.Block{}

	for bi := 0; bi < 16; bi++ {
		for bj := 0; bj < 16; bj++ {
			var x uint64
			for k := 0; k < 8; k++ {
				x |= getByte(src[8*bi+k], bj) << (8 * k)
			}
			x = transpose8(x)
			for k := 0; k < 8; k++ {
				orByte(&rows[8*bj+k], bi, (x>>(8*k))&0xff)
			}
		}
	}
}

type recursiveTransposer struct{}

func (t recursiveTransposer) Name() string {
	return "recursive"
}

var laneMasks = [...]uint64{
	0x00000000ffffffff,
	0x0000ffff0000ffff,
	0x00ff00ff00ff00ff,
	0x0f0f0f0f0f0f0f0f,
	0x3333333333333333,
	0x5555555555555555,
}

func (t recursiveTransposer) TransposeBlock(rows *[128]field.Block) {
	// Swap the top-right and bottom-left 64×64 quadrants.
	for r := 0; r < 64; r++ {
		rows[r].Hi, rows[r+64].Lo = rows[r+64].Lo, rows[r].Hi
	}
	// Transpose each quadrant by swapping w×w sub-blocks inside the
	// 64-bit lanes.
	w := 32
	for _, m := range laneMasks {
		for r := 0; r < 128; r++ {
			if r&w != 0 {
				continue
			}
			x := &rows[r]
			y := &rows[r+w]

			d := ((x.Lo >> w) ^ y.Lo) & m
			y.Lo ^= d
			x.Lo ^= d << w

			d = ((x.Hi >> w) ^ y.Hi) & m
			y.Hi ^= d
			x.Hi ^= d << w
		}
		w >>= 1
	}
}
