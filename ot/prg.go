//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
)

// PRG implements an AES-CTR pseudorandom generator keyed with a
// 128-bit seed.
type PRG struct {
	stream cipher.Stream
}

// NewPRG creates a new PRG for the seed.
func NewPRG(seed field.Block) *PRG {
	block, err := aes.NewCipher(seed.Bytes())
	if err != nil {
		panic(err)
	}
	var iv [aes.BlockSize]byte
	return &PRG{
		stream: cipher.NewCTR(block, iv[:]),
	}
}

// Read fills buf with pseudorandom bytes. It never fails.
func (prg *PRG) Read(buf []byte) (int, error) {
	for i := range buf {
		buf[i] = 0
	}
	prg.stream.XORKeyStream(buf, buf)
	return len(buf), nil
}

// Block returns the next pseudorandom block.
func (prg *PRG) Block() field.Block {
	var buf [16]byte
	prg.Read(buf[:])
	return field.BlockFromBytes(buf[:])
}

// Bits returns the next n pseudorandom bits.
func (prg *PRG) Bits(n int) *bitmat.BitVector {
	bv := bitmat.NewBitVector(n)
	buf := make([]byte, (n+7)/8)
	prg.Read(buf)
	bv.SetBytes(buf)
	return bv
}
