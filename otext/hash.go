//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/markkurossi/mascot/field"
)

var fixedKey = [16]byte{
	0x61, 0x7e, 0x8d, 0xa2, 0xa0, 0x51, 0x1e, 0x96,
	0x5e, 0x41, 0xc2, 0x9b, 0x15, 0x3f, 0xc7, 0x7a,
}

// Hash implements the tweakable correlation robust hash function
// H(x, i) = π(π(x) ⊕ i) ⊕ π(x) where π is AES with a fixed public
// key. Every hashed value consumes one tweak so that the hash outputs
// are independent across calls. Both parties must hash their OTs in
// the same order.
type Hash struct {
	cipher cipher.Block
	tweak  uint64
}

// NewHash creates a new hash function.
func NewHash() *Hash {
	block, err := aes.NewCipher(fixedKey[:])
	if err != nil {
		panic(err)
	}
	return &Hash{
		cipher: block,
	}
}

// Tweak returns the next unused tweak.
func (h *Hash) Tweak() uint64 {
	return h.tweak
}

// Skip consumes n tweaks.
func (h *Hash) Skip(n int) {
	h.tweak += uint64(n)
}

func (h *Hash) permute(x field.Block) field.Block {
	var buf [16]byte
	x.PutBytes(buf[:])
	h.cipher.Encrypt(buf[:], buf[:])
	return field.BlockFromBytes(buf[:])
}

// Sum hashes x with the explicit tweak. It does not consume tweaks.
func (h *Hash) Sum(x field.Block, tweak uint64) field.Block {
	px := h.permute(x)
	return h.permute(px.Xor(field.Block{Lo: tweak})).Xor(px)
}

// Next hashes x with the next tweak.
func (h *Hash) Next(x field.Block) field.Block {
	result := h.Sum(x, h.tweak)
	h.tweak++
	return result
}
