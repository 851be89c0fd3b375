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
)

// ErrLength is returned when packed data has an invalid length.
var ErrLength = errors.New("field: invalid data length")

// Block implements a 128-bit value. Bit i of the block is bit i of Lo
// for i < 64 and bit i-64 of Hi otherwise.
type Block struct {
	Lo uint64
	Hi uint64
}

func (b Block) String() string {
	return fmt.Sprintf("%016x%016x", b.Hi, b.Lo)
}

// NewBlock creates a random block.
func NewBlock(rand io.Reader) (Block, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return Block{}, err
	}
	return BlockFromBytes(buf[:]), nil
}

// BlockFromBytes decodes a block from 16 little-endian bytes.
func BlockFromBytes(data []byte) Block {
	return Block{
		Lo: binary.LittleEndian.Uint64(data[0:8]),
		Hi: binary.LittleEndian.Uint64(data[8:16]),
	}
}

// PutBytes encodes the block into 16 little-endian bytes.
func (b Block) PutBytes(data []byte) {
	binary.LittleEndian.PutUint64(data[0:8], b.Lo)
	binary.LittleEndian.PutUint64(data[8:16], b.Hi)
}

// Bytes returns the block as 16 little-endian bytes.
func (b Block) Bytes() []byte {
	var buf [16]byte
	b.PutBytes(buf[:])
	return buf[:]
}

// Xor returns b XOR o.
func (b Block) Xor(o Block) Block {
	return Block{
		Lo: b.Lo ^ o.Lo,
		Hi: b.Hi ^ o.Hi,
	}
}

// And returns b AND o.
func (b Block) And(o Block) Block {
	return Block{
		Lo: b.Lo & o.Lo,
		Hi: b.Hi & o.Hi,
	}
}

// IsZero tests if all bits of the block are zero.
func (b Block) IsZero() bool {
	return b.Lo == 0 && b.Hi == 0
}

// Bit returns the bit i of the block.
func (b Block) Bit(i int) uint {
	if i < 64 {
		return uint(b.Lo>>i) & 1
	}
	return uint(b.Hi>>(i-64)) & 1
}

// SetBit sets the bit i of the block to v.
func (b *Block) SetBit(i int, v uint) {
	if i < 64 {
		b.Lo = b.Lo&^(1<<i) | uint64(v&1)<<i
	} else {
		b.Hi = b.Hi&^(1<<(i-64)) | uint64(v&1)<<(i-64)
	}
}

// Mask returns all ones if bit is 1 and zero otherwise.
func Mask(bit uint) Block {
	m := -uint64(bit & 1)
	return Block{
		Lo: m,
		Hi: m,
	}
}
