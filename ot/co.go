//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zeebo/blake3"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
)

// CO implements the batched "Simplest OT" protocol by Chou and
// Orlandi over the secp256k1 curve:
//
//	The Simplest Protocol for Oblivious Transfer
//	https://eprint.iacr.org/2015/267.pdf
//
// The sender publishes A = aG. For each transfer the receiver sends
// B = bG when its choice is 0 and B = A + bG when it is 1. The sender
// derives the keys k0 = H(i, aB) and k1 = H(i, aB - aA) and the
// receiver the key H(i, bA) that matches its choice.
type CO struct {
	rand io.Reader
	io   IO
	a    secp256k1.ModNScalar
	pubA secp256k1.JacobianPoint
}

var (
	_ OT = &CO{}
)

const (
	coMagic   = "co-secp256k1"
	pointSize = secp256k1.PubKeyBytesLenCompressed
)

// NewCO creates a new CO OT using rand as the randomness source.
func NewCO(rand io.Reader) *CO {
	return &CO{
		rand: rand,
	}
}

// InitSender implements OT.InitSender.
func (co *CO) InitSender(conn IO) error {
	co.io = conn
	if err := randomScalar(co.rand, &co.a); err != nil {
		return err
	}
	secp256k1.ScalarBaseMultNonConst(&co.a, &co.pubA)

	if err := conn.SendData([]byte(coMagic)); err != nil {
		return err
	}
	if err := conn.SendData(marshalPoint(&co.pubA)); err != nil {
		return err
	}
	return conn.Flush()
}

// InitReceiver implements OT.InitReceiver.
func (co *CO) InitReceiver(conn IO) error {
	co.io = conn
	magic, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	if string(magic) != coMagic {
		return fmt.Errorf("ot: peer is not running CO: %q", magic)
	}
	data, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	return unmarshalPoint(data, &co.pubA)
}

// Send implements OT.Send.
func (co *CO) Send(messages [][2]field.Block) error {
	data, err := co.io.ReceiveData()
	if err != nil {
		return err
	}
	if len(data) != len(messages)*pointSize {
		return fmt.Errorf("ot: CO: got %d bytes of points for %d OTs",
			len(data), len(messages))
	}

	// -aA
	var negT secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&co.a, &co.pubA, &negT)
	negT.ToAffine()
	negT.Y.Negate(1).Normalize()

	out := make([]byte, len(messages)*32)
	for i, m := range messages {
		var pubB, k0, k1 secp256k1.JacobianPoint

		err := unmarshalPoint(data[i*pointSize:(i+1)*pointSize], &pubB)
		if err != nil {
			return err
		}
		secp256k1.ScalarMultNonConst(&co.a, &pubB, &k0)
		secp256k1.AddNonConst(&k0, &negT, &k1)

		e0 := kdf(uint64(i), &k0).Xor(m[0])
		e1 := kdf(uint64(i), &k1).Xor(m[1])
		e0.PutBytes(out[i*32:])
		e1.PutBytes(out[i*32+16:])
	}
	if err := co.io.SendData(out); err != nil {
		return err
	}
	return co.io.Flush()
}

// Receive implements OT.Receive.
func (co *CO) Receive(choices *bitmat.BitVector) ([]field.Block, error) {
	n := choices.Len()
	keys := make([]field.Block, n)
	points := make([]byte, 0, n*pointSize)

	for i := 0; i < n; i++ {
		var b secp256k1.ModNScalar
		var bG, pubB, k secp256k1.JacobianPoint

		if err := randomScalar(co.rand, &b); err != nil {
			return nil, err
		}
		secp256k1.ScalarBaseMultNonConst(&b, &bG)
		if choices.Bit(i) == 1 {
			secp256k1.AddNonConst(&bG, &co.pubA, &pubB)
		} else {
			pubB.Set(&bG)
		}
		points = append(points, marshalPoint(&pubB)...)

		secp256k1.ScalarMultNonConst(&b, &co.pubA, &k)
		keys[i] = kdf(uint64(i), &k)
	}
	if err := co.io.SendData(points); err != nil {
		return nil, err
	}
	if err := co.io.Flush(); err != nil {
		return nil, err
	}

	data, err := co.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) != n*32 {
		return nil, fmt.Errorf("ot: CO: got %d bytes of messages for %d OTs",
			len(data), n)
	}
	result := make([]field.Block, n)
	for i := range result {
		ofs := i*32 + int(choices.Bit(i))*16
		result[i] = field.BlockFromBytes(data[ofs : ofs+16]).Xor(keys[i])
	}
	return result, nil
}

func randomScalar(rand io.Reader, s *secp256k1.ModNScalar) error {
	var buf [32]byte
	for {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return err
		}
		if !s.SetByteSlice(buf[:]) && !s.IsZero() {
			return nil
		}
	}
}

func marshalPoint(p *secp256k1.JacobianPoint) []byte {
	p.ToAffine()
	return secp256k1.NewPublicKey(&p.X, &p.Y).SerializeCompressed()
}

func unmarshalPoint(data []byte, p *secp256k1.JacobianPoint) error {
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return fmt.Errorf("ot: CO: invalid point: %w", err)
	}
	key.AsJacobian(p)
	return nil
}

func kdf(id uint64, p *secp256k1.JacobianPoint) field.Block {
	var hdr [8]byte
	binary.BigEndian.PutUint64(hdr[:], id)

	h := blake3.New()
	h.Write(hdr[:])
	h.Write(marshalPoint(p))

	var digest [32]byte
	return field.BlockFromBytes(h.Sum(digest[:0])[:16])
}
