//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package coin implements commitments and commit-and-open joint coin
// tossing.
package coin

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"

	"github.com/markkurossi/mascot/env"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
)

const (
	// CommitmentSize is the size of a commitment in bytes.
	CommitmentSize = 32
	nonceSize      = 32
)

// ErrCommitment is returned when a commitment opening is invalid.
var ErrCommitment = fmt.Errorf("%w: invalid commitment opening",
	env.ErrSecurity)

// Exchanger broadcasts data to all parties and collects their data,
// indexed by party number.
type Exchanger interface {
	ExchangeAll(data []byte) ([][]byte, error)
}

// Commitment implements a hiding and binding commitment.
type Commitment [CommitmentSize]byte

func commitment(domain string, data, nonce []byte) Commitment {
	var hdr [8]byte
	binary.BigEndian.PutUint64(hdr[:], uint64(len(data)))

	h := blake3.New()
	h.Write([]byte(domain))
	h.Write(hdr[:])
	h.Write(data)
	h.Write(nonce)

	var c Commitment
	h.Sum(c[:0])
	return c
}

// Commit commits to data in the domain. It returns the commitment and
// its opening.
func Commit(domain string, data []byte, rand io.Reader) (
	Commitment, []byte, error) {

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand, nonce); err != nil {
		return Commitment{}, nil, err
	}
	opening := append(append([]byte{}, data...), nonce...)
	return commitment(domain, data, nonce), opening, nil
}

// Open verifies the opening against the commitment and returns the
// committed data.
func Open(domain string, c Commitment, opening []byte) ([]byte, error) {
	if len(opening) < nonceSize {
		return nil, ErrCommitment
	}
	data := opening[:len(opening)-nonceSize]
	nonce := opening[len(opening)-nonceSize:]

	computed := commitment(domain, data, nonce)
	if subtle.ConstantTimeCompare(computed[:], c[:]) != 1 {
		return nil, ErrCommitment
	}
	return data, nil
}

// CommitAndOpen commits to data, exchanges the commitments, then
// exchanges and verifies the openings. It returns all parties' data
// indexed by party number.
func CommitAndOpen(ex Exchanger, domain string, data []byte,
	rand io.Reader) ([][]byte, error) {

	c, opening, err := Commit(domain, data, rand)
	if err != nil {
		return nil, err
	}
	commitments, err := ex.ExchangeAll(c[:])
	if err != nil {
		return nil, err
	}
	openings, err := ex.ExchangeAll(opening)
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(openings))
	for i, o := range openings {
		if len(commitments[i]) != CommitmentSize {
			return nil, fmt.Errorf("%w: party %d", ErrCommitment, i)
		}
		var pc Commitment
		copy(pc[:], commitments[i])
		d, err := Open(domain, pc, o)
		if err != nil {
			return nil, fmt.Errorf("%w: party %d", err, i)
		}
		result[i] = d
	}
	return result, nil
}

// Seed implements a jointly sampled random seed.
type Seed [32]byte

// Toss runs a commit-and-open coin toss with all parties. The seed is
// uniform if at least one party is honest.
func Toss(ex Exchanger, rand io.Reader) (Seed, error) {
	var mine Seed
	if _, err := io.ReadFull(rand, mine[:]); err != nil {
		return Seed{}, err
	}
	all, err := CommitAndOpen(ex, "coin toss", mine[:], rand)
	if err != nil {
		return Seed{}, err
	}
	var seed Seed
	for i, s := range all {
		if len(s) != len(seed) {
			return Seed{}, fmt.Errorf("%w: party %d: seed length %d",
				ErrCommitment, i, len(s))
		}
		for j := range seed {
			seed[j] ^= s[j]
		}
	}
	return seed, nil
}

// Pair implements a two-party Exchanger over a point-to-point
// connection. The party with First set has index 0.
type Pair struct {
	IO    ot.IO
	First bool
}

// ExchangeAll implements Exchanger.ExchangeAll.
func (p *Pair) ExchangeAll(data []byte) ([][]byte, error) {
	peer, err := ot.Exchange(p.IO, p.First, data)
	if err != nil {
		return nil, err
	}
	if p.First {
		return [][]byte{data, peer}, nil
	}
	return [][]byte{peer, data}, nil
}

// TossPair runs a two-party coin toss over the connection.
func TossPair(conn ot.IO, first bool, rand io.Reader) (Seed, error) {
	return Toss(&Pair{IO: conn, First: first}, rand)
}

// PRG implements a ChaCha20 stream keyed from a seed.
type PRG struct {
	cipher *chacha20.Cipher
}

// PRG derives a pseudorandom generator for the label from the seed.
// Different labels give independent streams.
func (s Seed) PRG(label string) *PRG {
	var key [chacha20.KeySize]byte
	blake3.DeriveKey(label, s[:], key[:])

	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(err)
	}
	return &PRG{
		cipher: c,
	}
}

// Read fills buf with pseudorandom bytes. It never fails.
func (prg *PRG) Read(buf []byte) (int, error) {
	for i := range buf {
		buf[i] = 0
	}
	prg.cipher.XORKeyStream(buf, buf)
	return len(buf), nil
}

// Block returns the next pseudorandom block.
func (prg *PRG) Block() field.Block {
	var buf [16]byte
	prg.Read(buf[:])
	return field.BlockFromBytes(buf[:])
}

// Blocks returns the next n pseudorandom blocks.
func (prg *PRG) Blocks(n int) []field.Block {
	buf := make([]byte, n*16)
	prg.Read(buf)
	result := make([]field.Block, n)
	for i := range result {
		result[i] = field.BlockFromBytes(buf[i*16:])
	}
	return result
}

// Elements returns n pseudorandom field elements.
func Elements[E any](f field.Field[E], prg *PRG, n int) []E {
	result := make([]E, n)
	for i := range result {
		e, err := f.Random(prg)
		if err != nil {
			panic(err)
		}
		result[i] = e
	}
	return result
}
