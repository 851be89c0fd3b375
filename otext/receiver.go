//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"fmt"
	"io"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/coin"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
)

const (
	checkLabel  = "otext correlation check"
	verdictFail = 0
	verdictOK   = 1
)

// Receiver implements the receiver side of the IKNP OT extension. The
// receiver acts as the sender of the base OTs.
type Receiver struct {
	conn ot.IO
	rand io.Reader
	opts Options
	prgs [][2]*ot.PRG
	hash *Hash
}

// NewReceiver creates a new extension receiver from the base OTs. The
// base OTs must have been run with a role that sends.
func NewReceiver(base *ot.BaseOT, conn ot.IO, rand io.Reader,
	opts Options) (*Receiver, error) {

	if base.NumOTs != K {
		return nil, fmt.Errorf("otext: %d base OTs, expected %d",
			base.NumOTs, K)
	}
	if !base.Role().Sends() || base.SenderInputs == nil {
		return nil, fmt.Errorf("otext: receiver needs sender base OTs, got %v",
			base.Role())
	}
	prgs := make([][2]*ot.PRG, K)
	for i, in := range base.SenderInputs {
		prgs[i][0] = ot.NewPRG(in[0].Block(0))
		prgs[i][1] = ot.NewPRG(in[1].Block(0))
	}
	return &Receiver{
		conn: conn,
		rand: rand,
		opts: opts,
		prgs: prgs,
		hash: NewHash(),
	}, nil
}

// ExtendCorrelated extends len(x) correlated OTs with the choice bits
// x. It returns the N×K matrix T; see Sender.ExtendCorrelated.
func (r *Receiver) ExtendCorrelated(x *bitmat.BitVector) (
	*bitmat.BitMatrix, error) {

	n := x.Len()
	if n <= 0 {
		return nil, fmt.Errorf("otext: invalid number of OTs: %d", n)
	}
	N := extendedLength(n)
	rowBytes := N / 8

	// Pad the choices with random bits.
	padded := bitmat.NewBitVector(N)
	if err := padded.Randomize(r.rand); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		padded.SetBit(i, x.Bit(i))
	}
	xb := padded.Bytes()

	m := bitmat.NewBitMatrix(K, N)
	u := make([]byte, K*rowBytes)
	t1 := make([]byte, rowBytes)
	for i := 0; i < K; i++ {
		t0 := u[i*rowBytes : (i+1)*rowBytes]
		r.prgs[i][0].Read(t0)
		if err := m.SetRowBytes(i, t0); err != nil {
			return nil, err
		}
		r.prgs[i][1].Read(t1)
		for j := range t0 {
			t0[j] ^= t1[j] ^ xb[j]
		}
	}
	if err := r.conn.SendData(u); err != nil {
		return nil, err
	}
	if err := r.conn.Flush(); err != nil {
		return nil, err
	}
	m.TransposeInPlace()

	if !r.opts.Passive {
		if err := r.check(m, padded); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (r *Receiver) check(m *bitmat.BitMatrix, x *bitmat.BitVector) error {
	seed, err := coin.TossPair(r.conn, false, r.rand)
	if err != nil {
		return err
	}
	chi := seed.PRG(checkLabel).Blocks(m.Rows())

	var xs field.Block
	for j, c := range chi {
		if x.Bit(j) == 1 {
			xs = xs.Xor(c)
		}
	}
	t := field.Reduce(field.InnerProduct(rows(m), chi))

	data := make([]byte, 32)
	xs.PutBytes(data[0:16])
	t.PutBytes(data[16:32])
	if err := r.conn.SendData(data); err != nil {
		return err
	}
	if err := r.conn.Flush(); err != nil {
		return err
	}
	verdict, err := r.conn.ReceiveData()
	if err != nil {
		return err
	}
	if len(verdict) != 1 || verdict[0] != verdictOK {
		return ErrCorrelationCheck
	}
	return nil
}

// Extend extends len(x) random OTs with the choice bits x. The
// result j is the message H(t_j) which equals the sender's message
// x_j.
func (r *Receiver) Extend(x *bitmat.BitVector) ([]field.Block, error) {
	wide, err := r.ExtendWide(x, 1)
	if err != nil {
		return nil, err
	}
	result := make([]field.Block, len(wide))
	for j, w := range wide {
		result[j] = w[0]
	}
	return result, nil
}

// ExtendWide extends len(x) random OTs with width message blocks per
// OT.
func (r *Receiver) ExtendWide(x *bitmat.BitVector, width int) (
	[][]field.Block, error) {

	m, err := r.ExtendCorrelated(x)
	if err != nil {
		return nil, err
	}
	n := x.Len()
	tweak := r.hash.Tweak()
	result := make([][]field.Block, n)
	for j := range result {
		t := m.RowBlock(j, 0)
		result[j] = make([]field.Block, width)
		for k := 0; k < width; k++ {
			result[j][k] = r.hash.Sum(t, tweak+uint64(j*width+k))
		}
	}
	r.hash.Skip(n * width)
	return result, nil
}

func rows(m *bitmat.BitMatrix) []field.Block {
	result := make([]field.Block, m.Rows())
	for j := range result {
		result[j] = m.RowBlock(j, 0)
	}
	return result
}
