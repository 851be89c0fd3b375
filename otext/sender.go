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

// Sender implements the sender side of the IKNP OT extension. The
// sender acts as the receiver of the base OTs and its base OT choice
// bits form the correlation Δ.
type Sender struct {
	conn  ot.IO
	rand  io.Reader
	opts  Options
	delta field.Block
	prgs  []*ot.PRG
	hash  *Hash

	// Tamper, if set, is called with the K×N sender matrix before it
	// is transposed. It is used for fault injection in tests.
	Tamper func(m *bitmat.BitMatrix)
}

// NewSender creates a new extension sender from the base OTs. The
// base OTs must have been run with a role that receives.
func NewSender(base *ot.BaseOT, conn ot.IO, rand io.Reader,
	opts Options) (*Sender, error) {

	if base.NumOTs != K {
		return nil, fmt.Errorf("otext: %d base OTs, expected %d",
			base.NumOTs, K)
	}
	if !base.Role().Receives() || base.ReceiverOutputs == nil {
		return nil, fmt.Errorf("otext: sender needs receiver base OTs, got %v",
			base.Role())
	}
	prgs := make([]*ot.PRG, K)
	for i, out := range base.ReceiverOutputs {
		prgs[i] = ot.NewPRG(out.Block(0))
	}
	return &Sender{
		conn:  conn,
		rand:  rand,
		opts:  opts,
		delta: base.Choices.Block(0),
		prgs:  prgs,
		hash:  NewHash(),
	}, nil
}

// Delta returns the sender's correlation Δ.
func (s *Sender) Delta() field.Block {
	return s.delta
}

// ExtendCorrelated extends n correlated OTs. It returns the N×K
// matrix Q where N is n plus padding, rounded up to a multiple of K.
// The row j of Q is t_j ⊕ x_j·Δ where t_j is the receiver's row j and
// x_j is the receiver's choice bit j. Only the first n rows are
// usable as OTs.
func (s *Sender) ExtendCorrelated(n int) (*bitmat.BitMatrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("otext: invalid number of OTs: %d", n)
	}
	N := extendedLength(n)
	rowBytes := N / 8

	u, err := s.conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(u) != K*rowBytes {
		return nil, fmt.Errorf("otext: invalid U length %d, expected %d",
			len(u), K*rowBytes)
	}

	m := bitmat.NewBitMatrix(K, N)
	row := make([]byte, rowBytes)
	for i := 0; i < K; i++ {
		s.prgs[i].Read(row)
		if s.delta.Bit(i) == 1 {
			urow := u[i*rowBytes : (i+1)*rowBytes]
			for j := range row {
				row[j] ^= urow[j]
			}
		}
		if err := m.SetRowBytes(i, row); err != nil {
			return nil, err
		}
	}
	if s.Tamper != nil {
		s.Tamper(m)
	}
	m.TransposeInPlace()

	if !s.opts.Passive {
		if err := s.check(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (s *Sender) check(m *bitmat.BitMatrix) error {
	seed, err := coin.TossPair(s.conn, true, s.rand)
	if err != nil {
		return err
	}
	chi := seed.PRG(checkLabel).Blocks(m.Rows())
	q := field.Reduce(field.InnerProduct(rows(m), chi))

	data, err := s.conn.ReceiveData()
	if err != nil {
		return err
	}
	if len(data) != 32 {
		return fmt.Errorf("otext: invalid check message length %d", len(data))
	}
	x := field.BlockFromBytes(data[0:16])
	t := field.BlockFromBytes(data[16:32])

	var gf field.GF2n
	ok := t == q.Xor(gf.Mul(x, s.delta))

	verdict := []byte{verdictFail}
	if ok {
		verdict[0] = verdictOK
	}
	if err := s.conn.SendData(verdict); err != nil {
		return err
	}
	if err := s.conn.Flush(); err != nil {
		return err
	}
	if !ok {
		return ErrCorrelationCheck
	}
	return nil
}

// Extend extends n random OTs. The result pair j holds the sender's
// messages H(q_j) and H(q_j ⊕ Δ).
func (s *Sender) Extend(n int) ([][2]field.Block, error) {
	wide, err := s.ExtendWide(n, 1)
	if err != nil {
		return nil, err
	}
	result := make([][2]field.Block, n)
	for j, w := range wide {
		result[j][0] = w[0][0]
		result[j][1] = w[1][0]
	}
	return result, nil
}

// ExtendWide extends n random OTs with width independent message
// blocks per OT.
func (s *Sender) ExtendWide(n, width int) ([][2][]field.Block, error) {
	m, err := s.ExtendCorrelated(n)
	if err != nil {
		return nil, err
	}
	tweak := s.hash.Tweak()
	result := make([][2][]field.Block, n)
	for j := range result {
		q0 := m.RowBlock(j, 0)
		q1 := q0.Xor(s.delta)
		result[j][0] = make([]field.Block, width)
		result[j][1] = make([]field.Block, width)
		for t := 0; t < width; t++ {
			tw := tweak + uint64(j*width+t)
			result[j][0][t] = s.hash.Sum(q0, tw)
			result[j][1][t] = s.hash.Sum(q1, tw)
		}
	}
	s.hash.Skip(n * width)
	return result, nil
}
