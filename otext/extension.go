//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"io"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
)

// Extension runs the OT extension in both directions against one
// peer. The party with first set acts as the sender first.
type Extension struct {
	Sender   *Sender
	Receiver *Receiver
	first    bool
}

// NewExtension creates a bidirectional extension from base OTs run
// with ot.RoleBoth.
func NewExtension(base *ot.BaseOT, conn ot.IO, rand io.Reader,
	first bool, opts Options) (*Extension, error) {

	sender, err := NewSender(base, conn, rand, opts)
	if err != nil {
		return nil, err
	}
	receiver, err := NewReceiver(base, conn, rand, opts)
	if err != nil {
		return nil, err
	}
	return &Extension{
		Sender:   sender,
		Receiver: receiver,
		first:    first,
	}, nil
}

// ExtendCorrelated extends correlated OTs in both directions: n OTs
// where this party is the sender and len(x) OTs where this party is
// the receiver with the choice bits x. It returns the sender matrix Q
// and the receiver matrix T.
func (e *Extension) ExtendCorrelated(n int, x *bitmat.BitVector) (
	q, t *bitmat.BitMatrix, err error) {

	if e.first {
		q, err = e.Sender.ExtendCorrelated(n)
		if err != nil {
			return
		}
		t, err = e.Receiver.ExtendCorrelated(x)
		return
	}
	t, err = e.Receiver.ExtendCorrelated(x)
	if err != nil {
		return
	}
	q, err = e.Sender.ExtendCorrelated(n)
	return
}

// ExtendWide extends random OTs in both directions with width
// message blocks per OT.
func (e *Extension) ExtendWide(n int, x *bitmat.BitVector, width int) (
	sent [][2][]field.Block, received [][]field.Block, err error) {

	if e.first {
		sent, err = e.Sender.ExtendWide(n, width)
		if err != nil {
			return
		}
		received, err = e.Receiver.ExtendWide(x, width)
		return
	}
	received, err = e.Receiver.ExtendWide(x, width)
	if err != nil {
		return
	}
	sent, err = e.Sender.ExtendWide(n, width)
	return
}
