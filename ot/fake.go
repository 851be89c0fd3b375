//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
)

var (
	_ OT = &FakeOT{}
)

const fakeMagic = "fake-ot"

// FakeOT implements an INSECURE oblivious transfer for tests and
// benchmarks. The sender transmits both messages in the clear and the
// receiver learns everything. Never use it outside tests.
type FakeOT struct {
	io IO
}

// NewFakeOT creates a new insecure test OT.
func NewFakeOT() *FakeOT {
	return &FakeOT{}
}

// InitSender implements OT.InitSender.
func (f *FakeOT) InitSender(conn IO) error {
	f.io = conn
	if err := conn.SendData([]byte(fakeMagic)); err != nil {
		return err
	}
	return conn.Flush()
}

// InitReceiver implements OT.InitReceiver.
func (f *FakeOT) InitReceiver(conn IO) error {
	f.io = conn
	magic, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	if string(magic) != fakeMagic {
		return fmt.Errorf("ot: peer is not running fake OT: %q", magic)
	}
	return nil
}

// Send implements OT.Send.
func (f *FakeOT) Send(messages [][2]field.Block) error {
	buf := make([]byte, len(messages)*32)
	for i, m := range messages {
		m[0].PutBytes(buf[i*32:])
		m[1].PutBytes(buf[i*32+16:])
	}
	if err := f.io.SendData(buf); err != nil {
		return err
	}
	return f.io.Flush()
}

// Receive implements OT.Receive.
func (f *FakeOT) Receive(choices *bitmat.BitVector) ([]field.Block, error) {
	buf, err := f.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(buf) != choices.Len()*32 {
		return nil, fmt.Errorf("ot: invalid fake OT message: %d bytes",
			len(buf))
	}
	result := make([]field.Block, choices.Len())
	for i := range result {
		ofs := i*32 + int(choices.Bit(i))*16
		result[i] = field.BlockFromBytes(buf[ofs : ofs+16])
	}
	return result, nil
}
