//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

var (
	_ IO = &Pipe{}
)

const pipeDepth = 64

// Pipe implements the IO interface with in-memory message channels.
// Messages are delivered as whole units; Flush is a no-op.
type Pipe struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

// NewPipe creates a new in-memory pipe and returns its two endpoints.
func NewPipe() (*Pipe, *Pipe) {
	ab := make(chan []byte, pipeDepth)
	ba := make(chan []byte, pipeDepth)
	done := make(chan struct{})
	once := new(sync.Once)

	return &Pipe{
			in:   ba,
			out:  ab,
			done: done,
			once: once,
		}, &Pipe{
			in:   ab,
			out:  ba,
			done: done,
			once: once,
		}
}

// SendData sends a message. The data is copied.
func (p *Pipe) SendData(val []byte) error {
	msg := make([]byte, len(val))
	copy(msg, val)
	select {
	case p.out <- msg:
		return nil
	case <-p.done:
		return io.ErrClosedPipe
	}
}

// SendUint32 sends an uint32 value.
func (p *Pipe) SendUint32(val int) error {
	return p.SendData(binary.BigEndian.AppendUint32(nil, uint32(val)))
}

// Flush implements IO.Flush.
func (p *Pipe) Flush() error {
	return nil
}

// Close closes both ends of the pipe. Pending and future operations
// fail.
func (p *Pipe) Close() error {
	p.once.Do(func() {
		close(p.done)
	})
	return nil
}

// ReceiveData receives a message. It returns io.EOF after the pipe
// is closed.
func (p *Pipe) ReceiveData() ([]byte, error) {
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// ReceiveUint32 receives an uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	msg, err := p.ReceiveData()
	if err != nil {
		return 0, err
	}
	if len(msg) != 4 {
		return 0, errors.New("ot: pipe: invalid uint32 message")
	}
	return int(binary.BigEndian.Uint32(msg)), nil
}
