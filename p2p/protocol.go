//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements the framed peer connections and the fully
// connected network of parties.
package p2p

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/markkurossi/mascot/ot"
)

var (
	_ ot.IO = &Conn{}

	// ErrMessageSize is returned when a peer announces a message
	// larger than MaxMessageSize.
	ErrMessageSize = errors.New("p2p: message too large")
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024

	// MaxMessageSize is the maximum size of a received message.
	MaxMessageSize = 1 << 30
)

// IOStats contains connection I/O statistics.
type IOStats struct {
	Sent    uint64
	Recvd   uint64
	Flushed uint64
}

// Add returns the sum of the stats.
func (stats IOStats) Add(o IOStats) IOStats {
	return IOStats{
		Sent:    stats.Sent + o.Sent,
		Recvd:   stats.Recvd + o.Recvd,
		Flushed: stats.Flushed + o.Flushed,
	}
}

// Sum returns sum of sent and received bytes.
func (stats IOStats) Sum() uint64 {
	return stats.Sent + stats.Recvd
}

// Conn implements a message connection to one peer. Each message is a
// 32-bit big-endian length followed by the payload. Sent messages are
// collected into write buffers which a writer goroutine drains while
// the caller fills the next buffer. A Conn supports one concurrent
// sender and one concurrent receiver.
type Conn struct {
	conn io.ReadWriter
	r    *bufio.Reader
	hdr  [4]byte
	wbuf []byte

	sent    atomic.Uint64
	recvd   atomic.Uint64
	flushed atomic.Uint64

	free    chan []byte
	pending chan []byte

	m    sync.Mutex
	werr error
}

type countingReader struct {
	r     io.Reader
	count *atomic.Uint64
}

func (cr countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.count.Add(uint64(n))
	return n, err
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn:    conn,
		free:    make(chan []byte, numBuffers),
		pending: make(chan []byte, numBuffers),
	}
	c.r = bufio.NewReaderSize(countingReader{
		r:     conn,
		count: &c.recvd,
	}, readBufSize)

	for i := 1; i < numBuffers; i++ {
		c.free <- make([]byte, 0, writeBufSize)
	}
	c.wbuf = make([]byte, 0, writeBufSize)

	go c.writer()

	return c
}

func (c *Conn) writer() {
	for buf := range c.pending {
		if c.writeErr() == nil {
			if _, err := c.conn.Write(buf); err != nil {
				c.m.Lock()
				c.werr = err
				c.m.Unlock()
			}
		}
		c.free <- buf[:0]
	}
	close(c.free)
}

func (c *Conn) writeErr() error {
	c.m.Lock()
	defer c.m.Unlock()
	return c.werr
}

// Stats returns the connection I/O statistics.
func (c *Conn) Stats() IOStats {
	return IOStats{
		Sent:    c.sent.Load(),
		Recvd:   c.recvd.Load(),
		Flushed: c.flushed.Load(),
	}
}

// Flush hands the buffered messages to the writer. It returns the
// error of any earlier failed write.
func (c *Conn) Flush() error {
	if err := c.writeErr(); err != nil {
		return fmt.Errorf("p2p: write: %w", err)
	}
	if len(c.wbuf) == 0 {
		return nil
	}
	c.sent.Add(uint64(len(c.wbuf)))
	c.flushed.Add(1)

	c.pending <- c.wbuf
	c.wbuf = <-c.free

	return nil
}

func (c *Conn) space(n int) error {
	if cap(c.wbuf)-len(c.wbuf) < n {
		return c.Flush()
	}
	return nil
}

// Close flushes any pending data, waits for the writer to complete,
// and closes the connection.
func (c *Conn) Close() error {
	if err := c.Flush(); err != nil {
		c.Abort()
		return err
	}
	close(c.pending)
	for range c.free {
	}
	err := c.writeErr()
	if cerr := c.Abort(); err == nil {
		err = cerr
	}
	return err
}

// Abort closes the underlying connection without flushing pending
// data. It unblocks any pending reads and writes on both ends.
func (c *Conn) Abort() error {
	closer, ok := c.conn.(io.Closer)
	if ok {
		return closer.Close()
	}
	return nil
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	if err := c.space(4); err != nil {
		return err
	}
	c.wbuf = binary.BigEndian.AppendUint32(c.wbuf, uint32(val))
	return nil
}

// SendData sends a message. Messages larger than the write buffer
// are split over several buffers.
func (c *Conn) SendData(val []byte) error {
	if len(val) > MaxMessageSize {
		return ErrMessageSize
	}
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	for len(val) > 0 {
		if err := c.space(1); err != nil {
			return err
		}
		n := min(len(val), cap(c.wbuf)-len(c.wbuf))
		c.wbuf = append(c.wbuf, val[:n]...)
		val = val[n:]
	}
	return nil
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	if _, err := io.ReadFull(c.r, c.hdr[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(c.hdr[:])), nil
}

// ReceiveData receives a message.
func (c *Conn) ReceiveData() ([]byte, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if n > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageSize, n)
	}
	result := make([]byte, n)
	if _, err := io.ReadFull(c.r, result); err != nil {
		return nil, err
	}
	return result, nil
}
