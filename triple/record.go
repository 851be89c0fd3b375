//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triple

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/markkurossi/mascot/field"
)

const (
	// RecordSize is the size of a triple record in bytes: a, aMAC, b,
	// bMAC, c, cMAC, each a 16-byte big-endian field element.
	RecordSize = 6 * 16

	// BitRecordSize is the size of a bit record in bytes: x and xMAC.
	BitRecordSize = 2 * 16
)

// Sink consumes produced triples.
type Sink[E any] interface {
	WriteTriple(t Triple[E]) error
}

// BitSink consumes produced bits.
type BitSink[E any] interface {
	WriteBit(b Share[E]) error
}

// Writer writes triple and bit records to an output stream.
type Writer[E any] struct {
	f     field.Field[E]
	w     *bufio.Writer
	buf   []byte
	count int
}

// NewWriter creates a new record writer. The field elements must
// pack into 16 bytes.
func NewWriter[E any](f field.Field[E], w io.Writer) (*Writer[E], error) {
	if f.Size() != 16 {
		return nil, fmt.Errorf("triple: unsupported element size %d", f.Size())
	}
	return &Writer[E]{
		f:   f,
		w:   bufio.NewWriter(w),
		buf: make([]byte, RecordSize),
	}, nil
}

func (w *Writer[E]) write(shares ...Share[E]) error {
	buf := w.buf[:len(shares)*32]
	for i, s := range shares {
		w.f.Pack(buf[i*32:], s.Value)
		w.f.Pack(buf[i*32+16:], s.MAC)
	}
	_, err := w.w.Write(buf)
	if err != nil {
		return err
	}
	w.count++
	return nil
}

// WriteTriple implements Sink.WriteTriple.
func (w *Writer[E]) WriteTriple(t Triple[E]) error {
	return w.write(t.A, t.B, t.C)
}

// WriteBit implements BitSink.WriteBit.
func (w *Writer[E]) WriteBit(b Share[E]) error {
	return w.write(b)
}

// Count returns the number of records written.
func (w *Writer[E]) Count() int {
	return w.count
}

// Flush writes any buffered records to the underlying writer.
func (w *Writer[E]) Flush() error {
	return w.w.Flush()
}

// Reader reads triple and bit records from an input stream.
type Reader[E any] struct {
	f   field.Field[E]
	r   io.Reader
	buf []byte
}

// NewReader creates a new record reader.
func NewReader[E any](f field.Field[E], r io.Reader) (*Reader[E], error) {
	if f.Size() != 16 {
		return nil, fmt.Errorf("triple: unsupported element size %d", f.Size())
	}
	return &Reader[E]{
		f:   f,
		r:   bufio.NewReader(r),
		buf: make([]byte, RecordSize),
	}, nil
}

func (r *Reader[E]) read(shares []Share[E]) error {
	buf := r.buf[:len(shares)*32]
	_, err := io.ReadFull(r.r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("triple: read: %w", ErrInsufficientMaterial)
		}
		return err
	}
	for i := range shares {
		v, err := r.f.Unpack(buf[i*32:])
		if err != nil {
			return err
		}
		m, err := r.f.Unpack(buf[i*32+16:])
		if err != nil {
			return err
		}
		shares[i] = Share[E]{
			Value: v,
			MAC:   m,
		}
	}
	return nil
}

// ReadTriple reads the next triple. A missing or short trailing
// record returns ErrInsufficientMaterial.
func (r *Reader[E]) ReadTriple() (Triple[E], error) {
	var shares [3]Share[E]
	if err := r.read(shares[:]); err != nil {
		return Triple[E]{}, err
	}
	return Triple[E]{
		A: shares[0],
		B: shares[1],
		C: shares[2],
	}, nil
}

// ReadBit reads the next bit. A missing or short trailing record
// returns ErrInsufficientMaterial.
func (r *Reader[E]) ReadBit() (Share[E], error) {
	var shares [1]Share[E]
	if err := r.read(shares[:]); err != nil {
		return Share[E]{}, err
	}
	return shares[0], nil
}

// Buffer holds produced triples and bits in memory.
type Buffer[E any] struct {
	triples []Triple[E]
	bits    []Share[E]
}

// WriteTriple implements Sink.WriteTriple.
func (b *Buffer[E]) WriteTriple(t Triple[E]) error {
	b.triples = append(b.triples, t)
	return nil
}

// WriteBit implements BitSink.WriteBit.
func (b *Buffer[E]) WriteBit(s Share[E]) error {
	b.bits = append(b.bits, s)
	return nil
}

// Len returns the number of buffered triples.
func (b *Buffer[E]) Len() int {
	return len(b.triples)
}

// NumBits returns the number of buffered bits.
func (b *Buffer[E]) NumBits() int {
	return len(b.bits)
}

// Take removes and returns the n oldest triples.
func (b *Buffer[E]) Take(n int) ([]Triple[E], error) {
	if n < 0 {
		return nil, fmt.Errorf("triple: invalid count %d", n)
	}
	if n > len(b.triples) {
		return nil, fmt.Errorf("triple: take %d of %d: %w",
			n, len(b.triples), ErrInsufficientMaterial)
	}
	result := b.triples[:n:n]
	b.triples = b.triples[n:]
	return result, nil
}

// TakeBits removes and returns the n oldest bits.
func (b *Buffer[E]) TakeBits(n int) ([]Share[E], error) {
	if n < 0 {
		return nil, fmt.Errorf("triple: invalid bit count %d", n)
	}
	if n > len(b.bits) {
		return nil, fmt.Errorf("triple: take %d of %d bits: %w",
			n, len(b.bits), ErrInsufficientMaterial)
	}
	result := b.bits[:n:n]
	b.bits = b.bits[n:]
	return result, nil
}

// Load reads all triples from the reader into the buffer. It
// stops at the end of input and returns the number of triples read.
func (b *Buffer[E]) Load(r *Reader[E]) (int, error) {
	var count int
	for {
		t, err := r.ReadTriple()
		if err != nil {
			if errors.Is(err, ErrInsufficientMaterial) {
				return count, nil
			}
			return count, err
		}
		b.triples = append(b.triples, t)
		count++
	}
}
