//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bitmat

import (
	"fmt"
	"io"

	"github.com/markkurossi/mascot/field"
)

// BitMatrix implements a bit matrix as a grid of 128×128 squares. The
// row and column counts are multiples of 128. Square (rb, cb) holds
// rows 128rb... and columns 128cb...
type BitMatrix struct {
	rowBlocks int
	colBlocks int
	Squares   []Square128
}

// NewBitMatrix creates a zero matrix with the given dimensions.
func NewBitMatrix(rows, cols int) *BitMatrix {
	if rows%128 != 0 || cols%128 != 0 || rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("bitmat: invalid dimensions %d×%d", rows, cols))
	}
	return &BitMatrix{
		rowBlocks: rows / 128,
		colBlocks: cols / 128,
		Squares:   make([]Square128, rows/128*cols/128),
	}
}

// Rows returns the number of rows.
func (m *BitMatrix) Rows() int {
	return m.rowBlocks * 128
}

// Cols returns the number of columns.
func (m *BitMatrix) Cols() int {
	return m.colBlocks * 128
}

// Square returns the square at block row rb and block column cb.
func (m *BitMatrix) Square(rb, cb int) *Square128 {
	return &m.Squares[rb*m.colBlocks+cb]
}

// Get returns the bit at row i, column j.
func (m *BitMatrix) Get(i, j int) uint {
	return m.Square(i/128, j/128).Get(i%128, j%128)
}

// Set sets the bit at row i, column j.
func (m *BitMatrix) Set(i, j int, v uint) {
	m.Square(i/128, j/128).Set(i%128, j%128, v)
}

// RowBlock returns the 128-bit block cb of row i.
func (m *BitMatrix) RowBlock(i, cb int) field.Block {
	return m.Square(i/128, cb).Rows[i%128]
}

// SetRowBlock sets the 128-bit block cb of row i.
func (m *BitMatrix) SetRowBlock(i, cb int, b field.Block) {
	m.Square(i/128, cb).Rows[i%128] = b
}

// RowBytes returns row i as little-endian bytes.
func (m *BitMatrix) RowBytes(i int) []byte {
	buf := make([]byte, m.colBlocks*16)
	for cb := 0; cb < m.colBlocks; cb++ {
		m.RowBlock(i, cb).PutBytes(buf[cb*16:])
	}
	return buf
}

// SetRowBytes sets row i from little-endian bytes.
func (m *BitMatrix) SetRowBytes(i int, data []byte) error {
	if len(data) != m.colBlocks*16 {
		return fmt.Errorf("bitmat: invalid row length %d, expected %d",
			len(data), m.colBlocks*16)
	}
	for cb := 0; cb < m.colBlocks; cb++ {
		m.SetRowBlock(i, cb, field.BlockFromBytes(data[cb*16:]))
	}
	return nil
}

// XorRow XORs the bit vector v into row i.
func (m *BitMatrix) XorRow(i int, v *BitVector) {
	if v.Len() != m.Cols() {
		panic(fmt.Sprintf("bitmat: row length mismatch: %d != %d",
			v.Len(), m.Cols()))
	}
	for cb := 0; cb < m.colBlocks; cb++ {
		sq := m.Square(i/128, cb)
		sq.Rows[i%128] = sq.Rows[i%128].Xor(v.Block(cb))
	}
}

// Equal tests if the matrices have the same dimensions and contents.
func (m *BitMatrix) Equal(o *BitMatrix) bool {
	if m.rowBlocks != o.rowBlocks || m.colBlocks != o.colBlocks {
		return false
	}
	for i := range m.Squares {
		if m.Squares[i] != o.Squares[i] {
			return false
		}
	}
	return true
}

// Randomize fills the matrix with random bits.
func (m *BitMatrix) Randomize(rand io.Reader) error {
	for i := range m.Squares {
		if err := m.Squares[i].Randomize(rand); err != nil {
			return err
		}
	}
	return nil
}

// Transpose returns the transpose of the matrix.
func (m *BitMatrix) Transpose() *BitMatrix {
	result := &BitMatrix{
		rowBlocks: m.colBlocks,
		colBlocks: m.rowBlocks,
		Squares:   make([]Square128, len(m.Squares)),
	}
	for rb := 0; rb < m.rowBlocks; rb++ {
		for cb := 0; cb < m.colBlocks; cb++ {
			sq := result.Square(cb, rb)
			*sq = *m.Square(rb, cb)
			sq.Transpose()
		}
	}
	return result
}

// TransposeInPlace transposes a matrix consisting of a single block
// row or a single block column without copying.
func (m *BitMatrix) TransposeInPlace() {
	if m.rowBlocks != 1 && m.colBlocks != 1 {
		panic("bitmat: in-place transpose of a general matrix")
	}
	m.Slice(0, len(m.Squares)).Transpose()
	m.rowBlocks, m.colBlocks = m.colBlocks, m.rowBlocks
}

// Slice returns the contiguous squares [start, end) of the matrix.
func (m *BitMatrix) Slice(start, end int) *Slice {
	if start < 0 || end > len(m.Squares) || start > end {
		panic(fmt.Sprintf("bitmat: invalid slice [%d,%d) of %d",
			start, end, len(m.Squares)))
	}
	return &Slice{
		m:     m,
		start: start,
		end:   end,
	}
}

// ReduceSquares folds every square of the matrix into one field
// element with FoldSquare.
func ReduceSquares[E any](f field.Field[E], m *BitMatrix) []E {
	result := make([]E, len(m.Squares))
	for i := range m.Squares {
		result[i] = FoldSquare(f, &m.Squares[i])
	}
	return result
}

// Slice implements a contiguous range of squares within a matrix. The
// slice shares storage with its matrix.
type Slice struct {
	m     *BitMatrix
	start int
	end   int
}

// Len returns the number of squares in the slice.
func (s *Slice) Len() int {
	return s.end - s.start
}

// Squares returns the squares of the slice.
func (s *Slice) Squares() []Square128 {
	return s.m.Squares[s.start:s.end]
}

// Transpose transposes every square of the slice in place.
func (s *Slice) Transpose() {
	squares := s.Squares()
	for i := range squares {
		squares[i].Transpose()
	}
}

// Xor XORs the squares of o into s. The slices must have equal
// lengths.
func (s *Slice) Xor(o *Slice) {
	if s.Len() != o.Len() {
		panic(fmt.Sprintf("bitmat: slice length mismatch: %d != %d",
			s.Len(), o.Len()))
	}
	dst := s.Squares()
	src := o.Squares()
	for i := range dst {
		dst[i].Xor(&src[i])
	}
}
