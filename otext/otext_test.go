//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/env"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
)

func newPair(t *testing.T, opts Options) (*Sender, *Receiver) {
	p0, p1 := ot.NewPipe()

	b0, err := ot.NewBaseOT(p0, K, K, rand.Reader, true)
	require.NoError(t, err)
	b1, err := ot.NewBaseOT(p1, K, K, rand.Reader, true)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		done <- b1.Run(ot.RoleSender, false)
	}()
	require.NoError(t, b0.Run(ot.RoleReceiver, true))
	require.NoError(t, <-done)

	s, err := NewSender(b0, p0, rand.Reader, opts)
	require.NoError(t, err)
	r, err := NewReceiver(b1, p1, rand.Reader, opts)
	require.NoError(t, err)

	return s, r
}

func randomChoices(t *testing.T, n int) *bitmat.BitVector {
	x := bitmat.NewBitVector(n)
	require.NoError(t, x.Randomize(rand.Reader))
	return x
}

func TestExtendedLength(t *testing.T) {
	tests := []struct {
		n, N int
	}{
		{1, 384},
		{128, 384},
		{129, 512},
		{1000, 1280},
		{1024, 1280},
	}
	for _, test := range tests {
		if got := extendedLength(test.n); got != test.N {
			t.Errorf("extendedLength(%d)=%d, expected %d", test.n, got, test.N)
		}
	}
}

func TestExtendCorrelated(t *testing.T) {
	for _, passive := range []bool{false, true} {
		s, r := newPair(t, Options{Passive: passive})

		n := 1000
		x := randomChoices(t, n)

		var tm *bitmat.BitMatrix
		done := make(chan error)
		go func() {
			var err error
			tm, err = r.ExtendCorrelated(x)
			done <- err
		}()
		qm, err := s.ExtendCorrelated(n)
		require.NoError(t, err)
		require.NoError(t, <-done)

		require.Equal(t, 1280, qm.Rows())
		require.Equal(t, K, qm.Cols())
		require.Equal(t, qm.Rows(), tm.Rows())

		delta := s.Delta()
		for j := 0; j < n; j++ {
			expected := tm.RowBlock(j, 0)
			if x.Bit(j) == 1 {
				expected = expected.Xor(delta)
			}
			if qm.RowBlock(j, 0) != expected {
				t.Fatalf("passive=%v: row %d: q != t ^ x*delta", passive, j)
			}
		}
	}
}

func TestExtend(t *testing.T) {
	s, r := newPair(t, Options{})

	for _, n := range []int{1, 200, 777} {
		x := randomChoices(t, n)

		var received []field.Block
		done := make(chan error)
		go func() {
			var err error
			received, err = r.Extend(x)
			done <- err
		}()
		sent, err := s.Extend(n)
		require.NoError(t, err)
		require.NoError(t, <-done)
		require.Len(t, sent, n)
		require.Len(t, received, n)

		for j := 0; j < n; j++ {
			b := x.Bit(j)
			if received[j] != sent[j][b] {
				t.Fatalf("n=%d: OT %d: received wrong message", n, j)
			}
			if received[j] == sent[j][1-b] {
				t.Fatalf("n=%d: OT %d: received both messages", n, j)
			}
		}
	}
}

func TestExtendWide(t *testing.T) {
	s, r := newPair(t, Options{})

	n := 300
	width := 3
	x := randomChoices(t, n)

	var received [][]field.Block
	done := make(chan error)
	go func() {
		var err error
		received, err = r.ExtendWide(x, width)
		done <- err
	}()
	sent, err := s.ExtendWide(n, width)
	require.NoError(t, err)
	require.NoError(t, <-done)

	seen := make(map[field.Block]bool)
	for j := 0; j < n; j++ {
		for k := 0; k < width; k++ {
			require.Equal(t, sent[j][x.Bit(j)][k], received[j][k])
			require.False(t, seen[received[j][k]], "duplicate message")
			seen[received[j][k]] = true
		}
	}
}

func TestCorrelationCheckTamper(t *testing.T) {
	n := 500
	positions := []struct {
		row, col int
	}{
		{5, 3},
		{0, 0},
		{127, 499},
		{64, 250},
		{31, 128},
		{100, 7},
		{77, 383},
		{1, 444},
	}
	for trial, pos := range positions {
		s, r := newPair(t, Options{})
		s.Tamper = func(m *bitmat.BitMatrix) {
			m.Set(pos.row, pos.col, m.Get(pos.row, pos.col)^1)
		}
		x := randomChoices(t, n)

		done := make(chan error)
		go func() {
			_, err := r.ExtendCorrelated(x)
			done <- err
		}()
		_, err := s.ExtendCorrelated(n)
		rerr := <-done

		require.ErrorIs(t, err, ErrCorrelationCheck,
			"trial %d: flip at (%d,%d)", trial, pos.row, pos.col)
		require.ErrorIs(t, rerr, ErrCorrelationCheck,
			"trial %d: flip at (%d,%d)", trial, pos.row, pos.col)
		require.True(t, errors.Is(err, env.ErrSecurity))
		require.Equal(t, env.KindSecurity, env.Classify(rerr))
	}
}

func TestPassiveTamperUndetected(t *testing.T) {
	s, r := newPair(t, Options{Passive: true})
	s.Tamper = func(m *bitmat.BitMatrix) {
		m.Set(5, 3, m.Get(5, 3)^1)
	}

	n := 200
	x := randomChoices(t, n)

	var tm *bitmat.BitMatrix
	done := make(chan error)
	go func() {
		var err error
		tm, err = r.ExtendCorrelated(x)
		done <- err
	}()
	qm, err := s.ExtendCorrelated(n)
	require.NoError(t, err)
	require.NoError(t, <-done)

	expected := tm.RowBlock(3, 0)
	if x.Bit(3) == 1 {
		expected = expected.Xor(s.Delta())
	}
	require.NotEqual(t, expected, qm.RowBlock(3, 0))
}

func TestExtension(t *testing.T) {
	p0, p1 := ot.NewPipe()

	b0, err := ot.NewBaseOT(p0, K, K, rand.Reader, true)
	require.NoError(t, err)
	b1, err := ot.NewBaseOT(p1, K, K, rand.Reader, true)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		done <- b1.Run(ot.RoleBoth, false)
	}()
	require.NoError(t, b0.Run(ot.RoleBoth, true))
	require.NoError(t, <-done)

	e0, err := NewExtension(b0, p0, rand.Reader, true, Options{})
	require.NoError(t, err)
	e1, err := NewExtension(b1, p1, rand.Reader, false, Options{})
	require.NoError(t, err)

	x0 := randomChoices(t, 100)
	x1 := randomChoices(t, 150)

	var sent1 [][2][]field.Block
	var recv1 [][]field.Block
	go func() {
		var err error
		sent1, recv1, err = e1.ExtendWide(x0.Len(), x1, 2)
		done <- err
	}()
	sent0, recv0, err := e0.ExtendWide(x1.Len(), x0, 2)
	require.NoError(t, err)
	require.NoError(t, <-done)

	for j := 0; j < x0.Len(); j++ {
		require.Equal(t, sent1[j][x0.Bit(j)], recv0[j])
	}
	for j := 0; j < x1.Len(); j++ {
		require.Equal(t, sent0[j][x1.Bit(j)], recv1[j])
	}
}

func TestNewSenderRole(t *testing.T) {
	p0, p1 := ot.NewPipe()

	b0, err := ot.NewBaseOT(p0, K, K, rand.Reader, true)
	require.NoError(t, err)
	b1, err := ot.NewBaseOT(p1, K, K, rand.Reader, true)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		done <- b1.Run(ot.RoleReceiver, false)
	}()
	require.NoError(t, b0.Run(ot.RoleSender, true))
	require.NoError(t, <-done)

	_, err = NewSender(b0, p0, rand.Reader, Options{})
	require.Error(t, err)
	_, err = NewReceiver(b1, p1, rand.Reader, Options{})
	require.Error(t, err)
}

func TestHash(t *testing.T) {
	h := NewHash()
	x := field.Block{Lo: 1, Hi: 2}

	a := h.Next(x)
	b := h.Next(x)
	require.NotEqual(t, a, b)
	require.Equal(t, uint64(2), h.Tweak())
	require.Equal(t, a, NewHash().Sum(x, 0))
	require.Equal(t, b, NewHash().Sum(x, 1))
}

func BenchmarkExtend(b *testing.B) {
	p0, p1 := ot.NewPipe()

	b0, _ := ot.NewBaseOT(p0, K, K, rand.Reader, true)
	b1, _ := ot.NewBaseOT(p1, K, K, rand.Reader, true)

	done := make(chan error)
	go func() {
		done <- b1.Run(ot.RoleSender, false)
	}()
	if err := b0.Run(ot.RoleReceiver, true); err != nil {
		b.Fatal(err)
	}
	if err := <-done; err != nil {
		b.Fatal(err)
	}
	s, _ := NewSender(b0, p0, rand.Reader, Options{})
	r, _ := NewReceiver(b1, p1, rand.Reader, Options{})

	n := 1 << 14
	x := bitmat.NewBitVector(n)
	x.Randomize(rand.Reader)

	for b.Loop() {
		go func() {
			_, err := r.Extend(x)
			done <- err
		}()
		if _, err := s.Extend(n); err != nil {
			b.Fatal(err)
		}
		if err := <-done; err != nil {
			b.Fatal(err)
		}
	}
}
