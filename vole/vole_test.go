//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/require"

	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
)

func setup[E any](t testing.TB, f field.Field[E], delta E) (
	*Sender[E], *Receiver[E]) {

	p0, p1 := ot.NewPipe()

	b0, err := ot.NewBaseOT(p0, f.Bits(), 128, rand.Reader, true)
	require.NoError(t, err)
	b1, err := ot.NewBaseOT(p1, f.Bits(), 128, rand.Reader, true)
	require.NoError(t, err)
	require.NoError(t, b1.SetChoices(Choices(f, delta)))

	done := make(chan error)
	go func() {
		done <- b1.Run(ot.RoleReceiver, false)
	}()
	require.NoError(t, b0.Run(ot.RoleSender, true))
	require.NoError(t, <-done)

	s, err := NewSender(f, b0, p0)
	require.NoError(t, err)
	r, err := NewReceiver(f, b1, p1, delta)
	require.NoError(t, err)

	return s, r
}

func testVOLE[E any](t *testing.T, f field.Field[E]) {
	delta, err := f.Random(rand.Reader)
	require.NoError(t, err)

	s, r := setup(t, f, delta)
	require.True(t, f.Equal(delta, r.Key()))

	for _, n := range []int{1, 17, 100} {
		x := make([]E, n)
		for i := range x {
			x[i], err = f.Random(rand.Reader)
			require.NoError(t, err)
		}

		var q []E
		done := make(chan error)
		go func() {
			var err error
			q, err = r.Receive(n)
			done <- err
		}()
		rs, err := s.Input(x)
		require.NoError(t, err)
		require.NoError(t, <-done)
		require.Len(t, rs, n)
		require.Len(t, q, n)

		for j := 0; j < n; j++ {
			expected := f.Add(rs[j], f.Mul(delta, x[j]))
			if !f.Equal(expected, q[j]) {
				t.Fatalf("n=%d: VOLE %d: q != r + delta*x", n, j)
			}
		}
	}
}

func TestVOLEPrime(t *testing.T) {
	f, err := field.NewPrime(field.DefaultModulus)
	require.NoError(t, err)
	testVOLE[*saferith.Nat](t, f)
}

func TestVOLEGF2n(t *testing.T) {
	testVOLE[field.Block](t, field.NewGF2n())
}

func TestChoices(t *testing.T) {
	f, err := field.NewPrime(field.DefaultModulus)
	require.NoError(t, err)

	delta, err := f.Random(rand.Reader)
	require.NoError(t, err)

	choices := Choices[*saferith.Nat](f, delta)
	sum := f.Zero()
	for i := 0; i < choices.Len(); i++ {
		if choices.Bit(i) == 1 {
			sum = f.Add(sum, f.Pow2(i))
		}
	}
	require.True(t, f.Equal(delta, sum))
}

func TestReceiverKeyMismatch(t *testing.T) {
	f := field.NewGF2n()

	p0, p1 := ot.NewPipe()
	b0, err := ot.NewBaseOT(p0, 128, 128, rand.Reader, true)
	require.NoError(t, err)
	b1, err := ot.NewBaseOT(p1, 128, 128, rand.Reader, true)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		done <- b1.Run(ot.RoleReceiver, false)
	}()
	require.NoError(t, b0.Run(ot.RoleSender, true))
	require.NoError(t, <-done)

	delta := b1.Choices.Block(0).Xor(field.Block{Lo: 1})
	_, err = NewReceiver[field.Block](f, b1, p1, delta)
	require.Error(t, err)

	_, err = NewSender[field.Block](f, b1, p1)
	require.Error(t, err)
}

func BenchmarkVOLEPrime(b *testing.B) {
	f, err := field.NewPrime(field.DefaultModulus)
	if err != nil {
		b.Fatal(err)
	}
	delta, _ := f.Random(rand.Reader)
	s, r := setup[*saferith.Nat](b, f, delta)

	n := 256
	x := make([]*saferith.Nat, n)
	for i := range x {
		x[i], _ = f.Random(rand.Reader)
	}
	done := make(chan error)

	for b.Loop() {
		go func() {
			_, err := r.Receive(n)
			done <- err
		}()
		if _, err := s.Input(x); err != nil {
			b.Fatal(err)
		}
		if err := <-done; err != nil {
			b.Fatal(err)
		}
	}
}
