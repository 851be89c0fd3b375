//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPrimeArithmetic(t *testing.T) {
	f, err := NewPrime(DefaultModulus)
	require.NoError(t, err)
	require.Equal(t, 128, f.Bits())
	require.Equal(t, 16, f.Size())

	p, _ := new(big.Int).SetString(DefaultModulus, 16)

	for i := 0; i < 100; i++ {
		a, err := f.Random(rand.Reader)
		require.NoError(t, err)
		b, err := f.Random(rand.Reader)
		require.NoError(t, err)

		ab := new(big.Int).Mul(a.Big(), b.Big())
		ab.Mod(ab, p)
		require.Equal(t, 0, ab.Cmp(f.Mul(a, b).Big()), "mul")

		sum := new(big.Int).Add(a.Big(), b.Big())
		sum.Mod(sum, p)
		require.Equal(t, 0, sum.Cmp(f.Add(a, b).Big()), "add")

		require.True(t, f.Equal(f.Add(f.Sub(a, b), b), a), "sub")
		require.True(t, f.Equal(f.Add(a, f.Neg(a)), f.Zero()), "neg")
		require.True(t, f.Equal(f.Double(a), f.Mul(f.Pow2(1), a)), "double")
	}
}

func TestPrimeBits(t *testing.T) {
	f, err := NewPrime(DefaultModulus)
	require.NoError(t, err)

	a, err := f.Random(rand.Reader)
	require.NoError(t, err)

	// a = sum 2^i bit_i
	acc := f.Zero()
	for i := 0; i < f.Bits(); i++ {
		if f.Bit(a, i) == 1 {
			acc = f.Add(acc, f.Pow2(i))
		}
	}
	require.True(t, f.Equal(acc, a))
}

func TestPrimePack(t *testing.T) {
	f, err := NewPrime(DefaultModulus)
	require.NoError(t, err)

	elems := make([]*saferith.Nat, 10)
	for i := range elems {
		elems[i], err = f.Random(rand.Reader)
		require.NoError(t, err)
	}
	data := PackAll[*saferith.Nat](f, elems)
	got, err := UnpackAll[*saferith.Nat](f, data, len(elems))
	require.NoError(t, err)
	for i := range elems {
		require.True(t, f.Equal(elems[i], got[i]))
	}

	// p itself is not canonical.
	buf := make([]byte, 16)
	f.Modulus().Nat().FillBytes(buf)
	_, err = f.Unpack(buf)
	require.ErrorIs(t, err, ErrNonCanonical)
}

func TestPrimeInvalidModulus(t *testing.T) {
	_, err := NewPrime("100")
	require.Error(t, err)
	_, err = NewPrime("1" + DefaultModulus)
	require.Error(t, err)
	_, err = NewPrime("xyz")
	require.Error(t, err)
}

func TestPrimeConcurrent(t *testing.T) {
	f, err := NewPrime(DefaultModulus)
	require.NoError(t, err)

	shared := make([]*saferith.Nat, 8)
	for i := range shared {
		shared[i], err = f.Random(rand.Reader)
		require.NoError(t, err)
	}
	data := PackAll[*saferith.Nat](f, shared)

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for round := 0; round < 50; round++ {
				got, err := UnpackAll[*saferith.Nat](f, data, len(shared))
				if err != nil {
					return err
				}
				for i, e := range shared {
					if !f.Equal(got[i], e) {
						return fmt.Errorf("element %d: unpack mismatch", i)
					}
					// e·2^i - 2^i = 2^i·(e-1)
					l := f.Sub(f.Mul(e, f.Pow2(i)), f.Pow2(i))
					r := f.Mul(f.Pow2(i), f.Sub(e, f.One()))
					if !f.Equal(l, r) {
						return fmt.Errorf("element %d: mul mismatch", i)
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
