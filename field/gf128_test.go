//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"
)

func mul128Ref(a, b Block) (lo, hi Block) {
	var r [256]bool

	for i := 0; i < 128; i++ {
		if a.Bit(i) == 0 {
			continue
		}
		for j := 0; j < 128; j++ {
			if b.Bit(j) == 1 {
				r[i+j] = !r[i+j]
			}
		}
	}
	for i := 0; i < 128; i++ {
		if r[i] {
			lo.SetBit(i, 1)
		}
		if r[i+128] {
			hi.SetBit(i, 1)
		}
	}
	return
}

// reduceRef reduces bit by bit from the top.
func reduceRef(lo, hi Block) Block {
	var r [256]bool
	for i := 0; i < 128; i++ {
		r[i] = lo.Bit(i) == 1
		r[i+128] = hi.Bit(i) == 1
	}
	for i := 255; i >= 128; i-- {
		if !r[i] {
			continue
		}
		r[i] = false
		r[i-128] = !r[i-128]
		r[i-128+1] = !r[i-128+1]
		r[i-128+2] = !r[i-128+2]
		r[i-128+7] = !r[i-128+7]
	}
	var result Block
	for i := 0; i < 128; i++ {
		if r[i] {
			result.SetBit(i, 1)
		}
	}
	return result
}

func TestMul128Basic(t *testing.T) {
	zero := Block{0, 0}
	one := Block{1, 0}

	lo, hi := Mul128(zero, Block{0xdeadbeef, 0x12345678})
	if lo != zero || hi != zero {
		t.Fatal("0*x != 0")
	}

	x := Block{0xabcdef, 0x1234}
	lo, hi = Mul128(one, x)
	if lo != x || hi != zero {
		t.Fatal("1*x != x")
	}

	a := Block{2, 0}
	lo, hi = Mul128(a, a)
	if lo.Lo != 4 || lo.Hi != 0 || hi != zero {
		t.Fatal("x*x != x^2")
	}
}

func TestMul128Cross(t *testing.T) {
	// x^63 * x^63 = x^126
	a := Block{Lo: 1 << 63}

	lo, hi := Mul128(a, a)

	expLo := Block{Hi: 1 << 62}
	if lo != expLo || hi != (Block{}) {
		t.Fatalf("got lo=%v hi=%v, expected lo=%v", lo, hi, expLo)
	}
}

func TestMul128Random(t *testing.T) {
	rng := mrand.New(mrand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := Block{rng.Uint64(), rng.Uint64()}
		b := Block{rng.Uint64(), rng.Uint64()}

		lo1, hi1 := Mul128(a, b)
		lo2, hi2 := mul128Ref(a, b)
		if lo1 != lo2 || hi1 != hi2 {
			t.Fatalf("mismatch at %d: %v*%v", i, a, b)
		}
	}
}

func TestReduce(t *testing.T) {
	rng := mrand.New(mrand.NewSource(2))

	// x^128 = x^7 + x^2 + x + 1
	if r := Reduce(Block{}, Block{Lo: 1}); r != (Block{Lo: 0x87}) {
		t.Fatalf("x^128 reduced to %v", r)
	}
	for i := 0; i < 1000; i++ {
		lo := Block{rng.Uint64(), rng.Uint64()}
		hi := Block{rng.Uint64(), rng.Uint64()}
		if Reduce(lo, hi) != reduceRef(lo, hi) {
			t.Fatalf("reduce mismatch: %v %v", lo, hi)
		}
	}
}

func TestInnerProduct(t *testing.T) {
	f := NewGF2n()
	rng := mrand.New(mrand.NewSource(3))

	a := make([]Block, 100)
	b := make([]Block, 100)
	var expected Block
	for i := range a {
		a[i] = Block{rng.Uint64(), rng.Uint64()}
		b[i] = Block{rng.Uint64(), rng.Uint64()}
		expected = f.Add(expected, f.Mul(a[i], b[i]))
	}
	if got := Reduce(InnerProduct(a, b)); got != expected {
		t.Fatalf("InnerProduct: got %v, expected %v", got, expected)
	}
}

func TestGF2nSqrt(t *testing.T) {
	f := NewGF2n()
	for i := 0; i < 10; i++ {
		a, err := f.Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		if r := f.Sqrt(f.Square(a)); r != a {
			t.Fatalf("sqrt(a^2) != a: %v != %v", r, a)
		}
		// Frobenius is linear.
		b, _ := f.Random(rand.Reader)
		if f.Sqrt(f.Add(a, b)) != f.Add(f.Sqrt(a), f.Sqrt(b)) {
			t.Fatalf("sqrt not linear")
		}
	}
}

func TestGF2nFieldLaws(t *testing.T) {
	f := NewGF2n()
	rng := mrand.New(mrand.NewSource(4))
	for i := 0; i < 100; i++ {
		a := Block{rng.Uint64(), rng.Uint64()}
		b := Block{rng.Uint64(), rng.Uint64()}
		c := Block{rng.Uint64(), rng.Uint64()}

		if f.Mul(a, b) != f.Mul(b, a) {
			t.Fatal("mul not commutative")
		}
		if f.Mul(a, f.Add(b, c)) != f.Add(f.Mul(a, b), f.Mul(a, c)) {
			t.Fatal("mul not distributive")
		}
		if f.Mul(f.Mul(a, b), c) != f.Mul(a, f.Mul(b, c)) {
			t.Fatal("mul not associative")
		}
		if f.Double(a) != f.Mul(f.Pow2(1), a) {
			t.Fatalf("Double(%v) != x*%v", a, a)
		}
	}
}

func BenchmarkMul128(b *testing.B) {
	x := Block{0x0123456789abcdef, 0xfedcba9876543210}
	y := Block{0xdeadbeefcafebabe, 0x0f1e2d3c4b5a6978}
	for b.Loop() {
		x, _ = Mul128(x, y)
	}
}
