//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

// Mul128 computes the carry-less product of a and b. It returns the
// 256-bit result as the low and high 128-bit halves.
func Mul128(a, b Block) (lo, hi Block) {
	p00lo, p00hi := clmul64(a.Lo, b.Lo)
	p01lo, p01hi := clmul64(a.Lo, b.Hi)
	p10lo, p10hi := clmul64(a.Hi, b.Lo)
	p11lo, p11hi := clmul64(a.Hi, b.Hi)

	midLo := p01lo ^ p10lo
	midHi := p01hi ^ p10hi

	lo.Lo = p00lo
	lo.Hi = p00hi ^ midLo

	hi.Lo = midHi ^ p11lo
	hi.Hi = p11hi

	return
}

// Reduce reduces the double-width value lo + hi·x^128 modulo
// x^128 + x^7 + x^2 + x + 1.
func Reduce(lo, hi Block) Block {
	// x^128 = x^7 + x^2 + x + 1
	r := lo.Xor(hi)
	r = r.Xor(shl(hi, 7))
	r = r.Xor(shl(hi, 2))
	r = r.Xor(shl(hi, 1))

	// Bits shifted out above x^127 fold once more; they fit in a word.
	ov := hi.Hi>>57 ^ hi.Hi>>62 ^ hi.Hi>>63
	r.Lo ^= ov ^ ov<<7 ^ ov<<2 ^ ov<<1

	return r
}

func shl(b Block, s uint) Block {
	return Block{
		Lo: b.Lo << s,
		Hi: b.Hi<<s | b.Lo>>(64-s),
	}
}

// InnerProduct computes the GF(2^128) inner product of vectors a and
// b without modular reduction. It returns the 256-bit result as two
// 128-bit blocks.
func InnerProduct(a, b []Block) (Block, Block) {
	var r1, r2 Block

	for i := range a {
		lo, hi := Mul128(a[i], b[i])
		r1 = r1.Xor(lo)
		r2 = r2.Xor(hi)
	}
	return r1, r2
}

func clmul64(a, b uint64) (lo, hi uint64) {
	for i := 0; i < 64; i++ {
		if (b>>i)&1 != 0 {
			if i == 0 {
				lo ^= a
			} else {
				lo ^= a << i
				hi ^= a >> (64 - i)
			}
		}
	}
	return
}
