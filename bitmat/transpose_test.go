//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bitmat

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/markkurossi/mascot/field"
)

var transposers = []BlockTransposer{
	ByteTransposer,
	RecursiveTransposer,
}

func randomRows(t testing.TB, rows *[128]field.Block) {
	var sq Square128
	if err := sq.Randomize(rand.Reader); err != nil {
		t.Fatal(err)
	}
	*rows = sq.Rows
}

func TestTranspose8(t *testing.T) {
	rng := mrand.New(mrand.NewSource(1))
	for i := 0; i < 1000; i++ {
		x := rng.Uint64()
		y := transpose8(x)
		for r := 0; r < 8; r++ {
			for c := 0; c < 8; c++ {
				a := (x >> (8*r + c)) & 1
				b := (y >> (8*c + r)) & 1
				if a != b {
					t.Fatalf("transpose8(%x)=%x: (%d,%d)", x, y, r, c)
				}
			}
		}
	}
}

func TestTransposersAgainstNaive(t *testing.T) {
	for _, tr := range transposers {
		for i := 0; i < 20; i++ {
			var rows, expected [128]field.Block
			randomRows(t, &rows)
			expected = rows
			NaiveTransposer.TransposeBlock(&expected)

			got := rows
			tr.TransposeBlock(&got)
			if got != expected {
				t.Fatalf("%s: transpose mismatch", tr.Name())
			}
			tr.TransposeBlock(&got)
			if got != rows {
				t.Fatalf("%s: transpose not an involution", tr.Name())
			}
		}
	}
}

func TestTransposeIdentity(t *testing.T) {
	for _, tr := range transposers {
		var rows [128]field.Block
		for i := range rows {
			rows[i].SetBit(i, 1)
		}
		id := rows
		tr.TransposeBlock(&rows)
		if rows != id {
			t.Fatalf("%s: identity not preserved", tr.Name())
		}

		// Single bit at (3, 100) moves to (100, 3).
		rows = [128]field.Block{}
		rows[3].SetBit(100, 1)
		tr.TransposeBlock(&rows)
		for r := range rows {
			for c := 0; c < 128; c++ {
				v := rows[r].Bit(c)
				if (r == 100 && c == 3) != (v == 1) {
					t.Fatalf("%s: unexpected bit at (%d,%d)", tr.Name(), r, c)
				}
			}
		}
	}
}

func BenchmarkTranspose(b *testing.B) {
	all := append([]BlockTransposer{NaiveTransposer}, transposers...)
	for _, tr := range all {
		b.Run(tr.Name(), func(b *testing.B) {
			var rows [128]field.Block
			randomRows(b, &rows)
			for b.Loop() {
				tr.TransposeBlock(&rows)
			}
		})
	}
}
