//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func testExchange(t *testing.T, nws []*Network, size int) {
	results := make([][][]byte, len(nws))

	var g errgroup.Group
	for i, nw := range nws {
		g.Go(func() error {
			data := make([]byte, size)
			for j := range data {
				data[j] = byte(i)
			}
			r, err := nw.ExchangeAll(data)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("ExchangeAll: %v", err)
	}
	for i, r := range results {
		if len(r) != len(nws) {
			t.Fatalf("party %d: got %d results", i, len(r))
		}
		for j, d := range r {
			if len(d) != size {
				t.Fatalf("party %d: data from %d: len %d", i, j, len(d))
			}
			for _, b := range d {
				if b != byte(j) {
					t.Fatalf("party %d: invalid data from %d", i, j)
				}
			}
		}
	}
}

func TestExchangeAll(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		nws := NewPipeNetworks(n)
		testExchange(t, nws, 100)
		// Larger than the write buffer and the read buffer.
		testExchange(t, nws, 3*1024*1024)
		for _, nw := range nws {
			if nw.Stats().Sum() == 0 {
				t.Errorf("party %d: no I/O stats", nw.ID)
			}
		}
	}
}

func TestConnect(t *testing.T) {
	addrs := []string{
		"127.0.0.1:18731",
		"127.0.0.1:18732",
		"127.0.0.1:18733",
	}
	nws := make([]*Network, len(addrs))

	var g errgroup.Group
	for i := range addrs {
		g.Go(func() error {
			nw, err := Connect(i, addrs, zerolog.Nop())
			if err != nil {
				return fmt.Errorf("party %d: %w", i, err)
			}
			nws[i] = nw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	testExchange(t, nws, 1000)

	for _, nw := range nws {
		nw.Abort()
	}
}
