//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Network implements a fully connected network of parties. Peers is
// indexed by party ID and the entry for the local party is nil.
type Network struct {
	ID       int
	Peers    []*Conn
	listener net.Listener
}

// NumParties returns the number of parties in the network.
func (nw *Network) NumParties() int {
	return len(nw.Peers)
}

// NewPipeNetworks creates an in-memory network of n parties connected
// with pipes.
func NewPipeNetworks(n int) []*Network {
	result := make([]*Network, n)
	for i := range result {
		result[i] = &Network{
			ID:    i,
			Peers: make([]*Conn, n),
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ci, cj := Pipe()
			result[i].Peers[j] = ci
			result[j].Peers[i] = cj
		}
	}
	return result
}

// Connect connects party id to the parties listening at addrs. The
// party listens at addrs[id], accepts connections from the parties
// with higher IDs, and dials the parties with lower IDs.
func Connect(id int, addrs []string, log zerolog.Logger) (*Network, error) {
	if id < 0 || id >= len(addrs) {
		return nil, fmt.Errorf("p2p: invalid party ID %d for %d parties",
			id, len(addrs))
	}
	listener, err := net.Listen("tcp", addrs[id])
	if err != nil {
		return nil, err
	}
	nw := &Network{
		ID:       id,
		Peers:    make([]*Conn, len(addrs)),
		listener: listener,
	}

	accepted := make(chan error)
	go func() {
		accepted <- nw.acceptPeers(len(addrs)-id-1, log)
	}()

	for peer := 0; peer < id; peer++ {
		if err := nw.dialPeer(peer, addrs[peer], log); err != nil {
			nw.Abort()
			return nil, err
		}
	}
	if err := <-accepted; err != nil {
		nw.Abort()
		return nil, err
	}
	return nw, nil
}

func (nw *Network) dialPeer(peer int, addr string, log zerolog.Logger) error {
	const retries = 60

	for attempt := 0; ; attempt++ {
		log.Debug().Int("peer", peer).Str("addr", addr).Msg("connecting")
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			if attempt >= retries {
				return err
			}
			delay := time.Second
			log.Debug().Err(err).Dur("delay", delay).Msg("connect failed")
			<-time.After(delay)
			continue
		}
		conn := NewConn(nc)
		if err := conn.SendUint32(nw.ID); err != nil {
			conn.Close()
			return err
		}
		if err := conn.Flush(); err != nil {
			conn.Close()
			return err
		}
		nw.Peers[peer] = conn
		log.Debug().Int("peer", peer).Msg("connected")
		return nil
	}
}

func (nw *Network) acceptPeers(count int, log zerolog.Logger) error {
	for count > 0 {
		nc, err := nw.listener.Accept()
		if err != nil {
			return err
		}
		conn := NewConn(nc)

		id, err := conn.ReceiveUint32()
		if err != nil {
			conn.Close()
			return err
		}
		if id <= nw.ID || id >= len(nw.Peers) {
			conn.Close()
			return fmt.Errorf("p2p: unexpected peer ID %d", id)
		}
		if nw.Peers[id] != nil {
			log.Warn().Int("peer", id).Msg("peer already connected")
			conn.Close()
			continue
		}
		nw.Peers[id] = conn
		log.Debug().Int("peer", id).Msg("accepted")
		count--
	}
	return nil
}

// ExchangeAll sends data to all peers and returns the data received
// from each party indexed by party ID. The local party's entry is
// data.
func (nw *Network) ExchangeAll(data []byte) ([][]byte, error) {
	result := make([][]byte, len(nw.Peers))
	result[nw.ID] = data

	var g errgroup.Group
	for id, conn := range nw.Peers {
		if conn == nil {
			continue
		}
		g.Go(func() error {
			if err := conn.SendData(data); err != nil {
				return err
			}
			return conn.Flush()
		})
		g.Go(func() error {
			d, err := conn.ReceiveData()
			if err != nil {
				return err
			}
			result[id] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("p2p: exchange: %w", err)
	}
	return result, nil
}

// Stats returns the I/O stats from the network.
func (nw *Network) Stats() IOStats {
	var result IOStats
	for _, conn := range nw.Peers {
		if conn != nil {
			result = result.Add(conn.Stats())
		}
	}
	return result
}

// Close flushes and closes all peer connections.
func (nw *Network) Close() error {
	var errs []error
	for _, conn := range nw.Peers {
		if conn != nil {
			errs = append(errs, conn.Close())
		}
	}
	if nw.listener != nil {
		errs = append(errs, nw.listener.Close())
	}
	return errors.Join(errs...)
}

// Abort closes all peer connections without flushing. It unblocks
// peers waiting for this party.
func (nw *Network) Abort() error {
	var errs []error
	for _, conn := range nw.Peers {
		if conn != nil {
			errs = append(errs, conn.Abort())
		}
	}
	if nw.listener != nil {
		errs = append(errs, nw.listener.Close())
	}
	return errors.Join(errs...)
}
