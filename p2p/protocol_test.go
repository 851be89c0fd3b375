//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var messageSizes = []int{
	0,
	1,
	1000,
	writeBufSize - 4,
	writeBufSize,
	2 * 1024 * 1024,
	16 * 1024 * 1024,
}

func message(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

func TestProtocol(t *testing.T) {
	cw, c := Pipe()

	done := make(chan error)
	go func() {
		for i, size := range messageSizes {
			if err := cw.SendUint32(i); err != nil {
				done <- err
				return
			}
			if err := cw.SendData(message(size)); err != nil {
				done <- err
				return
			}
		}
		done <- cw.Flush()
	}()

	var total uint64
	for i, size := range messageSizes {
		v, err := c.ReceiveUint32()
		require.NoError(t, err)
		require.Equal(t, i, v)

		data, err := c.ReceiveData()
		require.NoError(t, err)
		require.Equal(t, message(size), data, "message %d", i)
		total += uint64(8 + size)
	}
	require.NoError(t, <-done)

	require.NoError(t, cw.Close())
	require.Equal(t, total, cw.Stats().Sent)
	require.Equal(t, total, c.Stats().Recvd)
	require.NotZero(t, cw.Stats().Flushed)
	require.NoError(t, c.Abort())
}

func TestAbort(t *testing.T) {
	c0, c1 := Pipe()

	done := make(chan error)
	go func() {
		_, err := c1.ReceiveData()
		done <- err
	}()
	require.NoError(t, c0.Abort())
	require.Error(t, <-done)

	_, err := c0.ReceiveData()
	require.Error(t, err)
}

func TestMessageSize(t *testing.T) {
	c0, c1 := Pipe()
	defer c0.Abort()

	go func() {
		c0.SendUint32(MaxMessageSize + 1)
		c0.Flush()
	}()
	_, err := c1.ReceiveData()
	require.ErrorIs(t, err, ErrMessageSize)
}

func TestIOStats(t *testing.T) {
	a := IOStats{Sent: 1, Recvd: 2, Flushed: 3}
	b := IOStats{Sent: 10, Recvd: 20, Flushed: 30}
	sum := a.Add(b)
	require.Equal(t, IOStats{Sent: 11, Recvd: 22, Flushed: 33}, sum)
	require.Equal(t, uint64(33), sum.Sum())
}
