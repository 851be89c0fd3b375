//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package ot

// IO defines the message interface between two peers. Sends are
// buffered until Flush.
type IO interface {
	// SendData sends a message.
	SendData(val []byte) error

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// Flush sends any buffered messages to the peer.
	Flush() error

	// ReceiveData receives a message.
	ReceiveData() ([]byte, error)

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)
}

// Exchange sends data to the peer and returns the peer's data. The
// party with first set sends before receiving and the other party
// receives before sending.
func Exchange(io IO, first bool, data []byte) ([]byte, error) {
	if !first {
		peer, err := io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if err := send(io, data); err != nil {
			return nil, err
		}
		return peer, nil
	}
	if err := send(io, data); err != nil {
		return nil, err
	}
	return io.ReceiveData()
}

func send(io IO, data []byte) error {
	if err := io.SendData(data); err != nil {
		return err
	}
	return io.Flush()
}
