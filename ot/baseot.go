//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"errors"
	"fmt"
	"io"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
)

// DebugChecks enables BaseOT.Check. Tests enable it; it must stay off
// in production since the check reveals all OT secrets to the peer.
var DebugChecks = false

// ErrBaseOTCheck is returned when the debug check finds an incorrect
// base OT.
var ErrBaseOTCheck = errors.New("ot: base OT check failed")

// BaseOT runs a batch of base oblivious transfers against one peer
// and holds the resulting material. The raw OT messages are used only
// as PRG seeds; the sender and receiver strings are always derived
// from the PRGs.
type BaseOT struct {
	NumOTs int
	Length int

	// Choices are the receiver choice bits.
	Choices *bitmat.BitVector

	// SenderInputs are the sender's two strings per OT.
	SenderInputs [][2]*bitmat.BitVector

	// ReceiverOutputs are the receiver's chosen strings per OT.
	ReceiverOutputs []*bitmat.BitVector

	io           IO
	rand         io.Reader
	newOT        func() OT
	role         Role
	first        bool
	senderPRGs   [][2]*PRG
	receiverPRGs []*PRG
}

// NewBaseOT creates base OT material for numOTs transfers of length
// bits each. If fake is set, the base OTs run the insecure FakeOT.
func NewBaseOT(conn IO, numOTs, length int, rand io.Reader,
	fake bool) (*BaseOT, error) {

	if numOTs <= 0 {
		return nil, fmt.Errorf("ot: invalid number of base OTs: %d", numOTs)
	}
	if length < 128 {
		return nil, fmt.Errorf("ot: string length %d < 128", length)
	}
	b := &BaseOT{
		NumOTs: numOTs,
		Length: length,
		io:     conn,
		rand:   rand,
	}
	if fake {
		b.newOT = func() OT {
			return NewFakeOT()
		}
	} else {
		b.newOT = func() OT {
			return NewCO(rand)
		}
	}
	return b, nil
}

// SetChoices sets the receiver choice bits. Without preset choices,
// Run samples random choices.
func (b *BaseOT) SetChoices(choices *bitmat.BitVector) error {
	if choices.Len() != b.NumOTs {
		return fmt.Errorf("ot: %d choice bits for %d OTs",
			choices.Len(), b.NumOTs)
	}
	b.Choices = choices.Clone()
	return nil
}

// Role returns the role the base OTs were run in.
func (b *BaseOT) Role() Role {
	return b.role
}

// Run executes the base OTs in the role. With RoleBoth, the party
// with first set acts as the sender first; the peer must pass the
// opposite value.
func (b *BaseOT) Run(role Role, first bool) error {
	b.role = role
	b.first = first

	if role == RoleBoth {
		if first {
			if err := b.runSender(); err != nil {
				return err
			}
			if err := b.runReceiver(); err != nil {
				return err
			}
		} else {
			if err := b.runReceiver(); err != nil {
				return err
			}
			if err := b.runSender(); err != nil {
				return err
			}
		}
	} else if role == RoleSender {
		if err := b.runSender(); err != nil {
			return err
		}
	} else {
		if err := b.runReceiver(); err != nil {
			return err
		}
	}
	return b.ExtendLength()
}

func (b *BaseOT) runSender() error {
	seeds := make([][2]field.Block, b.NumOTs)
	for i := range seeds {
		for j := 0; j < 2; j++ {
			seed, err := field.NewBlock(b.rand)
			if err != nil {
				return err
			}
			seeds[i][j] = seed
		}
	}
	ot := b.newOT()
	if err := ot.InitSender(b.io); err != nil {
		return fmt.Errorf("ot: init sender: %w", err)
	}
	if err := ot.Send(seeds); err != nil {
		return fmt.Errorf("ot: send: %w", err)
	}
	b.senderPRGs = make([][2]*PRG, b.NumOTs)
	for i, seed := range seeds {
		b.senderPRGs[i][0] = NewPRG(seed[0])
		b.senderPRGs[i][1] = NewPRG(seed[1])
	}
	return nil
}

func (b *BaseOT) runReceiver() error {
	if b.Choices == nil {
		b.Choices = bitmat.NewBitVector(b.NumOTs)
		if err := b.Choices.Randomize(b.rand); err != nil {
			return err
		}
	}
	ot := b.newOT()
	if err := ot.InitReceiver(b.io); err != nil {
		return fmt.Errorf("ot: init receiver: %w", err)
	}
	seeds, err := ot.Receive(b.Choices)
	if err != nil {
		return fmt.Errorf("ot: receive: %w", err)
	}
	b.receiverPRGs = make([]*PRG, b.NumOTs)
	for i, seed := range seeds {
		b.receiverPRGs[i] = NewPRG(seed)
	}
	return nil
}

// ExtendLength derives fresh sender and receiver strings of Length
// bits from the PRG state. No public-key operations are run.
func (b *BaseOT) ExtendLength() error {
	if b.senderPRGs == nil && b.receiverPRGs == nil {
		return fmt.Errorf("ot: base OTs not run")
	}
	if b.senderPRGs != nil {
		b.SenderInputs = make([][2]*bitmat.BitVector, b.NumOTs)
		for i, prgs := range b.senderPRGs {
			b.SenderInputs[i][0] = prgs[0].Bits(b.Length)
			b.SenderInputs[i][1] = prgs[1].Bits(b.Length)
		}
	}
	if b.receiverPRGs != nil {
		b.ReceiverOutputs = make([]*bitmat.BitVector, b.NumOTs)
		for i, prg := range b.receiverPRGs {
			b.ReceiverOutputs[i] = prg.Bits(b.Length)
		}
	}
	return nil
}

// Check reveals all sender strings to the receiver, which verifies
// that its outputs match its choices. It requires DebugChecks.
func (b *BaseOT) Check() error {
	if !DebugChecks {
		return fmt.Errorf("ot: debug checks disabled")
	}
	switch b.role {
	case RoleSender:
		return b.checkSender()
	case RoleReceiver:
		return b.checkReceiver()
	default:
		if b.first {
			if err := b.checkSender(); err != nil {
				return err
			}
			return b.checkReceiver()
		}
		if err := b.checkReceiver(); err != nil {
			return err
		}
		return b.checkSender()
	}
}

func (b *BaseOT) checkSender() error {
	for _, in := range b.SenderInputs {
		for _, s := range in {
			data, err := s.MarshalBinary()
			if err != nil {
				return err
			}
			if err := b.io.SendData(data); err != nil {
				return err
			}
		}
	}
	return b.io.Flush()
}

func (b *BaseOT) checkReceiver() error {
	var failed error
	for i := 0; i < b.NumOTs; i++ {
		var in [2]bitmat.BitVector
		for j := 0; j < 2; j++ {
			data, err := b.io.ReceiveData()
			if err != nil {
				return err
			}
			if err := in[j].UnmarshalBinary(data); err != nil {
				return err
			}
		}
		if failed == nil && !in[b.Choices.Bit(i)].Equal(b.ReceiverOutputs[i]) {
			failed = fmt.Errorf("%w: OT %d", ErrBaseOTCheck, i)
		}
	}
	return failed
}
