//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

// Package ot implements base oblivious transfer protocols.
package ot

import (
	"fmt"

	"github.com/markkurossi/mascot/bitmat"
	"github.com/markkurossi/mascot/field"
)

// OT defines the base 1-out-of-2 oblivious transfer protocol. The
// sender calls Send with a pair of 128-bit messages for each
// transfer. The receiver calls Receive with one choice bit per
// transfer and learns the chosen messages. The higher level protocol
// must ensure that the number of pairs and choice bits match.
type OT interface {
	// InitSender initializes the OT sender.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver.
	InitReceiver(io IO) error

	// Send transfers the message pairs.
	Send(messages [][2]field.Block) error

	// Receive returns the messages selected by the choice bits.
	Receive(choices *bitmat.BitVector) ([]field.Block, error)
}

// Role defines the OT role(s) a party runs against its peer.
type Role int

// OT roles.
const (
	RoleSender Role = iota
	RoleReceiver
	RoleBoth
)

var roleNames = map[Role]string{
	RoleSender:   "sender",
	RoleReceiver: "receiver",
	RoleBoth:     "both",
}

func (r Role) String() string {
	name, ok := roleNames[r]
	if ok {
		return name
	}
	return fmt.Sprintf("{Role %d}", int(r))
}

// Sends tests if the role includes the sender side.
func (r Role) Sends() bool {
	return r == RoleSender || r == RoleBoth
}

// Receives tests if the role includes the receiver side.
func (r Role) Receives() bool {
	return r == RoleReceiver || r == RoleBoth
}
