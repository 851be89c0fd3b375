//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triple

import (
	"fmt"

	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/ot"
	"github.com/markkurossi/mascot/vole"
)

// Authenticator computes MAC share contributions against one peer.
// The local party inputs its value shares to the peer's key and
// receives the peer's value shares under the local key.
type Authenticator[E any] struct {
	f        field.Field[E]
	first    bool
	sender   *vole.Sender[E]
	receiver *vole.Receiver[E]
}

// NewAuthenticator creates an authenticator from base OTs run with
// ot.RoleBoth where the local receiver choices are the bits of the
// MAC key share alpha.
func NewAuthenticator[E any](f field.Field[E], base *ot.BaseOT,
	conn ot.IO, first bool, alpha E) (*Authenticator[E], error) {

	sender, err := vole.NewSender(f, base, conn)
	if err != nil {
		return nil, err
	}
	receiver, err := vole.NewReceiver(f, base, conn, alpha)
	if err != nil {
		return nil, err
	}
	return &Authenticator[E]{
		f:        f,
		first:    first,
		sender:   sender,
		receiver: receiver,
	}, nil
}

// Authenticate runs VOLE in both directions for the value shares x.
// It returns the local MAC share contributions q_j − r_j where q_j
// is received under the local key and r_j is the local mask for the
// peer's key.
func (a *Authenticator[E]) Authenticate(x []E) ([]E, error) {
	var r, q []E
	var err error

	if a.first {
		r, err = a.sender.Input(x)
		if err == nil {
			q, err = a.receiver.Receive(len(x))
		}
	} else {
		q, err = a.receiver.Receive(len(x))
		if err == nil {
			r, err = a.sender.Input(x)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	result := make([]E, len(x))
	for j := range result {
		result[j] = a.f.Sub(q[j], r[j])
	}
	return result, nil
}
