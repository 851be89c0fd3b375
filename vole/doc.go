//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package vole implements a vector oblivious linear evaluation
// (VOLE) with a fixed key over any field.Field. It is used to
// authenticate shares with information-theoretic MACs.
//
// The key holder (Receiver) holds a fixed key Δ and the inputter
// (Sender) holds a vector x[0..n-1]. They obtain correlated values
// r[j] and q[j] satisfying:
//
//	q[j] = r[j] + Δ * x[j]
//
// where the Sender learns only r[j] and the Receiver learns only
// q[j]. Neither party learns anything about the other party's inputs.
//
// The construction runs one base OT per bit of Δ, where the key
// holder's choice bits are the bits of Δ. The base OT strings seed
// PRGs that are expanded into a bit matrix whose 128×128 squares
// fold into the per-element field values.
//
// Typical usage:
//
//	sender, err := vole.NewSender(f, base, conn)
//	if err != nil { ... }
//	rs, err := sender.Input(xs)
//
//	receiver, err := vole.NewReceiver(f, base, conn, delta)
//	if err != nil { ... }
//	qs, err := receiver.Receive(len(xs))
package vole
