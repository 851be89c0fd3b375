//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	config := &Config{
		NumParties: 3,
		PartyID:    2,
	}
	require.NoError(t, config.Validate())
	require.Equal(t, DefaultNumBaseOTs, config.NumBaseOTs)
	require.Equal(t, DefaultBatchSize, config.BatchSize)
	require.Equal(t, DefaultAmplification, config.Amplification)
	require.Equal(t, DefaultModulus, config.Modulus)
	require.Equal(t, 2, config.GetNumThreads())
	require.NotNil(t, config.GetRandom())

	tests := []Config{
		{NumParties: 1},
		{NumParties: 2, PartyID: 2},
		{NumParties: 2, PartyID: -1},
		{NumParties: 2, NumBaseOTs: 64},
		{NumParties: 2, NumThreads: -1},
		{NumParties: 2, NumTriples: -5},
		{NumParties: 2, Amplification: -1},
	}
	for idx, test := range tests {
		err := test.Validate()
		require.ErrorIs(t, err, ErrConfig, "test %d", idx)
		require.Equal(t, KindConfig, Classify(err))
	}
}

func TestParams(t *testing.T) {
	config := &Config{
		NumParties: 2,
		NumTriples: 1000,
		Passive:    true,
	}
	require.NoError(t, config.Validate())

	p := config.Params()
	data, err := Hello{Params: p, Session: []byte{1, 2, 3}}.Marshal()
	require.NoError(t, err)

	hello, err := UnmarshalHello(data)
	require.NoError(t, err)
	require.Equal(t, p, hello.Params)
	require.Equal(t, []byte{1, 2, 3}, hello.Session)
	require.NoError(t, p.Match(hello.Params))

	other := p
	other.Passive = false
	err = p.Match(other)
	require.ErrorIs(t, err, ErrConfig)
	require.Contains(t, err.Error(), "Passive")

	other = p
	other.Modulus = "ff"
	require.ErrorIs(t, p.Match(other), ErrConfig)

	_, err = UnmarshalHello([]byte{0xff, 0x00})
	require.ErrorIs(t, err, ErrConfig)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind ErrorKind
	}{
		{nil, KindNone},
		{io.EOF, KindTransport},
		{fmt.Errorf("otext: %w", ErrSecurity), KindSecurity},
		{fmt.Errorf("take: %w", ErrInsufficientMaterial), KindResource},
		{ErrConfig, KindConfig},
		{errors.Join(io.ErrUnexpectedEOF, ErrSecurity), KindSecurity},
	}
	for _, test := range tests {
		if got := Classify(test.err); got != test.kind {
			t.Errorf("Classify(%v)=%v, expected %v", test.err, got, test.kind)
		}
	}
	require.Equal(t, "security", KindSecurity.String())
}
