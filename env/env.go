//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements the global environment for the triple
// generator: configuration, handshake parameters, and the error
// taxonomy.
package env

import (
	"crypto/rand"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"

	"github.com/markkurossi/mascot/field"
)

// Defaults.
const (
	DefaultNumBaseOTs    = 128
	DefaultBatchSize     = 1000
	DefaultAmplification = 3
	DefaultModulus       = field.DefaultModulus
	ParamsVersion        = 1
)

// Config defines the global system configuration for the triple
// generator. Config must not be modified after being passed to any
// module. It is safe for concurrent use by multiple modules as they
// do not modify it.
type Config struct {
	Rand io.Reader
	Log  zerolog.Logger

	// NumParties is the number of parties.
	NumParties int
	// PartyID is the index of this party, 0 <= PartyID < NumParties.
	PartyID int
	// NumBaseOTs is the number of base OTs, the computational
	// security parameter κ.
	NumBaseOTs int
	// NumThreads limits the number of concurrent peer workers. Zero
	// means one worker per peer.
	NumThreads int
	// NumTriples is the number of triples to produce.
	NumTriples int
	// NumBits is the number of GF(2^128) bits to produce.
	NumBits int
	// BatchSize is the number of triples produced per round.
	BatchSize int
	// Amplification is the number of raw triples combined into one
	// amplified triple.
	Amplification int
	// Modulus is the prime field modulus as a hex string.
	Modulus string

	// Passive disables the OT extension correlation check. Test
	// configuration only.
	Passive bool
	// FakeBaseOT replaces the base OTs with an insecure variant. Test
	// configuration only.
	FakeBaseOT bool
}

// GetRandom returns the source of entropy for OT, coin tossing, and
// share sampling.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetNumThreads returns the maximum number of concurrent peer workers.
func (config *Config) GetNumThreads() int {
	if config.NumThreads > 0 {
		return config.NumThreads
	}
	return config.NumParties - 1
}

// Validate fills in default values and checks the configuration.
func (config *Config) Validate() error {
	if config.NumBaseOTs == 0 {
		config.NumBaseOTs = DefaultNumBaseOTs
	}
	if config.BatchSize == 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.Amplification == 0 {
		config.Amplification = DefaultAmplification
	}
	if len(config.Modulus) == 0 {
		config.Modulus = DefaultModulus
	}

	if config.NumParties < 2 {
		return fmt.Errorf("%w: need at least 2 parties, got %d",
			ErrConfig, config.NumParties)
	}
	if config.PartyID < 0 || config.PartyID >= config.NumParties {
		return fmt.Errorf("%w: invalid party ID %d for %d parties",
			ErrConfig, config.PartyID, config.NumParties)
	}
	if config.NumBaseOTs != DefaultNumBaseOTs {
		return fmt.Errorf("%w: unsupported number of base OTs %d",
			ErrConfig, config.NumBaseOTs)
	}
	if config.NumThreads < 0 {
		return fmt.Errorf("%w: invalid number of threads %d",
			ErrConfig, config.NumThreads)
	}
	if config.NumTriples < 0 || config.NumBits < 0 {
		return fmt.Errorf("%w: invalid output count", ErrConfig)
	}
	if config.BatchSize < 0 {
		return fmt.Errorf("%w: invalid batch size %d",
			ErrConfig, config.BatchSize)
	}
	if config.Amplification < 1 {
		return fmt.Errorf("%w: invalid amplification %d",
			ErrConfig, config.Amplification)
	}
	return nil
}

// Params define the configuration values that all parties must agree
// on. They are exchanged in the setup handshake.
type Params struct {
	Version       int    `cbor:"1,keyasint"`
	NumParties    int    `cbor:"2,keyasint"`
	NumBaseOTs    int    `cbor:"3,keyasint"`
	NumTriples    int    `cbor:"4,keyasint"`
	NumBits       int    `cbor:"5,keyasint"`
	BatchSize     int    `cbor:"6,keyasint"`
	Amplification int    `cbor:"7,keyasint"`
	Modulus       string `cbor:"8,keyasint"`
	Passive       bool   `cbor:"9,keyasint"`
	FakeBaseOT    bool   `cbor:"10,keyasint"`
}

// Params returns the handshake parameters of the configuration.
func (config *Config) Params() Params {
	return Params{
		Version:       ParamsVersion,
		NumParties:    config.NumParties,
		NumBaseOTs:    config.NumBaseOTs,
		NumTriples:    config.NumTriples,
		NumBits:       config.NumBits,
		BatchSize:     config.BatchSize,
		Amplification: config.Amplification,
		Modulus:       config.Modulus,
		Passive:       config.Passive,
		FakeBaseOT:    config.FakeBaseOT,
	}
}

// Hello is the setup handshake message. Every party sends its
// parameters; party 0 also sends the session ID.
type Hello struct {
	Params  Params `cbor:"1,keyasint"`
	Session []byte `cbor:"2,keyasint"`
}

// Marshal encodes the handshake message.
func (h Hello) Marshal() ([]byte, error) {
	return cbor.Marshal(h)
}

// UnmarshalHello decodes a handshake message from the data.
func UnmarshalHello(data []byte) (Hello, error) {
	var h Hello
	if err := cbor.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("%w: invalid handshake: %v", ErrConfig, err)
	}
	return h, nil
}

// Match checks that the parameters o match p. The returned error
// names the first mismatching field.
func (p Params) Match(o Params) error {
	pv := reflect.ValueOf(p)
	ov := reflect.ValueOf(o)
	for i := 0; i < pv.NumField(); i++ {
		if pv.Field(i).Interface() != ov.Field(i).Interface() {
			return fmt.Errorf("%w: %s mismatch: %v != %v", ErrConfig,
				pv.Type().Field(i).Name, pv.Field(i).Interface(),
				ov.Field(i).Interface())
		}
	}
	return nil
}
