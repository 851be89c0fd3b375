//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Triplegen generates authenticated multiplication triples and random
// bits with the parties listed in the -addrs flag. Each party runs
// one triplegen process with its own -id and writes its shares into
// the -o file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/cronokirby/saferith"
	"github.com/rs/zerolog"

	"github.com/markkurossi/mascot/env"
	"github.com/markkurossi/mascot/field"
	"github.com/markkurossi/mascot/p2p"
	"github.com/markkurossi/mascot/triple"
)

func main() {
	numParties := flag.Int("parties", 2, "number of parties")
	id := flag.Int("id", 0, "party ID")
	addrs := flag.String("addrs", "127.0.0.1:8080,127.0.0.1:8081",
		"comma-separated party addresses")
	numTriples := flag.Int("triples", 1000, "number of triples")
	numBits := flag.Int("bits", 0, "number of GF(2^128) bits")
	batch := flag.Int("batch", env.DefaultBatchSize, "triples per round")
	threads := flag.Int("threads", 0, "concurrent peer workers")
	k := flag.Int("k", env.DefaultNumBaseOTs, "number of base OTs")
	tau := flag.Int("tau", env.DefaultAmplification, "amplification")
	passive := flag.Bool("passive", false, "skip OT extension check (insecure)")
	fakeOT := flag.Bool("fake-ot", false, "use fake base OTs (insecure)")
	output := flag.String("o", "", "triple output file")
	bitOutput := flag.String("ob", "", "bit output file")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(level).
		With().Timestamp().Logger()

	config := &env.Config{
		Log:           logger,
		NumParties:    *numParties,
		PartyID:       *id,
		NumBaseOTs:    *k,
		NumThreads:    *threads,
		NumTriples:    *numTriples,
		NumBits:       *numBits,
		BatchSize:     *batch,
		Amplification: *tau,
		Passive:       *passive,
		FakeBaseOT:    *fakeOT,
	}
	if err := config.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if *passive || *fakeOT {
		logger.Warn().Bool("passive", *passive).Bool("fake-ot", *fakeOT).
			Msg("running with insecure test configuration")
	}

	addrList := strings.Split(*addrs, ",")
	if len(addrList) != config.NumParties {
		logger.Fatal().Int("addrs", len(addrList)).
			Int("parties", config.NumParties).
			Msg("address count does not match party count")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config, addrList, *output, *bitOutput,
		*verbose); err != nil {
		logger.Error().Stringer("kind", env.Classify(err)).Err(err).
			Msg("triplegen failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, config *env.Config, addrs []string,
	output, bitOutput string, verbose bool) error {

	nw, err := p2p.Connect(config.PartyID, addrs, config.Log)
	if err != nil {
		return err
	}
	gen, err := triple.NewGenerator(config, nw)
	if err == nil {
		err = generate(ctx, gen, output, bitOutput)
	}
	if err != nil {
		nw.Abort()
		return err
	}
	if verbose {
		gen.Timing.Print(os.Stdout, nw.Stats())
	}
	return nw.Close()
}

func generate(ctx context.Context, gen *triple.Generator,
	output, bitOutput string) error {

	config := gen.Config()
	if config.NumTriples > 0 {
		out, err := createWriter[*saferith.Nat](gen.Field(), output,
			"triples")
		if err != nil {
			return err
		}
		n, err := gen.Run(ctx, out)
		if err != nil {
			out.file.Close()
			return err
		}
		if err := out.close(); err != nil {
			return err
		}
		fmt.Printf("generated %d triples\n", n)
	}
	if config.NumBits > 0 {
		out, err := createWriter[field.Block](field.NewGF2n(), bitOutput,
			"bits")
		if err != nil {
			return err
		}
		n, err := gen.GenerateBits(ctx, out)
		if err != nil {
			out.file.Close()
			return err
		}
		if err := out.close(); err != nil {
			return err
		}
		fmt.Printf("generated %d bits\n", n)
	}
	return nil
}

type writer[E any] struct {
	*triple.Writer[E]
	file *os.File
}

func (w *writer[E]) close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

func createWriter[E any](f field.Field[E], name, kind string) (
	*writer[E], error) {

	if len(name) == 0 {
		name = fmt.Sprintf("%s.bin", kind)
	}
	file, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	w, err := triple.NewWriter(f, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &writer[E]{
		Writer: w,
		file:   file,
	}, nil
}
