// Copyright (c) 2026 The evaltreejit Authors
// SPDX-License-Identifier: MIT

// Command evaltreejit-bench is the benchmark/inference driver described
// as an external collaborator in the core's specification: it selects a
// tree depth and feature count, builds a random tree, compiles it, and
// drives concurrent evaluation across goroutines to demonstrate that
// compiled evaluators are safely callable from many threads at once.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	evaltreejit "github.com/brannur/evaltreejit"
	"github.com/brannur/evaltreejit/internal/testtree"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("evaltreejit-bench failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaltreejit-bench",
		Short: "Compile a random perfect decision tree and drive concurrent evaluation",
		RunE:  runBench,
	}

	flags := cmd.Flags()
	flags.Int("depth", 8, "tree depth (D); must be a multiple of function-depth")
	flags.Int("features", 16, "feature count")
	flags.Int("function-depth", 4, "levels per compiled evaluator function")
	flags.Int("switch-depth", 2, "levels per condition-vector switch")
	flags.Int("workers", 2, "number of goroutines concurrently driving Run")
	flags.Int("iterations", 100_000, "Run invocations per worker")
	flags.String("cache-dir", "", "on-disk object cache directory (empty disables caching)")
	flags.Bool("verbose", false, "enable debug logging")
	flags.Bool("dump-tree", false, "spew-dump the generated tree's node data before compiling")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func runBench(cmd *cobra.Command, _ []string) error {
	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	depth := viper.GetInt("depth")
	features := viper.GetInt("features")
	cfg := evaltreejit.Config{
		FunctionDepth: viper.GetInt("function-depth"),
		SwitchDepth:   viper.GetInt("switch-depth"),
		CacheDir:      viper.GetString("cache-dir"),
	}

	prng := rand.New(rand.NewPCG(42, 42))
	tree := testtree.Random(prng, depth, features)

	if viper.GetBool("dump-tree") {
		spew.Dump(tree)
	}

	start := time.Now()
	eng, err := evaltreejit.NewEngine(tree, cfg)
	if err != nil {
		return fmt.Errorf("compiling tree: %w", err)
	}
	defer eng.Close()

	log.Info().
		Dur("compile_time", time.Since(start)).
		Bool("from_cache", eng.Stats.FromCache).
		Int("depth", depth).
		Int("features", features).
		Msg("engine ready")

	workers := viper.GetInt("workers")
	iterations := viper.GetInt("iterations")

	g, ctx := errgroup.WithContext(cmd.Context())
	start = time.Now()

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			return driveWorker(ctx, eng, features, w, iterations)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().
		Dur("total_time", time.Since(start)).
		Int("workers", workers).
		Int("iterations_per_worker", iterations).
		Msg("run complete")

	return nil
}

// driveWorker repeatedly evaluates random inputs on the shared engine;
// compiled evaluators are pure functions of their input and are safe to
// call concurrently from many goroutines once compilation has completed.
func driveWorker(ctx context.Context, eng *evaltreejit.Engine, features, workerID, iterations int) error {
	prng := rand.New(rand.NewPCG(uint64(workerID)+1, 7))

	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		input := testtree.RandomInput(prng, features)
		leaf := eng.Run(input)

		log.Debug().Int("worker", workerID).Int("trial", i).Int64("leaf", leaf).Msg("evaluated")
	}

	return nil
}
