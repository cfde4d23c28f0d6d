// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package merkleized

import "runtime"

type GeneratorOption func(*GeneratorOptions)

type GeneratorOptions struct {
	NoMerkleization bool
	Workers         int
	Verbose         bool
	LogCb           func(format string, args ...any)
}

// WithMerkleization enables or disables the types tree. A disabled generator
// produces the Disabled digest.
func WithMerkleization(enabled bool) GeneratorOption {
	return func(opts *GeneratorOptions) {
		opts.NoMerkleization = !enabled
	}
}

// WithWorkers sets the number of goroutines used for content and node hashing.
func WithWorkers(n int) GeneratorOption {
	return func(opts *GeneratorOptions) {
		opts.Workers = n
	}
}

func WithVerbose() GeneratorOption {
	return func(opts *GeneratorOptions) {
		opts.Verbose = true
	}
}

func WithLogCb(logCb func(format string, args ...any)) GeneratorOption {
	return func(opts *GeneratorOptions) {
		opts.LogCb = logCb
	}
}

func applyGeneratorOptions(opts []GeneratorOption) *GeneratorOptions {
	cfg := &GeneratorOptions{
		Workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg
}
