// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package registry

import "runtime"

type Option func(*Options)

type Options struct {
	// Workers bounds the number of concurrent content hash computations.
	Workers int
	Verbose bool
	LogCb   func(format string, args ...any)
}

func WithWorkers(n int) Option {
	return func(opts *Options) {
		opts.Workers = n
	}
}

func WithVerbose() Option {
	return func(opts *Options) {
		opts.Verbose = true
	}
}

func WithLogCb(logCb func(format string, args ...any)) Option {
	return func(opts *Options) {
		opts.LogCb = logCb
	}
}

func applyOptions(opts []Option) *Options {
	cfg := &Options{
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

func (o *Options) logf(format string, args ...any) {
	if !o.Verbose || o.LogCb == nil {
		return
	}
	o.LogCb(format, args...)
}
