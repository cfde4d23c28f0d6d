// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	merkleized "github.com/pk910/merkleized-metadata"
	"github.com/pk910/merkleized-metadata/internal/config"
	"github.com/pk910/merkleized-metadata/internal/logging"
	"github.com/pk910/merkleized-metadata/source"
)

func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		logging.WithError(err).Error("command failed")
	}
	return err
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mdhash",
		Short:         "Merkleized metadata hash tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	rootCmd.PersistentFlags().Int("workers", 0, "number of hashing workers (0 keeps the configured value)")
	viper.BindPFlag(config.Cfg_verbose, rootCmd.PersistentFlags().Lookup("verbose"))

	regCommands(rootCmd)

	return rootCmd
}

func regCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newDigestCmd())
	rootCmd.AddCommand(newProveCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newTreeCmd())
}

// buildMetadata loads a runtime description and computes its digest with the
// configured generator settings.
func buildMetadata(ctx context.Context, cmd *cobra.Command, path string, disabled bool) (*merkleized.Metadata, merkleized.Description, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, merkleized.Description{}, errors.Wrap(err, "loading config")
	}

	desc, err := source.Load(path)
	if err != nil {
		return nil, desc, err
	}
	desc.Chain = cfg.Chain().Apply(desc.Chain)

	workers := cfg.Workers
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		workers = n
	}

	opts := []merkleized.GeneratorOption{
		merkleized.WithWorkers(workers),
		merkleized.WithMerkleization(cfg.Merkleization && !disabled),
		merkleized.WithLogCb(logging.LogCb("generator")),
	}
	if cfg.Verbose {
		opts = append(opts, merkleized.WithVerbose())
	}

	md, err := merkleized.NewGenerator(opts...).Build(ctx, desc)
	if err != nil {
		return nil, desc, errors.Wrap(err, "building metadata digest")
	}
	return md, desc, nil
}
