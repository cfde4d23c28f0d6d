// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	merkleized "github.com/pk910/merkleized-metadata"
	"github.com/pk910/merkleized-metadata/internal/cidutil"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <bundle>",
		Short: "Verify a proof bundle against a metadata hash",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
	cmd.Flags().String("hash", "", "metadata hash as hex, multibase multihash or CID")
	cmd.MarkFlagRequired("hash")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	rawHash, _ := cmd.Flags().GetString("hash")
	hash, err := cidutil.ParseHash(rawHash)
	if err != nil {
		return errors.Wrap(err, "parsing metadata hash")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "reading bundle")
	}
	bundle, err := merkleized.UnmarshalBundle(data)
	if err != nil {
		return errors.Wrap(err, "unmarshalling bundle")
	}

	if err := merkleized.VerifyBundle(bundle, hash); err != nil {
		return errors.Wrap(err, "verifying bundle")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "valid: %d types proven against 0x%x\n", len(bundle.Leaves), hash)
	return nil
}
