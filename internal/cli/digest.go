// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	merkleized "github.com/pk910/merkleized-metadata"
	"github.com/pk910/merkleized-metadata/internal/cidutil"
)

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest <description.yaml>",
		Short: "Compute the metadata hash of a runtime description",
		Args:  cobra.ExactArgs(1),
		RunE:  runDigest,
	}
	cmd.Flags().Bool("disabled", false, "produce the disabled digest")
	return cmd
}

func runDigest(cmd *cobra.Command, args []string) error {
	disabled, _ := cmd.Flags().GetBool("disabled")

	md, _, err := buildMetadata(cmd.Context(), cmd, args[0], disabled)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if md.Tree != nil {
		fmt.Fprintf(out, "types:          %d leaves\n", md.Tree.LeafCount())
		fmt.Fprintf(out, "types root:     0x%x\n", md.TypesTreeRoot())
		fmt.Fprintf(out, "extrinsic hash: 0x%x\n", md.ExtrinsicHash)
	} else {
		fmt.Fprintf(out, "merkleization disabled\n")
	}
	return printMetadataHash(cmd, md)
}

func printMetadataHash(cmd *cobra.Command, md *merkleized.Metadata) error {
	out := cmd.OutOrStdout()

	mb, err := cidutil.Multibase(md.Hash)
	if err != nil {
		return err
	}
	c, err := cidutil.CID(md.Hash)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "metadata hash:  0x%x\n", md.Hash)
	fmt.Fprintf(out, "multihash:      %s\n", mb)
	fmt.Fprintf(out, "cid:            %s\n", c)
	return nil
}
