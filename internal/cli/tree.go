// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <description.yaml>",
		Short: "Show the types tree of a runtime description",
		Args:  cobra.ExactArgs(1),
		RunE:  runTree,
	}
	cmd.Flags().Int("depth", 0, "maximum number of levels below the root (0 for all)")
	return cmd
}

func runTree(cmd *cobra.Command, args []string) error {
	depth, _ := cmd.Flags().GetInt("depth")

	md, _, err := buildMetadata(cmd.Context(), cmd, args[0], false)
	if err != nil {
		return err
	}
	if md.Tree == nil {
		return errors.New("merkleization is disabled")
	}

	md.Tree.Show(cmd.OutOrStdout(), depth)
	return nil
}
