// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package cli

import (
	"fmt"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	merkleized "github.com/pk910/merkleized-metadata"
	"github.com/pk910/merkleized-metadata/internal/logging"
	"github.com/pk910/merkleized-metadata/registry"
)

func newProveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prove <description.yaml>",
		Short: "Write a proof bundle for a set of types",
		Args:  cobra.ExactArgs(1),
		RunE:  runProve,
	}
	cmd.Flags().UintSlice("ids", []uint{}, "type ids to prove")
	cmd.Flags().StringP("select", "s", "", "type selector expression, e.g. 'hasPrefix(path, \"pallet_balances\")'")
	cmd.Flags().Bool("closure", false, "include all types reachable from the selected types")
	cmd.Flags().StringP("output", "o", "bundle.msgpack", "bundle output file")
	return cmd
}

func runProve(cmd *cobra.Command, args []string) error {
	rawIDs, _ := cmd.Flags().GetUintSlice("ids")
	selector, _ := cmd.Flags().GetString("select")
	closure, _ := cmd.Flags().GetBool("closure")
	output, _ := cmd.Flags().GetString("output")

	if len(rawIDs) == 0 && selector == "" {
		return errors.New("either --ids or --select is required")
	}

	ids := make([]uint32, 0, len(rawIDs))
	for _, id := range rawIDs {
		if uint64(id) > math.MaxUint32 {
			return errors.Errorf("type id %d out of range", id)
		}
		ids = append(ids, uint32(id))
	}

	md, desc, err := buildMetadata(cmd.Context(), cmd, args[0], false)
	if err != nil {
		return err
	}
	if selector != "" {
		selected, err := md.SelectTypes(selector)
		if err != nil {
			return errors.Wrap(err, "selecting types")
		}
		ids = append(ids, selected...)
	}
	if closure {
		ids, err = registry.Closure(desc.Types, ids)
		if err != nil {
			return errors.Wrap(err, "resolving type closure")
		}
	}

	bundle, err := md.ProveTypes(ids)
	if err != nil {
		return errors.Wrap(err, "generating proof")
	}

	data, err := merkleized.MarshalBundle(bundle)
	if err != nil {
		return errors.Wrap(err, "marshalling bundle")
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return errors.Wrap(err, "writing bundle")
	}

	logging.WithFields(logging.Fields{
		"types":  len(ids),
		"leaves": len(bundle.Leaves),
		"hashes": len(bundle.Hashes),
		"file":   output,
	}).Info("proof bundle written")

	fmt.Fprintf(cmd.OutOrStdout(), "bundle:         %s (%d types, %d of %d leaves, %d hashes)\n", output, len(ids), len(bundle.Leaves), bundle.LeafCount, len(bundle.Hashes))
	return printMetadataHash(cmd, md)
}
