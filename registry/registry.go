// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

// Package registry normalizes the types reachable from an extrinsic format into the
// ordered leaf set of the types tree.
//
// Normalization is independent of the numeric type ids of the input: reached types are
// renumbered by discovery order from the root set, types with identical encodings are
// merged and the remaining types are sorted by content hash. Two runtimes that differ
// only in how their type ids are assigned yield the same leaves.
package registry

import (
	"fmt"
	"sort"

	"github.com/pk910/merkleized-metadata/scaleutils"
	"github.com/pk910/merkleized-metadata/types"
)

// Leaf is a normalized type and its content hash.
//
// The type id and all ById references of Type are canonical ids, which are stable
// for a given set of reachable type shapes.
type Leaf struct {
	Hash types.Hash
	Type types.Type
}

// Registry is the normalized form of a type registry.
type Registry struct {
	leaves    []Leaf
	leafIndex map[uint32]int
	reached   []uint32
	extrinsic types.ExtrinsicMetadata
}

// Len returns the number of leaves.
func (r *Registry) Len() int {
	return len(r.leaves)
}

// Leaves returns the leaves in tree order.
func (r *Registry) Leaves() []Leaf {
	return r.leaves
}

// Leaf returns the leaf at index.
func (r *Registry) Leaf(index int) (Leaf, error) {
	if index < 0 || index >= len(r.leaves) {
		return Leaf{}, fmt.Errorf("%w: %d of %d leaves", scaleutils.ErrInvalidIndex, index, len(r.leaves))
	}
	return r.leaves[index], nil
}

// LeafHashes returns the leaf hashes in tree order.
func (r *Registry) LeafHashes() [][32]byte {
	hashes := make([][32]byte, len(r.leaves))
	for i := range r.leaves {
		hashes[i] = r.leaves[i].Hash
	}
	return hashes
}

// LeafIndex returns the leaf an original type id was normalized into. Every id
// merged into a leaf maps onto that leaf.
func (r *Registry) LeafIndex(originalID uint32) (int, bool) {
	index, ok := r.leafIndex[originalID]
	return index, ok
}

// LeafIndices maps a set of original type ids to their sorted, distinct leaf indices.
func (r *Registry) LeafIndices(originalIDs []uint32) ([]int, error) {
	seen := make(map[int]bool, len(originalIDs))
	indices := make([]int, 0, len(originalIDs))
	for _, id := range originalIDs {
		index, ok := r.leafIndex[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", scaleutils.ErrUnknownTypeID, id)
		}
		if !seen[index] {
			seen[index] = true
			indices = append(indices, index)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

// Reached returns the original ids of all types reachable from the root set, ascending.
func (r *Registry) Reached() []uint32 {
	return r.reached
}

// Extrinsic returns the extrinsic metadata with references rewritten to canonical ids.
// Signed extensions keep their order.
func (r *Registry) Extrinsic() types.ExtrinsicMetadata {
	return r.extrinsic
}
