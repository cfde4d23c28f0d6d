// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package treeproof

import (
	"fmt"
	"sort"

	"github.com/pk910/merkleized-metadata/hasher"
	"github.com/pk910/merkleized-metadata/scaleutils"
)

// Proof is an inclusion proof for a single leaf.
//
// Hashes holds one sibling per level at which the proven path has a partner, bottom-up.
// Levels at which the path is promoted contribute no entry.
type Proof struct {
	Index       uint32
	LeafCount   uint32
	Leaf        [32]byte
	Hashes      [][32]byte
	SiblingLeft []bool
}

// Multiproof is an inclusion proof for a set of leaves sharing one list of sibling hashes.
//
// Indices are strictly ascending and Leaves[i] is the leaf at Indices[i]. Hashes are ordered
// level by level bottom-up and left to right within a level. A sibling that can be computed
// from the proven leaves is never included.
type Multiproof struct {
	LeafCount uint32
	Indices   []uint32
	Leaves    [][32]byte
	Hashes    [][32]byte
}

// Prove returns the inclusion proof for the leaf at index.
func (t *Tree) Prove(index int) (*Proof, error) {
	leafCount := t.LeafCount()
	if index < 0 || index >= leafCount {
		return nil, fmt.Errorf("%w: %d of %d leaves", scaleutils.ErrInvalidIndex, index, leafCount)
	}

	proof := &Proof{
		Index:     uint32(index),
		LeafCount: uint32(leafCount),
		Leaf:      t.levels[0][index],
	}

	idx := index
	for l := 0; l < len(t.levels)-1; l++ {
		sibling := idx ^ 1
		if sibling < len(t.levels[l]) {
			proof.Hashes = append(proof.Hashes, t.levels[l][sibling])
			proof.SiblingLeft = append(proof.SiblingLeft, sibling < idx)
		}
		idx >>= 1
	}

	return proof, nil
}

// ProveMulti returns a combined inclusion proof for the leaves at indices.
// Duplicate indices are proven once.
func (t *Tree) ProveMulti(indices []int) (*Multiproof, error) {
	if len(indices) == 0 {
		return nil, scaleutils.ErrEmptyProof
	}

	leafCount := t.LeafCount()
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	proof := &Multiproof{
		LeafCount: uint32(leafCount),
	}
	for i, index := range sorted {
		if index < 0 || index >= leafCount {
			return nil, fmt.Errorf("%w: %d of %d leaves", scaleutils.ErrInvalidIndex, index, leafCount)
		}
		if i > 0 && sorted[i-1] == index {
			continue
		}
		proof.Indices = append(proof.Indices, uint32(index))
		proof.Leaves = append(proof.Leaves, t.levels[0][index])
	}

	_, err := walkMultiproof(proof.LeafCount, proof.Indices, proof.Leaves, func(level int, index uint32) ([32]byte, error) {
		node := t.levels[level][index]
		proof.Hashes = append(proof.Hashes, node)
		return node, nil
	})
	if err != nil {
		return nil, err
	}

	return proof, nil
}

// VerifyProof checks a single leaf proof against root.
//
// The path is derived from the proof's index and leaf count, so a proof whose hash count
// or sibling sides disagree with the tree shape fails even if it would hash to root.
func VerifyProof(root [32]byte, proof *Proof) error {
	computed, err := ProofRoot(proof)
	if err != nil {
		return err
	}
	if computed != root {
		return fmt.Errorf("%w: root %x, computed %x", scaleutils.ErrProofMismatch, root, computed)
	}
	return nil
}

// ProofRoot recomputes the root committed to by a single leaf proof.
func ProofRoot(proof *Proof) ([32]byte, error) {
	if proof == nil {
		return [32]byte{}, fmt.Errorf("%w: nil proof", scaleutils.ErrProofMismatch)
	}
	if proof.Index >= proof.LeafCount {
		return [32]byte{}, fmt.Errorf("%w: index %d of %d leaves", scaleutils.ErrProofMismatch, proof.Index, proof.LeafCount)
	}
	if proof.SiblingLeft != nil && len(proof.SiblingLeft) != len(proof.Hashes) {
		return [32]byte{}, fmt.Errorf("%w: %d sibling sides for %d hashes", scaleutils.ErrProofMismatch, len(proof.SiblingLeft), len(proof.Hashes))
	}

	node := proof.Leaf
	idx := proof.Index
	step := 0
	widths := levelWidths(proof.LeafCount)
	for _, width := range widths[:len(widths)-1] {
		sibling := idx ^ 1
		if sibling < width {
			if step >= len(proof.Hashes) {
				return [32]byte{}, fmt.Errorf("%w: proof too short, %d hashes", scaleutils.ErrProofMismatch, len(proof.Hashes))
			}
			left := sibling < idx
			if proof.SiblingLeft != nil && proof.SiblingLeft[step] != left {
				return [32]byte{}, fmt.Errorf("%w: sibling side mismatch at step %d", scaleutils.ErrProofMismatch, step)
			}
			if left {
				node = hasher.HashPair(proof.Hashes[step], node)
			} else {
				node = hasher.HashPair(node, proof.Hashes[step])
			}
			step++
		}
		idx >>= 1
	}

	if step != len(proof.Hashes) {
		return [32]byte{}, fmt.Errorf("%w: expected %d hashes, got %d", scaleutils.ErrProofMismatch, step, len(proof.Hashes))
	}
	return node, nil
}

// VerifyMultiproof checks a multi leaf proof against root.
func VerifyMultiproof(root [32]byte, proof *Multiproof) error {
	computed, err := MultiproofRoot(proof)
	if err != nil {
		return err
	}
	if computed != root {
		return fmt.Errorf("%w: root %x, computed %x", scaleutils.ErrProofMismatch, root, computed)
	}
	return nil
}

// MultiproofRoot recomputes the root committed to by a multi leaf proof.
func MultiproofRoot(proof *Multiproof) ([32]byte, error) {
	if proof == nil {
		return [32]byte{}, fmt.Errorf("%w: nil proof", scaleutils.ErrProofMismatch)
	}
	if len(proof.Indices) == 0 {
		return [32]byte{}, fmt.Errorf("%w: %w", scaleutils.ErrProofMismatch, scaleutils.ErrEmptyProof)
	}
	if len(proof.Leaves) != len(proof.Indices) {
		return [32]byte{}, fmt.Errorf("%w: %d leaves for %d indices", scaleutils.ErrProofMismatch, len(proof.Leaves), len(proof.Indices))
	}
	for i, index := range proof.Indices {
		if index >= proof.LeafCount {
			return [32]byte{}, fmt.Errorf("%w: index %d of %d leaves", scaleutils.ErrProofMismatch, index, proof.LeafCount)
		}
		if i > 0 && proof.Indices[i-1] >= index {
			return [32]byte{}, fmt.Errorf("%w: indices not strictly ascending", scaleutils.ErrProofMismatch)
		}
	}

	used := 0
	computed, err := walkMultiproof(proof.LeafCount, proof.Indices, proof.Leaves, func(level int, index uint32) ([32]byte, error) {
		if used >= len(proof.Hashes) {
			return [32]byte{}, fmt.Errorf("%w: proof too short, %d hashes", scaleutils.ErrProofMismatch, len(proof.Hashes))
		}
		node := proof.Hashes[used]
		used++
		return node, nil
	})
	if err != nil {
		return [32]byte{}, err
	}

	if used != len(proof.Hashes) {
		return [32]byte{}, fmt.Errorf("%w: expected %d hashes, got %d", scaleutils.ErrProofMismatch, used, len(proof.Hashes))
	}
	return computed, nil
}

type knownNode struct {
	index uint32
	hash  [32]byte
}

// walkMultiproof reduces the known leaves to the root, level by level. Whenever a
// required sibling is not derivable from known nodes it is requested from sibling,
// in the order proof hashes are stored.
func walkMultiproof(leafCount uint32, indices []uint32, leaves [][32]byte, sibling func(level int, index uint32) ([32]byte, error)) ([32]byte, error) {
	known := make([]knownNode, len(indices))
	for i := range indices {
		known[i] = knownNode{index: indices[i], hash: leaves[i]}
	}

	widths := levelWidths(leafCount)
	for level, width := range widths[:len(widths)-1] {
		next := make([]knownNode, 0, (len(known)+1)/2)
		for i := 0; i < len(known); i++ {
			node := known[i]
			parent := knownNode{index: node.index / 2}

			switch {
			case node.index%2 == 1:
				// a known left partner would have consumed this node
				left, err := sibling(level, node.index-1)
				if err != nil {
					return [32]byte{}, err
				}
				parent.hash = hasher.HashPair(left, node.hash)
			case node.index+1 >= width:
				parent.hash = node.hash
			case i+1 < len(known) && known[i+1].index == node.index+1:
				parent.hash = hasher.HashPair(node.hash, known[i+1].hash)
				i++
			default:
				right, err := sibling(level, node.index+1)
				if err != nil {
					return [32]byte{}, err
				}
				parent.hash = hasher.HashPair(node.hash, right)
			}

			next = append(next, parent)
		}
		known = next
	}

	return known[0].hash, nil
}
