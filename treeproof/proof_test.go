// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package treeproof

import (
	"errors"
	"testing"

	"github.com/pk910/merkleized-metadata/hasher"
	"github.com/pk910/merkleized-metadata/scaleutils"
)

func TestProveShape(t *testing.T) {
	l := testLeaves(5)
	h := hasher.HashPair
	tree, _ := TreeFromLeaves(l)

	tests := []struct {
		name   string
		index  int
		hashes [][32]byte
		left   []bool
	}{
		{
			name:   "first leaf",
			index:  0,
			hashes: [][32]byte{l[1], h(l[2], l[3]), l[4]},
			left:   []bool{false, false, false},
		},
		{
			name:   "right leaf",
			index:  3,
			hashes: [][32]byte{l[2], h(l[0], l[1]), l[4]},
			left:   []bool{true, true, false},
		},
		{
			name:   "promoted leaf",
			index:  4,
			hashes: [][32]byte{h(h(l[0], l[1]), h(l[2], l[3]))},
			left:   []bool{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof, err := tree.Prove(tt.index)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if proof.Index != uint32(tt.index) || proof.LeafCount != 5 || proof.Leaf != l[tt.index] {
				t.Errorf("unexpected proof header: %+v", proof)
			}
			if len(proof.Hashes) != len(tt.hashes) {
				t.Fatalf("expected %d hashes, got %d", len(tt.hashes), len(proof.Hashes))
			}
			for i := range tt.hashes {
				if proof.Hashes[i] != tt.hashes[i] {
					t.Errorf("hash %d mismatch", i)
				}
				if proof.SiblingLeft[i] != tt.left[i] {
					t.Errorf("sibling side %d mismatch", i)
				}
			}
			if err := VerifyProof(tree.Root(), proof); err != nil {
				t.Errorf("proof should verify: %v", err)
			}
		})
	}
}

func TestProveRoundTrip(t *testing.T) {
	for n := 1; n <= 17; n++ {
		tree, _ := TreeFromLeaves(testLeaves(n))
		for i := 0; i < n; i++ {
			proof, err := tree.Prove(i)
			if err != nil {
				t.Fatalf("%d/%d: unexpected error: %v", i, n, err)
			}
			if err := VerifyProof(tree.Root(), proof); err != nil {
				t.Errorf("%d/%d: proof should verify: %v", i, n, err)
			}
		}
	}
}

func TestProveSingleLeaf(t *testing.T) {
	leaves := testLeaves(1)
	tree, _ := TreeFromLeaves(leaves)

	proof, err := tree.Prove(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proof.Hashes) != 0 {
		t.Errorf("single leaf proof should be empty, got %d hashes", len(proof.Hashes))
	}
	if err := VerifyProof(leaves[0], proof); err != nil {
		t.Errorf("proof should verify against the leaf: %v", err)
	}
}

func TestProveInvalidIndex(t *testing.T) {
	empty, _ := TreeFromLeaves(nil)
	if _, err := empty.Prove(0); !errors.Is(err, scaleutils.ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex on empty tree, got %v", err)
	}

	tree, _ := TreeFromLeaves(testLeaves(3))
	for _, index := range []int{-1, 3, 100} {
		if _, err := tree.Prove(index); !errors.Is(err, scaleutils.ErrInvalidIndex) {
			t.Errorf("index %d: expected ErrInvalidIndex, got %v", index, err)
		}
	}
}

func TestVerifyProofTampered(t *testing.T) {
	tree, _ := TreeFromLeaves(testLeaves(7))
	root := tree.Root()

	fresh := func() *Proof {
		proof, err := tree.Prove(2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return proof
	}

	tests := []struct {
		name   string
		mutate func(p *Proof)
	}{
		{"flipped leaf", func(p *Proof) { p.Leaf[0] ^= 1 }},
		{"flipped hash", func(p *Proof) { p.Hashes[1][31] ^= 0x80 }},
		{"missing hash", func(p *Proof) { p.Hashes = p.Hashes[:len(p.Hashes)-1]; p.SiblingLeft = nil }},
		{"extra hash", func(p *Proof) { p.Hashes = append(p.Hashes, root); p.SiblingLeft = nil }},
		{"wrong side", func(p *Proof) { p.SiblingLeft[0] = !p.SiblingLeft[0] }},
		{"side count", func(p *Proof) { p.SiblingLeft = p.SiblingLeft[:1] }},
		{"wrong index", func(p *Proof) { p.Index = 3 }},
		{"wrong leaf count", func(p *Proof) { p.LeafCount = 3 }},
		{"index out of range", func(p *Proof) { p.Index = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof := fresh()
			tt.mutate(proof)
			if err := VerifyProof(root, proof); !errors.Is(err, scaleutils.ErrProofMismatch) {
				t.Errorf("expected ErrProofMismatch, got %v", err)
			}
		})
	}

	if err := VerifyProof(root, nil); !errors.Is(err, scaleutils.ErrProofMismatch) {
		t.Errorf("expected ErrProofMismatch for nil proof, got %v", err)
	}

	var otherRoot [32]byte
	otherRoot[0] = 1
	if err := VerifyProof(otherRoot, fresh()); !errors.Is(err, scaleutils.ErrProofMismatch) {
		t.Errorf("expected ErrProofMismatch for foreign root, got %v", err)
	}
}

func TestVerifyProofWithoutSides(t *testing.T) {
	tree, _ := TreeFromLeaves(testLeaves(6))
	proof, _ := tree.Prove(5)
	proof.SiblingLeft = nil

	if err := VerifyProof(tree.Root(), proof); err != nil {
		t.Errorf("positions should be derived from the index: %v", err)
	}
}

func TestProveMultiShape(t *testing.T) {
	l := testLeaves(4)
	h := hasher.HashPair
	tree, _ := TreeFromLeaves(l)

	tests := []struct {
		name    string
		indices []int
		leaves  []uint32
		hashes  [][32]byte
	}{
		{
			name:    "adjacent pair",
			indices: []int{1, 0},
			leaves:  []uint32{0, 1},
			hashes:  [][32]byte{h(l[2], l[3])},
		},
		{
			name:    "outer leaves",
			indices: []int{3, 0},
			leaves:  []uint32{0, 3},
			hashes:  [][32]byte{l[1], l[2]},
		},
		{
			name:    "duplicates collapse",
			indices: []int{2, 2, 2},
			leaves:  []uint32{2},
			hashes:  [][32]byte{l[3], h(l[0], l[1])},
		},
		{
			name:    "all leaves",
			indices: []int{0, 1, 2, 3},
			leaves:  []uint32{0, 1, 2, 3},
			hashes:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof, err := tree.ProveMulti(tt.indices)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(proof.Indices) != len(tt.leaves) {
				t.Fatalf("expected indices %v, got %v", tt.leaves, proof.Indices)
			}
			for i := range tt.leaves {
				if proof.Indices[i] != tt.leaves[i] || proof.Leaves[i] != l[tt.leaves[i]] {
					t.Errorf("leaf %d mismatch", i)
				}
			}
			if len(proof.Hashes) != len(tt.hashes) {
				t.Fatalf("expected %d hashes, got %d", len(tt.hashes), len(proof.Hashes))
			}
			for i := range tt.hashes {
				if proof.Hashes[i] != tt.hashes[i] {
					t.Errorf("hash %d mismatch", i)
				}
			}
			if err := VerifyMultiproof(tree.Root(), proof); err != nil {
				t.Errorf("multiproof should verify: %v", err)
			}
		})
	}
}

func TestProveMultiRoundTrip(t *testing.T) {
	for n := 1; n <= 11; n++ {
		tree, _ := TreeFromLeaves(testLeaves(n))
		// every subset of leaves
		for mask := 1; mask < 1<<n; mask++ {
			indices := []int{}
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					indices = append(indices, i)
				}
			}

			proof, err := tree.ProveMulti(indices)
			if err != nil {
				t.Fatalf("%d leaves %v: unexpected error: %v", n, indices, err)
			}
			if err := VerifyMultiproof(tree.Root(), proof); err != nil {
				t.Fatalf("%d leaves %v: multiproof should verify: %v", n, indices, err)
			}
		}
	}
}

func TestProveMultiSingleMatchesProve(t *testing.T) {
	tree, _ := TreeFromLeaves(testLeaves(9))
	for i := 0; i < 9; i++ {
		single, _ := tree.Prove(i)
		multi, err := tree.ProveMulti([]int{i})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(single.Hashes) != len(multi.Hashes) {
			t.Fatalf("leaf %d: %d vs %d hashes", i, len(single.Hashes), len(multi.Hashes))
		}
		for j := range single.Hashes {
			if single.Hashes[j] != multi.Hashes[j] {
				t.Errorf("leaf %d: hash %d differs", i, j)
			}
		}
	}
}

func TestProveMultiErrors(t *testing.T) {
	tree, _ := TreeFromLeaves(testLeaves(3))

	if _, err := tree.ProveMulti(nil); !errors.Is(err, scaleutils.ErrEmptyProof) {
		t.Errorf("expected ErrEmptyProof, got %v", err)
	}
	if _, err := tree.ProveMulti([]int{0, 3}); !errors.Is(err, scaleutils.ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestVerifyMultiproofTampered(t *testing.T) {
	tree, _ := TreeFromLeaves(testLeaves(10))
	root := tree.Root()

	fresh := func() *Multiproof {
		proof, err := tree.ProveMulti([]int{1, 4, 9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return proof
	}

	tests := []struct {
		name   string
		mutate func(p *Multiproof)
	}{
		{"flipped leaf", func(p *Multiproof) { p.Leaves[1][5] ^= 1 }},
		{"flipped hash", func(p *Multiproof) { p.Hashes[2][0] ^= 1 }},
		{"missing hash", func(p *Multiproof) { p.Hashes = p.Hashes[:len(p.Hashes)-1] }},
		{"extra hash", func(p *Multiproof) { p.Hashes = append(p.Hashes, root) }},
		{"swapped hashes", func(p *Multiproof) { p.Hashes[0], p.Hashes[1] = p.Hashes[1], p.Hashes[0] }},
		{"shifted index", func(p *Multiproof) { p.Indices[0] = 0 }},
		{"unsorted indices", func(p *Multiproof) { p.Indices[0], p.Indices[1] = p.Indices[1], p.Indices[0] }},
		{"leaf count", func(p *Multiproof) { p.LeafCount = 11 }},
		{"index out of range", func(p *Multiproof) { p.Indices[2] = 10 }},
		{"leaf mismatch", func(p *Multiproof) { p.Leaves = p.Leaves[:2] }},
		{"no indices", func(p *Multiproof) { p.Indices = nil; p.Leaves = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof := fresh()
			tt.mutate(proof)
			if err := VerifyMultiproof(root, proof); !errors.Is(err, scaleutils.ErrProofMismatch) {
				t.Errorf("expected ErrProofMismatch, got %v", err)
			}
		})
	}

	if err := VerifyMultiproof(root, nil); !errors.Is(err, scaleutils.ErrProofMismatch) {
		t.Errorf("expected ErrProofMismatch for nil proof, got %v", err)
	}
}
