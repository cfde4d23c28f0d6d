// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

// Package treeproof provides construction of the types tree and generation and
// verification of inclusion proofs against its root.
//
// The tree is a binary tree built bottom-up from an ordered list of 32 byte leaves:
//   - adjacent nodes of a level are paired left to right as BLAKE3(left || right)
//   - a trailing node without a partner is promoted to the next level unchanged
//   - an empty tree has the all-zero root, a single leaf is its own root
//
// Nodes are addressed by (level, index), level 0 being the leaves. Because the width
// of every level follows from the leaf count alone, a verifier can derive all sibling
// positions and promotions from a leaf index and the leaf count.
package treeproof

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pk910/merkleized-metadata/hasher"
	"github.com/pk910/merkleized-metadata/scaleutils"
)

// minParallelLevel is the smallest level width that is split across workers.
const minParallelLevel = 2048

// Tree holds every level of a types tree, leaves first.
type Tree struct {
	levels [][][32]byte
}

type treeConfig struct {
	pool    *hasher.HasherPool
	workers int
}

// TreeOption configures tree construction.
type TreeOption func(*treeConfig)

// WithHasherPool sets the hasher pool used for node hashing.
func WithHasherPool(pool *hasher.HasherPool) TreeOption {
	return func(cfg *treeConfig) {
		cfg.pool = pool
	}
}

// WithWorkers allows wide levels to be hashed by up to n goroutines.
func WithWorkers(n int) TreeOption {
	return func(cfg *treeConfig) {
		cfg.workers = n
	}
}

func newTreeConfig(opts []TreeOption) *treeConfig {
	cfg := &treeConfig{
		pool:    &hasher.DefaultHasherPool,
		workers: 1,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// TreeFromLeaves builds the tree over leaves. The leaves are copied.
func TreeFromLeaves(leaves [][32]byte, opts ...TreeOption) (*Tree, error) {
	cfg := newTreeConfig(opts)

	level := make([][32]byte, len(leaves))
	copy(level, leaves)

	tree := &Tree{levels: [][][32]byte{level}}
	for len(level) > 1 {
		next, err := hashLevel(cfg, level)
		if err != nil {
			return nil, err
		}
		tree.levels = append(tree.levels, next)
		level = next
	}

	return tree, nil
}

// RootFromLeaves computes the tree root without keeping the intermediate levels.
// Only the hasher pool option applies.
func RootFromLeaves(leaves [][32]byte, opts ...TreeOption) ([32]byte, error) {
	cfg := newTreeConfig(opts)
	h := cfg.pool.Get()
	defer cfg.pool.Put(h)

	indx := h.Index()
	h.AppendNodes(leaves)
	if err := h.Merkleize(indx); err != nil {
		return [32]byte{}, err
	}
	return h.HashRoot()
}

func hashLevel(cfg *treeConfig, level [][32]byte) ([][32]byte, error) {
	next := make([][32]byte, (len(level)+1)/2)

	hashChunk := func(offset int, chunk [][32]byte) error {
		h := cfg.pool.Get()
		defer cfg.pool.Put(h)

		h.AppendNodes(chunk)
		if err := h.HashLevel(0); err != nil {
			return err
		}
		copy(next[offset/2:], h.Nodes(0))
		return nil
	}

	if cfg.workers <= 1 || len(level) < minParallelLevel {
		if err := hashChunk(0, level); err != nil {
			return nil, err
		}
		return next, nil
	}

	// chunks hold an even number of nodes, so only the last chunk can promote
	chunkSize := (len(level)/cfg.workers + 1) &^ 1
	if chunkSize < 2 {
		chunkSize = 2
	}

	var g errgroup.Group
	g.SetLimit(cfg.workers)
	for offset := 0; offset < len(level); offset += chunkSize {
		end := offset + chunkSize
		if end > len(level) {
			end = len(level)
		}
		offset, chunk := offset, level[offset:end]
		g.Go(func() error {
			return hashChunk(offset, chunk)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}

// Root returns the root of the tree.
func (t *Tree) Root() [32]byte {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return hasher.ZeroRoot()
	}
	return top[0]
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	return len(t.levels[0])
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Leaves returns a copy of the leaf level.
func (t *Tree) Leaves() [][32]byte {
	res := make([][32]byte, len(t.levels[0]))
	copy(res, t.levels[0])
	return res
}

// Node returns the node at the given level and index.
func (t *Tree) Node(level, index int) ([32]byte, error) {
	if level < 0 || level >= len(t.levels) || index < 0 || index >= len(t.levels[level]) {
		return [32]byte{}, fmt.Errorf("%w: node (%d, %d)", scaleutils.ErrInvalidIndex, level, index)
	}
	return t.levels[level][index], nil
}

// Show writes the tree levels, root first, in a human-readable format.
//
// Parameters:
//   - maxDepth: Maximum number of levels below the root to display (0 for unlimited depth)
//
// Promoted nodes are marked, as they appear unchanged on the level above.
func (t *Tree) Show(w io.Writer, maxDepth int) {
	fmt.Fprintf(w, "--- Show tree (%d leaves) ---\n", t.LeafCount())
	for depth, l := 0, len(t.levels)-1; l >= 0; depth, l = depth+1, l-1 {
		if maxDepth > 0 && depth > maxDepth {
			fmt.Fprintf(w, " ... (max depth reached)\n")
			return
		}

		space := strings.Repeat("\t", depth)
		width := len(t.levels[l])
		fmt.Fprintf(w, "%sLEVEL: %d (width: %d)\n", space, l, width)
		for i, node := range t.levels[l] {
			promoted := ""
			if l > 0 && i == width-1 && len(t.levels[l-1])%2 == 1 {
				promoted = " (promoted)"
			}
			fmt.Fprintf(w, "%sINDEX: %d HASH: %s%s\n", space, i, hex.EncodeToString(node[:]), promoted)
		}
	}
}

// levelWidths returns the width of every level of a tree with leafCount leaves.
func levelWidths(leafCount uint32) []uint32 {
	if leafCount == 0 {
		return nil
	}
	widths := []uint32{leafCount}
	for w := leafCount; w > 1; {
		w = (w + 1) / 2
		widths = append(widths, w)
	}
	return widths
}
