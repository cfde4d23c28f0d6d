// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package registry

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pk910/merkleized-metadata/types"
)

// Normalize builds the registry of all types reachable from the root set of ext.
//
// Reached types are renumbered in breadth-first discovery order, starting from the
// root references in wire order. Types whose path and definition encode identically
// are merged, which may in turn make their referrers identical; merging repeats until
// no further types collapse. The surviving types are assigned compact canonical ids
// and sorted by content hash.
//
// A reachable ById reference without an entry in typeMap fails with a
// *DanglingReferenceError.
func Normalize(ctx context.Context, typeMap types.TypeMap, ext types.ExtrinsicMetadata, opts ...Option) (*Registry, error) {
	cfg := applyOptions(opts)

	order, canonical, err := discover(typeMap, ext.RootRefs())
	if err != nil {
		return nil, err
	}

	toCanonical := func(ref types.TypeRef) types.TypeRef {
		if id, ok := ref.TypeID(); ok {
			return types.ById(canonical[id])
		}
		return ref
	}

	canonTypes := make([]types.Type, len(order))
	for i, id := range order {
		t := typeMap[id]
		canonTypes[i] = t.MapRefs(toCanonical)
		canonTypes[i].TypeID = uint32(i)
	}

	rep, live, rounds, err := collapse(ctx, cfg, canonTypes)
	if err != nil {
		return nil, err
	}

	compact := make(map[uint32]uint32, len(live))
	for i, id := range live {
		compact[id] = uint32(i)
	}
	toCompact := func(ref types.TypeRef) types.TypeRef {
		if id, ok := ref.TypeID(); ok {
			return types.ById(compact[rep[id]])
		}
		return ref
	}

	leaves := make([]Leaf, len(live))
	for i, id := range live {
		leaves[i].Type = canonTypes[id].MapRefs(toCompact)
		leaves[i].Type.TypeID = uint32(i)
	}

	hashes, err := hashTypes(ctx, cfg, leaves, func(l *Leaf) *types.Type { return &l.Type })
	if err != nil {
		return nil, err
	}
	for i := range leaves {
		leaves[i].Hash = hashes[i]
	}

	sort.SliceStable(leaves, func(i, j int) bool {
		if c := bytes.Compare(leaves[i].Hash[:], leaves[j].Hash[:]); c != 0 {
			return c < 0
		}
		return types.CompareTypes(&leaves[i].Type, &leaves[j].Type) < 0
	})

	position := make([]int, len(leaves))
	for i := range leaves {
		position[leaves[i].Type.TypeID] = i
	}

	reg := &Registry{
		leaves:    leaves,
		leafIndex: make(map[uint32]int, len(order)),
		reached:   make([]uint32, len(order)),
		extrinsic: ext.MapRefs(func(ref types.TypeRef) types.TypeRef {
			return toCompact(toCanonical(ref))
		}),
	}
	for i, id := range order {
		reg.leafIndex[id] = position[compact[rep[i]]]
		reg.reached[i] = id
	}
	sort.Slice(reg.reached, func(i, j int) bool { return reg.reached[i] < reg.reached[j] })

	cfg.logf("registry: %d reachable types, %d leaves after %d merge rounds", len(order), len(leaves), rounds)

	return reg, nil
}

// discover walks the type graph breadth-first from roots. It returns the reached ids
// in discovery order and their discovery index.
func discover(typeMap types.TypeMap, roots []types.TypeRef) ([]uint32, map[uint32]uint32, error) {
	order := []uint32{}
	index := map[uint32]uint32{}

	visit := func(ref types.TypeRef, from *uint32) error {
		id, ok := ref.TypeID()
		if !ok {
			return nil
		}
		if _, seen := index[id]; seen {
			return nil
		}
		if _, found := typeMap[id]; !found {
			return &DanglingReferenceError{TypeID: id, ReferencedBy: from}
		}
		index[id] = uint32(len(order))
		order = append(order, id)
		return nil
	}

	for _, ref := range roots {
		if err := visit(ref, nil); err != nil {
			return nil, nil, err
		}
	}

	for i := 0; i < len(order); i++ {
		id := order[i]
		t := typeMap[id]
		if err := t.TypeDef.Validate(); err != nil {
			return nil, nil, fmt.Errorf("type %d: %w", id, err)
		}
		for _, ref := range t.TypeDef.References() {
			if err := visit(ref, &id); err != nil {
				return nil, nil, err
			}
		}
	}

	return order, index, nil
}

// collapse merges types with equal content hashes until a fixpoint is reached.
// rep maps every canonical id to the id of its group representative, live lists the
// representatives in discovery order.
func collapse(ctx context.Context, cfg *Options, canonTypes []types.Type) (rep []uint32, live []uint32, rounds int, err error) {
	rep = make([]uint32, len(canonTypes))
	live = make([]uint32, len(canonTypes))
	for i := range canonTypes {
		rep[i] = uint32(i)
		live[i] = uint32(i)
	}

	toRep := func(ref types.TypeRef) types.TypeRef {
		if id, ok := ref.TypeID(); ok {
			return types.ById(rep[id])
		}
		return ref
	}

	for {
		rounds++

		current := make([]types.Type, len(live))
		for i, id := range live {
			current[i] = canonTypes[id].MapRefs(toRep)
		}

		hashes, err := hashTypes(ctx, cfg, current, func(t *types.Type) *types.Type { return t })
		if err != nil {
			return nil, nil, rounds, err
		}

		first := make(map[types.Hash]uint32, len(live))
		next := live[:0:0]
		for i, id := range live {
			if target, ok := first[hashes[i]]; ok {
				rep[id] = target
				continue
			}
			first[hashes[i]] = id
			next = append(next, id)
		}

		if len(next) == len(live) {
			return rep, live, rounds, nil
		}

		for i := range rep {
			rep[i] = rep[rep[i]]
		}
		live = next
	}
}

// hashTypes computes the content hashes of items concurrently.
func hashTypes[T any](ctx context.Context, cfg *Options, items []T, typeOf func(*T) *types.Type) ([]types.Hash, error) {
	hashes := make([]types.Hash, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := typeOf(&items[i]).ContentHash()
			if err != nil {
				return fmt.Errorf("type %d: %w", typeOf(&items[i]).TypeID, err)
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return hashes, nil
}
