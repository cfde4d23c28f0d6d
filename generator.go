// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

// Package merkleized computes the merkleized metadata hash of a runtime: a digest that
// commits to the extrinsic format, the chain parameters and the Merkle root over every
// type reachable from the extrinsic format.
//
// The types tree makes the metadata provable in parts. A signer that only needs the
// types of one call can be handed those types plus a multiproof, and check them against
// the metadata hash without access to the full registry.
//
// Example usage:
//
//	gen := merkleized.NewGenerator()
//	md, err := gen.Build(ctx, merkleized.Description{
//	    Types:     typeMap,
//	    Extrinsic: extrinsic,
//	    Chain:     types.ChainInfo{SpecName: "polkadot", SpecVersion: 1002000, ...},
//	})
//
//	// partial metadata for a call
//	bundle, err := md.ProveTypes([]uint32{callTypeID})
//	err = merkleized.VerifyBundle(bundle, md.Hash)
package merkleized

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/govaluate"

	"github.com/pk910/merkleized-metadata/registry"
	"github.com/pk910/merkleized-metadata/treeproof"
	"github.com/pk910/merkleized-metadata/types"
)

// Generator builds metadata digests from runtime descriptions.
//
// The generator is safe for concurrent use. It caches compiled type selector
// expressions, so reusing one instance across builds is recommended.
type Generator struct {
	options *GeneratorOptions

	selectorMutex sync.Mutex
	selectorCache map[string]*govaluate.EvaluableExpression
}

// Description is the input of a digest computation.
type Description struct {
	// Types is the backing type map, keyed by type id.
	Types     types.TypeMap
	Extrinsic types.ExtrinsicMetadata
	Chain     types.ChainInfo
}

// NewGenerator creates a new generator.
//
// Merkleization is enabled by default and hashing uses GOMAXPROCS workers.
func NewGenerator(opts ...GeneratorOption) *Generator {
	return &Generator{
		options:       applyGeneratorOptions(opts),
		selectorCache: map[string]*govaluate.EvaluableExpression{},
	}
}

// Options returns the effective generator options.
func (g *Generator) Options() GeneratorOptions {
	return *g.options
}

func (g *Generator) logf(format string, args ...any) {
	if !g.options.Verbose || g.options.LogCb == nil {
		return
	}
	g.options.LogCb(format, args...)
}

// Build normalizes the description, builds the types tree and assembles the digest.
//
// With merkleization disabled only the Disabled digest is produced and the returned
// metadata carries no registry or tree.
//
// Returns an error wrapping scaleutils.ErrDanglingReference if a reachable type is
// missing from desc.Types, or scaleutils.ErrEncodingOverflow if a value cannot be encoded.
func (g *Generator) Build(ctx context.Context, desc Description) (*Metadata, error) {
	md := &Metadata{
		generator: g,
		types:     desc.Types,
		Chain:     desc.Chain,
	}

	if g.options.NoMerkleization {
		md.Digest = DisabledDigest()
		hash, err := md.Digest.Hash()
		if err != nil {
			return nil, err
		}
		md.Hash = hash
		g.logf("merkleization disabled, metadata hash %x", hash)
		return md, nil
	}

	reg, err := g.normalize(ctx, desc)
	if err != nil {
		return nil, err
	}

	tree, err := treeproof.TreeFromLeaves(reg.LeafHashes(), treeproof.WithWorkers(g.options.Workers))
	if err != nil {
		return nil, fmt.Errorf("failed building types tree: %w", err)
	}

	ext := reg.Extrinsic()
	extHash, err := ext.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed hashing extrinsic metadata: %w", err)
	}

	md.Registry = reg
	md.Tree = tree
	md.ExtrinsicHash = extHash
	md.Digest = NewDigestV1(tree.Root(), extHash, desc.Chain)

	md.Hash, err = md.Digest.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed hashing digest: %w", err)
	}

	g.logf("types tree: %d leaves, depth %d, root %x", tree.LeafCount(), tree.Depth(), tree.Root())
	g.logf("metadata hash %x", md.Hash)

	return md, nil
}

func (g *Generator) normalize(ctx context.Context, desc Description) (*registry.Registry, error) {
	regOpts := []registry.Option{registry.WithWorkers(g.options.Workers)}
	if g.options.Verbose {
		regOpts = append(regOpts, registry.WithVerbose(), registry.WithLogCb(g.options.LogCb))
	}

	reg, err := registry.Normalize(ctx, desc.Types, desc.Extrinsic, regOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed normalizing type registry: %w", err)
	}
	return reg, nil
}

// Digest returns the digest of the description. Unlike Build it keeps no tree, so
// the result cannot be used for proofs.
func (g *Generator) Digest(ctx context.Context, desc Description) (types.MetadataDigest, error) {
	if g.options.NoMerkleization {
		return DisabledDigest(), nil
	}

	reg, err := g.normalize(ctx, desc)
	if err != nil {
		return types.MetadataDigest{}, err
	}

	root, err := treeproof.RootFromLeaves(reg.LeafHashes())
	if err != nil {
		return types.MetadataDigest{}, fmt.Errorf("failed computing types tree root: %w", err)
	}

	ext := reg.Extrinsic()
	extHash, err := ext.Hash()
	if err != nil {
		return types.MetadataDigest{}, fmt.Errorf("failed hashing extrinsic metadata: %w", err)
	}

	return NewDigestV1(root, extHash, desc.Chain), nil
}

// MetadataHash returns the metadata hash of the description.
func (g *Generator) MetadataHash(ctx context.Context, desc Description) (types.Hash, error) {
	digest, err := g.Digest(ctx, desc)
	if err != nil {
		return types.Hash{}, err
	}
	return digest.Hash()
}
