// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package merkleized

import (
	"github.com/pk910/merkleized-metadata/registry"
	"github.com/pk910/merkleized-metadata/treeproof"
	"github.com/pk910/merkleized-metadata/types"
)

// Metadata is the result of a digest computation.
type Metadata struct {
	generator *Generator
	types     types.TypeMap

	// Registry and Tree are nil when merkleization is disabled.
	Registry *registry.Registry
	Tree     *treeproof.Tree

	ExtrinsicHash types.Hash
	Chain         types.ChainInfo
	Digest        types.MetadataDigest
	// Hash is the metadata hash, the hash of the encoded Digest.
	Hash types.Hash
}

// TypesTreeRoot returns the root of the types tree, or the zero hash when
// merkleization is disabled.
func (m *Metadata) TypesTreeRoot() types.Hash {
	if m.Tree == nil {
		return types.Hash{}
	}
	return m.Tree.Root()
}

// NewDigestV1 assembles the V1 digest.
func NewDigestV1(typesTreeRoot, extrinsicMetadataHash types.Hash, chain types.ChainInfo) types.MetadataDigest {
	return types.NewMetadataDigestV1(typesTreeRoot, extrinsicMetadataHash, chain)
}

// DisabledDigest returns the digest of a generator with merkleization turned off.
// Its hash is the hash of the single version byte.
func DisabledDigest() types.MetadataDigest {
	return types.DisabledMetadataDigest()
}
