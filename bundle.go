// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package merkleized

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pk910/merkleized-metadata/scaleutils"
	"github.com/pk910/merkleized-metadata/treeproof"
	"github.com/pk910/merkleized-metadata/types"
)

// ProofBundle is a partial metadata: a subset of the normalized types together with
// everything needed to recompute the metadata hash from them.
//
// Leaves[i] is the type at leaf LeafIndices[i]. Type ids and ById references of the
// leaves are canonical ids, as is every reference of Extrinsic.
type ProofBundle struct {
	Leaves      []types.Type            `msgpack:"leaves"`
	LeafIndices []uint32                `msgpack:"indices"`
	LeafCount   uint32                  `msgpack:"leaf_count"`
	Hashes      []types.Hash            `msgpack:"hashes"`
	Extrinsic   types.ExtrinsicMetadata `msgpack:"extrinsic"`
	Chain       types.ChainInfo         `msgpack:"chain"`
}

// ProveTypes returns the proof bundle for the given original type ids. Ids merged into
// the same leaf are proven once.
func (m *Metadata) ProveTypes(originalIDs []uint32) (*ProofBundle, error) {
	if m.Registry == nil {
		return nil, scaleutils.ErrDigestDisabled
	}

	indices, err := m.Registry.LeafIndices(originalIDs)
	if err != nil {
		return nil, err
	}

	proof, err := m.Tree.ProveMulti(indices)
	if err != nil {
		return nil, err
	}

	bundle := &ProofBundle{
		Leaves:      make([]types.Type, len(proof.Indices)),
		LeafIndices: proof.Indices,
		LeafCount:   proof.LeafCount,
		Hashes:      proof.Hashes,
		Extrinsic:   m.Registry.Extrinsic(),
		Chain:       m.Chain,
	}
	for i, index := range proof.Indices {
		leaf, err := m.Registry.Leaf(int(index))
		if err != nil {
			return nil, err
		}
		bundle.Leaves[i] = leaf.Type
	}

	m.generator.logf("proof bundle: %d types, %d leaves, %d hashes", len(originalIDs), len(bundle.Leaves), len(bundle.Hashes))

	return bundle, nil
}

// Multiproof returns the types tree multiproof of the bundle, with leaf hashes
// recomputed from the bundled types.
func (b *ProofBundle) Multiproof() (*treeproof.Multiproof, error) {
	if len(b.Leaves) != len(b.LeafIndices) {
		return nil, fmt.Errorf("%w: %d types for %d indices", scaleutils.ErrProofMismatch, len(b.Leaves), len(b.LeafIndices))
	}

	proof := &treeproof.Multiproof{
		LeafCount: b.LeafCount,
		Indices:   b.LeafIndices,
		Leaves:    make([][32]byte, len(b.Leaves)),
		Hashes:    b.Hashes,
	}
	for i := range b.Leaves {
		hash, err := b.Leaves[i].ContentHash()
		if err != nil {
			return nil, err
		}
		proof.Leaves[i] = hash
	}
	return proof, nil
}

// VerifyBundle checks a proof bundle against a metadata hash. It recomputes the types
// tree root from the bundled types, rebuilds the V1 digest and compares its hash.
func VerifyBundle(b *ProofBundle, metadataHash types.Hash) error {
	if b == nil {
		return fmt.Errorf("%w: nil bundle", scaleutils.ErrProofMismatch)
	}

	proof, err := b.Multiproof()
	if err != nil {
		return err
	}

	root, err := treeproof.MultiproofRoot(proof)
	if err != nil {
		return err
	}

	extHash, err := b.Extrinsic.Hash()
	if err != nil {
		return err
	}

	digest := NewDigestV1(root, extHash, b.Chain)
	hash, err := digest.Hash()
	if err != nil {
		return err
	}

	if hash != metadataHash {
		return fmt.Errorf("%w: metadata hash %x, computed %x", scaleutils.ErrProofMismatch, metadataHash, hash)
	}
	return nil
}

// MarshalBundle encodes a bundle for storage or transport.
func MarshalBundle(b *ProofBundle) ([]byte, error) {
	return msgpack.Marshal(b)
}

// UnmarshalBundle decodes a bundle produced by MarshalBundle.
func UnmarshalBundle(data []byte) (*ProofBundle, error) {
	b := &ProofBundle{}
	if err := msgpack.Unmarshal(data, b); err != nil {
		return nil, err
	}
	return b, nil
}
