// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

// Package hasher provides the BLAKE3 hashing primitives of the metadata hash: content
// hashes of encoded values and the pairwise node reduction of the types tree.
package hasher

import (
	"fmt"
	"hash"
	"sync"

	"lukechampine.com/blake3"
)

var (
	// ErrIncorrectByteSize means that the byte size is incorrect
	ErrIncorrectByteSize = fmt.Errorf("incorrect byte size")
)

// DefaultHasherPool is a default hasher pool
var DefaultHasherPool HasherPool

var zeroNode [32]byte

// HashFn hashes every consecutive 64 byte pair of input into a 32 byte digest in dst.
// dst may alias input.
type HashFn func(dst []byte, input []byte) error

// NativeHashWrapper wraps a hash.Hash function into a HashFn
func NativeHashWrapper(hashFn hash.Hash) HashFn {
	return func(dst []byte, input []byte) error {
		if len(input)%64 != 0 {
			return fmt.Errorf("%w: input of %d bytes is not a multiple of 64", ErrIncorrectByteSize, len(input))
		}
		if len(dst) < len(input)/2 {
			return fmt.Errorf("%w: need %d digest bytes, got %d", ErrIncorrectByteSize, len(input)/2, len(dst))
		}

		for i := 0; i < len(input)/64; i++ {
			hashFn.Write(input[i*64 : i*64+64])
			hashFn.Sum(dst[i*32 : i*32])
			hashFn.Reset()
		}
		return nil
	}
}

// HasherPool may be used for pooling Hashers.
type HasherPool struct {
	HashFn HashFn
	pool   sync.Pool
}

// Get acquires a Hasher from the pool.
func (hh *HasherPool) Get() *Hasher {
	h := hh.pool.Get()
	if h == nil {
		if hh.HashFn == nil {
			return NewHasher()
		} else {
			return NewHasherWithHashFn(hh.HashFn)
		}
	}
	return h.(*Hasher)
}

// Put releases the Hasher to the pool.
func (hh *HasherPool) Put(h *Hasher) {
	h.Reset()
	hh.pool.Put(h)
}

// Hasher reduces a buffer of 32 byte nodes into a Merkle root.
//
// Nodes are paired left to right and combined as BLAKE3(left || right). A trailing
// node without a partner is promoted to the next level unchanged.
type Hasher struct {
	// buffer array to store hashing values
	buf []byte

	// node hash function
	hash HashFn
}

// NewHasher creates a new Hasher object with a BLAKE3-256 hash
func NewHasher() *Hasher {
	return NewHasherWithHash(blake3.New(32, nil))
}

// NewHasherWithHash creates a new Hasher object with a custom hash.Hash function
func NewHasherWithHash(hh hash.Hash) *Hasher {
	return NewHasherWithHashFn(NativeHashWrapper(hh))
}

// NewHasherWithHashFn creates a new Hasher object with a custom HashFn function
func NewHasherWithHashFn(hh HashFn) *Hasher {
	return &Hasher{
		hash: hh,
	}
}

// Reset resets the Hasher obj
func (h *Hasher) Reset() {
	h.buf = h.buf[:0]
}

// Index marks the current buffer index
func (h *Hasher) Index() int {
	return len(h.buf)
}

// AppendNode appends a 32 byte node
func (h *Hasher) AppendNode(node [32]byte) {
	h.buf = append(h.buf, node[:]...)
}

// AppendNodes appends a list of 32 byte nodes
func (h *Hasher) AppendNodes(nodes [][32]byte) {
	for i := range nodes {
		h.buf = append(h.buf, nodes[i][:]...)
	}
}

// Nodes returns the nodes stored after indx.
func (h *Hasher) Nodes(indx int) [][32]byte {
	input := h.buf[indx:]
	nodes := make([][32]byte, len(input)/32)
	for i := range nodes {
		copy(nodes[i][:], input[i*32:])
	}
	return nodes
}

// HashLevel replaces the nodes stored after indx with the next tree level.
func (h *Hasher) HashLevel(indx int) error {
	input := h.buf[indx:]
	if len(input)%32 != 0 {
		return fmt.Errorf("%w: level of %d bytes", ErrIncorrectByteSize, len(input))
	}

	output, err := h.hashLevelImpl(input)
	if err != nil {
		return err
	}
	h.buf = h.buf[:indx+len(output)]
	return nil
}

// Merkleize is used to merkleize the last group of the hasher
func (h *Hasher) Merkleize(indx int) error {
	input := h.buf[indx:]
	if len(input)%32 != 0 {
		return fmt.Errorf("%w: input of %d bytes", ErrIncorrectByteSize, len(input))
	}

	if len(input) == 0 {
		h.buf = append(h.buf, zeroNode[:]...)
		return nil
	}

	for len(input) > 32 {
		output, err := h.hashLevelImpl(input)
		if err != nil {
			return err
		}
		input = output
	}
	h.buf = h.buf[:indx+32]
	return nil
}

func (h *Hasher) hashLevelImpl(input []byte) ([]byte, error) {
	count := len(input) / 32
	pairs := count / 2
	if pairs > 0 {
		if err := h.hash(input, input[:pairs*64]); err != nil {
			return nil, err
		}
	}
	if count%2 == 1 {
		// promote the unpaired node
		copy(input[pairs*32:], input[(count-1)*32:count*32])
	}
	return input[:((count+1)/2)*32], nil
}

// HashRoot returns the final hash root
func (h *Hasher) HashRoot() (res [32]byte, err error) {
	if len(h.buf) != 32 {
		err = fmt.Errorf("expected 32 byte size, got %d", len(h.buf))
		return
	}
	copy(res[:], h.buf)
	return
}

// Sum returns the BLAKE3-256 hash of data.
func Sum(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// HashPair returns BLAKE3(left || right).
func HashPair(left, right [32]byte) [32]byte {
	var tmp [64]byte
	copy(tmp[:32], left[:])
	copy(tmp[32:], right[:])
	return blake3.Sum256(tmp[:])
}

// NewContentHasher returns a streaming BLAKE3-256 hash for content hashing of encoded values.
func NewContentHasher() hash.Hash {
	return blake3.New(32, nil)
}

// ZeroRoot returns the root of an empty tree.
func ZeroRoot() [32]byte {
	return zeroNode
}
