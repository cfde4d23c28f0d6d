// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package types

import (
	"io"
	"slices"

	"github.com/pk910/merkleized-metadata/hasher"
	"github.com/pk910/merkleized-metadata/scaleutils"
)

// Type is a registry entry.
//
// TypeID only serves to resolve TypeRef(ById) values while the registry is built.
// It is part of the wire encoding but never of the content hash, as ids change
// between runtime builds.
type Type struct {
	Path    []string `msgpack:"p,omitempty"`
	TypeDef TypeDef  `msgpack:"d"`
	TypeID  uint32   `msgpack:"id"`
}

// TypeMap is the backing map of a type registry, keyed by type id.
type TypeMap map[uint32]Type

// Add stores t under its TypeID.
func (m TypeMap) Add(t Type) {
	m[t.TypeID] = t
}

// IDs returns the ids of all entries, ascending.
func (m TypeMap) IDs() []uint32 {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *Type) marshalContentTo(enc scaleutils.Encoder) {
	scaleutils.MarshalVector(enc, t.Path, func(enc scaleutils.Encoder, s *string) {
		enc.EncodeString(*s)
	})
	t.TypeDef.MarshalSCALETo(enc)
}

// MarshalSCALETo writes path, definition and the compact type id.
func (t *Type) MarshalSCALETo(enc scaleutils.Encoder) {
	t.marshalContentTo(enc)
	enc.EncodeCompact(t.TypeID)
}

// Encode returns the wire encoding of the type, including its id.
func (t *Type) Encode() ([]byte, error) {
	return scaleutils.Marshal(t)
}

// EncodeTo writes the wire encoding to w.
func (t *Type) EncodeTo(w io.Writer) error {
	return scaleutils.MarshalTo(w, t)
}

// Hash returns the BLAKE3 hash of the wire encoding, including the type id.
func (t *Type) Hash() (Hash, error) {
	return hashEncoding(t.MarshalSCALETo)
}

// ContentHash returns the BLAKE3 hash of the path and definition only. This is the
// leaf value of the types tree.
func (t *Type) ContentHash() (Hash, error) {
	return hashEncoding(t.marshalContentTo)
}

// MapRefs returns a deep copy of the type with every reference replaced by fn(ref).
func (t *Type) MapRefs(fn func(TypeRef) TypeRef) Type {
	var path []string
	if t.Path != nil {
		path = append([]string{}, t.Path...)
	}
	return Type{
		Path:    path,
		TypeDef: t.TypeDef.MapRefs(fn),
		TypeID:  t.TypeID,
	}
}

func hashEncoding(marshal func(enc scaleutils.Encoder)) (Hash, error) {
	h := hasher.NewContentHasher()
	enc := scaleutils.NewStreamEncoder(h)
	marshal(enc)
	if err := enc.Err(); err != nil {
		return Hash{}, err
	}

	var res Hash
	copy(res[:], h.Sum(nil))
	return res, nil
}
