// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

// Package types contains the data model of the merkleized metadata: type references,
// type definitions, the extrinsic format description and the metadata digest, together
// with their canonical SCALE encoding, explicit ordering and content hashes.
package types

import (
	"fmt"

	"github.com/pk910/merkleized-metadata/scaleutils"
)

// Hash is a 32 byte BLAKE3 digest.
type Hash = [32]byte

// RefKind is the discriminant of a TypeRef. The numeric values are the wire tags and
// must never change.
type RefKind uint8

const (
	RefBool        RefKind = 0
	RefChar        RefKind = 1
	RefStr         RefKind = 2
	RefU8          RefKind = 3
	RefU16         RefKind = 4
	RefU32         RefKind = 5
	RefU64         RefKind = 6
	RefU128        RefKind = 7
	RefU256        RefKind = 8
	RefI8          RefKind = 9
	RefI16         RefKind = 10
	RefI32         RefKind = 11
	RefI64         RefKind = 12
	RefI128        RefKind = 13
	RefI256        RefKind = 14
	RefCompactU8   RefKind = 15
	RefCompactU16  RefKind = 16
	RefCompactU32  RefKind = 17
	RefCompactU64  RefKind = 18
	RefCompactU128 RefKind = 19
	RefCompactU256 RefKind = 20
	RefVoid        RefKind = 21
	RefById        RefKind = 22
)

var refKindNames = [...]string{
	RefBool:        "bool",
	RefChar:        "char",
	RefStr:         "str",
	RefU8:          "u8",
	RefU16:         "u16",
	RefU32:         "u32",
	RefU64:         "u64",
	RefU128:        "u128",
	RefU256:        "u256",
	RefI8:          "i8",
	RefI16:         "i16",
	RefI32:         "i32",
	RefI64:         "i64",
	RefI128:        "i128",
	RefI256:        "i256",
	RefCompactU8:   "compact<u8>",
	RefCompactU16:  "compact<u16>",
	RefCompactU32:  "compact<u32>",
	RefCompactU64:  "compact<u64>",
	RefCompactU128: "compact<u128>",
	RefCompactU256: "compact<u256>",
	RefVoid:        "void",
	RefById:        "id",
}

func (k RefKind) String() string {
	if int(k) < len(refKindNames) {
		return refKindNames[k]
	}
	return fmt.Sprintf("refkind(%d)", uint8(k))
}

// ParseRefKind resolves a primitive kind by its name as returned by RefKind.String.
func ParseRefKind(name string) (RefKind, bool) {
	for i, n := range refKindNames {
		if n == name {
			return RefKind(i), true
		}
	}
	return 0, false
}

// TypeRef references a type: either a primitive kind or a registry entry by id.
// ID is only meaningful for RefById.
type TypeRef struct {
	Kind RefKind `msgpack:"k"`
	ID   uint32  `msgpack:"i,omitempty"`
}

var (
	Bool        = TypeRef{Kind: RefBool}
	Char        = TypeRef{Kind: RefChar}
	Str         = TypeRef{Kind: RefStr}
	U8          = TypeRef{Kind: RefU8}
	U16         = TypeRef{Kind: RefU16}
	U32         = TypeRef{Kind: RefU32}
	U64         = TypeRef{Kind: RefU64}
	U128        = TypeRef{Kind: RefU128}
	U256        = TypeRef{Kind: RefU256}
	I8          = TypeRef{Kind: RefI8}
	I16         = TypeRef{Kind: RefI16}
	I32         = TypeRef{Kind: RefI32}
	I64         = TypeRef{Kind: RefI64}
	I128        = TypeRef{Kind: RefI128}
	I256        = TypeRef{Kind: RefI256}
	CompactU8   = TypeRef{Kind: RefCompactU8}
	CompactU16  = TypeRef{Kind: RefCompactU16}
	CompactU32  = TypeRef{Kind: RefCompactU32}
	CompactU64  = TypeRef{Kind: RefCompactU64}
	CompactU128 = TypeRef{Kind: RefCompactU128}
	CompactU256 = TypeRef{Kind: RefCompactU256}
	Void        = TypeRef{Kind: RefVoid}
)

// Primitive returns a reference to a primitive kind.
func Primitive(kind RefKind) TypeRef {
	return TypeRef{Kind: kind}
}

// ById returns a reference to the registry entry with the given id.
func ById(id uint32) TypeRef {
	return TypeRef{Kind: RefById, ID: id}
}

// TypeID returns the referenced id, or false for primitive references.
func (r TypeRef) TypeID() (uint32, bool) {
	if r.Kind == RefById {
		return r.ID, true
	}
	return 0, false
}

func (r TypeRef) String() string {
	if r.Kind == RefById {
		return fmt.Sprintf("#%d", r.ID)
	}
	return r.Kind.String()
}

// MarshalSCALETo writes the one byte discriminant, followed by Compact<u32> for RefById.
func (r TypeRef) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeUint8(uint8(r.Kind))
	if r.Kind == RefById {
		enc.EncodeCompact(r.ID)
	}
}
