// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package types

import (
	"cmp"
	"slices"
	"strings"
)

// Total ordering of the data model: by discriminant first, then field by field in
// declaration order. Absent optional values order before present ones and slices
// compare lexicographically.

func CompareTypeRefs(a, b TypeRef) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if a.Kind != RefById {
		return 0
	}
	return cmp.Compare(a.ID, b.ID)
}

func compareOptionStrings(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(*a, *b)
}

func CompareFields(a, b Field) int {
	if c := compareOptionStrings(a.Name, b.Name); c != 0 {
		return c
	}
	if c := CompareTypeRefs(a.Ty, b.Ty); c != 0 {
		return c
	}
	return compareOptionStrings(a.TypeName, b.TypeName)
}

func CompareVariants(a, b *EnumerationVariant) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := slices.CompareFunc(a.Fields, b.Fields, CompareFields); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

func comparePtr[T any](a, b *T, fn func(a, b *T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return fn(a, b)
}

func CompareTypeDefs(a, b *TypeDef) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}

	switch a.Kind {
	case DefComposite:
		return slices.CompareFunc(a.Fields, b.Fields, CompareFields)
	case DefEnumeration:
		return comparePtr(a.Variant, b.Variant, CompareVariants)
	case DefSequence:
		return CompareTypeRefs(a.Element, b.Element)
	case DefArray:
		return comparePtr(a.Array, b.Array, func(a, b *TypeDefArray) int {
			if c := cmp.Compare(a.Len, b.Len); c != 0 {
				return c
			}
			return CompareTypeRefs(a.TypeParam, b.TypeParam)
		})
	case DefTuple:
		return slices.CompareFunc(a.Tuple, b.Tuple, CompareTypeRefs)
	case DefBitSequence:
		return comparePtr(a.BitSequence, b.BitSequence, func(a, b *TypeDefBitSequence) int {
			if c := cmp.Compare(a.NumBytes, b.NumBytes); c != 0 {
				return c
			}
			return compareBools(a.LeastSignificantBitFirst, b.LeastSignificantBitFirst)
		})
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func CompareTypes(a, b *Type) int {
	if c := slices.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if c := CompareTypeDefs(&a.TypeDef, &b.TypeDef); c != 0 {
		return c
	}
	return cmp.Compare(a.TypeID, b.TypeID)
}
