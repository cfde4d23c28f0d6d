// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package registry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pk910/merkleized-metadata/scaleutils"
	"github.com/pk910/merkleized-metadata/types"
)

// fixture builds a small runtime description. idOf assigns the numeric id of each
// logical type, so renumbered variants of the same registry can be produced.
func fixture(idOf func(name string) uint32) (types.TypeMap, types.ExtrinsicMetadata) {
	ref := func(name string) types.TypeRef { return types.ById(idOf(name)) }
	m := types.TypeMap{}
	add := func(name string, path []string, def types.TypeDef) {
		m.Add(types.Type{Path: path, TypeDef: def, TypeID: idOf(name)})
	}

	add("account", []string{"sp_core", "crypto", "AccountId32"}, types.Composite(types.UnnamedField(ref("bytes32"))))
	add("bytes32", nil, types.Array(32, types.U8))
	add("address", []string{"sp_runtime", "multiaddress", "MultiAddress"}, types.Enumeration(types.EnumerationVariant{
		Name:   "Id",
		Fields: []types.Field{types.UnnamedField(ref("account"))},
		Index:  0,
	}))
	add("call", []string{"runtime", "RuntimeCall"}, types.Enumeration(types.EnumerationVariant{
		Name: "Balances",
		Fields: []types.Field{
			types.NewField("dest", ref("address")).WithTypeName("AccountIdLookupOf<T>"),
			types.NewField("value", types.CompactU128),
			types.NewField("calls", ref("calls")),
		},
		Index: 5,
	}))
	add("calls", nil, types.Sequence(ref("call")))
	add("signature", []string{"sp_runtime", "MultiSignature"}, types.Enumeration(types.EnumerationVariant{
		Name:   "Sr25519",
		Fields: []types.Field{types.UnnamedField(ref("sig64"))},
		Index:  1,
	}))
	add("sig64", nil, types.Array(64, types.U8))
	add("era", []string{"sp_runtime", "generic", "era", "Era"}, types.Tuple(types.U8, types.U8))
	add("nonce", nil, types.Composite(types.UnnamedField(types.CompactU32)))
	add("unused", []string{"pallet", "Unused"}, types.BitSequence(1, true))

	ext := types.ExtrinsicMetadata{
		Version:     4,
		AddressTy:   ref("address"),
		CallTy:      ref("call"),
		SignatureTy: ref("signature"),
		SignedExtensions: []types.SignedExtensionMetadata{
			{Identifier: "CheckMortality", IncludedInExtrinsic: ref("era"), IncludedInSignedData: types.Void},
			{Identifier: "CheckNonce", IncludedInExtrinsic: ref("nonce"), IncludedInSignedData: types.Void},
		},
	}
	return m, ext
}

func sequentialIDs() func(string) uint32 {
	ids := map[string]uint32{}
	return func(name string) uint32 {
		if id, ok := ids[name]; ok {
			return id
		}
		ids[name] = uint32(len(ids))
		return ids[name]
	}
}

func fixedIDs(ids map[string]uint32) func(string) uint32 {
	return func(name string) uint32 { return ids[name] }
}

func mustNormalize(t *testing.T, m types.TypeMap, ext types.ExtrinsicMetadata, opts ...Option) *Registry {
	t.Helper()
	reg, err := Normalize(context.Background(), m, ext, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return reg
}

func equalHashes(a, b [][32]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalizeSingleType(t *testing.T) {
	typ := types.Type{
		TypeDef: types.Composite(types.NewField("a", types.U32)),
		TypeID:  7,
	}
	reg := mustNormalize(t, types.TypeMap{7: typ}, types.ExtrinsicMetadata{CallTy: types.ById(7)})

	if reg.Len() != 1 {
		t.Fatalf("expected one leaf, got %d", reg.Len())
	}

	want, _ := typ.ContentHash()
	if reg.Leaves()[0].Hash != want {
		t.Errorf("leaf hash mismatch: expected %x, got %x", want, reg.Leaves()[0].Hash)
	}
	if index, ok := reg.LeafIndex(7); !ok || index != 0 {
		t.Errorf("expected id 7 at leaf 0, got %d (%v)", index, ok)
	}
	if reg.Extrinsic().CallTy != types.ById(0) {
		t.Errorf("call reference should be canonical, got %v", reg.Extrinsic().CallTy)
	}
	if reg.Leaves()[0].Type.TypeID != 0 {
		t.Errorf("leaf should carry its canonical id, got %d", reg.Leaves()[0].Type.TypeID)
	}
}

func TestNormalizeEmptyRootSet(t *testing.T) {
	m, _ := fixture(sequentialIDs())
	ext := types.ExtrinsicMetadata{
		Version:     4,
		AddressTy:   types.U64,
		CallTy:      types.Void,
		SignatureTy: types.Primitive(types.RefU8),
	}

	reg := mustNormalize(t, m, ext)
	if reg.Len() != 0 {
		t.Errorf("expected no leaves, got %d", reg.Len())
	}
	if len(reg.Reached()) != 0 {
		t.Errorf("expected no reached types, got %v", reg.Reached())
	}
}

func TestNormalizeReachability(t *testing.T) {
	m, ext := fixture(sequentialIDs())
	reg := mustNormalize(t, m, ext)

	// every type but "unused", with the two array shapes kept apart
	if reg.Len() != 9 {
		t.Errorf("expected 9 leaves, got %d", reg.Len())
	}
	if len(reg.Reached()) != 9 {
		t.Errorf("expected 9 reached types, got %d", len(reg.Reached()))
	}

	unused := sequentialIDs()
	fixture(unused)
	if _, ok := reg.LeafIndex(unused("unused")); ok {
		t.Error("unreachable type should not have a leaf")
	}
}

func TestNormalizeLeavesSorted(t *testing.T) {
	m, ext := fixture(sequentialIDs())
	reg := mustNormalize(t, m, ext)

	leaves := reg.Leaves()
	for i := 1; i < len(leaves); i++ {
		if bytes.Compare(leaves[i-1].Hash[:], leaves[i].Hash[:]) >= 0 {
			t.Errorf("leaves %d and %d out of order", i-1, i)
		}
	}
	for i, leaf := range leaves {
		h, _ := leaf.Type.ContentHash()
		if h != leaf.Hash {
			t.Errorf("leaf %d hash does not match its type", i)
		}
	}
}

func TestNormalizeIdInvariance(t *testing.T) {
	m1, ext1 := fixture(sequentialIDs())
	reg1 := mustNormalize(t, m1, ext1)

	m2, ext2 := fixture(fixedIDs(map[string]uint32{
		"account":   900,
		"bytes32":   3,
		"address":   17,
		"call":      1,
		"calls":     0,
		"signature": 44,
		"sig64":     45,
		"era":       200,
		"nonce":     12,
		"unused":    5,
	}))
	reg2 := mustNormalize(t, m2, ext2)

	if !equalHashes(reg1.LeafHashes(), reg2.LeafHashes()) {
		t.Fatal("renumbered registries should produce identical leaves")
	}

	ext1Canon, ext2Canon := reg1.Extrinsic(), reg2.Extrinsic()
	h1, _ := ext1Canon.Hash()
	h2, _ := ext2Canon.Hash()
	if h1 != h2 {
		t.Error("renumbered registries should produce identical extrinsic metadata")
	}

	i1, _ := reg1.LeafIndex(ext1.CallTy.ID)
	i2, _ := reg2.LeafIndex(ext2.CallTy.ID)
	if i1 != i2 {
		t.Errorf("call type should map to the same leaf, got %d and %d", i1, i2)
	}
}

func TestNormalizeCollapse(t *testing.T) {
	// 1 and 2 are identical byte arrays, 3 and 4 become identical once they are merged
	m := types.TypeMap{}
	m.Add(types.Type{TypeID: 0, TypeDef: types.Tuple(types.ById(3), types.ById(4))})
	m.Add(types.Type{TypeID: 1, TypeDef: types.Array(4, types.U8)})
	m.Add(types.Type{TypeID: 2, TypeDef: types.Array(4, types.U8)})
	m.Add(types.Type{TypeID: 3, Path: []string{"W"}, TypeDef: types.Composite(types.NewField("x", types.ById(1)))})
	m.Add(types.Type{TypeID: 4, Path: []string{"W"}, TypeDef: types.Composite(types.NewField("x", types.ById(2)))})
	reg := mustNormalize(t, m, types.ExtrinsicMetadata{CallTy: types.ById(0)})

	if reg.Len() != 3 {
		t.Fatalf("expected 3 leaves, got %d", reg.Len())
	}

	i1, _ := reg.LeafIndex(1)
	i2, _ := reg.LeafIndex(2)
	if i1 != i2 {
		t.Errorf("identical types should share a leaf, got %d and %d", i1, i2)
	}
	i3, _ := reg.LeafIndex(3)
	i4, _ := reg.LeafIndex(4)
	if i3 != i4 {
		t.Errorf("types identical after merging should share a leaf, got %d and %d", i3, i4)
	}

	direct := types.TypeMap{}
	direct.Add(types.Type{TypeID: 10, TypeDef: types.Tuple(types.ById(11), types.ById(11))})
	direct.Add(types.Type{TypeID: 11, Path: []string{"W"}, TypeDef: types.Composite(types.NewField("x", types.ById(12)))})
	direct.Add(types.Type{TypeID: 12, TypeDef: types.Array(4, types.U8)})
	regDirect := mustNormalize(t, direct, types.ExtrinsicMetadata{CallTy: types.ById(10)})

	if !equalHashes(reg.LeafHashes(), regDirect.LeafHashes()) {
		t.Error("collapsed registry should equal the registry without duplicates")
	}
}

func TestNormalizeCycles(t *testing.T) {
	m := types.TypeMap{}
	m.Add(types.Type{TypeID: 1, Path: []string{"List"}, TypeDef: types.Composite(
		types.NewField("head", types.U32),
		types.NewField("tail", types.ById(2)),
	)})
	m.Add(types.Type{TypeID: 2, TypeDef: types.Sequence(types.ById(1))})
	m.Add(types.Type{TypeID: 3, Path: []string{"Self"}, TypeDef: types.Composite(types.NewField("me", types.ById(3)))})

	ext := types.ExtrinsicMetadata{CallTy: types.ById(1), AddressTy: types.ById(3), SignatureTy: types.ById(3)}
	reg := mustNormalize(t, m, ext)

	if reg.Len() != 3 {
		t.Errorf("expected 3 leaves, got %d", reg.Len())
	}
	for _, id := range []uint32{1, 2, 3} {
		if _, ok := reg.LeafIndex(id); !ok {
			t.Errorf("type %d should have a leaf", id)
		}
	}
}

func TestNormalizeDanglingReference(t *testing.T) {
	t.Run("root", func(t *testing.T) {
		_, err := Normalize(context.Background(), types.TypeMap{}, types.ExtrinsicMetadata{CallTy: types.ById(9)})
		if !errors.Is(err, scaleutils.ErrDanglingReference) {
			t.Fatalf("expected ErrDanglingReference, got %v", err)
		}
		var dangling *DanglingReferenceError
		if !errors.As(err, &dangling) {
			t.Fatalf("expected *DanglingReferenceError, got %T", err)
		}
		if dangling.TypeID != 9 || dangling.ReferencedBy != nil {
			t.Errorf("unexpected error details: %+v", dangling)
		}
	})

	t.Run("nested", func(t *testing.T) {
		m := types.TypeMap{}
		m.Add(types.Type{TypeID: 1, TypeDef: types.Composite(types.NewField("x", types.ById(2)))})
		m.Add(types.Type{TypeID: 2, TypeDef: types.Tuple(types.U8, types.ById(3))})

		_, err := Normalize(context.Background(), m, types.ExtrinsicMetadata{CallTy: types.ById(1)})
		var dangling *DanglingReferenceError
		if !errors.As(err, &dangling) {
			t.Fatalf("expected *DanglingReferenceError, got %v", err)
		}
		if dangling.TypeID != 3 || dangling.ReferencedBy == nil || *dangling.ReferencedBy != 2 {
			t.Errorf("unexpected error details: %v", dangling)
		}
	})
}

func TestNormalizeInvalidDefinition(t *testing.T) {
	m := types.TypeMap{}
	m.Add(types.Type{TypeID: 1, TypeDef: types.TypeDef{Kind: types.DefEnumeration}})

	if _, err := Normalize(context.Background(), m, types.ExtrinsicMetadata{CallTy: types.ById(1)}); err == nil {
		t.Error("expected error for enumeration without variant")
	}
}

func TestNormalizeWorkers(t *testing.T) {
	m, ext := fixture(sequentialIDs())
	seq := mustNormalize(t, m, ext, WithWorkers(1))
	par := mustNormalize(t, m, ext, WithWorkers(8))

	if !equalHashes(seq.LeafHashes(), par.LeafHashes()) {
		t.Error("worker count should not affect the leaves")
	}
}

func TestNormalizeCanceled(t *testing.T) {
	m, ext := fixture(sequentialIDs())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Normalize(ctx, m, ext); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizeLogging(t *testing.T) {
	m, ext := fixture(sequentialIDs())

	lines := 0
	mustNormalize(t, m, ext, WithLogCb(func(format string, args ...any) { lines++ }))
	if lines != 0 {
		t.Errorf("expected no log output without verbose, got %d lines", lines)
	}

	mustNormalize(t, m, ext, WithVerbose(), WithLogCb(func(format string, args ...any) { lines++ }))
	if lines == 0 {
		t.Error("expected log output with verbose")
	}
}

func TestExtrinsicRewrite(t *testing.T) {
	m, ext := fixture(sequentialIDs())
	reg := mustNormalize(t, m, ext)
	got := reg.Extrinsic()

	if got.Version != 4 || len(got.SignedExtensions) != 2 {
		t.Fatalf("unexpected extrinsic metadata: %+v", got)
	}
	if got.SignedExtensions[0].Identifier != "CheckMortality" || got.SignedExtensions[1].Identifier != "CheckNonce" {
		t.Error("signed extension order should be preserved")
	}
	if got.SignedExtensions[0].IncludedInSignedData != types.Void {
		t.Error("primitive references should be kept")
	}

	for _, ref := range got.RootRefs() {
		id, ok := ref.TypeID()
		if !ok {
			continue
		}
		if int(id) >= reg.Len() {
			t.Errorf("reference %v is not a canonical id", ref)
		}
	}
}

func TestLeafIndices(t *testing.T) {
	m := types.TypeMap{}
	m.Add(types.Type{TypeID: 0, TypeDef: types.Tuple(types.ById(1), types.ById(2))})
	m.Add(types.Type{TypeID: 1, TypeDef: types.Array(4, types.U8)})
	m.Add(types.Type{TypeID: 2, TypeDef: types.Array(4, types.U8)})
	reg := mustNormalize(t, m, types.ExtrinsicMetadata{CallTy: types.ById(0)})

	indices, err := reg.LeafIndices([]uint32{2, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indices) != 2 || indices[0] >= indices[1] {
		t.Errorf("expected two ascending leaf indices, got %v", indices)
	}

	if _, err := reg.LeafIndices([]uint32{3}); !errors.Is(err, scaleutils.ErrUnknownTypeID) {
		t.Errorf("expected ErrUnknownTypeID, got %v", err)
	}

	if _, err := reg.Leaf(2); !errors.Is(err, scaleutils.ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestClosure(t *testing.T) {
	m, _ := fixture(sequentialIDs())
	ids := sequentialIDs()
	fixture(ids)

	got, err := Closure(m, []uint32{ids("signature")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint32{ids("signature"), ids("sig64")}
	if want[0] > want[1] {
		want[0], want[1] = want[1], want[0]
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := Closure(m, []uint32{1000}); !errors.Is(err, scaleutils.ErrDanglingReference) {
		t.Errorf("expected ErrDanglingReference, got %v", err)
	}
}
