// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package source

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/pk910/merkleized-metadata/types"
)

// DescriptionFile is the on-disk form of a runtime description.
type DescriptionFile struct {
	Chain     ChainFile     `yaml:"chain"`
	Extrinsic ExtrinsicFile `yaml:"extrinsic"`
	Types     []TypeFile    `yaml:"types"`
}

type ChainFile struct {
	SpecName     string `yaml:"spec_name"`
	SpecVersion  uint32 `yaml:"spec_version"`
	Base58Prefix uint16 `yaml:"base58_prefix"`
	Decimals     uint8  `yaml:"decimals"`
	TokenSymbol  string `yaml:"token_symbol"`
}

type ExtrinsicFile struct {
	Version          uint8                 `yaml:"version"`
	Address          RefFile               `yaml:"address"`
	Call             RefFile               `yaml:"call"`
	Signature        RefFile               `yaml:"signature"`
	SignedExtensions []SignedExtensionFile `yaml:"signed_extensions"`
}

type SignedExtensionFile struct {
	Identifier           string  `yaml:"identifier"`
	IncludedInExtrinsic  RefFile `yaml:"included_in_extrinsic"`
	IncludedInSignedData RefFile `yaml:"included_in_signed_data"`
}

// TypeFile is a type entry. Exactly one of the definition keys must be set.
type TypeFile struct {
	ID          uint32           `yaml:"id"`
	Path        []string         `yaml:"path,omitempty"`
	Composite   *[]FieldFile     `yaml:"composite,omitempty"`
	Enumeration *VariantFile     `yaml:"enumeration,omitempty"`
	Sequence    *RefFile         `yaml:"sequence,omitempty"`
	Array       *ArrayFile       `yaml:"array,omitempty"`
	Tuple       *[]RefFile       `yaml:"tuple,omitempty"`
	BitSequence *BitSequenceFile `yaml:"bitsequence,omitempty"`
}

type FieldFile struct {
	Name     *string `yaml:"name,omitempty"`
	Type     RefFile `yaml:"type"`
	TypeName *string `yaml:"type_name,omitempty"`
}

type VariantFile struct {
	Name   string      `yaml:"name"`
	Index  uint32      `yaml:"index"`
	Fields []FieldFile `yaml:"fields,omitempty"`
}

type ArrayFile struct {
	Len  uint32  `yaml:"len"`
	Type RefFile `yaml:"type"`
}

type BitSequenceFile struct {
	NumBytes uint8 `yaml:"num_bytes"`
	LsbFirst bool  `yaml:"lsb_first"`
}

// RefFile is a type reference: an integer references a type by id, a string names a
// primitive such as u32, compact<u128> or void. An omitted reference is void.
type RefFile struct {
	ref types.TypeRef
	set bool
}

// Ref returns the decoded reference, or void if the key was omitted.
func (r *RefFile) Ref() types.TypeRef {
	if !r.set {
		return types.Void
	}
	return r.ref
}

func (r *RefFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: type reference must be a scalar", node.Line)
	}

	switch node.ShortTag() {
	case "!!int":
		id, err := strconv.ParseUint(node.Value, 0, 32)
		if err != nil {
			return fmt.Errorf("line %d: invalid type id %q", node.Line, node.Value)
		}
		r.ref = types.ById(uint32(id))
	case "!!null":
		r.ref = types.Void
	case "!!str":
		kind, ok := types.ParseRefKind(node.Value)
		if !ok || kind == types.RefById {
			return fmt.Errorf("line %d: unknown primitive %q", node.Line, node.Value)
		}
		r.ref = types.Primitive(kind)
	default:
		return fmt.Errorf("line %d: type reference must be an id or a primitive name", node.Line)
	}
	r.set = true
	return nil
}
