// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

// Package source loads runtime descriptions from YAML files.
package source

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	merkleized "github.com/pk910/merkleized-metadata"
	"github.com/pk910/merkleized-metadata/types"
)

// Load reads a runtime description file.
func Load(path string) (merkleized.Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return merkleized.Description{}, errors.Wrap(err, "reading description file")
	}

	desc, err := Parse(data)
	if err != nil {
		return merkleized.Description{}, errors.Wrapf(err, "parsing %s", path)
	}
	return desc, nil
}

// Parse decodes a runtime description.
func Parse(data []byte) (merkleized.Description, error) {
	file := &DescriptionFile{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return merkleized.Description{}, errors.Wrap(err, "unmarshalling description")
	}
	return file.Description()
}

// Description converts the file into the generator input.
func (f *DescriptionFile) Description() (merkleized.Description, error) {
	desc := merkleized.Description{
		Types: make(types.TypeMap, len(f.Types)),
		Extrinsic: types.ExtrinsicMetadata{
			Version:     f.Extrinsic.Version,
			AddressTy:   f.Extrinsic.Address.Ref(),
			CallTy:      f.Extrinsic.Call.Ref(),
			SignatureTy: f.Extrinsic.Signature.Ref(),
		},
		Chain: types.ChainInfo{
			SpecVersion:  f.Chain.SpecVersion,
			SpecName:     f.Chain.SpecName,
			Base58Prefix: f.Chain.Base58Prefix,
			Decimals:     f.Chain.Decimals,
			TokenSymbol:  f.Chain.TokenSymbol,
		},
	}

	for _, s := range f.Extrinsic.SignedExtensions {
		desc.Extrinsic.SignedExtensions = append(desc.Extrinsic.SignedExtensions, types.SignedExtensionMetadata{
			Identifier:           s.Identifier,
			IncludedInExtrinsic:  s.IncludedInExtrinsic.Ref(),
			IncludedInSignedData: s.IncludedInSignedData.Ref(),
		})
	}

	for i := range f.Types {
		tf := &f.Types[i]
		if _, exists := desc.Types[tf.ID]; exists {
			return merkleized.Description{}, errors.Errorf("duplicate type id %d", tf.ID)
		}

		def, err := tf.typeDef()
		if err != nil {
			return merkleized.Description{}, errors.Wrapf(err, "type %d", tf.ID)
		}
		desc.Types.Add(types.Type{
			Path:    tf.Path,
			TypeDef: def,
			TypeID:  tf.ID,
		})
	}

	return desc, nil
}

func (tf *TypeFile) typeDef() (types.TypeDef, error) {
	var defs []types.TypeDef

	if tf.Composite != nil {
		defs = append(defs, types.Composite(convertFields(*tf.Composite)...))
	}
	if tf.Enumeration != nil {
		defs = append(defs, types.Enumeration(types.EnumerationVariant{
			Name:   tf.Enumeration.Name,
			Fields: convertFields(tf.Enumeration.Fields),
			Index:  tf.Enumeration.Index,
		}))
	}
	if tf.Sequence != nil {
		defs = append(defs, types.Sequence(tf.Sequence.Ref()))
	}
	if tf.Array != nil {
		defs = append(defs, types.Array(tf.Array.Len, tf.Array.Type.Ref()))
	}
	if tf.Tuple != nil {
		refs := make([]types.TypeRef, len(*tf.Tuple))
		for i, r := range *tf.Tuple {
			refs[i] = r.Ref()
		}
		defs = append(defs, types.Tuple(refs...))
	}
	if tf.BitSequence != nil {
		defs = append(defs, types.BitSequence(tf.BitSequence.NumBytes, tf.BitSequence.LsbFirst))
	}

	if len(defs) != 1 {
		return types.TypeDef{}, errors.Errorf("expected exactly one definition, got %d", len(defs))
	}
	return defs[0], nil
}

func convertFields(fields []FieldFile) []types.Field {
	res := make([]types.Field, len(fields))
	for i, f := range fields {
		res[i] = types.Field{
			Name:     f.Name,
			Ty:       f.Type.Ref(),
			TypeName: f.TypeName,
		}
	}
	return res
}
