// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package types

import (
	"fmt"
	"io"

	"github.com/pk910/merkleized-metadata/scaleutils"
)

// DigestVersion is the discriminant of a MetadataDigest.
type DigestVersion uint8

const (
	DigestDisabled DigestVersion = 0
	DigestV1       DigestVersion = 1
)

// ChainInfo carries the chain parameters committed to by a V1 digest.
type ChainInfo struct {
	SpecVersion  uint32 `msgpack:"spec_version"`
	SpecName     string `msgpack:"spec_name"`
	Base58Prefix uint16 `msgpack:"base58_prefix"`
	Decimals     uint8  `msgpack:"decimals"`
	TokenSymbol  string `msgpack:"token_symbol"`
}

// MetadataDigestV1 is the payload of a version 1 digest.
type MetadataDigestV1 struct {
	TypesTreeRoot         Hash
	ExtrinsicMetadataHash Hash
	SpecVersion           uint32
	SpecName              string
	Base58Prefix          uint16
	Decimals              uint8
	TokenSymbol           string
}

// MetadataDigest is the versioned record whose hash is the metadata hash.
// V1 is set iff Version is DigestV1.
type MetadataDigest struct {
	Version DigestVersion
	V1      *MetadataDigestV1
}

// NewMetadataDigestV1 assembles a V1 digest from the tree root, the extrinsic
// metadata hash and the chain parameters.
func NewMetadataDigestV1(typesTreeRoot, extrinsicMetadataHash Hash, chain ChainInfo) MetadataDigest {
	return MetadataDigest{
		Version: DigestV1,
		V1: &MetadataDigestV1{
			TypesTreeRoot:         typesTreeRoot,
			ExtrinsicMetadataHash: extrinsicMetadataHash,
			SpecVersion:           chain.SpecVersion,
			SpecName:              chain.SpecName,
			Base58Prefix:          chain.Base58Prefix,
			Decimals:              chain.Decimals,
			TokenSymbol:           chain.TokenSymbol,
		},
	}
}

// DisabledMetadataDigest returns the digest used when merkleization is turned off.
func DisabledMetadataDigest() MetadataDigest {
	return MetadataDigest{Version: DigestDisabled}
}

func (d *MetadataDigest) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeUint8(uint8(d.Version))
	if d.Version != DigestV1 || d.V1 == nil {
		return
	}
	v1 := d.V1
	enc.EncodeBytes(v1.TypesTreeRoot[:])
	enc.EncodeBytes(v1.ExtrinsicMetadataHash[:])
	enc.EncodeUint32(v1.SpecVersion)
	enc.EncodeString(v1.SpecName)
	enc.EncodeUint16(v1.Base58Prefix)
	enc.EncodeUint8(v1.Decimals)
	enc.EncodeString(v1.TokenSymbol)
}

// Validate checks that the payload matches the version tag.
func (d *MetadataDigest) Validate() error {
	switch d.Version {
	case DigestDisabled:
		return nil
	case DigestV1:
		if d.V1 == nil {
			return fmt.Errorf("v1 digest without payload")
		}
		return nil
	default:
		return fmt.Errorf("unknown digest version %d", d.Version)
	}
}

// Encode returns the canonical encoding.
func (d *MetadataDigest) Encode() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return scaleutils.Marshal(d)
}

// EncodeTo writes the canonical encoding to w.
func (d *MetadataDigest) EncodeTo(w io.Writer) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return scaleutils.MarshalTo(w, d)
}

// Hash returns the metadata hash.
func (d *MetadataDigest) Hash() (Hash, error) {
	if err := d.Validate(); err != nil {
		return Hash{}, err
	}
	return hashEncoding(d.MarshalSCALETo)
}
