// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package types

import (
	"io"

	"github.com/pk910/merkleized-metadata/scaleutils"
)

// SignedExtensionMetadata describes one signed extension of the extrinsic format.
type SignedExtensionMetadata struct {
	Identifier           string  `msgpack:"id"`
	IncludedInExtrinsic  TypeRef `msgpack:"ext"`
	IncludedInSignedData TypeRef `msgpack:"sig"`
}

func (s *SignedExtensionMetadata) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeString(s.Identifier)
	s.IncludedInExtrinsic.MarshalSCALETo(enc)
	s.IncludedInSignedData.MarshalSCALETo(enc)
}

// ExtrinsicMetadata describes the extrinsic format. SignedExtensions are kept in wire
// order; reordering them changes the hash.
type ExtrinsicMetadata struct {
	Version          uint8                     `msgpack:"v"`
	AddressTy        TypeRef                   `msgpack:"a"`
	CallTy           TypeRef                   `msgpack:"c"`
	SignatureTy      TypeRef                   `msgpack:"s"`
	SignedExtensions []SignedExtensionMetadata `msgpack:"x,omitempty"`
}

func (e *ExtrinsicMetadata) MarshalSCALETo(enc scaleutils.Encoder) {
	enc.EncodeUint8(e.Version)
	e.AddressTy.MarshalSCALETo(enc)
	e.CallTy.MarshalSCALETo(enc)
	e.SignatureTy.MarshalSCALETo(enc)
	scaleutils.MarshalVector(enc, e.SignedExtensions, func(enc scaleutils.Encoder, s *SignedExtensionMetadata) {
		s.MarshalSCALETo(enc)
	})
}

// Encode returns the canonical encoding.
func (e *ExtrinsicMetadata) Encode() ([]byte, error) {
	return scaleutils.Marshal(e)
}

// EncodeTo writes the canonical encoding to w.
func (e *ExtrinsicMetadata) EncodeTo(w io.Writer) error {
	return scaleutils.MarshalTo(w, e)
}

// Hash returns the BLAKE3 hash of the canonical encoding.
func (e *ExtrinsicMetadata) Hash() (Hash, error) {
	return hashEncoding(e.MarshalSCALETo)
}

// RootRefs returns the root set of the types tree in wire order: address, call and
// signature, then both references of every signed extension.
func (e *ExtrinsicMetadata) RootRefs() []TypeRef {
	refs := make([]TypeRef, 0, 3+2*len(e.SignedExtensions))
	refs = append(refs, e.AddressTy, e.CallTy, e.SignatureTy)
	for _, s := range e.SignedExtensions {
		refs = append(refs, s.IncludedInExtrinsic, s.IncludedInSignedData)
	}
	return refs
}

// MapRefs returns a copy with every reference replaced by fn(ref).
func (e *ExtrinsicMetadata) MapRefs(fn func(TypeRef) TypeRef) ExtrinsicMetadata {
	res := ExtrinsicMetadata{
		Version:     e.Version,
		AddressTy:   fn(e.AddressTy),
		CallTy:      fn(e.CallTy),
		SignatureTy: fn(e.SignatureTy),
	}
	if e.SignedExtensions != nil {
		res.SignedExtensions = make([]SignedExtensionMetadata, len(e.SignedExtensions))
		for i, s := range e.SignedExtensions {
			res.SignedExtensions[i] = SignedExtensionMetadata{
				Identifier:           s.Identifier,
				IncludedInExtrinsic:  fn(s.IncludedInExtrinsic),
				IncludedInSignedData: fn(s.IncludedInSignedData),
			}
		}
	}
	return res
}
