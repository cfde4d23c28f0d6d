// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package scaleutils

import (
	"bytes"
	"io"
)

// Marshaler is implemented by every value that has a canonical SCALE encoding.
type Marshaler interface {
	MarshalSCALETo(enc Encoder)
}

// Marshal returns the canonical encoding of v.
func Marshal(v Marshaler) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 64))
	enc := NewStreamEncoder(buf)
	v.MarshalSCALETo(enc)
	if err := enc.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalTo writes the canonical encoding of v to w.
func MarshalTo(w io.Writer, v Marshaler) error {
	enc := NewStreamEncoder(w)
	v.MarshalSCALETo(enc)
	return enc.Err()
}

// MarshalCompact returns the SCALE compact encoding of v.
func MarshalCompact(v uint32) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 5))
	enc := NewStreamEncoder(buf)
	enc.EncodeCompact(v)
	return buf.Bytes()
}

// MarshalVector encodes a length prefix followed by every item of items.
func MarshalVector[T any](enc Encoder, items []T, itemCb func(enc Encoder, item *T)) {
	enc.EncodeLength(len(items))
	for i := range items {
		if enc.Err() != nil {
			return
		}
		itemCb(enc, &items[i])
	}
}
