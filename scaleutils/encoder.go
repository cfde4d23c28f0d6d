// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package scaleutils

// Encoder writes SCALE primitives in the canonical form used by the metadata hash.
//
// The first write error is sticky: once an encoder failed, all subsequent calls are
// no-ops and Err returns the original failure.
type Encoder interface {
	GetPosition() int
	EncodeBool(v bool)
	EncodeUint8(v uint8)
	EncodeUint16(v uint16)
	EncodeUint32(v uint32)
	EncodeCompact(v uint32)
	EncodeLength(n int)
	EncodeBytes(v []byte)
	EncodeString(v string)
	EncodeOptionString(v *string)
	Err() error
}
