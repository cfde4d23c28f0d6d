// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package scaleutils

import "fmt"

var (
	// ErrDanglingReference is returned when a reachable type reference has no
	// entry in the backing type map.
	ErrDanglingReference = fmt.Errorf("dangling type reference")

	// ErrProofMismatch is returned when a proof does not recompute to the claimed root.
	ErrProofMismatch = fmt.Errorf("proof mismatch")

	// ErrEncodingOverflow is returned when a length or count exceeds the range of its compact encoding.
	ErrEncodingOverflow = fmt.Errorf("encoding overflow")

	ErrInvalidIndex  = fmt.Errorf("leaf index out of range")
	ErrEmptyProof    = fmt.Errorf("no leaves requested")
	ErrUnknownTypeID = fmt.Errorf("type id not part of the registry")
)

var (
	// ErrDigestDisabled is returned when proofs are requested from metadata built
	// without merkleization.
	ErrDigestDisabled = fmt.Errorf("merkleization disabled")
)
