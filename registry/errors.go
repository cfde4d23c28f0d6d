// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package registry

import (
	"fmt"

	"github.com/pk910/merkleized-metadata/scaleutils"
)

// DanglingReferenceError reports a reachable ById reference without a backing type.
type DanglingReferenceError struct {
	TypeID uint32
	// ReferencedBy is the id of the referencing type, nil for a root reference.
	ReferencedBy *uint32
}

func (e *DanglingReferenceError) Error() string {
	if e.ReferencedBy == nil {
		return fmt.Sprintf("%v: type %d referenced by extrinsic metadata", scaleutils.ErrDanglingReference, e.TypeID)
	}
	return fmt.Sprintf("%v: type %d referenced by type %d", scaleutils.ErrDanglingReference, e.TypeID, *e.ReferencedBy)
}

func (e *DanglingReferenceError) Unwrap() error {
	return scaleutils.ErrDanglingReference
}
