// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package registry

import (
	"sort"

	"github.com/pk910/merkleized-metadata/types"
)

// Closure returns the ascending ids of all types reachable from ids, ids included.
func Closure(typeMap types.TypeMap, ids []uint32) ([]uint32, error) {
	roots := make([]types.TypeRef, len(ids))
	for i, id := range ids {
		roots[i] = types.ById(id)
	}

	order, _, err := discover(typeMap, roots)
	if err != nil {
		return nil, err
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order, nil
}
