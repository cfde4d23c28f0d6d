// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package main

import (
	"os"

	"github.com/pk910/merkleized-metadata/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
