// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

// Package cidutil renders metadata hashes as multihashes, multibase strings and CIDs,
// and parses any of these forms back.
package cidutil

import (
	"encoding/hex"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

const (
	// CIDEncoding is the multicodec of metadata hash CIDs.
	CIDEncoding = cid.Raw
)

func Multihash(h [32]byte) (multihash.Multihash, error) {
	mh, err := multihash.Encode(h[:], multihash.BLAKE3)
	if err != nil {
		return nil, errors.Wrap(err, "encoding multihash")
	}
	return mh, nil
}

// Multibase returns the base58btc multibase form of the hash's multihash.
func Multibase(h [32]byte) (string, error) {
	mh, err := Multihash(h)
	if err != nil {
		return "", err
	}
	return multibase.Encode(multibase.Base58BTC, mh)
}

func CID(h [32]byte) (cid.Cid, error) {
	mh, err := Multihash(h)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(CIDEncoding, mh), nil
}

// ParseHash accepts a hex string with optional 0x prefix, a multibase multihash or a CID.
func ParseHash(s string) ([32]byte, error) {
	var res [32]byte

	s = strings.TrimSpace(s)
	if raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x")); err == nil {
		if len(raw) != len(res) {
			return res, errors.Errorf("expected 32 byte hash, got %d bytes", len(raw))
		}
		copy(res[:], raw)
		return res, nil
	}

	var mh multihash.Multihash
	if c, err := cid.Decode(s); err == nil {
		mh = c.Hash()
	} else {
		_, raw, err := multibase.Decode(s)
		if err != nil {
			return res, errors.Wrap(err, "decoding multibase")
		}
		mh = raw
	}

	decoded, err := multihash.Decode(mh)
	if err != nil {
		return res, errors.Wrap(err, "decoding multihash")
	}
	if decoded.Code != multihash.BLAKE3 || len(decoded.Digest) != len(res) {
		return res, errors.Errorf("expected 32 byte blake3 multihash, got %s with %d bytes", decoded.Name, len(decoded.Digest))
	}

	copy(res[:], decoded.Digest)
	return res, nil
}
