// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package config

import (
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/pk910/merkleized-metadata/types"
)

// Chain holds overrides of the chain parameters of a runtime description.
// Unset values keep the description's value.
type Chain struct {
	SpecName     *string
	SpecVersion  *uint32
	Base58Prefix *uint16
	Decimals     *uint8
	TokenSymbol  *string
}

const (
	Cfg_chain_specName     = "chain.spec_name"
	Cfg_chain_specVersion  = "chain.spec_version"
	Cfg_chain_base58Prefix = "chain.base58_prefix"
	Cfg_chain_decimals     = "chain.decimals"
	Cfg_chain_tokenSymbol  = "chain.token_symbol"
)

func buildChainConfig() (*Chain, error) {
	c := &Chain{}

	if viper.IsSet(Cfg_chain_specName) {
		v := viper.GetString(Cfg_chain_specName)
		c.SpecName = &v
	}
	if viper.IsSet(Cfg_chain_tokenSymbol) {
		v := viper.GetString(Cfg_chain_tokenSymbol)
		c.TokenSymbol = &v
	}
	if viper.IsSet(Cfg_chain_specVersion) {
		v := viper.GetUint64(Cfg_chain_specVersion)
		if v > math.MaxUint32 {
			return nil, errors.Errorf("%s out of range: %d", Cfg_chain_specVersion, v)
		}
		u := uint32(v)
		c.SpecVersion = &u
	}
	if viper.IsSet(Cfg_chain_base58Prefix) {
		v := viper.GetUint64(Cfg_chain_base58Prefix)
		if v > math.MaxUint16 {
			return nil, errors.Errorf("%s out of range: %d", Cfg_chain_base58Prefix, v)
		}
		u := uint16(v)
		c.Base58Prefix = &u
	}
	if viper.IsSet(Cfg_chain_decimals) {
		v := viper.GetUint64(Cfg_chain_decimals)
		if v > math.MaxUint8 {
			return nil, errors.Errorf("%s out of range: %d", Cfg_chain_decimals, v)
		}
		u := uint8(v)
		c.Decimals = &u
	}

	return c, nil
}

// Apply returns info with all configured overrides applied.
func (c *Chain) Apply(info types.ChainInfo) types.ChainInfo {
	if c.SpecName != nil {
		info.SpecName = *c.SpecName
	}
	if c.SpecVersion != nil {
		info.SpecVersion = *c.SpecVersion
	}
	if c.Base58Prefix != nil {
		info.Base58Prefix = *c.Base58Prefix
	}
	if c.Decimals != nil {
		info.Decimals = *c.Decimals
	}
	if c.TokenSymbol != nil {
		info.TokenSymbol = *c.TokenSymbol
	}
	return info
}
