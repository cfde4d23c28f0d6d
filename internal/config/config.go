// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package config

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pk910/merkleized-metadata/internal/logging"
)

const (
	Cfg_verbose       = "verbose"
	Cfg_workers       = "workers"
	Cfg_merkleization = "merkleization"
)

var (
	defaults = map[string]interface{}{
		Cfg_verbose:       false,
		Cfg_workers:       runtime.NumCPU(),
		Cfg_merkleization: true,
	}
)

func init() {
	SetDefaults()
}

// SetDefaults registers the default values of all config keys.
func SetDefaults() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("mdhash")
	viper.AddConfigPath("/etc/mdhash/")
	viper.AddConfigPath("$HOME/.mdhash")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("MDHASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logging.Entry().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return buildConfig()
}

func buildConfig() (*Config, error) {
	c := &Config{
		Verbose:       viper.GetBool(Cfg_verbose),
		Workers:       viper.GetInt(Cfg_workers),
		Merkleization: viper.GetBool(Cfg_merkleization),
	}
	if c.Workers < 1 {
		return nil, errors.Errorf("invalid worker count %d", c.Workers)
	}

	var err error
	c.chain, err = buildChainConfig()
	if err != nil {
		return nil, errors.Wrap(err, "chain config")
	}

	if c.Verbose {
		logging.SetLevel(logrus.DebugLevel)
		logging.Entry().WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	Verbose       bool
	Workers       int
	Merkleization bool

	chain *Chain
}

func (c *Config) Chain() *Chain {
	return c.chain
}
