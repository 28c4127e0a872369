// Copyright (C) 2026 Tau Protocol Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config ties the per-package configurations together into the
// single TOML file the tau binary reads.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"code.tauprotocol.io/tau/broker"
	"code.tauprotocol.io/tau/core/pools"
	"code.tauprotocol.io/tau/logging"
	"code.tauprotocol.io/tau/metrics"
	"code.tauprotocol.io/tau/sqlstore"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const configFileName = "config.toml"

// Config ties together all package configuration types.
type Config struct {
	AssetRisky  string `long:"asset-risky" description:"asset key of the risky token"`
	AssetStable string `long:"asset-stable" description:"asset key of the stable token"`

	Pools    pools.Config    `group:"Pools" namespace:"pools"`
	Broker   broker.Config   `group:"Broker" namespace:"broker"`
	Metrics  metrics.Config  `group:"Metrics" namespace:"metrics"`
	SQLStore sqlstore.Config `group:"SQLStore" namespace:"sqlstore"`
	Logging  logging.Config  `group:"Logging" namespace:"logging"`
}

// NewDefaultConfig returns the defaults of every package, as specified
// at the per-package config level.
func NewDefaultConfig() Config {
	return Config{
		AssetRisky:  "RISKY",
		AssetStable: "STABLE",
		Pools:       pools.NewDefaultConfig(),
		Broker:      broker.NewDefaultConfig(),
		Metrics:     metrics.NewDefaultConfig(),
		SQLStore:    sqlstore.NewDefaultConfig(),
		Logging:     logging.NewDefaultConfig(),
	}
}

// FilePath returns the path of the config file under the given home.
func FilePath(home string) string {
	return filepath.Join(home, configFileName)
}

// HaveConfig reports whether a config file already exists under home.
func HaveConfig(home string) bool {
	_, err := os.Stat(FilePath(home))
	return err == nil
}

// Read loads the TOML config file under home on top of the defaults,
// keys absent from the file keep their default values.
func Read(home string) (*Config, error) {
	cfg := NewDefaultConfig()
	buf, err := os.ReadFile(FilePath(home))
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	return &cfg, nil
}

// Write serialises the config as TOML under home, creating the home
// directory if needed.
func Write(home string, cfg Config) error {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return errors.Wrap(err, "creating config home")
	}
	buf := bytes.Buffer{}
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "serialising config")
	}
	if err := os.WriteFile(FilePath(home), buf.Bytes(), 0o600); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
