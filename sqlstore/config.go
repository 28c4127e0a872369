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

package sqlstore

import (
	"fmt"

	"code.tauprotocol.io/tau/config/encoding"
	"code.tauprotocol.io/tau/logging"
)

// ConnectionConfig is everything needed to reach the database.
type ConnectionConfig struct {
	Host     string `long:"host" description:" "`
	Port     int    `long:"port" description:" "`
	Username string `long:"username" description:" "`
	Password string `long:"password" description:" "`
	Database string `long:"database" description:" "`
}

// GetConnectionString returns the postgres connection URI.
func (c ConnectionConfig) GetConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

// Config is the configuration of the sqlstore package.
type Config struct {
	Level            encoding.LogLevel `long:"log-level"`
	Enabled          encoding.Bool     `long:"enabled" description:" "`
	ConnectionConfig ConnectionConfig  `group:"ConnectionConfig" namespace:"connectionconfig"`
}

// NewDefaultConfig returns the package defaults, pointing at a local
// postgres.
func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Enabled: false,
		ConnectionConfig: ConnectionConfig{
			Host:     "localhost",
			Port:     5432,
			Username: "tau",
			Password: "tau",
			Database: "tau",
		},
	}
}
