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

package logging

// Config holds the logger configuration. It lives here rather than in
// config/encoding to keep the dependency direction one way, encoding
// wraps Level for TOML but this package never imports it.
type Config struct {
	Environment string             `long:"environment" description:"dev, production" choice:"dev" choice:"production"`
	Level       Level              `long:"level" description:"debug, info, warn, error"`
	File        FileRotationConfig `group:"File" namespace:"file"`
}

// FileRotationConfig enables mirroring log output to a rotated file.
type FileRotationConfig struct {
	Enabled    bool   `long:"enabled"`
	Path       string `long:"path" description:"path of the log file"`
	MaxSizeMB  int    `long:"max-size" description:"rotate after this many megabytes"`
	MaxAgeDays int    `long:"max-age" description:"drop rotated files older than this many days"`
}

// NewDefaultConfig returns a production JSON logger config at info
// level with file output disabled.
func NewDefaultConfig() Config {
	return Config{
		Environment: "production",
		Level:       InfoLevel,
		File: FileRotationConfig{
			Enabled:    false,
			MaxSizeMB:  100,
			MaxAgeDays: 7,
		},
	}
}
