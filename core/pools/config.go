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

package pools

import (
	"time"

	"code.tauprotocol.io/tau/config/encoding"
	"code.tauprotocol.io/tau/logging"
)

const (
	// namedLogger is the identifier for package and should ideally match the package name
	// this is simply emitted as a hierarchical label e.g. 'pools.quoter'.
	namedLogger = "pools"
)

// Config is the configuration of the pools package.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// SettlementTimeout bounds the context handed to settlement
	// callbacks. The engine itself completes synchronously, the
	// deadline is advisory for whatever I/O the callback performs.
	SettlementTimeout encoding.Duration `long:"settlement-timeout"`

	// InvariantToleranceUnits is the absolute number of smallest stable
	// units the post-operation invariant may fall short of the
	// pre-operation one before the operation is rejected.
	InvariantToleranceUnits uint64 `long:"invariant-tolerance-units"`

	// MinimumLiquidity is the number of liquidity shares retained by
	// the engine at pool creation, never removable.
	MinimumLiquidity uint64 `long:"minimum-liquidity"`

	// QuoteCacheSize is the number of swap quotes kept by the quoter.
	QuoteCacheSize int `long:"quote-cache-size"`
}

// NewDefaultConfig creates an instance of the package specific configuration, given a
// pointer to a logger instance to be used for logging within the package.
func NewDefaultConfig() Config {
	return Config{
		Level:                   encoding.LogLevel{Level: logging.InfoLevel},
		SettlementTimeout:       encoding.Duration{Duration: 5 * time.Second},
		InvariantToleranceUnits: 100,
		MinimumLiquidity:        1000,
		QuoteCacheSize:          1024,
	}
}
