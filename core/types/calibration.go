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

package types

import (
	"encoding/binary"
	"fmt"
	"time"

	"code.tauprotocol.io/tau/libs/crypto"
	"code.tauprotocol.io/tau/libs/num"
)

// A year of seconds, 365 days. Sigma is annualised against this.
const SecondsPerYear int64 = 31536000

// Calibration is the immutable parameter set of a covered call pool.
// Two pools with the same calibration are the same pool, the pool ID is
// the content hash of these fields.
type Calibration struct {
	// Strike price of the replicated option, stable units at WAD scale.
	Strike *num.Uint
	// Sigma is the annualised implied volatility, WAD scale where 1e18
	// is 100%.
	Sigma *num.Uint
	// Maturity as unix seconds.
	Maturity int64
}

// Validate checks the calibration holds usable parameters. Maturity in
// the past is legal here, expiry is enforced per operation.
func (c *Calibration) Validate() error {
	if c.Strike == nil || c.Strike.IsZero() {
		return ErrInvalidCalibration
	}
	if c.Sigma == nil || c.Sigma.IsZero() {
		return ErrInvalidCalibration
	}
	if c.Maturity <= 0 {
		return ErrInvalidCalibration
	}
	return nil
}

// Hash returns the hex encoded sha3-256 over the big-endian encoding of
// (strike, sigma, maturity). This is the pool identifier.
func (c *Calibration) Hash() string {
	buf := make([]byte, 0, 72)
	strike := c.Strike.Bytes()
	sigma := c.Sigma.Bytes()
	buf = append(buf, strike[:]...)
	buf = append(buf, sigma[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.Maturity))
	return crypto.HashToHex(buf)
}

// TimeToMaturity returns the remaining life of the calibration in
// seconds, floored at zero once matured.
func (c *Calibration) TimeToMaturity(now time.Time) int64 {
	ttm := c.Maturity - now.Unix()
	if ttm < 0 {
		return 0
	}
	return ttm
}

// Expired returns true once now is at or past maturity.
func (c *Calibration) Expired(now time.Time) bool {
	return c.TimeToMaturity(now) == 0
}

func (c *Calibration) Clone() *Calibration {
	return &Calibration{
		Strike:   c.Strike.Clone(),
		Sigma:    c.Sigma.Clone(),
		Maturity: c.Maturity,
	}
}

func (c *Calibration) String() string {
	return fmt.Sprintf("strike(%s) sigma(%s) maturity(%d)",
		c.Strike.String(), c.Sigma.String(), c.Maturity)
}
