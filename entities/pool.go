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

package entities

import (
	"encoding/hex"
	"fmt"
	"time"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"

	"github.com/jackc/pgtype"
)

// PoolID is the hex content hash of a pool's calibration. It is stored
// as raw bytes, the hex form only exists on the Go side.
type PoolID string

func (id PoolID) String() string {
	return string(id)
}

func (id PoolID) Bytes() ([]byte, error) {
	bytes, err := hex.DecodeString(string(id))
	if err != nil {
		return nil, fmt.Errorf("decoding '%s': %w", string(id), ErrInvalidID)
	}
	return bytes, nil
}

func (id PoolID) EncodeBinary(_ *pgtype.ConnInfo, buf []byte) ([]byte, error) {
	bytes, err := id.Bytes()
	if err != nil {
		return buf, err
	}
	return append(buf, bytes...), nil
}

func (id *PoolID) DecodeBinary(_ *pgtype.ConnInfo, src []byte) error {
	*id = PoolID(hex.EncodeToString(src))
	return nil
}

// Pool is the SQL row shape of a pool. Token amounts and accumulators
// are NUMERIC columns surfaced as decimals, the engine's WAD scale is
// kept as-is.
type Pool struct {
	ID                  PoolID
	Strike              num.Decimal
	Sigma               num.Decimal
	Maturity            time.Time
	FeeBps              int
	ReserveRisky        num.Decimal
	ReserveStable       num.Decimal
	Liquidity           num.Decimal
	FeeGrowthRisky      num.Decimal
	FeeGrowthStable     num.Decimal
	CumulativeRisky     num.Decimal
	CumulativeStable    num.Decimal
	CumulativeLiquidity num.Decimal
	LastTimestamp       time.Time
	CreatedAt           time.Time
	TauTime             time.Time
}

// PoolFromEvent maps the engine pool carried on a bus event onto its
// row shape, stamped with the event time.
func PoolFromEvent(p *types.Pool, tauTime time.Time) Pool {
	return Pool{
		ID:                  PoolID(p.ID),
		Strike:              num.DecimalFromUint(p.Calibration.Strike),
		Sigma:               num.DecimalFromUint(p.Calibration.Sigma),
		Maturity:            time.Unix(p.Calibration.Maturity, 0),
		FeeBps:              int(p.FeeBps),
		ReserveRisky:        num.DecimalFromUint(p.ReserveRisky),
		ReserveStable:       num.DecimalFromUint(p.ReserveStable),
		Liquidity:           num.DecimalFromUint(p.Liquidity),
		FeeGrowthRisky:      num.DecimalFromUint(p.FeeGrowthRisky),
		FeeGrowthStable:     num.DecimalFromUint(p.FeeGrowthStable),
		CumulativeRisky:     num.DecimalFromUint(p.CumulativeRisky),
		CumulativeStable:    num.DecimalFromUint(p.CumulativeStable),
		CumulativeLiquidity: num.DecimalFromUint(p.CumulativeLiquidity),
		LastTimestamp:       time.Unix(p.LastTimestamp, 0),
		CreatedAt:           time.Unix(p.CreatedAt, 0),
		TauTime:             tauTime,
	}
}

// ToDomain rebuilds the engine pool from the row.
func (p Pool) ToDomain() (*types.Pool, error) {
	strike, err := uintFromDecimal(p.Strike)
	if err != nil {
		return nil, err
	}
	sigma, err := uintFromDecimal(p.Sigma)
	if err != nil {
		return nil, err
	}
	reserveRisky, err := uintFromDecimal(p.ReserveRisky)
	if err != nil {
		return nil, err
	}
	reserveStable, err := uintFromDecimal(p.ReserveStable)
	if err != nil {
		return nil, err
	}
	liquidity, err := uintFromDecimal(p.Liquidity)
	if err != nil {
		return nil, err
	}
	growthRisky, err := uintFromDecimal(p.FeeGrowthRisky)
	if err != nil {
		return nil, err
	}
	growthStable, err := uintFromDecimal(p.FeeGrowthStable)
	if err != nil {
		return nil, err
	}
	cumRisky, err := uintFromDecimal(p.CumulativeRisky)
	if err != nil {
		return nil, err
	}
	cumStable, err := uintFromDecimal(p.CumulativeStable)
	if err != nil {
		return nil, err
	}
	cumLiquidity, err := uintFromDecimal(p.CumulativeLiquidity)
	if err != nil {
		return nil, err
	}
	return &types.Pool{
		ID: p.ID.String(),
		Calibration: &types.Calibration{
			Strike:   strike,
			Sigma:    sigma,
			Maturity: p.Maturity.Unix(),
		},
		ReserveRisky:        reserveRisky,
		ReserveStable:       reserveStable,
		Liquidity:           liquidity,
		FeeBps:              uint32(p.FeeBps),
		FeeGrowthRisky:      growthRisky,
		FeeGrowthStable:     growthStable,
		CumulativeRisky:     cumRisky,
		CumulativeStable:    cumStable,
		CumulativeLiquidity: cumLiquidity,
		LastTimestamp:       p.LastTimestamp.Unix(),
		CreatedAt:           p.CreatedAt.Unix(),
	}, nil
}

func uintFromDecimal(d num.Decimal) (*num.Uint, error) {
	u, overflow := num.UintFromDecimal(d)
	if overflow {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntity, d.String())
	}
	return u, nil
}
