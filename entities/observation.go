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
	"time"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
)

// Observation is the SQL row shape of one oracle accumulator snapshot.
// Accumulators are stored as NUMERIC, they wrap mod 2^256 so consumers
// must difference them with wrapping subtraction on the engine side.
type Observation struct {
	PoolID              PoolID
	Timestamp           time.Time
	CumulativeRisky     num.Decimal
	CumulativeStable    num.Decimal
	CumulativeLiquidity num.Decimal
	TauTime             time.Time
}

// ObservationFromEvent maps the observation carried on a pool tick
// event onto its row shape, stamped with the event time.
func ObservationFromEvent(o *types.Observation, tauTime time.Time) Observation {
	return Observation{
		PoolID:              PoolID(o.PoolID),
		Timestamp:           time.Unix(o.Timestamp, 0),
		CumulativeRisky:     num.DecimalFromUint(o.CumulativeRisky),
		CumulativeStable:    num.DecimalFromUint(o.CumulativeStable),
		CumulativeLiquidity: num.DecimalFromUint(o.CumulativeLiquidity),
		TauTime:             tauTime,
	}
}

// ToDomain rebuilds the engine observation from the row.
func (o Observation) ToDomain() (*types.Observation, error) {
	cumRisky, err := uintFromDecimal(o.CumulativeRisky)
	if err != nil {
		return nil, err
	}
	cumStable, err := uintFromDecimal(o.CumulativeStable)
	if err != nil {
		return nil, err
	}
	cumLiquidity, err := uintFromDecimal(o.CumulativeLiquidity)
	if err != nil {
		return nil, err
	}
	return &types.Observation{
		PoolID:              o.PoolID.String(),
		Timestamp:           o.Timestamp.Unix(),
		CumulativeRisky:     cumRisky,
		CumulativeStable:    cumStable,
		CumulativeLiquidity: cumLiquidity,
	}, nil
}
