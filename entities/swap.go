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
	"fmt"
	"time"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
)

// Swap is the SQL row shape of one settled swap. Rows are append-only,
// (pool_id, seq) is the natural key since the broker hands out sequence
// numbers in send order.
type Swap struct {
	PoolID        PoolID
	Seq           uint64
	Party         string
	Direction     string
	AmountIn      num.Decimal
	AmountOut     num.Decimal
	Fee           num.Decimal
	PostInvariant num.Decimal
	TauTime       time.Time
}

// SwapFromEvent maps a settled swap result onto its row shape, stamped
// with the broker sequence and event time.
func SwapFromEvent(party string, res *types.SwapResult, seq uint64, tauTime time.Time) Swap {
	postInvariant := num.DecimalZero()
	if res.PostInvariant != nil {
		postInvariant = res.PostInvariant.ToDecimal()
	}
	return Swap{
		PoolID:        PoolID(res.PoolID),
		Seq:           seq,
		Party:         party,
		Direction:     res.Direction.String(),
		AmountIn:      num.DecimalFromUint(res.In),
		AmountOut:     num.DecimalFromUint(res.Out),
		Fee:           num.DecimalFromUint(res.Fee),
		PostInvariant: postInvariant,
		TauTime:       tauTime,
	}
}

// ToDomain rebuilds the engine swap result from the row.
func (s Swap) ToDomain() (*types.SwapResult, error) {
	in, err := uintFromDecimal(s.AmountIn)
	if err != nil {
		return nil, err
	}
	out, err := uintFromDecimal(s.AmountOut)
	if err != nil {
		return nil, err
	}
	fee, err := uintFromDecimal(s.Fee)
	if err != nil {
		return nil, err
	}
	dir := types.SwapRiskyIn
	switch s.Direction {
	case types.SwapRiskyIn.String():
	case types.SwapStableIn.String():
		dir = types.SwapStableIn
	default:
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidEntity, s.Direction)
	}
	postInvariant, fail := num.IntFromString(s.PostInvariant.String(), 10)
	if fail {
		return nil, fmt.Errorf("%w: invariant %s", ErrInvalidEntity, s.PostInvariant.String())
	}
	return &types.SwapResult{
		PoolID:        s.PoolID.String(),
		Direction:     dir,
		In:            in,
		Out:           out,
		Fee:           fee,
		PostInvariant: postInvariant,
	}, nil
}
