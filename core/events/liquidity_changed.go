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

package events

import (
	"context"

	"code.tauprotocol.io/tau/libs/num"
)

// LiquidityChanged reports a liquidity allocation or removal, deltas
// are always positive with Added saying which way they went.
type LiquidityChanged struct {
	*Base
	party          string
	poolID         string
	added          bool
	deltaLiquidity *num.Uint
	deltaRisky     *num.Uint
	deltaStable    *num.Uint
}

func NewLiquidityChanged(ctx context.Context, party, poolID string, added bool, deltaLiquidity, deltaRisky, deltaStable *num.Uint) *LiquidityChanged {
	return &LiquidityChanged{
		Base:           newBase(ctx, LiquidityChangedEvent),
		party:          party,
		poolID:         poolID,
		added:          added,
		deltaLiquidity: deltaLiquidity.Clone(),
		deltaRisky:     deltaRisky.Clone(),
		deltaStable:    deltaStable.Clone(),
	}
}

func (l LiquidityChanged) PoolID() string {
	return l.poolID
}

func (l LiquidityChanged) Party() string {
	return l.party
}

func (l LiquidityChanged) IsParty(id string) bool {
	return l.party == id
}

func (l LiquidityChanged) Added() bool {
	return l.added
}

func (l LiquidityChanged) DeltaLiquidity() *num.Uint {
	return l.deltaLiquidity.Clone()
}

func (l LiquidityChanged) DeltaRisky() *num.Uint {
	return l.deltaRisky.Clone()
}

func (l LiquidityChanged) DeltaStable() *num.Uint {
	return l.deltaStable.Clone()
}
