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
	"code.tauprotocol.io/tau/libs/num"
)

// Position is one party's footprint in one pool, margin balances held
// with the engine, liquidity shares, and the fee growth marks from the
// last time fees were settled onto the position.
type Position struct {
	Party  string
	PoolID string

	// Margin balances, deposited up front or left here by swaps
	// settling to margin.
	BalanceRisky  *num.Uint
	BalanceStable *num.Uint

	// Liquidity shares held, WAD scale.
	Liquidity *num.Uint

	// Fee growth per share at the last fee settlement on this position.
	LastFeeGrowthRisky  *num.Uint
	LastFeeGrowthStable *num.Uint
}

// NewPosition returns an empty position for the party and pool.
func NewPosition(party, poolID string) *Position {
	return &Position{
		Party:               party,
		PoolID:              poolID,
		BalanceRisky:        num.UintZero(),
		BalanceStable:       num.UintZero(),
		Liquidity:           num.UintZero(),
		LastFeeGrowthRisky:  num.UintZero(),
		LastFeeGrowthStable: num.UintZero(),
	}
}

func (p *Position) Clone() *Position {
	return &Position{
		Party:               p.Party,
		PoolID:              p.PoolID,
		BalanceRisky:        p.BalanceRisky.Clone(),
		BalanceStable:       p.BalanceStable.Clone(),
		Liquidity:           p.Liquidity.Clone(),
		LastFeeGrowthRisky:  p.LastFeeGrowthRisky.Clone(),
		LastFeeGrowthStable: p.LastFeeGrowthStable.Clone(),
	}
}

// IsEmpty reports whether the position holds nothing at all and can be
// dropped from the engine.
func (p *Position) IsEmpty() bool {
	return p.BalanceRisky.IsZero() &&
		p.BalanceStable.IsZero() &&
		p.Liquidity.IsZero()
}
