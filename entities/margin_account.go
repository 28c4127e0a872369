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

// MarginAccount is the SQL row shape of one party's position on one
// pool, upserted in place on every margin update.
type MarginAccount struct {
	Party               string
	PoolID              PoolID
	BalanceRisky        num.Decimal
	BalanceStable       num.Decimal
	Liquidity           num.Decimal
	LastFeeGrowthRisky  num.Decimal
	LastFeeGrowthStable num.Decimal
	TauTime             time.Time
}

// MarginAccountFromEvent maps the position carried on a margin update
// event onto its row shape, stamped with the event time.
func MarginAccountFromEvent(pos *types.Position, tauTime time.Time) MarginAccount {
	return MarginAccount{
		Party:               pos.Party,
		PoolID:              PoolID(pos.PoolID),
		BalanceRisky:        num.DecimalFromUint(pos.BalanceRisky),
		BalanceStable:       num.DecimalFromUint(pos.BalanceStable),
		Liquidity:           num.DecimalFromUint(pos.Liquidity),
		LastFeeGrowthRisky:  num.DecimalFromUint(pos.LastFeeGrowthRisky),
		LastFeeGrowthStable: num.DecimalFromUint(pos.LastFeeGrowthStable),
		TauTime:             tauTime,
	}
}

// ToDomain rebuilds the engine position from the row.
func (m MarginAccount) ToDomain() (*types.Position, error) {
	balanceRisky, err := uintFromDecimal(m.BalanceRisky)
	if err != nil {
		return nil, err
	}
	balanceStable, err := uintFromDecimal(m.BalanceStable)
	if err != nil {
		return nil, err
	}
	liquidity, err := uintFromDecimal(m.Liquidity)
	if err != nil {
		return nil, err
	}
	growthRisky, err := uintFromDecimal(m.LastFeeGrowthRisky)
	if err != nil {
		return nil, err
	}
	growthStable, err := uintFromDecimal(m.LastFeeGrowthStable)
	if err != nil {
		return nil, err
	}
	return &types.Position{
		Party:               m.Party,
		PoolID:              m.PoolID.String(),
		BalanceRisky:        balanceRisky,
		BalanceStable:       balanceStable,
		Liquidity:           liquidity,
		LastFeeGrowthRisky:  growthRisky,
		LastFeeGrowthStable: growthStable,
	}, nil
}
