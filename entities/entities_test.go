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

package entities_test

import (
	"strings"
	"testing"
	"time"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/entities"
	"code.tauprotocol.io/tau/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool() *types.Pool {
	return &types.Pool{
		ID: strings.Repeat("ab", 32),
		Calibration: &types.Calibration{
			Strike:   num.MustUintFromString("1000000000000000000000", 10),
			Sigma:    num.NewUint(1_000_000_000_000_000_000),
			Maturity: 1798761600,
		},
		ReserveRisky:        num.NewUint(500_000_000_000_000_000),
		ReserveStable:       num.MustUintFromString("308539560000000000000", 10),
		Liquidity:           num.NewUint(1_000_000_000_000_000_000),
		FeeBps:              15,
		FeeGrowthRisky:      num.NewUint(42),
		FeeGrowthStable:     num.NewUint(1337),
		CumulativeRisky:     num.MustUintFromString("123456789000000000000000", 10),
		CumulativeStable:    num.MustUintFromString("987654321000000000000000", 10),
		CumulativeLiquidity: num.MustUintFromString("555000000000000000000000", 10),
		LastTimestamp:       1767225600,
		CreatedAt:           1767225000,
	}
}

func TestPoolRoundTrip(t *testing.T) {
	pool := testPool()
	now := time.Unix(1767226000, 0)
	row := entities.PoolFromEvent(pool, now)

	assert.Equal(t, entities.PoolID(pool.ID), row.ID)
	assert.Equal(t, now, row.TauTime)

	back, err := row.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, pool, back)
}

func TestPoolIDBytes(t *testing.T) {
	id := entities.PoolID(strings.Repeat("0f", 32))
	b, err := id.Bytes()
	require.NoError(t, err)
	assert.Len(t, b, 32)

	_, err = entities.PoolID("not hex").Bytes()
	assert.ErrorIs(t, err, entities.ErrInvalidID)
}

func TestObservationRoundTrip(t *testing.T) {
	obs := &types.Observation{
		PoolID:              strings.Repeat("cd", 32),
		Timestamp:           1767225600,
		CumulativeRisky:     num.MustUintFromString("123456789000000000000000", 10),
		CumulativeStable:    num.MustUintFromString("987654321000000000000000", 10),
		CumulativeLiquidity: num.MustUintFromString("555000000000000000000000", 10),
	}
	row := entities.ObservationFromEvent(obs, time.Unix(1767226000, 0))

	back, err := row.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, obs, back)
}

func TestSwapRoundTrip(t *testing.T) {
	res := &types.SwapResult{
		PoolID:        strings.Repeat("ef", 32),
		Direction:     types.SwapStableIn,
		In:            num.MustUintFromString("10000000000000000000", 10),
		Out:           num.NewUint(9_876_543_210_000_000),
		Fee:           num.NewUint(14_814_814),
		PostInvariant: num.NewInt(-42),
	}
	row := entities.SwapFromEvent("party-1", res, 7, time.Unix(1767226000, 0))

	assert.Equal(t, uint64(7), row.Seq)
	assert.Equal(t, "party-1", row.Party)
	assert.Equal(t, "stable-in", row.Direction)

	back, err := row.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, res, back)

	row.Direction = "sideways"
	_, err = row.ToDomain()
	assert.ErrorIs(t, err, entities.ErrInvalidEntity)
}

func TestMarginAccountRoundTrip(t *testing.T) {
	pos := &types.Position{
		Party:               "party-1",
		PoolID:              strings.Repeat("ab", 32),
		BalanceRisky:        num.NewUint(1_000_000),
		BalanceStable:       num.NewUint(2_000_000),
		Liquidity:           num.NewUint(3_000_000),
		LastFeeGrowthRisky:  num.NewUint(42),
		LastFeeGrowthStable: num.NewUint(1337),
	}
	row := entities.MarginAccountFromEvent(pos, time.Unix(1767226000, 0))

	back, err := row.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, pos, back)
}

func TestNegativeDecimalRejected(t *testing.T) {
	pool := testPool()
	row := entities.PoolFromEvent(pool, time.Unix(1767226000, 0))
	row.ReserveRisky = num.MustDecimalFromString("-1")
	_, err := row.ToDomain()
	assert.ErrorIs(t, err, entities.ErrInvalidEntity)
}
