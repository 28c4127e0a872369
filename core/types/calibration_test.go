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

package types_test

import (
	"testing"
	"time"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalibration() *types.Calibration {
	return &types.Calibration{
		Strike:   num.MustUintFromString("1000000000000000000000", 10), // 1000 * 1e18
		Sigma:    num.NewUint(1_000_000_000_000_000_000),               // 100%
		Maturity: 1767225600,                                           // 2026-01-01
	}
}

func TestCalibrationHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a, b := testCalibration(), testCalibration()
		assert.Equal(t, a.Hash(), b.Hash())
		assert.Len(t, a.Hash(), 64)
	})

	t.Run("sensitive to every field", func(t *testing.T) {
		base := testCalibration().Hash()

		c := testCalibration()
		c.Strike.Add(c.Strike, num.UintOne())
		assert.NotEqual(t, base, c.Hash())

		c = testCalibration()
		c.Sigma.Add(c.Sigma, num.UintOne())
		assert.NotEqual(t, base, c.Hash())

		c = testCalibration()
		c.Maturity++
		assert.NotEqual(t, base, c.Hash())
	})
}

func TestCalibrationValidate(t *testing.T) {
	require.NoError(t, testCalibration().Validate())

	c := testCalibration()
	c.Strike = num.UintZero()
	assert.ErrorIs(t, c.Validate(), types.ErrInvalidCalibration)

	c = testCalibration()
	c.Sigma = nil
	assert.ErrorIs(t, c.Validate(), types.ErrInvalidCalibration)

	c = testCalibration()
	c.Maturity = 0
	assert.ErrorIs(t, c.Validate(), types.ErrInvalidCalibration)
}

func TestCalibrationMaturity(t *testing.T) {
	c := testCalibration()
	before := time.Unix(c.Maturity-100, 0)
	after := time.Unix(c.Maturity+100, 0)

	assert.Equal(t, int64(100), c.TimeToMaturity(before))
	assert.Equal(t, int64(0), c.TimeToMaturity(after))
	assert.False(t, c.Expired(before))
	assert.True(t, c.Expired(after))
	assert.True(t, c.Expired(time.Unix(c.Maturity, 0)))
}

func TestCalibrationClone(t *testing.T) {
	a := testCalibration()
	b := a.Clone()
	b.Strike.Add(b.Strike, num.UintOne())
	b.Maturity++
	assert.NotEqual(t, a.Strike.String(), b.Strike.String())
	assert.NotEqual(t, a.Maturity, b.Maturity)
}

func TestPoolClone(t *testing.T) {
	p := &types.Pool{
		ID:                  "aabbcc",
		Calibration:         testCalibration(),
		ReserveRisky:        num.NewUint(100),
		ReserveStable:       num.NewUint(200),
		Liquidity:           num.NewUint(300),
		FeeBps:              15,
		FeeGrowthRisky:      num.UintZero(),
		FeeGrowthStable:     num.UintZero(),
		CumulativeRisky:     num.NewUint(1),
		CumulativeStable:    num.NewUint(2),
		CumulativeLiquidity: num.NewUint(3),
		LastTimestamp:       42,
		CreatedAt:           40,
	}
	c := p.Clone()
	c.ReserveRisky.AddSum(num.NewUint(5))
	c.FeeGrowthRisky.AddSum(num.NewUint(5))
	assert.True(t, p.ReserveRisky.EQUint64(100))
	assert.True(t, p.FeeGrowthRisky.IsZero())
}
