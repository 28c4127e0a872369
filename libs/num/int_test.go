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

package num_test

import (
	"testing"

	"code.tauprotocol.io/tau/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntSigns(t *testing.T) {
	t.Run("zero is neither positive nor negative", func(t *testing.T) {
		z := num.IntZero()
		assert.True(t, z.IsZero())
		assert.False(t, z.IsPositive())
		assert.False(t, z.IsNegative())
	})

	t.Run("negative zero normalises", func(t *testing.T) {
		z := num.IntFromUint(num.UintZero(), false)
		assert.False(t, z.IsNegative())
		assert.Equal(t, "0", z.String())
	})

	t.Run("from int64", func(t *testing.T) {
		assert.True(t, num.NewInt(-5).IsNegative())
		assert.True(t, num.NewInt(5).IsPositive())
		assert.Equal(t, "-5", num.NewInt(-5).String())
	})
}

func TestIntArithmetic(t *testing.T) {
	t.Run("add across zero", func(t *testing.T) {
		i := num.NewInt(-10)
		i.Add(num.NewInt(25))
		assert.True(t, i.IsPositive())
		assert.Equal(t, "15", i.String())
	})

	t.Run("sub across zero", func(t *testing.T) {
		i := num.NewInt(10)
		i.Sub(num.NewInt(25))
		assert.True(t, i.IsNegative())
		assert.Equal(t, "-15", i.String())
	})

	t.Run("sub to exactly zero", func(t *testing.T) {
		i := num.NewInt(10)
		i.SubUint(num.NewUint(10))
		assert.True(t, i.IsZero())
		assert.False(t, i.IsNegative())
	})

	t.Run("add uint", func(t *testing.T) {
		i := num.NewInt(-3)
		i.AddUint(num.NewUint(1))
		assert.Equal(t, "-2", i.String())
	})
}

func TestIntCompare(t *testing.T) {
	neg, zero, pos := num.NewInt(-7), num.IntZero(), num.NewInt(7)

	assert.True(t, neg.LT(zero))
	assert.True(t, neg.LT(pos))
	assert.True(t, pos.GT(zero))
	assert.True(t, pos.GTE(pos.Clone()))
	assert.True(t, neg.LTE(neg.Clone()))
	assert.True(t, zero.GT(neg))

	// larger magnitude is smaller when negative
	assert.True(t, num.NewInt(-10).LT(num.NewInt(-2)))
}

func TestIntFromString(t *testing.T) {
	i, fail := num.IntFromString("-123456789012345678901234567890", 10)
	require.False(t, fail)
	assert.True(t, i.IsNegative())
	assert.Equal(t, "-123456789012345678901234567890", i.String())

	_, fail = num.IntFromString("zzz", 10)
	assert.True(t, fail)
}

func TestIntDecimalConversion(t *testing.T) {
	i := num.NewInt(-42)
	d := num.DecimalFromInt(i)
	assert.Equal(t, "-42", d.String())
}
