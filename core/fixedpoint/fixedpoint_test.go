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

package fixedpoint_test

import (
	"testing"

	"code.tauprotocol.io/tau/core/fixedpoint"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wad(units int64) *num.Uint {
	w := num.NewUint(uint64(units))
	return w.Mul(w, fixedpoint.Wad)
}

func uintStr(t *testing.T, s string) *num.Uint {
	t.Helper()
	return num.MustUintFromString(s, 10)
}

// assertWithinUnits checks |want - got| <= tol smallest units.
func assertWithinUnits(t *testing.T, want, got *num.Uint, tol uint64) {
	t.Helper()
	delta, _ := num.UintZero().Delta(want, got)
	assert.True(t, delta.LTE(num.NewUint(tol)),
		"want %s got %s, off by %s units", want.String(), got.String(), delta.String())
}

func TestMulDiv(t *testing.T) {
	t.Run("rounding directions", func(t *testing.T) {
		down, err := fixedpoint.MulDivDown(num.NewUint(10), num.NewUint(10), num.NewUint(3))
		require.NoError(t, err)
		assert.True(t, down.EQUint64(33))

		up, err := fixedpoint.MulDivUp(num.NewUint(10), num.NewUint(10), num.NewUint(3))
		require.NoError(t, err)
		assert.True(t, up.EQUint64(34))
	})

	t.Run("exact division rounds the same both ways", func(t *testing.T) {
		down, err := fixedpoint.MulDivDown(num.NewUint(10), num.NewUint(9), num.NewUint(3))
		require.NoError(t, err)
		up, err := fixedpoint.MulDivUp(num.NewUint(10), num.NewUint(9), num.NewUint(3))
		require.NoError(t, err)
		assert.True(t, down.EQ(up))
		assert.True(t, down.EQUint64(30))
	})

	t.Run("division by zero", func(t *testing.T) {
		_, err := fixedpoint.MulDivDown(num.NewUint(1), num.NewUint(1), num.UintZero())
		assert.ErrorIs(t, err, types.ErrDivisionByZero)
		_, err = fixedpoint.DivUp(num.NewUint(1), num.UintZero())
		assert.ErrorIs(t, err, types.ErrDivisionByZero)
	})

	t.Run("overflow is reported", func(t *testing.T) {
		max := uintStr(t, "115792089237316195423570985008687907853269984665640564039457584007913129639935")
		_, err := fixedpoint.MulDivDown(max, max, num.UintOne())
		assert.ErrorIs(t, err, types.ErrOverflow)
	})

	t.Run("wad mul and div", func(t *testing.T) {
		half := uintStr(t, "500000000000000000")

		got, err := fixedpoint.MulDown(wad(3), half)
		require.NoError(t, err)
		assert.Equal(t, "1500000000000000000", got.String())

		got, err = fixedpoint.DivDown(wad(1), wad(3))
		require.NoError(t, err)
		assert.Equal(t, "333333333333333333", got.String())

		got, err = fixedpoint.DivUp(wad(1), wad(3))
		require.NoError(t, err)
		assert.Equal(t, "333333333333333334", got.String())
	})
}

func TestSqrt(t *testing.T) {
	cases := []struct {
		in   *num.Uint
		want string
	}{
		{num.UintZero(), "0"},
		{wad(1), "1000000000000000000"},
		{wad(4), "2000000000000000000"},
		{wad(2), "1414213562373095048"},
		{uintStr(t, "250000000000000000"), "500000000000000000"}, // sqrt(0.25) = 0.5
	}
	for _, c := range cases {
		assert.Equal(t, c.want, fixedpoint.Sqrt(c.in).String())
	}
}

func TestExp(t *testing.T) {
	t.Run("exact values", func(t *testing.T) {
		got, err := fixedpoint.Exp(num.IntZero())
		require.NoError(t, err)
		assert.True(t, got.EQ(fixedpoint.Wad))

		// e^ln2 hits the range reduction exactly.
		ln2 := num.NewInt(693147180559945309)
		got, err = fixedpoint.Exp(ln2)
		require.NoError(t, err)
		assert.Equal(t, "2000000000000000000", got.String())
	})

	t.Run("reference values", func(t *testing.T) {
		got, err := fixedpoint.Exp(num.NewInt(1_000_000_000_000_000_000))
		require.NoError(t, err)
		assertWithinUnits(t, uintStr(t, "2718281828459045235"), got, 2000)

		got, err = fixedpoint.Exp(num.NewInt(-1_000_000_000_000_000_000))
		require.NoError(t, err)
		assertWithinUnits(t, uintStr(t, "367879441171442322"), got, 2000)

		// e^2.5
		got, err = fixedpoint.Exp(num.NewInt(2_500_000_000_000_000_000))
		require.NoError(t, err)
		assertWithinUnits(t, uintStr(t, "12182493960703473438"), got, 20000)
	})

	t.Run("domain edges", func(t *testing.T) {
		_, err := fixedpoint.Exp(num.IntFromUint(wad(131), true))
		assert.ErrorIs(t, err, types.ErrOverflow)

		got, err := fixedpoint.Exp(num.IntFromUint(wad(131), false))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
}

func TestLn(t *testing.T) {
	t.Run("exact values", func(t *testing.T) {
		got, err := fixedpoint.Ln(wad(1))
		require.NoError(t, err)
		assert.True(t, got.IsZero())

		got, err = fixedpoint.Ln(wad(2))
		require.NoError(t, err)
		assert.Equal(t, "693147180559945309", got.String())

		got, err = fixedpoint.Ln(wad(4))
		require.NoError(t, err)
		assert.Equal(t, "1386294361119890618", got.String())

		// ln(1/2) = -ln(2)
		got, err = fixedpoint.Ln(uintStr(t, "500000000000000000"))
		require.NoError(t, err)
		assert.Equal(t, "-693147180559945309", got.String())
	})

	t.Run("reference values", func(t *testing.T) {
		got, err := fixedpoint.Ln(uintStr(t, "2718281828459045235"))
		require.NoError(t, err)
		d := got.ToDecimal().Sub(num.DecimalFromUint(fixedpoint.Wad)).Abs()
		assert.True(t, d.LessThan(num.DecimalFromInt64(2000)), "ln(e) off by %s", d.String())

		// ln(10) = 2.302585092994045684...
		got, err = fixedpoint.Ln(wad(10))
		require.NoError(t, err)
		want := num.MustDecimalFromString("2302585092994045684")
		d = got.ToDecimal().Sub(want).Abs()
		assert.True(t, d.LessThan(num.DecimalFromInt64(2000)), "ln(10) off by %s", d.String())
	})

	t.Run("domain", func(t *testing.T) {
		_, err := fixedpoint.Ln(num.UintZero())
		assert.ErrorIs(t, err, types.ErrMathDomain)
	})

	t.Run("round trips exp", func(t *testing.T) {
		for _, units := range []int64{1, 2, 5, 10, 40} {
			e, err := fixedpoint.Exp(num.NewInt(units * 1_000_000_000_000_000_000))
			require.NoError(t, err)
			back, err := fixedpoint.Ln(e)
			require.NoError(t, err)
			d := back.ToDecimal().Sub(num.DecimalFromInt64(units).Mul(num.DecimalFromUint(fixedpoint.Wad))).Abs()
			assert.True(t, d.LessThan(num.DecimalFromInt64(5000)), "ln(exp(%d)) off by %s", units, d.String())
		}
	})
}
