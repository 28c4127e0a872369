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
	"math/rand"
	"testing"

	"code.tauprotocol.io/tau/core/fixedpoint"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The A&S 7.1.26 approximation is documented to 1.5e-7 absolute error.
const cdfTolUnits = 150_000_000_000

// The Beasley-Springer-Moro approximation is documented to 3e-9, the
// fixed point evaluation adds a little on top.
const ppfTolUnits = 5_000_000_000

func TestNormCDFReferenceValues(t *testing.T) {
	cases := []struct {
		x    *num.Int
		want string
	}{
		{num.IntZero(), "500000000000000000"},
		{num.NewInt(1_000_000_000_000_000_000), "841344746068542949"},  // CDF(1)
		{num.NewInt(-1_000_000_000_000_000_000), "158655253931457051"}, // CDF(-1)
		{num.NewInt(2_000_000_000_000_000_000), "977249868051820793"},  // CDF(2)
		{num.NewInt(-2_000_000_000_000_000_000), "22750131948179207"},  // CDF(-2)
		{num.NewInt(500_000_000_000_000_000), "691462461274013104"},    // CDF(0.5)
		{num.NewInt(3_000_000_000_000_000_000), "998650101968369906"},  // CDF(3)
	}
	for _, c := range cases {
		got := fixedpoint.NormCDF(c.x)
		assertWithinUnits(t, num.MustUintFromString(c.want, 10), got, cdfTolUnits)
	}
}

func TestNormCDFSymmetry(t *testing.T) {
	// CDF(-x) must equal Wad - CDF(x) exactly, not just approximately.
	for _, units := range []int64{1, 250_000_000_000_000_000, 1_000_000_000_000_000_000, 3_141_592_653_589_793_238} {
		up := fixedpoint.NormCDF(num.NewInt(units))
		down := fixedpoint.NormCDF(num.NewInt(-units))
		sum := num.Sum(up, down)
		assert.True(t, sum.EQ(fixedpoint.Wad), "CDF(%d)+CDF(-%d) = %s", units, units, sum.String())
	}
}

func TestNormCDFSaturation(t *testing.T) {
	atBound := fixedpoint.NormCDF(num.NewInt(6_000_000_000_000_000_000))
	pastBound := fixedpoint.NormCDF(num.NewInt(8_000_000_000_000_000_000))
	assert.True(t, atBound.EQ(pastBound))
	assert.True(t, atBound.LT(fixedpoint.Wad))

	lowBound := fixedpoint.NormCDF(num.NewInt(-6_000_000_000_000_000_000))
	pastLow := fixedpoint.NormCDF(num.NewInt(-9_000_000_000_000_000_000))
	assert.True(t, lowBound.EQ(pastLow))
	assert.False(t, lowBound.IsZero())
}

func TestNormCDFMonotone(t *testing.T) {
	t.Run("coarse sweep of the full range", func(t *testing.T) {
		// -6 to 6 in steps of 1e-4.
		step := num.NewUint(100_000_000_000_000)
		x := num.NewInt(-6_000_000_000_000_000_000)
		prev := fixedpoint.NormCDF(x)
		for i := 0; i < 120_000; i++ {
			x.AddUint(step)
			cur := fixedpoint.NormCDF(x)
			if prev.GT(cur) {
				t.Fatalf("CDF decreased at x=%s", x.String())
			}
			prev = cur
		}
	})

	t.Run("fine sweep around zero", func(t *testing.T) {
		// -0.05 to 0.05 in steps of 1e-6, where the density peaks.
		step := num.NewUint(1_000_000_000_000)
		x := num.NewInt(-50_000_000_000_000_000)
		prev := fixedpoint.NormCDF(x)
		for i := 0; i < 100_000; i++ {
			x.AddUint(step)
			cur := fixedpoint.NormCDF(x)
			if prev.GT(cur) {
				t.Fatalf("CDF decreased at x=%s", x.String())
			}
			prev = cur
		}
	})

	t.Run("random ordered pairs", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 2000; i++ {
			a := rng.Int63n(12_000_000_000_000_000) - 6_000_000_000_000_000
			gap := rng.Int63n(1_000_000_000_000) + 1
			lo := num.NewInt(a * 1000)
			hi := num.NewInt(a*1000 + gap*1_000_000)
			assert.True(t, fixedpoint.NormCDF(lo).LTE(fixedpoint.NormCDF(hi)))
		}
	})
}

func TestNormPPFDomain(t *testing.T) {
	_, err := fixedpoint.NormPPF(num.UintZero())
	assert.ErrorIs(t, err, types.ErrMathDomain)

	_, err = fixedpoint.NormPPF(fixedpoint.Wad)
	assert.ErrorIs(t, err, types.ErrMathDomain)

	_, err = fixedpoint.NormPPF(num.Sum(fixedpoint.Wad, num.UintOne()))
	assert.ErrorIs(t, err, types.ErrMathDomain)

	// 1 unit either side of the boundary is still in domain
	_, err = fixedpoint.NormPPF(num.UintOne())
	assert.NoError(t, err)
	_, err = fixedpoint.NormPPF(num.UintZero().Sub(fixedpoint.Wad, num.UintOne()))
	assert.NoError(t, err)
}

func TestNormPPFReferenceValues(t *testing.T) {
	t.Run("median is exactly zero", func(t *testing.T) {
		got, err := fixedpoint.NormPPF(num.MustUintFromString("500000000000000000", 10))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	cases := []struct {
		p    string
		want string
	}{
		{"700000000000000000", "524400512708041017"},    // central region
		{"300000000000000000", "-524400512708041017"},   // central, mirrored
		{"920000000000000000", "1405071560309632472"},   // central boundary
		{"975000000000000000", "1959963984540054236"},   // tail
		{"25000000000000000", "-1959963984540054236"},   // tail, mirrored
		{"999000000000000000", "3090232306167813489"},   // deep tail
		{"50000000000000000", "-1644853626951472714"},   // 5%
		{"990000000000000000", "2326347874040841101"},   // 99%
	}
	for _, c := range cases {
		got, err := fixedpoint.NormPPF(num.MustUintFromString(c.p, 10))
		require.NoError(t, err)
		want, _ := num.IntFromString(c.want, 10)
		delta := got.Clone().Sub(want)
		if delta.IsNegative() {
			delta.FlipSign()
		}
		assert.True(t, delta.U.LTE(num.NewUint(ppfTolUnits)),
			"PPF(%s) = %s, want %s", c.p, got.String(), c.want)
	}
}

func TestNormPPFSymmetry(t *testing.T) {
	// PPF(1-p) == -PPF(p) exactly, both central and tail evaluation are
	// sign symmetric.
	for _, p := range []string{"10000000000000000", "100000000000000000", "250000000000000000", "420000000000000000"} {
		pu := num.MustUintFromString(p, 10)
		lo, err := fixedpoint.NormPPF(pu)
		require.NoError(t, err)
		hi, err := fixedpoint.NormPPF(num.UintZero().Sub(fixedpoint.Wad, pu))
		require.NoError(t, err)
		assert.True(t, lo.U.EQ(hi.U))
		assert.True(t, lo.IsNegative())
		assert.True(t, hi.IsPositive())
	}
}

func TestNormPPFMonotone(t *testing.T) {
	t.Run("sweep across both branch seams", func(t *testing.T) {
		// 0.001 to 0.999 in steps of 1e-4 crosses tail->central->tail.
		step := num.NewUint(100_000_000_000_000)
		p := num.MustUintFromString("1000000000000000", 10)
		prev, err := fixedpoint.NormPPF(p)
		require.NoError(t, err)
		for i := 0; i < 9980; i++ {
			p.Add(p, step)
			cur, err := fixedpoint.NormPPF(p)
			require.NoError(t, err)
			if prev.GT(cur) {
				t.Fatalf("PPF decreased at p=%s", p.String())
			}
			prev = cur
		}
	})

	t.Run("deep tail stays ordered", func(t *testing.T) {
		ps := []string{"1", "1000", "1000000", "1000000000", "1000000000000", "1000000000000000"}
		var prev *num.Int
		for _, s := range ps {
			cur, err := fixedpoint.NormPPF(num.MustUintFromString(s, 10))
			require.NoError(t, err)
			assert.True(t, cur.IsNegative())
			if prev != nil {
				assert.True(t, prev.LTE(cur), "PPF not ordered at p=%s", s)
			}
			prev = cur
		}
	})
}

func TestNormRoundTrip(t *testing.T) {
	// PPF(CDF(x)) returns near x, the error is dominated by the CDF's
	// 1.5e-7 bound amplified by the local slope of the inverse. Stay in
	// [-2, 2] where the slope is at most ~18.5.
	step := num.NewUint(10_000_000_000_000_000) // 0.01
	x := num.NewInt(-2_000_000_000_000_000_000)
	tol := num.NewUint(5_000_000_000_000) // 5e-6
	for i := 0; i <= 400; i++ {
		p := fixedpoint.NormCDF(x)
		back, err := fixedpoint.NormPPF(p)
		require.NoError(t, err)
		delta := back.Clone().Sub(x)
		if delta.IsNegative() {
			delta.FlipSign()
		}
		assert.True(t, delta.U.LTE(tol), "round trip at x=%s off by %s", x.String(), delta.U.String())
		x.AddUint(step)
	}
}
