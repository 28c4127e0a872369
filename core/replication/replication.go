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

// Package replication prices the covered call replicating curve
//
//	stable = K * CDF(PPF(1 - risky/L) - sigma*sqrt(tau)) * L
//
// at WAD scale. The functions here are pure, all rounding is downward
// so a fresh curve evaluation never credits reserves that do not
// exist. Callers own the pool-favor rounding of trade deltas.
package replication

import (
	"time"

	"code.tauprotocol.io/tau/core/fixedpoint"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
)

// StableGivenRisky evaluates the trading function, the stable reserve
// the curve requires for the given risky reserve and liquidity. The
// risky-per-liquidity ratio must lie strictly inside (0, 1), both
// boundaries return ErrMathDomain. At or past maturity the curve
// degenerates to the linear payoff K*(L-R).
func StableGivenRisky(reserveRisky, liquidity *num.Uint, cal *types.Calibration, now time.Time) (*num.Uint, error) {
	ratio, err := reserveRatio(reserveRisky, liquidity)
	if err != nil {
		return nil, err
	}

	ttm := cal.TimeToMaturity(now)
	if ttm == 0 {
		// stable = K * (L - R) / Wad
		return fixedpoint.MulDivDown(cal.Strike, num.UintZero().Sub(liquidity, reserveRisky), fixedpoint.Wad)
	}

	srt, err := sigmaRootTau(cal, ttm)
	if err != nil {
		return nil, err
	}

	// PPF(1 - R/L) - sigma*sqrt(tau)
	d, err := fixedpoint.NormPPF(num.UintZero().Sub(fixedpoint.Wad, ratio))
	if err != nil {
		return nil, err
	}
	d.SubUint(srt)

	cdf := fixedpoint.NormCDF(d)
	perLiq, err := fixedpoint.MulDown(cal.Strike, cdf)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDown(perLiq, liquidity)
}

// RiskyGivenStable inverts the trading function, the risky reserve
// matching the given stable reserve. The stable-per-liquidity fraction
// of the strike must lie strictly inside (0, 1).
func RiskyGivenStable(reserveStable, liquidity *num.Uint, cal *types.Calibration, now time.Time) (*num.Uint, error) {
	if liquidity.IsZero() {
		return nil, types.ErrMathDomain
	}
	perLiq, err := fixedpoint.DivDown(reserveStable, liquidity)
	if err != nil {
		return nil, err
	}
	p, err := fixedpoint.DivDown(perLiq, cal.Strike)
	if err != nil {
		return nil, err
	}
	if p.IsZero() || p.GTE(fixedpoint.Wad) {
		return nil, types.ErrMathDomain
	}

	ttm := cal.TimeToMaturity(now)
	if ttm == 0 {
		// R = L * (1 - p) / Wad
		return fixedpoint.MulDivDown(liquidity, num.UintZero().Sub(fixedpoint.Wad, p), fixedpoint.Wad)
	}

	srt, err := sigmaRootTau(cal, ttm)
	if err != nil {
		return nil, err
	}

	// PPF(S/(K*L)) + sigma*sqrt(tau)
	d, err := fixedpoint.NormPPF(p)
	if err != nil {
		return nil, err
	}
	d.AddUint(srt)

	cdf := fixedpoint.NormCDF(d)
	return fixedpoint.MulDivDown(liquidity, num.UintZero().Sub(fixedpoint.Wad, cdf), fixedpoint.Wad)
}

// Invariant returns reserveStable minus the curve's required stable for
// the held risky reserve, signed. A healthy pool keeps this at or above
// zero, swaps must never decrease it beyond the engine tolerance.
func Invariant(reserveRisky, reserveStable, liquidity *num.Uint, cal *types.Calibration, now time.Time) (*num.Int, error) {
	required, err := StableGivenRisky(reserveRisky, liquidity, cal, now)
	if err != nil {
		return nil, err
	}
	inv := num.IntFromUint(reserveStable, true)
	return inv.SubUint(required), nil
}

// reserveRatio computes risky per liquidity share and enforces the open
// interval domain of the curve.
func reserveRatio(reserveRisky, liquidity *num.Uint) (*num.Uint, error) {
	if liquidity.IsZero() {
		return nil, types.ErrMathDomain
	}
	ratio, err := fixedpoint.DivDown(reserveRisky, liquidity)
	if err != nil {
		return nil, err
	}
	if ratio.IsZero() || ratio.GTE(fixedpoint.Wad) {
		return nil, types.ErrMathDomain
	}
	return ratio, nil
}

// sigmaRootTau returns sigma*sqrt(ttm/year) at WAD scale, rounded down.
func sigmaRootTau(cal *types.Calibration, ttm int64) (*num.Uint, error) {
	tauWad, err := fixedpoint.MulDivDown(num.NewUint(uint64(ttm)), fixedpoint.Wad, num.NewUint(uint64(types.SecondsPerYear)))
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDown(cal.Sigma, fixedpoint.Sqrt(tauWad))
}
