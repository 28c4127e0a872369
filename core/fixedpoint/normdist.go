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

package fixedpoint

import (
	"math/big"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
)

// Standard normal CDF and its inverse at WAD scale.
//
// NormCDF uses the Abramowitz & Stegun 7.1.26 rational approximation of
// erf, maximum absolute error 1.5e-7. NormPPF uses Beasley-Springer
// with the Moro tail refinement, maximum absolute error 3e-9 for
// p in [1e-12, 1 - 1e-12]. Both are weakly monotone at a resolution of
// 1e-6, which is what the swap solver depends on.

var (
	// sqrt(2) at WAD scale, truncated.
	sqrt2Big = big.NewInt(1_414_213_562_373_095_048)

	// Inputs clamp to +/- 6, the CDF saturates beyond.
	cdfBoundBig = new(big.Int).Mul(big.NewInt(6), wadBig)

	// A&S 7.1.26 coefficients.
	erfP  = mustBig("327591100000000000")
	erfA1 = mustBig("254829592000000000")
	erfA2 = mustBig("-284496736000000000")
	erfA3 = mustBig("1421413741000000000")
	erfA4 = mustBig("-1453152027000000000")
	erfA5 = mustBig("1061405429000000000")

	// Beasley-Springer central region, |p - 1/2| <= 0.42.
	ppfSplit = mustBig("420000000000000000")
	ppfNum   = []*big.Int{
		mustBig("2506628238840000000"),
		mustBig("-18615000625290000000"),
		mustBig("41391197735340000000"),
		mustBig("-25441060496370000000"),
	}
	ppfDen = []*big.Int{
		mustBig("-8473510930900000000"),
		mustBig("23083367437430000000"),
		mustBig("-21062241018260000000"),
		mustBig("3130829098330000000"),
	}

	// Moro tail polynomial in ln(-ln p).
	ppfTail = []*big.Int{
		mustBig("337475482272614700"),
		mustBig("976169019091718600"),
		mustBig("160797971491820900"),
		mustBig("27643881033386300"),
		mustBig("3840572937360900"),
		mustBig("395189651191900"),
		mustBig("32176788176800"),
		mustBig("288816736400"),
		mustBig("396031518700"),
	}
)

// NormCDF returns the standard normal CDF of x at WAD scale, a value in
// [0, Wad]. The function is total, inputs beyond +/- 6 saturate so it
// stays weakly monotone on the whole input range.
func NormCDF(x *num.Int) *num.Uint {
	xb := x.BigInt()
	neg := xb.Sign() < 0
	ax := new(big.Int).Abs(xb)
	if ax.Cmp(cdfBoundBig) > 0 {
		ax.Set(cdfBoundBig)
	}

	phi := cdfUpper(ax)
	if neg {
		// Exact reflection keeps CDF(-x) + CDF(x) == Wad.
		phi.Sub(wadBig, phi)
	}
	r, _ := num.UintFromBig(phi)
	return r
}

// cdfUpper evaluates CDF(x) for x in [0, 6] at WAD scale.
func cdfUpper(x *big.Int) *big.Int {
	// z = x / sqrt(2), erf evaluated at z.
	z := divWad(x, sqrt2Big)

	// t = 1 / (1 + p*z)
	t := divWad(wadBig, new(big.Int).Add(wadBig, mulWad(erfP, z)))

	// Horner on a5..a1, then times t.
	poly := new(big.Int).Set(erfA5)
	poly = mulWad(poly, t)
	poly.Add(poly, erfA4)
	poly = mulWad(poly, t)
	poly.Add(poly, erfA3)
	poly = mulWad(poly, t)
	poly.Add(poly, erfA2)
	poly = mulWad(poly, t)
	poly.Add(poly, erfA1)
	poly = mulWad(poly, t)

	// erf(z) = 1 - poly * e^(-z^2)
	zsq := mulWad(z, z)
	erf := new(big.Int).Sub(wadBig, mulWad(poly, expBig(zsq.Neg(zsq))))

	// CDF = (1 + erf)/2
	erf.Add(wadBig, erf)
	return erf.Quo(erf, twoBig)
}

// NormPPF returns the inverse CDF of p at WAD scale. The domain is the
// open interval (0, Wad), both endpoints map to infinities and return
// ErrMathDomain.
func NormPPF(p *num.Uint) (*num.Int, error) {
	if p.IsZero() || p.GTE(Wad) {
		return nil, types.ErrMathDomain
	}

	pb := p.BigInt()
	q := new(big.Int).Sub(pb, new(big.Int).Quo(wadBig, twoBig))

	if new(big.Int).Abs(q).Cmp(ppfSplit) <= 0 {
		r, _ := num.IntFromBig(ppfCentral(q))
		return r, nil
	}

	// Tail, evaluated on the smaller tail mass and mirrored back.
	tail := pb
	if q.Sign() > 0 {
		tail = new(big.Int).Sub(wadBig, pb)
	}
	x := ppfMoroTail(tail)
	if q.Sign() < 0 {
		x.Neg(x)
	}
	r, _ := num.IntFromBig(x)
	return r, nil
}

// ppfCentral evaluates the Beasley-Springer rational approximation
// q*(a0 + a1 q^2 + a2 q^4 + a3 q^6)/(1 + b0 q^2 + ... + b3 q^8).
func ppfCentral(q *big.Int) *big.Int {
	r := mulWad(q, q)

	numer := new(big.Int).Set(ppfNum[3])
	for i := 2; i >= 0; i-- {
		numer = mulWad(numer, r)
		numer.Add(numer, ppfNum[i])
	}
	numer = mulWad(numer, q)

	denom := new(big.Int).Set(ppfDen[3])
	for i := 2; i >= 0; i-- {
		denom = mulWad(denom, r)
		denom.Add(denom, ppfDen[i])
	}
	denom = mulWad(denom, r)
	denom.Add(denom, wadBig)

	return divWad(numer, denom)
}

// ppfMoroTail evaluates Moro's polynomial in s = ln(-ln(tail)) for a
// tail mass below 0.08, returning the positive upper tail quantile.
func ppfMoroTail(tail *big.Int) *big.Int {
	// tail < 0.08 so ln(tail) < -2.52 and s is always positive.
	s := lnBig(new(big.Int).Neg(lnBig(tail)))

	x := new(big.Int).Set(ppfTail[8])
	for i := 7; i >= 0; i-- {
		x = mulWad(x, s)
		x.Add(x, ppfTail[i])
	}
	return x
}
