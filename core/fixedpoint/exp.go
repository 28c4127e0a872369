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

var (
	// ln(2) at WAD scale, truncated.
	ln2Big = big.NewInt(693_147_180_559_945_309)

	// Exp overflows 256 bits well past e^130 at WAD scale, the engine
	// never gets near it.
	expBoundBig = new(big.Int).Mul(big.NewInt(130), wadBig)

	twoBig = big.NewInt(2)
	twoWad = new(big.Int).Mul(twoBig, wadBig)
)

const seriesTerms = 20

// Exp returns e^x at WAD scale. x above the overflow bound returns
// ErrOverflow, very negative x underflows to zero.
func Exp(x *num.Int) (*num.Uint, error) {
	xb := x.BigInt()
	if xb.CmpAbs(expBoundBig) > 0 {
		if xb.Sign() > 0 {
			return nil, types.ErrOverflow
		}
		return num.UintZero(), nil
	}
	r, _ := num.UintFromBig(expBig(xb))
	return r, nil
}

// Ln returns the natural log of x at WAD scale, negative for x < Wad.
// Zero input is outside the domain.
func Ln(x *num.Uint) (*num.Int, error) {
	if x.IsZero() {
		return nil, types.ErrMathDomain
	}
	r, _ := num.IntFromBig(lnBig(x.BigInt()))
	return r, nil
}

// expBig computes e^x for |x| <= expBound at WAD scale. Negative x goes
// through the reciprocal of the positive branch.
func expBig(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		// e^-x = 1/e^x, the positive branch never returns below one.
		return divWad(wadBig, expBig(new(big.Int).Neg(x)))
	}

	// Range reduction, x = k*ln2 + r with r in [0, ln2), so that
	// e^x = 2^k * e^r and the Taylor series on r converges fast. With
	// r < 0.694 twenty terms leave a remainder below (ln2)^21/21!,
	// under the WAD resolution.
	k := new(big.Int).Quo(x, ln2Big)
	r := new(big.Int).Sub(x, new(big.Int).Mul(k, ln2Big))

	sum := new(big.Int).Set(wadBig)
	term := new(big.Int).Set(wadBig)
	for i := int64(1); i <= seriesTerms; i++ {
		term.Mul(term, r)
		term.Quo(term, wadBig)
		term.Quo(term, big.NewInt(i))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}
	return sum.Lsh(sum, uint(k.Uint64()))
}

// lnBig computes ln(x) for x > 0 at WAD scale, result is signed.
func lnBig(x *big.Int) *big.Int {
	// Normalise the mantissa into [1, 2) by powers of two, then
	// ln x = k*ln2 + ln m with ln m = 2*artanh((m-1)/(m+1)).
	k := int64(0)
	m := new(big.Int).Set(x)
	for m.Cmp(twoWad) >= 0 {
		m.Rsh(m, 1)
		k++
	}
	for m.Cmp(wadBig) < 0 {
		m.Lsh(m, 1)
		k--
	}

	// z = (m - 1)/(m + 1) lies in [0, 1/3), the odd power series
	// z + z^3/3 + z^5/5 + ... needs twenty terms at most.
	z := divWad(new(big.Int).Sub(m, wadBig), new(big.Int).Add(m, wadBig))
	zsq := mulWad(z, z)
	sum := new(big.Int).Set(z)
	term := new(big.Int).Set(z)
	for i := int64(1); i <= seriesTerms; i++ {
		term = mulWad(term, zsq)
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, new(big.Int).Quo(term, big.NewInt(2*i+1)))
	}
	sum.Mul(sum, twoBig)

	return sum.Add(sum, new(big.Int).Mul(big.NewInt(k), ln2Big))
}
