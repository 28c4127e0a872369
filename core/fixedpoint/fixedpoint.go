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

// Package fixedpoint carries all numeric kernels of the replication
// engine at WAD scale, 18 decimals. Everything is integer math on
// big.Int under the hood so results are bit for bit identical across
// platforms, no IEEE-754 anywhere.
package fixedpoint

import (
	"math/big"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
)

// WadDecimals is the number of decimals of the fixed point scale.
const WadDecimals = 18

var (
	// Wad is the fixed point unit, 1e18.
	Wad = num.NewUint(1_000_000_000_000_000_000)

	wadBig = big.NewInt(1_000_000_000_000_000_000)
	oneBig = big.NewInt(1)
)

func mustBig(s string) *big.Int {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedpoint: bad constant " + s)
	}
	return b
}

// MulDivDown returns floor(x*y/denom). The full product is carried in a
// big.Int so it never wraps.
func MulDivDown(x, y, denom *num.Uint) (*num.Uint, error) {
	if denom.IsZero() {
		return nil, types.ErrDivisionByZero
	}
	p := new(big.Int).Mul(x.BigInt(), y.BigInt())
	p.Quo(p, denom.BigInt())
	r, overflow := num.UintFromBig(p)
	if overflow {
		return nil, types.ErrOverflow
	}
	return r, nil
}

// MulDivUp returns ceil(x*y/denom).
func MulDivUp(x, y, denom *num.Uint) (*num.Uint, error) {
	if denom.IsZero() {
		return nil, types.ErrDivisionByZero
	}
	p := new(big.Int).Mul(x.BigInt(), y.BigInt())
	d := denom.BigInt()
	q, m := new(big.Int).QuoRem(p, d, new(big.Int))
	if m.Sign() != 0 {
		q.Add(q, oneBig)
	}
	r, overflow := num.UintFromBig(q)
	if overflow {
		return nil, types.ErrOverflow
	}
	return r, nil
}

// MulDown returns floor(x*y/Wad), the fixed point product rounded in
// the pool's favor when the result leaves the pool.
func MulDown(x, y *num.Uint) (*num.Uint, error) {
	return MulDivDown(x, y, Wad)
}

// MulUp returns ceil(x*y/Wad).
func MulUp(x, y *num.Uint) (*num.Uint, error) {
	return MulDivUp(x, y, Wad)
}

// DivDown returns floor(x*Wad/y).
func DivDown(x, y *num.Uint) (*num.Uint, error) {
	return MulDivDown(x, Wad, y)
}

// DivUp returns ceil(x*Wad/y).
func DivUp(x, y *num.Uint) (*num.Uint, error) {
	return MulDivUp(x, Wad, y)
}

// Sqrt returns floor(sqrt(x)) at WAD scale, so Sqrt(Wad) == Wad and
// Sqrt(4*Wad) == 2*Wad. Cannot fail, the result is always smaller than
// the input for x > Wad.
func Sqrt(x *num.Uint) *num.Uint {
	p := new(big.Int).Mul(x.BigInt(), wadBig)
	p.Sqrt(p)
	r, _ := num.UintFromBig(p)
	return r
}

// mulWad is the signed internal kernel, truncated toward zero.
func mulWad(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, wadBig)
}

// divWad is the signed internal kernel, truncated toward zero. Callers
// guarantee b != 0.
func divWad(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, wadBig)
	return p.Quo(p, b)
}
