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

package num

import (
	"fmt"
	"math/big"
)

// Int is a signed 256 bit integer, a Uint magnitude plus a sign. The
// invariant of the replication curve is carried as *Int since rounding
// can push it either side of zero. Zero is always stored with a
// positive sign so comparisons stay simple.
type Int struct {
	// U is the magnitude of the integer.
	U *Uint
	// s is the sign, true when the value is positive or zero.
	s bool
}

// NewInt returns a new Int holding the given int64 value.
func NewInt(val int64) *Int {
	if val < 0 {
		return &Int{U: NewUint(uint64(-val)), s: false}
	}
	return &Int{U: NewUint(uint64(val)), s: true}
}

// IntZero returns a new Int set to zero.
func IntZero() *Int {
	return &Int{U: UintZero(), s: true}
}

// IntFromUint returns a new Int with the magnitude of u and the given
// sign, true meaning positive.
func IntFromUint(u *Uint, s bool) *Int {
	i := &Int{U: u.Clone(), s: s}
	i.normalise()
	return i
}

// IntFromBig constructs an Int from a big.Int, returning true on
// overflow of the 256 bit magnitude.
func IntFromBig(b *big.Int) (*Int, bool) {
	m := new(big.Int).Abs(b)
	u, overflow := UintFromBig(m)
	if overflow {
		return IntZero(), true
	}
	return IntFromUint(u, b.Sign() >= 0), false
}

// IntFromString parses str in the given base, with an optional leading
// sign. As with UintFromString the second return is true on failure.
func IntFromString(str string, base int) (*Int, bool) {
	b, ok := big.NewInt(0).SetString(str, base)
	if !ok {
		return IntZero(), true
	}
	return IntFromBig(b)
}

func (i *Int) normalise() {
	if i.U.IsZero() {
		i.s = true
	}
}

func (i Int) IsNegative() bool {
	return !i.s && !i.U.IsZero()
}

func (i Int) IsPositive() bool {
	return i.s && !i.U.IsZero()
}

func (i Int) IsZero() bool {
	return i.U.IsZero()
}

// FlipSign negates the value in place.
func (i *Int) FlipSign() {
	i.s = !i.s
	i.normalise()
}

// Add adds n to i in place and returns i.
func (i *Int) Add(n *Int) *Int {
	if i.s == n.s {
		i.U.Add(i.U, n.U)
		i.normalise()
		return i
	}
	if i.U.GTE(n.U) {
		i.U.Sub(i.U, n.U)
	} else {
		i.U.Sub(n.U, i.U)
		i.s = n.s
	}
	i.normalise()
	return i
}

// Sub subtracts n from i in place and returns i.
func (i *Int) Sub(n *Int) *Int {
	m := &Int{U: n.U, s: !n.s}
	return i.Add(m)
}

// AddUint adds the unsigned value to i in place.
func (i *Int) AddUint(u *Uint) *Int {
	return i.Add(IntFromUint(u, true))
}

// SubUint subtracts the unsigned value from i in place.
func (i *Int) SubUint(u *Uint) *Int {
	return i.Add(IntFromUint(u, false))
}

func (i Int) EQ(oth *Int) bool {
	return i.s == oth.s && i.U.EQ(oth.U)
}

func (i Int) GT(oth *Int) bool {
	switch {
	case i.s && !oth.s:
		return true
	case !i.s && oth.s:
		return false
	case i.s:
		return i.U.GT(oth.U)
	default:
		return i.U.LT(oth.U)
	}
}

func (i Int) GTE(oth *Int) bool {
	return i.EQ(oth) || i.GT(oth)
}

func (i Int) LT(oth *Int) bool {
	return !i.GTE(oth)
}

func (i Int) LTE(oth *Int) bool {
	return !i.GT(oth)
}

// Clone returns a deep copy.
func (i Int) Clone() *Int {
	return &Int{U: i.U.Clone(), s: i.s}
}

func (i Int) BigInt() *big.Int {
	b := i.U.BigInt()
	if !i.s {
		b.Neg(b)
	}
	return b
}

func (i *Int) ToDecimal() Decimal {
	return DecimalFromInt(i)
}

func (i Int) String() string {
	if i.IsNegative() {
		return fmt.Sprintf("-%s", i.U.String())
	}
	return i.U.String()
}
