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

	"github.com/holiman/uint256"
)

// Uint is a wrapper over a 256 bit unsigned integer. All token amounts
// and WAD fixed-point quantities in the engine are carried as *Uint.
// Arithmetic wraps modulo 2^256 unless the Overflow variant is used.
type Uint struct {
	u uint256.Int
}

// NewUint returns a new Uint holding the given uint64 value.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// UintZero returns a new Uint set to zero.
func UintZero() *Uint {
	return NewUint(0)
}

// UintOne returns a new Uint set to one.
func UintOne() *Uint {
	return NewUint(1)
}

// UintFromBig constructs a Uint from a big.Int. The second return value
// is true when the input was negative or overflowed 256 bits, in which
// case a zero Uint is returned.
func UintFromBig(b *big.Int) (*Uint, bool) {
	if b.Sign() < 0 {
		return UintZero(), true
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return UintZero(), true
	}
	return &Uint{*u}, false
}

// UintFromString parses str in the given base, returning true on any
// parse error or overflow.
func UintFromString(str string, base int) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, base)
	if !ok {
		return UintZero(), true
	}
	return UintFromBig(b)
}

// MustUintFromString is UintFromString for static values, it panics on
// failure. Use only on literals, typically in tests and defaults.
func MustUintFromString(str string, base int) *Uint {
	u, fail := UintFromString(str, base)
	if fail {
		panic(fmt.Sprintf("num: invalid uint literal %q", str))
	}
	return u
}

// UintFromDecimal truncates the decimal to an integer Uint, returning
// true on overflow or negative input.
func UintFromDecimal(d Decimal) (*Uint, bool) {
	return UintFromBig(d.BigInt())
}

// Sum returns a fresh Uint holding the sum of all values.
func Sum(vals ...*Uint) *Uint {
	return UintZero().AddSum(vals...)
}

// Min returns the smaller of the two values.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// Max returns the larger of the two values.
func Max(a, b *Uint) *Uint {
	if a.GT(b) {
		return a
	}
	return b
}

func (z *Uint) Set(oth *Uint) *Uint {
	z.u.Set(&oth.u)
	return z
}

func (z *Uint) SetUint64(val uint64) *Uint {
	z.u.SetUint64(val)
	return z
}

func (z Uint) Uint64() uint64 {
	return z.u.Uint64()
}

func (z Uint) BigInt() *big.Int {
	return z.u.ToBig()
}

func (z *Uint) ToDecimal() Decimal {
	return DecimalFromUint(z)
}

// Add sets z to x + y and returns z. Wraps on overflow.
func (z *Uint) Add(x, y *Uint) *Uint {
	z.u.Add(&x.u, &y.u)
	return z
}

// AddSum adds all values to z in place, z.AddSum(x, y) == z + x + y.
func (z *Uint) AddSum(vals ...*Uint) *Uint {
	for _, x := range vals {
		z.u.Add(&z.u, &x.u)
	}
	return z
}

// AddOverflow sets z to x + y, the second return is true when the sum
// wrapped.
func (z *Uint) AddOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.AddOverflow(&x.u, &y.u)
	return z, ok
}

// Sub sets z to x - y and returns z. Wraps on underflow, which the
// oracle accumulators rely on.
func (z *Uint) Sub(x, y *Uint) *Uint {
	z.u.Sub(&x.u, &y.u)
	return z
}

// SubOverflow sets z to x - y, the second return is true when the
// subtraction wrapped (y > x).
func (z *Uint) SubOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.SubOverflow(&x.u, &y.u)
	return z, ok
}

// Delta sets z to |x - y|, the second return is true when y > x.
func (z *Uint) Delta(x, y *Uint) (*Uint, bool) {
	if y.GT(x) {
		_ = z.Sub(y, x)
		return z, true
	}
	_ = z.Sub(x, y)
	return z, false
}

// Mul sets z to x * y and returns z. Wraps on overflow.
func (z *Uint) Mul(x, y *Uint) *Uint {
	z.u.Mul(&x.u, &y.u)
	return z
}

// Div sets z to x / y (integer division) and returns z.
func (z *Uint) Div(x, y *Uint) *Uint {
	z.u.Div(&x.u, &y.u)
	return z
}

// Mod sets z to x % y and returns z.
func (z *Uint) Mod(x, y *Uint) *Uint {
	z.u.Mod(&x.u, &y.u)
	return z
}

func (u Uint) LT(oth *Uint) bool {
	return u.u.Lt(&oth.u)
}

func (u Uint) LTUint64(oth uint64) bool {
	return u.u.LtUint64(oth)
}

func (u Uint) LTE(oth *Uint) bool {
	return u.u.Lt(&oth.u) || u.u.Eq(&oth.u)
}

func (u Uint) EQ(oth *Uint) bool {
	return u.u.Eq(&oth.u)
}

func (u Uint) EQUint64(oth uint64) bool {
	return u.u.Eq(uint256.NewInt(oth))
}

func (u Uint) NEQ(oth *Uint) bool {
	return !u.u.Eq(&oth.u)
}

func (u Uint) GT(oth *Uint) bool {
	return u.u.Gt(&oth.u)
}

func (u Uint) GTUint64(oth uint64) bool {
	return u.u.GtUint64(oth)
}

func (u Uint) GTE(oth *Uint) bool {
	return u.u.Gt(&oth.u) || u.u.Eq(&oth.u)
}

func (u Uint) IsZero() bool {
	return u.u.IsZero()
}

// Copy sets z to the value of x without allocating.
func (z *Uint) Copy(x *Uint) *Uint {
	z.u = x.u
	return z
}

// Clone returns a new Uint holding the same value.
func (z Uint) Clone() *Uint {
	return &Uint{z.u}
}

// Hex returns the 0x-prefixed hexadecimal representation.
func (u Uint) Hex() string {
	return u.u.Hex()
}

// String returns the decimal representation.
func (u Uint) String() string {
	return u.u.ToBig().String()
}

// Format implements fmt.Formatter.
func (u Uint) Format(s fmt.State, ch rune) {
	u.u.Format(s, ch)
}

// Bytes returns the value as a 32 byte big-endian array. Used for
// deterministic hashing.
func (u Uint) Bytes() [32]byte {
	return u.u.Bytes32()
}

// MarshalText implements encoding.TextMarshaler so Uint fields
// serialise as decimal strings in JSON checkpoints.
func (u Uint) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Uint) UnmarshalText(text []byte) error {
	v, fail := UintFromString(string(text), 10)
	if fail {
		return fmt.Errorf("num: invalid uint %q", string(text))
	}
	u.u = v.u
	return nil
}
