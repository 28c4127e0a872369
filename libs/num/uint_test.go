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
	"encoding/json"
	"math/big"
	"testing"

	"code.tauprotocol.io/tau/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintFromBig(t *testing.T) {
	t.Run("negative input fails", func(t *testing.T) {
		u, fail := num.UintFromBig(big.NewInt(-1))
		assert.True(t, fail)
		assert.True(t, u.IsZero())
	})

	t.Run("overflow fails", func(t *testing.T) {
		b := new(big.Int).Lsh(big.NewInt(1), 256)
		u, fail := num.UintFromBig(b)
		assert.True(t, fail)
		assert.True(t, u.IsZero())
	})

	t.Run("in range round trips", func(t *testing.T) {
		b, _ := big.NewInt(0).SetString("340282366920938463463374607431768211455", 10)
		u, fail := num.UintFromBig(b)
		require.False(t, fail)
		assert.Equal(t, 0, b.Cmp(u.BigInt()))
	})
}

func TestUintArithmetic(t *testing.T) {
	t.Run("sum and add sum agree", func(t *testing.T) {
		exp := num.NewUint(60)
		got := num.Sum(num.NewUint(10), num.NewUint(20), num.NewUint(30))
		assert.True(t, exp.EQ(got))
	})

	t.Run("sub wraps on underflow", func(t *testing.T) {
		z, wrapped := num.UintZero().SubOverflow(num.NewUint(1), num.NewUint(2))
		assert.True(t, wrapped)
		assert.False(t, z.IsZero())
	})

	t.Run("delta is absolute difference", func(t *testing.T) {
		d, neg := num.UintZero().Delta(num.NewUint(3), num.NewUint(10))
		assert.True(t, neg)
		assert.True(t, d.EQUint64(7))

		d, neg = num.UintZero().Delta(num.NewUint(10), num.NewUint(3))
		assert.False(t, neg)
		assert.True(t, d.EQUint64(7))
	})

	t.Run("mul div", func(t *testing.T) {
		z := num.UintZero().Mul(num.NewUint(25), num.NewUint(4))
		assert.True(t, z.EQUint64(100))
		z.Div(z, num.NewUint(3))
		assert.True(t, z.EQUint64(33))
	})

	t.Run("clone does not alias", func(t *testing.T) {
		a := num.NewUint(42)
		b := a.Clone()
		b.Add(b, num.UintOne())
		assert.True(t, a.EQUint64(42))
		assert.True(t, b.EQUint64(43))
	})
}

func TestUintCompare(t *testing.T) {
	small, large := num.NewUint(1), num.NewUint(2)
	assert.True(t, small.LT(large))
	assert.True(t, small.LTE(small.Clone()))
	assert.True(t, large.GT(small))
	assert.True(t, large.GTE(large.Clone()))
	assert.True(t, small.NEQ(large))
	assert.Equal(t, large, num.Max(small, large))
	assert.Equal(t, small, num.Min(small, large))
}

func TestUintText(t *testing.T) {
	t.Run("marshals as decimal string", func(t *testing.T) {
		v := struct {
			Amount *num.Uint `json:"amount"`
		}{Amount: num.MustUintFromString("123456789012345678901234567890", 10)}
		buf, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, `{"amount":"123456789012345678901234567890"}`, string(buf))
	})

	t.Run("unmarshal round trips", func(t *testing.T) {
		var v struct {
			Amount *num.Uint `json:"amount"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"987654321"}`), &v))
		assert.True(t, v.Amount.EQUint64(987654321))
	})

	t.Run("unmarshal rejects garbage", func(t *testing.T) {
		var u num.Uint
		assert.Error(t, u.UnmarshalText([]byte("not-a-number")))
		assert.Error(t, u.UnmarshalText([]byte("-1")))
	})
}
