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

package pools_test

import (
	"context"
	"testing"
	"time"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	t.Run("A quote matches the swap that follows it", testQuoteMatchesSwap)
	t.Run("Quoting commits nothing", testQuoteReadOnly)
	t.Run("Repeated quotes come from the cache unchanged", testQuoteCache)
	t.Run("Quote rejects what a swap would reject", testQuoteValidation)
}

func testQuoteMatchesSwap(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)

	q, err := te.Quote(id, types.SwapRiskyIn, wad(10), types.ExactInput)
	require.NoError(t, err)

	res, err := te.Swap(context.Background(), "trader", id, types.SwapRiskyIn, wad(10), nil, types.ExactInput, false, te.deliveringCallback(), nil)
	require.NoError(t, err)
	assert.Equal(t, res.In.String(), q.In.String())
	assert.Equal(t, res.Out.String(), q.Out.String())
	assert.Equal(t, res.Fee.String(), q.Fee.String())
	assert.True(t, res.PostInvariant.EQ(q.PostInvariant))

	// the swap moved the price, the same question now pays less
	q2, err := te.Quote(id, types.SwapRiskyIn, wad(10), types.ExactInput)
	require.NoError(t, err)
	assert.True(t, q2.Out.LT(q.Out), q2.Out.String())
}

func testQuoteReadOnly(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)
	pre, err := te.Pool(id)
	require.NoError(t, err)
	te.advanceTime(30 * time.Second)

	_, err = te.Quote(id, types.SwapStableIn, wad(100), types.ExactInput)
	require.NoError(t, err)

	post, err := te.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, pre.ReserveRisky.String(), post.ReserveRisky.String())
	assert.Equal(t, pre.ReserveStable.String(), post.ReserveStable.String())
	assert.Equal(t, pre.LastTimestamp, post.LastTimestamp)
	assert.Equal(t, pre.CumulativeRisky.String(), post.CumulativeRisky.String())
	assert.Empty(t, te.capturedEvents())
}

func testQuoteCache(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)

	q1, err := te.Quote(id, types.SwapRiskyIn, wad(10), types.ExactInput)
	require.NoError(t, err)
	q2, err := te.Quote(id, types.SwapRiskyIn, wad(10), types.ExactInput)
	require.NoError(t, err)
	assert.Equal(t, q1.Out.String(), q2.Out.String())
	assert.Equal(t, q1.Fee.String(), q2.Fee.String())

	// cached results are handed out as clones
	q2.Out.SetUint64(1)
	q3, err := te.Quote(id, types.SwapRiskyIn, wad(10), types.ExactInput)
	require.NoError(t, err)
	assert.Equal(t, q1.Out.String(), q3.Out.String())

	// a new second keys a fresh quote
	te.advanceTime(time.Second)
	_, err = te.Quote(id, types.SwapRiskyIn, wad(10), types.ExactInput)
	assert.NoError(t, err)
}

func testQuoteValidation(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)

	_, err := te.Quote(id, types.SwapRiskyIn, nil, types.ExactInput)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
	_, err = te.Quote(id, types.SwapRiskyIn, num.UintZero(), types.ExactInput)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
	_, err = te.Quote("missing", types.SwapRiskyIn, wad(10), types.ExactInput)
	assert.ErrorIs(t, err, types.ErrPoolNotFound)
	_, err = te.Quote(id, types.SwapRiskyIn, wad(50), types.ExactInput)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
}
