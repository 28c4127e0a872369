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
	"encoding/json"
	"testing"
	"time"

	"code.tauprotocol.io/tau/core/events"
	"code.tauprotocol.io/tau/core/pools"
	"code.tauprotocol.io/tau/core/pools/mocks"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint(t *testing.T) {
	t.Run("State round trips through a checkpoint", testCheckpointRoundTrip)
	t.Run("A tampered hash is rejected", testCheckpointBadHash)
	t.Run("An incompatible version is rejected", testCheckpointBadVersion)
	t.Run("Garbage payloads are rejected", testCheckpointGarbage)
	t.Run("Loading over a locked pool fails", testCheckpointLoadLocked)
}

// tamperField rewrites one top level string field of a marshalled
// checkpoint, leaving everything else intact.
func tamperField(t *testing.T, cp []byte, key, value string) []byte {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(cp, &m))
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	m[key] = raw
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return out
}

func testCheckpointRoundTrip(t *testing.T) {
	a := getTestEngine(t)
	defer a.Finish()
	id, _ := a.createPool(t, wad(100), 15)
	ctx := context.Background()

	// build up some history, margin, fee growth and oracle state
	require.NoError(t, a.Deposit(ctx, "trader", id, wad(5), nil, a.deliveringCallback(), nil))
	_, err := a.Swap(ctx, "trader", id, types.SwapRiskyIn, wad(10), nil, types.ExactInput, false, a.deliveringCallback(), nil)
	require.NoError(t, err)
	a.OnTick(ctx, a.advanceTime(60*time.Second))
	_, _, err = a.ClaimFees(ctx, "creator", id)
	require.NoError(t, err)
	a.clearEvents()

	cp, err := a.Checkpoint(ctx)
	require.NoError(t, err)

	evts := a.capturedEvents()
	require.Len(t, evts, 1)
	cpEvt, ok := evts[0].(*events.Checkpoint)
	require.True(t, ok)
	assert.NotEmpty(t, cpEvt.Hash())

	// taking it twice writes identical bytes
	again, err := a.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, cp, again)

	// restore into an engine holding unrelated state
	b := getTestEngine(t)
	defer b.Finish()
	cal := yearCalibration()
	cal.Strike = wad(2000)
	otherID, err := b.Create(ctx, "creator", cal, halfWad(), wad(100), 15, b.deliveringCallback(), nil)
	require.NoError(t, err)

	require.NoError(t, b.Load(ctx, cp))

	aPool, err := a.Pool(id)
	require.NoError(t, err)
	bPool, err := b.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, aPool, bPool)

	for _, party := range []string{"creator", "trader", pools.HolderKey} {
		aPos, err := a.Position(id, party)
		require.NoError(t, err)
		bPos, err := b.Position(id, party)
		require.NoError(t, err)
		assert.Equal(t, aPos, bPos, party)
	}

	// the pre load state is gone
	_, err = b.Pool(otherID)
	assert.ErrorIs(t, err, types.ErrPoolNotFound)

	// and the restored engine checkpoints to the same bytes
	cpB, err := b.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, cp, cpB)
}

func testCheckpointBadHash(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)
	ctx := context.Background()

	cp, err := te.Checkpoint(ctx)
	require.NoError(t, err)

	err = te.Load(ctx, tamperField(t, cp, "hash", "deadbeef"))
	assert.ErrorIs(t, err, types.ErrInvalidCheckpoint)

	// a failed load leaves the engine serving its old state
	_, err = te.Pool(id)
	assert.NoError(t, err)
}

func testCheckpointBadVersion(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	te.createPool(t, wad(100), 15)
	ctx := context.Background()

	cp, err := te.Checkpoint(ctx)
	require.NoError(t, err)

	err = te.Load(ctx, tamperField(t, cp, "version", "99.0.0"))
	assert.ErrorIs(t, err, types.ErrInvalidCheckpoint)
	err = te.Load(ctx, tamperField(t, cp, "version", "not-a-version"))
	assert.ErrorIs(t, err, types.ErrInvalidCheckpoint)
}

func testCheckpointGarbage(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	ctx := context.Background()

	assert.ErrorIs(t, te.Load(ctx, nil), types.ErrInvalidCheckpoint)
	assert.ErrorIs(t, te.Load(ctx, []byte("{")), types.ErrInvalidCheckpoint)
	assert.ErrorIs(t, te.Load(ctx, []byte(`{"version":"","hash":""}`)), types.ErrInvalidCheckpoint)
}

func testCheckpointLoadLocked(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)
	ctx := context.Background()

	cp, err := te.Checkpoint(ctx)
	require.NoError(t, err)

	// a settlement callback finds the pool it is settling for locked
	locked := mocks.NewMockSettlementCallback(te.ctrl)
	locked.EXPECT().Settle(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, owedRisky, _ *num.Uint, _ []byte) error {
			assert.ErrorIs(t, te.Load(ctx, cp), types.ErrPoolLocked)
			te.credit(assetRisky, pools.HolderKey, owedRisky)
			return nil
		})
	require.NoError(t, te.Deposit(ctx, "trader", id, wad(1), nil, locked, nil))

	// once the lock clears the same payload loads fine
	require.NoError(t, te.Load(ctx, cp))
	pos, err := te.Position(id, "trader")
	require.NoError(t, err)
	assert.True(t, pos.IsEmpty())
}
