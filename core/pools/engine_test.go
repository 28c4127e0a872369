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
	"errors"
	"sync"
	"testing"
	"time"

	"code.tauprotocol.io/tau/core/events"
	"code.tauprotocol.io/tau/core/pools"
	"code.tauprotocol.io/tau/core/pools/mocks"
	"code.tauprotocol.io/tau/core/replication"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assetRisky  = "RISKY"
	assetStable = "STABLE"
)

var testNow = time.Unix(1_700_000_000, 0)

func wad(units uint64) *num.Uint {
	return num.UintZero().Mul(num.NewUint(units), num.NewUint(1_000_000_000_000_000_000))
}

func halfWad() *num.Uint {
	return num.NewUint(500_000_000_000_000_000)
}

// yearCalibration is the canonical test pool, strike 1000, vol 100%, a
// year to run.
func yearCalibration() *types.Calibration {
	return &types.Calibration{
		Strike:   wad(1000),
		Sigma:    wad(1),
		Maturity: testNow.Unix() + types.SecondsPerYear,
	}
}

type testEngine struct {
	*pools.Engine
	ctrl   *gomock.Controller
	ledger *mocks.MockAssetLedger
	tsvc   *mocks.MockTimeService
	broker *mocks.MockBroker

	mu       sync.Mutex
	now      time.Time
	balances map[string]map[string]*num.Uint
	events   []events.Event
}

// getTestEngine wires an engine to a ledger fake backed by an in-memory
// balance map, so settlement callbacks can move real numbers around.
func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	te := &testEngine{
		ctrl:     ctrl,
		ledger:   mocks.NewMockAssetLedger(ctrl),
		tsvc:     mocks.NewMockTimeService(ctrl),
		broker:   mocks.NewMockBroker(ctrl),
		now:      testNow,
		balances: map[string]map[string]*num.Uint{},
	}
	te.tsvc.EXPECT().GetTimeNow().AnyTimes().DoAndReturn(func() time.Time {
		te.mu.Lock()
		defer te.mu.Unlock()
		return te.now
	})
	te.ledger.EXPECT().Balance(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(te.balance)
	te.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(te.transfer)
	te.broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(evt events.Event) {
		te.mu.Lock()
		defer te.mu.Unlock()
		te.events = append(te.events, evt)
	})
	te.broker.EXPECT().SendBatch(gomock.Any()).AnyTimes().Do(func(evts []events.Event) {
		te.mu.Lock()
		defer te.mu.Unlock()
		te.events = append(te.events, evts...)
	})
	te.Engine = pools.New(logging.NewTestLogger(), pools.NewDefaultConfig(), te.ledger, te.tsvc, te.broker, assetRisky, assetStable)
	return te
}

func (te *testEngine) Finish() {
	te.ctrl.Finish()
}

func (te *testEngine) holding(asset, holder string) *num.Uint {
	accounts, ok := te.balances[asset]
	if !ok {
		accounts = map[string]*num.Uint{}
		te.balances[asset] = accounts
	}
	b, ok := accounts[holder]
	if !ok {
		b = num.UintZero()
		accounts[holder] = b
	}
	return b
}

func (te *testEngine) balance(_ context.Context, asset, holder string) (*num.Uint, error) {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.holding(asset, holder).Clone(), nil
}

func (te *testEngine) transfer(_ context.Context, asset, from, to string, amount *num.Uint) error {
	te.mu.Lock()
	defer te.mu.Unlock()
	src := te.holding(asset, from)
	if src.LT(amount) {
		return errors.New("insufficient funds")
	}
	src.Sub(src, amount)
	dst := te.holding(asset, to)
	dst.Add(dst, amount)
	return nil
}

func (te *testEngine) credit(asset, holder string, amount *num.Uint) {
	te.mu.Lock()
	defer te.mu.Unlock()
	b := te.holding(asset, holder)
	b.Add(b, amount)
}

func (te *testEngine) balanceOf(asset, holder string) *num.Uint {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.holding(asset, holder).Clone()
}

func (te *testEngine) clearEvents() {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.events = nil
}

func (te *testEngine) capturedEvents() []events.Event {
	te.mu.Lock()
	defer te.mu.Unlock()
	return append([]events.Event(nil), te.events...)
}

func (te *testEngine) advanceTime(d time.Duration) time.Time {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.now = te.now.Add(d)
	return te.now
}

// deliveringCallback credits the engine holder with exactly what is
// owed, the way a well behaved collateral component would.
func (te *testEngine) deliveringCallback() pools.SettlementCallback {
	cb := mocks.NewMockSettlementCallback(te.ctrl)
	cb.EXPECT().Settle(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(_ context.Context, owedRisky, owedStable *num.Uint, _ []byte) error {
			if !owedRisky.IsZero() {
				te.credit(assetRisky, pools.HolderKey, owedRisky)
			}
			if !owedStable.IsZero() {
				te.credit(assetStable, pools.HolderKey, owedStable)
			}
			return nil
		})
	return cb
}

// shortCallback delivers half of each owed leg and reports success
// anyway, the engine has to catch the shortfall itself.
func (te *testEngine) shortCallback() pools.SettlementCallback {
	cb := mocks.NewMockSettlementCallback(te.ctrl)
	cb.EXPECT().Settle(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(_ context.Context, owedRisky, owedStable *num.Uint, _ []byte) error {
			two := num.NewUint(2)
			if !owedRisky.IsZero() {
				te.credit(assetRisky, pools.HolderKey, num.UintZero().Div(owedRisky, two))
			}
			if !owedStable.IsZero() {
				te.credit(assetStable, pools.HolderKey, num.UintZero().Div(owedStable, two))
			}
			return nil
		})
	return cb
}

func (te *testEngine) failingCallback() pools.SettlementCallback {
	cb := mocks.NewMockSettlementCallback(te.ctrl)
	cb.EXPECT().Settle(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		Return(errors.New("settlement rejected"))
	return cb
}

func (te *testEngine) createPool(t *testing.T, liquidity *num.Uint, feeBps uint32) (string, *types.Calibration) {
	t.Helper()
	cal := yearCalibration()
	id, err := te.Create(context.Background(), "creator", cal, halfWad(), liquidity, feeBps, te.deliveringCallback(), nil)
	require.NoError(t, err)
	te.clearEvents()
	return id, cal
}

func (te *testEngine) poolInvariant(t *testing.T, poolID string) *num.Int {
	t.Helper()
	pool, err := te.Pool(poolID)
	require.NoError(t, err)
	te.mu.Lock()
	now := te.now
	te.mu.Unlock()
	inv, err := replication.Invariant(pool.ReserveRisky, pool.ReserveStable, pool.Liquidity, pool.Calibration, now)
	require.NoError(t, err)
	return inv
}

func TestCreatePool(t *testing.T) {
	t.Run("Creating a pool registers reserves and positions", testCreatePoolSuccess)
	t.Run("Creating a pool twice for one calibration fails", testCreatePoolDuplicate)
	t.Run("Create rejects bad parameters", testCreatePoolValidation)
	t.Run("Create aborts cleanly when settlement fails", testCreatePoolSettlementFailure)
	t.Run("Create refunds a partial delivery", testCreatePoolPartialDelivery)
}

func testCreatePoolSuccess(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()

	cal := yearCalibration()
	id, err := te.Create(context.Background(), "creator", cal, halfWad(), wad(100), 15, te.deliveringCallback(), nil)
	require.NoError(t, err)
	assert.Equal(t, cal.Hash(), id)

	pool, err := te.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, wad(50).String(), pool.ReserveRisky.String())
	// strike 1000, vol 100%, one year out at ratio 0.5 prices the
	// stable side a touch under 160 per unit of liquidity
	assert.True(t, pool.ReserveStable.GT(wad(15_000)), pool.ReserveStable.String())
	assert.True(t, pool.ReserveStable.LT(wad(16_500)), pool.ReserveStable.String())
	assert.Equal(t, wad(100).String(), pool.Liquidity.String())
	assert.Equal(t, uint32(15), pool.FeeBps)
	assert.Equal(t, testNow.Unix(), pool.CreatedAt)
	assert.Equal(t, testNow.Unix(), pool.LastTimestamp)

	// the initial reserves sit exactly on the curve
	assert.True(t, te.poolInvariant(t, id).IsZero())

	minted := num.UintZero().Sub(wad(100), num.NewUint(1000))
	creator, err := te.Position(id, "creator")
	require.NoError(t, err)
	assert.Equal(t, minted.String(), creator.Liquidity.String())
	retained, err := te.Position(id, pools.HolderKey)
	require.NoError(t, err)
	assert.Equal(t, "1000", retained.Liquidity.String())

	// custody matches the book
	assert.Equal(t, pool.ReserveRisky.String(), te.balanceOf(assetRisky, pools.HolderKey).String())
	assert.Equal(t, pool.ReserveStable.String(), te.balanceOf(assetStable, pools.HolderKey).String())

	evts := te.capturedEvents()
	require.Len(t, evts, 3)
	created, ok := evts[0].(*events.PoolCreated)
	require.True(t, ok)
	assert.Equal(t, id, created.PoolID())
	liq, ok := evts[1].(*events.LiquidityChanged)
	require.True(t, ok)
	assert.True(t, liq.Added())
	assert.Equal(t, minted.String(), liq.DeltaLiquidity().String())
	margin, ok := evts[2].(*events.MarginUpdated)
	require.True(t, ok)
	assert.Equal(t, minted.String(), margin.Position().Liquidity.String())
}

func testCreatePoolDuplicate(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()

	_, cal := te.createPool(t, wad(100), 15)
	_, err := te.Create(context.Background(), "creator", cal, halfWad(), wad(100), 15, te.deliveringCallback(), nil)
	assert.ErrorIs(t, err, types.ErrPoolExists)
}

func testCreatePoolValidation(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	ctx := context.Background()
	cb := te.deliveringCallback()

	_, err := te.Create(ctx, "creator", nil, halfWad(), wad(100), 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrInvalidCalibration)

	zeroSigma := yearCalibration()
	zeroSigma.Sigma = num.UintZero()
	_, err = te.Create(ctx, "creator", zeroSigma, halfWad(), wad(100), 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrInvalidCalibration)

	matured := yearCalibration()
	matured.Maturity = testNow.Unix() - 100
	_, err = te.Create(ctx, "creator", matured, halfWad(), wad(100), 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrExpiredCalibration)

	_, err = te.Create(ctx, "creator", yearCalibration(), halfWad(), wad(100), 10_000, cb, nil)
	assert.ErrorIs(t, err, pools.ErrInvalidFee)

	// the risky per liquidity ratio has to stay inside (0, 1)
	_, err = te.Create(ctx, "creator", yearCalibration(), num.UintZero(), wad(100), 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrMathDomain)
	_, err = te.Create(ctx, "creator", yearCalibration(), nil, wad(100), 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrMathDomain)
	_, err = te.Create(ctx, "creator", yearCalibration(), wad(1), wad(100), 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrMathDomain)

	// not enough liquidity to cover the engine retained floor
	_, err = te.Create(ctx, "creator", yearCalibration(), halfWad(), num.NewUint(1000), 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrInsufficientLiquidity)
	_, err = te.Create(ctx, "creator", yearCalibration(), halfWad(), nil, 15, cb, nil)
	assert.ErrorIs(t, err, types.ErrInsufficientLiquidity)

	_, err = te.Create(ctx, "creator", yearCalibration(), halfWad(), wad(100), 15, nil, nil)
	assert.ErrorIs(t, err, pools.ErrMissingSettlementCallback)
}

func testCreatePoolSettlementFailure(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	ctx := context.Background()

	cal := yearCalibration()
	_, err := te.Create(ctx, "creator", cal, halfWad(), wad(100), 15, te.failingCallback(), nil)
	require.ErrorIs(t, err, types.ErrInsufficientSettlement)

	// nothing registered, nothing held
	_, err = te.Pool(cal.Hash())
	assert.ErrorIs(t, err, types.ErrPoolNotFound)
	assert.True(t, te.balanceOf(assetRisky, pools.HolderKey).IsZero())
	assert.True(t, te.balanceOf(assetStable, pools.HolderKey).IsZero())

	// the calibration slot is free again
	id, err := te.Create(ctx, "creator", cal, halfWad(), wad(100), 15, te.deliveringCallback(), nil)
	require.NoError(t, err)
	assert.Equal(t, cal.Hash(), id)
}

func testCreatePoolPartialDelivery(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()

	cal := yearCalibration()
	_, err := te.Create(context.Background(), "creator", cal, halfWad(), wad(100), 15, te.shortCallback(), nil)
	require.ErrorIs(t, err, types.ErrInsufficientSettlement)

	_, err = te.Pool(cal.Hash())
	assert.ErrorIs(t, err, types.ErrPoolNotFound)

	// what did arrive went straight back to the party
	assert.Equal(t, wad(25).String(), te.balanceOf(assetRisky, "creator").String())
	assert.False(t, te.balanceOf(assetStable, "creator").IsZero())
	assert.True(t, te.balanceOf(assetRisky, pools.HolderKey).IsZero())
	assert.True(t, te.balanceOf(assetStable, pools.HolderKey).IsZero())
}

func TestPoolGetters(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)

	_, err := te.Pool("missing")
	assert.ErrorIs(t, err, types.ErrPoolNotFound)
	_, err = te.Position("missing", "creator")
	assert.ErrorIs(t, err, types.ErrPoolNotFound)

	// unknown parties get an empty position, not an error
	pos, err := te.Position(id, "stranger")
	require.NoError(t, err)
	assert.Equal(t, "stranger", pos.Party)
	assert.Equal(t, id, pos.PoolID)
	assert.True(t, pos.IsEmpty())

	// getters hand out clones, callers cannot reach engine state
	p1, err := te.Pool(id)
	require.NoError(t, err)
	p1.ReserveRisky.SetUint64(1)
	p2, err := te.Pool(id)
	require.NoError(t, err)
	assert.Equal(t, wad(50).String(), p2.ReserveRisky.String())

	creator, err := te.Position(id, "creator")
	require.NoError(t, err)
	creator.Liquidity.SetUint64(1)
	again, err := te.Position(id, "creator")
	require.NoError(t, err)
	assert.NotEqual(t, "1", again.Liquidity.String())
}

func TestReloadConf(t *testing.T) {
	te := getTestEngine(t)
	defer te.Finish()

	conf := pools.NewDefaultConfig()
	conf.Level.Level = logging.DebugLevel
	conf.MinimumLiquidity = 1
	conf.InvariantToleranceUnits = 42
	te.ReloadConf(conf)
	assert.Equal(t, uint64(1), te.MinimumLiquidity)
	assert.Equal(t, uint64(42), te.InvariantToleranceUnits)

	conf.Level.Level = logging.InfoLevel
	te.ReloadConf(conf)
}

func TestConcurrent(t *testing.T) {
	const readers = 8
	te := getTestEngine(t)
	defer te.Finish()
	id, _ := te.createPool(t, wad(100), 15)

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := te.Pool(id); err != nil {
					assert.ErrorIs(t, err, types.ErrPoolNotFound)
				}
				_, _ = te.Position(id, "creator")
				_, _ = te.Observe(id)
				_, _ = te.Quote(id, types.SwapRiskyIn, wad(1), types.ExactInput)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		te.OnTick(context.Background(), te.advanceTime(time.Second))
	}
	wg.Wait()
}
