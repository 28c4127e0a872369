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

package pools

import (
	"context"
	"errors"
	"sync"
	"time"

	"code.tauprotocol.io/tau/core/events"
	"code.tauprotocol.io/tau/core/fixedpoint"
	"code.tauprotocol.io/tau/core/replication"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/logging"
	"code.tauprotocol.io/tau/metrics"

	"github.com/google/btree"
)

// HolderKey is the ledger account under which the engine keeps all pool
// reserves and margin deposits.
const HolderKey = "pools-engine"

var (
	// ErrInvalidFee is returned when a pool is created with a swap fee
	// at or above 100%.
	ErrInvalidFee = errors.New("fee must be less than 10000 basis points")

	// ErrMissingSettlementCallback is returned when an operation owes
	// funds to the engine but no callback was supplied to deliver them.
	ErrMissingSettlementCallback = errors.New("settlement callback required")
)

// AssetLedger is the external account-keeping the engine settles
// against. The engine holds pool funds under its own holder key.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/asset_ledger_mock.go -package mocks code.tauprotocol.io/tau/core/pools AssetLedger
type AssetLedger interface {
	Balance(ctx context.Context, asset, holder string) (*num.Uint, error)
	Transfer(ctx context.Context, asset, from, to string, amount *num.Uint) error
}

// TimeService.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/time_service_mock.go -package mocks code.tauprotocol.io/tau/core/pools TimeService
type TimeService interface {
	GetTimeNow() time.Time
}

// Broker - the event bus broker, send events here.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/broker_mock.go -package mocks code.tauprotocol.io/tau/core/pools Broker
type Broker interface {
	Send(event events.Event)
	SendBatch(events []events.Event)
}

// SettlementCallback delivers funds owed to the engine mid-operation.
// It runs before the operation commits, so anything it calls back into
// the engine with sees the pool still locked.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/settlement_callback_mock.go -package mocks code.tauprotocol.io/tau/core/pools SettlementCallback
type SettlementCallback interface {
	Settle(ctx context.Context, owedRisky, owedStable *num.Uint, data []byte) error
}

// poolEntry is a registry slot. The pool it points at is immutable once
// committed, mutation happens on clones which are swapped in under the
// engine mutex. The locked flag is the per-pool reentrancy lock.
type poolEntry struct {
	pool   *types.Pool
	locked bool
}

func lessPoolEntry(a, b *poolEntry) bool {
	return a.pool.ID < b.pool.ID
}

// Engine - the main type (of course).
type Engine struct {
	Config
	log *logging.Logger

	assetRisky  string
	assetStable string

	mu        *sync.Mutex
	pools     *btree.BTreeG[*poolEntry]
	positions map[string]map[string]*types.Position // poolID -> party

	ledger      AssetLedger
	timeService TimeService
	broker      Broker

	quotes *quoteCache
}

// New instantiates a new instance of the pools engine for one asset
// pair, every pool it manages trades assetRisky against assetStable.
func New(log *logging.Logger, conf Config, ledger AssetLedger, timeService TimeService, broker Broker, assetRisky, assetStable string) *Engine {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	return &Engine{
		Config:      conf,
		log:         log,
		assetRisky:  assetRisky,
		assetStable: assetStable,
		mu:          &sync.Mutex{},
		pools:       btree.NewG(2, lessPoolEntry),
		positions:   map[string]map[string]*types.Position{},
		ledger:      ledger,
		timeService: timeService,
		broker:      broker,
		quotes:      newQuoteCache(log, conf.QuoteCacheSize),
	}
}

// ReloadConf update the internal configuration of the pools engine.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	e.Config = cfg
}

// Create sets up a new pool for the given calibration, collects the
// initial reserves through the settlement callback and registers the
// pool under the calibration hash. The creator is credited all
// liquidity shares minus the engine-retained minimum.
func (e *Engine) Create(ctx context.Context, party string, cal *types.Calibration, riskyPerLiquidity, liquidity *num.Uint, feeBps uint32, cb SettlementCallback, data []byte) (string, error) {
	timer := metrics.NewTimeCounter("-", "pools", "Create")
	defer timer.EngineTimeCounterAdd()

	if cal == nil {
		return "", types.ErrInvalidCalibration
	}
	if err := cal.Validate(); err != nil {
		return "", err
	}
	if feeBps >= bpsDenom {
		return "", ErrInvalidFee
	}
	now := e.timeService.GetTimeNow()
	if cal.Expired(now) {
		return "", types.ErrExpiredCalibration
	}
	if riskyPerLiquidity == nil || riskyPerLiquidity.IsZero() || riskyPerLiquidity.GTE(fixedpoint.Wad) {
		return "", types.ErrMathDomain
	}
	minLiquidity := num.NewUint(e.MinimumLiquidity)
	if liquidity == nil || liquidity.LTE(minLiquidity) {
		return "", types.ErrInsufficientLiquidity
	}

	// initial reserves, the risky side rounds up as it enters the pool,
	// the stable side is read off the curve so the invariant starts at
	// exactly zero
	reserveRisky, err := fixedpoint.MulUp(riskyPerLiquidity, liquidity)
	if err != nil {
		return "", err
	}
	reserveStable, err := replication.StableGivenRisky(reserveRisky, liquidity, cal, now)
	if err != nil {
		return "", err
	}

	pool := &types.Pool{
		ID:                  cal.Hash(),
		Calibration:         cal.Clone(),
		ReserveRisky:        reserveRisky,
		ReserveStable:       reserveStable,
		Liquidity:           liquidity.Clone(),
		FeeBps:              feeBps,
		FeeGrowthRisky:      num.UintZero(),
		FeeGrowthStable:     num.UintZero(),
		CumulativeRisky:     num.UintZero(),
		CumulativeStable:    num.UintZero(),
		CumulativeLiquidity: num.UintZero(),
		LastTimestamp:       now.Unix(),
		CreatedAt:           now.Unix(),
	}

	// reserve the registry slot before settlement so a re-entrant
	// create against the same calibration fails with ErrPoolExists
	entry := &poolEntry{pool: pool, locked: true}
	e.mu.Lock()
	if _, ok := e.pools.Get(entry); ok {
		e.mu.Unlock()
		return "", types.ErrPoolExists
	}
	e.pools.ReplaceOrInsert(entry)
	e.mu.Unlock()

	if err := e.collectFunds(ctx, party, cb, reserveRisky.Clone(), reserveStable.Clone(), data); err != nil {
		e.mu.Lock()
		e.pools.Delete(entry)
		e.mu.Unlock()
		return "", err
	}

	minted := num.UintZero().Sub(liquidity, minLiquidity)
	creator := types.NewPosition(party, pool.ID)
	creator.Liquidity = minted.Clone()

	e.mu.Lock()
	byParty := map[string]*types.Position{party: creator}
	if !minLiquidity.IsZero() {
		retained := types.NewPosition(HolderKey, pool.ID)
		retained.Liquidity = minLiquidity.Clone()
		byParty[HolderKey] = retained
	}
	e.positions[pool.ID] = byParty
	entry.locked = false
	e.mu.Unlock()

	e.broker.SendBatch([]events.Event{
		events.NewPoolCreated(ctx, pool),
		events.NewLiquidityChanged(ctx, party, pool.ID, true, minted, reserveRisky, reserveStable),
		events.NewMarginUpdated(ctx, creator),
	})
	gaugePool(pool)

	if e.log.IsDebug() {
		e.log.Debug("pool created",
			logging.PoolID(pool.ID),
			logging.Party(party),
			logging.BigUint("reserve-risky", reserveRisky),
			logging.BigUint("reserve-stable", reserveStable),
		)
	}
	return pool.ID, nil
}

// Pool returns a copy of the last committed state of the pool.
func (e *Engine) Pool(poolID string) (*types.Pool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.pools.Get(probeEntry(poolID))
	if !ok {
		return nil, types.ErrPoolNotFound
	}
	return entry.pool.Clone(), nil
}

// Position returns a copy of the party's position in the pool, an
// empty position if the party has none.
func (e *Engine) Position(poolID, party string) (*types.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.pools.Get(probeEntry(poolID)); !ok {
		return nil, types.ErrPoolNotFound
	}
	if pos, ok := e.positions[poolID][party]; ok {
		return pos.Clone(), nil
	}
	return types.NewPosition(party, poolID), nil
}

func probeEntry(poolID string) *poolEntry {
	return &poolEntry{pool: &types.Pool{ID: poolID}}
}

// lockPool takes the per-pool reentrancy lock. Every state-changing
// operation holds it from before the first tentative transfer until
// commit or rollback.
func (e *Engine) lockPool(poolID string) (*poolEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.pools.Get(probeEntry(poolID))
	if !ok {
		return nil, types.ErrPoolNotFound
	}
	if entry.locked {
		return nil, types.ErrPoolLocked
	}
	entry.locked = true
	return entry, nil
}

// unlockPool releases the lock without touching pool state, the
// rollback path.
func (e *Engine) unlockPool(entry *poolEntry) {
	e.mu.Lock()
	entry.locked = false
	e.mu.Unlock()
}

// commit atomically swaps in the mutated pool clone and releases the
// lock. Committed pool states are never mutated in place, so readers
// holding the previous pointer stay consistent.
func (e *Engine) commit(entry *poolEntry, pool *types.Pool) {
	e.mu.Lock()
	entry.pool = pool
	entry.locked = false
	e.mu.Unlock()
}

// getPosition returns a clone of the stored position, or a fresh empty
// one. Stored positions are immutable, updates go through
// storePosition with a new value.
func (e *Engine) getPosition(poolID, party string) *types.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pos, ok := e.positions[poolID][party]; ok {
		return pos.Clone()
	}
	return types.NewPosition(party, poolID)
}

func (e *Engine) storePosition(pos *types.Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	byParty, ok := e.positions[pos.PoolID]
	if !ok {
		byParty = map[string]*types.Position{}
		e.positions[pos.PoolID] = byParty
	}
	if pos.IsEmpty() {
		delete(byParty, pos.Party)
		return
	}
	byParty[pos.Party] = pos
}

// collectFunds runs the settlement callback and verifies the owed
// amounts actually arrived at the engine's holder account. On
// under-delivery whatever did arrive is sent back to the party and the
// operation fails with ErrInsufficientSettlement.
func (e *Engine) collectFunds(ctx context.Context, party string, cb SettlementCallback, owedRisky, owedStable *num.Uint, data []byte) error {
	if owedRisky.IsZero() && owedStable.IsZero() {
		return nil
	}
	if cb == nil {
		return ErrMissingSettlementCallback
	}

	preRisky, err := e.preBalance(ctx, e.assetRisky, owedRisky)
	if err != nil {
		return err
	}
	preStable, err := e.preBalance(ctx, e.assetStable, owedStable)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, e.SettlementTimeout.Get())
	defer cancel()
	if err := cb.Settle(cctx, owedRisky.Clone(), owedStable.Clone(), data); err != nil {
		e.log.Debug("settlement callback failed",
			logging.Party(party),
			logging.Error(err),
		)
		return types.ErrInsufficientSettlement
	}

	gotRisky := e.delivered(ctx, e.assetRisky, preRisky, owedRisky)
	gotStable := e.delivered(ctx, e.assetStable, preStable, owedStable)
	if gotRisky.LT(owedRisky) || gotStable.LT(owedStable) {
		e.refund(ctx, party, gotRisky, gotStable)
		e.log.Debug("settlement callback under-delivered",
			logging.Party(party),
			logging.BigUint("owed-risky", owedRisky),
			logging.BigUint("got-risky", gotRisky),
			logging.BigUint("owed-stable", owedStable),
			logging.BigUint("got-stable", gotStable),
		)
		return types.ErrInsufficientSettlement
	}
	return nil
}

// preBalance reads the holder balance for a leg we are owed funds on.
func (e *Engine) preBalance(ctx context.Context, asset string, owed *num.Uint) (*num.Uint, error) {
	if owed.IsZero() {
		return num.UintZero(), nil
	}
	balance, err := e.ledger.Balance(ctx, asset, HolderKey)
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// delivered works out how much of an owed leg arrived during the
// callback. A ledger failure at this point means funds may already be
// in custody with no way to verify or return them, nothing sane can
// continue from there.
func (e *Engine) delivered(ctx context.Context, asset string, pre, owed *num.Uint) *num.Uint {
	if owed.IsZero() {
		return num.UintZero()
	}
	post, err := e.ledger.Balance(ctx, asset, HolderKey)
	if err != nil {
		e.log.Panic("unable to verify settlement balance",
			logging.String("asset", asset),
			logging.Error(err),
		)
	}
	got, neg := num.UintZero().Delta(post, pre)
	if neg {
		return num.UintZero()
	}
	return got
}

// gaugePool publishes the committed reserve state of a pool.
func gaugePool(p *types.Pool) {
	metrics.PoolGaugesSet(p.ID,
		p.ReserveRisky.ToDecimal().InexactFloat64(),
		p.ReserveStable.ToDecimal().InexactFloat64(),
		p.Liquidity.ToDecimal().InexactFloat64(),
	)
}

// refund sends partially delivered settlement legs back to the party.
// If the ledger cannot take them back the books can no longer balance.
func (e *Engine) refund(ctx context.Context, party string, gotRisky, gotStable *num.Uint) {
	if !gotRisky.IsZero() {
		if err := e.ledger.Transfer(ctx, e.assetRisky, HolderKey, party, gotRisky); err != nil {
			e.log.Panic("unable to roll back settlement transfer",
				logging.Party(party),
				logging.BigUint("amount", gotRisky),
				logging.Error(err),
			)
		}
	}
	if !gotStable.IsZero() {
		if err := e.ledger.Transfer(ctx, e.assetStable, HolderKey, party, gotStable); err != nil {
			e.log.Panic("unable to roll back settlement transfer",
				logging.Party(party),
				logging.BigUint("amount", gotStable),
				logging.Error(err),
			)
		}
	}
}
