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
	"time"

	"code.tauprotocol.io/tau/core/events"
	"code.tauprotocol.io/tau/core/fixedpoint"
	"code.tauprotocol.io/tau/core/replication"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/logging"
	"code.tauprotocol.io/tau/metrics"
)

func invariantAt(p *types.Pool, now time.Time) (*num.Int, error) {
	return replication.Invariant(p.ReserveRisky, p.ReserveStable, p.Liquidity, p.Calibration, now)
}

// scaleInvariant rescales an invariant to a new liquidity supply. The
// trading function is homogeneous in liquidity, any reserve surplus or
// deficit scales with the pool.
func scaleInvariant(inv *num.Int, newLiquidity, liquidity *num.Uint) (*num.Int, error) {
	if inv.IsZero() || newLiquidity.EQ(liquidity) {
		return inv.Clone(), nil
	}
	mag, err := fixedpoint.MulDivDown(inv.U, newLiquidity, liquidity)
	if err != nil {
		return nil, err
	}
	return num.IntFromUint(mag, !inv.IsNegative()), nil
}

// Allocate mints deltaLiquidity shares to the party against
// proportional amounts of both reserves, collected through the
// settlement callback. The proportional amounts round up. Reports the
// reserve deltas actually charged.
func (e *Engine) Allocate(ctx context.Context, party, poolID string, deltaLiquidity *num.Uint, cb SettlementCallback, data []byte) (*num.Uint, *num.Uint, error) {
	timer := metrics.NewTimeCounter(poolID, "pools", "Allocate")
	defer timer.EngineTimeCounterAdd()

	if deltaLiquidity == nil || deltaLiquidity.IsZero() {
		return nil, nil, types.ErrInvalidAmount
	}
	entry, err := e.lockPool(poolID)
	if err != nil {
		return nil, nil, err
	}
	now := e.timeService.GetTimeNow()
	pool := entry.pool.Clone()
	if pool.Calibration.Expired(now) {
		e.unlockPool(entry)
		return nil, nil, types.ErrExpiredCalibration
	}
	rollAccumulators(pool, now)

	deltaRisky, err := fixedpoint.MulDivUp(deltaLiquidity, pool.ReserveRisky, pool.Liquidity)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}
	deltaStable, err := fixedpoint.MulDivUp(deltaLiquidity, pool.ReserveStable, pool.Liquidity)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}

	if err := e.collectFunds(ctx, party, cb, deltaRisky.Clone(), deltaStable.Clone(), data); err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}

	// funds are in custody from here, every failure path has to hand
	// them back before unwinding
	abort := func(err error) (*num.Uint, *num.Uint, error) {
		e.refund(ctx, party, deltaRisky, deltaStable)
		e.unlockPool(entry)
		return nil, nil, err
	}

	pos := e.getPosition(poolID, party)
	if _, _, err := settleFees(pool, pos); err != nil {
		return abort(err)
	}
	preInv, err := invariantAt(pool, now)
	if err != nil {
		return abort(err)
	}
	newLiquidity := num.UintZero().Add(pool.Liquidity, deltaLiquidity)
	expectInv, err := scaleInvariant(preInv, newLiquidity, pool.Liquidity)
	if err != nil {
		return abort(err)
	}

	pool.ReserveRisky = num.UintZero().Add(pool.ReserveRisky, deltaRisky)
	pool.ReserveStable = num.UintZero().Add(pool.ReserveStable, deltaStable)
	pool.Liquidity = newLiquidity

	postInv, err := invariantAt(pool, now)
	if err != nil {
		return abort(err)
	}
	shortfall := expectInv.Sub(postInv)
	if shortfall.IsPositive() && shortfall.U.GT(num.NewUint(e.InvariantToleranceUnits)) {
		return abort(types.ErrInvariantViolation)
	}

	pos.Liquidity.Add(pos.Liquidity, deltaLiquidity)
	e.commit(entry, pool)
	e.storePosition(pos)

	e.broker.SendBatch([]events.Event{
		events.NewLiquidityChanged(ctx, party, poolID, true, deltaLiquidity, deltaRisky, deltaStable),
		events.NewMarginUpdated(ctx, pos),
		events.NewPoolTick(ctx, observationFromPool(pool), now),
	})
	gaugePool(pool)

	if e.log.IsDebug() {
		e.log.Debug("liquidity allocated",
			logging.PoolID(poolID),
			logging.Party(party),
			logging.BigUint("delta-liquidity", deltaLiquidity),
			logging.BigUint("delta-risky", deltaRisky),
			logging.BigUint("delta-stable", deltaStable),
		)
	}
	return deltaRisky, deltaStable, nil
}

// Remove burns deltaLiquidity of the party's shares and pays out the
// proportional reserves, rounded down. The pool can never be drained
// below the engine-retained minimum liquidity.
func (e *Engine) Remove(ctx context.Context, party, poolID string, deltaLiquidity *num.Uint) (*num.Uint, *num.Uint, error) {
	timer := metrics.NewTimeCounter(poolID, "pools", "Remove")
	defer timer.EngineTimeCounterAdd()

	if deltaLiquidity == nil || deltaLiquidity.IsZero() {
		return nil, nil, types.ErrInvalidAmount
	}
	entry, err := e.lockPool(poolID)
	if err != nil {
		return nil, nil, err
	}
	now := e.timeService.GetTimeNow()
	pool := entry.pool.Clone()
	rollAccumulators(pool, now)

	pos := e.getPosition(poolID, party)
	if pos.Liquidity.LT(deltaLiquidity) {
		e.unlockPool(entry)
		return nil, nil, types.ErrInsufficientLiquidity
	}
	remaining := num.UintZero().Sub(pool.Liquidity, deltaLiquidity)
	if remaining.LTUint64(e.MinimumLiquidity) {
		e.unlockPool(entry)
		return nil, nil, types.ErrInsufficientLiquidity
	}

	deltaRisky, err := fixedpoint.MulDivDown(deltaLiquidity, pool.ReserveRisky, pool.Liquidity)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}
	deltaStable, err := fixedpoint.MulDivDown(deltaLiquidity, pool.ReserveStable, pool.Liquidity)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}

	if _, _, err := settleFees(pool, pos); err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}
	preInv, err := invariantAt(pool, now)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}
	expectInv, err := scaleInvariant(preInv, remaining, pool.Liquidity)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}

	pool.Liquidity = remaining
	pool.ReserveRisky = num.UintZero().Sub(pool.ReserveRisky, deltaRisky)
	pool.ReserveStable = num.UintZero().Sub(pool.ReserveStable, deltaStable)

	postInv, err := invariantAt(pool, now)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}
	shortfall := expectInv.Sub(postInv)
	if shortfall.IsPositive() && shortfall.U.GT(num.NewUint(e.InvariantToleranceUnits)) {
		e.unlockPool(entry)
		return nil, nil, types.ErrInvariantViolation
	}

	// nothing has moved yet, pay out both legs with the second one
	// rolling the first back on failure
	if !deltaRisky.IsZero() {
		if err := e.ledger.Transfer(ctx, e.assetRisky, HolderKey, party, deltaRisky); err != nil {
			e.unlockPool(entry)
			return nil, nil, err
		}
	}
	if !deltaStable.IsZero() {
		if err := e.ledger.Transfer(ctx, e.assetStable, HolderKey, party, deltaStable); err != nil {
			if !deltaRisky.IsZero() {
				if rerr := e.ledger.Transfer(ctx, e.assetRisky, party, HolderKey, deltaRisky); rerr != nil {
					e.log.Panic("unable to roll back removal transfer",
						logging.PoolID(poolID),
						logging.Party(party),
						logging.Error(rerr),
					)
				}
			}
			e.unlockPool(entry)
			return nil, nil, err
		}
	}

	pos.Liquidity.Sub(pos.Liquidity, deltaLiquidity)
	e.commit(entry, pool)
	e.storePosition(pos)

	e.broker.SendBatch([]events.Event{
		events.NewLiquidityChanged(ctx, party, poolID, false, deltaLiquidity, deltaRisky, deltaStable),
		events.NewMarginUpdated(ctx, pos),
		events.NewPoolTick(ctx, observationFromPool(pool), now),
	})
	gaugePool(pool)

	if e.log.IsDebug() {
		e.log.Debug("liquidity removed",
			logging.PoolID(poolID),
			logging.Party(party),
			logging.BigUint("delta-liquidity", deltaLiquidity),
			logging.BigUint("delta-risky", deltaRisky),
			logging.BigUint("delta-stable", deltaStable),
		)
	}
	return deltaRisky, deltaStable, nil
}
