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

	"code.tauprotocol.io/tau/core/events"
	"code.tauprotocol.io/tau/core/fixedpoint"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/logging"
	"code.tauprotocol.io/tau/metrics"
)

// Deposit collects margin for the party's position on the pool through
// the settlement callback. Swaps with fromMargin draw on these
// balances instead of settling externally.
func (e *Engine) Deposit(ctx context.Context, party, poolID string, deltaRisky, deltaStable *num.Uint, cb SettlementCallback, data []byte) error {
	timer := metrics.NewTimeCounter(poolID, "pools", "Deposit")
	defer timer.EngineTimeCounterAdd()

	deltaRisky, deltaStable = normaliseLegs(deltaRisky, deltaStable)
	if deltaRisky.IsZero() && deltaStable.IsZero() {
		return types.ErrInvalidAmount
	}
	entry, err := e.lockPool(poolID)
	if err != nil {
		return err
	}
	if err := e.collectFunds(ctx, party, cb, deltaRisky.Clone(), deltaStable.Clone(), data); err != nil {
		e.unlockPool(entry)
		return err
	}

	pos := e.getPosition(poolID, party)
	pos.BalanceRisky.Add(pos.BalanceRisky, deltaRisky)
	pos.BalanceStable.Add(pos.BalanceStable, deltaStable)
	e.storePosition(pos)
	e.unlockPool(entry)

	e.broker.Send(events.NewMarginUpdated(ctx, pos))
	if e.log.IsDebug() {
		e.log.Debug("margin deposited",
			logging.PoolID(poolID),
			logging.Party(party),
			logging.BigUint("delta-risky", deltaRisky),
			logging.BigUint("delta-stable", deltaStable),
		)
	}
	return nil
}

// Withdraw pays margin balances back out to the party.
func (e *Engine) Withdraw(ctx context.Context, party, poolID string, deltaRisky, deltaStable *num.Uint) error {
	timer := metrics.NewTimeCounter(poolID, "pools", "Withdraw")
	defer timer.EngineTimeCounterAdd()

	deltaRisky, deltaStable = normaliseLegs(deltaRisky, deltaStable)
	if deltaRisky.IsZero() && deltaStable.IsZero() {
		return types.ErrInvalidAmount
	}
	entry, err := e.lockPool(poolID)
	if err != nil {
		return err
	}
	pos := e.getPosition(poolID, party)
	if pos.BalanceRisky.LT(deltaRisky) || pos.BalanceStable.LT(deltaStable) {
		e.unlockPool(entry)
		return types.ErrInsufficientMargin
	}
	pos.BalanceRisky.Sub(pos.BalanceRisky, deltaRisky)
	pos.BalanceStable.Sub(pos.BalanceStable, deltaStable)

	if !deltaRisky.IsZero() {
		if err := e.ledger.Transfer(ctx, e.assetRisky, HolderKey, party, deltaRisky); err != nil {
			e.unlockPool(entry)
			return err
		}
	}
	if !deltaStable.IsZero() {
		if err := e.ledger.Transfer(ctx, e.assetStable, HolderKey, party, deltaStable); err != nil {
			if !deltaRisky.IsZero() {
				if rerr := e.ledger.Transfer(ctx, e.assetRisky, party, HolderKey, deltaRisky); rerr != nil {
					e.log.Panic("unable to roll back withdrawal transfer",
						logging.PoolID(poolID),
						logging.Party(party),
						logging.Error(rerr),
					)
				}
			}
			e.unlockPool(entry)
			return err
		}
	}

	e.storePosition(pos)
	e.unlockPool(entry)

	e.broker.Send(events.NewMarginUpdated(ctx, pos))
	if e.log.IsDebug() {
		e.log.Debug("margin withdrawn",
			logging.PoolID(poolID),
			logging.Party(party),
			logging.BigUint("delta-risky", deltaRisky),
			logging.BigUint("delta-stable", deltaStable),
		)
	}
	return nil
}

// ClaimFees settles the fees accrued to the party's liquidity since
// the last settlement out of the pool reserves into its margin
// balances, and reports the two amounts.
func (e *Engine) ClaimFees(ctx context.Context, party, poolID string) (*num.Uint, *num.Uint, error) {
	timer := metrics.NewTimeCounter(poolID, "pools", "ClaimFees")
	defer timer.EngineTimeCounterAdd()

	entry, err := e.lockPool(poolID)
	if err != nil {
		return nil, nil, err
	}
	now := e.timeService.GetTimeNow()
	pool := entry.pool.Clone()
	rollAccumulators(pool, now)

	pos := e.getPosition(poolID, party)
	owedRisky, owedStable, err := settleFees(pool, pos)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}
	if owedRisky.IsZero() && owedStable.IsZero() {
		e.unlockPool(entry)
		return num.UintZero(), num.UintZero(), nil
	}

	// the claim eats into accumulated surplus, the reserves left
	// behind still have to cover the curve
	inv, err := invariantAt(pool, now)
	if err != nil {
		e.unlockPool(entry)
		return nil, nil, err
	}
	floor := num.IntFromUint(num.NewUint(e.InvariantToleranceUnits), false)
	if inv.LT(floor) {
		e.unlockPool(entry)
		return nil, nil, types.ErrInvariantViolation
	}

	e.commit(entry, pool)
	e.storePosition(pos)

	e.broker.SendBatch([]events.Event{
		events.NewMarginUpdated(ctx, pos),
		events.NewPoolTick(ctx, observationFromPool(pool), now),
	})
	gaugePool(pool)

	if e.log.IsDebug() {
		e.log.Debug("fees claimed",
			logging.PoolID(poolID),
			logging.Party(party),
			logging.BigUint("owed-risky", owedRisky),
			logging.BigUint("owed-stable", owedStable),
		)
	}
	return owedRisky, owedStable, nil
}

func normaliseLegs(deltaRisky, deltaStable *num.Uint) (*num.Uint, *num.Uint) {
	if deltaRisky == nil {
		deltaRisky = num.UintZero()
	}
	if deltaStable == nil {
		deltaStable = num.UintZero()
	}
	return deltaRisky, deltaStable
}

// settleFees moves the fees owed to the position since its last marks
// out of the pool reserves into the position's margin balances and
// snaps the marks to the current growth. Both arguments are mutated,
// callers pass clones.
func settleFees(pool *types.Pool, pos *types.Position) (*num.Uint, *num.Uint, error) {
	owedRisky, err := feesOwed(pool.FeeGrowthRisky, pos.LastFeeGrowthRisky, pos.Liquidity)
	if err != nil {
		return nil, nil, err
	}
	owedStable, err := feesOwed(pool.FeeGrowthStable, pos.LastFeeGrowthStable, pos.Liquidity)
	if err != nil {
		return nil, nil, err
	}
	pos.LastFeeGrowthRisky = pool.FeeGrowthRisky.Clone()
	pos.LastFeeGrowthStable = pool.FeeGrowthStable.Clone()
	if owedRisky.IsZero() && owedStable.IsZero() {
		return owedRisky, owedStable, nil
	}

	newRisky, under := num.UintZero().SubOverflow(pool.ReserveRisky, owedRisky)
	if under {
		return nil, nil, types.ErrInvariantViolation
	}
	newStable, under := num.UintZero().SubOverflow(pool.ReserveStable, owedStable)
	if under {
		return nil, nil, types.ErrInvariantViolation
	}
	pool.ReserveRisky = newRisky
	pool.ReserveStable = newStable
	pos.BalanceRisky.Add(pos.BalanceRisky, owedRisky)
	pos.BalanceStable.Add(pos.BalanceStable, owedStable)
	return owedRisky, owedStable, nil
}

// feesOwed is the position's share of the growth since its mark.
func feesOwed(growth, mark, liquidity *num.Uint) (*num.Uint, error) {
	if liquidity.IsZero() || growth.EQ(mark) {
		return num.UintZero(), nil
	}
	delta, neg := num.UintZero().Delta(growth, mark)
	if neg {
		// growth only ever increases, a mark ahead of it is stale state
		return num.UintZero(), nil
	}
	return fixedpoint.MulDivDown(liquidity, delta, fixedpoint.Wad)
}
