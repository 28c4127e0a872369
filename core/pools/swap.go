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

const bpsDenom = 10_000

// quote is the outcome of solving the trading function for one swap,
// before any funds have moved.
type quote struct {
	in, out, fee *num.Uint
	newRisky     *num.Uint
	newStable    *num.Uint
	// feeGrowth is the per-share growth for the fee token, WAD scale.
	feeGrowth     *num.Uint
	postInvariant *num.Int
}

// legs is the raw output of one direction solver, fNew is the curve
// value at the new risky reserve so the invariant gate does not have
// to evaluate it again.
type legs struct {
	in, out, fee *num.Uint
	newRisky     *num.Uint
	newStable    *num.Uint
	fNew         *num.Uint
}

// Swap trades against the pool. The specified amount fixes the input
// or the output side per exact, the other side is solved from the
// trading function with the pool's fee retained out of the gross
// output. Inputs round up, outputs round down. With fromMargin the
// legs settle against the party's margin position, otherwise the
// output is released optimistically and the callback must deliver the
// input before the operation commits.
func (e *Engine) Swap(ctx context.Context, party, poolID string, dir types.SwapDirection, amountSpecified, limitAmount *num.Uint, exact types.Exactness, fromMargin bool, cb SettlementCallback, data []byte) (*types.SwapResult, error) {
	timer := metrics.NewTimeCounter(poolID, "pools", "Swap")
	defer timer.EngineTimeCounterAdd()

	if amountSpecified == nil || amountSpecified.IsZero() {
		return nil, types.ErrInvalidAmount
	}
	entry, err := e.lockPool(poolID)
	if err != nil {
		return nil, err
	}
	now := e.timeService.GetTimeNow()
	pool := entry.pool.Clone()
	rollAccumulators(pool, now)

	q, err := swapQuote(pool, dir, amountSpecified, exact, pool.FeeBps, e.InvariantToleranceUnits, now)
	if err != nil {
		e.unlockPool(entry)
		return nil, err
	}
	if err := checkLimit(q, limitAmount, exact); err != nil {
		e.unlockPool(entry)
		return nil, err
	}

	assetOut := e.assetStable
	if dir == types.SwapStableIn {
		assetOut = e.assetRisky
	}

	var pos *types.Position
	if fromMargin {
		pos = e.getPosition(poolID, party)
		if err := debitMargin(pos, dir, q.in); err != nil {
			e.unlockPool(entry)
			return nil, err
		}
		creditMargin(pos, dir, q.out)
	} else {
		// optimistic transfer of the output, then collect the owed
		// input through the callback
		if err := e.ledger.Transfer(ctx, assetOut, HolderKey, party, q.out); err != nil {
			e.unlockPool(entry)
			return nil, err
		}
		owedRisky, owedStable := q.in, num.UintZero()
		if dir == types.SwapStableIn {
			owedRisky, owedStable = num.UintZero(), q.in
		}
		if err := e.collectFunds(ctx, party, cb, owedRisky, owedStable, data); err != nil {
			if rerr := e.ledger.Transfer(ctx, assetOut, party, HolderKey, q.out); rerr != nil {
				e.log.Panic("unable to roll back optimistic transfer",
					logging.PoolID(poolID),
					logging.Party(party),
					logging.Error(rerr),
				)
			}
			e.unlockPool(entry)
			return nil, err
		}
	}

	pool.ReserveRisky = q.newRisky
	pool.ReserveStable = q.newStable
	applyFeeGrowth(pool, dir, q.feeGrowth)

	res := &types.SwapResult{
		PoolID:        poolID,
		Direction:     dir,
		In:            q.in.Clone(),
		Out:           q.out.Clone(),
		Fee:           q.fee.Clone(),
		PostInvariant: q.postInvariant.Clone(),
	}
	e.commit(entry, pool)
	if pos != nil {
		e.storePosition(pos)
	}

	evts := []events.Event{
		events.NewSwap(ctx, party, res),
		events.NewPoolTick(ctx, observationFromPool(pool), now),
	}
	if pos != nil {
		evts = append(evts, events.NewMarginUpdated(ctx, pos))
	}
	e.broker.SendBatch(evts)
	metrics.SwapCounterInc(poolID)
	gaugePool(pool)

	if e.log.IsDebug() {
		e.log.Debug("swap settled",
			logging.PoolID(poolID),
			logging.Party(party),
			logging.String("direction", dir.String()),
			logging.BigUint("in", res.In),
			logging.BigUint("out", res.Out),
			logging.BigUint("fee", res.Fee),
			logging.BigInt("post-invariant", res.PostInvariant),
		)
	}
	return res, nil
}

func checkLimit(q *quote, limit *num.Uint, exact types.Exactness) error {
	if limit == nil {
		return nil
	}
	if exact == types.ExactInput && q.out.LT(limit) {
		return types.ErrSwapLimitExceeded
	}
	if exact == types.ExactOutput && q.in.GT(limit) {
		return types.ErrSwapLimitExceeded
	}
	return nil
}

func debitMargin(pos *types.Position, dir types.SwapDirection, in *num.Uint) error {
	balance := pos.BalanceRisky
	if dir == types.SwapStableIn {
		balance = pos.BalanceStable
	}
	if balance.LT(in) {
		return types.ErrInsufficientMargin
	}
	balance.Sub(balance, in)
	return nil
}

func creditMargin(pos *types.Position, dir types.SwapDirection, out *num.Uint) {
	if dir == types.SwapRiskyIn {
		pos.BalanceStable.Add(pos.BalanceStable, out)
		return
	}
	pos.BalanceRisky.Add(pos.BalanceRisky, out)
}

func applyFeeGrowth(pool *types.Pool, dir types.SwapDirection, growth *num.Uint) {
	if growth.IsZero() {
		return
	}
	if dir == types.SwapRiskyIn {
		pool.FeeGrowthStable.Add(pool.FeeGrowthStable, growth)
		return
	}
	pool.FeeGrowthRisky.Add(pool.FeeGrowthRisky, growth)
}

// swapQuote solves one swap against the pool's committed reserves. All
// curve work goes through StableGivenRisky so the invariant gate at
// the end compares like with like: for every direction the gross
// output is a difference of that one function at two reserve points,
// which means the retained fee lands in the invariant exactly and
// accumulated surplus is never paid out.
func swapQuote(p *types.Pool, dir types.SwapDirection, amount *num.Uint, exact types.Exactness, feeBps uint32, tolerance uint64, now time.Time) (*quote, error) {
	if amount == nil || amount.IsZero() {
		return nil, types.ErrInvalidAmount
	}
	if feeBps >= bpsDenom {
		return nil, ErrInvalidFee
	}
	fR, err := replication.StableGivenRisky(p.ReserveRisky, p.Liquidity, p.Calibration, now)
	if err != nil {
		// committed reserves outside the curve domain, state is corrupt
		return nil, err
	}
	preInv := num.IntFromUint(p.ReserveStable, true).SubUint(fR)

	var lg *legs
	switch dir {
	case types.SwapRiskyIn:
		lg, err = quoteRiskyIn(p, fR, amount, exact, feeBps, now)
	default:
		lg, err = quoteStableIn(p, fR, amount, exact, feeBps, now)
	}
	if err != nil {
		return nil, err
	}

	postInv := num.IntFromUint(lg.newStable, true).SubUint(lg.fNew)
	shortfall := preInv.Clone().Sub(postInv)
	if shortfall.IsPositive() && shortfall.U.GT(num.NewUint(tolerance)) {
		return nil, types.ErrInvariantViolation
	}

	growth := num.UintZero()
	if !lg.fee.IsZero() {
		growth, err = fixedpoint.MulDivDown(lg.fee, fixedpoint.Wad, p.Liquidity)
		if err != nil {
			return nil, err
		}
	}
	return &quote{
		in:            lg.in,
		out:           lg.out,
		fee:           lg.fee,
		newRisky:      lg.newRisky,
		newStable:     lg.newStable,
		feeGrowth:     growth,
		postInvariant: postInv,
	}, nil
}

// quoteRiskyIn prices risky entering the pool for stable out. The
// gross output is f(R) - f(R+in): exact-input evaluates it directly,
// exact-output finds the smallest input reaching the grossed-up target
// by bisection on the curve.
func quoteRiskyIn(p *types.Pool, fR, amount *num.Uint, exact types.Exactness, feeBps uint32, now time.Time) (*legs, error) {
	reserve, liquidity, cal := p.ReserveRisky, p.Liquidity, p.Calibration
	// the risky reserve has to stay strictly below liquidity
	maxIn := num.UintZero().Sub(liquidity, reserve)
	if maxIn.IsZero() {
		return nil, types.ErrInvalidAmount
	}
	maxIn.Sub(maxIn, num.UintOne())

	if exact == types.ExactInput {
		in := amount.Clone()
		if maxIn.IsZero() || in.GT(maxIn) {
			return nil, types.ErrInvalidAmount
		}
		newRisky := num.UintZero().Add(reserve, in)
		fNew, err := replication.StableGivenRisky(newRisky, liquidity, cal, now)
		if err != nil {
			return nil, err
		}
		if fNew.GT(fR) {
			return nil, types.ErrMathDomain
		}
		gross := num.UintZero().Sub(fR, fNew)
		fee, err := feePortion(gross, feeBps)
		if err != nil {
			return nil, err
		}
		out := num.UintZero().Sub(gross, fee)
		if out.IsZero() {
			return nil, types.ErrInvalidAmount
		}
		newStable, under := num.UintZero().SubOverflow(p.ReserveStable, out)
		if under {
			return nil, types.ErrInvariantViolation
		}
		return &legs{in: in, out: out, fee: fee, newRisky: newRisky, newStable: newStable, fNew: fNew}, nil
	}

	// exact output of stable
	out := amount.Clone()
	gross, err := grossFromNet(out, feeBps)
	if err != nil {
		return nil, err
	}
	if gross.GTE(fR) {
		return nil, types.ErrInvalidAmount
	}
	fee := num.UintZero().Sub(gross, out)
	target := num.UintZero().Sub(fR, gross)

	// seed the search from the inverse curve where it is defined
	var seed *num.Uint
	if est, err := replication.RiskyGivenStable(target, liquidity, cal, now); err == nil && est.GT(reserve) {
		seed = num.UintZero().Sub(est, reserve)
	}
	in, fNew, err := riskyInForTarget(reserve, liquidity, cal, now, target, maxIn, seed)
	if err != nil {
		return nil, err
	}
	newRisky := num.UintZero().Add(reserve, in)
	newStable, under := num.UintZero().SubOverflow(p.ReserveStable, out)
	if under {
		return nil, types.ErrInvariantViolation
	}
	return &legs{in: in, out: out, fee: fee, newRisky: newRisky, newStable: newStable, fNew: fNew}, nil
}

// quoteStableIn prices stable entering the pool for risky out. The
// curve value the pool holds on to rises by the paid-in stable, the
// risky released is whatever keeps f(R-out) within that budget.
func quoteStableIn(p *types.Pool, fR, amount *num.Uint, exact types.Exactness, feeBps uint32, now time.Time) (*legs, error) {
	reserve, liquidity, cal := p.ReserveRisky, p.Liquidity, p.Calibration

	if exact == types.ExactInput {
		in := amount.Clone()
		budget := num.UintZero().Add(fR, in)

		var seed *num.Uint
		if est, err := replication.RiskyGivenStable(budget, liquidity, cal, now); err == nil && est.LT(reserve) {
			seed = num.UintZero().Sub(reserve, est)
		}
		gross, err := riskyOutForBudget(reserve, liquidity, cal, now, budget, seed)
		if err != nil {
			return nil, err
		}
		if gross.IsZero() {
			return nil, types.ErrInvalidAmount
		}
		fee, err := feePortion(gross, feeBps)
		if err != nil {
			return nil, err
		}
		out := num.UintZero().Sub(gross, fee)
		if out.IsZero() {
			return nil, types.ErrInvalidAmount
		}
		newRisky := num.UintZero().Sub(reserve, out)
		fNew, err := replication.StableGivenRisky(newRisky, liquidity, cal, now)
		if err != nil {
			return nil, err
		}
		newStable := num.UintZero().Add(p.ReserveStable, in)
		return &legs{in: in, out: out, fee: fee, newRisky: newRisky, newStable: newStable, fNew: fNew}, nil
	}

	// exact output of risky
	out := amount.Clone()
	gross, err := grossFromNet(out, feeBps)
	if err != nil {
		return nil, err
	}
	if gross.GTE(reserve) {
		return nil, types.ErrInvalidAmount
	}
	fee := num.UintZero().Sub(gross, out)

	fGross, err := replication.StableGivenRisky(num.UintZero().Sub(reserve, gross), liquidity, cal, now)
	if err != nil {
		return nil, err
	}
	if fGross.LT(fR) {
		return nil, types.ErrMathDomain
	}
	// input is the curve rise, rounded up one unit
	in := num.UintZero().Sub(fGross, fR)
	in.Add(in, num.UintOne())

	newRisky := num.UintZero().Sub(reserve, out)
	fNew, err := replication.StableGivenRisky(newRisky, liquidity, cal, now)
	if err != nil {
		return nil, err
	}
	newStable := num.UintZero().Add(p.ReserveStable, in)
	return &legs{in: in, out: out, fee: fee, newRisky: newRisky, newStable: newStable, fNew: fNew}, nil
}

func feePortion(gross *num.Uint, feeBps uint32) (*num.Uint, error) {
	if feeBps == 0 {
		return num.UintZero(), nil
	}
	return fixedpoint.MulDivUp(gross, num.NewUint(uint64(feeBps)), num.NewUint(bpsDenom))
}

// grossFromNet grosses a net output back up so the fee can be carved
// out of it: gross = net * 10^4 / (10^4 - feeBps), rounded up.
func grossFromNet(net *num.Uint, feeBps uint32) (*num.Uint, error) {
	if feeBps == 0 {
		return net.Clone(), nil
	}
	return fixedpoint.MulDivUp(net, num.NewUint(bpsDenom), num.NewUint(uint64(bpsDenom-feeBps)))
}

// riskyInForTarget finds the smallest input in [1, maxIn] pushing the
// curve value down to the target, f(R+in) <= target, together with
// the curve value it lands on. Bisection, seeded with the inverse
// curve estimate when available.
func riskyInForTarget(reserve, liquidity *num.Uint, cal *types.Calibration, now time.Time, target, maxIn, seed *num.Uint) (*num.Uint, *num.Uint, error) {
	if maxIn.IsZero() {
		return nil, nil, types.ErrInvalidAmount
	}
	fHi, err := replication.StableGivenRisky(num.UintZero().Add(reserve, maxIn), liquidity, cal, now)
	if err != nil {
		return nil, nil, err
	}
	if fHi.GT(target) {
		// even the largest admissible input cannot reach the target
		return nil, nil, types.ErrInvalidAmount
	}

	lo := num.UintZero()
	hi := maxIn.Clone()
	fAtHi := fHi
	two := num.NewUint(2)
	first := true
	for num.UintZero().Sub(hi, lo).GTUint64(1) {
		mid := num.UintZero().Add(lo, hi)
		mid.Div(mid, two)
		if first {
			first = false
			if seed != nil && seed.GT(lo) && seed.LT(hi) {
				mid = seed.Clone()
			}
		}
		fMid, err := replication.StableGivenRisky(num.UintZero().Add(reserve, mid), liquidity, cal, now)
		if err != nil {
			return nil, nil, err
		}
		if fMid.LTE(target) {
			hi = mid
			fAtHi = fMid
		} else {
			lo = mid
		}
	}
	return hi, fAtHi, nil
}

// riskyOutForBudget finds the largest payout in [0, R-1] the stable
// budget covers, f(R-out) <= budget. Bisection as above.
func riskyOutForBudget(reserve, liquidity *num.Uint, cal *types.Calibration, now time.Time, budget, seed *num.Uint) (*num.Uint, error) {
	lo := num.UintZero()
	hi := reserve.Clone()
	two := num.NewUint(2)
	first := true
	for num.UintZero().Sub(hi, lo).GTUint64(1) {
		mid := num.UintZero().Add(lo, hi)
		mid.Div(mid, two)
		if first {
			first = false
			if seed != nil && seed.GT(lo) && seed.LT(hi) {
				mid = seed.Clone()
			}
		}
		fMid, err := replication.StableGivenRisky(num.UintZero().Sub(reserve, mid), liquidity, cal, now)
		if err != nil {
			return nil, err
		}
		if fMid.LTE(budget) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}
