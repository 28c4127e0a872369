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
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/metrics"
)

// rollAccumulators advances the oracle accumulators by the reserves
// held over the elapsed time and stamps the pool. The accumulators
// wrap mod 2^256, consumers difference them so a wrap between two
// observations still reads correctly. Called on the working clone
// before any reserve mutation so the old reserves get weighted by the
// time they were actually held.
func rollAccumulators(p *types.Pool, now time.Time) {
	ts := now.Unix()
	if ts <= p.LastTimestamp {
		return
	}
	elapsed := num.NewUint(uint64(ts - p.LastTimestamp))
	p.CumulativeRisky.Add(p.CumulativeRisky, num.UintZero().Mul(p.ReserveRisky, elapsed))
	p.CumulativeStable.Add(p.CumulativeStable, num.UintZero().Mul(p.ReserveStable, elapsed))
	p.CumulativeLiquidity.Add(p.CumulativeLiquidity, num.UintZero().Mul(p.Liquidity, elapsed))
	p.LastTimestamp = ts
}

func observationFromPool(p *types.Pool) *types.Observation {
	return &types.Observation{
		PoolID:              p.ID,
		Timestamp:           p.LastTimestamp,
		CumulativeRisky:     p.CumulativeRisky.Clone(),
		CumulativeStable:    p.CumulativeStable.Clone(),
		CumulativeLiquidity: p.CumulativeLiquidity.Clone(),
	}
}

// OnTick rolls every pool's accumulators forward to the new block time
// and publishes an observation per pool. Pools locked mid-operation
// are skipped, the operation holding them rolls before it commits.
func (e *Engine) OnTick(ctx context.Context, t time.Time) {
	timer := metrics.NewTimeCounter("-", "pools", "OnTick")
	defer timer.EngineTimeCounterAdd()

	e.mu.Lock()
	ticks := make([]events.Event, 0, e.pools.Len())
	e.pools.Ascend(func(entry *poolEntry) bool {
		if entry.locked {
			return true
		}
		pool := entry.pool.Clone()
		rollAccumulators(pool, t)
		entry.pool = pool
		ticks = append(ticks, events.NewPoolTick(ctx, observationFromPool(pool), t))
		return true
	})
	e.mu.Unlock()

	if len(ticks) > 0 {
		e.broker.SendBatch(ticks)
	}
}

// Observe returns the pool's accumulators rolled forward to the
// current time, without committing anything. Two observations bracket
// a TWAP window.
func (e *Engine) Observe(poolID string) (*types.Observation, error) {
	e.mu.Lock()
	entry, ok := e.pools.Get(probeEntry(poolID))
	var committed *types.Pool
	if ok {
		committed = entry.pool
	}
	e.mu.Unlock()
	if !ok {
		return nil, types.ErrPoolNotFound
	}
	pool := committed.Clone()
	rollAccumulators(pool, e.timeService.GetTimeNow())
	return observationFromPool(pool), nil
}

// TWAPResult carries the time-weighted average reserves over an
// observation window.
type TWAPResult struct {
	PoolID           string
	Start, End       int64
	AverageRisky     *num.Uint
	AverageStable    *num.Uint
	AverageLiquidity *num.Uint
}

// TWAP computes the time-weighted average reserves between two
// observations of the same pool. Accumulator differences wrap mod
// 2^256, a single wrap inside the window still divides out correctly.
func TWAP(earlier, later *types.Observation) (*TWAPResult, error) {
	if earlier == nil || later == nil ||
		earlier.PoolID != later.PoolID ||
		later.Timestamp <= earlier.Timestamp {
		return nil, types.ErrInvalidObservationWindow
	}
	window := num.NewUint(uint64(later.Timestamp - earlier.Timestamp))
	avg := func(from, to *num.Uint) *num.Uint {
		d := num.UintZero().Sub(to, from)
		return d.Div(d, window)
	}
	return &TWAPResult{
		PoolID:           earlier.PoolID,
		Start:            earlier.Timestamp,
		End:              later.Timestamp,
		AverageRisky:     avg(earlier.CumulativeRisky, later.CumulativeRisky),
		AverageStable:    avg(earlier.CumulativeStable, later.CumulativeStable),
		AverageLiquidity: avg(earlier.CumulativeLiquidity, later.CumulativeLiquidity),
	}, nil
}
