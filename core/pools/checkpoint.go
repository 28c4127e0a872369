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
	"encoding/json"
	"sort"

	"code.tauprotocol.io/tau/core/events"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/crypto"
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/logging"
	"code.tauprotocol.io/tau/metrics"
	"code.tauprotocol.io/tau/version"

	"github.com/blang/semver/v4"
	"github.com/google/btree"
)

type poolState struct {
	ID                  string    `json:"id"`
	Strike              *num.Uint `json:"strike"`
	Sigma               *num.Uint `json:"sigma"`
	Maturity            int64     `json:"maturity"`
	ReserveRisky        *num.Uint `json:"reserve_risky"`
	ReserveStable       *num.Uint `json:"reserve_stable"`
	Liquidity           *num.Uint `json:"liquidity"`
	FeeBps              uint32    `json:"fee_bps"`
	FeeGrowthRisky      *num.Uint `json:"fee_growth_risky"`
	FeeGrowthStable     *num.Uint `json:"fee_growth_stable"`
	CumulativeRisky     *num.Uint `json:"cumulative_risky"`
	CumulativeStable    *num.Uint `json:"cumulative_stable"`
	CumulativeLiquidity *num.Uint `json:"cumulative_liquidity"`
	LastTimestamp       int64     `json:"last_timestamp"`
	CreatedAt           int64     `json:"created_at"`
}

type positionState struct {
	PoolID              string    `json:"pool_id"`
	Party               string    `json:"party"`
	BalanceRisky        *num.Uint `json:"balance_risky"`
	BalanceStable       *num.Uint `json:"balance_stable"`
	Liquidity           *num.Uint `json:"liquidity"`
	LastFeeGrowthRisky  *num.Uint `json:"last_fee_growth_risky"`
	LastFeeGrowthStable *num.Uint `json:"last_fee_growth_stable"`
}

// checkpointState is the wire form of the engine. Pools ascend by ID
// and positions by (pool, party) so the same state always marshals to
// the same bytes, the hash seals those bytes.
type checkpointState struct {
	Version   string           `json:"version"`
	Hash      string           `json:"hash"`
	Pools     []*poolState     `json:"pools"`
	Positions []*positionState `json:"positions"`
}

// Checkpoint serializes every pool and position into a deterministic,
// hash-sealed snapshot and publishes the hash.
func (e *Engine) Checkpoint(ctx context.Context) ([]byte, error) {
	timer := metrics.NewTimeCounter("-", "pools", "Checkpoint")
	defer timer.EngineTimeCounterAdd()

	e.mu.Lock()
	cp := &checkpointState{
		Version:   version.Get(),
		Pools:     make([]*poolState, 0, e.pools.Len()),
		Positions: []*positionState{},
	}
	e.pools.Ascend(func(entry *poolEntry) bool {
		cp.Pools = append(cp.Pools, poolStateFrom(entry.pool))
		return true
	})
	poolIDs := make([]string, 0, len(e.positions))
	for id := range e.positions {
		poolIDs = append(poolIDs, id)
	}
	sort.Strings(poolIDs)
	for _, id := range poolIDs {
		parties := make([]string, 0, len(e.positions[id]))
		for party := range e.positions[id] {
			parties = append(parties, party)
		}
		sort.Strings(parties)
		for _, party := range parties {
			cp.Positions = append(cp.Positions, positionStateFrom(e.positions[id][party]))
		}
	}
	e.mu.Unlock()

	unsealed, err := json.Marshal(cp)
	if err != nil {
		return nil, err
	}
	cp.Hash = crypto.HashToHex(unsealed)
	sealed, err := json.Marshal(cp)
	if err != nil {
		return nil, err
	}

	e.broker.Send(events.NewCheckpoint(ctx, cp.Hash, e.timeService.GetTimeNow()))
	e.log.Info("checkpoint taken",
		logging.String("hash", cp.Hash),
		logging.Int("pools", len(cp.Pools)),
		logging.Int("positions", len(cp.Positions)),
	)
	return sealed, nil
}

// Load replaces the engine state with the checkpoint's. The hash seal
// and the release major version both have to check out, and no pool
// may be mid-operation.
func (e *Engine) Load(ctx context.Context, data []byte) error {
	timer := metrics.NewTimeCounter("-", "pools", "Load")
	defer timer.EngineTimeCounterAdd()

	cp := &checkpointState{}
	if err := json.Unmarshal(data, cp); err != nil {
		e.log.Error("checkpoint payload unreadable", logging.Error(err))
		return types.ErrInvalidCheckpoint
	}
	if err := e.verifyCheckpoint(cp); err != nil {
		return err
	}

	pools := btree.NewG(2, lessPoolEntry)
	positions := map[string]map[string]*types.Position{}
	for _, ps := range cp.Pools {
		pool, err := ps.intoPool()
		if err != nil {
			e.log.Error("checkpoint pool state invalid", logging.PoolID(ps.ID), logging.Error(err))
			return types.ErrInvalidCheckpoint
		}
		pools.ReplaceOrInsert(&poolEntry{pool: pool})
	}
	for _, ps := range cp.Positions {
		pos, err := ps.intoPosition()
		if err != nil {
			e.log.Error("checkpoint position state invalid", logging.PoolID(ps.PoolID), logging.Party(ps.Party), logging.Error(err))
			return types.ErrInvalidCheckpoint
		}
		if _, ok := pools.Get(probeEntry(pos.PoolID)); !ok {
			e.log.Error("checkpoint position for unknown pool", logging.PoolID(pos.PoolID), logging.Party(pos.Party))
			return types.ErrInvalidCheckpoint
		}
		byParty, ok := positions[pos.PoolID]
		if !ok {
			byParty = map[string]*types.Position{}
			positions[pos.PoolID] = byParty
		}
		byParty[pos.Party] = pos
	}

	e.mu.Lock()
	inFlight := false
	e.pools.Ascend(func(entry *poolEntry) bool {
		inFlight = entry.locked
		return !inFlight
	})
	if inFlight {
		e.mu.Unlock()
		return types.ErrPoolLocked
	}
	e.pools = pools
	e.positions = positions
	e.mu.Unlock()
	e.quotes.purge()

	pools.Ascend(func(entry *poolEntry) bool {
		gaugePool(entry.pool)
		return true
	})
	e.log.Info("checkpoint restored",
		logging.String("hash", cp.Hash),
		logging.Int("pools", len(cp.Pools)),
		logging.Int("positions", len(cp.Positions)),
	)
	return nil
}

func (e *Engine) verifyCheckpoint(cp *checkpointState) error {
	current, err := version.Semver()
	if err != nil {
		return err
	}
	from, err := semver.ParseTolerant(cp.Version)
	if err != nil {
		e.log.Error("checkpoint version unreadable",
			logging.String("version", cp.Version),
			logging.Error(err),
		)
		return types.ErrInvalidCheckpoint
	}
	if from.Major != current.Major {
		e.log.Error("checkpoint from incompatible release",
			logging.String("checkpoint-version", cp.Version),
			logging.String("current-version", version.Get()),
		)
		return types.ErrInvalidCheckpoint
	}

	seal := cp.Hash
	cp.Hash = ""
	unsealed, err := json.Marshal(cp)
	cp.Hash = seal
	if err != nil {
		return err
	}
	if crypto.HashToHex(unsealed) != seal {
		e.log.Error("checkpoint hash mismatch", logging.String("hash", seal))
		return types.ErrInvalidCheckpoint
	}
	return nil
}

func poolStateFrom(p *types.Pool) *poolState {
	return &poolState{
		ID:                  p.ID,
		Strike:              p.Calibration.Strike.Clone(),
		Sigma:               p.Calibration.Sigma.Clone(),
		Maturity:            p.Calibration.Maturity,
		ReserveRisky:        p.ReserveRisky.Clone(),
		ReserveStable:       p.ReserveStable.Clone(),
		Liquidity:           p.Liquidity.Clone(),
		FeeBps:              p.FeeBps,
		FeeGrowthRisky:      p.FeeGrowthRisky.Clone(),
		FeeGrowthStable:     p.FeeGrowthStable.Clone(),
		CumulativeRisky:     p.CumulativeRisky.Clone(),
		CumulativeStable:    p.CumulativeStable.Clone(),
		CumulativeLiquidity: p.CumulativeLiquidity.Clone(),
		LastTimestamp:       p.LastTimestamp,
		CreatedAt:           p.CreatedAt,
	}
}

func (ps *poolState) intoPool() (*types.Pool, error) {
	for _, u := range []*num.Uint{
		ps.Strike, ps.Sigma, ps.ReserveRisky, ps.ReserveStable, ps.Liquidity,
		ps.FeeGrowthRisky, ps.FeeGrowthStable,
		ps.CumulativeRisky, ps.CumulativeStable, ps.CumulativeLiquidity,
	} {
		if u == nil {
			return nil, types.ErrInvalidCheckpoint
		}
	}
	cal := &types.Calibration{
		Strike:   ps.Strike.Clone(),
		Sigma:    ps.Sigma.Clone(),
		Maturity: ps.Maturity,
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	// the pool ID is the calibration hash, anything else is corruption
	if cal.Hash() != ps.ID {
		return nil, types.ErrInvalidCheckpoint
	}
	return &types.Pool{
		ID:                  ps.ID,
		Calibration:         cal,
		ReserveRisky:        ps.ReserveRisky.Clone(),
		ReserveStable:       ps.ReserveStable.Clone(),
		Liquidity:           ps.Liquidity.Clone(),
		FeeBps:              ps.FeeBps,
		FeeGrowthRisky:      ps.FeeGrowthRisky.Clone(),
		FeeGrowthStable:     ps.FeeGrowthStable.Clone(),
		CumulativeRisky:     ps.CumulativeRisky.Clone(),
		CumulativeStable:    ps.CumulativeStable.Clone(),
		CumulativeLiquidity: ps.CumulativeLiquidity.Clone(),
		LastTimestamp:       ps.LastTimestamp,
		CreatedAt:           ps.CreatedAt,
	}, nil
}

func positionStateFrom(p *types.Position) *positionState {
	return &positionState{
		PoolID:              p.PoolID,
		Party:               p.Party,
		BalanceRisky:        p.BalanceRisky.Clone(),
		BalanceStable:       p.BalanceStable.Clone(),
		Liquidity:           p.Liquidity.Clone(),
		LastFeeGrowthRisky:  p.LastFeeGrowthRisky.Clone(),
		LastFeeGrowthStable: p.LastFeeGrowthStable.Clone(),
	}
}

func (ps *positionState) intoPosition() (*types.Position, error) {
	if ps.PoolID == "" || ps.Party == "" {
		return nil, types.ErrInvalidCheckpoint
	}
	for _, u := range []*num.Uint{
		ps.BalanceRisky, ps.BalanceStable, ps.Liquidity,
		ps.LastFeeGrowthRisky, ps.LastFeeGrowthStable,
	} {
		if u == nil {
			return nil, types.ErrInvalidCheckpoint
		}
	}
	return &types.Position{
		Party:               ps.Party,
		PoolID:              ps.PoolID,
		BalanceRisky:        ps.BalanceRisky.Clone(),
		BalanceStable:       ps.BalanceStable.Clone(),
		Liquidity:           ps.Liquidity.Clone(),
		LastFeeGrowthRisky:  ps.LastFeeGrowthRisky.Clone(),
		LastFeeGrowthStable: ps.LastFeeGrowthStable.Clone(),
	}, nil
}
