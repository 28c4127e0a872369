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

package types

import (
	"code.tauprotocol.io/tau/libs/num"
)

// SwapDirection selects which side enters the pool.
type SwapDirection int

const (
	// SwapRiskyIn trades risky into the pool for stable out.
	SwapRiskyIn SwapDirection = iota
	// SwapStableIn trades stable into the pool for risky out.
	SwapStableIn
)

func (d SwapDirection) String() string {
	if d == SwapRiskyIn {
		return "risky-in"
	}
	return "stable-in"
}

// Exactness says whether the specified swap amount fixes the input or
// the output side.
type Exactness int

const (
	ExactInput Exactness = iota
	ExactOutput
)

func (e Exactness) String() string {
	if e == ExactInput {
		return "exact-input"
	}
	return "exact-output"
}

// Pool is the full state of one covered call pool. All mutation happens
// on engine-held clones which are swapped in atomically on commit.
type Pool struct {
	// ID is the hex content hash of the calibration.
	ID          string
	Calibration *Calibration

	// Reserves in token units at WAD scale.
	ReserveRisky  *num.Uint
	ReserveStable *num.Uint
	// Liquidity is the total of all shares, WAD scale.
	Liquidity *num.Uint

	// FeeBps is the swap fee in basis points, retained in reserves.
	FeeBps uint32
	// Fee growth per liquidity share, WAD scale. Positions snapshot
	// these to work out what they are owed.
	FeeGrowthRisky  *num.Uint
	FeeGrowthStable *num.Uint

	// Oracle accumulators, reserve times seconds, wrapping mod 2^256.
	CumulativeRisky     *num.Uint
	CumulativeStable    *num.Uint
	CumulativeLiquidity *num.Uint
	// LastTimestamp is the unix time the accumulators were last rolled
	// forward.
	LastTimestamp int64

	CreatedAt int64
}

func (p *Pool) Clone() *Pool {
	return &Pool{
		ID:                  p.ID,
		Calibration:         p.Calibration.Clone(),
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

// Observation is a point-in-time snapshot of a pool's oracle
// accumulators. Two observations bracket a TWAP window.
type Observation struct {
	PoolID              string
	Timestamp           int64
	CumulativeRisky     *num.Uint
	CumulativeStable    *num.Uint
	CumulativeLiquidity *num.Uint
}

func (o *Observation) Clone() *Observation {
	return &Observation{
		PoolID:              o.PoolID,
		Timestamp:           o.Timestamp,
		CumulativeRisky:     o.CumulativeRisky.Clone(),
		CumulativeStable:    o.CumulativeStable.Clone(),
		CumulativeLiquidity: o.CumulativeLiquidity.Clone(),
	}
}

// SwapResult reports the settled legs of a swap. In and Out are the
// amounts crossing the pool boundary, Fee is the part of the gross
// output retained by the pool, PostInvariant the invariant after the
// swap was applied.
type SwapResult struct {
	PoolID        string
	Direction     SwapDirection
	In            *num.Uint
	Out           *num.Uint
	Fee           *num.Uint
	PostInvariant *num.Int
}

func (s *SwapResult) Clone() *SwapResult {
	cpy := &SwapResult{
		PoolID:    s.PoolID,
		Direction: s.Direction,
		In:        s.In.Clone(),
		Out:       s.Out.Clone(),
		Fee:       s.Fee.Clone(),
	}
	if s.PostInvariant != nil {
		cpy.PostInvariant = s.PostInvariant.Clone()
	}
	return cpy
}
