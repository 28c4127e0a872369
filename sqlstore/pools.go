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

package sqlstore

import (
	"context"
	"fmt"

	"code.tauprotocol.io/tau/entities"
	"code.tauprotocol.io/tau/metrics"

	"github.com/georgysavva/scany/pgxscan"
)

type Pools struct {
	*ConnectionSource
}

func NewPools(connectionSource *ConnectionSource) *Pools {
	return &Pools{
		ConnectionSource: connectionSource,
	}
}

func (ps *Pools) Upsert(ctx context.Context, pool entities.Pool) error {
	defer metrics.StartSQLQuery("Pools", "Upsert")()
	_, err := ps.Connection.Exec(ctx, `
INSERT INTO pools(
    id, strike, sigma, maturity, fee_bps,
    reserve_risky, reserve_stable, liquidity,
    fee_growth_risky, fee_growth_stable,
    cumulative_risky, cumulative_stable, cumulative_liquidity,
    last_timestamp, created_at, tau_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
    reserve_risky=EXCLUDED.reserve_risky,
    reserve_stable=EXCLUDED.reserve_stable,
    liquidity=EXCLUDED.liquidity,
    fee_growth_risky=EXCLUDED.fee_growth_risky,
    fee_growth_stable=EXCLUDED.fee_growth_stable,
    cumulative_risky=EXCLUDED.cumulative_risky,
    cumulative_stable=EXCLUDED.cumulative_stable,
    cumulative_liquidity=EXCLUDED.cumulative_liquidity,
    last_timestamp=EXCLUDED.last_timestamp,
    tau_time=EXCLUDED.tau_time;`,
		pool.ID, pool.Strike, pool.Sigma, pool.Maturity, pool.FeeBps,
		pool.ReserveRisky, pool.ReserveStable, pool.Liquidity,
		pool.FeeGrowthRisky, pool.FeeGrowthStable,
		pool.CumulativeRisky, pool.CumulativeStable, pool.CumulativeLiquidity,
		pool.LastTimestamp, pool.CreatedAt, pool.TauTime)
	if err != nil {
		return fmt.Errorf("upserting pool: %w", err)
	}
	return nil
}

func (ps *Pools) GetByID(ctx context.Context, id entities.PoolID) (entities.Pool, error) {
	defer metrics.StartSQLQuery("Pools", "GetByID")()
	var pool entities.Pool
	err := pgxscan.Get(ctx, ps.Connection, &pool,
		`SELECT * FROM pools WHERE id=$1;`, id)
	return pool, wrapE(err)
}

func (ps *Pools) GetAll(ctx context.Context) ([]entities.Pool, error) {
	defer metrics.StartSQLQuery("Pools", "GetAll")()
	pools := []entities.Pool{}
	err := pgxscan.Select(ctx, ps.Connection, &pools,
		`SELECT * FROM pools ORDER BY created_at, id;`)
	return pools, err
}
