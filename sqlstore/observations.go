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
	"time"

	"code.tauprotocol.io/tau/core/pools"
	"code.tauprotocol.io/tau/entities"
	"code.tauprotocol.io/tau/metrics"

	"github.com/georgysavva/scany/pgxscan"
)

type Observations struct {
	*ConnectionSource
}

func NewObservations(connectionSource *ConnectionSource) *Observations {
	return &Observations{
		ConnectionSource: connectionSource,
	}
}

func (os *Observations) Add(ctx context.Context, o entities.Observation) error {
	defer metrics.StartSQLQuery("Observations", "Add")()
	_, err := os.Connection.Exec(ctx, `
INSERT INTO observations(
    pool_id, timestamp,
    cumulative_risky, cumulative_stable, cumulative_liquidity,
    tau_time)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (pool_id, timestamp) DO NOTHING;`,
		o.PoolID, o.Timestamp,
		o.CumulativeRisky, o.CumulativeStable, o.CumulativeLiquidity,
		o.TauTime)
	if err != nil {
		return fmt.Errorf("adding observation: %w", err)
	}
	return nil
}

func (os *Observations) GetByPool(ctx context.Context, id entities.PoolID, from, to time.Time) ([]entities.Observation, error) {
	defer metrics.StartSQLQuery("Observations", "GetByPool")()
	observations := []entities.Observation{}
	err := pgxscan.Select(ctx, os.Connection, &observations, `
SELECT * FROM observations
 WHERE pool_id=$1 AND timestamp BETWEEN $2 AND $3
 ORDER BY timestamp;`,
		id, from, to)
	return observations, err
}

// GetTWAP loads the observations bracketing the window and lets the
// engine's wrapping arithmetic produce the average, NUMERIC differences
// in SQL would get a mod 2^256 wrap wrong.
func (os *Observations) GetTWAP(ctx context.Context, id entities.PoolID, from, to time.Time) (*pools.TWAPResult, error) {
	defer metrics.StartSQLQuery("Observations", "GetTWAP")()
	var first, last entities.Observation
	err := pgxscan.Get(ctx, os.Connection, &first, `
SELECT * FROM observations
 WHERE pool_id=$1 AND timestamp >= $2
 ORDER BY timestamp ASC LIMIT 1;`, id, from)
	if err != nil {
		return nil, wrapE(err)
	}
	err = pgxscan.Get(ctx, os.Connection, &last, `
SELECT * FROM observations
 WHERE pool_id=$1 AND timestamp <= $2
 ORDER BY timestamp DESC LIMIT 1;`, id, to)
	if err != nil {
		return nil, wrapE(err)
	}

	earlier, err := first.ToDomain()
	if err != nil {
		return nil, err
	}
	later, err := last.ToDomain()
	if err != nil {
		return nil, err
	}
	return pools.TWAP(earlier, later)
}
