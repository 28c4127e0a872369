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

type Swaps struct {
	*ConnectionSource
}

func NewSwaps(connectionSource *ConnectionSource) *Swaps {
	return &Swaps{
		ConnectionSource: connectionSource,
	}
}

func (ss *Swaps) Add(ctx context.Context, s entities.Swap) error {
	defer metrics.StartSQLQuery("Swaps", "Add")()
	_, err := ss.Connection.Exec(ctx, `
INSERT INTO swaps(
    pool_id, seq, party, direction,
    amount_in, amount_out, fee, post_invariant, tau_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (pool_id, seq) DO NOTHING;`,
		s.PoolID, s.Seq, s.Party, s.Direction,
		s.AmountIn, s.AmountOut, s.Fee, s.PostInvariant, s.TauTime)
	if err != nil {
		return fmt.Errorf("adding swap: %w", err)
	}
	return nil
}

func (ss *Swaps) ListByPool(ctx context.Context, id entities.PoolID) ([]entities.Swap, error) {
	defer metrics.StartSQLQuery("Swaps", "ListByPool")()
	swaps := []entities.Swap{}
	err := pgxscan.Select(ctx, ss.Connection, &swaps,
		`SELECT * FROM swaps WHERE pool_id=$1 ORDER BY seq;`, id)
	return swaps, err
}

func (ss *Swaps) ListByParty(ctx context.Context, party string) ([]entities.Swap, error) {
	defer metrics.StartSQLQuery("Swaps", "ListByParty")()
	swaps := []entities.Swap{}
	err := pgxscan.Select(ctx, ss.Connection, &swaps,
		`SELECT * FROM swaps WHERE party=$1 ORDER BY pool_id, seq;`, party)
	return swaps, err
}
