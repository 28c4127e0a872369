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

type MarginAccounts struct {
	*ConnectionSource
}

func NewMarginAccounts(connectionSource *ConnectionSource) *MarginAccounts {
	return &MarginAccounts{
		ConnectionSource: connectionSource,
	}
}

func (ms *MarginAccounts) Upsert(ctx context.Context, m entities.MarginAccount) error {
	defer metrics.StartSQLQuery("MarginAccounts", "Upsert")()
	_, err := ms.Connection.Exec(ctx, `
INSERT INTO margin_accounts(
    party, pool_id, balance_risky, balance_stable, liquidity,
    last_fee_growth_risky, last_fee_growth_stable, tau_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (party, pool_id) DO UPDATE SET
    balance_risky=EXCLUDED.balance_risky,
    balance_stable=EXCLUDED.balance_stable,
    liquidity=EXCLUDED.liquidity,
    last_fee_growth_risky=EXCLUDED.last_fee_growth_risky,
    last_fee_growth_stable=EXCLUDED.last_fee_growth_stable,
    tau_time=EXCLUDED.tau_time;`,
		m.Party, m.PoolID, m.BalanceRisky, m.BalanceStable, m.Liquidity,
		m.LastFeeGrowthRisky, m.LastFeeGrowthStable, m.TauTime)
	if err != nil {
		return fmt.Errorf("upserting margin account: %w", err)
	}
	return nil
}

func (ms *MarginAccounts) Get(ctx context.Context, party string, id entities.PoolID) (entities.MarginAccount, error) {
	defer metrics.StartSQLQuery("MarginAccounts", "Get")()
	var account entities.MarginAccount
	err := pgxscan.Get(ctx, ms.Connection, &account,
		`SELECT * FROM margin_accounts WHERE party=$1 AND pool_id=$2;`, party, id)
	return account, wrapE(err)
}

func (ms *MarginAccounts) ListByPool(ctx context.Context, id entities.PoolID) ([]entities.MarginAccount, error) {
	defer metrics.StartSQLQuery("MarginAccounts", "ListByPool")()
	accounts := []entities.MarginAccount{}
	err := pgxscan.Select(ctx, ms.Connection, &accounts,
		`SELECT * FROM margin_accounts WHERE pool_id=$1 ORDER BY party;`, id)
	return accounts, err
}

// Prune drops emptied accounts, mirroring the engine which deletes
// positions once every balance hits zero.
func (ms *MarginAccounts) Prune(ctx context.Context) error {
	defer metrics.StartSQLQuery("MarginAccounts", "Prune")()
	_, err := ms.Connection.Exec(ctx, `
DELETE FROM margin_accounts
 WHERE balance_risky=0 AND balance_stable=0 AND liquidity=0;`)
	if err != nil {
		return fmt.Errorf("pruning margin accounts: %w", err)
	}
	return nil
}
