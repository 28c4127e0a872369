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

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"code.tauprotocol.io/tau/core/pools"
	"code.tauprotocol.io/tau/libs/num"
)

// memLedger is the in-memory asset ledger backing the offline
// subcommands, just balances in a map.
type memLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]*num.Uint
}

func newMemLedger() *memLedger {
	return &memLedger{
		balances: map[string]map[string]*num.Uint{},
	}
}

func (l *memLedger) holding(asset, holder string) *num.Uint {
	accounts, ok := l.balances[asset]
	if !ok {
		accounts = map[string]*num.Uint{}
		l.balances[asset] = accounts
	}
	b, ok := accounts[holder]
	if !ok {
		b = num.UintZero()
		accounts[holder] = b
	}
	return b
}

// Fund credits a holder out of thin air.
func (l *memLedger) Fund(asset, holder string, amount *num.Uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.holding(asset, holder)
	b.Add(b, amount)
}

func (l *memLedger) Balance(_ context.Context, asset, holder string) (*num.Uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holding(asset, holder).Clone(), nil
}

func (l *memLedger) Transfer(_ context.Context, asset, from, to string, amount *num.Uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.holding(asset, from)
	if src.LT(amount) {
		return fmt.Errorf("insufficient %s balance for %q", asset, from)
	}
	src.Sub(src, amount)
	dst := l.holding(asset, to)
	dst.Add(dst, amount)
	return nil
}

// autoSettle is a settlement callback that pays whatever the engine
// asks for from one party's ledger balances.
type autoSettle struct {
	ledger      *memLedger
	party       string
	assetRisky  string
	assetStable string
}

func (a *autoSettle) Settle(ctx context.Context, owedRisky, owedStable *num.Uint, _ []byte) error {
	if owedRisky != nil && !owedRisky.IsZero() {
		if err := a.ledger.Transfer(ctx, a.assetRisky, a.party, pools.HolderKey, owedRisky); err != nil {
			return err
		}
	}
	if owedStable != nil && !owedStable.IsZero() {
		if err := a.ledger.Transfer(ctx, a.assetStable, a.party, pools.HolderKey, owedStable); err != nil {
			return err
		}
	}
	return nil
}

// simClock is a hand-cranked time service.
type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) GetTimeNow() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// wadUnits scales whole token units up to WAD.
func wadUnits(units uint64) *num.Uint {
	return num.UintZero().Mul(num.NewUint(units), num.NewUint(1_000_000_000_000_000_000))
}

// wadFromString parses a decimal token amount ("0.5") into WAD units.
func wadFromString(s string) (*num.Uint, error) {
	d, err := num.DecimalFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	u, fail := num.UintFromDecimal(d.Mul(num.DecimalFromInt64(1_000_000_000_000_000_000)))
	if fail {
		return nil, fmt.Errorf("amount %q out of range", s)
	}
	return u, nil
}
