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
	"encoding/binary"

	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/libs/crypto"
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/logging"
	"code.tauprotocol.io/tau/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Quote prices a swap against the last committed pool state without
// executing it. A concurrent operation on the pool does not block
// quoting, committed states are immutable. Quotes are cached per
// second since the time to maturity moves once a second at most.
func (e *Engine) Quote(poolID string, dir types.SwapDirection, amount *num.Uint, exact types.Exactness) (*types.SwapResult, error) {
	timer := metrics.NewTimeCounter(poolID, "pools", "Quote")
	defer timer.EngineTimeCounterAdd()

	if amount == nil || amount.IsZero() {
		return nil, types.ErrInvalidAmount
	}
	e.mu.Lock()
	entry, ok := e.pools.Get(probeEntry(poolID))
	var pool *types.Pool
	if ok {
		pool = entry.pool
	}
	e.mu.Unlock()
	if !ok {
		return nil, types.ErrPoolNotFound
	}

	now := e.timeService.GetTimeNow()
	key := quoteKey(pool, dir, amount, exact, now.Unix())
	if res, ok := e.quotes.get(key); ok {
		return res, nil
	}

	q, err := swapQuote(pool, dir, amount, exact, pool.FeeBps, e.InvariantToleranceUnits, now)
	if err != nil {
		return nil, err
	}
	res := &types.SwapResult{
		PoolID:        poolID,
		Direction:     dir,
		In:            q.in,
		Out:           q.out,
		Fee:           q.fee,
		PostInvariant: q.postInvariant,
	}
	e.quotes.add(key, res)
	return res, nil
}

// quoteKey digests everything a quote depends on: the pool state the
// solver reads, the swap parameters and the clock second.
func quoteKey(p *types.Pool, dir types.SwapDirection, amount *num.Uint, exact types.Exactness, nowUnix int64) string {
	reserveRisky := p.ReserveRisky.Bytes()
	reserveStable := p.ReserveStable.Bytes()
	liquidity := p.Liquidity.Bytes()
	amt := amount.Bytes()

	buf := make([]byte, 0, len(p.ID)+4*32+2+12)
	buf = append(buf, p.ID...)
	buf = append(buf, reserveRisky[:]...)
	buf = append(buf, reserveStable[:]...)
	buf = append(buf, liquidity[:]...)
	buf = append(buf, amt[:]...)
	buf = append(buf, byte(dir), byte(exact))
	buf = binary.BigEndian.AppendUint32(buf, p.FeeBps)
	buf = binary.BigEndian.AppendUint64(buf, uint64(nowUnix))
	return crypto.HashToHex(buf)
}

// quoteCache wraps the LRU so hits and misses get counted.
type quoteCache struct {
	log   *logging.Logger
	cache *lru.Cache[string, *types.SwapResult]
}

func newQuoteCache(log *logging.Logger, size int) *quoteCache {
	if size <= 0 {
		size = NewDefaultConfig().QuoteCacheSize
	}
	cache, err := lru.New[string, *types.SwapResult](size)
	if err != nil {
		log.Panic("unable to set up quote cache",
			logging.Int("size", size),
			logging.Error(err),
		)
	}
	return &quoteCache{log: log, cache: cache}
}

func (c *quoteCache) get(key string) (*types.SwapResult, bool) {
	res, ok := c.cache.Get(key)
	metrics.QuoteCacheCounterInc(ok)
	if !ok {
		return nil, false
	}
	return res.Clone(), true
}

func (c *quoteCache) add(key string, res *types.SwapResult) {
	c.cache.Add(key, res.Clone())
}

func (c *quoteCache) purge() {
	c.cache.Purge()
}
