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

package sqlsubscribers

import (
	"context"

	"code.tauprotocol.io/tau/core/events"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/entities"
	"code.tauprotocol.io/tau/logging"
)

// PoolEvent is any event carrying the full pool state.
type PoolEvent interface {
	events.Event
	Pool() *types.Pool
}

type PoolStore interface {
	Upsert(context.Context, entities.Pool) error
}

// Pools writes pool state to the pools table on every creation event.
type Pools struct {
	subscriber
	store PoolStore
	log   *logging.Logger
}

func NewPools(store PoolStore, log *logging.Logger) *Pools {
	return &Pools{
		subscriber: newSubscriber(),
		store:      store,
		log:        log,
	}
}

func (ps *Pools) Types() []events.Type {
	return []events.Type{
		events.TimeUpdate,
		events.PoolCreatedEvent,
	}
}

func (ps *Pools) Push(evts ...events.Event) {
	for _, e := range evts {
		switch evt := e.(type) {
		case TimeEvent:
			ps.setTauTime(evt.Time())
		case PoolEvent:
			ps.consume(evt)
		default:
			ps.log.Error("unknown event type in pools subscriber",
				logging.String("type", e.Type().String()))
		}
	}
}

func (ps *Pools) consume(event PoolEvent) {
	row := entities.PoolFromEvent(event.Pool(), ps.tauTime)
	if err := ps.store.Upsert(context.Background(), row); err != nil {
		ps.log.Error("error upserting pool",
			logging.String("pool-id", row.ID.String()),
			logging.Error(err))
	}
}
