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

// MarginEvent is any event carrying a party's post-change position.
type MarginEvent interface {
	events.Event
	Position() *types.Position
}

type MarginStore interface {
	Upsert(context.Context, entities.MarginAccount) error
}

// Margins keeps the margin_accounts table at the latest position per
// party per pool.
type Margins struct {
	subscriber
	store MarginStore
	log   *logging.Logger
}

func NewMargins(store MarginStore, log *logging.Logger) *Margins {
	return &Margins{
		subscriber: newSubscriber(),
		store:      store,
		log:        log,
	}
}

func (ms *Margins) Types() []events.Type {
	return []events.Type{
		events.TimeUpdate,
		events.MarginUpdatedEvent,
	}
}

func (ms *Margins) Push(evts ...events.Event) {
	for _, e := range evts {
		switch evt := e.(type) {
		case TimeEvent:
			ms.setTauTime(evt.Time())
		case MarginEvent:
			ms.consume(evt)
		default:
			ms.log.Error("unknown event type in margins subscriber",
				logging.String("type", e.Type().String()))
		}
	}
}

func (ms *Margins) consume(event MarginEvent) {
	row := entities.MarginAccountFromEvent(event.Position(), ms.tauTime)
	if err := ms.store.Upsert(context.Background(), row); err != nil {
		ms.log.Error("error upserting margin account",
			logging.String("party", row.Party),
			logging.String("pool-id", row.PoolID.String()),
			logging.Error(err))
	}
}
