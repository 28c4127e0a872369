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

// SwapEvent is any event carrying a settled swap result.
type SwapEvent interface {
	events.Event
	Party() string
	SwapResult() *types.SwapResult
}

type SwapStore interface {
	Add(context.Context, entities.Swap) error
}

// Swaps appends one row per settled swap.
type Swaps struct {
	subscriber
	store SwapStore
	log   *logging.Logger
}

func NewSwaps(store SwapStore, log *logging.Logger) *Swaps {
	return &Swaps{
		subscriber: newSubscriber(),
		store:      store,
		log:        log,
	}
}

func (ss *Swaps) Types() []events.Type {
	return []events.Type{
		events.TimeUpdate,
		events.SwapEvent,
	}
}

func (ss *Swaps) Push(evts ...events.Event) {
	for _, e := range evts {
		switch evt := e.(type) {
		case TimeEvent:
			ss.setTauTime(evt.Time())
		case SwapEvent:
			ss.consume(evt)
		default:
			ss.log.Error("unknown event type in swaps subscriber",
				logging.String("type", e.Type().String()))
		}
	}
}

func (ss *Swaps) consume(event SwapEvent) {
	row := entities.SwapFromEvent(event.Party(), event.SwapResult(), event.Sequence(), ss.tauTime)
	if err := ss.store.Add(context.Background(), row); err != nil {
		ss.log.Error("error adding swap",
			logging.String("pool-id", row.PoolID.String()),
			logging.Error(err))
	}
}
