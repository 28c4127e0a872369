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

// ObservationEvent is any event carrying an oracle accumulator
// snapshot.
type ObservationEvent interface {
	events.Event
	Observation() *types.Observation
}

type ObservationStore interface {
	Add(context.Context, entities.Observation) error
}

// Observations appends one row per pool tick.
type Observations struct {
	subscriber
	store ObservationStore
	log   *logging.Logger
}

func NewObservations(store ObservationStore, log *logging.Logger) *Observations {
	return &Observations{
		subscriber: newSubscriber(),
		store:      store,
		log:        log,
	}
}

func (os *Observations) Types() []events.Type {
	return []events.Type{
		events.TimeUpdate,
		events.PoolTickEvent,
	}
}

func (os *Observations) Push(evts ...events.Event) {
	for _, e := range evts {
		// a pool tick carries a Time accessor too, match it first
		switch evt := e.(type) {
		case ObservationEvent:
			os.consume(evt)
		case TimeEvent:
			os.setTauTime(evt.Time())
		default:
			os.log.Error("unknown event type in observations subscriber",
				logging.String("type", e.Type().String()))
		}
	}
}

func (os *Observations) consume(event ObservationEvent) {
	row := entities.ObservationFromEvent(event.Observation(), os.tauTime)
	if err := os.store.Add(context.Background(), row); err != nil {
		os.log.Error("error adding observation",
			logging.String("pool-id", row.PoolID.String()),
			logging.Error(err))
	}
}
