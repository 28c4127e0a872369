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

// Package sqlsubscribers bridges the event broker and the sql stores,
// each subscriber converts the events it listens for into row shapes
// and writes them through a narrow store interface.
package sqlsubscribers

import (
	"time"

	"code.tauprotocol.io/tau/core/events"
)

// TimeEvent is what every subscriber needs from a time update.
type TimeEvent interface {
	events.Event
	Time() time.Time
}

// subscriber is the common part of every sql subscriber. All of them
// are required (acking) subscribers, the broker calls Push inline so
// writes happen in event order, the channel plumbing exists only to
// satisfy the broker interface.
type subscriber struct {
	id      int
	ch      chan []events.Event
	sCh     chan struct{}
	closed  chan struct{}
	tauTime time.Time
}

func newSubscriber() subscriber {
	return subscriber{
		ch:     make(chan []events.Event, 1),
		sCh:    make(chan struct{}),
		closed: make(chan struct{}),
	}
}

// Ack marks the subscriber as required, the broker delivers to it
// synchronously and never drops it.
func (s *subscriber) Ack() bool {
	return true
}

func (s *subscriber) C() chan<- []events.Event {
	return s.ch
}

func (s *subscriber) Skip() <-chan struct{} {
	return s.sCh
}

func (s *subscriber) Closed() <-chan struct{} {
	return s.closed
}

func (s *subscriber) SetID(id int) {
	s.id = id
}

func (s *subscriber) ID() int {
	return s.id
}

func (s *subscriber) setTauTime(t time.Time) {
	s.tauTime = t
}
