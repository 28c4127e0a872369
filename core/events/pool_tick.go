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

package events

import (
	"context"
	"time"

	"code.tauprotocol.io/tau/core/types"
)

// PoolTick is emitted every time a pool's oracle accumulators roll
// forward, carrying the fresh observation.
type PoolTick struct {
	*Base
	o *types.Observation
	t time.Time
}

func NewPoolTick(ctx context.Context, o *types.Observation, t time.Time) *PoolTick {
	return &PoolTick{
		Base: newBase(ctx, PoolTickEvent),
		o:    o.Clone(),
		t:    t,
	}
}

func (p PoolTick) PoolID() string {
	return p.o.PoolID
}

func (p PoolTick) Time() time.Time {
	return p.t
}

// Observation returns a copy, events are immutable once emitted.
func (p PoolTick) Observation() *types.Observation {
	return p.o.Clone()
}
