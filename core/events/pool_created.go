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

	"code.tauprotocol.io/tau/core/types"
)

type PoolCreated struct {
	*Base
	p *types.Pool
}

func NewPoolCreated(ctx context.Context, p *types.Pool) *PoolCreated {
	return &PoolCreated{
		Base: newBase(ctx, PoolCreatedEvent),
		p:    p.Clone(),
	}
}

func (p PoolCreated) PoolID() string {
	return p.p.ID
}

// Pool returns a copy, events are immutable once emitted.
func (p PoolCreated) Pool() *types.Pool {
	return p.p.Clone()
}
