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

// MarginUpdated carries the post-change state of a party's margin
// position on one pool.
type MarginUpdated struct {
	*Base
	pos *types.Position
}

func NewMarginUpdated(ctx context.Context, pos *types.Position) *MarginUpdated {
	return &MarginUpdated{
		Base: newBase(ctx, MarginUpdatedEvent),
		pos:  pos.Clone(),
	}
}

func (m MarginUpdated) PoolID() string {
	return m.pos.PoolID
}

func (m MarginUpdated) Party() string {
	return m.pos.Party
}

func (m MarginUpdated) IsParty(id string) bool {
	return m.pos.Party == id
}

// Position returns a copy, events are immutable once emitted.
func (m MarginUpdated) Position() *types.Position {
	return m.pos.Clone()
}
