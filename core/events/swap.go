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

type Swap struct {
	*Base
	party string
	res   *types.SwapResult
}

func NewSwap(ctx context.Context, party string, res *types.SwapResult) *Swap {
	return &Swap{
		Base:  newBase(ctx, SwapEvent),
		party: party,
		res:   res.Clone(),
	}
}

func (s Swap) PoolID() string {
	return s.res.PoolID
}

func (s Swap) Party() string {
	return s.party
}

func (s Swap) IsParty(id string) bool {
	return s.party == id
}

// SwapResult returns a copy, events are immutable once emitted.
func (s Swap) SwapResult() *types.SwapResult {
	return s.res.Clone()
}
