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
)

// Checkpoint is emitted when the engine serialises its full state,
// carrying the hash callers can verify a restore against.
type Checkpoint struct {
	*Base
	hash  string
	taken time.Time
}

func NewCheckpoint(ctx context.Context, hash string, taken time.Time) *Checkpoint {
	return &Checkpoint{
		Base:  newBase(ctx, CheckpointEvent),
		hash:  hash,
		taken: taken,
	}
}

func (c Checkpoint) Hash() string {
	return c.hash
}

func (c Checkpoint) Taken() time.Time {
	return c.taken
}
