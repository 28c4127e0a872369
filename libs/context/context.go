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

package vgcontext

import (
	"context"

	uuid "github.com/satori/go.uuid"
)

type traceIDT int

const traceIDKey traceIDT = 0

// WithTraceID returns a context with the given trace ID set.
func WithTraceID(ctx context.Context, tID string) context.Context {
	return context.WithValue(ctx, traceIDKey, tID)
}

// TraceIDFromContext returns the trace ID held by the context, minting
// and attaching a fresh one if none is set yet.
func TraceIDFromContext(ctx context.Context) (context.Context, string) {
	tID := ctx.Value(traceIDKey)
	if tID == nil {
		stID := uuid.NewV4().String()
		return WithTraceID(ctx, stID), stID
	}
	stID, ok := tID.(string)
	if !ok {
		stID = uuid.NewV4().String()
		return WithTraceID(ctx, stID), stID
	}
	return ctx, stID
}
