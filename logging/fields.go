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

package logging

import (
	"time"

	"code.tauprotocol.io/tau/libs/num"

	"go.uber.org/zap"
)

// Typed field helpers so call sites never import zap directly.

func String(key, val string) zap.Field {
	return zap.String(key, val)
}

func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

func Uint32(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

func Float64(key string, val float64) zap.Field {
	return zap.Float64(key, val)
}

func Time(key string, t time.Time) zap.Field {
	return zap.Time(key, t)
}

func Duration(key string, d time.Duration) zap.Field {
	return zap.Duration(key, d)
}

func Error(err error) zap.Field {
	return zap.Error(err)
}

func Reflect(key string, val interface{}) zap.Field {
	return zap.Reflect(key, val)
}

// BigUint logs a num.Uint as its decimal string, nil safe.
func BigUint(key string, u *num.Uint) zap.Field {
	if u == nil {
		return zap.String(key, "nil")
	}
	return zap.String(key, u.String())
}

// BigInt logs a num.Int as its decimal string, nil safe.
func BigInt(key string, i *num.Int) zap.Field {
	if i == nil {
		return zap.String(key, "nil")
	}
	return zap.String(key, i.String())
}

// Decimal logs any stringer-ish decimal under the given key.
func Decimal(key string, d num.Decimal) zap.Field {
	return zap.String(key, d.String())
}

// PoolID tags an entry with the pool identifier.
func PoolID(id string) zap.Field {
	return zap.String("pool-id", id)
}

// Party tags an entry with the party (account holder) identifier.
func Party(party string) zap.Field {
	return zap.String("party", party)
}
