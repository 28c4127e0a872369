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

package sqlstore

import (
	"context"
	"embed"
	"sort"

	"code.tauprotocol.io/tau/entities"
	"code.tauprotocol.io/tau/logging"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	shopspring "github.com/jackc/pgtype/ext/shopspring-numeric"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Connection is the narrow pgx surface the stores actually use, so
// tests can swap in a tx or a stub.
type Connection interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ConnectionSource wraps the shared connection pool, every store
// embeds one.
type ConnectionSource struct {
	Connection Connection

	log  *logging.Logger
	pool *pgxpool.Pool
}

const namedLogger = "sqlstore"

// NewConnectionSource connects the pool and applies the embedded
// schema migrations in lexical order.
func NewConnectionSource(ctx context.Context, log *logging.Logger, conf ConnectionConfig) (*ConnectionSource, error) {
	log = log.Named(namedLogger)

	poolConf, err := pgxpool.ParseConfig(conf.GetConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "parsing connection config")
	}
	poolConf.ConnConfig.RuntimeParams["application_name"] = "tau"
	registerNumericType(poolConf)

	pool, err := pgxpool.ConnectConfig(ctx, poolConf)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	s := &ConnectionSource{
		Connection: pool,
		log:        log,
		pool:       pool,
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "migrating schema")
	}

	log.Info("connected to database",
		logging.String("host", conf.Host),
		logging.String("database", conf.Database))
	return s, nil
}

// Close releases the underlying pool.
func (s *ConnectionSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *ConnectionSource) migrate(ctx context.Context) error {
	files, err := embedMigrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := embedMigrations.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		if _, err := s.Connection.Exec(ctx, string(sql)); err != nil {
			return errors.Wrapf(err, "applying %s", name)
		}
	}
	return nil
}

// registerNumericType makes postgres NUMERIC columns scan to and from
// shopspring decimals.
func registerNumericType(poolConfig *pgxpool.Config) {
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		conn.ConnInfo().RegisterDataType(pgtype.DataType{
			Value: &shopspring.Numeric{},
			Name:  "numeric",
			OID:   pgtype.NumericOID,
		})
		return nil
	}
}

// wrapE maps driver-level not-found onto the entities sentinel so
// callers never import pgx.
func wrapE(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ErrNotFound
	}
	return err
}
