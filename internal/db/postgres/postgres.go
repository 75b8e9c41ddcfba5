package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bgunnarsson/binbackup/internal/db"
)

// Query parameters understood by Prisma but rejected by the server as
// unknown runtime parameters.
var prismaParams = []string{
	"schema",
	"pgbouncer",
	"connection_limit",
	"pool_timeout",
	"socket_timeout",
	"statement_cache_size",
}

type PostgresDB struct {
	db *sql.DB
}

func Open(dsn string) (*PostgresDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	cfg, err := ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	sqldb := stdlib.OpenDB(*cfg)

	// One export runs its queries in sequence.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return &PostgresDB{db: sqldb}, nil
}

// ParseConfig parses a postgres URL or keyword DSN. SQLAlchemy-style
// schemes (postgresql+psycopg2://) are accepted and Prisma-only query
// parameters are dropped; Prisma's schema parameter becomes search_path.
func ParseConfig(dsn string) (*pgx.ConnConfig, error) {
	if i := strings.Index(dsn, "://"); i != -1 {
		if plus := strings.Index(dsn[:i], "+"); plus != -1 {
			dsn = dsn[:plus] + dsn[i:]
		}
	}

	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if schema, ok := cfg.RuntimeParams["schema"]; ok {
		if _, set := cfg.RuntimeParams["search_path"]; !set && schema != "" {
			cfg.RuntimeParams["search_path"] = schema
		}
	}
	for _, p := range prismaParams {
		delete(cfg.RuntimeParams, p)
	}

	return cfg, nil
}

func (p *PostgresDB) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *PostgresDB) QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (p *PostgresDB) Query(ctx context.Context, sqlQuery string, args ...any) (*db.Rows, error) {
	rows, err := p.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.Collect(rows, convertValue)
}

// uuid, json, jsonb and numeric arrive as strings or text bytes; bytea is
// the only real binary.
func convertValue(col db.Column, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if col.Type == "bytea" {
		return fmt.Sprintf("0x%x", b)
	}
	return string(b)
}
