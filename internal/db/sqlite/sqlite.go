package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register driver

	"github.com/bgunnarsson/binbackup/internal/db"
)

type SqliteDB struct {
	db *sql.DB
}

func Open(dsn string) (*SqliteDB, error) {
	path := Path(dsn)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	// sql.Open is lazy; surface a bad path before any query runs.
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	return &SqliteDB{db: sqldb}, nil
}

// Path strips a sqlite:// or sqlite:/// prefix so both SQLAlchemy-style
// URLs and plain file paths open the same database.
func Path(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "sqlite:///"):
		return dsn[len("sqlite:///"):]
	case strings.HasPrefix(dsn, "sqlite://"):
		return dsn[len("sqlite://"):]
	case strings.HasPrefix(dsn, "sqlite:"):
		return dsn[len("sqlite:"):]
	}
	return dsn
}

func (s *SqliteDB) Close() error {
	return s.db.Close()
}

func (s *SqliteDB) QuoteIdent(name string) string {
	return quoteIdent(name)
}

func (s *SqliteDB) Query(ctx context.Context, sqlStr string, args ...any) (*db.Rows, error) {
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.Collect(rows, nil)
}

// very basic identifier quoting, enough for sqlite
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
