package db

import (
	"context"
	"strings"
)

type Column struct {
	Name string
	Type string
}

// HasTimezone reports whether the column holds offset-carrying datetimes.
func (c Column) HasTimezone() bool {
	switch strings.ToLower(c.Type) {
	case "timestamptz", "timestamp with time zone", "datetimeoffset":
		return true
	}
	return false
}

type Row []any

type Rows struct {
	Columns []Column
	Data    []Row
}

func (r *Rows) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}

type DB interface {
	Close() error
	QuoteIdent(name string) string
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)
}
