package backup

import (
	"strings"
	"time"

	"github.com/bgunnarsson/binbackup/internal/db"
)

// StripTimezone rewrites every timezone-aware column of rows in place.
// Each value keeps the wall clock it shows in loc and loses its offset
// (returned in UTC with zero offset). Column types drop their zone so
// the column no longer reports HasTimezone. Returns the rewritten
// column names.
func StripTimezone(rows *db.Rows, loc *time.Location) []string {
	if rows == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	var stripped []string
	for i, col := range rows.Columns {
		if !col.HasTimezone() {
			continue
		}

		for _, r := range rows.Data {
			if i >= len(r) {
				continue
			}
			if t, ok := r[i].(time.Time); ok {
				r[i] = naive(t, loc)
			}
		}

		rows.Columns[i].Type = naiveType(col.Type)
		stripped = append(stripped, col.Name)
	}

	return stripped
}

func naive(t time.Time, loc *time.Location) time.Time {
	w := t.In(loc)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
}

func naiveType(typ string) string {
	switch strings.ToLower(typ) {
	case "datetimeoffset":
		return "datetime2"
	default:
		return "timestamp"
	}
}
