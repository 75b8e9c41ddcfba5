// Package backup fetches the fixed set of application tables and prepares
// them for the workbook.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bgunnarsson/binbackup/internal/db"
)

// Table is one source table and the sheet it becomes.
type Table struct {
	Name          string
	StripTimezone bool
}

// Tables is the export set, in sheet order.
var Tables = []Table{
	{Name: "Teacher"},
	{Name: "StudentAssessment"},
	{Name: "_prisma_migrations", StripTimezone: true},
}

// Sheet is a fetched table ready to be written.
type Sheet struct {
	Name     string
	Rows     *db.Rows
	Stripped []string
}

// Fetch runs one SELECT * per table, in order. The first failing query
// aborts the export.
func Fetch(ctx context.Context, conn db.DB, tables []Table, loc *time.Location, logger *slog.Logger) ([]Sheet, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sheets := make([]Sheet, 0, len(tables))
	for _, t := range tables {
		start := time.Now()
		rows, err := conn.Query(ctx, "SELECT * FROM "+conn.QuoteIdent(t.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", t.Name, err)
		}

		sheet := Sheet{Name: t.Name, Rows: rows}
		if t.StripTimezone {
			sheet.Stripped = StripTimezone(rows, loc)
		}

		logger.Info("fetched table",
			"table", t.Name,
			"rows", rows.Len(),
			"columns", len(rows.Columns),
			"duration", time.Since(start).Round(time.Millisecond))
		if len(sheet.Stripped) > 0 {
			logger.Debug("stripped timezone", "table", t.Name, "columns", sheet.Stripped)
		}

		sheets = append(sheets, sheet)
	}

	return sheets, nil
}
