package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/bgunnarsson/binbackup/internal/backup"
	"github.com/bgunnarsson/binbackup/internal/config"
	"github.com/bgunnarsson/binbackup/internal/db"
	"github.com/bgunnarsson/binbackup/internal/sheet"
)

// Result describes a finished export.
type Result struct {
	Path   string
	Sheets []SheetSummary
}

type SheetSummary struct {
	Name     string
	Rows     int
	Columns  int
	Stripped []string
}

// Summary renders the result as a table for print.RenderTable.
func (r *Result) Summary() *db.Rows {
	out := &db.Rows{
		Columns: []db.Column{
			{Name: "sheet", Type: "text"},
			{Name: "rows", Type: "integer"},
			{Name: "columns", Type: "integer"},
			{Name: "tz stripped", Type: "text"},
		},
	}
	for _, s := range r.Sheets {
		stripped := "-"
		if len(s.Stripped) > 0 {
			stripped = strings.Join(s.Stripped, ", ")
		}
		out.Data = append(out.Data, db.Row{s.Name, int64(s.Rows), int64(s.Columns), stripped})
	}
	return out
}

// Run performs one export: validate config, connect, fetch the tables,
// write the workbook. Nothing touches the database or the filesystem
// until the configuration is valid.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driver, err := DriverFromURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	logger.Info("connecting", "driver", driver, "host", hostOf(cfg.DatabaseURL))
	conn, err := openDB(driver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect (%s): %w", driver, err)
	}
	defer conn.Close()

	return Export(ctx, conn, cfg, logger)
}

// Export fetches backup.Tables from conn and writes them to the configured
// output path.
func Export(ctx context.Context, conn db.DB, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.OutputPath()
	if cfg.Versioned {
		var err error
		if path, err = sheet.NextVersionedPath(cfg.OutputDir, cfg.OutputFile); err != nil {
			return nil, fmt.Errorf("failed to pick versioned output path: %w", err)
		}
	}

	sheets, err := backup.Fetch(ctx, conn, backup.Tables, cfg.Location(), logger)
	if err != nil {
		return nil, err
	}

	if err := sheet.Write(path, sheets); err != nil {
		return nil, err
	}
	logger.Info("wrote workbook", "path", path, "sheets", len(sheets))

	res := &Result{Path: path}
	for _, s := range sheets {
		res.Sheets = append(res.Sheets, SheetSummary{
			Name:     s.Name,
			Rows:     s.Rows.Len(),
			Columns:  len(s.Rows.Columns),
			Stripped: s.Stripped,
		})
	}
	return res, nil
}

// hostOf returns the host part of a database URL for logging. Credentials
// never leave this function.
func hostOf(raw string) string {
	if !strings.Contains(raw, "://") {
		return "local"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "unknown"
	}
	if u.Host == "" {
		return "local"
	}
	return u.Hostname()
}
