// Package sheet writes fetched tables into a single .xlsx workbook, one
// worksheet per table.
package sheet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bgunnarsson/binbackup/internal/backup"
)

// DateFormat is the number format applied to datetime cells.
const DateFormat = "yyyy-mm-dd hh:mm:ss"

// Write saves sheets to path, creating the parent directory if needed and
// replacing any existing file.
func Write(path string, sheets []backup.Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	defaultSheet := f.GetSheetName(0)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", s.Name, err)
		}

		if err := writeSheet(f, s, styles); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

type styles struct {
	header int
	date   int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
	})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	dateFmt := DateFormat
	date, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create date style: %w", err)
	}

	return styles{header: header, date: date}, nil
}

func writeSheet(f *excelize.File, s backup.Sheet, st styles) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return err
	}

	if s.Rows == nil {
		return sw.Flush()
	}

	header := make([]any, len(s.Rows.Columns))
	for i, col := range s.Rows.Columns {
		header[i] = excelize.Cell{StyleID: st.header, Value: col.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range s.Rows.Data {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = cellValue(v, st)
		}

		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("row %d: %w", r+1, err)
		}
	}

	return sw.Flush()
}

func cellValue(v any, st styles) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return excelize.Cell{StyleID: st.date, Value: x}
	case []byte:
		return string(x)
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		// JSON columns decoded by the driver.
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
