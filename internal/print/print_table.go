package print

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bgunnarsson/binbackup/internal/db"
)

type Options struct {
	MaxWidth int // max width for each column, 0 = 40
}

func RenderTable(w io.Writer, rows *db.Rows, opts Options) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	cols := len(rows.Columns)
	if cols == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}

	// compute widths
	widths := make([]int, cols)
	for i, col := range rows.Columns {
		widths[i] = utf8.RuneCountInString(col.Name)
	}

	for _, r := range rows.Data {
		for i, cell := range r {
			if i >= cols {
				break
			}
			if l := utf8.RuneCountInString(formatCell(cell)); l > widths[i] {
				if l > opts.MaxWidth {
					l = opts.MaxWidth
				}
				widths[i] = l
			}
		}
	}

	// helpers
	sep := func(ch string) string {
		var b strings.Builder
		b.WriteString("+")
		for i := range widths {
			b.WriteString(strings.Repeat(ch, widths[i]+2))
			b.WriteString("+")
		}
		return b.String()
	}

	writeRow := func(cells []string) {
		var b strings.Builder
		b.WriteString("|")
		for i, c := range cells {
			cut := truncate(c, widths[i])
			b.WriteString(" ")
			b.WriteString(padRight(cut, widths[i]))
			b.WriteString(" |")
		}
		fmt.Fprintln(w, b.String())
	}

	// header
	fmt.Fprintln(w, sep("-"))
	header := make([]string, cols)
	for i, col := range rows.Columns {
		header[i] = col.Name
	}
	writeRow(header)
	fmt.Fprintln(w, sep("="))

	// data
	for _, r := range rows.Data {
		cells := make([]string, cols)
		for i := range cells {
			if i < len(r) {
				cells[i] = formatCell(r[i])
			}
		}
		writeRow(cells)
	}
	fmt.Fprintln(w, sep("-"))
}

// RenderTSV writes a header line and one tab-separated line per row, for
// output that is piped rather than read on a terminal.
func RenderTSV(w io.Writer, rows *db.Rows) {
	names := make([]string, len(rows.Columns))
	for i, col := range rows.Columns {
		names[i] = col.Name
	}
	fmt.Fprintln(w, strings.Join(names, "\t"))

	for _, r := range rows.Data {
		cells := make([]string, len(r))
		for i, cell := range r {
			cells[i] = strings.NewReplacer("\t", " ", "\n", " ").Replace(formatCell(cell))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case []byte:
		// heuristic: treat as string if printable, else show len
		s := string(t)
		if isPrintable(s) {
			return s
		}
		return fmt.Sprintf("<blob %d bytes>", len(t))
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}

func padRight(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 2 {
		return string(r[:w])
	}
	return string(r[:w-3]) + "..."
}
