package frame

import (
	"fmt"
	"io"
	"strings"
)

// Render writes the frame as a fixed-width text table. maxRows of 0
// prints everything; otherwise output is truncated with a trailing
// count.
func (f *Frame) Render(w io.Writer, maxRows int) error {
	if f.Empty() {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}

	rows := f.Rows
	truncated := 0
	if maxRows > 0 && len(rows) > maxRows {
		truncated = len(rows) - maxRows
		rows = rows[:maxRows]
	}

	widths := make([]int, len(f.Columns))
	for i, c := range f.Columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) error {
		parts := make([]string, len(f.Columns))
		for i := range f.Columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
		return err
	}

	if err := writeRow(f.Columns); err != nil {
		return err
	}
	sep := make([]string, len(f.Columns))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	if err := writeRow(sep); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}

	if truncated > 0 {
		if _, err := fmt.Fprintf(w, "... (%d more rows)\n", truncated); err != nil {
			return err
		}
	}
	return nil
}
