package dispatcher

import (
	"fmt"
	"math"
	"strings"

	"github.com/contactkeval/volsuite/internal/frame"
)

const (
	plotHeight = 15
	plotWidth  = 72
)

var plotMarkers = []rune{'*', '+', 'o', 'x', '#', '@'}

// plotFrame draws the selected columns of a frame as a terminal chart,
// one marker per series, with the index column as the x axis.
func (d *Dispatcher) plotFrame(f *frame.Frame, a plotArgs) error {
	if f.ColumnIndex(a.Index) < 0 {
		return fmt.Errorf("column '%s' does not exist in the cached data", a.Index)
	}

	cols := a.Columns
	if len(cols) == 0 {
		for _, c := range f.Columns {
			if c != a.Index {
				cols = append(cols, c)
			}
		}
	}
	if len(cols) == 0 {
		return fmt.Errorf("no columns to plot")
	}

	labels := make([]string, len(f.Rows))
	idx := f.ColumnIndex(a.Index)
	for i, row := range f.Rows {
		labels[i] = row[idx]
	}

	series := make([][]float64, len(cols))
	for i, c := range cols {
		vals, err := f.ColumnFloats(c)
		if err != nil {
			return fmt.Errorf("column '%s' does not exist in the cached data", c)
		}
		series[i] = vals
	}

	lo, hi, ok := plotBounds(series)
	if !ok {
		return fmt.Errorf("no numeric data to plot")
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	title := a.Title
	if title == "" {
		title = fmt.Sprintf("%s %s", f.Attrs.Ticker, f.Attrs.Datatype)
	}

	canvas := make([][]rune, plotHeight)
	background := ' '
	if a.Grid {
		background = '.'
	}
	for y := range canvas {
		canvas[y] = make([]rune, plotWidth)
		for x := range canvas[y] {
			canvas[y][x] = background
		}
	}

	n := len(f.Rows)
	for si, vals := range series {
		marker := plotMarkers[si%len(plotMarkers)]
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			x := 0
			if n > 1 {
				x = i * (plotWidth - 1) / (n - 1)
			}
			y := int(math.Round((hi - v) / (hi - lo) * float64(plotHeight-1)))
			canvas[y][x] = marker
		}
	}

	out := d.out
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%*s\n", (plotWidth+len(title))/2+10, title)
	for y, row := range canvas {
		label := ""
		switch y {
		case 0:
			label = fmtAxis(hi)
		case plotHeight / 2:
			label = fmtAxis((hi + lo) / 2)
		case plotHeight - 1:
			label = fmtAxis(lo)
		}
		fmt.Fprintf(out, "%10s |%s\n", label, string(row))
	}
	fmt.Fprintf(out, "%10s +%s\n", "", strings.Repeat("-", plotWidth))
	if n > 0 {
		first, last := labels[0], labels[n-1]
		pad := plotWidth - len(first) - len(last)
		if pad < 1 {
			pad = 1
		}
		fmt.Fprintf(out, "%10s  %s%s%s\n", "", first, strings.Repeat(" ", pad), last)
	}
	if a.XLabel != "" {
		fmt.Fprintf(out, "%10s  %s\n", "", a.XLabel)
	}
	if a.YLabel != "" {
		fmt.Fprintf(out, "y: %s\n", a.YLabel)
	}
	if a.Legend {
		for si, c := range cols {
			fmt.Fprintf(out, "  %c = %s\n", plotMarkers[si%len(plotMarkers)], c)
		}
	}
	fmt.Fprintln(out)
	return nil
}

// plotBounds returns the min and max over every series, ignoring NaNs.
func plotBounds(series [][]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, vals := range series {
		for _, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			ok = true
		}
	}
	return lo, hi, ok
}

func fmtAxis(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
