// Package frame holds tabular results: an ordered set of named columns
// with string cells plus export metadata. It is the in-memory shape the
// dispatcher caches, renders, and round-trips through CSV.
package frame

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/contactkeval/volsuite/internal/vol"
)

// Attrs is export metadata carried alongside a frame, used to build
// default export filenames.
type Attrs struct {
	Ticker   string
	Period   string
	Datatype string
}

// Frame is an ordered table of string cells. Numeric cells are formatted
// so they parse back exactly; empty cells mean absent (warm-up rows).
type Frame struct {
	Columns []string
	Rows    [][]string
	Attrs   Attrs
}

// DefaultFilename builds the export filename the same way the terminal
// suggests it: <ticker>_<datatype>_<period>.csv.
func (f *Frame) DefaultFilename() string {
	return fmt.Sprintf("%s_%s_%s.csv", f.Attrs.Ticker, f.Attrs.Datatype, f.Attrs.Period)
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool { return f == nil || len(f.Rows) == 0 }

// ColumnIndex returns the position of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnFloats parses the named column as floats. Blank or unparseable
// cells come back as NaN so row alignment is preserved.
func (f *Frame) ColumnFloats(name string) ([]float64, error) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}

	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out, nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FromBars builds a frame from a price series.
func FromBars(attrs Attrs, series *vol.PriceSeries) *Frame {
	f := &Frame{
		Columns: []string{"date", "open", "high", "low", "close", "volume"},
		Attrs:   attrs,
	}
	for _, p := range series.Points() {
		f.Rows = append(f.Rows, []string{
			fmtDate(p.Time),
			fmtFloat(p.Open),
			fmtFloat(p.High),
			fmtFloat(p.Low),
			fmtFloat(p.Close),
			fmtFloat(p.Volume),
		})
	}
	return f
}

// FromRollingVol builds a frame with one column per rolling window,
// named like "20d_close". Windows produce results of different lengths;
// rows cover the union of timestamps and warm-up cells stay blank.
func FromRollingVol(attrs Attrs, method vol.Method, windows []int, results [][]vol.RollingVolPoint) *Frame {
	f := &Frame{Columns: []string{"date"}, Attrs: attrs}

	byTime := make([]map[string]float64, len(results))
	var dates []string
	seen := map[string]bool{}

	for i, res := range results {
		f.Columns = append(f.Columns, fmt.Sprintf("%dd_%s", windows[i], method))
		byTime[i] = make(map[string]float64, len(res))
		for _, p := range res {
			key := fmtDate(p.Time)
			byTime[i][key] = p.Vol
			if !seen[key] {
				seen[key] = true
				dates = append(dates, key)
			}
		}
	}
	// results hold chronological points from the same series, and the
	// longest window's dates are a suffix of the shortest's, so the
	// insertion order above is already chronological per column; sort
	// anyway against mixed inputs.
	sort.Strings(dates)

	for _, d := range dates {
		row := []string{d}
		for i := range results {
			if v, ok := byTime[i][d]; ok {
				row = append(row, fmtFloat(v))
			} else {
				row = append(row, "")
			}
		}
		f.Rows = append(f.Rows, row)
	}
	return f
}

// FromChain builds a frame from an option chain snapshot.
func FromChain(attrs Attrs, chain vol.OptionChain) *Frame {
	f := &Frame{
		Columns: []string{"strike", "bid", "ask", "last", "impliedvolatility"},
		Attrs:   attrs,
	}
	for _, q := range chain.Quotes {
		f.Rows = append(f.Rows, []string{
			fmtFloat(q.Strike),
			fmtFloat(q.Bid),
			fmtFloat(q.Ask),
			fmtFloat(q.Last),
			fmtFloat(q.ImpliedVol),
		})
	}
	return f
}

// FromSkew builds a frame from a single-expiry skew curve.
func FromSkew(attrs Attrs, curve vol.SkewCurve) *Frame {
	f := &Frame{
		Columns: []string{"moneyness", "impliedvolatility"},
		Attrs:   attrs,
	}
	for _, p := range curve.Points {
		f.Rows = append(f.Rows, []string{
			fmtFloat(p.Moneyness),
			fmtFloat(p.ImpliedVol),
		})
	}
	return f
}

// FromSurface flattens a volatility surface into rows of expiry,
// moneyness, days to expiry and implied volatility. Points whose
// moneyness falls outside [lo, hi] are omitted; pass lo >= hi to keep
// everything.
func FromSurface(attrs Attrs, surf *vol.Surface, lo, hi float64) *Frame {
	f := &Frame{
		Columns: []string{"expiry", "moneyness", "dte", "impliedvolatility"},
		Attrs:   attrs,
	}
	for _, c := range surf.Curves() {
		dte := int(math.Round(c.Expiry.Sub(surf.AsOf).Hours() / 24))
		for _, p := range c.Points {
			if lo < hi && (p.Moneyness < lo || p.Moneyness > hi) {
				continue
			}
			f.Rows = append(f.Rows, []string{
				fmtDate(c.Expiry),
				fmtFloat(p.Moneyness),
				strconv.Itoa(dte),
				fmtFloat(p.ImpliedVol),
			})
		}
	}
	return f
}
