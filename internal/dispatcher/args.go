package dispatcher

import (
	"fmt"
	"strconv"
	"time"

	"github.com/contactkeval/volsuite/internal/data"
	"github.com/contactkeval/volsuite/internal/vol"
)

// The dispatcher turns free-form tokens into these typed, validated
// argument structs before any core or provider call is made.

// rangeArgs is a resolved time range: either a named trailing period or
// an explicit start/end date pair.
type rangeArgs struct {
	Period string // named period like "6mo", empty when dates are used
	Start  time.Time
	End    time.Time
}

// label returns the export-metadata form of the range.
func (r rangeArgs) label() string {
	if r.Period != "" {
		return r.Period
	}
	return fmt.Sprintf("%s_%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// parseRangeArgs consumes a period token or a start/end date pair from
// args.
func parseRangeArgs(args []string) (rangeArgs, error) {
	if len(args) == 0 {
		return rangeArgs{}, fmt.Errorf("missing time period")
	}

	if data.ValidPeriod(args[0]) {
		return rangeArgs{Period: args[0]}, nil
	}

	start, err := parseDate(args[0])
	if err != nil {
		return rangeArgs{}, fmt.Errorf("%q is not a valid time period or date, use a period like '6mo' or dates in 2006-01-02 form", args[0])
	}
	if len(args) < 2 {
		return rangeArgs{}, fmt.Errorf("missing end date, use date format 2006-01-02")
	}
	end, err := parseDate(args[1])
	if err != nil {
		return rangeArgs{}, fmt.Errorf("%q is not a valid end date, use date format 2006-01-02", args[1])
	}
	if end.Before(start) {
		start, end = end, start
	}
	return rangeArgs{Start: start, End: end}, nil
}

// hvArgs are the validated arguments of the hv command.
type hvArgs struct {
	Method vol.Method
	Range  rangeArgs
}

func parseHVArgs(args []string) (hvArgs, error) {
	if len(args) < 2 {
		return hvArgs{}, fmt.Errorf("usage: hv <method> <period | startdate enddate>")
	}
	method, err := vol.ParseMethod(args[0])
	if err != nil {
		return hvArgs{}, err
	}
	rng, err := parseRangeArgs(args[1:])
	if err != nil {
		return hvArgs{}, err
	}
	return hvArgs{Method: method, Range: rng}, nil
}

// ocArgs are the validated arguments of the oc command.
type ocArgs struct {
	Expiry time.Time
	Side   vol.Side
}

func parseOCArgs(args []string) (ocArgs, error) {
	if len(args) < 2 {
		return ocArgs{}, fmt.Errorf("usage: oc <expiry> <calls|puts>")
	}
	expiry, err := parseDate(args[0])
	if err != nil {
		return ocArgs{}, fmt.Errorf("%q is not a valid expiry date, use format 2006-01-02", args[0])
	}
	side, err := vol.ParseSide(args[1])
	if err != nil {
		return ocArgs{}, err
	}
	return ocArgs{Expiry: expiry, Side: side}, nil
}

// ivArgs are the validated arguments of the iv command.
type ivArgs struct {
	Sub    string    // "skew" or "surface"
	Expiry time.Time // skew only; zero means nearest available
	Res    int
	Range  float64
}

func parseIVArgs(args []string, flags map[string]string, defaultRes int, defaultRange float64) (ivArgs, error) {
	if len(args) < 1 {
		return ivArgs{}, fmt.Errorf("usage: iv <skew|surface> (expiry)")
	}
	out := ivArgs{Sub: args[0], Res: defaultRes, Range: defaultRange}

	switch out.Sub {
	case "skew":
		if len(args) > 1 {
			expiry, err := parseDate(args[1])
			if err != nil {
				return ivArgs{}, fmt.Errorf("%q is not a valid expiry date, use format 2006-01-02", args[1])
			}
			out.Expiry = expiry
		}
	case "surface":
		// flags only
	default:
		return ivArgs{}, fmt.Errorf("%q is not a valid sub-command, use 'skew' or 'surface'", out.Sub)
	}

	if v, ok := flags["res"]; ok {
		res, err := strconv.Atoi(v)
		if err != nil || res <= 0 {
			return ivArgs{}, fmt.Errorf("invalid res %q, must be a positive integer", v)
		}
		out.Res = res
	}
	if v, ok := flags["range"]; ok {
		rng, err := strconv.ParseFloat(v, 64)
		if err != nil || rng <= 0 || rng > 1 {
			return ivArgs{}, fmt.Errorf("invalid range %q, must be in (0, 1]", v)
		}
		out.Range = rng
	}
	return out, nil
}

// plotArgs are the validated arguments of the plot command.
type plotArgs struct {
	Index   string
	Columns []string // empty means all
	Title   string
	XLabel  string
	YLabel  string
	Grid    bool
	Legend  bool
}

func parsePlotArgs(args []string, flags map[string]string, defaultGrid, defaultLegend bool) (plotArgs, error) {
	if len(args) < 2 {
		return plotArgs{}, fmt.Errorf("usage: plot <index> <column(s) | all>")
	}
	out := plotArgs{
		Index:  args[0],
		Title:  flags["title"],
		XLabel: flags["xlabel"],
		YLabel: flags["ylabel"],
		Grid:   defaultGrid,
		Legend: defaultLegend,
	}
	if args[1] != "all" {
		out.Columns = args[1:]
	}
	if _, ok := flags["grid"]; ok {
		out.Grid = true
	}
	if _, ok := flags["legend"]; ok {
		out.Legend = true
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
