// Package dispatcher implements the interactive command loop. It owns
// all free-form input parsing and all terminal output: commands are
// tokenized into typed argument structs, validated, and only then
// passed to the data providers and the volatility core. Core error
// kinds are translated to terminal messages here.
package dispatcher

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/contactkeval/volsuite/internal/data"
	"github.com/contactkeval/volsuite/internal/frame"
	"github.com/contactkeval/volsuite/internal/logger"
	"github.com/contactkeval/volsuite/internal/session"
	"github.com/contactkeval/volsuite/internal/vol"
)

// Dispatcher runs the interactive session.
type Dispatcher struct {
	prov    data.Provider
	sess    *session.Session
	out     io.Writer
	engine  *vol.Engine
	builder *vol.SurfaceBuilder
}

// New returns a dispatcher bound to a provider, session and output
// writer.
func New(prov data.Provider, sess *session.Session, out io.Writer) *Dispatcher {
	return &Dispatcher{
		prov:    prov,
		sess:    sess,
		out:     out,
		engine:  vol.NewEngine(),
		builder: vol.NewSurfaceBuilder(),
	}
}

// Run reads commands from r until EOF or quit.
func (d *Dispatcher) Run(r io.Reader) error {
	fmt.Fprintln(d.out, "Welcome to VolSuite. Enter 'ticker <symbol>' or 'help' to get started.")

	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(d.out, d.prompt())
		if !sc.Scan() {
			fmt.Fprintln(d.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if d.Execute(line) {
			return nil
		}
	}
}

func (d *Dispatcher) prompt() string {
	now := time.Now().Format("15:04:05")
	if d.sess.HasTicker() {
		return fmt.Sprintf("[%s] %s > ", now, d.sess.Ticker)
	}
	return fmt.Sprintf("[%s] > ", now)
}

// Execute dispatches one command line. Returns true when the session
// should end.
func (d *Dispatcher) Execute(line string) (quit bool) {
	args, flags, err := ParseLine(line)
	if err != nil {
		d.errorf("%v", err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		d.cmdHelp(rest)
	case "ticker":
		d.report(d.cmdTicker(rest))
	case "history":
		d.report(d.cmdHistory(rest))
	case "hv":
		d.report(d.cmdHV(rest))
	case "oc":
		d.report(d.cmdOC(rest))
	case "iv":
		d.report(d.cmdIV(rest, flags))
	case "last":
		d.report(d.cmdLast())
	case "export":
		d.report(d.cmdExport(rest))
	case "import":
		d.report(d.cmdImport(rest))
	case "config":
		d.report(d.cmdConfig(rest))
	case "plot":
		d.report(d.cmdPlot(rest, flags))
	default:
		d.errorf("'%s' is not a recognized command, type 'help' for a list of available commands", cmd)
	}
	return false
}

func (d *Dispatcher) report(err error) {
	if err != nil {
		d.errorf("%v", err)
	}
}

func (d *Dispatcher) errorf(format string, args ...any) {
	fmt.Fprintf(d.out, "Error: "+format+"\n", args...)
}

// show caches a frame as the session's active result and renders it.
func (d *Dispatcher) show(f *frame.Frame) error {
	d.sess.Cache(f)
	fmt.Fprintln(d.out)
	if err := f.Render(d.out, d.sess.Config.DisplayMaxRows); err != nil {
		return err
	}
	fmt.Fprintln(d.out)
	return nil
}

func (d *Dispatcher) requireTicker() error {
	if !d.sess.HasTicker() {
		return fmt.Errorf("no ticker selected, specify one using 'ticker <symbol>'")
	}
	return nil
}

func (d *Dispatcher) fetchBars(rng rangeArgs) (*vol.PriceSeries, error) {
	if rng.Period != "" {
		return d.prov.GetBarsPeriod(d.sess.Ticker, rng.Period)
	}
	return d.prov.GetBars(d.sess.Ticker, rng.Start, rng.End)
}

func (d *Dispatcher) cmdTicker(args []string) error {
	if len(args) == 0 {
		if d.sess.HasTicker() {
			fmt.Fprintf(d.out, "Current ticker is set to: $%s\n", d.sess.Ticker)
		} else {
			fmt.Fprintln(d.out, "No ticker selected.")
		}
		return nil
	}

	symbol := strings.ToUpper(args[0])
	price, err := d.prov.GetLastPrice(symbol)
	if err != nil {
		return fmt.Errorf("unable to fetch data for symbol '%s': %w", symbol, err)
	}
	d.sess.Ticker = symbol
	fmt.Fprintf(d.out, "Ticker symbol '$%s' loaded (last price %.2f).\n", symbol, price)
	return nil
}

func (d *Dispatcher) cmdHistory(args []string) error {
	if err := d.requireTicker(); err != nil {
		return err
	}
	rng, err := parseRangeArgs(args)
	if err != nil {
		return err
	}

	series, err := d.fetchBars(rng)
	if err != nil {
		return err
	}

	f := frame.FromBars(frame.Attrs{
		Ticker:   d.sess.Ticker,
		Period:   rng.label(),
		Datatype: "history",
	}, series)
	return d.show(f)
}

func (d *Dispatcher) cmdHV(args []string) error {
	if err := d.requireTicker(); err != nil {
		return err
	}
	a, err := parseHVArgs(args)
	if err != nil {
		return err
	}

	series, err := d.fetchBars(a.Range)
	if err != nil {
		return err
	}

	windows := d.sess.Config.HVRollingWindows
	results := make([][]vol.RollingVolPoint, len(windows))
	for i, w := range windows {
		points, err := d.engine.Compute(series, w, a.Method)
		if err != nil {
			return err
		}
		results[i] = points
	}
	whole, err := d.engine.WholePeriod(series, a.Method)
	if err != nil {
		return err
	}

	f := frame.FromRollingVol(frame.Attrs{
		Ticker:   d.sess.Ticker,
		Period:   a.Range.label(),
		Datatype: "hv_" + a.Method.String(),
	}, a.Method, windows, results)
	if err := d.show(f); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Realized volatility over whole period: %.6f\n\n", whole)
	return nil
}

func (d *Dispatcher) cmdOC(args []string) error {
	if err := d.requireTicker(); err != nil {
		return err
	}
	a, err := parseOCArgs(args)
	if err != nil {
		return err
	}

	chain, err := d.prov.GetOptionChain(d.sess.Ticker, a.Expiry, a.Side)
	if err != nil {
		return err
	}

	f := frame.FromChain(frame.Attrs{
		Ticker:   d.sess.Ticker,
		Period:   a.Expiry.Format("2006-01-02"),
		Datatype: "oc_" + a.Side.String(),
	}, chain)
	return d.show(f)
}

func (d *Dispatcher) cmdIV(args []string, flags map[string]string) error {
	if err := d.requireTicker(); err != nil {
		return err
	}
	a, err := parseIVArgs(args, flags, d.sess.Config.IVSurfaceRes, d.sess.Config.IVSurfaceRange)
	if err != nil {
		return err
	}

	if a.Sub == "skew" {
		return d.ivSkew(a)
	}
	return d.ivSurface(a)
}

// ivSkew builds the OTM skew for one expiry from both sides of the
// chain.
func (d *Dispatcher) ivSkew(a ivArgs) error {
	expiry := a.Expiry
	if expiry.IsZero() {
		nearest, err := d.nearestExpiry()
		if err != nil {
			return err
		}
		expiry = nearest
		logger.Debugf("no expiry given, using nearest %s", expiry.Format("2006-01-02"))
	}

	merged := vol.SkewCurve{Expiry: expiry}
	for _, side := range []vol.Side{vol.SidePut, vol.SideCall} {
		chain, err := d.prov.GetOptionChain(d.sess.Ticker, expiry, side)
		if err != nil {
			return err
		}
		skew, err := vol.BuildSkew(vol.FilterOTM(chain), vol.SkewOptions{})
		if err != nil {
			return err
		}
		merged = merged.Merge(skew)
	}

	if len(merged.Points) == 0 {
		fmt.Fprintf(d.out, "No usable OTM quotes for expiry %s.\n", expiry.Format("2006-01-02"))
	}

	f := frame.FromSkew(frame.Attrs{
		Ticker:   d.sess.Ticker,
		Period:   expiry.Format("2006-01-02"),
		Datatype: "iv_skew",
	}, merged)
	return d.show(f)
}

// ivSurface assembles the surface across every available expiry. The
// range flag trims the displayed moneyness band around spot; res is
// accepted for parity with graphical renderers and ignored by the text
// table.
func (d *Dispatcher) ivSurface(a ivArgs) error {
	expiries, err := d.prov.GetExpiries(d.sess.Ticker)
	if err != nil {
		return err
	}
	if len(expiries) == 0 {
		return fmt.Errorf("no option expiries available for %s", d.sess.Ticker)
	}

	var chains []vol.OptionChain
	for _, expiry := range expiries {
		for _, side := range []vol.Side{vol.SidePut, vol.SideCall} {
			chain, err := d.prov.GetOptionChain(d.sess.Ticker, expiry, side)
			if err != nil {
				logger.Infof("skipping %s %s: %v", expiry.Format("2006-01-02"), side, err)
				continue
			}
			chains = append(chains, chain)
		}
	}

	surf, err := d.builder.Build(time.Now().UTC(), chains)
	if err != nil {
		return err
	}
	for _, warn := range surf.Warnings() {
		fmt.Fprintf(d.out, "Warning: %s: %s\n", warn.Expiry.Format("2006-01-02"), warn.Message)
	}

	f := frame.FromSurface(frame.Attrs{
		Ticker:   d.sess.Ticker,
		Period:   time.Now().Format("2006-01-02"),
		Datatype: "iv_surface",
	}, surf, 1-a.Range, 1+a.Range)
	return d.show(f)
}

func (d *Dispatcher) nearestExpiry() (time.Time, error) {
	expiries, err := d.prov.GetExpiries(d.sess.Ticker)
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now().UTC()
	for _, e := range expiries {
		if !e.Before(now) {
			return e, nil
		}
	}
	return time.Time{}, fmt.Errorf("no upcoming option expiries for %s", d.sess.Ticker)
}

func (d *Dispatcher) cmdLast() error {
	if d.sess.Last == nil {
		return fmt.Errorf("no cached data, run a data command first")
	}
	fmt.Fprintln(d.out)
	if err := d.sess.Last.Render(d.out, d.sess.Config.DisplayMaxRows); err != nil {
		return err
	}
	fmt.Fprintln(d.out)
	return nil
}

func (d *Dispatcher) cmdExport(args []string) error {
	f := d.sess.Last
	if f == nil {
		return fmt.Errorf("no cached data to export")
	}

	filename := f.DefaultFilename()
	if len(args) > 0 {
		filename = args[0]
		if filepath.Ext(filename) == "" {
			filename += ".csv"
		}
	}

	path := filepath.Join(d.sess.Config.ExportFolder, filename)
	if err := f.WriteCSVFile(path); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Data successfully saved to '%s'.\n", path)
	return nil
}

func (d *Dispatcher) cmdImport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: import <filepath>")
	}
	f, err := frame.ReadCSVFile(args[0])
	if err != nil {
		return fmt.Errorf("no such file or directory '%s'", args[0])
	}
	d.sess.Cache(f)
	fmt.Fprintf(d.out, "Successfully loaded '%s' into cache as last output.\n", args[0])
	return nil
}

func (d *Dispatcher) cmdConfig(args []string) error {
	cfg := d.sess.Config

	if len(args) == 0 {
		for _, key := range cfg.Keys() {
			value, _ := cfg.Get(key)
			fmt.Fprintf(d.out, "%-20s %s\n", key, value)
		}
		return nil
	}

	if args[0] == "reset" {
		if err := cfg.Reset(d.sess.ConfigPath); err != nil {
			return err
		}
		fmt.Fprintln(d.out, "Configuration has been reset to default settings.")
		return nil
	}

	key := args[0]
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "'%s' is currently set to: '%s'\n", key, value)
		return nil
	}

	if err := cfg.Set(key, args[1]); err != nil {
		return err
	}
	if err := cfg.Save(d.sess.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "'%s' is now set to: '%s'\n", key, args[1])
	return nil
}

func (d *Dispatcher) cmdPlot(args []string, flags map[string]string) error {
	f := d.sess.Last
	if f == nil {
		return fmt.Errorf("no cached data to plot")
	}
	a, err := parsePlotArgs(args, flags, d.sess.Config.PlotGrid, d.sess.Config.PlotLegend)
	if err != nil {
		return err
	}
	return d.plotFrame(f, a)
}

var helpText = map[string]string{
	"ticker":  "ticker (<symbol>) - set the session ticker, or show the current one.",
	"history": "history <period | startdate enddate> - print historical OHLCV bars.",
	"hv":      "hv <close|parkinson|gk> <period | startdate enddate> - rolling realized volatility.",
	"oc":      "oc <expiry> <calls|puts> - print the option chain for an expiry.",
	"iv":      "iv <skew|surface> (expiry) - implied volatility skew or surface. Flags: --res=<int> --range=<float>.",
	"last":    "last - print the cached result of the previous data command.",
	"export":  "export (<filename>) - save the cached result as CSV in the export folder.",
	"import":  "import <filepath> - load an external CSV into the cache.",
	"config":  "config (<key>) (<value>) | config reset - view or edit configuration.",
	"plot":    "plot <index> <column(s) | all> - plot cached columns. Flags: --title= --xlabel= --ylabel= -grid -legend.",
	"quit":    "quit - exit the session.",
}

func (d *Dispatcher) cmdHelp(args []string) {
	if len(args) > 0 {
		if text, ok := helpText[args[0]]; ok {
			fmt.Fprintln(d.out, text)
			return
		}
		d.errorf("no help for '%s'", args[0])
		return
	}
	fmt.Fprintln(d.out, "Available commands:")
	for _, cmd := range []string{"ticker", "history", "hv", "oc", "iv", "last", "export", "import", "config", "plot", "quit"} {
		fmt.Fprintf(d.out, "  %s\n", helpText[cmd])
	}
}
