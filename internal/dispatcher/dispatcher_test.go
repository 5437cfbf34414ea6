package dispatcher

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contactkeval/volsuite/internal/config"
	"github.com/contactkeval/volsuite/internal/data"
	"github.com/contactkeval/volsuite/internal/session"
)

func testDispatcher(t *testing.T) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ExportFolder = filepath.Join(dir, "exports")

	sess := session.New(cfg, filepath.Join(dir, "volsuite.yaml"))
	var buf bytes.Buffer
	return New(data.NewSyntheticProvider(42), sess, &buf), &buf
}

func TestExecuteRequiresTicker(t *testing.T) {
	d, buf := testDispatcher(t)

	d.Execute("history 6mo")
	if !strings.Contains(buf.String(), "no ticker selected") {
		t.Fatalf("expected ticker error, got:\n%s", buf.String())
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	d, buf := testDispatcher(t)

	d.Execute("frobnicate")
	if !strings.Contains(buf.String(), "not a recognized command") {
		t.Fatalf("expected unknown command error, got:\n%s", buf.String())
	}
}

// ticker, history and hv run end to end against the synthetic provider
// and leave the result cached for export.
func TestExecuteHVFlow(t *testing.T) {
	d, buf := testDispatcher(t)

	d.Execute("ticker aapl")
	if d.sess.Ticker != "AAPL" {
		t.Fatalf("expected uppercased ticker, got %q", d.sess.Ticker)
	}

	buf.Reset()
	d.Execute("hv close 1y")
	out := buf.String()
	if strings.Contains(out, "Error:") {
		t.Fatalf("hv failed:\n%s", out)
	}
	if !strings.Contains(out, "Realized volatility over whole period") {
		t.Fatalf("missing whole-period line:\n%s", out)
	}
	if d.sess.Last == nil || d.sess.Last.ColumnIndex("20d_close") < 0 {
		t.Fatalf("expected cached hv frame with default windows, got %+v", d.sess.Last)
	}

	buf.Reset()
	d.Execute("export")
	if !strings.Contains(buf.String(), "successfully saved") {
		t.Fatalf("export failed:\n%s", buf.String())
	}

	path := filepath.Join(d.sess.Config.ExportFolder, d.sess.Last.DefaultFilename())
	buf.Reset()
	d.Execute("import " + path)
	if !strings.Contains(buf.String(), "Successfully loaded") {
		t.Fatalf("import failed:\n%s", buf.String())
	}
}

func TestExecuteIVSkew(t *testing.T) {
	d, buf := testDispatcher(t)
	d.Execute("ticker spy")

	buf.Reset()
	d.Execute("iv skew")
	out := buf.String()
	if strings.Contains(out, "Error:") {
		t.Fatalf("iv skew failed:\n%s", out)
	}
	if d.sess.Last == nil || d.sess.Last.ColumnIndex("moneyness") < 0 {
		t.Fatalf("expected cached skew frame")
	}
	if d.sess.Last.Empty() {
		t.Fatalf("expected skew points from the synthetic smile")
	}

	// moneyness sorted ascending across the merged put and call sides
	vals, err := d.sess.Last.ColumnFloats("moneyness")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			t.Fatalf("moneyness not sorted at row %d", i)
		}
	}
}

func TestExecuteIVSurface(t *testing.T) {
	d, buf := testDispatcher(t)
	d.Execute("ticker qqq")

	buf.Reset()
	d.Execute("iv surface --range=0.1")
	out := buf.String()
	if strings.Contains(out, "Error:") {
		t.Fatalf("iv surface failed:\n%s", out)
	}
	f := d.sess.Last
	if f == nil || f.ColumnIndex("dte") < 0 {
		t.Fatalf("expected cached surface frame")
	}

	vals, err := f.ColumnFloats("moneyness")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) == 0 {
		t.Fatalf("expected surface rows")
	}
	for i, m := range vals {
		if m < 0.9-1e-9 || m > 1.1+1e-9 {
			t.Fatalf("row %d outside range flag: moneyness %f", i, m)
		}
	}
}

func TestExecuteConfigSetAndGet(t *testing.T) {
	d, buf := testDispatcher(t)

	d.Execute("config display_max_rows 10")
	if d.sess.Config.DisplayMaxRows != 10 {
		t.Fatalf("expected 10, got %d", d.sess.Config.DisplayMaxRows)
	}

	buf.Reset()
	d.Execute("config display_max_rows")
	if !strings.Contains(buf.String(), "'10'") {
		t.Fatalf("expected value echo, got:\n%s", buf.String())
	}

	buf.Reset()
	d.Execute("config display_max_rows lots")
	if !strings.Contains(buf.String(), "Error:") {
		t.Fatalf("expected invalid value error, got:\n%s", buf.String())
	}
}

func TestExecuteQuit(t *testing.T) {
	d, _ := testDispatcher(t)
	if !d.Execute("quit") {
		t.Fatalf("quit should end the session")
	}
	if d.Execute("ticker aapl") {
		t.Fatalf("ticker should not end the session")
	}
}

func TestExecutePlotCachedFrame(t *testing.T) {
	d, buf := testDispatcher(t)
	d.Execute("ticker aapl")
	d.Execute("history 3mo")

	buf.Reset()
	d.Execute("plot date close --title=Closes -legend")
	out := buf.String()
	if strings.Contains(out, "Error:") {
		t.Fatalf("plot failed:\n%s", out)
	}
	if !strings.Contains(out, "Closes") || !strings.Contains(out, "* = close") {
		t.Fatalf("expected title and legend, got:\n%s", out)
	}
}
