package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeBarsFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

// Bars come from the file, filtered to the requested date range, with
// the header and malformed rows skipped.
func TestLocalCSVGetBars(t *testing.T) {
	dir := t.TempDir()
	writeBarsFile(t, dir, "AAPL.csv",
		"date,open,high,low,close,volume\n"+
			"2024-01-02,186,188,185,187,1000\n"+
			"not-a-date,1,2,3,4,5\n"+
			"2024-01-03,187,189,186,188,1100\n"+
			"2024-02-15,190,191,189,190.5,900\n")

	lp := NewLocalCSVProvider(dir, nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	s, err := lp.GetBars("aapl", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 bars in range, got %d", s.Len())
	}
	if s.Last().Close != 188 {
		t.Fatalf("unexpected last close %f", s.Last().Close)
	}
}

// A missing file delegates to the secondary provider.
func TestLocalCSVFallsBack(t *testing.T) {
	lp := NewLocalCSVProvider(t.TempDir(), NewSyntheticProvider(42))

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	s, err := lp.GetBars("MSFT", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() == 0 {
		t.Fatalf("expected synthetic bars from the fallback")
	}
}

// Without a secondary, option data is simply unavailable.
func TestLocalCSVNoOptions(t *testing.T) {
	lp := NewLocalCSVProvider(t.TempDir(), nil)
	if _, err := lp.GetExpiries("AAPL"); err == nil {
		t.Fatalf("expected error without secondary")
	}
}
