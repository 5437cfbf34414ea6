package dispatcher

import (
	"testing"
	"time"

	"github.com/contactkeval/volsuite/internal/vol"
)

func TestParseRangeArgsPeriod(t *testing.T) {
	rng, err := parseRangeArgs([]string{"6mo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rng.Period != "6mo" || rng.label() != "6mo" {
		t.Fatalf("unexpected range %+v", rng)
	}
}

// Reversed dates are swapped instead of rejected.
func TestParseRangeArgsSwapsDates(t *testing.T) {
	rng, err := parseRangeArgs([]string{"2024-06-01", "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rng.Start.Before(rng.End) {
		t.Fatalf("expected swapped dates, got %v .. %v", rng.Start, rng.End)
	}
	if rng.label() != "2024-01-01_2024-06-01" {
		t.Fatalf("unexpected label %q", rng.label())
	}
}

func TestParseRangeArgsRejectsGarbage(t *testing.T) {
	if _, err := parseRangeArgs([]string{"fortnight"}); err == nil {
		t.Fatalf("expected invalid period error")
	}
	if _, err := parseRangeArgs([]string{"2024-01-01"}); err == nil {
		t.Fatalf("expected missing end date error")
	}
}

func TestParseHVArgs(t *testing.T) {
	a, err := parseHVArgs([]string{"gk", "1y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Method != vol.MethodGarmanKlass || a.Range.Period != "1y" {
		t.Fatalf("unexpected args %+v", a)
	}

	if _, err := parseHVArgs([]string{"1y"}); err == nil {
		t.Fatalf("expected usage error for missing method")
	}
}

func TestParseIVArgsFlags(t *testing.T) {
	a, err := parseIVArgs([]string{"surface"}, map[string]string{"res": "40", "range": "0.1"}, 25, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Res != 40 || a.Range != 0.1 {
		t.Fatalf("unexpected args %+v", a)
	}

	if _, err := parseIVArgs([]string{"surface"}, map[string]string{"range": "2"}, 25, 0.2); err == nil {
		t.Fatalf("expected out-of-range error")
	}
	if _, err := parseIVArgs([]string{"smile"}, nil, 25, 0.2); err == nil {
		t.Fatalf("expected unknown sub-command error")
	}
}

func TestParseIVArgsSkewExpiry(t *testing.T) {
	a, err := parseIVArgs([]string{"skew", "2026-09-18"}, nil, 25, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
	if !a.Expiry.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, a.Expiry)
	}
}
