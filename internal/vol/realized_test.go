package vol

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/contactkeval/volsuite/internal/testutil"
)

func dailySeries(t *testing.T, closes []float64) *PriceSeries {
	t.Helper()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]PricePoint, len(closes))
	for i, c := range closes {
		points[i] = PricePoint{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	s, err := NewPriceSeries(points)
	if err != nil {
		t.Fatalf("building series: %v", err)
	}
	return s
}

// Constant closes have zero log returns, so every window is zero.
func TestComputeConstantPrices(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	s := dailySeries(t, closes)

	points, err := NewEngine().Compute(s, 10, MethodCloseToClose)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 20 {
		t.Fatalf("expected 30-10=20 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Vol != 0 {
			t.Fatalf("expected zero vol at %v, got %f", p.Time, p.Vol)
		}
	}
}

// The first output point belongs to the record at index window, never
// earlier.
func TestComputeWarmupAlignment(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105}
	s := dailySeries(t, closes)

	points, err := NewEngine().Compute(s, 3, MethodCloseToClose)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if !points[0].Time.Equal(s.At(3).Time) {
		t.Fatalf("first point at %v, expected %v", points[0].Time, s.At(3).Time)
	}
	if !points[len(points)-1].Time.Equal(s.Last().Time) {
		t.Fatalf("last point at %v, expected %v", points[len(points)-1].Time, s.Last().Time)
	}
}

// Alternating closes give returns of +a, -a; a two-return window has
// sample stdev a*sqrt(2), annualized by sqrt(252).
func TestComputeKnownValue(t *testing.T) {
	closes := []float64{100, 110, 100, 110, 100, 110}
	s := dailySeries(t, closes)

	points, err := NewEngine().Compute(s, 2, MethodCloseToClose)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Log(1.1) * math.Sqrt(2) * math.Sqrt(252)
	for _, p := range points {
		if !testutil.ApproxEqual(p.Vol, want, 1e-9) {
			t.Fatalf("expected vol %f, got %f", want, p.Vol)
		}
	}
}

func TestComputeWindowTooSmall(t *testing.T) {
	s := dailySeries(t, []float64{100, 101, 102})
	_, err := NewEngine().Compute(s, 1, MethodCloseToClose)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

// Too few records for even one full window is an empty result, not an
// error.
func TestComputeShortSeries(t *testing.T) {
	s := dailySeries(t, []float64{100, 101, 102})
	points, err := NewEngine().Compute(s, 5, MethodCloseToClose)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no points, got %d", len(points))
	}
}

func TestComputeNonPositiveClose(t *testing.T) {
	s := dailySeries(t, []float64{100, 101, 102, 103, 104})
	s.points[2].Close = 0

	_, err := NewEngine().Compute(s, 2, MethodCloseToClose)
	if !errors.Is(err, ErrInvalidPriceData) {
		t.Fatalf("expected ErrInvalidPriceData, got %v", err)
	}
}

// Bars with high == low carry no range information, so the range
// estimators report zero.
func TestRangeEstimatorsFlatBars(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 50
	}
	s := dailySeries(t, closes)

	for _, m := range []Method{MethodParkinson, MethodGarmanKlass} {
		points, err := NewEngine().Compute(s, 5, m)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
		if len(points) != 15 {
			t.Fatalf("%s: expected 15 points, got %d", m, len(points))
		}
		for _, p := range points {
			if p.Vol != 0 {
				t.Fatalf("%s: expected zero vol, got %f", m, p.Vol)
			}
		}
	}
}

func TestWholePeriodShortSeries(t *testing.T) {
	s := dailySeries(t, []float64{100, 101})
	v, err := NewEngine().WholePeriod(s, MethodCloseToClose)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Fatalf("expected zero vol, got %f", v)
	}
}

func TestNewEngineWithPeriodsRejectsNonPositive(t *testing.T) {
	if _, err := NewEngineWithPeriods(0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestParseMethod(t *testing.T) {
	cases := []struct {
		in   string
		want Method
		ok   bool
	}{
		{"close", MethodCloseToClose, true},
		{"parkinson", MethodParkinson, true},
		{"gk", MethodGarmanKlass, true},
		{"yang-zhang", 0, false},
	}
	for _, c := range cases {
		got, err := ParseMethod(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("ParseMethod(%q) = %v, %v", c.in, got, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseMethod(%q) should fail", c.in)
		}
	}
}
