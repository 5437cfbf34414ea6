package vol

import (
	"errors"
	"testing"
	"time"
)

func surfaceChains(asOf time.Time, expiries ...time.Time) []OptionChain {
	var chains []OptionChain
	for _, e := range expiries {
		chains = append(chains,
			OptionChain{
				Underlying: 100, Expiry: e, Side: SideCall,
				Quotes: []OptionQuote{
					{Strike: 105, ImpliedVol: 0.25, Expiry: e, Side: SideCall},
					{Strike: 110, ImpliedVol: 0.27, Expiry: e, Side: SideCall},
				},
			},
			OptionChain{
				Underlying: 100, Expiry: e, Side: SidePut,
				Quotes: []OptionQuote{
					{Strike: 90, ImpliedVol: 0.32, Expiry: e, Side: SidePut},
					{Strike: 95, ImpliedVol: 0.29, Expiry: e, Side: SidePut},
				},
			},
		)
	}
	return chains
}

// N expiries of usable quotes become N curves in chronological order,
// each merging both sides.
func TestSurfaceBuildBasic(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	e1 := asOf.AddDate(0, 0, 7)
	e2 := asOf.AddDate(0, 0, 14)
	e3 := asOf.AddDate(0, 0, 28)

	// deliberately out of order
	surf, err := NewSurfaceBuilder().Build(asOf, surfaceChains(asOf, e2, e3, e1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expiries := surf.Expiries()
	if len(expiries) != 3 {
		t.Fatalf("expected 3 expiries, got %d", len(expiries))
	}
	for i, want := range []time.Time{e1, e2, e3} {
		if !expiries[i].Equal(want) {
			t.Fatalf("expiry %d: got %v, want %v", i, expiries[i], want)
		}
	}
	for _, c := range surf.Curves() {
		if len(c.Points) != 4 {
			t.Fatalf("expiry %v: expected 4 merged points, got %d", c.Expiry, len(c.Points))
		}
	}
	if len(surf.Warnings()) != 0 {
		t.Fatalf("unexpected warnings: %v", surf.Warnings())
	}
}

// One dead expiry is a warning plus an empty curve, never a failure.
func TestSurfaceBuildPartialFailure(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	good := asOf.AddDate(0, 0, 7)
	dead := asOf.AddDate(0, 0, 14)

	chains := surfaceChains(asOf, good)
	chains = append(chains, OptionChain{
		Underlying: 100, Expiry: dead, Side: SideCall,
		Quotes: []OptionQuote{{Strike: 105, ImpliedVol: 0, Expiry: dead, Side: SideCall}},
	})

	surf, err := NewSurfaceBuilder().Build(asOf, chains)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(surf.Curves()) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(surf.Curves()))
	}
	if len(surf.Warnings()) == 0 {
		t.Fatalf("expected a warning for the dead expiry")
	}
	if c, ok := surf.Curve(dead); !ok || len(c.Points) != 0 {
		t.Fatalf("expected empty curve for dead expiry, got %v", c.Points)
	}
}

// Zero usable expiries is the only fatal outcome.
func TestSurfaceBuildAllEmpty(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	e := asOf.AddDate(0, 0, 7)
	chains := []OptionChain{{
		Underlying: 100, Expiry: e, Side: SideCall,
		Quotes: []OptionQuote{{Strike: 105, ImpliedVol: 0, Expiry: e, Side: SideCall}},
	}}

	_, err := NewSurfaceBuilder().Build(asOf, chains)
	if !errors.Is(err, ErrEmptyChain) {
		t.Fatalf("expected ErrEmptyChain, got %v", err)
	}
}

func TestSurfaceBuildNoChains(t *testing.T) {
	_, err := NewSurfaceBuilder().Build(time.Now(), nil)
	if !errors.Is(err, ErrEmptyChain) {
		t.Fatalf("expected ErrEmptyChain, got %v", err)
	}
}

// Expiries before the snapshot date are dropped with a warning and do
// not appear as curves.
func TestSurfaceBuildRetroactiveExpiry(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	past := asOf.AddDate(0, 0, -7)
	future := asOf.AddDate(0, 0, 7)

	surf, err := NewSurfaceBuilder().Build(asOf, surfaceChains(asOf, past, future))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(surf.Curves()) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(surf.Curves()))
	}
	if _, ok := surf.Curve(past); ok {
		t.Fatalf("retroactive expiry should be dropped")
	}
	if len(surf.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(surf.Warnings()))
	}
}

func TestNewSurfaceBuilderWithWorkersRejectsZero(t *testing.T) {
	if _, err := NewSurfaceBuilderWithWorkers(0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

// Grid flattens every curve point with a positive time to expiry.
func TestSurfaceGrid(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	e := asOf.AddDate(0, 0, 7)

	surf, err := NewSurfaceBuilder().Build(asOf, surfaceChains(asOf, e))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	grid := surf.Grid()
	if len(grid) != 4 {
		t.Fatalf("expected 4 grid points, got %d", len(grid))
	}
	for _, p := range grid {
		if p.TimeToExpiry <= 0 {
			t.Fatalf("expected positive time to expiry, got %f", p.TimeToExpiry)
		}
	}
}
