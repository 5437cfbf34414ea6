package pricing

import (
	"math"
	"testing"
)

// Simple sanity check: ATM call should have non-zero value
func TestBlackScholesCallBasic(t *testing.T) {
	call := BlackScholesPrice(true, 100, 100, 30.0/365.0, 0.05, 0.20)
	if call <= 0 {
		t.Fatalf("expected call price > 0, got %f", call)
	}
}

// Put-call parity check
func TestBlackScholesPutCallParity(t *testing.T) {
	S, K, T, r, sigma := 100.0, 100.0, 45.0/365.0, 0.03, 0.25

	call := BlackScholesPrice(true, S, K, T, r, sigma)
	put := BlackScholesPrice(false, S, K, T, r, sigma)

	lhs := call - put
	rhs := S - K*math.Exp(-r*T)

	if math.Abs(lhs-rhs) > 1e-6 {
		t.Fatalf("put-call parity violated: LHS=%f RHS=%f", lhs, rhs)
	}
}

// Expired options collapse to intrinsic value for both sides.
func TestBlackScholesExpired(t *testing.T) {
	if got := BlackScholesPrice(true, 110, 100, 0, 0.05, 0.2); got != 10 {
		t.Fatalf("expected call intrinsic 10, got %f", got)
	}
	if got := BlackScholesPrice(false, 90, 100, 0, 0.05, 0.2); got != 10 {
		t.Fatalf("expected put intrinsic 10, got %f", got)
	}
}

// Pricing at a known sigma and inverting the price should recover it.
func TestImpliedVolRoundTrip(t *testing.T) {
	S, K, T, r := 100.0, 105.0, 60.0/365.0, 0.04

	for _, sigma := range []float64{0.15, 0.30, 0.60} {
		price := BlackScholesPrice(true, S, K, T, r, sigma)
		got, err := ImpliedVol(true, S, K, T, r, price)
		if err != nil {
			t.Fatalf("sigma %f: unexpected error: %v", sigma, err)
		}
		if math.Abs(got-sigma) > 1e-4 {
			t.Fatalf("sigma %f: recovered %f", sigma, got)
		}
	}
}
