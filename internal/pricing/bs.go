// Package pricing implements Black-Scholes option pricing and the
// inverse problem of backing an implied volatility out of a price.
// The synthetic data provider uses it to turn generated volatilities
// into self-consistent quote premiums.
package pricing

import (
	"fmt"
	"math"
)

const sqrt2Pi = 2.5066282746310002

// BlackScholesPrice returns the Black-Scholes price of a European
// option.
//
// Parameters:
//   - isCall: true for a call, false for a put
//   - S: spot price of the underlying
//   - K: strike
//   - T: time to expiry in years
//   - r: annual risk-free rate
//   - sigma: annual volatility as a decimal
//
// A non-positive T or sigma degenerates to intrinsic value.
func BlackScholesPrice(isCall bool, S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		if isCall {
			return math.Max(0, S-K)
		}
		return math.Max(0, K-S)
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if isCall {
		return S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*normCDF(-d1)
}

// BlackScholesVega returns the sensitivity of the option price to a
// change in volatility. Identical for calls and puts. Returns 0 when T
// or sigma is non-positive.
func BlackScholesVega(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return 0
	}
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return S * normPDF(d1) * math.Sqrt(T)
}

// ImpliedVol solves for the volatility that reproduces marketPrice under
// Black-Scholes, using Newton-Raphson with a 20% initial guess. Returns
// an error when the expiry is invalid or the iteration fails to
// converge, which happens for prices outside the no-arbitrage band.
func ImpliedVol(isCall bool, S, K, T, r, marketPrice float64) (float64, error) {
	if T <= 0 {
		return 0, fmt.Errorf("invalid expiry")
	}

	sigma := 0.20

	const (
		maxIter = 100
		tol     = 1e-6
	)

	for i := 0; i < maxIter; i++ {
		price := BlackScholesPrice(isCall, S, K, T, r, sigma)
		diff := price - marketPrice

		if math.Abs(diff) < tol {
			return sigma, nil
		}

		vega := BlackScholesVega(S, K, T, r, sigma)
		if vega < 1e-8 {
			break
		}

		sigma -= diff / vega

		// Guardrails
		if sigma <= 0 {
			sigma = 1e-4
		}
		if sigma > 5 {
			sigma = 5
		}
	}

	return 0, fmt.Errorf("implied vol did not converge")
}

// normPDF is the standard normal density at x.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF is the standard normal cumulative distribution at x, via the
// error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
