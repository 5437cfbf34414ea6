// Package data provides market data provider implementations.
//
// Providers hand the volatility core fully parsed values: price series
// and option chain snapshots. Network concerns such as rate limits and
// retries stay inside the providers; the core never sees them.
package data

import (
	"fmt"
	"time"

	"github.com/contactkeval/volsuite/internal/vol"
)

// Provider supplies market data.
type Provider interface {
	// Secondary returns the fallback provider, if any.
	Secondary() Provider
	// GetBars returns daily bars for the symbol between the two dates.
	GetBars(symbol string, fromDate, toDate time.Time) (*vol.PriceSeries, error)
	// GetBarsPeriod returns daily bars for a named trailing period such
	// as "6mo" or "1y".
	GetBarsPeriod(symbol, period string) (*vol.PriceSeries, error)
	// GetLastPrice returns the most recent price of the symbol.
	GetLastPrice(symbol string) (float64, error)
	// GetExpiries returns the available option expiry dates, sorted.
	GetExpiries(symbol string) ([]time.Time, error)
	// GetOptionChain returns the quote snapshot for one expiry and side.
	GetOptionChain(symbol string, expiry time.Time, side vol.Side) (vol.OptionChain, error)
}

// periodDays maps the accepted trailing-period names to calendar day
// spans. "ytd" and "max" are resolved at call time.
var periodDays = map[string]int{
	"1d":  1,
	"5d":  5,
	"1mo": 30,
	"3mo": 91,
	"6mo": 182,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
	"10y": 3650,
}

// ValidPeriod reports whether period is an accepted trailing-period
// name.
func ValidPeriod(period string) bool {
	if period == "ytd" || period == "max" {
		return true
	}
	_, ok := periodDays[period]
	return ok
}

// PeriodRange resolves a trailing-period name into a concrete date
// range ending at now.
func PeriodRange(period string, now time.Time) (from, to time.Time, err error) {
	to = now
	switch period {
	case "ytd":
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case "max":
		from = now.AddDate(-30, 0, 0)
	default:
		days, ok := periodDays[period]
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
		}
		from = now.AddDate(0, 0, -days)
	}
	return from, to, nil
}
