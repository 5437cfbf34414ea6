// Package vol is the volatility computation core: rolling realized
// volatility over a price series, out-of-the-money option filtering,
// skew-curve construction per expiry, and multi-expiry surface assembly.
//
// All computations here are pure functions over immutable value inputs.
// Fetching quotes, parsing commands, rendering, and caching results live
// outside this package and hand in already-parsed values.
package vol

import (
	"fmt"
	"time"
)

// PricePoint is a single OHLCV observation.
type PricePoint struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ordered, time-indexed sequence of price observations.
// Immutable once constructed.
type PriceSeries struct {
	points []PricePoint
}

// NewPriceSeries constructs a PriceSeries from observations in
// chronological order. Timestamps must be strictly increasing; duplicate
// or out-of-order timestamps are rejected.
func NewPriceSeries(points []PricePoint) (*PriceSeries, error) {
	for i := 1; i < len(points); i++ {
		if !points[i].Time.After(points[i-1].Time) {
			return nil, fmt.Errorf(
				"%w: timestamps must be strictly increasing (index %d: %s after %s)",
				ErrInvalidParameter,
				i,
				points[i].Time.Format("2006-01-02 15:04"),
				points[i-1].Time.Format("2006-01-02 15:04"),
			)
		}
	}

	cp := make([]PricePoint, len(points))
	copy(cp, points)
	return &PriceSeries{points: cp}, nil
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// At returns the observation at index i.
func (s *PriceSeries) At(i int) PricePoint { return s.points[i] }

// Points returns a copy of all observations.
func (s *PriceSeries) Points() []PricePoint {
	cp := make([]PricePoint, len(s.points))
	copy(cp, s.points)
	return cp
}

// First returns the earliest observation.
func (s *PriceSeries) First() PricePoint { return s.points[0] }

// Last returns the latest observation.
func (s *PriceSeries) Last() PricePoint { return s.points[len(s.points)-1] }
