package vol

import (
	"fmt"
	"sort"
	"time"
)

// SkewPoint is one (moneyness, implied volatility) observation.
type SkewPoint struct {
	Moneyness  float64
	ImpliedVol float64
}

// SkewCurve is the implied volatility skew for a single expiry: points
// sorted ascending by moneyness, one per usable OTM quote. An empty
// curve is a valid value, not a failure.
type SkewCurve struct {
	Expiry time.Time
	Points []SkewPoint
}

// SkewOptions configures BuildSkew.
type SkewOptions struct {
	// RequireQuotes makes BuildSkew fail with ErrEmptyChain when the
	// filtered chain has no usable quotes. Off by default: an empty
	// curve is normally an acceptable result.
	RequireQuotes bool
}

// BuildSkew consumes an already-filtered chain and produces its skew
// curve. Moneyness is the plain ratio strike/underlying, the same
// convention for calls and puts, so curves from both sides line up on
// one axis. Points come out sorted ascending by moneyness, equal
// moneyness broken by strike ascending.
func BuildSkew(chain OptionChain, opts SkewOptions) (SkewCurve, error) {
	curve := SkewCurve{Expiry: chain.Expiry}

	if len(chain.Quotes) == 0 {
		if opts.RequireQuotes {
			return curve, fmt.Errorf("%w: no quotes for expiry %s", ErrEmptyChain, chain.Expiry.Format("2006-01-02"))
		}
		return curve, nil
	}

	if chain.Underlying <= 0 {
		return curve, fmt.Errorf("%w: non-positive underlying price %g", ErrInvalidPriceData, chain.Underlying)
	}

	type rec struct {
		point  SkewPoint
		strike float64
	}
	recs := make([]rec, 0, len(chain.Quotes))
	for _, q := range chain.Quotes {
		if !q.Usable() {
			continue
		}
		recs = append(recs, rec{
			point:  SkewPoint{Moneyness: q.Strike / chain.Underlying, ImpliedVol: q.ImpliedVol},
			strike: q.Strike,
		})
	}

	if len(recs) == 0 && opts.RequireQuotes {
		return curve, fmt.Errorf("%w: no usable quotes for expiry %s", ErrEmptyChain, chain.Expiry.Format("2006-01-02"))
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].point.Moneyness != recs[j].point.Moneyness {
			return recs[i].point.Moneyness < recs[j].point.Moneyness
		}
		return recs[i].strike < recs[j].strike
	})

	curve.Points = make([]SkewPoint, len(recs))
	for i, r := range recs {
		curve.Points[i] = r.point
	}
	return curve, nil
}

// Merge combines the points of two curves for the same expiry into one
// sorted curve. Used when call and put snapshots cover the same expiry:
// their OTM regions are disjoint, so merging never mixes sides at a
// strike.
func (c SkewCurve) Merge(other SkewCurve) SkewCurve {
	out := SkewCurve{Expiry: c.Expiry}
	out.Points = make([]SkewPoint, 0, len(c.Points)+len(other.Points))
	out.Points = append(out.Points, c.Points...)
	out.Points = append(out.Points, other.Points...)
	sort.Slice(out.Points, func(i, j int) bool {
		return out.Points[i].Moneyness < out.Points[j].Moneyness
	})
	return out
}
