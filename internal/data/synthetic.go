package data

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/contactkeval/volsuite/internal/pricing"
	"github.com/contactkeval/volsuite/internal/vol"
)

// syntheticProvider implements Provider with generated data, for offline
// use and tests. Output is deterministic for a given seed and symbol.
type syntheticProvider struct {
	seed      int64
	secondary Provider
}

// NewSyntheticProvider returns a provider generating deterministic
// synthetic bars and option chains.
func NewSyntheticProvider(seed int64) Provider {
	return &syntheticProvider{seed: seed}
}

func (sp *syntheticProvider) Secondary() Provider { return sp.secondary }

// rng returns a source keyed by seed and symbol so repeated calls for
// the same symbol replay the same data.
func (sp *syntheticProvider) rng(symbol string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return rand.New(rand.NewSource(sp.seed ^ int64(h.Sum64())))
}

// basePrice derives a stable starting price from the symbol.
func (sp *syntheticProvider) basePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 50.0 + float64(h.Sum32()%400)
}

// GetBars generates a geometric random walk of daily bars, weekends
// skipped.
func (sp *syntheticProvider) GetBars(symbol string, fromDate, toDate time.Time) (*vol.PriceSeries, error) {
	r := sp.rng(symbol)
	price := sp.basePrice(symbol)

	var points []vol.PricePoint
	cur := fromDate
	for !cur.After(toDate) {
		if cur.Weekday() != time.Saturday && cur.Weekday() != time.Sunday {
			delta := r.NormFloat64() * 0.01 * price
			open := price
			close := price + delta
			high := math.Max(open, close) + math.Abs(r.NormFloat64()*0.3)
			low := math.Min(open, close) - math.Abs(r.NormFloat64()*0.3)
			if low <= 0 {
				low = math.Min(open, close) * 0.99
			}
			points = append(points, vol.PricePoint{
				Time:   cur,
				Open:   open,
				High:   high,
				Low:    low,
				Close:  close,
				Volume: float64(1000 + r.Intn(5000)),
			})
			price = close
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return vol.NewPriceSeries(points)
}

func (sp *syntheticProvider) GetBarsPeriod(symbol, period string) (*vol.PriceSeries, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("unknown period %q", period)
	}
	from, to, err := PeriodRange(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return sp.GetBars(symbol, from, to)
}

func (sp *syntheticProvider) GetLastPrice(symbol string) (float64, error) {
	return sp.basePrice(symbol), nil
}

// GetExpiries returns the next six weekly Friday expiries.
func (sp *syntheticProvider) GetExpiries(symbol string) ([]time.Time, error) {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var expiries []time.Time
	for len(expiries) < 6 {
		day = day.AddDate(0, 0, 1)
		if day.Weekday() == time.Friday {
			expiries = append(expiries, day)
		}
	}
	return expiries, nil
}

// GetOptionChain generates a chain with a volatility smile around the
// synthetic spot, premiums priced under Black-Scholes at the generated
// implied volatility so quotes and vols stay consistent.
func (sp *syntheticProvider) GetOptionChain(symbol string, expiry time.Time, side vol.Side) (vol.OptionChain, error) {
	now := time.Now().UTC()
	tte := expiry.Sub(now).Hours() / 24 / 365
	if tte <= 0 {
		return vol.OptionChain{}, fmt.Errorf("expiry %s is in the past", expiry.Format("2006-01-02"))
	}

	spot := sp.basePrice(symbol)
	chain := vol.OptionChain{
		Underlying: spot,
		Expiry:     expiry,
		Side:       side,
	}

	const riskFree = 0.04

	// strikes from 70% to 130% of spot in 5% steps
	for pct := 0.70; pct <= 1.301; pct += 0.05 {
		strike := math.Round(spot*pct*100) / 100
		m := strike / spot

		// smile: ATM 22% + curvature + short-dated lift
		iv := 0.22 + 0.50*(m-1)*(m-1) + 0.02/math.Sqrt(tte*4+0.25)

		mid := pricing.BlackScholesPrice(side == vol.SideCall, spot, strike, tte, riskFree, iv)
		chain.Quotes = append(chain.Quotes, vol.OptionQuote{
			Strike:     strike,
			Bid:        mid * 0.98,
			Ask:        mid * 1.02,
			Last:       mid,
			ImpliedVol: iv,
			Expiry:     expiry,
			Side:       side,
		})
	}
	return chain, nil
}
