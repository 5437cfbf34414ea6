package vol

import (
	"fmt"
	"math"
	"time"
)

// Method selects the realized volatility estimator. The set is closed:
// new estimators are added here, never chosen by ad hoc strings.
type Method int

const (
	// MethodCloseToClose estimates volatility from log close-to-close
	// returns.
	MethodCloseToClose Method = iota
	// MethodParkinson estimates volatility from the high/low range.
	MethodParkinson
	// MethodGarmanKlass combines high/low range with open/close drift.
	MethodGarmanKlass
)

func (m Method) String() string {
	switch m {
	case MethodCloseToClose:
		return "close"
	case MethodParkinson:
		return "parkinson"
	case MethodGarmanKlass:
		return "gk"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a method name to its Method value.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "close":
		return MethodCloseToClose, nil
	case "parkinson":
		return MethodParkinson, nil
	case "gk":
		return MethodGarmanKlass, nil
	default:
		return 0, fmt.Errorf("%w: unknown method %q, use 'close', 'parkinson' or 'gk'", ErrInvalidParameter, s)
	}
}

// DefaultPeriodsPerYear is the annualization constant for daily bars.
const DefaultPeriodsPerYear = 252

// RollingVolPoint is one annualized volatility observation. Warm-up
// indices produce no point at all, so a result is shorter than its input.
type RollingVolPoint struct {
	Time time.Time
	Vol  float64
}

// Engine computes rolling annualized realized volatility from a price
// series. It holds no state besides the annualization constant and is
// safe for concurrent use.
type Engine struct {
	periodsPerYear float64
}

// NewEngine returns an Engine annualizing with DefaultPeriodsPerYear.
func NewEngine() *Engine {
	return &Engine{periodsPerYear: DefaultPeriodsPerYear}
}

// NewEngineWithPeriods returns an Engine with a custom number of trading
// periods per year, for non-daily bar frequencies.
func NewEngineWithPeriods(periodsPerYear float64) (*Engine, error) {
	if periodsPerYear <= 0 {
		return nil, fmt.Errorf("%w: periods per year must be positive, got %g", ErrInvalidParameter, periodsPerYear)
	}
	return &Engine{periodsPerYear: periodsPerYear}, nil
}

// Compute returns the rolling annualized volatility of series using the
// given trailing window. For a series of L records and window W the
// result has exactly L-W points, one per record from index W on; earlier
// indices are warm-up and yield nothing. A series shorter than W+1
// records yields an empty result, not an error.
//
// A window smaller than 2 fails with ErrInvalidParameter. A price that
// makes an estimator term undefined (non-positive close for
// close-to-close, non-positive OHLC fields for the range estimators)
// fails the whole call with ErrInvalidPriceData: volatility over a
// window containing a bad price is not well-defined, and skipping it
// silently would misalign the output.
func (e *Engine) Compute(series *PriceSeries, window int, method Method) ([]RollingVolPoint, error) {
	if window < 2 {
		return nil, fmt.Errorf("%w: window must be >= 2, got %d", ErrInvalidParameter, window)
	}

	n := series.Len()
	if n <= window {
		return []RollingVolPoint{}, nil
	}

	terms, err := e.estimatorTerms(series, method)
	if err != nil {
		return nil, err
	}

	// terms[j] corresponds to record j+1 for close-to-close (a return
	// consumes two records) and to record j+1 for the range estimators
	// too, so every method yields points from record index `window`.
	out := make([]RollingVolPoint, 0, n-window)
	for i := window; i < n; i++ {
		v := e.windowVol(terms[i-window:i], method)
		out = append(out, RollingVolPoint{Time: series.At(i).Time, Vol: v})
	}
	return out, nil
}

// WholePeriod returns a single annualized volatility over the entire
// series. A series with fewer than three records carries too few terms
// for a dispersion estimate and yields 0, not an error.
func (e *Engine) WholePeriod(series *PriceSeries, method Method) (float64, error) {
	if series.Len() < 3 {
		return 0, nil
	}
	terms, err := e.estimatorTerms(series, method)
	if err != nil {
		return 0, err
	}
	return e.windowVol(terms, method), nil
}

// estimatorTerms computes the per-record estimator inputs: log returns
// for close-to-close, per-bar variance terms for the range estimators.
// terms[j] belongs to record j+1; record 0 only seeds the first return.
func (e *Engine) estimatorTerms(series *PriceSeries, method Method) ([]float64, error) {
	n := series.Len()
	terms := make([]float64, 0, n-1)

	for i := 1; i < n; i++ {
		p := series.At(i)

		switch method {
		case MethodCloseToClose:
			prev := series.At(i - 1)
			if p.Close <= 0 || prev.Close <= 0 {
				return nil, badPrice(p.Time, "close")
			}
			terms = append(terms, math.Log(p.Close/prev.Close))

		case MethodParkinson:
			if p.High <= 0 || p.Low <= 0 {
				return nil, badPrice(p.Time, "high/low")
			}
			hl := math.Log(p.High / p.Low)
			terms = append(terms, hl*hl/(4*math.Ln2))

		case MethodGarmanKlass:
			if p.High <= 0 || p.Low <= 0 || p.Open <= 0 || p.Close <= 0 {
				return nil, badPrice(p.Time, "ohlc")
			}
			hl := math.Log(p.High / p.Low)
			co := math.Log(p.Close / p.Open)
			terms = append(terms, 0.5*hl*hl-(2*math.Ln2-1)*co*co)

		default:
			return nil, fmt.Errorf("%w: unknown method %d", ErrInvalidParameter, int(method))
		}
	}
	return terms, nil
}

// windowVol turns a slice of estimator terms into one annualized
// volatility figure.
func (e *Engine) windowVol(terms []float64, method Method) float64 {
	switch method {
	case MethodCloseToClose:
		return sampleStdDev(terms) * math.Sqrt(e.periodsPerYear)
	default:
		// Range estimators average per-bar variance terms. Garman-Klass
		// terms can sum slightly negative on degenerate bars; clamp.
		v := mean(terms)
		if v < 0 {
			v = 0
		}
		return math.Sqrt(v) * math.Sqrt(e.periodsPerYear)
	}
}

func badPrice(t time.Time, field string) error {
	return fmt.Errorf("%w: non-positive %s price at %s", ErrInvalidPriceData, field, t.Format("2006-01-02"))
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
func sampleStdDev(xs []float64) float64 {
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
