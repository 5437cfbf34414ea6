package vol

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// GridPoint is one (moneyness, time to expiry, implied volatility)
// observation of the flattened surface. TimeToExpiry is in years.
type GridPoint struct {
	Moneyness    float64
	TimeToExpiry float64
	ImpliedVol   float64
}

// Warning records a non-fatal problem hit while assembling one expiry.
type Warning struct {
	Expiry  time.Time
	Message string
}

// Surface is an implied volatility surface: one skew curve per expiry,
// iterated in chronological expiry order. Assembly performs no
// interpolation; Grid exposes the sparse point cloud and any denser
// rendering grid is the renderer's own, separate step.
type Surface struct {
	AsOf     time.Time
	curves   []SkewCurve
	warnings []Warning
}

// Expiries returns the expiry dates in chronological order.
func (s *Surface) Expiries() []time.Time {
	out := make([]time.Time, len(s.curves))
	for i, c := range s.curves {
		out[i] = c.Expiry
	}
	return out
}

// Curves returns the per-expiry skew curves in chronological order.
func (s *Surface) Curves() []SkewCurve {
	out := make([]SkewCurve, len(s.curves))
	copy(out, s.curves)
	return out
}

// Curve returns the skew curve for the given expiry date, matching on
// calendar day.
func (s *Surface) Curve(expiry time.Time) (SkewCurve, bool) {
	key := dayKey(expiry)
	for _, c := range s.curves {
		if dayKey(c.Expiry) == key {
			return c, true
		}
	}
	return SkewCurve{}, false
}

// Warnings returns the non-fatal per-expiry problems collected during
// assembly.
func (s *Surface) Warnings() []Warning {
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Grid flattens the surface into (moneyness, time to expiry, implied
// volatility) points, expiries in chronological order.
func (s *Surface) Grid() []GridPoint {
	var out []GridPoint
	for _, c := range s.curves {
		tte := c.Expiry.Sub(s.AsOf).Hours() / 24 / 365
		for _, p := range c.Points {
			out = append(out, GridPoint{
				Moneyness:    p.Moneyness,
				TimeToExpiry: tte,
				ImpliedVol:   p.ImpliedVol,
			})
		}
	}
	return out
}

// SurfaceBuilder assembles volatility surfaces from chain snapshots,
// composing FilterOTM and BuildSkew per expiry.
type SurfaceBuilder struct {
	workers int
}

// NewSurfaceBuilder returns a SurfaceBuilder with a small worker pool
// for per-expiry fan-out.
func NewSurfaceBuilder() *SurfaceBuilder {
	return &SurfaceBuilder{workers: 4}
}

// NewSurfaceBuilderWithWorkers sets the number of expiries processed
// concurrently. Each expiry is independent, so completion order never
// affects the result.
func NewSurfaceBuilderWithWorkers(workers int) (*SurfaceBuilder, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidParameter, workers)
	}
	return &SurfaceBuilder{workers: workers}, nil
}

// expiryGroup collects the snapshots sharing one expiry day.
type expiryGroup struct {
	expiry time.Time
	chains []OptionChain
}

// Build assembles a surface from the given snapshots as of the given
// date. Snapshots are grouped by expiry day; within each expiry, call
// and put snapshots are filtered to their OTM subsets and merged into
// one curve. Expiries before asOf are dropped with a warning.
//
// Expiries fail independently: a snapshot that yields no usable quotes
// becomes an empty curve plus a warning, and assembly continues. Only a
// fully unusable input, with not a single non-empty curve, returns
// ErrEmptyChain.
func (b *SurfaceBuilder) Build(asOf time.Time, chains []OptionChain) (*Surface, error) {
	surf := &Surface{AsOf: asOf}

	if len(chains) == 0 {
		return nil, fmt.Errorf("%w: no snapshots supplied", ErrEmptyChain)
	}

	groups := map[string]*expiryGroup{}
	var keys []string
	for _, ch := range chains {
		key := dayKey(ch.Expiry)
		g, ok := groups[key]
		if !ok {
			g = &expiryGroup{expiry: ch.Expiry}
			groups[key] = g
			keys = append(keys, key)
		}
		g.chains = append(g.chains, ch)
	}
	sort.Strings(keys) // day keys sort chronologically

	// Partition into buildable expiries and retroactive ones.
	var todo []*expiryGroup
	for _, key := range keys {
		g := groups[key]
		if dayKey(g.expiry) < dayKey(asOf) {
			surf.warnings = append(surf.warnings, Warning{
				Expiry:  g.expiry,
				Message: "expiry predates snapshot date, dropped",
			})
			continue
		}
		todo = append(todo, g)
	}

	// Each worker owns one result slot; no shared accumulators.
	curves := make([]SkewCurve, len(todo))
	warnings := make([][]Warning, len(todo))

	var eg errgroup.Group
	eg.SetLimit(b.workers)
	for i, g := range todo {
		i, g := i, g
		eg.Go(func() error {
			curves[i], warnings[i] = buildExpiry(g)
			return nil
		})
	}
	_ = eg.Wait() // workers surface problems as warnings, never errors

	nonEmpty := 0
	for i, c := range curves {
		surf.curves = append(surf.curves, c)
		surf.warnings = append(surf.warnings, warnings[i]...)
		if len(c.Points) > 0 {
			nonEmpty++
		}
	}

	if nonEmpty == 0 {
		return nil, fmt.Errorf("%w: no expiry produced a usable curve", ErrEmptyChain)
	}
	return surf, nil
}

// buildExpiry filters and builds the skew for a single expiry's
// snapshots, merging call and put OTM points into one curve.
func buildExpiry(g *expiryGroup) (SkewCurve, []Warning) {
	curve := SkewCurve{Expiry: g.expiry}
	var warns []Warning

	for _, ch := range g.chains {
		skew, err := BuildSkew(FilterOTM(ch), SkewOptions{})
		if err != nil {
			warns = append(warns, Warning{Expiry: g.expiry, Message: err.Error()})
			continue
		}
		curve = curve.Merge(skew)
	}

	if len(curve.Points) == 0 {
		warns = append(warns, Warning{Expiry: g.expiry, Message: "no usable OTM quotes"})
	}
	return curve, warns
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }
