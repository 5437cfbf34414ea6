package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/contactkeval/volsuite/internal/logger"
	"github.com/contactkeval/volsuite/internal/vol"
)

// localCSVProvider serves daily bars from CSV files in a directory, one
// file per symbol (AAPL.csv), and delegates everything else to its
// secondary provider.
type localCSVProvider struct {
	dir       string
	secondary Provider
}

// NewLocalCSVProvider returns a provider reading bars from dir.
func NewLocalCSVProvider(dir string, secondary Provider) Provider {
	return &localCSVProvider{dir: dir, secondary: secondary}
}

func (lp *localCSVProvider) Secondary() Provider { return lp.secondary }

// GetBars reads bars from <dir>/<SYMBOL>.csv, falling back to the
// secondary provider when the file is missing. Expected columns:
// date,open,high,low,close,volume with an ISO date.
func (lp *localCSVProvider) GetBars(symbol string, fromDate, toDate time.Time) (*vol.PriceSeries, error) {
	path := filepath.Join(lp.dir, strings.ToUpper(symbol)+".csv")

	f, err := os.Open(path)
	if err != nil {
		if lp.secondary != nil {
			logger.Debugf("no local file %s, delegating to secondary", path)
			return lp.secondary.GetBars(symbol, fromDate, toDate)
		}
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	var points []vol.PricePoint
	for i, row := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue // header
		}
		if len(row) < 6 {
			continue
		}

		t, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			continue // skip malformed dates
		}
		if t.Before(fromDate) || t.After(toDate) {
			continue
		}

		vals := make([]float64, 5)
		ok := true
		for j := 1; j <= 5; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				ok = false
				break
			}
			vals[j-1] = v
		}
		if !ok {
			continue
		}

		points = append(points, vol.PricePoint{
			Time:   t,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	return vol.NewPriceSeries(points)
}

func (lp *localCSVProvider) GetBarsPeriod(symbol, period string) (*vol.PriceSeries, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("unknown period %q", period)
	}
	from, to, err := PeriodRange(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return lp.GetBars(symbol, from, to)
}

func (lp *localCSVProvider) GetLastPrice(symbol string) (float64, error) {
	if lp.secondary != nil {
		return lp.secondary.GetLastPrice(symbol)
	}
	series, err := lp.GetBars(symbol, time.Time{}, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if series.Len() == 0 {
		return 0, fmt.Errorf("no local bars for %s", symbol)
	}
	return series.Last().Close, nil
}

func (lp *localCSVProvider) GetExpiries(symbol string) ([]time.Time, error) {
	if lp.secondary != nil {
		return lp.secondary.GetExpiries(symbol)
	}
	return nil, fmt.Errorf("GetExpiries not implemented for local CSV provider")
}

func (lp *localCSVProvider) GetOptionChain(symbol string, expiry time.Time, side vol.Side) (vol.OptionChain, error) {
	if lp.secondary != nil {
		return lp.secondary.GetOptionChain(symbol, expiry, side)
	}
	return vol.OptionChain{}, fmt.Errorf("GetOptionChain not implemented for local CSV provider")
}
