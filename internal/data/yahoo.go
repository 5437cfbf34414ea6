package data

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/contactkeval/volsuite/internal/logger"
	"github.com/contactkeval/volsuite/internal/vol"
)

// yahooProvider implements Provider against the Yahoo Finance public
// chart and options JSON endpoints, with raw HTTP calls.
type yahooProvider struct {
	// BaseURL is the root endpoint (e.g. https://query1.finance.yahoo.com).
	BaseURL string

	// Client is the HTTP client used for all requests.
	Client *http.Client

	// secondary is an optional fallback provider.
	secondary Provider
}

// NewYahooProvider constructs a Yahoo-backed data provider with an HTTP
// client tuned for pooled, gzip-enabled requests.
func NewYahooProvider(secondary Provider) *yahooProvider {
	logger.Infof("initializing Yahoo data provider")

	return &yahooProvider{
		BaseURL: "https://query1.finance.yahoo.com",
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // keep gzip auto-decompression on
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		secondary: secondary,
	}
}

// Secondary returns the configured fallback provider, if any.
func (yp *yahooProvider) Secondary() Provider { return yp.secondary }

// yahooChart models the chart API response.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooQuote models one option quote row in the options API response.
type yahooQuote struct {
	Strike            float64 `json:"strike"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	LastPrice         float64 `json:"lastPrice"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	Expiration        int64   `json:"expiration"`
	InTheMoney        bool    `json:"inTheMoney"`
}

// yahooOptions models the options API response.
type yahooOptions struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64        `json:"expirationDate"`
				Calls          []yahooQuote `json:"calls"`
				Puts           []yahooQuote `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"optionChain"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetBars fetches daily bars between the two dates via the chart
// endpoint.
func (yp *yahooProvider) GetBars(symbol string, fromDate, toDate time.Time) (*vol.PriceSeries, error) {
	logger.Debugf(
		"fetching bars: %s from=%s to=%s",
		symbol,
		fromDate.Format("2006-01-02"),
		toDate.Format("2006-01-02"),
	)

	u := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		yp.BaseURL,
		url.PathEscape(symbol),
		fromDate.Unix(),
		toDate.Unix(),
	)
	series, err := yp.fetchChart(symbol, u)
	if err != nil && yp.secondary != nil {
		logger.Infof("yahoo bars failed for %s, using fallback: %v", symbol, err)
		return yp.secondary.GetBars(symbol, fromDate, toDate)
	}
	return series, err
}

// GetBarsPeriod fetches daily bars for a named trailing period.
func (yp *yahooProvider) GetBarsPeriod(symbol, period string) (*vol.PriceSeries, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("unknown period %q", period)
	}
	from, to, err := PeriodRange(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return yp.GetBars(symbol, from, to)
}

func (yp *yahooProvider) fetchChart(symbol, reqURL string) (*vol.PriceSeries, error) {
	body, err := yp.getJSON(reqURL)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("no bar data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data returned for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	points := make([]vol.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := deref(quote.Open, i)
		h := deref(quote.High, i)
		l := deref(quote.Low, i)
		c := deref(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars on holidays
		}
		points = append(points, vol.PricePoint{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: deref(quote.Volume, i),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	logger.Tracef("bars received: %d records", len(points))
	return vol.NewPriceSeries(points)
}

// GetLastPrice returns the most recent market price via a one-day chart
// request, delegating to the secondary provider when the request fails.
func (yp *yahooProvider) GetLastPrice(symbol string) (float64, error) {
	price, err := yp.lastPrice(symbol)
	if err != nil && yp.secondary != nil {
		logger.Infof("yahoo price failed for %s, using fallback: %v", symbol, err)
		return yp.secondary.GetLastPrice(symbol)
	}
	return price, err
}

func (yp *yahooProvider) lastPrice(symbol string) (float64, error) {
	u := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&range=1d",
		yp.BaseURL,
		url.PathEscape(symbol),
	)
	body, err := yp.getJSON(u)
	if err != nil {
		return 0, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, fmt.Errorf("decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("no price data returned for %s", symbol)
	}
	return chart.Chart.Result[0].Meta.RegularMarketPrice, nil
}

// GetExpiries returns the available option expiry dates, sorted
// ascending.
func (yp *yahooProvider) GetExpiries(symbol string) ([]time.Time, error) {
	expiries, err := yp.expiries(symbol)
	if err != nil && yp.secondary != nil {
		logger.Infof("yahoo expiries failed for %s, using fallback: %v", symbol, err)
		return yp.secondary.GetExpiries(symbol)
	}
	return expiries, err
}

func (yp *yahooProvider) expiries(symbol string) ([]time.Time, error) {
	opts, err := yp.fetchOptions(symbol, time.Time{})
	if err != nil {
		return nil, err
	}

	result := opts.OptionChain.Result[0]
	expiries := make([]time.Time, 0, len(result.ExpirationDates))
	for _, epoch := range result.ExpirationDates {
		expiries = append(expiries, time.Unix(epoch, 0).UTC())
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })

	logger.Infof("resolved %d expiries for %s", len(expiries), symbol)
	return expiries, nil
}

// GetOptionChain returns the quote snapshot for one expiry and side.
func (yp *yahooProvider) GetOptionChain(symbol string, expiry time.Time, side vol.Side) (vol.OptionChain, error) {
	chain, err := yp.optionChain(symbol, expiry, side)
	if err != nil && yp.secondary != nil {
		logger.Infof("yahoo chain failed for %s, using fallback: %v", symbol, err)
		return yp.secondary.GetOptionChain(symbol, expiry, side)
	}
	return chain, err
}

func (yp *yahooProvider) optionChain(symbol string, expiry time.Time, side vol.Side) (vol.OptionChain, error) {
	logger.Debugf(
		"fetching %s chain: %s expiry=%s",
		side, symbol, expiry.Format("2006-01-02"),
	)

	opts, err := yp.fetchOptions(symbol, expiry)
	if err != nil {
		return vol.OptionChain{}, err
	}

	result := opts.OptionChain.Result[0]
	if len(result.Options) == 0 {
		return vol.OptionChain{}, fmt.Errorf("no chain returned for %s at %s", symbol, expiry.Format("2006-01-02"))
	}

	rows := result.Options[0].Calls
	if side == vol.SidePut {
		rows = result.Options[0].Puts
	}

	chain := vol.OptionChain{
		Underlying: result.Quote.RegularMarketPrice,
		Expiry:     expiry,
		Side:       side,
	}

	seen := map[float64]bool{}
	for _, row := range rows {
		if seen[row.Strike] {
			continue
		}
		seen[row.Strike] = true
		chain.Quotes = append(chain.Quotes, vol.OptionQuote{
			Strike:     row.Strike,
			Bid:        row.Bid,
			Ask:        row.Ask,
			Last:       row.LastPrice,
			ImpliedVol: row.ImpliedVolatility,
			Expiry:     expiry,
			Side:       side,
		})
	}
	sort.Slice(chain.Quotes, func(i, j int) bool { return chain.Quotes[i].Strike < chain.Quotes[j].Strike })

	logger.Tracef("received %d %s quotes", len(chain.Quotes), side)
	return chain, nil
}

func (yp *yahooProvider) fetchOptions(symbol string, expiry time.Time) (*yahooOptions, error) {
	u := fmt.Sprintf("%s/v7/finance/options/%s", yp.BaseURL, url.PathEscape(symbol))
	if !expiry.IsZero() {
		u += fmt.Sprintf("?date=%d", expiry.Unix())
	}

	body, err := yp.getJSON(u)
	if err != nil {
		return nil, err
	}

	var opts yahooOptions
	if err := json.Unmarshal(body, &opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if opts.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", opts.OptionChain.Error.Description)
	}
	if len(opts.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("no option data returned for %s", symbol)
	}
	return &opts, nil
}

// getJSON executes a GET request with rate-limit handling: on HTTP 429
// it sleeps to the next minute boundary and retries, matching Yahoo's
// per-minute throttling.
func (yp *yahooProvider) getJSON(reqURL string) ([]byte, error) {
	for {
		req, err := http.NewRequest("GET", reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := yp.Client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()

			now := time.Now()
			sleep := time.Until(now.Truncate(time.Minute).Add(time.Minute))
			logger.Infof("rate limit hit, sleeping for %s", sleep)
			time.Sleep(sleep)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("yahoo returned status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	}
}

func deref(xs []*float64, i int) float64 {
	if i >= len(xs) || xs[i] == nil {
		return 0
	}
	return *xs[i]
}
