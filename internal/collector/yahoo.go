package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"analysis-systemv1/internal/analysis"
	"analysis-systemv1/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance public chart API.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string // overridable for tests
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. proxyURL may be
// empty for a direct connection.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: defaultYahooBaseURL,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// Close values come back as null for non-trading bars, hence *float64.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// intervalFor picks the bar interval per period: the short ranges need
// intraday bars or there are too few points to ever leave warm-up.
func intervalFor(period string) string {
	switch period {
	case "1d":
		return "5m"
	case "5d":
		return "30m"
	default:
		return "1d"
	}
}

// FetchSeries fetches the closing-price series for symbol over the given
// period, at the interval intervalFor selects. Null bars (holidays etc.)
// are skipped; the result is sorted by timestamp.
func (f *YahooFetcher) FetchSeries(ctx context.Context, symbol, period string) (model.PriceSeries, error) {
	if !IsValidPeriod(period) {
		return model.PriceSeries{}, fmt.Errorf("yahoo: unsupported period %q", period)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(symbol), intervalFor(period), period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return model.PriceSeries{}, &analysis.NoDataError{Symbol: symbol, Period: period}
	}
	if resp.StatusCode != http.StatusOK {
		return model.PriceSeries{}, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return model.PriceSeries{}, &analysis.NoDataError{Symbol: symbol, Period: period}
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return model.PriceSeries{}, &analysis.NoDataError{Symbol: symbol, Period: period}
	}
	quote := result.Indicators.Quote[0]

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // null bar
		}
		points = append(points, model.PricePoint{
			TS:    time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		})
	}
	if len(points) == 0 {
		return model.PriceSeries{}, &analysis.NoDataError{Symbol: symbol, Period: period}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].TS.Before(points[j].TS) })
	return model.PriceSeries{Symbol: symbol, Points: points}, nil
}
