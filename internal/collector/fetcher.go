// Package collector fetches historical closing-price series for a stock
// ticker from an external market-data provider.
package collector

import (
	"context"

	"analysis-systemv1/internal/model"
)

// Fetcher is the interface for price data sources.
type Fetcher interface {
	// FetchSeries returns the closing-price series for symbol over the
	// given period. An empty upstream result is reported as
	// *analysis.NoDataError.
	FetchSeries(ctx context.Context, symbol, period string) (model.PriceSeries, error)
	Name() string
}

// ValidPeriods lists the recognized period strings, mirroring the ranges
// the chart API accepts.
var ValidPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// IsValidPeriod reports whether period is one of ValidPeriods.
func IsValidPeriod(period string) bool {
	for _, p := range ValidPeriods {
		if p == period {
			return true
		}
	}
	return false
}
