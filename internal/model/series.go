// Package model defines the core data types for price series analysis:
// price series, indicator tables, signal states, and analysis results.
//
// Missing values (e.g. an indicator's warm-up span) are represented as
// math.NaN(), never as a default numeric value.
package model

import "time"

// PricePoint is one (timestamp, closing price) observation.
type PricePoint struct {
	TS    time.Time `json:"ts"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of price points, strictly increasing
// by timestamp, one entry per trading period. It is treated as immutable
// for the duration of one analysis.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes extracts the closing prices as a fresh slice, aligned with Points.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Dates extracts the timestamps formatted as YYYY-MM-DD, aligned with Points.
func (s PriceSeries) Dates() []string {
	dates := make([]string, len(s.Points))
	for i, p := range s.Points {
		dates[i] = p.TS.Format("2006-01-02")
	}
	return dates
}
