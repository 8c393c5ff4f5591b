package analysis

import (
	"errors"

	"analysis-systemv1/internal/model"
)

// Summarize derives scalar statistics from a price series: last price,
// period high/low, percent change from the first point, and point count.
//
// The series must be non-empty and open on a non-zero price; violations
// return a ComputationError rather than silently producing ±Inf.
func Summarize(series model.PriceSeries) (model.Summary, error) {
	n := series.Len()
	if n == 0 {
		return model.Summary{}, &ComputationError{Op: "summarize", Err: errors.New("empty price series")}
	}

	first := series.Points[0].Close
	if first == 0 {
		return model.Summary{}, &ComputationError{Op: "summarize", Err: errors.New("opening price is zero, change percent undefined")}
	}

	high := series.Points[0].Close
	low := series.Points[0].Close
	for _, p := range series.Points[1:] {
		if p.Close > high {
			high = p.Close
		}
		if p.Close < low {
			low = p.Close
		}
	}

	last := series.Points[n-1].Close
	return model.Summary{
		LastPrice:     last,
		High:          high,
		Low:           low,
		ChangePercent: (last/first - 1) * 100,
		Points:        n,
	}, nil
}
