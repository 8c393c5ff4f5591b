package model

import "time"

// SignalState is the position state of one strategy at one step.
type SignalState string

const (
	// SignalNone means no position has ever been opened by this strategy.
	SignalNone SignalState = "None"
	// SignalBuy means the strategy currently holds an open position.
	SignalBuy SignalState = "Buy"
	// SignalSell means the most recent position has been closed.
	SignalSell SignalState = "Sell"
)

// SignalSeries holds the position state and transition markers for one
// strategy, all three slices aligned 1:1 with the price series.
// Marker entries are NaN except at the step where the transition fired,
// where they carry the closing price.
type SignalSeries struct {
	States      []SignalState
	BuyMarkers  []float64
	SellMarkers []float64
}

// SignalEvent records one observed change of a strategy's latest signal
// for a watched symbol.
type SignalEvent struct {
	Symbol   string      `json:"symbol"`
	Strategy string      `json:"strategy"`
	Prev     SignalState `json:"prev"`
	Next     SignalState `json:"next"`
	Price    float64     `json:"price"`
	TS       time.Time   `json:"ts"`
}
