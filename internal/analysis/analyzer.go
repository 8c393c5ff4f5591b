// Package analysis wires a price series through the indicator pipelines
// (MACD, RSI, Bollinger Bands), applies the signal state machine to each,
// and assembles the combined indicator table, last-signal map, and price
// summary.
//
// The package is pure: it performs no I/O and no logging, never mutates
// its input series, and returns either a complete Result or an error;
// no partial tables.
package analysis

import (
	"analysis-systemv1/internal/indicator"
	"analysis-systemv1/internal/model"
	"analysis-systemv1/internal/signal"
)

// Strategy parameters, matching the reference dashboard.
const (
	MACDFastWindow   = 12
	MACDSlowWindow   = 26
	MACDSignalWindow = 9

	RSIWindow        = 20
	RSILowThreshold  = 40.0
	RSIHighThreshold = 70.0

	BollingerWindow = 20
	BollingerK      = 2.0
)

// Table column names. The Bollinger columns keep the reference dashboard's
// long prefix while its last-signal key stays "BOLL".
const (
	ColClose = "Close"

	ColMACD          = "MACD"
	ColMACDSignal    = "MACD_Signal"
	ColMACDHistogram = "MACD_Histogram"

	ColRSI = "RSI"

	ColBollingerMiddle = "Bollinger_Bands_Middle"
	ColBollingerUpper  = "Bollinger_Bands_Upper"
	ColBollingerLower  = "Bollinger_Bands_Lower"
)

// Analyzer runs the three indicator+signal pipelines over one price series.
// Stateless and safe for concurrent use; nothing is shared across calls.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer { return &Analyzer{} }

// Analyze computes all indicators and signals for the series and returns
// the aggregated result. The three pipelines are independent: each reads
// only the shared closes and writes disjoint columns.
func (a *Analyzer) Analyze(series model.PriceSeries, symbol, period string) (*model.Result, error) {
	summary, err := Summarize(series)
	if err != nil {
		return nil, err
	}

	n := series.Len()
	closes := series.Closes()

	table := model.NewTable(n)
	table.SetColumn(ColClose, closes)

	signals := make(map[string]model.SignalSeries, 3)
	lastSignals := make(map[string]string, 3)

	// colPrefix names the marker columns; it differs from the strategy key
	// only for Bollinger ("BOLL" vs "Bollinger_Bands").
	run := func(strategy, colPrefix string, buy, sell signal.Condition) {
		last, ss := signal.Generate(n, closes, buy, sell)
		signals[strategy] = ss
		lastSignals[strategy] = string(last)
		table.SetColumn(colPrefix+"_Buy", ss.BuyMarkers)
		table.SetColumn(colPrefix+"_Sell", ss.SellMarkers)
	}

	// MACD pipeline. Buy when the line is below the signal line, the
	// reference dashboard's polarity, inverted from the textbook
	// crossover strategy, and kept that way on purpose.
	macdLine, macdSignal, macdHistogram := indicator.MACD(closes, MACDFastWindow, MACDSlowWindow, MACDSignalWindow)
	table.SetColumn(ColMACD, macdLine)
	table.SetColumn(ColMACDSignal, macdSignal)
	table.SetColumn(ColMACDHistogram, macdHistogram)
	run(model.StrategyMACD, "MACD",
		func(i int) bool { return macdLine[i] < macdSignal[i] },
		func(i int) bool { return macdLine[i] > macdSignal[i] })

	// RSI pipeline: buy oversold, sell overbought.
	rsi := indicator.RSI(closes, RSIWindow)
	table.SetColumn(ColRSI, rsi)
	run(model.StrategyRSI, "RSI",
		func(i int) bool { return rsi[i] < RSILowThreshold },
		func(i int) bool { return rsi[i] > RSIHighThreshold })

	// Bollinger pipeline: buy below the lower band, sell above the upper.
	middle, upper, lower := indicator.Bollinger(closes, BollingerWindow, BollingerK)
	table.SetColumn(ColBollingerMiddle, middle)
	table.SetColumn(ColBollingerUpper, upper)
	table.SetColumn(ColBollingerLower, lower)
	run(model.StrategyBollinger, "Bollinger_Bands",
		func(i int) bool { return closes[i] < lower[i] },
		func(i int) bool { return closes[i] > upper[i] })

	return &model.Result{
		Symbol:      symbol,
		Period:      period,
		Dates:       series.Dates(),
		LastSignals: lastSignals,
		Signals:     signals,
		Table:       table,
		Summary:     summary,
	}, nil
}
