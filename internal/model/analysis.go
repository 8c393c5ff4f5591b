package model

// Strategy names used as keys in Result.LastSignals.
const (
	StrategyMACD      = "MACD"
	StrategyRSI       = "RSI"
	StrategyBollinger = "BOLL"
)

// Summary holds scalar statistics derived from one price series.
type Summary struct {
	LastPrice     float64 `json:"last_price"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	ChangePercent float64 `json:"change_percent"`
	Points        int     `json:"points"`
}

// Result is the full outcome of one analysis: the last signal per strategy,
// the indicator table, and the price summary. LastSignals always carries the
// textual literal "None" for strategies that never opened a position.
type Result struct {
	Symbol      string
	Period      string
	Dates       []string // YYYY-MM-DD, aligned with the table rows
	LastSignals map[string]string
	Signals     map[string]SignalSeries
	Table       *Table
	Summary     Summary
}
