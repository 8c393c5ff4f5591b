package gateway

import (
	"math"

	"analysis-systemv1/internal/analysis"
	"analysis-systemv1/internal/model"
)

// AnalysisPayload is the JSON shape consumed by the chart frontend.
// Missing values serialize as null (NaN is not valid JSON), except the
// MACD histogram which the charts render as zero-height bars.
type AnalysisPayload struct {
	Symbol string   `json:"symbol"`
	Period string   `json:"period"`
	Dates  []string `json:"dates"`

	Close     []*float64 `json:"close"`
	PriceBuy  []*float64 `json:"price_buy"`
	PriceSell []*float64 `json:"price_sell"`

	MACD       []*float64 `json:"macd"`
	MACDSignal []*float64 `json:"macd_signal"`
	MACDHist   []float64  `json:"macd_hist"`

	RSI []*float64 `json:"rsi"`

	BBMid []*float64 `json:"bb_mid"`
	BBUp  []*float64 `json:"bb_up"`
	BBLow []*float64 `json:"bb_low"`

	LastSignals map[string]string `json:"last_signals"`
	Summary     model.Summary     `json:"summary"`
}

// BuildPayload converts an analysis result into the serializable payload.
func BuildPayload(result *model.Result) *AnalysisPayload {
	t := result.Table
	return &AnalysisPayload{
		Symbol:      result.Symbol,
		Period:      result.Period,
		Dates:       result.Dates,
		Close:       nullable(t.Column(analysis.ColClose)),
		PriceBuy:    nullable(t.Column("MACD_Buy")),
		PriceSell:   nullable(t.Column("MACD_Sell")),
		MACD:        nullable(t.Column(analysis.ColMACD)),
		MACDSignal:  nullable(t.Column(analysis.ColMACDSignal)),
		MACDHist:    zeroFilled(t.Column(analysis.ColMACDHistogram)),
		RSI:         nullable(t.Column(analysis.ColRSI)),
		BBMid:       nullable(t.Column(analysis.ColBollingerMiddle)),
		BBUp:        nullable(t.Column(analysis.ColBollingerUpper)),
		BBLow:       nullable(t.Column(analysis.ColBollingerLower)),
		LastSignals: result.LastSignals,
		Summary:     result.Summary,
	}
}

// nullable maps NaN entries to nil pointers for JSON null.
func nullable(col []float64) []*float64 {
	out := make([]*float64, len(col))
	for i := range col {
		if math.IsNaN(col[i]) {
			continue
		}
		v := col[i]
		out[i] = &v
	}
	return out
}

// zeroFilled maps NaN entries to 0.
func zeroFilled(col []float64) []float64 {
	out := make([]float64, len(col))
	for i := range col {
		if !math.IsNaN(col[i]) {
			out[i] = col[i]
		}
	}
	return out
}
