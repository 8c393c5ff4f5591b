package analysis

import (
	"errors"
	"math"
	"testing"

	"analysis-systemv1/internal/model"
)

func TestAnalyze_EmptySeries_NoPartialResult(t *testing.T) {
	result, err := New().Analyze(model.PriceSeries{}, "EMPTY", "1y")
	var cerr *ComputationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ComputationError, got %v", err)
	}
	if result != nil {
		t.Fatal("expected nil result on error, got partial result")
	}
}

func TestAnalyze_ColumnsAlignedWithSeries(t *testing.T) {
	series := seriesOf(rampCloses(60)...)
	result, err := New().Analyze(series, "TEST", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		ColClose,
		ColMACD, ColMACDSignal, ColMACDHistogram, "MACD_Buy", "MACD_Sell",
		ColRSI, "RSI_Buy", "RSI_Sell",
		ColBollingerMiddle, ColBollingerUpper, ColBollingerLower,
		"Bollinger_Bands_Buy", "Bollinger_Bands_Sell",
	}
	for _, name := range want {
		col := result.Table.Column(name)
		if col == nil {
			t.Errorf("missing column %s", name)
			continue
		}
		if len(col) != series.Len() {
			t.Errorf("column %s: %d entries, want %d", name, len(col), series.Len())
		}
	}
}

func TestAnalyze_LastSignalsAlwaysPopulated(t *testing.T) {
	// Series too short for any indicator to warm up: every strategy must
	// still report the literal "None", never an empty value.
	result, err := New().Analyze(seriesOf(10, 11, 12), "TEST", "5d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, strategy := range []string{model.StrategyMACD, model.StrategyRSI, model.StrategyBollinger} {
		if got := result.LastSignals[strategy]; got != "None" {
			t.Errorf("%s: last signal=%q, want \"None\"", strategy, got)
		}
	}
}

func TestAnalyze_BollingerCrashTriggersBuy(t *testing.T) {
	// Flat at 100 long enough to warm up the bands, then a crash far
	// below the lower band.
	closes := make([]float64, 0, 26)
	for i := 0; i < 25; i++ {
		closes = append(closes, 100+0.1*float64(i%3))
	}
	closes = append(closes, 50)

	result, err := New().Analyze(seriesOf(closes...), "TEST", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.LastSignals[model.StrategyBollinger]; got != "Buy" {
		t.Errorf("BOLL last signal=%q, want \"Buy\"", got)
	}
	ss := result.Signals[model.StrategyBollinger]
	if math.IsNaN(ss.BuyMarkers[len(closes)-1]) {
		t.Error("expected buy marker at the crash step")
	}
}

func TestAnalyze_NoTransitionsDuringWarmup(t *testing.T) {
	// NaN comparisons are false, so no strategy may fire inside its
	// warm-up window.
	series := seriesOf(rampCloses(60)...)
	result, err := New().Analyze(series, "TEST", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// RSI(20) has exactly 20 leading missing values.
	ss := result.Signals[model.StrategyRSI]
	for i := 0; i < RSIWindow; i++ {
		if ss.States[i] != model.SignalNone {
			t.Errorf("RSI step %d: state=%s during warm-up, want None", i, ss.States[i])
		}
	}

	// Bollinger(20) has 19.
	ss = result.Signals[model.StrategyBollinger]
	for i := 0; i < BollingerWindow-1; i++ {
		if ss.States[i] != model.SignalNone {
			t.Errorf("BOLL step %d: state=%s during warm-up, want None", i, ss.States[i])
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	series := seriesOf(noisyCloses(120)...)

	first, err := New().Analyze(series, "TEST", "1y")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := New().Analyze(series, "TEST", "1y")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for _, name := range first.Table.ColumnNames() {
		a, b := first.Table.Column(name), second.Table.Column(name)
		if len(a) != len(b) {
			t.Fatalf("column %s: length mismatch %d vs %d", name, len(a), len(b))
		}
		for i := range a {
			// Bit-level comparison so NaN == NaN
			if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
				t.Errorf("column %s index %d: %v vs %v", name, i, a[i], b[i])
			}
		}
	}
	for k, v := range first.LastSignals {
		if second.LastSignals[k] != v {
			t.Errorf("last signal %s: %q vs %q", k, v, second.LastSignals[k])
		}
	}
	if first.Summary != second.Summary {
		t.Errorf("summary mismatch: %+v vs %+v", first.Summary, second.Summary)
	}
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	closes := noisyCloses(80)
	series := seriesOf(closes...)
	if _, err := New().Analyze(series, "TEST", "1y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range series.Points {
		if p.Close != closes[i] {
			t.Fatalf("input mutated at index %d: %v vs %v", i, p.Close, closes[i])
		}
	}
}

// rampCloses returns a gently rising series.
func rampCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 0.5*float64(i)
	}
	return out
}

// noisyCloses returns a deterministic zig-zag series that exercises both
// buy and sell conditions.
func noisyCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		swing := float64((i*7)%13) - 6
		out[i] = 100 + 3*swing + 0.2*float64(i)
	}
	return out
}
