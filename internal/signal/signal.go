// Package signal converts per-step buy/sell predicates into a position
// state series with hysteresis: once a position opens, re-fires of the buy
// condition are ignored until the sell condition closes it.
package signal

import (
	"math"

	"analysis-systemv1/internal/model"
)

// Condition reports whether a predicate holds at step i. Implementations
// must only read the underlying data. They are called once per step in
// increasing order.
type Condition func(i int) bool

// Generate runs the state machine over n steps and returns the final state
// plus the full state/marker series, all aligned with closes.
//
// Per step, in order:
//   - buy(i) while not holding → transition to Buy, record the close price
//     as the buy marker;
//   - otherwise sell(i) while holding Buy → transition to Sell, record the
//     sell marker;
//   - otherwise no transition, both markers stay NaN.
//
// Buy is evaluated first, so it wins when both conditions fire on the same
// step. Sell can only ever follow Buy; a Sell state may be re-entered by a
// later Buy. Total for any n including 0.
func Generate(n int, closes []float64, buy, sell Condition) (model.SignalState, model.SignalSeries) {
	states := make([]model.SignalState, n)
	buyMarkers := make([]float64, n)
	sellMarkers := make([]float64, n)

	current := model.SignalNone
	for i := 0; i < n; i++ {
		buyMarkers[i] = math.NaN()
		sellMarkers[i] = math.NaN()

		if buy(i) && current != model.SignalBuy {
			current = model.SignalBuy
			buyMarkers[i] = closes[i]
		} else if sell(i) && current == model.SignalBuy {
			current = model.SignalSell
			sellMarkers[i] = closes[i]
		}
		states[i] = current
	}

	return current, model.SignalSeries{
		States:      states,
		BuyMarkers:  buyMarkers,
		SellMarkers: sellMarkers,
	}
}
