package indicator

import "math"

// MACD calculates Moving Average Convergence/Divergence: the MACD line
// (fast EMA minus slow EMA), the signal line (EMA of the MACD line), and
// the histogram (line minus signal).
//
// With the usual parameters (12, 26, 9) the line becomes available at index
// slow-1 = 25 and the signal/histogram at slow+signalWindow-2 = 33.
func MACD(values []float64, fastWindow, slowWindow, signalWindow int) (line, signal, histogram []float64) {
	n := len(values)

	fast := EMA(values, fastWindow)
	slow := EMA(values, slowWindow)

	line = missing(n)
	for i := range values {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			line[i] = fast[i] - slow[i]
		}
	}

	// EMA skips the line's leading NaNs, so the signal warm-up stacks on
	// top of the slow window's.
	signal = EMA(line, signalWindow)

	histogram = missing(n)
	for i := range values {
		if !math.IsNaN(line[i]) && !math.IsNaN(signal[i]) {
			histogram[i] = line[i] - signal[i]
		}
	}
	return line, signal, histogram
}
