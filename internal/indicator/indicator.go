// Package indicator provides batch technical indicator calculations over
// closing-price series.
//
// Every function returns slices aligned 1:1 with its input: output[i] is the
// indicator value at step i, or NaN while the indicator is still inside its
// warm-up window. Inputs may themselves carry leading NaNs (the MACD signal
// line is an EMA of the MACD line, which starts late); warm-up lengths
// compose accordingly.
package indicator

import "math"

// firstValid returns the index of the first non-NaN value, or len(values)
// if every entry is NaN.
func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(values)
}

// missing returns a slice of n NaNs.
func missing(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
