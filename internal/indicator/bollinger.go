package indicator

import "math"

// Bollinger calculates Bollinger Bands: a middle band (SMA over the window)
// plus upper/lower bands offset by k rolling standard deviations.
// All three bands become available at index firstValid+window-1.
func Bollinger(values []float64, window int, k float64) (middle, upper, lower []float64) {
	n := len(values)

	middle = SMA(values, window)
	stddev := StdDev(values, window)

	upper = missing(n)
	lower = missing(n)
	for i := range values {
		if !math.IsNaN(middle[i]) && !math.IsNaN(stddev[i]) {
			upper[i] = middle[i] + k*stddev[i]
			lower[i] = middle[i] - k*stddev[i]
		}
	}
	return middle, upper, lower
}
