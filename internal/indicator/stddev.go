package indicator

import "math"

// StdDev calculates the rolling population standard deviation over a window.
// Available from index firstValid+window-1, NaN before.
func StdDev(values []float64, window int) []float64 {
	n := len(values)
	out := missing(n)
	if window <= 0 || n == 0 {
		return out
	}

	start := firstValid(values)
	for i := start + window - 1; i < n; i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(window)

		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window))
	}
	return out
}
