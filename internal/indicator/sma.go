package indicator

// SMA calculates the simple moving average over a rolling window.
// Uses a running sum, O(n) over the whole series with no window rescans.
//
// Output is NaN until the window is full: the first value appears at index
// firstValid+window-1.
func SMA(values []float64, window int) []float64 {
	n := len(values)
	out := missing(n)
	if window <= 0 || n == 0 {
		return out
	}

	start := firstValid(values)
	sum := 0.0
	for i := start; i < n; i++ {
		sum += values[i]
		if i-start >= window {
			sum -= values[i-window]
		}
		if i-start >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}
