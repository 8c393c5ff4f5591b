package indicator

// EMA calculates the exponential moving average with multiplier 2/(window+1).
// The first output value is an SMA seed over the first full window, so the
// series becomes available at index firstValid+window-1.
func EMA(values []float64, window int) []float64 {
	n := len(values)
	out := missing(n)
	if window <= 0 || n == 0 {
		return out
	}

	start := firstValid(values)
	if start+window > n {
		return out
	}

	// SMA seed over the first window values
	sum := 0.0
	for i := start; i < start+window; i++ {
		sum += values[i]
	}
	prev := sum / float64(window)
	out[start+window-1] = prev

	multiplier := 2.0 / float64(window+1)
	for i := start + window; i < n; i++ {
		prev = values[i]*multiplier + prev*(1-multiplier)
		out[i] = prev
	}
	return out
}
