package indicator

// RSI calculates the Relative Strength Index using Wilder's smoothing method.
//
// The initial average gain/loss is an SMA seed over the first `window` price
// changes; a change needs two prices, so the first value appears at index
// firstValid+window (one later than the window-based indicators).
func RSI(values []float64, window int) []float64 {
	n := len(values)
	out := missing(n)
	if window <= 0 || n == 0 {
		return out
	}

	start := firstValid(values)
	if start+window >= n {
		return out
	}

	var avgGain, avgLoss float64
	for i := start + 1; i <= start+window; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[start+window] = rsiValue(avgGain, avgLoss)

	p := float64(window)
	for i := start + window + 1; i < n; i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
