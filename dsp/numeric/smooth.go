package numeric

// MovingAverage applies a centered uniform smoothing filter of the given
// window size. Samples beyond the boundaries are replaced by the nearest
// edge sample, so the output has the same length as the input. The window
// is clamped to [1, len(y)].
func MovingAverage(y []float64, window int) []float64 {
	n := len(y)
	if n == 0 {
		return nil
	}

	if window < 1 {
		window = 1
	}

	if window > n {
		window = n
	}

	left := window / 2
	right := window - 1 - left

	out := make([]float64, n)

	for i := range y {
		var sum float64

		for j := i - left; j <= i+right; j++ {
			k := j
			if k < 0 {
				k = 0
			}

			if k > n-1 {
				k = n - 1
			}

			sum += y[k]
		}

		out[i] = sum / float64(window)
	}

	return out
}
