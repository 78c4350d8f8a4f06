package numeric

// Gradient computes the derivative dy/dx of y sampled at coordinates x.
//
// Interior points use the second-order accurate central difference for
// possibly non-uniform spacing; the two boundary points use one-sided
// first-order differences. The result has the same length as y.
// Both slices must have the same length of at least 2, otherwise nil is
// returned.
func Gradient(y, x []float64) []float64 {
	n := len(y)
	if n < 2 || len(x) != n {
		return nil
	}

	dy := make([]float64, n)

	dy[0] = (y[1] - y[0]) / (x[1] - x[0])
	dy[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])

	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]

		dy[i] = (hs*hs*y[i+1] + (hd*hd-hs*hs)*y[i] - hd*hd*y[i-1]) /
			(hs * hd * (hd + hs))
	}

	return dy
}

// AUC returns the area under the curve y(x) using the trapezoidal rule.
// Returns 0 for inputs shorter than 2 samples or mismatched lengths.
func AUC(x, y []float64) float64 {
	n := len(y)
	if n < 2 || len(x) != n {
		return 0
	}

	var area float64
	for i := 1; i < n; i++ {
		area += 0.5 * (y[i] + y[i-1]) * (x[i] - x[i-1])
	}

	return area
}
