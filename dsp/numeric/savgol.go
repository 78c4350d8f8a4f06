package numeric

import (
	"fmt"
	"math"
)

// SavGol applies a Savitzky-Golay smoothing filter: each output sample is
// the value at the window center of a least-squares polynomial fit over
// the surrounding window. The first and last half-window samples are
// filled by evaluating a polynomial fitted to the leading and trailing
// window, so the output keeps the input length.
//
// window must be odd, larger than polyorder, and no longer than y.
func SavGol(y []float64, window, polyorder int) ([]float64, error) {
	if polyorder < 0 {
		return nil, fmt.Errorf("%w: polyorder must be >= 0: %d", ErrInvalidParameter, polyorder)
	}

	if window%2 == 0 {
		return nil, fmt.Errorf("%w: savgol window must be odd: %d", ErrInvalidParameter, window)
	}

	if window <= polyorder {
		return nil, fmt.Errorf("%w: savgol window must exceed polyorder (window=%d, polyorder=%d)",
			ErrInvalidParameter, window, polyorder)
	}

	n := len(y)
	if n < window {
		return nil, fmt.Errorf("%w: savgol window %d longer than trace (%d samples)",
			ErrInvalidParameter, window, n)
	}

	half := window / 2
	coeffs := savgolCenterCoeffs(window, polyorder)

	out := make([]float64, n)

	for i := half; i < n-half; i++ {
		var sum float64
		for j := -half; j <= half; j++ {
			sum += coeffs[j+half] * y[i+j]
		}

		out[i] = sum
	}

	// Edge samples: fit one polynomial to the leading and trailing window
	// and evaluate it at the uncovered positions.
	headX := rampFloats(window)
	headFit := polyFit(headX, y[:window], polyorder)

	for i := range half {
		out[i] = polyEval(headFit, float64(i))
	}

	tailFit := polyFit(headX, y[n-window:], polyorder)
	for i := n - half; i < n; i++ {
		out[i] = polyEval(tailFit, float64(i-(n-window)))
	}

	return out, nil
}

// savgolCenterCoeffs returns the convolution weights that evaluate the
// least-squares polynomial at the window center.
func savgolCenterCoeffs(window, polyorder int) []float64 {
	half := window / 2
	m := polyorder + 1

	// Normal-equation matrix G[k][l] = sum_j j^(k+l) over j in [-half, half].
	gram := make([][]float64, m)
	for k := range gram {
		gram[k] = make([]float64, m)
		for l := range gram[k] {
			var sum float64
			for j := -half; j <= half; j++ {
				sum += math.Pow(float64(j), float64(k+l))
			}

			gram[k][l] = sum
		}
	}

	rhs := make([]float64, m)
	rhs[0] = 1

	g := solveLinear(gram, rhs)

	coeffs := make([]float64, window)
	for j := -half; j <= half; j++ {
		var sum float64
		for k := range m {
			sum += g[k] * math.Pow(float64(j), float64(k))
		}

		coeffs[j+half] = sum
	}

	return coeffs
}

// polyFit fits a polynomial of the given order to (x, y) by least squares
// and returns its coefficients, lowest order first.
func polyFit(x, y []float64, order int) []float64 {
	m := order + 1

	mat := make([][]float64, m)
	rhs := make([]float64, m)

	for k := range m {
		mat[k] = make([]float64, m)
		for l := range m {
			var sum float64
			for _, xv := range x {
				sum += math.Pow(xv, float64(k+l))
			}

			mat[k][l] = sum
		}

		var sum float64
		for i, xv := range x {
			sum += math.Pow(xv, float64(k)) * y[i]
		}

		rhs[k] = sum
	}

	return solveLinear(mat, rhs)
}

func polyEval(coeffs []float64, x float64) float64 {
	var v float64
	for k := len(coeffs) - 1; k >= 0; k-- {
		v = v*x + coeffs[k]
	}

	return v
}

func rampFloats(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

// solveLinear solves the square system a*x = b by Gaussian elimination
// with partial pivoting. a and b are modified in place.
func solveLinear(a [][]float64, b []float64) []float64 {
	n := len(b)

	for col := range n {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}

		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		if a[col][col] == 0 {
			continue
		}

		for row := col + 1; row < n; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= f * a[col][k]
			}

			b[row] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		v := b[row]
		for k := row + 1; k < n; k++ {
			v -= a[row][k] * x[k]
		}

		if a[row][row] != 0 {
			v /= a[row][row]
		}

		x[row] = v
	}

	return x
}
