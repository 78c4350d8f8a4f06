package numeric

import "math"

// LinearFit performs an ordinary least-squares line fit of y on x and
// returns the slope, intercept, and coefficient of determination.
//
// RSquared is NaN when y has zero total variance (a constant trace),
// since goodness of fit is undefined there.
func LinearFit(x, y []float64) (slope, intercept, rSquared float64) {
	n := len(x)
	if n == 0 || len(y) != n {
		return math.NaN(), math.NaN(), math.NaN()
	}

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}

	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := range x {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}

	if sxx == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX

	var ssRes, ssTot float64
	for i := range x {
		fit := slope*x[i] + intercept
		ssRes += (y[i] - fit) * (y[i] - fit)
		ssTot += (y[i] - meanY) * (y[i] - meanY)
	}

	if ssTot == 0 {
		return slope, intercept, math.NaN()
	}

	return slope, intercept, 1 - ssRes/ssTot
}
