package testutil

import "math"

// TimeAxis returns n sample times in seconds at the given sampling rate,
// starting at t=0.
func TimeAxis(n int, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / sampleRate
	}

	return out
}

// GaussianDeflection adds a Gaussian bump to trace: centered at centerS
// seconds, with the given peak amplitude (negative for troughs) and
// width (standard deviation) in seconds. times and trace must be
// sample-aligned.
func GaussianDeflection(trace, times []float64, centerS, amplitude, widthS float64) {
	for i, t := range times {
		d := (t - centerS) / widthS
		trace[i] += amplitude * math.Exp(-0.5*d*d)
	}
}

// EvokedTrace builds a synthetic evoked field potential on a flat 0 mV
// baseline: a negative trough at troughS seconds (depth in mV, positive
// number) and a positive hump at humpS seconds (height in mV). Widths
// are fixed at 0.3 ms, narrow enough to keep both deflections distinct.
func EvokedTrace(n int, sampleRate, troughS, depth, humpS, height float64) (times, trace []float64) {
	times = TimeAxis(n, sampleRate)
	trace = make([]float64, n)

	const width = 0.3e-3

	GaussianDeflection(trace, times, troughS, -depth, width)
	GaussianDeflection(trace, times, humpS, height, width)

	return times, trace
}
