package numeric

import "sort"

// TimeToIndex returns the first index whose time value is >= t.
//
// This lower-bound search is the sole sanctioned conversion from a time
// boundary to a sample index; it keeps window slicing robust to tiny
// floating-point jitter in the timestamps. times must be sorted in
// ascending order. The result ranges from 0 to len(times) inclusive.
func TimeToIndex(times []float64, t float64) int {
	return sort.SearchFloat64s(times, t)
}

// WindowIndices converts a [t0, t1) time window into a half-open index
// range on the given ascending time axis.
func WindowIndices(times []float64, t0, t1 float64) (start, stop int) {
	return TimeToIndex(times, t0), TimeToIndex(times, t1)
}
