package numeric

// FindPeaks locates local maxima of y in ascending index order and
// returns their indices together with their prominences.
//
// A sample is a peak when it is strictly higher than its direct
// neighbors; for flat plateau tops the middle sample is reported. When
// minProminence is > 0 only peaks with at least that prominence are
// returned.
func FindPeaks(y []float64, minProminence float64) (indices []int, prominences []float64) {
	peaks := localMaxima(y)
	proms := Prominences(y, peaks)

	if minProminence <= 0 {
		return peaks, proms
	}

	var (
		keptIdx  []int
		keptProm []float64
	)

	for i, p := range peaks {
		if proms[i] >= minProminence {
			keptIdx = append(keptIdx, p)
			keptProm = append(keptProm, proms[i])
		}
	}

	return keptIdx, keptProm
}

// Prominences computes the prominence of each peak: the height of the
// peak above the higher of the two valley minima that separate it from
// higher terrain (or the trace boundary) on either side.
func Prominences(y []float64, peaks []int) []float64 {
	proms := make([]float64, len(peaks))

	for i, p := range peaks {
		leftMin := y[p]
		for j := p - 1; j >= 0; j-- {
			if y[j] > y[p] {
				break
			}

			if y[j] < leftMin {
				leftMin = y[j]
			}
		}

		rightMin := y[p]
		for j := p + 1; j < len(y); j++ {
			if y[j] > y[p] {
				break
			}

			if y[j] < rightMin {
				rightMin = y[j]
			}
		}

		base := leftMin
		if rightMin > base {
			base = rightMin
		}

		proms[i] = y[p] - base
	}

	return proms
}

func localMaxima(y []float64) []int {
	var peaks []int

	i := 1
	for i < len(y)-1 {
		if y[i-1] >= y[i] {
			i++
			continue
		}

		// Scan over a possible plateau.
		ahead := i + 1
		for ahead < len(y)-1 && y[ahead] == y[i] {
			ahead++
		}

		if y[ahead] < y[i] {
			peaks = append(peaks, (i+ahead-1)/2)
		}

		i = ahead
	}

	return peaks
}
