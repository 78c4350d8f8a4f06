// Package testutil provides shared helpers for tests: tolerance checks,
// synthetic evoked traces, and sweep table builders.
package testutil

import "github.com/epsplab/epspkit/recording"

// BuildSweeps assembles a sweep table with the given repetitions per
// intensity. gen produces the time and voltage arrays for one sweep.
func BuildSweeps(intensities []float64, repetitions int,
	gen func(intensity float64, rep int) (times, volts []float64),
) recording.SweepTable {
	var table recording.SweepTable

	for _, intensity := range intensities {
		for rep := 1; rep <= repetitions; rep++ {
			times, volts := gen(intensity, rep)

			table = append(table, recording.Sweep{
				Intensity: intensity,
				ID:        rep,
				Time:      times,
				Voltage:   volts,
			})
		}
	}

	return table
}
