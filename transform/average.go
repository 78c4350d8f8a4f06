package transform

import (
	"fmt"
	"math"
	"sort"

	"github.com/epsplab/epspkit/recording"
)

// AverageSweeps collapses the sweep table into one mean trace per
// stimulus intensity, with the standard error of the mean per time
// point. SEM uses the sample standard deviation (n-1 denominator) and is
// NaN for groups with fewer than two sweeps. The resulting table is
// sorted by intensity.
type AverageSweeps struct{}

func (t *AverageSweeps) Name() string { return "average_sweeps" }

func (t *AverageSweeps) Apply(ctx *recording.Context) error {
	groups := ctx.Sweeps.ByIntensity()

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Intensity < groups[j].Intensity
	})

	averaged := make(recording.AveragedTable, 0, len(groups))

	for _, group := range groups {
		if len(group.Sweeps) == 0 {
			continue
		}

		grid := group.Sweeps[0].Time
		n := len(group.Sweeps)

		for _, sw := range group.Sweeps {
			if len(sw.Time) != len(grid) {
				return fmt.Errorf("%w: sweep %d at intensity %g has %d samples, template grid has %d",
					ErrGridMismatch, sw.ID, group.Intensity, len(sw.Time), len(grid))
			}
		}

		trace := recording.AveragedTrace{
			Intensity: group.Intensity,
			Time:      append([]float64(nil), grid...),
			Mean:      make([]float64, len(grid)),
			SEM:       make([]float64, len(grid)),
		}

		for i := range grid {
			var sum float64
			for _, sw := range group.Sweeps {
				sum += sw.Voltage[i]
			}

			mean := sum / float64(n)
			trace.Mean[i] = mean

			if n < 2 {
				trace.SEM[i] = math.NaN()
				continue
			}

			var ss float64
			for _, sw := range group.Sweeps {
				d := sw.Voltage[i] - mean
				ss += d * d
			}

			std := math.Sqrt(ss / float64(n-1))
			trace.SEM[i] = std / math.Sqrt(float64(n))
		}

		averaged = append(averaged, trace)
	}

	ctx.Averaged = averaged

	return nil
}
