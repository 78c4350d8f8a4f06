package transform

import (
	"github.com/epsplab/epspkit/dsp/numeric"
	"github.com/epsplab/epspkit/recording"
)

// BaselineCorrection subtracts, per sweep, the mean voltage of a
// pre-stimulus window [t0, t1) from every sample of that sweep. The time
// axis is left untouched.
type BaselineCorrection struct {
	WindowMS [2]float64
}

func (t *BaselineCorrection) Name() string { return "baseline_correction" }

func (t *BaselineCorrection) Apply(ctx *recording.Context) error {
	t0, t1 := msToSeconds(t.WindowMS)

	for i := range ctx.Sweeps {
		sw := &ctx.Sweeps[i]

		start, stop := numeric.WindowIndices(sw.Time, t0, t1)
		if stop <= start {
			continue
		}

		var sum float64
		for _, v := range sw.Voltage[start:stop] {
			sum += v
		}

		baseline := sum / float64(stop-start)

		for j := range sw.Voltage {
			sw.Voltage[j] -= baseline
		}
	}

	return nil
}
