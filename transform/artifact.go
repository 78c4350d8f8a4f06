package transform

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/epsplab/epspkit/dsp/numeric"
	"github.com/epsplab/epspkit/recording"
)

// templateEnergyFloor is the minimum in-window template energy for the
// least-squares projection to be meaningful.
const templateEnergyFloor = 1e-20

// CropStimArtifact removes, per sweep, all samples whose time falls in
// [t0, t1), then re-zeros the time axis so the first remaining sample
// sits at t=0. All sweeps realign to a common zero regardless of how
// much was cropped.
type CropStimArtifact struct {
	WindowMS [2]float64
}

func (t *CropStimArtifact) Name() string { return "crop_stim_artifact" }

func (t *CropStimArtifact) Apply(ctx *recording.Context) error {
	t0, t1 := msToSeconds(t.WindowMS)

	for i := range ctx.Sweeps {
		sw := &ctx.Sweeps[i]

		start, stop := numeric.WindowIndices(sw.Time, t0, t1)

		times := make([]float64, 0, len(sw.Time)-(stop-start))
		volts := make([]float64, 0, len(sw.Voltage)-(stop-start))

		times = append(times, sw.Time[:start]...)
		times = append(times, sw.Time[stop:]...)
		volts = append(volts, sw.Voltage[:start]...)
		volts = append(volts, sw.Voltage[stop:]...)

		if len(times) > 0 {
			zero := times[0]
			for j := range times {
				times[j] -= zero
			}
		}

		sw.Time = times
		sw.Voltage = volts
	}

	return nil
}

// TemplateSubtractStimArtifact removes the stimulus artifact without
// discarding samples. Per intensity group it builds a template trace
// (the sample-wise mean across the group's sweeps) and, within the
// artifact window, subtracts each sweep's least-squares projection onto
// that template:
//
//	a = (y·T) / (T·T)   restricted to the window
//	y_window -= a * T_window
//
// Groups whose template carries essentially no energy in the window are
// left unmodified. All sweeps in a group must share the template's time
// grid sample for sample.
type TemplateSubtractStimArtifact struct {
	WindowMS [2]float64
}

func (t *TemplateSubtractStimArtifact) Name() string { return "template_subtract_stim_artifact" }

func (t *TemplateSubtractStimArtifact) Apply(ctx *recording.Context) error {
	t0, t1 := msToSeconds(t.WindowMS)

	for _, group := range ctx.Sweeps.ByIntensity() {
		if len(group.Sweeps) == 0 {
			continue
		}

		grid := group.Sweeps[0].Time

		for _, sw := range group.Sweeps {
			if !sameGrid(sw.Time, grid) {
				return fmt.Errorf("%w: sweep %d at intensity %g does not match the template grid",
					ErrGridMismatch, sw.ID, group.Intensity)
			}
		}

		template := make([]float64, len(grid))
		for _, sw := range group.Sweeps {
			vecmath.AddBlockInPlace(template, sw.Voltage)
		}

		vecmath.ScaleBlock(template, template, 1/float64(len(group.Sweeps)))

		start, stop := numeric.WindowIndices(grid, t0, t1)
		if stop <= start {
			continue
		}

		tw := template[start:stop]

		denom := dot(tw, tw)
		if denom <= templateEnergyFloor {
			continue
		}

		scaled := make([]float64, len(tw))

		for _, sw := range group.Sweeps {
			yw := sw.Voltage[start:stop]
			a := dot(yw, tw) / denom

			vecmath.ScaleBlock(scaled, tw, -a)
			vecmath.AddBlockInPlace(yw, scaled)
		}
	}

	return nil
}

// sameGrid reports whether two time grids are sample-identical up to
// floating-point noise.
func sameGrid(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}

	const tol = 1e-9

	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}

	return true
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}
