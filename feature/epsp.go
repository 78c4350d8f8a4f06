package feature

import (
	"math"

	"github.com/epsplab/epspkit/dsp/numeric"
	"github.com/epsplab/epspkit/dsp/smooth"
	"github.com/epsplab/epspkit/recording"
)

// defaultFitDistance is the half-width, in samples, of the local linear
// fit around the slope midpoint.
const defaultFitDistance = 4

// EPSPRow is the fEPSP measurement for one stimulus intensity.
//
// The minimum (TimeS, Voltage) and the slope midpoint (SlopeMidTimeS,
// SlopeMidVoltage) are located independently: the former is the lowest
// voltage in the window, the latter the steepest negative derivative.
type EPSPRow struct {
	Intensity       float64 `json:"stim_intensity"`
	TimeS           float64 `json:"epsp_s"`       // minimum time, seconds
	Voltage         float64 `json:"epsp_v"`       // minimum voltage, mV
	SlopeMidTimeS   float64 `json:"slope_mid_s"`  // slope midpoint time, seconds
	SlopeMidVoltage float64 `json:"slope_mid_v"`  // slope midpoint voltage, mV
	Slope           float64 `json:"slope"`        // mV/s
	SlopeMS         float64 `json:"slope_ms"`     // mV/ms
	RSquared        float64 `json:"r_squared"`    // goodness of the local fit
	SlopeToFVAmp    float64 `json:"slope_to_fv_amp"` // slope_ms / fiber volley amp
}

// EPSPResult is the per-intensity fEPSP table.
type EPSPResult []EPSPRow

func (EPSPResult) FeatureName() string { return "epsp" }
func (r EPSPResult) Len() int          { return len(r) }

// Row returns the row for the given intensity, or nil.
func (r EPSPResult) Row(intensity float64) *EPSPRow {
	for i := range r {
		if r[i].Intensity == intensity {
			return &r[i]
		}
	}

	return nil
}

// EPSP measures the field EPSP minimum and slope within a fixed time
// window of each averaged trace. The slope comes from a linear fit over
// fitDistance samples on each side of the steepest-descent point,
// time-shifted so the midpoint sits at zero.
//
// When a fiber volley result is present on the context, each row also
// carries the slope normalized by that intensity's fiber volley
// amplitude; without one the ratio is NaN.
type EPSP struct {
	window      [2]float64 // seconds
	fitDistance int
	smoothing   smooth.Spec
}

// NewEPSP builds the fEPSP feature. window_ms is required; fit_distance
// defaults to 4 samples.
func NewEPSP(p Params, effective smooth.Spec) (*EPSP, error) {
	window, err := windowParam("epsp", p)
	if err != nil {
		return nil, err
	}

	fitDistance := p.FitDistance
	if fitDistance <= 0 {
		fitDistance = defaultFitDistance
	}

	return &EPSP{window: window, fitDistance: fitDistance, smoothing: effective}, nil
}

func (f *EPSP) Name() string { return "epsp" }

func (f *EPSP) Compute(ctx *recording.Context) error {
	fv, _ := ctx.Result("fiber_volley").(FiberVolleyResult)

	result := make(EPSPResult, 0, len(ctx.Averaged))

	for i := range ctx.Averaged {
		trace := &ctx.Averaged[i]

		y, err := smooth.Apply(trace.Mean, f.smoothing, ctx.SampleRate)
		if err != nil {
			return err
		}

		row := f.measure(trace.Intensity, trace.Time, y)

		// Normalization against the fiber volley is best-effort; an
		// absent or empty upstream result just leaves the ratio NaN.
		if fvRow := fv.Row(trace.Intensity); fvRow != nil {
			if finite(fvRow.Amp) && fvRow.Amp != 0 && finite(row.SlopeMS) && row.SlopeMS != 0 {
				row.SlopeToFVAmp = row.SlopeMS / fvRow.Amp
			}
		}

		result = append(result, row)
	}

	ctx.AddResult(result)

	return nil
}

func (f *EPSP) measure(intensity float64, x, y []float64) EPSPRow {
	row := EPSPRow{
		Intensity:       intensity,
		TimeS:           math.NaN(),
		Voltage:         math.NaN(),
		SlopeMidTimeS:   math.NaN(),
		SlopeMidVoltage: math.NaN(),
		Slope:           math.NaN(),
		SlopeMS:         math.NaN(),
		RSquared:        math.NaN(),
		SlopeToFVAmp:    math.NaN(),
	}

	start, stop := numeric.WindowIndices(x, f.window[0], f.window[1])
	if stop-start < 2 {
		return row
	}

	yw := y[start:stop]

	minIdx := start + argMin(yw)
	row.TimeS = x[minIdx]
	row.Voltage = y[minIdx]

	dy := numeric.Gradient(y, x)
	mid := start + argMin(dy[start:stop])

	row.SlopeMidTimeS = x[mid]
	row.SlopeMidVoltage = y[mid]

	lo := mid - f.fitDistance
	if lo < 0 {
		lo = 0
	}

	hi := mid + f.fitDistance
	if hi > len(y)-1 {
		hi = len(y) - 1
	}

	if hi-lo < 1 {
		return row
	}

	// Shift the fit abscissa so t=0 sits at the midpoint.
	xs := make([]float64, hi-lo+1)
	for i := range xs {
		xs[i] = x[lo+i] - x[mid]
	}

	slope, _, r2 := numeric.LinearFit(xs, y[lo:hi+1])

	row.Slope = slope
	row.SlopeMS = slope / 1000.0
	row.RSquared = r2

	return row
}
