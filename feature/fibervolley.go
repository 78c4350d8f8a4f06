package feature

import (
	"math"

	"github.com/epsplab/epspkit/dsp/numeric"
	"github.com/epsplab/epspkit/dsp/smooth"
	"github.com/epsplab/epspkit/recording"
)

// FiberVolleyRow is the fiber volley measurement for one stimulus
// intensity. All value fields are NaN when no candidate trough was found.
type FiberVolleyRow struct {
	Intensity float64 `json:"stim_intensity"`
	Amp       float64 `json:"fv_amp"` // |voltage| at the trough, mV
	TimeS     float64 `json:"fv_s"`   // trough time, seconds
	Voltage   float64 `json:"fv_v"`   // trough voltage, mV
}

// FiberVolleyResult is the per-intensity fiber volley table.
type FiberVolleyResult []FiberVolleyRow

func (FiberVolleyResult) FeatureName() string { return "fiber_volley" }
func (r FiberVolleyResult) Len() int          { return len(r) }

// Row returns the row for the given intensity, or nil.
func (r FiberVolleyResult) Row(intensity float64) *FiberVolleyRow {
	for i := range r {
		if r[i].Intensity == intensity {
			return &r[i]
		}
	}

	return nil
}

// FiberVolley detects the early negative-going deflection within a fixed
// time window of each averaged trace. Candidate troughs are the peaks of
// the inverted trace; the one with the largest prominence wins.
type FiberVolley struct {
	window    [2]float64 // seconds
	smoothing smooth.Spec
}

// NewFiberVolley builds the fiber volley feature. window_ms is required.
func NewFiberVolley(p Params, effective smooth.Spec) (*FiberVolley, error) {
	window, err := windowParam("fiber_volley", p)
	if err != nil {
		return nil, err
	}

	return &FiberVolley{window: window, smoothing: effective}, nil
}

func (f *FiberVolley) Name() string { return "fiber_volley" }

func (f *FiberVolley) Compute(ctx *recording.Context) error {
	result := make(FiberVolleyResult, 0, len(ctx.Averaged))

	for i := range ctx.Averaged {
		trace := &ctx.Averaged[i]

		y, err := smooth.Apply(trace.Mean, f.smoothing, ctx.SampleRate)
		if err != nil {
			return err
		}

		result = append(result, f.detect(trace.Intensity, trace.Time, y))
	}

	ctx.AddResult(result)

	return nil
}

func (f *FiberVolley) detect(intensity float64, x, y []float64) FiberVolleyRow {
	row := FiberVolleyRow{
		Intensity: intensity,
		Amp:       math.NaN(),
		TimeS:     math.NaN(),
		Voltage:   math.NaN(),
	}

	start, stop := numeric.WindowIndices(x, f.window[0], f.window[1])
	if stop-start < 3 {
		return row
	}

	yw := y[start:stop]

	neg := make([]float64, len(yw))
	for i, v := range yw {
		neg[i] = -v
	}

	peaks, proms := numeric.FindPeaks(neg, 0)
	if len(peaks) == 0 {
		return row
	}

	var rel int
	if len(proms) == len(peaks) {
		rel = peaks[argMax(proms)]
	} else {
		// Tie-break without prominences: most negative voltage.
		rel = peaks[0]
		for _, p := range peaks {
			if yw[p] < yw[rel] {
				rel = p
			}
		}
	}

	idx := start + rel

	row.TimeS = x[idx]
	row.Voltage = y[idx]

	if finite(row.Voltage) {
		row.Amp = math.Abs(row.Voltage)
	}

	return row
}
