package feature

import (
	"fmt"
	"math"

	"github.com/epsplab/epspkit/dsp/numeric"
	"github.com/epsplab/epspkit/dsp/smooth"
	"github.com/epsplab/epspkit/recording"
)

// Amplitude selects how the population spike amplitude is measured.
type Amplitude string

const (
	// AmplitudeBaselineInterpolated draws a straight baseline from the
	// fEPSP minimum to a post-apex return-to-baseline anchor and
	// measures the apex height above that line.
	AmplitudeBaselineInterpolated Amplitude = "baseline_interpolated"

	// AmplitudeDirectDifference measures the plain voltage difference
	// between the fEPSP minimum and the spike apex.
	AmplitudeDirectDifference Amplitude = "direct_difference"
)

// PopSpikeRow is the population spike measurement for one stimulus
// intensity. All value fields are NaN when no spike was detected.
type PopSpikeRow struct {
	Intensity float64 `json:"stim_intensity"`
	Amp       float64 `json:"ps_amp"` // spike amplitude, mV
	TimeS     float64 `json:"ps_s"`   // apex time, seconds
	Voltage   float64 `json:"ps_v"`   // apex voltage, mV
}

// PopSpikeResult is the per-intensity population spike table.
type PopSpikeResult []PopSpikeRow

func (PopSpikeResult) FeatureName() string { return "pop_spike" }
func (r PopSpikeResult) Len() int          { return len(r) }

// Row returns the row for the given intensity, or nil.
func (r PopSpikeResult) Row(intensity float64) *PopSpikeRow {
	for i := range r {
		if r[i].Intensity == intensity {
			return &r[i]
		}
	}

	return nil
}

// PopSpike detects the positive-going population spike riding on the
// fEPSP. The search window starts at the fEPSP minimum and extends
// lag_ms forward. The primary method picks the most prominent positive
// peak; when none clears the prominence floor and a derivative threshold
// is configured, a fallback scans from the steepest rise to the first
// near-flat point and accepts the intervening hump if it rises enough.
//
// PopSpike requires the epsp result on the context and fails with
// ErrMissingDependency when it is absent or empty.
type PopSpike struct {
	lag        float64 // seconds
	prominence float64 // mV
	threshold  float64 // mV/s; 0 disables the derivative fallback
	amplitude  Amplitude
	smoothing  smooth.Spec
}

// NewPopSpike builds the population spike feature. lag_ms and prominence
// are required; threshold is optional and, when absent, disables the
// derivative fallback. amplitude defaults to baseline_interpolated.
func NewPopSpike(p Params, effective smooth.Spec) (*PopSpike, error) {
	if p.LagMS == nil {
		return nil, fmt.Errorf("%w: pop_spike requires lag_ms", ErrMissingParameter)
	}

	if p.Prominence == nil {
		return nil, fmt.Errorf("%w: pop_spike requires prominence", ErrMissingParameter)
	}

	var threshold float64
	if p.Threshold != nil {
		threshold = *p.Threshold
	}

	amplitude := Amplitude(p.Amplitude)
	switch amplitude {
	case "":
		amplitude = AmplitudeBaselineInterpolated
	case AmplitudeBaselineInterpolated, AmplitudeDirectDifference:
	default:
		return nil, fmt.Errorf("%w: pop_spike amplitude must be %q or %q, got %q",
			ErrMissingParameter, AmplitudeBaselineInterpolated, AmplitudeDirectDifference, p.Amplitude)
	}

	return &PopSpike{
		lag:        *p.LagMS / 1000.0,
		prominence: *p.Prominence,
		threshold:  threshold,
		amplitude:  amplitude,
		smoothing:  effective,
	}, nil
}

func (f *PopSpike) Name() string { return "pop_spike" }

func (f *PopSpike) Compute(ctx *recording.Context) error {
	epsp, ok := ctx.Result("epsp").(EPSPResult)
	if !ok || epsp.Len() == 0 {
		return fmt.Errorf("%w: pop_spike requires the epsp result", ErrMissingDependency)
	}

	result := make(PopSpikeResult, 0, len(ctx.Averaged))

	for i := range ctx.Averaged {
		trace := &ctx.Averaged[i]

		y, err := smooth.Apply(trace.Mean, f.smoothing, ctx.SampleRate)
		if err != nil {
			return err
		}

		result = append(result, f.detect(trace.Intensity, trace.Time, y, epsp))
	}

	ctx.AddResult(result)

	return nil
}

func (f *PopSpike) detect(intensity float64, x, y []float64, epsp EPSPResult) PopSpikeRow {
	row := PopSpikeRow{
		Intensity: intensity,
		Amp:       math.NaN(),
		TimeS:     math.NaN(),
		Voltage:   math.NaN(),
	}

	epspRow := epsp.Row(intensity)
	if epspRow == nil || !finite(epspRow.TimeS) {
		return row
	}

	start, stop := numeric.WindowIndices(x, epspRow.TimeS, epspRow.TimeS+f.lag)
	if stop-start < 3 {
		return row
	}

	dy := numeric.Gradient(y, x)
	yw := y[start:stop]
	dyw := dy[start:stop]

	rel, found := f.primaryPeak(yw)
	if !found && f.threshold > 0 {
		rel, found = f.fallbackPeak(yw, dyw)
	}

	if !found {
		return row
	}

	idx := start + rel

	row.TimeS = x[idx]
	row.Voltage = y[idx]

	switch f.amplitude {
	case AmplitudeDirectDifference:
		if finite(row.Voltage) && finite(epspRow.Voltage) {
			row.Amp = math.Abs(epspRow.Voltage - row.Voltage)
		}

	case AmplitudeBaselineInterpolated:
		row.Amp = f.baselineAmplitude(x, y, idx, stop, epspRow)
	}

	return row
}

// primaryPeak returns the most prominent positive peak clearing the
// prominence floor.
func (f *PopSpike) primaryPeak(yw []float64) (int, bool) {
	peaks, proms := numeric.FindPeaks(yw, f.prominence)
	if len(peaks) == 0 {
		return 0, false
	}

	return peaks[argMax(proms)], true
}

// fallbackPeak handles spikes that never form a distinct local maximum:
// start at the steepest positive rise, scan forward to the first point
// whose derivative magnitude drops below the threshold, and accept the
// highest sample in between when the rise meets the prominence floor.
func (f *PopSpike) fallbackPeak(yw, dyw []float64) (int, bool) {
	slopePeaks, _ := numeric.FindPeaks(dyw, 0)
	if len(slopePeaks) == 0 {
		return 0, false
	}

	psStart := slopePeaks[0]
	for _, p := range slopePeaks {
		if dyw[p] > dyw[psStart] {
			psStart = p
		}
	}

	psEnd := -1
	bestMag := math.Inf(1)

	for j := psStart + 1; j < len(dyw); j++ {
		mag := math.Abs(dyw[j])
		if mag < f.threshold && mag < bestMag {
			psEnd = j
			bestMag = mag
		}
	}

	if psEnd < 0 {
		return 0, false
	}

	j := psStart + argMax(yw[psStart:psEnd+1])
	if yw[j]-yw[psStart] < f.prominence {
		return 0, false
	}

	return j, true
}

// baselineAmplitude measures the apex height above a straight baseline
// drawn from the fEPSP minimum to the first local minimum after the
// apex (or the window end when the trace never turns back down).
func (f *PopSpike) baselineAmplitude(x, y []float64, apex, stop int, epspRow *EPSPRow) float64 {
	if !finite(epspRow.Voltage) || !finite(y[apex]) {
		return math.NaN()
	}

	anchor := stop - 1

	if apex+1 < stop {
		seg := y[apex+1 : stop]

		neg := make([]float64, len(seg))
		for i, v := range seg {
			neg[i] = -v
		}

		if troughs, _ := numeric.FindPeaks(neg, 0); len(troughs) > 0 {
			anchor = apex + 1 + troughs[0]
		}
	}

	x0, y0 := epspRow.TimeS, epspRow.Voltage
	x1, y1 := x[anchor], y[anchor]

	if x1 == x0 {
		return math.NaN()
	}

	base := y0 + (y1-y0)*(x[apex]-x0)/(x1-x0)

	return math.Abs(y[apex] - base)
}
