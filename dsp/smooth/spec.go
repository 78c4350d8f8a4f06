// Package smooth resolves and applies per-component trace smoothing.
//
// A feature (or plot) either carries its own smoothing Spec or defers to
// the pipeline-wide default; Resolve picks the effective one, and Apply
// dispatches it onto a 1-D trace.
package smooth

import (
	"fmt"

	"github.com/epsplab/epspkit/dsp/numeric"
)

// Method identifies a smoothing filter.
type Method string

const (
	MethodNone          Method = "none"
	MethodMovingAverage Method = "moving_average"
	MethodSavGol        Method = "savgol"
	MethodButterLowpass Method = "butter_lowpass"
)

// Spec holds one smoothing method plus its parameters. The zero value
// means "no smoothing configured".
type Spec struct {
	Method    Method  `mapstructure:"method" yaml:"method"`
	Window    int     `mapstructure:"window" yaml:"window"`         // moving_average, savgol
	PolyOrder int     `mapstructure:"polyorder" yaml:"polyorder"`   // savgol
	Cutoff    float64 `mapstructure:"cutoff_hz" yaml:"cutoff_hz"`   // butter_lowpass, Hz
	Order     int     `mapstructure:"order" yaml:"order"`           // butter_lowpass
}

// Enabled reports whether the spec selects an actual filter.
func (s Spec) Enabled() bool {
	return s.Method != "" && s.Method != MethodNone
}

// Resolve returns the effective smoothing for a component: the local spec
// when it selects an actual filter, the pipeline-wide default otherwise.
// This is the single resolution rule; a local Spec whose method is "none"
// always defers to the default.
func Resolve(local, global Spec) Spec {
	if local.Enabled() {
		return local
	}

	return global
}

// Apply runs the configured filter over y and returns the smoothed trace.
// Method "none" (or the zero Spec) returns y unchanged without copying.
// fs is the sampling rate in Hz and is required for Butterworth smoothing.
//
// Savitzky-Golay windows are forced odd by incrementing even values
// before the filter runs.
func Apply(y []float64, s Spec, fs float64) ([]float64, error) {
	switch s.Method {
	case "", MethodNone:
		return y, nil

	case MethodMovingAverage:
		if s.Window < 1 {
			return nil, fmt.Errorf("%w: moving average window must be >= 1: %d",
				numeric.ErrInvalidParameter, s.Window)
		}

		return numeric.MovingAverage(y, s.Window), nil

	case MethodSavGol:
		window := s.Window
		if window%2 == 0 {
			window++
		}

		return numeric.SavGol(y, window, s.PolyOrder)

	case MethodButterLowpass:
		if fs <= 0 {
			return nil, fmt.Errorf("%w: butterworth smoothing requires a sampling rate",
				numeric.ErrInvalidParameter)
		}

		order := s.Order
		if order <= 0 {
			order = 3
		}

		return ButterLowpass(y, s.Cutoff, fs, order)

	default:
		return nil, fmt.Errorf("%w: unknown smoothing method %q",
			numeric.ErrInvalidParameter, s.Method)
	}
}
