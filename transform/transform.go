// Package transform implements the trace-level mutations applied to a
// recording before feature extraction: baseline correction, stimulus
// artifact removal (hard crop and template subtraction), and sweep
// averaging.
//
// Transforms run in the caller-specified order; the conventional order
// is baseline correction, then artifact removal, then averaging.
package transform

import (
	"errors"
	"fmt"

	"github.com/epsplab/epspkit/recording"
)

var (
	// ErrUnknownTransform reports an unrecognized transform name.
	ErrUnknownTransform = errors.New("unknown transform")

	// ErrMissingParameter reports a required transform parameter that
	// was not supplied.
	ErrMissingParameter = errors.New("missing transform parameter")

	// ErrGridMismatch reports sweeps whose time grids are not
	// sample-identical where the transform requires a shared grid.
	ErrGridMismatch = errors.New("time grid mismatch")
)

// Transform mutates the sweep table (or derived tables) of a Context.
type Transform interface {
	Name() string
	Apply(ctx *recording.Context) error
}

// Spec names a transform and carries its parameters, as supplied by
// configuration.
type Spec struct {
	Name     string    `mapstructure:"name" yaml:"name"`
	WindowMS []float64 `mapstructure:"window_ms" yaml:"window_ms"` // [start, end) in milliseconds
}

// New builds the named transform from its spec.
func New(spec Spec) (Transform, error) {
	build, ok := builders[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, spec.Name)
	}

	return build(spec)
}

var builders = map[string]func(Spec) (Transform, error){
	"baseline_correction": func(s Spec) (Transform, error) {
		window, err := windowParam(s)
		if err != nil {
			return nil, err
		}

		return &BaselineCorrection{WindowMS: window}, nil
	},
	"crop_stim_artifact": func(s Spec) (Transform, error) {
		window, err := windowParam(s)
		if err != nil {
			return nil, err
		}

		return &CropStimArtifact{WindowMS: window}, nil
	},
	"template_subtract_stim_artifact": func(s Spec) (Transform, error) {
		window, err := windowParam(s)
		if err != nil {
			return nil, err
		}

		return &TemplateSubtractStimArtifact{WindowMS: window}, nil
	},
	"average_sweeps": func(Spec) (Transform, error) {
		return &AverageSweeps{}, nil
	},
}

func windowParam(s Spec) ([2]float64, error) {
	if len(s.WindowMS) != 2 {
		return [2]float64{}, fmt.Errorf("%w: %s requires window_ms as [start, end]",
			ErrMissingParameter, s.Name)
	}

	return [2]float64{s.WindowMS[0], s.WindowMS[1]}, nil
}

// msToSeconds converts a millisecond window to the seconds used on the
// sweep time axis.
func msToSeconds(window [2]float64) (t0, t1 float64) {
	return window[0] / 1000.0, window[1] / 1000.0
}
