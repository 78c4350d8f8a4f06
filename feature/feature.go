// Package feature implements the per-intensity measurements extracted
// from the averaged traces: the fiber volley amplitude, the fEPSP
// minimum and slope, and the population spike amplitude.
//
// Features are built from name-keyed specs via New and run against a
// recording.Context. Detection failures on a single stimulus intensity
// are reported as NaN rows, never as errors, so one bad intensity does
// not block measurement of the others.
package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/epsplab/epspkit/dsp/smooth"
	"github.com/epsplab/epspkit/recording"
)

var (
	// ErrMissingParameter reports a required feature parameter absent
	// at construction time.
	ErrMissingParameter = errors.New("missing feature parameter")

	// ErrMissingDependency reports a feature whose required upstream
	// result is absent from the context.
	ErrMissingDependency = errors.New("missing feature dependency")

	// ErrUnknownFeature reports an unrecognized feature name.
	ErrUnknownFeature = errors.New("unknown feature")
)

// Feature computes one result table from a recording context.
type Feature interface {
	Name() string
	Compute(ctx *recording.Context) error
}

// Params carries the union of per-feature parameters as supplied by
// configuration. Pointer fields distinguish "absent" from zero for
// parameters without defaults.
type Params struct {
	WindowMS    []float64 `mapstructure:"window_ms" yaml:"window_ms"`
	FitDistance int       `mapstructure:"fit_distance" yaml:"fit_distance"`
	LagMS       *float64  `mapstructure:"lag_ms" yaml:"lag_ms"`
	Prominence  *float64  `mapstructure:"prominence" yaml:"prominence"`
	Threshold   *float64  `mapstructure:"threshold" yaml:"threshold"`
	Amplitude   string    `mapstructure:"amplitude" yaml:"amplitude"`
}

// Spec names a feature and carries its parameters plus an optional
// feature-local smoothing spec.
type Spec struct {
	Name      string      `mapstructure:"name" yaml:"name"`
	Params    Params      `mapstructure:"params" yaml:"params"`
	Smoothing smooth.Spec `mapstructure:"smoothing" yaml:"smoothing"`
}

// New builds the named feature from its spec. effective is the resolved
// smoothing policy for this feature instance (see smooth.Resolve);
// construction fails fast when a required parameter is absent.
func New(spec Spec, effective smooth.Spec) (Feature, error) {
	switch spec.Name {
	case "fiber_volley":
		return NewFiberVolley(spec.Params, effective)
	case "epsp":
		return NewEPSP(spec.Params, effective)
	case "pop_spike":
		return NewPopSpike(spec.Params, effective)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, spec.Name)
	}
}

func windowParam(name string, p Params) ([2]float64, error) {
	if len(p.WindowMS) != 2 {
		return [2]float64{}, fmt.Errorf("%w: %s requires window_ms as [start, end]",
			ErrMissingParameter, name)
	}

	return [2]float64{p.WindowMS[0] / 1000.0, p.WindowMS[1] / 1000.0}, nil
}

func argMax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}

	return best
}

func argMin(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] < v[best] {
			best = i
		}
	}

	return best
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
