// Package pipeline sequences one analysis run: transforms, then sweep
// averaging, then feature extraction, in a strict dependency order over
// a single recording.Context. It is the only component that knows the
// stage ordering; everything it calls is a pure function over the data
// model.
package pipeline

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/epsplab/epspkit/dsp/smooth"
	"github.com/epsplab/epspkit/feature"
	"github.com/epsplab/epspkit/recording"
	"github.com/epsplab/epspkit/transform"
)

// Config is the value-level configuration for one run: the transforms to
// apply in order, the features to extract in order, and the
// pipeline-wide default smoothing.
type Config struct {
	Transforms []transform.Spec `mapstructure:"transforms" yaml:"transforms"`
	Features   []feature.Spec   `mapstructure:"features" yaml:"features"`
	Smoothing  smooth.Spec      `mapstructure:"smoothing" yaml:"smoothing"`
}

// Run executes the configured pipeline against one recording context.
//
// All transforms and features are built up front, so configuration
// defects (unknown names, missing parameters) abort the run before any
// data is touched. A feature failing with ErrMissingDependency does not
// stop the features after it; all such errors are joined into the
// returned error. Any other feature error aborts the run.
func Run(ctx *recording.Context, cfg Config) error {
	transforms := make([]transform.Transform, 0, len(cfg.Transforms))

	for _, spec := range cfg.Transforms {
		tr, err := transform.New(spec)
		if err != nil {
			return err
		}

		transforms = append(transforms, tr)
	}

	features := make([]feature.Feature, 0, len(cfg.Features))

	for _, spec := range cfg.Features {
		ft, err := feature.New(spec, smooth.Resolve(spec.Smoothing, cfg.Smoothing))
		if err != nil {
			return err
		}

		features = append(features, ft)
	}

	for _, tr := range transforms {
		if err := tr.Apply(ctx); err != nil {
			return err
		}
	}

	if len(ctx.Averaged) == 0 {
		avg := &transform.AverageSweeps{}
		if err := avg.Apply(ctx); err != nil {
			return err
		}
	}

	var failed []error

	for _, ft := range features {
		err := ft.Compute(ctx)
		if err == nil {
			continue
		}

		if errors.Is(err, feature.ErrMissingDependency) {
			// Fatal for this feature only; siblings still run.
			failed = append(failed, err)
			continue
		}

		return err
	}

	return errors.Join(failed...)
}

// RunAll executes the pipeline over several independent recordings
// concurrently, one goroutine per recording. Contexts share no data, so
// no locking is needed; maxParallel <= 0 means no limit.
func RunAll(ctxs []*recording.Context, cfg Config, maxParallel int) error {
	var g errgroup.Group

	if maxParallel > 0 {
		g.SetLimit(maxParallel)
	}

	for _, ctx := range ctxs {
		g.Go(func() error {
			return Run(ctx, cfg)
		})
	}

	return g.Wait()
}
