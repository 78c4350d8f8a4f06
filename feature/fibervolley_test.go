package feature

import (
	"errors"
	"testing"

	"github.com/epsplab/epspkit/dsp/smooth"
	"github.com/epsplab/epspkit/internal/testutil"
	"github.com/epsplab/epspkit/recording"
)

func averagedCtx(fs float64, intensity float64, times, mean []float64) *recording.Context {
	ctx := recording.NewContext(nil, fs)
	ctx.Averaged = recording.AveragedTable{{
		Intensity: intensity,
		Time:      times,
		Mean:      mean,
		SEM:       make([]float64, len(mean)),
	}}

	return ctx
}

func TestFiberVolleyDetectsTrough(t *testing.T) {
	const fs = 10000.0

	times, trace := testutil.EvokedTrace(100, fs, 2e-3, 0.5, 4e-3, 0.3)
	ctx := averagedCtx(fs, 100, times, trace)

	fv, err := NewFiberVolley(Params{WindowMS: []float64{1, 3}}, smooth.Spec{})
	if err != nil {
		t.Fatal(err)
	}

	if err := fv.Compute(ctx); err != nil {
		t.Fatal(err)
	}

	result, ok := ctx.Result("fiber_volley").(FiberVolleyResult)
	if !ok || result.Len() != 1 {
		t.Fatalf("expected one fiber volley row, got %#v", ctx.Result("fiber_volley"))
	}

	row := result.Row(100)
	if row == nil {
		t.Fatal("no row for intensity 100")
	}

	testutil.RequireNear(t, row.TimeS, 2e-3, 1e-12)
	testutil.RequireNear(t, row.Voltage, -0.5, 1e-6)
	testutil.RequireNear(t, row.Amp, 0.5, 1e-6)
}

func TestFiberVolleyPicksMostProminentTrough(t *testing.T) {
	const fs = 10000.0

	times := testutil.TimeAxis(100, fs)
	trace := make([]float64, 100)

	// Shallow early trough, deeper late trough; the deeper one carries
	// the larger prominence and must win regardless of order.
	testutil.GaussianDeflection(trace, times, 1.5e-3, -0.1, 0.3e-3)
	testutil.GaussianDeflection(trace, times, 2.4e-3, -0.5, 0.3e-3)

	ctx := averagedCtx(fs, 100, times, trace)

	fv, err := NewFiberVolley(Params{WindowMS: []float64{1, 3}}, smooth.Spec{})
	if err != nil {
		t.Fatal(err)
	}

	if err := fv.Compute(ctx); err != nil {
		t.Fatal(err)
	}

	row := ctx.Result("fiber_volley").(FiberVolleyResult).Row(100)

	testutil.RequireNear(t, row.TimeS, 2.4e-3, 1e-12)
	testutil.RequireNear(t, row.Amp, 0.5, 1e-3)
}

func TestFiberVolleyEqualDepthTieBreak(t *testing.T) {
	const fs = 1000.0

	// Two troughs of identical depth. The first sits next to an elevated
	// shoulder that traps its prominence base at -0.4, so the second
	// trough carries the larger prominence and must win.
	trace := []float64{-0.4, -0.5, -0.1, -0.5, 0, 0}
	times := testutil.TimeAxis(len(trace), fs)

	ctx := averagedCtx(fs, 100, times, trace)

	fv, err := NewFiberVolley(Params{WindowMS: []float64{0, 6}}, smooth.Spec{})
	if err != nil {
		t.Fatal(err)
	}

	if err := fv.Compute(ctx); err != nil {
		t.Fatal(err)
	}

	row := ctx.Result("fiber_volley").(FiberVolleyResult).Row(100)

	testutil.RequireNear(t, row.TimeS, 3e-3, 1e-12)
	testutil.RequireNear(t, row.Voltage, -0.5, 1e-12)
}

func TestFiberVolleyNoTroughYieldsNaNRow(t *testing.T) {
	const fs = 10000.0

	times := testutil.TimeAxis(100, fs)
	trace := make([]float64, 100) // flat, nothing to detect

	ctx := averagedCtx(fs, 100, times, trace)

	fv, err := NewFiberVolley(Params{WindowMS: []float64{1, 3}}, smooth.Spec{})
	if err != nil {
		t.Fatal(err)
	}

	if err := fv.Compute(ctx); err != nil {
		t.Fatal(err)
	}

	row := ctx.Result("fiber_volley").(FiberVolleyResult).Row(100)
	if row == nil {
		t.Fatal("failed detection must still produce a row")
	}

	testutil.RequireNaN(t, row.Amp)
	testutil.RequireNaN(t, row.TimeS)
	testutil.RequireNaN(t, row.Voltage)

	if row.Intensity != 100 {
		t.Fatalf("intensity must survive a failed detection, got %v", row.Intensity)
	}
}

func TestFiberVolleyRequiresWindow(t *testing.T) {
	_, err := NewFiberVolley(Params{}, smooth.Spec{})
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("got %v, want ErrMissingParameter", err)
	}
}

func TestNewUnknownFeature(t *testing.T) {
	_, err := New(Spec{Name: "latency"}, smooth.Spec{})
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("got %v, want ErrUnknownFeature", err)
	}
}

func TestNewBuildsKnownFeatures(t *testing.T) {
	lag, prom := 5.0, 0.05

	specs := []Spec{
		{Name: "fiber_volley", Params: Params{WindowMS: []float64{1, 3}}},
		{Name: "epsp", Params: Params{WindowMS: []float64{1, 3}}},
		{Name: "pop_spike", Params: Params{LagMS: &lag, Prominence: &prom}},
	}

	for _, spec := range specs {
		ft, err := New(spec, smooth.Spec{})
		if err != nil {
			t.Fatalf("%s: %v", spec.Name, err)
		}

		if ft.Name() != spec.Name {
			t.Fatalf("got %q, want %q", ft.Name(), spec.Name)
		}
	}
}

func TestFiberVolleySmoothingError(t *testing.T) {
	const fs = 10000.0

	times, trace := testutil.EvokedTrace(100, fs, 2e-3, 0.5, 4e-3, 0.3)
	ctx := averagedCtx(fs, 100, times, trace)

	fv, err := NewFiberVolley(Params{WindowMS: []float64{1, 3}},
		smooth.Spec{Method: smooth.MethodMovingAverage}) // window missing
	if err != nil {
		t.Fatal(err)
	}

	if err := fv.Compute(ctx); err == nil {
		t.Fatal("invalid smoothing must surface as an error")
	}
}
