package smooth

import (
	"errors"
	"math"
	"testing"

	"github.com/epsplab/epspkit/dsp/numeric"
)

func TestResolvePrefersEnabledLocal(t *testing.T) {
	local := Spec{Method: MethodMovingAverage, Window: 5}
	global := Spec{Method: MethodSavGol, Window: 21, PolyOrder: 3}

	if got := Resolve(local, global); got.Method != MethodMovingAverage {
		t.Fatalf("got %q, want local moving_average", got.Method)
	}
}

func TestResolveNoneDefersToGlobal(t *testing.T) {
	global := Spec{Method: MethodSavGol, Window: 21, PolyOrder: 3}

	if got := Resolve(Spec{Method: MethodNone}, global); got.Method != MethodSavGol {
		t.Fatalf("explicit none must defer to global, got %q", got.Method)
	}

	if got := Resolve(Spec{}, global); got.Method != MethodSavGol {
		t.Fatalf("zero spec must defer to global, got %q", got.Method)
	}
}

func TestApplyNoneReturnsInputUnchanged(t *testing.T) {
	y := []float64{1, 2, 3}

	out, err := Apply(y, Spec{Method: MethodNone}, 0)
	if err != nil {
		t.Fatal(err)
	}

	if &out[0] != &y[0] {
		t.Fatal("none must return the input slice, not a copy")
	}
}

func TestApplyUnknownMethod(t *testing.T) {
	_, err := Apply([]float64{1, 2, 3}, Spec{Method: "median"}, 1000)
	if !errors.Is(err, numeric.ErrInvalidParameter) {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
}

func TestApplySavGolForcesOddWindow(t *testing.T) {
	y := make([]float64, 30)
	for i := range y {
		y[i] = float64(i)
	}

	// Window 4 is even; Apply bumps it to 5 instead of failing.
	out, err := Apply(y, Spec{Method: MethodSavGol, Window: 4, PolyOrder: 1}, 0)
	if err != nil {
		t.Fatal(err)
	}

	for i := range out {
		if math.Abs(out[i]-y[i]) > 1e-9 {
			t.Fatalf("linear trace should survive savgol: index %d got %v", i, out[i])
		}
	}
}

func TestApplyButterworthRequiresSampleRate(t *testing.T) {
	_, err := Apply(make([]float64, 100), Spec{Method: MethodButterLowpass, Cutoff: 100}, 0)
	if !errors.Is(err, numeric.ErrInvalidParameter) {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
}

func TestApplyMovingAverageWindowRequired(t *testing.T) {
	_, err := Apply(make([]float64, 10), Spec{Method: MethodMovingAverage}, 0)
	if !errors.Is(err, numeric.ErrInvalidParameter) {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
}
