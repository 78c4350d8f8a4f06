package recording

import "testing"

type fakeResult struct {
	name string
	rows int
}

func (r fakeResult) FeatureName() string { return r.name }
func (r fakeResult) Len() int            { return r.rows }

func TestContextResultRoundTrip(t *testing.T) {
	ctx := NewContext(nil, 10000)

	if got := ctx.Result("epsp"); got != nil {
		t.Fatalf("empty context returned %v", got)
	}

	ctx.AddResult(fakeResult{name: "epsp", rows: 2})

	got, ok := ctx.Result("epsp").(fakeResult)
	if !ok || got.rows != 2 {
		t.Fatalf("got %#v", ctx.Result("epsp"))
	}

	// Re-adding under the same name replaces the previous table.
	ctx.AddResult(fakeResult{name: "epsp", rows: 5})

	if got := ctx.Result("epsp").(fakeResult); got.rows != 5 {
		t.Fatalf("stale result survived replacement: %#v", got)
	}

	if len(ctx.Results()) != 1 {
		t.Fatalf("got %d results, want 1", len(ctx.Results()))
	}
}

func TestByIntensityFirstSeenOrder(t *testing.T) {
	table := SweepTable{
		{Intensity: 200, ID: 1},
		{Intensity: 100, ID: 1},
		{Intensity: 200, ID: 2},
		{Intensity: 100, ID: 2},
	}

	groups := table.ByIntensity()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	if groups[0].Intensity != 200 || groups[1].Intensity != 100 {
		t.Fatalf("group order %v, %v; want first-seen 200, 100",
			groups[0].Intensity, groups[1].Intensity)
	}

	for _, g := range groups {
		if len(g.Sweeps) != 2 {
			t.Fatalf("intensity %v: got %d sweeps, want 2", g.Intensity, len(g.Sweeps))
		}
	}
}

func TestByIntensityGroupsPointIntoTable(t *testing.T) {
	table := SweepTable{{Intensity: 100, ID: 1}}

	groups := table.ByIntensity()
	groups[0].Sweeps[0].Voltage = []float64{1}

	// Groups hold pointers, so transforms mutate the table in place.
	if len(table[0].Voltage) != 1 {
		t.Fatal("group sweep is a copy, not a pointer into the table")
	}
}

func TestIntensities(t *testing.T) {
	table := SweepTable{
		{Intensity: 300}, {Intensity: 100}, {Intensity: 300},
	}

	got := table.Intensities()
	want := []float64{300, 100}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAveragedTableTrace(t *testing.T) {
	table := AveragedTable{
		{Intensity: 100},
		{Intensity: 200},
	}

	if tr := table.Trace(200); tr == nil || tr.Intensity != 200 {
		t.Fatalf("got %#v", tr)
	}

	if tr := table.Trace(150); tr != nil {
		t.Fatalf("missing intensity must return nil, got %#v", tr)
	}
}
