// Package recording holds the data model shared by the analysis stages:
// per-sweep voltage traces, sweep-averaged traces, and per-feature result
// tables, all aggregated in a Context that is threaded through one
// pipeline run.
package recording

// Sweep is one stimulus-response voltage trace recorded during one
// repetition at one stimulus intensity. Time is in seconds, strictly
// increasing; Voltage is in millivolts, sample-aligned with Time.
type Sweep struct {
	Intensity float64
	ID        int // 1..repetitions within the intensity group
	Time      []float64
	Voltage   []float64
}

// SweepTable is an ordered collection of sweeps, sorted by
// (intensity, sweep ID) at load time.
type SweepTable []Sweep

// IntensityGroup is the set of sweeps recorded at one stimulus intensity.
type IntensityGroup struct {
	Intensity float64
	Sweeps    []*Sweep
}

// ByIntensity partitions the table into intensity groups, preserving the
// order in which intensities first appear.
func (t SweepTable) ByIntensity() []IntensityGroup {
	var groups []IntensityGroup

	index := make(map[float64]int)

	for i := range t {
		sw := &t[i]

		gi, ok := index[sw.Intensity]
		if !ok {
			gi = len(groups)
			index[sw.Intensity] = gi
			groups = append(groups, IntensityGroup{Intensity: sw.Intensity})
		}

		groups[gi].Sweeps = append(groups[gi].Sweeps, sw)
	}

	return groups
}

// Intensities returns the distinct stimulus intensities in first-seen order.
func (t SweepTable) Intensities() []float64 {
	groups := t.ByIntensity()

	out := make([]float64, len(groups))
	for i, g := range groups {
		out[i] = g.Intensity
	}

	return out
}
