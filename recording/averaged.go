package recording

// AveragedTrace is the across-sweep mean voltage trace for one stimulus
// intensity, with the standard error of the mean per time point.
type AveragedTrace struct {
	Intensity float64
	Time      []float64
	Mean      []float64
	SEM       []float64
}

// AveragedTable holds one averaged trace per stimulus intensity, sorted
// by intensity. All traces share the same time grid (a shared sampling
// clock at acquisition guarantees this).
type AveragedTable []AveragedTrace

// Trace returns the averaged trace for the given intensity, or nil when
// the intensity is not present.
func (t AveragedTable) Trace(intensity float64) *AveragedTrace {
	for i := range t {
		if t[i].Intensity == intensity {
			return &t[i]
		}
	}

	return nil
}
