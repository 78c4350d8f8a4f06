package fileio

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/epsplab/epspkit/feature"
	"github.com/epsplab/epspkit/recording"
)

// SaveJSON writes the completed analysis — metadata, sampling rate,
// averaged traces, and all feature tables — as one JSON document.
// Non-finite values (NaN rows from failed detections, SEM of
// single-sweep groups) are encoded as null.
func SaveJSON(w io.Writer, ctx *recording.Context) error {
	doc := map[string]any{
		"meta":        ctx.Meta,
		"sample_rate": ctx.SampleRate,
		"averaged":    averagedDoc(ctx.Averaged),
		"results":     resultsDoc(ctx.Results()),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// SaveJSONFile is SaveJSON over a file path.
func SaveJSONFile(path string, ctx *recording.Context) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := SaveJSON(f, ctx); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}

func averagedDoc(table recording.AveragedTable) []map[string]any {
	out := make([]map[string]any, 0, len(table))

	for _, trace := range table {
		out = append(out, map[string]any{
			"stim_intensity": trace.Intensity,
			"time":           floatArray(trace.Time),
			"mean":           floatArray(trace.Mean),
			"sem":            floatArray(trace.SEM),
		})
	}

	return out
}

func resultsDoc(results map[string]recording.Result) map[string]any {
	out := make(map[string]any, len(results))

	for name, result := range results {
		out[name] = resultRows(result)
	}

	return out
}

// resultRows flattens one feature table into JSON-safe rows. The feature
// set is closed, so a type switch covers every table the pipeline can
// produce.
func resultRows(result recording.Result) []map[string]any {
	switch rows := result.(type) {
	case feature.FiberVolleyResult:
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any{
				"stim_intensity": r.Intensity,
				"fv_amp":         jsonFloat(r.Amp),
				"fv_s":           jsonFloat(r.TimeS),
				"fv_v":           jsonFloat(r.Voltage),
			})
		}

		return out

	case feature.EPSPResult:
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any{
				"stim_intensity":  r.Intensity,
				"epsp_s":          jsonFloat(r.TimeS),
				"epsp_v":          jsonFloat(r.Voltage),
				"slope_mid_s":     jsonFloat(r.SlopeMidTimeS),
				"slope_mid_v":     jsonFloat(r.SlopeMidVoltage),
				"slope":           jsonFloat(r.Slope),
				"slope_ms":        jsonFloat(r.SlopeMS),
				"r_squared":       jsonFloat(r.RSquared),
				"slope_to_fv_amp": jsonFloat(r.SlopeToFVAmp),
			})
		}

		return out

	case feature.PopSpikeResult:
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any{
				"stim_intensity": r.Intensity,
				"ps_amp":         jsonFloat(r.Amp),
				"ps_s":           jsonFloat(r.TimeS),
				"ps_v":           jsonFloat(r.Voltage),
			})
		}

		return out

	default:
		return nil
	}
}

func jsonFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return v
}

func floatArray(vals []float64) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = jsonFloat(v)
	}

	return out
}
