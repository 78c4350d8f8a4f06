package fileio

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epsplab/epspkit/feature"
	"github.com/epsplab/epspkit/recording"
)

func resultContext() *recording.Context {
	ctx := recording.NewContext(nil, 10000)
	ctx.Meta["input_path"] = "rec01.csv"

	ctx.Averaged = recording.AveragedTable{{
		Intensity: 100,
		Time:      []float64{0, 1e-4},
		Mean:      []float64{0.5, -0.5},
		SEM:       []float64{math.NaN(), math.NaN()},
	}}

	ctx.AddResult(feature.FiberVolleyResult{
		{Intensity: 100, Amp: 0.5, TimeS: 2e-3, Voltage: -0.5},
		{Intensity: 200, Amp: math.NaN(), TimeS: math.NaN(), Voltage: math.NaN()},
	})

	ctx.AddResult(feature.PopSpikeResult{
		{Intensity: 100, Amp: 0.8, TimeS: 4e-3, Voltage: 0.3},
	})

	return ctx
}

func TestSaveJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, SaveJSON(&buf, resultContext()))

	var doc struct {
		Meta       map[string]string `json:"meta"`
		SampleRate float64           `json:"sample_rate"`
		Averaged   []struct {
			Intensity float64    `json:"stim_intensity"`
			SEM       []*float64 `json:"sem"`
		} `json:"averaged"`
		Results map[string][]map[string]*float64 `json:"results"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	require.Equal(t, "rec01.csv", doc.Meta["input_path"])
	require.Equal(t, 10000.0, doc.SampleRate)

	require.Len(t, doc.Averaged, 1)
	require.Equal(t, 100.0, doc.Averaged[0].Intensity)

	// Non-finite values become JSON null, never the string "NaN".
	for _, sem := range doc.Averaged[0].SEM {
		require.Nil(t, sem)
	}

	fv := doc.Results["fiber_volley"]
	require.Len(t, fv, 2)

	require.NotNil(t, fv[0]["fv_amp"])
	require.InDelta(t, 0.5, *fv[0]["fv_amp"], 1e-12)

	require.Nil(t, fv[1]["fv_amp"])
	require.NotNil(t, fv[1]["stim_intensity"])
	require.Equal(t, 200.0, *fv[1]["stim_intensity"])

	ps := doc.Results["pop_spike"]
	require.Len(t, ps, 1)
	require.InDelta(t, 0.8, *ps[0]["ps_amp"], 1e-12)
}

func TestSaveJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec01.json")

	require.NoError(t, SaveJSONFile(path, resultContext()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "results")
	require.Contains(t, doc, "averaged")
}
