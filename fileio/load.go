// Package fileio loads per-sweep recordings into a recording.Context and
// persists completed analysis results. CSV is the interchange format for
// acquisition data; results are written as one JSON document per
// recording.
package fileio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/epsplab/epspkit/recording"
)

var (
	// ErrShapeMismatch reports a sweep count that does not equal
	// intensities x repetitions.
	ErrShapeMismatch = errors.New("sweep count mismatch")

	// ErrBadFormat reports malformed acquisition data.
	ErrBadFormat = errors.New("bad acquisition format")
)

// LoadCSV reads a long-format acquisition CSV with columns time (s),
// voltage (mV), and sweep (0-based acquisition index), and builds a
// recording context.
//
// Sweeps are assigned to stimulus intensities in acquisition order, in
// blocks of repetitions: the first `repetitions` sweeps belong to
// intensities[0], and so on. The sweep count must equal
// len(intensities) * repetitions. The sampling rate is derived from the
// first sweep's time step.
func LoadCSV(r io.Reader, intensities []float64, repetitions int) (*recording.Context, error) {
	if len(intensities) == 0 || repetitions < 1 {
		return nil, fmt.Errorf("%w: intensities and repetitions are required", ErrBadFormat)
	}

	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	timeCol, voltCol, sweepCol := -1, -1, -1

	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "time":
			timeCol = i
		case "voltage":
			voltCol = i
		case "sweep":
			sweepCol = i
		}
	}

	if timeCol < 0 || voltCol < 0 || sweepCol < 0 {
		return nil, fmt.Errorf("%w: header must contain time, voltage, and sweep columns", ErrBadFormat)
	}

	var (
		order  []int
		times  = make(map[int][]float64)
		volts  = make(map[int][]float64)
		lineNo = 1
	)

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
		}

		lineNo++

		t, err := strconv.ParseFloat(rec[timeCol], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad time %q", ErrBadFormat, lineNo, rec[timeCol])
		}

		v, err := strconv.ParseFloat(rec[voltCol], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad voltage %q", ErrBadFormat, lineNo, rec[voltCol])
		}

		sweep, err := strconv.Atoi(strings.TrimSpace(rec[sweepCol]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad sweep %q", ErrBadFormat, lineNo, rec[sweepCol])
		}

		if _, seen := times[sweep]; !seen {
			order = append(order, sweep)
		}

		times[sweep] = append(times[sweep], t)
		volts[sweep] = append(volts[sweep], v)
	}

	expected := len(intensities) * repetitions
	if len(order) != expected {
		return nil, fmt.Errorf("%w: expected %d sweeps for %d intensities x %d repetitions, got %d",
			ErrShapeMismatch, expected, len(intensities), repetitions, len(order))
	}

	sweeps := make(recording.SweepTable, 0, len(order))

	for i, sweepID := range order {
		sweeps = append(sweeps, recording.Sweep{
			Intensity: intensities[i/repetitions],
			ID:        i%repetitions + 1,
			Time:      times[sweepID],
			Voltage:   volts[sweepID],
		})
	}

	first := sweeps[0].Time
	if len(first) < 2 {
		return nil, fmt.Errorf("%w: sweeps must contain at least two samples", ErrBadFormat)
	}

	sampleRate := 1.0 / (first[1] - first[0])

	return recording.NewContext(sweeps, sampleRate), nil
}

// LoadCSVFile is LoadCSV over a file path, recording the source path in
// the context metadata.
func LoadCSVFile(path string, intensities []float64, repetitions int) (*recording.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := LoadCSV(f, intensities, repetitions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ctx.Meta["input_path"] = path

	return ctx, nil
}
