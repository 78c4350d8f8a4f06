package smooth

import (
	"fmt"
	"math"

	"github.com/epsplab/epspkit/dsp/numeric"
)

// section is one second-order filter stage in Direct Form II Transposed.
// a0 is normalized to 1 and not stored.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64

	d0, d1 float64
}

func (s *section) processSample(x float64) float64 {
	y := s.b0*x + s.d0
	s.d0 = s.b1*x - s.a1*y + s.d1
	s.d1 = s.b2*x - s.a2*y

	return y
}

// prime sets the delay state to the steady-state response for a constant
// input x, so a pass over a trace that starts near x carries no startup
// transient.
func (s *section) prime(x float64) {
	gain := (s.b0 + s.b1 + s.b2) / (1 + s.a1 + s.a2)
	y := gain * x

	s.d1 = s.b2*x - s.a2*y
	s.d0 = s.b1*x - s.a1*y + s.d1
}

// ButterLowpass applies a zero-phase Butterworth low-pass filter: the
// designed cascade runs forward and backward over the trace, cancelling
// the phase delay. The trace is extended at both ends with an odd
// reflection before filtering to suppress edge transients.
func ButterLowpass(y []float64, cutoff, fs float64, order int) ([]float64, error) {
	if cutoff <= 0 || cutoff >= fs/2 {
		return nil, fmt.Errorf("%w: butterworth cutoff must be in (0, fs/2): %g Hz at fs=%g Hz",
			numeric.ErrInvalidParameter, cutoff, fs)
	}

	if order < 1 {
		return nil, fmt.Errorf("%w: butterworth order must be >= 1: %d",
			numeric.ErrInvalidParameter, order)
	}

	padLen := 3 * (order + 1)
	if len(y) <= padLen {
		return nil, fmt.Errorf("%w: trace too short for order-%d butterworth (need > %d samples, got %d)",
			numeric.ErrInvalidParameter, order, padLen, len(y))
	}

	sections := designButterLP(cutoff, order, fs)

	ext := oddExtend(y, padLen)

	filterCascade(sections, ext)
	reverse(ext)
	filterCascade(sections, ext)
	reverse(ext)

	out := make([]float64, len(y))
	copy(out, ext[padLen:len(ext)-padLen])

	return out, nil
}

// designButterLP builds the lowpass Butterworth cascade: one RBJ biquad
// per conjugate pole pair, plus a first-order tail for odd orders.
func designButterLP(freq float64, order int, sampleRate float64) []section {
	sections := make([]section, 0, (order+1)/2)

	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, lowpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}

	if order%2 != 0 {
		sections = append(sections, firstOrderLP(freq, sampleRate))
	}

	return sections
}

// butterworthQ returns the quality factor of one Butterworth biquad
// section. index ranges from 0 to order/2 - 1.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2
	}

	return 1 / (2 * s)
}

func lowpassRBJ(freq, q, sampleRate float64) section {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha

	return section{
		b0: (1 - cw) / 2 / a0,
		b1: (1 - cw) / a0,
		b2: (1 - cw) / 2 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

func firstOrderLP(freq, sampleRate float64) section {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return section{
		b0: k * norm,
		b1: k * norm,
		a1: (k - 1) * norm,
	}
}

func filterCascade(sections []section, buf []float64) {
	for i := range sections {
		sections[i].prime(buf[0])

		for j, x := range buf {
			buf[j] = sections[i].processSample(x)
		}
	}
}

// oddExtend returns y with padLen samples of odd (point-reflected)
// extension prepended and appended.
func oddExtend(y []float64, padLen int) []float64 {
	n := len(y)
	ext := make([]float64, n+2*padLen)

	for i := range padLen {
		ext[i] = 2*y[0] - y[padLen-i]
		ext[padLen+n+i] = 2*y[n-1] - y[n-2-i]
	}

	copy(ext[padLen:], y)

	return ext
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
