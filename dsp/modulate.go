package dsp

import (
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Modulator maps a unit control value in [0,1] onto a parameter range.
// Exponential mapping is used for frequency-like targets (cutoff, pitch)
// so equal control steps give equal musical intervals.
type Modulator struct {
	lo, hi      float64
	exponential bool
	logRatio    float32
}

// NewModulator creates a mapping from [0,1] to [lo,hi]. Exponential mapping
// needs lo and hi of the same sign and non-zero; otherwise it falls back to
// linear.
func NewModulator(lo, hi float64, exponential bool) *Modulator {
	m := &Modulator{lo: lo, hi: hi}
	if exponential && lo*hi > 0 {
		m.exponential = true
		m.logRatio = float32(math.Log(hi / lo))
	}
	return m
}

// Exponential reports whether the mapping is exponential.
func (m *Modulator) Exponential() bool { return m.exponential }

// Map converts a control value into the target range. Inputs outside [0,1]
// are clamped.
func (m *Modulator) Map(v float64) float64 {
	if !(v > 0) {
		return m.lo
	}
	if v >= 1 {
		return m.hi
	}
	if m.exponential {
		return m.lo * float64(approx.FastExp(float32(v)*m.logRatio))
	}
	return m.lo + v*(m.hi-m.lo)
}

// MapBlock maps src into dst in place. dst must be at least len(src).
func (m *Modulator) MapBlock(dst, src []float64) {
	for i, v := range src {
		dst[i] = m.Map(v)
	}
}

// Smoother is a one-pole lowpass used to remove zipper noise when a stepped
// control value drives an audio parameter.
type Smoother struct {
	coeff float64
	y     float64
}

// NewSmoother creates a smoother with time constant timeSec. A non-positive
// time gives a pass-through smoother.
func NewSmoother(timeSec, sampleRate float64) *Smoother {
	s := &Smoother{}
	if timeSec > 0 && sampleRate > 0 {
		s.coeff = math.Exp(-1.0 / (timeSec * sampleRate))
	}
	return s
}

// Reset jumps the smoother output to v.
func (s *Smoother) Reset(v float64) { s.y = v }

// Value returns the current output.
func (s *Smoother) Value() float64 { return s.y }

// Process advances the smoother towards x by one sample.
func (s *Smoother) Process(x float64) float64 {
	s.y = x + s.coeff*(s.y-x)
	s.y = dspcore.FlushDenormals(s.y)
	return s.y
}

// ProcessBlock smooths buf in place.
func (s *Smoother) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = s.Process(x)
	}
}
