package lfo

import (
	"bytes"
	"io"
	"log/slog"
	"math"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func newTestOscillator(sampleRate float64, kind Kind, shape, damping float64) *Oscillator {
	p := NewDefaultParams()
	p.Kind = kind
	p.Shape = shape
	p.Damping = damping
	return NewOscillator(sampleRate, p, WithLogger(quietLogger()))
}

func render(o *Oscillator, n int) []float64 {
	out := make([]float64, n)
	o.Process(nil, out)
	return out
}

func allKinds() []Kind {
	return []Kind{KindBounce, KindDampedDecay, KindBounceSpin, KindOvershoot, KindMultiBounce, KindWobble}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
