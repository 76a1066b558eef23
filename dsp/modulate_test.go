package dsp

import (
	"math"
	"testing"
)

func TestModulatorLinearEndpoints(t *testing.T) {
	m := NewModulator(100, 500, false)
	for _, tc := range []struct{ in, want float64 }{
		{0, 100}, {0.5, 300}, {1, 500}, {-2, 100}, {3, 500}, {math.NaN(), 100},
	} {
		if got := m.Map(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Map(%f): got=%f want=%f", tc.in, got, tc.want)
		}
	}
}

func TestModulatorExponentialMidpoint(t *testing.T) {
	m := NewModulator(100, 6400, true)
	if !m.Exponential() {
		t.Fatalf("expected exponential mapping")
	}
	// geometric midpoint of 100..6400 is 800
	got := m.Map(0.5)
	if math.Abs(got-800)/800 > 0.05 {
		t.Fatalf("exponential midpoint: got=%f want~%f", got, 800.0)
	}
	prev := m.Map(0)
	for i := 1; i <= 100; i++ {
		v := m.Map(float64(i) / 100)
		if v < prev {
			t.Fatalf("mapping not monotonic at %d: %f < %f", i, v, prev)
		}
		prev = v
	}
}

func TestModulatorExponentialFallsBackToLinear(t *testing.T) {
	m := NewModulator(0, 1, true)
	if m.Exponential() {
		t.Fatalf("zero lower bound must fall back to linear")
	}
	if got := m.Map(0.25); got != 0.25 {
		t.Fatalf("got=%f want=0.25", got)
	}
}

func TestMapBlock(t *testing.T) {
	m := NewModulator(-1, 1, false)
	src := []float64{0, 0.5, 1}
	dst := make([]float64, len(src))
	m.MapBlock(dst, src)
	want := []float64{-1, 0, 1}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d]: got=%f want=%f", i, dst[i], want[i])
		}
	}
}

func TestSmootherConverges(t *testing.T) {
	const sr = 48000.0
	s := NewSmoother(0.01, sr)
	var y float64
	for i := 0; i < int(sr*0.01); i++ {
		y = s.Process(1)
	}
	// one time constant reaches 1-1/e
	if math.Abs(y-(1-math.Exp(-1))) > 1e-3 {
		t.Fatalf("after one time constant: got=%f want=%f", y, 1-math.Exp(-1))
	}
	for i := 0; i < int(sr); i++ {
		y = s.Process(1)
	}
	if math.Abs(y-1) > 1e-9 {
		t.Fatalf("expected convergence to 1, got %f", y)
	}
}

func TestSmootherPassThroughAndReset(t *testing.T) {
	s := NewSmoother(0, 48000)
	if got := s.Process(0.7); got != 0.7 {
		t.Fatalf("pass-through: got=%f", got)
	}
	s.Reset(0.2)
	if s.Value() != 0.2 {
		t.Fatalf("reset: got=%f", s.Value())
	}
	buf := []float64{0.3, 0.4}
	s.ProcessBlock(buf)
	if buf[0] != 0.3 || buf[1] != 0.4 {
		t.Fatalf("pass-through block: %v", buf)
	}
}
