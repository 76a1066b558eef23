package lfo

import (
	"math"
	"testing"
)

func TestSimulationsStayInUnitRange(t *testing.T) {
	grid := []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1}
	for _, k := range allKinds() {
		for _, shape := range grid {
			for _, damping := range grid {
				var s physicsState
				s.reset()
				for i := 0; i <= 3000; i++ {
					tt := float64(i) * 0.01
					v := simulate(k, &s, tt, shape, damping)
					if math.IsNaN(v) || v < 0 || v > 1 {
						t.Fatalf("%s shape=%.2f damping=%.2f t=%.2f: output %f out of [0,1]", k, shape, damping, tt, v)
					}
					if s.energy < 0 || s.energy > 1 {
						t.Fatalf("%s shape=%.2f damping=%.2f t=%.2f: energy %f out of [0,1]", k, shape, damping, tt, s.energy)
					}
				}
			}
		}
	}
}

func TestSimulationsAreDeterministic(t *testing.T) {
	for _, k := range allKinds() {
		var a, b physicsState
		a.reset()
		b.reset()
		for i := 0; i < 2000; i++ {
			tt := float64(i) * 0.0037
			va := simulate(k, &a, tt, 0.63, 0.41)
			vb := simulate(k, &b, tt, 0.63, 0.41)
			if va != vb || a != b {
				t.Fatalf("%s diverged at t=%f: %f vs %f", k, tt, va, vb)
			}
		}
	}
}

func TestBounceGroundContactLosesEnergy(t *testing.T) {
	var s physicsState
	s.reset()
	v := simulateBounce(&s, 1.2, 0.5, 0.5)
	if v != 0 {
		t.Fatalf("expected ground contact to output 0, got %f", v)
	}
	if s.bounceCount != 1 {
		t.Fatalf("expected one bounce, got %d", s.bounceCount)
	}
	if !almostEqual(s.energy, 0.6, 1e-12) {
		t.Fatalf("energy after contact: got=%f want=%f", s.energy, 0.6)
	}

	simulateBounce(&s, 1.3, 0.5, 0.5)
	if !almostEqual(s.energy, 0.36, 1e-12) || s.bounceCount != 2 {
		t.Fatalf("second contact: energy=%f bounces=%d", s.energy, s.bounceCount)
	}
}

func TestBounceNoContactInsideCycle(t *testing.T) {
	var s physicsState
	s.reset()
	for i := 0; i < 1000; i++ {
		simulateBounce(&s, float64(i)/1000, 0.5, 1.0)
	}
	if s.bounceCount != 0 || s.energy != 1 {
		t.Fatalf("expected no contact before t=1: bounces=%d energy=%f", s.bounceCount, s.energy)
	}
}

func TestBounceHeightFloorsAtTenPercent(t *testing.T) {
	var s physicsState
	s.reset()
	// decay factor is 1-1.5*t at damping 1, floored at 0.1
	got := simulateBounce(&s, 0.9, 0, 1.0)
	want := 0.1 * (1 - math.Pow(0.9, 0.5))
	if !almostEqual(got, want, 1e-12) {
		t.Fatalf("floored height: got=%f want=%f", got, want)
	}
}

func TestBounceSpinEnergyNeverIncreases(t *testing.T) {
	for _, damping := range []float64{0, 0.3, 1} {
		var s physicsState
		s.reset()
		prevEnergy := s.energy
		prevBounces := 0
		for i := 0; i < 5000; i++ {
			simulateBounceSpin(&s, float64(i)*0.001, 0.6, damping)
			if s.energy > prevEnergy {
				t.Fatalf("damping=%.1f: energy rose from %f to %f at step %d", damping, prevEnergy, s.energy, i)
			}
			if damping > 0 && prevEnergy > 0 && s.bounceCount > prevBounces && s.energy >= prevEnergy {
				t.Fatalf("damping=%.1f: contact without energy loss at step %d", damping, i)
			}
			prevEnergy = s.energy
			prevBounces = s.bounceCount
		}
		if s.bounceCount == 0 {
			t.Fatalf("damping=%.1f: expected ground contacts past t=1", damping)
		}
	}
}

func TestResetRestoresFullEnergy(t *testing.T) {
	s := physicsState{energy: 0.2, bounceCount: 7, spinPhase: 0.4, velocity: 3, acceleration: -1, lastOutput: 0.5}
	s.reset()
	if s.energy != 1 || s.bounceCount != 0 || s.spinPhase != 0 || s.velocity != 0 || s.acceleration != 0 {
		t.Fatalf("reset left state behind: %+v", s)
	}
	if s.lastOutput != 0.5 {
		t.Fatalf("reset should keep the last output, got %f", s.lastOutput)
	}
}

func TestDampedDecayTendsToZero(t *testing.T) {
	var s physicsState
	s.reset()
	if v := simulateDampedDecay(&s, 0, 0.5, 0.5); !almostEqual(v, 0.5, 1e-12) {
		t.Fatalf("expected 0.5 at t=0, got %f", v)
	}
	for _, damping := range []float64{0, 0.2, 1} {
		limit := math.Exp(-(1 + 4*damping) * 10)
		for i := 0; i < 100; i++ {
			tt := 10 + float64(i)*0.013
			v := simulateDampedDecay(&s, tt, 0.7, damping)
			if v > limit {
				t.Fatalf("damping=%.1f t=%f: got=%g above envelope %g", damping, tt, v, limit)
			}
		}
	}
}

func TestOvershootSettlesAtEquilibrium(t *testing.T) {
	var s physicsState
	s.reset()
	v := simulateOvershoot(&s, 20, 0.8, 1.0)
	if !almostEqual(v, 0.6, 1e-9) {
		t.Fatalf("overshoot settle: got=%f want=0.6", v)
	}
	// At damping 0 the overshoot never dies out.
	var maxDev float64
	for i := 0; i < 200; i++ {
		d := math.Abs(simulateOvershoot(&s, 50+float64(i)*0.01, 0.5, 0) - 0.6)
		maxDev = math.Max(maxDev, d)
	}
	if maxDev < 0.1 {
		t.Fatalf("expected sustained overshoot at zero damping, max deviation %f", maxDev)
	}
}

func TestWobbleSettlesAtEquilibrium(t *testing.T) {
	var s physicsState
	s.reset()
	v := simulateWobble(&s, 20, 0.5, 1.0)
	if !almostEqual(v, 0.5, 1e-9) {
		t.Fatalf("wobble settle: got=%f want=0.5", v)
	}
}

func TestMultiBounceComesToRest(t *testing.T) {
	var s physicsState
	s.reset()
	// shape 0.5 gives 5 hops per unit phase; damping 1 keeps 90% per hop,
	// so hop 38 (t=7.6) is the first below the stop threshold.
	if v := simulateMultiBounce(&s, 37.5/5, 0.5, 1.0); v <= 0 {
		t.Fatalf("expected motion in hop 37, got %f", v)
	}
	for i := 0; i < 5000; i++ {
		tt := 7.61 + float64(i)*0.01
		if v := simulateMultiBounce(&s, tt, 0.5, 1.0); v != 0 {
			t.Fatalf("expected exact rest at t=%f, got %g", tt, v)
		}
	}
}

func TestMultiBounceHopShape(t *testing.T) {
	var s physicsState
	s.reset()
	// shape 0 => 2 hops per unit phase; first hop peaks at t=0.25.
	if v := simulateMultiBounce(&s, 0.25, 0, 0); !almostEqual(v, 1, 1e-12) {
		t.Fatalf("first hop peak: got=%f want=1", v)
	}
	// second hop retains 50% at damping 0.
	if v := simulateMultiBounce(&s, 0.75, 0, 0); !almostEqual(v, 0.5, 1e-12) {
		t.Fatalf("second hop peak: got=%f want=0.5", v)
	}
}

func TestSimulationsDoNotTouchEnergyWithoutContact(t *testing.T) {
	for _, k := range []Kind{KindDampedDecay, KindOvershoot, KindMultiBounce, KindWobble} {
		var s physicsState
		s.reset()
		for i := 0; i < 3000; i++ {
			simulate(k, &s, float64(i)*0.01, 0.5, 0.5)
		}
		if s.energy != 1 || s.bounceCount != 0 {
			t.Fatalf("%s mutated bounce state: %+v", k, s)
		}
	}
}
