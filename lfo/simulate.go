package lfo

import "math"

// physicsState is the simulation state carried between samples. It is only
// ever cleared as a whole through reset.
type physicsState struct {
	energy       float64 // 1 = full, only decreases between resets
	bounceCount  int
	lastOutput   float64
	spinPhase    float64
	velocity     float64
	acceleration float64
}

func (s *physicsState) reset() {
	s.energy = 1.0
	s.bounceCount = 0
	s.spinPhase = 0
	s.velocity = 0
	s.acceleration = 0
}

// groundContact applies the energy loss of one bounce. retain is in [0,1].
func (s *physicsState) groundContact(retain float64) {
	s.energy *= retain
	s.bounceCount++
}

type simFunc func(s *physicsState, t, shape, damping float64) float64

var simulations = [numKinds]simFunc{
	KindBounce:      simulateBounce,
	KindDampedDecay: simulateDampedDecay,
	KindBounceSpin:  simulateBounceSpin,
	KindOvershoot:   simulateOvershoot,
	KindMultiBounce: simulateMultiBounce,
	KindWobble:      simulateWobble,
}

// simulate evaluates simulation k at phase t. k must already be clamped.
func simulate(k Kind, s *physicsState, t, shape, damping float64) float64 {
	return simulations[k](s, t, shape, damping)
}

// simulateBounce is a parabolic fall whose sharpness follows shape. The
// per-cycle height shrinks with damping but never below 10% of the energy.
func simulateBounce(s *physicsState, t, shape, damping float64) float64 {
	curve := 0.5 + shape*3.0
	decay := math.Max(0.1, 1.0-damping*t*1.5)
	height := s.energy * decay * (1.0 - math.Pow(t, curve))

	if height <= 0 {
		height = 0
		s.groundContact(1.0 - damping*0.8)
	}
	return clamp01(height)
}

// simulateDampedDecay rings inside an exponential envelope, like a struck
// bell. The envelope is applied twice so the unipolar output reaches zero.
func simulateDampedDecay(s *physicsState, t, shape, damping float64) float64 {
	freq := 3.0 + shape*12.0
	decayRate := 1.0 + damping*4.0
	env := math.Exp(-decayRate * t)

	drift := math.Max(0.8, 1.0-t*0.1*shape)
	osc := math.Sin(twoPi * freq * drift * t)

	out := (env*osc + 1.0) * 0.5
	return clamp01(out * env)
}

// simulateBounceSpin layers a two-harmonic spin and a slow wobble on top of a
// gentler bounce. Spin depth follows the remaining energy.
func simulateBounceSpin(s *physicsState, t, shape, damping float64) float64 {
	curve := 0.3 + shape*2.5
	decay := math.Max(0.15, 1.0-damping*t)
	base := s.energy * decay * (1.0 - math.Pow(t, curve))

	primary := math.Sin(twoPi * (3.0 + shape*12.0) * t)
	secondary := math.Sin(twoPi*(1.5+shape*6.0)*t + math.Pi/3)
	spin := primary*0.7 + secondary*0.3
	depth := (0.3 + shape*0.4) * base * (1.0 + s.energy*0.5)

	wobble := math.Sin(twoPi*(0.5+shape*1.5)*t) * 0.15 * shape

	height := base + spin*depth + wobble*base
	if height <= 0 {
		height = 0
		s.groundContact(1.0 - damping*0.5)
	}
	return clamp01(height)
}

// simulateOvershoot is a step response that overshoots and settles at 0.6.
func simulateOvershoot(s *physicsState, t, shape, damping float64) float64 {
	const equilibrium = 0.6
	freq := 1.0 + shape*4.0
	amount := 0.3 + shape*0.4

	level := equilibrium * (1.0 - math.Exp(-(2.0+damping*3.0)*t))

	decay := math.Exp(-damping * t * 2.5)
	overshoot := 0.0
	if decay >= 0.01 {
		overshoot = math.Sin(twoPi*freq*t) * amount * decay
	}
	return clamp01(level + overshoot)
}

// multiBounceStop is the amplitude below which the ball is at rest.
const multiBounceStop = 0.02

// simulateMultiBounce plays a train of parabolic hops, each retaining a
// fraction of the previous one's height, and stops dead once they become
// negligible.
func simulateMultiBounce(s *physicsState, t, shape, damping float64) float64 {
	bounces := 2.0 + shape*6.0
	pos := t * bounces
	k := math.Floor(pos)
	f := pos - k

	amp := math.Pow(0.5+damping*0.4, k)
	if amp < multiBounceStop {
		return 0
	}
	return clamp01(4.0 * f * (1.0 - f) * amp)
}

// simulateWobble settles at 0.5 under a decaying two-tone beat.
func simulateWobble(s *physicsState, t, shape, damping float64) float64 {
	const equilibrium = 0.5
	f1 := 1.5 + shape*2.5
	f2 := f1 + shape*0.8

	level := equilibrium * (1.0 - math.Exp(-(1.5+damping*2.0)*t))

	decay := math.Exp(-damping * t * 1.2)
	amp := 0.3 * decay
	if decay < 0.01 {
		amp = 0
	}
	beat := (math.Sin(twoPi*f1*t) + 0.8*math.Sin(twoPi*f2*t)) / 1.8
	return clamp01(level + beat*amp)
}
