package lfo

// Streams carries the per-sample control streams for one block, indexed by
// Input. A stream is only read when its input is marked as driven.
type Streams [NumInputs][]float64

// resolved is one sample's worth of clamped control values.
type resolved struct {
	rate    float64
	kind    Kind
	shape   float64
	damping float64
}

// resolver picks, per sample and per input, between a driving stream and
// the held scalar.
type resolver struct {
	held   [NumInputs]float64
	driven [NumInputs]bool
}

func (r *resolver) setHeld(i Input, v float64) float64 {
	v = clampInput(i, v)
	r.held[i] = v
	return v
}

func (r *resolver) value(i Input, in *Streams, n int) float64 {
	if r.driven[i] && in != nil && n < len(in[i]) {
		return clampInput(i, in[i][n])
	}
	return r.held[i]
}

func (r *resolver) resolve(in *Streams, n int) resolved {
	return resolved{
		rate:    r.value(InputRate, in, n),
		kind:    Kind(r.value(InputType, in, n)),
		shape:   r.value(InputShape, in, n),
		damping: r.value(InputDamping, in, n),
	}
}
