package lfo

import (
	"errors"
	"log/slog"
)

// ErrPhaseSetInEnvelope is returned when a phase is requested while the
// oscillator runs in envelope mode. The request is discarded.
var ErrPhaseSetInEnvelope = errors.New("lfo: phase can only be set in looping mode")

// Oscillator is a single-channel physics LFO producing samples in [0,1].
//
// It is not safe for concurrent use. Hosts that change settings from another
// goroutine post events to a Queue and drain it between blocks.
type Oscillator struct {
	sampleRate    float64
	invSampleRate float64

	phase   float64
	looping bool
	// envelopeActive is true while a triggered run is inside its first cycle.
	envelopeActive bool
	cycles         uint64

	res   resolver
	state physicsState

	logger *slog.Logger
}

// Option configures an Oscillator.
type Option func(*Oscillator)

// WithLogger routes diagnostics (type descriptions, rejected phase requests)
// to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Oscillator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOscillator creates an oscillator at sampleRate. A nil params uses
// NewDefaultParams. All parameters are clamped into range.
func NewOscillator(sampleRate float64, params *Params, opts ...Option) *Oscillator {
	if params == nil {
		params = NewDefaultParams()
	}
	p := params.Clamped()

	o := &Oscillator{
		looping: p.Looping,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.setSampleRate(sampleRate)
	o.res.held[InputRate] = p.Rate
	o.res.held[InputType] = float64(p.Kind)
	o.res.held[InputShape] = p.Shape
	o.res.held[InputDamping] = p.Damping
	o.state.reset()

	o.describe(p.Kind)
	return o
}

func (o *Oscillator) setSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	o.sampleRate = sampleRate
	o.invSampleRate = 1.0 / sampleRate
}

// Configure is the per-block configuration call: it sets the sample rate and
// which inputs are driven by streams for the following blocks.
func (o *Oscillator) Configure(sampleRate float64, driven [NumInputs]bool) {
	o.setSampleRate(sampleRate)
	o.res.driven = driven
}

// SetHeld updates the scalar used for input i whenever it is not driven by a
// stream. Setting the type logs its description.
func (o *Oscillator) SetHeld(i Input, v float64) {
	if i < 0 || i >= NumInputs {
		return
	}
	v = o.res.setHeld(i, v)
	if i == InputType {
		o.describe(Kind(v))
	}
}

// SetLooping switches between looping and envelope mode. Leaving looping
// mode stops a running envelope; neither direction touches the phase.
func (o *Oscillator) SetLooping(on bool) {
	o.looping = on
	if !on {
		o.envelopeActive = false
	}
}

// Trigger rewinds to phase 0 and resets the physics state. In envelope mode
// it also starts a new one-shot run.
func (o *Oscillator) Trigger() {
	o.phase = 0
	o.state.reset()
	if !o.looping {
		o.envelopeActive = true
	}
}

// SetPhase jumps to phase p in [0,1] and resets the physics state. It only
// works in looping mode and leaves everything untouched otherwise.
func (o *Oscillator) SetPhase(p float64) error {
	if !o.looping {
		return ErrPhaseSetInEnvelope
	}
	o.phase = unit(p)
	o.state.reset()
	return nil
}

// advance moves the phase clock by one sample.
func (o *Oscillator) advance(rate float64) {
	o.phase += rate * o.invSampleRate

	if o.looping {
		if o.phase >= 1.0 {
			for o.phase >= 1.0 {
				o.phase -= 1.0
				o.cycles++
			}
			o.state.reset()
		}
		for o.phase < 0 {
			o.phase += 1.0
		}
		return
	}

	// Envelope mode never wraps: phase keeps growing so the simulation's own
	// decay decides when the output falls silent.
	if o.envelopeActive && o.phase >= 1.0 {
		o.envelopeActive = false
	}
}

func (o *Oscillator) tick(r resolved) float64 {
	o.advance(r.rate)
	v := simulate(r.kind, &o.state, o.phase, r.shape, r.damping)
	o.state.lastOutput = v
	return v
}

// Step renders one sample from the held values, ignoring stream flags.
func (o *Oscillator) Step() float64 {
	return o.tick(o.res.resolve(nil, 0))
}

// Process renders len(out) samples. Driven inputs read from in; a nil in,
// or a driven stream shorter than out, falls back to the held values.
// Process does not allocate.
func (o *Oscillator) Process(in *Streams, out []float64) {
	for n := range out {
		out[n] = o.tick(o.res.resolve(in, n))
	}
}

func (o *Oscillator) describe(k Kind) {
	o.logger.Info("physicslfo", "type", int(k), "info", k.Describe())
}

// SampleRate returns the current sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Phase returns the elapsed cycles since the last reset (wrapped in looping
// mode, unbounded in envelope mode).
func (o *Oscillator) Phase() float64 { return o.phase }

// Looping reports whether the oscillator is in looping mode.
func (o *Oscillator) Looping() bool { return o.looping }

// EnvelopeActive reports whether a triggered run is still in its first cycle.
func (o *Oscillator) EnvelopeActive() bool { return o.envelopeActive }

// Energy returns the remaining simulation energy in [0,1].
func (o *Oscillator) Energy() float64 { return o.state.energy }

// BounceCount returns the ground contacts since the last reset.
func (o *Oscillator) BounceCount() int { return o.state.bounceCount }

// LastOutput returns the most recent sample.
func (o *Oscillator) LastOutput() float64 { return o.state.lastOutput }

// Cycles returns how many times the phase wrapped in looping mode.
func (o *Oscillator) Cycles() uint64 { return o.cycles }

// Held returns the held scalar for input i.
func (o *Oscillator) Held(i Input) float64 {
	if i < 0 || i >= NumInputs {
		return 0
	}
	return o.res.held[i]
}

// Driven reports whether input i reads from a stream.
func (o *Oscillator) Driven(i Input) bool {
	if i < 0 || i >= NumInputs {
		return false
	}
	return o.res.driven[i]
}
