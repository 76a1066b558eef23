package lfo

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects one of the six physics simulations.
type Kind int

const (
	KindBounce Kind = iota
	KindDampedDecay
	KindBounceSpin
	KindOvershoot
	KindMultiBounce
	KindWobble

	numKinds
)

var kindNames = [numKinds]string{
	KindBounce:      "bounce",
	KindDampedDecay: "damped",
	KindBounceSpin:  "spin",
	KindOvershoot:   "overshoot",
	KindMultiBounce: "multibounce",
	KindWobble:      "wobble",
}

var kindInfo = [numKinds]string{
	KindBounce:      "Type 0 - BOUNCE | shape: bounce curve (0=droopy/slow, 1=sharp/fast) | damping: energy loss rate",
	KindDampedDecay: "Type 1 - DAMPED DECAY | shape: vibration frequency (0=slow, 1=fast) | damping: decay rate (0=long ring, 1=quick stop)",
	KindBounceSpin:  "Type 2 - BOUNCE+SPIN | shape: spin rate and intensity (0=simple, 1=complex) | damping: energy loss rate",
	KindOvershoot:   "Type 3 - OVERSHOOT (settles) | shape: overshoot intensity (0=gentle, 1=dramatic) | damping: settling speed",
	KindMultiBounce: "Type 4 - MULTI-BOUNCE (stops) | shape: bounces per cycle (0=few, 1=many) | damping: energy kept per bounce",
	KindWobble:      "Type 5 - WOBBLE (settles) | shape: frequency spread (0=simple, 1=complex) | damping: settling speed",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Describe returns a human-readable summary of what shape and damping mean
// for this simulation type.
func (k Kind) Describe() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("unknown physics type %d", int(k))
	}
	return kindInfo[k]
}

// ParseKind accepts either a type number or a type name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if s == name {
			return Kind(k), nil
		}
	}
	v, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("invalid physics type %q", s)
	}
	return kindFromValue(v), nil
}

// kindFromValue clamps to [0,5] and truncates toward zero.
func kindFromValue(v float64) Kind {
	return Kind(clampInput(InputType, v))
}

// Input names one of the four logical control inputs.
type Input int

const (
	InputRate Input = iota
	InputType
	InputShape
	InputDamping

	NumInputs
)

func (i Input) String() string {
	switch i {
	case InputRate:
		return "rate"
	case InputType:
		return "type"
	case InputShape:
		return "shape"
	case InputDamping:
		return "damping"
	}
	return fmt.Sprintf("Input(%d)", int(i))
}

// Domain bounds for each input.
const (
	MaxRateHz = 1000.0
	MaxKind   = float64(numKinds - 1)
)

func inputBounds(i Input) (float64, float64) {
	switch i {
	case InputRate:
		return 0, MaxRateHz
	case InputType:
		return 0, MaxKind
	}
	return 0, 1
}

// clampInput clamps v into the domain of input i. NaN maps to the lower
// bound. The type input is truncated to an integer selector.
func clampInput(i Input, v float64) float64 {
	lo, hi := inputBounds(i)
	if math.IsNaN(v) {
		v = lo
	}
	v = clamp(v, lo, hi)
	if i == InputType {
		v = math.Trunc(v)
	}
	return v
}

// Params holds the construction-time configuration of an oscillator.
type Params struct {
	Rate    float64
	Kind    Kind
	Shape   float64
	Damping float64
	Looping bool
}

// NewDefaultParams creates default parameters: 1 Hz looping bounce with
// medium shape and light damping.
func NewDefaultParams() *Params {
	return &Params{
		Rate:    1.0,
		Kind:    KindBounce,
		Shape:   0.5,
		Damping: 0.1,
		Looping: true,
	}
}

// Clamped returns a copy with every field moved into its domain.
func (p Params) Clamped() Params {
	p.Rate = clampInput(InputRate, p.Rate)
	p.Kind = kindFromValue(float64(p.Kind))
	p.Shape = clampInput(InputShape, p.Shape)
	p.Damping = clampInput(InputDamping, p.Damping)
	return p
}
