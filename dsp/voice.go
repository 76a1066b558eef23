package dsp

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/moog"
)

// Target selects what a Voice modulates with its control input.
type Target int

const (
	TargetCutoff Target = iota
	TargetAmplitude
)

func (t Target) String() string {
	switch t {
	case TargetCutoff:
		return "cutoff"
	case TargetAmplitude:
		return "amplitude"
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// ParseTarget parses "cutoff"/"filter" or "amplitude"/"tremolo".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "cutoff", "filter":
		return TargetCutoff, nil
	case "amplitude", "tremolo":
		return TargetAmplitude, nil
	}
	return 0, fmt.Errorf("unknown target %q (want cutoff or amplitude)", s)
}

// VoiceConfig describes a saw carrier through a moog ladder.
type VoiceConfig struct {
	SampleRate float64
	CarrierHz  float64
	Target     Target
	CutoffLoHz float64
	CutoffHiHz float64
	Resonance  float64
	SmoothSec  float64
	Gain       float64
}

// DefaultVoiceConfig returns a 110 Hz saw swept between 200 Hz and 4 kHz.
func DefaultVoiceConfig(sampleRate float64) VoiceConfig {
	return VoiceConfig{
		SampleRate: sampleRate,
		CarrierHz:  110,
		Target:     TargetCutoff,
		CutoffLoHz: 200,
		CutoffHiHz: 4000,
		Resonance:  1.2,
		SmoothSec:  0.002,
		Gain:       0.5,
	}
}

type ladder interface {
	SetCutoffHz(hz float64) error
	ProcessSample(x float64) float64
}

// cutoff updates run at this sub-rate.
const controlInterval = 16

// Voice renders audio whose filter cutoff or amplitude follows a [0,1]
// control signal.
type Voice struct {
	cfg    VoiceConfig
	filter ladder
	mod    *Modulator
	smooth *Smoother
	phase  float64
	inc    float64
	n      int
}

func NewVoice(cfg VoiceConfig) (*Voice, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0")
	}
	if cfg.CarrierHz <= 0 || cfg.CarrierHz >= cfg.SampleRate/2 {
		return nil, fmt.Errorf("carrier must be in (0,%g) Hz", cfg.SampleRate/2)
	}
	if cfg.CutoffLoHz <= 0 || cfg.CutoffHiHz <= cfg.CutoffLoHz {
		return nil, fmt.Errorf("cutoff range must satisfy 0 < lo < hi")
	}
	f, err := moog.New(cfg.SampleRate,
		moog.WithVariant(moog.VariantHuovilainen),
		moog.WithCutoffHz(cfg.CutoffLoHz),
		moog.WithResonance(cfg.Resonance),
		moog.WithOversampling(2),
	)
	if err != nil {
		return nil, err
	}
	var mod *Modulator
	if cfg.Target == TargetCutoff {
		mod = NewModulator(cfg.CutoffLoHz, math.Min(cfg.CutoffHiHz, 0.45*cfg.SampleRate), true)
	} else {
		mod = NewModulator(0, 1, false)
	}
	if cfg.Gain <= 0 {
		cfg.Gain = 0.5
	}
	return &Voice{
		cfg:    cfg,
		filter: f,
		mod:    mod,
		smooth: NewSmoother(cfg.SmoothSec, cfg.SampleRate),
		inc:    cfg.CarrierHz / cfg.SampleRate,
	}, nil
}

// Process renders len(out) samples. ctrl must be at least as long as out.
func (v *Voice) Process(ctrl []float64, out []float64) error {
	if len(ctrl) < len(out) {
		return fmt.Errorf("control block too short: %d < %d", len(ctrl), len(out))
	}
	for i := range out {
		c := v.smooth.Process(ctrl[i])
		saw := 2*v.phase - 1
		v.phase += v.inc
		if v.phase >= 1 {
			v.phase -= 1
		}

		var y float64
		switch v.cfg.Target {
		case TargetAmplitude:
			y = v.filter.ProcessSample(saw) * v.mod.Map(c)
		default:
			if v.n%controlInterval == 0 {
				if err := v.filter.SetCutoffHz(v.mod.Map(c)); err != nil {
					return err
				}
			}
			y = v.filter.ProcessSample(saw)
		}
		v.n++
		out[i] = v.cfg.Gain * y
	}
	return nil
}
