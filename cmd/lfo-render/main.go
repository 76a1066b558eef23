package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cwbudde/algo-lfo/dsp"
	"github.com/cwbudde/algo-lfo/internal/fitcommon"
	"github.com/cwbudde/algo-lfo/lfo"
	"github.com/cwbudde/algo-lfo/preset"
)

type options struct {
	presetPath string
	args       string
	rate       float64
	kind       string
	shape      float64
	damping    float64
	looping    bool

	sampleRate int
	duration   float64
	blockSize  int
	scriptPath string
	cues       []string

	demo      string
	carrierHz float64
	cutoffLo  float64
	cutoffHi  float64
	resonance float64
	stereo    bool

	output   string
	logLevel string
}

type cueFlags []string

func (c *cueFlags) String() string     { return strings.Join(*c, "; ") }
func (c *cueFlags) Set(s string) error { *c = append(*c, s); return nil }

func main() {
	var o options
	var cues cueFlags
	flag.StringVar(&o.presetPath, "preset", "", "Preset JSON file path (optional)")
	flag.StringVar(&o.args, "args", "", "Creation arguments \"type shape damping\" (optional)")
	flag.Float64Var(&o.rate, "rate", 1.0, "Rate in Hz (0-1000)")
	flag.StringVar(&o.kind, "type", "bounce", "Physics type: 0-5 or bounce|damped|spin|overshoot|multibounce|wobble")
	flag.Float64Var(&o.shape, "shape", 0.5, "Shape/physics amount (0-1)")
	flag.Float64Var(&o.damping, "damping", 0.1, "Damping (0-1)")
	flag.BoolVar(&o.looping, "looping", true, "Looping mode; false renders a one-shot envelope")
	flag.IntVar(&o.sampleRate, "sample-rate", 48000, "Render sample rate in Hz")
	flag.Float64Var(&o.duration, "duration", 4.0, "Duration in seconds")
	flag.IntVar(&o.blockSize, "block", lfo.DefaultBlockSize, "Block size; cues apply at block boundaries")
	flag.StringVar(&o.scriptPath, "script", "", "Cue file, one \"<seconds> <message>\" per line")
	flag.Var(&cues, "cue", "Cue \"<seconds> <message>\" (repeatable)")
	flag.StringVar(&o.demo, "demo", "curve", "Output: curve (raw modulation), filter (saw through swept moog), tremolo")
	flag.Float64Var(&o.carrierHz, "carrier", 110, "Carrier frequency for the filter/tremolo demo")
	flag.Float64Var(&o.cutoffLo, "cutoff-lo", 200, "Lowest cutoff in Hz for the filter demo")
	flag.Float64Var(&o.cutoffHi, "cutoff-hi", 4000, "Highest cutoff in Hz for the filter demo")
	flag.Float64Var(&o.resonance, "resonance", 1.2, "Moog resonance for the demo")
	flag.BoolVar(&o.stereo, "stereo", false, "With a filter/tremolo demo, write the curve on the left channel and the audio on the right")
	flag.StringVar(&o.output, "output", "lfo.wav", "Output WAV file path")
	flag.StringVar(&o.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	flag.Parse()
	o.cues = cues

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	logger, err := fitcommon.NewLogger(o.logLevel)
	if err != nil {
		die("%v", err)
	}
	if err := run(o, set, logger); err != nil {
		die("%v", err)
	}
}

func run(o options, set map[string]bool, logger *slog.Logger) error {
	params, err := resolveParams(o, set)
	if err != nil {
		return err
	}
	cues, err := loadCues(o)
	if err != nil {
		return err
	}

	frames := fitcommon.SecondsToSamples(o.duration, o.sampleRate)
	fmt.Printf("Rendering %s for %.2f seconds at %d Hz (%d cues)...\n", preset.Describe(params), o.duration, o.sampleRate, len(cues))

	osc := lfo.NewOscillator(float64(o.sampleRate), params, lfo.WithLogger(logger))
	// One-shot renders start the envelope right away, as a bang on load would.
	if !params.Looping {
		osc.Trigger()
	}
	curve := lfo.Render(osc, frames, o.blockSize, cues)
	logger.Debug("render done", "frames", frames, "cycles", osc.Cycles(), "energy", osc.Energy(), "bounces", osc.BounceCount())

	switch o.demo {
	case "curve":
		if err := fitcommon.WriteCurveWAV(o.output, curve, o.sampleRate); err != nil {
			return fmt.Errorf("write %s: %w", o.output, err)
		}
	case "filter", "tremolo":
		audio, err := renderDemo(o, curve)
		if err != nil {
			return err
		}
		if o.stereo {
			err = fitcommon.WriteStereoWAVLR(o.output, fitcommon.CurveSamples(curve), audio, o.sampleRate)
		} else {
			err = fitcommon.WriteMonoWAV(o.output, audio, o.sampleRate)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", o.output, err)
		}
	default:
		return fmt.Errorf("unknown demo %q", o.demo)
	}

	fmt.Printf("Successfully wrote %s (%d frames)\n", o.output, frames)
	return nil
}

// resolveParams layers defaults, preset, creation args and explicit flags,
// in that order.
func resolveParams(o options, set map[string]bool) (*lfo.Params, error) {
	params := lfo.NewDefaultParams()
	if o.presetPath != "" {
		p, err := preset.LoadJSON(o.presetPath)
		if err != nil {
			return nil, fmt.Errorf("load preset %q: %w", o.presetPath, err)
		}
		params = p
	}
	if o.args != "" {
		if err := params.ApplyArgs(strings.Fields(o.args)); err != nil {
			return nil, fmt.Errorf("args: %w", err)
		}
	}
	if set["rate"] {
		params.Rate = o.rate
	}
	if set["type"] {
		k, err := lfo.ParseKind(o.kind)
		if err != nil {
			return nil, err
		}
		params.Kind = k
	}
	if set["shape"] {
		params.Shape = o.shape
	}
	if set["damping"] {
		params.Damping = o.damping
	}
	if set["looping"] {
		params.Looping = o.looping
	}
	clamped := params.Clamped()
	return &clamped, nil
}

func loadCues(o options) ([]lfo.Cue, error) {
	var cues []lfo.Cue
	if o.scriptPath != "" {
		f, err := os.Open(o.scriptPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		cues, err = lfo.ParseScript(f, float64(o.sampleRate))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.scriptPath, err)
		}
	}
	for _, s := range o.cues {
		c, err := lfo.ParseCue(s, float64(o.sampleRate))
		if err != nil {
			return nil, err
		}
		cues = append(cues, c)
	}
	return cues, nil
}

func renderDemo(o options, curve []float64) ([]float32, error) {
	cfg := dsp.DefaultVoiceConfig(float64(o.sampleRate))
	cfg.CarrierHz = o.carrierHz
	cfg.CutoffLoHz = o.cutoffLo
	cfg.CutoffHiHz = o.cutoffHi
	cfg.Resonance = o.resonance
	t, err := dsp.ParseTarget(o.demo)
	if err != nil {
		return nil, err
	}
	cfg.Target = t

	v, err := dsp.NewVoice(cfg)
	if err != nil {
		return nil, err
	}
	buf := make([]float64, len(curve))
	if err := v.Process(curve, buf); err != nil {
		return nil, err
	}
	peak := fitcommon.Peak(buf)
	gain := 1.0
	if peak > 0.98 {
		gain = 0.98 / peak
	}
	out := make([]float32, len(buf))
	for i, s := range buf {
		out[i] = float32(s * gain)
	}
	return out, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
