package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-lfo/internal/fitcommon"
	"github.com/cwbudde/algo-lfo/lfo"
	"github.com/cwbudde/wav"
)

func testOptions(t *testing.T) options {
	t.Helper()
	return options{
		rate:       1,
		kind:       "bounce",
		shape:      0.5,
		damping:    0.1,
		looping:    true,
		sampleRate: 8000,
		duration:   0.5,
		blockSize:  64,
		demo:       "curve",
		carrierHz:  110,
		cutoffLo:   200,
		cutoffHi:   3000,
		resonance:  1,
		output:     filepath.Join(t.TempDir(), "out.wav"),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveParamsLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	if err := os.WriteFile(path, []byte(`{"rate": 3, "type": "wobble", "shape": 0.2}`), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	o := testOptions(t)
	o.presetPath = path
	o.damping = 0.7
	o.args = "4 0.9"

	p, err := resolveParams(o, map[string]bool{"damping": true})
	if err != nil {
		t.Fatalf("resolveParams: %v", err)
	}
	if p.Rate != 3 || p.Kind != lfo.KindMultiBounce || p.Shape != 0.9 || p.Damping != 0.7 || !p.Looping {
		t.Fatalf("unexpected params %+v", p)
	}
}

func TestResolveParamsClampsFlags(t *testing.T) {
	o := testOptions(t)
	o.rate = 5000
	o.shape = 2
	p, err := resolveParams(o, map[string]bool{"rate": true, "shape": true})
	if err != nil {
		t.Fatalf("resolveParams: %v", err)
	}
	if p.Rate != lfo.MaxRateHz || p.Shape != 1 {
		t.Fatalf("expected clamped params, got %+v", p)
	}
}

func TestRunWritesCurve(t *testing.T) {
	o := testOptions(t)
	o.cues = []string{"0.25 type wobble"}
	if err := run(o, map[string]bool{}, quietLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	curve, sr, err := fitcommon.ReadCurveWAV(o.output)
	if err != nil {
		t.Fatalf("ReadCurveWAV: %v", err)
	}
	if sr != o.sampleRate || len(curve) != 4000 {
		t.Fatalf("got sr=%d frames=%d", sr, len(curve))
	}
}

func TestRunFilterDemo(t *testing.T) {
	o := testOptions(t)
	o.demo = "filter"
	if err := run(o, map[string]bool{}, quietLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(o.output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestRunStereoDemoWritesCurveAndAudio(t *testing.T) {
	o := testOptions(t)
	o.demo = "tremolo"
	o.stereo = true
	if err := run(o, map[string]bool{}, quietLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(o.output)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantFrames := fitcommon.SecondsToSamples(o.duration, o.sampleRate)
	if buf.Format.NumChannels != 2 || len(buf.Data)/2 != wantFrames {
		t.Fatalf("got channels=%d frames=%d want channels=2 frames=%d", buf.Format.NumChannels, len(buf.Data)/2, wantFrames)
	}
}

func TestRunRejectsUnknownDemo(t *testing.T) {
	o := testOptions(t)
	o.demo = "pan"
	if err := run(o, map[string]bool{}, quietLogger()); err == nil {
		t.Fatalf("expected error for unknown demo")
	}
}

func TestLoadCuesRejectsBadCue(t *testing.T) {
	o := testOptions(t)
	o.cues = []string{"soon bang"}
	if _, err := loadCues(o); err == nil {
		t.Fatalf("expected error")
	}
}
