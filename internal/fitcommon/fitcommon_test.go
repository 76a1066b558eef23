package fitcommon

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/wav"
)

func TestParseWorkers(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"auto", 0, false},
		{" AUTO ", 0, false},
		{"4", 4, false},
		{"0", 0, true},
		{"", 0, true},
		{"many", 0, true},
	} {
		got, err := ParseWorkers(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseWorkers(%q): got=%d err=%v", tc.in, got, err)
		}
	}
}

func TestResolveLogLevel(t *testing.T) {
	if l, err := ResolveLogLevel("warn"); err != nil || l != slog.LevelWarn {
		t.Fatalf("warn: got=%v err=%v", l, err)
	}
	if _, err := ResolveLogLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewLoggerToFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerTo(&buf, "warn")
	if err != nil {
		t.Fatalf("NewLoggerTo: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestCurveWAVRoundTrip(t *testing.T) {
	const sr = 8000
	curve := make([]float64, sr/10)
	for i := range curve {
		curve[i] = float64(i) / float64(len(curve)-1)
	}
	path := filepath.Join(t.TempDir(), "nested", "curve.wav")
	if err := WriteCurveWAV(path, curve, sr); err != nil {
		t.Fatalf("WriteCurveWAV: %v", err)
	}
	got, gotSR, err := ReadCurveWAV(path)
	if err != nil {
		t.Fatalf("ReadCurveWAV: %v", err)
	}
	if gotSR != sr || len(got) != len(curve) {
		t.Fatalf("got sr=%d len=%d want sr=%d len=%d", gotSR, len(got), sr, len(curve))
	}
	for i := range curve {
		// 16-bit quantization
		if math.Abs(got[i]-curve[i]) > 1e-3 {
			t.Fatalf("sample %d: got=%f want=%f", i, got[i], curve[i])
		}
	}
}

func TestWriteStereoWAVLR(t *testing.T) {
	const sr = 8000
	left := CurveSamples([]float64{0, 0.5, 1, 0.5})
	right := []float32{0.25, -0.25, 0.25, -0.25}
	path := filepath.Join(t.TempDir(), "lr.wav")
	if err := WriteStereoWAVLR(path, left, right, sr); err != nil {
		t.Fatalf("WriteStereoWAVLR: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != sr {
		t.Fatalf("got channels=%d sr=%d want channels=2 sr=%d", buf.Format.NumChannels, buf.Format.SampleRate, sr)
	}
	if frames := len(buf.Data) / 2; frames != len(left) {
		t.Fatalf("frames: got=%d want=%d", frames, len(left))
	}

	if err := WriteStereoWAVLR(path, left, right[:2], sr); err == nil {
		t.Fatalf("expected error for mismatched channel lengths")
	}
}

func TestCurveSamplesFullScale(t *testing.T) {
	got := CurveSamples([]float64{0, 0.5, 1, 2, -1})
	want := []float32{-1, 0, 1, 1, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got=%f want=%f", i, got[i], want[i])
		}
	}
}

func TestResampleIfNeededSameRate(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := ResampleIfNeeded(in, 48000, 48000)
	if err != nil || &out[0] != &in[0] {
		t.Fatalf("expected passthrough, err=%v", err)
	}
}

func TestSecondsToSamplesAndPeak(t *testing.T) {
	if n := SecondsToSamples(0.5, 48000); n != 24000 {
		t.Fatalf("got=%d want=24000", n)
	}
	if n := SecondsToSamples(0, 48000); n != 1 {
		t.Fatalf("got=%d want=1", n)
	}
	if p := Peak([]float64{0.2, -0.9, 0.5}); p != 0.9 {
		t.Fatalf("got=%f want=0.9", p)
	}
}
