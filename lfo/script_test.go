package lfo

import (
	"strings"
	"testing"
)

func TestParseCue(t *testing.T) {
	c, err := ParseCue("0.5 looping 0", 48000)
	if err != nil {
		t.Fatalf("ParseCue: %v", err)
	}
	if c.Frame != 24000 || c.Event != (SetLooping{On: false}) {
		t.Fatalf("unexpected cue %+v", c)
	}
	for _, bad := range []string{"bang", "-1 bang", "x bang", "0.1 warp 3"} {
		if _, err := ParseCue(bad, 48000); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseScriptSkipsCommentsAndReportsLine(t *testing.T) {
	script := `
# start slow
0 rate 2
0.25 type wobble

1 bang
`
	cues, err := ParseScript(strings.NewReader(script), 1000)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("got %d cues want 3", len(cues))
	}
	if cues[1].Frame != 250 || cues[1].Event != (SetParam{Input: InputType, Value: float64(KindWobble)}) {
		t.Fatalf("unexpected second cue %+v", cues[1])
	}

	_, err = ParseScript(strings.NewReader("0 bang\n0 looping\n"), 1000)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestRenderWithoutCuesMatchesProcess(t *testing.T) {
	a := newTestOscillator(48000, KindBounceSpin, 0.4, 0.3)
	b := newTestOscillator(48000, KindBounceSpin, 0.4, 0.3)
	got := Render(a, 1000, 0, nil)
	want := render(b, 1000)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got=%f want=%f", i, got[i], want[i])
		}
	}
}

func TestRenderAppliesCueAtNextBlockBoundary(t *testing.T) {
	fresh := newTestOscillator(48000, KindBounce, 0.4, 0.3)
	first := fresh.Step()

	o := newTestOscillator(48000, KindBounce, 0.4, 0.3)
	out := Render(o, 256, 64, []Cue{{Frame: 100, Event: Trigger{}}})
	if out[128] != first {
		t.Fatalf("trigger should restart at frame 128: got=%f want=%f", out[128], first)
	}
	if out[100] == first {
		t.Fatalf("trigger must not apply mid-block")
	}
}

func TestRenderOrdersCuesByFrame(t *testing.T) {
	o := newTestOscillator(1000, KindBounce, 0.5, 0.1)
	Render(o, 200, 10, []Cue{
		{Frame: 50, Event: SetParam{Input: InputShape, Value: 0.9}},
		{Frame: 0, Event: SetParam{Input: InputShape, Value: 0.2}},
	})
	if got := o.Held(InputShape); got != 0.9 {
		t.Fatalf("later cue should win: got=%f want=0.9", got)
	}
}

func TestRenderEmpty(t *testing.T) {
	o := newTestOscillator(1000, KindBounce, 0.5, 0.1)
	if out := Render(o, 0, 64, nil); out != nil {
		t.Fatalf("expected nil for zero frames")
	}
}
