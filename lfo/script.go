package lfo

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
)

// DefaultBlockSize is the block length Render uses when none is given.
const DefaultBlockSize = 64

// Cue schedules a control event at a frame offset.
type Cue struct {
	Frame int
	Event Event
}

// ParseCue parses "<seconds> <message>", e.g. "0.5 looping 0".
func ParseCue(line string, sampleRate float64) (Cue, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Cue{}, fmt.Errorf("cue %q: want \"<seconds> <message>\"", line)
	}
	at, err := parseNumber(fields[0])
	if err != nil || at < 0 || math.IsInf(at, 0) {
		return Cue{}, fmt.Errorf("cue %q: invalid time %q", line, fields[0])
	}
	ev, err := ParseMessage(strings.Join(fields[1:], " "))
	if err != nil {
		return Cue{}, fmt.Errorf("cue %q: %w", line, err)
	}
	return Cue{Frame: int(math.Round(at * sampleRate)), Event: ev}, nil
}

// ParseScript reads one cue per line. Blank lines and lines starting with
// '#' are skipped.
func ParseScript(r io.Reader, sampleRate float64) ([]Cue, error) {
	var cues []Cue
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		c, err := ParseCue(s, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cues = append(cues, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cues, nil
}

// Render runs o for frames samples from its held values. Cues are posted to
// a queue once their frame is reached and the queue is drained only at block
// boundaries, so a cue takes effect at the first boundary at or after its
// frame.
func Render(o *Oscillator, frames, blockSize int, cues []Cue) []float64 {
	if frames <= 0 {
		return nil
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	sorted := slices.Clone(cues)
	slices.SortStableFunc(sorted, func(a, b Cue) int { return a.Frame - b.Frame })

	q := NewQueue(max(len(sorted), 1))
	out := make([]float64, frames)
	next := 0
	for start := 0; start < frames; start += blockSize {
		for next < len(sorted) && sorted[next].Frame <= start {
			q.Post(sorted[next].Event)
			next++
		}
		q.Drain(o)
		end := min(start+blockSize, frames)
		o.Process(nil, out[start:end])
	}
	return out
}
