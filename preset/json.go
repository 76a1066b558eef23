package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-lfo/lfo"
)

// File is the JSON schema for LFO presets. Every field is optional.
type File struct {
	Rate    *float64 `json:"rate"`
	Type    *Type    `json:"type"`
	Shape   *float64 `json:"shape"`
	Damping *float64 `json:"damping"`
	Looping *bool    `json:"looping"`
}

// Type accepts either a type number or a type name in JSON.
type Type struct {
	Kind lfo.Kind
}

func (t *Type) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		k, err := lfo.ParseKind(s)
		if err != nil {
			return err
		}
		t.Kind = k
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("type must be a number or a name: %w", err)
	}
	if n != float64(int(n)) || n < 0 || n > lfo.MaxKind {
		return fmt.Errorf("type must be an integer in [0,%d], got %v", int(lfo.MaxKind), n)
	}
	t.Kind = lfo.Kind(n)
	return nil
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Kind.String())
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*lfo.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p := lfo.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
// Unlike the oscillator, which clamps, presets reject out-of-range values.
func ApplyFile(dst *lfo.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.Rate != nil {
		if *f.Rate < 0 || *f.Rate > lfo.MaxRateHz {
			return fmt.Errorf("rate must be in [0,%g]", lfo.MaxRateHz)
		}
		dst.Rate = *f.Rate
	}
	if f.Type != nil {
		dst.Kind = f.Type.Kind
	}
	if f.Shape != nil {
		if *f.Shape < 0 || *f.Shape > 1 {
			return fmt.Errorf("shape must be in [0,1]")
		}
		dst.Shape = *f.Shape
	}
	if f.Damping != nil {
		if *f.Damping < 0 || *f.Damping > 1 {
			return fmt.Errorf("damping must be in [0,1]")
		}
		dst.Damping = *f.Damping
	}
	if f.Looping != nil {
		dst.Looping = *f.Looping
	}
	return nil
}

// FromParams builds a fully populated preset file from p.
func FromParams(p *lfo.Params) *File {
	if p == nil {
		p = lfo.NewDefaultParams()
	}
	rate, shape, damping, looping := p.Rate, p.Shape, p.Damping, p.Looping
	return &File{
		Rate:    &rate,
		Type:    &Type{Kind: p.Kind},
		Shape:   &shape,
		Damping: &damping,
		Looping: &looping,
	}
}

// SaveJSON writes p as an indented preset file.
func SaveJSON(path string, p *lfo.Params) error {
	b, err := json.MarshalIndent(FromParams(p), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

// Describe returns a one-line summary of p for logs.
func Describe(p *lfo.Params) string {
	if p == nil {
		return "<nil>"
	}
	mode := "looping"
	if !p.Looping {
		mode = "envelope"
	}
	return strings.Join([]string{
		fmt.Sprintf("type=%s", p.Kind),
		fmt.Sprintf("rate=%gHz", p.Rate),
		fmt.Sprintf("shape=%.3f", p.Shape),
		fmt.Sprintf("damping=%.3f", p.Damping),
		mode,
	}, " ")
}
