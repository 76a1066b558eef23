package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-lfo/internal/fitcommon"
	"github.com/cwbudde/algo-lfo/lfo"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Kind lfo.Kind
	Vals []float64
}

// parseKinds parses a comma-separated list of type names or numbers, or
// "all".
func parseKinds(raw string) ([]lfo.Kind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("no types specified")
	}
	if strings.EqualFold(raw, "all") {
		kinds := make([]lfo.Kind, 0, int(lfo.MaxKind)+1)
		for k := lfo.Kind(0); float64(k) <= lfo.MaxKind; k++ {
			kinds = append(kinds, k)
		}
		return kinds, nil
	}
	seen := map[lfo.Kind]bool{}
	var kinds []lfo.Kind
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k, err := lfo.ParseKind(s)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no types specified")
	}
	return kinds, nil
}

// knobDefs returns the search space. Rate is only searched when fitRate is
// set; otherwise the base preset rate is kept.
func knobDefs(fitRate bool, rateMin, rateMax float64) []knobDef {
	defs := []knobDef{
		{Name: "shape", Min: 0, Max: 1},
		{Name: "damping", Min: 0, Max: 1},
	}
	if fitRate {
		defs = append(defs, knobDef{Name: "rate", Min: rateMin, Max: rateMax})
	}
	return defs
}

func initCandidate(base *lfo.Params, kind lfo.Kind, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		var v float64
		switch d.Name {
		case "shape":
			v = base.Shape
		case "damping":
			v = base.Damping
		case "rate":
			v = base.Rate
		}
		vals[i] = fitcommon.Clamp(v, d.Min, d.Max)
	}
	return candidate{Kind: kind, Vals: vals}
}

func applyCandidate(base *lfo.Params, defs []knobDef, c candidate) *lfo.Params {
	p := *base
	p.Kind = c.Kind
	for i, d := range defs {
		switch d.Name {
		case "shape":
			p.Shape = c.Vals[i]
		case "damping":
			p.Damping = c.Vals[i]
		case "rate":
			p.Rate = c.Vals[i]
		}
	}
	p = p.Clamped()
	return &p
}

func fromNormalized(kind lfo.Kind, pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = fitcommon.Clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Kind: kind, Vals: vals}
}

func toNormalized(c candidate, defs []knobDef) []float64 {
	pos := make([]float64, len(defs))
	for i, d := range defs {
		span := d.Max - d.Min
		if span <= 0 || math.IsNaN(c.Vals[i]) {
			continue
		}
		pos[i] = fitcommon.Clamp((c.Vals[i]-d.Min)/span, 0, 1)
	}
	return pos
}

func cloneCandidate(c candidate) candidate {
	return candidate{Kind: c.Kind, Vals: append([]float64(nil), c.Vals...)}
}
