package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-lfo/analysis"
	"github.com/cwbudde/algo-lfo/preset"
)

type fitReport struct {
	Reference  string             `json:"reference"`
	Preset     string             `json:"preset,omitempty"`
	SampleRate int                `json:"sample_rate"`
	Variant    string             `json:"variant"`
	Evals      int                `json:"evals"`
	ElapsedSec float64            `json:"elapsed_sec"`
	BestType   string             `json:"best_type"`
	BestKnobs  map[string]float64 `json:"best_knobs"`
	Metrics    analysis.Metrics   `json:"metrics"`
	Top        []topCandidate     `json:"top"`
}

func buildReport(cfg *optimizationConfig, res *optimizationResult, referencePath, presetPath string) fitReport {
	knobs := make(map[string]float64, len(cfg.defs))
	for i, d := range cfg.defs {
		knobs[d.Name] = res.best.Vals[i]
	}
	return fitReport{
		Reference:  referencePath,
		Preset:     presetPath,
		SampleRate: cfg.sampleRate,
		Variant:    cfg.mayflyVariant,
		Evals:      res.evals,
		ElapsedSec: res.elapsed,
		BestType:   res.best.Kind.String(),
		BestKnobs:  knobs,
		Metrics:    res.bestMetrics,
		Top:        res.top,
	}
}

func writeOutputs(outputPreset, reportPath string, report fitReport, res *optimizationResult) error {
	if outputPreset != "" {
		if err := os.MkdirAll(filepath.Dir(outputPreset), 0o755); err != nil {
			return err
		}
		if err := preset.SaveJSON(outputPreset, res.bestParams); err != nil {
			return err
		}
	}
	if reportPath != "" {
		if err := writeJSON(reportPath, report); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
