package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cwbudde/algo-lfo/analysis"
	"github.com/cwbudde/algo-lfo/internal/fitcommon"
	"github.com/cwbudde/algo-lfo/lfo"
	"github.com/cwbudde/algo-lfo/preset"
)

func main() {
	referencePath := flag.String("reference", "", "Reference curve WAV path")
	candidatePath := flag.String("candidate", "", "Candidate curve WAV path; if empty, render candidate from preset")
	presetPath := flag.String("preset", "", "Preset JSON path for rendered candidate (defaults when empty)")
	scriptPath := flag.String("script", "", "Cue file for the rendered candidate")
	sampleRate := flag.Int("sample-rate", 4800, "Analysis sample rate in Hz")
	blockSize := flag.Int("block", lfo.DefaultBlockSize, "Render block size")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	logLevel := flag.String("log-level", "warn", "Log level: debug|info|warn|error")
	flag.Parse()

	logger, err := fitcommon.NewLogger(*logLevel)
	if err != nil {
		die("%v", err)
	}
	if *referencePath == "" {
		die("-reference is required")
	}

	ref, err := loadCurve(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = loadCurve(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		cand, err = renderCandidate(*presetPath, *scriptPath, len(ref), *sampleRate, *blockSize, logger)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		if *writeCandidate != "" {
			if err := fitcommon.WriteCurveWAV(*writeCandidate, cand, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}
	printMetrics(os.Stdout, metrics)
}

func loadCurve(path string, sampleRate int) ([]float64, error) {
	x, sr, err := fitcommon.ReadCurveWAV(path)
	if err != nil {
		return nil, err
	}
	return fitcommon.ResampleIfNeeded(x, sr, sampleRate)
}

func renderCandidate(presetPath, scriptPath string, frames, sampleRate, blockSize int, logger *slog.Logger) ([]float64, error) {
	params := lfo.NewDefaultParams()
	if presetPath != "" {
		p, err := preset.LoadJSON(presetPath)
		if err != nil {
			return nil, err
		}
		params = p
	}
	var cues []lfo.Cue
	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		cues, err = lfo.ParseScript(f, float64(sampleRate))
		if err != nil {
			return nil, err
		}
	}
	osc := lfo.NewOscillator(float64(sampleRate), params, lfo.WithLogger(logger))
	if !params.Looping {
		osc.Trigger()
	}
	return lfo.Render(osc, frames, blockSize, cues), nil
}

func printMetrics(w io.Writer, metrics analysis.Metrics) {
	fmt.Fprintf(w, "Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Fprintf(w, "Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Fprintf(w, "Aligned frames:   %d\n", metrics.AlignedFrames)
	lagMS := 0.0
	if metrics.SampleRate > 0 {
		lagMS = 1000.0 * float64(metrics.LagSamples) / float64(metrics.SampleRate)
	}
	fmt.Fprintf(w, "Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, lagMS)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Component        Raw          Norm   Weight  Contribution\n")
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		contrib := norm * weight
		marker := ""
		if dominant {
			marker = " ◄"
		}
		fmt.Fprintf(w, "%-16s %-12s %5.1f%%  ×%.2f   → %.4f%s\n", name, raw, norm*100, weight, contrib, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.4f", metrics.TimeRMSE), metrics.TimeNorm, analysis.WeightTime, metrics.Dominant == "time")
	printComp("Peak env RMSE", fmt.Sprintf("%.4f", metrics.PeakEnvRMSE), metrics.PeakNorm, analysis.WeightPeak, metrics.Dominant == "peak")
	printComp("Mean level", fmt.Sprintf("%.4f", metrics.MeanLevelDiff), metrics.MeanNorm, analysis.WeightMean, metrics.Dominant == "mean")
	printComp("Settle level", fmt.Sprintf("%.4f", metrics.SettleDiff), metrics.SettleNorm, analysis.WeightSettle, metrics.Dominant == "settle")
	printComp("Rest overlap", fmt.Sprintf("%.1f%%", metrics.RestOverlap*100), metrics.RestNorm, analysis.WeightRest, metrics.Dominant == "rest")
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Fprintf(w, "Similarity:       %.2f%%\n", metrics.Similarity*100.0)
	if metrics.Dominant != "" {
		fmt.Fprintf(w, "Dominant factor:  %s\n", metrics.Dominant)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
