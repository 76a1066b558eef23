package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/algo-lfo/internal/fitcommon"
	"github.com/cwbudde/algo-lfo/lfo"
	"github.com/cwbudde/algo-lfo/preset"
)

func main() {
	referencePath := flag.String("reference", "", "Reference curve WAV (written by lfo-render or any [-1,1] signal)")
	presetPath := flag.String("preset", "", "Base preset JSON (optional)")
	types := flag.String("types", "all", "Types to search: comma list of names/numbers, or all")
	fitRate := flag.Bool("fit-rate", false, "Also search the rate")
	rateMin := flag.Float64("rate-min", 0.1, "Lowest rate in Hz when -fit-rate is set")
	rateMax := flag.Float64("rate-max", 20, "Highest rate in Hz when -fit-rate is set")
	scriptPath := flag.String("script", "", "Cue file applied to every candidate render")
	sampleRate := flag.Int("sample-rate", 4800, "Analysis sample rate in Hz (reference is resampled)")
	blockSize := flag.Int("block", lfo.DefaultBlockSize, "Render block size")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	timeBudget := flag.Float64("time-budget", 60, "Time budget in seconds")
	reportEvery := flag.Int("report-every", 100, "Print progress every N evals (0 disables)")
	variant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	pop := flag.Int("mayfly-pop", 10, "Mayfly population")
	roundEvals := flag.Int("mayfly-round-evals", 200, "Evaluations per mayfly round")
	workersRaw := flag.String("workers", "auto", "Parallel workers: integer >= 1 or auto")
	seed := flag.Int64("seed", 1, "Random seed")
	topK := flag.Int("top-k", 10, "Candidates kept in the report")
	outputPreset := flag.String("output-preset", "out/lfo-fit.json", "Best preset output path")
	reportPath := flag.String("report", "out/lfo-fit-report.json", "Report JSON path (empty disables)")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	flag.Parse()

	logger, err := fitcommon.NewLogger(*logLevel)
	if err != nil {
		die("%v", err)
	}
	if *referencePath == "" {
		die("-reference is required")
	}
	workers, err := fitcommon.ParseWorkers(*workersRaw)
	if err != nil {
		die("invalid -workers: %v", err)
	}
	kinds, err := parseKinds(*types)
	if err != nil {
		die("invalid -types: %v", err)
	}
	if *fitRate && (*rateMin < 0 || *rateMax <= *rateMin || *rateMax > lfo.MaxRateHz) {
		die("invalid rate range [%g,%g]", *rateMin, *rateMax)
	}
	if *pop < 2 {
		die("-mayfly-pop must be >= 2")
	}

	ref, refSR, err := fitcommon.ReadCurveWAV(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = fitcommon.ResampleIfNeeded(ref, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	base := lfo.NewDefaultParams()
	if *presetPath != "" {
		base, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
	}

	var cues []lfo.Cue
	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			die("failed to open script: %v", err)
		}
		cues, err = lfo.ParseScript(f, float64(*sampleRate))
		f.Close()
		if err != nil {
			die("failed to parse script: %v", err)
		}
	}

	engineLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		engineLogger = logger
	}

	cfg := &optimizationConfig{
		reference:        ref,
		baseParams:       base,
		kinds:            kinds,
		defs:             knobDefs(*fitRate, *rateMin, *rateMax),
		cues:             cues,
		sampleRate:       *sampleRate,
		blockSize:        *blockSize,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		mayflyVariant:    *variant,
		mayflyPop:        *pop,
		mayflyRoundEvals: *roundEvals,
		workers:          workers,
		topK:             *topK,
		logger:           logger,
		engineLogger:     engineLogger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Fitting %d type(s) against %s (%d frames at %d Hz)...\n", len(kinds), *referencePath, len(ref), *sampleRate)
	res, err := runOptimization(ctx, cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	report := buildReport(cfg, res, *referencePath, *presetPath)
	if err := writeOutputs(*outputPreset, *reportPath, report, res); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Best: %s score=%.4f similarity=%.2f%% evals=%d elapsed=%.1fs\n",
		preset.Describe(res.bestParams), res.bestMetrics.Score, res.bestMetrics.Similarity*100.0, res.evals, res.elapsed)
	if *outputPreset != "" {
		fmt.Printf("Wrote %s\n", *outputPreset)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
