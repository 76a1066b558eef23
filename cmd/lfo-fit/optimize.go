package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-lfo/analysis"
	"github.com/cwbudde/algo-lfo/internal/fitcommon"
	"github.com/cwbudde/algo-lfo/lfo"
	"github.com/cwbudde/mayfly"
	"golang.org/x/sync/errgroup"
)

type topCandidate struct {
	Eval       int                `json:"eval"`
	Type       string             `json:"type"`
	Score      float64            `json:"score"`
	Similarity float64            `json:"similarity"`
	Knobs      map[string]float64 `json:"knobs"`
}

type optimizationConfig struct {
	reference        []float64
	baseParams       *lfo.Params
	kinds            []lfo.Kind
	defs             []knobDef
	cues             []lfo.Cue
	sampleRate       int
	blockSize        int
	seed             int64
	timeBudget       float64
	maxEvals         int
	reportEvery      int
	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
	workers          int
	topK             int
	logger           *slog.Logger
	// engineLogger receives per-render oscillator diagnostics.
	engineLogger *slog.Logger
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	bestParams  *lfo.Params
	top         []topCandidate
	evals       int
	elapsed     float64
}

type optimizationState struct {
	mu          sync.Mutex
	best        candidate
	bestMetrics analysis.Metrics
	top         []topCandidate
}

// renderCandidate renders p for the reference length with the configured
// cues. One-shot presets are triggered at frame 0.
func renderCandidate(p *lfo.Params, frames int, sampleRate int, blockSize int, cues []lfo.Cue, logger *slog.Logger) []float64 {
	osc := lfo.NewOscillator(float64(sampleRate), p, lfo.WithLogger(logger))
	if !p.Looping {
		osc.Trigger()
	}
	return lfo.Render(osc, frames, blockSize, cues)
}

func evaluateCandidate(cfg *optimizationConfig, c candidate) (analysis.Metrics, *lfo.Params) {
	p := applyCandidate(cfg.baseParams, cfg.defs, c)
	curve := renderCandidate(p, len(cfg.reference), cfg.sampleRate, cfg.blockSize, cfg.cues, cfg.engineLogger)
	return analysis.Compare(cfg.reference, curve, cfg.sampleRate), p
}

// runOptimization runs mayfly rounds on a pool of workers until the eval or
// time budget is spent or ctx is cancelled. Each round searches one type;
// rounds rotate through cfg.kinds.
func runOptimization(ctx context.Context, cfg *optimizationConfig) (*optimizationResult, error) {
	if len(cfg.kinds) == 0 {
		return nil, errors.New("no types to fit")
	}
	if len(cfg.reference) == 0 {
		return nil, errors.New("empty reference")
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.timeBudget*float64(time.Second)))
	defer cancel()

	state := &optimizationState{}
	var evals int64
	for _, k := range cfg.kinds {
		c := initCandidate(cfg.baseParams, k, cfg.defs)
		m, _ := evaluateCandidate(cfg, c)
		n := atomic.AddInt64(&evals, 1)
		state.top = updateTopCandidates(state.top, cfg.topK, int(n), m, cfg.defs, c)
		if n == 1 || m.Score < state.bestMetrics.Score {
			state.best = cloneCandidate(c)
			state.bestMetrics = m
		}
	}
	fmt.Printf("Start score=%.4f similarity=%.2f%% (%s)\n", state.bestMetrics.Score, state.bestMetrics.Similarity*100.0, state.best.Kind)

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = fitcommon.MaxInt(1, workers)

	var rounds int64
	var improves int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		workerID := i + 1
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				remaining := cfg.maxEvals - int(atomic.LoadInt64(&evals))
				if remaining <= 0 {
					return nil
				}

				round := int(atomic.AddInt64(&rounds, 1))
				kind := cfg.kinds[(round-1)%len(cfg.kinds)]
				budget := fitcommon.MinInt(cfg.mayflyRoundEvals, remaining)
				iters := fitcommon.MaxInt(1, budget/(2*cfg.mayflyPop))

				mc, err := newMayflyConfig(cfg.mayflyVariant, cfg.mayflyPop, len(cfg.defs), iters)
				if err != nil {
					return err
				}
				mc.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
				mc.ObjectiveFunc = func(pos []float64) float64 {
					if gctx.Err() != nil {
						return currentBestScore(state) + 1.0
					}
					evalNum, ok := reserveEval(&evals, cfg.maxEvals)
					if !ok {
						return currentBestScore(state) + 1.0
					}

					c := fromNormalized(kind, pos, cfg.defs)
					m, _ := evaluateCandidate(cfg, c)

					state.mu.Lock()
					state.top = updateTopCandidates(state.top, cfg.topK, int(evalNum), m, cfg.defs, c)
					improved := m.Score < state.bestMetrics.Score
					if improved {
						state.best = cloneCandidate(c)
						state.bestMetrics = m
					}
					bestScore := state.bestMetrics.Score
					state.mu.Unlock()

					if improved {
						n := atomic.AddInt64(&improves, 1)
						fmt.Printf("Improved #%d eval=%d type=%s score=%.4f sim=%.2f%%\n", n, evalNum, kind, m.Score, m.Similarity*100.0)
					}
					if cfg.reportEvery > 0 && evalNum%int64(cfg.reportEvery) == 0 {
						fmt.Printf("Progress eval=%d/%d elapsed=%.1fs best=%.4f\n", evalNum, cfg.maxEvals, time.Since(start).Seconds(), bestScore)
					}
					return m.Score
				}

				if _, err := runMayfly(mc); err != nil {
					cfg.logger.Warn("mayfly round failed", "worker", workerID, "round", round, "err", err)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	best := cloneCandidate(state.best)
	return &optimizationResult{
		best:        best,
		bestMetrics: state.bestMetrics,
		bestParams:  applyCandidate(cfg.baseParams, cfg.defs, best),
		top:         append([]topCandidate(nil), state.top...),
		evals:       int(atomic.LoadInt64(&evals)),
		elapsed:     time.Since(start).Seconds(),
	}, nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = fitcommon.MaxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

func currentBestScore(state *optimizationState) float64 {
	state.mu.Lock()
	score := state.bestMetrics.Score
	state.mu.Unlock()
	return score
}

func updateTopCandidates(top []topCandidate, topK int, eval int, metrics analysis.Metrics, defs []knobDef, c candidate) []topCandidate {
	entry := topCandidate{
		Eval:       eval,
		Type:       c.Kind.String(),
		Score:      metrics.Score,
		Similarity: metrics.Similarity,
		Knobs:      make(map[string]float64, len(defs)),
	}
	for i, d := range defs {
		entry.Knobs[d.Name] = c.Vals[i]
	}
	top = append(top, entry)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score == top[j].Score {
			return top[i].Eval < top[j].Eval
		}
		return top[i].Score < top[j].Score
	})
	if topK > 0 && len(top) > topK {
		top = top[:topK]
	}
	return top
}
