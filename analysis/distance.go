package analysis

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// RestThreshold is the level below which a curve counts as resting.
const RestThreshold = 1e-3

// Score weights. They sum to 1.
const (
	WeightTime   = 0.35
	WeightPeak   = 0.20
	WeightMean   = 0.15
	WeightSettle = 0.15
	WeightRest   = 0.15
)

// Metrics contains distance and similarity measurements between two LFO
// control curves. Both curves are expected in [0,1].
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE      float64 `json:"time_rmse"`
	PeakEnvRMSE   float64 `json:"peak_env_rmse"`
	MeanLevelDiff float64 `json:"mean_level_diff"`
	SettleDiff    float64 `json:"settle_diff"`
	RestOverlap   float64 `json:"rest_overlap"`

	TimeNorm   float64 `json:"time_norm"`
	PeakNorm   float64 `json:"peak_norm"`
	MeanNorm   float64 `json:"mean_norm"`
	SettleNorm float64 `json:"settle_norm"`
	RestNorm   float64 `json:"rest_norm"`
	Dominant   string  `json:"dominant"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in [0,1]
// (0 means identical).
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}

	maxLag := sampleRate / 4
	maxLag = min(maxLag, len(reference)-1, len(candidate)-1)
	lag := 0
	if maxLag >= 1 {
		lag = estimateLag(removeMean(reference), removeMean(candidate), maxLag)
	}
	m.LagSamples = lag

	refA, candA := alignByLag(reference, candidate, lag)
	n := min(len(refA), len(candA))
	if n < 16 {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(refA, candA)

	frame := max(16, sampleRate/100)
	m.PeakEnvRMSE = rmse(peakEnvelope(refA, frame), peakEnvelope(candA, frame))

	m.MeanLevelDiff = math.Abs(mean(refA) - mean(candA))

	tail := max(1, n/10)
	m.SettleDiff = math.Abs(mean(refA[n-tail:]) - mean(candA[n-tail:]))

	m.RestOverlap = restOverlap(refA, candA, RestThreshold)

	m.TimeNorm = clamp01(m.TimeRMSE / 0.25)
	m.PeakNorm = clamp01(m.PeakEnvRMSE / 0.25)
	m.MeanNorm = clamp01(m.MeanLevelDiff / 0.25)
	m.SettleNorm = clamp01(m.SettleDiff / 0.25)
	m.RestNorm = clamp01(1 - m.RestOverlap)

	parts := []struct {
		name string
		v    float64
	}{
		{"time", WeightTime * m.TimeNorm},
		{"peak", WeightPeak * m.PeakNorm},
		{"mean", WeightMean * m.MeanNorm},
		{"settle", WeightSettle * m.SettleNorm},
		{"rest", WeightRest * m.RestNorm},
	}
	var total, top float64
	for _, p := range parts {
		total += p.v
		if p.v > top {
			top = p.v
			m.Dominant = p.name
		}
	}
	m.Score = clamp01(total)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))

	return m
}

func removeMean(x []float64) []float64 {
	mu := mean(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mu
	}
	return out
}

// estimateLag returns the shift of cand relative to ref (positive when cand
// starts later in ref) maximizing cross-correlation within +-maxLag.
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	a := make([]float32, len(ref))
	for i, v := range ref {
		a[i] = float32(v)
	}
	// correlation via convolution with the time-reversed candidate
	b := make([]float32, len(cand))
	for i, v := range cand {
		b[len(cand)-1-i] = float32(v)
	}
	xc := make([]float32, len(a)+len(b)-1)
	if err := algofft.ConvolveReal(xc, a, b); err != nil {
		return estimateLagExhaustive(ref, cand, maxLag)
	}

	zero := len(cand) - 1
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		k := zero + lag
		if k < 0 || k >= len(xc) {
			continue
		}
		if s := float64(xc[k]); s > best {
			best = s
			bestLag = lag
		}
	}
	return refineLag(ref, cand, bestLag, maxLag)
}

// refineLag re-scores the neighbourhood of a float32 correlation peak in
// float64, where adjacent lags of smooth curves differ by less than the FFT
// rounding error.
func refineLag(ref []float64, cand []float64, lag int, maxLag int) int {
	bestLag := lag
	best := dotAtLag(ref, cand, lag)
	for d := -2; d <= 2; d++ {
		l := lag + d
		if d == 0 || l < -maxLag || l > maxLag {
			continue
		}
		if s := dotAtLag(ref, cand, l); s > best {
			best = s
			bestLag = l
		}
	}
	return bestLag
}

func estimateLagExhaustive(ref []float64, cand []float64, maxLag int) int {
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		if s := dotAtLag(ref, cand, lag); s > best {
			best = s
			bestLag = lag
		}
	}
	return bestLag
}

func dotAtLag(a []float64, b []float64, lag int) float64 {
	var ai, bi int
	if lag >= 0 {
		ai = lag
	} else {
		bi = -lag
	}
	n := min(len(a)-ai, len(b)-bi)
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}

func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// peakEnvelope returns the per-frame maximum, which follows bounce heights.
func peakEnvelope(x []float64, frame int) []float64 {
	if frame <= 0 || len(x) == 0 {
		return nil
	}
	n := (len(x) + frame - 1) / frame
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		end := min(len(x), (i+1)*frame)
		p := x[i*frame]
		for _, v := range x[i*frame : end] {
			p = math.Max(p, v)
		}
		out[i] = p
	}
	return out
}

// restOverlap is the Jaccard index of the samples where each curve rests.
// Two curves that never rest overlap fully.
func restOverlap(a []float64, b []float64, threshold float64) float64 {
	n := min(len(a), len(b))
	var both, either int
	for i := 0; i < n; i++ {
		ra := a[i] < threshold
		rb := b[i] < threshold
		if ra && rb {
			both++
		}
		if ra || rb {
			either++
		}
	}
	if either == 0 {
		return 1
	}
	return float64(both) / float64(either)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
