package telemetry

import "math"

// Analyzer inspects rendered output buffers for the conditions an
// operator watching a live engine would want surfaced: clipping,
// near-total silence, DC offset, and NaN contamination from a runaway
// fader or divide-by-zero upstream.
type Analyzer struct {
	ClippingThreshold float32
	SilenceThreshold  float32
}

// NewAnalyzer returns an Analyzer with the reference thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{ClippingThreshold: 0.99, SilenceThreshold: 0.0001}
}

// Report summarizes one buffer's analysis.
type Report struct {
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
}

// Analyze scans buf (interleaved or mono, it doesn't matter which)
// and computes Peak, RMS, DC offset, and clip/silence/NaN flags.
func (a *Analyzer) Analyze(buf []float32) Report {
	var r Report
	if len(buf) == 0 {
		return r
	}

	var sum, sumSquares float64
	for _, sample := range buf {
		if math.IsNaN(float64(sample)) {
			r.HasNaN = true
			r.NaNCount++
			continue
		}
		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > r.Peak {
			r.Peak = abs
		}
		if abs >= a.ClippingThreshold {
			r.Clipping = true
			r.ClippedSamples++
		}
		sum += float64(sample)
		sumSquares += float64(sample) * float64(sample)
	}

	n := float64(len(buf))
	r.RMS = float32(math.Sqrt(sumSquares / n))
	r.DC = float32(sum / n)
	r.Silent = r.RMS < a.SilenceThreshold
	return r
}
