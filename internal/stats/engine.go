package stats

import "sort"

// Result describes a customer's typical order size derived from trailing
// history. Median/MAD rather than mean/stddev so one outlier order doesn't
// move the band.
type Result struct {
	MedianGrams      float64 `json:"median_grams"`
	MADGrams         float64 `json:"mad_grams"`
	SpreadGrams      float64 `json:"spread_grams"`
	UpperNormalGrams float64 `json:"upper_normal_grams"`
	SampleCount      int     `json:"sample_count"`
	LowConfidence    bool    `json:"low_confidence"`
}

// minConfidentSamples is the history size below which the band is advisory
// only and never flags a request as over-typical.
const minConfidentSamples = 3

// Compute derives the typical-order band from per-order gram samples.
// minSpread floors the dispersion so identical orders still leave a
// non-zero-width band. Returns nil when there is no history at all.
func Compute(samples []float64, minSpread float64) *Result {
	if len(samples) == 0 {
		return nil
	}

	med := median(samples)

	devs := make([]float64, len(samples))
	for i, s := range samples {
		devs[i] = abs(s - med)
	}
	mad := median(devs)

	spread := mad
	if spread < minSpread {
		spread = minSpread
	}

	return &Result{
		MedianGrams:      med,
		MADGrams:         mad,
		SpreadGrams:      spread,
		UpperNormalGrams: med + 2*spread,
		SampleCount:      len(samples),
		LowConfidence:    len(samples) < minConfidentSamples,
	}
}

// OverTypical reports whether a requested quantity falls outside the upper
// normal band. Low-confidence customers are never flagged; thin history is
// not held against them.
func (r *Result) OverTypical(requestedGrams float64) bool {
	if r == nil || r.LowConfidence {
		return false
	}
	return requestedGrams > r.UpperNormalGrams
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
