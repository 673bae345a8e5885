// Package metrics provides descriptive statistics over score samples such
// as popularity estimates, quality totals and engagement labels.
package metrics

import (
	"math"
	"slices"
)

// z95 is the two-sided 95% quantile of the standard normal distribution.
const z95 = 1.96

// Mean returns the arithmetic mean, or 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sumSquares returns the mean of values and the sum of squared deviations
// from it.
func sumSquares(values []float64) (mean, ss float64) {
	mean = Mean(values)
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, ss
}

// Variance is the population variance, or 0 for an empty sample.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	_, ss := sumSquares(values)
	return ss / float64(len(values))
}

// StdDev is the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// SampleStdDev is the Bessel-corrected standard deviation, or 0 when fewer
// than two values are given.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	_, ss := sumSquares(values)
	return math.Sqrt(ss / float64(len(values)-1))
}

// ConfidenceInterval95 returns the normal-approximation 95% interval
// (low, high) for the mean. Fewer than two values give (mean, mean).
func ConfidenceInterval95(values []float64) (float64, float64) {
	m := Mean(values)
	if len(values) < 2 {
		return m, m
	}
	margin := z95 * SampleStdDev(values) / math.Sqrt(float64(len(values)))
	return m - margin, m + margin
}

// Percentile returns the p-th percentile (0 to 100) using linear
// interpolation between closest ranks. Returns 0 for empty input; p is
// clamped to [0,100].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p = math.Max(0, math.Min(p, 100))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Summary describes a sample.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	CILow  float64 `json:"ci95_low"`
	CIHigh float64 `json:"ci95_high"`
}

// Summarize computes a Summary. The zero Summary is returned for empty input.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	lo, hi := ConfidenceInterval95(values)
	return Summary{
		Count:  len(values),
		Mean:   Mean(values),
		StdDev: StdDev(values),
		Min:    slices.Min(values),
		Max:    slices.Max(values),
		P50:    Percentile(values, 50),
		P90:    Percentile(values, 90),
		CILow:  lo,
		CIHigh: hi,
	}
}
