// Package statistics estimates how stable batch averages are by
// resampling.
package statistics

import (
	"math/rand/v2"

	"github.com/meshcast/meshcast/internal/metrics"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 2000

// DefaultSeed makes batch reports reproducible for the same input.
const DefaultSeed uint64 = 0x6d657368

// BootstrapMean computes a percentile bootstrap interval for the mean of
// values. Fewer than two values yield a degenerate interval at the mean.
func BootstrapMean(values []float64, confidenceLevel float64, seed uint64) ConfidenceInterval {
	m := metrics.Mean(values)
	ci := ConfidenceInterval{Lower: m, Upper: m, Mean: m, ConfidenceLevel: confidenceLevel}
	n := len(values)
	if n < 2 {
		return ci
	}

	rng := rand.New(rand.NewPCG(seed, uint64(n)))
	means := make([]float64, DefaultBootstrapIterations)
	for i := range means {
		sum := 0.0
		for range n {
			sum += values[rng.IntN(n)]
		}
		means[i] = sum / float64(n)
	}

	alpha := (1 - confidenceLevel) / 2
	ci.Lower = metrics.Percentile(means, alpha*100)
	ci.Upper = metrics.Percentile(means, (1-alpha)*100)
	ci.NumBootstraps = DefaultBootstrapIterations
	return ci
}
