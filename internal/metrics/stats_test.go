package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const delta = 1e-9

// scores is a typical spread of popularity estimates.
var scores = []float64{0.5, 1.5, 1.5, 1.5, 2.5, 3.5, 4.5, 5.0}

func TestMoments(t *testing.T) {
	cases := map[string]struct {
		in                  []float64
		mean, variance, psd float64
	}{
		"nil":      {nil, 0, 0, 0},
		"one":      {[]float64{3.2}, 3.2, 0, 0},
		"constant": {[]float64{2, 2, 2, 2}, 2, 0, 0},
		"pair":     {[]float64{1, 5}, 3, 4, 2},
		"scores":   {scores, 2.5625, 2.27734375, math.Sqrt(2.27734375)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, c.mean, Mean(c.in), delta)
			assert.InDelta(t, c.variance, Variance(c.in), delta)
			assert.InDelta(t, c.psd, StdDev(c.in), delta)
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	assert.Zero(t, SampleStdDev(nil))
	assert.Zero(t, SampleStdDev([]float64{4.1}))
	assert.InDelta(t, 2*math.Sqrt2, SampleStdDev([]float64{1, 5}), delta)
	assert.InDelta(t, math.Sqrt(2.27734375*8/7), SampleStdDev(scores), delta)
}

func TestConfidenceInterval95(t *testing.T) {
	lo, hi := ConfidenceInterval95(nil)
	assert.Zero(t, lo)
	assert.Zero(t, hi)

	lo, hi = ConfidenceInterval95([]float64{4.0})
	assert.Equal(t, 4.0, lo)
	assert.Equal(t, 4.0, hi)

	// mean 3, sample sd 2*sqrt(2), margin 1.96*2*sqrt(2)/sqrt(2)
	lo, hi = ConfidenceInterval95([]float64{1, 5})
	assert.InDelta(t, 3-3.92, lo, delta)
	assert.InDelta(t, 3+3.92, hi, delta)

	lo, hi = ConfidenceInterval95([]float64{2.5, 2.5, 2.5})
	assert.InDelta(t, 2.5, lo, delta)
	assert.InDelta(t, 2.5, hi, delta)
}

func TestPercentile(t *testing.T) {
	assert.Zero(t, Percentile(nil, 50))
	assert.Equal(t, 1.5, Percentile([]float64{1.5}, 95))
	assert.InDelta(t, 2.0, Percentile([]float64{2.5, 0.5, 2.0}, 50), delta)
	assert.InDelta(t, 1.75, Percentile([]float64{3.0, 0.5, 2.5, 1.0}, 50), delta)
	assert.InDelta(t, 0.5, Percentile(scores, 0), delta)
	assert.InDelta(t, 5.0, Percentile(scores, 100), delta)
	assert.InDelta(t, 5.0, Percentile(scores, 140), delta)
	// rank 0.9*7 = 6.3 between 4.5 and 5.0
	assert.InDelta(t, 4.65, Percentile(scores, 90), delta)
}

func TestPercentile_LeavesInputUnsorted(t *testing.T) {
	in := []float64{3, 1, 2}
	Percentile(in, 50)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize(scores)
	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 2.5625, s.Mean, delta)
	assert.Equal(t, 0.5, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.InDelta(t, 2.0, s.P50, delta)
	assert.Less(t, s.CILow, s.Mean)
	assert.Greater(t, s.CIHigh, s.Mean)
}
