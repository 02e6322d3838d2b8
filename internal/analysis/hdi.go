package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FourSigmaAlpha is the significance level for a 4-sigma highest-density
// interval: 1 - 0.999937.
const FourSigmaAlpha = 0.000063

// HDI computes the highest-density (shortest) interval covering a 1-alpha
// share of the sample, plus the median of the entire sample. The samples are
// sorted and a window of floor((1-alpha)*n) elements slides across them; the
// first window with minimal span wins. n == 0 yields (0, 0, 0).
func HDI(samples []float64, alpha float64) (min, median, max float64) {
	n := len(samples)
	if n == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	median = sampleMedian(sorted)

	k := int(math.Floor((1 - alpha) * float64(n)))
	if k <= 0 {
		return sorted[0], median, sorted[n-1]
	}

	min, max = sorted[0], sorted[n-1]
	bestSpan := math.Inf(1)
	for i := 0; i+k <= n; i++ {
		span := sorted[i+k-1] - sorted[i]
		if span < bestSpan {
			bestSpan = span
			min, max = sorted[i], sorted[i+k-1]
		}
	}
	return min, median, max
}

// sampleMedian is the empirical median of an ascending-sorted sample, the
// mean of the two central elements when the count is even.
func sampleMedian(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return 0.5 * (sorted[n/2-1] + sorted[n/2])
}

// SampleSummary carries the headline statistics reported for one simulated
// distribution.
type SampleSummary struct {
	Mean   float64
	StdDev float64
	N      int
}

// Summarize computes mean and standard deviation for annotation on plots and
// reports.
func Summarize(samples []float64) SampleSummary {
	if len(samples) == 0 {
		return SampleSummary{}
	}
	mean, std := stat.MeanStdDev(samples, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return SampleSummary{Mean: mean, StdDev: std, N: len(samples)}
}
