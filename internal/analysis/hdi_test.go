package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func TestHDIEmpty(t *testing.T) {
	lo, med, hi := HDI(nil, FourSigmaAlpha)
	if lo != 0 || med != 0 || hi != 0 {
		t.Errorf("got (%g, %g, %g), want (0, 0, 0)", lo, med, hi)
	}
}

func TestHDISingleSample(t *testing.T) {
	lo, med, hi := HDI([]float64{5}, FourSigmaAlpha)
	if lo != 5 || med != 5 || hi != 5 {
		t.Errorf("got (%g, %g, %g), want (5, 5, 5)", lo, med, hi)
	}
}

func TestHDIUniformGrid(t *testing.T) {
	// On an even grid every window of k points has the same span, so the
	// interval width should be close to (1-alpha) of the full range.
	n := 10000
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = float64(i) / float64(n)
	}
	alpha := 0.05
	lo, med, hi := HDI(samples, alpha)
	if width := hi - lo; math.Abs(width-0.95) > 0.01 {
		t.Errorf("interval width %g, want about 0.95", width)
	}
	if lo > med || med > hi {
		t.Errorf("ordering violated: (%g, %g, %g)", lo, med, hi)
	}
	if math.Abs(med-0.5) > 0.01 {
		t.Errorf("median %g, want about 0.5", med)
	}
}

func TestHDIConcentratedSample(t *testing.T) {
	// Eight identical values and two outliers; dropping 20% of the mass must
	// collapse the interval onto the repeated value.
	samples := []float64{1, 1, 1, 1, 1, 1, 1, 1, 100, 200}
	lo, med, hi := HDI(samples, 0.2)
	if lo != 1 || hi != 1 {
		t.Errorf("got interval [%g, %g], want [1, 1]", lo, hi)
	}
	if med != 1 {
		t.Errorf("median %g, want 1", med)
	}
}

func TestHDIMedianIsWholeSample(t *testing.T) {
	// The median reflects the full sample even when the interval excludes
	// part of it.
	samples := []float64{1, 2, 3, 4}
	_, med, _ := HDI(samples, FourSigmaAlpha)
	if med != 2.5 {
		t.Errorf("median %g, want 2.5", med)
	}
}

func TestHDIDoesNotMutateInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	HDI(samples, FourSigmaAlpha)
	if samples[0] != 3 || samples[1] != 1 || samples[2] != 2 {
		t.Errorf("input mutated: %v", samples)
	}
}

func TestHDIOrderingRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 20; trial++ {
		samples := make([]float64, 1000)
		for i := range samples {
			samples[i] = rng.NormFloat64()
		}
		lo, med, hi := HDI(samples, FourSigmaAlpha)
		if lo > med || med > hi {
			t.Fatalf("trial %d: ordering violated (%g, %g, %g)", trial, lo, med, hi)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(s.Mean-5) > 1e-12 {
		t.Errorf("mean %g, want 5", s.Mean)
	}
	if s.N != 8 {
		t.Errorf("N %d, want 8", s.N)
	}
	if s.StdDev <= 0 {
		t.Errorf("stddev %g, want positive", s.StdDev)
	}
}

func TestSummarizeSingle(t *testing.T) {
	s := Summarize([]float64{3})
	if s.Mean != 3 || s.N != 1 {
		t.Errorf("got %+v", s)
	}
	if s.StdDev != 0 {
		t.Errorf("stddev %g, want 0 for single sample", s.StdDev)
	}
}
