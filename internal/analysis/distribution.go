package analysis

import "sort"

// intervalEps is the cumulative-probability tolerance used when deciding
// whether an interval has reached the coverage target.
const intervalEps = 1e-12

// CategoryStat is one row of a discrete distribution table: a distinct
// observed value, its multiplicity, and its share of the population.
type CategoryStat struct {
	Value      float64
	Count      int
	Proportion float64
}

// CoverageInterval is the shortest contiguous value range of a category
// table whose cumulative proportion meets a target probability. Defined is
// false for an empty table, in which case the bounds are meaningless and
// Probability is 0.
type CoverageInterval struct {
	Min         float64
	Median      float64
	Max         float64
	Probability float64
	Defined     bool
}

// Categorize builds the value -> (count, proportion) table for a population,
// sorted ascending by value. Identical floating values unify into one entry.
// An empty population yields an empty table.
func Categorize(population []float64) []CategoryStat {
	total := len(population)
	if total == 0 {
		return nil
	}
	counts := make(map[float64]int, total)
	for _, v := range population {
		counts[v]++
	}
	stats := make([]CategoryStat, 0, len(counts))
	for v, c := range counts {
		stats = append(stats, CategoryStat{Value: v, Count: c, Proportion: float64(c) / float64(total)})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Value < stats[j].Value })
	return stats
}

// ShortestInterval finds the shortest contiguous interval of the table whose
// cumulative proportion reaches targetProb. Every left index is tried in
// ascending order and the first minimal-width interval found wins, so ties
// resolve to the leftmost candidate; that ordering is part of the contract.
// The median is the smallest value at which the cumulative proportion inside
// the interval first reaches half the interval's total mass, not the
// midpoint of the endpoints.
func ShortestInterval(stats []CategoryStat, targetProb float64) CoverageInterval {
	n := len(stats)
	if n == 0 {
		return CoverageInterval{}
	}

	bestI, bestJ := 0, n-1
	bestSpan := -1.0
	for i := 0; i < n; i++ {
		cum := 0.0
		for j := i; j < n; j++ {
			cum += stats[j].Proportion
			if cum+intervalEps >= targetProb {
				span := stats[j].Value - stats[i].Value
				if bestSpan < 0 || span < bestSpan {
					bestSpan = span
					bestI, bestJ = i, j
				}
				break
			}
		}
	}

	interval := CoverageInterval{
		Min:     stats[bestI].Value,
		Max:     stats[bestJ].Value,
		Defined: true,
	}
	for k := bestI; k <= bestJ; k++ {
		interval.Probability += stats[k].Proportion
	}

	half := 0.5 * interval.Probability
	cum := 0.0
	interval.Median = interval.Min
	for k := bestI; k <= bestJ; k++ {
		cum += stats[k].Proportion
		if cum >= half {
			interval.Median = stats[k].Value
			break
		}
	}
	return interval
}

// RawDataResult bundles a channel's categorized distribution with its
// coverage interval and extraction counters for display.
type RawDataResult struct {
	Stats    []CategoryStat
	Interval CoverageInterval
	Total    int
}

// AnalyzeRawData characterizes one population at the given coverage target.
func AnalyzeRawData(population []float64, targetProb float64) *RawDataResult {
	stats := Categorize(population)
	return &RawDataResult{
		Stats:    stats,
		Interval: ShortestInterval(stats, targetProb),
		Total:    len(population),
	}
}
