// Package mixbin enumerates joint mixing scenarios across the five channels
// and derives their normalized and series-scaled forms.
package mixbin

import (
	"github.com/user/led_mixbin_go/internal/parser"
)

// Candidates filters a channel's mixing table down to its qualifying rows:
// any row with at least one non-zero weight. A channel with no qualifying
// rows contributes a single all-zero placeholder so it still participates in
// enumeration instead of collapsing the product to zero combinations.
func Candidates(pattern *parser.MixPattern) [][parser.BinsPerChannel]float64 {
	var out [][parser.BinsPerChannel]float64
	for _, row := range pattern.Rows {
		allZero := true
		for _, v := range row {
			if v != 0 {
				allZero = false
				break
			}
		}
		if !allZero {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		out = append(out, [parser.BinsPerChannel]float64{})
	}
	return out
}

// EnumerateCombinations walks the Cartesian product of the per-channel
// candidate rows in channel order, the last channel varying fastest, and
// hands each 20-element row to emit. Rows are produced incrementally so a
// caller can stream them straight to a writer; a non-nil error from emit
// stops the walk.
func EnumerateCombinations(candidates [parser.NumChannels][][parser.BinsPerChannel]float64, emit func(row [parser.SlotCount]float64) error) error {
	var idx [parser.NumChannels]int
	for {
		var row [parser.SlotCount]float64
		for ch := 0; ch < parser.NumChannels; ch++ {
			copy(row[ch*parser.BinsPerChannel:(ch+1)*parser.BinsPerChannel], candidates[ch][idx[ch]][:])
		}
		if err := emit(row); err != nil {
			return err
		}

		// advance the odometer, last channel fastest
		ch := parser.NumChannels - 1
		for ch >= 0 {
			idx[ch]++
			if idx[ch] < len(candidates[ch]) {
				break
			}
			idx[ch] = 0
			ch--
		}
		if ch < 0 {
			return nil
		}
	}
}

// CombinationCount is the product of the candidate-row counts.
func CombinationCount(candidates [parser.NumChannels][][parser.BinsPerChannel]float64) int {
	n := 1
	for _, c := range candidates {
		n *= len(c)
	}
	return n
}

// Normalize rescales each 4-element channel group of a combination row into
// a probability vector. A group summing to zero stays all-zero. The
// operation is elementwise per group and idempotent.
func Normalize(row [parser.SlotCount]float64) [parser.SlotCount]float64 {
	for g := 0; g < parser.NumChannels; g++ {
		beg := g * parser.BinsPerChannel
		sum := 0.0
		for i := beg; i < beg+parser.BinsPerChannel; i++ {
			sum += row[i]
		}
		if sum > 0 {
			for i := beg; i < beg+parser.BinsPerChannel; i++ {
				row[i] /= sum
			}
		} else {
			for i := beg; i < beg+parser.BinsPerChannel; i++ {
				row[i] = 0
			}
		}
	}
	return row
}

// ScaleBySeries multiplies each channel group of a normalized row by that
// channel's series count, turning mixing ratios into per-trial draw counts.
func ScaleBySeries(row [parser.SlotCount]float64, series [parser.NumChannels]float64) [parser.SlotCount]float64 {
	for g := 0; g < parser.NumChannels; g++ {
		beg := g * parser.BinsPerChannel
		for i := beg; i < beg+parser.BinsPerChannel; i++ {
			row[i] *= series[g]
		}
	}
	return row
}
