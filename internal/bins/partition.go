// Package bins splits per-channel observation populations into the four
// half-open intervals defined by a channel's five boundary nodes.
package bins

import (
	"fmt"

	"github.com/user/led_mixbin_go/internal/parser"
)

// boundaryTol absorbs floating error at bin edges so an observation sitting
// exactly on a boundary is not misclassified.
const boundaryTol = 1e-10

// Interval is one active bin: index (1-based within the channel) and its
// exclusive-lower, inclusive-upper boundaries.
type Interval struct {
	Bin int
	Lo  float64
	Hi  float64
}

// ValidateNodes checks one channel's boundary row: exactly NodeCount values,
// zeros only as a contiguous prefix and/or suffix, and the non-zero
// subsequence strictly increasing. row is 1-based and appears in the error
// message so the user can find the offending line.
func ValidateNodes(nodes []float64, row int) error {
	if len(nodes) != parser.NodeCount {
		return parser.Validationf("row %d must have %d bin nodes, found %d", row, parser.NodeCount, len(nodes))
	}

	first, last := -1, -1
	for i, v := range nodes {
		if v != 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil // all zero: no active bins, structurally fine
	}
	for i := first; i <= last; i++ {
		if nodes[i] == 0 {
			return parser.Validationf("row %d has a zero between non-zero bin nodes: %v", row, nodes)
		}
	}
	prev := nodes[first]
	for i := first + 1; i <= last; i++ {
		if nodes[i] <= prev {
			return parser.Validationf("row %d non-zero bin nodes must be strictly increasing: %v", row, nodes)
		}
		prev = nodes[i]
	}
	return nil
}

// ActiveIntervals lists the bins whose boundaries are both non-zero with
// lower < upper. Bins touching a zero node are inactive and simply absent.
func ActiveIntervals(nodes [parser.NodeCount]float64) []Interval {
	var out []Interval
	for i := 0; i < parser.BinsPerChannel; i++ {
		lo, hi := nodes[i], nodes[i+1]
		if lo == 0 || hi == 0 || lo >= hi {
			continue
		}
		out = append(out, Interval{Bin: i + 1, Lo: lo, Hi: hi})
	}
	return out
}

// Partition assigns every population member to the active bin whose range
// (lo, hi] contains it, within boundary tolerance. Inactive bins come back
// empty. Members outside every active bin are counted but not fatal; the
// caller decides whether to surface them.
func Partition(population []float64, nodes [parser.NodeCount]float64) (bins [parser.BinsPerChannel][]float64, unassigned int) {
	intervals := ActiveIntervals(nodes)
	for _, v := range population {
		placed := false
		for _, iv := range intervals {
			if v > iv.Lo-boundaryTol && v <= iv.Hi+boundaryTol {
				bins[iv.Bin-1] = append(bins[iv.Bin-1], v)
				placed = true
				break
			}
		}
		if !placed {
			unassigned++
		}
	}
	return bins, unassigned
}

// RangeLabels renders a channel's four bin labels: "(lo-hi)" for an active
// bin, "-" for a bin touching a zero node.
func RangeLabels(nodes [parser.NodeCount]float64) [parser.BinsPerChannel]string {
	var labels [parser.BinsPerChannel]string
	for i := 0; i < parser.BinsPerChannel; i++ {
		lo, hi := nodes[i], nodes[i+1]
		if lo == 0 || hi == 0 {
			labels[i] = "-"
		} else {
			labels[i] = fmt.Sprintf("(%g-%g)", lo, hi)
		}
	}
	return labels
}

// LabelRow flattens all channels' bin labels into the 20-column row the
// combination text table indexes into.
func LabelRow(nodes [parser.NumChannels][parser.NodeCount]float64) [parser.SlotCount]string {
	var row [parser.SlotCount]string
	for ch := 0; ch < parser.NumChannels; ch++ {
		labels := RangeLabels(nodes[ch])
		for b := 0; b < parser.BinsPerChannel; b++ {
			row[ch*parser.BinsPerChannel+b] = labels[b]
		}
	}
	return row
}

// CheckNodeMagnitudes is an advisory pass over the node table: non-zero
// nodes are expected to be forward voltages in (0, 15) volts. Findings are
// warnings for the user to confirm, never fatal.
func CheckNodeMagnitudes(nodes [parser.NumChannels][parser.NodeCount]float64) []string {
	var warnings []string
	for i := range nodes {
		for j, v := range nodes[i] {
			if v != 0 && (v <= 0 || v >= 15) {
				warnings = append(warnings,
					fmt.Sprintf("row %d column %d: value %g is outside the expected 0-15 V range", i+1, j+1, v))
			}
		}
	}
	return warnings
}
