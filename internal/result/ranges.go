// Package result condenses the simulated voltage samples into per-combination
// coverage ranges and the final summary table.
package result

import (
	"fmt"
	"strconv"

	"github.com/user/led_mixbin_go/internal/analysis"
	"github.com/user/led_mixbin_go/internal/parser"
)

// Range is one combination's highest-density voltage interval.
type Range struct {
	Ordinal int
	Min     float64
	Median  float64
	Max     float64
}

// BuildRanges reads each combination's sample file and reduces it to its
// four-sigma highest-density interval. An empty sample file collapses to a
// zero range; a missing file is an error, since every enumerated combination
// must have been simulated before summarizing.
func BuildRanges(pathFor func(ordinal int) string, count int, alpha float64) ([]Range, error) {
	ranges := make([]Range, 0, count)
	for i := 1; i <= count; i++ {
		samples, err := parser.ReadSamples(pathFor(i))
		if err != nil {
			return nil, fmt.Errorf("reading samples for combination %d: %w", i, err)
		}
		lo, med, hi := analysis.HDI(samples, alpha)
		ranges = append(ranges, Range{Ordinal: i, Min: lo, Median: med, Max: hi})
	}
	return ranges, nil
}

// WriteRanges stores the ranges table with its fixed header.
func WriteRanges(path string, ranges []Range) error {
	rows := make([][]string, 0, len(ranges)+1)
	rows = append(rows, []string{"Combo_Index", "HDI_Min", "Median", "HDI_Max"})
	for _, r := range ranges {
		rows = append(rows, []string{
			strconv.Itoa(r.Ordinal),
			strconv.FormatFloat(r.Min, 'g', -1, 64),
			strconv.FormatFloat(r.Median, 'g', -1, 64),
			strconv.FormatFloat(r.Max, 'g', -1, 64),
		})
	}
	return parser.WriteRows(path, rows)
}

// SummaryRow pairs a combination's human-readable mix description with its
// voltage range.
type SummaryRow struct {
	Ordinal     int
	Description string
	Min         float64
	Median      float64
	Max         float64
}

// BuildSummary joins the textual combination descriptions with the computed
// ranges by ordinal. Descriptions beyond the ranges table (or vice versa)
// are dropped; only fully matched rows are reported.
func BuildSummary(descriptions []string, ranges []Range) []SummaryRow {
	n := len(descriptions)
	if len(ranges) < n {
		n = len(ranges)
	}
	rows := make([]SummaryRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, SummaryRow{
			Ordinal:     ranges[i].Ordinal,
			Description: descriptions[i],
			Min:         ranges[i].Min,
			Median:      ranges[i].Median,
			Max:         ranges[i].Max,
		})
	}
	return rows
}

// WriteSummaryCSV stores the final summary table.
func WriteSummaryCSV(path string, rows []SummaryRow) error {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, []string{"Combo_Index", "Mix_Description", "HDI_Min", "Median", "HDI_Max"})
	for _, r := range rows {
		out = append(out, []string{
			strconv.Itoa(r.Ordinal),
			r.Description,
			parser.FormatCompact(r.Min, 6),
			parser.FormatCompact(r.Median, 6),
			parser.FormatCompact(r.Max, 6),
		})
	}
	return parser.WriteRows(path, out)
}
