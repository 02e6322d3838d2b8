// Package pipeline drives the full mix-bin workflow over a session
// directory: partitioning raw populations into bins, enumerating mix
// combinations, scaling the bin populations, simulating voltages and
// summarizing the results. Each stage reads its inputs from the session
// files and rewrites its outputs from scratch, so stages can be rerun
// independently after an input changes.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/user/led_mixbin_go/internal/analysis"
	"github.com/user/led_mixbin_go/internal/bins"
	"github.com/user/led_mixbin_go/internal/mixbin"
	"github.com/user/led_mixbin_go/internal/montecarlo"
	"github.com/user/led_mixbin_go/internal/parser"
	"github.com/user/led_mixbin_go/internal/report"
	"github.com/user/led_mixbin_go/internal/result"
	"github.com/user/led_mixbin_go/internal/scaling"
	"github.com/user/led_mixbin_go/internal/session"
)

// defaultCoverageProb is the coverage target reported for raw-data
// distributions during partitioning.
const defaultCoverageProb = 0.97

// Runner executes pipeline stages against one session. Status, Progress and
// Stop are optional; nil callbacks are skipped.
type Runner struct {
	Session  *session.Session
	Status   func(msg string)
	Progress montecarlo.ProgressFunc
	Stop     montecarlo.StopFunc

	// CoverageProb is the target probability for the raw-data coverage
	// intervals reported during partitioning. Zero means 0.97.
	CoverageProb float64
	// SampleCap bounds in-memory raw data rows. Zero means the default of
	// one million.
	SampleCap int
	// Workers and Seed are passed through to the simulator.
	Workers int
	Seed    int64
}

func (r *Runner) status(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Print(msg)
	if r.Status != nil {
		r.Status(msg)
	}
}

func (r *Runner) coverageProb() float64 {
	if r.CoverageProb > 0 {
		return r.CoverageProb
	}
	return defaultCoverageProb
}

func (r *Runner) sampleCap() int {
	if r.SampleCap > 0 {
		return r.SampleCap
	}
	return parser.DefaultSampleCap
}

// requireFile fails fast when a hard-required input is absent, naming the
// path so the operator knows which stage to rerun.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("required file missing: %s", path)
	}
	return nil
}

// Run executes every stage in order.
func (r *Runner) Run(trialCount int) error {
	if err := r.PartitionBins(); err != nil {
		return err
	}
	if err := r.GenerateCombinations(); err != nil {
		return err
	}
	if err := r.ScalePopulations(); err != nil {
		return err
	}
	if err := r.Simulate(trialCount); err != nil {
		return err
	}
	return r.Summarize(trialCount)
}

// PartitionBins reads each channel's raw population and the bin node table,
// validates the nodes, splits every population into its active bins and
// writes one file per (channel, bin) plus the bin range label row. Channels
// whose raw data file is absent degrade to empty bins with a warning.
func (r *Runner) PartitionBins() error {
	if err := requireFile(r.Session.NodesFile()); err != nil {
		return err
	}
	nodeTable, err := parser.ReadNodeTable(r.Session.NodesFile())
	if err != nil {
		return fmt.Errorf("reading bin nodes: %w", err)
	}
	for ch := 0; ch < parser.NumChannels; ch++ {
		if err := bins.ValidateNodes(nodeTable[ch][:], ch+1); err != nil {
			return err
		}
	}
	for _, warning := range bins.CheckNodeMagnitudes(nodeTable) {
		r.status("Warning: %s", warning)
	}

	for ch := 0; ch < parser.NumChannels; ch++ {
		rawPath := r.Session.RawDataFile(ch + 1)
		var population []float64
		if _, statErr := os.Stat(rawPath); statErr != nil {
			r.status("Warning: no raw data for LED%d (%s), bins will be empty", ch+1, rawPath)
		} else {
			raw, err := parser.ReadRawData(rawPath, r.sampleCap())
			if err != nil {
				return fmt.Errorf("reading raw data for LED%d: %w", ch+1, err)
			}
			for _, warning := range raw.ParseErrors {
				r.status("LED%d raw data: %s", ch+1, warning)
			}
			population = raw.Values()
			res := analysis.AnalyzeRawData(population, r.coverageProb())
			if res.Interval.Defined {
				r.status("LED%d: %d values, %.0f%% coverage %g to %g V (median %g V)",
					ch+1, res.Total, r.coverageProb()*100,
					res.Interval.Min, res.Interval.Max, res.Interval.Median)
			}
		}

		channelBins, unassigned := bins.Partition(population, nodeTable[ch])
		if unassigned > 0 {
			r.status("LED%d: %d values fell outside all active bins", ch+1, unassigned)
		}
		for b := 0; b < parser.BinsPerChannel; b++ {
			if err := writeValues(r.Session.BinFile(ch+1, b+1), channelBins[b]); err != nil {
				return fmt.Errorf("writing LED%d bin %d: %w", ch+1, b+1, err)
			}
		}
	}

	labels := bins.LabelRow(nodeTable)
	if err := parser.WriteRows(r.Session.BinRangesFile(), [][]string{labels[:]}); err != nil {
		return fmt.Errorf("writing bin ranges: %w", err)
	}
	r.status("Bin partitioning complete")
	return nil
}

// GenerateCombinations reads the five mix pattern files, enumerates the
// Cartesian product of their candidate rows and writes the raw, textual,
// normalized and series-scaled combination tables.
func (r *Runner) GenerateCombinations() error {
	var candidates [parser.NumChannels][][parser.BinsPerChannel]float64
	for ch := 0; ch < parser.NumChannels; ch++ {
		path := r.Session.MixPatternFile(ch + 1)
		if err := requireFile(path); err != nil {
			return err
		}
		pattern, err := parser.ReadMixPattern(path)
		if err != nil {
			return fmt.Errorf("reading mix pattern for LED%d: %w", ch+1, err)
		}
		candidates[ch] = mixbin.Candidates(pattern)
	}
	count := mixbin.CombinationCount(candidates)
	r.status("Enumerating %d mix combinations", count)

	var combos [][parser.SlotCount]float64
	rawRows := make([][]string, 0, count)
	err := mixbin.EnumerateCombinations(candidates, func(row [parser.SlotCount]float64) error {
		combos = append(combos, row)
		rawRows = append(rawRows, formatRow(row, -1))
		return nil
	})
	if err != nil {
		return err
	}
	if err := parser.WriteRows(r.Session.CombosFile(), rawRows); err != nil {
		return fmt.Errorf("writing combinations: %w", err)
	}

	labelRows, err := parser.ReadTextRows(r.Session.BinRangesFile())
	if err != nil {
		return fmt.Errorf("reading bin ranges (rerun partitioning first): %w", err)
	}
	if len(labelRows) == 0 || len(labelRows[0]) != parser.SlotCount {
		return fmt.Errorf("bin ranges unavailable, rerun partitioning first: %s", r.Session.BinRangesFile())
	}
	var labels [parser.SlotCount]string
	copy(labels[:], labelRows[0])

	textRows := make([][]string, 0, count)
	normRows := make([][]string, 0, count)
	seriesRows := make([][]string, 0, count)

	series, err := parser.ReadParamVector(r.Session.SeriesCountsFile())
	if err != nil {
		return fmt.Errorf("reading series counts: %w", err)
	}

	for _, row := range combos {
		cells := mixbin.TextCells(row, labels)
		textRows = append(textRows, cells[:])
		norm := mixbin.Normalize(row)
		normRows = append(normRows, formatRow(norm, 6))
		scaled := mixbin.ScaleBySeries(norm, series)
		seriesRows = append(seriesRows, formatRow(scaled, 6))
	}
	if err := parser.WriteRows(r.Session.CombosTextFile(), textRows); err != nil {
		return fmt.Errorf("writing combination text: %w", err)
	}
	if err := parser.WriteRows(r.Session.CombosNormalizedFile(), normRows); err != nil {
		return fmt.Errorf("writing normalized combinations: %w", err)
	}
	if err := parser.WriteRows(r.Session.CombosSeriesFile(), seriesRows); err != nil {
		return fmt.Errorf("writing series-scaled combinations: %w", err)
	}
	r.status("Combination generation complete: %d combinations", count)
	return nil
}

// ScalePopulations derives the per-channel voltage multipliers from the
// If/Vf curves and the usage and test currents, applies them together with
// the thermal loss factors to every bin population, and writes the adjusted
// populations plus the multiplier row.
func (r *Runner) ScalePopulations() error {
	for _, path := range []string{
		r.Session.IVCurvesFile(),
		r.Session.UsageCurrentsFile(),
		r.Session.TestCurrentsFile(),
		r.Session.ThermalLossFile(),
	} {
		if err := requireFile(path); err != nil {
			return err
		}
	}

	curves, err := parser.ReadIVCurves(r.Session.IVCurvesFile())
	if err != nil {
		return fmt.Errorf("reading If/Vf curves: %w", err)
	}
	usage, err := parser.ReadParamVector(r.Session.UsageCurrentsFile())
	if err != nil {
		return fmt.Errorf("reading usage currents: %w", err)
	}
	test, err := parser.ReadParamVector(r.Session.TestCurrentsFile())
	if err != nil {
		return fmt.Errorf("reading test currents: %w", err)
	}
	thermal, err := parser.ReadParamVector(r.Session.ThermalLossFile())
	if err != nil {
		return fmt.Errorf("reading thermal loss factors: %w", err)
	}

	multipliers := scaling.VoltageMultipliers(curves, usage, test)
	for ch, m := range multipliers {
		if m == 0 {
			r.status("Warning: LED%d has no usable If/Vf data, its voltages scale to zero", ch+1)
		}
	}
	mulRow := make([]string, parser.NumChannels)
	for i, m := range multipliers {
		mulRow[i] = strconv.FormatFloat(m, 'g', -1, 64)
	}
	if err := parser.WriteRows(r.Session.MultipliersFile(), [][]string{mulRow}); err != nil {
		return fmt.Errorf("writing multipliers: %w", err)
	}

	var pops [parser.SlotCount][]float64
	for slot := 0; slot < parser.SlotCount; slot++ {
		ch := slot/parser.BinsPerChannel + 1
		bin := slot%parser.BinsPerChannel + 1
		values, err := parser.ReadPopulation(r.Session.BinFile(ch, bin))
		if err != nil {
			return fmt.Errorf("reading LED%d bin %d: %w", ch, bin, err)
		}
		pops[slot] = values
	}
	adjusted := scaling.AdjustPopulations(pops, multipliers, thermal)
	for slot := 0; slot < parser.SlotCount; slot++ {
		ch := slot/parser.BinsPerChannel + 1
		bin := slot%parser.BinsPerChannel + 1
		if err := writeValues(r.Session.AdjustedBinFile(ch, bin), adjusted[slot]); err != nil {
			return fmt.Errorf("writing adjusted LED%d bin %d: %w", ch, bin, err)
		}
	}
	r.status("Scaling complete")
	return nil
}

// Simulate runs the Monte Carlo voltage simulation for every series-scaled
// combination, writing one sample file per combination.
func (r *Runner) Simulate(trialCount int) error {
	if err := requireFile(r.Session.CombosSeriesFile()); err != nil {
		return err
	}
	combos, err := parser.ReadCombos(r.Session.CombosSeriesFile())
	if err != nil {
		return fmt.Errorf("reading series-scaled combinations: %w", err)
	}

	var pops [parser.SlotCount][]float64
	for slot := 0; slot < parser.SlotCount; slot++ {
		ch := slot/parser.BinsPerChannel + 1
		bin := slot%parser.BinsPerChannel + 1
		path := r.Session.AdjustedBinFile(ch, bin)
		if err := requireFile(path); err != nil {
			return err
		}
		values, err := parser.ReadPopulation(path)
		if err != nil {
			return fmt.Errorf("reading adjusted LED%d bin %d: %w", ch, bin, err)
		}
		pops[slot] = values
	}

	r.status("Simulating %d combinations, %d trials each", len(combos), trialCount)
	cfg := montecarlo.Config{
		TrialCount: trialCount,
		Workers:    r.Workers,
		Seed:       r.Seed,
	}
	sink := &montecarlo.FileSink{PathFor: r.Session.VoltageFile}
	if err := montecarlo.Run(cfg, combos, pops, sink, r.Progress, r.Stop); err != nil {
		return err
	}
	r.status("Simulation complete")
	return nil
}

// Summarize reduces every combination's sample file to its four-sigma
// highest-density interval, writes the ranges and summary tables, renders a
// distribution curve per combination and builds the PDF report.
func (r *Runner) Summarize(trialCount int) error {
	if err := requireFile(r.Session.CombosTextFile()); err != nil {
		return err
	}
	textRows, err := parser.ReadTextRows(r.Session.CombosTextFile())
	if err != nil {
		return fmt.Errorf("reading combination text: %w", err)
	}

	ranges, err := result.BuildRanges(r.Session.VoltageFile, len(textRows), analysis.FourSigmaAlpha)
	if err != nil {
		return err
	}
	if err := result.WriteRanges(r.Session.VoltageRangesFile(), ranges); err != nil {
		return fmt.Errorf("writing voltage ranges: %w", err)
	}

	descriptions := make([]string, len(textRows))
	for i, cells := range textRows {
		descriptions[i] = mixbin.CombineText(cells)
	}
	summary := result.BuildSummary(descriptions, ranges)
	if err := result.WriteSummaryCSV(r.Session.SummaryCSVFile(), summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	curveImages := make(map[int][]byte, len(ranges))
	for _, rng := range ranges {
		samples, err := parser.ReadSamples(r.Session.VoltageFile(rng.Ordinal))
		if err != nil || len(samples) == 0 {
			r.status("Warning: no samples to plot for combination %d", rng.Ordinal)
			continue
		}
		img, err := report.CreateVoltageCurvePlot(samples, rng, rng.Ordinal)
		if err != nil {
			r.status("Warning: plot for combination %d failed: %v", rng.Ordinal, err)
			continue
		}
		if err := os.WriteFile(r.Session.CurveImageFile(rng.Ordinal), img, 0o644); err != nil {
			return fmt.Errorf("writing curve image for combination %d: %w", rng.Ordinal, err)
		}
		curveImages[rng.Ordinal] = img
	}

	if err := report.BuildSummaryPDF(r.Session.SummaryPDFFile(), summary, trialCount, curveImages); err != nil {
		return fmt.Errorf("building summary PDF: %w", err)
	}
	r.status("Summary complete: %d combinations", len(summary))
	return nil
}

// writeValues stores one scalar per line.
func writeValues(path string, values []float64) error {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{strconv.FormatFloat(v, 'g', -1, 64)}
	}
	return parser.WriteRows(path, rows)
}

// formatRow renders a 20-column combination row. A negative precision keeps
// full float precision; otherwise values are compacted to that many
// decimals.
func formatRow(row [parser.SlotCount]float64, prec int) []string {
	cells := make([]string, parser.SlotCount)
	for i, v := range row {
		if prec < 0 {
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
		} else {
			cells[i] = parser.FormatCompact(v, prec)
		}
	}
	return cells
}
