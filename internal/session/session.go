// Package session owns the on-disk layout of one analysis run. The caller
// constructs a Session at run start and passes it to each stage; no stage
// resolves filesystem locations on its own, and nothing persists implicitly
// across runs.
package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// Session is the context for one run rooted at a user-chosen directory.
type Session struct {
	Root string
}

// stage directories, one per pipeline step
const (
	rawDataDir    = "rawdata"
	binsDir       = "bins"
	mixbinDir     = "mixbin"
	scalingDir    = "scaling"
	parametersDir = "parameters"
	simulationDir = "simulation"
	summaryDir    = "summary"
)

var stageDirs = []string{rawDataDir, binsDir, mixbinDir, scalingDir, parametersDir, simulationDir, summaryDir}

// New creates a Session rooted at root, making sure every stage directory
// exists.
func New(root string) (*Session, error) {
	for _, d := range stageDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create stage directory %s: %w", d, err)
		}
	}
	return &Session{Root: root}, nil
}

func (s *Session) path(dir, name string) string {
	return filepath.Join(s.Root, dir, name)
}

// Inputs, supplied by the external extraction/GUI layer.

func (s *Session) RawDataFile(channel int) string {
	return s.path(rawDataDir, fmt.Sprintf("LED%d_raw_data.csv", channel))
}

func (s *Session) NodesFile() string { return s.path(binsDir, "bin_nodes.csv") }

func (s *Session) MixPatternFile(channel int) string {
	return s.path(mixbinDir, fmt.Sprintf("mix_pattern_LED%d.csv", channel))
}

func (s *Session) IVCurvesFile() string      { return s.path(scalingDir, "iv_curves.csv") }
func (s *Session) UsageCurrentsFile() string { return s.path(scalingDir, "usage_currents.csv") }
func (s *Session) TestCurrentsFile() string  { return s.path(scalingDir, "test_currents.csv") }
func (s *Session) SeriesCountsFile() string  { return s.path(parametersDir, "series_counts.csv") }
func (s *Session) ThermalLossFile() string   { return s.path(parametersDir, "thermal_loss.csv") }

// Stage outputs.

func (s *Session) BinFile(channel, bin int) string {
	return s.path(binsDir, fmt.Sprintf("LED%d_bin_%d.csv", channel, bin))
}

func (s *Session) BinRangesFile() string { return s.path(binsDir, "bin_ranges.csv") }

func (s *Session) CombosFile() string           { return s.path(mixbinDir, "combos.csv") }
func (s *Session) CombosTextFile() string       { return s.path(mixbinDir, "combos_text.csv") }
func (s *Session) CombosNormalizedFile() string { return s.path(mixbinDir, "combos_normalized.csv") }
func (s *Session) CombosSeriesFile() string     { return s.path(parametersDir, "combos_series.csv") }

func (s *Session) MultipliersFile() string { return s.path(scalingDir, "multipliers.csv") }

func (s *Session) AdjustedBinFile(channel, bin int) string {
	return s.path(scalingDir, fmt.Sprintf("LED%d_bin_%d_adjusted.csv", channel, bin))
}

func (s *Session) VoltageFile(ordinal int) string {
	return s.path(simulationDir, fmt.Sprintf("combos_%d_Voltage.csv", ordinal))
}

func (s *Session) VoltageRangesFile() string { return s.path(simulationDir, "voltage_ranges.csv") }

func (s *Session) CurveImageFile(ordinal int) string {
	return s.path(simulationDir, fmt.Sprintf("combos_%d_Voltage.png", ordinal))
}

func (s *Session) SummaryCSVFile() string { return s.path(summaryDir, "voltage_summary.csv") }
func (s *Session) SummaryPDFFile() string { return s.path(summaryDir, "voltage_summary.pdf") }
