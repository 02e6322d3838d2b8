package parser

// Layout constants for the five-channel mix-bin pipeline. Every tabular
// input and output in the pipeline is shaped by these.
const (
	NumChannels    = 5
	BinsPerChannel = 4
	NodeCount      = 5 // boundaries per channel, defining BinsPerChannel bins
	MaxMixRows     = 6 // candidate mixing rows inspected per channel
	SlotCount      = NumChannels * BinsPerChannel
)

// DefaultSampleCap bounds how many scalar observations a raw-data file may
// contribute before the collector switches to reservoir sampling.
const DefaultSampleCap = 1_000_000

// RawData holds the numeric content extracted from one channel's raw
// observation file. Row grouping is preserved unless the collector had to
// fall back to reservoir sampling, in which case every row holds a single
// scalar.
type RawData struct {
	Rows        [][]float64
	Total       int  // scalar observations seen in the source, pre-sampling
	Sampled     bool // true if Rows is a reservoir sample rather than the source rows
	ParseErrors []string
}

// Values flattens the row grouping into a single population.
func (d *RawData) Values() []float64 {
	n := 0
	for _, r := range d.Rows {
		n += len(r)
	}
	out := make([]float64, 0, n)
	for _, r := range d.Rows {
		out = append(out, r...)
	}
	return out
}

// MixPattern is one channel's candidate mixing table: up to MaxMixRows rows
// of BinsPerChannel weights. Blank cells read as 0.
type MixPattern struct {
	Rows [][BinsPerChannel]float64
}

// IVCurve is one channel's empirical forward current/voltage data, already
// filtered to pairs where both components are non-zero.
type IVCurve struct {
	If []float64
	Vf []float64
}

// Empty reports whether the curve carries no usable points.
func (c IVCurve) Empty() bool { return len(c.If) == 0 }
