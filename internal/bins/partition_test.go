package bins

import (
	"errors"
	"testing"

	"github.com/user/led_mixbin_go/internal/parser"
)

func TestValidateNodes(t *testing.T) {
	cases := []struct {
		name  string
		nodes []float64
		ok    bool
	}{
		{"full ascending", []float64{2.8, 2.9, 3.0, 3.1, 3.2}, true},
		{"all zero", []float64{0, 0, 0, 0, 0}, true},
		{"zero prefix", []float64{0, 2.9, 3.0, 3.1, 3.2}, true},
		{"zero suffix", []float64{2.8, 2.9, 3.0, 0, 0}, true},
		{"zero both ends", []float64{0, 2.9, 3.0, 3.1, 0}, true},
		{"interior zero", []float64{2.8, 0, 3.0, 3.1, 3.2}, false},
		{"not increasing", []float64{2.8, 3.0, 2.9, 3.1, 3.2}, false},
		{"repeated", []float64{2.8, 2.9, 2.9, 3.1, 3.2}, false},
		{"too few", []float64{2.8, 2.9, 3.0}, false},
		{"too many", []float64{1, 2, 3, 4, 5, 6}, false},
	}
	for _, c := range cases {
		err := ValidateNodes(c.nodes, 1)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok {
			var vErr *parser.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("%s: expected ValidationError, got %v", c.name, err)
			}
		}
	}
}

func TestActiveIntervals(t *testing.T) {
	intervals := ActiveIntervals([parser.NodeCount]float64{0, 1, 2, 3, 0})
	if len(intervals) != 2 {
		t.Fatalf("got %d active intervals, want 2", len(intervals))
	}
	if intervals[0].Bin != 2 || intervals[0].Lo != 1 || intervals[0].Hi != 2 {
		t.Errorf("first interval: %+v", intervals[0])
	}
	if intervals[1].Bin != 3 || intervals[1].Lo != 2 || intervals[1].Hi != 3 {
		t.Errorf("second interval: %+v", intervals[1])
	}
}

func TestActiveIntervalsAllZero(t *testing.T) {
	if intervals := ActiveIntervals([parser.NodeCount]float64{}); len(intervals) != 0 {
		t.Errorf("got %v, want none", intervals)
	}
}

func TestPartition(t *testing.T) {
	nodes := [parser.NodeCount]float64{2.8, 2.9, 3.0, 3.1, 3.2}
	pop := []float64{2.85, 2.9, 2.95, 3.05, 3.2, 2.7, 3.3}
	bins, unassigned := Partition(pop, nodes)

	// The half-open convention sends a value on a boundary into the lower
	// bin.
	if len(bins[0]) != 2 {
		t.Errorf("bin 1 holds %v, want [2.85, 2.9]", bins[0])
	}
	if len(bins[1]) != 1 || bins[1][0] != 2.95 {
		t.Errorf("bin 2 holds %v, want [2.95]", bins[1])
	}
	if len(bins[2]) != 1 || bins[2][0] != 3.05 {
		t.Errorf("bin 3 holds %v, want [3.05]", bins[2])
	}
	if len(bins[3]) != 1 || bins[3][0] != 3.2 {
		t.Errorf("bin 4 holds %v, want [3.2]", bins[3])
	}
	if unassigned != 2 {
		t.Errorf("unassigned %d, want 2", unassigned)
	}
}

func TestPartitionBoundaryTolerance(t *testing.T) {
	nodes := [parser.NodeCount]float64{1, 2, 3, 4, 5}
	// A hair above an upper boundary still lands in the lower bin.
	bins, unassigned := Partition([]float64{2 + 1e-12}, nodes)
	if len(bins[0]) != 1 {
		t.Errorf("value just above boundary not absorbed: %v", bins)
	}
	if unassigned != 0 {
		t.Errorf("unassigned %d, want 0", unassigned)
	}
}

func TestPartitionInactiveBins(t *testing.T) {
	nodes := [parser.NodeCount]float64{0, 1, 2, 3, 0}
	pop := []float64{0.5, 1.5, 2.5, 3.5}
	bins, unassigned := Partition(pop, nodes)
	if len(bins[0]) != 0 || len(bins[3]) != 0 {
		t.Errorf("inactive bins must stay empty: %v", bins)
	}
	if len(bins[1]) != 1 || len(bins[2]) != 1 {
		t.Errorf("active bins: %v", bins)
	}
	if unassigned != 2 {
		t.Errorf("unassigned %d, want 2", unassigned)
	}
}

func TestRangeLabels(t *testing.T) {
	labels := RangeLabels([parser.NodeCount]float64{0, 1, 2, 3, 0})
	want := [parser.BinsPerChannel]string{"-", "(1-2)", "(2-3)", "-"}
	if labels != want {
		t.Errorf("got %v, want %v", labels, want)
	}
}

func TestLabelRow(t *testing.T) {
	var nodes [parser.NumChannels][parser.NodeCount]float64
	nodes[0] = [parser.NodeCount]float64{2.8, 2.9, 3.0, 3.1, 3.2}
	row := LabelRow(nodes)
	if row[0] != "(2.8-2.9)" {
		t.Errorf("slot 0: %q", row[0])
	}
	if row[4] != "-" {
		t.Errorf("slot 4 (all-zero channel): %q", row[4])
	}
}

func TestCheckNodeMagnitudes(t *testing.T) {
	var nodes [parser.NumChannels][parser.NodeCount]float64
	nodes[0] = [parser.NodeCount]float64{2.8, 2.9, 3.0, 3.1, 3.2}
	nodes[1] = [parser.NodeCount]float64{0, 1, 2, 30, 0}
	warnings := CheckNodeMagnitudes(nodes)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
}
