package mixbin

import (
	"testing"

	"github.com/user/led_mixbin_go/internal/parser"
)

func TestTextCells(t *testing.T) {
	var row [parser.SlotCount]float64
	var labels [parser.SlotCount]string
	for i := range labels {
		labels[i] = "(x)"
	}
	row[0] = 0.5
	row[3] = 0.333333333

	cells := TextCells(row, labels)
	if cells[0] != "(x) 0.5" {
		t.Errorf("cell 0: %q", cells[0])
	}
	if cells[1] != "0" {
		t.Errorf("cell 1: %q", cells[1])
	}
	if cells[3] != "(x) 0.333333" {
		t.Errorf("cell 3: %q", cells[3])
	}
}

func TestCombineText(t *testing.T) {
	cells := make([]string, parser.SlotCount)
	for i := range cells {
		cells[i] = "0"
	}
	// Channel 1: two active bins. Channel 3: one active bin. Others silent.
	cells[0] = "(2.8-2.9) 0.75"
	cells[1] = "(2.9-3.0) 0.25"
	cells[8] = "(3.0-3.1) 1"

	got := CombineText(cells)
	want := "(2.8-2.9) 0.75 : (2.9-3.0) 0.25 + (3.0-3.1) 1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCombineTextAllZero(t *testing.T) {
	cells := make([]string, parser.SlotCount)
	for i := range cells {
		cells[i] = "0"
	}
	if got := CombineText(cells); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
