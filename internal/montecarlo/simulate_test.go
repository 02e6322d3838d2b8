package montecarlo

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/user/led_mixbin_go/internal/parser"
)

// memSink collects samples in memory for assertions.
type memSink struct {
	mu        sync.Mutex
	samples   map[int][]float64
	closed    map[int]bool
	discarded map[int]bool
}

func newMemSink() *memSink {
	return &memSink{
		samples:   make(map[int][]float64),
		closed:    make(map[int]bool),
		discarded: make(map[int]bool),
	}
}

func (s *memSink) Create(ordinal int) (SampleWriter, error) {
	return &memWriter{sink: s, ordinal: ordinal}, nil
}

type memWriter struct {
	sink    *memSink
	ordinal int
	buf     []float64
}

func (w *memWriter) Append(v float64) error {
	w.buf = append(w.buf, v)
	return nil
}

func (w *memWriter) Close() error {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.samples[w.ordinal] = w.buf
	w.sink.closed[w.ordinal] = true
	return nil
}

func (w *memWriter) Discard() error {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.discarded[w.ordinal] = true
	return nil
}

func constantPops(v float64) [parser.SlotCount][]float64 {
	var pops [parser.SlotCount][]float64
	for i := range pops {
		pops[i] = []float64{v}
	}
	return pops
}

func TestRunConstantPopulations(t *testing.T) {
	// With single-valued populations every trial is deterministic: the total
	// is the weighted sum of the constants, fractional weights included.
	var combo [parser.SlotCount]float64
	combo[0] = 3
	combo[1] = 0.5
	combo[7] = 2.25
	want := 3*2.0 + 0.5*2.0 + 2*2.0 + 0.25*2.0

	sink := newMemSink()
	cfg := Config{TrialCount: 50, Workers: 1, Seed: 1}
	err := Run(cfg, [][parser.SlotCount]float64{combo}, constantPops(2.0), sink, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	samples := sink.samples[1]
	if len(samples) != 50 {
		t.Fatalf("got %d samples, want 50", len(samples))
	}
	for i, v := range samples {
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("sample %d: got %g, want %g", i, v, want)
		}
	}
	if !sink.closed[1] {
		t.Error("completed combination not closed")
	}
}

func TestRunMeanConvergence(t *testing.T) {
	// Four draws from a {1, 3} population have expected total 8; over many
	// trials the sample mean must land close.
	var pops [parser.SlotCount][]float64
	for i := range pops {
		pops[i] = []float64{0}
	}
	pops[0] = []float64{1, 3}
	var combo [parser.SlotCount]float64
	combo[0] = 4

	sink := newMemSink()
	cfg := Config{TrialCount: 20000, Workers: 1, Seed: 7}
	if err := Run(cfg, [][parser.SlotCount]float64{combo}, pops, sink, nil, nil); err != nil {
		t.Fatal(err)
	}
	sum := 0.0
	for _, v := range sink.samples[1] {
		sum += v
	}
	mean := sum / float64(len(sink.samples[1]))
	if math.Abs(mean-8) > 0.1 {
		t.Errorf("sample mean %g, want about 8", mean)
	}
}

func TestRunMultipleCombinations(t *testing.T) {
	var combos [][parser.SlotCount]float64
	for i := 1; i <= 5; i++ {
		var c [parser.SlotCount]float64
		c[0] = float64(i)
		combos = append(combos, c)
	}
	sink := newMemSink()
	var progressCalls int
	progress := func(done, total int, detail string) {
		progressCalls++
		if total != 5 {
			t.Errorf("progress total %d, want 5", total)
		}
	}
	cfg := Config{TrialCount: 10, Workers: 3, Seed: 5}
	if err := Run(cfg, combos, constantPops(1.0), sink, progress, nil); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		if len(sink.samples[i]) != 10 {
			t.Errorf("combination %d: %d samples, want 10", i, len(sink.samples[i]))
		}
		// combination i draws i times from the constant 1.0 population
		if sink.samples[i][0] != float64(i) {
			t.Errorf("combination %d: sample %g, want %d", i, sink.samples[i][0], i)
		}
	}
	if progressCalls != 5 {
		t.Errorf("progress called %d times, want 5", progressCalls)
	}
}

func TestRunZeroWeightAndEmptyPopulation(t *testing.T) {
	var pops [parser.SlotCount][]float64 // all empty, Run degrades them to {0}
	var combo [parser.SlotCount]float64
	combo[0] = 5

	sink := newMemSink()
	cfg := Config{TrialCount: 5, Workers: 1, Seed: 1}
	if err := Run(cfg, [][parser.SlotCount]float64{combo}, pops, sink, nil, nil); err != nil {
		t.Fatal(err)
	}
	for _, v := range sink.samples[1] {
		if v != 0 {
			t.Errorf("sample %g, want 0 for empty populations", v)
		}
	}
}

func TestRunCancelledImmediately(t *testing.T) {
	var combo [parser.SlotCount]float64
	combo[0] = 1
	sink := newMemSink()
	cfg := Config{TrialCount: 100, Workers: 1, Seed: 1}
	err := Run(cfg, [][parser.SlotCount]float64{combo}, constantPops(1.0), sink, nil, func() bool { return true })
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("got err %v, want ErrCancelled", err)
	}
	if len(sink.samples) != 0 {
		t.Errorf("cancelled run left samples behind: %v", sink.samples)
	}
}

func TestRunCancelledMidCombination(t *testing.T) {
	var combo [parser.SlotCount]float64
	combo[0] = 1
	sink := newMemSink()
	calls := 0
	stop := func() bool {
		calls++
		return calls > 1 // pass the pre-combination check, stop at the first in-loop poll
	}
	cfg := Config{TrialCount: 100, Workers: 1, Seed: 1, StopPollInterval: 10}
	err := Run(cfg, [][parser.SlotCount]float64{combo}, constantPops(1.0), sink, nil, stop)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("got err %v, want ErrCancelled", err)
	}
	if !sink.discarded[1] {
		t.Error("partial output was not discarded")
	}
	if sink.closed[1] {
		t.Error("cancelled combination must not be closed")
	}
}

func TestRunRejectsBadTrialCount(t *testing.T) {
	var combo [parser.SlotCount]float64
	err := Run(Config{TrialCount: 0}, [][parser.SlotCount]float64{combo}, constantPops(1.0), newMemSink(), nil, nil)
	var vErr *parser.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got err %v, want ValidationError", err)
	}
}

func TestRunDefaultWorkersSequential(t *testing.T) {
	// An unset worker count runs sequentially, so a fixed seed reproduces
	// every combination's samples regardless of the machine's core count.
	var pops [parser.SlotCount][]float64
	for i := range pops {
		pops[i] = []float64{1, 2, 3, 4}
	}
	var combos [][parser.SlotCount]float64
	for i := 1; i <= 3; i++ {
		var c [parser.SlotCount]float64
		c[0], c[9] = float64(i), 1.5
		combos = append(combos, c)
	}

	run := func() map[int][]float64 {
		sink := newMemSink()
		cfg := Config{TrialCount: 100, Seed: 42}
		if err := Run(cfg, combos, pops, sink, nil, nil); err != nil {
			t.Fatal(err)
		}
		return sink.samples
	}
	a, b := run(), run()
	for ordinal := 1; ordinal <= 3; ordinal++ {
		if len(a[ordinal]) != 100 {
			t.Fatalf("combination %d: %d samples, want 100", ordinal, len(a[ordinal]))
		}
		for i := range a[ordinal] {
			if a[ordinal][i] != b[ordinal][i] {
				t.Fatalf("combination %d sample %d differs: %g vs %g",
					ordinal, i, a[ordinal][i], b[ordinal][i])
			}
		}
	}
}

func TestRunReproducibleWithSeed(t *testing.T) {
	var pops [parser.SlotCount][]float64
	for i := range pops {
		pops[i] = []float64{1, 2, 3, 4}
	}
	var combo [parser.SlotCount]float64
	combo[0], combo[5], combo[13] = 2, 1.5, 3

	run := func() []float64 {
		sink := newMemSink()
		cfg := Config{TrialCount: 200, Workers: 1, Seed: 99}
		if err := Run(cfg, [][parser.SlotCount]float64{combo}, pops, sink, nil, nil); err != nil {
			t.Fatal(err)
		}
		return sink.samples[1]
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %g vs %g", i, a[i], b[i])
		}
	}
}
