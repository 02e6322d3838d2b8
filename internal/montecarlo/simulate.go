// Package montecarlo estimates total-voltage distributions for mix-bin
// combinations by weighted resampling of the adjusted bin populations.
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/led_mixbin_go/internal/parser"
)

// ErrCancelled is the distinct "stopped by user" outcome. It is not a
// failure; callers should report it as a cancellation, never as an error in
// the data.
var ErrCancelled = errors.New("calculation stopped by user")

// fracEps is the smallest fractional draw weight worth sampling; below it
// the remainder is floating noise.
const fracEps = 1e-10

// defaultStopPoll is how many trials run between cancellation checks inside
// one combination.
const defaultStopPoll = 1000

// Config controls one simulation run.
type Config struct {
	// TrialCount is the number of simulated totals per combination.
	TrialCount int
	// Workers sizes the combination worker pool. Zero or negative means 1,
	// so a run is sequential unless parallelism is asked for. Combinations
	// are independent, so any worker count produces statistically
	// equivalent results.
	Workers int
	// Seed fixes the run's randomness for reproduction. Zero seeds from the
	// clock, matching normal (non-reproducible) operation. A fixed seed is
	// reproducible for a fixed worker count.
	Seed int64
	// StopPollInterval overrides the per-combination cancellation poll
	// cadence; zero means the default of 1000 trials.
	StopPollInterval int
}

// ProgressFunc receives coarse progress: combinations completed so far out
// of the total, plus a free-text detail line.
type ProgressFunc func(done, total int, detail string)

// StopFunc is polled cooperatively; returning true requests cancellation.
// In-flight work up to the next poll completes first.
type StopFunc func() bool

// SampleWriter receives one combination's trial results as they are
// produced.
type SampleWriter interface {
	Append(v float64) error
	// Close finalizes a completed combination's output.
	Close() error
	// Discard abandons an incomplete output so a cancelled or failed
	// combination never leaves a plausible-looking partial file behind.
	Discard() error
}

// Sink creates one SampleWriter per combination ordinal (1-based, matching
// enumeration order).
type Sink interface {
	Create(ordinal int) (SampleWriter, error)
}

// Run simulates every combination row against the 20 adjusted populations,
// streaming each combination's samples to the sink before moving on. Work is
// spread over a pool of workers, each owning its own RNG and its own output
// writer; nothing is shared across combinations beyond the progress counter.
func Run(cfg Config, combos [][parser.SlotCount]float64, pops [parser.SlotCount][]float64, sink Sink, progress ProgressFunc, stop StopFunc) error {
	if cfg.TrialCount <= 0 {
		return parser.Validationf("trial count must be a positive integer, got %d", cfg.TrialCount)
	}
	if len(combos) == 0 {
		return parser.Validationf("no combinations to simulate")
	}
	for i := range pops {
		if len(pops[i]) == 0 {
			pops[i] = []float64{0} // absent bin data contributes nothing
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(combos) {
		workers = len(combos)
	}
	poll := cfg.StopPollInterval
	if poll <= 0 {
		poll = defaultStopPoll
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	total := len(combos)
	jobs := make(chan int)
	var (
		done     int64
		aborted  atomic.Bool
		firstErr error
		errOnce  sync.Once
		progMu   sync.Mutex
		wg       sync.WaitGroup
	)

	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		aborted.Store(true)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(workerID)*0x9e3779b9))
			for idx := range jobs {
				if aborted.Load() {
					continue
				}
				if stop != nil && stop() {
					fail(ErrCancelled)
					continue
				}
				ordinal := idx + 1
				if err := simulateCombo(rng, combos[idx], pops, cfg.TrialCount, poll, ordinal, sink, stop); err != nil {
					fail(err)
					continue
				}
				n := atomic.AddInt64(&done, 1)
				if progress != nil {
					progMu.Lock()
					progress(int(n), total, fmt.Sprintf("combination %d/%d: %d trials complete", ordinal, total, cfg.TrialCount))
					progMu.Unlock()
				}
			}
		}(w)
	}

	for idx := range combos {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return firstErr
}

// simulateCombo runs one combination's full trial loop, streaming every
// total to its own writer. On cancellation or error the partial output is
// discarded; completed combinations keep theirs.
func simulateCombo(rng *rand.Rand, combo [parser.SlotCount]float64, pops [parser.SlotCount][]float64, trials, poll, ordinal int, sink Sink, stop StopFunc) error {
	w, err := sink.Create(ordinal)
	if err != nil {
		return fmt.Errorf("combination %d: %w", ordinal, err)
	}
	for t := 0; t < trials; t++ {
		if t%poll == 0 && stop != nil && stop() {
			w.Discard()
			return ErrCancelled
		}
		total := 0.0
		for slot := 0; slot < parser.SlotCount; slot++ {
			total += sampleSlot(rng, pops[slot], combo[slot])
		}
		if err := w.Append(total); err != nil {
			w.Discard()
			return fmt.Errorf("combination %d: %w", ordinal, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("combination %d: %w", ordinal, err)
	}
	return nil
}

// sampleSlot draws with replacement from one slot's population, weight times
// over: floor(weight) full draws summed, plus the fractional remainder
// scaling one extra draw.
func sampleSlot(rng *rand.Rand, pop []float64, weight float64) float64 {
	if weight <= 0 || len(pop) == 0 {
		return 0
	}
	total := 0.0
	whole := int(weight)
	for i := 0; i < whole; i++ {
		total += pop[rng.Intn(len(pop))]
	}
	if frac := weight - math.Floor(weight); frac > fracEps {
		total += frac * pop[rng.Intn(len(pop))]
	}
	return total
}
