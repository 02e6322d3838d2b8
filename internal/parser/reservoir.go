package parser

import "math/rand"

// RowCollector accumulates observation rows under a memory bound. While the
// running scalar total stays at or below the cap, rows are buffered verbatim
// and grouping is preserved. The first time the total crosses the cap, the
// buffered rows are flattened, an unweighted simple random sample of exactly
// cap elements seeds a reservoir, and every later scalar replaces a uniformly
// random slot with probability cap/i (standard reservoir sampling). Once in
// reservoir mode the row grouping is abandoned.
type RowCollector struct {
	cap       int
	rng       *rand.Rand
	rows      [][]float64
	reservoir []float64
	total     int
	sampling  bool
}

// NewRowCollector returns a collector bounded to cap scalars. rng may be nil,
// in which case the shared global source is used.
func NewRowCollector(cap int, rng *rand.Rand) *RowCollector {
	return &RowCollector{cap: cap, rng: rng}
}

func (c *RowCollector) intn(n int) int {
	if c.rng != nil {
		return c.rng.Intn(n)
	}
	return rand.Intn(n)
}

func (c *RowCollector) perm(n int) []int {
	if c.rng != nil {
		return c.rng.Perm(n)
	}
	return rand.Perm(n)
}

// Add feeds one observation row into the collector.
func (c *RowCollector) Add(row []float64) {
	if len(row) == 0 {
		return
	}
	if c.sampling {
		for _, v := range row {
			c.total++
			if j := c.intn(c.total); j < c.cap {
				c.reservoir[j] = v
			}
		}
		return
	}

	buf := make([]float64, len(row))
	copy(buf, row)
	c.rows = append(c.rows, buf)
	c.total += len(row)
	if c.total > c.cap {
		c.seedReservoir()
	}
}

// seedReservoir flattens the buffered rows and draws cap of them without
// replacement as the initial reservoir.
func (c *RowCollector) seedReservoir() {
	flat := make([]float64, 0, c.total)
	for _, r := range c.rows {
		flat = append(flat, r...)
	}
	perm := c.perm(len(flat))
	c.reservoir = make([]float64, c.cap)
	for i := 0; i < c.cap; i++ {
		c.reservoir[i] = flat[perm[i]]
	}
	c.rows = nil
	c.sampling = true
}

// Total reports how many scalar observations have been fed in.
func (c *RowCollector) Total() int { return c.total }

// Sampled reports whether the collector switched to reservoir mode.
func (c *RowCollector) Sampled() bool { return c.sampling }

// Rows returns the collected data: the original row grouping if the cap was
// never crossed, otherwise exactly cap single-scalar rows.
func (c *RowCollector) Rows() [][]float64 {
	if !c.sampling {
		return c.rows
	}
	out := make([][]float64, len(c.reservoir))
	for i, v := range c.reservoir {
		out[i] = []float64{v}
	}
	return out
}
