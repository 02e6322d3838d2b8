// Package scaling applies the deterministic multiplicative adjustments to
// bin populations: the If/Vf interpolation multiplier and the thermal-loss
// factor.
package scaling

import (
	"sort"

	"github.com/user/led_mixbin_go/internal/parser"
)

// LinearInterpolate evaluates the piecewise-linear curve through the given
// points at x. The points are sorted by x first. Targets below the data
// range clamp to the first y, targets above clamp to the last y, and an
// exact knot returns that knot's y.
func LinearInterpolate(xs, ys []float64, x float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	type point struct{ x, y float64 }
	pts := make([]point, len(xs))
	for i := range xs {
		pts[i] = point{xs[i], ys[i]}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	if x <= pts[0].x {
		return pts[0].y
	}
	last := pts[len(pts)-1]
	if x >= last.x {
		return last.y
	}
	for i := 0; i < len(pts)-1; i++ {
		if pts[i].x <= x && x <= pts[i+1].x {
			x1, x2 := pts[i].x, pts[i+1].x
			y1, y2 := pts[i].y, pts[i+1].y
			return y1 + (y2-y1)*(x-x1)/(x2-x1)
		}
	}
	return 0
}

// VoltageMultipliers derives each channel's voltage-scale multiplier from its
// If/Vf curve: Vf(usage current) / Vf(test current). A channel with no
// usable curve data gets multiplier 0 — it contributes nothing downstream —
// as does one whose test-current voltage interpolates to 0.
func VoltageMultipliers(curves [parser.NumChannels]parser.IVCurve, usage, test [parser.NumChannels]float64) [parser.NumChannels]float64 {
	var mult [parser.NumChannels]float64
	for ch := 0; ch < parser.NumChannels; ch++ {
		if curves[ch].Empty() {
			continue
		}
		yUsage := LinearInterpolate(curves[ch].If, curves[ch].Vf, usage[ch])
		yTest := LinearInterpolate(curves[ch].If, curves[ch].Vf, test[ch])
		if yTest != 0 {
			mult[ch] = yUsage / yTest
		}
	}
	return mult
}

// ScalePopulation multiplies every observation by factor. An empty input
// degrades to the neutral population {0} so downstream stages always have
// something to draw from.
func ScalePopulation(values []float64, factor float64) []float64 {
	if len(values) == 0 {
		return []float64{0}
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

// AdjustPopulations runs the full adjustment chain over the 20 channel-bin
// populations: each channel's voltage multiplier, then its thermal factor.
// Missing bins arrive as empty slices and leave as {0}.
func AdjustPopulations(pops [parser.SlotCount][]float64, multipliers, thermal [parser.NumChannels]float64) [parser.SlotCount][]float64 {
	var out [parser.SlotCount][]float64
	for slot := 0; slot < parser.SlotCount; slot++ {
		ch := slot / parser.BinsPerChannel
		scaled := ScalePopulation(pops[slot], multipliers[ch])
		out[slot] = ScalePopulation(scaled, thermal[ch])
	}
	return out
}
