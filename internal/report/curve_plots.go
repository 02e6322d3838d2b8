// Package report renders the simulated voltage distributions as plots and
// assembles the final PDF summary.
package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/led_mixbin_go/internal/analysis"
	"github.com/user/led_mixbin_go/internal/result"
)

// curveBins is the histogram resolution used to trace a distribution curve.
const curveBins = 50

// CreateVoltageCurvePlot renders one combination's sampled voltage totals as
// a smoothed frequency curve with the highest-density interval and median
// marked. The returned bytes are a PNG image.
func CreateVoltageCurvePlot(samples []float64, r result.Range, ordinal int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to plot for combination %d", ordinal)
	}

	p := plot.New()
	summary := analysis.Summarize(samples)
	p.Title.Text = fmt.Sprintf("Combination %d Voltage Distribution (mean %.3f V, sd %.3f V)",
		ordinal, summary.Mean, summary.StdDev)
	p.X.Label.Text = "Total Voltage (V)"
	p.Y.Label.Text = "Frequency"
	p.Add(plotter.NewGrid())

	centers, counts := histogram(samples, curveBins)
	pts := make(plotter.XYs, len(centers))
	for i := range centers {
		pts[i] = plotter.XY{X: centers[i], Y: counts[i]}
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create distribution curve: %v", err)
	}
	curve.Color = color.RGBA{B: 255, A: 255}
	curve.LineStyle.Width = vg.Points(1.5)
	p.Add(curve)
	p.Legend.Add("Sampled Distribution", curve)

	yMax := 0.0
	for _, c := range counts {
		if c > yMax {
			yMax = c
		}
	}

	markers := []struct {
		label string
		x     float64
		col   color.Color
	}{
		{fmt.Sprintf("HDI Min %.3f V", r.Min), r.Min, color.RGBA{R: 255, A: 255}},
		{fmt.Sprintf("Median %.3f V", r.Median), r.Median, color.RGBA{G: 128, A: 255}},
		{fmt.Sprintf("HDI Max %.3f V", r.Max), r.Max, color.RGBA{R: 255, A: 255}},
	}
	for _, m := range markers {
		line, err := plotter.NewLine(plotter.XYs{{X: m.x, Y: 0}, {X: m.x, Y: yMax}})
		if err != nil {
			return nil, fmt.Errorf("failed to create marker line: %v", err)
		}
		line.Color = m.col
		line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(line)
		p.Legend.Add(m.label, line)
	}

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)

	writer, err := p.WriterTo(vg.Points(800), vg.Points(400), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}

// histogram bins the samples into equal-width buckets and returns the bucket
// centers alongside the counts. Degenerate (single-valued) samples collapse
// to one bucket.
func histogram(samples []float64, bins int) (centers, counts []float64) {
	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return []float64{lo}, []float64{float64(len(samples))}
	}

	width := (hi - lo) / float64(bins)
	counts = make([]float64, bins)
	for _, v := range samples {
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	centers = make([]float64, bins)
	for i := range centers {
		centers[i] = lo + (float64(i)+0.5)*width
	}
	return centers, counts
}
