package uwimg

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const histogramBins = 32

// PlotSpeedHistogram writes a histogram of per-sample speeds in v to a PNG.
func PlotSpeedHistogram(v *Image, outputPath string) error {
	if v.Empty() || v.C < 2 {
		return fmt.Errorf("plot speeds of %v: %w", v, ErrChannelCount)
	}
	speeds := make(plotter.Values, 0, v.W*v.H)
	vx, vy := v.Channel(0), v.Channel(1)
	for i := range vx {
		speeds = append(speeds, math.Hypot(float64(vx[i]), float64(vy[i])))
	}

	p := plot.New()
	p.Title.Text = "Flow speed distribution"
	p.X.Label.Text = "speed (px/frame)"
	p.Y.Label.Text = "samples"

	h, err := plotter.NewHist(speeds, histogramBins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}

// PlotVelocityScatter writes a vx/vy scatter plot of v to a PNG, with the
// mean velocity highlighted.
func PlotVelocityScatter(v *Image, outputPath string) error {
	if v.Empty() || v.C < 2 {
		return fmt.Errorf("plot velocities of %v: %w", v, ErrChannelCount)
	}
	vx, vy := v.Channel(0), v.Channel(1)
	pts := make(plotter.XYs, len(vx))
	var mx, my float64
	for i := range vx {
		pts[i].X = float64(vx[i])
		pts[i].Y = float64(vy[i])
		mx += pts[i].X
		my += pts[i].Y
	}
	mx /= float64(len(vx))
	my /= float64(len(vx))

	p := plot.New()
	p.Title.Text = "Velocity samples"
	p.X.Label.Text = "vx (px/frame)"
	p.Y.Label.Text = "vy (px/frame)"
	p.Add(plotter.NewGrid())

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s)

	mean, err := plotter.NewScatter(plotter.XYs{{X: mx, Y: my}})
	if err != nil {
		return fmt.Errorf("build mean marker: %w", err)
	}
	mean.GlyphStyle.Shape = draw.CrossGlyph{}
	mean.GlyphStyle.Radius = vg.Points(6)
	p.Add(mean)
	p.Legend.Add("samples", s)
	p.Legend.Add("mean", mean)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("save scatter: %w", err)
	}
	return nil
}
