package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveMassPNG writes the invariant-mass spectrum as a PNG histogram.
// A vertical reference line is drawn at refMass when it is positive.
func SaveMassPNG(path string, masses []float64, bins int, refMass float64) error {
	if len(masses) == 0 {
		return fmt.Errorf("no masses to plot")
	}
	if bins < 1 {
		return fmt.Errorf("histogram needs a positive bin count, got %d", bins)
	}

	p := plot.New()
	p.Title.Text = "Invariant mass"
	p.X.Label.Text = "m (GeV/c^2)"
	p.Y.Label.Text = "candidates"

	h, err := plotter.NewHist(plotter.Values(masses), bins)
	if err != nil {
		return fmt.Errorf("mass histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 255}
	p.Add(h)

	if refMass > 0 {
		_, _, _, ymax := h.DataRange()
		ref, err := plotter.NewLine(plotter.XYs{{X: refMass, Y: 0}, {X: refMass, Y: ymax}})
		if err != nil {
			return fmt.Errorf("reference line: %w", err)
		}
		ref.Color = color.RGBA{R: 0xff, G: 0x52, B: 0x52, A: 255}
		ref.Width = vg.Points(1)
		p.Add(ref)
		p.Legend.Add(fmt.Sprintf("m = %.4f", refMass), ref)
		p.Legend.Top = true
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save mass plot: %w", err)
	}
	return nil
}
