package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewPathPlot creates new plot of dynamic coordinate j of two latent paths:
// truth:  simulated dynamic state
// sample: sampled or posterior mean dynamic state
// Column t of either matrix holds the dynamic state at time t.
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * either of the supplied data matrices is nil
// * the supplied data matrices have different dimensions
// * j is not a valid row of the supplied data matrices
// * gonum plot fails to be created
func NewPathPlot(j int, truth, sample mat.Matrix) (*plot.Plot, error) {
	if truth == nil || sample == nil {
		return nil, fmt.Errorf("invalid data supplied")
	}

	rt, ct := truth.Dims()
	rs, cs := sample.Dims()

	if rt != rs || ct != cs {
		return nil, fmt.Errorf("invalid data dimensions: [%d x %d] != [%d x %d]", rt, ct, rs, cs)
	}

	if j < 0 || j >= rt {
		return nil, fmt.Errorf("invalid coordinate: %d", j)
	}

	p := plot.New()

	p.Title.Text = fmt.Sprintf("Dynamic state %d", j)
	p.X.Label.Text = "t"
	p.Y.Label.Text = "beta"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	// Make a scatter plotter for simulated data
	truthData := makePoints(truth, j)
	truthScatter, err := plotter.NewScatter(truthData)
	if err != nil {
		return nil, err
	}
	truthScatter.GlyphStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
	truthScatter.Shape = draw.PyramidGlyph{}
	truthScatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(truthScatter)
	p.Legend.Add("simulated", truthScatter)

	// Make a line plotter for sampled data
	sampleData := makePoints(sample, j)
	sampleLine, err := plotter.NewLine(sampleData)
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %v", err)
	}
	sampleLine.LineStyle.Color = color.RGBA{R: 169, G: 169, B: 169, A: 255}
	sampleLine.LineStyle.Width = vg.Points(1)

	p.Add(sampleLine)
	p.Legend.Add("sampled", sampleLine)

	return p, nil
}

func makePoints(m mat.Matrix, j int) plotter.XYs {
	_, c := m.Dims()
	pts := make(plotter.XYs, c)
	for t := 0; t < c; t++ {
		pts[t].X = float64(t)
		pts[t].Y = m.At(j, t)
	}

	return pts
}
