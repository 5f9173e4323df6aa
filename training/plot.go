package training

import (
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotPredictions draws predicted against actual prices for the held-out
// split with the y = x reference line. The format follows the extension of
// path (.png or .svg).
func PlotPredictions(yTrue, yPred mat.Vector, path string) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewModelError("PlotPredictions", "empty data", errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return errors.NewDimensionError("PlotPredictions", n, yPred.Len(), 0)
	}

	actual := mat.Col(nil, 0, yTrue)
	predicted := mat.Col(nil, 0, yPred)
	pts := make(plotter.XYs, n)
	for i := range pts {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
	}
	// 両軸を同じ範囲にして y = x が対角線になるようにする
	lo := math.Min(floats.Min(actual), floats.Min(predicted))
	hi := math.Max(floats.Max(actual), floats.Max(predicted))

	p := plot.New()
	p.Title.Text = "Predicted vs actual price (test split)"
	p.X.Label.Text = "actual (lakhs)"
	p.Y.Label.Text = "predicted (lakhs)"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "failed to build scatter")
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 160}
	p.Add(scatter)

	ideal := plotter.NewFunction(func(x float64) float64 { return x })
	ideal.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	ideal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(ideal)
	p.Legend.Add("listings", scatter)
	p.Legend.Add("y = x", ideal)
	p.Legend.Top = true
	p.Legend.Left = true

	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create plot dir %s", dir)
		}
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot %s", path)
	}
	return nil
}
