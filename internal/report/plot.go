package report

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ironsheep/shape-features-mcp/internal/shape"
)

// Plot size.
const (
	PlotWidth  = 6 * vg.Inch
	PlotHeight = 5 * vg.Inch
)

var labelColors = map[shape.Label]color.RGBA{
	shape.Round:     {R: 30, G: 144, B: 255, A: 255},
	shape.Elongated: {R: 220, G: 20, B: 60, A: 255},
	shape.Other:     {R: 128, G: 128, B: 128, A: 255},
}

// FeaturePlot scatters each object's metric against its eccentricity,
// one series per label, with the classification thresholds drawn as
// dashed lines.
func FeaturePlot(records []shape.ObjectRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Shape features"
	p.X.Label.Text = "Metric (4πA/P²)"
	p.Y.Label.Text = "Eccentricity"

	for _, label := range []shape.Label{shape.Round, shape.Elongated, shape.Other} {
		var pts plotter.XYs
		for _, r := range records {
			if r.Label == label {
				pts = append(pts, plotter.XY{X: r.Metric, Y: r.Eccentricity})
			}
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s series: %w", label, err)
		}
		s.GlyphStyle.Color = labelColors[label]
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(string(label), s)
	}

	metricLine, err := thresholdLine(
		plotter.XY{X: shape.RoundMetricThreshold, Y: 0},
		plotter.XY{X: shape.RoundMetricThreshold, Y: 1},
	)
	if err != nil {
		return nil, err
	}
	eccLine, err := thresholdLine(
		plotter.XY{X: 0, Y: shape.ElongatedEccentricityThreshold},
		plotter.XY{X: 1.2, Y: shape.ElongatedEccentricityThreshold},
	)
	if err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid(), metricLine, eccLine)

	p.X.Min, p.X.Max = 0, 1.2
	p.Y.Min, p.Y.Max = 0, 1.05
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10
	return p, nil
}

func thresholdLine(a, b plotter.XY) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{a, b})
	if err != nil {
		return nil, fmt.Errorf("failed to create threshold line: %w", err)
	}
	l.Color = color.Black
	l.Width = vg.Points(1)
	l.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	return l, nil
}

// SaveFeaturePlot writes the feature plot to path. The format follows the
// file extension.
func SaveFeaturePlot(records []shape.ObjectRecord, path string) error {
	p, err := FeaturePlot(records)
	if err != nil {
		return err
	}
	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// FeaturePlotImage rasterises the feature plot.
func FeaturePlotImage(records []shape.ObjectRecord) (image.Image, error) {
	p, err := FeaturePlot(records)
	if err != nil {
		return nil, err
	}
	c := vgimg.New(PlotWidth, PlotHeight)
	p.Draw(draw.New(c))
	return c.Image(), nil
}
