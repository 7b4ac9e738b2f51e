package report

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-features-mcp/internal/colorseg"
	"github.com/ironsheep/shape-features-mcp/internal/geometry"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
	"github.com/ironsheep/shape-features-mcp/internal/texture"
)

func sampleRecords() []shape.ObjectRecord {
	return []shape.ObjectRecord{
		{
			Index: 1,
			Label: shape.Round,
			Measurement: shape.Measurement{
				Area: 7845.5, Perimeter: 331.126, Metric: 0.89912, Eccentricity: 0.05,
				Centroid: image.Pt(60, 60),
			},
		},
		{
			Index: 2,
			Label: shape.Elongated,
			Measurement: shape.Measurement{
				Area: 12, Perimeter: 40, Metric: 0.094, Eccentricity: 1,
				Degraded: true, DegradedReason: "ellipse fit failed",
			},
		},
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteShapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteShapes(&buf, "coins.png", sampleRecords()))

	out := buf.String()
	for _, want := range []string{
		"SHAPE FEATURES FOR 'coins.png' (2 OBJECTS)",
		"Object 1: (Round)",
		"Area:         7845.50 px",
		"Perimeter:    331.13 px",
		"Eccentricity: 0.0500",
		"Metric:       0.8991",
		"Centroid:     (60, 60)",
		"Object 2: (Elongated)",
		"Note:         ellipse fit failed",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, "Note:"))
}

func TestWriteShapes_WriteError(t *testing.T) {
	err := WriteShapes(failingWriter{}, "x", sampleRecords())
	assert.EqualError(t, err, "disk full")
}

func TestWriteDistances(t *testing.T) {
	res := &geometry.DistanceResult{
		Threshold: 150,
		Objects: []geometry.Object{
			{Index: 1, Centroid: image.Pt(0, 0), Area: 400},
			{Index: 2, Centroid: image.Pt(3, 4), Area: 410},
		},
		Pairs: []geometry.PairDistance{{A: 1, B: 2, Pixels: 5, Millimetres: 5 / 1.4798}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDistances(&buf, "phantom.png", res))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		heavyRule,
		"GEOMETRIC DISTANCES FOR 'phantom.png'",
		heavyRule,
		"Threshold: 150",
		"Object 1: centroid (0, 0), area 400.00 px",
		"Object 2: centroid (3, 4), area 410.00 px",
		lightRule,
		"1. Objects 1 and 2",
		"   Pixels:      5.0000",
		"   Millimetres: 3.3788",
		lightRule,
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("WriteDistances mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTexture(t *testing.T) {
	res := &texture.Result{
		MeanIntensity: 127.5,
		Averages: []texture.DistanceProperties{
			{Distance: 1, Properties: texture.Properties{Contrast: 1.5, Correlation: 0.9, Energy: 0.1, Homogeneity: 0.6}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTexture(&buf, "bark.png", res))
	assert.Contains(t, buf.String(), "Mean intensity: 127.5000")
	assert.Contains(t, buf.String(), "1              1.5000       0.9000       0.1000       0.6000")
}

func TestWriteColor(t *testing.T) {
	res := &colorseg.Result{Matched: 25, Total: 200, Fraction: 0.125, Config: colorseg.DefaultConfig()}

	var buf bytes.Buffer
	require.NoError(t, WriteColor(&buf, "jelly.jpg", res))
	assert.Contains(t, buf.String(), "Hue band: 154..174")
	assert.Contains(t, buf.String(), "Matched:  25 of 200 pixels (12.50%)")
}

func TestFeaturePlot(t *testing.T) {
	p, err := FeaturePlot(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, "Shape features", p.Title.Text)
	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 1.2, p.X.Max)

	_, err = FeaturePlot(nil)
	assert.NoError(t, err)
}

func TestFeaturePlotImage(t *testing.T) {
	img, err := FeaturePlotImage(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 576, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestSaveFeaturePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.png")
	require.NoError(t, SaveFeaturePlot(sampleRecords(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.DecodeConfig(f)
	assert.NoError(t, err)
}
