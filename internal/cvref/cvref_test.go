//go:build opencv

package cvref

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-features-mcp/internal/morph"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
)

func scene() *image.Gray {
	m := image.NewGray(image.Rect(0, 0, 240, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 240; x++ {
			dx, dy := x-60, y-80
			u := float64(x-170) / 50
			v := float64(y-80) / 12
			switch {
			case dx*dx+dy*dy <= 40*40 && dx*dx+dy*dy > 10*10:
				m.Pix[m.PixOffset(x, y)] = 220
			case u*u+v*v <= 1:
				m.Pix[m.PixOffset(x, y)] = 200
			case x%37 == 0 && y%29 == 0:
				m.Pix[m.PixOffset(x, y)] = 255
			default:
				m.Pix[m.PixOffset(x, y)] = 30
			}
		}
	}
	return m
}

func TestStagesMatchOpenCV(t *testing.T) {
	gray := scene()

	src, err := toMat(gray)
	require.NoError(t, err)
	defer src.Close()

	cvBin := Binarize(src)
	defer cvBin.Close()
	goBin, _, err := morph.Binarize(gray)
	require.NoError(t, err)
	assert.Equal(t, ToGray(cvBin).Pix, goBin.Pix, "binarize")

	cvFiltered := RemoveSmallObjects(cvBin, morph.DefaultMinArea)
	defer cvFiltered.Close()
	goFiltered, err := morph.RemoveSmallObjects(goBin, morph.DefaultMinArea)
	require.NoError(t, err)
	assert.Equal(t, ToGray(cvFiltered).Pix, goFiltered.Pix, "small object filter")

	cvClosed := Close(cvFiltered, morph.DefaultCloseRadius)
	defer cvClosed.Close()
	goClosed, err := morph.Close(goFiltered, morph.DefaultCloseRadius)
	require.NoError(t, err)
	assert.Equal(t, ToGray(cvClosed).Pix, goClosed.Pix, "closing")

	cvFilled := FillHoles(cvClosed)
	defer cvFilled.Close()
	goFilled, err := morph.FillHoles(goClosed)
	require.NoError(t, err)
	assert.Equal(t, ToGray(cvFilled).Pix, goFilled.Pix, "hole filling")
}

func TestExtractMatchesPipeline(t *testing.T) {
	gray := scene()

	want, _, err := Extract(gray, morph.DefaultMinArea, morph.DefaultCloseRadius)
	require.NoError(t, err)

	p, err := shape.New(shape.DefaultConfig())
	require.NoError(t, err)
	got, err := p.Run(context.Background(), gray)
	require.NoError(t, err)

	require.Len(t, got.Records, len(want))
	for i, rec := range got.Records {
		assert.InDelta(t, want[i].Area, rec.Area, 1e-6, "object %d area", i+1)
		assert.InDelta(t, want[i].Perimeter, rec.Perimeter, 1e-6, "object %d perimeter", i+1)
		assert.InDelta(t, want[i].Metric, rec.Metric, 1e-9, "object %d metric", i+1)
		assert.InDelta(t, want[i].Centroid.X, rec.Centroid.X, 1, "object %d centroid", i+1)
		assert.InDelta(t, want[i].Centroid.Y, rec.Centroid.Y, 1, "object %d centroid", i+1)
	}
}
