package geometry

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phantom(centres []image.Point, r int, level uint8) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, 200, 160))
	for _, c := range centres {
		for y := c.Y - r; y <= c.Y+r; y++ {
			for x := c.X - r; x <= c.X+r; x++ {
				dx, dy := x-c.X, y-c.Y
				if dx*dx+dy*dy <= r*r {
					m.Pix[m.PixOffset(x, y)] = level
				}
			}
		}
	}
	return m
}

func TestMeasureDistances(t *testing.T) {
	// Listed out of reading order on purpose.
	centres := []image.Point{{X: 150, Y: 110}, {X: 40, Y: 30}, {X: 40, Y: 110}, {X: 150, Y: 30}}
	res, err := MeasureDistances(phantom(centres, 12, 200), DefaultConfig())
	require.NoError(t, err)

	want := []image.Point{{X: 40, Y: 30}, {X: 150, Y: 30}, {X: 40, Y: 110}, {X: 150, Y: 110}}
	require.Len(t, res.Objects, 4)
	for i, o := range res.Objects {
		assert.Equal(t, i+1, o.Index)
		assert.Equal(t, want[i], o.Centroid)
	}

	require.Len(t, res.Pairs, 6)
	pairs := [][2]int{{1, 2}, {1, 3}, {1, 4}, {2, 3}, {2, 4}, {3, 4}}
	for i, p := range res.Pairs {
		assert.Equal(t, pairs[i], [2]int{p.A, p.B})
		assert.InDelta(t, p.Pixels/1.4798, p.Millimetres, 1e-12)
	}
	assert.InDelta(t, 110.0, res.Pairs[0].Pixels, 1e-9)
	assert.InDelta(t, 80.0, res.Pairs[1].Pixels, 1e-9)
	assert.InDelta(t, math.Hypot(110, 80), res.Pairs[2].Pixels, 1e-9)
}

func TestMeasureDistances_ThresholdAndArea(t *testing.T) {
	centres := []image.Point{{X: 40, Y: 30}, {X: 150, Y: 30}, {X: 40, Y: 110}, {X: 150, Y: 110}}

	t.Run("objects at the threshold are background", func(t *testing.T) {
		_, err := MeasureDistances(phantom(centres, 12, 150), DefaultConfig())
		assert.ErrorIs(t, err, ErrTooFewObjects)
	})

	t.Run("small objects are ignored", func(t *testing.T) {
		_, err := MeasureDistances(phantom(centres, 4, 255), DefaultConfig())
		assert.ErrorIs(t, err, ErrTooFewObjects)
	})

	t.Run("extra objects beyond count are dropped", func(t *testing.T) {
		more := append([]image.Point{{X: 100, Y: 140}}, centres...)
		res, err := MeasureDistances(phantom(more, 10, 255), DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, 5, res.Found)
		assert.Len(t, res.Objects, 4)
		assert.Equal(t, image.Pt(40, 30), res.Objects[0].Centroid)
	})
}

func TestMeasureDistances_InvalidInput(t *testing.T) {
	_, err := MeasureDistances(nil, DefaultConfig())
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Resolution = 0
	_, err = MeasureDistances(phantom(nil, 1, 255), cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Count = 1
	_, err = MeasureDistances(phantom(nil, 1, 255), cfg)
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(image.Pt(0, 0), image.Pt(3, 4)))
	assert.Equal(t, 0.0, Distance(image.Pt(7, 7), image.Pt(7, 7)))
}
