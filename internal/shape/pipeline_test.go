package shape

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-features-mcp/internal/morph"
)

func newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(DefaultConfig(), opts...)
	require.NoError(t, err)
	return p
}

// diskWithSpeck draws a radius 40 disk centred at (100,100) and a five
// pixel plus-shaped speck.
func diskWithSpeck() *image.Gray {
	m := newMask(200, 200)
	fillDisk(m, 100, 100, 40, 255)
	for _, p := range []image.Point{{X: 20, Y: 20}, {X: 19, Y: 20}, {X: 21, Y: 20}, {X: 20, Y: 19}, {X: 20, Y: 21}} {
		m.Pix[m.PixOffset(p.X, p.Y)] = 255
	}
	return m
}

func TestPipeline_DiskAndSpeck(t *testing.T) {
	var logs bytes.Buffer
	p := newPipeline(t, WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)))

	res, err := p.Run(context.Background(), diskWithSpeck())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, 1, rec.Index)
	assert.Equal(t, Round, rec.Label)
	assert.InDelta(t, 100, rec.Centroid.X, 1)
	assert.InDelta(t, 100, rec.Centroid.Y, 1)
	assert.GreaterOrEqual(t, rec.Area, float64(p.Config().MinArea))
	assert.False(t, rec.Degraded)
	assert.NotEmpty(t, rec.Contour)

	assert.NotEmpty(t, res.RunID)
	assert.Contains(t, logs.String(), res.RunID)
	assert.Contains(t, logs.String(), "pipeline finished")

	for name, img := range map[string]*image.Gray{
		"gray": res.Gray, "binary": res.Binary, "filtered": res.Filtered,
		"closed": res.Closed, "filled": res.Filled, "mask": res.Mask,
	} {
		require.NotNil(t, img, name)
		assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds(), name)
	}
	assert.Equal(t, morph.Background, res.Filtered.GrayAt(20, 20).Y, "speck must be filtered")
}

func TestPipeline_AnnulusKeepsFullArea(t *testing.T) {
	solid := newMask(200, 200)
	fillDisk(solid, 100, 100, 40, 255)
	annulus := newMask(200, 200)
	fillDisk(annulus, 100, 100, 40, 255)
	fillDisk(annulus, 100, 100, 15, 0)

	p := newPipeline(t)
	want, err := p.Run(context.Background(), solid)
	require.NoError(t, err)
	got, err := p.Run(context.Background(), annulus)
	require.NoError(t, err)

	require.Len(t, got.Records, 1)
	require.Len(t, want.Records, 1)
	assert.InDelta(t, want.Records[0].Area, got.Records[0].Area, 1e-9)
	assert.Equal(t, want.Records[0].Centroid, got.Records[0].Centroid)
	assert.Equal(t, morph.Foreground, got.Filled.GrayAt(100, 100).Y)
}

func TestPipeline_DiscoveryOrderAndLabels(t *testing.T) {
	m := newMask(300, 120)
	// Elongated ellipse first in raster order, then a disk lower down.
	for y := 0; y < 120; y++ {
		for x := 0; x < 300; x++ {
			u := float64(x-200) / 60
			v := float64(y-20) / 6
			if u*u+v*v <= 1 {
				m.Pix[m.PixOffset(x, y)] = 255
			}
		}
	}
	fillDisk(m, 60, 70, 30, 255)

	res, err := newPipeline(t).Run(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	assert.Equal(t, 1, res.Records[0].Index)
	assert.Equal(t, Elongated, res.Records[0].Label)
	assert.Equal(t, 2, res.Records[1].Index)
	assert.Equal(t, Round, res.Records[1].Label)
}

func TestPipeline_SkippedContourKeepsItsIndex(t *testing.T) {
	m := newMask(300, 100)
	// Top rows at y = 10, 20 and 30 fix the discovery order. The solid
	// rectangle traces to four corner points and is skipped.
	fillDisk(m, 40, 30, 20, 255)
	fillRect(m, 120, 20, 159, 39, 255)
	fillDisk(m, 240, 50, 20, 255)

	res, err := newPipeline(t).Run(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Skipped)

	assert.Equal(t, 1, res.Records[0].Index)
	assert.InDelta(t, 40, res.Records[0].Centroid.X, 1)
	assert.Equal(t, 3, res.Records[1].Index)
	assert.InDelta(t, 240, res.Records[1].Centroid.X, 1)

	rec, ok := res.Record(3)
	require.True(t, ok)
	assert.Equal(t, res.Records[1].Centroid, rec.Centroid)
	_, ok = res.Record(2)
	assert.False(t, ok)
}

func TestPipeline_SurvivorsMeetMinArea(t *testing.T) {
	m := newMask(120, 120)
	sizes := []int{2, 3, 4, 5, 8}
	for i, r := range sizes {
		fillDisk(m, 12+i*22, 60, r, 255)
	}

	for _, minArea := range []int{0, 30, 60, 150} {
		cfg := DefaultConfig()
		cfg.MinArea = minArea
		p, err := New(cfg)
		require.NoError(t, err)

		res, err := p.Run(context.Background(), m)
		require.NoError(t, err)
		for _, rec := range res.Records {
			assert.GreaterOrEqual(t, rec.Area, float64(minArea), "min area %d", minArea)
		}
	}
}

func TestPipeline_ColorInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			c := color.RGBA{20, 20, 20, 255}
			dx, dy := x-60, y-60
			if dx*dx+dy*dy <= 30*30 {
				c = color.RGBA{240, 200, 40, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	res, err := newPipeline(t).Run(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, Round, res.Records[0].Label)
}

func TestPipeline_EmptyResult(t *testing.T) {
	res, err := newPipeline(t).Run(context.Background(), newMask(50, 50))
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Zero(t, morph.CountForeground(res.Mask))
}

func TestPipeline_LoadErrors(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	t.Run("nil image", func(t *testing.T) {
		res, err := p.Run(ctx, nil)
		assert.Nil(t, res)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, err, ErrEmptyImage)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.png")
		res, err := p.RunFile(ctx, path)
		assert.Nil(t, res)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, path, le.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "corrupt.png")
		require.NoError(t, os.WriteFile(path, []byte("definitely not a png"), 0o644))
		res, err := p.RunFile(ctx, path)
		assert.Nil(t, res)
		var le *LoadError
		assert.ErrorAs(t, err, &le)
	})

	t.Run("zero size image from loader", func(t *testing.T) {
		empty := LoaderFunc(func(string) (image.Image, error) {
			return image.NewGray(image.Rect(0, 0, 0, 0)), nil
		})
		res, err := newPipeline(t, WithLoader(empty)).RunFile(ctx, "blank.png")
		assert.Nil(t, res)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "blank.png", le.Path)
	})
}

func TestPipeline_RunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, diskWithSpeck()))
	require.NoError(t, f.Close())

	res, err := newPipeline(t).RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, Round, res.Records[0].Label)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newPipeline(t).Run(ctx, diskWithSpeck())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative min area", Config{MinArea: -1, CloseRadius: 2, Workers: 1}},
		{"negative radius", Config{MinArea: 30, CloseRadius: -1, Workers: 1}},
		{"no workers", Config{MinArea: 30, CloseRadius: 2, Workers: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoadError(t *testing.T) {
	inner := errors.New("boom")
	err := &LoadError{Path: "a.png", Err: inner}
	assert.Equal(t, "failed to load image a.png: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "failed to load image: boom", (&LoadError{Err: inner}).Error())
}
