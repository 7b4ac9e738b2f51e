// Package render draws analysis results over the source image and encodes
// them for clients.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/shape-features-mcp/internal/contour"
	"github.com/ironsheep/shape-features-mcp/internal/geometry"
	"github.com/ironsheep/shape-features-mcp/internal/imaging"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
)

// Options controls how objects are drawn.
type Options struct {
	Outline    color.RGBA
	Thickness  int
	Label      color.RGBA
	LabelScale int
}

// DefaultOptions draws a 2 px white outline with a red index label.
func DefaultOptions() Options {
	return Options{
		Outline:    color.RGBA{255, 255, 255, 255},
		Thickness:  2,
		Label:      color.RGBA{255, 0, 0, 255},
		LabelScale: 2,
	}
}

// ParseColor parses "#rrggbb" or "rrggbb" into an opaque colour.
func ParseColor(hex string) (color.RGBA, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// canvas returns an RGBA copy of src whose bounds start at the origin.
func canvas(src image.Image) *image.RGBA {
	dst := clone.AsRGBA(src)
	dst.Rect = dst.Rect.Sub(dst.Rect.Min)
	return dst
}

// Annotate outlines every record and writes its index above the centroid.
func Annotate(src image.Image, records []shape.ObjectRecord, opts Options) *image.RGBA {
	dst := canvas(src)
	for _, rec := range records {
		contour.Stroke(dst, rec.Contour, opts.Outline, opts.Thickness)
	}
	for _, rec := range records {
		DrawText(dst, rec.Centroid.X, rec.Centroid.Y-16, strconv.Itoa(rec.Index), opts.LabelScale, opts.Label)
	}
	return dst
}

// PairColors returns n evenly spaced, fully saturated hues.
func PairColors(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		r, g, b := colorful.Hsv(360*float64(i)/float64(n), 1, 1).RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// Distances marks each object's centroid and joins every measured pair
// with a line.
func Distances(src image.Image, res *geometry.DistanceResult) *image.RGBA {
	dst := canvas(src)
	byIndex := make(map[int]image.Point, len(res.Objects))
	for _, o := range res.Objects {
		byIndex[o.Index] = o.Centroid
	}

	colors := PairColors(len(res.Pairs))
	for i, p := range res.Pairs {
		line := contour.Contour{byIndex[p.A], byIndex[p.B]}
		contour.Stroke(dst, line, colors[i], 2)
	}

	marker := color.RGBA{0, 255, 0, 255}
	label := color.RGBA{255, 255, 0, 255}
	for _, o := range res.Objects {
		FillCircle(dst, o.Centroid, 8, marker)
		DrawText(dst, o.Centroid.X+10, o.Centroid.Y-10, strconv.Itoa(o.Index), 2, label)
	}
	return dst
}

// Panel is one named, encoded view of a pipeline run.
type Panel struct {
	Name string `json:"name"`
	*imaging.EncodedImage
}

// Panels encodes the grayscale input, the cleaned mask and the annotated
// result.
func Panels(src image.Image, res *shape.Result, opts Options) ([]Panel, error) {
	views := []struct {
		name string
		img  image.Image
	}{
		{"grayscale", res.Gray},
		{"mask", res.Filled},
		{"annotated", Annotate(src, res.Records, opts)},
	}

	panels := make([]Panel, 0, len(views))
	for _, v := range views {
		enc, err := imaging.EncodePNG(v.img)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s panel: %w", v.name, err)
		}
		panels = append(panels, Panel{Name: v.name, EncodedImage: enc})
	}
	return panels, nil
}

// CropObject returns the bounding box of rec, grown by pad pixels on each
// side and clipped to the image, optionally scaled.
func CropObject(src image.Image, rec shape.ObjectRecord, pad int, scale float64) (*imaging.EncodedImage, error) {
	if len(rec.Contour) == 0 {
		return nil, fmt.Errorf("object %d has no contour", rec.Index)
	}
	b := src.Bounds()
	r := rec.Contour.Bounds().Inset(-max(0, pad)).Add(b.Min).Intersect(b)
	return imaging.Crop(src, r, scale)
}
