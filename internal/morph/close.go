package morph

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// DefaultCloseRadius is the disk radius used for closing.
const DefaultCloseRadius = 2

// Element is a flat structuring element centred on the origin.
type Element struct {
	Radius  int
	Offsets []image.Point
}

// DiskElement returns the elliptical structuring element of size
// (2*radius+1) x (2*radius+1).
//
// Row spans follow the usual discretisation of a filled ellipse: for row dy
// the half-width is round(r*sqrt(1-dy²/r²)) with halves rounded to even.
// For radius 2 that is a 5x5 element with single-pixel top and bottom rows.
func DiskElement(radius int) Element {
	if radius <= 0 {
		return Element{Offsets: []image.Point{{}}}
	}

	r := float64(radius)
	inv := 1 / (r * r)
	var offsets []image.Point
	for dy := -radius; dy <= radius; dy++ {
		fdy := float64(dy)
		half := int(math.RoundToEven(r * math.Sqrt(math.Max(0, (r*r-fdy*fdy)*inv))))
		for dx := -half; dx <= half; dx++ {
			offsets = append(offsets, image.Point{X: dx, Y: dy})
		}
	}
	return Element{Radius: radius, Offsets: offsets}
}

// Mask renders the element as a binary raster, mostly for inspection.
func (e Element) Mask() *image.Gray {
	size := 2*e.Radius + 1
	m := image.NewGray(image.Rect(0, 0, size, size))
	for _, o := range e.Offsets {
		m.Pix[m.PixOffset(o.X+e.Radius, o.Y+e.Radius)] = Foreground
	}
	return m
}

// Dilate sets a pixel when any in-bounds pixel under the element is
// foreground.
func Dilate(bin *image.Gray, e Element) (*image.Gray, error) {
	if err := checkBinary(bin); err != nil {
		return nil, err
	}
	return apply(bin, e, false), nil
}

// Erode keeps a pixel only when every pixel under the element is
// foreground. Pixels beyond the raster edge count as foreground, so an
// object touching the border is not eaten from that side.
func Erode(bin *image.Gray, e Element) (*image.Gray, error) {
	if err := checkBinary(bin); err != nil {
		return nil, err
	}
	return apply(bin, e, true), nil
}

// Close performs a dilation followed by an erosion with a disk element of the
// given radius. The result always contains the input foreground. A radius of
// zero or less returns a normalised copy.
func Close(bin *image.Gray, radius int) (*image.Gray, error) {
	if err := checkBinary(bin); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return Normalize(bin), nil
	}

	e := DiskElement(radius)
	return apply(apply(bin, e, false), e, true), nil
}

func apply(src *image.Gray, e Element, erode bool) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)

	at := func(x, y int) (bool, bool) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false, false
		}
		return src.Pix[y*src.Stride+x] != 0, true
	}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+w]
			for x := 0; x < w; x++ {
				hit := erode
				for _, o := range e.Offsets {
					fg, in := at(x+o.X, y+o.Y)
					if !in {
						continue
					}
					if erode && !fg {
						hit = false
						break
					}
					if !erode && fg {
						hit = true
						break
					}
				}
				if hit {
					row[x] = Foreground
				}
			}
		}
	})
	return out
}
