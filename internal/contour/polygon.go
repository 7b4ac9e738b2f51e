package contour

import (
	"errors"
	"image"
	"math"
)

// ErrZeroMoment is returned when a contour encloses no area, so its centroid
// is undefined.
var ErrZeroMoment = errors.New("zero area moment")

// momentEpsilon is the magnitude below which m00 is treated as zero.
const momentEpsilon = 1.1920929e-07

// OrientedArea returns the signed shoelace area of the closed polygon.
// With Y pointing down, outer borders traced by this package have a negative
// oriented area and hole borders a positive one.
func (c Contour) OrientedArea() float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p := c[i]
		q := c[(i+1)%n]
		sum += float64(p.X*q.Y - q.X*p.Y)
	}
	return sum / 2
}

// Area returns the absolute area enclosed by the polygon through the contour
// points. Contours with fewer than three points enclose no area.
func (c Contour) Area() float64 {
	return math.Abs(c.OrientedArea())
}

// ArcLength returns the total length of the polyline through the contour
// points. When closed is true the segment from the last point back to the
// first is included.
func (c Contour) ArcLength(closed bool) float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 1; i < n; i++ {
		length += distance(c[i-1], c[i])
	}
	if closed {
		length += distance(c[n-1], c[0])
	}
	return length
}

func distance(p, q image.Point) float64 {
	dx := float64(q.X - p.X)
	dy := float64(q.Y - p.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Moments holds the zeroth and first order spatial moments of a polygon.
type Moments struct {
	M00 float64 `json:"m00"`
	M10 float64 `json:"m10"`
	M01 float64 `json:"m01"`
}

// Moments computes area moments of the polygon with Green's theorem. The
// result is normalised so that M00 is non-negative regardless of the
// direction the contour was traced in.
func (c Contour) Moments() Moments {
	n := len(c)
	if n < 3 {
		return Moments{}
	}

	var a00, a10, a01 float64
	for i := 0; i < n; i++ {
		p := c[i]
		q := c[(i+1)%n]
		cross := float64(p.X*q.Y - q.X*p.Y)
		a00 += cross
		a10 += float64(p.X+q.X) * cross
		a01 += float64(p.Y+q.Y) * cross
	}

	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Centroid returns m10/m00 and m01/m00. It returns ErrZeroMoment when the
// polygon encloses no area.
func (m Moments) Centroid() (float64, float64, error) {
	if math.Abs(m.M00) < momentEpsilon {
		return 0, 0, ErrZeroMoment
	}
	return m.M10 / m.M00, m.M01 / m.M00, nil
}

// Bounds returns the smallest rectangle containing every contour point.
// Max is exclusive, matching image.Rectangle conventions.
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0].Add(image.Point{X: 1, Y: 1})}
	for _, p := range c[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X >= r.Max.X {
			r.Max.X = p.X + 1
		}
		if p.Y >= r.Max.Y {
			r.Max.Y = p.Y + 1
		}
	}
	return r
}
