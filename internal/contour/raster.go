package contour

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// Fill rasterizes the closed polygon through c into dst as a solid region:
// every pixel on the polygon's edges and every pixel whose centre lies inside
// it is set to value. Pixels outside dst's bounds are ignored.
func Fill(dst *image.Gray, c Contour, value uint8) {
	n := len(c)
	if n == 0 {
		return
	}

	for i := 0; i < n; i++ {
		drawLine(dst, c[i], c[(i+1)%n], value)
	}
	if n < 3 {
		return
	}

	r := c.Bounds().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	xs := make([]float64, 0, 8)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		xs = xs[:0]
		fy := float64(y)
		for i := 0; i < n; i++ {
			p := c[i]
			q := c[(i+1)%n]
			if p.Y == q.Y {
				continue
			}
			if p.Y > q.Y {
				p, q = q, p
			}
			// Half-open span keeps shared vertices from being counted twice.
			if y < p.Y || y >= q.Y {
				continue
			}
			t := (fy - float64(p.Y)) / float64(q.Y-p.Y)
			xs = append(xs, float64(p.X)+t*float64(q.X-p.X))
		}
		sort.Float64s(xs)

		row := dst.Pix[(y-dst.Rect.Min.Y)*dst.Stride:]
		for k := 0; k+1 < len(xs); k += 2 {
			x0 := int(math.Ceil(xs[k]))
			x1 := int(math.Floor(xs[k+1]))
			if x0 < r.Min.X {
				x0 = r.Min.X
			}
			if x1 >= r.Max.X {
				x1 = r.Max.X - 1
			}
			for x := x0; x <= x1; x++ {
				row[x-dst.Rect.Min.X] = value
			}
		}
	}
}

// Stroke draws the closed polyline through c with the given color and
// thickness onto dst. Thickness values below 1 are treated as 1.
func Stroke(dst *image.RGBA, c Contour, col color.RGBA, thickness int) {
	n := len(c)
	if n == 0 {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	lo := -(thickness - 1) / 2
	hi := thickness / 2

	plot := func(p image.Point) {
		for dy := lo; dy <= hi; dy++ {
			for dx := lo; dx <= hi; dx++ {
				q := image.Point{X: p.X + dx, Y: p.Y + dy}
				if q.In(dst.Rect) {
					dst.SetRGBA(q.X, q.Y, col)
				}
			}
		}
	}
	for i := 0; i < n; i++ {
		bresenham(c[i], c[(i+1)%n], plot)
	}
}

func drawLine(dst *image.Gray, p, q image.Point, value uint8) {
	bresenham(p, q, func(pt image.Point) {
		if pt.In(dst.Rect) {
			dst.Pix[dst.PixOffset(pt.X, pt.Y)] = value
		}
	})
}

// bresenham calls plot for every pixel on the segment from p to q inclusive.
func bresenham(p, q image.Point, plot func(image.Point)) {
	dx := abs(q.X - p.X)
	dy := -abs(q.Y - p.Y)
	sx := 1
	if p.X > q.X {
		sx = -1
	}
	sy := 1
	if p.Y > q.Y {
		sy = -1
	}
	err := dx + dy
	x, y := p.X, p.Y
	for {
		plot(image.Point{X: x, Y: y})
		if x == q.X && y == q.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
