package contour

import (
	"fmt"
	"image"
)

// Mode selects which traced borders Find returns and how their hierarchy is
// reported.
type Mode int

const (
	// RetrieveExternal returns only outermost outer borders. Objects nested
	// inside the holes of other objects are not returned.
	RetrieveExternal Mode = iota

	// RetrieveCComp returns every border organised in a two-level hierarchy:
	// outer borders are roots and each hole border is a child of the outer
	// border that encloses it.
	RetrieveCComp

	// RetrieveTree returns every border with the full nesting hierarchy.
	RetrieveTree
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case RetrieveExternal:
		return "external"
	case RetrieveCComp:
		return "ccomp"
	case RetrieveTree:
		return "tree"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Contour is an ordered, closed sequence of boundary points.
type Contour []image.Point

// Hierarchy maps each contour index to the index of its parent contour, or -1
// for roots.
type Hierarchy []int

// Border is one traced boundary with its raw Suzuki–Abe classification.
type Border struct {
	// Points is the chain-compressed boundary.
	Points Contour

	// Hole is true for hole borders and false for outer borders.
	Hole bool

	// Parent is the index of the enclosing border in the slice returned by
	// TraceBorders, or -1 when the border's parent is the image frame.
	Parent int
}

// neighbor offsets indexed by direction, counterclockwise starting east:
// E, NE, N, NW, W, SW, S, SE (north is up, i.e. decreasing Y).
var neighbors = [8]image.Point{
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
}

const (
	dirEast = 0
	dirWest = 4
)

// tracer holds the labelled working grid for one tracing pass. The grid is
// padded by one background pixel on every side.
type tracer struct {
	grid   []int32
	stride int
	origin image.Point
}

func (t *tracer) at(p image.Point) int32 {
	return t.grid[p.Y*t.stride+p.X]
}

func (t *tracer) set(p image.Point, v int32) {
	t.grid[p.Y*t.stride+p.X] = v
}

// TraceBorders runs Suzuki–Abe border following over mask and returns every
// border in discovery order with its raw parent relation.
//
// Returns an error if mask is nil or has an empty bounds rectangle.
func TraceBorders(mask *image.Gray) ([]Border, error) {
	if mask == nil || mask.Bounds().Empty() {
		return nil, fmt.Errorf("cannot trace borders: empty mask")
	}

	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	t := &tracer{
		grid:   make([]int32, (width+2)*(height+2)),
		stride: width + 2,
		origin: bounds.Min,
	}
	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			if v != 0 {
				t.grid[(y+1)*t.stride+x+1] = 1
			}
		}
	}

	// NBD 1 is the image frame, which behaves as a hole border with no parent.
	// Border NBD n is stored at borders[n-2].
	borders := make([]Border, 0)
	isHole := func(nbd int) bool {
		if nbd == 1 {
			return true
		}
		return borders[nbd-2].Hole
	}
	parentOf := func(nbd int) int {
		if nbd == 1 {
			return -1
		}
		return borders[nbd-2].Parent
	}

	nbd := 1
	for y := 1; y <= height; y++ {
		lnbd := 1
		for x := 1; x <= width; x++ {
			p := image.Point{X: x, Y: y}
			v := t.at(p)
			if v == 0 {
				continue
			}

			hole := false
			from := -1
			if v == 1 && t.at(p.Add(neighbors[dirWest])) == 0 {
				from = dirWest
			} else if v >= 1 && t.at(p.Add(neighbors[dirEast])) == 0 {
				hole = true
				from = dirEast
				if v > 1 {
					lnbd = int(v)
				}
			}

			if from >= 0 {
				nbd++

				// Parent selection table from Suzuki & Abe (1985), with the
				// frame encoded as -1.
				var parent int
				if hole == isHole(lnbd) {
					parent = parentOf(lnbd)
				} else {
					parent = lnbd - 2
				}

				points := t.follow(p, from, int32(nbd))
				borders = append(borders, Border{
					Points: compress(points),
					Hole:   hole,
					Parent: parent,
				})
			}

			if w := t.at(p); w != 1 {
				if w < 0 {
					w = -w
				}
				lnbd = int(w)
			}
		}
	}

	return borders, nil
}

// follow traces one border starting at start. from is the direction of the
// background pixel that triggered the border (west for outer borders, east
// for hole borders). Visited pixels are relabelled with ±nbd.
func (t *tracer) follow(start image.Point, from int, nbd int32) Contour {
	// Clockwise search around start for the first non-zero neighbour.
	first := -1
	for k := 0; k < 8; k++ {
		d := (from - k + 8) % 8
		if t.at(start.Add(neighbors[d])) != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		t.set(start, -nbd)
		return Contour{t.toImage(start)}
	}

	firstPoint := start.Add(neighbors[first])
	points := make(Contour, 0, 64)

	current := start
	back := first // direction from current to the previously visited pixel
	for {
		// Counterclockwise search starting just after the previous pixel.
		eastZero := false
		next := -1
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			v := t.at(current.Add(neighbors[d]))
			if v != 0 {
				next = d
				break
			}
			if d == dirEast {
				eastZero = true
			}
		}

		if eastZero {
			t.set(current, -nbd)
		} else if t.at(current) == 1 {
			t.set(current, nbd)
		}
		points = append(points, t.toImage(current))

		nextPoint := current.Add(neighbors[next])
		if nextPoint == start && current == firstPoint {
			break
		}
		back = (next + 4) % 8
		current = nextPoint
	}

	return points
}

// toImage converts a padded grid position to absolute image coordinates.
func (t *tracer) toImage(p image.Point) image.Point {
	return image.Point{X: p.X - 1 + t.origin.X, Y: p.Y - 1 + t.origin.Y}
}

// compress drops points that lie in the middle of a straight horizontal,
// vertical or diagonal run. The starting point is always kept.
func compress(points Contour) Contour {
	n := len(points)
	if n <= 2 {
		return points
	}

	out := make(Contour, 0, n/2+1)
	out = append(out, points[0])
	for i := 1; i < n; i++ {
		in := points[i].Sub(points[i-1])
		next := points[(i+1)%n].Sub(points[i])
		if in != next {
			out = append(out, points[i])
		}
	}
	return out
}

// Find traces the borders of mask and returns those selected by mode along
// with their hierarchy. Contours are in discovery order.
//
// An empty foreground yields empty (non-nil) slices and no error. A nil or
// zero-size mask returns an error.
func Find(mask *image.Gray, mode Mode) ([]Contour, Hierarchy, error) {
	borders, err := TraceBorders(mask)
	if err != nil {
		return nil, nil, err
	}

	contours := make([]Contour, 0, len(borders))
	hierarchy := make(Hierarchy, 0, len(borders))

	switch mode {
	case RetrieveExternal:
		for _, b := range borders {
			if !b.Hole && b.Parent == -1 {
				contours = append(contours, b.Points)
				hierarchy = append(hierarchy, -1)
			}
		}

	case RetrieveCComp:
		// A hole's raw parent is always an outer border, so holes keep it.
		// Outer borders become roots even when nested inside a hole.
		for _, b := range borders {
			parent := -1
			if b.Hole {
				parent = b.Parent
			}
			contours = append(contours, b.Points)
			hierarchy = append(hierarchy, parent)
		}

	case RetrieveTree:
		for _, b := range borders {
			contours = append(contours, b.Points)
			hierarchy = append(hierarchy, b.Parent)
		}

	default:
		return nil, nil, fmt.Errorf("unknown retrieval mode: %s", mode)
	}

	return contours, hierarchy, nil
}
