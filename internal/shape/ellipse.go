package shape

import (
	"fmt"
	"image"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// minEllipsePoints is the smallest point set a conic can be fitted through.
const minEllipsePoints = 5

// Ellipse describes a fitted ellipse. Major and Minor are full axis lengths;
// Angle is the orientation of the major axis in degrees within [0, 180),
// measured from the +X axis toward +Y (clockwise on screen).
type Ellipse struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Major   float64 `json:"major_axis"`
	Minor   float64 `json:"minor_axis"`
	Angle   float64 `json:"angle"`
}

// Eccentricity returns sqrt(1 - b²/a²) for semi-axes a >= b. A zero major
// axis yields 1.0.
func (e Ellipse) Eccentricity() float64 {
	a := e.Major / 2
	b := e.Minor / 2
	if a == 0 {
		return 1.0
	}
	v := 1 - (b*b)/(a*a)
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// FitEllipse fits an ellipse through pts with the direct least squares method
// of Fitzgibbon, Pilu and Fisher in the numerically stable form given by
// Halir and Flusser. The point set is centred and scaled before fitting.
func FitEllipse(pts []image.Point) (Ellipse, error) {
	n := len(pts)
	if n < minEllipsePoints {
		return Ellipse{}, fmt.Errorf("%w: need at least %d points, got %d", ErrEllipseFit, minEllipsePoints, n)
	}

	var mx, my float64
	for _, p := range pts {
		mx += float64(p.X)
		my += float64(p.Y)
	}
	mx /= float64(n)
	my /= float64(n)

	var scale float64
	for _, p := range pts {
		scale = math.Max(scale, math.Abs(float64(p.X)-mx))
		scale = math.Max(scale, math.Abs(float64(p.Y)-my))
	}
	if scale == 0 {
		return Ellipse{}, fmt.Errorf("%w: all points coincide", ErrEllipseFit)
	}

	d1 := mat.NewDense(n, 3, nil)
	d2 := mat.NewDense(n, 3, nil)
	for i, p := range pts {
		x := (float64(p.X) - mx) / scale
		y := (float64(p.Y) - my) / scale
		d1.SetRow(i, []float64{x * x, x * y, y * y})
		d2.SetRow(i, []float64{x, y, 1})
	}

	var s1, s2, s3 mat.Dense
	s1.Mul(d1.T(), d1)
	s2.Mul(d1.T(), d2)
	s3.Mul(d2.T(), d2)

	var s3inv mat.Dense
	if err := s3inv.Inverse(&s3); err != nil {
		return Ellipse{}, fmt.Errorf("%w: %v", ErrEllipseFit, err)
	}

	// t maps the quadratic coefficients onto the linear ones.
	var t mat.Dense
	t.Mul(&s3inv, s2.T())
	t.Scale(-1, &t)

	var m mat.Dense
	m.Mul(&s2, &t)
	m.Add(&s1, &m)

	// Premultiply by the inverse of the constraint matrix
	// [[0 0 2] [0 -1 0] [2 0 0]].
	reduced := mat.NewDense(3, 3, nil)
	for j := 0; j < 3; j++ {
		reduced.Set(0, j, m.At(2, j)/2)
		reduced.Set(1, j, -m.At(1, j))
		reduced.Set(2, j, m.At(0, j)/2)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(reduced, mat.EigenRight); !ok {
		return Ellipse{}, fmt.Errorf("%w: eigen decomposition did not converge", ErrEllipseFit)
	}
	values := eig.Values(nil)
	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	best := -1
	var a1 [3]float64
	for k := range values {
		if math.Abs(imag(values[k])) > 1e-9*math.Max(1, cmplx.Abs(values[k])) {
			continue
		}
		v := [3]float64{real(vectors.At(0, k)), real(vectors.At(1, k)), real(vectors.At(2, k))}
		if 4*v[0]*v[2]-v[1]*v[1] > 0 {
			best = k
			a1 = v
			break
		}
	}
	if best < 0 {
		return Ellipse{}, fmt.Errorf("%w: no elliptical solution", ErrEllipseFit)
	}

	a2 := mat.NewVecDense(3, nil)
	a2.MulVec(&t, mat.NewVecDense(3, a1[:]))

	e, err := conicToEllipse(a1[0], a1[1], a1[2], a2.AtVec(0), a2.AtVec(1), a2.AtVec(2))
	if err != nil {
		return Ellipse{}, err
	}

	e.CenterX = e.CenterX*scale + mx
	e.CenterY = e.CenterY*scale + my
	e.Major *= scale
	e.Minor *= scale
	return e, nil
}

// conicToEllipse converts the general conic Ax² + Bxy + Cy² + Dx + Ey + F = 0
// to centre, full axis lengths and orientation. The coefficients may carry
// either overall sign.
func conicToEllipse(a, b, c, d, e, f float64) (Ellipse, error) {
	if a+c < 0 {
		a, b, c, d, e, f = -a, -b, -c, -d, -e, -f
	}
	disc := b*b - 4*a*c
	if disc >= 0 {
		return Ellipse{}, fmt.Errorf("%w: conic is not an ellipse", ErrEllipseFit)
	}

	cx := (2*c*d - b*e) / disc
	cy := (2*a*e - b*d) / disc

	num := 2 * (a*e*e + c*d*d - b*d*e + disc*f)
	root := math.Hypot(a-c, b)
	p := num * (a + c + root)
	q := num * (a + c - root)
	if p <= 0 || q <= 0 {
		return Ellipse{}, fmt.Errorf("%w: imaginary ellipse", ErrEllipseFit)
	}
	semi1 := -math.Sqrt(p) / disc
	semi2 := -math.Sqrt(q) / disc
	major, minor := math.Max(semi1, semi2), math.Min(semi1, semi2)

	var theta float64
	switch {
	case b != 0:
		theta = math.Atan((c - a - root) / b)
	case a < c:
		theta = 0
	default:
		theta = math.Pi / 2
	}
	deg := theta * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	if deg >= 180 {
		deg -= 180
	}

	return Ellipse{
		CenterX: cx,
		CenterY: cy,
		Major:   2 * major,
		Minor:   2 * minor,
		Angle:   deg,
	}, nil
}
