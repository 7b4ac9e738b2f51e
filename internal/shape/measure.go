package shape

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/shape-features-mcp/internal/contour"
)

// Measurement holds the geometric descriptors of a single contour.
type Measurement struct {
	Area         float64     `json:"area"`
	Perimeter    float64     `json:"perimeter"`
	Metric       float64     `json:"metric"`
	Eccentricity float64     `json:"eccentricity"`
	Centroid     image.Point `json:"centroid"`
	Ellipse      Ellipse     `json:"ellipse"`

	// Degraded is set when eccentricity and centroid fell back to their
	// defaults because the ellipse fit or the centroid division failed.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// Roundness returns 4*pi*area/perimeter², or 0 for a non-positive perimeter.
func Roundness(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// Measure computes the descriptors of c.
//
// Contours with fewer than five points or zero perimeter return
// ErrDegenerateContour and should be skipped. An ellipse fit failure or a
// zero area moment does not return an error: the measurement is marked
// Degraded with eccentricity 1.0 and centroid (0,0).
func Measure(c contour.Contour) (Measurement, error) {
	if len(c) < minEllipsePoints {
		return Measurement{}, fmt.Errorf("%w: %d points", ErrDegenerateContour, len(c))
	}
	perimeter := c.ArcLength(true)
	if perimeter == 0 {
		return Measurement{}, fmt.Errorf("%w: zero perimeter", ErrDegenerateContour)
	}

	area := c.Area()
	m := Measurement{
		Area:      area,
		Perimeter: perimeter,
		Metric:    Roundness(area, perimeter),
	}

	ellipse, centroid, err := fitAndLocate(c)
	if err != nil {
		m.Eccentricity = 1.0
		m.Degraded = true
		m.DegradedReason = err.Error()
		return m, nil
	}
	m.Ellipse = ellipse
	m.Eccentricity = ellipse.Eccentricity()
	m.Centroid = centroid
	return m, nil
}

// fitAndLocate fits the ellipse and locates the centroid as one unit; a
// failure in either step discards both results.
func fitAndLocate(c contour.Contour) (Ellipse, image.Point, error) {
	ellipse, err := FitEllipse(c)
	if err != nil {
		return Ellipse{}, image.Point{}, err
	}
	cx, cy, err := c.Moments().Centroid()
	if err != nil {
		return Ellipse{}, image.Point{}, fmt.Errorf("failed to locate centroid: %w", err)
	}
	if math.IsNaN(cx) || math.IsNaN(cy) {
		return Ellipse{}, image.Point{}, errors.New("centroid is not a number")
	}
	// int() truncates toward zero.
	return ellipse, image.Point{X: int(cx), Y: int(cy)}, nil
}
