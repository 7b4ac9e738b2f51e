// Package geometry measures distances between the centroids of bright
// objects, for calibration phantoms with a known spatial resolution.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/shape-features-mcp/internal/contour"
	"github.com/ironsheep/shape-features-mcp/internal/morph"
)

// ErrTooFewObjects is returned when fewer objects than Config.Count pass
// the area filter.
var ErrTooFewObjects = errors.New("too few objects")

// Config controls object detection and unit conversion.
type Config struct {
	// Threshold is the fixed binarization level; samples above it are
	// foreground.
	Threshold uint8 `json:"threshold"`

	// MinObjectArea is the exclusive lower bound on contour area.
	MinObjectArea float64 `json:"min_object_area"`

	// Resolution is the number of pixels per millimetre.
	Resolution float64 `json:"resolution"`

	// Count is how many objects, in reading order, are measured.
	Count int `json:"count"`
}

// DefaultConfig returns the settings used for the reference phantom.
func DefaultConfig() Config {
	return Config{
		Threshold:     150,
		MinObjectArea: 100,
		Resolution:    1.4798,
		Count:         4,
	}
}

// Object is one detected object, numbered from 1 in reading order.
type Object struct {
	Index    int         `json:"index"`
	Centroid image.Point `json:"centroid"`
	Area     float64     `json:"area"`
}

// PairDistance is the centroid distance between objects A and B.
type PairDistance struct {
	A           int     `json:"a"`
	B           int     `json:"b"`
	Pixels      float64 `json:"pixels"`
	Millimetres float64 `json:"millimetres"`
}

// DistanceResult holds the numbered objects and every pairwise distance.
type DistanceResult struct {
	Threshold uint8          `json:"threshold"`
	Found     int            `json:"found"`
	Objects   []Object       `json:"objects"`
	Pairs     []PairDistance `json:"pairs"`
	Binary    *image.Gray    `json:"-"`
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// MeasureDistances thresholds gray, locates object centroids, orders them
// top-to-bottom then left-to-right, and measures every pair among the first
// cfg.Count objects.
func MeasureDistances(gray *image.Gray, cfg Config) (*DistanceResult, error) {
	if gray == nil || gray.Bounds().Empty() {
		return nil, morph.ErrEmptyImage
	}
	if cfg.Count < 2 {
		return nil, fmt.Errorf("count must be at least 2, got %d", cfg.Count)
	}
	if cfg.Resolution <= 0 {
		return nil, fmt.Errorf("resolution must be positive, got %g", cfg.Resolution)
	}

	bin := morph.Threshold(gray, cfg.Threshold)
	contours, _, err := contour.Find(bin, contour.RetrieveExternal)
	if err != nil {
		return nil, fmt.Errorf("failed to find contours: %w", err)
	}

	var objects []Object
	for _, c := range contours {
		area := c.Area()
		if area <= cfg.MinObjectArea {
			continue
		}
		cx, cy, err := c.Moments().Centroid()
		if err != nil {
			continue
		}
		objects = append(objects, Object{Centroid: image.Point{X: int(cx), Y: int(cy)}, Area: area})
	}

	sort.SliceStable(objects, func(i, j int) bool {
		a, b := objects[i].Centroid, objects[j].Centroid
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	if len(objects) < cfg.Count {
		return nil, fmt.Errorf("%w: found %d, need %d", ErrTooFewObjects, len(objects), cfg.Count)
	}

	res := &DistanceResult{
		Threshold: cfg.Threshold,
		Found:     len(objects),
		Objects:   objects[:cfg.Count],
		Binary:    bin,
	}
	for i := range res.Objects {
		res.Objects[i].Index = i + 1
	}
	for i := 0; i < len(res.Objects); i++ {
		for j := i + 1; j < len(res.Objects); j++ {
			px := Distance(res.Objects[i].Centroid, res.Objects[j].Centroid)
			res.Pairs = append(res.Pairs, PairDistance{
				A:           i + 1,
				B:           j + 1,
				Pixels:      px,
				Millimetres: px / cfg.Resolution,
			})
		}
	}
	return res, nil
}
