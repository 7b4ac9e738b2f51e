// Package report formats analysis results as plain text and charts.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ironsheep/shape-features-mcp/internal/colorseg"
	"github.com/ironsheep/shape-features-mcp/internal/geometry"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
	"github.com/ironsheep/shape-features-mcp/internal/texture"
)

var (
	heavyRule = strings.Repeat("=", 57)
	lightRule = strings.Repeat("-", 57)
)

// errWriter remembers the first write error so callers can format freely
// and check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) header(title string) {
	ew.printf("%s\n%s\n%s\n", heavyRule, title, heavyRule)
}

// WriteShapes prints one block per object record.
func WriteShapes(w io.Writer, name string, records []shape.ObjectRecord) error {
	ew := &errWriter{w: w}
	ew.header(fmt.Sprintf("SHAPE FEATURES FOR '%s' (%d OBJECTS)", name, len(records)))
	for _, r := range records {
		ew.printf("Object %d: (%s)\n", r.Index, r.Label)
		ew.printf("  Area:         %.2f px\n", r.Area)
		ew.printf("  Perimeter:    %.2f px\n", r.Perimeter)
		ew.printf("  Eccentricity: %.4f\n", r.Eccentricity)
		ew.printf("  Metric:       %.4f\n", r.Metric)
		ew.printf("  Centroid:     (%d, %d)\n", r.Centroid.X, r.Centroid.Y)
		if r.Degraded {
			ew.printf("  Note:         %s\n", r.DegradedReason)
		}
		ew.printf("%s\n", lightRule)
	}
	return ew.err
}

// WriteDistances prints the object centroids and every pair distance.
func WriteDistances(w io.Writer, name string, res *geometry.DistanceResult) error {
	ew := &errWriter{w: w}
	ew.header(fmt.Sprintf("GEOMETRIC DISTANCES FOR '%s'", name))
	ew.printf("Threshold: %d\n", res.Threshold)
	for _, o := range res.Objects {
		ew.printf("Object %d: centroid (%d, %d), area %.2f px\n", o.Index, o.Centroid.X, o.Centroid.Y, o.Area)
	}
	ew.printf("%s\n", lightRule)
	for i, p := range res.Pairs {
		ew.printf("%d. Objects %d and %d\n", i+1, p.A, p.B)
		ew.printf("   Pixels:      %.4f\n", p.Pixels)
		ew.printf("   Millimetres: %.4f\n", p.Millimetres)
		ew.printf("%s\n", lightRule)
	}
	return ew.err
}

// WriteTexture prints the angle-averaged properties per distance.
func WriteTexture(w io.Writer, name string, res *texture.Result) error {
	ew := &errWriter{w: w}
	ew.header(fmt.Sprintf("TEXTURE FEATURES FOR '%s'", name))
	ew.printf("Mean intensity: %.4f\n", res.MeanIntensity)
	ew.printf("%-8s %12s %12s %12s %12s\n", "Distance", "Contrast", "Correlation", "Energy", "Homogeneity")
	for _, a := range res.Averages {
		ew.printf("%-8d %12.4f %12.4f %12.4f %12.4f\n", a.Distance, a.Contrast, a.Correlation, a.Energy, a.Homogeneity)
	}
	return ew.err
}

// WriteColor prints the hue band and how much of the image it matched.
func WriteColor(w io.Writer, name string, res *colorseg.Result) error {
	ew := &errWriter{w: w}
	ew.header(fmt.Sprintf("HUE SEGMENTATION FOR '%s'", name))
	lo := max(0, res.Config.TargetHue-res.Config.Tolerance)
	hi := min(colorseg.MaxHue, res.Config.TargetHue+res.Config.Tolerance)
	ew.printf("Hue band: %d..%d\n", lo, hi)
	ew.printf("Matched:  %d of %d pixels (%.2f%%)\n", res.Matched, res.Total, math.Round(res.Fraction*10000)/100)
	return ew.err
}
