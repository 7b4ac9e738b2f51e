package morph

import (
	"fmt"
	"image"

	"github.com/ironsheep/shape-features-mcp/internal/contour"
)

// FillHoles paints every enclosed background region of bin as foreground.
//
// Holes are found with two-level retrieval: any contour that has a parent in
// the hierarchy is a hole border and is rasterised solid. The result is a
// superset of bin.
func FillHoles(bin *image.Gray) (*image.Gray, error) {
	if err := checkBinary(bin); err != nil {
		return nil, err
	}

	contours, hierarchy, err := contour.Find(bin, contour.RetrieveCComp)
	if err != nil {
		return nil, fmt.Errorf("failed to find contours: %w", err)
	}

	out := Normalize(bin)
	for i, c := range contours {
		if hierarchy[i] != -1 {
			contour.Fill(out, c, Foreground)
		}
	}
	return out, nil
}
