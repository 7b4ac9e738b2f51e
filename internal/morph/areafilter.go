package morph

import (
	"fmt"
	"image"

	"github.com/ironsheep/shape-features-mcp/internal/contour"
)

// DefaultMinArea is the smallest contour area kept by RemoveSmallObjects
// when callers have no better value.
const DefaultMinArea = 30

// RemoveSmallObjects keeps only the external objects of bin whose contour
// polygon area is at least minArea.
//
// Kept objects are redrawn as solid regions from their outer contour, so
// any holes inside a surviving object are filled as a side effect.
func RemoveSmallObjects(bin *image.Gray, minArea float64) (*image.Gray, error) {
	if err := checkBinary(bin); err != nil {
		return nil, err
	}

	contours, _, err := contour.Find(bin, contour.RetrieveExternal)
	if err != nil {
		return nil, fmt.Errorf("failed to find contours: %w", err)
	}

	out := image.NewGray(bin.Bounds())
	for _, c := range contours {
		if c.Area() >= minArea {
			contour.Fill(out, c, Foreground)
		}
	}
	return out, nil
}
