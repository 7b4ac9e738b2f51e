package shape

import (
	"errors"
	"fmt"

	"github.com/ironsheep/shape-features-mcp/internal/contour"
	"github.com/ironsheep/shape-features-mcp/internal/morph"
)

var (
	// ErrDegenerateContour marks a contour with too few points or no
	// perimeter. Such objects are skipped.
	ErrDegenerateContour = errors.New("degenerate contour")

	// ErrEllipseFit is returned when no ellipse can be fitted to a point set.
	ErrEllipseFit = errors.New("ellipse fit failed")

	// ErrZeroMoment is returned when a contour encloses no area.
	ErrZeroMoment = contour.ErrZeroMoment

	// ErrEmptyImage is returned for nil or zero-size input images.
	ErrEmptyImage = morph.ErrEmptyImage
)

// LoadError reports that an input image could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load image: %v", e.Err)
	}
	return fmt.Sprintf("failed to load image %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
