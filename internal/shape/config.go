package shape

import (
	"fmt"
	"runtime"

	"github.com/ironsheep/shape-features-mcp/internal/morph"
)

// Config holds the tunable parameters of a Pipeline.
type Config struct {
	// MinArea is the smallest contour area, in square pixels, an object
	// needs to survive the small object filter.
	MinArea int `json:"min_area"`

	// CloseRadius is the radius of the disk used for morphological closing.
	CloseRadius int `json:"close_radius"`

	// Workers bounds how many objects are measured concurrently.
	Workers int `json:"workers"`
}

// DefaultConfig returns the standard pipeline parameters.
func DefaultConfig() Config {
	return Config{
		MinArea:     morph.DefaultMinArea,
		CloseRadius: morph.DefaultCloseRadius,
		Workers:     runtime.NumCPU(),
	}
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	if c.MinArea < 0 {
		return fmt.Errorf("min area must not be negative, got %d", c.MinArea)
	}
	if c.CloseRadius < 0 {
		return fmt.Errorf("close radius must not be negative, got %d", c.CloseRadius)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
