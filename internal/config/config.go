// Package config assembles run-time settings from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/shape-features-mcp/internal/colorseg"
	"github.com/ironsheep/shape-features-mcp/internal/geometry"
	"github.com/ironsheep/shape-features-mcp/internal/logging"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
	"github.com/ironsheep/shape-features-mcp/internal/texture"
)

// Environment variables read by Load.
const (
	EnvConfigFile  = "SHAPE_MCP_CONFIG"
	EnvMinArea     = "SHAPE_MCP_MIN_AREA"
	EnvCloseRadius = "SHAPE_MCP_CLOSE_RADIUS"
	EnvWorkers     = "SHAPE_MCP_WORKERS"
	EnvResolution  = "SHAPE_MCP_RESOLUTION"
)

// Config is the complete set of tunables.
type Config struct {
	Shape    shape.Config
	Geometry geometry.Config
	Texture  texture.Config
	Color    colorseg.Config
	LogLevel zerolog.Level
}

// Default returns the built-in settings of every component.
func Default() Config {
	return Config{
		Shape:    shape.DefaultConfig(),
		Geometry: geometry.DefaultConfig(),
		Texture:  texture.DefaultConfig(),
		Color:    colorseg.DefaultConfig(),
		LogLevel: zerolog.InfoLevel,
	}
}

// file mirrors the YAML layout. Pointer fields distinguish "absent" from
// zero.
type file struct {
	LogLevel string `yaml:"log_level"`
	Shape    struct {
		MinArea     *int `yaml:"min_area"`
		CloseRadius *int `yaml:"close_radius"`
		Workers     *int `yaml:"workers"`
	} `yaml:"shape"`
	Geometry struct {
		Threshold     *uint8   `yaml:"threshold"`
		MinObjectArea *float64 `yaml:"min_object_area"`
		Resolution    *float64 `yaml:"resolution"`
		Count         *int     `yaml:"count"`
	} `yaml:"geometry"`
	Texture struct {
		Distances []int `yaml:"distances"`
	} `yaml:"texture"`
	Color struct {
		TargetHue *int `yaml:"target_hue"`
		Tolerance *int `yaml:"tolerance"`
	} `yaml:"color"`
}

// Load builds a Config from the process environment.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups. When EnvConfigFile is
// set the file is applied before the individual overrides.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv(EnvConfigFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.ApplyYAML(data); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := getenv(logging.EnvLevel); v != "" {
		level, err := logging.ParseLevel(v)
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = level
	}

	for _, o := range []struct {
		name string
		dst  *int
	}{
		{EnvMinArea, &cfg.Shape.MinArea},
		{EnvCloseRadius, &cfg.Shape.CloseRadius},
		{EnvWorkers, &cfg.Shape.Workers},
	} {
		v := getenv(o.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", o.name, v, err)
		}
		*o.dst = n
	}

	if v := getenv(EnvResolution); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvResolution, v, err)
		}
		cfg.Geometry.Resolution = f
	}

	return cfg, cfg.Validate()
}

// ApplyYAML overlays the settings present in data onto c.
func (c *Config) ApplyYAML(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	if f.LogLevel != "" {
		level, err := logging.ParseLevel(f.LogLevel)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}
	setIf(&c.Shape.MinArea, f.Shape.MinArea)
	setIf(&c.Shape.CloseRadius, f.Shape.CloseRadius)
	setIf(&c.Shape.Workers, f.Shape.Workers)
	setIf(&c.Geometry.Threshold, f.Geometry.Threshold)
	setIf(&c.Geometry.MinObjectArea, f.Geometry.MinObjectArea)
	setIf(&c.Geometry.Resolution, f.Geometry.Resolution)
	setIf(&c.Geometry.Count, f.Geometry.Count)
	setIf(&c.Color.TargetHue, f.Color.TargetHue)
	setIf(&c.Color.Tolerance, f.Color.Tolerance)
	if len(f.Texture.Distances) > 0 {
		c.Texture.Distances = f.Texture.Distances
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks the settings that components would otherwise reject at
// call time.
func (c Config) Validate() error {
	if err := c.Shape.Validate(); err != nil {
		return err
	}
	if c.Geometry.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %g", c.Geometry.Resolution)
	}
	if c.Geometry.Count < 2 {
		return fmt.Errorf("geometry count must be at least 2, got %d", c.Geometry.Count)
	}
	return c.Color.Validate()
}
