// Package colorseg isolates pixels whose hue lies in a band around a
// target colour.
//
// Hues use the 8-bit convention of 0..179, half the angle in degrees.
package colorseg

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// MaxHue is the largest 8-bit hue value.
const MaxHue = 179

// Config is a hue band [TargetHue-Tolerance, TargetHue+Tolerance], inclusive
// at both ends. The band does not wrap around red.
type Config struct {
	TargetHue int `json:"target_hue"`
	Tolerance int `json:"tolerance"`
}

// DefaultConfig targets magenta-violet, hue 234 on a 0..255 scale.
func DefaultConfig() Config {
	return Config{TargetHue: HueFrom255(234), Tolerance: 10}
}

// HueFrom255 rescales a hue from 0..255 to 0..179, truncating.
func HueFrom255(v int) int {
	return v * MaxHue / 255
}

// Validate reports whether the band is usable.
func (c Config) Validate() error {
	if c.TargetHue < 0 || c.TargetHue > MaxHue {
		return fmt.Errorf("target hue must be in [0, %d], got %d", MaxHue, c.TargetHue)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative, got %d", c.Tolerance)
	}
	return nil
}

// Matches reports whether h falls in the band.
func (c Config) Matches(h uint8) bool {
	v := int(h)
	return v >= c.TargetHue-c.Tolerance && v <= c.TargetHue+c.Tolerance
}

// Hue returns the 8-bit hue of c. Achromatic colours have hue 0.
func Hue(c color.Color) uint8 {
	col, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	h, _, _ := col.Hsv()
	v := int(math.Round(h / 2))
	if v > MaxHue {
		v -= MaxHue + 1
	}
	return uint8(v)
}

// Result holds the hue channel, the band mask, and a copy of the input with
// every pixel outside the mask painted white.
type Result struct {
	Hue      *image.Gray `json:"-"`
	Mask     *image.Gray `json:"-"`
	Isolated *image.RGBA `json:"-"`
	Matched  int         `json:"matched"`
	Total    int         `json:"total"`
	Fraction float64     `json:"fraction"`
	Config   Config      `json:"config"`
}

// Segment computes the hue of every pixel and keeps those inside the band.
func Segment(img image.Image, cfg Config) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := clone.AsRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	hue := image.NewGray(image.Rect(0, 0, w, h))
	mask := image.NewGray(image.Rect(0, 0, w, h))
	isolated := image.NewRGBA(image.Rect(0, 0, w, h))
	matched := make([]int, h)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				px := color.RGBA{src.Pix[si], src.Pix[si+1], src.Pix[si+2], src.Pix[si+3]}
				hv := Hue(px)
				hue.Pix[y*hue.Stride+x] = hv

				di := isolated.PixOffset(x, y)
				if cfg.Matches(hv) {
					mask.Pix[y*mask.Stride+x] = 255
					copy(isolated.Pix[di:di+4], src.Pix[si:si+4])
					matched[y]++
					continue
				}
				copy(isolated.Pix[di:di+4], []uint8{255, 255, 255, 255})
			}
		}
	})

	res := &Result{
		Hue:      hue,
		Mask:     mask,
		Isolated: isolated,
		Total:    w * h,
		Config:   cfg,
	}
	for _, n := range matched {
		res.Matched += n
	}
	res.Fraction = float64(res.Matched) / float64(res.Total)
	return res, nil
}
