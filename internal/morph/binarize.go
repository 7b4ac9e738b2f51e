package morph

import (
	"errors"
	"image"
)

// ErrEmptyImage is returned when a stage receives a nil or zero-size raster.
var ErrEmptyImage = errors.New("empty image")

// Foreground and Background are the two sample values of a binary raster.
const (
	Foreground uint8 = 255
	Background uint8 = 0
)

// Histogram returns the 256-bin intensity histogram of gray.
func Histogram(gray *image.Gray) [256]int {
	var hist [256]int
	if gray == nil {
		return hist
	}
	b := gray.Bounds()
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold computes the global threshold that maximises the
// between-class variance of the intensity histogram.
//
// The returned level t splits the samples into {v <= t} (background) and
// {v > t} (foreground). When every sample has the same value no split
// exists and 0 is returned.
func OtsuThreshold(gray *image.Gray) (uint8, error) {
	if gray == nil || gray.Bounds().Empty() {
		return 0, ErrEmptyImage
	}

	hist := Histogram(gray)
	total := float64(gray.Bounds().Dx() * gray.Bounds().Dy())

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var (
		weightLow float64
		sumLow    float64
		best      float64
		level     int
	)
	for i := 0; i < 256; i++ {
		weightLow += float64(hist[i])
		if weightLow == 0 {
			continue
		}
		weightHigh := total - weightLow
		if weightHigh == 0 {
			break
		}
		sumLow += float64(i) * float64(hist[i])

		meanLow := sumLow / weightLow
		meanHigh := (sumAll - sumLow) / weightHigh
		diff := meanLow - meanHigh
		between := weightLow * weightHigh * diff * diff
		if between > best {
			best = between
			level = i
		}
	}

	return uint8(level), nil
}

// Binarize thresholds gray with the Otsu level. Samples strictly above the
// level become Foreground, all others Background. The level is returned
// alongside the binary raster.
func Binarize(gray *image.Gray) (*image.Gray, uint8, error) {
	level, err := OtsuThreshold(gray)
	if err != nil {
		return nil, 0, err
	}
	return Threshold(gray, level), level, nil
}

// Threshold returns a binary raster where samples strictly greater than
// level are Foreground.
func Threshold(gray *image.Gray, level uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(b)
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			if v > level {
				dst[x] = Foreground
			}
		}
	}
	return out
}
