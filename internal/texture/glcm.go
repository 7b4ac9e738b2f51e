// Package texture computes grey-level co-occurrence matrices and the
// Haralick-style properties derived from them.
package texture

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Standard sampling directions, in radians.
var DefaultAngles = []float64{0, math.Pi / 4, math.Pi / 2, 3 * math.Pi / 4}

// ErrLevelOutOfRange is returned when a sample is not below Config.Levels.
var ErrLevelOutOfRange = errors.New("grey level out of range")

// Config selects the co-occurrence offsets and normalisation.
type Config struct {
	Distances []int     `json:"distances"`
	Angles    []float64 `json:"angles"`
	Levels    int       `json:"levels"`
	Symmetric bool      `json:"symmetric"`
	Normed    bool      `json:"normed"`
}

// DefaultConfig returns distances 1..3 over the four standard angles with
// a symmetric, normalised 256-level matrix.
func DefaultConfig() Config {
	return Config{
		Distances: []int{1, 2, 3},
		Angles:    DefaultAngles,
		Levels:    256,
		Symmetric: true,
		Normed:    true,
	}
}

// Properties are the scalar descriptors of one co-occurrence matrix.
type Properties struct {
	Contrast    float64 `json:"contrast"`
	Correlation float64 `json:"correlation"`
	Energy      float64 `json:"energy"`
	Homogeneity float64 `json:"homogeneity"`
}

// AngleProperties are the properties at a single offset.
type AngleProperties struct {
	Distance int     `json:"distance"`
	Angle    float64 `json:"angle"`
	Properties
}

// DistanceProperties are the properties at one distance averaged over all
// configured angles.
type DistanceProperties struct {
	Distance int `json:"distance"`
	Properties
}

// Result is the output of Analyze.
type Result struct {
	MeanIntensity float64              `json:"mean_intensity"`
	PerAngle      []AngleProperties    `json:"per_angle"`
	Averages      []DistanceProperties `json:"averages"`
}

// Offset converts a distance and angle to a row and column displacement.
// Positive angles point down the image.
func Offset(distance int, angle float64) (dRow, dCol int) {
	d := float64(distance)
	return int(math.Round(math.Sin(angle) * d)), int(math.Round(math.Cos(angle) * d))
}

// CoMatrix counts how often level i at (x, y) is paired with level j at
// the pixel displaced by distance along angle. Entry (i, j) of the result
// holds that count, or its share of the total when normed is set.
func CoMatrix(gray *image.Gray, distance int, angle float64, levels int, symmetric, normed bool) (*mat.Dense, error) {
	if gray == nil || gray.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	if levels < 1 || levels > 256 {
		return nil, fmt.Errorf("levels must be in [1, 256], got %d", levels)
	}

	b := gray.Bounds()
	dRow, dCol := Offset(distance, angle)
	counts := make([]float64, levels*levels)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		ny := y + dRow
		if ny < b.Min.Y || ny >= b.Max.Y {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			nx := x + dCol
			if nx < b.Min.X || nx >= b.Max.X {
				continue
			}
			i := int(gray.Pix[gray.PixOffset(x, y)])
			j := int(gray.Pix[gray.PixOffset(nx, ny)])
			if i >= levels || j >= levels {
				return nil, fmt.Errorf("%w: %d >= %d", ErrLevelOutOfRange, max(i, j), levels)
			}
			counts[i*levels+j]++
		}
	}

	if symmetric {
		for i := 0; i < levels; i++ {
			for j := i + 1; j < levels; j++ {
				s := counts[i*levels+j] + counts[j*levels+i]
				counts[i*levels+j], counts[j*levels+i] = s, s
			}
			counts[i*levels+i] *= 2
		}
	}

	p := mat.NewDense(levels, levels, counts)
	if normed {
		if total := mat.Sum(p); total > 0 {
			p.Scale(1/total, p)
		}
	}
	return p, nil
}

// Props derives contrast, correlation, energy and homogeneity from a
// normalised co-occurrence matrix. A matrix with no variance along either
// axis has correlation 1.
func Props(p mat.Matrix) Properties {
	rows, cols := p.Dims()

	var props Properties
	var asm, meanI, meanJ float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := p.At(i, j)
			if v == 0 {
				continue
			}
			d := float64(i - j)
			props.Contrast += v * d * d
			props.Homogeneity += v / (1 + d*d)
			asm += v * v
			meanI += float64(i) * v
			meanJ += float64(j) * v
		}
	}
	props.Energy = math.Sqrt(asm)

	var varI, varJ, cov float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := p.At(i, j)
			if v == 0 {
				continue
			}
			di := float64(i) - meanI
			dj := float64(j) - meanJ
			varI += v * di * di
			varJ += v * dj * dj
			cov += v * di * dj
		}
	}
	stdI, stdJ := math.Sqrt(varI), math.Sqrt(varJ)
	if stdI < 1e-15 || stdJ < 1e-15 {
		props.Correlation = 1
	} else {
		props.Correlation = cov / (stdI * stdJ)
	}
	return props
}

// Analyze computes the properties at every configured offset and averages
// them per distance.
func Analyze(gray *image.Gray, cfg Config) (*Result, error) {
	if len(cfg.Distances) == 0 || len(cfg.Angles) == 0 {
		return nil, errors.New("at least one distance and one angle are required")
	}
	if gray == nil || gray.Bounds().Empty() {
		return nil, errors.New("empty image")
	}

	nA := len(cfg.Angles)
	per := make([]AngleProperties, len(cfg.Distances)*nA)

	var g errgroup.Group
	for di, d := range cfg.Distances {
		for ai, a := range cfg.Angles {
			d, a := d, a
			idx := di*nA + ai
			g.Go(func() error {
				p, err := CoMatrix(gray, d, a, cfg.Levels, cfg.Symmetric, cfg.Normed)
				if err != nil {
					return err
				}
				per[idx] = AngleProperties{Distance: d, Angle: a, Properties: Props(p)}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{MeanIntensity: meanIntensity(gray), PerAngle: per}
	for di, d := range cfg.Distances {
		group := per[di*nA : (di+1)*nA]
		res.Averages = append(res.Averages, DistanceProperties{
			Distance: d,
			Properties: Properties{
				Contrast:    meanOf(group, func(p Properties) float64 { return p.Contrast }),
				Correlation: meanOf(group, func(p Properties) float64 { return p.Correlation }),
				Energy:      meanOf(group, func(p Properties) float64 { return p.Energy }),
				Homogeneity: meanOf(group, func(p Properties) float64 { return p.Homogeneity }),
			},
		})
	}
	return res, nil
}

func meanOf(group []AngleProperties, field func(Properties) float64) float64 {
	xs := make([]float64, len(group))
	for i, g := range group {
		xs[i] = field(g.Properties)
	}
	return stat.Mean(xs, nil)
}

func meanIntensity(gray *image.Gray) float64 {
	b := gray.Bounds()
	xs := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y) : gray.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			xs = append(xs, float64(v))
		}
	}
	return stat.Mean(xs, nil)
}
