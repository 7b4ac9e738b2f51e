//go:build opencv

package cvref

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Object is one object measured by OpenCV.
type Object struct {
	Area      float64
	Perimeter float64
	Metric    float64
	Centroid  image.Point
}

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func toMat(gray *image.Gray) (gocv.Mat, error) {
	b := gray.Bounds()
	buf := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := gray.PixOffset(b.Min.X, y)
		buf = append(buf, gray.Pix[off:off+b.Dx()]...)
	}
	return gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, buf)
}

// ToGray copies a single channel 8-bit Mat into an image.
func ToGray(m gocv.Mat) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	copy(g.Pix, m.ToBytes())
	return g
}

// Binarize applies Otsu thresholding.
func Binarize(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Threshold(src, &dst, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return dst
}

// RemoveSmallObjects keeps the filled external contours with area at least
// minArea.
func RemoveSmallObjects(bin gocv.Mat, minArea float64) gocv.Mat {
	out := gocv.NewMatWithSize(bin.Rows(), bin.Cols(), gocv.MatTypeCV8U)
	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	for i := 0; i < contours.Size(); i++ {
		if gocv.ContourArea(contours.At(i)) >= minArea {
			gocv.DrawContours(&out, contours, i, white, -1)
		}
	}
	return out
}

// Close applies a morphological closing with an elliptical kernel of the
// given radius.
func Close(bin gocv.Mat, radius int) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 2*radius + 1, Y: 2*radius + 1})
	defer kernel.Close()
	dst := gocv.NewMat()
	gocv.MorphologyEx(bin, &dst, gocv.MorphClose, kernel)
	return dst
}

// FillHoles paints every hole contour of a two-level hierarchy.
func FillHoles(bin gocv.Mat) gocv.Mat {
	out := bin.Clone()
	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(bin, &hierarchy, gocv.RetrievalCComp, gocv.ChainApproxSimple)
	defer contours.Close()
	for i := 0; i < contours.Size(); i++ {
		if hierarchy.GetVeciAt(0, i)[3] != -1 {
			gocv.DrawContours(&out, contours, i, white, -1)
		}
	}
	return out
}

// Extract runs the full chain and measures every external contour of the
// cleaned mask with area at least minArea.
func Extract(gray *image.Gray, minArea float64, radius int) ([]Object, *image.Gray, error) {
	if gray == nil || gray.Bounds().Empty() {
		return nil, nil, errors.New("empty image")
	}
	src, err := toMat(gray)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	bin := Binarize(src)
	defer bin.Close()
	filtered := RemoveSmallObjects(bin, minArea)
	defer filtered.Close()
	closed := Close(filtered, radius)
	defer closed.Close()
	filled := FillHoles(closed)
	defer filled.Close()

	contours := gocv.FindContours(filled, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var objects []Object
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if c.Size() < 5 {
			continue
		}
		area := gocv.ContourArea(c)
		perimeter := gocv.ArcLength(c, true)
		if perimeter == 0 || area < minArea {
			continue
		}

		mask := gocv.NewMatWithSize(filled.Rows(), filled.Cols(), gocv.MatTypeCV8U)
		single := gocv.NewPointsVectorFromPoints([][]image.Point{c.ToPoints()})
		gocv.DrawContours(&mask, single, 0, white, -1)
		m := gocv.Moments(mask, true)
		single.Close()
		mask.Close()

		o := Object{Area: area, Perimeter: perimeter, Metric: 4 * math.Pi * area / (perimeter * perimeter)}
		if m["m00"] != 0 {
			o.Centroid = image.Point{X: int(m["m10"] / m["m00"]), Y: int(m["m01"] / m["m00"])}
		}
		objects = append(objects, o)
	}
	return objects, ToGray(filled), nil
}
