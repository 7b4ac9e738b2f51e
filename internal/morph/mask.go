package morph

import (
	"image"
)

// Normalize returns a copy of src in which every non-zero sample is
// Foreground. The copy keeps src's bounds.
func Normalize(src *image.Gray) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		in := src.Pix[y*src.Stride : y*src.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range in {
			if v != 0 {
				dst[x] = Foreground
			}
		}
	}
	return out
}

// CountForeground returns the number of non-zero samples in m.
func CountForeground(m *image.Gray) int {
	if m == nil {
		return 0
	}
	b := m.Bounds()
	w := b.Dx()
	n := 0
	for y := 0; y < b.Dy(); y++ {
		for _, v := range m.Pix[y*m.Stride : y*m.Stride+w] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Subset reports whether every foreground sample of a is also foreground in
// b. Both rasters must share the same bounds.
func Subset(a, b *image.Gray) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	r := a.Bounds()
	w := r.Dx()
	for y := 0; y < r.Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := range ra {
			if ra[x] != 0 && rb[x] == 0 {
				return false
			}
		}
	}
	return true
}

func checkBinary(m *image.Gray) error {
	if m == nil || m.Bounds().Empty() {
		return ErrEmptyImage
	}
	return nil
}
