package render

import (
	"image"
	"image/color"
)

// glyphs is a 3x5 bitmap font covering the characters used in labels.
var glyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'-': {"000", "000", "111", "000", "000"},
	'.': {"000", "000", "000", "000", "010"},
}

const (
	glyphWidth   = 3
	glyphHeight  = 5
	glyphAdvance = 4
)

// TextSize returns the pixel size of text drawn at scale.
func TextSize(text string, scale int) image.Point {
	scale = max(1, scale)
	n := len([]rune(text))
	if n == 0 {
		return image.Point{}
	}
	return image.Point{X: (n*glyphAdvance - 1) * scale, Y: glyphHeight * scale}
}

// DrawText renders text with its bottom-left corner at (x, y), matching the
// baseline convention of most text APIs. Unknown runes leave a gap.
func DrawText(dst *image.RGBA, x, y int, text string, scale int, fg color.RGBA) {
	scale = max(1, scale)
	top := y - glyphHeight*scale
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if ok {
			for row, line := range glyph {
				for col := 0; col < glyphWidth; col++ {
					if line[col] != '1' {
						continue
					}
					fillBlock(dst, cx+col*scale, top+row*scale, scale, fg)
				}
			}
		}
		cx += glyphAdvance * scale
	}
}

func fillBlock(dst *image.RGBA, x, y, size int, c color.RGBA) {
	r := image.Rect(x, y, x+size, y+size).Intersect(dst.Rect)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			dst.SetRGBA(px, py, c)
		}
	}
}

// FillCircle paints a solid disc of radius r centred at c.
func FillCircle(dst *image.RGBA, c image.Point, r int, col color.RGBA) {
	box := image.Rect(c.X-r, c.Y-r, c.X+r+1, c.Y+r+1).Intersect(dst.Rect)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			dx, dy := x-c.X, y-c.Y
			if dx*dx+dy*dy <= r*r {
				dst.SetRGBA(x, y, col)
			}
		}
	}
}
