package image

import (
	"image"
	"image/color"
	"image/draw"

	"symbol-spotter/pkg/geometry"
)

// letterPatterns contains 3x5 pixel patterns for option letters and the
// characters used in region labels. Each row holds 3 bits.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'?': {0b111, 0b001, 0b010, 0b000, 0b010},
}

// Box is one labeled rectangle to draw.
type Box struct {
	Rect  geometry.RectInt
	Label string
	Color color.RGBA
}

// Annotate returns an RGBA copy of frame with every box outlined and
// labeled above its top-left corner.
func Annotate(frame image.Image, boxes []Box, thickness int) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), frame, b.Min, draw.Src)

	for _, box := range boxes {
		DrawRect(out, box.Rect, box.Color, thickness)
		if box.Label != "" {
			scale := thickness + 1
			DrawLabel(out, box.Label, box.Rect.X, box.Rect.Y-6*scale, box.Color, scale)
		}
	}
	return out
}

// DrawRect outlines r on dst with a stroke of the given thickness drawn
// inward from the edge. Pixels outside dst are skipped.
func DrawRect(dst *image.RGBA, r geometry.RectInt, col color.RGBA, thickness int) {
	if r.Empty() {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	src := image.NewUniform(col)
	outer := r.Rect()
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+thickness),
		image.Rect(outer.Min.X, outer.Max.Y-thickness, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+thickness, outer.Max.Y),
		image.Rect(outer.Max.X-thickness, outer.Min.Y, outer.Max.X, outer.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// Tint blends col over r with the given opacity (0-1).
func Tint(dst *image.RGBA, r geometry.RectInt, col color.RGBA, opacity float64) {
	area := r.Rect().Intersect(dst.Bounds())
	if area.Empty() || opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			d := dst.RGBAAt(x, y)
			dst.SetRGBA(x, y, color.RGBA{
				R: mix(d.R, col.R, opacity),
				G: mix(d.G, col.G, opacity),
				B: mix(d.B, col.B, opacity),
				A: 255,
			})
		}
	}
}

func mix(dst, src uint8, alpha float64) uint8 {
	return uint8(float64(src)*alpha + float64(dst)*(1-alpha) + 0.5)
}

// DrawLabel draws text in the 3x5 pixel font with its top-left corner at
// (x, y). Unsupported characters leave a blank cell.
func DrawLabel(dst *image.RGBA, label string, x, y int, col color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	bounds := dst.Bounds()
	for i, ch := range label {
		if ch >= 'a' && ch <= 'z' {
			ch = ch - 'a' + 'A'
		}
		pattern := letterPatterns[ch]
		charX := x + i*4*scale
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				cell := image.Rect(charX+c*scale, y+row*scale, charX+(c+1)*scale, y+(row+1)*scale)
				draw.Draw(dst, cell.Intersect(bounds), image.NewUniform(col), image.Point{}, draw.Src)
			}
		}
	}
}
