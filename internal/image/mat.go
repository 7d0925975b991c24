// Package image converts between Go images and OpenCV matrices and crops
// regions of interest out of captured frames.
package image

import (
	"errors"
	"fmt"
	"image"

	"symbol-spotter/pkg/geometry"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned when a conversion receives an image with no pixels.
var ErrEmptyImage = errors.New("empty image")

// ToMat converts a Go image to a 3-channel BGR Mat.
// The caller owns the returned Mat and must Close it.
func ToMat(src image.Image) (gocv.Mat, error) {
	if src == nil || src.Bounds().Empty() {
		return gocv.NewMat(), ErrEmptyImage
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Pixels are packed on the Go side; one cgo call per pixel is far too
	// slow for full-screen frames.
	pix := make([]byte, w*h*3)
	switch s := src.(type) {
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := s.Pix[s.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < w; x++ {
				i := (y*w + x) * 3
				pix[i+0] = row[x*4+2]
				pix[i+1] = row[x*4+1]
				pix[i+2] = row[x*4+0]
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				// 16-bit to 8-bit, BGR order for OpenCV
				i := (y*w + x) * 3
				pix[i+0] = uint8(b >> 8)
				pix[i+1] = uint8(g >> 8)
				pix[i+2] = uint8(r >> 8)
			}
		}
	}

	view, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap pixels: %w", err)
	}
	defer view.Close()
	return view.Clone(), nil
}

// ToGrayMat converts a Go image to a single-channel intensity Mat.
func ToGrayMat(src image.Image) (gocv.Mat, error) {
	if g, ok := src.(*image.Gray); ok {
		return GrayToMat(g)
	}
	bgr, err := ToMat(src)
	if err != nil {
		return bgr, err
	}
	defer bgr.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	return gray, nil
}

// GrayToMat copies an *image.Gray into a new CV_8UC1 Mat.
func GrayToMat(g *image.Gray) (gocv.Mat, error) {
	if g == nil || g.Bounds().Empty() {
		return gocv.NewMat(), ErrEmptyImage
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()

	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w:(y+1)*w], g.Pix[off:off+w])
	}

	view, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap gray pixels: %w", err)
	}
	defer view.Close()
	// Clone so the Mat owns its pixels instead of borrowing pix.
	return view.Clone(), nil
}

// MatToGray copies a single-channel 8-bit Mat into a new *image.Gray.
// Sub-region Mats are cloned first so the copied bytes are contiguous.
func MatToGray(m gocv.Mat) (*image.Gray, error) {
	if m.Empty() {
		return nil, ErrEmptyImage
	}
	if m.Channels() != 1 {
		return nil, fmt.Errorf("expected 1 channel, got %d", m.Channels())
	}
	owned := m.Clone()
	defer owned.Close()

	w, h := owned.Cols(), owned.Rows()
	out := image.NewGray(image.Rect(0, 0, w, h))
	copy(out.Pix, owned.ToBytes())
	return out, nil
}

// Crop extracts a region of a frame. The region is clamped to the frame;
// an empty intersection is an error.
func Crop(frame image.Image, region geometry.RectInt) (image.Image, error) {
	if frame == nil {
		return nil, ErrEmptyImage
	}
	clamped := region.Clamp(frame.Bounds())
	if clamped.Empty() {
		return nil, fmt.Errorf("region %s outside frame %v", region, frame.Bounds())
	}
	return imaging.Crop(frame, clamped.Rect()), nil
}
