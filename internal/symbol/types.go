// Package symbol segments glyph rows into per-symbol descriptors.
package symbol

import (
	"errors"
	"image"

	"symbol-spotter/pkg/geometry"
)

// ErrEmptyRegion is returned when extraction receives a region with no pixels.
var ErrEmptyRegion = errors.New("empty region")

// Role selects the extraction rules for a region.
type Role int

const (
	// RoleReference is the row of bare reference glyphs (A-E).
	RoleReference Role = iota
	// RoleQuestion is the row of boxed glyphs with one blank.
	RoleQuestion
)

func (r Role) String() string {
	switch r {
	case RoleReference:
		return "reference"
	case RoleQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// Features is the numeric summary of a glyph.
type Features struct {
	// HuMoments are the seven Hu invariants after -sign(h)*log10(|h|+1e-10).
	HuMoments [7]float64

	// HorizontalProjection holds foreground pixel counts per mask row.
	HorizontalProjection []float64

	// VerticalProjection holds foreground pixel counts per mask column.
	VerticalProjection []float64

	// AspectRatio is box width over box height.
	AspectRatio float64

	// Area is the contour area in square pixels.
	Area float64
}

func (f Features) clone() Features {
	f.HorizontalProjection = append([]float64(nil), f.HorizontalProjection...)
	f.VerticalProjection = append([]float64(nil), f.VerticalProjection...)
	return f
}

// Descriptor is one segmented glyph. It is immutable: accessors hand out copies.
type Descriptor struct {
	mask     *image.Gray
	box      geometry.RectInt
	contour  []image.Point
	features Features
}

// NewDescriptor builds a descriptor and derives its features from the mask
// and contour. Both inputs are copied.
func NewDescriptor(mask *image.Gray, box geometry.RectInt, contour []image.Point) (Descriptor, error) {
	if mask == nil || mask.Bounds().Empty() {
		return Descriptor{}, ErrEmptyRegion
	}
	owned := image.NewGray(image.Rect(0, 0, mask.Bounds().Dx(), mask.Bounds().Dy()))
	for y := 0; y < owned.Rect.Dy(); y++ {
		src := mask.PixOffset(mask.Rect.Min.X, mask.Rect.Min.Y+y)
		copy(owned.Pix[y*owned.Stride:y*owned.Stride+owned.Rect.Dx()], mask.Pix[src:src+owned.Rect.Dx()])
	}
	pts := append([]image.Point(nil), contour...)

	return Descriptor{
		mask:     owned,
		box:      box,
		contour:  pts,
		features: computeFeatures(owned, box, pts),
	}, nil
}

// Mask returns a copy of the binary glyph image (foreground 255).
func (d Descriptor) Mask() *image.Gray {
	if d.mask == nil {
		return nil
	}
	out := image.NewGray(d.mask.Rect)
	copy(out.Pix, d.mask.Pix)
	return out
}

// Box returns the glyph's position in its source region.
func (d Descriptor) Box() geometry.RectInt { return d.box }

// Contour returns a copy of the glyph outline.
func (d Descriptor) Contour() []image.Point {
	return append([]image.Point(nil), d.contour...)
}

// Features returns a copy of the derived features.
func (d Descriptor) Features() Features { return d.features.clone() }
