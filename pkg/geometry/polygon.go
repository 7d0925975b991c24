package geometry

import (
	"image"
	"math"
)

// Moments holds the spatial moments of a closed polygon up to third order.
// M00 is the enclosed area.
type Moments struct {
	M00, M10, M01      float64
	M20, M11, M02      float64
	M30, M21, M12, M03 float64
}

// PolygonMoments computes the moments of the region enclosed by a closed
// polygon using Green's theorem over its edges. The last vertex connects back
// to the first. Orientation does not matter; M00 is always non-negative.
// Fewer than three vertices, or a zero-area outline, yields zero moments.
func PolygonMoments(points []image.Point) Moments {
	if len(points) < 3 {
		return Moments{}
	}

	var a00, a10, a01, a20, a11, a02, a30, a21, a12, a03 float64

	prev := points[len(points)-1]
	xPrev, yPrev := float64(prev.X), float64(prev.Y)
	for _, p := range points {
		x, y := float64(p.X), float64(p.Y)
		xPrev2, yPrev2 := xPrev*xPrev, yPrev*yPrev
		x2, y2 := x*x, y*y

		cross := xPrev*y - x*yPrev
		xSum := xPrev + x
		ySum := yPrev + y

		a00 += cross
		a10 += cross * xSum
		a01 += cross * ySum
		a20 += cross * (xPrev*xSum + x2)
		a11 += cross * (xPrev*(ySum+yPrev) + x*(ySum+y))
		a02 += cross * (yPrev*ySum + y2)
		a30 += cross * xSum * (xPrev2 + x2)
		a03 += cross * ySum * (yPrev2 + y2)
		a21 += cross * (xPrev2*(3*yPrev+y) + 2*x*xPrev*ySum + x2*(yPrev+3*y))
		a12 += cross * (yPrev2*(3*xPrev+x) + 2*y*yPrev*xSum + y2*(xPrev+3*x))

		xPrev, yPrev = x, y
	}

	if math.Abs(a00) <= 1e-12 {
		return Moments{}
	}

	sign := 1.0
	if a00 < 0 {
		sign = -1.0
	}
	return Moments{
		M00: sign * a00 / 2,
		M10: sign * a10 / 6,
		M01: sign * a01 / 6,
		M20: sign * a20 / 12,
		M11: sign * a11 / 24,
		M02: sign * a02 / 12,
		M30: sign * a30 / 20,
		M21: sign * a21 / 60,
		M12: sign * a12 / 60,
		M03: sign * a03 / 20,
	}
}

// PolygonArea returns the area enclosed by a closed polygon.
func PolygonArea(points []image.Point) float64 {
	return PolygonMoments(points).M00
}

// NormalizedCentral returns the scale-normalized central moments
// (nu20, nu11, nu02, nu30, nu21, nu12, nu03). All zero for zero area.
func (m Moments) NormalizedCentral() (nu20, nu11, nu02, nu30, nu21, nu12, nu03 float64) {
	if m.M00 == 0 {
		return
	}
	cx := m.M10 / m.M00
	cy := m.M01 / m.M00

	mu20 := m.M20 - m.M10*cx
	mu11 := m.M11 - m.M10*cy
	mu02 := m.M02 - m.M01*cy
	mu30 := m.M30 - cx*(3*mu20+cx*m.M10)
	mu21 := m.M21 - cx*(2*mu11+cx*m.M01) - cy*mu20
	mu12 := m.M12 - cy*(2*mu11+cy*m.M10) - cx*mu02
	mu03 := m.M03 - cy*(3*mu02+cy*m.M01)

	inv := 1 / m.M00
	s2 := inv * inv
	s3 := s2 * math.Sqrt(inv)

	return mu20 * s2, mu11 * s2, mu02 * s2, mu30 * s3, mu21 * s3, mu12 * s3, mu03 * s3
}
