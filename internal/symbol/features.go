package symbol

import (
	"image"
	"math"

	"symbol-spotter/pkg/geometry"

	"gonum.org/v1/gonum/floats"
)

// huEpsilon keeps log10 finite for vanishing invariants.
const huEpsilon = 1e-10

// HuMoments returns the seven raw Hu invariants of a closed contour.
// A degenerate contour (zero area) yields all zeros.
func HuMoments(contour []image.Point) [7]float64 {
	var hu [7]float64
	m := geometry.PolygonMoments(contour)
	if m.M00 == 0 {
		return hu
	}
	nu20, nu11, nu02, nu30, nu21, nu12, nu03 := m.NormalizedCentral()

	t0 := nu30 + nu12
	t1 := nu21 + nu03
	q0 := nu20 - nu02
	q1 := nu30 - 3*nu12
	q2 := 3*nu21 - nu03

	hu[0] = nu20 + nu02
	hu[1] = q0*q0 + 4*nu11*nu11
	hu[2] = q1*q1 + q2*q2
	hu[3] = t0*t0 + t1*t1

	n4 := t0*t0 - 3*t1*t1
	n3 := 3*t0*t0 - t1*t1
	hu[4] = q1*t0*n4 + q2*t1*n3
	hu[5] = q0*(t0*t0-t1*t1) + 4*nu11*t0*t1
	hu[6] = q2*t0*n4 - q1*t1*n3
	return hu
}

// LogHuMoments applies sign-preserving log compression to Hu invariants.
func LogHuMoments(hu [7]float64) [7]float64 {
	var out [7]float64
	for i, h := range hu {
		sign := 0.0
		switch {
		case h > 0:
			sign = 1
		case h < 0:
			sign = -1
		}
		out[i] = -sign * math.Log10(math.Abs(h)+huEpsilon)
	}
	return out
}

// projections returns per-row and per-column foreground counts of a binary mask.
func projections(mask *image.Gray) (horizontal, vertical []float64) {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	horizontal = make([]float64, h)
	vertical = make([]float64, w)
	row := make([]float64, w)
	for y := 0; y < h; y++ {
		off := mask.PixOffset(mask.Rect.Min.X, mask.Rect.Min.Y+y)
		for x := 0; x < w; x++ {
			row[x] = float64(mask.Pix[off+x])
		}
		horizontal[y] = floats.Sum(row)
		floats.Add(vertical, row)
	}
	floats.Scale(1.0/255.0, horizontal)
	floats.Scale(1.0/255.0, vertical)
	return horizontal, vertical
}

func computeFeatures(mask *image.Gray, box geometry.RectInt, contour []image.Point) Features {
	h, v := projections(mask)
	return Features{
		HuMoments:            LogHuMoments(HuMoments(contour)),
		HorizontalProjection: h,
		VerticalProjection:   v,
		AspectRatio:          box.AspectRatio(),
		Area:                 geometry.PolygonArea(contour),
	}
}
