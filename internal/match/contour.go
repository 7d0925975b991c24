package match

import (
	"image"
	"math"

	"symbol-spotter/internal/symbol"
	"symbol-spotter/pkg/geometry"
)

// huSkipEpsilon drops invariants too small to carry a stable log.
const huSkipEpsilon = 1e-5

// DegenerateContourDistance is reported when either contour cannot be compared.
const DegenerateContourDistance = 1.0

// ContourDistance compares two outlines by their Hu invariants using the I2
// metric: sum |sign(ha)*log10|ha| - sign(hb)*log10|hb||. Contours with fewer
// than three points or zero area score DegenerateContourDistance.
func ContourDistance(a, b []image.Point) float64 {
	if degenerate(a) || degenerate(b) {
		return DegenerateContourDistance
	}
	ha, hb := symbol.HuMoments(a), symbol.HuMoments(b)

	var sum float64
	for i := range ha {
		aa, ab := math.Abs(ha[i]), math.Abs(hb[i])
		if aa <= huSkipEpsilon || ab <= huSkipEpsilon {
			continue
		}
		ma := sign(ha[i]) * math.Log10(aa)
		mb := sign(hb[i]) * math.Log10(ab)
		sum += math.Abs(ma - mb)
	}
	return sum
}

func degenerate(contour []image.Point) bool {
	return len(contour) < 3 || geometry.PolygonArea(contour) == 0
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
