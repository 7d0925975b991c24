// Package match scores glyph similarity and infers which reference glyph is
// absent from a question row.
package match

import (
	"fmt"
	"image"
	"math"

	img "symbol-spotter/internal/image"
	"symbol-spotter/internal/symbol"

	"gocv.io/x/gocv"
)

// CanvasSize is the side of the square canvas masks are resampled to.
const CanvasSize = 64

// Weights blends the three sub-scores.
type Weights struct {
	Pixel    float64
	Contour  float64
	Template float64
}

// DefaultWeights returns the 0.5/0.3/0.2 pixel/contour/template blend.
func DefaultWeights() Weights {
	return Weights{Pixel: 0.5, Contour: 0.3, Template: 0.2}
}

// Breakdown holds the individual sub-scores of a comparison.
type Breakdown struct {
	Pixel    float64
	Contour  float64
	Template float64
	Total    float64
}

// Scorer measures how alike two descriptors are. Lower is more similar.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score returns the blended distance between a and b, or NaN when the
// masks cannot be compared.
func (s *Scorer) Score(a, b symbol.Descriptor) float64 {
	bd, err := s.Compare(a, b)
	if err != nil {
		return math.NaN()
	}
	return bd.Total
}

// Compare returns every sub-score along with the weighted total.
func (s *Scorer) Compare(a, b symbol.Descriptor) (Breakdown, error) {
	ca, err := canvas(a.Mask())
	if err != nil {
		return Breakdown{}, fmt.Errorf("first mask: %w", err)
	}
	defer ca.Close()
	cb, err := canvas(b.Mask())
	if err != nil {
		return Breakdown{}, fmt.Errorf("second mask: %w", err)
	}
	defer cb.Close()

	var bd Breakdown
	bd.Pixel = pixelDistance(ca, cb)
	bd.Contour = ContourDistance(a.Contour(), b.Contour())
	if bd.Pixel == 0 {
		bd.Template = 0
	} else {
		bd.Template = templateDistance(ca, cb)
	}
	bd.Total = s.weights.Pixel*bd.Pixel + s.weights.Contour*bd.Contour + s.weights.Template*bd.Template
	return bd, nil
}

// canvas resamples a mask onto the fixed comparison canvas.
func canvas(mask *image.Gray) (gocv.Mat, error) {
	m, err := img.GrayToMat(mask)
	if err != nil {
		return m, err
	}
	defer m.Close()

	out := gocv.NewMat()
	gocv.Resize(m, &out, image.Pt(CanvasSize, CanvasSize), 0, 0, gocv.InterpolationLinear)
	return out, nil
}

// pixelDistance is the mean absolute intensity difference scaled to [0, 1].
func pixelDistance(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	var sum float64
	for _, v := range diff.ToBytes() {
		sum += float64(v)
	}
	return sum / (CanvasSize * CanvasSize * 255)
}

// templateDistance is one minus the peak normalized correlation coefficient.
// Flat canvases have no defined correlation and count as uncorrelated.
func templateDistance(a, b gocv.Mat) float64 {
	result := gocv.NewMat()
	defer result.Close()
	noMask := gocv.NewMat()
	defer noMask.Close()

	gocv.MatchTemplate(a, b, &result, gocv.TmCcoeffNormed, noMask)
	_, maxVal, _, _ := gocv.MinMaxLoc(result)
	peak := float64(maxVal)
	if math.IsNaN(peak) || math.IsInf(peak, 0) {
		peak = 0
	}
	return 1.0 - peak
}
