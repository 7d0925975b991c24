package symbol

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func square(x, y, side int) []image.Point {
	return []image.Point{{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}}
}

func TestHuMoments_Square(t *testing.T) {
	hu := HuMoments(square(0, 0, 20))

	assert.InDelta(t, 1.0/6.0, hu[0], 1e-9)
	for i := 1; i < 7; i++ {
		assert.InDelta(t, 0, hu[i], 1e-12, "hu[%d]", i)
	}
}

func TestHuMoments_ScaleAndTranslationInvariant(t *testing.T) {
	tri := []image.Point{{0, 0}, {30, 0}, {10, 20}}
	big := []image.Point{{100, 50}, {190, 50}, {130, 110}}

	a, b := HuMoments(tri), HuMoments(big)
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-9, "hu[%d]", i)
	}
}

func TestHuMoments_Degenerate(t *testing.T) {
	assert.Equal(t, [7]float64{}, HuMoments(nil))
	assert.Equal(t, [7]float64{}, HuMoments([]image.Point{{0, 0}, {5, 5}}))
}

func TestLogHuMoments(t *testing.T) {
	out := LogHuMoments([7]float64{1.0 / 6.0, 0, -1e-3, 1e-3})

	assert.InDelta(t, -math.Log10(1.0/6.0+huEpsilon), out[0], 1e-12)
	assert.InDelta(t, 0, out[1], 1e-12)
	assert.InDelta(t, math.Log10(1e-3+huEpsilon), out[2], 1e-12)
	assert.InDelta(t, -math.Log10(1e-3+huEpsilon), out[3], 1e-12)
}

func TestProjections(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 4, 3))
	mask.Pix[0] = 255
	mask.Pix[1] = 255
	mask.Pix[4*2+3] = 255

	h, v := projections(mask)
	assert.Equal(t, []float64{2, 0, 1}, h)
	assert.Equal(t, []float64{1, 1, 0, 1}, v)
}
