// Package colorutil provides shared color utilities for the highlight overlay.
package colorutil

import (
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Common colors used by the overlay and the control window.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// MaxChannelSum is the exclusive upper bound on R+G+B for a highlight color.
// Anything at or above it is too close to white to stand out on a light UI.
const MaxChannelSum = 600

// IsNearWhite reports whether c is too light to use as a highlight.
func IsNearWhite(c color.RGBA) bool {
	return int(c.R)+int(c.G)+int(c.B) >= MaxChannelSum
}

// RandomHighlight returns a random opaque color whose channel sum is below
// MaxChannelSum. Colors are drawn in HSV space so they stay saturated.
func RandomHighlight(rng *rand.Rand) color.RGBA {
	for {
		c := colorful.Hsv(rng.Float64()*360, 0.4+rng.Float64()*0.6, 0.3+rng.Float64()*0.7)
		r, g, b := c.Clamped().RGB255()
		out := color.RGBA{R: r, G: g, B: b, A: 255}
		if !IsNearWhite(out) {
			return out
		}
	}
}
