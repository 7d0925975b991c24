package canvas

import (
	"image"
	"image/color"
	"testing"

	"symbol-spotter/internal/detect"
	"symbol-spotter/internal/overlay"
	"symbol-spotter/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_NoFrame(t *testing.T) {
	fc := NewFrameCanvas()
	assert.Nil(t, fc.render())

	out := fc.draw(40, 30)
	assert.Equal(t, image.Rect(0, 0, 40, 30), out.Bounds())
}

func TestRender_HighlightAndRegions(t *testing.T) {
	fc := NewFrameCanvas()
	frame := image.NewRGBA(image.Rect(0, 0, 100, 80))
	fc.SetFrame(frame, detect.Regions{
		detect.LabelOptionB: geometry.NewRectInt(60, 40, 20, 20),
	})
	purple := color.RGBA{R: 120, B: 200, A: 255}
	fc.Paint(overlay.Highlight{Box: geometry.NewRectInt(10, 10, 30, 30), Color: purple})

	out := fc.render()
	require.NotNil(t, out)
	assert.Equal(t, purple, out.RGBAAt(10, 10))
	assert.Equal(t, regionColor, out.RGBAAt(60, 40))
	assert.NotEqual(t, color.RGBA{}, out.RGBAAt(25, 25), "interior is tinted")

	fc.Clear()
	fc.SetShowRegions(false)
	out = fc.render()
	assert.Equal(t, color.RGBA{}, out.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(60, 40))
	assert.False(t, fc.ShowRegions())
}

func TestShortLabel(t *testing.T) {
	assert.Equal(t, "R", shortLabel(detect.LabelReference))
	assert.Equal(t, "Q", shortLabel(detect.LabelQuestion))
	assert.Equal(t, "E", shortLabel(detect.LabelOptionE))
	assert.Equal(t, "?", shortLabel("banner"))
}
