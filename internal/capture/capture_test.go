package capture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	var s Static
	_, err := s.Capture()
	assert.ErrorIs(t, err, ErrNoDisplay)
	assert.True(t, s.Bounds().Empty())

	s.Err = errors.New("glitch")
	_, err = s.Capture()
	assert.EqualError(t, err, "glitch")
}

func TestFromImage_Rebases(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 23))
	src.Set(11, 21, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	s := FromImage(src)
	frame, err := s.Capture()
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 3), s.Bounds())
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, frame.RGBAAt(1, 1))
}

func TestNewScreenCapturer_BadDisplay(t *testing.T) {
	_, err := NewScreenCapturer(-1, nil)
	assert.ErrorIs(t, err, ErrNoDisplay)
}
