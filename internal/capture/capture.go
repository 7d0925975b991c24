// Package capture grabs frames from a display.
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// ErrNoDisplay is returned when the configured display does not exist.
var ErrNoDisplay = errors.New("no such display")

// Capturer supplies frames of a fixed screen area.
type Capturer interface {
	Capture() (*image.RGBA, error)
	Bounds() image.Rectangle
}

// ScreenCapturer captures a whole display.
type ScreenCapturer struct {
	display int
	logger  *zap.Logger

	mu     sync.Mutex
	bounds image.Rectangle
}

// NewScreenCapturer opens display (0 is the primary display).
func NewScreenCapturer(display int, logger *zap.Logger) (*ScreenCapturer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := screenshot.NumActiveDisplays()
	if display < 0 || display >= n {
		return nil, fmt.Errorf("display %d of %d: %w", display, n, ErrNoDisplay)
	}
	bounds := screenshot.GetDisplayBounds(display)
	logger = logger.Named("capture")
	logger.Info("display selected",
		zap.Int("display", display),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()))

	return &ScreenCapturer{display: display, logger: logger, bounds: bounds}, nil
}

// Capture grabs the display. Frame coordinates start at (0, 0) regardless
// of where the display sits on the virtual desktop.
func (c *ScreenCapturer) Capture() (*image.RGBA, error) {
	bounds := screenshot.GetDisplayBounds(c.display)
	if bounds.Empty() {
		return nil, fmt.Errorf("display %d: %w", c.display, ErrNoDisplay)
	}

	c.mu.Lock()
	if bounds.Size() != c.bounds.Size() {
		c.logger.Info("display size changed",
			zap.Stringer("from", c.bounds.Size()),
			zap.Stringer("to", bounds.Size()))
	}
	c.bounds = bounds
	c.mu.Unlock()

	frame, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", c.display, err)
	}
	if frame.Rect.Min != (image.Point{}) {
		frame.Rect = frame.Rect.Sub(frame.Rect.Min)
	}
	return frame, nil
}

// Bounds returns the display rectangle on the virtual desktop as of the
// last capture.
func (c *ScreenCapturer) Bounds() image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

// Static serves one fixed frame. It backs the offline tools and tests.
type Static struct {
	Frame *image.RGBA
	Err   error
}

// Capture returns the frame or the configured error.
func (s *Static) Capture() (*image.RGBA, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Frame == nil {
		return nil, ErrNoDisplay
	}
	return s.Frame, nil
}

// Bounds returns the frame bounds.
func (s *Static) Bounds() image.Rectangle {
	if s.Frame == nil {
		return image.Rectangle{}
	}
	return s.Frame.Bounds()
}

// FromImage copies any image into a Static capturer.
func FromImage(src image.Image) *Static {
	b := src.Bounds()
	frame := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			frame.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return &Static{Frame: frame}
}
