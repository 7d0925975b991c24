// Package canvas shows the latest captured frame with detected regions and
// the current answer highlight.
package canvas

import (
	"image"
	"image/color"
	"sort"
	"strings"
	"sync"

	"symbol-spotter/internal/detect"
	img "symbol-spotter/internal/image"
	"symbol-spotter/internal/overlay"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"github.com/disintegration/imaging"
)

const (
	highlightStroke  = 4
	highlightOpacity = 0.35
	regionStroke     = 1
)

var (
	backColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	regionColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// FrameCanvas renders frames pushed by the bot worker. It implements
// overlay.Painter and bot.FrameSink; both may be called from any goroutine.
type FrameCanvas struct {
	mu          sync.Mutex
	frame       image.Image
	regions     detect.Regions
	highlight   *overlay.Highlight
	showRegions bool

	raster *fynecanvas.Raster
}

// NewFrameCanvas creates an empty canvas.
func NewFrameCanvas() *FrameCanvas {
	fc := &FrameCanvas{showRegions: true}
	fc.raster = fynecanvas.NewRaster(fc.draw)
	fc.raster.ScaleMode = fynecanvas.ImageScaleFastest
	fc.raster.SetMinSize(fyne.NewSize(480, 270))
	return fc
}

// Object returns the canvas object for embedding in layouts.
func (fc *FrameCanvas) Object() fyne.CanvasObject { return fc.raster }

// SetFrame replaces the displayed frame and its detected regions.
func (fc *FrameCanvas) SetFrame(frame image.Image, regions detect.Regions) {
	fc.mu.Lock()
	fc.frame = frame
	fc.regions = regions
	fc.mu.Unlock()
	fc.raster.Refresh()
}

// Paint shows h on top of the frame.
func (fc *FrameCanvas) Paint(h overlay.Highlight) {
	fc.mu.Lock()
	fc.highlight = &h
	fc.mu.Unlock()
	fc.raster.Refresh()
}

// Clear removes the highlight.
func (fc *FrameCanvas) Clear() {
	fc.mu.Lock()
	fc.highlight = nil
	fc.mu.Unlock()
	fc.raster.Refresh()
}

// SetShowRegions toggles the outlines of every detected region.
func (fc *FrameCanvas) SetShowRegions(show bool) {
	fc.mu.Lock()
	fc.showRegions = show
	fc.mu.Unlock()
	fc.raster.Refresh()
}

// ShowRegions reports whether region outlines are drawn.
func (fc *FrameCanvas) ShowRegions() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.showRegions
}

// draw is the raster generator; it fits the rendered frame into w x h.
func (fc *FrameCanvas) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	out := imaging.New(w, h, backColor)
	rendered := fc.render()
	if rendered == nil {
		return out
	}
	fitted := imaging.Fit(rendered, w, h, imaging.Box)
	pos := image.Pt((w-fitted.Bounds().Dx())/2, (h-fitted.Bounds().Dy())/2)
	return imaging.Paste(out, fitted, pos)
}

// render draws regions and the highlight over the frame at frame
// resolution. It returns nil before the first frame arrives.
func (fc *FrameCanvas) render() *image.RGBA {
	fc.mu.Lock()
	frame, regions, show := fc.frame, fc.regions, fc.showRegions
	var hl *overlay.Highlight
	if fc.highlight != nil {
		copied := *fc.highlight
		hl = &copied
	}
	fc.mu.Unlock()

	if frame == nil {
		return nil
	}

	var boxes []img.Box
	if show {
		labels := make([]string, 0, len(regions))
		for l := range regions {
			labels = append(labels, string(l))
		}
		sort.Strings(labels)
		for _, l := range labels {
			boxes = append(boxes, img.Box{
				Rect:  regions[detect.Label(l)],
				Label: shortLabel(detect.Label(l)),
				Color: regionColor,
			})
		}
	}
	out := img.Annotate(frame, boxes, regionStroke)

	if hl != nil {
		img.Tint(out, hl.Box, hl.Color, highlightOpacity)
		img.DrawRect(out, hl.Box, hl.Color, highlightStroke)
	}
	return out
}

// shortLabel abbreviates region labels for the pixel font.
func shortLabel(l detect.Label) string {
	switch l {
	case detect.LabelReference:
		return "R"
	case detect.LabelQuestion:
		return "Q"
	}
	if s := string(l); strings.HasPrefix(s, "option_") {
		return strings.ToUpper(strings.TrimPrefix(s, "option_"))
	}
	return "?"
}
