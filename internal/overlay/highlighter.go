// Package overlay shows short-lived answer highlights.
package overlay

import (
	"image/color"
	"math/rand"
	"sync"
	"time"

	"symbol-spotter/pkg/colorutil"
	"symbol-spotter/pkg/geometry"
)

// DefaultDuration is how long a highlight stays up.
const DefaultDuration = 500 * time.Millisecond

// Highlight is one rectangle to draw, in frame coordinates.
type Highlight struct {
	Box   geometry.RectInt
	Color color.RGBA
	Label string
}

// Painter draws highlights. Paint replaces whatever was shown before.
type Painter interface {
	Paint(h Highlight)
	Clear()
}

// Highlighter paints a box in a fresh random color and clears it after a
// fixed duration unless another highlight arrives first.
type Highlighter struct {
	painter  Painter
	duration time.Duration

	mu         sync.Mutex
	rng        *rand.Rand
	timer      *time.Timer
	generation uint64
	current    *Highlight
	closed     bool
}

// NewHighlighter creates a highlighter. A non-positive duration uses DefaultDuration.
func NewHighlighter(painter Painter, duration time.Duration) *Highlighter {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Highlighter{
		painter:  painter,
		duration: duration,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Highlight shows box with label and re-arms the auto-clear timer.
func (h *Highlighter) Highlight(box geometry.RectInt, label string) Highlight {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return Highlight{}
	}

	hl := Highlight{Box: box, Color: colorutil.RandomHighlight(h.rng), Label: label}
	h.current = &hl
	h.generation++
	gen := h.generation

	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.duration, func() { h.expire(gen) })

	h.painter.Paint(hl)
	return hl
}

// expire clears the highlight only if nothing newer has been shown.
func (h *Highlighter) expire(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.generation || h.current == nil {
		return
	}
	h.current = nil
	h.painter.Clear()
}

// Clear removes any active highlight now.
func (h *Highlighter) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clearLocked()
}

func (h *Highlighter) clearLocked() {
	h.generation++
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	if h.current != nil {
		h.current = nil
		h.painter.Clear()
	}
}

// Active returns the highlight currently shown, if any.
func (h *Highlighter) Active() (Highlight, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return Highlight{}, false
	}
	return *h.current, true
}

// Close clears the highlight and ignores further calls.
func (h *Highlighter) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clearLocked()
	h.closed = true
	return nil
}

// Discard is a Painter that draws nothing.
type Discard struct{}

func (Discard) Paint(Highlight) {}
func (Discard) Clear()          {}
