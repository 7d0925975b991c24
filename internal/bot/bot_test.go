package bot

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"symbol-spotter/internal/capture"
	"symbol-spotter/internal/detect"
	"symbol-spotter/internal/frame"
	"symbol-spotter/internal/logging"
	"symbol-spotter/internal/match"
	"symbol-spotter/internal/overlay"
	"symbol-spotter/internal/symbol"
	"symbol-spotter/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type stubExtractor struct {
	refErr error
}

func (s *stubExtractor) ExtractReference(image.Image) ([]symbol.Descriptor, error) {
	return nil, s.refErr
}

func (s *stubExtractor) ExtractQuestion(image.Image) ([]symbol.Descriptor, error) {
	return nil, nil
}

type stubResolver struct{ result match.Result }

func (s stubResolver) Resolve(_, _ []symbol.Descriptor) match.Result { return s.result }

type recordingSink struct {
	boxes    []geometry.RectInt
	labels   []string
	closeErr error
}

func (s *recordingSink) Highlight(box geometry.RectInt, label string) overlay.Highlight {
	s.boxes = append(s.boxes, box)
	s.labels = append(s.labels, label)
	return overlay.Highlight{Box: box, Label: label}
}

func (s *recordingSink) Clear()       {}
func (s *recordingSink) Close() error { return s.closeErr }

type closingDetector struct {
	detect.Static
	closeErr error
}

func (d *closingDetector) Close() error { return d.closeErr }

type frameRecorder struct{ frames int }

func (f *frameRecorder) SetFrame(image.Image, detect.Regions) { f.frames++ }

func screen() *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(im, im.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return im
}

func fullRegions() detect.Regions {
	return detect.Regions{
		detect.LabelReference: geometry.NewRectInt(10, 10, 200, 40),
		detect.LabelQuestion:  geometry.NewRectInt(10, 80, 200, 60),
		detect.LabelOptionA:   geometry.NewRectInt(10, 200, 40, 40),
		detect.LabelOptionC:   geometry.NewRectInt(110, 200, 40, 40),
	}
}

func newTestBot(ex frame.Extractor, result match.Result, regions detect.Regions) (*Bot, *recordingSink, *frameRecorder) {
	sink := &recordingSink{}
	frames := &frameRecorder{}
	b := New(Deps{
		Capturer:   &capture.Static{Frame: screen()},
		Detector:   &detect.Static{Regions: regions},
		Controller: frame.NewController(ex, stubResolver{result: result}, frame.DefaultChangeThreshold, zap.NewNop()),
		Sink:       sink,
		Frames:     frames,
	}, zap.NewNop())
	return b, sink, frames
}

func TestTick_HighlightsResolvedOption(t *testing.T) {
	b, sink, frames := newTestBot(&stubExtractor{}, match.Result{Index: 2, Resolved: true}, fullRegions())

	report, err := b.Tick()
	require.NoError(t, err)
	assert.True(t, report.Highlighted)
	assert.Equal(t, "C", report.Answer)
	assert.Equal(t, uint64(1), report.Tick)
	assert.Equal(t, []geometry.RectInt{fullRegions()[detect.LabelOptionC]}, sink.boxes)
	assert.Equal(t, []string{"C"}, sink.labels)
	assert.Equal(t, 1, frames.frames)
	assert.True(t, report.Outcome.ColumnChanged)
}

func TestTick_MissingRegionsSkips(t *testing.T) {
	regions := fullRegions()
	delete(regions, detect.LabelQuestion)
	b, sink, _ := newTestBot(&stubExtractor{}, match.Result{Index: 0, Resolved: true}, regions)

	report, err := b.Tick()
	require.NoError(t, err)
	assert.NotEmpty(t, report.Skipped)
	assert.Empty(t, sink.boxes)
}

func TestTick_MissingOptionBoxSkips(t *testing.T) {
	b, sink, _ := newTestBot(&stubExtractor{}, match.Result{Index: 4, Resolved: true}, fullRegions())

	report, err := b.Tick()
	require.NoError(t, err)
	assert.Equal(t, "E", report.Answer)
	assert.Equal(t, "option box not detected", report.Skipped)
	assert.False(t, report.Highlighted)
	assert.Empty(t, sink.boxes)
}

func TestTick_NoDecisionSkips(t *testing.T) {
	b, _, _ := newTestBot(&stubExtractor{}, match.Result{Index: -1, Reason: "empty input"}, fullRegions())

	report, err := b.Tick()
	require.NoError(t, err)
	assert.Equal(t, "empty input", report.Skipped)
}

func TestTick_CaptureErrorIsWrapped(t *testing.T) {
	glitch := errors.New("glitch")
	b, _, _ := newTestBot(&stubExtractor{}, match.Result{}, fullRegions())
	b.deps.Capturer = &capture.Static{Err: glitch}

	_, err := b.Tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, glitch)

	var opErr *logging.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "tick", opErr.Operation)
	assert.Equal(t, "1", opErr.TickID)
}

func TestTick_FailureThenRecovery(t *testing.T) {
	ex := &stubExtractor{refErr: errors.New("contours exploded")}
	b, sink, _ := newTestBot(ex, match.Result{Index: 0, Resolved: true}, fullRegions())

	_, err := b.Tick()
	require.Error(t, err)

	ex.refErr = nil
	report, err := b.Tick()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), report.Tick)
	assert.True(t, report.Highlighted)
	assert.Len(t, sink.boxes, 1)
}

func TestClose_CombinesErrors(t *testing.T) {
	sink := &recordingSink{closeErr: errors.New("overlay gone")}
	det := &closingDetector{closeErr: errors.New("net busy")}
	b := New(Deps{Detector: det, Sink: sink}, nil)

	err := b.Close()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}
