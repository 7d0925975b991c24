// Package bot wires capture, detection, resolution and highlighting into a
// tick, and runs ticks on a background worker.
package bot

import (
	"fmt"
	"image"
	"time"

	"symbol-spotter/internal/capture"
	"symbol-spotter/internal/detect"
	"symbol-spotter/internal/frame"
	img "symbol-spotter/internal/image"
	"symbol-spotter/internal/logging"
	"symbol-spotter/internal/overlay"
	"symbol-spotter/pkg/geometry"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Sink receives answer highlights.
type Sink interface {
	Highlight(box geometry.RectInt, label string) overlay.Highlight
	Clear()
	Close() error
}

// FrameSink receives every captured frame with the regions found in it.
type FrameSink interface {
	SetFrame(frame image.Image, regions detect.Regions)
}

// Deps are the collaborators a Bot drives. Frames is optional.
type Deps struct {
	Capturer   capture.Capturer
	Detector   detect.Detector
	Controller *frame.Controller
	Sink       Sink
	Frames     FrameSink
}

// TickReport describes one tick. Skipped is set when the tick ended early
// without an error.
type TickReport struct {
	Tick        uint64
	Skipped     string
	Outcome     frame.Outcome
	Answer      string
	Box         geometry.RectInt
	Highlighted bool
	Elapsed     time.Duration
}

// Bot runs single ticks. It is not safe for concurrent use.
type Bot struct {
	deps   Deps
	logger *zap.Logger
	tick   uint64
}

// New creates a bot. A nil logger disables logging.
func New(deps Deps, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{deps: deps, logger: logger.Named("bot")}
}

// Tick captures a frame, locates the rows, resolves the missing glyph and
// highlights its answer box. Errors are wrapped in a logging.OperationError.
func (b *Bot) Tick() (TickReport, error) {
	b.tick++
	report := TickReport{Tick: b.tick}
	start := time.Now()
	log := logging.WithOperation(b.logger, "tick", b.tick)

	shot, err := b.deps.Capturer.Capture()
	if err != nil {
		return report, b.fail(fmt.Errorf("capture: %w", err))
	}
	regions, err := b.deps.Detector.Detect(shot)
	if err != nil {
		return report, b.fail(fmt.Errorf("detect: %w", err))
	}
	if b.deps.Frames != nil {
		b.deps.Frames.SetFrame(shot, regions)
	}
	if !regions.Has(detect.LabelReference, detect.LabelQuestion) {
		report.Skipped = "reference or question not detected"
		return report, nil
	}

	refArea, err := img.Crop(shot, regions[detect.LabelReference])
	if err != nil {
		return report, b.fail(fmt.Errorf("reference crop: %w", err))
	}
	questionArea, err := img.Crop(shot, regions[detect.LabelQuestion])
	if err != nil {
		return report, b.fail(fmt.Errorf("question crop: %w", err))
	}

	outcome, err := b.deps.Controller.Process(refArea, questionArea)
	report.Outcome = outcome
	if err != nil {
		return report, b.fail(err)
	}
	if !outcome.Result.Resolved {
		report.Skipped = outcome.Result.Reason
		log.Debug("no decision",
			zap.String("reason", outcome.Result.Reason),
			zap.Int("references", outcome.ReferenceCount),
			zap.Int("questions", outcome.QuestionCount))
		return report, nil
	}

	report.Answer = outcome.Result.Letter()
	box, ok := regions[detect.OptionLabel(report.Answer)]
	if !ok {
		report.Skipped = "option box not detected"
		return report, nil
	}
	report.Box = box
	b.deps.Sink.Highlight(box, report.Answer)
	report.Highlighted = true
	report.Elapsed = time.Since(start)

	log.Info("answer",
		zap.String("letter", report.Answer),
		zap.Stringer("box", box),
		zap.Int("column", outcome.ColumnIndex),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (b *Bot) fail(err error) error {
	return logging.NewOperationError("tick", logging.TickID(b.tick), err)
}

// Close releases the detector and the highlight sink.
func (b *Bot) Close() error {
	var err error
	if b.deps.Sink != nil {
		err = multierr.Append(err, b.deps.Sink.Close())
	}
	if b.deps.Detector != nil {
		err = multierr.Append(err, b.deps.Detector.Close())
	}
	return err
}
