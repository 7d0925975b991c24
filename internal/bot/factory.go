package bot

import (
	"context"
	"fmt"

	"symbol-spotter/internal/capture"
	"symbol-spotter/internal/config"
	"symbol-spotter/internal/detect"
	"symbol-spotter/internal/frame"
	"symbol-spotter/internal/match"
	"symbol-spotter/internal/overlay"
	"symbol-spotter/internal/symbol"

	"go.uber.org/zap"
)

// Ticker is what the worker drives.
type Ticker interface {
	Tick() (TickReport, error)
	Close() error
}

// Factory builds a Ticker when the worker starts. Returning an error is a
// fatal startup failure.
type Factory func(ctx context.Context) (Ticker, error)

// ExtractorParams derives symbol extraction parameters from cfg.
func ExtractorParams(cfg *config.Config) symbol.Params {
	params := symbol.DefaultParams().
		WithThreshold(cfg.BinaryThreshold).
		WithAreaRange(cfg.MinArea, cfg.MaxArea)
	if cfg.Debug && cfg.DebugDir != "" {
		params = params.WithDebugDir(cfg.DebugDir)
	}
	return params
}

// NewController builds the frame controller described by cfg.
func NewController(cfg *config.Config, logger *zap.Logger) *frame.Controller {
	extractor := symbol.NewExtractor(ExtractorParams(cfg), logger)
	resolver := match.NewResolver(match.NewScorer(match.DefaultWeights()), cfg.SimilarityThreshold, logger)
	return frame.NewController(extractor, resolver, cfg.ChangeThreshold, logger)
}

// NewFactory returns a Factory that opens the screen and loads the model
// described by cfg. frames may be nil.
func NewFactory(cfg *config.Config, painter overlay.Painter, frames FrameSink, logger *zap.Logger) Factory {
	return func(ctx context.Context) (Ticker, error) {
		capturer, err := capture.NewScreenCapturer(cfg.Display, logger)
		if err != nil {
			return nil, fmt.Errorf("screen capture: %w", err)
		}

		detector, err := detect.NewYOLODetector(detect.Params{
			ModelPath:  cfg.ModelPath,
			ClassNames: cfg.ClassNames,
			InputSize:  cfg.InputSize,
			Confidence: cfg.Confidence,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("detector: %w", err)
		}
		if err := ctx.Err(); err != nil {
			detector.Close()
			return nil, err
		}

		return New(Deps{
			Capturer:   capturer,
			Detector:   detector,
			Controller: NewController(cfg, logger),
			Sink:       overlay.NewHighlighter(painter, cfg.HighlightDuration()),
			Frames:     frames,
		}, logger), nil
	}
}
