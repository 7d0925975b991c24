// Package frame runs one detection cycle: cache the reference row until it
// changes, extract the question row, and resolve the missing glyph.
package frame

import (
	"errors"
	"fmt"
	"image"
	"math"

	"symbol-spotter/internal/match"
	"symbol-spotter/internal/symbol"

	"go.uber.org/zap"
)

// ErrEmptyRegion is returned when a tick receives a region with no pixels.
var ErrEmptyRegion = errors.New("empty region")

// DefaultChangeThreshold is the signature difference above which the
// reference row is re-extracted.
const DefaultChangeThreshold = 10.0

// Extractor segments reference and question rows.
type Extractor interface {
	ExtractReference(region image.Image) ([]symbol.Descriptor, error)
	ExtractQuestion(region image.Image) ([]symbol.Descriptor, error)
}

// Resolver decides which reference glyph is missing from the question.
type Resolver interface {
	Resolve(reference, question []symbol.Descriptor) match.Result
}

// ReferenceSet is the cached reference alphabet with the signature of the
// region it came from. It is replaced whole, never edited.
type ReferenceSet struct {
	Symbols   []symbol.Descriptor
	Signature Signature
	Column    int
}

// Outcome reports what one Process call did.
type Outcome struct {
	Result         match.Result
	ColumnChanged  bool
	ColumnIndex    int
	ReferenceCount int
	QuestionCount  int
	// Difference against the cached signature; +Inf when nothing was cached.
	Difference float64
}

// Controller owns the reference cache. It is not safe for concurrent use;
// the bot worker drives it from a single goroutine.
type Controller struct {
	extractor       Extractor
	resolver        Resolver
	changeThreshold float64
	signer          func(image.Image) (Signature, error)
	logger          *zap.Logger

	refs    *ReferenceSet
	columns int
	ticks   int
}

// NewController creates a controller. A nil logger disables logging.
func NewController(extractor Extractor, resolver Resolver, changeThreshold float64, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		extractor:       extractor,
		resolver:        resolver,
		changeThreshold: changeThreshold,
		signer:          ComputeSignature,
		logger:          logger.Named("frame"),
	}
}

// Process runs one cycle over a reference region and a question region.
// A failed tick leaves the previous reference cache in place.
func (c *Controller) Process(reference, question image.Image) (Outcome, error) {
	c.ticks++
	out := Outcome{Difference: math.Inf(1)}

	sig, err := c.signer(reference)
	if err != nil {
		return out, fmt.Errorf("reference signature: %w", err)
	}
	if c.refs != nil {
		out.Difference = sig.Difference(c.refs.Signature)
	}

	if c.refs == nil || out.Difference > c.changeThreshold {
		symbols, err := c.extractor.ExtractReference(reference)
		if err != nil {
			return out, fmt.Errorf("reference extraction: %w", err)
		}
		c.columns++
		c.refs = &ReferenceSet{Symbols: symbols, Signature: sig, Column: c.columns}
		out.ColumnChanged = true
		c.logger.Info("column changed",
			zap.Int("column", c.columns),
			zap.Int("symbols", len(symbols)),
			zap.Float64("difference", out.Difference))
	}
	out.ColumnIndex = c.refs.Column
	out.ReferenceCount = len(c.refs.Symbols)

	questions, err := c.extractor.ExtractQuestion(question)
	if err != nil {
		return out, fmt.Errorf("question extraction: %w", err)
	}
	out.QuestionCount = len(questions)

	out.Result = c.resolver.Resolve(c.refs.Symbols, questions)
	return out, nil
}

// References returns the cached reference set, or nil before the first
// successful extraction.
func (c *Controller) References() *ReferenceSet { return c.refs }

// Ticks returns how many times Process has been called.
func (c *Controller) Ticks() int { return c.ticks }

// Columns returns how many reference rows have been extracted.
func (c *Controller) Columns() int { return c.columns }

// Reset drops the reference cache so the next tick re-extracts.
func (c *Controller) Reset() {
	c.refs = nil
}
