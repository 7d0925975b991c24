package symbol

// Params holds the tunables for glyph extraction.
type Params struct {
	// BinaryThreshold splits dark glyph ink from the light background (0-255).
	BinaryThreshold float64
	// MaxForegroundRatio triggers a polarity flip when exceeded.
	MaxForegroundRatio float64

	// Contour area bounds, both exclusive.
	MinArea float64
	MaxArea float64

	// MaxReferenceSymbols caps the reference row (the A-E alphabet).
	MaxReferenceSymbols int

	// Question boxes must be roughly square and large enough to hold a glyph.
	BoxMinAspect float64
	BoxMaxAspect float64
	BoxMinArea   float64

	// InsetMargin is trimmed off each side of a question box to drop its outline.
	InsetMargin int

	// DebugDir, when set, receives PNG dumps of regions and glyph masks.
	DebugDir string
}

// DefaultParams returns extraction parameters tuned for the quiz theme.
func DefaultParams() Params {
	return Params{
		BinaryThreshold:    150,
		MaxForegroundRatio: 0.5,

		MinArea: 50,
		MaxArea: 5000,

		MaxReferenceSymbols: 5,

		BoxMinAspect: 0.5,
		BoxMaxAspect: 1.5,
		BoxMinArea:   500,

		InsetMargin: 5,
	}
}

// WithThreshold returns a copy of params with a custom binarization threshold.
func (p Params) WithThreshold(threshold float64) Params {
	p.BinaryThreshold = threshold
	return p
}

// WithAreaRange returns a copy of params with custom contour area bounds.
func (p Params) WithAreaRange(minArea, maxArea float64) Params {
	p.MinArea = minArea
	p.MaxArea = maxArea
	return p
}

// WithDebugDir returns a copy of params that dumps debug images into dir.
func (p Params) WithDebugDir(dir string) Params {
	p.DebugDir = dir
	return p
}
