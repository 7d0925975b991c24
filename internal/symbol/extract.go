package symbol

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	img "symbol-spotter/internal/image"
	"symbol-spotter/pkg/geometry"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Extractor turns cropped glyph rows into ordered descriptors.
type Extractor struct {
	params Params
	logger *zap.Logger
}

// NewExtractor creates an extractor. A nil logger disables logging.
func NewExtractor(params Params, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{params: params, logger: logger.Named("symbol")}
}

// Params returns the extraction parameters.
func (e *Extractor) Params() Params { return e.params }

// Extract segments region according to role. A region without usable glyphs
// yields an empty slice and no error.
func (e *Extractor) Extract(region image.Image, role Role) ([]Descriptor, error) {
	switch role {
	case RoleReference:
		return e.ExtractReference(region)
	case RoleQuestion:
		return e.ExtractQuestion(region)
	default:
		return nil, fmt.Errorf("unknown role %d", role)
	}
}

// candidate is a contour that survived filtering, before descriptor construction.
type candidate struct {
	index   int
	box     geometry.RectInt
	contour []image.Point
	area    float64
}

// ExtractReference finds bare glyphs, left to right, capped at MaxReferenceSymbols.
func (e *Extractor) ExtractReference(region image.Image) ([]Descriptor, error) {
	binary, err := e.binarize(region)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	defer binary.Close()
	e.dumpRegion(region, RoleReference)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	candidates := e.filterByArea(contours)
	sortByX(candidates)
	if len(candidates) > e.params.MaxReferenceSymbols {
		candidates = candidates[:e.params.MaxReferenceSymbols]
	}

	symbols := make([]Descriptor, 0, len(candidates))
	for i, c := range candidates {
		roi := binary.Region(c.box.Rect())
		mask, err := img.MatToGray(roi)
		roi.Close()
		if err != nil {
			return nil, fmt.Errorf("reference symbol %d: %w", i, err)
		}
		d, err := NewDescriptor(mask, c.box, c.contour)
		if err != nil {
			return nil, fmt.Errorf("reference symbol %d: %w", i, err)
		}
		symbols = append(symbols, d)
		e.dumpMask(mask, RoleReference, i)
		e.logger.Debug("reference symbol",
			zap.Int("index", i),
			zap.Stringer("box", c.box),
			zap.Float64("area", c.area))
	}
	return symbols, nil
}

// ExtractQuestion finds square answer boxes and isolates the glyph drawn in
// each one. Boxes whose inset collapses are skipped.
func (e *Extractor) ExtractQuestion(region image.Image) ([]Descriptor, error) {
	binary, err := e.binarize(region)
	if err != nil {
		return nil, fmt.Errorf("question: %w", err)
	}
	defer binary.Close()
	e.dumpRegion(region, RoleQuestion)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var boxes []candidate
	for _, c := range e.filterByArea(contours) {
		aspect := c.box.AspectRatio()
		if aspect < e.params.BoxMinAspect || aspect > e.params.BoxMaxAspect {
			continue
		}
		if c.area <= e.params.BoxMinArea {
			continue
		}
		boxes = append(boxes, c)
	}
	sortByX(boxes)

	symbols := make([]Descriptor, 0, len(boxes))
	for i, b := range boxes {
		inner := b.box.Inset(e.params.InsetMargin)
		if inner.Empty() {
			e.logger.Debug("inset collapsed", zap.Int("box", i), zap.Stringer("rect", b.box))
			continue
		}
		d, ok, err := e.isolateGlyph(binary, inner)
		if err != nil {
			return nil, fmt.Errorf("question box %d: %w", i, err)
		}
		if !ok {
			continue
		}
		symbols = append(symbols, d)
		e.dumpMask(d.mask, RoleQuestion, i)
		e.logger.Debug("question symbol",
			zap.Int("index", i),
			zap.Stringer("box", inner),
			zap.Float64("area", d.features.Area))
	}
	return symbols, nil
}

// isolateGlyph keeps only the largest blob inside inner, dropping any
// remnant of the box outline.
func (e *Extractor) isolateGlyph(binary gocv.Mat, inner geometry.RectInt) (Descriptor, bool, error) {
	roi := binary.Region(inner.Rect())
	sub := roi.Clone()
	roi.Close()
	defer sub.Close()
	e.normalizePolarity(&sub)

	contours := gocv.FindContours(sub, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return Descriptor{}, false, nil
	}

	largest, largestArea := 0, -1.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > largestArea {
			largest, largestArea = i, a
		}
	}

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), sub.Rows(), sub.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()
	gocv.DrawContours(&mask, contours, largest, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	clean := gocv.NewMat()
	defer clean.Close()
	gocv.BitwiseAnd(sub, mask, &clean)

	glyph, err := img.MatToGray(clean)
	if err != nil {
		return Descriptor{}, false, err
	}
	d, err := NewDescriptor(glyph, inner, contours.At(largest).ToPoints())
	if err != nil {
		return Descriptor{}, false, err
	}
	return d, true, nil
}

// binarize thresholds region so dark ink becomes white foreground, then
// flips polarity if foreground is the majority.
func (e *Extractor) binarize(region image.Image) (gocv.Mat, error) {
	if region == nil || region.Bounds().Empty() {
		return gocv.NewMat(), ErrEmptyRegion
	}
	gray, err := img.ToGrayMat(region)
	if err != nil {
		return gray, err
	}
	defer gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, float32(e.params.BinaryThreshold), 255, gocv.ThresholdBinaryInv)
	e.normalizePolarity(&binary)
	return binary, nil
}

func (e *Extractor) normalizePolarity(binary *gocv.Mat) {
	total := binary.Rows() * binary.Cols()
	if total == 0 {
		return
	}
	ratio := float64(gocv.CountNonZero(*binary)) / float64(total)
	if ratio > e.params.MaxForegroundRatio {
		gocv.BitwiseNot(*binary, binary)
	}
}

// filterByArea keeps contours whose area lies strictly inside (MinArea, MaxArea).
func (e *Extractor) filterByArea(contours gocv.PointsVector) []candidate {
	var out []candidate
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		area := gocv.ContourArea(pv)
		if area <= e.params.MinArea || area >= e.params.MaxArea {
			continue
		}
		out = append(out, candidate{
			index:   i,
			box:     geometry.FromImageRect(gocv.BoundingRect(pv)),
			contour: pv.ToPoints(),
			area:    area,
		})
	}
	return out
}

func sortByX(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].box.X < cs[j].box.X
	})
}
