package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	img "symbol-spotter/internal/image"
	"symbol-spotter/pkg/geometry"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Params configures the YOLO detector.
type Params struct {
	ModelPath  string
	ClassNames []string
	InputSize  int
	Confidence float64
}

// DefaultParams returns parameters for the bundled quiz model.
func DefaultParams() Params {
	return Params{
		ModelPath:  "models/best.onnx",
		ClassNames: DefaultClassNames,
		InputSize:  640,
		Confidence: 0.8,
	}
}

// WithModel returns a copy of params using a different model file.
func (p Params) WithModel(path string) Params {
	p.ModelPath = path
	return p
}

// YOLODetector runs a YOLOv8 ONNX export through OpenCV's DNN module.
type YOLODetector struct {
	params Params
	labels []Label
	logger *zap.Logger

	mu  sync.Mutex
	net gocv.Net
}

// NewYOLODetector loads the model. Unknown class names are ignored at
// detection time.
func NewYOLODetector(params Params, logger *zap.Logger) (*YOLODetector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(params.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(params.ClassNames) == 0 {
		params.ClassNames = DefaultClassNames
	}

	net := gocv.ReadNetFromONNX(params.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to read %s", ErrModelUnavailable, params.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set target: %w", err)
	}

	labels := make([]Label, len(params.ClassNames))
	for i, name := range params.ClassNames {
		labels[i], _ = LabelForClass(name)
	}

	logger = logger.Named("detect")
	logger.Info("model loaded",
		zap.String("path", params.ModelPath),
		zap.Int("classes", len(labels)),
		zap.Int("input", params.InputSize))

	return &YOLODetector{params: params, labels: labels, logger: logger, net: net}, nil
}

// Detect runs the model on frame and returns the most confident box per label.
func (d *YOLODetector) Detect(frame image.Image) (Regions, error) {
	mat, err := img.ToMat(frame)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	size := d.params.InputSize
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	shape := out.Size()
	if len(shape) != 3 || shape[0] != 1 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}

	bounds := frame.Bounds()
	scaleX := float64(bounds.Dx()) / float64(size)
	scaleY := float64(bounds.Dy()) / float64(size)

	regions, err := parseYOLO(data, shape[1], shape[2], d.labels, d.params.Confidence, scaleX, scaleY, bounds.Size())
	if err != nil {
		return nil, err
	}
	d.logger.Debug("detected", zap.Int("regions", len(regions)))
	return regions, nil
}

// Close releases the network.
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// parseYOLO decodes a [1, 4+nc, n] YOLOv8 output laid out row-major: rows
// 0-3 hold cx, cy, w, h in model pixels, the rest hold class scores.
func parseYOLO(data []float32, rows, n int, labels []Label, confidence, scaleX, scaleY float64, frame image.Point) (Regions, error) {
	nc := rows - 4
	if nc <= 0 || len(data) < rows*n {
		return nil, fmt.Errorf("output of %d values does not match %dx%d", len(data), rows, n)
	}
	type best struct {
		score float32
		box   geometry.RectInt
	}
	found := make(map[Label]best)
	frameRect := image.Rectangle{Max: frame}

	for i := 0; i < n; i++ {
		cls, score := -1, float32(0)
		for c := 0; c < nc; c++ {
			if s := data[(4+c)*n+i]; s > score {
				cls, score = c, s
			}
		}
		if cls < 0 || float64(score) < confidence || cls >= len(labels) || labels[cls] == "" {
			continue
		}

		cx := float64(data[0*n+i]) * scaleX
		cy := float64(data[1*n+i]) * scaleY
		w := float64(data[2*n+i]) * scaleX
		h := float64(data[3*n+i]) * scaleY
		box := geometry.FromCorners(int(cx-w/2), int(cy-h/2), int(cx+w/2), int(cy+h/2)).Clamp(frameRect)
		if box.Empty() {
			continue
		}

		label := labels[cls]
		if prev, ok := found[label]; !ok || score > prev.score {
			found[label] = best{score: score, box: box}
		}
	}

	regions := make(Regions, len(found))
	for label, b := range found {
		regions[label] = b.box
	}
	return regions, nil
}
