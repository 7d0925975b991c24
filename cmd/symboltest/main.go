// Command symboltest runs symbol extraction and missing-symbol resolution on
// saved crops or full screenshots and prints the results.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"symbol-spotter/internal/bot"
	"symbol-spotter/internal/capture"
	"symbol-spotter/internal/config"
	"symbol-spotter/internal/detect"
	img "symbol-spotter/internal/image"
	"symbol-spotter/internal/logging"
	"symbol-spotter/internal/match"
	"symbol-spotter/internal/overlay"
	"symbol-spotter/internal/symbol"
	"symbol-spotter/pkg/colorutil"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

func main() {
	refPath := flag.String("reference", "", "Reference row crop (PNG, JPEG, TIFF or BMP)")
	questionPath := flag.String("question", "", "Question row crop")
	framePath := flag.String("frame", "", "Full screenshot to run through the detector")
	modelPath := flag.String("model", "", "ONNX model for -frame (default from config)")
	configPath := flag.String("config", "", "Path to config.json")
	annotatePath := flag.String("annotate", "", "Write the annotated frame here (with -frame)")
	debugDir := flag.String("debug-dir", "", "Dump binarized regions and glyph masks here")
	debug := flag.Bool("debug", false, "Debug logging")
	flag.Parse()

	if *framePath == "" && (*refPath == "" || *questionPath == "") {
		fmt.Println("Usage: symboltest -reference <ref> -question <question>")
		fmt.Println("       symboltest -frame <screenshot> [-model best.onnx] [-annotate out.png]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *debugDir != "" {
		cfg.Debug = true
		cfg.DebugDir = *debugDir
	}

	logger, err := logging.NewLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *framePath != "" {
		err = runFrame(cfg, *framePath, *annotatePath, logger)
	} else {
		err = runCrops(cfg, *refPath, *questionPath, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// runCrops resolves the missing symbol from two pre-cropped rows.
func runCrops(cfg *config.Config, refPath, questionPath string, logger *zap.Logger) error {
	refImg, err := img.Load(refPath)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	questionImg, err := img.Load(questionPath)
	if err != nil {
		return fmt.Errorf("question: %w", err)
	}

	extractor := symbol.NewExtractor(bot.ExtractorParams(cfg), logger)
	refs, err := extractor.ExtractReference(refImg)
	if err != nil {
		return fmt.Errorf("reference extraction failed: %w", err)
	}
	questions, err := extractor.ExtractQuestion(questionImg)
	if err != nil {
		return fmt.Errorf("question extraction failed: %w", err)
	}

	printDescriptors("Reference", refs)
	printDescriptors("Question", questions)

	scorer := match.NewScorer(match.DefaultWeights())
	printScores(scorer, refs, questions)

	result := match.NewResolver(scorer, cfg.SimilarityThreshold, logger).Resolve(refs, questions)
	if !result.Resolved {
		fmt.Printf("\nNo decision: %s\n", result.Reason)
		return nil
	}
	fmt.Printf("\nMissing symbol: %s (%s)\n", result.Letter(), result.Reason)
	return nil
}

// runFrame runs one full tick over a screenshot.
func runFrame(cfg *config.Config, framePath, annotatePath string, logger *zap.Logger) error {
	frameImg, err := img.Load(framePath)
	if err != nil {
		return err
	}
	bounds := frameImg.Bounds()
	fmt.Printf("Loaded frame: %dx%d pixels\n", bounds.Dx(), bounds.Dy())

	detector, err := detect.NewYOLODetector(detect.Params{
		ModelPath:  cfg.ModelPath,
		ClassNames: cfg.ClassNames,
		InputSize:  cfg.InputSize,
		Confidence: cfg.Confidence,
	}, logger)
	if err != nil {
		return err
	}

	recorder := &frameRecorder{}
	b := bot.New(bot.Deps{
		Capturer:   capture.FromImage(frameImg),
		Detector:   detector,
		Controller: bot.NewController(cfg, logger),
		Sink:       overlay.NewHighlighter(overlay.Discard{}, cfg.HighlightDuration()),
		Frames:     recorder,
	}, logger)
	defer b.Close()

	report, err := b.Tick()
	if err != nil {
		return fmt.Errorf("tick failed: %w", err)
	}

	fmt.Printf("\nDetected %d regions:\n", len(recorder.regions))
	for label, r := range recorder.regions {
		fmt.Printf("  %-10s %s\n", label, r)
	}
	fmt.Printf("\nReference symbols: %d, question symbols: %d\n",
		report.Outcome.ReferenceCount, report.Outcome.QuestionCount)

	switch {
	case report.Highlighted:
		fmt.Printf("Answer: %s at %s (%dms)\n", report.Answer, report.Box, report.Elapsed.Milliseconds())
	case report.Answer != "":
		fmt.Printf("Answer: %s (%s)\n", report.Answer, report.Skipped)
	default:
		fmt.Printf("No answer: %s\n", report.Skipped)
	}

	if annotatePath == "" {
		return nil
	}
	var boxes []img.Box
	for label, r := range recorder.regions {
		boxes = append(boxes, img.Box{Rect: r, Label: strings.ToUpper(strings.TrimPrefix(string(label), "option_"))[:1], Color: colorutil.Green})
	}
	out := img.Annotate(frameImg, boxes, 2)
	if report.Highlighted {
		img.DrawRect(out, report.Box, colorutil.Black, 4)
	}
	if err := imaging.Save(out, annotatePath); err != nil {
		return fmt.Errorf("failed to save annotation: %w", err)
	}
	fmt.Printf("Annotated frame written to %s\n", annotatePath)
	return nil
}

type frameRecorder struct {
	regions detect.Regions
}

func (r *frameRecorder) SetFrame(_ image.Image, regions detect.Regions) { r.regions = regions }

func printDescriptors(title string, ds []symbol.Descriptor) {
	fmt.Printf("\n%s: %d symbols\n", title, len(ds))
	fmt.Printf("%-4s %-18s %8s %8s %10s\n", "#", "Box", "Aspect", "Area", "Hu[0]")
	for i, d := range ds {
		f := d.Features()
		fmt.Printf("%-4c %-18s %8.2f %8.0f %10.4f\n", 'A'+i, d.Box(), f.AspectRatio, f.Area, f.HuMoments[0])
	}
}

func printScores(scorer *match.Scorer, refs, questions []symbol.Descriptor) {
	if len(refs) == 0 || len(questions) == 0 {
		return
	}
	fmt.Printf("\nScores (question x reference, lower is closer):\n%-4s", "")
	for j := range refs {
		fmt.Printf(" %8c", 'A'+j)
	}
	fmt.Println()
	for i, q := range questions {
		fmt.Printf("%-4d", i)
		for _, r := range refs {
			fmt.Printf(" %8.3f", scorer.Score(q, r))
		}
		fmt.Println()
	}
}
