// Package main provides the entry point for the Symbol Spotter application.
package main

import (
	"flag"
	"log"
	"time"

	"symbol-spotter/internal/app"
	"symbol-spotter/internal/config"
	"symbol-spotter/internal/logging"
	"symbol-spotter/internal/version"
	"symbol-spotter/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"
)

const (
	appID          = "io.github.symbolspotter"
	appTitle       = "Symbol Spotter"
	reloadInterval = 2 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to config.json (default: user config dir)")
	modelPath := flag.String("model", "", "Override the ONNX detection model path")
	debug := flag.Bool("debug", false, "Debug logging and debug image dumps")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s %s", appTitle, version.String())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *debug {
		cfg.Debug = true
	}

	logger, err := logging.NewLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("path", cfg.Path()),
		zap.String("model", cfg.ModelPath),
		zap.Float64("similarity_threshold", cfg.SimilarityThreshold),
		zap.Float64("change_threshold", cfg.ChangeThreshold))

	session := app.NewSession(cfg)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.SpotterTheme{})

	win := mainwindow.New(fyneApp, session, logger)

	watcher := app.NewConfigWatcher(session, reloadInterval, logger)
	logger.Info("watching config", zap.String("path", watcher.Path()))
	watcher.Start()
	defer watcher.Stop()

	win.ShowAndRun()
}
