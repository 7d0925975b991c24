// Package mainwindow provides the control window and the frame preview window.
package mainwindow

import (
	"context"
	"fmt"
	"path/filepath"

	"symbol-spotter/internal/app"
	"symbol-spotter/internal/bot"
	"symbol-spotter/internal/version"
	"symbol-spotter/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const appTitle = "Symbol Spotter"

// MainWindow holds the Start/Stop controls and owns the bot worker.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	logger  *zap.Logger

	frames    *canvas.FrameCanvas
	preview   fyne.Window
	worker    *bot.Worker
	stopPump  context.CancelFunc
	pumpDone  chan struct{}
	statusBar *widget.Label
	statsBar  *widget.Label
	startBtn  *widget.Button
	stopBtn   *widget.Button
}

// New creates the control window and the hidden preview window.
func New(fyneApp fyne.App, session *app.Session, logger *zap.Logger) *MainWindow {
	if logger == nil {
		logger = zap.NewNop()
	}
	mw := &MainWindow{
		Window:  fyneApp.NewWindow(appTitle),
		app:     fyneApp,
		session: session,
		logger:  logger,
		frames:  canvas.NewFrameCanvas(),
	}

	mw.setupUI()
	mw.setupPreview()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.SetCloseIntercept(func() {
		mw.onStop()
		mw.app.Quit()
	})
	return mw
}

// setupUI creates the control layout.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel(mw.session.Status())
	mw.statusBar.Wrapping = fyne.TextWrapWord
	mw.statsBar = widget.NewLabel("")
	mw.updateStats()

	mw.startBtn = widget.NewButton("Start", mw.onStart)
	mw.startBtn.Importance = widget.HighImportance
	mw.stopBtn = widget.NewButton("Stop", mw.onStop)
	mw.stopBtn.Disable()

	previewBtn := widget.NewButton("Preview", func() { mw.preview.Show() })

	content := container.NewVBox(
		container.NewPadded(mw.statusBar),
		container.NewGridWithColumns(3, mw.startBtn, mw.stopBtn, previewBtn),
		widget.NewSeparator(),
		mw.statsBar,
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(360, 180))
}

// setupPreview creates the window that mirrors the captured frame and the
// highlight drawn over the answer box.
func (mw *MainWindow) setupPreview() {
	mw.preview = mw.app.NewWindow(appTitle + " - Preview")
	regions := widget.NewCheck("Show regions", mw.frames.SetShowRegions)
	regions.SetChecked(mw.frames.ShowRegions())

	mw.preview.SetContent(container.NewBorder(nil, regions, nil, nil, mw.frames.Object()))
	mw.preview.Resize(fyne.NewSize(800, 480))
	mw.preview.SetCloseIntercept(func() { mw.preview.Hide() })
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	botMenu := fyne.NewMenu("Bot",
		fyne.NewMenuItem("Start", mw.onStart),
		fyne.NewMenuItem("Stop", mw.onStop),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Counters", func() {
			mw.session.ResetStats()
			mw.updateStats()
		}),
	)

	settingsMenu := fyne.NewMenu("Settings",
		fyne.NewMenuItem("Save Config", mw.onSaveConfig),
		fyne.NewMenuItem("Show Config Location", mw.onShowConfigPath),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(botMenu, settingsMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventStatusChanged, func(data interface{}) {
		if text, ok := data.(string); ok {
			mw.updateStatus(text)
		}
	})

	mw.session.On(app.EventStarted, func(interface{}) {
		mw.startBtn.Disable()
		mw.stopBtn.Enable()
	})

	mw.session.On(app.EventStopped, func(interface{}) {
		mw.startBtn.Enable()
		mw.stopBtn.Disable()
		mw.frames.Clear()
	})

	mw.session.On(app.EventAnswer, func(interface{}) {
		mw.updateStats()
	})

	mw.session.On(app.EventError, func(interface{}) {
		mw.updateStats()
		// A fatal start leaves the worker stopped without a Running status.
		if !mw.session.Running() {
			mw.startBtn.Enable()
			mw.stopBtn.Disable()
		}
	})

	mw.session.On(app.EventConfigChanged, func(interface{}) {
		if mw.worker != nil && mw.worker.Running() {
			mw.updateStatus("Config changed; restart the bot to apply it")
		}
	})
}

// onStart spawns the worker and the goroutine that forwards its status.
func (mw *MainWindow) onStart() {
	if mw.worker != nil {
		if mw.worker.Running() {
			return
		}
		// Collect a worker that died during startup.
		mw.onStop()
	}
	cfg := mw.session.CurrentConfig()
	factory := bot.NewFactory(cfg, mw.frames, mw.frames, mw.logger)
	mw.worker = bot.NewWorker(factory, bot.Options{
		TickDelay:    cfg.TickDelay(),
		ErrorBackoff: cfg.ErrorBackoff(),
	}, mw.logger)

	ctx, cancel := context.WithCancel(context.Background())
	mw.stopPump = cancel
	mw.pumpDone = make(chan struct{})
	go mw.pump(ctx, mw.worker, mw.pumpDone)

	if err := mw.worker.Start(context.Background()); err != nil {
		mw.updateStatus("Error: " + err.Error())
		return
	}
	mw.startBtn.Disable()
	mw.stopBtn.Enable()
}

// onStop requests cancellation and blocks until the worker has exited.
func (mw *MainWindow) onStop() {
	if mw.worker == nil {
		return
	}
	mw.worker.Stop()

	mw.stopPump()
	<-mw.pumpDone
	// The final status may still be unread.
	select {
	case st := <-mw.worker.Status():
		mw.session.Apply(st)
	default:
	}
	mw.worker = nil
	mw.startBtn.Enable()
	mw.stopBtn.Disable()
}

// pump forwards worker status updates into the session until ctx ends.
func (mw *MainWindow) pump(ctx context.Context, w *bot.Worker, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-w.Status():
			mw.session.Apply(st)
		}
	}
}

// updateStatus updates the status text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateStats() {
	s := mw.session.Stats()
	text := fmt.Sprintf("Answers: %d   Columns: %d   Errors: %d", s.Answers, s.Columns, s.Errors)
	if s.LastAnswer != "" {
		text += fmt.Sprintf("\nLast answer: %s at %s", s.LastAnswer, s.LastAt.Format("15:04:05"))
	}
	mw.statsBar.SetText(text)
}

func (mw *MainWindow) onSaveConfig() {
	if err := mw.session.SaveConfig(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Config saved")
}

func (mw *MainWindow) onShowConfigPath() {
	path := mw.session.CurrentConfig().Path()
	dialog.ShowInformation("Config", fmt.Sprintf("%s\n\nDirectory: %s", path, filepath.Dir(path)), mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Highlights the answer option for the symbol missing\n"+
			"from the question row.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
