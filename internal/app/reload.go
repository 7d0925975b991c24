package app

import (
	"os"
	"sync"
	"time"

	"symbol-spotter/internal/config"

	"go.uber.org/zap"
)

// ConfigWatcher polls the config file and reloads it into a Session when
// its modification time moves forward.
type ConfigWatcher struct {
	session  *Session
	path     string
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	modTime  time.Time
	stopCh   chan struct{}
	stopOnce *sync.Once
}

// NewConfigWatcher watches the file the session config was loaded from.
func NewConfigWatcher(session *Session, interval time.Duration, logger *zap.Logger) *ConfigWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &ConfigWatcher{
		session:  session,
		path:     session.Config.Path(),
		interval: interval,
		logger:   logger.Named("config"),
	}
	if info, err := os.Stat(w.path); err == nil {
		w.modTime = info.ModTime()
	}
	return w
}

// Path returns the watched file.
func (w *ConfigWatcher) Path() string { return w.path }

// Start begins polling in a background goroutine.
func (w *ConfigWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopCh = make(chan struct{})
	w.stopOnce = &sync.Once{}
	go w.loop(w.stopCh)
}

// Stop ends polling. It is safe to call more than once.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	stopCh, once := w.stopCh, w.stopOnce
	w.mu.Unlock()
	if once != nil {
		once.Do(func() { close(stopCh) })
	}
}

func (w *ConfigWatcher) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check reloads the config if the file changed since the last check and
// reports whether a reload happened. Invalid files are logged and skipped.
func (w *ConfigWatcher) Check() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	if !info.ModTime().After(w.modTime) {
		w.mu.Unlock()
		return false
	}
	w.modTime = info.ModTime()
	w.mu.Unlock()

	cfg, err := config.Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
		return false
	}

	w.session.mu.Lock()
	w.session.Config = cfg
	w.session.mu.Unlock()

	w.logger.Info("config reloaded", zap.String("path", w.path))
	w.session.Emit(EventConfigChanged, cfg)
	return true
}
