package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"symbol-spotter/internal/logging"

	"go.uber.org/zap"
)

// Status texts shown by the control window.
const (
	StatusIdle    = "Bot is not running"
	StatusStarted = "Bot started"
	StatusStopped = "Bot stopped"
)

// ErrAlreadyRunning is returned by Start while a worker loop is active.
var ErrAlreadyRunning = errors.New("bot already running")

// Status is one update from the worker.
type Status struct {
	Message string
	Running bool
	// Fatal is set when the worker could not start.
	Fatal  bool
	Report *TickReport
}

// Options controls worker pacing.
type Options struct {
	TickDelay    time.Duration
	ErrorBackoff time.Duration
}

// DefaultOptions returns a 30ms tick delay and a 500ms error backoff.
func DefaultOptions() Options {
	return Options{TickDelay: 30 * time.Millisecond, ErrorBackoff: 500 * time.Millisecond}
}

// Worker runs ticks sequentially on one goroutine.
type Worker struct {
	factory Factory
	opts    Options
	logger  *zap.Logger

	status  chan Status
	stop    atomic.Bool
	running atomic.Bool
	ticks   atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a stopped worker. A nil logger disables logging.
func NewWorker(factory Factory, opts Options, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		factory: factory,
		opts:    opts,
		logger:  logger.Named("worker"),
		status:  make(chan Status, 1),
	}
}

// Status returns the update channel. Only the latest unread update is kept.
func (w *Worker) Status() <-chan Status { return w.status }

// Running reports whether the loop goroutine is alive.
func (w *Worker) Running() bool { return w.running.Load() }

// Ticks returns how many ticks have run across all starts.
func (w *Worker) Ticks() uint64 { return w.ticks.Load() }

// Start spawns the loop goroutine.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.stop.Store(false)
	w.running.Store(true)

	go w.run(ctx, w.done)
	return nil
}

// Stop asks the loop to exit and waits until it has released its resources.
// It is a no-op when the worker is not running.
func (w *Worker) Stop() {
	w.mu.Lock()
	done, cancel := w.done, w.cancel
	w.mu.Unlock()
	if done == nil {
		return
	}

	w.stop.Store(true)
	cancel()
	<-done

	w.mu.Lock()
	if w.done == done {
		w.done, w.cancel = nil, nil
	}
	w.mu.Unlock()
}

func (w *Worker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer w.running.Store(false)

	ticker, err := w.build(ctx)
	if err != nil {
		w.logger.Error("bot failed to start", zap.Error(err))
		w.publish(Status{Message: "Bot crashed: " + err.Error(), Fatal: true})
		return
	}
	w.logger.Info("bot started")
	w.publish(Status{Message: StatusStarted, Running: true})

	for !w.stop.Load() {
		report, err := w.safeTick(ticker)
		w.ticks.Add(1)

		delay := w.opts.TickDelay
		switch {
		case err != nil:
			w.logger.Warn("tick failed", zap.Error(err))
			w.publish(Status{Message: "Error: " + message(err), Running: true, Report: &report})
			delay = w.opts.ErrorBackoff
		case report.Highlighted:
			w.publish(Status{
				Message: fmt.Sprintf("Answer: %s (%dms)", report.Answer, report.Elapsed.Milliseconds()),
				Running: true,
				Report:  &report,
			})
		}

		if !sleep(ctx, delay) {
			break
		}
	}

	if err := ticker.Close(); err != nil {
		w.logger.Warn("cleanup failed", zap.Error(err))
	}
	w.logger.Info("bot stopped", zap.Uint64("ticks", w.ticks.Load()))
	w.publish(Status{Message: StatusStopped})
}

// build calls the factory, turning a panic into an error.
func (w *Worker) build(ctx context.Context) (t Ticker, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return w.factory(ctx)
}

// safeTick runs one tick, turning a panic into an error.
func (w *Worker) safeTick(t Ticker) (report TickReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logging.NewOperationError("tick", "", fmt.Errorf("panic: %v", r))
		}
	}()
	return t.Tick()
}

// publish replaces any unread status with s.
func (w *Worker) publish(s Status) {
	for {
		select {
		case w.status <- s:
			return
		default:
		}
		select {
		case <-w.status:
		default:
		}
	}
}

// message strips operation metadata from err for display.
func message(err error) string {
	var opErr *logging.OperationError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return err.Error()
}

// sleep waits for d or until ctx is done; it reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
