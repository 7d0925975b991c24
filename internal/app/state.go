// Package app holds the session state shared between the worker and the UI.
package app

import (
	"strings"
	"sync"
	"time"

	"symbol-spotter/internal/bot"
	"symbol-spotter/internal/config"
)

// EventType identifies session events.
type EventType int

const (
	EventStatusChanged EventType = iota
	EventStarted
	EventStopped
	EventAnswer
	EventError
	EventConfigChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Stats are running counters for the current session.
type Stats struct {
	Answers    int
	Errors     int
	Columns    int
	LastAnswer string
	LastAt     time.Time
}

// Session tracks the worker's reported state across starts and stops.
type Session struct {
	mu sync.RWMutex

	Config  *config.Config
	status  string
	running bool
	stats   Stats

	listeners map[EventType][]EventListener
}

// NewSession creates an idle session using cfg.
func NewSession(cfg *config.Config) *Session {
	return &Session{
		Config:    cfg,
		status:    bot.StatusIdle,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Apply folds a worker status update into the session and emits the
// matching events. Listeners run on the caller's goroutine.
func (s *Session) Apply(st bot.Status) {
	s.mu.Lock()
	wasRunning := s.running
	s.status = st.Message
	s.running = st.Running
	isAnswer := st.Report != nil && st.Report.Highlighted
	isError := st.Fatal || strings.HasPrefix(st.Message, "Error: ")
	if isAnswer {
		s.stats.Answers++
		s.stats.LastAnswer = st.Report.Answer
		s.stats.LastAt = time.Now()
	}
	if isError {
		s.stats.Errors++
	}
	if st.Report != nil && st.Report.Outcome.ColumnIndex > s.stats.Columns {
		s.stats.Columns = st.Report.Outcome.ColumnIndex
	}
	s.mu.Unlock()

	s.Emit(EventStatusChanged, st.Message)
	switch {
	case st.Running && !wasRunning:
		s.Emit(EventStarted, nil)
	case !st.Running && wasRunning:
		s.Emit(EventStopped, nil)
	}
	if isAnswer {
		s.Emit(EventAnswer, st.Report.Answer)
	}
	if isError {
		s.Emit(EventError, st.Message)
	}
}

// CurrentConfig returns the config in effect, which may have been swapped by
// a reload.
func (s *Session) CurrentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Config
}

// Status returns the latest status text.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Running reports whether the worker last said it was running.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// ResetStats zeroes the counters.
func (s *Session) ResetStats() {
	s.mu.Lock()
	s.stats = Stats{}
	s.mu.Unlock()
}

// SaveConfig persists the config and emits EventConfigChanged.
func (s *Session) SaveConfig() error {
	cfg := s.CurrentConfig()
	if err := cfg.Save(); err != nil {
		return err
	}
	s.Emit(EventConfigChanged, cfg)
	return nil
}
