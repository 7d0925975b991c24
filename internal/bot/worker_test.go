package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedTicker runs step for each tick; a nil step succeeds.
type scriptedTicker struct {
	mu     sync.Mutex
	calls  int
	step   func(n int) (TickReport, error)
	closed atomic.Bool
}

func (s *scriptedTicker) Tick() (TickReport, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if s.step == nil {
		return TickReport{Tick: uint64(n)}, nil
	}
	return s.step(n)
}

func (s *scriptedTicker) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *scriptedTicker) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastOptions() Options {
	return Options{TickDelay: time.Millisecond, ErrorBackoff: 2 * time.Millisecond}
}

func factoryFor(t Ticker) Factory {
	return func(context.Context) (Ticker, error) { return t, nil }
}

func TestWorker_FailedTickDoesNotStopLoop(t *testing.T) {
	ticker := &scriptedTicker{step: func(n int) (TickReport, error) {
		if n == 1 {
			return TickReport{}, errors.New("detector hiccup")
		}
		return TickReport{Tick: uint64(n)}, nil
	}}
	w := NewWorker(factoryFor(ticker), fastOptions(), zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	require.Eventually(t, func() bool { return ticker.count() >= 3 }, time.Second, time.Millisecond)
	w.Stop()
	assert.GreaterOrEqual(t, w.Ticks(), uint64(3))
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	ticker := &scriptedTicker{step: func(n int) (TickReport, error) {
		if n == 1 {
			panic("index out of range")
		}
		return TickReport{}, nil
	}}
	w := NewWorker(factoryFor(ticker), fastOptions(), nil)
	require.NoError(t, w.Start(context.Background()))

	require.Eventually(t, func() bool { return ticker.count() >= 2 }, time.Second, time.Millisecond)
	w.Stop()
}

func TestWorker_StopBlocksUntilCleanup(t *testing.T) {
	ticker := &scriptedTicker{}
	w := NewWorker(factoryFor(ticker), Options{TickDelay: time.Hour, ErrorBackoff: time.Hour}, nil)
	require.NoError(t, w.Start(context.Background()))
	require.Eventually(t, func() bool { return ticker.count() >= 1 }, time.Second, time.Millisecond)

	// The loop is asleep for an hour; Stop must cut the wait short.
	w.Stop()
	assert.True(t, ticker.closed.Load())
	assert.False(t, w.Running())

	select {
	case s := <-w.Status():
		assert.Equal(t, StatusStopped, s.Message)
		assert.False(t, s.Running)
	default:
		t.Fatal("no status after stop")
	}
}

func TestWorker_StartTwice(t *testing.T) {
	w := NewWorker(factoryFor(&scriptedTicker{}), fastOptions(), nil)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.ErrorIs(t, w.Start(context.Background()), ErrAlreadyRunning)
}

func TestWorker_RestartAfterStop(t *testing.T) {
	ticker := &scriptedTicker{}
	w := NewWorker(factoryFor(ticker), fastOptions(), nil)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	assert.False(t, w.Running())
}

func TestWorker_StopWithoutStart(t *testing.T) {
	w := NewWorker(factoryFor(&scriptedTicker{}), fastOptions(), nil)
	w.Stop()
	assert.False(t, w.Running())
}

func TestWorker_FactoryErrorIsFatal(t *testing.T) {
	w := NewWorker(func(context.Context) (Ticker, error) {
		return nil, errors.New("model file missing")
	}, fastOptions(), nil)
	require.NoError(t, w.Start(context.Background()))

	var s Status
	select {
	case s = <-w.Status():
	case <-time.After(time.Second):
		t.Fatal("no status")
	}
	assert.True(t, s.Fatal)
	assert.Equal(t, "Bot crashed: model file missing", s.Message)

	require.Eventually(t, func() bool { return !w.Running() }, time.Second, time.Millisecond)
	w.Stop()
	assert.Equal(t, uint64(0), w.Ticks())
}

func TestWorker_ErrorStatusIsReadable(t *testing.T) {
	ticker := &scriptedTicker{step: func(n int) (TickReport, error) {
		return TickReport{}, (&Bot{tick: 3}).fail(errors.New("capture: display lost"))
	}}
	w := NewWorker(factoryFor(ticker), Options{TickDelay: time.Hour, ErrorBackoff: time.Hour}, nil)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.Eventually(t, func() bool {
		select {
		case s := <-w.Status():
			return s.Message == "Error: capture: display lost"
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestPublish_LatestValueWins(t *testing.T) {
	w := NewWorker(nil, fastOptions(), nil)
	w.publish(Status{Message: "one"})
	w.publish(Status{Message: "two"})
	w.publish(Status{Message: "three"})

	s := <-w.Status()
	assert.Equal(t, "three", s.Message)
	select {
	case extra := <-w.Status():
		t.Fatalf("unexpected status %q", extra.Message)
	default:
	}
}
