package playback

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/player"
)

const testTimeout = 2 * time.Second

// manualHost queues tasks until the test runs them, which makes delivery
// order observable.
type manualHost struct {
	tasks   chan func()
	stopped atomic.Bool
}

func newManualHost() *manualHost {
	return &manualHost{tasks: make(chan func(), 1024)}
}

func (h *manualHost) Dispatch(task func()) error {
	if h.stopped.Load() {
		return host.ErrStopped
	}
	h.tasks <- task
	return nil
}

// runOne waits for the next task and runs it.
func (h *manualHost) runOne(t *testing.T) {
	t.Helper()
	select {
	case task := <-h.tasks:
		task()
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for host task")
	}
}

// pending returns the number of queued tasks.
func (h *manualHost) pending() int {
	return len(h.tasks)
}

// startLoop runs a host.Loop for the duration of the test.
func startLoop(t *testing.T) *host.Loop {
	t.Helper()
	l := host.NewLoop()
	go func() { _ = l.Run(context.Background()) }()
	t.Cleanup(func() {
		l.Stop()
		<-l.Done()
	})
	return l
}

// openSession opens a session over m and closes it when the test ends.
func openSession(t *testing.T, m *player.Mock, d host.Dispatcher) *Session {
	t.Helper()
	s, err := Open(context.Background(), player.Config{}, Options{
		Factory:    player.NewMockFactory(m),
		Dispatcher: d,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
		waitDone(t, s)
	})
	return s
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for session worker to exit")
	}
}

func await[T any](t *testing.T, d *Deferred[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	v, err := d.Await(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("timeout waiting for result")
	}
	return v, err
}

// collectEvents registers a callback that forwards every event object.
func collectEvents(s *Session) <-chan EventObject {
	ch := make(chan EventObject, 256)
	s.OnEvent(func(o EventObject) { ch <- o })
	return ch
}

func nextEvent(t *testing.T, ch <-chan EventObject) EventObject {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(testTimeout):
		t.Fatal("timeout waiting for event")
		return EventObject{}
	}
}
