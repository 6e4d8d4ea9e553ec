package connect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/playback"
	"github.com/llehouerou/wavesconnect/internal/player"
)

const testTimeout = 2 * time.Second

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	loop    *host.Loop
	mock    *player.Mock
	factory *player.MockFactory
	dev     *Device
	events  chan Event
}

// newFixture builds a device over a mock controller on a running loop.
// Every event the device emits is forwarded to f.events.
func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	loop := host.NewLoop()
	go func() { _ = loop.Run(context.Background()) }()
	t.Cleanup(func() {
		loop.Stop()
		<-loop.Done()
	})

	f := &fixture{
		loop:   loop,
		mock:   player.NewMock("dev"),
		events: make(chan Event, 256),
	}
	f.factory = player.NewMockFactory(f.mock)
	opts.Factory = f.factory
	opts.Dispatcher = loop
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	f.dev = New(opts)
	f.onHost(t, func() {
		f.dev.On(AnyEvent, func(e Event) { f.events <- e })
	})

	t.Cleanup(func() {
		var closeErr error
		f.onHost(t, func() { closeErr = f.dev.Close() })
		if closeErr == nil {
			waitClosed(t, f.dev.Done())
		}
	})
	return f
}

// onHost runs fn as a host task and waits for it.
func (f *fixture) onHost(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, f.loop.Dispatch(func() {
		defer close(done)
		fn()
	}))
	waitClosed(t, done)
}

// connect connects the device and returns its device id.
func (f *fixture) connect(t *testing.T) string {
	t.Helper()
	var out *playback.Deferred[string]
	f.onHost(t, func() { out = f.dev.Connect(context.Background(), player.Config{}) })
	id, err := await(t, out)
	require.NoError(t, err)
	return id
}

// next returns the next event named name, skipping others.
func (f *fixture) next(t *testing.T, name string) Event {
	t.Helper()
	deadline := time.After(testTimeout)
	for {
		select {
		case e := <-f.events:
			if e.Event == name {
				return e
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", name)
			return Event{}
		}
	}
}

func (f *fixture) status(t *testing.T) Status {
	t.Helper()
	var st Status
	f.onHost(t, func() { st = f.dev.Status() })
	return st
}

// callsOf returns the recorded controller calls for op.
func (f *fixture) callsOf(op string) []player.Call {
	var out []player.Call
	for _, c := range f.mock.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(testTimeout):
		t.Fatal("timeout")
	}
}

func await[T any](t *testing.T, d *playback.Deferred[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	v, err := d.Await(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("timeout waiting for result")
	}
	return v, err
}
