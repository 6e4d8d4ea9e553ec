// Package playback bridges a player.Controller, which must only ever be
// touched by one goroutine, to a single-threaded host.
//
// Each Session runs two goroutines. The worker owns the controller: it
// connects it, executes queued commands one at a time in the order they
// were sent, and closes it on shutdown. The listener relays controller
// events to the session's callback. Both hand their results to the host
// through a host.Dispatcher, so host state is only ever touched from host
// tasks.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/llehouerou/wavesconnect/internal/fifo"
	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/player"
)

const defaultTokenTimeout = 10 * time.Second

// Options configures a Session.
type Options struct {
	Factory    player.Factory
	Dispatcher host.Dispatcher
	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
	// TokenTimeout bounds each GetToken call. Defaults to 10s.
	TokenTimeout time.Duration
	// OnEvent, if set, is installed before the listener starts, so it also
	// sees events emitted while the controller connects.
	OnEvent func(EventObject)
}

// Session is the host's handle on a live controller.
// All methods are safe for concurrent use and none of them block on the
// controller.
type Session struct {
	queue        *fifo.Queue[message]
	dispatcher   host.Dispatcher
	logger       *slog.Logger
	tokenTimeout time.Duration

	// deviceID is written by the worker before Open returns.
	deviceID string
	callback atomic.Pointer[func(EventObject)]
	done     chan struct{}
}

type initResult struct {
	deviceID string
	err      error
}

// Open starts a session and blocks until the controller is connected.
// A connection failure is returned wrapped in ErrSetupFailed. If ctx ends
// first, Open returns and the worker discards the controller as soon as
// it has one.
func Open(ctx context.Context, cfg player.Config, opts Options) (*Session, error) {
	if opts.Factory == nil || opts.Dispatcher == nil {
		return nil, fmt.Errorf("%w: factory and dispatcher are required", ErrInvalidArgument)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tokenTimeout := opts.TokenTimeout
	if tokenTimeout <= 0 {
		tokenTimeout = defaultTokenTimeout
	}

	s := &Session{
		queue:        fifo.New[message](),
		dispatcher:   opts.Dispatcher,
		logger:       logger,
		tokenTimeout: tokenTimeout,
		done:         make(chan struct{}),
	}
	s.OnEvent(opts.OnEvent)

	initCh := make(chan initResult, 1)
	go s.runWorker(ctx, cfg, opts.Factory, initCh)

	select {
	case res := <-initCh:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSetupFailed, res.err)
		}
		return s, nil
	case <-ctx.Done():
		// The worker may still connect; its events must not reach the caller.
		s.OnEvent(nil)
		_ = s.queue.Close()
		return nil, fmt.Errorf("%w: %w", ErrSetupFailed, ctx.Err())
	}
}

// DeviceID returns the controller's device id, fixed at Open.
func (s *Session) DeviceID() string {
	return s.deviceID
}

// OnEvent sets the callback that receives this session's events on the
// host. It replaces any previous callback; nil removes it. Events that
// reach the host while no callback is set are dropped.
func (s *Session) OnEvent(fn func(EventObject)) {
	if fn == nil {
		s.callback.Store(nil)
		return
	}
	s.callback.Store(&fn)
}

// Send queues cmd and returns its result handle. If the worker has
// stopped, the handle is rejected with ErrWorkerUnavailable.
func (s *Session) Send(cmd Command) *Deferred[any] {
	return send[any](s, cmd)
}

func send[T any](s *Session, cmd Command) *Deferred[T] {
	if err := validate(cmd); err != nil {
		return rejected[T](s.dispatcher, err)
	}
	cmd = withDefaults(cmd)

	d := NewDeferred[T](s.dispatcher)
	if err := s.queue.Push(message{cmd: cmd, result: d}); err != nil {
		s.logger.Debug("command_rejected", "command", cmd.Name(), "error", ErrWorkerUnavailable)
		_ = d.Reject(ErrWorkerUnavailable)
	}
	return d
}

// Play resumes playback.
func (s *Session) Play() *Deferred[struct{}] {
	return send[struct{}](s, Play{})
}

// Pause pauses playback.
func (s *Session) Pause() *Deferred[struct{}] {
	return send[struct{}](s, Pause{})
}

// Seek moves to positionMs. Positions outside the uint32 range are
// rejected with ErrInvalidArgument.
func (s *Session) Seek(positionMs int64) *Deferred[struct{}] {
	if positionMs < 0 || positionMs > math.MaxUint32 {
		return rejected[struct{}](s.dispatcher,
			fmt.Errorf("%w: seek position %d out of range", ErrInvalidArgument, positionMs))
	}
	return send[struct{}](s, Seek{PositionMs: uint32(positionMs)})
}

// SetVolume sets the volume from a 0-100 percentage. Out of range values
// are clamped.
func (s *Session) SetVolume(percent float64) *Deferred[struct{}] {
	return s.SetVolumeRaw(player.PercentToRaw(percent))
}

// SetVolumeRaw sets the raw device volume.
func (s *Session) SetVolumeRaw(volume uint16) *Deferred[struct{}] {
	return send[struct{}](s, SetVolume{Volume: volume})
}

// LoadTrack loads uri from the start.
func (s *Session) LoadTrack(uri string, autoPlay bool) *Deferred[LoadResult] {
	return s.LoadTrackAt(uri, autoPlay, 0)
}

// LoadTrackAt loads uri starting at startMs.
func (s *Session) LoadTrackAt(uri string, autoPlay bool, startMs uint32) *Deferred[LoadResult] {
	return send[LoadResult](s, LoadTrack{URI: uri, AutoPlay: autoPlay, StartMs: startMs})
}

// Token requests an access token for scopes, or player.DefaultScopes if
// none are given. It never rejects because of the controller: a failed
// request fulfils with nil.
func (s *Session) Token(scopes ...string) *Deferred[*player.Token] {
	return send[*player.Token](s, GetToken{Scopes: scopes})
}

// Close asks the worker to stop after the commands already queued. It
// does not wait; use Done for that. It returns ErrClosed if the queue was
// already closed.
func (s *Session) Close() error {
	if err := s.queue.PushClose(message{close: true}); err != nil {
		return ErrClosed
	}
	return nil
}

// Done is closed once the worker has exited and the controller has been
// closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
