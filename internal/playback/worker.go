package playback

import (
	"context"
	"fmt"

	"github.com/llehouerou/wavesconnect/internal/player"
)

// runWorker owns the controller for its whole lifetime.
func (s *Session) runWorker(
	ctx context.Context,
	cfg player.Config,
	factory player.Factory,
	initCh chan<- initResult,
) {
	defer close(s.done)

	ctrl, err := factory.Connect(ctx, cfg)
	if err != nil {
		s.logger.Error("session_connect_failed", "error", err)
		initCh <- initResult{err: err}
		s.rejectQueued()
		return
	}

	s.deviceID = ctrl.DeviceID()
	go s.runListener(ctrl.Events())
	initCh <- initResult{deviceID: s.deviceID}
	s.logger.Info("session_started", "device_id", s.deviceID)

	s.serve(ctrl)

	// Nothing queued from here on will run.
	leftover := s.queue.Drain()
	if err := ctrl.Close(); err != nil {
		s.logger.Warn("controller_close_failed", "error", err)
	}
	for _, msg := range leftover {
		s.settle(msg, nil, ErrWorkerUnavailable)
	}
	s.logger.Info("session_worker_exit", "device_id", s.deviceID, "rejected", len(leftover))
}

// serve executes commands until Close, a closed queue, or a panic.
func (s *Session) serve(ctrl player.Controller) {
	for {
		msg, ok := s.queue.Pop()
		if !ok || msg.close {
			return
		}
		if !s.exec(ctrl, msg) {
			return
		}
	}
}

// exec runs one command and settles its result. It returns false if the
// command panicked, after which the controller is no longer trusted.
func (s *Session) exec(ctrl player.Controller, msg message) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("command_panicked", "command", msg.cmd.Name(), "panic", r)
			s.settle(msg, nil, fmt.Errorf("%w: %s: %v", ErrCommandPanicked, msg.cmd.Name(), r))
			ok = false
		}
	}()

	v, err := s.execute(ctrl, msg.cmd)
	if err != nil {
		s.logger.Warn("command_failed", "command", msg.cmd.Name(), "error", err)
	}
	s.settle(msg, v, err)
	return true
}

func (s *Session) execute(ctrl player.Controller, cmd Command) (any, error) {
	switch c := cmd.(type) {
	case Play:
		return nil, ctrl.Play()
	case Pause:
		return nil, ctrl.Pause()
	case Seek:
		return nil, ctrl.Seek(c.PositionMs)
	case SetVolume:
		return nil, ctrl.SetVolume(c.Volume)
	case LoadTrack:
		if err := ctrl.Load(c.URI, c.AutoPlay, c.StartMs); err != nil {
			return nil, err
		}
		return LoadResult(c), nil
	case GetToken:
		ctx, cancel := context.WithTimeout(context.Background(), s.tokenTimeout)
		defer cancel()
		tok, err := ctrl.Token(ctx, c.Scopes)
		if err != nil {
			s.logger.Warn("token_unavailable", "scopes", c.Scopes, "error", err)
			return (*player.Token)(nil), nil
		}
		return tok, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %T", ErrInvalidArgument, cmd)
	}
}

func (s *Session) settle(msg message, v any, err error) {
	if msg.result == nil {
		return
	}
	if serr := msg.result.settle(v, err); serr != nil {
		s.logger.Debug("result_not_delivered", "command", msg.cmd.Name(), "error", serr)
	}
}

// rejectQueued fails anything sent after a failed connect. Normally the
// queue is empty because Open never returned the session.
func (s *Session) rejectQueued() {
	for _, msg := range s.queue.Drain() {
		s.settle(msg, nil, ErrWorkerUnavailable)
	}
}
