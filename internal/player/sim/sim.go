// Package sim provides an in-process controller that behaves like a remote
// device without touching the network. It backs the binary's default mode
// and integration tests.
package sim

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/wavesconnect/internal/player"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("sim: controller closed")
	// ErrNoTrack is returned by Play and Seek before anything is loaded.
	ErrNoTrack = errors.New("sim: no track loaded")
)

const tokenLifetime = 3600 // seconds

// Factory connects simulated controllers.
type Factory struct {
	// ConnectDelay simulates session negotiation.
	ConnectDelay time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Connect validates cfg, waits ConnectDelay and returns a controller that
// has already announced a remote session.
func (f Factory) Connect(ctx context.Context, cfg player.Config) (player.Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f.ConnectDelay > 0 {
		t := time.NewTimer(f.ConnectDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	now := f.Now
	if now == nil {
		now = time.Now
	}
	c := New(cfg, now)
	c.emit(player.SessionConnectedEvent{
		ConnectionID: c.connectionID,
		UserName:     cfg.Credentials.Username,
	})
	c.emit(player.SessionClientChangedEvent{
		ClientID:        uuid.NewString(),
		ClientName:      "wavesconnect-sim",
		ClientBrandName: "sim",
		ClientModelName: cfg.BackendOrDefault(),
	})
	return c, nil
}

// Controller is a simulated device. Like a real controller it is not safe
// for concurrent use; only Events may be read from another goroutine.
type Controller struct {
	cfg          player.Config
	deviceID     string
	connectionID string
	stream       *player.Stream
	now          func() time.Time

	state      player.State
	track      string
	requestID  uint64
	positionMs uint32
	startedAt  time.Time
	volume     uint16
	closed     bool
}

// New creates a controller without announcing a session.
// The device id is derived from the device name and username, so it is
// stable across restarts.
func New(cfg player.Config, now func() time.Time) *Controller {
	seed := cfg.DeviceName + "\x00" + cfg.Credentials.Username
	return &Controller{
		cfg:          cfg,
		deviceID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		connectionID: uuid.NewString(),
		stream:       player.NewStream(),
		now:          now,
		volume:       player.MaxVolume / 2,
	}
}

func (c *Controller) emit(ev player.Event) {
	_ = c.stream.Emit(ev)
}

func (c *Controller) ref() player.TrackRef {
	return player.TrackRef{PlayRequestID: c.requestID, TrackID: c.track}
}

// position returns the current playback position.
func (c *Controller) position() uint32 {
	if c.state != player.Playing {
		return c.positionMs
	}
	elapsed := c.now().Sub(c.startedAt).Milliseconds()
	return c.positionMs + uint32(max(elapsed, 0))
}

func (c *Controller) Play() error {
	if c.closed {
		return ErrClosed
	}
	if c.track == "" {
		return ErrNoTrack
	}
	if c.state == player.Playing {
		return nil
	}
	c.state = player.Playing
	c.startedAt = c.now()
	c.emit(player.PlayingEvent{TrackRef: c.ref(), PositionMs: c.positionMs})
	return nil
}

func (c *Controller) Pause() error {
	if c.closed {
		return ErrClosed
	}
	if !c.state.CanPause() {
		return nil
	}
	c.positionMs = c.position()
	c.state = player.Paused
	c.emit(player.PausedEvent{TrackRef: c.ref(), PositionMs: c.positionMs})
	return nil
}

func (c *Controller) Seek(positionMs uint32) error {
	if c.closed {
		return ErrClosed
	}
	if c.track == "" {
		return ErrNoTrack
	}
	c.positionMs = positionMs
	c.startedAt = c.now()
	c.emit(player.SeekedEvent{TrackRef: c.ref(), PositionMs: positionMs})
	return nil
}

func (c *Controller) SetVolume(volume uint16) error {
	if c.closed {
		return ErrClosed
	}
	c.volume = volume
	c.emit(player.VolumeChangedEvent{Volume: volume})
	return nil
}

func (c *Controller) Load(uri string, autoPlay bool, startMs uint32) error {
	if c.closed {
		return ErrClosed
	}
	c.requestID++
	c.track = uri
	c.positionMs = startMs
	c.emit(player.LoadingEvent{TrackRef: c.ref(), PositionMs: startMs})
	c.emit(player.TrackChangedEvent{AudioItem: uri})
	if autoPlay {
		c.state = player.Playing
		c.startedAt = c.now()
		c.emit(player.PlayingEvent{TrackRef: c.ref(), PositionMs: startMs})
	} else {
		c.state = player.Paused
		c.emit(player.PausedEvent{TrackRef: c.ref(), PositionMs: startMs})
	}
	return nil
}

// Token issues a fake bearer token valid for an hour.
func (c *Controller) Token(ctx context.Context, scopes []string) (*player.Token, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return player.NewToken("sim-"+uuid.NewString(), tokenLifetime, slices.Clone(scopes), c.now()), nil
}

func (c *Controller) DeviceID() string { return c.deviceID }

func (c *Controller) Events() player.EventStream { return c.stream }

// Close stops playback, announces the disconnect and ends the event
// stream. Calling it twice returns ErrClosed.
func (c *Controller) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	if c.state.IsActive() {
		c.state = player.Stopped
		c.emit(player.StoppedEvent{TrackRef: c.ref()})
	}
	c.emit(player.SessionDisconnectedEvent{
		ConnectionID: c.connectionID,
		UserName:     c.cfg.Credentials.Username,
	})
	c.stream.Close()
	return nil
}

// Verify Controller implements player.Controller and Factory implements
// player.Factory at compile time.
var (
	_ player.Controller = (*Controller)(nil)
	_ player.Factory    = Factory{}
)
