// Package connect is the host-side facade over a playback session: it
// fans controller events out to any number of listeners, tracks volume,
// play state and position, applies the configured initial volume, and
// serves access tokens through a cache.
//
// A Device is confined to its host. Every method must be called from a
// task running on the Dispatcher it was created with, and every listener
// runs there too.
package connect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/llehouerou/wavesconnect/internal/fifo"
	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/playback"
	"github.com/llehouerou/wavesconnect/internal/player"
	"github.com/llehouerou/wavesconnect/internal/state"
)

// Event names that only the facade emits.
const (
	EventPlayerInitialized   = "PlayerInitialized"
	EventInitializationError = "InitializationError"
	EventTimeUpdated         = "TimeUpdated"
)

var (
	// ErrNotInitialized is returned by commands issued before Connect has
	// completed or after Close.
	ErrNotInitialized = errors.New("device is not initialized")
	// ErrAlreadyConnected is returned by a second Connect.
	ErrAlreadyConnected = errors.New("device is already connected")
)

const tokenTimeout = 10 * time.Second

// Event is what listeners receive: a controller event object, or one of
// the facade's own events. Error is set on InitializationError only.
type Event struct {
	playback.EventObject
	Error string `json:"error,omitempty"`
}

// VolumeStore persists the last volume reported by the device.
type VolumeStore interface {
	SaveDeviceVolume(ctx context.Context, deviceID string, volume uint16) error
}

// Options configures a Device.
type Options struct {
	Factory    player.Factory
	Dispatcher host.Dispatcher
	Logger     *slog.Logger

	// Tokens caches access tokens. Nil disables the cache.
	Tokens state.TokenStore
	// SaveTokens stores tokens fetched from the controller in Tokens.
	SaveTokens bool
	// Volumes, if set, receives every VolumeChanged.
	Volumes VolumeStore

	// InitialVolume is applied each time a remote session connects.
	InitialVolume *uint16
	// PositionInterval is the TimeUpdated period. Defaults to 500ms.
	PositionInterval time.Duration
	// Now defaults to time.Now. It is used for token expiry.
	Now func() time.Time
}

// Status is a snapshot of the device as tracked from its events.
type Status struct {
	Initialized bool
	DeviceID    string
	State       player.State
	TrackID     string
	PositionMs  uint32
	Volume      uint16
}

// Device is the facade over one playback session.
type Device struct {
	factory    player.Factory
	dispatcher host.Dispatcher
	logger     *slog.Logger
	tokens     state.TokenStore
	saveTokens bool
	volumes    VolumeStore
	initialVol *uint16
	now        func() time.Time

	emitter  *emitter
	position *PositionHolder
	done     chan struct{}

	// Host-confined.
	session      *playback.Session
	volumeWrites *fifo.Queue[uint16]
	connecting   bool
	closed       bool
	// pendingVolume is set when a session connected before the facade
	// had its session handle.
	pendingVolume bool
	state         player.State
	trackID       string
	volume        uint16
}

// New creates an unconnected device.
func New(opts Options) *Device {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	d := &Device{
		factory:    opts.Factory,
		dispatcher: opts.Dispatcher,
		logger:     logger,
		tokens:     opts.Tokens,
		saveTokens: opts.SaveTokens,
		volumes:    opts.Volumes,
		initialVol: opts.InitialVolume,
		now:        now,
		emitter:    newEmitter(),
		done:       make(chan struct{}),
	}
	d.position = NewPositionHolder(opts.Dispatcher, opts.PositionInterval, d.timeUpdated)
	return d
}

// Connect opens the session without blocking the host. The result
// resolves with the device id once the device is initialized, after
// PlayerInitialized has been emitted. On failure, InitializationError is
// emitted and the result is rejected.
func (d *Device) Connect(ctx context.Context, cfg player.Config) *playback.Deferred[string] {
	if d.connecting || d.session != nil || d.closed {
		return failed[string](d.dispatcher, ErrAlreadyConnected)
	}
	d.connecting = true

	out := playback.NewDeferred[string](d.dispatcher)
	go func() {
		sess, err := playback.Open(ctx, cfg, playback.Options{
			Factory:    d.factory,
			Dispatcher: d.dispatcher,
			Logger:     d.logger,
			OnEvent:    d.handle,
		})
		if dispatchErr := d.dispatcher.Dispatch(func() { d.install(sess, err, out) }); dispatchErr != nil {
			d.logger.Warn("device_install_dropped", "error", dispatchErr)
			if sess != nil {
				_ = sess.Close()
				<-sess.Done()
			}
			_ = out.Reject(dispatchErr)
			// install never runs, so done is ours to close.
			close(d.done)
		}
	}()
	return out
}

func (d *Device) install(sess *playback.Session, err error, out *playback.Deferred[string]) {
	d.connecting = false
	if err != nil {
		d.logger.Error("device_init_failed", "error", err)
		close(d.done)
		d.emitter.emit(Event{
			EventObject: playback.EventObject{Event: EventInitializationError},
			Error:       err.Error(),
		})
		_ = out.Reject(err)
		return
	}

	d.session = sess
	var written chan struct{}
	if d.volumes != nil {
		d.volumeWrites = fifo.New[uint16]()
		written = make(chan struct{})
		go d.writeVolumes(sess.DeviceID(), d.volumeWrites, written)
	}
	writes := d.volumeWrites
	go func() {
		<-sess.Done()
		if writes != nil {
			_ = writes.Close()
			<-written
		}
		close(d.done)
	}()
	d.logger.Info("device_initialized", "device_id", sess.DeviceID())
	d.emitter.emit(Event{EventObject: playback.EventObject{Event: EventPlayerInitialized}})

	if d.pendingVolume {
		d.pendingVolume = false
		d.applyInitialVolume()
	}
	_ = out.Resolve(sess.DeviceID())
}

// handle receives every session event on the host.
func (d *Device) handle(o playback.EventObject) {
	if d.closed {
		return
	}
	switch player.Kind(o.Event) {
	case player.KindVolumeChanged:
		if o.Volume != nil {
			d.volume = *o.Volume
			d.persistVolume(d.volume)
		}
	case player.KindSessionConnected:
		if d.session == nil {
			d.pendingVolume = d.initialVol != nil
		} else {
			d.applyInitialVolume()
		}
	case player.KindPlaying:
		d.state = player.Playing
		d.setTrack(o.TrackID)
		d.position.Set(positionOf(o))
		d.position.Start()
	case player.KindPaused:
		d.state = player.Paused
		d.setTrack(o.TrackID)
		d.position.Stop()
		d.position.Set(positionOf(o))
	case player.KindStopped:
		d.state = player.Stopped
		d.position.Stop()
		d.position.Set(0)
	case player.KindEndOfTrack, player.KindUnavailable:
		d.state = player.Stopped
		d.position.Stop()
	case player.KindPositionCorrection, player.KindSeeked:
		d.position.Set(positionOf(o))
	case player.KindTrackChanged:
		if o.AudioItem != nil {
			d.trackID = *o.AudioItem
		}
		d.position.Stop()
		d.position.Set(0)
	default:
		if o.Event == playback.EventStreamClosed {
			d.position.Stop()
		}
	}
	d.emitter.emit(Event{EventObject: o})
}

func positionOf(o playback.EventObject) uint32 {
	if o.PositionMs == nil {
		return 0
	}
	return *o.PositionMs
}

func (d *Device) setTrack(id *string) {
	if id != nil {
		d.trackID = *id
	}
}

func (d *Device) applyInitialVolume() {
	if d.initialVol == nil || d.session == nil {
		return
	}
	v := *d.initialVol
	d.logger.Debug("initial_volume_applied", "volume", v)
	d.session.SetVolumeRaw(v).Then(func(_ struct{}, err error) {
		if err != nil {
			d.logger.Warn("initial_volume_failed", "error", err)
		}
	})
}

func (d *Device) persistVolume(v uint16) {
	if d.volumeWrites == nil {
		return
	}
	if err := d.volumeWrites.Push(v); err != nil {
		d.logger.Debug("volume_save_dropped", "volume", v)
	}
}

// writeVolumes saves queued volumes one at a time, in the order they were
// reported, until writes is closed and drained.
func (d *Device) writeVolumes(deviceID string, writes *fifo.Queue[uint16], done chan struct{}) {
	defer close(done)
	for {
		v, ok := writes.Pop()
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), tokenTimeout)
		if err := d.volumes.SaveDeviceVolume(ctx, deviceID, v); err != nil {
			d.logger.Warn("volume_save_failed", "volume", v, "error", err)
		}
		cancel()
	}
}

func (d *Device) timeUpdated(positionMs uint32) {
	d.emitter.emit(Event{EventObject: playback.EventObject{
		Event:      EventTimeUpdated,
		PositionMs: &positionMs,
	}})
}

// On registers fn for events named name, or every event for AnyEvent.
func (d *Device) On(name string, fn func(Event)) ListenerID {
	return d.emitter.add(name, fn, false)
}

// Once registers fn for the next event named name only.
func (d *Device) Once(name string, fn func(Event)) ListenerID {
	return d.emitter.add(name, fn, true)
}

// Off removes a listener. It reports whether one was removed.
func (d *Device) Off(name string, id ListenerID) bool {
	return d.emitter.remove(name, id)
}

// RemoveAll removes every listener. Tracking of volume, state and
// position is unaffected.
func (d *Device) RemoveAll() {
	d.emitter.clear()
}

// IsInitialized reports whether the device is connected and not closed.
func (d *Device) IsInitialized() bool {
	return d.session != nil && !d.closed
}

// DeviceID returns the controller's device id, or "" before Connect
// completes.
func (d *Device) DeviceID() string {
	if d.session == nil {
		return ""
	}
	return d.session.DeviceID()
}

// Status returns a snapshot of the tracked device state.
func (d *Device) Status() Status {
	return Status{
		Initialized: d.IsInitialized(),
		DeviceID:    d.DeviceID(),
		State:       d.state,
		TrackID:     d.trackID,
		PositionMs:  d.position.Position(),
		Volume:      d.volume,
	}
}

// Position returns the extrapolated playback position.
func (d *Device) Position() uint32 {
	return d.position.Position()
}

// Volume returns the last reported volume, as a percentage or raw.
func (d *Device) Volume(raw bool) float64 {
	if raw {
		return float64(d.volume)
	}
	return player.RawToPercent(d.volume)
}

// live returns the session, or an error if commands cannot be sent.
func (d *Device) live() (*playback.Session, error) {
	if d.session == nil || d.closed {
		return nil, ErrNotInitialized
	}
	return d.session, nil
}

// Play resumes playback.
func (d *Device) Play() *playback.Deferred[struct{}] {
	s, err := d.live()
	if err != nil {
		return failed[struct{}](d.dispatcher, err)
	}
	return s.Play()
}

// Pause pauses playback.
func (d *Device) Pause() *playback.Deferred[struct{}] {
	s, err := d.live()
	if err != nil {
		return failed[struct{}](d.dispatcher, err)
	}
	return s.Pause()
}

// TogglePlay pauses while playing and resumes otherwise.
func (d *Device) TogglePlay() *playback.Deferred[struct{}] {
	if d.state == player.Playing {
		return d.Pause()
	}
	return d.Play()
}

// Seek moves to positionMs.
func (d *Device) Seek(positionMs int64) *playback.Deferred[struct{}] {
	s, err := d.live()
	if err != nil {
		return failed[struct{}](d.dispatcher, err)
	}
	return s.Seek(positionMs)
}

// SetVolume sets the volume, as a 0-100 percentage unless raw is set.
// Percentages outside 0-100 are clamped.
func (d *Device) SetVolume(volume float64, raw bool) *playback.Deferred[struct{}] {
	s, err := d.live()
	if err != nil {
		return failed[struct{}](d.dispatcher, err)
	}
	if raw {
		return s.SetVolumeRaw(uint16(min(max(volume, 0), float64(player.MaxVolume))))
	}
	return s.SetVolume(volume)
}

// Load parses uri, which may be a spotify: URI or an open.spotify.com
// link, and loads it in its canonical form.
func (d *Device) Load(uri string, autoPlay bool) *playback.Deferred[playback.LoadResult] {
	s, err := d.live()
	if err != nil {
		return failed[playback.LoadResult](d.dispatcher, err)
	}
	parsed, err := player.ParseURI(uri)
	if err != nil {
		return failed[playback.LoadResult](d.dispatcher, fmt.Errorf("%w: %w", playback.ErrInvalidArgument, err))
	}
	return s.LoadTrack(parsed.String(), autoPlay)
}

// Token returns an access token for scopes, or player.DefaultScopes if
// none are given. A cached token sharing any scope is preferred. Like the
// session's token request, it resolves with nil rather than failing.
func (d *Device) Token(scopes ...string) *playback.Deferred[*player.Token] {
	s, err := d.live()
	if err != nil {
		return failed[*player.Token](d.dispatcher, err)
	}
	if len(scopes) == 0 {
		scopes = player.DefaultScopes
	}
	out := playback.NewDeferred[*player.Token](d.dispatcher)
	go func() {
		_ = out.Resolve(d.fetchToken(s, scopes))
	}()
	return out
}

// fetchToken runs off the host. It only reads fields fixed at New.
func (d *Device) fetchToken(s *playback.Session, scopes []string) *player.Token {
	ctx, cancel := context.WithTimeout(context.Background(), tokenTimeout)
	defer cancel()

	if d.tokens != nil {
		tok, err := d.tokens.FindToken(ctx, scopes, d.now())
		switch {
		case err != nil:
			d.logger.Warn("token_cache_lookup_failed", "error", err)
		case tok != nil:
			d.logger.Debug("token_cache_hit", "scopes", scopes)
			return tok
		}
	}

	tok, err := s.Token(scopes...).Await(ctx)
	if err != nil {
		d.logger.Warn("token_request_failed", "error", err)
		return nil
	}
	if tok == nil {
		return nil
	}
	if d.tokens != nil && d.saveTokens {
		if err := d.tokens.SaveToken(ctx, tok); err != nil {
			d.logger.Warn("token_save_failed", "error", err)
		}
	}
	return tok
}

// Close stops position updates, removes every listener and closes the
// session. The session shuts down in the background; Done reports when it
// has.
func (d *Device) Close() error {
	s, err := d.live()
	if err != nil {
		return err
	}
	d.closed = true
	d.position.Stop()
	d.emitter.clear()
	s.OnEvent(nil)
	return s.Close()
}

// Done is closed once the session has shut down and queued volume saves
// have completed, or once Connect has failed.
func (d *Device) Done() <-chan struct{} {
	return d.done
}

// failed returns a result handle already rejected with err.
func failed[T any](dispatcher host.Dispatcher, err error) *playback.Deferred[T] {
	out := playback.NewDeferred[T](dispatcher)
	_ = out.Reject(err)
	return out
}
