package mpris

import (
	"errors"
	"log/slog"
	"time"

	"github.com/llehouerou/wavesconnect/internal/connect"
	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/playback"
)

// ErrHostTimeout is returned when the host did not run a request in time.
var ErrHostTimeout = errors.New("host did not respond")

const defaultRemoteTimeout = 2 * time.Second

// Remote runs device operations on the host on behalf of callers on other
// goroutines, such as D-Bus method handlers. Each call waits until the host
// has run it, but not for the controller: commands are queued and failures
// are logged.
type Remote struct {
	dispatcher host.Dispatcher
	device     *connect.Device
	logger     *slog.Logger
	timeout    time.Duration
}

// NewRemote creates a Remote for a device living on d. A nil logger
// discards.
func NewRemote(d host.Dispatcher, device *connect.Device, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Remote{dispatcher: d, device: device, logger: logger, timeout: defaultRemoteTimeout}
}

// logFailure returns a result callback that logs a failed command.
func logFailure[T any](logger *slog.Logger, command string) func(T, error) {
	return func(_ T, err error) {
		if err != nil {
			logger.Warn("mpris_command_failed", "command", command, "error", err)
		}
	}
}

func (r *Remote) do(fn func(d *connect.Device)) error {
	done := make(chan struct{})
	if err := r.dispatcher.Dispatch(func() {
		defer close(done)
		fn(r.device)
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-time.After(r.timeout):
		return ErrHostTimeout
	}
}

// Status returns the device status.
func (r *Remote) Status() (connect.Status, error) {
	// Buffered: the task may still run after a timeout.
	out := make(chan connect.Status, 1)
	if err := r.do(func(d *connect.Device) { out <- d.Status() }); err != nil {
		return connect.Status{}, err
	}
	return <-out, nil
}

func (r *Remote) Play() error {
	return r.do(func(d *connect.Device) { d.Play().Then(logFailure[struct{}](r.logger, "play")) })
}

func (r *Remote) Pause() error {
	return r.do(func(d *connect.Device) { d.Pause().Then(logFailure[struct{}](r.logger, "pause")) })
}

func (r *Remote) Toggle() error {
	return r.do(func(d *connect.Device) { d.TogglePlay().Then(logFailure[struct{}](r.logger, "play_pause")) })
}

// SeekTo moves to an absolute position.
func (r *Remote) SeekTo(pos time.Duration) error {
	return r.do(func(d *connect.Device) { d.Seek(pos.Milliseconds()).Then(logFailure[struct{}](r.logger, "seek")) })
}

// SeekBy moves relative to the current position, stopping at zero.
func (r *Remote) SeekBy(offset time.Duration) error {
	return r.do(func(d *connect.Device) {
		target := max(int64(d.Position())+offset.Milliseconds(), 0)
		d.Seek(target).Then(logFailure[struct{}](r.logger, "seek"))
	})
}

// SetVolume sets the volume from a 0-1 fraction.
func (r *Remote) SetVolume(fraction float64) error {
	return r.do(func(d *connect.Device) { d.SetVolume(fraction*100, false).Then(logFailure[struct{}](r.logger, "set_volume")) })
}

// Open loads uri and starts playing it.
func (r *Remote) Open(uri string) error {
	return r.do(func(d *connect.Device) { d.Load(uri, true).Then(logFailure[playback.LoadResult](r.logger, "open_uri")) })
}
