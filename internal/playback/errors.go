package playback

import "errors"

var (
	// ErrSetupFailed wraps the reason Open could not connect a controller.
	ErrSetupFailed = errors.New("session setup failed")

	// ErrWorkerUnavailable rejects commands sent after the worker has
	// stopped, and commands still queued when it stopped.
	ErrWorkerUnavailable = errors.New("session worker unavailable")

	// ErrClosed is returned by Close when the command queue is already
	// closed.
	ErrClosed = errors.New("command queue already closed")

	// ErrInvalidArgument rejects commands whose arguments cannot be
	// represented for the controller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCommandPanicked rejects a command whose execution panicked. The
	// worker stops after such a command.
	ErrCommandPanicked = errors.New("command panicked")

	// ErrAlreadySettled is returned when a Deferred is settled twice.
	ErrAlreadySettled = errors.New("deferred already settled")
)
