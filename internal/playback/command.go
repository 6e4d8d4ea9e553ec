package playback

import (
	"fmt"
	"slices"

	"github.com/llehouerou/wavesconnect/internal/player"
)

// Command is one unit of work for the session worker. The set of commands
// is closed: only the types in this file implement it.
type Command interface {
	// Name identifies the command in logs.
	Name() string
	isCommand()
}

// Play resumes playback.
type Play struct{}

// Pause pauses playback.
type Pause struct{}

// Seek moves to an absolute position.
type Seek struct {
	PositionMs uint32
}

// SetVolume sets the raw device volume.
type SetVolume struct {
	Volume uint16
}

// LoadTrack loads uri, optionally starting playback at StartMs.
type LoadTrack struct {
	URI      string
	AutoPlay bool
	StartMs  uint32
}

// GetToken asks the controller for an access token. Failures are not
// reported: the command fulfils with a nil token instead.
type GetToken struct {
	Scopes []string
}

func (Play) Name() string      { return "play" }
func (Pause) Name() string     { return "pause" }
func (Seek) Name() string      { return "seek" }
func (SetVolume) Name() string { return "set_volume" }
func (LoadTrack) Name() string { return "load_track" }
func (GetToken) Name() string  { return "get_token" }

func (Play) isCommand()      {}
func (Pause) isCommand()     {}
func (Seek) isCommand()      {}
func (SetVolume) isCommand() {}
func (LoadTrack) isCommand() {}
func (GetToken) isCommand()  {}

// LoadResult confirms a completed LoadTrack.
type LoadResult struct {
	URI      string
	AutoPlay bool
	StartMs  uint32
}

// message is a command queue element. A message with close set is the
// last one the worker reads.
type message struct {
	cmd    Command
	result settler
	close  bool
}

// settler is the untyped side of a Deferred, used by the worker.
type settler interface {
	settle(v any, err error) error
}

// validate checks arguments that must be rejected before they reach the
// controller.
func validate(cmd Command) error {
	switch c := cmd.(type) {
	case LoadTrack:
		if c.URI == "" {
			return fmt.Errorf("%w: load_track: empty uri", ErrInvalidArgument)
		}
	case nil:
		return fmt.Errorf("%w: nil command", ErrInvalidArgument)
	}
	return nil
}

// withDefaults fills in optional command arguments.
func withDefaults(cmd Command) Command {
	if c, ok := cmd.(GetToken); ok && len(c.Scopes) == 0 {
		c.Scopes = slices.Clone(player.DefaultScopes)
		return c
	}
	return cmd
}
