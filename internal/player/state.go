// internal/player/state.go
package player

// State is the play state of a device as seen from its events.
//
//	┌──────────┐    Playing     ┌──────────┐
//	│  Stopped │ ──────────────▶│  Playing │
//	└──────────┘                └──────────┘
//	     ▲                        │      ▲
//	     │ Stopped         Paused │      │ Playing
//	     │                        ▼      │
//	     │                      ┌──────────┐
//	     └──────────────────────│  Paused  │
//	                            └──────────┘
//
// Loading keeps the current state. EndOfTrack and Unavailable move to
// Stopped.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused
}

// Next returns the state after ev. Events that carry no play state leave
// s unchanged.
func (s State) Next(ev Event) State {
	switch ev.(type) {
	case PlayingEvent:
		return Playing
	case PausedEvent:
		return Paused
	case StoppedEvent, EndOfTrackEvent, UnavailableEvent:
		return Stopped
	default:
		return s
	}
}
