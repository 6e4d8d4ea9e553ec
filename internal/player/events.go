package player

// Kind names an event. The values are the names hosts see.
type Kind string

const (
	KindStopped                      Kind = "Stopped"
	KindLoading                      Kind = "Loading"
	KindPreloading                   Kind = "Preloading"
	KindPlaying                      Kind = "Playing"
	KindPaused                       Kind = "Paused"
	KindTimeToPreloadNextTrack       Kind = "TimeToPreloadNextTrack"
	KindEndOfTrack                   Kind = "EndOfTrack"
	KindUnavailable                  Kind = "Unavailable"
	KindVolumeChanged                Kind = "VolumeChanged"
	KindPositionCorrection           Kind = "PositionCorrection"
	KindSeeked                       Kind = "Seeked"
	KindTrackChanged                 Kind = "TrackChanged"
	KindSessionConnected             Kind = "SessionConnected"
	KindSessionDisconnected          Kind = "SessionDisconnected"
	KindSessionClientChanged         Kind = "SessionClientChanged"
	KindShuffleChanged               Kind = "ShuffleChanged"
	KindRepeatChanged                Kind = "RepeatChanged"
	KindAutoPlayChanged              Kind = "AutoPlayChanged"
	KindFilterExplicitContentChanged Kind = "FilterExplicitContentChanged"
)

// Event is a notification emitted by a controller. Events are immutable
// once emitted.
type Event interface {
	Kind() Kind
}

// TrackRef identifies the play request and track an event refers to.
type TrackRef struct {
	PlayRequestID uint64
	TrackID       string
}

// StoppedEvent is emitted when playback stops.
type StoppedEvent struct {
	TrackRef
}

// LoadingEvent is emitted when a track starts loading.
type LoadingEvent struct {
	TrackRef
	PositionMs uint32
}

// PreloadingEvent is emitted when the next track starts preloading.
type PreloadingEvent struct {
	TrackID string
}

// PlayingEvent is emitted when playback starts or resumes.
type PlayingEvent struct {
	TrackRef
	PositionMs uint32
}

// PausedEvent is emitted when playback pauses.
type PausedEvent struct {
	TrackRef
	PositionMs uint32
}

// TimeToPreloadNextTrackEvent is emitted near the end of a track.
type TimeToPreloadNextTrackEvent struct {
	TrackRef
}

// EndOfTrackEvent is emitted when a track finishes.
type EndOfTrackEvent struct {
	TrackRef
}

// UnavailableEvent is emitted when a track cannot be played.
type UnavailableEvent struct {
	TrackRef
}

// VolumeChangedEvent carries the raw device volume.
type VolumeChangedEvent struct {
	Volume uint16
}

// PositionCorrectionEvent is emitted when the reported position drifted.
type PositionCorrectionEvent struct {
	TrackRef
	PositionMs uint32
}

// SeekedEvent is emitted after a seek completes.
type SeekedEvent struct {
	TrackRef
	PositionMs uint32
}

// TrackChangedEvent is emitted when the current audio item changes.
type TrackChangedEvent struct {
	AudioItem string
}

// SessionConnectedEvent is emitted when a remote client takes control.
type SessionConnectedEvent struct {
	ConnectionID string
	UserName     string
}

// SessionDisconnectedEvent is emitted when the remote client leaves.
type SessionDisconnectedEvent struct {
	ConnectionID string
	UserName     string
}

// SessionClientChangedEvent describes the remote client in control.
type SessionClientChangedEvent struct {
	ClientID        string
	ClientName      string
	ClientBrandName string
	ClientModelName string
}

type ShuffleChangedEvent struct {
	Shuffle bool
}

type RepeatChangedEvent struct {
	Repeat bool
}

type AutoPlayChangedEvent struct {
	AutoPlay bool
}

type FilterExplicitContentChangedEvent struct {
	Filter bool
}

func (StoppedEvent) Kind() Kind                      { return KindStopped }
func (LoadingEvent) Kind() Kind                      { return KindLoading }
func (PreloadingEvent) Kind() Kind                   { return KindPreloading }
func (PlayingEvent) Kind() Kind                      { return KindPlaying }
func (PausedEvent) Kind() Kind                       { return KindPaused }
func (TimeToPreloadNextTrackEvent) Kind() Kind       { return KindTimeToPreloadNextTrack }
func (EndOfTrackEvent) Kind() Kind                   { return KindEndOfTrack }
func (UnavailableEvent) Kind() Kind                  { return KindUnavailable }
func (VolumeChangedEvent) Kind() Kind                { return KindVolumeChanged }
func (PositionCorrectionEvent) Kind() Kind           { return KindPositionCorrection }
func (SeekedEvent) Kind() Kind                       { return KindSeeked }
func (TrackChangedEvent) Kind() Kind                 { return KindTrackChanged }
func (SessionConnectedEvent) Kind() Kind             { return KindSessionConnected }
func (SessionDisconnectedEvent) Kind() Kind          { return KindSessionDisconnected }
func (SessionClientChangedEvent) Kind() Kind         { return KindSessionClientChanged }
func (ShuffleChangedEvent) Kind() Kind               { return KindShuffleChanged }
func (RepeatChangedEvent) Kind() Kind                { return KindRepeatChanged }
func (AutoPlayChangedEvent) Kind() Kind              { return KindAutoPlayChanged }
func (FilterExplicitContentChangedEvent) Kind() Kind { return KindFilterExplicitContentChanged }
