package playback

import "github.com/llehouerou/wavesconnect/internal/player"

// EventStreamClosed is the Event name of the last object a session
// delivers, once the controller's event stream has ended.
const EventStreamClosed = "StreamClosed"

// EventObject is the host-facing form of a controller event. Event names
// the kind; the other fields are set only for kinds that carry them.
type EventObject struct {
	Event           string  `json:"event"`
	PlayRequestID   *uint64 `json:"play_request_id,omitempty"`
	TrackID         *string `json:"track_id,omitempty"`
	PositionMs      *uint32 `json:"position_ms,omitempty"`
	Volume          *uint16 `json:"volume,omitempty"`
	ConnectionID    *string `json:"connection_id,omitempty"`
	UserName        *string `json:"user_name,omitempty"`
	Shuffle         *bool   `json:"shuffle,omitempty"`
	Repeat          *bool   `json:"repeat,omitempty"`
	AutoPlay        *bool   `json:"auto_play,omitempty"`
	Filter          *bool   `json:"filter,omitempty"`
	AudioItem       *string `json:"audio_item,omitempty"`
	ClientID        *string `json:"client_id,omitempty"`
	ClientName      *string `json:"client_name,omitempty"`
	ClientBrandName *string `json:"client_brand_name,omitempty"`
	ClientModelName *string `json:"client_model_name,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// withTrack sets the request id and track id.
func (o EventObject) withTrack(r player.TrackRef) EventObject {
	o.PlayRequestID = ptr(r.PlayRequestID)
	o.TrackID = ptr(r.TrackID)
	return o
}

// ToObject copies ev into an EventObject.
func ToObject(ev player.Event) EventObject {
	o := EventObject{Event: string(ev.Kind())}

	switch e := ev.(type) {
	case player.StoppedEvent:
		o = o.withTrack(e.TrackRef)
	case player.LoadingEvent:
		o = o.withTrack(e.TrackRef)
		o.PositionMs = ptr(e.PositionMs)
	case player.PreloadingEvent:
		o.TrackID = ptr(e.TrackID)
	case player.PlayingEvent:
		o = o.withTrack(e.TrackRef)
		o.PositionMs = ptr(e.PositionMs)
	case player.PausedEvent:
		o = o.withTrack(e.TrackRef)
		o.PositionMs = ptr(e.PositionMs)
	case player.TimeToPreloadNextTrackEvent:
		o = o.withTrack(e.TrackRef)
	case player.EndOfTrackEvent:
		o = o.withTrack(e.TrackRef)
	case player.UnavailableEvent:
		o = o.withTrack(e.TrackRef)
	case player.VolumeChangedEvent:
		o.Volume = ptr(e.Volume)
	case player.PositionCorrectionEvent:
		o = o.withTrack(e.TrackRef)
		o.PositionMs = ptr(e.PositionMs)
	case player.SeekedEvent:
		o = o.withTrack(e.TrackRef)
		o.PositionMs = ptr(e.PositionMs)
	case player.TrackChangedEvent:
		o.AudioItem = ptr(e.AudioItem)
	case player.SessionConnectedEvent:
		o.ConnectionID = ptr(e.ConnectionID)
		o.UserName = ptr(e.UserName)
	case player.SessionDisconnectedEvent:
		o.ConnectionID = ptr(e.ConnectionID)
		o.UserName = ptr(e.UserName)
	case player.SessionClientChangedEvent:
		o.ClientID = ptr(e.ClientID)
		o.ClientName = ptr(e.ClientName)
		o.ClientBrandName = ptr(e.ClientBrandName)
		o.ClientModelName = ptr(e.ClientModelName)
	case player.ShuffleChangedEvent:
		o.Shuffle = ptr(e.Shuffle)
	case player.RepeatChangedEvent:
		o.Repeat = ptr(e.Repeat)
	case player.AutoPlayChangedEvent:
		o.AutoPlay = ptr(e.AutoPlay)
	case player.FilterExplicitContentChangedEvent:
		o.Filter = ptr(e.Filter)
	}
	return o
}
