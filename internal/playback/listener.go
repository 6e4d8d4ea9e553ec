package playback

import (
	"errors"

	"github.com/llehouerou/wavesconnect/internal/player"
)

// runListener relays events until the stream ends, then delivers a final
// StreamClosed object.
func (s *Session) runListener(events player.EventStream) {
	for {
		ev, err := events.Recv()
		if err != nil {
			if !errors.Is(err, player.ErrStreamClosed) {
				s.logger.Warn("event_stream_failed", "error", err)
			}
			s.deliver(EventObject{Event: EventStreamClosed})
			return
		}
		s.deliver(ToObject(ev))
	}
}

// deliver schedules the callback lookup on the host, so a callback set
// by an earlier host task sees every event delivered after it.
func (s *Session) deliver(obj EventObject) {
	err := s.dispatcher.Dispatch(func() {
		if fn := s.callback.Load(); fn != nil {
			(*fn)(obj)
		}
	})
	if err != nil {
		s.logger.Debug("event_dropped", "event", obj.Event, "error", err)
	}
}
