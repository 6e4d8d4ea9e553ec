package player

import (
	"errors"

	"github.com/llehouerou/wavesconnect/internal/fifo"
)

// ErrStreamClosed is returned by EventStream.Recv once the controller has
// been torn down and every pending event has been received.
var ErrStreamClosed = errors.New("event stream closed")

// EventStream is the receive side of a controller's event feed.
// Recv blocks until an event is available. It is safe to call from a
// goroutine other than the one driving the controller.
type EventStream interface {
	Recv() (Event, error)
}

// Stream is an unbounded EventStream that controllers publish into.
// Emit never blocks the controller, no matter how slow the reader is.
type Stream struct {
	q *fifo.Queue[Event]
}

// NewStream creates an open stream.
func NewStream() *Stream {
	return &Stream{q: fifo.New[Event]()}
}

// Emit publishes ev. It returns ErrStreamClosed after Close.
func (s *Stream) Emit(ev Event) error {
	if err := s.q.Push(ev); err != nil {
		return ErrStreamClosed
	}
	return nil
}

// Recv returns the next event, or ErrStreamClosed once the stream has been
// closed and drained.
func (s *Stream) Recv() (Event, error) {
	ev, ok := s.q.Pop()
	if !ok {
		return nil, ErrStreamClosed
	}
	return ev, nil
}

// Close ends the stream. Events already emitted are still delivered.
// Calling Close more than once is a no-op.
func (s *Stream) Close() {
	_ = s.q.Close()
}

// Verify Stream implements EventStream at compile time.
var _ EventStream = (*Stream)(nil)
