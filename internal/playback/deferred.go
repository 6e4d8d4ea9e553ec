package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/llehouerou/wavesconnect/internal/host"
)

var errNilRejection = errors.New("rejected without a reason")

// Deferred is a one-shot result handle. It is settled exactly once, from
// any goroutine, and its outcome is delivered to the host: callbacks
// registered with Then run inside a task on the host Dispatcher.
//
// If the host has been torn down when the Deferred settles, the outcome is
// still recorded and Done is still closed, but Then callbacks never run.
type Deferred[T any] struct {
	dispatcher host.Dispatcher
	settled    atomic.Bool
	done       chan struct{}

	// value and err are written once before done is closed.
	value T
	err   error

	mu        sync.Mutex
	delivered bool
	callbacks []func(T, error)
}

// NewDeferred creates a pending Deferred that delivers through d.
func NewDeferred[T any](d host.Dispatcher) *Deferred[T] {
	return &Deferred[T]{
		dispatcher: d,
		done:       make(chan struct{}),
	}
}

// Resolve fulfils the Deferred with v.
func (d *Deferred[T]) Resolve(v T) error {
	return d.complete(v, nil)
}

// Reject fails the Deferred with err.
func (d *Deferred[T]) Reject(err error) error {
	if err == nil {
		err = errNilRejection
	}
	var zero T
	return d.complete(zero, err)
}

// settle adapts an untyped worker result. A value of the wrong type
// becomes the zero value.
func (d *Deferred[T]) settle(v any, err error) error {
	if err != nil {
		return d.Reject(err)
	}
	val, _ := v.(T)
	return d.Resolve(val)
}

// complete records the outcome and schedules delivery. It returns
// ErrAlreadySettled on every call but the first, and the dispatcher's
// error if the outcome could not be delivered to the host.
func (d *Deferred[T]) complete(v T, err error) error {
	if !d.settled.CompareAndSwap(false, true) {
		return ErrAlreadySettled
	}
	d.value, d.err = v, err
	close(d.done)
	return d.dispatcher.Dispatch(d.deliver)
}

// deliver runs on the host.
func (d *Deferred[T]) deliver() {
	d.mu.Lock()
	d.delivered = true
	cbs := d.callbacks
	d.callbacks = nil
	d.mu.Unlock()

	for _, fn := range cbs {
		fn(d.value, d.err)
	}
}

// Then registers fn to run on the host once the outcome is delivered.
// Call it from the host: if the outcome was already delivered, fn runs
// immediately on the calling goroutine.
func (d *Deferred[T]) Then(fn func(T, error)) {
	d.mu.Lock()
	if !d.delivered {
		d.callbacks = append(d.callbacks, fn)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	fn(d.value, d.err)
}

// Done is closed once the Deferred has settled.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether the Deferred has been settled.
func (d *Deferred[T]) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Await blocks until the Deferred settles or ctx is done. It must not be
// called from the host: it would block the goroutine that delivers
// outcomes to Then callbacks.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// rejected returns a Deferred that already failed with err.
func rejected[T any](dispatcher host.Dispatcher, err error) *Deferred[T] {
	d := NewDeferred[T](dispatcher)
	_ = d.Reject(err)
	return d
}
