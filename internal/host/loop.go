package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/llehouerou/wavesconnect/internal/fifo"
)

// ErrLoopAlreadyRunning is returned when Run is called twice.
var ErrLoopAlreadyRunning = errors.New("host loop is already running")

// Loop is a minimal single-goroutine host: tasks dispatched from any
// goroutine run one at a time, in dispatch order, on the goroutine that
// called Run.
type Loop struct {
	tasks   *fifo.Queue[func()]
	running atomic.Bool
	inTask  atomic.Bool // set while a task executes

	stopOnce sync.Once
	done     chan struct{}
}

// NewLoop creates a loop. Nothing runs until Run is called, but Dispatch
// already queues.
func NewLoop() *Loop {
	return &Loop{
		tasks: fifo.New[func()](),
		done:  make(chan struct{}),
	}
}

// Dispatch queues task. It returns ErrStopped once Stop has been called.
func (l *Loop) Dispatch(task func()) error {
	if err := l.tasks.Push(task); err != nil {
		return ErrStopped
	}
	return nil
}

// Run executes queued tasks until Stop is called or ctx is done.
// Tasks already queued when Stop is called still run; tasks queued when ctx
// is cancelled are discarded.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer close(l.done)

	stop := context.AfterFunc(ctx, func() {
		l.tasks.Drain()
	})
	defer stop()

	for {
		task, ok := l.tasks.Pop()
		if !ok {
			return ctx.Err()
		}
		l.inTask.Store(true)
		task()
		l.inTask.Store(false)
	}
}

// Stop prevents further dispatches and lets Run return after the queued
// tasks have executed. Safe to call more than once and from inside a task.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		_ = l.tasks.Close()
	})
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// InTask reports whether a task is currently executing. Meant for
// assertions in tests; it does not identify the calling goroutine.
func (l *Loop) InTask() bool {
	return l.inTask.Load()
}

// Verify Loop implements Dispatcher at compile time.
var _ Dispatcher = (*Loop)(nil)
