// Package host defines how background goroutines hand work back to a
// single-threaded host runtime.
//
// A host owns one execution context (a terminal UI update loop, a headless
// event loop, ...). Code running on other goroutines must never touch host
// state directly; it schedules a task with Dispatch instead and the host runs
// it later, in order, on its own goroutine.
package host

import "errors"

// ErrStopped is returned by Dispatch once the host has been torn down.
// Tasks dispatched after that point are dropped.
var ErrStopped = errors.New("host stopped")

// Dispatcher schedules tasks onto the host's execution context.
//
// Dispatch must be safe for concurrent use, must not block on the task
// itself, and must preserve the order of tasks dispatched from the same
// goroutine.
type Dispatcher interface {
	Dispatch(task func()) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(task func()) error

// Dispatch calls f(task).
func (f DispatcherFunc) Dispatch(task func()) error {
	return f(task)
}
