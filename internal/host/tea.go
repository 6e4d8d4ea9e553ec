package host

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavesconnect/internal/fifo"
)

// TaskMsg carries a dispatched task into a bubbletea Update loop.
// The root model must call Run when it receives one.
type TaskMsg struct {
	run func()
}

// Run executes the task. Call it from Update only.
func (m TaskMsg) Run() {
	if m.run != nil {
		m.run()
	}
}

// Sender is the part of *tea.Program the dispatcher needs.
type Sender interface {
	Send(msg tea.Msg)
}

// TeaDispatcher schedules tasks onto a bubbletea program.
//
// tea.Program.Send blocks until the Update loop receives the message, so
// tasks are buffered in an unbounded queue and a single pump goroutine feeds
// them to the program in order. Tasks dispatched before Attach wait in the
// queue.
type TeaDispatcher struct {
	tasks      *fifo.Queue[func()]
	attachOnce sync.Once
	stopOnce   sync.Once
	pumpDone   chan struct{}
}

// NewTeaDispatcher creates a dispatcher with no program attached yet.
func NewTeaDispatcher() *TeaDispatcher {
	return &TeaDispatcher{
		tasks:    fifo.New[func()](),
		pumpDone: make(chan struct{}),
	}
}

// Dispatch queues task for the program's Update loop.
func (d *TeaDispatcher) Dispatch(task func()) error {
	if err := d.tasks.Push(task); err != nil {
		return ErrStopped
	}
	return nil
}

// Attach starts forwarding queued tasks to s. Only the first call has an
// effect.
func (d *TeaDispatcher) Attach(s Sender) {
	d.attachOnce.Do(func() {
		go d.pump(s)
	})
}

func (d *TeaDispatcher) pump(s Sender) {
	defer close(d.pumpDone)
	for {
		task, ok := d.tasks.Pop()
		if !ok {
			return
		}
		// Send returns without delivering once the program has exited,
		// which drops the task.
		s.Send(TaskMsg{run: task})
	}
}

// Stop rejects further dispatches and discards tasks not yet handed to the
// program.
func (d *TeaDispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.tasks.Drain()
	})
}

// Verify TeaDispatcher implements Dispatcher at compile time.
var _ Dispatcher = (*TeaDispatcher)(nil)
