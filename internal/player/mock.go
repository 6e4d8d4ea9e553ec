// internal/player/mock.go
package player

import (
	"context"
	"slices"
	"sync"
)

// Operation names recorded by Mock.
const (
	OpPlay      = "play"
	OpPause     = "pause"
	OpSeek      = "seek"
	OpSetVolume = "set_volume"
	OpLoad      = "load"
	OpToken     = "token"
	OpClose     = "close"
)

// Call is one recorded controller call. Only the fields relevant to Op are
// set.
type Call struct {
	Op         string
	PositionMs uint32
	Volume     uint16
	URI        string
	AutoPlay   bool
	StartMs    uint32
	Scopes     []string
}

// Mock is a recording test double for Controller. Unlike a real controller
// it is safe for concurrent use, so tests can inspect it while a session
// goroutine drives it.
type Mock struct {
	mu       sync.Mutex
	deviceID string
	calls    []Call
	errs     map[string]error
	hooks    map[string]func()
	token    *Token
	stream   *Stream
}

// NewMock creates a mock controller with the given device id.
func NewMock(deviceID string) *Mock {
	return &Mock{
		deviceID: deviceID,
		errs:     make(map[string]error),
		hooks:    make(map[string]func()),
		stream:   NewStream(),
	}
}

func (m *Mock) record(c Call) error {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	err := m.errs[c.Op]
	hook := m.hooks[c.Op]
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (m *Mock) Play() error { return m.record(Call{Op: OpPlay}) }

func (m *Mock) Pause() error { return m.record(Call{Op: OpPause}) }

func (m *Mock) Seek(positionMs uint32) error {
	return m.record(Call{Op: OpSeek, PositionMs: positionMs})
}

func (m *Mock) SetVolume(volume uint16) error {
	return m.record(Call{Op: OpSetVolume, Volume: volume})
}

func (m *Mock) Load(uri string, autoPlay bool, startMs uint32) error {
	return m.record(Call{Op: OpLoad, URI: uri, AutoPlay: autoPlay, StartMs: startMs})
}

func (m *Mock) Token(_ context.Context, scopes []string) (*Token, error) {
	if err := m.record(Call{Op: OpToken, Scopes: slices.Clone(scopes)}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Mock) DeviceID() string { return m.deviceID }

func (m *Mock) Events() EventStream { return m.stream }

// Close records the call and ends the event stream.
func (m *Mock) Close() error {
	err := m.record(Call{Op: OpClose})
	m.stream.Close()
	return err
}

// Test helpers

// Emit publishes ev on the mock's event stream.
func (m *Mock) Emit(ev Event) error { return m.stream.Emit(ev) }

// CloseEvents ends the event stream without closing the controller.
func (m *Mock) CloseEvents() { m.stream.Close() }

// SetError makes every later call to op return err.
func (m *Mock) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op] = err
}

// SetHook runs fn inside every later call to op, after the call is
// recorded. fn may block or panic.
func (m *Mock) SetHook(op string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[op] = fn
}

// SetToken sets the token returned by Token.
func (m *Mock) SetToken(t *Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = t
}

// Calls returns a copy of the recorded calls, in order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Ops returns the recorded operation names, in order.
func (m *Mock) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, len(m.calls))
	for i, c := range m.calls {
		ops[i] = c.Op
	}
	return ops
}

// Closed reports whether Close has been called.
func (m *Mock) Closed() bool {
	return slices.Contains(m.Ops(), OpClose)
}

// MockFactory hands out a fixed Mock, or fails.
type MockFactory struct {
	mu      sync.Mutex
	mock    *Mock
	err     error
	gate    chan struct{}
	configs []Config
}

// NewMockFactory creates a factory that connects m.
func NewMockFactory(m *Mock) *MockFactory {
	return &MockFactory{mock: m}
}

// Connect records cfg and returns the mock, waiting for the gate first if
// one is set.
func (f *MockFactory) Connect(ctx context.Context, cfg Config) (Controller, error) {
	f.mu.Lock()
	f.configs = append(f.configs, cfg)
	gate, err, m := f.gate, f.err, f.mock
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetError makes Connect fail with err.
func (f *MockFactory) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// SetGate makes Connect block until gate is closed or ctx is done.
func (f *MockFactory) SetGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

// Configs returns the configs passed to Connect.
func (f *MockFactory) Configs() []Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.configs)
}

// Verify Mock implements Controller and MockFactory implements Factory at
// compile time.
var (
	_ Controller = (*Mock)(nil)
	_ Factory    = (*MockFactory)(nil)
)
