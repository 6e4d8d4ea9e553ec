// internal/state/mock.go
package state

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/llehouerou/wavesconnect/internal/player"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu     sync.Mutex
	tokens []player.Token
	device *DeviceState
	closed bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SaveToken(_ context.Context, tok *player.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tok
	cp.Scopes = slices.Clone(tok.Scopes)
	m.tokens = append(m.tokens, cp)
	return nil
}

func (m *Mock) FindToken(_ context.Context, scopes []string, now time.Time) (*player.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tok := range m.tokens {
		if tok.Valid(now) && tok.CoversAny(scopes) {
			cp := tok
			return &cp, nil
		}
	}
	return nil, nil //nolint:nilnil // cache miss
}

func (m *Mock) PruneTokens(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.tokens)
	m.tokens = slices.DeleteFunc(m.tokens, func(t player.Token) bool { return !t.Valid(now) })
	return int64(before - len(m.tokens)), nil
}

func (m *Mock) GetDeviceState(_ context.Context) (*DeviceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return nil, nil //nolint:nilnil // first run
	}
	cp := *m.device
	return &cp, nil
}

func (m *Mock) SaveDeviceVolume(_ context.Context, deviceID string, volume uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device = &DeviceState{DeviceID: deviceID, Volume: &volume, UpdatedAt: time.Now()}
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// Tokens returns the saved tokens.
func (m *Mock) Tokens() []player.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tokens)
}

// IsClosed reports whether Close was called.
func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
