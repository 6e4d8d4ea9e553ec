// internal/state/interface.go
package state

import (
	"context"
	"time"

	"github.com/llehouerou/wavesconnect/internal/player"
)

// TokenStore caches access tokens between runs.
type TokenStore interface {
	SaveToken(ctx context.Context, tok *player.Token) error
	FindToken(ctx context.Context, scopes []string, now time.Time) (*player.Token, error)
}

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	TokenStore
	PruneTokens(ctx context.Context, now time.Time) (int64, error)
	GetDeviceState(ctx context.Context) (*DeviceState, error)
	SaveDeviceVolume(ctx context.Context, deviceID string, volume uint16) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
