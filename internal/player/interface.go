package player

import "context"

// Controller is a connected media-session device.
//
// A Controller is not safe for concurrent use and its methods may block on
// network I/O. Callers hand it to exactly one goroutine for its whole
// lifetime; only the EventStream returned by Events may be read elsewhere.
type Controller interface {
	Play() error
	Pause() error
	Seek(positionMs uint32) error
	// SetVolume takes the raw device volume, 0 to MaxVolume.
	SetVolume(volume uint16) error
	Load(uri string, autoPlay bool, startMs uint32) error
	Token(ctx context.Context, scopes []string) (*Token, error)
	// DeviceID is fixed for the lifetime of the controller.
	DeviceID() string
	Events() EventStream
	Close() error
}

// Factory connects new controllers.
type Factory interface {
	Connect(ctx context.Context, cfg Config) (Controller, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, cfg Config) (Controller, error)

// Connect calls f(ctx, cfg).
func (f FactoryFunc) Connect(ctx context.Context, cfg Config) (Controller, error) {
	return f(ctx, cfg)
}
