//go:build !linux

package mpris

import (
	"errors"
	"fmt"
)

// Adapter is never created outside Linux.
type Adapter struct{}

// New fails with errors.ErrUnsupported: MPRIS is a D-Bus interface.
func New(name string, _ *Remote) (*Adapter, error) {
	return nil, fmt.Errorf("mpris player %s: %w", BusName(name), errors.ErrUnsupported)
}

func (a *Adapter) Close() error {
	return nil
}
