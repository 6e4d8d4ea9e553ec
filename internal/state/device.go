package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/wavesconnect/internal/db"
)

// DeviceState is what is remembered about the device between runs.
type DeviceState struct {
	DeviceID string
	// Volume is the last raw volume reported by the device, or nil if
	// none was ever saved.
	Volume    *uint16
	UpdatedAt time.Time
}

// GetDeviceState returns the saved device state, or nil if nothing was
// saved yet.
func (m *Manager) GetDeviceState(ctx context.Context) (*DeviceState, error) {
	var deviceID sql.NullString
	var volume sql.NullInt64
	var updatedAt int64

	err := m.db.QueryRowContext(ctx, `
		SELECT device_id, volume, updated_at FROM device_state WHERE id = 1
	`).Scan(&deviceID, &volume, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil state means first run, not an error
	}
	if err != nil {
		return nil, err
	}

	st := &DeviceState{
		DeviceID:  db.StringOrEmpty(deviceID),
		Volume:    db.NullUint16(volume),
		UpdatedAt: time.Unix(updatedAt, 0),
	}
	return st, nil
}

// SaveDeviceVolume records the device id and its current raw volume.
func (m *Manager) SaveDeviceVolume(ctx context.Context, deviceID string, volume uint16) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO device_state (id, device_id, volume, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			device_id = excluded.device_id,
			volume = excluded.volume,
			updated_at = excluded.updated_at
	`, deviceID, int64(volume), time.Now().Unix())
	return err
}
