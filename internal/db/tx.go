// Package db holds helpers shared by the SQLite-backed stores.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
)

// WithTx runs fn in a transaction. It commits when fn returns nil and
// rolls back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	_, err := InTx(ctx, db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// InTx is WithTx for functions that produce a value. The value is only
// returned if the commit succeeds.
func InTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin transaction: %w", err)
	}

	v, err := fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return zero, errors.Join(err, rbErr)
		}
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit transaction: %w", err)
	}
	return v, nil
}

// NullUint16 converts a nullable integer column to *uint16, clamping
// values outside the uint16 range. It returns nil for NULL.
func NullUint16(n sql.NullInt64) *uint16 {
	if !n.Valid {
		return nil
	}
	v := uint16(min(max(n.Int64, 0), math.MaxUint16))
	return &v
}

// StringOrEmpty returns the string, or "" for NULL.
func StringOrEmpty(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}
