package state

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/llehouerou/wavesconnect/internal/db"
	"github.com/llehouerou/wavesconnect/internal/player"
)

// SaveToken stores tok and its scopes.
func (m *Manager) SaveToken(ctx context.Context, tok *player.Token) error {
	if tok == nil {
		return errors.New("save token: nil token")
	}
	return db.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO tokens (access_token, token_type, expires_in, expiry_ms, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, tok.AccessToken, tok.TokenType, tok.ExpiresIn, tok.ExpiryFromEpoch, time.Now().Unix())
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for i, scope := range tok.Scopes {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO token_scopes (token_id, position, scope) VALUES (?, ?, ?)
			`, id, i, scope); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindToken returns the earliest saved token that is still valid at now
// and was granted at least one of scopes, or nil if there is none.
func (m *Manager) FindToken(ctx context.Context, scopes []string, now time.Time) (*player.Token, error) {
	if len(scopes) == 0 {
		return nil, nil //nolint:nilnil // no scopes can match nothing
	}

	args := make([]any, 0, len(scopes)+1)
	args = append(args, now.UnixMilli())
	for _, s := range scopes {
		args = append(args, s)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(scopes)), ",")

	var tok player.Token
	var id int64
	err := m.db.QueryRowContext(ctx, `
		SELECT t.id, t.access_token, t.token_type, t.expires_in, t.expiry_ms
		FROM tokens t
		WHERE t.expiry_ms > ?
		  AND EXISTS (
			SELECT 1 FROM token_scopes s
			WHERE s.token_id = t.id AND s.scope IN (`+placeholders+`)
		  )
		ORDER BY t.id
		LIMIT 1
	`, args...).Scan(&id, &tok.AccessToken, &tok.TokenType, &tok.ExpiresIn, &tok.ExpiryFromEpoch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil token means cache miss, not an error
	}
	if err != nil {
		return nil, err
	}

	tok.Scopes, err = m.tokenScopes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (m *Manager) tokenScopes(ctx context.Context, tokenID int64) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT scope FROM token_scopes WHERE token_id = ? ORDER BY position
	`, tokenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scopes = append(scopes, s)
	}
	return scopes, rows.Err()
}

// PruneTokens deletes tokens expired at now, with their scopes, and
// returns how many tokens were removed.
func (m *Manager) PruneTokens(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.UnixMilli()
	return db.InTx(ctx, m.db, func(tx *sql.Tx) (int64, error) {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM token_scopes
			WHERE token_id IN (SELECT id FROM tokens WHERE expiry_ms <= ?)
		`, cutoff); err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE expiry_ms <= ?`, cutoff)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
}
