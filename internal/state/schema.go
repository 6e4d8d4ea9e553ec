package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			access_token TEXT NOT NULL,
			token_type TEXT NOT NULL,
			expires_in INTEGER NOT NULL,
			expiry_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tokens_expiry ON tokens(expiry_ms);

		CREATE TABLE IF NOT EXISTS token_scopes (
			token_id INTEGER NOT NULL REFERENCES tokens(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			scope TEXT NOT NULL,
			PRIMARY KEY (token_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_token_scopes_scope ON token_scopes(scope);

		CREATE TABLE IF NOT EXISTS device_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			device_id TEXT,
			volume INTEGER,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
