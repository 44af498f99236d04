package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "prefs: per-user per-video preference weights",
		SQL: `
CREATE TABLE prefs (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL,
    video_id          TEXT NOT NULL,
    weight            REAL NOT NULL,

    first_seen_at     TEXT NOT NULL,
    last_played_at    TEXT NOT NULL,
    last_played_at_ms INTEGER NOT NULL,

    -- JSON arrays
    time_points       TEXT NOT NULL DEFAULT '[]',
    keywords          TEXT NOT NULL DEFAULT '[]',

    UNIQUE (user_id, video_id)
);

CREATE INDEX idx_prefs_latest ON prefs(user_id, last_played_at_ms DESC);
CREATE INDEX idx_prefs_top    ON prefs(user_id, weight DESC);
`,
	},
	{
		Version:     2,
		Description: "likes: idempotent like relations",
		SQL: `
CREATE TABLE likes (
    id         INTEGER PRIMARY KEY,
    user_id    TEXT NOT NULL,
    video_id   TEXT NOT NULL,
    created_at INTEGER NOT NULL,

    UNIQUE (user_id, video_id)
);
`,
	},
	{
		Version:     3,
		Description: "users: known user registry",
		SQL: `
CREATE TABLE users (
    user_id    TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
