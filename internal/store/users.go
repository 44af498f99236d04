package store

import (
	"fmt"
	"time"
)

// CreateUser registers a user id. Re-registering is a no-op.
func (db *DB) CreateUser(userID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO users (user_id, created_at) VALUES (?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, now)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserExists reports whether the user id is registered.
func (db *DB) UserExists(userID string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return n > 0, nil
}
