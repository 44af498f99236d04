package store

import (
	"fmt"
	"time"
)

// AddLike records a like relation. Inserting an existing pair is a no-op.
func (db *DB) AddLike(userID, videoID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO likes (user_id, video_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, video_id) DO NOTHING
	`, userID, videoID, now)
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

// HasLike reports whether a like relation exists for (userID, videoID).
func (db *DB) HasLike(userID, videoID string) (bool, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM likes WHERE user_id = ? AND video_id = ?
	`, userID, videoID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return n > 0, nil
}

// RemoveLike deletes the like relation. Missing rows are not an error.
func (db *DB) RemoveLike(userID, videoID string) error {
	_, err := db.Exec(`DELETE FROM likes WHERE user_id = ? AND video_id = ?`, userID, videoID)
	if err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}
