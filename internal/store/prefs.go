package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Pref is one user's persisted affinity for one video.
// TimePoints holds "HH:MM" UTC time-of-day strings, one per play.
type Pref struct {
	ID             string
	UserID         string
	VideoID        string
	Weight         float64
	FirstSeenAt    string
	LastPlayedAt   string
	LastPlayedAtMS int64
	TimePoints     []string
	Keywords       []string
}

const prefColumns = `id, user_id, video_id, weight, first_seen_at, last_played_at, last_played_at_ms, time_points, keywords`

func scanPref(row interface{ Scan(...any) error }) (*Pref, error) {
	var p Pref
	var timePoints, keywords string
	err := row.Scan(&p.ID, &p.UserID, &p.VideoID, &p.Weight,
		&p.FirstSeenAt, &p.LastPlayedAt, &p.LastPlayedAtMS,
		&timePoints, &keywords)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(timePoints), &p.TimePoints); err != nil {
		return nil, fmt.Errorf("decode time_points for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
		return nil, fmt.Errorf("decode keywords for %s: %w", p.ID, err)
	}
	return &p, nil
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

// GetPref returns the preference record for (userID, videoID), or nil if absent.
func (db *DB) GetPref(userID, videoID string) (*Pref, error) {
	p, err := scanPref(db.QueryRow(`
		SELECT `+prefColumns+` FROM prefs WHERE user_id = ? AND video_id = ?
	`, userID, videoID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pref: %w", err)
	}
	return p, nil
}

// LatestPrefs returns the user's most recently played records, freshest first.
func (db *DB) LatestPrefs(userID string, limit int) ([]Pref, error) {
	return db.queryPrefs(`
		SELECT `+prefColumns+` FROM prefs
		WHERE user_id = ? ORDER BY last_played_at_ms DESC LIMIT ?
	`, userID, limit)
}

// TopPrefs returns the user's heaviest records, highest weight first.
func (db *DB) TopPrefs(userID string, limit int) ([]Pref, error) {
	return db.queryPrefs(`
		SELECT `+prefColumns+` FROM prefs
		WHERE user_id = ? ORDER BY weight DESC LIMIT ?
	`, userID, limit)
}

func (db *DB) queryPrefs(query string, args ...any) ([]Pref, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prefs: %w", err)
	}
	defer rows.Close()

	var prefs []Pref
	for rows.Next() {
		p, err := scanPref(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pref: %w", err)
		}
		prefs = append(prefs, *p)
	}
	return prefs, rows.Err()
}

// InsertPref stores a new preference record.
func (db *DB) InsertPref(p *Pref) error {
	_, err := db.Exec(`
		INSERT INTO prefs (`+prefColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.VideoID, p.Weight,
		p.FirstSeenAt, p.LastPlayedAt, p.LastPlayedAtMS,
		encodeList(p.TimePoints), encodeList(p.Keywords))
	if err != nil {
		return fmt.Errorf("insert pref: %w", err)
	}
	return nil
}

// UpdatePref rewrites the mutable fields of an existing record,
// addressed by its (user_id, video_id) natural key.
func (db *DB) UpdatePref(p *Pref) error {
	result, err := db.Exec(`
		UPDATE prefs SET weight = ?, last_played_at = ?, last_played_at_ms = ?, time_points = ?
		WHERE user_id = ? AND video_id = ?
	`, p.Weight, p.LastPlayedAt, p.LastPlayedAtMS, encodeList(p.TimePoints),
		p.UserID, p.VideoID)
	if err != nil {
		return fmt.Errorf("update pref: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no pref for %s/%s", p.UserID, p.VideoID)
	}
	return nil
}

// DeletePref removes the record for (userID, videoID). Missing rows are not an error.
func (db *DB) DeletePref(userID, videoID string) error {
	_, err := db.Exec(`DELETE FROM prefs WHERE user_id = ? AND video_id = ?`, userID, videoID)
	if err != nil {
		return fmt.Errorf("delete pref: %w", err)
	}
	return nil
}

// CountPrefs returns the number of records held for a user.
func (db *DB) CountPrefs(userID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM prefs WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count prefs: %w", err)
	}
	return n, nil
}
