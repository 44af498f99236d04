// Package media resolves video metadata from an external platform.
// The engine only sees the Provider interface; the concrete client
// scrapes public watch/search pages.
package media

import (
	"context"
	"errors"
)

// ErrNotFound means the video (or its mandatory fields) could not be resolved.
var ErrNotFound = errors.New("video not found")

// Provider is the metadata source consumed by the engine.
type Provider interface {
	// GetDetails resolves full metadata for a video id, including its
	// ordered suggestion list. Returns ErrNotFound for unresolvable ids.
	GetDetails(ctx context.Context, videoID string) (*Video, error)
	// Search returns ranked candidate videos for a free-text query.
	Search(ctx context.Context, query string) ([]Suggestion, error)
}

// Suggestion is one entry of a video's related list or a search result.
type Suggestion struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Channel string `json:"channel,omitempty"`
	Length  string `json:"length,omitempty"`
}

// Video is the validated detail record for a single video.
type Video struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Channel       string       `json:"channel"`
	ChannelID     string       `json:"channel_id"`
	Description   string       `json:"description,omitempty"`
	Keywords      []string     `json:"keywords,omitempty"`
	Views         int64        `json:"views"`
	LengthSeconds int64        `json:"length_seconds"`
	Published     string       `json:"published,omitempty"`
	Suggestions   []Suggestion `json:"suggestions"`
}
