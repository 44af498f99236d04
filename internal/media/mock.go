package media

import (
	"context"
	"sync"
)

// Mock is a test double for the Provider interface.
type Mock struct {
	mu      sync.Mutex
	Videos  map[string]*Video
	Results []Suggestion
	Err     error

	DetailCalls []string // records video ids requested
	SearchCalls []string // records queries requested
}

// GetDetails records the call and serves from the Videos map.
// Unknown ids return ErrNotFound. Safe for concurrent use; the
// session assembler fetches seeds in parallel.
func (m *Mock) GetDetails(ctx context.Context, videoID string) (*Video, error) {
	m.mu.Lock()
	m.DetailCalls = append(m.DetailCalls, videoID)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	v, ok := m.Videos[videoID]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Search records the call and returns the canned results.
func (m *Mock) Search(ctx context.Context, query string) ([]Suggestion, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, query)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}
