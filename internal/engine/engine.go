// Package engine implements the personalization core: the preference
// ledger (weight lifecycle), the weighted candidate scorer, and the
// session assembler.
package engine

import (
	"sync"
	"time"

	"github.com/lazypower/resonate/internal/media"
	"github.com/lazypower/resonate/internal/store"
)

const (
	// poolLimit caps the recency and weight pools per request.
	poolLimit = 10
	// seedRounds is the number of scorer draws after the two anchor seeds.
	seedRounds = 5
	// decayWindow drives both the multiplicative decay and the
	// degradation penalty in the scorer.
	decayWindow = 7 * 24 * time.Hour
	// fetchTimeout bounds each per-seed metadata fetch; expiry is
	// treated the same as a fetch failure.
	fetchTimeout = 10 * time.Second
	// similarLimit is the top-pool size consulted for video-anchored sessions.
	similarLimit = 20

	likeDelta    = 1.0
	dislikeDelta = -0.7
)

// Engine owns the preference lifecycle and session assembly for all users.
// The pref cache is an optimization only; the store stays the source of truth.
type Engine struct {
	DB       *store.DB
	Provider media.Provider

	mu    sync.Mutex
	cache map[string]*store.Pref // userID+":"+videoID -> last written record

	clock func() time.Time
}

// New creates an Engine over the given store and metadata provider.
func New(db *store.DB, provider media.Provider) *Engine {
	return &Engine{
		DB:       db,
		Provider: provider,
		cache:    make(map[string]*store.Pref),
		clock:    time.Now,
	}
}

func cacheKey(userID, videoID string) string {
	return userID + ":" + videoID
}

func (e *Engine) cachedPref(key string) *store.Pref {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache[key]
}

func (e *Engine) setCached(key string, p *store.Pref) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache[key] = p
}

func (e *Engine) dropCached(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, key)
}
