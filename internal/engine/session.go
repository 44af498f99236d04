package engine

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/lazypower/resonate/internal/media"
	"github.com/lazypower/resonate/internal/store"
)

// Session is an ordered, duplicate-free list of video ids, built fresh
// per request and never persisted.
type Session struct {
	Data   []string `json:"data"`
	Length int      `json:"length"`
}

// BuildSession assembles a personalized session for a user.
//
// The two ranked views seed the session (freshest record + heaviest
// record), the scorer picks up to five more, then each seed's suggestion
// list is fetched concurrently and interleaved round-robin by rank with
// de-duplication. A user with no play history gets an empty session.
func (e *Engine) BuildSession(ctx context.Context, userID string) (*Session, error) {
	latestPrefs, err := e.DB.LatestPrefs(userID, poolLimit)
	if err != nil {
		return nil, fmt.Errorf("latest prefs: %w", err)
	}
	topPrefs, err := e.DB.TopPrefs(userID, poolLimit)
	if err != nil {
		return nil, fmt.Errorf("top prefs: %w", err)
	}

	if len(latestPrefs) == 0 {
		return &Session{Data: []string{}, Length: 0}, nil
	}

	latest := newCandidates(latestPrefs)
	top := newCandidates(topPrefs)

	// Anchor seeds: the freshest record and the heaviest record. The top
	// seed is absent when its pool is exhausted or it duplicates the
	// recency seed.
	seeds := []*Candidate{latest[0]}
	if len(top) > 0 && top[0].Pref.ID != latest[0].Pref.ID {
		seeds = append(seeds, top[0])
	}
	for _, s := range seeds {
		latest = withoutRecord(latest, s.Pref.ID)
		top = withoutRecord(top, s.Pref.ID)
	}

	rng := newRNG()
	now := e.clock()

	for i := 0; i < seedRounds; i++ {
		sel := selectCandidate(latest, top, now, rng)
		if sel == nil {
			break
		}
		seeds = append(seeds, sel)
		latest = withoutRecord(latest, sel.Pref.ID)
		top = withoutRecord(top, sel.Pref.ID)

		if len(latest) == 0 {
			break
		}
	}

	videos := e.fetchSeedDetails(ctx, seeds)

	session := make([]string, 0, len(seeds))
	seen := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		session = append(session, s.Pref.VideoID)
		seen[s.Pref.VideoID] = true
	}

	var lists [][]media.Suggestion
	for _, v := range videos {
		if v != nil {
			lists = append(lists, v.Suggestions)
		}
	}

	// Round-robin by rank: collect every seed's suggestion at this rank
	// that hasn't been emitted, shuffle the batch, append, advance. Stops
	// at the first rank pass that yields nothing new.
	for rank := 0; ; rank++ {
		var batch []string
		for _, list := range lists {
			if rank >= len(list) {
				continue
			}
			id := list[rank].ID
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			batch = append(batch, id)
		}
		if len(batch) == 0 {
			break
		}
		rng.Shuffle(len(batch), func(i, j int) {
			batch[i], batch[j] = batch[j], batch[i]
		})
		session = append(session, batch...)
	}

	return &Session{Data: session, Length: len(session)}, nil
}

// fetchSeedDetails resolves every seed's metadata concurrently, keeping
// seed order. A failed or timed-out fetch drops that seed's suggestions
// without failing the session.
func (e *Engine) fetchSeedDetails(ctx context.Context, seeds []*Candidate) []*media.Video {
	videos := make([]*media.Video, len(seeds))

	var g errgroup.Group
	for i, s := range seeds {
		i, s := i, s
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()

			v, err := e.Provider.GetDetails(fetchCtx, s.Pref.VideoID)
			if err != nil {
				log.Printf("session: dropping seed %s: %v", s.Pref.VideoID, err)
				return nil
			}
			videos[i] = v
			return nil
		})
	}
	g.Wait()

	return videos
}

// BuildVideoSession assembles a session anchored on a single video: the
// video's own suggestion list with the user's keyword-similar top records
// spliced in at random positions.
func (e *Engine) BuildVideoSession(ctx context.Context, userID, videoID string) (*Session, error) {
	vid, err := e.Provider.GetDetails(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("resolve video %s: %w", videoID, err)
	}

	ids := make([]string, 0, len(vid.Suggestions))
	for _, s := range vid.Suggestions {
		ids = append(ids, s.ID)
	}

	top, err := e.DB.TopPrefs(userID, similarLimit)
	if err != nil {
		return nil, fmt.Errorf("top prefs: %w", err)
	}

	var extras []string
	for _, p := range similar(vid.Keywords, top) {
		extras = append(extras, p.VideoID)
	}

	ids = randomInsert(ids, extras, newRNG())
	return &Session{Data: ids, Length: len(ids)}, nil
}

// similar returns the records sharing at least one keyword with the set.
func similar(keywords []string, prefs []store.Pref) []store.Pref {
	kw := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		kw[k] = true
	}

	var out []store.Pref
	for _, p := range prefs {
		for _, k := range p.Keywords {
			if kw[k] {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// withoutRecord filters a pool by stored record id.
func withoutRecord(pool []*Candidate, id string) []*Candidate {
	out := pool[:0]
	for _, c := range pool {
		if c.Pref.ID != id {
			out = append(out, c)
		}
	}
	return out
}
