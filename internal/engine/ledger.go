package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/resonate/internal/store"
)

// ApplyDelta applies a weight delta to the (userID, videoID) preference
// record, creating it on first interaction and deleting it when the
// weight lands at or below zero. Returns the resulting weight.
//
// keywords may carry already-known video keywords; when nil and a new
// record is needed, the metadata provider is consulted, and an
// unresolvable video is a hard error. A returned store error means the
// mutation state is unknown for that record.
func (e *Engine) ApplyDelta(ctx context.Context, userID, videoID string, delta float64, keywords []string) (float64, error) {
	now := e.clock().UTC()
	key := cacheKey(userID, videoID)

	pref := e.cachedPref(key)
	if pref == nil {
		p, err := e.DB.GetPref(userID, videoID)
		if err != nil {
			return 0, fmt.Errorf("load pref: %w", err)
		}
		pref = p
	}

	if pref == nil {
		if keywords == nil {
			vid, err := e.Provider.GetDetails(ctx, videoID)
			if err != nil {
				return 0, fmt.Errorf("resolve video %s: %w", videoID, err)
			}
			keywords = vid.Keywords
		}

		fresh := &store.Pref{
			ID:             uuid.NewString(),
			UserID:         userID,
			VideoID:        videoID,
			Weight:         delta,
			FirstSeenAt:    now.Format(time.RFC3339),
			LastPlayedAt:   now.Format(time.RFC3339),
			LastPlayedAtMS: now.UnixMilli(),
			TimePoints:     []string{now.Format("15:04")},
			Keywords:       keywords,
		}

		// A first interaction that lands at or below zero never persists.
		if fresh.Weight <= 0 {
			return fresh.Weight, nil
		}

		if err := e.DB.InsertPref(fresh); err != nil {
			return 0, fmt.Errorf("insert pref: %w", err)
		}
		e.setCached(key, fresh)
		return fresh.Weight, nil
	}

	// Mutate a copy so a failed write leaves the cached record untouched.
	updated := *pref
	updated.TimePoints = append(append([]string(nil), pref.TimePoints...), now.Format("15:04"))
	updated.Weight = pref.Weight + delta
	updated.LastPlayedAt = now.Format(time.RFC3339)
	updated.LastPlayedAtMS = now.UnixMilli()

	if updated.Weight <= 0 {
		if err := e.DB.DeletePref(userID, videoID); err != nil {
			return 0, fmt.Errorf("delete pref: %w", err)
		}
		e.dropCached(key)
		return updated.Weight, nil
	}

	if err := e.DB.UpdatePref(&updated); err != nil {
		return 0, fmt.Errorf("update pref: %w", err)
	}
	e.setCached(key, &updated)
	return updated.Weight, nil
}

// Like records a like relation and bumps the weight by 1. Idempotent at
// the relation layer: a second like for the same pair changes nothing.
func (e *Engine) Like(ctx context.Context, userID, videoID string) error {
	liked, err := e.DB.HasLike(userID, videoID)
	if err != nil {
		return err
	}
	if liked {
		return nil
	}

	if _, err := e.ApplyDelta(ctx, userID, videoID, likeDelta, nil); err != nil {
		return err
	}
	return e.DB.AddLike(userID, videoID)
}

// Dislike drops the weight by 0.7. Landing exactly at zero also removes
// any like relation; going negative deletes the record without error.
func (e *Engine) Dislike(ctx context.Context, userID, videoID string) error {
	weight, err := e.ApplyDelta(ctx, userID, videoID, dislikeDelta, nil)
	if err != nil {
		return err
	}
	if weight == 0 {
		return e.DB.RemoveLike(userID, videoID)
	}
	return nil
}
