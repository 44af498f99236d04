package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/lazypower/resonate/internal/media"
	"github.com/lazypower/resonate/internal/store"
)

func testEngine(t *testing.T) (*Engine, *media.Mock) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock := &media.Mock{
		Videos: map[string]*media.Video{
			"vid1": {ID: "vid1", Title: "First", Keywords: []string{"rock"}},
			"vid2": {ID: "vid2", Title: "Second", Keywords: []string{"pop"}},
		},
	}
	return New(db, mock), mock
}

func TestApplyDeltaCreatesRecord(t *testing.T) {
	eng, mock := testEngine(t)
	ctx := context.Background()

	weight, err := eng.ApplyDelta(ctx, "u1", "vid1", 1, nil)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if weight != 1 {
		t.Errorf("weight = %v, want 1", weight)
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if p == nil {
		t.Fatal("record not persisted")
	}
	if p.Weight != 1 {
		t.Errorf("persisted weight = %v, want 1", p.Weight)
	}
	if len(p.TimePoints) != 1 {
		t.Errorf("TimePoints = %v, want one entry", p.TimePoints)
	}
	if len(p.Keywords) != 1 || p.Keywords[0] != "rock" {
		t.Errorf("Keywords = %v, want metadata keywords", p.Keywords)
	}
	if p.FirstSeenAt == "" || p.LastPlayedAtMS == 0 {
		t.Errorf("timestamps not set: %+v", p)
	}
	if len(mock.DetailCalls) != 1 {
		t.Errorf("provider called %d times, want 1", len(mock.DetailCalls))
	}
}

func TestApplyDeltaKnownKeywordsSkipsProvider(t *testing.T) {
	eng, mock := testEngine(t)

	_, err := eng.ApplyDelta(context.Background(), "u1", "vid1", 1, []string{"supplied"})
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if len(mock.DetailCalls) != 0 {
		t.Errorf("provider called %d times, want 0", len(mock.DetailCalls))
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if len(p.Keywords) != 1 || p.Keywords[0] != "supplied" {
		t.Errorf("Keywords = %v, want supplied", p.Keywords)
	}
}

func TestApplyDeltaRunningSum(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	deltas := []float64{1, 2.5, -1, 0.5}
	var sum, weight float64
	var err error
	for _, d := range deltas {
		weight, err = eng.ApplyDelta(ctx, "u1", "vid1", d, nil)
		if err != nil {
			t.Fatalf("ApplyDelta(%v): %v", d, err)
		}
		sum += d
		if weight != sum {
			t.Fatalf("weight = %v, want running sum %v", weight, sum)
		}
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if p == nil || p.Weight != sum {
		t.Fatalf("persisted = %+v, want weight %v", p, sum)
	}
	if len(p.TimePoints) != len(deltas) {
		t.Errorf("TimePoints = %v, want %d entries", p.TimePoints, len(deltas))
	}
}

func TestApplyDeltaDeletesAtZero(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	eng.ApplyDelta(ctx, "u1", "vid1", 2, nil)
	weight, err := eng.ApplyDelta(ctx, "u1", "vid1", -2, nil)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if weight != 0 {
		t.Errorf("weight = %v, want 0", weight)
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if p != nil {
		t.Errorf("record still present at weight 0: %+v", p)
	}
}

func TestApplyDeltaNegativeFirstInteraction(t *testing.T) {
	eng, _ := testEngine(t)

	weight, err := eng.ApplyDelta(context.Background(), "u1", "vid1", -1, nil)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if weight != -1 {
		t.Errorf("weight = %v, want -1", weight)
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if p != nil {
		t.Errorf("non-positive first interaction persisted: %+v", p)
	}
}

func TestApplyDeltaUnresolvableVideo(t *testing.T) {
	eng, _ := testEngine(t)

	_, err := eng.ApplyDelta(context.Background(), "u1", "ghost", 1, nil)
	if err == nil {
		t.Fatal("expected error for unresolvable video")
	}
	if !errors.Is(err, media.ErrNotFound) {
		t.Errorf("error = %v, want media.ErrNotFound", err)
	}
}

func TestApplyDeltaUsesCache(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	eng.ApplyDelta(ctx, "u1", "vid1", 1, nil)

	// Remove the row behind the cache's back: the next mutation still
	// sees the cached record. Update then fails, surfacing the store
	// error rather than silently recreating state.
	eng.DB.DeletePref("u1", "vid1")
	if _, err := eng.ApplyDelta(ctx, "u1", "vid1", 1, nil); err == nil {
		t.Error("expected store error for cached record with missing row")
	}
}

func TestLikeIdempotent(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	if err := eng.Like(ctx, "u1", "vid1"); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if err := eng.Like(ctx, "u1", "vid1"); err != nil {
		t.Fatalf("Like (repeat): %v", err)
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if p == nil || p.Weight != 1 {
		t.Fatalf("weight = %+v, want exactly 1 after double like", p)
	}

	liked, _ := eng.DB.HasLike("u1", "vid1")
	if !liked {
		t.Error("like relation missing")
	}
}

func TestDislikeAtExactZeroRemovesLike(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	eng.ApplyDelta(ctx, "u1", "vid1", 0.7, nil)
	eng.DB.AddLike("u1", "vid1")

	if err := eng.Dislike(ctx, "u1", "vid1"); err != nil {
		t.Fatalf("Dislike: %v", err)
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if p != nil {
		t.Errorf("record still present: %+v", p)
	}
	liked, _ := eng.DB.HasLike("u1", "vid1")
	if liked {
		t.Error("like relation still present after dislike to exactly zero")
	}
}

func TestDislikePastZeroKeepsLikeButDeletesRecord(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()

	eng.ApplyDelta(ctx, "u1", "vid1", 0.5, nil)
	eng.DB.AddLike("u1", "vid1")

	if err := eng.Dislike(ctx, "u1", "vid1"); err != nil {
		t.Fatalf("Dislike: %v", err)
	}

	p, _ := eng.DB.GetPref("u1", "vid1")
	if p != nil {
		t.Errorf("record still present: %+v", p)
	}
	liked, _ := eng.DB.HasLike("u1", "vid1")
	if !liked {
		t.Error("like relation removed on a below-zero landing")
	}
}
