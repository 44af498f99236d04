package engine

import (
	"context"
	"testing"

	"github.com/lazypower/resonate/internal/media"
	"github.com/lazypower/resonate/internal/store"
)

func seedPref(t *testing.T, db *store.DB, userID, videoID string, weight float64, playedMS int64) {
	t.Helper()
	err := db.InsertPref(&store.Pref{
		ID:             "id-" + userID + "-" + videoID,
		UserID:         userID,
		VideoID:        videoID,
		Weight:         weight,
		FirstSeenAt:    "2026-01-01T10:00:00Z",
		LastPlayedAt:   "2026-01-01T10:00:00Z",
		LastPlayedAtMS: playedMS,
		TimePoints:     []string{"10:00"},
		Keywords:       []string{"rock"},
	})
	if err != nil {
		t.Fatalf("insert pref %s: %v", videoID, err)
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestBuildSessionNoHistory(t *testing.T) {
	eng, _ := testEngine(t)

	session, err := eng.BuildSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}
	if session.Length != 0 {
		t.Errorf("Length = %d, want 0", session.Length)
	}
	if session.Data == nil || len(session.Data) != 0 {
		t.Errorf("Data = %v, want empty non-nil slice", session.Data)
	}
}

func TestBuildSessionSeedsAndInterleave(t *testing.T) {
	eng, mock := testEngine(t)

	// a is the freshest, b the heaviest: both become anchor seeds.
	seedPref(t, eng.DB, "u1", "a", 1, 300)
	seedPref(t, eng.DB, "u1", "b", 10, 100)

	mock.Videos["a"] = &media.Video{
		ID: "a", Title: "A",
		Suggestions: []media.Suggestion{{ID: "x"}, {ID: "y"}, {ID: "z"}},
	}
	mock.Videos["b"] = &media.Video{
		ID: "b", Title: "B",
		// x repeats at rank 0, b repeats its own seed at rank 2
		Suggestions: []media.Suggestion{{ID: "x"}, {ID: "w"}, {ID: "b"}},
	}

	session, err := eng.BuildSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}

	// Seeds first, in seed order.
	if len(session.Data) < 2 || session.Data[0] != "a" || session.Data[1] != "b" {
		t.Fatalf("session does not start with seeds a, b: %v", session.Data)
	}

	// One of everything, nothing twice.
	want := []string{"a", "b", "x", "y", "z", "w"}
	if session.Length != len(want) {
		t.Fatalf("Length = %d, want %d: %v", session.Length, len(want), session.Data)
	}
	seen := make(map[string]int)
	for _, id := range session.Data {
		seen[id]++
	}
	for _, id := range want {
		if seen[id] != 1 {
			t.Errorf("%s appears %d times, want 1", id, seen[id])
		}
	}

	// The shared suggestion lands in the rank-0 batch, right after the
	// seeds; rank order holds across batches.
	if session.Data[2] != "x" {
		t.Errorf("rank-0 batch = %v, want [x]", session.Data[2])
	}
	if indexOf(session.Data, "z") < indexOf(session.Data, "y") {
		t.Errorf("rank order violated: %v", session.Data)
	}
}

func TestBuildSessionDropsFailedSeed(t *testing.T) {
	eng, mock := testEngine(t)

	seedPref(t, eng.DB, "u1", "a", 1, 300)
	seedPref(t, eng.DB, "u1", "broken", 10, 100)

	mock.Videos["a"] = &media.Video{
		ID: "a", Title: "A",
		Suggestions: []media.Suggestion{{ID: "x"}},
	}
	// "broken" is absent from the provider: its fetch fails.

	session, err := eng.BuildSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}

	// The seed id stays; only its suggestion contribution is dropped.
	if indexOf(session.Data, "broken") == -1 {
		t.Errorf("failed seed id missing from session: %v", session.Data)
	}
	if indexOf(session.Data, "x") == -1 {
		t.Errorf("healthy seed's suggestions missing: %v", session.Data)
	}
	if session.Length != 3 {
		t.Errorf("Length = %d, want 3: %v", session.Length, session.Data)
	}
}

func TestBuildSessionSingleRecord(t *testing.T) {
	eng, mock := testEngine(t)

	// The same record heads both pools: the top anchor is skipped and the
	// session still holds each id once.
	seedPref(t, eng.DB, "u1", "a", 5, 300)
	mock.Videos["a"] = &media.Video{
		ID: "a", Title: "A",
		Suggestions: []media.Suggestion{{ID: "x"}},
	}

	session, err := eng.BuildSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}
	if session.Length != 2 || session.Data[0] != "a" || session.Data[1] != "x" {
		t.Errorf("session = %v, want [a x]", session.Data)
	}
}

func TestBuildSessionSelectsFromPools(t *testing.T) {
	eng, mock := testEngine(t)

	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		seedPref(t, eng.DB, "u1", id, float64(10-i), int64(1000-i*100))
		mock.Videos[id] = &media.Video{ID: id, Title: id}
	}

	session, err := eng.BuildSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}

	// Five records, no suggestions: every record is eventually seeded
	// (two anchors + scorer rounds), each exactly once.
	if session.Length != len(ids) {
		t.Fatalf("Length = %d, want %d: %v", session.Length, len(ids), session.Data)
	}
	for _, id := range ids {
		if indexOf(session.Data, id) == -1 {
			t.Errorf("%s missing from session: %v", id, session.Data)
		}
	}
}

func TestBuildVideoSession(t *testing.T) {
	eng, mock := testEngine(t)

	mock.Videos["anchor"] = &media.Video{
		ID: "anchor", Title: "Anchor", Keywords: []string{"rock"},
		Suggestions: []media.Suggestion{{ID: "s1"}, {ID: "s2"}},
	}
	// rock keyword matches the anchor; pop does not.
	seedPref(t, eng.DB, "u1", "p1", 5, 100)
	err := eng.DB.InsertPref(&store.Pref{
		ID: "id-u1-p2", UserID: "u1", VideoID: "p2", Weight: 3,
		FirstSeenAt: "2026-01-01T10:00:00Z", LastPlayedAt: "2026-01-01T10:00:00Z",
		LastPlayedAtMS: 50, TimePoints: []string{"10:00"}, Keywords: []string{"pop"},
	})
	if err != nil {
		t.Fatalf("insert pref: %v", err)
	}

	session, err := eng.BuildVideoSession(context.Background(), "u1", "anchor")
	if err != nil {
		t.Fatalf("BuildVideoSession: %v", err)
	}

	if session.Length != 3 {
		t.Fatalf("Length = %d, want 3: %v", session.Length, session.Data)
	}
	for _, id := range []string{"s1", "s2", "p1"} {
		if indexOf(session.Data, id) == -1 {
			t.Errorf("%s missing: %v", id, session.Data)
		}
	}
	if indexOf(session.Data, "p2") != -1 {
		t.Errorf("keyword-dissimilar record included: %v", session.Data)
	}
}

func TestBuildVideoSessionUnknownAnchor(t *testing.T) {
	eng, _ := testEngine(t)

	_, err := eng.BuildVideoSession(context.Background(), "u1", "ghost")
	if err == nil {
		t.Fatal("expected error for unknown anchor video")
	}
}
