package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/resonate/internal/media"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	if err := s.db.CreateUser(req.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": req.UserID})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	exists, err := s.db.UserExists(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	session, err := s.engine.BuildSession(r.Context(), userID)
	if err != nil {
		log.Printf("session build for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "can't build a session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleVideoSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	videoID := chi.URLParam(r, "videoID")

	session, err := s.engine.BuildVideoSession(r.Context(), userID, videoID)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			writeError(w, http.StatusNotFound, "can't read video data")
			return
		}
		log.Printf("video session for %s/%s: %v", userID, videoID, err)
		writeError(w, http.StatusInternalServerError, "can't build a session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	vid, err := s.provider.GetDetails(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			writeError(w, http.StatusNotFound, "can't read video data")
			return
		}
		log.Printf("video details for %s: %v", videoID, err)
		writeError(w, http.StatusInternalServerError, "can't read video data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": vid})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	results, err := s.provider.Search(r.Context(), query)
	if err != nil {
		log.Printf("search %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleWeight(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	videoID := chi.URLParam(r, "videoID")

	var req struct {
		Weight float64 `json:"weight"`
	}
	// An absent or zero delta means a plain play: count it as 1.
	json.NewDecoder(r.Body).Decode(&req)
	if req.Weight == 0 {
		req.Weight = 1
	}

	weight, err := s.engine.ApplyDelta(r.Context(), userID, videoID, req.Weight, nil)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "can't read video data")
			return
		}
		log.Printf("weight %s/%s: %v", userID, videoID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weight": weight})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	videoID := chi.URLParam(r, "videoID")

	if err := s.engine.Like(r.Context(), userID, videoID); err != nil {
		if errors.Is(err, media.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "can't read video data")
			return
		}
		log.Printf("like %s/%s: %v", userID, videoID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDislike(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	videoID := chi.URLParam(r, "videoID")

	if err := s.engine.Dislike(r.Context(), userID, videoID); err != nil {
		if errors.Is(err, media.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "can't read video data")
			return
		}
		log.Printf("dislike %s/%s: %v", userID, videoID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
