package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/resonate/internal/engine"
	"github.com/lazypower/resonate/internal/media"
	"github.com/lazypower/resonate/internal/store"
)

// Server is the resonate HTTP API server.
type Server struct {
	db       *store.DB
	engine   *engine.Engine
	provider media.Provider
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server with the given database, engine, provider,
// and version string.
func New(db *store.DB, eng *engine.Engine, provider media.Provider, version string) *Server {
	s := &Server{
		db:       db,
		engine:   eng,
		provider: provider,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/users", s.handleCreateUser)

		r.Get("/session/{userID}", s.handleSession)
		r.Get("/session/{userID}/video/{videoID}", s.handleVideoSession)

		r.Get("/video/{videoID}", s.handleVideo)
		r.Get("/search", s.handleSearch)

		r.Post("/weight/{userID}/{videoID}", s.handleWeight)
		r.Post("/like/{userID}/{videoID}", s.handleLike)
		r.Post("/dislike/{userID}/{videoID}", s.handleDislike)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}
