package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aova-labs/aova/internal/dedup"
	"github.com/aova-labs/aova/internal/processor"
	"github.com/aova-labs/aova/internal/store"
)

type Server struct {
	router   *chi.Mux
	port     int
	apiToken string
	db       *store.Postgres // nil when running offline
	proc     *processor.Processor
	dedup    *dedup.Deduplicator // nil when running offline
}

func NewServer(port int, apiToken string, db *store.Postgres, proc *processor.Processor, dd *dedup.Deduplicator) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		apiToken: apiToken,
		db:       db,
		proc:     proc,
		dedup:    dd,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/aova/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/turns", s.postTurn)
		r.Post("/sessions/{sessionID}/close", s.closeSession)
		r.Get("/leads", s.listLeads)
		r.Get("/leads/{leadID}", s.getLead)
		r.Get("/analytics/dashboard", s.dashboard)
		r.Post("/leads/dedup", s.dedupLeads)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware guards the operational endpoints with a static
// token. An unconfigured token denies everything.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	mode := "online"
	if s.db == nil {
		mode = "offline"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"agent": "aova",
		"mode":  mode,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
