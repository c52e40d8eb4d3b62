package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aova-labs/aova/internal/lead"
	"github.com/aova-labs/aova/internal/processor"
	"github.com/aova-labs/aova/internal/session"
	"github.com/aova-labs/aova/internal/store"
)

// postTurn accepts a turn over HTTP, the direct alternative to the NATS
// subject for front ends that speak plain REST.
func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	var t processor.Turn
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := s.proc.ProcessTurn(r.Context(), t)
	switch {
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusConflict, "session is closed")
		return
	case err != nil && res == nil:
		if processor.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A rejected extraction payload still processed the turn; report both.
	body := map[string]any{
		"lead":    res.Lead,
		"phase":   res.Phase,
		"metrics": res.Metrics,
	}
	if err != nil {
		body["warning"] = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
	}
	if req.Reason == "" {
		req.Reason = "api"
	}

	closed := s.proc.Close(r.Context(), sessionID, req.Reason)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"closed":     closed,
	})
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "running offline — no lead store")
		return
	}

	f := store.LeadFilter{
		Status:   lead.Status(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
	}
	if v := r.URL.Query().Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MinScore = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}

	leads, err := s.db.ListLeads(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leads": leads,
		"count": len(leads),
	})
}

func (s *Server) getLead(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "running offline — no lead store")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	l, err := s.db.GetLead(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "running offline — no analytics")
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	data, err := s.db.Dashboard(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// dedupLeads runs the duplicate-lead scan. Dry-run unless execute is set.
func (s *Server) dedupLeads(w http.ResponseWriter, r *http.Request) {
	if s.dedup == nil {
		writeError(w, http.StatusServiceUnavailable, "running offline — no lead store")
		return
	}

	var req struct {
		Execute bool `json:"execute"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.dedup.Run(r.Context(), req.Execute)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "dedup failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
