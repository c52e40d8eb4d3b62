package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aova-labs/aova/internal/processor"
	"github.com/aova-labs/aova/internal/session"
	"github.com/aova-labs/aova/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer runs offline (no db, no dedup) with a real processor backed by
// the no-op store.
func testServer(token string) *Server {
	proc := processor.New(store.Nop{}, session.NewManager(), discardLogger())
	return NewServer(8760, token, nil, proc, nil)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer("secret")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := testServer("secret")

	req := httptest.NewRequest("GET", "/api/v1/aova/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "aova" {
		t.Errorf("expected agent aova, got %q", body["agent"])
	}
	if body["mode"] != "offline" {
		t.Errorf("expected mode offline, got %q", body["mode"])
	}
}

func TestAuth(t *testing.T) {
	srv := testServer("secret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer wrong", http.StatusUnauthorized},
		{"valid token", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/turns",
				strings.NewReader(`{"session_id":"s1","role":"user","content":"hola"}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("code = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuth_UnconfiguredTokenDeniesAll(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("POST", "/api/v1/turns",
		strings.NewReader(`{"session_id":"s1","role":"user","content":"hola"}`))
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}
}

func TestPostTurn(t *testing.T) {
	srv := testServer("secret")

	req := httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(
		`{"session_id":"s1","role":"user","content":"necesitamos ayuda","extracted_fields":{"name":"Ana"}}`))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Lead  struct{ Name string }
		Phase string
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Lead.Name != "Ana" {
		t.Errorf("lead name = %q", body.Lead.Name)
	}
	if body.Phase != "discovery" {
		t.Errorf("phase = %q, want discovery", body.Phase)
	}
}

func TestPostTurn_ValidationError(t *testing.T) {
	srv := testServer("secret")

	req := httptest.NewRequest("POST", "/api/v1/turns",
		strings.NewReader(`{"session_id":"s1","role":"user","content":"  "}`))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", w.Code)
	}
}

func TestPostTurn_RejectedExtractionWarns(t *testing.T) {
	srv := testServer("secret")

	req := httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(
		`{"session_id":"s1","role":"user","content":"hola","extracted_fields":{"bogus_key":1}}`))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["warning"]; !ok {
		t.Error("expected warning for rejected extraction")
	}
}

func TestCloseSession(t *testing.T) {
	srv := testServer("secret")

	turn := httptest.NewRequest("POST", "/api/v1/turns",
		strings.NewReader(`{"session_id":"s1","role":"user","content":"hola"}`))
	turn.Header.Set("Authorization", "Bearer secret")
	srv.router.ServeHTTP(httptest.NewRecorder(), turn)

	req := httptest.NewRequest("POST", "/api/v1/sessions/s1/close", strings.NewReader(`{"reason":"hangup"}`))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	var body struct {
		Closed bool `json:"closed"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Closed {
		t.Error("closed = false on first close")
	}

	// Turns after close are rejected with a conflict.
	after := httptest.NewRequest("POST", "/api/v1/turns",
		strings.NewReader(`{"session_id":"s1","role":"user","content":"hola"}`))
	after.Header.Set("Authorization", "Bearer secret")
	w2 := httptest.NewRecorder()
	srv.router.ServeHTTP(w2, after)
	if w2.Code != http.StatusConflict {
		t.Errorf("post-close turn code = %d, want 409", w2.Code)
	}
}

func TestOfflineReadsUnavailable(t *testing.T) {
	srv := testServer("secret")

	for _, path := range []string{"/api/v1/leads", "/api/v1/analytics/dashboard"} {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer secret")
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s code = %d, want 503", path, w.Code)
		}
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := testServer("secret")

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
