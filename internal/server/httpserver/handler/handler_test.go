package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/internal/telemetry/logger"
)

type fakeKeys int

func (k fakeKeys) Len() int { return int(k) }

func newTestHandler(t *testing.T, cfg Config) *Handler {
	t.Helper()
	cfg.Logger = logger.Discard()
	return New(cfg)
}

func doRequest(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(RequestIDHeader, "req-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body Response
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}
	return rec, body
}

// ============================================================
// Health
// ============================================================

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, Config{Keys: fakeKeys(3), Version: "v1.2.3"})

	rec, body := doRequest(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body.Code != "OK" || body.RequestID != "req-test" {
		t.Errorf("envelope = %+v", body)
	}
	data, _ := body.Data.(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("status = %v", data["status"])
	}
	if data["keys"] != float64(3) {
		t.Errorf("keys = %v, want 3", data["keys"])
	}
	if data["version"] != "v1.2.3" {
		t.Errorf("version = %v", data["version"])
	}
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, Config{})
	rec, _ := doRequest(t, h, http.MethodPost, "/health")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// ============================================================
// Readiness
// ============================================================

func TestHandleReady(t *testing.T) {
	repl := domain.NewPrimaryStateWithID(strings.Repeat("b", domain.ReplIDLength))

	tests := []struct {
		name       string
		ready      ReadinessFunc
		wantStatus int
		wantCode   string
	}{
		{"default ready", nil, http.StatusOK, "OK"},
		{"ready", func() bool { return true }, http.StatusOK, "OK"},
		{"not ready", func() bool { return false }, http.StatusServiceUnavailable, "RK-REPL-5030"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, Config{Repl: repl, Ready: tt.ready})
			rec, body := doRequest(t, h, http.MethodGet, "/ready")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if tt.wantStatus != http.StatusOK && rec.Header().Get("X-Error-Code") != tt.wantCode {
				t.Errorf("X-Error-Code = %q", rec.Header().Get("X-Error-Code"))
			}
		})
	}
}

// ============================================================
// Replication
// ============================================================

func TestHandleReplication(t *testing.T) {
	id := strings.Repeat("c", domain.ReplIDLength)
	replica, err := domain.NewReplicaState("10.0.0.1", 6379)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		repl        *domain.ReplicationState
		wantStatus  int
		wantRole    string
		wantReplID  string
		wantPrimary string
	}{
		{"primary", domain.NewPrimaryStateWithID(id), http.StatusOK, "master", id, ""},
		{"replica", replica, http.StatusOK, "slave", "", "10.0.0.1:6379"},
		{"not configured", nil, http.StatusNotFound, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, Config{Repl: tt.repl})
			rec, body := doRequest(t, h, http.MethodGet, "/replication")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			data, _ := body.Data.(map[string]any)
			if data["role"] != tt.wantRole {
				t.Errorf("role = %v, want %s", data["role"], tt.wantRole)
			}
			if got, _ := data["replid"].(string); got != tt.wantReplID {
				t.Errorf("replid = %q, want %q", got, tt.wantReplID)
			}
			if got, _ := data["primary"].(string); got != tt.wantPrimary {
				t.Errorf("primary = %q, want %q", got, tt.wantPrimary)
			}
		})
	}
}
