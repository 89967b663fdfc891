package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bharat-ai/bharatai/internal/config"
)

func adminHandler() *Handler {
	return New(Deps{Cfg: &config.Config{AdminUsername: "admin", AdminPassword: "s3cret"}})
}

func TestAdminLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"username":"admin","password":"s3cret"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"wrong username", `{"username":"root","password":"s3cret"}`, http.StatusUnauthorized},
		{"bad body", `{`, http.StatusBadRequest},
	}

	h := adminHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.adminLogin(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAdminLoginUnconfigured(t *testing.T) {
	h := New(Deps{Cfg: &config.Config{}})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"a","password":"b"}`))
	rec := httptest.NewRecorder()
	h.adminLogin(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when credentials unset, got %d", rec.Code)
	}
}

func TestAdminAuthGuards(t *testing.T) {
	h := adminHandler()
	called := false
	guarded := h.adminAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("expected 401 without auth, got %d (called=%v)", rec.Code, called)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.SetBasicAuth("admin", "s3cret")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected pass-through with valid auth, got %d (called=%v)", rec.Code, called)
	}
}
