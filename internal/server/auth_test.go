package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/domain"
)

type fakeUserStore struct {
	existing map[string]*domain.User // keyed by provider:providerID
	created  []string
}

func (f *fakeUserStore) FindOrCreate(_ context.Context, email, name, _, provider, providerID string) (*domain.User, bool, error) {
	key := provider + ":" + providerID
	if u, ok := f.existing[key]; ok {
		return u, false, nil
	}
	u := &domain.User{
		ID:       "u-" + providerID,
		Email:    email,
		Name:     name,
		Provider: provider,
		APIToken: "tok-" + providerID,
	}
	if f.existing == nil {
		f.existing = map[string]*domain.User{}
	}
	f.existing[key] = u
	f.created = append(f.created, email)
	return u, true, nil
}

func (f *fakeUserStore) GetByToken(_ context.Context, token string) (*domain.User, error) {
	for _, u := range f.existing {
		if u.APIToken == token {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserStore) Stats(context.Context, string) (domain.UserStats, error) {
	return domain.UserStats{}, nil
}

func (f *fakeUserStore) UpdateProfile(context.Context, string, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserStore) UpdateCustomImage(context.Context, string, *domain.ImageRef) error {
	return nil
}

func (f *fakeUserStore) List(context.Context) ([]domain.User, error) { return nil, nil }

type recordingSink struct {
	errors        []string
	registrations []string
	failures      []string
}

func (r *recordingSink) Error(_ error, context string) { r.errors = append(r.errors, context) }

func (r *recordingSink) Registration(email, _, _ string) {
	r.registrations = append(r.registrations, email)
}

func (r *recordingSink) ProviderFailure(provider string, _ error) {
	r.failures = append(r.failures, provider)
}

func TestExchangeTokenFirstSignIn(t *testing.T) {
	users := &fakeUserStore{}
	sink := &recordingSink{}
	h := New(Deps{Cfg: &config.Config{}, Users: users, Alerts: sink})

	body := `{"email":"dev@example.com","name":"Dev","provider":"google","providerId":"g-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.exchangeToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Token != "tok-g-1" {
		t.Errorf("token = %q, want the user's api token", resp.Token)
	}
	if len(sink.registrations) != 1 || sink.registrations[0] != "dev@example.com" {
		t.Errorf("expected one registration alert, got %v", sink.registrations)
	}
}

func TestExchangeTokenReturningUser(t *testing.T) {
	users := &fakeUserStore{existing: map[string]*domain.User{
		"google:g-1": {ID: "u1", Email: "dev@example.com", APIToken: "tok-old"},
	}}
	sink := &recordingSink{}
	h := New(Deps{Cfg: &config.Config{}, Users: users, Alerts: sink})

	body := `{"email":"dev@example.com","provider":"google","providerId":"g-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.exchangeToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "tok-old") {
		t.Errorf("expected existing token, got %s", rec.Body.String())
	}
	if len(sink.registrations) != 0 {
		t.Errorf("returning user must not alert, got %v", sink.registrations)
	}
}

func TestExchangeTokenValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"provider":"google","providerId":"g-1"}`},
		{"missing provider", `{"email":"a@b.c","providerId":"g-1"}`},
		{"missing provider id", `{"email":"a@b.c","provider":"google"}`},
		{"bad body", `{`},
	}

	h := New(Deps{Cfg: &config.Config{}, Users: &fakeUserStore{}, Alerts: &recordingSink{}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.exchangeToken(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rec.Code)
			}
		})
	}
}

func TestExchangeTokenRoutedWithoutAuth(t *testing.T) {
	users := &fakeUserStore{}
	h := New(Deps{Cfg: &config.Config{}, Users: users, Alerts: &recordingSink{}})

	body := `{"email":"dev@example.com","provider":"github","providerId":"gh-7"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("token exchange should not require a bearer token, got %d", rec.Code)
	}
	if len(users.created) != 1 {
		t.Errorf("expected the user provisioned, got %v", users.created)
	}
}
