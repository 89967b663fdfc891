package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bharat-ai/bharatai/internal/domain"
)

func (h *Handler) checkAdmin(username, password string) bool {
	if !h.cfg.AdminConfigured() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.AdminPassword)) == 1
	return userOK && passOK
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.cfg.AdminConfigured() {
		respondError(w, http.StatusInternalServerError, "Admin credentials not configured")
		return
	}
	if !h.checkAdmin(req.Username, req.Password) {
		respondJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Authentication successful"})
}

// adminAuth guards admin routes with basic auth against the configured
// credentials.
func (h *Handler) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !h.checkAdmin(username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type adminUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Provider     string `json:"provider"`
	JoinedAt     string `json:"joinedAt"`
	LastActiveAt string `json:"lastActiveAt"`
}

func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	payload := lo.Map(users, func(u domain.User, _ int) adminUser {
		return adminUser{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			Provider:     u.Provider,
			JoinedAt:     u.JoinedAt.Format("2006-01-02"),
			LastActiveAt: u.LastActiveAt.Format("2006-01-02 15:04"),
		}
	})
	respondJSON(w, http.StatusOK, map[string]any{"users": payload, "total": len(payload)})
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	totalSpend := lo.Reduce(users, func(acc decimal.Decimal, u domain.User, _ int) decimal.Decimal {
		return acc.Add(u.Stats.SpendUSD)
	}, decimal.Zero)
	totalImages := lo.SumBy(users, func(u domain.User) int { return u.Stats.ImagesAnalyzed })

	respondJSON(w, http.StatusOK, map[string]any{
		"totalUsers":     len(users),
		"imagesAnalyzed": totalImages,
		"totalSpendUsd":  totalSpend,
	})
}
