package server

import (
	"net/http"
	"strings"
)

type tokenRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
}

// exchangeToken swaps a verified OAuth identity for the user's API
// token, creating the account on first sign-in. The caller (the web
// frontend's auth callback, or an operator) is trusted to have verified
// the identity with the provider.
func (h *Handler) exchangeToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Provider == "" || req.ProviderID == "" {
		respondError(w, http.StatusBadRequest, "email, provider and providerId are required")
		return
	}

	user, created, err := h.users.FindOrCreate(r.Context(), req.Email, req.Name, req.Image, req.Provider, req.ProviderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if created {
		h.logger.Info("user registered", "user_id", user.ID, "provider", user.Provider)
		h.alerts.Registration(user.Email, user.Name, user.Provider)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": user.APIToken,
		"user":  user,
	})
}
