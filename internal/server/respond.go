package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bharat-ai/bharatai/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain sentinels onto HTTP statuses, falling
// back to a generic 500 that never leaks internals.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrChatNotFound):
		respondError(w, http.StatusNotFound, "Chat not found")
	case errors.Is(err, domain.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, "Message or image is required")
	case errors.Is(err, domain.ErrEmptyPrompt):
		respondError(w, http.StatusBadRequest, "Prompt is required")
	case errors.Is(err, domain.ErrContentPolicy):
		respondError(w, http.StatusBadRequest, "Content policy violation. Please use appropriate language.")
	case errors.Is(err, domain.ErrImageTooLarge):
		respondError(w, http.StatusBadRequest, "Image must be less than 5MB")
	case errors.Is(err, domain.ErrNotAnImage):
		respondError(w, http.StatusBadRequest, "File must be an image")
	case errors.Is(err, domain.ErrModelNotFound):
		respondError(w, http.StatusBadRequest, "Unknown model")
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		respondError(w, http.StatusNotFound, "Subscription not found")
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
