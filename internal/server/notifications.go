package server

import (
	"net/http"

	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/bharat-ai/bharatai/internal/middleware"
	"github.com/bharat-ai/bharatai/internal/service"
)

func (h *Handler) vapidKey(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.PushConfigured() {
		respondError(w, http.StatusServiceUnavailable, "Push notification service not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": h.cfg.VAPIDPublicKey})
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil || req.Subscription.Endpoint == "" {
		respondError(w, http.StatusBadRequest, "Invalid subscription")
		return
	}

	sub := &domain.PushSubscription{
		UserID:   user.ID,
		Endpoint: req.Subscription.Endpoint,
		P256dh:   req.Subscription.Keys.P256dh,
		Auth:     req.Subscription.Keys.Auth,
	}
	if err := h.subs.Upsert(r.Context(), sub); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Subscription saved"})
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Endpoint == "" {
		respondError(w, http.StatusBadRequest, "Endpoint is required")
		return
	}

	if err := h.subs.Unsubscribe(r.Context(), user.ID, req.Endpoint); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Subscription removed"})
}

// sendNotification pushes a message to the caller's own devices, used by
// the web client to notify about completed turns in background tabs.
func (h *Handler) sendNotification(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		URL     string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Title == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "Title and message are required")
		return
	}
	if !h.push.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "Push notification service not configured")
		return
	}

	err := h.push.Send(r.Context(), user.ID, service.Notification{
		Title: req.Title,
		Body:  service.PlainPreview(req.Message),
		Icon:  "/logo.png",
		URL:   req.URL,
	})
	if err != nil {
		// Partial delivery is fine; report it but do not fail the call.
		h.logger.Warn("push delivery incomplete", "user_id", user.ID, "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
