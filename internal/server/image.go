package server

import (
	"errors"
	"net/http"

	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/bharat-ai/bharatai/internal/middleware"
	"github.com/bharat-ai/bharatai/internal/service"
)

type generateImageRequest struct {
	Prompt   string  `json:"prompt"`
	Model    string  `json:"model"`
	Size     string  `json:"size"`
	Steps    int     `json:"steps"`
	Guidance float64 `json:"guidance"`
}

func (h *Handler) generateImage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req generateImageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	image, err := h.imageGen.Generate(r.Context(), req.Prompt, service.GenerateOptions{
		Model:    req.Model,
		Size:     req.Size,
		Steps:    req.Steps,
		Guidance: req.Guidance,
	})
	if err != nil {
		// Rejected input is the user's problem, not an outage.
		if errors.Is(err, domain.ErrEmptyPrompt) || errors.Is(err, domain.ErrContentPolicy) {
			respondDomainError(w, err)
			return
		}
		h.alerts.ProviderFailure("cloudflare-imagegen", err)
		h.logger.Error("image generation failed", "user_id", user.ID, "error", err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"image": image})
}

func (h *Handler) listImageModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"models": h.models.List()})
}
