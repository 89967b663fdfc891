package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/bharat-ai/bharatai/internal/middleware"
)

type profileResponse struct {
	ID       string           `json:"id"`
	Email    string           `json:"email"`
	Name     string           `json:"name"`
	Bio      string           `json:"bio"`
	Image    string           `json:"image"`
	Stats    domain.UserStats `json:"stats"`
	JoinedAt string           `json:"joinedAt"`
}

func (h *Handler) profilePayload(r *http.Request, user *domain.User) (*profileResponse, error) {
	stats, err := h.users.Stats(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return &profileResponse{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Bio:      user.Bio,
		Image:    user.AvatarURL(),
		Stats:    stats,
		JoinedAt: user.JoinedAt.Format("2006-01-02"),
	}, nil
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	payload, err := h.profilePayload(r, user)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": payload})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, strings.TrimSpace(req.Name), req.Bio)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	payload, err := h.profilePayload(r, updated)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": payload})
}

// uploadAvatar replaces the user's profile picture. The previous one is
// removed from the CDN first; that removal failing is not fatal.
func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxAvatarBytes+1024)
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	if header.Size > config.MaxAvatarBytes {
		respondDomainError(w, domain.ErrImageTooLarge)
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		respondDomainError(w, domain.ErrNotAnImage)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	if user.CustomImage != nil && user.CustomImage.PublicID != "" {
		if err := h.uploader.Destroy(r.Context(), user.CustomImage.PublicID); err != nil {
			h.logger.Warn("deleting previous avatar", "user_id", user.ID, "error", err)
		}
	}

	uploaded, err := h.uploader.UploadImage(r.Context(), base64.StdEncoding.EncodeToString(data), "bharatai/profile-pictures")
	if err != nil {
		respondDomainError(w, err)
		return
	}

	ref := &domain.ImageRef{PublicID: uploaded.PublicID, URL: uploaded.URL}
	if err := h.users.UpdateCustomImage(r.Context(), user.ID, ref); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"imageUrl": uploaded.URL,
		"message":  "Profile picture updated successfully",
	})
}

func (h *Handler) deleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if user.CustomImage != nil && user.CustomImage.PublicID != "" {
		if err := h.uploader.Destroy(r.Context(), user.CustomImage.PublicID); err != nil {
			h.logger.Warn("deleting avatar from cdn", "user_id", user.ID, "error", err)
		}
	}

	if err := h.users.UpdateCustomImage(r.Context(), user.ID, nil); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile picture deleted successfully",
	})
}
