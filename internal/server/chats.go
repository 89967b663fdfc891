package server

import (
	"net/http"
	"strings"

	"github.com/bharat-ai/bharatai/internal/middleware"
	"github.com/bharat-ai/bharatai/internal/service"
)

type sendMessageRequest struct {
	Message   string `json:"message"`
	ChatID    string `json:"chatId"`
	ImageData *struct {
		Data     string `json:"data"`
		Type     string `json:"type"`
		FileName string `json:"fileName"`
	} `json:"imageData"`
	GeneratedImageURL string `json:"generatedImageUrl"`
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := service.TurnInput{
		Message:           req.Message,
		ChatID:            req.ChatID,
		GeneratedImageURL: req.GeneratedImageURL,
	}
	if req.ImageData != nil && req.ImageData.Data != "" {
		in.Image = &service.TurnImage{
			Base64:   req.ImageData.Data,
			MimeType: req.ImageData.Type,
			FileName: req.ImageData.FileName,
		}
	}

	result, err := h.chats.SendTurn(r.Context(), user, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) listChats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	chats, err := h.chats.ListChats(r.Context(), user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (h *Handler) getChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	chat, err := h.chats.GetChat(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"chat": chat})
}

type renameChatRequest struct {
	Title string `json:"title"`
}

func (h *Handler) renameChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req renameChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	if err := h.chats.RenameChat(r.Context(), user.ID, r.PathValue("id"), title); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) deleteChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	chatID := r.URL.Query().Get("chatId")
	if chatID == "" {
		respondError(w, http.StatusBadRequest, "Chat ID is required")
		return
	}

	if err := h.chats.DeleteChat(r.Context(), user.ID, chatID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Chat deleted successfully"})
}
