package domain

import (
	"strings"
	"time"
)

// PreviewLimit caps the sidebar last-message preview.
const PreviewLimit = 100

// TitleLimit caps auto-generated chat titles.
const TitleLimit = 50

// Chat is a full conversation with its ordered message list.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatSummary is the sidebar-level view of a chat, distinct from its
// message list.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TruncatePreview shortens text to the sidebar preview limit.
func TruncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLimit {
		return text
	}
	return string(runes[:PreviewLimit])
}

// TitleFromMessage derives a chat title from the first message, cutting
// at a word boundary when one exists far enough in.
func TitleFromMessage(message string) string {
	clean := strings.Join(strings.Fields(message), " ")
	if clean == "" {
		return "New Chat"
	}

	runes := []rune(clean)
	if len(runes) <= TitleLimit {
		return clean
	}

	truncated := string(runes[:TitleLimit-3])
	if idx := strings.LastIndex(truncated, " "); idx > 20 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
