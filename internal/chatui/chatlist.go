package chatui

import (
	"sync"
	"time"

	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/samber/lo"
)

// ChatList maintains the sidebar's ordered chat summaries, most recent
// first. Duplicates by id are filtered on every load and insertion; the
// server may hand back the same chat twice around a create/list race.
type ChatList struct {
	mu    sync.Mutex
	chats []domain.ChatSummary
}

func NewChatList() *ChatList {
	return &ChatList{}
}

// Load replaces the list with a server-provided set, keeping exactly one
// entry per id. The first occurrence wins: the server sorts by recency.
func (l *ChatList) Load(chats []domain.ChatSummary) {
	unique := lo.UniqBy(chats, func(c domain.ChatSummary) string { return c.ID })

	l.mu.Lock()
	defer l.mu.Unlock()
	l.chats = unique
}

// UpsertNewChat prepends a summary, dropping any existing entry with the
// same id first.
func (l *ChatList) UpsertNewChat(summary domain.ChatSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	filtered := lo.Filter(l.chats, func(c domain.ChatSummary, _ int) bool {
		return c.ID != summary.ID
	})
	l.chats = append([]domain.ChatSummary{summary}, filtered...)
}

// ApplyTurn bumps an existing summary after a completed turn: message
// count up by delta, preview replaced, recency refreshed.
func (l *ChatList) ApplyTurn(chatID string, delta int, lastMessage string) {
	preview := domain.TruncatePreview(lastMessage)

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.chats {
		if l.chats[i].ID == chatID {
			l.chats[i].MessageCount += delta
			l.chats[i].LastMessage = preview
			l.chats[i].UpdatedAt = time.Now()
			return
		}
	}
}

// Remove deletes the summary for chatID. The caller selects a fallback
// chat when the active one was removed.
func (l *ChatList) Remove(chatID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	before := len(l.chats)
	l.chats = lo.Filter(l.chats, func(c domain.ChatSummary, _ int) bool {
		return c.ID != chatID
	})
	return len(l.chats) < before
}

// Chats returns a copy of the current summaries.
func (l *ChatList) Chats() []domain.ChatSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ChatSummary, len(l.chats))
	copy(out, l.chats)
	return out
}

// MostRecent returns the entry at the front of the list.
func (l *ChatList) MostRecent() (domain.ChatSummary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.chats) == 0 {
		return domain.ChatSummary{}, false
	}
	return l.chats[0], true
}

func (l *ChatList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chats)
}
