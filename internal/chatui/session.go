package chatui

import (
	"sync"
	"time"

	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Session holds the active chat's ordered message list and the per-turn
// flags driving the chat screen. All methods are safe for use from the
// UI loop and from in-flight turn callbacks.
type Session struct {
	mu sync.Mutex

	currentChatID string
	messages      []domain.Message
	typing        bool
	imageGenMode  bool
	selectedTools []string
}

func NewSession() *Session {
	return &Session{}
}

// CurrentChatID returns the active chat id, empty when no chat is active.
func (s *Session) CurrentChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChatID
}

// Messages returns a copy of the ordered message list.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

func (s *Session) SetTyping(typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = typing
}

func (s *Session) ImageGenMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageGenMode
}

// ToggleImageGenMode flips the image-generation mode. Entering it clears
// the selected tools; the two modes are mutually exclusive.
func (s *Session) ToggleImageGenMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageGenMode = !s.imageGenMode
	if s.imageGenMode {
		s.selectedTools = nil
	}
	return s.imageGenMode
}

func (s *Session) ExitImageGenMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageGenMode = false
}

func (s *Session) SelectTool(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageGenMode = false
	if lo.Contains(s.selectedTools, id) {
		s.selectedTools = lo.Without(s.selectedTools, id)
		return
	}
	s.selectedTools = append(s.selectedTools, id)
}

func (s *Session) SelectedTools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selectedTools...)
}

// Reset discards the session: no active chat, no messages. Used when
// switching chats or starting a new one.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChatID = ""
	s.messages = nil
	s.typing = false
	s.selectedTools = nil
}

// Load replaces the session with an existing chat's messages. The list
// is deduplicated and image refs are normalized at this boundary.
func (s *Session) Load(chatID string, messages []domain.Message) {
	for i := range messages {
		messages[i].Normalize()
	}
	deduped := Dedupe(messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChatID = chatID
	s.messages = deduped
}

// SetCurrentChat records the server-assigned chat id after a turn that
// created a new chat.
func (s *Session) SetCurrentChat(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChatID = chatID
}

// StageOptimistic appends a pending user message and returns its
// correlation id. It never blocks.
func (s *Session) StageOptimistic(content string, image *domain.ImageRef) string {
	return s.stage(domain.RoleUser, content, image)
}

// StageAssistant appends a pending assistant message, used by the
// image-generation turn before its best-effort persistence.
func (s *Session) StageAssistant(content string, image *domain.ImageRef) string {
	return s.stage(domain.RoleAssistant, content, image)
}

func (s *Session) stage(role domain.Role, content string, image *domain.ImageRef) string {
	corrID := uuid.NewString()
	msg := domain.Message{
		ID:            corrID,
		Role:          role,
		Content:       content,
		Image:         image,
		Timestamp:     time.Now(),
		Pending:       true,
		CorrelationID: corrID,
	}
	msg.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return corrID
}

// Reconcile replaces the pending entry for corrID with the server-confirmed
// pair. Entries already carrying the confirmed ids are removed first, so
// applying the same response twice cannot duplicate the turn. A missing
// pending entry degrades to an idempotent append.
func (s *Session) Reconcile(corrID string, userMsg, assistantMsg domain.Message) {
	s.ReconcileTurn(corrID, "", userMsg, assistantMsg)
}

// ReconcileTurn is Reconcile for turns that staged both sides, as the
// image-generation path does.
func (s *Session) ReconcileTurn(userCorrID, assistantCorrID string, userMsg, assistantMsg domain.Message) {
	userMsg.Normalize()
	assistantMsg.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked(userCorrID, assistantCorrID, userMsg, assistantMsg)
}

// ReconcileTurnFor applies the confirmed pair only while expectedChatID
// is still the active chat and reports whether it applied. The check and
// the apply share one critical section, so a chat switch landing between
// them cannot leak a late turn into the wrong message list. A non-empty
// adoptChatID becomes the active chat on apply; turns that created a new
// chat adopt the server-assigned id this way.
func (s *Session) ReconcileTurnFor(expectedChatID, adoptChatID, userCorrID, assistantCorrID string, userMsg, assistantMsg domain.Message) bool {
	userMsg.Normalize()
	assistantMsg.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentChatID != expectedChatID {
		return false
	}
	if adoptChatID != "" {
		s.currentChatID = adoptChatID
	}
	s.reconcileLocked(userCorrID, assistantCorrID, userMsg, assistantMsg)
	return true
}

func (s *Session) reconcileLocked(userCorrID, assistantCorrID string, userMsg, assistantMsg domain.Message) {
	s.messages = lo.Filter(s.messages, func(m domain.Message, _ int) bool {
		if m.Pending && (m.CorrelationID == userCorrID || (assistantCorrID != "" && m.CorrelationID == assistantCorrID)) {
			return false
		}
		return m.ID != userMsg.ID && m.ID != assistantMsg.ID
	})
	s.messages = append(s.messages, userMsg, assistantMsg)
}

// Rollback removes the pending entry for corrID, restoring the pre-turn
// list. Unknown ids are a no-op.
func (s *Session) Rollback(corrID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = lo.Filter(s.messages, func(m domain.Message, _ int) bool {
		return !(m.Pending && m.CorrelationID == corrID)
	})
}

// Dedupe retains the last occurrence of each message id, preserving the
// chronological order of the retained set. Later entries reflect more
// authoritative state. Idempotent.
func Dedupe(messages []domain.Message) []domain.Message {
	last := make(map[string]int, len(messages))
	for i, m := range messages {
		last[m.ID] = i
	}
	return lo.Filter(messages, func(m domain.Message, i int) bool {
		return last[m.ID] == i
	})
}
