package chatui

import (
	"strings"
	"testing"
	"time"

	"github.com/bharat-ai/bharatai/internal/domain"
)

func summary(id string) domain.ChatSummary {
	now := time.Now()
	return domain.ChatSummary{ID: id, Title: "Chat " + id, MessageCount: 2, CreatedAt: now, UpdatedAt: now}
}

func TestUpsertNewChatNeverDuplicates(t *testing.T) {
	l := NewChatList()
	l.UpsertNewChat(summary("c1"))
	l.UpsertNewChat(summary("c2"))
	l.UpsertNewChat(summary("c1"))

	chats := l.Chats()
	if len(chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(chats))
	}
	if chats[0].ID != "c1" {
		t.Errorf("re-upserted chat should move to the front, got %s", chats[0].ID)
	}
	seen := map[string]int{}
	for _, c := range chats {
		seen[c.ID]++
	}
	if seen["c1"] != 1 {
		t.Errorf("expected exactly one entry for c1, got %d", seen["c1"])
	}
}

func TestLoadFiltersDuplicates(t *testing.T) {
	l := NewChatList()
	l.Load([]domain.ChatSummary{summary("c1"), summary("c2"), summary("c1")})

	if l.Len() != 2 {
		t.Fatalf("expected duplicates filtered on load, got %d entries", l.Len())
	}
}

func TestApplyTurn(t *testing.T) {
	l := NewChatList()
	s := summary("c1")
	s.MessageCount = 4
	l.UpsertNewChat(s)

	longPreview := strings.Repeat("x", 150)
	l.ApplyTurn("c1", 2, longPreview)

	got := l.Chats()[0]
	if got.MessageCount != 6 {
		t.Errorf("expected message count 6, got %d", got.MessageCount)
	}
	if len(got.LastMessage) != domain.PreviewLimit {
		t.Errorf("expected preview truncated to %d, got %d", domain.PreviewLimit, len(got.LastMessage))
	}
}

func TestApplyTurnUnknownChatIsNoop(t *testing.T) {
	l := NewChatList()
	l.UpsertNewChat(summary("c1"))
	l.ApplyTurn("missing", 2, "preview")

	if got := l.Chats()[0]; got.MessageCount != 2 {
		t.Errorf("unrelated chat mutated: %+v", got)
	}
}

func TestRemoveAndMostRecent(t *testing.T) {
	l := NewChatList()
	l.UpsertNewChat(summary("c1"))
	l.UpsertNewChat(summary("c2"))

	if !l.Remove("c2") {
		t.Fatalf("expected removal of existing chat to report true")
	}
	if l.Remove("c2") {
		t.Errorf("second removal should report false")
	}

	next, ok := l.MostRecent()
	if !ok || next.ID != "c1" {
		t.Errorf("expected c1 as fallback, got %+v ok=%v", next, ok)
	}
}
