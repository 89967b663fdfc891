package chatui

import (
	"testing"
	"time"

	"github.com/bharat-ai/bharatai/internal/domain"
)

func confirmedPair() (domain.Message, domain.Message) {
	now := time.Now()
	u := domain.Message{ID: "u1", Role: domain.RoleUser, Content: "Hello", Timestamp: now}
	a := domain.Message{ID: "a1", Role: domain.RoleAssistant, Content: "Hi there", Timestamp: now}
	return u, a
}

func TestStageThenReconcile(t *testing.T) {
	s := NewSession()
	s.SetCurrentChat("chat-1")

	corrID := s.StageOptimistic("Hello", nil)

	if msgs := s.Messages(); len(msgs) != 1 || !msgs[0].Pending {
		t.Fatalf("expected one pending message after staging, got %+v", msgs)
	}

	u, a := confirmedPair()
	s.Reconcile(corrID, u, a)

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected exactly 2 messages after reconcile, got %d", len(msgs))
	}
	if msgs[0].ID != "u1" || msgs[1].ID != "a1" {
		t.Errorf("expected [u1 a1], got [%s %s]", msgs[0].ID, msgs[1].ID)
	}
	for _, m := range msgs {
		if m.Pending {
			t.Errorf("message %s still pending after reconcile", m.ID)
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	s := NewSession()
	corrID := s.StageOptimistic("Hello", nil)

	u, a := confirmedPair()
	s.Reconcile(corrID, u, a)
	// Applying the same response again must not duplicate the turn.
	s.Reconcile(corrID, u, a)

	if msgs := s.Messages(); len(msgs) != 2 {
		t.Fatalf("expected 2 messages after double reconcile, got %d", len(msgs))
	}
}

func TestReconcileUnknownCorrelationAppends(t *testing.T) {
	s := NewSession()
	u, a := confirmedPair()

	s.Reconcile("never-staged", u, a)

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].ID != "u1" || msgs[1].ID != "a1" {
		t.Fatalf("expected idempotent append of confirmed pair, got %+v", msgs)
	}
}

func TestReconcileTurnForSkipsSwitchedChat(t *testing.T) {
	s := NewSession()
	s.SetCurrentChat("chat-1")
	corrID := s.StageOptimistic("Hello", nil)

	// The user switches chats while the turn is in flight.
	s.Load("chat-2", []domain.Message{
		{ID: "other", Role: domain.RoleAssistant, Content: "unrelated"},
	})

	u, a := confirmedPair()
	if s.ReconcileTurnFor("chat-1", "", corrID, "", u, a) {
		t.Fatalf("late turn applied after chat switch")
	}

	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].ID != "other" {
		t.Fatalf("late turn leaked into switched chat: %+v", msgs)
	}
	if s.CurrentChatID() != "chat-2" {
		t.Errorf("active chat changed by discarded turn: %s", s.CurrentChatID())
	}
}

func TestReconcileTurnForAppliesAndAdopts(t *testing.T) {
	s := NewSession()
	corrID := s.StageOptimistic("Hello", nil)

	u, a := confirmedPair()
	if !s.ReconcileTurnFor("", "chat-9", corrID, "", u, a) {
		t.Fatalf("turn for the still-active chat was not applied")
	}
	if s.CurrentChatID() != "chat-9" {
		t.Errorf("expected adopted chat id chat-9, got %q", s.CurrentChatID())
	}
	if msgs := s.Messages(); len(msgs) != 2 || msgs[0].ID != "u1" || msgs[1].ID != "a1" {
		t.Fatalf("expected confirmed pair, got %+v", msgs)
	}
}

func TestStageThenRollback(t *testing.T) {
	s := NewSession()
	s.Load("chat-1", []domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "earlier"},
		{ID: "m2", Role: domain.RoleAssistant, Content: "reply"},
	})
	before := s.Messages()

	corrID := s.StageOptimistic("doomed", nil)
	s.Rollback(corrID)

	after := s.Messages()
	if len(after) != len(before) {
		t.Fatalf("rollback did not restore list: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("position %d: expected %s, got %s", i, before[i].ID, after[i].ID)
		}
	}
}

func TestRollbackUnknownIsNoop(t *testing.T) {
	s := NewSession()
	s.StageOptimistic("kept", nil)

	s.Rollback("unknown")

	if len(s.Messages()) != 1 {
		t.Fatalf("rollback of unknown id mutated the list")
	}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []domain.Message
		want []string // expected IDs with expected content markers
	}{
		{
			name: "empty",
			in:   nil,
			want: []string{},
		},
		{
			name: "no duplicates",
			in: []domain.Message{
				{ID: "1"}, {ID: "2"}, {ID: "3"},
			},
			want: []string{"1", "2", "3"},
		},
		{
			name: "last occurrence wins",
			in: []domain.Message{
				{ID: "1", Content: "a"},
				{ID: "1", Content: "b"},
			},
			want: []string{"1"},
		},
		{
			name: "order of retained set preserved",
			in: []domain.Message{
				{ID: "1"}, {ID: "2"}, {ID: "1"}, {ID: "3"},
			},
			want: []string{"2", "1", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d messages, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}

	// Last occurrence carries the authoritative content.
	got := Dedupe([]domain.Message{
		{ID: "1", Content: "a"},
		{ID: "1", Content: "b"},
	})
	if got[0].Content != "b" {
		t.Errorf("expected last occurrence content %q, got %q", "b", got[0].Content)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	in := []domain.Message{
		{ID: "1"}, {ID: "2"}, {ID: "1"}, {ID: "3"}, {ID: "2"},
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("dedupe not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("position %d changed on second pass: %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestLoadNormalizesImages(t *testing.T) {
	s := NewSession()
	s.Load("chat-1", []domain.Message{
		{ID: "m1", Image: &domain.ImageRef{URL: ""}},
		{ID: "m2", Image: &domain.ImageRef{URL: "https://cdn.example.com/x.png"}},
	})

	msgs := s.Messages()
	if msgs[0].Image != nil {
		t.Errorf("empty image ref should be dropped on load")
	}
	if msgs[1].Image == nil {
		t.Errorf("valid image ref should survive load")
	}
}

func TestResetClearsSession(t *testing.T) {
	s := NewSession()
	s.Load("chat-1", []domain.Message{{ID: "m1"}})
	s.SetTyping(true)

	s.Reset()

	if s.CurrentChatID() != "" || len(s.Messages()) != 0 || s.IsTyping() {
		t.Errorf("reset left session populated")
	}
}

func TestImageGenModeExclusivity(t *testing.T) {
	s := NewSession()
	s.SelectTool("upload")
	if on := s.ToggleImageGenMode(); !on {
		t.Fatalf("expected image gen mode on")
	}
	if tools := s.SelectedTools(); len(tools) != 0 {
		t.Errorf("entering image gen mode should clear tools, got %v", tools)
	}

	s.SelectTool("upload")
	if s.ImageGenMode() {
		t.Errorf("selecting a tool should exit image gen mode")
	}
}
