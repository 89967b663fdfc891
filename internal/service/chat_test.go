package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bharat-ai/bharatai/internal/domain"
)

type fakeChatStore struct {
	chats        map[string]*domain.Chat
	appended     []*domain.Message
	appendErr    error
	renamed      map[string]string
	deleted      []string
	createdTitle string
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		chats:   map[string]*domain.Chat{},
		renamed: map[string]string{},
	}
}

func (f *fakeChatStore) Create(_ context.Context, userID, title string) (*domain.Chat, error) {
	f.createdTitle = title
	chat := &domain.Chat{ID: "new-chat", UserID: userID, Title: title}
	f.chats[chat.ID] = chat
	return chat, nil
}

func (f *fakeChatStore) Get(_ context.Context, userID, chatID string) (*domain.Chat, error) {
	chat, ok := f.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, domain.ErrChatNotFound
	}
	return chat, nil
}

func (f *fakeChatStore) ListSummaries(context.Context, string) ([]domain.ChatSummary, error) {
	return nil, nil
}

func (f *fakeChatStore) AppendMessages(_ context.Context, chatID string, messages ...*domain.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, messages...)
	return nil
}

func (f *fakeChatStore) UpdateTitle(_ context.Context, chatID, title string) error {
	f.renamed[chatID] = title
	return nil
}

func (f *fakeChatStore) Delete(_ context.Context, _, chatID string) error {
	f.deleted = append(f.deleted, chatID)
	return nil
}

type fakeUsage struct {
	images int
	spend  decimal.Decimal
	calls  int
}

func (f *fakeUsage) AddUsage(_ context.Context, _ string, imagesAnalyzed int, spend decimal.Decimal) error {
	f.calls++
	f.images += imagesAnalyzed
	f.spend = f.spend.Add(spend)
	return nil
}

type fakeResponder struct {
	reply *Reply
	err   error
}

func (f *fakeResponder) Generate(context.Context, string, []HistoryMessage, *ImageInput) (*Reply, error) {
	return f.reply, f.err
}

type fakeImageStore struct {
	err error
}

func (f *fakeImageStore) UploadImage(context.Context, string, string) (*domain.GeneratedImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GeneratedImage{URL: "https://cdn.example.com/up.png", PublicID: "pid-1"}, nil
}

type recordingAlerts struct {
	errors        []string
	registrations []string
	failures      []string
}

func (r *recordingAlerts) Error(_ error, context string) { r.errors = append(r.errors, context) }

func (r *recordingAlerts) Registration(email, _, _ string) {
	r.registrations = append(r.registrations, email)
}

func (r *recordingAlerts) ProviderFailure(provider string, _ error) {
	r.failures = append(r.failures, provider)
}

func newTurnService(store *fakeChatStore, usage *fakeUsage, responder *fakeResponder,
	images *fakeImageStore, alerts *recordingAlerts) *ChatService {
	return NewChatService(store, usage, responder, images, alerts,
		slog.New(slog.DiscardHandler))
}

func TestSendTurnCountsOnlyUploadedImages(t *testing.T) {
	tests := []struct {
		name       string
		uploadErr  error
		wantImages int
		wantRef    bool
	}{
		{"upload succeeds", nil, 1, true},
		{"upload fails", errors.New("cdn down"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeChatStore()
			usage := &fakeUsage{}
			svc := newTurnService(store, usage,
				&fakeResponder{reply: &Reply{Message: "looks like a cat"}},
				&fakeImageStore{err: tt.uploadErr}, &recordingAlerts{})

			result, err := svc.SendTurn(context.Background(), &domain.User{ID: "u1"}, TurnInput{
				Message: "what is this?",
				Image:   &TurnImage{Base64: "aGk=", MimeType: "image/png", FileName: "x.png"},
			})
			if err != nil {
				t.Fatalf("turn failed: %v", err)
			}
			if usage.images != tt.wantImages {
				t.Errorf("images analyzed = %d, want %d", usage.images, tt.wantImages)
			}
			if got := result.UserMessage.Image != nil; got != tt.wantRef {
				t.Errorf("user message image ref present = %v, want %v", got, tt.wantRef)
			}
		})
	}
}

func TestSendTurnProviderFailureStoresFallback(t *testing.T) {
	store := newFakeChatStore()
	alerts := &recordingAlerts{}
	svc := newTurnService(store, &fakeUsage{},
		&fakeResponder{err: errors.New("webhook timeout")}, &fakeImageStore{}, alerts)

	result, err := svc.SendTurn(context.Background(), &domain.User{ID: "u1"}, TurnInput{Message: "hello"})
	if err != nil {
		t.Fatalf("provider failure must not fail the turn: %v", err)
	}
	if result.AssistantMessage.Content == "" {
		t.Errorf("expected a fallback assistant message")
	}
	if len(store.appended) != 2 {
		t.Errorf("expected both sides persisted, got %d messages", len(store.appended))
	}
	if len(alerts.failures) != 1 || alerts.failures[0] != "assistant-webhook" {
		t.Errorf("expected one provider failure alert, got %v", alerts.failures)
	}
}

func TestSendTurnPersistFailureAlerts(t *testing.T) {
	store := newFakeChatStore()
	store.appendErr = errors.New("db gone")
	alerts := &recordingAlerts{}
	svc := newTurnService(store, &fakeUsage{},
		&fakeResponder{reply: &Reply{Message: "hi"}}, &fakeImageStore{}, alerts)

	_, err := svc.SendTurn(context.Background(), &domain.User{ID: "u1"}, TurnInput{Message: "hello"})
	if err == nil {
		t.Fatalf("expected persistence error to fail the turn")
	}
	if len(alerts.errors) != 1 {
		t.Errorf("expected one error alert, got %v", alerts.errors)
	}
}

func TestSendTurnNewChatTitle(t *testing.T) {
	store := newFakeChatStore()
	svc := newTurnService(store, &fakeUsage{},
		&fakeResponder{reply: &Reply{Message: "hi"}}, &fakeImageStore{}, &recordingAlerts{})

	result, err := svc.SendTurn(context.Background(), &domain.User{ID: "u1"}, TurnInput{Message: "Plan my week"})
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if !result.IsNewChat || result.ChatID != "new-chat" {
		t.Fatalf("expected a new chat, got %+v", result)
	}
	if store.createdTitle != "Plan my week" {
		t.Errorf("title = %q, want the first message", store.createdTitle)
	}
}

func TestRenameChat(t *testing.T) {
	store := newFakeChatStore()
	store.chats["c1"] = &domain.Chat{ID: "c1", UserID: "u1", Title: "old"}
	svc := newTurnService(store, &fakeUsage{},
		&fakeResponder{reply: &Reply{Message: "hi"}}, &fakeImageStore{}, &recordingAlerts{})

	if err := svc.RenameChat(context.Background(), "u1", "c1", "Trip notes"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if store.renamed["c1"] != "Trip notes" {
		t.Errorf("title = %q, want %q", store.renamed["c1"], "Trip notes")
	}

	if err := svc.RenameChat(context.Background(), "u2", "c1", "x"); !errors.Is(err, domain.ErrChatNotFound) {
		t.Errorf("rename by non-owner: got %v, want ErrChatNotFound", err)
	}
}

func TestRenameChatCapsTitleLength(t *testing.T) {
	store := newFakeChatStore()
	store.chats["c1"] = &domain.Chat{ID: "c1", UserID: "u1"}
	svc := newTurnService(store, &fakeUsage{},
		&fakeResponder{reply: &Reply{Message: "hi"}}, &fakeImageStore{}, &recordingAlerts{})

	long := ""
	for range 20 {
		long += "abcdef"
	}
	if err := svc.RenameChat(context.Background(), "u1", "c1", long); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if got := len([]rune(store.renamed["c1"])); got != domain.TitleLimit {
		t.Errorf("stored title length = %d, want %d", got, domain.TitleLimit)
	}
}
