package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bharat-ai/bharatai/internal/alert"
	"github.com/bharat-ai/bharatai/internal/domain"
)

// ChatStore is the persistence surface a turn needs.
type ChatStore interface {
	Create(ctx context.Context, userID, title string) (*domain.Chat, error)
	Get(ctx context.Context, userID, chatID string) (*domain.Chat, error)
	ListSummaries(ctx context.Context, userID string) ([]domain.ChatSummary, error)
	AppendMessages(ctx context.Context, chatID string, messages ...*domain.Message) error
	UpdateTitle(ctx context.Context, chatID, title string) error
	Delete(ctx context.Context, userID, chatID string) error
}

// UsageRecorder accounts per-user AI usage.
type UsageRecorder interface {
	AddUsage(ctx context.Context, id string, imagesAnalyzed int, spend decimal.Decimal) error
}

// Responder produces the assistant's side of a turn.
type Responder interface {
	Generate(ctx context.Context, message string, history []HistoryMessage, image *ImageInput) (*Reply, error)
}

// ImageStore persists an attached image on the CDN.
type ImageStore interface {
	UploadImage(ctx context.Context, base64Data, folder string) (*domain.GeneratedImage, error)
}

// ChatService runs one chat turn server-side: find or create the chat,
// upload an attached image, ask the assistant, persist both messages and
// account the usage.
type ChatService struct {
	chats     ChatStore
	users     UsageRecorder
	assistant Responder
	uploader  ImageStore
	alerts    alert.Sink
	logger    *slog.Logger
}

func NewChatService(chats ChatStore, users UsageRecorder,
	assistant Responder, uploader ImageStore, alerts alert.Sink, logger *slog.Logger) *ChatService {
	if alerts == nil {
		alerts = alert.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		chats:     chats,
		users:     users,
		assistant: assistant,
		uploader:  uploader,
		alerts:    alerts,
		logger:    logger,
	}
}

// TurnInput is one incoming send request.
type TurnInput struct {
	Message           string
	ChatID            string
	Image             *TurnImage
	GeneratedImageURL string
}

type TurnImage struct {
	Base64   string
	MimeType string
	FileName string
}

// TurnResult is the confirmed turn returned to the client.
type TurnResult struct {
	ChatID           string         `json:"chatId"`
	IsNewChat        bool           `json:"isNewChat"`
	UserMessage      domain.Message `json:"userMessage"`
	AssistantMessage domain.Message `json:"assistantMessage"`
	ChatTitle        string         `json:"chatTitle"`
}

// SendTurn executes one turn for user. A provider failure does not fail
// the turn: the canned fallback text is stored as the assistant message
// so the user's side of the conversation is kept.
func (s *ChatService) SendTurn(ctx context.Context, user *domain.User, in TurnInput) (*TurnResult, error) {
	if in.Message == "" && in.Image == nil {
		return nil, domain.ErrEmptyMessage
	}

	chat, isNew, err := s.findOrCreateChat(ctx, user.ID, in)
	if err != nil {
		return nil, err
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: in.Message}
	imagesAnalyzed := 0
	if in.Image != nil {
		// Upload failures drop the stored image but keep the turn going.
		// Only successfully stored images count toward the user's total.
		uploaded, err := s.uploadAttachment(ctx, in.Image)
		if err != nil {
			s.logger.Error("uploading chat image", "chat_id", chat.ID, "error", err)
		} else {
			userMsg.Image = &domain.ImageRef{PublicID: uploaded.PublicID, URL: uploaded.URL}
			imagesAnalyzed = 1
		}
	}

	history := make([]HistoryMessage, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		history = append(history, HistoryMessage{Role: string(m.Role), Content: m.Content})
	}

	var assistantImage *ImageInput
	if in.Image != nil {
		assistantImage = &ImageInput{
			Base64:   in.Image.Base64,
			MimeType: in.Image.MimeType,
			FileName: in.Image.FileName,
			Size:     base64.StdEncoding.DecodedLen(len(in.Image.Base64)),
		}
	}

	var spend decimal.Decimal
	reply, err := s.assistant.Generate(ctx, in.Message, history, assistantImage)
	assistantMsg := domain.Message{Role: domain.RoleAssistant}
	if err != nil {
		s.logger.Error("assistant call failed", "chat_id", chat.ID, "error", err)
		s.alerts.ProviderFailure("assistant-webhook", err)
		assistantMsg.Content = FallbackMessage(err)
	} else {
		assistantMsg.Content = reply.Message
		spend = decimal.NewFromFloat(reply.Usage.TotalCost)
	}
	if in.GeneratedImageURL != "" {
		assistantMsg.Image = &domain.ImageRef{URL: in.GeneratedImageURL}
	}

	if err := s.chats.AppendMessages(ctx, chat.ID, &userMsg, &assistantMsg); err != nil {
		s.alerts.Error(err, "persist chat turn")
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	if err := s.users.AddUsage(ctx, user.ID, imagesAnalyzed, spend); err != nil {
		s.logger.Error("recording usage", "user_id", user.ID, "error", err)
	}

	userMsg.Normalize()
	assistantMsg.Normalize()
	return &TurnResult{
		ChatID:           chat.ID,
		IsNewChat:        isNew,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		ChatTitle:        chat.Title,
	}, nil
}

func (s *ChatService) findOrCreateChat(ctx context.Context, userID string, in TurnInput) (*domain.Chat, bool, error) {
	if in.ChatID != "" {
		chat, err := s.chats.Get(ctx, userID, in.ChatID)
		if err != nil {
			return nil, false, err
		}
		return chat, false, nil
	}

	titleSource := in.Message
	if titleSource == "" {
		titleSource = "Image Analysis"
	}
	chat, err := s.chats.Create(ctx, userID, domain.TitleFromMessage(titleSource))
	if err != nil {
		return nil, false, err
	}
	return chat, true, nil
}

func (s *ChatService) uploadAttachment(ctx context.Context, image *TurnImage) (*domain.GeneratedImage, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("no uploader configured")
	}
	return s.uploader.UploadImage(ctx, image.Base64, "bharatai/chat-images")
}

// ListChats returns the user's sidebar summaries with rendered previews.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	summaries, err := s.chats.ListSummaries(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].LastMessage = PlainPreview(summaries[i].LastMessage)
	}
	return summaries, nil
}

// GetChat loads one chat with messages, scoped to the owner.
func (s *ChatService) GetChat(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	return s.chats.Get(ctx, userID, chatID)
}

// RenameChat sets a user-chosen title on an owned chat. Titles are
// capped at the same length as generated ones.
func (s *ChatService) RenameChat(ctx context.Context, userID, chatID, title string) error {
	if _, err := s.chats.Get(ctx, userID, chatID); err != nil {
		return err
	}
	if runes := []rune(title); len(runes) > domain.TitleLimit {
		title = string(runes[:domain.TitleLimit])
	}
	return s.chats.UpdateTitle(ctx, chatID, title)
}

// DeleteChat removes a chat and its messages.
func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID string) error {
	return s.chats.Delete(ctx, userID, chatID)
}
