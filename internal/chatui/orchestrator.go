package chatui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/domain"
)

// Navigator mirrors the chat screen's navigable location. The web app
// rewrites the query string; the terminal client keeps it in its status
// line.
type Navigator interface {
	SetChatURL(chatID string)
	ClearChatURL()
}

// NopNavigator ignores navigation updates.
type NopNavigator struct{}

func (NopNavigator) SetChatURL(string) {}
func (NopNavigator) ClearChatURL()     {}

// Orchestrator runs one user turn to completion: stage the optimistic
// message, call the API, reconcile the result into the session, update
// the chat list and navigation state. Failures roll the optimistic entry
// back; state is never left inconsistent.
type Orchestrator struct {
	client  *Client
	session *Session
	chats   *ChatList
	nav     Navigator
	logger  *slog.Logger
}

func NewOrchestrator(client *Client, session *Session, chats *ChatList, nav Navigator, logger *slog.Logger) *Orchestrator {
	if nav == nil {
		nav = NopNavigator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{client: client, session: session, chats: chats, nav: nav, logger: logger}
}

// TurnOutcome reports how a turn ended.
type TurnOutcome struct {
	ChatID    string
	IsNewChat bool
	// Discarded means the response arrived after the active chat changed
	// and was not applied to the message list.
	Discarded bool
	Err       *TurnError
}

func (o TurnOutcome) Success() bool { return o.Err == nil }

// SendMessage runs a plain message turn, optionally with an attachment.
// The attachment is released on completion regardless of outcome.
func (o *Orchestrator) SendMessage(ctx context.Context, text string, attachment *Attachment) TurnOutcome {
	if text == "" && attachment == nil {
		return TurnOutcome{}
	}

	capturedChatID := o.session.CurrentChatID()
	o.session.SetTyping(true)
	defer o.session.SetTyping(false)
	if attachment != nil {
		defer attachment.Release()
	}

	var payload *ImagePayload
	var previewRef *domain.ImageRef
	if attachment != nil {
		encoded, err := attachment.Encode()
		if err != nil {
			o.logger.Error("encoding attachment", "error", err)
			return TurnOutcome{Err: &TurnError{Kind: ErrKindUnknown, Message: "Failed to process image. Please try again.", Err: err}}
		}
		payload = encoded
		previewRef = &domain.ImageRef{URL: attachment.PreviewRef()}
	}

	corrID := o.session.StageOptimistic(text, previewRef)

	ctx, cancel := context.WithTimeout(ctx, config.SendTimeout)
	defer cancel()

	resp, err := o.client.SendMessage(ctx, SendRequest{
		Message:   text,
		ChatID:    capturedChatID,
		ImageData: payload,
	})
	if err != nil {
		o.session.Rollback(corrID)
		turnErr := Classify(err)
		if msg := SurfaceError(err); msg != "" {
			turnErr.Message = msg
		}
		o.logger.Error("send turn failed", "kind", turnErr.Kind, "error", err)
		return TurnOutcome{Err: turnErr}
	}

	return o.applyTurn(capturedChatID, corrID, "", resp, resp.AssistantMessage.Content)
}

// GenerateImage runs an image-generation turn. The generated assistant
// message is kept in memory even when the secondary persistence call
// fails; that failure is logged, not surfaced.
func (o *Orchestrator) GenerateImage(ctx context.Context, prompt string) TurnOutcome {
	if prompt == "" {
		return TurnOutcome{}
	}

	capturedChatID := o.session.CurrentChatID()
	o.session.SetTyping(true)
	defer o.session.SetTyping(false)

	content := "🎨 Generate image: " + prompt
	corrID := o.session.StageOptimistic(content, nil)

	genCtx, cancel := context.WithTimeout(ctx, config.ImageGenTimeout)
	defer cancel()

	image, err := o.client.GenerateImage(genCtx, GenerateImageRequest{
		Prompt: prompt,
		Model:  config.DefaultImageModel,
		Size:   config.DefaultImageSize,
	})
	if err != nil {
		o.session.Rollback(corrID)
		turnErr := Classify(err)
		if msg := SurfaceError(err); msg != "" {
			turnErr.Message = msg
		}
		o.logger.Error("image generation failed", "kind", turnErr.Kind, "error", err)
		return TurnOutcome{Err: turnErr}
	}

	assistantContent := fmt.Sprintf("I've generated an image based on your prompt: %q", prompt)
	aiCorrID := o.session.StageAssistant(assistantContent, &domain.ImageRef{URL: image.URL})

	// Best-effort persistence; the in-memory pair stays either way.
	persistCtx, cancelPersist := context.WithTimeout(ctx, config.SendTimeout)
	defer cancelPersist()

	resp, err := o.client.SendMessage(persistCtx, SendRequest{
		Message:           content,
		ChatID:            capturedChatID,
		GeneratedImageURL: image.URL,
	})
	if err != nil {
		o.logger.Warn("saving generated image turn", "error", err)
		return TurnOutcome{ChatID: capturedChatID}
	}

	preview := "Generated image: " + truncatePrompt(prompt)
	return o.applyTurn(capturedChatID, corrID, aiCorrID, resp, preview)
}

// applyTurn reconciles a confirmed turn and updates the chat list. The
// reconciliation is keyed by the chat id captured at call time: a late
// response for a chat the user has since left is discarded rather than
// applied to the wrong message list.
func (o *Orchestrator) applyTurn(capturedChatID, corrID, aiCorrID string, resp *TurnResponse, preview string) TurnOutcome {
	adopt := ""
	if resp.IsNewChat {
		adopt = resp.ChatID
	}
	applied := o.session.ReconcileTurnFor(capturedChatID, adopt, corrID, aiCorrID, resp.UserMessage, resp.AssistantMessage)

	if resp.IsNewChat {
		now := time.Now()
		o.chats.UpsertNewChat(domain.ChatSummary{
			ID:           resp.ChatID,
			Title:        resp.ChatTitle,
			MessageCount: config.MessagesPerTurn,
			LastMessage:  domain.TruncatePreview(preview),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if applied {
			o.nav.SetChatURL(resp.ChatID)
		}
	} else {
		o.chats.ApplyTurn(resp.ChatID, config.MessagesPerTurn, preview)
	}

	return TurnOutcome{ChatID: resp.ChatID, IsNewChat: resp.IsNewChat, Discarded: !applied}
}

// LoadChat makes chatID the active chat and loads its messages.
func (o *Orchestrator) LoadChat(ctx context.Context, chatID string) error {
	chat, err := o.client.GetChat(ctx, chatID)
	if err != nil {
		return fmt.Errorf("loading chat %s: %w", chatID, err)
	}
	o.session.Load(chat.ID, chat.Messages)
	o.nav.SetChatURL(chat.ID)
	return nil
}

// NewChat resets to an empty session.
func (o *Orchestrator) NewChat() {
	o.session.Reset()
	o.nav.ClearChatURL()
}

// RefreshChats reloads the sidebar from the server.
func (o *Orchestrator) RefreshChats(ctx context.Context) error {
	chats, err := o.client.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("listing chats: %w", err)
	}
	o.chats.Load(chats)
	return nil
}

// DeleteChat removes a chat. When it was the active one, the most recent
// remaining chat becomes active, or the session resets when none is left.
func (o *Orchestrator) DeleteChat(ctx context.Context, chatID string) error {
	if err := o.client.DeleteChat(ctx, chatID); err != nil {
		return fmt.Errorf("deleting chat %s: %w", chatID, err)
	}

	o.chats.Remove(chatID)

	if o.session.CurrentChatID() == chatID {
		if next, ok := o.chats.MostRecent(); ok {
			if err := o.LoadChat(ctx, next.ID); err != nil {
				return err
			}
		} else {
			o.NewChat()
		}
	}
	return nil
}

func truncatePrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= 50 {
		return prompt
	}
	return string(runes[:50]) + "..."
}
