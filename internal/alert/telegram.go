package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

const maxMessageLen = 4000

// Sink receives operational alerts. The nop implementation lets callers
// alert unconditionally; whether anything is delivered is decided once,
// at process start.
type Sink interface {
	Error(err error, context string)
	Registration(email, name, provider string)
	ProviderFailure(provider string, err error)
}

// Nop discards alerts. Used when no alert channel is configured.
type Nop struct{}

func (Nop) Error(error, string)                 {}
func (Nop) Registration(string, string, string) {}
func (Nop) ProviderFailure(string, error)       {}

// Telegram posts alerts to an ops channel.
type Telegram struct {
	bot    *bot.Bot
	chatID int64
	logger *slog.Logger
}

// NewTelegram builds the Telegram sink, or Nop when the token is unset.
func NewTelegram(token string, chatID int64, logger *slog.Logger) Sink {
	if token == "" || chatID == 0 {
		return Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		logger.Error("creating alert bot", "error", err)
		return Nop{}
	}
	return &Telegram{bot: b, chatID: chatID, logger: logger}
}

func (t *Telegram) Error(err error, context string) {
	t.send(fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05")))
}

func (t *Telegram) Registration(email, name, provider string) {
	t.send(fmt.Sprintf("👤 *New Registration*\n\n*Email:* `%s`\n*Name:* %s\n*Provider:* %s",
		email, name, provider))
}

func (t *Telegram) ProviderFailure(provider string, err error) {
	t.send(fmt.Sprintf("🤖 *Provider Failure*\n\n*Provider:* %s\n*Error:* `%s`",
		provider, err.Error()))
}

func (t *Telegram) send(message string) {
	if len([]rune(message)) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		t.logger.Error("sending telegram alert", "error", err)
	}
}
