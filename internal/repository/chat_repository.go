package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/domain"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, userID, title string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.QueryRow(ctx,
		`INSERT INTO chats (id, user_id, title) VALUES ($1, $2, $3)
		 RETURNING id, user_id, title, created_at, updated_at`,
		uuid.NewString(), userID, title).
		Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &chat, nil
}

// Get loads one chat with its messages in chronological order. The
// lookup is scoped to the owning user.
func (r *ChatRepository) Get(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM chats WHERE id = $1 AND user_id = $2`,
		chatID, userID).
		Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, role, content, image_url, image_public_id, created_at
		 FROM messages WHERE chat_id = $1 ORDER BY created_at, id`,
		chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Message
		var imageURL, imagePublicID *string
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &imageURL, &imagePublicID, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if imageURL != nil {
			m.Image = &domain.ImageRef{URL: *imageURL}
			if imagePublicID != nil {
				m.Image.PublicID = *imagePublicID
			}
		}
		m.Normalize()
		chat.Messages = append(chat.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get chat messages: %w", err)
	}
	return &chat, nil
}

// ListSummaries returns the user's most recently updated chats with
// message counts and a truncated last-message preview.
func (r *ChatRepository) ListSummaries(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.title, c.created_at, c.updated_at,
		   (SELECT count(*) FROM messages m WHERE m.chat_id = c.id),
		   COALESCE((SELECT m.content FROM messages m WHERE m.chat_id = c.id
		             ORDER BY m.created_at DESC, m.id DESC LIMIT 1), '')
		 FROM chats c WHERE c.user_id = $1
		 ORDER BY c.updated_at DESC LIMIT $2`,
		userID, config.MaxChatsListed)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ChatSummary
	for rows.Next() {
		var s domain.ChatSummary
		var last string
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount, &last); err != nil {
			return nil, fmt.Errorf("scan chat summary: %w", err)
		}
		s.LastMessage = domain.TruncatePreview(last)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// AppendMessages stores a turn's messages and bumps the chat's
// updated_at in one transaction. Timestamps are assigned here so the
// pair sorts in insertion order.
func (r *ChatRepository) AppendMessages(ctx context.Context, chatID string, messages ...*domain.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	base := time.Now()
	for i, m := range messages {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.Timestamp = base.Add(time.Duration(i) * time.Millisecond)

		var imageURL, imagePublicID *string
		if m.Image != nil && m.Image.URL != "" {
			imageURL = &m.Image.URL
			if m.Image.PublicID != "" {
				imagePublicID = &m.Image.PublicID
			}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO messages (id, chat_id, role, content, image_url, image_public_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, chatID, m.Role, m.Content, imageURL, imagePublicID, m.Timestamp)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE chats SET updated_at = now() WHERE id = $1`, chatID); err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *ChatRepository) UpdateTitle(ctx context.Context, chatID, title string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE chats SET title = $2 WHERE id = $1`, chatID, title)
	if err != nil {
		return fmt.Errorf("update chat title: %w", err)
	}
	return nil
}

// Delete removes a chat and, via cascade, its messages. Scoped to the
// owning user so a leaked id cannot delete someone else's chat.
func (r *ChatRepository) Delete(ctx context.Context, userID, chatID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM chats WHERE id = $1 AND user_id = $2`, chatID, userID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}
