package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bharat-ai/bharatai/internal/domain"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, image, custom_image_url, custom_image_public_id,
	bio, provider, provider_id, api_token, images_analyzed, spend_usd, joined_at, last_active_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var customURL, customPublicID *string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &customURL, &customPublicID,
		&u.Bio, &u.Provider, &u.ProviderID, &u.APIToken,
		&u.Stats.ImagesAnalyzed, &u.Stats.SpendUSD, &u.JoinedAt, &u.LastActiveAt)
	if err != nil {
		return nil, err
	}
	if customURL != nil && *customURL != "" {
		u.CustomImage = &domain.ImageRef{URL: *customURL}
		if customPublicID != nil {
			u.CustomImage.PublicID = *customPublicID
		}
	}
	return &u, nil
}

// FindOrCreate looks a user up by OAuth provider identity, creating the
// record with a fresh API token on first sign-in.
func (r *UserRepository) FindOrCreate(ctx context.Context, email, name, image, provider, providerID string) (*domain.User, bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`,
		provider, providerID)
	user, err := scanUser(row)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	token, err := newAPIToken()
	if err != nil {
		return nil, false, fmt.Errorf("generate api token: %w", err)
	}

	row = r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, name, image, bio, provider, provider_id, api_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+userColumns,
		uuid.NewString(), email, name, image, domain.DefaultBio, provider, providerID, token)
	user, err = scanUser(row)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE api_token = $1`, token)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, bio string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE users SET name = $2, bio = $3 WHERE id = $1 RETURNING `+userColumns,
		id, name, bio)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateCustomImage(ctx context.Context, id string, image *domain.ImageRef) error {
	var url, publicID *string
	if image != nil {
		url, publicID = &image.URL, &image.PublicID
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET custom_image_url = $2, custom_image_public_id = $3 WHERE id = $1`,
		id, url, publicID)
	if err != nil {
		return fmt.Errorf("update custom image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddUsage bumps per-user counters after an AI call. imagesAnalyzed is
// only incremented for turns that carried an image attachment.
func (r *UserRepository) AddUsage(ctx context.Context, id string, imagesAnalyzed int, spend decimal.Decimal) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET images_analyzed = images_analyzed + $2, spend_usd = spend_usd + $3,
		 last_active_at = now() WHERE id = $1`,
		id, imagesAnalyzed, spend)
	if err != nil {
		return fmt.Errorf("add usage: %w", err)
	}
	return nil
}

// Stats attaches chat and message totals to a user's stored counters.
func (r *UserRepository) Stats(ctx context.Context, id string) (domain.UserStats, error) {
	var stats domain.UserStats
	err := r.db.QueryRow(ctx,
		`SELECT
		   (SELECT count(*) FROM chats WHERE user_id = $1),
		   (SELECT count(*) FROM messages m JOIN chats c ON c.id = m.chat_id WHERE c.user_id = $1),
		   u.images_analyzed, u.spend_usd
		 FROM users u WHERE u.id = $1`, id).
		Scan(&stats.TotalChats, &stats.TotalMessages, &stats.ImagesAnalyzed, &stats.SpendUSD)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats, domain.ErrUserNotFound
		}
		return stats, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

// List returns every user, newest first. Admin-only.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY joined_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func newAPIToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
