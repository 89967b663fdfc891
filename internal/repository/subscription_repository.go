package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bharat-ai/bharatai/internal/domain"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert stores a push endpoint, reactivating it when the same browser
// re-subscribes.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 ON CONFLICT (user_id, endpoint)
		 DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth, active = TRUE`,
		sub.ID, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) ListActive(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, endpoint, p256dh, auth, active, created_at
		 FROM push_subscriptions WHERE user_id = $1 AND active`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.PushSubscription
	for rows.Next() {
		var s domain.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Deactivate marks an endpoint dead after the push service rejects it.
func (r *SubscriptionRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE push_subscriptions SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepository) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`,
		userID, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}
