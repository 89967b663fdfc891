package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/hashicorp/go-multierror"

	"github.com/bharat-ai/bharatai/internal/domain"
	"github.com/bharat-ai/bharatai/internal/repository"
)

// PushService delivers web push notifications to a user's subscribed
// browsers.
type PushService struct {
	subs       *repository.SubscriptionRepository
	vapidPub   string
	vapidPriv  string
	subscriber string
	logger     *slog.Logger
}

func NewPushService(subs *repository.SubscriptionRepository, vapidPub, vapidPriv, subscriber string, logger *slog.Logger) *PushService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushService{
		subs:       subs,
		vapidPub:   vapidPub,
		vapidPriv:  vapidPriv,
		subscriber: subscriber,
		logger:     logger,
	}
}

// Enabled reports whether VAPID keys are configured.
func (s *PushService) Enabled() bool {
	return s.vapidPub != "" && s.vapidPriv != ""
}

// Notification is the payload shown by the service worker.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Send delivers a notification to every active subscription of the
// user. Per-endpoint failures are aggregated; endpoints the push service
// reports gone are deactivated rather than retried.
func (s *PushService) Send(ctx context.Context, userID string, n Notification) error {
	if !s.Enabled() {
		return nil
	}

	subs, err := s.subs.ListActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	var result *multierror.Error
	for _, sub := range subs {
		if err := s.sendOne(ctx, sub, payload); err != nil {
			result = multierror.Append(result, fmt.Errorf("endpoint %s: %w", sub.ID, err))
		}
	}
	return result.ErrorOrNil()
}

func (s *PushService) sendOne(ctx context.Context, sub domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPub,
		VAPIDPrivateKey: s.vapidPriv,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Gone endpoints are dead browser registrations.
	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		if err := s.subs.Deactivate(ctx, sub.ID); err != nil {
			s.logger.Warn("deactivating dead push endpoint", "subscription_id", sub.ID, "error", err)
		}
		return fmt.Errorf("endpoint gone: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push service error: %d", resp.StatusCode)
	}
	return nil
}
