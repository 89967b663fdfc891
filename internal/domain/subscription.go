package domain

import "time"

// PushSubscription is a stored web-push endpoint for one browser/device.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
