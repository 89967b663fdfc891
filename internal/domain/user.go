package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBio = "AI enthusiast and developer passionate about creating intelligent solutions."

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Image        string    `json:"image,omitempty"`
	CustomImage  *ImageRef `json:"-"`
	Bio          string    `json:"bio"`
	Provider     string    `json:"-"`
	ProviderID   string    `json:"-"`
	APIToken     string    `json:"-"`
	Stats        UserStats `json:"stats"`
	JoinedAt     time.Time `json:"joinedAt"`
	LastActiveAt time.Time `json:"-"`
}

type UserStats struct {
	TotalChats     int             `json:"totalChats"`
	TotalMessages  int             `json:"totalMessages"`
	ImagesAnalyzed int             `json:"imagesAnalyzed"`
	SpendUSD       decimal.Decimal `json:"spendUsd"`
}

// AvatarURL prefers the uploaded custom image over the OAuth provider one.
func (u *User) AvatarURL() string {
	if u.CustomImage != nil && u.CustomImage.URL != "" {
		return u.CustomImage.URL
	}
	return u.Image
}
