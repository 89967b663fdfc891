package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        int    `env:"PORT" envDefault:"3000"`

	// AI webhook provider
	WebhookURL    string `env:"AI_WEBHOOK_URL,required"`
	WebhookSecret string `env:"AI_WEBHOOK_SECRET"`

	// Image generation (Cloudflare Workers AI)
	CloudflareAccountID string `env:"CLOUDFLARE_ACCOUNT_ID"`
	CloudflareAPIToken  string `env:"CLOUDFLARE_API_TOKEN"`

	// Image CDN (Cloudinary)
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	// Web push (VAPID)
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDEmail      string `env:"VAPID_EMAIL" envDefault:"mailto:admin@bharatai.com"`

	// Admin
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Ops alerts (optional Telegram channel)
	AlertBotToken string `env:"ALERT_BOT_TOKEN"`
	AlertChatID   int64  `env:"ALERT_CHAT_ID"`

	// Image model catalog override
	ImageModelsPath string `env:"IMAGE_MODELS_PATH"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// AdminConfigured reports whether admin credentials are set at all.
func (c *Config) AdminConfigured() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

// PushConfigured reports whether web push can be used.
func (c *Config) PushConfigured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
