package config

import "time"

const (
	// Client-side hard timeout for one send turn
	SendTimeout = 60 * time.Second

	// AI webhook request timeout (server side)
	WebhookTimeout = 60 * time.Second

	// Image generation request timeout
	ImageGenTimeout = 90 * time.Second

	// Conversation history window passed to the provider
	HistoryWindow = 10

	// Sidebar list cap
	MaxChatsListed = 50

	// Messages added per completed turn (user + assistant)
	MessagesPerTurn = 2

	// Viewport lines from the bottom still counted as "at bottom"
	BottomThresholdLines = 3

	// Avatar upload cap
	MaxAvatarBytes = 5 * 1024 * 1024

	// Per-user request rate limit (per minute)
	RateLimitPerMinute = 30

	// Database pool sizing
	DBMaxConns = 20
	DBMinConns = 5

	// Image generation defaults
	DefaultImageModel = "stable-diffusion"
	DefaultImageSize  = "1024x1024"
	DefaultImageSteps = 20
	DefaultGuidance   = 7.5
)

// BannedPromptWords are rejected before image generation.
var BannedPromptWords = []string{"nude", "naked", "explicit", "nsfw", "porn", "sexual"}
