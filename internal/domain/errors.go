package domain

import "errors"

var (
	ErrChatNotFound         = errors.New("chat not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrEmptyMessage         = errors.New("message or image is required")
	ErrEmptyPrompt          = errors.New("prompt is required")
	ErrContentPolicy        = errors.New("content policy violation")
	ErrImageTooLarge        = errors.New("image must be less than 5MB")
	ErrNotAnImage           = errors.New("file must be an image")
	ErrModelNotFound        = errors.New("model not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrRateLimited          = errors.New("too many requests")
)
