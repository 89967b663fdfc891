package chatui

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorKind categorizes a failed turn for user-facing reporting.
type ErrorKind string

const (
	ErrKindTimeout  ErrorKind = "timeout"
	ErrKindNetwork  ErrorKind = "network"
	ErrKindAuth     ErrorKind = "auth"
	ErrKindOverload ErrorKind = "overload"
	ErrKindUnknown  ErrorKind = "unknown"
)

// TurnError wraps a failed turn with its category and a human-readable
// message. The failed turn's optimistic message has already been rolled
// back by the time the caller sees one.
type TurnError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *TurnError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *TurnError) Unwrap() error { return e.Err }

var userMessages = map[ErrorKind]string{
	ErrKindTimeout:  "Request timed out. Please check your connection and try again.",
	ErrKindNetwork:  "Network error. Please check your internet connection.",
	ErrKindAuth:     "Service authentication failed. Please contact support for assistance.",
	ErrKindOverload: "The AI service is experiencing high traffic right now. Wait a moment and try again.",
	ErrKindUnknown:  "An error occurred while sending your message.",
}

// Classify maps a failed call onto the error taxonomy.
func Classify(err error) *TurnError {
	kind := classifyKind(err)
	return &TurnError{Kind: kind, Message: userMessages[kind], Err: err}
}

func classifyKind(err error) ErrorKind {
	if err == nil {
		return ErrKindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrKindTimeout
		}
		return ErrKindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return ErrKindTimeout
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "unauthorized"):
		return ErrKindAuth
	case strings.Contains(msg, "503") || strings.Contains(msg, "overloaded") || strings.Contains(msg, "busy"):
		return ErrKindOverload
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return ErrKindNetwork
	}
	return ErrKindUnknown
}

// SurfaceError picks the server-supplied message when present, otherwise
// the category default.
func SurfaceError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return Classify(err).Message
}
