package service

import (
	"context"
	"errors"
	"strings"
)

// FallbackMessage is the canned assistant reply stored when the provider
// call fails; the turn still completes so the user's message is not lost.
func FallbackMessage(err error) string {
	switch categorize(err) {
	case "timeout":
		return "⏱️ **Response Timeout**\n\nYour request took too long to process. Please try again with a shorter message or without large images."
	case "overload":
		return "🚦 **Service Temporarily Busy**\n\n" +
			"The AI service is experiencing high traffic right now.\n\n" +
			"**What you can do:**\n" +
			"* Wait 30-60 seconds and try again\n" +
			"* Your message is saved - just resend it when ready\n\n" +
			"Thank you for your patience! 🙏"
	case "auth":
		return "⚠️ **Service Configuration Issue**\n\nWebhook authentication failed. Please contact support for assistance."
	case "network":
		return "🌐 **Connection Issue**\n\nUnable to reach the AI service. Please check your internet connection and try again."
	default:
		return "I apologize, but I'm experiencing some technical difficulties right now. Please try again in a moment."
	}
}

func categorize(err error) string {
	if err == nil {
		return "unknown"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "503") || strings.Contains(msg, "overloaded"):
		return "overload"
	case strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return "auth"
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return "network"
	}
	return "unknown"
}
