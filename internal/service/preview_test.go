package service

import (
	"strings"
	"testing"

	"github.com/bharat-ai/bharatai/internal/domain"
)

func TestPlainPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "hello world", "hello world"},
		{"strips emphasis", "**bold** and _italic_", "bold and italic"},
		{"strips headings", "# Title\nbody text", "Title body text"},
		{"strips links keeps text", "see [the docs](https://example.com) here", "see the docs here"},
		{"collapses newlines", "line one\n\nline two", "line one line two"},
		{"strips list markers", "* first\n* second", "first second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainPreview(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainPreviewTruncates(t *testing.T) {
	got := PlainPreview(strings.Repeat("word ", 100))
	if n := len([]rune(got)); n > domain.PreviewLimit {
		t.Errorf("preview length %d exceeds %d", n, domain.PreviewLimit)
	}
}
