package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestImageRefUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ImageRef
	}{
		{"bare string", `"https://cdn.example.com/a.png"`, ImageRef{URL: "https://cdn.example.com/a.png"}},
		{"object", `{"publicId":"p1","url":"https://cdn.example.com/b.png"}`, ImageRef{PublicID: "p1", URL: "https://cdn.example.com/b.png"}},
		{"object without publicId", `{"url":"https://cdn.example.com/c.png"}`, ImageRef{URL: "https://cdn.example.com/c.png"}},
		{"whitespace trimmed", `"  https://cdn.example.com/d.png "`, ImageRef{URL: "https://cdn.example.com/d.png"}},
		{"empty string", `""`, ImageRef{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ImageRef
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMessageNormalizeDropsEmptyImage(t *testing.T) {
	m := Message{ID: "m1", Role: RoleUser, Content: "hi", Image: &ImageRef{URL: ""}}
	m.Normalize()
	if m.Image != nil {
		t.Errorf("empty image ref should be dropped")
	}

	m = Message{ID: "m2", Role: RoleAssistant, Content: "ok", Image: &ImageRef{URL: "https://x/y.png"}}
	m.Normalize()
	if m.Image == nil {
		t.Errorf("valid image ref must survive normalization")
	}
}

func TestTitleFromMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "New Chat"},
		{"whitespace only", "   \n\t ", "New Chat"},
		{"short message", "Hello there", "Hello there"},
		{"collapses whitespace", "Hello\n\n  world", "Hello world"},
		{"long cuts at word boundary", strings.Repeat("word ", 20), "word word word word word word word word word..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFromMessage(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleFromMessageNeverExceedsLimit(t *testing.T) {
	got := TitleFromMessage(strings.Repeat("x", 500))
	if n := len([]rune(got)); n > TitleLimit {
		t.Errorf("title length %d exceeds limit %d", n, TitleLimit)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title should end with ellipsis, got %q", got)
	}
}

func TestTruncatePreview(t *testing.T) {
	long := strings.Repeat("a", 150)
	if got := TruncatePreview(long); len([]rune(got)) != PreviewLimit {
		t.Errorf("expected preview capped at %d, got %d", PreviewLimit, len([]rune(got)))
	}
	if got := TruncatePreview("short"); got != "short" {
		t.Errorf("short previews must pass through unchanged, got %q", got)
	}
}
