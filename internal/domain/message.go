package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message. Server-assigned IDs are authoritative;
// client-staged messages carry Pending=true and a CorrelationID until the
// server confirms them.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Image     *ImageRef `json:"image,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Pending       bool   `json:"-"`
	CorrelationID string `json:"-"`
}

// ImageRef is the normalized image attachment shape. Historic payloads
// stored either a bare URL string or an object; both decode into this.
type ImageRef struct {
	PublicID string `json:"publicId,omitempty"`
	URL      string `json:"url"`
}

func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.URL = strings.TrimSpace(s)
		r.PublicID = ""
		return nil
	}

	type plain ImageRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.PublicID = p.PublicID
	r.URL = strings.TrimSpace(p.URL)
	return nil
}

// Normalize drops an empty or invalid image reference so internal logic
// never has to re-derive the original wire shape. Call it on every ingress
// path (API response, storage read).
func (m *Message) Normalize() {
	if m.Image != nil && m.Image.URL == "" {
		m.Image = nil
	}
}
