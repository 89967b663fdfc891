package chatui

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"
)

// Attachment is a locally-held image staged for upload. Release must run
// exactly once over its lifetime, on removal, replacement or send
// completion; double release is absorbed here so callers never leak or
// double-free the handle.
type Attachment struct {
	Path string

	once     sync.Once
	released func()
}

// NewAttachment wraps a local file. releaseFn cleans up whatever preview
// resource the UI holds for it and may be nil.
func NewAttachment(path string, releaseFn func()) *Attachment {
	return &Attachment{Path: path, released: releaseFn}
}

// Encode reads the file into the transferable form the API expects.
func (a *Attachment) Encode() (*ImagePayload, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(a.Path))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return &ImagePayload{
		Data: base64.StdEncoding.EncodeToString(data),
		Type: mimeType,
	}, nil
}

// PreviewRef is the image reference shown on the optimistic message
// before the server returns the uploaded URL.
func (a *Attachment) PreviewRef() string {
	return "file://" + a.Path
}

// Release frees the preview resource. Safe to call more than once; only
// the first call runs the cleanup.
func (a *Attachment) Release() {
	a.once.Do(func() {
		if a.released != nil {
			a.released()
		}
	})
}
