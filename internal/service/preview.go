package service

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday"

	"github.com/bharat-ai/bharatai/internal/domain"
)

// PlainPreview renders assistant markdown to plain text for sidebar
// previews and push notification bodies: markdown → HTML → text, with
// whitespace collapsed and the result capped at the preview limit.
func PlainPreview(markdown string) string {
	if markdown == "" {
		return ""
	}

	html := blackfriday.MarkdownCommon([]byte(markdown))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		// Fall back to the raw text with markdown syntax intact.
		return domain.TruncatePreview(collapseWhitespace(markdown))
	}

	return domain.TruncatePreview(collapseWhitespace(doc.Text()))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
