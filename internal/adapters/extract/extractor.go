// Package extract converts source resume documents into plain text for
// profile building.
package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/applyforge/applyforge/internal/core"
)

// TextExtractor handles plain-text and markdown documents. Binary formats
// are rejected with the typed errors the pipeline expects.
type TextExtractor struct{}

// NewTextExtractor constructs a TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the document's text content. Unknown formats fail with
// core.ErrUnsupportedFormat, undecodable bytes with core.ErrCorruptDocument.
func (e *TextExtractor) Extract(_ context.Context, document []byte, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "txt", "text", "md", "markdown":
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
	}

	if len(document) == 0 {
		return "", fmt.Errorf("%w: empty document", core.ErrCorruptDocument)
	}
	if !utf8.Valid(document) {
		return "", fmt.Errorf("%w: not valid UTF-8", core.ErrCorruptDocument)
	}

	text := norm.NFC.String(string(document))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text), nil
}
