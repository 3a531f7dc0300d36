package extract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/applyforge/applyforge/internal/adapters/extract"
	"github.com/applyforge/applyforge/internal/core"
)

func TestExtractPlainText(t *testing.T) {
	e := extract.NewTextExtractor()

	for _, format := range []string{"txt", "TEXT", " md ", "markdown"} {
		text, err := e.Extract(context.Background(), []byte("Alex Doe\nBackend engineer."), format)
		require.NoError(t, err, "format %q", format)
		require.Equal(t, "Alex Doe\nBackend engineer.", text)
	}
}

func TestExtractNormalizesLineEndingsAndWhitespace(t *testing.T) {
	e := extract.NewTextExtractor()

	text, err := e.Extract(context.Background(), []byte("  Alex Doe\r\nBackend engineer.\r\n"), "txt")
	require.NoError(t, err)
	require.Equal(t, "Alex Doe\nBackend engineer.", text)
}

func TestExtractAppliesNFC(t *testing.T) {
	e := extract.NewTextExtractor()

	// "e" plus combining acute accent normalizes to the precomposed form.
	text, err := e.Extract(context.Background(), []byte("re\u0301sume\u0301"), "txt")
	require.NoError(t, err)
	require.Equal(t, "r\u00e9sum\u00e9", text)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := extract.NewTextExtractor()

	for _, format := range []string{"pdf", "docx", ""} {
		_, err := e.Extract(context.Background(), []byte("content"), format)
		require.ErrorIs(t, err, core.ErrUnsupportedFormat, "format %q", format)
	}
}

func TestExtractCorruptDocument(t *testing.T) {
	e := extract.NewTextExtractor()

	_, err := e.Extract(context.Background(), nil, "txt")
	require.ErrorIs(t, err, core.ErrCorruptDocument)

	_, err = e.Extract(context.Background(), []byte{0xff, 0xfe, 0x00}, "txt")
	require.ErrorIs(t, err, core.ErrCorruptDocument)
}
