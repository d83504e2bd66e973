package compose

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// MarkdownComposer renders Markdown with goldmark and then applies the same
// cleanup as HTMLComposer. Raw HTML inside the Markdown is dropped.
type MarkdownComposer struct{}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Table),
	goldmark.WithRendererOptions(gmhtml.WithXHTML()),
)

func (c *MarkdownComposer) Compose(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return (&HTMLComposer{}).Compose(&buf)
}
