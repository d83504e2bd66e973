// Package render turns normalized note output into Markdown or PDF.
package render

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Markdown converts basic-mode note HTML into Markdown.
func Markdown(basicHTML string) (string, error) {
	if strings.TrimSpace(basicHTML) == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(basicHTML)
	if err != nil {
		return "", fmt.Errorf("converting note to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
