// Package compose turns author input (plain text, Markdown or HTML) into an
// ENML body fragment ready to be wrapped with enml.Wrap.
package compose

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupportedFormat is returned by ForFormat for unknown input formats.
var ErrUnsupportedFormat = errors.New("unsupported content format")

// Composer converts one input format into an ENML body.
type Composer interface {
	Compose(r io.Reader) (string, error)
}

// Formats lists the input formats this package can compose.
var Formats = []string{"text", "markdown", "html"}

// ForFormat returns the composer for a format name. An empty name means text.
func ForFormat(format string) (Composer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "txt":
		return &TextComposer{}, nil
	case "markdown", "md":
		return &MarkdownComposer{}, nil
	case "html", "htm":
		return &HTMLComposer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedFormat, format, strings.Join(Formats, ", "))
	}
}
