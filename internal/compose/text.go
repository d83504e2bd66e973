package compose

import (
	"bufio"
	"html"
	"io"
	"strings"
)

// TextComposer turns plain text into one <div> per paragraph. Lines inside a
// paragraph are joined with <br/>.
type TextComposer struct{}

func (c *TextComposer) Compose(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, html.EscapeString(line))
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, para := range paragraphs {
		sb.WriteString("<div>")
		sb.WriteString(strings.Join(para, "<br/>"))
		sb.WriteString("</div>")
	}
	return sb.String(), nil
}
