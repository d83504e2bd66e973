package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var blankLineRe = regexp.MustCompile(`(\r?\n){2,}`)

// PDF lays out a note title and its strip-mode text on A4 pages. Blank
// lines separate paragraphs.
func PDF(title, text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, para := range Paragraphs(text) {
		pdf.MultiCell(0, 5, tr(para), "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Paragraphs splits text on blank lines and drops empty pieces.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range blankLineRe.Split(text, -1) {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\r", ""))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
