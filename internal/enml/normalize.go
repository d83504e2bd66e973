// Package enml converts note content written in the note service's ENML
// dialect into embeddable HTML or plain text.
//
// Every pass first collects its match set and only then mutates the tree,
// so removals never disturb the traversal that found them.
package enml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// MediaResolver maps an en-media hash to a URL. ok is false when the
// resource is unknown or could not be fetched.
type MediaResolver func(hash string) (url string, ok bool)

const (
	nbsp           = "\u00a0"
	paragraphBreak = "\r\n\r\n"
)

var (
	noteSel   = cascadia.MustCompile("en-note")
	mediaSel  = cascadia.MustCompile("en-media")
	spacerSel = cascadia.MustCompile("div, p")
	styledSel = cascadia.MustCompile("[style]")
	breakSel  = cascadia.MustCompile("br")

	markupRe    = regexp.MustCompile(`<[^>]*>`)
	paragraphRe = regexp.MustCompile(`[\r\n]\s+[\r\n]`)

	entityReplacer  = strings.NewReplacer("&nbsp;", " ", "&amp;", "&")
	bracketReplacer = strings.NewReplacer("<", "", ">", "")
)

// Normalize renders raw note content in the requested mode. Malformed markup
// never fails; only an unknown mode does.
func Normalize(raw string, mode Mode, resolve MediaResolver) (string, error) {
	switch mode {
	case ModeRaw:
		return raw, nil
	case ModeBasic:
		return Basic(raw, resolve), nil
	case ModeStrip:
		return Strip(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
}

// Basic returns the inner HTML of the en-note element with spacer blocks,
// inline styles and media placeholders dealt with. A nil resolve drops every
// media reference.
func Basic(raw string, resolve MediaResolver) string {
	doc, err := parse(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}

	removeSpacers(doc)
	removeStyles(doc)
	resolveMedia(doc, resolve)

	root := doc.FindMatcher(noteSel).First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	out, err := root.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Strip flattens raw note content to text. Line breaks become blank-line
// paragraph separators.
func Strip(raw string) string {
	text := raw
	// Content with no tags is already text; reparsing it would fold \r\n.
	if strings.Contains(raw, "<") {
		if doc, err := parse(raw); err == nil {
			for _, br := range doc.FindMatcher(breakSel).Nodes {
				replaceNode(br, &html.Node{Type: html.TextNode, Data: paragraphBreak})
			}
			text = doc.Text()
		}
	}

	text = scrub(text)
	text = paragraphRe.ReplaceAllString(text, paragraphBreak)
	return strings.TrimSpace(text)
}

func parse(raw string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse enml: %w", err)
	}
	return doc, nil
}

// removeSpacers drops div/p blocks holding nothing but a single nbsp.
func removeSpacers(doc *goquery.Document) {
	doc.FindMatcher(spacerSel).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isSpacer(s.Get(0))
	}).Remove()
}

func isSpacer(n *html.Node) bool {
	c := n.FirstChild
	if c == nil || c != n.LastChild || c.Type != html.TextNode {
		return false
	}
	return strings.Trim(c.Data, " \t\r\n\f") == nbsp
}

func removeStyles(doc *goquery.Document) {
	for _, n := range doc.FindMatcher(styledSel).Nodes {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "style" {
				continue
			}
			attrs = append(attrs, a)
		}
		n.Attr = attrs
	}
}

// scrub repeats entity decoding and markup removal until neither changes
// the text. Dropping a tag or bracket can join the halves of an escape.
// Each changing pass shortens the text, so the loop ends.
func scrub(s string) string {
	for {
		next := decodeEntities(s)
		next = markupRe.ReplaceAllString(next, "")
		next = bracketReplacer.Replace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// decodeEntities turns nbsp into a plain space and collapses any
// &nbsp;/&amp; sequences that survived the parser's own decoding.
func decodeEntities(s string) string {
	s = strings.ReplaceAll(s, nbsp, " ")
	for {
		next := entityReplacer.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// replaceNode puts repl (which may be nil) where n was and hoists n's
// children after it.
func replaceNode(n, repl *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	if repl != nil {
		parent.InsertBefore(repl, n)
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
