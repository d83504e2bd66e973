package compose

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLComposer parses an HTML fragment and removes what ENML forbids.
type HTMLComposer struct{}

// Elements the note service rejects; they are dropped with their content.
var forbiddenElements = map[string]bool{
	"applet": true, "base": true, "basefont": true, "bgsound": true,
	"blink": true, "body": true, "button": true, "dir": true,
	"embed": true, "fieldset": true, "form": true, "frame": true,
	"frameset": true, "head": true, "html": true, "iframe": true,
	"ilayer": true, "input": true, "isindex": true, "label": true,
	"layer": true, "legend": true, "link": true, "marquee": true,
	"menu": true, "meta": true, "noframes": true, "noscript": true,
	"object": true, "optgroup": true, "option": true, "param": true,
	"plaintext": true, "script": true, "select": true, "style": true,
	"textarea": true, "title": true, "xml": true,
}

var forbiddenAttrs = map[string]bool{
	"id": true, "class": true, "accesskey": true, "data": true,
	"dynsrc": true, "tabindex": true,
}

func (c *HTMLComposer) Compose(r io.Reader) (string, error) {
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(r, parent)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sb strings.Builder
	for _, n := range nodes {
		if dropNode(n) {
			continue
		}
		clean(n)
		if err := html.Render(&sb, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func dropNode(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return true
	case html.ElementNode:
		return forbiddenElements[n.Data]
	}
	return false
}

// clean strips forbidden attributes from n and removes forbidden
// descendants. Removals are collected before any are applied.
func clean(n *html.Node) {
	var drop []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			n.Attr = allowedAttrs(n.Attr)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dropNode(c) {
				drop = append(drop, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)

	for _, d := range drop {
		d.Parent.RemoveChild(d)
	}
}

func allowedAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if forbiddenAttrs[key] || strings.HasPrefix(key, "on") || strings.HasPrefix(key, "data-") {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
