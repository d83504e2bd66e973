package enml

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MediaRef describes one en-media placeholder.
type MediaRef struct {
	Hash string `json:"hash"`
	Type string `json:"type,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// MediaRefs lists the media placeholders in raw, in document order.
func MediaRefs(raw string) []MediaRef {
	doc, err := parse(raw)
	if err != nil {
		return nil
	}
	nodes := doc.FindMatcher(mediaSel).Nodes
	refs := make([]MediaRef, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, MediaRef{
			Hash: attr(n, "hash"),
			Type: attr(n, "type"),
			Alt:  attr(n, "alt"),
		})
	}
	return refs
}

type mediaSwap struct {
	ref *html.Node
	img *html.Node // nil removes the placeholder
}

// resolveMedia asks resolve about each placeholder in document order, then
// swaps them for <img> elements or removes them.
func resolveMedia(doc *goquery.Document, resolve MediaResolver) {
	nodes := doc.FindMatcher(mediaSel).Nodes
	swaps := make([]mediaSwap, 0, len(nodes))
	for _, n := range nodes {
		swap := mediaSwap{ref: n}
		if resolve != nil {
			if url, ok := resolve(attr(n, "hash")); ok && url != "" {
				swap.img = imageNode(url, attr(n, "alt"))
			}
		}
		swaps = append(swaps, swap)
	}
	for _, s := range swaps {
		replaceNode(s.ref, s.img)
	}
}

func imageNode(src, alt string) *html.Node {
	img := &html.Node{
		Type:     html.ElementNode,
		Data:     "img",
		DataAtom: atom.Img,
		Attr:     []html.Attribute{{Key: "src", Val: src}},
	}
	if alt != "" {
		img.Attr = append(img.Attr, html.Attribute{Key: "alt", Val: alt})
	}
	return img
}
