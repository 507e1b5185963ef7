package processor

import (
	"strings"

	"golang.org/x/net/html"
)

// Site navigation chrome which never belongs in a book.
var unwantedSelectors = []string{"div.sharedaddy", "nav.entry-breadcrumbs", "div.wp-block-buttons"}

// cleanStructure removes unwanted elements, moves line breaks out of anchors and drops
// empty anchors. Safe to run repeatedly, second pass finds nothing to do.
func cleanStructure(content *html.Node) {
	removeUnwantedElements(content)
	hoistBreaksFromAnchors(content)
	removeEmptyAnchors(content)
}

func removeUnwantedElements(content *html.Node) {
	for _, sel := range unwantedSelectors {
		sel := sel
		for _, n := range collectNodes(content, func(n *html.Node) bool { return matchesSelector(n, sel) }) {
			detachNode(n)
		}
	}
}

// hoistBreaksFromAnchors moves br elements found inside anchors to immediately after
// the anchor, keeping their relative order.
func hoistBreaksFromAnchors(content *html.Node) {
	for _, a := range collectNodes(content, func(n *html.Node) bool { return isElement(n, "a") }) {
		last := a
		for _, br := range collectNodes(a, func(n *html.Node) bool { return isElement(n, "br") }) {
			detachNode(br)
			nb := newElementNode("br")
			insertNodeAfter(last, nb)
			last = nb
		}
	}
}

func removeEmptyAnchors(content *html.Node) {
	for _, a := range collectNodes(content, func(n *html.Node) bool { return isElement(n, "a") }) {
		if len(strings.TrimSpace(nodeText(a))) == 0 {
			detachNode(a)
		}
	}
}
