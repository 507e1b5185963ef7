package processor

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// walkNodes visits nodes in document order, fn returning false prunes the subtree.
func walkNodes(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

// collectNodes returns nodes under root (in document order) for which match returns true.
// NOTE: collection happens before any mutation, so matched nodes could be detached safely.
func collectNodes(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var res []*html.Node
	walkNodes(root, func(n *html.Node) bool {
		if match(n) {
			res = append(res, n)
		}
		return true
	})
	return res
}

func findFirstNode(root *html.Node, match func(*html.Node) bool) *html.Node {
	var res *html.Node
	walkNodes(root, func(n *html.Node) bool {
		if res != nil {
			return false
		}
		if match(n) {
			res = n
			return false
		}
		return true
	})
	return res
}

func isElement(n *html.Node, name string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == name
}

func getNodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setNodeAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeNodeAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func hasNodeClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getNodeAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// matchesSelector handles the few selector forms we actually use: "tag", ".class" and "tag.class".
func matchesSelector(n *html.Node, sel string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	tag, class := sel, ""
	if i := strings.IndexByte(sel, '.'); i >= 0 {
		tag, class = sel[:i], sel[i+1:]
	}
	if len(tag) > 0 && n.Data != tag {
		return false
	}
	if len(class) > 0 && !hasNodeClass(n, class) {
		return false
	}
	return true
}

func nodeBySelector(root *html.Node, sel string) *html.Node {
	return findFirstNode(root, func(n *html.Node) bool {
		return matchesSelector(n, sel)
	})
}

// nodeText concatenates all text content under the node.
func nodeText(n *html.Node) string {
	var buf strings.Builder
	walkNodes(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		return true
	})
	return buf.String()
}

func detachNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// unwrapNode replaces the node with its own children preserving document order.
func unwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

func insertNodeAfter(ref, n *html.Node) {
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(n, ref.NextSibling)
	} else {
		ref.Parent.AppendChild(n)
	}
}

func newElementNode(name string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}
}

func newTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func renameElement(n *html.Node, name string) {
	n.Data = name
	n.DataAtom = atom.Lookup([]byte(name))
}

// headingLevel returns 1 to 6 for h1..h6 elements, 0 otherwise.
func headingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode {
		return 0
	}
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}

// parseDocument parses a complete HTML page the way browsers do, always producing html/head/body.
func parseDocument(data []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse HTML: %w", err)
	}
	return doc, nil
}

// parseSnippet parses markup in body context and returns resulting sibling nodes, detached.
func parseSnippet(markup string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to parse HTML fragment: %w", err)
	}
	return nodes, nil
}

// renderNode serializes a single node to markup. Serialization escapes text and
// closes void elements XML style, so the result is usable inside XHTML.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("unable to serialize HTML: %w", err)
	}
	return buf.String(), nil
}

// renderChildren serializes all children of the node, in order.
func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("unable to serialize HTML: %w", err)
		}
	}
	return buf.String(), nil
}
