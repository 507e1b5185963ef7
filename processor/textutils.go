package processor

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	brPattern    = regexp.MustCompile(`<br\s*/?>`)
	brRunPattern = regexp.MustCompile(`(<br\s*/?>\s*){2,}`)
)

// splitParagraphByBreaks cuts paragraph content on every line break and returns each
// piece wrapped in its own paragraph. Whitespace-only pieces are dropped.
func splitParagraphByBreaks(p *html.Node) ([]*html.Node, error) {

	inner, err := renderChildren(p)
	if err != nil {
		return nil, err
	}

	var res []*html.Node
	for _, part := range brPattern.Split(inner, -1) {
		part = strings.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		nodes, err := parseSnippet("<p>" + part + "</p>")
		if err != nil {
			return nil, err
		}
		res = append(res, nodes...)
	}
	return res, nil
}

// reflowParagraph replaces runs of two or more line breaks inside the paragraph with
// paragraph boundaries. Single breaks are kept as is.
func reflowParagraph(p *html.Node) error {

	inner, err := renderChildren(p)
	if err != nil {
		return err
	}
	if !brRunPattern.MatchString(inner) {
		return nil
	}

	nodes, err := parseSnippet("<p>" + brRunPattern.ReplaceAllString(inner, "</p><p>") + "</p>")
	if err != nil {
		return err
	}
	for _, n := range nodes {
		p.Parent.InsertBefore(n, p)
	}
	detachNode(p)
	return nil
}
