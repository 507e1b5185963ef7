package processor

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var listMarkerPattern = regexp.MustCompile(`^(\d+\.|[ivxlcdm]+\.|※|・)`)

// classifyParagraph marks list-like paragraphs and turns pointer paragraphs into
// minor headings. Matching is done on lowercased text.
func classifyParagraph(p *html.Node) {
	text := strings.ToLower(strings.TrimSpace(nodeText(p)))
	if listMarkerPattern.MatchString(text) {
		setNodeAttr(p, "class", "numerada")
	}
	if strings.HasPrefix(text, "▼") {
		renameElement(p, "h6")
	}
}

// formatCommon applies shared formatting: paragraph reflow, paragraph classification
// and link rewriting.
func formatCommon(content *html.Node, baseURL string) error {

	for _, p := range collectNodes(content, func(n *html.Node) bool { return isElement(n, "p") }) {
		if err := reflowParagraph(p); err != nil {
			return err
		}
	}
	// reflow replaces nodes, collect fresh
	for _, p := range collectNodes(content, func(n *html.Node) bool { return isElement(n, "p") }) {
		classifyParagraph(p)
	}
	rewriteLinks(content, baseURL)
	return nil
}

// demoteHeadings pushes every heading one level down, saturating at h6. Processing
// deepest levels first keeps already demoted headings from being demoted twice.
func demoteHeadings(content *html.Node) {
	for i := 6; i > 1; i-- {
		name := fmt.Sprintf("h%d", i)
		to := fmt.Sprintf("h%d", minInt(i+1, 6))
		for _, h := range collectNodes(content, func(n *html.Node) bool { return isElement(n, name) }) {
			renameElement(h, to)
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// chapterID strips the surrounding 第 and 課 from the displayed chapter number.
func chapterID(chapter string) string {
	r := []rune(chapter)
	if len(r) < 2 {
		return chapter
	}
	return string(r[1 : len(r)-1])
}

// promoteFirstHeading turns the first heading of the page into its title heading.
// Glossary keeps its heading in place as h1. Lessons get the heading pulled into a
// header block at the very top of the content, together with the chapter number.
func promoteFirstHeading(content *html.Node, chapter string, kind ContentKind) error {

	first := findFirstNode(content, func(n *html.Node) bool { return headingLevel(n) > 0 })
	if first == nil {
		return nil
	}

	if kind == KindGlossary {
		renameElement(first, "h1")
		setNodeAttr(first, "id", "glossary")
		return nil
	}

	renameElement(first, "h2")
	setNodeAttr(first, "id", "chapter-"+chapterID(chapter))
	detachNode(first)

	header := newElementNode("header")
	p := newElementNode("p")
	setNodeAttr(p, "class", "chapter")
	p.AppendChild(newTextNode(chapter))
	header.AppendChild(p)
	header.AppendChild(first)

	if content.FirstChild != nil {
		content.InsertBefore(header, content.FirstChild)
	} else {
		content.AppendChild(header)
	}
	return nil
}

// detachFootnotes pulls the footnotes list out of the content and renders the page
// footer block. Pages without footnotes get an empty footer placeholder.
func detachFootnotes(content *html.Node) (string, error) {

	footer := findFirstNode(content, func(n *html.Node) bool { return isElement(n, "footer") })
	footnotes := findFirstNode(content, func(n *html.Node) bool {
		return isElement(n, "ol") && hasNodeClass(n, "wp-block-footnotes")
	})

	res := "<footer></footer>"
	if footnotes != nil {
		detachNode(footnotes)
		notes, err := renderNode(footnotes)
		if err != nil {
			return "", err
		}
		res = `<hr/><footer class="footnote">` + notes + `</footer>`
	}
	if footer != nil {
		detachNode(footer)
	}
	return res, nil
}

// formatLesson turns cleaned article content of given kind into a complete XHTML page.
func formatLesson(content *html.Node, title, chapter, pathPart, baseURL, stylesheet string, kind ContentKind) ([]byte, error) {

	if kind != KindGlossary {
		if h := findFirstNode(content, func(n *html.Node) bool { return isElement(n, "header") }); h != nil {
			detachNode(h)
		}
	}

	demoteHeadings(content)
	if err := promoteFirstHeading(content, chapter, kind); err != nil {
		return nil, err
	}
	if err := formatCommon(content, baseURL); err != nil {
		return nil, err
	}

	footerMarkup, err := detachFootnotes(content)
	if err != nil {
		return nil, err
	}

	// the content element itself becomes the page body
	renameElement(content, "body")
	removeNodeAttr(content, "class")
	removeNodeAttr(content, "id")
	setNodeAttr(content, "class", "justified")
	setNodeAttr(content, "id", pathPart)

	body, err := renderNode(content)
	if err != nil {
		return nil, err
	}

	// footnotes block goes after the body, inside the page envelope
	return wrapXHTMLStyled(body+footerMarkup, title, stylesheet)
}
