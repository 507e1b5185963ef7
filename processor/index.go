package processor

import (
	"strings"

	"github.com/asaskevich/govalidator"
	"golang.org/x/net/html"
)

const sectionUncategorized = "Uncategorized"

// parseLessonText splits index entry text into number and title. Entries without the
// number delimiter keep the whole text as both the title and the displayed number.
func parseLessonText(text string) (number, display, title string) {

	text = strings.TrimSpace(text)
	i := strings.Index(text, "課:")
	if i < 0 {
		return "N/A", text, text
	}

	numPart := strings.TrimSpace(text[:i])
	title = strings.TrimSpace(text[i+len("課:"):])
	number = strings.ReplaceAll(numPart, "第", "")
	display = numPart + "課"
	return number, display, title
}

// extractLessonLink pulls link information out of an index entry, unwrapping the anchor
// and dropping ornamental empty em elements along the way. Returns nil when the entry
// has no anchor or when its href is not a usable URL.
func extractLessonLink(entry *html.Node) *LessonLink {

	a := findFirstNode(entry, func(n *html.Node) bool { return isElement(n, "a") })
	if a == nil {
		return nil
	}

	web := getNodeAttr(a, "href")
	relative := web
	if i := strings.Index(web, ".org/"); i >= 0 {
		relative = strings.Trim(web[i+len(".org/"):], "/")
	}

	unwrapNode(a)
	for _, em := range collectNodes(entry, func(n *html.Node) bool { return isElement(n, "em") }) {
		if len(strings.TrimSpace(nodeText(em))) == 0 {
			detachNode(em)
		}
	}

	if !govalidator.IsURL(web) {
		return nil
	}
	return &LessonLink{Web: web, Relative: relative}
}

// extractIndex walks headings and paragraphs of the index page in document order,
// grouping lessons under the most recent heading. Lessons are numbered globally
// starting from 1 with no gaps. Entries seen before any heading land in the
// "Uncategorized" section. Sections which end up with no lessons are dropped.
func extractIndex(content *html.Node) (*Index, error) {

	var (
		order    []*Section
		sections = make(map[string]*Section)
	)
	getSection := func(title string) *Section {
		if s, exists := sections[title]; exists {
			return s
		}
		s := &Section{Title: title}
		sections[title] = s
		order = append(order, s)
		return s
	}

	current := sectionUncategorized
	counter := 1

	elements := collectNodes(content, func(n *html.Node) bool {
		return headingLevel(n) > 0 || isElement(n, "p")
	})

	for _, el := range elements {
		if headingLevel(el) > 0 {
			current = strings.TrimSpace(nodeText(el))
			getSection(current)
			continue
		}

		entries, err := splitParagraphByBreaks(el)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			link := extractLessonLink(entry)
			number, display, title := parseLessonText(nodeText(entry))
			getSection(current).Lessons = append(getSection(current).Lessons, &Lesson{
				GlobalNumber:  counter,
				Number:        number,
				DisplayNumber: display,
				Title:         title,
				Link:          link,
			})
			counter++
		}
	}

	idx := &Index{}
	for _, s := range order {
		if len(s.Lessons) > 0 {
			idx.Sections = append(idx.Sections, s)
		}
	}
	return idx, nil
}
