package processor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

func esc(s string) string {
	return html.EscapeString(s)
}

// createIndexPage renders the site index as a structured contents page.
func (p *Processor) createIndexPage() (*Fragment, error) {

	var buf strings.Builder
	buf.WriteString(`<body class="justified"><h1>IMABI - Table of Contents 目次</h1>`)

	counter := 0
	for _, s := range p.Book.Index.Sections {
		fmt.Fprintf(&buf, `<h2>%s</h2><ol start="%d" class="no-list-type">`, esc(s.Title), counter+1)
		for _, l := range s.Lessons {
			counter++
			if l.HasLink() {
				fmt.Fprintf(&buf, `<li>%s • <a href="../Text/%s">%s</a></li>`, esc(l.DisplayNumber), l.Filename(), esc(l.Title))
			} else {
				fmt.Fprintf(&buf, `<li>%s • %s</li>`, esc(l.DisplayNumber), esc(l.Title))
			}
		}
		buf.WriteString("</ol>")
	}
	buf.WriteString("</body>")

	data, err := p.wrapPage(buf.String(), "IMABI Index")
	if err != nil {
		return nil, err
	}
	return &Fragment{ID: "index", Title: "IMABI Index", Data: data}, nil
}

// createTOCPage renders the book navigation page with anchors into lesson files.
func (p *Processor) createTOCPage() (*Fragment, error) {

	var buf strings.Builder
	buf.WriteString(`<body class="justified"><h1>Table of Contents</h1>`)

	counter := 0
	for i, s := range p.Book.Index.Sections {
		fmt.Fprintf(&buf, `<h2 id="section-%d">%s</h2><ol start="%d" class="no-list-type toc">`, i+1, esc(s.Title), counter+1)
		for _, l := range s.Lessons {
			counter++
			if l.HasLink() {
				fmt.Fprintf(&buf, `<li><a href="%s">%s • %s</a></li>`, l.Filename(), esc(l.DisplayNumber), esc(l.Title))
			} else {
				fmt.Fprintf(&buf, `<li>%s • %s</li>`, esc(l.DisplayNumber), esc(l.Title))
			}
		}
		buf.WriteString("</ol>")
	}
	buf.WriteString("</body>")

	data, err := p.wrapPage(buf.String(), "Table of Contents")
	if err != nil {
		return nil, err
	}
	return &Fragment{ID: "toc_page", Title: "Table of Contents", Data: data}, nil
}

// createSectionPage renders a divider page opening a section.
func (p *Processor) createSectionPage(num int, title string) (*Fragment, error) {

	content := fmt.Sprintf(`<body class="justified"><div class="half-title align-center"><h1 class="section-title">%s</h1></div></body>`, esc(title))

	id := fmt.Sprintf("section-%d", num)
	data, err := p.wrapPage(content, "Section - "+title)
	if err != nil {
		return nil, err
	}
	return &Fragment{ID: id, Title: "Section - " + title, Data: data}, nil
}

// createTitlePage renders the book title page from its template.
func (p *Processor) createTitlePage() (*Fragment, error) {

	content, err := p.expandTemplate("title", p.env.Cfg.Doc.Pages.TitleTemplate)
	if err != nil {
		return nil, fmt.Errorf("unable to expand title page template: %w", err)
	}
	data, err := p.wrapPage(content, "Title Page")
	if err != nil {
		return nil, err
	}
	return &Fragment{ID: "title", Title: "Title Page", Data: data}, nil
}

// createCreditsPage renders the book credits page from its template.
func (p *Processor) createCreditsPage() (*Fragment, error) {

	content, err := p.expandTemplate("credits", p.env.Cfg.Doc.Pages.CreditsTemplate)
	if err != nil {
		return nil, fmt.Errorf("unable to expand credits page template: %w", err)
	}
	data, err := p.wrapPage(content, "Credits")
	if err != nil {
		return nil, err
	}
	return &Fragment{ID: "credits", Title: "Credits", Data: data}, nil
}

// createCoverPage renders the page wrapping the cover image into scalable svg.
func (p *Processor) createCoverPage(coverFname string, width, height int) (*Fragment, error) {

	content := fmt.Sprintf(`<body>
<div style="height: 100vh; text-align: center; padding: 0pt; margin: 0pt;">
<svg xmlns="http://www.w3.org/2000/svg" height="100%%" preserveAspectRatio="xMidYMid meet" version="1.1" viewBox="0 0 %d %d" width="100%%" xmlns:xlink="http://www.w3.org/1999/xlink">
<image width="%d" height="%d" xlink:href="../Images/%s" role="doc-cover"/>
</svg></div></body>`, width, height, width, height, coverFname)

	data, err := p.wrapPage(content, "Cover")
	if err != nil {
		return nil, err
	}
	return &Fragment{ID: "cover", Title: "Cover", Data: data}, nil
}

// wrapPage applies the configured stylesheet reference.
func (p *Processor) wrapPage(content, title string) ([]byte, error) {
	return wrapXHTMLStyled(content, title, p.stylesheetHref())
}
