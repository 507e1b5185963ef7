package processor

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultStylesheet is referenced from every page unless overridden in configuration.
const DefaultStylesheet = "https://imabi.org/Styles/base_style.css"

// deriveTitle produces a human readable page title out of a file name. Caser is
// created per call, cases.Caser carries state and cannot be shared between goroutines.
func deriveTitle(name string) string {
	name = strings.ReplaceAll(strings.ReplaceAll(name, ".xhtml", ""), "-", " ")
	return cases.Title(language.English).String(name)
}

const xhtmlEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN"
"http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
<title>%s</title>
<link href="%s" rel="stylesheet" type="text/css"/>
</head>
%s
</html>`

// wrapXHTMLStyled wraps page content into the standard envelope and verifies that the
// result is well-formed XML. Malformed output fails the page instead of producing a
// broken book.
func wrapXHTMLStyled(content, title, stylesheet string) ([]byte, error) {

	page := fmt.Sprintf(xhtmlEnvelope, html.EscapeString(deriveTitle(title)), stylesheet, content)

	doc := etree.NewDocument()
	if err := doc.ReadFromString(page); err != nil {
		return nil, fmt.Errorf("produced page %q is not well-formed XML: %w", title, err)
	}
	return []byte(page), nil
}
