package processor

import (
	"strings"
	"testing"
)

func TestDemoteHeadings(t *testing.T) {

	cases := []struct {
		in  string
		out string
	}{
		{
			in:  `<div><h2>a</h2><h3>b</h3></div>`,
			out: `<div><h3>a</h3><h4>b</h4></div>`,
		},
		// h6 stays h6, h1 is left alone
		{
			in:  `<div><h1>a</h1><h5>b</h5><h6>c</h6></div>`,
			out: `<div><h1>a</h1><h6>b</h6><h6>c</h6></div>`,
		},
	}

	for i, c := range cases {
		n := mustParseElement(t, c.in)
		demoteHeadings(n)
		if res := mustRender(t, n); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cases))
}

func TestClassifyParagraph(t *testing.T) {

	cases := []struct {
		in  string
		out string
	}{
		{`<p>1. first item</p>`, `<p class="numerada">1. first item</p>`},
		{`<p>iv. roman item</p>`, `<p class="numerada">iv. roman item</p>`},
		{`<p>※ note</p>`, `<p class="numerada">※ note</p>`},
		{`<p>・ bullet</p>`, `<p class="numerada">・ bullet</p>`},
		{`<p>▼ pointer</p>`, `<h6>▼ pointer</h6>`},
		{`<p>plain text</p>`, `<p>plain text</p>`},
		// upper case roman numerals match through lowercasing
		{`<p>IV. item</p>`, `<p class="numerada">IV. item</p>`},
	}

	for i, c := range cases {
		p := mustParseElement(t, c.in)
		classifyParagraph(p)
		if res := mustRender(t, p); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cases))
}

const testLessonMarkup = `<article id="post-42"><header><h1>skip me</h1></header>` +
	`<h1>Particles</h1><h3>Usage</h3><p>1. first point</p>` +
	`<ol class="wp-block-footnotes"><li>note one</li></ol></article>`

func TestFormatLesson(t *testing.T) {

	content := mustParseElement(t, testLessonMarkup)
	data, err := formatLesson(content, "Particles", "第3課", "post-42", "https://imabi.org", DefaultStylesheet, KindLesson)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)

	checks := []string{
		// site header is gone, first remaining heading got promoted with chapter label
		`<header><p class="chapter">第3課</p><h2 id="chapter-3">Particles</h2></header>`,
		// h3 demoted to h4
		`<h4>Usage</h4>`,
		// list-like paragraph got classified
		`<p class="numerada">1. first point</p>`,
		// footnotes moved into footer after the body
		`</body><hr/><footer class="footnote"><ol class="wp-block-footnotes"><li>note one</li></ol></footer>`,
		`<body class="justified" id="post-42">`,
		`<title>Particles</title>`,
	}
	for i, c := range checks {
		if !strings.Contains(page, c) {
			t.Fatalf("BAD RESULT for check %d - missing\n[%s]\nin\n[%s]", i+1, c, page)
		}
	}
	if strings.Contains(page, "skip me") {
		t.Fatalf("BAD RESULT - site header content leaked into\n[%s]", page)
	}
	t.Logf("OK - %s: %d checks", t.Name(), len(checks))
}

func TestFormatLessonNoFootnotes(t *testing.T) {

	content := mustParseElement(t, `<article><h1>Intro</h1><p>text</p></article>`)
	data, err := formatLesson(content, "Intro", "第1課", "lesson-001", "https://imabi.org", DefaultStylesheet, KindLesson)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `</body><footer></footer>`) {
		t.Fatalf("BAD RESULT - no footer placeholder in\n[%s]", string(data))
	}
	t.Logf("OK - %s", t.Name())
}

func TestFormatGlossary(t *testing.T) {

	content := mustParseElement(t, `<article><h2>Glossary 用語集</h2><p>terms</p></article>`)
	data, err := formatLesson(content, "Glossary", "", "glossary", "https://imabi.org", DefaultStylesheet, KindGlossary)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)

	// glossary heading is promoted in place, no chapter header block
	if !strings.Contains(page, `<h1 id="glossary">Glossary 用語集</h1>`) {
		t.Fatalf("BAD RESULT - no glossary heading in\n[%s]", page)
	}
	if strings.Contains(page, `class="chapter"`) {
		t.Fatalf("BAD RESULT - glossary got a chapter header in\n[%s]", page)
	}
	t.Logf("OK - %s", t.Name())
}

func TestFormatLessonStylesheetOverride(t *testing.T) {

	content := mustParseElement(t, `<article><h1>Intro</h1><p>text</p></article>`)
	data, err := formatLesson(content, "Intro", "第1課", "lesson-001", "https://imabi.org", "../Styles/base_style.css", KindLesson)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `<link href="../Styles/base_style.css" rel="stylesheet" type="text/css"/>`) {
		t.Fatalf("BAD RESULT - configured stylesheet not referenced in\n[%s]", string(data))
	}
	t.Logf("OK - %s", t.Name())
}

func TestFormatLessonRawText(t *testing.T) {

	// raw ampersands and stray angle brackets in page text must not break the XML gate
	content := mustParseElement(t, `<article><h1>AM & PM</h1><p>1 < 2 & 3 > 2</p></article>`)
	data, err := formatLesson(content, "AM & PM", "第5課", "lesson-005", "https://imabi.org", DefaultStylesheet, KindLesson)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)

	for i, c := range []string{
		`1 &lt; 2 &amp; 3 &gt; 2`,
		`<title>Am &amp; Pm</title>`,
	} {
		if !strings.Contains(page, c) {
			t.Fatalf("BAD RESULT for check %d - missing\n[%s]\nin\n[%s]", i+1, c, page)
		}
	}
	t.Logf("OK - %s", t.Name())
}

func TestFormatCommonReflow(t *testing.T) {

	content := mustParseElement(t, `<div><p>one<br/><br/>2. two</p></div>`)
	if err := formatCommon(content, "https://imabi.org"); err != nil {
		t.Fatal(err)
	}
	res := mustRender(t, content)
	if res != `<div><p>one</p><p class="numerada">2. two</p></div>` {
		t.Fatalf("BAD RESULT:\n[%s]", res)
	}
	t.Logf("OK - %s", t.Name())
}

func TestPromoteFirstHeadingNoHeadings(t *testing.T) {

	content := mustParseElement(t, `<article><p>just text</p></article>`)
	if err := promoteFirstHeading(content, "第1課", KindLesson); err != nil {
		t.Fatal(err)
	}
	if got := mustRender(t, content); got != `<article><p>just text</p></article>` {
		t.Fatalf("BAD RESULT:\n[%s]", got)
	}
	t.Logf("OK - %s", t.Name())
}
