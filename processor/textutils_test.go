package processor

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

type splitCase struct {
	in  string
	out []string
}

var splitCases = []splitCase{
	{
		in:  `<p>第1課: Hello<br/>第2課: World</p>`,
		out: []string{`<p>第1課: Hello</p>`, `<p>第2課: World</p>`},
	},
	{
		in:  `<p>one<br>two<br />three</p>`,
		out: []string{`<p>one</p>`, `<p>two</p>`, `<p>three</p>`},
	},
	// empty pieces between breaks disappear
	{
		in:  `<p>one<br/><br/>  <br/>two</p>`,
		out: []string{`<p>one</p>`, `<p>two</p>`},
	},
	// markup inside pieces survives
	{
		in:  `<p><a href="/x">first</a><br/><em>second</em></p>`,
		out: []string{`<p><a href="/x">first</a></p>`, `<p><em>second</em></p>`},
	},
	{
		in:  `<p>no breaks at all</p>`,
		out: []string{`<p>no breaks at all</p>`},
	},
}

func TestSplitParagraphByBreaks(t *testing.T) {

	for i, c := range splitCases {
		p := mustParseElement(t, c.in)
		pieces, err := splitParagraphByBreaks(p)
		if err != nil {
			t.Fatalf("case %d: %v", i+1, err)
		}
		var res []string
		for _, piece := range pieces {
			res = append(res, mustRender(t, piece))
		}
		if strings.Join(res, "|") != strings.Join(c.out, "|") {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, strings.Join(c.out, "|"), strings.Join(res, "|"))
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(splitCases))
}

type reflowCase struct {
	in  string
	out string
}

var reflowCases = []reflowCase{
	// single break stays
	{
		in:  `<div><p>one<br/>two</p></div>`,
		out: `<div><p>one<br/>two</p></div>`,
	},
	// two and more breaks become a paragraph boundary
	{
		in:  `<div><p>one<br/><br/>two</p></div>`,
		out: `<div><p>one</p><p>two</p></div>`,
	},
	{
		in:  `<div><p>one<br/> <br/> <br/>two<br/>three</p></div>`,
		out: `<div><p>one</p><p>two<br/>three</p></div>`,
	},
}

func TestReflowParagraph(t *testing.T) {

	for i, c := range reflowCases {
		div := mustParseElement(t, c.in)
		for _, p := range collectNodes(div, func(n *html.Node) bool { return isElement(n, "p") }) {
			if err := reflowParagraph(p); err != nil {
				t.Fatalf("case %d: %v", i+1, err)
			}
		}
		if res := mustRender(t, div); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(reflowCases))
}
