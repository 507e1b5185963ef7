package processor

import (
	"testing"

	"golang.org/x/net/html"
)

func mustParseElement(t *testing.T, markup string) *html.Node {
	t.Helper()
	nodes, err := parseSnippet(markup)
	if err != nil {
		t.Fatalf("unable to parse test markup: %v", err)
	}
	if len(nodes) == 0 {
		t.Fatalf("no nodes in test markup [%s]", markup)
	}
	return nodes[0]
}

func mustRender(t *testing.T, n *html.Node) string {
	t.Helper()
	s, err := renderNode(n)
	if err != nil {
		t.Fatalf("unable to serialize test result: %v", err)
	}
	return s
}

type cleanerCase struct {
	in  string
	out string
}

var cleanerCases = []cleanerCase{
	// navigation chrome removal
	{
		in:  `<div><div class="sharedaddy">share me</div><p>text</p></div>`,
		out: `<div><p>text</p></div>`,
	},
	{
		in:  `<div><nav class="entry-breadcrumbs"><a href="/">home</a></nav><p>text</p></div>`,
		out: `<div><p>text</p></div>`,
	},
	{
		in:  `<div><div class="wp-block-buttons"><a href="/next">next</a></div><p>text</p></div>`,
		out: `<div><p>text</p></div>`,
	},
	// line breaks move out of anchors keeping order
	{
		in:  `<div><p><a href="/a">one<br/>two<br/>three</a>tail</p></div>`,
		out: `<div><p><a href="/a">onetwothree</a><br/><br/>tail</p></div>`,
	},
	// empty anchors are dropped, whitespace only counts as empty
	{
		in:  `<div><p><a href="/a">  </a>keep</p></div>`,
		out: `<div><p>keep</p></div>`,
	},
	{
		in:  `<div><p><a href="/a"><br/></a>keep</p></div>`,
		out: `<div><p><br/>keep</p></div>`,
	},
	// nothing to do
	{
		in:  `<div><p><a href="/a">link</a></p></div>`,
		out: `<div><p><a href="/a">link</a></p></div>`,
	},
}

func TestCleanStructure(t *testing.T) {

	for i, c := range cleanerCases {
		n := mustParseElement(t, c.in)
		cleanStructure(n)
		if res := mustRender(t, n); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cleanerCases))
}

func TestCleanStructureIdempotent(t *testing.T) {

	for i, c := range cleanerCases {
		n := mustParseElement(t, c.in)
		cleanStructure(n)
		cleanStructure(n)
		if res := mustRender(t, n); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cleanerCases))
}
