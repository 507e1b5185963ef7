package processor

import (
	"testing"
)

type linkCase struct {
	in  string
	out string
}

var linkCases = []linkCase{
	// site-internal links become relative
	{
		in:  `<p><a href="https://imabi.org/nouns/">nouns</a></p>`,
		out: `<p><a href="../nouns/">nouns</a></p>`,
	},
	// external links stay
	{
		in:  `<p><a href="https://example.com/page">other</a></p>`,
		out: `<p><a href="https://example.com/page">other</a></p>`,
	},
	// stale references are repaired and then made relative
	{
		in:  `<p><a href="https://www.imabi.net/l279yotsugana.htm">yotsugana</a></p>`,
		out: `<p><a href="../yotsugana/">yotsugana</a></p>`,
	},
	// the dead editor link maps to an empty reference
	{
		in:  `<p><a href="https://imabi.org/wp-admin/post.php?post=221&amp;action=edit#cc836554-5736-4e48-aef9-2765fc98fcd9-link">dead</a></p>`,
		out: `<p><a href="">dead</a></p>`,
	},
	// no href, nothing to do
	{
		in:  `<p><a name="anchor">here</a></p>`,
		out: `<p><a name="anchor">here</a></p>`,
	},
}

func TestRewriteLinks(t *testing.T) {

	for i, c := range linkCases {
		n := mustParseElement(t, c.in)
		rewriteLinks(n, "https://imabi.org")
		if res := mustRender(t, n); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(linkCases))
}
