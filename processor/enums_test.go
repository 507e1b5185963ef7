package processor

import (
	"testing"
)

func TestParseContentKindString(t *testing.T) {

	cases := []struct {
		in  string
		out ContentKind
	}{
		{"index", KindIndex},
		{"lesson", KindLesson},
		{"glossary", KindGlossary},
		{"GLOSSARY", KindGlossary},
		{"chapter", UnsupportedContentKind},
		{"", UnsupportedContentKind},
	}

	for i, c := range cases {
		if res := ParseContentKindString(c.in); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cases))
}
