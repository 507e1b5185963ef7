package processor

import (
	"testing"
)

func TestParseLessonText(t *testing.T) {

	cases := []struct {
		in      string
		number  string
		display string
		title   string
	}{
		{"第1課: Hello", "1", "第1課", "Hello"},
		{"第107課: Potential Verbs", "107", "第107課", "Potential Verbs"},
		{" 第2課:  Spaced out ", "2", "第2課", "Spaced out"},
		// no delimiter, whole text kept
		{"Introduction", "N/A", "Introduction", "Introduction"},
		{"", "N/A", "", ""},
	}

	for i, c := range cases {
		number, display, title := parseLessonText(c.in)
		if number != c.number || display != c.display || title != c.title {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s|%s|%s]\nGOT:\n[%s|%s|%s]",
				i+1, c.number, c.display, c.title, number, display, title)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cases))
}

const testIndexMarkup = `<aside>
<h2>Beginner</h2>
<p><a href="https://imabi.org/greetings/">第1課: Greetings</a><br/>
<a href="https://imabi.org/nouns/">第2課: Nouns</a><br/>
Coming soon</p>
<h2>Empty Section</h2>
<h2>Intermediate</h2>
<p><a href="https://imabi.org/particles/"><em> </em>第3課: Particles</a></p>
</aside>`

func TestExtractIndex(t *testing.T) {

	content := mustParseElement(t, testIndexMarkup)
	idx, err := extractIndex(content)
	if err != nil {
		t.Fatal(err)
	}

	if len(idx.Sections) != 2 {
		t.Fatalf("BAD RESULT - wrong number of sections\nEXPECTED:\n[2]\nGOT:\n[%d]", len(idx.Sections))
	}
	if idx.Sections[0].Title != "Beginner" || idx.Sections[1].Title != "Intermediate" {
		t.Fatalf("BAD RESULT - wrong section titles: [%s] [%s]", idx.Sections[0].Title, idx.Sections[1].Title)
	}

	lessons := idx.Lessons()
	if len(lessons) != 4 {
		t.Fatalf("BAD RESULT - wrong number of lessons\nEXPECTED:\n[4]\nGOT:\n[%d]", len(lessons))
	}
	for i, l := range lessons {
		if l.GlobalNumber != i+1 {
			t.Fatalf("BAD RESULT - numbering has gaps at %d: %d", i, l.GlobalNumber)
		}
	}

	if lessons[0].Number != "1" || lessons[0].Title != "Greetings" || !lessons[0].HasLink() {
		t.Fatalf("BAD RESULT - first lesson: %+v", lessons[0])
	}
	if lessons[0].Link.Web != "https://imabi.org/greetings/" || lessons[0].Link.Relative != "greetings" {
		t.Fatalf("BAD RESULT - first lesson link: %+v", lessons[0].Link)
	}
	if lessons[0].ID() != "lesson-001" || lessons[0].Filename() != "lesson-001.xhtml" {
		t.Fatalf("BAD RESULT - first lesson id: %s", lessons[0].ID())
	}

	// entry without an anchor
	if lessons[2].HasLink() || lessons[2].Number != "N/A" || lessons[2].Title != "Coming soon" {
		t.Fatalf("BAD RESULT - unlinked lesson: %+v", lessons[2])
	}

	// the last entry sits in the second section
	if len(idx.Sections[1].Lessons) != 1 || idx.Sections[1].Lessons[0].GlobalNumber != 4 {
		t.Fatalf("BAD RESULT - second section: %+v", idx.Sections[1])
	}
	if got := len(idx.LinkedLessons()); got != 3 {
		t.Fatalf("BAD RESULT - linked lessons\nEXPECTED:\n[3]\nGOT:\n[%d]", got)
	}

	t.Logf("OK - %s", t.Name())
}

func TestExtractLessonLinkBadHref(t *testing.T) {

	entry := mustParseElement(t, `<p><a href="#">第9課: Broken</a></p>`)
	if link := extractLessonLink(entry); link != nil {
		t.Fatalf("BAD RESULT - expected no link, got: %+v", link)
	}
	t.Logf("OK - %s", t.Name())
}

func TestExtractIndexUncategorized(t *testing.T) {

	content := mustParseElement(t, `<aside><p><a href="https://imabi.org/intro/">第1課: Intro</a></p><h2>Named</h2><p>第2課: Next</p></aside>`)
	idx, err := extractIndex(content)
	if err != nil {
		t.Fatal(err)
	}

	if len(idx.Sections) != 2 || idx.Sections[0].Title != sectionUncategorized {
		t.Fatalf("BAD RESULT - sections: %+v", idx.Sections)
	}
	if idx.Sections[1].Lessons[0].GlobalNumber != 2 {
		t.Fatalf("BAD RESULT - numbering: %+v", idx.Sections[1].Lessons[0])
	}
	t.Logf("OK - %s", t.Name())
}
