package processor

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func storeTestFragments(t *testing.T, b *Book, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := b.StoreFragment(&Fragment{ID: id, Title: id, Data: []byte(id)}); err != nil {
			t.Fatalf("unable to store fragment %s: %v", id, err)
		}
	}
}

func fragmentIDs(b *Book) string {
	var ids []string
	for _, f := range b.Fragments() {
		ids = append(ids, f.ID)
	}
	return strings.Join(ids, ",")
}

func TestStoreFragment(t *testing.T) {

	b := NewBook(uuid.New(), "test")
	storeTestFragments(t, b, "index", "lesson-001")

	if err := b.StoreFragment(&Fragment{ID: "index"}); err == nil {
		t.Fatal("expected failure on duplicate fragment id")
	}
	if f := b.Fragment("lesson-001"); f == nil || f.Title != "lesson-001" {
		t.Fatalf("BAD RESULT - stored fragment not found: %+v", f)
	}
	if f := b.Fragment("missing"); f != nil {
		t.Fatalf("BAD RESULT - unexpected fragment: %+v", f)
	}
	t.Logf("OK - %s", t.Name())
}

func TestSetSpineOrder(t *testing.T) {

	cases := []struct {
		stored []string
		spine  []string
		out    string
	}{
		// full reorder
		{[]string{"index", "cover", "lesson-001"}, []string{"cover", "index", "lesson-001"}, "cover,index,lesson-001"},
		// unknown ids are skipped
		{[]string{"index"}, []string{"cover", "index"}, "index"},
		// pages left out keep trailing positions in store order
		{[]string{"glossary", "index", "lesson-001"}, []string{"index"}, "index,glossary,lesson-001"},
		// duplicates collapse
		{[]string{"a", "b"}, []string{"b", "b", "a"}, "b,a"},
	}

	for i, c := range cases {
		b := NewBook(uuid.New(), "test")
		storeTestFragments(t, b, c.stored...)
		b.SetSpineOrder(c.spine)
		if res := fragmentIDs(b); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cases))
}
