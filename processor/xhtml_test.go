package processor

import (
	"strings"
	"sync"
	"testing"

	"github.com/beevik/etree"
)

func TestDeriveTitle(t *testing.T) {

	cases := []struct {
		in  string
		out string
	}{
		{"lesson-001.xhtml", "Lesson 001"},
		{"glossary.xhtml", "Glossary"},
		{"IMABI Index", "Imabi Index"},
		{"table-of-contents", "Table Of Contents"},
	}

	for i, c := range cases {
		if res := deriveTitle(c.in); res != c.out {
			t.Fatalf("BAD RESULT for case %d\nEXPECTED:\n[%s]\nGOT:\n[%s]", i+1, c.out, res)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cases))
}

func TestDeriveTitleConcurrent(t *testing.T) {

	// lesson pages derive titles from several workers at once
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if res := deriveTitle("lesson-001.xhtml"); res != "Lesson 001" {
					errs <- res
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	if bad, ok := <-errs; ok {
		t.Fatalf("BAD RESULT under concurrency\nEXPECTED:\n[Lesson 001]\nGOT:\n[%s]", bad)
	}
	t.Logf("OK - %s", t.Name())
}

func TestWrapXHTML(t *testing.T) {

	data, err := wrapXHTMLStyled(`<body class="justified"><p>安 &amp; 心</p></body>`, "lesson-001.xhtml", DefaultStylesheet)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)

	for i, c := range []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN"`,
		`xmlns="http://www.w3.org/1999/xhtml"`,
		`xmlns:epub="http://www.idpf.org/2007/ops"`,
		`<title>Lesson 001</title>`,
		`<link href="` + DefaultStylesheet + `" rel="stylesheet" type="text/css"/>`,
	} {
		if !strings.Contains(page, c) {
			t.Fatalf("BAD RESULT for check %d - missing\n[%s]\nin\n[%s]", i+1, c, page)
		}
	}

	// output must parse back as XML
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		t.Fatalf("produced page does not parse: %v", err)
	}
	t.Logf("OK - %s", t.Name())
}

func TestWrapXHTMLRejectsBadMarkup(t *testing.T) {

	cases := []string{
		`<body><p>unclosed</body>`,
		`<body><p>bare & ampersand</p></body>`,
		`<body><p>crossed</div></body>`,
	}
	for i, c := range cases {
		if _, err := wrapXHTMLStyled(c, "bad", DefaultStylesheet); err == nil {
			t.Fatalf("BAD RESULT for case %d - expected failure for [%s]", i+1, c)
		}
	}
	t.Logf("OK - %s: %d cases", t.Name(), len(cases))
}
