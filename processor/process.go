// Package processor does actual work.
package processor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/vainilie/imabi/config"
	"github.com/vainilie/imabi/fetcher"
	"github.com/vainilie/imabi/state"
	"github.com/vainilie/imabi/static"
)

// ErrAnchorNotFound is returned when a page has no content under the configured selector.
var ErrAnchorNotFound = errors.New("no content found under selector")

// Processor state.
type Processor struct {
	// input parameters
	dst         string
	overwrite   bool
	testLessons int
	// working directory
	tmpDir string
	// how pages are retrieved
	fetch fetcher.Fetcher
	// parsing state and conversion results
	Book *Book
	// program environment
	env *state.LocalEnv
}

// New creates site processor and prepares necessary temporary directories.
func New(dst string, overwrite bool, testLessons int, ftch fetcher.Fetcher, env *state.LocalEnv) (*Processor, error) {

	u, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("unable to generate UUID: %w", err)
	}

	book := NewBook(u, env.Cfg.Doc.Title)
	book.Language = env.Cfg.Doc.Language
	book.Authors = append(book.Authors, env.Cfg.Doc.Authors...)

	p := &Processor{
		dst:         dst,
		overwrite:   overwrite,
		testLessons: testLessons,
		fetch:       ftch,
		Book:        book,
		env:         env,
	}

	// re-route temporary directory for debugging
	if env.Debug {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to get working directory: %w", err)
		}
		tmpd := filepath.Join(wd, "imabi_deb")
		if err = os.MkdirAll(tmpd, 0700); err != nil {
			return nil, fmt.Errorf("unable to create debug directory: %w", err)
		}
		p.tmpDir = filepath.Join(tmpd, time.Now().Format("20060102T150405")+"_"+u.String())
		if err = os.MkdirAll(p.tmpDir, 0700); err != nil {
			return nil, fmt.Errorf("unable to create temporary directory: %w", err)
		}
	} else {
		p.tmpDir, err = os.MkdirTemp("", "imabi-")
		if err != nil {
			return nil, fmt.Errorf("unable to create temporary directory: %w", err)
		}
	}
	return p, nil
}

// Clean removes temporary files left after processing.
func (p *Processor) Clean() error {
	if p.env.Debug {
		// everything is left in place for inspection
		p.env.Log.Debug("Leaving temporary directory", zap.String("tmp", p.tmpDir))
		return nil
	}
	return os.RemoveAll(p.tmpDir)
}

// Process does all the work.
func (p *Processor) Process(ctx context.Context) error {

	// Debugging
	defer func() {
		if p.env.Debug {
			p.env.Rpt.StoreData("book-dump.txt", p.dumpState())
		}
	}()

	// Processing - order of steps and their presence are important as information and context
	// being built and accumulated...

	if err := p.processIndex(ctx); err != nil {
		return err
	}
	if err := p.processGlossary(ctx); err != nil {
		return err
	}
	if err := p.processLessons(ctx); err != nil {
		return err
	}
	if err := p.generateCover(); err != nil {
		return err
	}
	if err := p.generateFrontMatter(); err != nil {
		return err
	}
	if err := p.generateSectionPages(); err != nil {
		return err
	}
	p.orderSpine()
	return nil
}

func (p *Processor) dumpState() []byte {
	var buf strings.Builder
	p.Book.Dump(&buf)
	return []byte(buf.String())
}

// fetchContent gets a page and returns content under the selector, cleaned up.
func (p *Processor) fetchContent(ctx context.Context, pageURL, selector string) (*html.Node, error) {

	data, err := p.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse page %s: %w", pageURL, err)
	}

	content := nodeBySelector(doc, selector)
	if content == nil {
		return nil, fmt.Errorf("%w (%s) at %s", ErrAnchorNotFound, selector, pageURL)
	}

	cleanStructure(content)
	return content, nil
}

// processIndex builds the book index out of the site front page.
func (p *Processor) processIndex(ctx context.Context) error {

	start := time.Now()
	p.env.Log.Debug("Processing index - start", zap.String("url", p.env.Cfg.Site.BaseURL))
	defer func(start time.Time) {
		p.env.Log.Debug("Processing index - done", zap.Duration("elapsed", time.Since(start)))
	}(start)

	content, err := p.fetchContent(ctx, p.env.Cfg.Site.BaseURL, p.env.Cfg.Site.IndexSelector)
	if err != nil {
		return err
	}

	p.processImages(ctx, content, p.env.Cfg.Site.BaseURL, "unknown")

	idx, err := extractIndex(content)
	if err != nil {
		return fmt.Errorf("unable to extract index: %w", err)
	}
	if len(idx.Sections) == 0 {
		return fmt.Errorf("index at %s has no lessons", p.env.Cfg.Site.BaseURL)
	}
	p.Book.Index = idx

	page, err := p.createIndexPage()
	if err != nil {
		return err
	}
	return p.Book.StoreFragment(page)
}

// processGlossary converts the site glossary page.
func (p *Processor) processGlossary(ctx context.Context) error {

	glossaryURL := strings.TrimRight(p.env.Cfg.Site.BaseURL, "/") + "/" + p.env.Cfg.Site.GlossaryPath

	start := time.Now()
	p.env.Log.Debug("Processing glossary - start", zap.String("url", glossaryURL))
	defer func(start time.Time) {
		p.env.Log.Debug("Processing glossary - done", zap.Duration("elapsed", time.Since(start)))
	}(start)

	content, err := p.fetchContent(ctx, glossaryURL, p.env.Cfg.Site.ArticleSelector)
	if err != nil {
		return err
	}

	p.processImages(ctx, content, glossaryURL, "glossary")

	data, err := formatLesson(content, "Glossary", "", "glossary", p.env.Cfg.Site.BaseURL, p.stylesheetHref(), KindGlossary)
	if err != nil {
		return fmt.Errorf("unable to format glossary: %w", err)
	}
	return p.Book.StoreFragment(&Fragment{ID: "glossary", Title: "Glossary", Data: data})
}

// processLessons converts all linked lessons, several at a time. A failed lesson is
// logged and skipped, it never fails the whole book.
func (p *Processor) processLessons(ctx context.Context) error {

	lessons := p.Book.Index.LinkedLessons()
	if p.testLessons > 0 && len(lessons) > p.testLessons {
		p.env.Log.Info("Test mode - processing first lessons only", zap.Int("count", p.testLessons))
		lessons = lessons[:p.testLessons]
	}

	start := time.Now()
	p.env.Log.Debug("Processing lessons - start", zap.Int("count", len(lessons)))
	defer func(start time.Time) {
		p.env.Log.Debug("Processing lessons - done", zap.Duration("elapsed", time.Since(start)))
	}(start)

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.env.Cfg.Site.Concurrency)
	)
	for _, l := range lessons {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(l *Lesson) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := p.processLesson(ctx, l); err != nil {
				p.env.Log.Error("Unable to process lesson, skipping",
					zap.String("id", l.ID()),
					zap.String("title", l.Title),
					zap.Error(err))
			}
		}(l)
	}
	wg.Wait()
	return ctx.Err()
}

// processLesson converts a single lesson page.
func (p *Processor) processLesson(ctx context.Context, l *Lesson) error {

	start := time.Now()
	p.env.Log.Debug("Processing lesson - start",
		zap.String("id", l.ID()),
		zap.String("number", l.DisplayNumber),
		zap.String("title", l.Title))
	defer func(start time.Time) {
		p.env.Log.Debug("Processing lesson - done", zap.String("id", l.ID()), zap.Duration("elapsed", time.Since(start)))
	}(start)

	content, err := p.fetchContent(ctx, l.Link.Web, p.env.Cfg.Site.ArticleSelector)
	if err != nil {
		return err
	}

	if p.env.Debug {
		if raw, err := renderNode(content); err == nil {
			p.env.Rpt.StoreData("raw-"+l.ID()+".html", []byte(raw))
		}
	}

	p.processImages(ctx, content, l.Link.Web, l.ID())

	pathPart := getNodeAttr(content, "id")
	if len(pathPart) == 0 {
		pathPart = l.ID()
	}

	data, err := formatLesson(content, l.Title, l.DisplayNumber, pathPart, p.env.Cfg.Site.BaseURL, p.stylesheetHref(), KindLesson)
	if err != nil {
		return err
	}
	return p.Book.StoreFragment(&Fragment{
		ID:    l.ID(),
		Title: l.DisplayNumber + " • " + l.Title,
		Data:  data,
	})
}

// processImages downloads and renames images referenced by the content, rewriting
// references to point inside the book. A failed image is logged and left as is.
func (p *Processor) processImages(ctx context.Context, content *html.Node, baseURL, chapter string) {

	base, err := url.Parse(baseURL)
	if err != nil {
		p.env.Log.Warn("Unable to parse base URL, skipping images", zap.String("url", baseURL), zap.Error(err))
		return
	}

	counter := 0
	for _, img := range collectNodes(content, func(n *html.Node) bool { return isElement(n, "img") }) {
		src := getNodeAttr(img, "src")
		if len(src) == 0 {
			continue
		}
		counter++

		ref, err := url.Parse(src)
		if err != nil {
			p.env.Log.Warn("Unable to parse image source, skipping", zap.String("src", src), zap.Error(err))
			continue
		}
		full := base.ResolveReference(ref).String()

		data, err := p.fetch.Fetch(ctx, full)
		if err != nil {
			p.env.Log.Warn("Unable to download image, skipping", zap.String("src", full), zap.Error(err))
			continue
		}

		ext := extFromURL(full)
		if len(ext) == 0 {
			ext = extFromData(data)
		}

		b := &binImage{
			log:         p.env.Log,
			ct:          contentTypeByExt(ext),
			fname:       fmt.Sprintf("chapter-%s-img-%d%s", chapter, counter, ext),
			relpath:     filepath.Join(DirContent, DirImages),
			imgType:     imgTypeByExt(ext),
			scaleFactor: p.env.Cfg.Doc.Images.ScaleFactor,
			data:        data,
		}
		if b.scaleFactor > 0 {
			b.flags |= imageScale
		}
		if ext == ".webp" && p.env.Cfg.Doc.Images.ConvertWebP {
			b.flags |= imageConvertPNG
		}
		b.process()
		b.id = "img_" + strings.TrimSuffix(b.fname, filepath.Ext(b.fname))

		setNodeAttr(img, "src", "../"+DirImages+"/"+b.fname)
		removeNodeAttr(img, "srcset")

		p.Book.StoreImage(b)
	}
}

// generateCover prepares the book cover and its wrapper page.
func (p *Processor) generateCover() error {

	cfg := p.env.Cfg.Doc.Cover
	if len(cfg.ImagePath) == 0 && !cfg.Generate {
		return nil
	}

	var (
		cover *binImage
		err   error
	)
	if len(cfg.ImagePath) > 0 {
		cover, err = p.loadCover()
	} else {
		cover, err = p.drawCover()
	}
	if err != nil {
		return err
	}
	p.Book.StoreImage(cover)

	page, err := p.createCoverPage(cover.fname, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	return p.Book.StoreFragment(page)
}

// generateFrontMatter prepares title, credits and navigation pages.
func (p *Processor) generateFrontMatter() error {

	for _, create := range []func() (*Fragment, error){
		p.createTitlePage,
		p.createCreditsPage,
		p.createTOCPage,
	} {
		page, err := create()
		if err != nil {
			return err
		}
		if err := p.Book.StoreFragment(page); err != nil {
			return err
		}
	}
	return nil
}

// generateSectionPages prepares divider pages for all sections.
func (p *Processor) generateSectionPages() error {
	for i, s := range p.Book.Index.Sections {
		page, err := p.createSectionPage(i+1, s.Title)
		if err != nil {
			return err
		}
		if err := p.Book.StoreFragment(page); err != nil {
			return err
		}
	}
	return nil
}

// orderSpine fixes the reading order of the book. Lessons are stored by concurrent
// workers, so insertion order is not deterministic until this point.
func (p *Processor) orderSpine() {

	ids := []string{"cover", "title", "credits", "toc_page", "index"}
	for i, s := range p.Book.Index.Sections {
		ids = append(ids, fmt.Sprintf("section-%d", i+1))
		for _, l := range s.Lessons {
			if l.HasLink() {
				ids = append(ids, l.ID())
			}
		}
	}
	ids = append(ids, "glossary")
	p.Book.SetSpineOrder(ids)
}

// prepareOutputName derives the final book location from requested destination.
func (p *Processor) prepareOutputName() string {

	name := p.env.Cfg.Doc.OutputName
	if p.env.Cfg.Doc.FileNameTransliterate {
		ext := filepath.Ext(name)
		name = slug.Make(strings.TrimSuffix(name, ext)) + ext
	}
	name = config.CleanFileName(name)

	if len(p.dst) == 0 {
		return name
	}
	if info, err := os.Stat(p.dst); err == nil && info.IsDir() {
		return filepath.Join(p.dst, name)
	}
	if strings.EqualFold(filepath.Ext(p.dst), ".epub") {
		return p.dst
	}
	return filepath.Join(p.dst, name)
}

// Save makes the conversion results permanent by storing everything properly.
func (p *Processor) Save() (string, error) {

	start := time.Now()
	p.env.Log.Debug("Saving content - start", zap.String("tmp", p.tmpDir))
	defer func(start time.Time) {
		p.env.Log.Debug("Saving content - done", zap.Duration("elapsed", time.Since(start)))
	}(start)

	if err := p.flushBookLayout(); err != nil {
		return "", err
	}

	fname := p.prepareOutputName()
	return fname, p.FinalizeEPUB(fname)
}

// flushBookLayout writes the full book directory tree under the temporary directory.
func (p *Processor) flushBookLayout() error {

	mimetype := &dataFile{id: "mimetype", fname: "mimetype", data: []byte("application/epub+zip")}
	if err := mimetype.flush(p.tmpDir); err != nil {
		return err
	}
	if err := p.createOCF().flush(p.tmpDir); err != nil {
		return err
	}

	css, err := p.stylesheetData()
	if err != nil {
		return err
	}
	style := &dataFile{
		id:      "style_default",
		fname:   "base_style.css",
		relpath: filepath.Join(DirContent, DirStyles),
		ct:      "text/css",
		data:    css,
	}
	if err := style.flush(p.tmpDir); err != nil {
		return err
	}

	for _, frag := range p.Book.Fragments() {
		page := &dataFile{
			id:      frag.ID,
			fname:   frag.ID + ".xhtml",
			relpath: filepath.Join(DirContent, DirText),
			ct:      "application/xhtml+xml",
			data:    frag.Data,
		}
		if err := page.flush(p.tmpDir); err != nil {
			return err
		}
	}
	for _, img := range p.Book.Images() {
		if err := img.flush(p.tmpDir); err != nil {
			return err
		}
	}

	if err := p.createNCX().flush(p.tmpDir); err != nil {
		return err
	}
	return p.createOPF().flush(p.tmpDir)
}

// stylesheetHref returns the stylesheet reference every produced page links to.
func (p *Processor) stylesheetHref() string {
	if s := p.env.Cfg.Doc.Stylesheet; len(s) > 0 {
		return s
	}
	return DefaultStylesheet
}

// stylesheetData returns css for the book, override file wins over the built-in one.
func (p *Processor) stylesheetData() ([]byte, error) {
	if len(p.env.Cfg.Doc.CSSFile) > 0 {
		local := p.env.Cfg.AbsolutePath(p.env.Cfg.Doc.CSSFile)
		data, err := os.ReadFile(local)
		if err != nil {
			return nil, fmt.Errorf("unable to read stylesheet %s: %w", local, err)
		}
		return data, nil
	}
	return static.Asset("resources/base_style.css")
}
