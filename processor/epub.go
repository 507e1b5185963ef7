package processor

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
)

// Directories used across the book layout
const (
	DirContent = "OEBPS"
	DirMeta    = "META-INF"
	DirText    = "Text"
	DirImages  = "Images"
	DirStyles  = "Styles"
)

func newXMLFile(id, fname, relpath, ct string, transient dataTransientFlags) (*etree.Document, *dataFile) {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{CanonicalText: true, CanonicalAttrVal: true}
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc, &dataFile{
		id:        id,
		fname:     fname,
		relpath:   relpath,
		transient: transient,
		ct:        ct,
		doc:       doc,
	}
}

// createOCF builds META-INF/container.xml pointing at the package file.
func (p *Processor) createOCF() *dataFile {

	doc, f := newXMLFile("container", "container.xml", DirMeta, "text/xml", dataNotForSpine|dataNotForManifest)

	addChild(
		addChild(
			addChild(&doc.Element, "container",
				attr("version", "1.0"),
				attr("xmlns", `urn:oasis:names:tc:opendocument:xmlns:container`)),
			"rootfiles"),
		"rootfile",
		attr("full-path", filepath.ToSlash(filepath.Join(DirContent, "content.opf"))),
		attr("media-type", "application/oebps-package+xml"))

	return f
}

// createNCX builds navigation for the book out of accumulated fragments.
func (p *Processor) createNCX() *dataFile {

	doc, f := newXMLFile("ncx", "toc.ncx", DirContent, "application/x-dtbncx+xml", dataNotForSpine)

	ncx := addChild(&doc.Element, "ncx",
		attr("xmlns", `http://www.daisy.org/z3986/2005/ncx/`),
		attr("version", "2005-1"),
		attr("xml:lang", "en-US"),
	)

	addChild(addChild(ncx, "head"), "meta",
		attr("name", "dtb:uid"),
		attr("content", fmt.Sprintf("urn:uuid:%s", p.Book.ID.String())))
	addChildText(addChild(ncx, "docTitle"), "text", p.Book.Title)

	navMap := addChild(ncx, "navMap")
	for i, frag := range p.Book.Fragments() {
		np := addChild(navMap, "navPoint",
			attr("id", "navpoint-"+frag.ID),
			attr("playOrder", fmt.Sprintf("%d", i+1)))
		addChildText(addChild(np, "navLabel"), "text", frag.Title)
		addChild(np, "content", attr("src", DirText+"/"+frag.ID+".xhtml"))
	}
	return f
}

// createOPF builds the package file with metadata, manifest and spine.
func (p *Processor) createOPF() *dataFile {

	doc, f := newXMLFile("content", "content.opf", DirContent, "application/oebps-package+xml", dataNotForSpine|dataNotForManifest)

	pkg := addChild(&doc.Element, "package",
		attr("version", "2.0"),
		attr("xmlns", `http://www.idpf.org/2007/opf`),
		attr("unique-identifier", "BookId"),
	)

	meta := addChild(pkg, "metadata",
		attr("xmlns:dc", `http://purl.org/dc/elements/1.1/`),
		attr("xmlns:opf", `http://www.idpf.org/2007/opf`),
	)
	addChildText(meta, "dc:title", p.Book.Title)
	addChildText(meta, "dc:language", p.Book.Language)
	addChildText(meta, "dc:identifier", fmt.Sprintf("urn:uuid:%s", p.Book.ID.String()),
		attr("id", "BookId"),
		attr("opf:scheme", "uuid"))
	for _, a := range p.Book.Authors {
		addChildText(meta, "dc:creator", a, attr("opf:role", "aut"))
	}
	addChildText(meta, "dc:date", time.Now().UTC().Format("2006-01-02"))
	if cover := p.Book.coverImage(); cover != nil {
		addChild(meta, "meta", attr("name", "cover"), attr("content", cover.id))
	}

	manifest := addChild(pkg, "manifest")
	addChild(manifest, "item",
		attr("id", "ncx"),
		attr("href", "toc.ncx"),
		attr("media-type", "application/x-dtbncx+xml"))
	addChild(manifest, "item",
		attr("id", "style_default"),
		attr("href", DirStyles+"/base_style.css"),
		attr("media-type", "text/css"))
	for _, frag := range p.Book.Fragments() {
		addChild(manifest, "item",
			attr("id", frag.ID),
			attr("href", DirText+"/"+frag.ID+".xhtml"),
			attr("media-type", "application/xhtml+xml"))
	}
	for _, img := range p.Book.Images() {
		addChild(manifest, "item",
			attr("id", img.id),
			attr("href", DirImages+"/"+img.fname),
			attr("media-type", img.ct))
	}

	spine := addChild(pkg, "spine", attr("toc", "ncx"))
	for _, frag := range p.Book.Fragments() {
		addChild(spine, "itemref", attr("idref", frag.ID))
	}

	return f
}

// coverImage returns the stored cover image if any.
func (b *Book) coverImage() *binImage {
	for _, img := range b.Images() {
		if img.id == "cover-image" {
			return img
		}
	}
	return nil
}

func zipRemoveDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create EPUB %s: %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read EPUB %s: %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to copy zip entry: %w", err)
		}
	}
	return nil
}

func (p *Processor) writeEPUB(fname string) error {

	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create EPUB %s: %w", fname, err)
	}
	defer f.Close()

	epub := zip.NewWriter(f)
	defer epub.Close()

	var content bool
	t := time.Now()

	saveFile := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if filepath.ToSlash(path) == filepath.ToSlash(fname) {
			// ignore itself
			return nil
		}
		if content && filepath.ToSlash(filepath.Dir(path)) == filepath.ToSlash(p.tmpDir) {
			// ignore everything in the root directory
			return nil
		}

		rel, err := filepath.Rel(p.tmpDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		var w io.Writer
		if !content {
			// mimetype entry is always stored uncompressed
			if w, err = epub.CreateHeader(&zip.FileHeader{
				Name:     info.Name(),
				Method:   zip.Store,
				Modified: t,
			}); err != nil {
				return err
			}
		} else {
			if w, err = epub.CreateHeader(&zip.FileHeader{
				Name:     rel,
				Method:   zip.Deflate,
				Modified: t,
			}); err != nil {
				return err
			}
		}

		var r io.ReadCloser
		if r, err = os.Open(path); err != nil {
			return err
		}
		defer r.Close()

		if _, err = io.Copy(w, r); err != nil {
			return err
		}
		return nil
	}

	// mimetype should be the first entry in epub
	mt := filepath.Join(p.tmpDir, "mimetype")
	info, err := os.Stat(mt)
	if err != nil {
		return fmt.Errorf("unable to find mimetype file: %w", err)
	}
	if err = saveFile(mt, info, nil); err != nil {
		return fmt.Errorf("unable to add mimetype to EPUB: %w", err)
	}

	content = true

	if err = filepath.Walk(p.tmpDir, saveFile); err != nil {
		return fmt.Errorf("unable to add file to EPUB: %w", err)
	}
	return nil
}

// FinalizeEPUB produces epub file out of previously saved temporary files.
func (p *Processor) FinalizeEPUB(fname string) error {

	if _, err := os.Stat(fname); err == nil {
		if !p.env.Debug && !p.overwrite {
			return fmt.Errorf("output file already exists: %s", fname)
		}
		p.env.Log.Warn("Overwriting existing file", zap.String("file", fname))
		if err = os.Remove(fname); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else {
		if err := os.MkdirAll(filepath.Dir(fname), 0700); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}
	}

	if p.env.Cfg.Doc.FixZip {
		_, tmp := filepath.Split(fname)
		tmp = filepath.Join(p.tmpDir, tmp)

		if err := p.writeEPUB(tmp); err != nil {
			return err
		}
		return zipRemoveDataDescriptors(tmp, fname)
	}
	return p.writeEPUB(fname)
}
