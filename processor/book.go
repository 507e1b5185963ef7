package processor

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// LessonLink keeps both the original web URL and the path relative to the site root.
type LessonLink struct {
	Web      string
	Relative string
}

// Lesson is a single index entry.
type Lesson struct {
	// position in the whole book, 1 based, no gaps
	GlobalNumber int
	// normalized number with 第 stripped, "N/A" when entry has no recognizable number
	Number string
	// number as displayed, 第N課 form
	DisplayNumber string
	Title         string
	Link          *LessonLink
}

// HasLink tells if the lesson points to an actual page.
func (l *Lesson) HasLink() bool {
	return l.Link != nil
}

// ID returns stable identifier used for file names and anchors.
func (l *Lesson) ID() string {
	return fmt.Sprintf("lesson-%03d", l.GlobalNumber)
}

// Filename returns name of the lesson page inside the book.
func (l *Lesson) Filename() string {
	return l.ID() + ".xhtml"
}

// Section is a named group of lessons, in index order.
type Section struct {
	Title   string
	Lessons []*Lesson
}

// Index is the parsed table of contents of the site.
type Index struct {
	Sections []*Section
}

// Lessons returns all lessons of all sections flattened, in book order.
func (idx *Index) Lessons() []*Lesson {
	var res []*Lesson
	for _, s := range idx.Sections {
		res = append(res, s.Lessons...)
	}
	return res
}

// LinkedLessons returns only lessons which have pages to fetch.
func (idx *Index) LinkedLessons() []*Lesson {
	var res []*Lesson
	for _, l := range idx.Lessons() {
		if l.HasLink() {
			res = append(res, l)
		}
	}
	return res
}

// Fragment is a single ready XHTML page of the book.
type Fragment struct {
	ID    string
	Title string
	Data  []byte
}

// Book is a parsing and conversion result.
type Book struct {
	ID       uuid.UUID
	Title    string
	Language string
	Authors  []string
	Index    *Index

	// accumulators are hit from concurrent lesson workers
	mu        sync.Mutex
	order     []string
	fragments map[string]*Fragment
	images    []*binImage
}

// NewBook returns book for further processing.
func NewBook(u uuid.UUID, title string) *Book {
	return &Book{
		ID:        u,
		Title:     title,
		fragments: make(map[string]*Fragment),
	}
}

// StoreFragment saves a ready page. Duplicate ids indicate a programming error.
func (b *Book) StoreFragment(f *Fragment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.fragments[f.ID]; exists {
		return fmt.Errorf("duplicate content id (%s)", f.ID)
	}
	b.order = append(b.order, f.ID)
	b.fragments[f.ID] = f
	return nil
}

// Fragment returns stored page or nil.
func (b *Book) Fragment(id string) *Fragment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fragments[id]
}

// Fragments returns all stored pages in the order they were stored.
func (b *Book) Fragments() []*Fragment {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := make([]*Fragment, 0, len(b.order))
	for _, id := range b.order {
		res = append(res, b.fragments[id])
	}
	return res
}

// SetSpineOrder fixes the reading order of stored pages. Ids without a stored page
// are skipped, pages left out of the list keep trailing positions in store order.
func (b *Book) SetSpineOrder(ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]bool, len(ids))
	var order []string
	for _, id := range ids {
		if _, exists := b.fragments[id]; exists && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for _, id := range b.order {
		if !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	b.order = order
}

// StoreImage saves a processed image.
func (b *Book) StoreImage(img *binImage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images = append(b.images, img)
}

// Images returns all processed images in the order they were stored.
func (b *Book) Images() []*binImage {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := make([]*binImage, len(b.images))
	copy(res, b.images)
	return res
}

// Dump writes internal state for debugging.
func (b *Book) Dump(w io.Writer) {
	fmt.Fprintf(w, "*** book %s (%s)\n", b.Title, b.ID.String())
	if b.Index != nil {
		for _, s := range b.Index.Sections {
			fmt.Fprintf(w, "* section %q, %d lessons\n", s.Title, len(s.Lessons))
			for _, l := range s.Lessons {
				link := "no link"
				if l.HasLink() {
					link = l.Link.Web
				}
				fmt.Fprintf(w, "  %s %s %q (%s)\n", l.ID(), l.DisplayNumber, l.Title, link)
			}
		}
	}
	for _, f := range b.Fragments() {
		fmt.Fprintf(w, "* fragment %s %q, %d bytes\n", f.ID, f.Title, len(f.Data))
	}
	for _, img := range b.Images() {
		fmt.Fprintf(w, "* image %s (%s), %d bytes\n", img.fname, img.ct, len(img.data))
	}
}
