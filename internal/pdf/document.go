package pdf

import (
	"fmt"
	"os"
	"sync"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

const (
	// DefaultWordTolerance is the x/y distance under which glyphs join a word
	DefaultWordTolerance = 3.0

	// Fallback page size (US Letter) for pages without a usable MediaBox
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0

	// ascentRatio places the glyph top above its baseline
	ascentRatio = 0.8

	maxInheritDepth = 32
)

// Document is an open PDF whose pages expose positioned glyphs
type Document struct {
	Path string

	file          *os.File
	reader        *pdf.Reader
	wordTolerance float64

	mu    sync.Mutex
	pages map[int]*Page
}

// Option configures a Document
type Option func(*Document)

// WithWordTolerance sets the tolerance used when grouping glyphs into words
func WithWordTolerance(tol float64) Option {
	return func(d *Document) {
		if tol >= 0 {
			d.wordTolerance = tol
		}
	}
}

// Open opens the PDF at path for layout extraction
func Open(path string, opts ...Option) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	f, r, err := openReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	d := &Document{
		Path:          path,
		file:          f,
		reader:        r,
		wordTolerance: DefaultWordTolerance,
		pages:         make(map[int]*Page),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// openReader wraps pdf.Open, which panics on some malformed files
func openReader(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.Open(path)
}

// NumPages returns the number of pages in the document
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page loads the 1-based page n. Pages are parsed once and cached.
func (d *Document) Page(n int) (*Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n < 1 || n > d.reader.NumPage() {
		return nil, fmt.Errorf("invalid page number: %d (document has %d pages)", n, d.reader.NumPage())
	}
	if p, ok := d.pages[n]; ok {
		return p, nil
	}

	p, err := d.loadPage(n)
	if err != nil {
		return nil, err
	}
	d.pages[n] = p
	return p, nil
}

// Close releases the underlying file
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func (d *Document) loadPage(n int) (page *Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			page, err = nil, fmt.Errorf("failed to parse page %d: %v", n, rec)
		}
	}()

	lp := d.reader.Page(n)
	if lp.V.IsNull() {
		return nil, fmt.Errorf("page %d is missing", n)
	}

	x0, y1, width, height := mediaBox(lp)
	page = &Page{
		Number:        n,
		Width:         width,
		Height:        height,
		wordTolerance: d.wordTolerance,
	}

	for _, text := range lp.Content().Text {
		runes := []rune(text.S)
		if len(runes) == 0 {
			continue
		}

		size := text.FontSize
		top := y1 - (text.Y + size*ascentRatio)
		charWidth := text.W / float64(len(runes))
		x := text.X - x0

		for _, ch := range runes {
			page.Chars = append(page.Chars, layout.Token{
				Text:   string(ch),
				Left:   x,
				Top:    top,
				Right:  x + charWidth,
				Bottom: top + size,
			})
			x += charWidth
		}
	}
	return page, nil
}

// mediaBox returns the left and top edges of the page's MediaBox in PDF
// space along with its size. The box may be inherited from a parent node.
func mediaBox(p pdf.Page) (x0, y1, width, height float64) {
	v := p.V
	for depth := 0; depth < maxInheritDepth && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			v = v.Key("Parent")
			continue
		}
		bx0, by0 := box.Index(0).Float64(), box.Index(1).Float64()
		bx1, by1 := box.Index(2).Float64(), box.Index(3).Float64()
		if bx1 > bx0 && by1 > by0 {
			return bx0, by1, bx1 - bx0, by1 - by0
		}
		v = v.Key("Parent")
	}
	return 0, defaultPageHeight, defaultPageWidth, defaultPageHeight
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
