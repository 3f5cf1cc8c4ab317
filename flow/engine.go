// Package flow paginates a document tree: a cursor walks sections and
// elements across columns and pages, splitting what may split and
// failing on what may not. Layout is pure with respect to its inputs;
// identical documents paginate identically.
package flow

import (
	"fmt"
	"strconv"

	"github.com/quillpdf/quill/fonts"
	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/observability"
	"github.com/quillpdf/quill/richtext"
	"github.com/quillpdf/quill/style"
)

const eps = 0.001

// noteSep is the gap and separator allowance above the footnote block.
const noteSep = 10.0

// Engine lays out one document. Not safe for concurrent use; run
// parallel generations with one engine each.
type Engine struct {
	doc   *model.Document
	fonts *fonts.Set
	res   *style.Resolver
	pal   style.Palette
	log   observability.Logger

	pageW, pageH float64
	m            model.Margins

	pages []*Page
	page  *Page

	cols   int
	colGap float64
	colW   float64
	col    int
	x, y   float64

	noteNum    int
	endnotes   []pendingNote
	appendixes []model.Appendix

	secHeader *model.Header
	secFooter *model.Footer
	secStyle  *style.Attributes

	refs     *RefTable
	outline  []OutlineEntry
	tocCount int

	// cached image watermark, sized once
	wmData     []byte
	wmFormat   string
	wmW, wmH   float64
}

// New prepares an engine for one document. The font set must already
// hold every font the document references; unknown fonts surface as
// style.UnknownFontError during layout.
func New(doc *model.Document, set *fonts.Set, log observability.Logger) (*Engine, error) {
	if log == nil {
		log = observability.NopLogger{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	pal, err := style.PaletteFor(doc.Style.Scheme)
	if err != nil {
		return nil, &model.ValidationError{Section: -1, Element: -1, Msg: err.Error()}
	}
	res, err := style.NewResolver(set, style.Resolved{
		Font:       doc.Style.Font,
		Size:       doc.Style.Size,
		LineHeight: doc.Style.LineHeight,
		Color:      pal.Text,
	})
	if err != nil {
		return nil, err
	}
	w, h := doc.Page.Dimensions()
	return &Engine{
		doc:   doc,
		fonts: set,
		res:   res,
		pal:   pal,
		log:   log,
		pageW: w,
		pageH: h,
		m:     doc.Page.Margins,
		refs:  NewRefTable(),
	}, nil
}

// Layout paginates the whole document and returns the page sequence
// with its deferred reference table.
func (e *Engine) Layout() (*Result, error) {
	e.collectDeferred()
	if err := e.prepareWatermark(); err != nil {
		return nil, err
	}

	if e.doc.Cover != nil {
		if err := e.layoutCover(e.doc.Cover); err != nil {
			return nil, err
		}
	}
	if e.doc.TOC {
		if err := e.layoutTOC(); err != nil {
			return nil, err
		}
	}
	for si := range e.doc.Sections {
		if err := e.layoutSection(si, &e.doc.Sections[si]); err != nil {
			return nil, err
		}
	}
	if err := e.layoutEndnotes(); err != nil {
		return nil, err
	}
	if err := e.layoutAppendix(); err != nil {
		return nil, err
	}
	if len(e.pages) == 0 {
		e.startPage()
	}
	e.finalize()

	e.log.Info("layout complete",
		observability.Int("pages", len(e.pages)),
		observability.Int("sections", len(e.doc.Sections)))
	return &Result{
		Doc:     e.doc,
		PageW:   e.pageW,
		PageH:   e.pageH,
		Pages:   e.pages,
		Refs:    e.refs,
		Outline: e.outline,
	}, nil
}

// collectDeferred scans the tree for appendix entries so synthesized
// sections are known before the TOC is laid out.
func (e *Engine) collectDeferred() {
	for si := range e.doc.Sections {
		for _, el := range e.doc.Sections[si].Elements {
			if a, ok := el.(model.Appendix); ok {
				e.appendixes = append(e.appendixes, a)
			}
		}
	}
}

func (e *Engine) hasEndnoteElements() bool {
	for si := range e.doc.Sections {
		for _, el := range e.doc.Sections[si].Elements {
			if fn, ok := el.(model.Footnote); ok && fn.Endnote {
				return true
			}
		}
	}
	return false
}

func (e *Engine) contentW() float64 { return e.pageW - e.m.Left - e.m.Right }

func (e *Engine) fullColH() float64 { return e.pageH - e.m.Top - e.m.Bottom }

func (e *Engine) bottomLimit() float64 {
	b := e.m.Bottom
	if e.page != nil && e.page.noteH > 0 {
		b += e.page.noteH + noteSep
	}
	return b
}

func (e *Engine) fits(h float64) bool {
	return e.y-h >= e.bottomLimit()-eps
}

func (e *Engine) atColumnTop() bool {
	return e.y >= e.pageH-e.m.Top-eps
}

// setColumns applies a section's column plan. Takes effect with the
// next page start.
func (e *Engine) setColumns(n int, gap float64) {
	if n < 1 {
		n = 1
	}
	if gap <= 0 {
		gap = 18
	}
	e.cols = n
	e.colGap = gap
	e.colW = (e.contentW() - float64(n-1)*gap) / float64(n)
}

func (e *Engine) startPage() {
	header, footer := e.doc.Header, e.doc.Footer
	if e.secHeader != nil {
		header = e.secHeader
	}
	if e.secFooter != nil {
		footer = e.secFooter
	}
	p := &Page{Index: len(e.pages), header: header, footer: footer}
	e.pages = append(e.pages, p)
	e.page = p
	if e.cols == 0 {
		e.setColumns(1, 0)
	}
	e.col = 0
	e.x = e.m.Left
	e.y = e.pageH - e.m.Top
}

// nextColumn advances to the next column, or the next page from the
// last column.
func (e *Engine) nextColumn() {
	if e.page == nil || e.col >= e.cols-1 {
		e.startPage()
		return
	}
	e.col++
	e.x = e.m.Left + float64(e.col)*(e.colW+e.colGap)
	e.y = e.pageH - e.m.Top
}

func (e *Engine) ensurePage() {
	if e.page == nil {
		e.startPage()
	}
}

// ensureSpace guarantees h points of room at the cursor, advancing
// columns and pages as needed. An h taller than a full empty column is
// unsplittable and fatal.
func (e *Engine) ensureSpace(h float64, kind string) error {
	e.ensurePage()
	if h > e.fullColH()+eps {
		return &UnsplittableOverflowError{Kind: kind, Height: h, Avail: e.fullColH()}
	}
	for !e.fits(h) {
		e.nextColumn()
	}
	return nil
}

func (e *Engine) addContent(it Item) {
	e.page.Content = append(e.page.Content, it)
}

// spaceBefore applies vertical space unless the cursor sits at a column
// top, where leading space would only waste the page.
func (e *Engine) spaceBefore(h float64) {
	if h > 0 && !e.atColumnTop() {
		if !e.fits(h) {
			e.nextColumn()
			return
		}
		e.y -= h
	}
}

func (e *Engine) spaceAfter(h float64) {
	if h > 0 && e.fits(h) {
		e.y -= h
	}
}

// placeLines flows wrapped lines at the cursor, splitting across
// columns at line boundaries.
func (e *Engine) placeLines(lines []Line, rs style.Resolved, indent float64) error {
	lh := rs.LineAdvance()
	for _, ln := range lines {
		if err := e.ensureSpace(lh, "text line"); err != nil {
			return err
		}
		x := lineX(rs.Alignment, e.x+indent, e.colW-indent, ln.Width)
		e.addContent(TextItem{X: x, Y: e.y - rs.Size, Runs: ln.Runs})
		e.y -= lh
	}
	return nil
}

// resolve merges the section and element overrides over the defaults.
func (e *Engine) resolve(el *style.Attributes) (style.Resolved, error) {
	return e.res.Resolve(e.secStyle, el)
}

// headingStyle is the ladder style for a heading level.
func (e *Engine) headingStyle(level int) style.Resolved {
	rs := e.res.Defaults
	rs.Size = e.res.HeadingSize(level)
	rs.Color = e.pal.Primary
	rs.SpaceBefore = rs.Size * 0.9
	rs.SpaceAfter = rs.Size * 0.45
	rs.Font = variantFont(e.fonts, rs.Font, true, false, false)
	return rs
}

// placeHeading lays a heading line and keeps it with at least one body
// line so headings never sit alone at a column bottom.
func (e *Engine) placeHeading(text string, level int) error {
	rs := e.headingStyle(level)
	lines := wrapSpans(e.fonts, richtext.Plain(text), rs, e.colW)
	if len(lines) == 0 {
		return nil
	}
	keep := rs.LineAdvance() + e.res.Defaults.LineAdvance()
	e.ensurePage()
	e.spaceBefore(rs.SpaceBefore)
	if !e.fits(keep) && keep <= e.fullColH()+eps {
		e.nextColumn()
	}
	if err := e.placeLines(lines, rs, 0); err != nil {
		return err
	}
	e.spaceAfter(rs.SpaceAfter)
	return nil
}

// layoutSection numbers and titles the section, applies its column
// plan, and flows its elements.
func (e *Engine) layoutSection(si int, s *model.Section) error {
	cols := s.Columns
	if cols < 1 {
		cols = 1
	}
	colsChange := e.cols != 0 && cols != e.cols

	e.secHeader, e.secFooter, e.secStyle = s.Header, s.Footer, s.Style
	e.setColumns(cols, s.ColumnGap)
	if e.page == nil || e.doc.BreakBeforeSections || colsChange {
		e.startPage()
	}

	title := s.Title
	if title != "" {
		if e.doc.SectionNumbering {
			title = fmt.Sprintf("%d. %s", si+1, title)
		}
		level := s.Level
		if level == 0 {
			level = 1
		}
		e.ensurePage()
		e.outline = append(e.outline, OutlineEntry{Title: title, Level: level, Page: len(e.pages)})
		if err := e.placeHeading(title, level); err != nil {
			return err
		}
	} else {
		e.ensurePage()
	}

	for ei, el := range s.Elements {
		if err := e.layoutElement(el); err != nil {
			return fmt.Errorf("section %d, element %d: %w", si, ei, err)
		}
	}
	e.secHeader, e.secFooter, e.secStyle = nil, nil, nil
	return nil
}

// finalize fills the deferred reference table and paints per-page
// decorations now that the page count is known.
func (e *Engine) finalize() {
	e.refs.Set("pages.total", strconv.Itoa(len(e.pages)))
	for i, entry := range e.outline {
		if i < e.tocCount {
			e.refs.Set(tocRefID(i), strconv.Itoa(entry.Page))
		}
	}
	for _, p := range e.pages {
		e.decoratePage(p)
	}
}

func tocRefID(i int) string { return fmt.Sprintf("toc.%d", i) }
