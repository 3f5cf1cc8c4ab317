package flow

import (
	"fmt"
	"strconv"

	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/richtext"
	"github.com/quillpdf/quill/style"
)

const (
	noteSize    = 8.0
	noteLeading = 9.6
	noteIndent  = 14.0
)

// pendingNote is an endnote waiting for the synthesized notes section.
type pendingNote struct {
	num  int
	text string
}

func (e *Engine) noteStyle() style.Resolved {
	rs := e.res.Defaults
	rs.Size = noteSize
	rs.LineHeight = noteLeading / noteSize
	return rs
}

// layoutFootnote drops a superscript marker at the cursor and commits
// the note text to the bottom of the page carrying the marker. Endnotes
// only place the marker; their text waits for the notes section.
func (e *Engine) layoutFootnote(fn model.Footnote) error {
	e.ensurePage()
	e.noteNum++
	num := e.noteNum

	markerStyle := e.res.Defaults
	markerH := markerStyle.Size * 0.9

	if fn.Endnote {
		if err := e.ensureSpace(markerH, "endnote marker"); err != nil {
			return err
		}
		e.placeNoteMarker(num, markerStyle)
		e.endnotes = append(e.endnotes, pendingNote{num: num, text: fn.Text})
		return nil
	}

	rs := e.noteStyle()
	lines := wrapSpans(e.fonts, richtext.ParseInline(fn.Text), rs, e.contentW()-noteIndent)
	noteH := float64(len(lines))*noteLeading + 2

	if markerH+noteH+noteSep > e.fullColH()+eps {
		return &UnsplittableOverflowError{Kind: "footnote", Height: markerH + noteH + noteSep, Avail: e.fullColH()}
	}
	// The note must land on the same page as its marker.
	for e.y-markerH < e.m.Bottom+e.page.noteH+noteSep+noteH {
		e.nextColumn()
	}
	e.placeNoteMarker(num, markerStyle)
	e.page.noteBlocks = append(e.page.noteBlocks, noteBlock{number: num, lines: lines})
	e.page.noteH += noteH
	return nil
}

func (e *Engine) placeNoteMarker(num int, rs style.Resolved) {
	e.addContent(TextItem{X: e.x, Y: e.y - rs.Size*0.6, Runs: []TextRun{{
		Text:  strconv.Itoa(num),
		Font:  rs.Font,
		Size:  rs.Size * 0.6,
		Color: e.pal.Secondary,
		Rise:  rs.Size * 0.3,
	}}})
	e.y -= rs.Size * 0.9
}

// renderPageNotes turns a page's queued notes into items: a separator
// rule, then the numbered notes stacked top-down inside the reserved
// band above the bottom margin.
func (e *Engine) renderPageNotes(p *Page) {
	if len(p.noteBlocks) == 0 {
		return
	}
	rs := e.noteStyle()
	top := e.m.Bottom + p.noteH + noteSep
	p.Footnotes = append(p.Footnotes, LineItem{
		X1: e.m.Left, Y1: top - 3, X2: e.m.Left + e.contentW()*0.3, Y2: top - 3,
		Color: e.pal.Muted, Width: 0.5,
	})
	y := top - noteSep
	for _, nb := range p.noteBlocks {
		p.Footnotes = append(p.Footnotes, TextItem{
			X: e.m.Left, Y: y - rs.Size,
			Runs: []TextRun{{
				Text:  strconv.Itoa(nb.number) + ".",
				Font:  rs.Font,
				Size:  rs.Size * 0.85,
				Color: e.pal.Secondary,
			}},
		})
		for _, ln := range nb.lines {
			p.Footnotes = append(p.Footnotes, TextItem{X: e.m.Left + noteIndent, Y: y - rs.Size, Runs: ln.Runs})
			y -= noteLeading
		}
		y -= 2
	}
}

// layoutEndnotes synthesizes a trailing notes section when any endnote
// was encountered.
func (e *Engine) layoutEndnotes() error {
	if len(e.endnotes) == 0 {
		return nil
	}
	e.setColumns(1, 0)
	e.startPage()
	e.outline = append(e.outline, OutlineEntry{Title: "Notes", Level: 1, Page: len(e.pages)})
	if err := e.placeHeading("Notes", 1); err != nil {
		return err
	}
	rs := e.res.Defaults
	for _, n := range e.endnotes {
		lines := wrapSpans(e.fonts, richtext.ParseInline(n.text), rs, e.colW-noteIndent)
		if len(lines) == 0 {
			continue
		}
		lh := rs.LineAdvance()
		if err := e.ensureSpace(lh, "endnote"); err != nil {
			return err
		}
		e.addContent(TextItem{X: e.x, Y: e.y - rs.Size, Runs: []TextRun{{
			Text: fmt.Sprintf("%d.", n.num), Font: rs.Font, Size: rs.Size, Color: e.pal.Secondary,
		}}})
		e.addContent(TextItem{X: e.x + noteIndent, Y: e.y - rs.Size, Runs: lines[0].Runs})
		e.y -= lh
		if err := e.placeLines(lines[1:], rs, noteIndent); err != nil {
			return err
		}
		e.spaceAfter(4)
	}
	return nil
}

// layoutAppendix synthesizes the lettered appendix section from entries
// collected across the document.
func (e *Engine) layoutAppendix() error {
	if len(e.appendixes) == 0 {
		return nil
	}
	e.setColumns(1, 0)
	e.startPage()
	e.outline = append(e.outline, OutlineEntry{Title: "Appendix", Level: 1, Page: len(e.pages)})
	if err := e.placeHeading("Appendix", 1); err != nil {
		return err
	}
	for i, a := range e.appendixes {
		title := fmt.Sprintf("A.%d %s", i+1, a.Title)
		if err := e.placeHeading(title, 2); err != nil {
			return err
		}
		for _, el := range a.Elements {
			if err := e.layoutElement(el); err != nil {
				return fmt.Errorf("appendix %d: %w", i+1, err)
			}
		}
	}
	return nil
}
