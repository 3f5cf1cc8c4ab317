package flow

import (
	"fmt"

	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/richtext"
	"github.com/quillpdf/quill/style"
)

// layoutCover builds the synthesized title page: logo, title block with
// an accent rule, then author and date near the lower third.
func (e *Engine) layoutCover(c *model.Cover) error {
	e.setColumns(1, 0)
	e.startPage()
	e.page.cover = true

	centerX := e.pageW / 2

	if c.LogoPath != "" || len(c.LogoData) > 0 {
		data, format, pxW, pxH, err := e.loadImage(c.LogoPath, c.LogoData)
		if err != nil {
			return err
		}
		w, h := imageBox(0, 0, pxW, pxH, 160)
		if h > 120 {
			w *= 120 / h
			h = 120
		}
		e.page.Content = append(e.page.Content, ImageItem{
			X: centerX - w/2, Y: e.pageH*0.78, W: w, H: h, Data: data, Format: format,
		})
	}

	titleStyle := e.res.Defaults
	titleStyle.Size += 16
	titleStyle.Color = e.pal.Primary
	titleStyle.Font = variantFont(e.fonts, titleStyle.Font, true, false, false)
	titleStyle.Alignment = style.AlignCenter

	y := e.pageH * 0.62
	lines := wrapSpans(e.fonts, richtext.Plain(c.Title), titleStyle, e.contentW())
	for _, ln := range lines {
		x := lineX(style.AlignCenter, e.m.Left, e.contentW(), ln.Width)
		e.page.Content = append(e.page.Content, TextItem{X: x, Y: y - titleStyle.Size, Runs: ln.Runs})
		y -= titleStyle.LineAdvance()
	}
	y -= 8
	ruleW := e.contentW() * 0.35
	e.page.Content = append(e.page.Content, LineItem{
		X1: centerX - ruleW/2, Y1: y, X2: centerX + ruleW/2, Y2: y,
		Color: e.pal.Accent, Width: 2,
	})
	y -= 24

	if c.Subtitle != "" {
		subStyle := e.res.Defaults
		subStyle.Size += 4
		subStyle.Color = e.pal.Secondary
		for _, ln := range wrapSpans(e.fonts, richtext.Plain(c.Subtitle), subStyle, e.contentW()) {
			x := lineX(style.AlignCenter, e.m.Left, e.contentW(), ln.Width)
			e.page.Content = append(e.page.Content, TextItem{X: x, Y: y - subStyle.Size, Runs: ln.Runs})
			y -= subStyle.LineAdvance()
		}
	}

	y = e.pageH * 0.25
	metaStyle := e.res.Defaults
	metaStyle.Color = e.pal.Text
	for _, line := range []string{c.Author, c.Date} {
		if line == "" {
			continue
		}
		for _, ln := range wrapSpans(e.fonts, richtext.Plain(line), metaStyle, e.contentW()) {
			x := lineX(style.AlignCenter, e.m.Left, e.contentW(), ln.Width)
			e.page.Content = append(e.page.Content, TextItem{X: x, Y: y - metaStyle.Size, Runs: ln.Runs})
			y -= metaStyle.LineAdvance()
		}
		y -= 4
	}

	e.page = nil
	return nil
}

// tocEntry is a planned table-of-contents line; its page number stays
// deferred until pagination finishes.
type tocEntry struct {
	title string
	level int
}

// tocEntries mirrors the order outline entries are appended in: titled
// sections first, then the synthesized notes and appendix sections.
func (e *Engine) tocEntries() []tocEntry {
	var entries []tocEntry
	for si := range e.doc.Sections {
		s := &e.doc.Sections[si]
		if s.Title == "" {
			continue
		}
		title := s.Title
		if e.doc.SectionNumbering {
			title = fmt.Sprintf("%d. %s", si+1, title)
		}
		level := s.Level
		if level == 0 {
			level = 1
		}
		entries = append(entries, tocEntry{title: title, level: level})
	}
	if e.hasEndnoteElements() {
		entries = append(entries, tocEntry{title: "Notes", level: 1})
	}
	if len(e.appendixes) > 0 {
		entries = append(entries, tocEntry{title: "Appendix", level: 1})
	}
	return entries
}

// layoutTOC lays the contents page: entry text, a dot leader, and a
// right-aligned page number placeholder patched after pagination.
func (e *Engine) layoutTOC() error {
	e.setColumns(1, 0)
	e.startPage()
	if err := e.placeHeading("Table of Contents", 1); err != nil {
		return err
	}

	entries := e.tocEntries()
	e.tocCount = len(entries)
	rs := e.res.Defaults
	lh := rs.LineAdvance() * 1.25
	numW := e.fonts.Measure(rs.Font, rs.Size, "000")
	dotW := e.fonts.Measure(rs.Font, rs.Size, ".")

	for i, entry := range entries {
		if err := e.ensureSpace(lh, "toc entry"); err != nil {
			return err
		}
		indent := float64(entry.level-1) * 14
		titleW := e.fonts.Measure(rs.Font, rs.Size, entry.title)

		runs := []TextRun{{Text: entry.title, Font: rs.Font, Size: rs.Size, Color: rs.Color}}
		avail := e.colW - indent - titleW - numW - 10
		if n := int(avail / dotW); n > 2 {
			dots := make([]byte, n)
			for j := range dots {
				dots[j] = '.'
			}
			runs = append(runs, TextRun{Text: " " + string(dots), Font: rs.Font, Size: rs.Size, Color: e.pal.Muted})
		}
		e.addContent(TextItem{X: e.x + indent, Y: e.y - rs.Size, Runs: runs})
		e.addContent(TextItem{
			X: e.x + e.colW, Y: e.y - rs.Size, AnchorRight: true,
			Runs: []TextRun{{Text: "00", Font: rs.Font, Size: rs.Size, Color: rs.Color, Ref: tocRefID(i)}},
		})
		e.y -= lh
	}

	e.page = nil
	return nil
}
