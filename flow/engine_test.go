package flow

import (
	"errors"
	"strings"
	"testing"

	"github.com/quillpdf/quill/fonts"
	"github.com/quillpdf/quill/model"
)

func a4Doc(sections ...model.Section) *model.Document {
	return &model.Document{
		Page: model.PageSetup{
			Size:    model.PageA4,
			Margins: model.Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
		},
		Sections: sections,
	}
}

func layout(t *testing.T, doc *model.Document) *Result {
	t.Helper()
	e, err := New(doc, fonts.NewSet(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return res
}

// pageTexts flattens all text run content on one page.
func pageTexts(p *Page) string {
	var sb strings.Builder
	for _, group := range [][]Item{p.Background, p.Watermark, p.Border, p.Content, p.Footnotes, p.Furniture} {
		for _, it := range group {
			if ti, ok := it.(TextItem); ok {
				for _, run := range ti.Runs {
					sb.WriteString(run.Text)
					sb.WriteString("\n")
				}
			}
		}
	}
	return sb.String()
}

func TestSinglePageDocument(t *testing.T) {
	res := layout(t, a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: "Hello world."},
	}}))
	if len(res.Pages) != 1 {
		t.Fatalf("page count = %d, want 1", len(res.Pages))
	}
	if total, ok := res.Refs.Get("pages.total"); !ok || total != "1" {
		t.Errorf("pages.total = %q, %v", total, ok)
	}
	if !strings.Contains(pageTexts(res.Pages[0]), "Hello world.") {
		t.Errorf("page text missing paragraph")
	}
}

func TestEmptyDocumentStillHasOnePage(t *testing.T) {
	res := layout(t, a4Doc())
	if len(res.Pages) != 1 {
		t.Errorf("page count = %d, want 1", len(res.Pages))
	}
}

func TestLongParagraphSplitsAtLineBoundary(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet consectetur adipiscing elit ", 120))
	res := layout(t, a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: text},
	}}))
	if len(res.Pages) != 2 {
		t.Fatalf("page count = %d, want 2", len(res.Pages))
	}
	// Both fragments carry content; nothing is lost or duplicated.
	first := pageTexts(res.Pages[0])
	second := pageTexts(res.Pages[1])
	if !strings.Contains(first, "lorem") || !strings.Contains(second, "lorem") {
		t.Errorf("split fragments missing text")
	}
	joined := strings.ReplaceAll(first+second, "\n", " ")
	wordCount := strings.Count(joined, "lorem")
	if wordCount != 120 {
		t.Errorf("fragment word count = %d, want 120", wordCount)
	}
}

func TestPageBreaks(t *testing.T) {
	res := layout(t, a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: "one"},
		model.PageBreak{},
		model.Paragraph{Text: "two"},
		model.PageBreak{},
		model.Paragraph{Text: "three"},
	}}))
	if len(res.Pages) != 3 {
		t.Fatalf("page count = %d, want 3", len(res.Pages))
	}
	if total, _ := res.Refs.Get("pages.total"); total != "3" {
		t.Errorf("pages.total = %q, want 3", total)
	}
	for i, want := range []string{"one", "two", "three"} {
		if !strings.Contains(pageTexts(res.Pages[i]), want) {
			t.Errorf("page %d missing %q", i+1, want)
		}
	}
}

func TestColumnBreakStaysOnPage(t *testing.T) {
	res := layout(t, a4Doc(model.Section{
		Columns: 2,
		Elements: []model.Element{
			model.Paragraph{Text: "left column"},
			model.ColumnBreak{},
			model.Paragraph{Text: "right column"},
		},
	}))
	if len(res.Pages) != 1 {
		t.Fatalf("page count = %d, want 1", len(res.Pages))
	}
	text := pageTexts(res.Pages[0])
	if !strings.Contains(text, "left column") || !strings.Contains(text, "right column") {
		t.Errorf("columns missing content")
	}
}

func TestUnsplittableOverflow(t *testing.T) {
	doc := a4Doc(model.Section{Elements: []model.Element{
		model.Chart{Type: model.ChartBar, Labels: []string{"a"},
			Series: []model.ChartSeries{{Values: []float64{1}}}, Height: 2000},
	}})
	e, err := New(doc, fonts.NewSet(), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Layout()
	var oe *UnsplittableOverflowError
	if !errors.As(err, &oe) {
		t.Fatalf("err = %v, want UnsplittableOverflowError", err)
	}
	if oe.Kind != "chart" {
		t.Errorf("overflow kind = %q", oe.Kind)
	}
	if oe.Height <= oe.Avail {
		t.Errorf("overflow error has height %g <= avail %g", oe.Height, oe.Avail)
	}
}

func TestExactFitIsPlaced(t *testing.T) {
	// A chart exactly the full column height lands on the current page.
	doc := a4Doc(model.Section{Elements: []model.Element{
		model.Chart{Type: model.ChartBar, Labels: []string{"a"},
			Series: []model.ChartSeries{{Values: []float64{1}}},
			Height: 841.89 - 72 - 72},
	}})
	res := layout(t, doc)
	if len(res.Pages) != 1 {
		t.Errorf("page count = %d, want 1", len(res.Pages))
	}
}

func TestSectionNumberingAndOutline(t *testing.T) {
	doc := a4Doc(
		model.Section{Title: "Alpha", Level: 1, Elements: []model.Element{model.Paragraph{Text: "a"}}},
		model.Section{Title: "Beta", Level: 1, Elements: []model.Element{model.Paragraph{Text: "b"}}},
	)
	doc.SectionNumbering = true
	res := layout(t, doc)
	if len(res.Outline) != 2 {
		t.Fatalf("outline entries = %d, want 2", len(res.Outline))
	}
	if res.Outline[0].Title != "1. Alpha" || res.Outline[1].Title != "2. Beta" {
		t.Errorf("outline titles = %q, %q", res.Outline[0].Title, res.Outline[1].Title)
	}
	if !strings.Contains(pageTexts(res.Pages[0]), "1. Alpha") {
		t.Errorf("numbered heading missing on page")
	}
}

func TestBreakBeforeSections(t *testing.T) {
	doc := a4Doc(
		model.Section{Title: "One", Level: 1, Elements: []model.Element{model.Paragraph{Text: "a"}}},
		model.Section{Title: "Two", Level: 1, Elements: []model.Element{model.Paragraph{Text: "b"}}},
	)
	doc.BreakBeforeSections = true
	res := layout(t, doc)
	if len(res.Pages) != 2 {
		t.Fatalf("page count = %d, want 2", len(res.Pages))
	}
	if res.Outline[1].Page != 2 {
		t.Errorf("second section starts on page %d, want 2", res.Outline[1].Page)
	}
}

func TestTOCReferencesResolve(t *testing.T) {
	doc := a4Doc(
		model.Section{Title: "Intro", Level: 1, Elements: []model.Element{model.Paragraph{Text: "a"}}},
		model.Section{Title: "Body", Level: 1, Elements: []model.Element{model.Paragraph{Text: "b"}}},
	)
	doc.TOC = true
	doc.BreakBeforeSections = true
	res := layout(t, doc)

	// TOC page, then one page per section.
	if len(res.Pages) != 3 {
		t.Fatalf("page count = %d, want 3", len(res.Pages))
	}
	if v, ok := res.Refs.Get("toc.0"); !ok || v != "2" {
		t.Errorf("toc.0 = %q, %v, want 2", v, ok)
	}
	if v, ok := res.Refs.Get("toc.1"); !ok || v != "3" {
		t.Errorf("toc.1 = %q, %v, want 3", v, ok)
	}
	if !strings.Contains(pageTexts(res.Pages[0]), "Intro") {
		t.Errorf("TOC page missing section title")
	}
}

func TestCoverPage(t *testing.T) {
	doc := a4Doc(model.Section{Elements: []model.Element{model.Paragraph{Text: "body"}}})
	doc.Cover = &model.Cover{Title: "Annual Report", Subtitle: "FY 2025", Author: "Quill"}
	doc.Footer = &model.Footer{ShowPageNumber: true}
	res := layout(t, doc)

	if len(res.Pages) != 2 {
		t.Fatalf("page count = %d, want 2", len(res.Pages))
	}
	if !strings.Contains(pageTexts(res.Pages[0]), "Annual Report") {
		t.Errorf("cover missing title")
	}
	// Furniture is suppressed on the cover but present afterward.
	if len(res.Pages[0].Furniture) != 0 {
		t.Errorf("cover page has furniture")
	}
	if len(res.Pages[1].Furniture) == 0 {
		t.Errorf("content page missing furniture")
	}
}

func TestFooterPageNumberUsesDeferredTotal(t *testing.T) {
	doc := a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: "a"}, model.PageBreak{}, model.Paragraph{Text: "b"},
	}})
	doc.Footer = &model.Footer{Text: "Confidential", ShowPageNumber: true}
	res := layout(t, doc)

	found := false
	for _, it := range res.Pages[0].Furniture {
		ti, ok := it.(TextItem)
		if !ok {
			continue
		}
		for _, run := range ti.Runs {
			if run.Ref == "pages.total" {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("no furniture run references pages.total")
	}
	if v, _ := res.Refs.Get("pages.total"); v != "2" {
		t.Errorf("pages.total = %q, want 2", v)
	}
}

func TestFootnoteStaysOnMarkerPage(t *testing.T) {
	res := layout(t, a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: "Claim with a source."},
		model.Footnote{Text: "See the appendix for details."},
	}}))
	if len(res.Pages) != 1 {
		t.Fatalf("page count = %d, want 1", len(res.Pages))
	}
	if len(res.Pages[0].Footnotes) == 0 {
		t.Fatalf("marker page has no footnote items")
	}
	if !strings.Contains(pageTexts(res.Pages[0]), "See the appendix for details.") {
		t.Errorf("footnote text missing from page")
	}
}

func TestEndnotesCollectIntoNotesSection(t *testing.T) {
	res := layout(t, a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: "First claim."},
		model.Footnote{Text: "First source.", Endnote: true},
		model.Paragraph{Text: "Second claim."},
		model.Footnote{Text: "Second source.", Endnote: true},
	}}))
	last := res.Pages[len(res.Pages)-1]
	text := pageTexts(last)
	if !strings.Contains(text, "Notes") {
		t.Errorf("no Notes section")
	}
	if !strings.Contains(text, "First source.") || !strings.Contains(text, "Second source.") {
		t.Errorf("endnote bodies missing")
	}
}

func TestAppendixNumbering(t *testing.T) {
	res := layout(t, a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: "body"},
		model.Appendix{Title: "Raw Data", Elements: []model.Element{model.Paragraph{Text: "numbers"}}},
		model.Appendix{Title: "Methods", Elements: []model.Element{model.Paragraph{Text: "how"}}},
	}}))
	last := res.Pages[len(res.Pages)-1]
	text := pageTexts(last)
	if !strings.Contains(text, "A.1 Raw Data") || !strings.Contains(text, "A.2 Methods") {
		t.Errorf("appendix numbering missing: %q", text)
	}
}

func TestWatermarkOnEveryPage(t *testing.T) {
	doc := a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: "a"}, model.PageBreak{}, model.Paragraph{Text: "b"},
	}})
	doc.Watermark = &model.Watermark{Text: "DRAFT"}
	res := layout(t, doc)
	for i, p := range res.Pages {
		if len(p.Watermark) == 0 {
			t.Errorf("page %d has no watermark items", i+1)
		}
		if !strings.Contains(pageTexts(p), "DRAFT") {
			t.Errorf("page %d watermark text missing", i+1)
		}
	}
}

func TestRefTableSorted(t *testing.T) {
	rt := NewRefTable()
	rt.Set("b", "2")
	rt.Set("a", "1")
	rt.Set("c", "3")
	ids := rt.IDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("IDs = %v", ids)
	}
}

func TestHTMLParagraphStyledRuns(t *testing.T) {
	res := layout(t, a4Doc(model.Section{Elements: []model.Element{
		model.Paragraph{Text: `plain <b>bold</b> and a <a href="https://example.com">link</a>`, HTML: true},
	}}))
	var bold, linked bool
	for _, it := range res.Pages[0].Content {
		ti, ok := it.(TextItem)
		if !ok {
			continue
		}
		for _, run := range ti.Runs {
			if run.Text == "bold" && run.Font == "Helvetica-Bold" {
				bold = true
			}
			if run.Link == "https://example.com" {
				linked = true
			}
		}
	}
	if !bold {
		t.Errorf("bold tag did not switch the run font")
	}
	if !linked {
		t.Errorf("anchor href did not survive into the run")
	}
}
