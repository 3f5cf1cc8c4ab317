package flow

import (
	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/richtext"
	"github.com/quillpdf/quill/style"
)

const cellPad = 4.0

var gridColor = style.MustColor("#c8c8c8")

// tint blends a color toward white; zebra rows use a light wash of the
// scheme's muted color.
func tint(c style.Color, f float64) style.Color {
	return style.Color{
		R: c.R*f + (1 - f),
		G: c.G*f + (1 - f),
		B: c.B*f + (1 - f),
		A: 1,
	}
}

// colWidths turns relative weights into absolute column widths.
func colWidths(weights []float64, cols int, total float64) []float64 {
	out := make([]float64, cols)
	if len(weights) != cols {
		for i := range out {
			out[i] = total / float64(cols)
		}
		return out
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	for i, w := range weights {
		out[i] = total / sum * w
	}
	return out
}

type tableRow struct {
	cells  [][]Line
	height float64
}

// layoutTable flows a grid, splitting at row boundaries. A continuation
// chunk repeats the header (unless suppressed) and re-titles itself
// with a "(continued)" suffix.
func (e *Engine) layoutTable(t model.Table) error {
	rs, err := e.resolve(t.Style)
	if err != nil {
		return err
	}
	hdrStyle, err := e.resolve(t.HeaderStyle)
	if err != nil {
		return err
	}
	if t.HeaderStyle == nil {
		hdrStyle.Color = style.Color{R: 1, G: 1, B: 1, A: 1}
	}
	hdrStyle.Font = variantFont(e.fonts, hdrStyle.Font, true, false, false)

	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	widths := colWidths(t.ColumnWidths, cols, e.colW)

	wrapRow := func(cells []string, cs style.Resolved) tableRow {
		row := tableRow{cells: make([][]Line, len(cells))}
		maxLines := 1
		for i, cell := range cells {
			row.cells[i] = wrapSpans(e.fonts, richtext.Plain(cell), cs, widths[i]-2*cellPad)
			if n := len(row.cells[i]); n > maxLines {
				maxLines = n
			}
		}
		row.height = float64(maxLines)*cs.LineAdvance() + 2*cellPad
		return row
	}

	var header *tableRow
	if len(t.Headers) > 0 {
		h := wrapRow(t.Headers, hdrStyle)
		header = &h
	}
	rows := make([]tableRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = wrapRow(r, rs)
	}

	titleStyle := rs
	titleStyle.Font = variantFont(e.fonts, rs.Font, true, false, false)
	titleStyle.Color = e.pal.Primary

	placeTitle := func(continued bool) {
		if t.Title == "" {
			return
		}
		text := t.Title
		if continued {
			text += " (continued)"
		}
		lines := wrapSpans(e.fonts, richtext.Plain(text), titleStyle, e.colW)
		for _, ln := range lines {
			e.addContent(TextItem{X: e.x, Y: e.y - titleStyle.Size, Runs: ln.Runs})
			e.y -= titleStyle.LineAdvance()
		}
		e.y -= 2
	}
	titleH := func() float64 {
		if t.Title == "" {
			return 0
		}
		return titleStyle.LineAdvance() + 2
	}

	placeRow := func(row tableRow, cs style.Resolved, headerRow, zebra bool) {
		x := e.x
		top := e.y
		for i := range row.cells {
			rect := RectItem{X: x, Y: top - row.height, W: widths[i], H: row.height,
				Stroke: &gridColor, LineWidth: 0.5}
			if headerRow {
				fill := e.pal.Primary
				rect.Fill = &fill
			} else if zebra {
				fill := tint(e.pal.Muted, 0.25)
				rect.Fill = &fill
			}
			e.addContent(rect)
			align := style.AlignLeft
			if i < len(t.ColumnAlign) && t.ColumnAlign[i] != "" {
				align = t.ColumnAlign[i]
			}
			y := top - cellPad
			for _, ln := range row.cells[i] {
				lx := lineX(align, x+cellPad, widths[i]-2*cellPad, ln.Width)
				e.addContent(TextItem{X: lx, Y: y - cs.Size, Runs: ln.Runs})
				y -= cs.LineAdvance()
			}
			x += widths[i]
		}
		e.y -= row.height
	}

	headerH := 0.0
	if header != nil {
		headerH = header.height
	}
	firstRowH := 0.0
	if len(rows) > 0 {
		firstRowH = rows[0].height
	}

	// The opening chunk keeps title, header, and first body row together.
	e.ensurePage()
	if firstRowH > e.fullColH()+eps {
		return &UnsplittableOverflowError{Kind: "table row", Height: firstRowH, Avail: e.fullColH()}
	}
	if err := e.ensureSpace(titleH()+headerH+firstRowH, "table"); err != nil {
		return err
	}
	placeTitle(false)
	if header != nil {
		placeRow(*header, hdrStyle, true, false)
	}

	for i, row := range rows {
		if !e.fits(row.height) {
			if row.height > e.fullColH()+eps {
				return &UnsplittableOverflowError{Kind: "table row", Height: row.height, Avail: e.fullColH()}
			}
			repeatH := 0.0
			if header != nil && !t.NoRepeatHeader {
				repeatH = headerH
			}
			if err := e.ensureSpace(titleH()+repeatH+row.height, "table"); err != nil {
				return err
			}
			placeTitle(true)
			if header != nil && !t.NoRepeatHeader {
				placeRow(*header, hdrStyle, true, false)
			}
		}
		placeRow(row, rs, false, t.ZebraStripe && i%2 == 1)
	}
	e.spaceAfter(8)
	return nil
}
