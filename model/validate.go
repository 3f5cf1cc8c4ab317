package model

import (
	"fmt"

	"github.com/quillpdf/quill/style"
)

// ValidationError reports a structural problem in a document tree. The
// path pinpoints the offending node: section and element indexes are -1
// when the problem is document-level.
type ValidationError struct {
	Section int
	Element int
	Msg     string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Section < 0:
		return fmt.Sprintf("invalid document: %s", e.Msg)
	case e.Element < 0:
		return fmt.Sprintf("invalid document: section %d: %s", e.Section, e.Msg)
	default:
		return fmt.Sprintf("invalid document: section %d, element %d: %s", e.Section, e.Element, e.Msg)
	}
}

func docErr(format string, args ...any) error {
	return &ValidationError{Section: -1, Element: -1, Msg: fmt.Sprintf(format, args...)}
}

func sectionErr(si int, format string, args ...any) error {
	return &ValidationError{Section: si, Element: -1, Msg: fmt.Sprintf(format, args...)}
}

func elemErr(si, ei int, format string, args ...any) error {
	return &ValidationError{Section: si, Element: ei, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks the whole tree before layout. It returns the first
// problem found, walking document settings, then sections in order, then
// elements in order.
func (d *Document) Validate() error {
	w, h := d.Page.Dimensions()
	if d.Page.Size == PageCustom && (d.Page.Width <= 0 || d.Page.Height <= 0) {
		return docErr("custom page size needs positive width and height")
	}
	m := d.Page.Margins
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return docErr("negative page margin")
	}
	if m.Left+m.Right >= w || m.Top+m.Bottom >= h {
		return docErr("margins leave no content area on a %gx%g page", w, h)
	}
	if _, err := style.PaletteFor(d.Style.Scheme); err != nil {
		return docErr("%v", err)
	}
	if d.Watermark != nil {
		wm := d.Watermark
		hasImage := wm.ImagePath != "" || len(wm.ImageData) > 0
		if wm.Text == "" && !hasImage {
			return docErr("watermark needs text or an image")
		}
		if wm.Text != "" && hasImage {
			return docErr("watermark takes text or an image, not both")
		}
		if wm.Opacity < 0 || wm.Opacity > 1 {
			return docErr("watermark opacity %g outside [0, 1]", wm.Opacity)
		}
	}
	if b := d.Border; b != nil {
		switch b.Style {
		case "", BorderSingle, BorderDouble, BorderDecorative:
		default:
			return docErr("unknown border style %q", b.Style)
		}
	}
	if bg := d.Background; bg != nil {
		if bg.Color.IsZero() && bg.Gradient == nil {
			return docErr("background needs a color or a gradient")
		}
	}
	if enc := d.Encryption; enc != nil {
		if enc.OwnerPassword == "" && enc.UserPassword == "" {
			return docErr("encryption needs at least one password")
		}
	}
	for i, f := range d.Fonts {
		if f.Name == "" {
			return docErr("font %d has no name", i)
		}
		if len(f.Data) == 0 {
			return docErr("font %q has no data", f.Name)
		}
	}
	for si := range d.Sections {
		if err := d.validateSection(si); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) validateSection(si int) error {
	s := &d.Sections[si]
	if s.Level < 0 || s.Level > 6 {
		return sectionErr(si, "heading level %d outside 0..6", s.Level)
	}
	if s.Columns < 0 || s.Columns > 4 {
		return sectionErr(si, "column count %d outside 0..4", s.Columns)
	}
	if s.ColumnGap < 0 {
		return sectionErr(si, "negative column gap")
	}
	for ei, el := range s.Elements {
		if err := validateElement(si, ei, el); err != nil {
			return err
		}
	}
	return nil
}

func validateElement(si, ei int, el Element) error {
	switch e := el.(type) {
	case Paragraph:
		if e.Level < 0 || e.Level > 6 {
			return elemErr(si, ei, "heading level %d outside 0..6", e.Level)
		}
		if e.Markdown && e.HTML {
			return elemErr(si, ei, "paragraph takes markdown or HTML, not both")
		}
	case Table:
		if len(e.Rows) == 0 && len(e.Headers) == 0 {
			return elemErr(si, ei, "empty table")
		}
		cols := len(e.Headers)
		if cols == 0 && len(e.Rows) > 0 {
			cols = len(e.Rows[0])
		}
		if cols == 0 {
			return elemErr(si, ei, "table has no columns")
		}
		for ri, row := range e.Rows {
			if len(row) != cols {
				return elemErr(si, ei, "table row %d has %d cells, want %d", ri, len(row), cols)
			}
		}
		if len(e.ColumnWidths) > 0 {
			if len(e.ColumnWidths) != cols {
				return elemErr(si, ei, "table has %d column widths for %d columns", len(e.ColumnWidths), cols)
			}
			for _, cw := range e.ColumnWidths {
				if cw <= 0 {
					return elemErr(si, ei, "non-positive table column width")
				}
			}
		}
		if len(e.ColumnAlign) > 0 {
			if len(e.ColumnAlign) != cols {
				return elemErr(si, ei, "table has %d column alignments for %d columns", len(e.ColumnAlign), cols)
			}
			for _, a := range e.ColumnAlign {
				switch a {
				case "", style.AlignLeft, style.AlignCenter, style.AlignRight:
				default:
					return elemErr(si, ei, "unknown alignment %q", a)
				}
			}
		}
	case Image:
		hasPath, hasData := e.Path != "", len(e.Data) > 0
		if !hasPath && !hasData {
			return elemErr(si, ei, "image needs a path or inline data")
		}
		if hasPath && hasData {
			return elemErr(si, ei, "image takes a path or inline data, not both")
		}
		if e.Width < 0 || e.Height < 0 {
			return elemErr(si, ei, "negative image dimension")
		}
	case Chart:
		switch e.Type {
		case ChartBar, ChartPie, ChartLine:
		default:
			return elemErr(si, ei, "unknown chart type %q", e.Type)
		}
		if len(e.Series) == 0 {
			return elemErr(si, ei, "chart has no series")
		}
		if len(e.Labels) == 0 {
			return elemErr(si, ei, "chart has no labels")
		}
		for _, s := range e.Series {
			if len(s.Values) != len(e.Labels) {
				return elemErr(si, ei, "series %q has %d values for %d labels", s.Name, len(s.Values), len(e.Labels))
			}
		}
		if e.Type == ChartPie {
			for _, v := range e.Series[0].Values {
				if v < 0 {
					return elemErr(si, ei, "pie chart value %g is negative", v)
				}
			}
		}
	case List:
		switch e.Kind {
		case "", ListBullet, ListNumber:
		default:
			return elemErr(si, ei, "unknown list kind %q", e.Kind)
		}
		if len(e.Items) == 0 {
			return elemErr(si, ei, "empty list")
		}
	case TextBox:
		if e.Text == "" {
			return elemErr(si, ei, "empty text box")
		}
		if e.Width < 0 || e.Padding < 0 {
			return elemErr(si, ei, "negative text box dimension")
		}
	case Callout:
		switch e.Kind {
		case CalloutInfo, CalloutWarning, CalloutSuccess, CalloutError:
		default:
			return elemErr(si, ei, "unknown callout kind %q", e.Kind)
		}
		if e.Text == "" {
			return elemErr(si, ei, "empty callout")
		}
	case QRCode:
		if e.Content == "" {
			return elemErr(si, ei, "empty QR code content")
		}
		switch e.Level {
		case "", QRLow, QRMedium, QRHigh, QRHighest:
		default:
			return elemErr(si, ei, "unknown QR level %q", e.Level)
		}
		if e.Size < 0 {
			return elemErr(si, ei, "negative QR size")
		}
	case SignatureBlock:
		if e.Name == "" {
			return elemErr(si, ei, "signature block has no name")
		}
	case FormField:
		if e.Label == "" {
			return elemErr(si, ei, "form field has no label")
		}
		switch e.Kind {
		case "", FieldText, FieldDate, FieldCheckbox, FieldSignature:
		default:
			return elemErr(si, ei, "unknown form field kind %q", e.Kind)
		}
	case Footnote:
		if e.Text == "" {
			return elemErr(si, ei, "empty footnote")
		}
	case Appendix:
		if e.Title == "" {
			return elemErr(si, ei, "appendix entry has no title")
		}
		for _, sub := range e.Elements {
			if _, nested := sub.(Appendix); nested {
				return elemErr(si, ei, "appendix entries cannot nest")
			}
			if err := validateElement(si, ei, sub); err != nil {
				return err
			}
		}
	case PageBreak, ColumnBreak:
	case nil:
		return elemErr(si, ei, "nil element")
	default:
		return elemErr(si, ei, "unknown element type %T", el)
	}
	return nil
}
