package model

import "github.com/quillpdf/quill/style"

// Kind discriminates element variants.
type Kind string

const (
	KindParagraph      Kind = "paragraph"
	KindTable          Kind = "table"
	KindImage          Kind = "image"
	KindChart          Kind = "chart"
	KindList           Kind = "list"
	KindTextBox        Kind = "text_box"
	KindCallout        Kind = "callout"
	KindQRCode         Kind = "qr_code"
	KindSignatureBlock Kind = "signature_block"
	KindFormField      Kind = "form_field"
	KindFootnote       Kind = "footnote"
	KindAppendix       Kind = "appendix"
	KindPageBreak      Kind = "page_break"
	KindColumnBreak    Kind = "column_break"
)

// Element is a closed set of content variants. Each variant carries only
// the overrides meaningful for it; there is no generic attribute bag, so
// an unknown override cannot be expressed.
type Element interface {
	ElementKind() Kind
}

// Paragraph is flowing text. Level 0 is body text; 1..6 render as
// headings on the size ladder and register in the outline and TOC.
// When Markdown is set the text is parsed as inline markdown and styled
// spans (bold, italic, code, links) are produced. HTML does the same for
// a small inline HTML subset; the two modes are mutually exclusive.
type Paragraph struct {
	Text     string
	Level    int
	Markdown bool
	HTML     bool
	Style    *style.Attributes
}

func (Paragraph) ElementKind() Kind { return KindParagraph }

// Table renders a grid with an optional repeated header row. A table
// that continues on a following page repeats its header and marks the
// continuation title with "(continued)".
type Table struct {
	Title string
	// Headers is the header row; empty means no header.
	Headers []string
	Rows    [][]string
	// ColumnWidths are relative weights; empty means equal columns.
	ColumnWidths []float64
	// ColumnAlign sets per-column cell alignment; empty means left.
	ColumnAlign []style.Alignment
	// ZebraStripe shades every other body row with the scheme's muted color.
	ZebraStripe bool
	// NoRepeatHeader suppresses header repetition on continuation pages.
	NoRepeatHeader bool
	HeaderStyle    *style.Attributes
	Style          *style.Attributes
}

func (Table) ElementKind() Kind { return KindTable }

// Image places a raster image. Exactly one of Path or Data must be set.
// A zero Width or Height is derived from the other side preserving the
// aspect ratio; both zero fits the image to the column width.
type Image struct {
	Path    string
	Data    []byte
	Caption string
	Width   float64
	Height  float64
	Align   style.Alignment
	Style   *style.Attributes
}

func (Image) ElementKind() Kind { return KindImage }

// ChartType selects the chart drawing.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
	ChartLine ChartType = "line"
)

// ChartSeries is one named value series.
type ChartSeries struct {
	Name   string
	Values []float64
}

// Chart draws a vector chart from inline data. Pie charts use the first
// series only. Series colors come from the document's color scheme.
type Chart struct {
	Type   ChartType
	Title  string
	Labels []string
	Series []ChartSeries
	Width  float64 // default: column width
	Height float64 // default 220
	Style  *style.Attributes
}

func (Chart) ElementKind() Kind { return KindChart }

// ListKind selects the marker style.
type ListKind string

const (
	ListBullet ListKind = "bullet"
	ListNumber ListKind = "number"
)

// ListItem is one entry, optionally nested one level.
type ListItem struct {
	Text     string
	Children []ListItem
}

// List renders bulleted or numbered items with single-level nesting.
type List struct {
	Kind  ListKind
	Items []ListItem
	Style *style.Attributes
}

func (List) ElementKind() Kind { return KindList }

// TextBox frames text in a bordered, optionally filled box.
type TextBox struct {
	Text        string
	Width       float64 // default: column width
	Padding     float64 // default 8
	BorderColor style.Color
	FillColor   style.Color
	Style       *style.Attributes
}

func (TextBox) ElementKind() Kind { return KindTextBox }

// CalloutKind selects the callout accent.
type CalloutKind string

const (
	CalloutInfo    CalloutKind = "info"
	CalloutWarning CalloutKind = "warning"
	CalloutSuccess CalloutKind = "success"
	CalloutError   CalloutKind = "error"
)

// Callout is an accented box with a side bar and a glyph prefix.
type Callout struct {
	Kind  CalloutKind
	Title string
	Text  string
	Style *style.Attributes
}

func (Callout) ElementKind() Kind { return KindCallout }

// QRLevel is the error correction level of a QR code.
type QRLevel string

const (
	QRLow     QRLevel = "low"
	QRMedium  QRLevel = "medium"
	QRHigh    QRLevel = "high"
	QRHighest QRLevel = "highest"
)

// QRCode encodes Content as a QR symbol placed at Size points square.
type QRCode struct {
	Content string
	Size    float64 // default 96
	Level   QRLevel // default medium
	Caption string
	Align   style.Alignment
}

func (QRCode) ElementKind() Kind { return KindQRCode }

// SignatureBlock renders a signature rule with name and title lines.
type SignatureBlock struct {
	Name     string
	Title    string
	ShowDate bool
}

func (SignatureBlock) ElementKind() Kind { return KindSignatureBlock }

// FormFieldKind selects the printed placeholder treatment.
type FormFieldKind string

const (
	FieldText      FormFieldKind = "text"
	FieldDate      FormFieldKind = "date"
	FieldCheckbox  FormFieldKind = "checkbox"
	FieldSignature FormFieldKind = "signature"
)

// FormField prints a labeled fill-in placeholder. These are visual
// placeholders, not interactive AcroForm widgets.
type FormField struct {
	Label string
	Kind  FormFieldKind
	Width float64 // rule width, default 180
}

func (FormField) ElementKind() Kind { return KindFormField }

// Footnote anchors a superscript marker at the current position and
// queues Text for the bottom of the page. Endnote defers it to a
// synthesized trailing section instead.
type Footnote struct {
	Text    string
	Endnote bool
}

func (Footnote) ElementKind() Kind { return KindFootnote }

// Appendix queues a titled block for the appendix section synthesized
// after the last authored section. Entries are lettered "A.1", "A.2", ...
// in encounter order.
type Appendix struct {
	Title    string
	Elements []Element
}

func (Appendix) ElementKind() Kind { return KindAppendix }

// PageBreak forces the next element onto a fresh page.
type PageBreak struct{}

func (PageBreak) ElementKind() Kind { return KindPageBreak }

// ColumnBreak advances to the next column, or the next page from the
// last column. In single-column flow it behaves as a page break.
type ColumnBreak struct{}

func (ColumnBreak) ElementKind() Kind { return KindColumnBreak }
