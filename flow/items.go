package flow

import (
	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/style"
)

// Item is a placed drawing primitive. Coordinates are PDF user space,
// origin at the bottom-left of the page.
type Item interface {
	itemKind() string
}

// TextRun is a measured run sharing one font, size, and color.
type TextRun struct {
	Text  string
	Font  string
	Size  float64
	Color style.Color
	// Rise lifts the baseline, for superscript footnote markers.
	Rise float64
	Link string
	// Ref names a deferred reference. Text then holds a width
	// placeholder that the renderer replaces from the reference table.
	Ref string
}

// TextItem places runs on one baseline starting at X (or ending at X
// when AnchorRight is set, so patched page numbers stay right-aligned).
type TextItem struct {
	X, Y        float64
	Runs        []TextRun
	AnchorRight bool
	// Rotate is degrees counterclockwise about (X, Y); Opacity < 1
	// paints through an alpha graphics state. Watermarks use both.
	Rotate  float64
	Opacity float64
}

func (TextItem) itemKind() string { return "text" }

// RectItem is an axis-aligned rectangle, filled and/or stroked.
type RectItem struct {
	X, Y, W, H float64
	Fill       *style.Color
	Stroke     *style.Color
	LineWidth  float64
}

func (RectItem) itemKind() string { return "rect" }

// LineItem is a stroked segment.
type LineItem struct {
	X1, Y1, X2, Y2 float64
	Color          style.Color
	Width          float64
	Dashed         bool
}

func (LineItem) itemKind() string { return "line" }

// ImageItem places raster data; (X, Y) is the bottom-left corner.
type ImageItem struct {
	X, Y, W, H float64
	Data       []byte
	Format     string // "jpeg" or "png"
	Opacity    float64
}

func (ImageItem) itemKind() string { return "image" }

// ChartItem defers chart drawing to the renderer, which turns the data
// into vector primitives inside the given box.
type ChartItem struct {
	X, Y, W, H float64
	Chart      model.Chart
	Palette    style.Palette
	LabelFont  string
	LabelSize  float64
}

func (ChartItem) itemKind() string { return "chart" }

// QRItem defers QR module drawing to the renderer.
type QRItem struct {
	X, Y, Size float64
	Content    string
	Level      model.QRLevel
	Color      style.Color
}

func (QRItem) itemKind() string { return "qr" }

// Page is one laid-out page. The renderer paints the slices in fixed
// order: background, watermark, border, content, footnotes, furniture.
type Page struct {
	Index      int // zero-based
	Background []Item
	Watermark  []Item
	Border     []Item
	Content    []Item
	Footnotes  []Item
	Furniture  []Item

	header *model.Header
	footer *model.Footer
	// cover pages carry decorations but no header or footer.
	cover bool
	// noteBlocks queue footnote text until total height is known.
	noteBlocks []noteBlock
	noteH      float64
}

type noteBlock struct {
	number int
	lines  []Line
}

// OutlineEntry records where a section landed, for the TOC and the
// document outline.
type OutlineEntry struct {
	Title string
	Level int
	Page  int // one-based
}

// Result is the complete page sequence plus everything the renderer
// needs to serialize it.
type Result struct {
	Doc          *model.Document
	PageW, PageH float64
	Pages        []*Page
	Refs         *RefTable
	Outline      []OutlineEntry
}
