// Package model defines the typed content tree a caller hands to the
// engine: a Document of ordered Sections, each holding ordered Elements.
// The tree is immutable once constructed; Validate rejects malformed
// input before layout ever sees it.
package model

import (
	"time"

	"github.com/quillpdf/quill/style"
)

// PageSize names a page preset.
type PageSize string

const (
	PageA4     PageSize = "A4"
	PageLetter PageSize = "Letter"
	PageLegal  PageSize = "Legal"
	PageCustom PageSize = "Custom"
)

// Orientation of the page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

var presetDimensions = map[PageSize][2]float64{
	PageA4:     {595.28, 841.89},
	PageLetter: {612, 792},
	PageLegal:  {612, 1008},
}

// Margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// PageSetup fixes the page geometry for the whole document. Layout reads
// it once; it never changes mid-generation.
type PageSetup struct {
	Size        PageSize
	Orientation Orientation
	// Custom dimensions in points, used when Size == PageCustom.
	Width, Height float64
	Margins       Margins
}

// Dimensions returns the page width and height in points with the
// orientation applied.
func (p PageSetup) Dimensions() (w, h float64) {
	if p.Size == PageCustom {
		w, h = p.Width, p.Height
	} else {
		d, ok := presetDimensions[p.Size]
		if !ok {
			d = presetDimensions[PageA4]
		}
		w, h = d[0], d[1]
	}
	if p.Orientation == Landscape && h > w {
		w, h = h, w
	}
	return w, h
}

// Metadata fills the output document's info dictionary. Created is part of
// the specification so generation stays reproducible.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Created  time.Time
}

// StyleDefaults seeds the style resolver.
type StyleDefaults struct {
	Font       string
	Size       float64
	LineHeight float64
	Scheme     style.Scheme
}

// FontFile is a TrueType program to register for embedding.
type FontFile struct {
	Name string
	Data []byte
}

// Header decoration, anchored at the top margin of every page.
type Header struct {
	Text      string
	Alignment style.Alignment
}

// Footer decoration, anchored at the bottom margin of every page.
type Footer struct {
	Text           string
	Alignment      style.Alignment
	ShowPageNumber bool
}

// Watermark is painted centered and rotated below content. Exactly one of
// Text or image source must be set.
type Watermark struct {
	Text      string
	ImagePath string
	ImageData []byte
	FontSize  float64 // default 40
	Rotation  float64 // degrees, default 45
	Opacity   float64 // 0..1, default 0.2
	Color     style.Color
}

// Background is painted first on every page: a solid fill or a two-stop
// gradient approximated in bands.
type Background struct {
	Color    style.Color
	Gradient *Gradient
}

// Gradient is a linear two-color blend.
type Gradient struct {
	Start      style.Color
	End        style.Color
	Horizontal bool
}

// BorderStyle selects the page border treatment.
type BorderStyle string

const (
	BorderSingle     BorderStyle = "single"
	BorderDouble     BorderStyle = "double"
	BorderDecorative BorderStyle = "decorative"
)

// Border is drawn around the page margin box, above background and
// watermark but below content.
type Border struct {
	Style  BorderStyle
	Color  style.Color
	Width  float64 // stroke width, default 1.5
	Inset  float64 // distance from page edge, default 14.4 (0.2in)
}

// Cover describes an optional synthesized cover page.
type Cover struct {
	Title     string
	Subtitle  string
	Author    string
	Date      string
	LogoPath  string
	LogoData  []byte
}

// Permissions for encrypted output.
type Permissions struct {
	Print    bool
	Modify   bool
	Copy     bool
	Annotate bool
}

// Encryption requests standard-security encryption of the output.
type Encryption struct {
	OwnerPassword string
	UserPassword  string
	Permissions   Permissions
}

// Section groups ordered elements and may override page furniture and the
// column count. Column changes take effect only at section boundaries.
type Section struct {
	Title     string
	Level     int // heading level for the title, 1..6; 0 means untitled
	Columns   int // 0 or 1 = single column
	ColumnGap float64
	Header    *Header
	Footer    *Footer
	Style     *style.Attributes
	Elements  []Element
}

// Document is the root of the content tree.
type Document struct {
	Page     PageSetup
	Meta     Metadata
	Style    StyleDefaults
	Fonts    []FontFile
	Cover    *Cover
	TOC      bool
	// SectionNumbering prefixes section titles with "1. ", "2. ", ...
	SectionNumbering bool
	// BreakBeforeSections starts every section on a fresh page.
	BreakBeforeSections bool
	Header     *Header
	Footer     *Footer
	Watermark  *Watermark
	Background *Background
	Border     *Border
	Sections   []Section
	Encryption *Encryption
}
