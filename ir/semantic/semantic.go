// Package semantic models a finished, paginated PDF at the level the
// renderer produces and the writer consumes: pages, content-stream
// operations, and the resources those operations reference.
package semantic

import (
	"time"

	"github.com/quillpdf/quill/ir/raw"
)

// Document is the semantic representation of a PDF ready for serialization.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo

	// Encryption, when requested.
	Encrypted     bool
	OwnerPassword string
	UserPassword  string
	Permissions   raw.Permissions
}

// DocumentInfo carries the /Info dictionary fields. CreationDate is part of
// the input so identical specifications serialize to identical bytes.
type DocumentInfo struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate time.Time
}

// Page models a single page.
type Page struct {
	Index     int // zero-based position in the page tree
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// Rectangle is a PDF rectangle in default user space units.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// ContentStream is an ordered sequence of operations on a page.
type ContentStream struct {
	Operations []Operation
}

// Operation is one PDF operator with its operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is a type-safe operand value.
type Operand interface {
	operand()
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand() {}

type NameOperand struct{ Value string }

func (NameOperand) operand() {}

type StringOperand struct{ Value []byte }

func (StringOperand) operand() {}

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand() {}

// Resources holds the per-page resource dictionaries.
type Resources struct {
	Fonts      map[string]*Font
	XObjects   map[string]*Image
	ExtGStates map[string]ExtGState
}

// Font represents a font resource: either one of the built-in core fonts
// (Subtype "Type1", no descriptor) or an embedded TrueType program exposed
// as a Type0/Identity-H composite font.
type Font struct {
	Subtype    string // Type1 or Type0
	BaseFont   string
	Encoding   string      // WinAnsiEncoding or Identity-H
	Widths     map[int]int // char code (Type1) or glyph id (Type0) -> width, 1/1000 em
	RuneToGID  map[rune]int
	Descriptor *FontDescriptor
}

// FontDescriptor carries metrics and the embedded font program.
type FontDescriptor struct {
	FontName    string
	Flags       int
	ItalicAngle float64
	Ascent      float64
	Descent     float64
	CapHeight   float64
	StemV       float64
	FontBBox    [4]float64
	FontFile    []byte // TrueType program, serialized as FontFile2
}

// Image is an image XObject. Data holds the samples in the stated filter's
// encoded form (DCTDecode: the JPEG file bytes; FlateDecode: the
// zlib-compressed samples).
type Image struct {
	Width            int
	Height           int
	ColorSpace       string // DeviceRGB or DeviceGray
	BitsPerComponent int
	Filter           string // DCTDecode or FlateDecode
	Data             []byte
	SMask            *Image // optional alpha channel, DeviceGray
}

// ExtGState captures the graphics-state parameters decorations need;
// watermark opacity is the only consumer today.
type ExtGState struct {
	FillAlpha   *float64
	StrokeAlpha *float64
}
