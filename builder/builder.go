// Package builder assembles semantic pages from drawing calls. It owns
// resource naming (fonts, XObjects, graphics states) and content stream
// operator emission; callers work in page coordinates and styled text.
package builder

import (
	"fmt"
	"math"
	"sort"

	"github.com/quillpdf/quill/ir/raw"
	"github.com/quillpdf/quill/ir/semantic"
	"github.com/quillpdf/quill/style"
)

// Doc accumulates pages and document-level state, then Build produces
// the semantic document handed to the writer.
type Doc struct {
	pages     []*semantic.Page
	fonts     map[string]*semantic.Font
	fontNames map[string]string // font name -> resource name
	fontSeq   int

	imageSeq int
	gsNames  map[float64]string
	gsSeq    int

	info *semantic.DocumentInfo

	encrypted     bool
	ownerPassword string
	userPassword  string
	permissions   raw.Permissions
}

func NewDoc() *Doc {
	return &Doc{
		fonts:     make(map[string]*semantic.Font),
		fontNames: make(map[string]string),
		gsNames:   make(map[float64]string),
	}
}

// RegisterFont binds a font under its user-facing name and assigns its
// resource name. Registration order fixes resource naming, so register
// fonts in sorted order for deterministic output.
func (d *Doc) RegisterFont(name string, font *semantic.Font) {
	if font == nil {
		return
	}
	if _, ok := d.fonts[name]; ok {
		return
	}
	d.fontSeq++
	d.fonts[name] = font
	d.fontNames[name] = fmt.Sprintf("F%d", d.fontSeq)
}

// RegisterFonts registers a name-keyed font map in sorted name order.
func (d *Doc) RegisterFonts(fonts map[string]*semantic.Font) {
	names := make([]string, 0, len(fonts))
	for n := range fonts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		d.RegisterFont(n, fonts[n])
	}
}

func (d *Doc) SetInfo(info *semantic.DocumentInfo) { d.info = info }

func (d *Doc) SetEncryption(owner, user string, perms raw.Permissions) {
	d.encrypted = true
	d.ownerPassword = owner
	d.userPassword = user
	d.permissions = perms
}

func (d *Doc) NewPage(w, h float64) *Page {
	p := &semantic.Page{
		Index:    len(d.pages),
		MediaBox: semantic.Rectangle{URX: w, URY: h},
	}
	d.pages = append(d.pages, p)
	return &Page{doc: d, page: p}
}

func (d *Doc) Build() *semantic.Document {
	doc := &semantic.Document{Pages: d.pages, Info: d.info}
	if d.encrypted {
		doc.Encrypted = true
		doc.OwnerPassword = d.ownerPassword
		doc.UserPassword = d.userPassword
		doc.Permissions = d.permissions
	}
	return doc
}

// alphaGS returns the ExtGState resource name for a fill alpha,
// creating it on first use.
func (d *Doc) alphaGS(alpha float64) (string, semantic.ExtGState) {
	if name, ok := d.gsNames[alpha]; ok {
		a := alpha
		return name, semantic.ExtGState{FillAlpha: &a, StrokeAlpha: &a}
	}
	d.gsSeq++
	name := fmt.Sprintf("GS%d", d.gsSeq)
	d.gsNames[alpha] = name
	a := alpha
	return name, semantic.ExtGState{FillAlpha: &a, StrokeAlpha: &a}
}

// Page emits operators into one page's content stream.
type Page struct {
	doc  *Doc
	page *semantic.Page
}

// TextOptions configures one DrawText call.
type TextOptions struct {
	Font    string
	Size    float64
	Color   style.Color
	Rise    float64
	Rotate  float64 // degrees counterclockwise about the text origin
	Opacity float64 // 0 or 1 means opaque
}

// PathOptions configures path and rectangle painting.
type PathOptions struct {
	Fill        bool
	Stroke      bool
	FillColor   style.Color
	StrokeColor style.Color
	LineWidth   float64
	DashPattern []float64
}

func num(v float64) semantic.Operand  { return semantic.NumberOperand{Value: v} }
func name(v string) semantic.Operand  { return semantic.NameOperand{Value: v} }
func str(v []byte) semantic.Operand   { return semantic.StringOperand{Value: v} }

func (p *Page) ops() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}

func (p *Page) op(operator string, operands ...semantic.Operand) {
	ops := p.ops()
	*ops = append(*ops, semantic.Operation{Operator: operator, Operands: operands})
}

func (p *Page) resources() *semantic.Resources {
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	return p.page.Resources
}

func (p *Page) fontResource(fontName string) (string, *semantic.Font) {
	font, ok := p.doc.fonts[fontName]
	if !ok {
		// Unregistered names fall back to the first registered font so
		// a stray name cannot corrupt the stream. Layout validates
		// fonts before this point.
		for _, rn := range sortedKeys(p.doc.fontNames) {
			return p.doc.fontNames[rn], p.doc.fonts[rn]
		}
		return "F1", nil
	}
	res := p.doc.fontNames[fontName]
	r := p.resources()
	if r.Fonts == nil {
		r.Fonts = make(map[string]*semantic.Font)
	}
	r.Fonts[res] = font
	return res, font
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encodeText maps text to string bytes for the font: two-byte glyph
// ids for Identity-H fonts, raw bytes otherwise.
func encodeText(text string, font *semantic.Font) []byte {
	if font != nil && font.Subtype == "Type0" && font.Encoding == "Identity-H" {
		buf := make([]byte, 0, len(text)*2)
		for _, r := range text {
			gid := font.RuneToGID[r]
			buf = append(buf, byte(gid>>8), byte(gid))
		}
		return buf
	}
	return []byte(text)
}

// DrawText places a single text run with its baseline origin at (x, y).
func (p *Page) DrawText(text string, x, y float64, opts TextOptions) {
	res, font := p.fontResource(opts.Font)
	size := opts.Size
	if size <= 0 {
		size = 12
	}

	transformed := opts.Rotate != 0 || (opts.Opacity > 0 && opts.Opacity < 1)
	if transformed {
		p.op("q")
		if opts.Opacity > 0 && opts.Opacity < 1 {
			gsName, gs := p.doc.alphaGS(opts.Opacity)
			r := p.resources()
			if r.ExtGStates == nil {
				r.ExtGStates = make(map[string]semantic.ExtGState)
			}
			r.ExtGStates[gsName] = gs
			p.op("gs", name(gsName))
		}
		if opts.Rotate != 0 {
			rad := opts.Rotate * math.Pi / 180
			c, s := math.Cos(rad), math.Sin(rad)
			p.op("cm", num(c), num(s), num(-s), num(c), num(x), num(y))
			x, y = 0, 0
		}
	}

	p.op("BT")
	p.op("Tf", name(res), num(size))
	if opts.Rise != 0 {
		p.op("Ts", num(opts.Rise))
	}
	p.op("Tm", num(1), num(0), num(0), num(1), num(x), num(y))
	p.op("rg", num(opts.Color.R), num(opts.Color.G), num(opts.Color.B))
	p.op("Tj", str(encodeText(text, font)))
	p.op("ET")

	if transformed {
		p.op("Q")
	}
}

// DrawRect paints an axis-aligned rectangle.
func (p *Page) DrawRect(x, y, w, h float64, opts PathOptions) {
	p.op("q")
	p.applyPaintState(opts)
	p.op("re", num(x), num(y), num(w), num(h))
	p.op(paintOperator(opts))
	p.op("Q")
}

// DrawLine strokes a segment.
func (p *Page) DrawLine(x1, y1, x2, y2 float64, opts PathOptions) {
	opts.Stroke = true
	opts.Fill = false
	p.op("q")
	p.applyPaintState(opts)
	p.op("m", num(x1), num(y1))
	p.op("l", num(x2), num(y2))
	p.op("S")
	p.op("Q")
}

// DrawImage registers the image XObject and paints it into the given
// box. Opacity below 1 routes through an alpha graphics state.
func (p *Page) DrawImage(img *semantic.Image, x, y, w, h, opacity float64) {
	r := p.resources()
	if r.XObjects == nil {
		r.XObjects = make(map[string]*semantic.Image)
	}
	p.doc.imageSeq++
	imgName := fmt.Sprintf("Im%d", p.doc.imageSeq)
	r.XObjects[imgName] = img

	p.op("q")
	if opacity > 0 && opacity < 1 {
		gsName, gs := p.doc.alphaGS(opacity)
		if r.ExtGStates == nil {
			r.ExtGStates = make(map[string]semantic.ExtGState)
		}
		r.ExtGStates[gsName] = gs
		p.op("gs", name(gsName))
	}
	p.op("cm", num(w), num(0), num(0), num(h), num(x), num(y))
	p.op("Do", name(imgName))
	p.op("Q")
}

// Path collects path construction operators for DrawPath.
type Path struct {
	ops []semantic.Operation
}

func (pa *Path) MoveTo(x, y float64) {
	pa.ops = append(pa.ops, semantic.Operation{Operator: "m", Operands: []semantic.Operand{num(x), num(y)}})
}

func (pa *Path) LineTo(x, y float64) {
	pa.ops = append(pa.ops, semantic.Operation{Operator: "l", Operands: []semantic.Operand{num(x), num(y)}})
}

func (pa *Path) CurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	pa.ops = append(pa.ops, semantic.Operation{
		Operator: "c",
		Operands: []semantic.Operand{num(c1x), num(c1y), num(c2x), num(c2y), num(x), num(y)},
	})
}

func (pa *Path) Close() {
	pa.ops = append(pa.ops, semantic.Operation{Operator: "h"})
}

// DrawPath paints a constructed path.
func (p *Page) DrawPath(path *Path, opts PathOptions) {
	if path == nil || len(path.ops) == 0 {
		return
	}
	p.op("q")
	p.applyPaintState(opts)
	ops := p.ops()
	*ops = append(*ops, path.ops...)
	p.op(paintOperator(opts))
	p.op("Q")
}

func (p *Page) applyPaintState(opts PathOptions) {
	if opts.Fill {
		p.op("rg", num(opts.FillColor.R), num(opts.FillColor.G), num(opts.FillColor.B))
	}
	if opts.Stroke {
		p.op("RG", num(opts.StrokeColor.R), num(opts.StrokeColor.G), num(opts.StrokeColor.B))
		if opts.LineWidth > 0 {
			p.op("w", num(opts.LineWidth))
		}
		if len(opts.DashPattern) > 0 {
			vals := make([]semantic.Operand, 0, len(opts.DashPattern))
			for _, v := range opts.DashPattern {
				vals = append(vals, num(v))
			}
			p.op("d", semantic.ArrayOperand{Values: vals}, num(0))
		}
	}
}

func paintOperator(opts PathOptions) string {
	switch {
	case opts.Fill && opts.Stroke:
		return "B"
	case opts.Fill:
		return "f"
	default:
		return "S"
	}
}
