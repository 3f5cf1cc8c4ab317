package writer

import (
	"bytes"
	"compress/zlib"
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"time"
	"unicode/utf16"

	"github.com/quillpdf/quill/ir/raw"
	"github.com/quillpdf/quill/ir/semantic"
	"github.com/quillpdf/quill/security"
)

// Options configures serialization.
type Options struct {
	// Compress applies FlateDecode to content streams and embedded
	// font programs.
	Compress bool
}

// Write lowers a semantic document to raw objects and serializes it.
func Write(w io.Writer, doc *semantic.Document, opts Options) error {
	c := &converter{
		doc:       doc,
		compress:  opts.Compress,
		out:       &raw.Document{Version: "1.7", Objects: make(map[raw.ObjectRef]raw.Object)},
		fontRefs:  make(map[*semantic.Font]raw.Ref),
		imageRefs: make(map[*semantic.Image]raw.Ref),
	}
	sec, err := c.lower()
	if err != nil {
		return err
	}
	return WriteRaw(w, c.out, sec)
}

// converter lowers the semantic model into the raw object table.
// Object numbers are handed out in a fixed walk order so identical
// documents number identically.
type converter struct {
	doc      *semantic.Document
	compress bool

	out  *raw.Document
	next int

	fontRefs  map[*semantic.Font]raw.Ref
	imageRefs map[*semantic.Image]raw.Ref
}

func (c *converter) alloc() raw.Ref {
	c.next++
	return raw.NewRef(c.next, 0)
}

func (c *converter) add(ref raw.Ref, obj raw.Object) {
	c.out.Objects[ref.R] = obj
}

func (c *converter) lower() (*security.Handler, error) {
	catalogRef := c.alloc()
	pagesRef := c.alloc()

	pageRefs := make([]raw.Ref, 0, len(c.doc.Pages))
	for _, page := range c.doc.Pages {
		ref, err := c.lowerPage(page, pagesRef)
		if err != nil {
			return nil, err
		}
		pageRefs = append(pageRefs, ref)
	}

	kids := raw.NewArray()
	for _, ref := range pageRefs {
		kids.Append(ref)
	}
	pages := raw.NewDict()
	pages.Set("Type", raw.NewName("Pages"))
	pages.Set("Count", raw.NewInt(int64(len(pageRefs))))
	pages.Set("Kids", kids)
	c.add(pagesRef, pages)

	catalog := raw.NewDict()
	catalog.Set("Type", raw.NewName("Catalog"))
	catalog.Set("Pages", pagesRef)
	c.add(catalogRef, catalog)

	trailer := raw.NewDict()
	trailer.Set("Root", catalogRef)

	if c.doc.Info != nil {
		infoRef := c.alloc()
		c.add(infoRef, infoDict(c.doc.Info))
		trailer.Set("Info", infoRef)
	}

	id := fileID(c.doc)
	trailer.Set("ID", raw.NewArray(raw.NewHexString(id), raw.NewHexString(id)))

	var sec *security.Handler
	if c.doc.Encrypted {
		handler, encDict := security.NewWriterHandler(
			c.doc.OwnerPassword, c.doc.UserPassword, c.doc.Permissions, id)
		encRef := c.alloc()
		c.add(encRef, encDict)
		trailer.Set("Encrypt", encRef)
		sec = handler
	}

	c.out.Trailer = trailer
	return sec, nil
}

func (c *converter) lowerPage(page *semantic.Page, parent raw.Ref) (raw.Ref, error) {
	contentRef := c.alloc()
	content := c.contentBytes(page)
	c.add(contentRef, c.streamObject(content, nil))

	resources := c.lowerResources(page.Resources)

	dict := raw.NewDict()
	dict.Set("Type", raw.NewName("Page"))
	dict.Set("Parent", parent)
	dict.Set("MediaBox", rectArray(page.MediaBox))
	dict.Set("Resources", resources)
	dict.Set("Contents", contentRef)

	pageRef := c.alloc()
	c.add(pageRef, dict)
	return pageRef, nil
}

// streamObject wraps data in a stream, compressing when enabled. extra
// entries are copied into the stream dictionary.
func (c *converter) streamObject(data []byte, extra *raw.Dict) *raw.Stream {
	dict := raw.NewDict()
	if extra != nil {
		for k, v := range extra.KV {
			dict.Set(k, v)
		}
	}
	if c.compress {
		dict.Set("Filter", raw.NewName("FlateDecode"))
		data = deflate(data)
	}
	return raw.NewStream(dict, data)
}

func (c *converter) lowerResources(res *semantic.Resources) *raw.Dict {
	dict := raw.NewDict()
	dict.Set("ProcSet", raw.NewArray(
		raw.NewName("PDF"), raw.NewName("Text"), raw.NewName("ImageB"), raw.NewName("ImageC")))
	if res == nil {
		return dict
	}

	if len(res.Fonts) > 0 {
		fonts := raw.NewDict()
		for _, name := range sortedFontNames(res.Fonts) {
			fonts.Set(name, c.fontRef(res.Fonts[name]))
		}
		dict.Set("Font", fonts)
	}
	if len(res.XObjects) > 0 {
		xobjects := raw.NewDict()
		for _, name := range sortedImageNames(res.XObjects) {
			xobjects.Set(name, c.imageRef(res.XObjects[name]))
		}
		dict.Set("XObject", xobjects)
	}
	if len(res.ExtGStates) > 0 {
		states := raw.NewDict()
		names := make([]string, 0, len(res.ExtGStates))
		for name := range res.ExtGStates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			gs := res.ExtGStates[name]
			gsDict := raw.NewDict()
			gsDict.Set("Type", raw.NewName("ExtGState"))
			if gs.FillAlpha != nil {
				gsDict.Set("ca", raw.NewReal(*gs.FillAlpha))
			}
			if gs.StrokeAlpha != nil {
				gsDict.Set("CA", raw.NewReal(*gs.StrokeAlpha))
			}
			states.Set(name, gsDict)
		}
		dict.Set("ExtGState", states)
	}
	return dict
}

func sortedFontNames(m map[string]*semantic.Font) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedImageNames(m map[string]*semantic.Image) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// fontRef returns the indirect reference for a font, lowering its
// object graph on first use.
func (c *converter) fontRef(font *semantic.Font) raw.Ref {
	if ref, ok := c.fontRefs[font]; ok {
		return ref
	}
	ref := c.alloc()
	c.fontRefs[font] = ref

	dict := raw.NewDict()
	dict.Set("Type", raw.NewName("Font"))
	dict.Set("BaseFont", raw.NewName(font.BaseFont))
	if font.Subtype != "Type0" {
		dict.Set("Subtype", raw.NewName("Type1"))
		dict.Set("Encoding", raw.NewName(font.Encoding))
		c.add(ref, dict)
		return ref
	}

	cidRef := c.alloc()
	descRef := c.alloc()
	fileRef := c.alloc()

	dict.Set("Subtype", raw.NewName("Type0"))
	dict.Set("Encoding", raw.NewName("Identity-H"))
	dict.Set("DescendantFonts", raw.NewArray(cidRef))
	c.add(ref, dict)

	cidInfo := raw.NewDict()
	cidInfo.Set("Registry", raw.NewString([]byte("Adobe")))
	cidInfo.Set("Ordering", raw.NewString([]byte("Identity")))
	cidInfo.Set("Supplement", raw.NewInt(0))

	cid := raw.NewDict()
	cid.Set("Type", raw.NewName("Font"))
	cid.Set("Subtype", raw.NewName("CIDFontType2"))
	cid.Set("BaseFont", raw.NewName(font.BaseFont))
	cid.Set("CIDSystemInfo", cidInfo)
	cid.Set("FontDescriptor", descRef)
	cid.Set("DW", raw.NewInt(1000))
	if w := widthsArray(font.Widths); w.Len() > 0 {
		cid.Set("W", w)
	}
	cid.Set("CIDToGIDMap", raw.NewName("Identity"))
	c.add(cidRef, cid)

	fd := font.Descriptor
	desc := raw.NewDict()
	desc.Set("Type", raw.NewName("FontDescriptor"))
	desc.Set("FontName", raw.NewName(fd.FontName))
	desc.Set("Flags", raw.NewInt(int64(fd.Flags)))
	desc.Set("FontBBox", raw.NewArray(
		raw.NewReal(fd.FontBBox[0]), raw.NewReal(fd.FontBBox[1]),
		raw.NewReal(fd.FontBBox[2]), raw.NewReal(fd.FontBBox[3])))
	desc.Set("ItalicAngle", raw.NewReal(fd.ItalicAngle))
	desc.Set("Ascent", raw.NewReal(fd.Ascent))
	desc.Set("Descent", raw.NewReal(fd.Descent))
	desc.Set("CapHeight", raw.NewReal(fd.CapHeight))
	desc.Set("StemV", raw.NewReal(fd.StemV))
	desc.Set("FontFile2", fileRef)
	c.add(descRef, desc)

	extra := raw.NewDict()
	extra.Set("Length1", raw.NewInt(int64(len(fd.FontFile))))
	c.add(fileRef, c.streamObject(fd.FontFile, extra))
	return ref
}

// widthsArray packs glyph widths into the compact run form:
// first [w1 w2 ...] for each run of consecutive ids.
func widthsArray(widths map[int]int) *raw.Array {
	gids := make([]int, 0, len(widths))
	for gid := range widths {
		gids = append(gids, gid)
	}
	sort.Ints(gids)

	arr := raw.NewArray()
	for i := 0; i < len(gids); {
		j := i
		for j+1 < len(gids) && gids[j+1] == gids[j]+1 {
			j++
		}
		run := raw.NewArray()
		for k := i; k <= j; k++ {
			run.Append(raw.NewInt(int64(widths[gids[k]])))
		}
		arr.Append(raw.NewInt(int64(gids[i])), run)
		i = j + 1
	}
	return arr
}

func (c *converter) imageRef(img *semantic.Image) raw.Ref {
	if ref, ok := c.imageRefs[img]; ok {
		return ref
	}
	ref := c.alloc()
	c.imageRefs[img] = ref

	dict := raw.NewDict()
	dict.Set("Type", raw.NewName("XObject"))
	dict.Set("Subtype", raw.NewName("Image"))
	dict.Set("Width", raw.NewInt(int64(img.Width)))
	dict.Set("Height", raw.NewInt(int64(img.Height)))
	dict.Set("ColorSpace", raw.NewName(img.ColorSpace))
	dict.Set("BitsPerComponent", raw.NewInt(int64(img.BitsPerComponent)))
	dict.Set("Filter", raw.NewName(img.Filter))
	if img.SMask != nil {
		dict.Set("SMask", c.imageRef(img.SMask))
	}
	// Image data is already in the filter's encoded form.
	c.add(ref, raw.NewStream(dict, img.Data))
	return ref
}

// contentBytes serializes a page's operations into one stream.
func (c *converter) contentBytes(page *semantic.Page) []byte {
	var buf bytes.Buffer
	for _, cs := range page.Contents {
		for _, op := range cs.Operations {
			for _, operand := range op.Operands {
				writeOperand(&buf, operand)
				buf.WriteByte(' ')
			}
			buf.WriteString(op.Operator)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func writeOperand(b *bytes.Buffer, operand semantic.Operand) {
	switch v := operand.(type) {
	case semantic.NumberOperand:
		b.WriteString(formatNumber(raw.NewReal(v.Value)))
	case semantic.NameOperand:
		writeName(b, v.Value)
	case semantic.StringOperand:
		(serializer{}).str(b, raw.NewString(v.Value))
	case semantic.ArrayOperand:
		b.WriteByte('[')
		for i, item := range v.Values {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeOperand(b, item)
		}
		b.WriteByte(']')
	}
}

func rectArray(r semantic.Rectangle) *raw.Array {
	return raw.NewArray(
		raw.NewReal(r.LLX), raw.NewReal(r.LLY),
		raw.NewReal(r.URX), raw.NewReal(r.URY))
}

func infoDict(info *semantic.DocumentInfo) *raw.Dict {
	dict := raw.NewDict()
	set := func(key, value string) {
		if value != "" {
			dict.Set(key, textString(value))
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Keywords", info.Keywords)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	if !info.CreationDate.IsZero() {
		dict.Set("CreationDate", raw.NewString([]byte(pdfDate(info.CreationDate))))
	}
	return dict
}

func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}

// textString encodes a text string: raw bytes when pure ASCII,
// UTF-16BE with a byte order mark otherwise.
func textString(s string) raw.String {
	ascii := true
	for _, r := range s {
		if r >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return raw.NewString([]byte(s))
	}
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2, 2+len(units)*2)
	buf[0], buf[1] = 0xFE, 0xFF
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return raw.NewHexString(buf)
}

// fileID derives the document identifier from the info entries and the
// page count, so identical documents share an identifier and distinct
// ones almost surely do not.
func fileID(doc *semantic.Document) []byte {
	h := md5.New()
	if info := doc.Info; info != nil {
		io.WriteString(h, info.Title)
		io.WriteString(h, "\x00")
		io.WriteString(h, info.Author)
		io.WriteString(h, "\x00")
		io.WriteString(h, info.Subject)
		io.WriteString(h, "\x00")
		io.WriteString(h, info.Producer)
		io.WriteString(h, "\x00")
		fmt.Fprintf(h, "%d", info.CreationDate.UTC().Unix())
	}
	fmt.Fprintf(h, "\x00%d", len(doc.Pages))
	return h.Sum(nil)
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}
