// Package writer serializes documents to PDF bytes. The semantic model
// is lowered to raw objects with fixed, reproducible numbering, then
// written with a classic cross-reference table. Identical inputs
// produce identical bytes.
package writer

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/quillpdf/quill/ir/raw"
	"github.com/quillpdf/quill/security"
)

// WriteRaw serializes a raw document: header, body objects in numeric
// order, cross-reference table, and trailer. When sec is non-nil,
// strings and stream payloads are encrypted per object; the Encrypt
// dictionary and the trailer itself stay in the clear.
func WriteRaw(w io.Writer, doc *raw.Document, sec *security.Handler) error {
	version := doc.Version
	if version == "" {
		version = "1.7"
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-" + version + "\n%\xE2\xE3\xCF\xD3\n")

	encryptNum := -1
	if doc.Trailer != nil {
		if o, ok := doc.Trailer.Get("Encrypt"); ok {
			if ref, ok := o.(raw.Ref); ok {
				encryptNum = ref.R.Num
			}
		}
	}

	refs := make([]raw.ObjectRef, 0, len(doc.Objects))
	for ref := range doc.Objects {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })

	offsets := make(map[int]int64, len(refs))
	for _, ref := range refs {
		offsets[ref.Num] = int64(buf.Len())
		s := serializer{sec: sec, num: ref.Num, gen: ref.Gen}
		if ref.Num == encryptNum {
			s.sec = nil
		}
		fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
		s.object(&buf, doc.Objects[ref])
		buf.WriteString("\nendobj\n")
	}

	maxNum := 0
	if len(refs) > 0 {
		maxNum = refs[len(refs)-1].Num
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxNum; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := raw.NewDict()
	if doc.Trailer != nil {
		for k, v := range doc.Trailer.KV {
			trailer.Set(k, v)
		}
	}
	trailer.Set("Size", raw.NewInt(int64(maxNum+1)))
	buf.WriteString("trailer\n")
	(serializer{}).object(&buf, trailer)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := w.Write(buf.Bytes())
	return err
}

// serializer writes one object's value. It carries the encryption
// context so nested strings and stream payloads can be transformed.
type serializer struct {
	sec *security.Handler
	num int
	gen int
}

func (s serializer) object(b *bytes.Buffer, o raw.Object) {
	switch v := o.(type) {
	case raw.Name:
		writeName(b, v.Val)
	case raw.Number:
		b.WriteString(formatNumber(v))
	case raw.Bool:
		if v.V {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case raw.Null:
		b.WriteString("null")
	case raw.String:
		s.str(b, v)
	case *raw.Array:
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			s.object(b, it)
		}
		b.WriteByte(']')
	case *raw.Dict:
		s.dict(b, v)
	case *raw.Stream:
		s.stream(b, v)
	case raw.Ref:
		fmt.Fprintf(b, "%d %d R", v.R.Num, v.R.Gen)
	default:
		b.WriteString("null")
	}
}

func (s serializer) dict(b *bytes.Buffer, d *raw.Dict) {
	b.WriteString("<<")
	keys := make([]string, 0, len(d.KV))
	for k := range d.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		writeName(b, k)
		b.WriteByte(' ')
		s.object(b, d.KV[k])
	}
	b.WriteString(" >>")
}

func (s serializer) stream(b *bytes.Buffer, st *raw.Stream) {
	data := st.Data
	if s.sec != nil {
		data = s.sec.Crypt(s.num, s.gen, data)
	}
	dict := raw.NewDict()
	if st.Dict != nil {
		for k, v := range st.Dict.KV {
			dict.Set(k, v)
		}
	}
	dict.Set("Length", raw.NewInt(int64(len(data))))
	// Length is the only computed entry; no nested strings expected, so
	// the dictionary serializes without the crypt context.
	(serializer{}).dict(b, dict)
	b.WriteString("\nstream\n")
	b.Write(data)
	b.WriteString("\nendstream")
}

// str writes a string object, encrypted when a handler is present.
// Encrypted and binary strings use hexadecimal form.
func (s serializer) str(b *bytes.Buffer, v raw.String) {
	data := v.Bytes
	if s.sec != nil {
		data = s.sec.Crypt(s.num, s.gen, data)
		writeHexString(b, data)
		return
	}
	if v.Hex || !printable(data) {
		writeHexString(b, data)
		return
	}
	b.WriteByte('(')
	for _, c := range data {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
}

func printable(data []byte) bool {
	for _, c := range data {
		if (c < 0x20 && c != '\n' && c != '\r' && c != '\t') || c >= 0x7F {
			return false
		}
	}
	return true
}

func writeHexString(b *bytes.Buffer, data []byte) {
	const hexDigits = "0123456789ABCDEF"
	b.WriteByte('<')
	for _, c := range data {
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}
	b.WriteByte('>')
}

// writeName escapes delimiter and whitespace bytes with #xx notation.
func writeName(b *bytes.Buffer, v string) {
	const hexDigits = "0123456789ABCDEF"
	b.WriteByte('/')
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c <= 0x20 || c >= 0x7F || bytes.IndexByte([]byte("()<>[]{}/%#"), c) >= 0 {
			b.WriteByte('#')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
}

// formatNumber rounds reals to four decimals and trims trailing zeros
// so coordinate arithmetic noise cannot leak into the output.
func formatNumber(n raw.Number) string {
	if n.IsInt {
		return strconv.FormatInt(n.I, 10)
	}
	v := math.Round(n.F*10000) / 10000
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
