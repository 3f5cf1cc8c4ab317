// Package parser reads serialized PDF files back into the raw object
// model: header, cross-reference table, indirect objects, and trailer.
// It parses the classic table form and falls back to a full-file
// object scan when the table is missing or lies about offsets.
package parser

import (
	"bytes"

	"github.com/quillpdf/quill/ir/raw"
	"github.com/quillpdf/quill/security"
)

// maxTrailerScan bounds the tail search for the startxref keyword.
const maxTrailerScan = 2048

// Parse loads a complete file into the raw object model.
func Parse(data []byte) (*raw.Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, corrupt(0, "missing %%PDF header")
	}
	version := headerVersion(data)

	doc, err := parseViaXref(data)
	if err != nil {
		// Offsets that do not hold what the table promises are common
		// in files touched by sloppy editors; rebuild by scanning.
		doc, err = rebuild(data)
		if err != nil {
			return nil, err
		}
	}
	doc.Version = version
	if _, ok := doc.Trailer.Get("Encrypt"); ok {
		doc.Encrypted = true
	}
	return doc, nil
}

func headerVersion(data []byte) string {
	end := 5
	for end < len(data) && end < 16 && !isWhitespace(data[end]) {
		end++
	}
	return string(data[5:end])
}

func parseViaXref(data []byte) (*raw.Document, error) {
	offset, err := startXref(data)
	if err != nil {
		return nil, err
	}

	offsets := make(map[int]int64)
	trailer := raw.NewDict()
	seen := make(map[int64]bool)
	for offset >= 0 && !seen[offset] {
		seen[offset] = true
		prev, err := parseXrefSection(data, offset, offsets, trailer)
		if err != nil {
			return nil, err
		}
		offset = prev
	}

	doc := &raw.Document{Objects: make(map[raw.ObjectRef]raw.Object), Trailer: trailer}
	for num, off := range offsets {
		if off <= 0 {
			continue
		}
		ref, obj, err := parseIndirectAt(data, off)
		if err != nil {
			return nil, err
		}
		if ref.Num != num {
			return nil, corrupt(off, "object number mismatch: table says %d, file says %d", num, ref.Num)
		}
		doc.Objects[ref] = obj
	}
	if _, ok := trailer.Get("Root"); !ok {
		return nil, corrupt(0, "trailer has no Root")
	}
	return doc, nil
}

// startXref locates the final startxref keyword near the end of file.
func startXref(data []byte) (int64, error) {
	tail := data
	base := 0
	if len(data) > maxTrailerScan {
		base = len(data) - maxTrailerScan
		tail = data[base:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, corrupt(int64(len(data)), "startxref not found")
	}
	s := &scanner{data: data, pos: int64(base + idx + len("startxref"))}
	tok, err := s.next()
	if err != nil || tok.typ != tokInt {
		return 0, corrupt(s.pos, "malformed startxref offset")
	}
	if tok.i < 0 || tok.i >= int64(len(data)) {
		return 0, corrupt(tok.pos, "startxref offset %d out of bounds", tok.i)
	}
	return tok.i, nil
}

// parseXrefSection reads one classic table and its trailer, recording
// offsets not yet seen (newer sections win). Returns the Prev offset
// or -1.
func parseXrefSection(data []byte, offset int64, offsets map[int]int64, trailer *raw.Dict) (int64, error) {
	s := &scanner{data: data, pos: offset}
	tok, err := s.next()
	if err != nil {
		return 0, err
	}
	if tok.typ != tokKeyword || string(tok.bytes) != "xref" {
		// Cross-reference streams are not produced by this writer.
		return 0, corrupt(offset, "expected xref table")
	}

	for {
		tok, err = s.next()
		if err != nil {
			return 0, err
		}
		if tok.typ == tokKeyword && string(tok.bytes) == "trailer" {
			break
		}
		if tok.typ != tokInt {
			return 0, corrupt(tok.pos, "malformed xref subsection")
		}
		start := int(tok.i)
		tok, err = s.next()
		if err != nil || tok.typ != tokInt {
			return 0, corrupt(s.pos, "malformed xref subsection")
		}
		count := int(tok.i)
		for i := 0; i < count; i++ {
			offTok, err := s.next()
			if err != nil || offTok.typ != tokInt {
				return 0, corrupt(s.pos, "malformed xref entry")
			}
			genTok, err := s.next()
			if err != nil || genTok.typ != tokInt {
				return 0, corrupt(s.pos, "malformed xref entry")
			}
			kindTok, err := s.next()
			if err != nil || kindTok.typ != tokKeyword {
				return 0, corrupt(s.pos, "malformed xref entry")
			}
			num := start + i
			if _, ok := offsets[num]; ok {
				continue
			}
			switch string(kindTok.bytes) {
			case "n":
				offsets[num] = offTok.i
			case "f":
				offsets[num] = 0
			default:
				return 0, corrupt(kindTok.pos, "malformed xref entry kind %q", kindTok.bytes)
			}
		}
	}

	p := &objParser{s: s, data: data}
	tok, err = s.next()
	if err != nil || tok.typ != tokDictOpen {
		return 0, corrupt(s.pos, "expected trailer dictionary")
	}
	dict, err := p.dict()
	if err != nil {
		return 0, err
	}
	for k, v := range dict.KV {
		if _, ok := trailer.Get(k); !ok {
			trailer.Set(k, v)
		}
	}
	if prev, ok := dict.Get("Prev"); ok {
		if n, ok := prev.(raw.Number); ok {
			return n.I, nil
		}
	}
	return -1, nil
}

// rebuild recovers a document by scanning the whole buffer for object
// headers. Later definitions of the same number win, matching
// incremental-update semantics.
func rebuild(data []byte) (*raw.Document, error) {
	doc := &raw.Document{Objects: make(map[raw.ObjectRef]raw.Object)}
	for _, off := range scanObjectHeaders(data) {
		ref, obj, err := parseIndirectAt(data, off)
		if err != nil {
			continue
		}
		doc.Objects[ref] = obj
	}
	if len(doc.Objects) == 0 {
		return nil, corrupt(0, "no objects found")
	}

	doc.Trailer = raw.NewDict()
	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		s := &scanner{data: data, pos: int64(idx + len("trailer"))}
		if tok, err := s.next(); err == nil && tok.typ == tokDictOpen {
			p := &objParser{s: s, data: data}
			if dict, err := p.dict(); err == nil {
				doc.Trailer = dict
			}
		}
	}
	if _, ok := doc.Trailer.Get("Root"); !ok {
		for ref, obj := range doc.Objects {
			dict, ok := obj.(*raw.Dict)
			if !ok {
				continue
			}
			if t, ok := dict.Get("Type"); ok {
				if n, ok := t.(raw.Name); ok && n.Val == "Catalog" {
					doc.Trailer.Set("Root", raw.NewRef(ref.Num, ref.Gen))
					break
				}
			}
		}
	}
	if _, ok := doc.Trailer.Get("Root"); !ok {
		return nil, corrupt(0, "no document catalog")
	}
	return doc, nil
}

// scanObjectHeaders finds every "N G obj" header in the buffer.
func scanObjectHeaders(data []byte) []int64 {
	var offsets []int64
	pos := 0
	for {
		idx := bytes.Index(data[pos:], []byte("obj"))
		if idx < 0 {
			return offsets
		}
		at := pos + idx
		pos = at + 3
		if at+3 < len(data) && !isDelimiter(data[at+3]) {
			continue
		}
		// Walk back over "N G " to the start of the header.
		i := at - 1
		for i >= 0 && isWhitespace(data[i]) {
			i--
		}
		genEnd := i + 1
		for i >= 0 && data[i] >= '0' && data[i] <= '9' {
			i--
		}
		genStart := i + 1
		if genStart == genEnd {
			continue
		}
		for i >= 0 && isWhitespace(data[i]) {
			i--
		}
		numEnd := i + 1
		for i >= 0 && data[i] >= '0' && data[i] <= '9' {
			i--
		}
		numStart := i + 1
		if numStart == numEnd {
			continue
		}
		if numStart > 0 && !isDelimiter(data[numStart-1]) {
			continue
		}
		offsets = append(offsets, int64(numStart))
	}
}

// parseIndirectAt parses one "N G obj ... endobj" at a byte offset.
func parseIndirectAt(data []byte, offset int64) (raw.ObjectRef, raw.Object, error) {
	s := &scanner{data: data, pos: offset}
	numTok, err := s.next()
	if err != nil || numTok.typ != tokInt {
		return raw.ObjectRef{}, nil, corrupt(offset, "expected object number")
	}
	genTok, err := s.next()
	if err != nil || genTok.typ != tokInt {
		return raw.ObjectRef{}, nil, corrupt(offset, "expected generation number")
	}
	kwTok, err := s.next()
	if err != nil || kwTok.typ != tokKeyword || string(kwTok.bytes) != "obj" {
		return raw.ObjectRef{}, nil, corrupt(offset, "expected obj keyword")
	}
	ref := raw.ObjectRef{Num: int(numTok.i), Gen: int(genTok.i)}

	p := &objParser{s: s, data: data}
	obj, err := p.value()
	if err != nil {
		return raw.ObjectRef{}, nil, err
	}

	// A dictionary may be a stream's prologue.
	if dict, ok := obj.(*raw.Dict); ok {
		save := s.pos
		if tok, err := s.next(); err == nil && tok.typ == tokKeyword && string(tok.bytes) == "stream" {
			payload, err := sliceStream(data, s, dict)
			if err != nil {
				return raw.ObjectRef{}, nil, err
			}
			return ref, raw.NewStream(dict, payload), nil
		}
		s.pos = save
	}
	return ref, obj, nil
}

// sliceStream cuts the payload out after a stream keyword, trusting a
// direct Length entry and falling back to an endstream search.
func sliceStream(data []byte, s *scanner, dict *raw.Dict) ([]byte, error) {
	if s.pos < int64(len(data)) && data[s.pos] == '\r' {
		s.pos++
	}
	if s.pos < int64(len(data)) && data[s.pos] == '\n' {
		s.pos++
	}
	start := s.pos

	if o, ok := dict.Get("Length"); ok {
		if n, ok := o.(raw.Number); ok && n.IsInt && start+n.I <= int64(len(data)) {
			end := start + n.I
			rest := data[end:]
			probe := 0
			for probe < len(rest) && isWhitespace(rest[probe]) {
				probe++
			}
			if bytes.HasPrefix(rest[probe:], []byte("endstream")) {
				s.pos = end + int64(probe) + int64(len("endstream"))
				return append([]byte(nil), data[start:end]...), nil
			}
		}
	}

	idx := bytes.Index(data[start:], []byte("endstream"))
	if idx < 0 {
		return nil, corrupt(start, "unterminated stream")
	}
	end := start + int64(idx)
	for end > start && isWhitespace(data[end-1]) {
		end--
	}
	s.pos = start + int64(idx) + int64(len("endstream"))
	return append([]byte(nil), data[start:end]...), nil
}

// objParser builds raw objects from tokens.
type objParser struct {
	s    *scanner
	data []byte
}

func (p *objParser) value() (raw.Object, error) {
	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}
	return p.valueFrom(tok)
}

func (p *objParser) valueFrom(tok token) (raw.Object, error) {
	switch tok.typ {
	case tokDictOpen:
		return p.dict()
	case tokArrayOpen:
		return p.array()
	case tokName:
		return raw.NewName(string(tok.bytes)), nil
	case tokString:
		return raw.String{Bytes: tok.bytes, Hex: tok.hex}, nil
	case tokInt:
		return raw.NewInt(tok.i), nil
	case tokReal:
		return raw.NewReal(tok.f), nil
	case tokBool:
		return raw.NewBool(tok.i != 0), nil
	case tokNull:
		return raw.Null{}, nil
	case tokRef:
		return raw.NewRef(tok.num, tok.gen), nil
	}
	return nil, corrupt(tok.pos, "unexpected token %q", tok.bytes)
}

func (p *objParser) dict() (*raw.Dict, error) {
	dict := raw.NewDict()
	for {
		tok, err := p.s.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tokDictClose {
			return dict, nil
		}
		if tok.typ != tokName {
			return nil, corrupt(tok.pos, "dictionary key must be a name")
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		dict.Set(string(tok.bytes), val)
	}
}

func (p *objParser) array() (*raw.Array, error) {
	arr := raw.NewArray()
	for {
		tok, err := p.s.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tokArrayClose {
			return arr, nil
		}
		val, err := p.valueFrom(tok)
		if err != nil {
			return nil, err
		}
		arr.Append(val)
	}
}

// Decrypt authenticates against the document's Encrypt dictionary and
// decrypts every string and stream in place. The trailer and the
// Encrypt dictionary itself are never encrypted.
func Decrypt(doc *raw.Document, password string) error {
	if !doc.Encrypted {
		return nil
	}
	encObj, _ := doc.Trailer.Get("Encrypt")
	encRef, _ := encObj.(raw.Ref)
	encDict, ok := doc.ResolveDict(encObj)
	if !ok {
		return corrupt(0, "Encrypt entry is not a dictionary")
	}
	handler, err := security.NewReaderHandler(encDict, trailerFileID(doc.Trailer), password)
	if err != nil {
		return err
	}
	for ref, obj := range doc.Objects {
		if ref == encRef.R {
			continue
		}
		doc.Objects[ref] = cryptObject(handler, ref.Num, ref.Gen, obj)
	}
	delete(doc.Trailer.KV, "Encrypt")
	doc.Encrypted = false
	return nil
}

func trailerFileID(trailer *raw.Dict) []byte {
	if o, ok := trailer.Get("ID"); ok {
		if arr, ok := o.(*raw.Array); ok && arr.Len() > 0 {
			if s, ok := arr.Items[0].(raw.String); ok {
				return s.Bytes
			}
		}
	}
	return nil
}

func cryptObject(h *security.Handler, num, gen int, obj raw.Object) raw.Object {
	switch v := obj.(type) {
	case raw.String:
		return raw.String{Bytes: h.Crypt(num, gen, v.Bytes), Hex: v.Hex}
	case *raw.Array:
		for i, item := range v.Items {
			v.Items[i] = cryptObject(h, num, gen, item)
		}
		return v
	case *raw.Dict:
		for k, item := range v.KV {
			v.KV[k] = cryptObject(h, num, gen, item)
		}
		return v
	case *raw.Stream:
		cryptObject(h, num, gen, v.Dict)
		v.Data = h.Crypt(num, gen, v.Data)
		return v
	}
	return obj
}
