package parser

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/quillpdf/quill/ir/raw"
	"github.com/quillpdf/quill/ir/semantic"
	"github.com/quillpdf/quill/writer"
)

func samplePDF(t *testing.T, encrypted bool, compress bool) []byte {
	t.Helper()
	helv := &semantic.Font{Subtype: "Type1", BaseFont: "Helvetica", Encoding: "WinAnsiEncoding"}
	doc := &semantic.Document{
		Pages: []*semantic.Page{{
			MediaBox:  semantic.Rectangle{URX: 595.28, URY: 841.89},
			Resources: &semantic.Resources{Fonts: map[string]*semantic.Font{"F1": helv}},
			Contents: []semantic.ContentStream{{Operations: []semantic.Operation{
				{Operator: "BT"},
				{Operator: "Tj", Operands: []semantic.Operand{semantic.StringOperand{Value: []byte("hello")}}},
				{Operator: "ET"},
			}}},
		}},
		Info: &semantic.DocumentInfo{Title: "sample", Producer: "quill",
			CreationDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	if encrypted {
		doc.Encrypted = true
		doc.OwnerPassword = "owner"
		doc.Permissions = raw.AllPermissions()
	}
	var buf bytes.Buffer
	if err := writer.Write(&buf, doc, writer.Options{Compress: compress}); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return buf.Bytes()
}

func TestParseRoundTrip(t *testing.T) {
	doc, err := Parse(samplePDF(t, false, false))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Version != "1.7" {
		t.Errorf("version = %q", doc.Version)
	}
	if doc.Encrypted {
		t.Errorf("unencrypted file reported encrypted")
	}

	pages, err := Pages(doc)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("page count = %d, want 1", len(pages))
	}
	if w, h := pages[0].Width(), pages[0].Height(); w != 595.28 || h != 841.89 {
		t.Errorf("page size = %gx%g", w, h)
	}

	streamObj := doc.Resolve(mustGetPageEntry(t, doc, pages[0], "Contents"))
	stream, ok := streamObj.(*raw.Stream)
	if !ok {
		t.Fatalf("Contents resolves to %T", streamObj)
	}
	if !bytes.Contains(stream.Data, []byte("(hello) Tj")) {
		t.Errorf("content stream = %q", stream.Data)
	}
}

func mustGetPageEntry(t *testing.T, doc *raw.Document, node PageNode, key string) raw.Object {
	t.Helper()
	dict, ok := doc.ResolveDict(raw.Ref{R: node.Ref})
	if !ok {
		t.Fatalf("page %d is not a dictionary", node.Ref.Num)
	}
	o, ok := dict.Get(key)
	if !ok {
		t.Fatalf("page has no %s", key)
	}
	return o
}

func TestParseRejectsGarbage(t *testing.T) {
	var ce *CorruptInputError
	if _, err := Parse([]byte("not a pdf at all")); !errors.As(err, &ce) {
		t.Errorf("garbage input: err = %v", err)
	}
	if _, err := Parse([]byte("%PDF-1.7\ntruncated")); !errors.As(err, &ce) {
		t.Errorf("truncated input: err = %v", err)
	}
}

func TestParseRebuildsFromBadXref(t *testing.T) {
	data := samplePDF(t, false, false)
	// Point startxref at a bogus offset; the rebuild scan must recover.
	re := regexp.MustCompile(`startxref\n\d+`)
	broken := re.ReplaceAll(data, []byte("startxref\n999999999"))
	if bytes.Equal(broken, data) {
		t.Fatal("test did not alter the file")
	}

	doc, err := Parse(broken)
	if err != nil {
		t.Fatalf("Parse after corruption: %v", err)
	}
	pages, err := Pages(doc)
	if err != nil || len(pages) != 1 {
		t.Fatalf("Pages after rebuild: %v, %d pages", err, len(pages))
	}
}

func TestParseEncryptedAndDecrypt(t *testing.T) {
	data := samplePDF(t, true, false)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.Encrypted {
		t.Fatal("encrypted file not flagged")
	}

	// Structure is readable without decrypting.
	pages, err := Pages(doc)
	if err != nil || len(pages) != 1 {
		t.Fatalf("Pages on encrypted file: %v", err)
	}

	if err := Decrypt(doc, ""); err != nil {
		t.Fatalf("Decrypt with empty user password: %v", err)
	}
	if doc.Encrypted {
		t.Errorf("Encrypted flag still set after decryption")
	}
	stream, ok := doc.Resolve(mustGetPageEntry(t, doc, pages[0], "Contents")).(*raw.Stream)
	if !ok || !bytes.Contains(stream.Data, []byte("(hello) Tj")) {
		t.Errorf("decrypted stream does not contain original operators")
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	doc, err := Parse(samplePDF(t, true, false))
	if err != nil {
		t.Fatal(err)
	}
	if err := Decrypt(doc, "not-the-password"); err == nil {
		t.Errorf("wrong password accepted")
	}
}

func TestScannerTokens(t *testing.T) {
	s := &scanner{data: []byte(" << /Name (str\\)ing) [1 2.5 3 0 R true null] >> ")}
	var kinds []tokenType
	for {
		tok, err := s.next()
		if err != nil {
			break
		}
		kinds = append(kinds, tok.typ)
		if tok.typ == tokDictClose {
			break
		}
	}
	want := []tokenType{tokDictOpen, tokName, tokString, tokArrayOpen,
		tokInt, tokReal, tokRef, tokBool, tokNull, tokArrayClose, tokDictClose}
	if len(kinds) != len(want) {
		t.Fatalf("token kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestScannerHexString(t *testing.T) {
	s := &scanner{data: []byte("<48 65 6C6C6F>")}
	tok, err := s.next()
	if err != nil || tok.typ != tokString {
		t.Fatalf("hex string token: %v", err)
	}
	if string(tok.bytes) != "Hello" {
		t.Errorf("hex string = %q", tok.bytes)
	}

	s = &scanner{data: []byte("<414>")}
	tok, _ = s.next()
	if !bytes.Equal(tok.bytes, []byte{0x41, 0x40}) {
		t.Errorf("odd-length hex = % X, want 41 40", tok.bytes)
	}
}

func TestHeaderVersion(t *testing.T) {
	if v := headerVersion([]byte("%PDF-1.4\nrest")); v != "1.4" {
		t.Errorf("version = %q", v)
	}
}

func TestCorruptErrorMessage(t *testing.T) {
	err := corrupt(42, "bad %s", "thing")
	if !strings.Contains(err.Error(), "offset 42") || !strings.Contains(err.Error(), "bad thing") {
		t.Errorf("message = %q", err)
	}
}
