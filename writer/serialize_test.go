package writer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/quillpdf/quill/ir/raw"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   raw.Number
		want string
	}{
		{raw.NewInt(0), "0"},
		{raw.NewInt(-42), "-42"},
		{raw.NewReal(0), "0"},
		{raw.NewReal(1.5), "1.5"},
		{raw.NewReal(595.2756), "595.2756"},
		{raw.NewReal(0.1 + 0.2), "0.3"},
		{raw.NewReal(12.00004), "12"},
		{raw.NewReal(-0.00001), "0"},
	}
	for _, tc := range cases {
		if got := formatNumber(tc.in); got != tc.want {
			t.Errorf("formatNumber(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStringForms(t *testing.T) {
	var b bytes.Buffer
	(serializer{}).str(&b, raw.NewString([]byte("a(b)c\\")))
	if got := b.String(); got != `(a\(b\)c\\)` {
		t.Errorf("literal string = %s", got)
	}

	b.Reset()
	(serializer{}).str(&b, raw.NewString([]byte{0x01, 0xFF}))
	if got := b.String(); got != "<01FF>" {
		t.Errorf("binary string = %s, want <01FF>", got)
	}

	b.Reset()
	(serializer{}).str(&b, raw.NewHexString([]byte{0xDE, 0xAD}))
	if got := b.String(); got != "<DEAD>" {
		t.Errorf("hex string = %s, want <DEAD>", got)
	}
}

func TestNameEscaping(t *testing.T) {
	var b bytes.Buffer
	writeName(&b, "F1")
	if b.String() != "/F1" {
		t.Errorf("plain name = %s", b.String())
	}
	b.Reset()
	writeName(&b, "A B#")
	if b.String() != "/A#20B#23" {
		t.Errorf("escaped name = %s, want /A#20B#23", b.String())
	}
}

func TestDictKeysSorted(t *testing.T) {
	d := raw.NewDict()
	d.Set("Zebra", raw.NewInt(1))
	d.Set("Alpha", raw.NewInt(2))
	d.Set("Mid", raw.NewInt(3))
	var b bytes.Buffer
	(serializer{}).dict(&b, d)
	got := b.String()
	if strings.Index(got, "Alpha") > strings.Index(got, "Mid") ||
		strings.Index(got, "Mid") > strings.Index(got, "Zebra") {
		t.Errorf("keys not sorted: %s", got)
	}
}

func minimalRawDoc() *raw.Document {
	catalog := raw.NewDict()
	catalog.Set("Type", raw.NewName("Catalog"))
	catalog.Set("Pages", raw.NewRef(2, 0))

	pages := raw.NewDict()
	pages.Set("Type", raw.NewName("Pages"))
	pages.Set("Count", raw.NewInt(1))
	pages.Set("Kids", raw.NewArray(raw.NewRef(3, 0)))

	page := raw.NewDict()
	page.Set("Type", raw.NewName("Page"))
	page.Set("Parent", raw.NewRef(2, 0))
	page.Set("MediaBox", raw.NewArray(
		raw.NewInt(0), raw.NewInt(0), raw.NewInt(612), raw.NewInt(792)))

	trailer := raw.NewDict()
	trailer.Set("Root", raw.NewRef(1, 0))

	return &raw.Document{
		Objects: map[raw.ObjectRef]raw.Object{
			{Num: 1}: catalog,
			{Num: 2}: pages,
			{Num: 3}: page,
		},
		Trailer: trailer,
	}
}

func TestWriteRawStructure(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRaw(&buf, minimalRawDoc(), nil); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "%PDF-1.7\n") {
		t.Errorf("missing header: %q", out[:16])
	}
	for _, want := range []string{"1 0 obj", "2 0 obj", "3 0 obj", "xref\n0 4\n", "trailer\n", "startxref\n", "%%EOF"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, "/Size 4") {
		t.Errorf("trailer missing Size 4")
	}
}

func TestWriteRawDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := WriteRaw(&a, minimalRawDoc(), nil); err != nil {
		t.Fatal(err)
	}
	if err := WriteRaw(&b, minimalRawDoc(), nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("identical documents serialized differently")
	}
}

func TestXrefOffsetsMatchObjects(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRaw(&buf, minimalRawDoc(), nil); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()

	idx := bytes.Index(out, []byte("xref\n"))
	if idx < 0 {
		t.Fatal("no xref table")
	}
	lines := bytes.Split(out[idx:], []byte("\n"))
	// lines[0]=xref lines[1]="0 4" lines[2]=free entry, then objects.
	// Offsets are zero padded, so they must parse as base 10 explicitly.
	for i, n := 3, 1; n <= 3; i, n = i+1, n+1 {
		off, err := strconv.ParseInt(string(lines[i][:10]), 10, 64)
		if err != nil {
			t.Fatalf("bad entry %q: %v", lines[i], err)
		}
		want := []byte(fmt.Sprintf("%d 0 obj", n))
		if !bytes.HasPrefix(out[off:], want) {
			t.Errorf("offset %d for object %d points at %q", off, n, out[off:off+10])
		}
	}
}
