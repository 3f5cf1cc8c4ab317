package builder

import (
	"bytes"
	"testing"

	"github.com/quillpdf/quill/ir/semantic"
	"github.com/quillpdf/quill/style"
)

func TestFontResourceNaming(t *testing.T) {
	d := NewDoc()
	d.RegisterFonts(map[string]*semantic.Font{
		"Helvetica":   {Subtype: "Type1", BaseFont: "Helvetica"},
		"Courier":     {Subtype: "Type1", BaseFont: "Courier"},
		"Times-Roman": {Subtype: "Type1", BaseFont: "Times-Roman"},
	})
	// Sorted registration order fixes the resource names.
	if d.fontNames["Courier"] != "F1" || d.fontNames["Helvetica"] != "F2" || d.fontNames["Times-Roman"] != "F3" {
		t.Errorf("resource names = %v", d.fontNames)
	}

	// Re-registering is a no-op.
	d.RegisterFont("Courier", &semantic.Font{Subtype: "Type1", BaseFont: "Courier-Bold"})
	if d.fonts["Courier"].BaseFont != "Courier" {
		t.Errorf("re-registration replaced the font")
	}
}

func TestDrawTextEmitsOperators(t *testing.T) {
	d := NewDoc()
	d.RegisterFont("Helvetica", &semantic.Font{Subtype: "Type1", BaseFont: "Helvetica"})
	p := d.NewPage(612, 792)
	p.DrawText("hi", 72, 700, TextOptions{Font: "Helvetica", Size: 12, Color: style.Color{R: 1}})

	doc := d.Build()
	ops := doc.Pages[0].Contents[0].Operations
	var seq []string
	for _, op := range ops {
		seq = append(seq, op.Operator)
	}
	want := []string{"BT", "Tf", "Tm", "rg", "Tj", "ET"}
	if len(seq) != len(want) {
		t.Fatalf("operators = %v, want %v", seq, want)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Errorf("operator %d = %s, want %s", i, seq[i], want[i])
		}
	}

	// The page references the font under its resource name.
	if doc.Pages[0].Resources.Fonts["F1"] == nil {
		t.Errorf("font resource F1 missing")
	}
}

func TestDrawTextRotatedWrapsInState(t *testing.T) {
	d := NewDoc()
	d.RegisterFont("Helvetica", &semantic.Font{Subtype: "Type1", BaseFont: "Helvetica"})
	p := d.NewPage(612, 792)
	p.DrawText("DRAFT", 300, 400, TextOptions{Font: "Helvetica", Size: 40, Rotate: 45, Opacity: 0.2})

	ops := d.Build().Pages[0].Contents[0].Operations
	if ops[0].Operator != "q" || ops[len(ops)-1].Operator != "Q" {
		t.Errorf("rotated text not bracketed by q/Q")
	}
	found := map[string]bool{}
	for _, op := range ops {
		found[op.Operator] = true
	}
	for _, op := range []string{"gs", "cm"} {
		if !found[op] {
			t.Errorf("missing %s operator", op)
		}
	}
	if d.Build().Pages[0].Resources.ExtGStates == nil {
		t.Errorf("alpha state not registered")
	}
}

func TestAlphaGSReused(t *testing.T) {
	d := NewDoc()
	n1, _ := d.alphaGS(0.5)
	n2, _ := d.alphaGS(0.5)
	n3, _ := d.alphaGS(0.2)
	if n1 != n2 {
		t.Errorf("same alpha got distinct names %s, %s", n1, n2)
	}
	if n3 == n1 {
		t.Errorf("distinct alphas share a name")
	}
}

func TestEncodeTextIdentityH(t *testing.T) {
	font := &semantic.Font{
		Subtype:   "Type0",
		Encoding:  "Identity-H",
		RuneToGID: map[rune]int{'A': 0x0123, 'B': 0x0456},
	}
	got := encodeText("AB", font)
	want := []byte{0x01, 0x23, 0x04, 0x56}
	if !bytes.Equal(got, want) {
		t.Errorf("encoded = % X, want % X", got, want)
	}

	if got := encodeText("AB", &semantic.Font{Subtype: "Type1"}); !bytes.Equal(got, []byte("AB")) {
		t.Errorf("simple font encoding = % X", got)
	}
}

func TestDrawRectAndLine(t *testing.T) {
	d := NewDoc()
	p := d.NewPage(612, 792)
	fill := style.Color{R: 0.9, G: 0.9, B: 0.9}
	p.DrawRect(10, 10, 100, 50, PathOptions{Fill: true, FillColor: fill})
	p.DrawLine(0, 0, 100, 100, PathOptions{StrokeColor: style.Color{}, LineWidth: 2, DashPattern: []float64{3, 2}})

	var seq []string
	for _, op := range d.Build().Pages[0].Contents[0].Operations {
		seq = append(seq, op.Operator)
	}
	want := []string{"q", "rg", "re", "f", "Q", "q", "RG", "w", "d", "m", "l", "S", "Q"}
	if len(seq) != len(want) {
		t.Fatalf("operators = %v", seq)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Errorf("operator %d = %s, want %s", i, seq[i], want[i])
		}
	}
}
