package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/quillpdf/quill/flow"
	"github.com/quillpdf/quill/fonts"
	"github.com/quillpdf/quill/ir/semantic"
	"github.com/quillpdf/quill/model"
)

func testResult(pages ...*flow.Page) *flow.Result {
	for i, p := range pages {
		p.Index = i
	}
	return &flow.Result{
		Doc:   &model.Document{},
		PageW: 612, PageH: 792,
		Pages: pages,
		Refs:  flow.NewRefTable(),
	}
}

func pageOps(t *testing.T, doc *semantic.Document, page int) []semantic.Operation {
	t.Helper()
	if page >= len(doc.Pages) || len(doc.Pages[page].Contents) == 0 {
		t.Fatalf("page %d has no content", page)
	}
	return doc.Pages[page].Contents[0].Operations
}

// tjStrings collects the text shown by Tj operators.
func tjStrings(ops []semantic.Operation) []string {
	var out []string
	for _, op := range ops {
		if op.Operator == "Tj" && len(op.Operands) == 1 {
			if s, ok := op.Operands[0].(semantic.StringOperand); ok {
				out = append(out, string(s.Value))
			}
		}
	}
	return out
}

func TestRenderUnresolvedReference(t *testing.T) {
	res := testResult(&flow.Page{Content: []flow.Item{
		flow.TextItem{Runs: []flow.TextRun{{Text: "00", Font: "Helvetica", Size: 10, Ref: "bogus"}}},
	}})
	_, err := New(fonts.NewSet(), nil).Render(res)
	var ue *UnresolvedReferenceError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UnresolvedReferenceError", err)
	}
	if ue.ID != "bogus" {
		t.Errorf("error names %q", ue.ID)
	}
}

func TestRenderPatchesDeferredRuns(t *testing.T) {
	res := testResult(&flow.Page{Furniture: []flow.Item{
		flow.TextItem{X: 100, Y: 36, Runs: []flow.TextRun{
			{Text: "Page 1 of ", Font: "Helvetica", Size: 9},
			{Text: "00", Font: "Helvetica", Size: 9, Ref: "pages.total"},
		}},
	}})
	res.Refs.Set("pages.total", "7")

	doc, err := New(fonts.NewSet(), nil).Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	texts := tjStrings(pageOps(t, doc, 0))
	found := false
	for _, s := range texts {
		if s == "7" {
			found = true
		}
		if s == "00" {
			t.Errorf("placeholder text left unpatched")
		}
	}
	if !found {
		t.Errorf("patched value missing from Tj output: %q", texts)
	}
}

func TestRenderAnchorRight(t *testing.T) {
	res := testResult(&flow.Page{Content: []flow.Item{
		flow.TextItem{X: 500, Y: 700, AnchorRight: true, Runs: []flow.TextRun{
			{Text: "42", Font: "Helvetica", Size: 10},
		}},
	}})
	doc, err := New(fonts.NewSet(), nil).Render(res)
	if err != nil {
		t.Fatal(err)
	}

	// Digits are 556/1000 em wide, so "42" at 10pt is 11.12 wide and the
	// origin lands at 488.88.
	var tmX float64
	for _, op := range pageOps(t, doc, 0) {
		if op.Operator == "Tm" {
			tmX = op.Operands[4].(semantic.NumberOperand).Value
		}
	}
	if math.Abs(tmX-488.88) > 1e-9 {
		t.Errorf("Tm x = %g, want 488.88", tmX)
	}
}

func TestRenderLinkUnderline(t *testing.T) {
	res := testResult(&flow.Page{Content: []flow.Item{
		flow.TextItem{X: 72, Y: 700, Runs: []flow.TextRun{
			{Text: "docs", Font: "Helvetica", Size: 11, Link: "https://example.com"},
		}},
	}})
	doc, err := New(fonts.NewSet(), nil).Render(res)
	if err != nil {
		t.Fatal(err)
	}
	stroked := false
	for _, op := range pageOps(t, doc, 0) {
		if op.Operator == "S" {
			stroked = true
		}
	}
	if !stroked {
		t.Errorf("linked run has no underline stroke")
	}
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 128})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRenderImageSharedAcrossPages(t *testing.T) {
	data := smallPNG(t)
	item := flow.ImageItem{X: 10, Y: 10, W: 50, H: 50, Data: data, Format: "png"}
	res := testResult(
		&flow.Page{Watermark: []flow.Item{item}},
		&flow.Page{Watermark: []flow.Item{item}},
	)
	doc, err := New(fonts.NewSet(), nil).Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var imgs []*semantic.Image
	for _, p := range doc.Pages {
		for _, x := range p.Resources.XObjects {
			imgs = append(imgs, x)
		}
	}
	if len(imgs) != 2 {
		t.Fatalf("XObject count = %d, want 2", len(imgs))
	}
	if imgs[0] != imgs[1] {
		t.Errorf("repeated placements did not share one image object")
	}
	if imgs[0].Width != 2 || imgs[0].Height != 2 || imgs[0].Filter != "FlateDecode" {
		t.Errorf("embedded image = %+v", imgs[0])
	}
	if imgs[0].SMask == nil {
		t.Errorf("translucent PNG lost its soft mask")
	}
}

func TestRenderUnsupportedImageFormat(t *testing.T) {
	res := testResult(&flow.Page{Content: []flow.Item{
		flow.ImageItem{Data: []byte{1, 2, 3}, Format: "bmp", W: 10, H: 10},
	}})
	_, err := New(fonts.NewSet(), nil).Render(res)
	var re *flow.ResourceError
	if !errors.As(err, &re) {
		t.Errorf("err = %v, want ResourceError", err)
	}
}

func TestRenderInfoDefaults(t *testing.T) {
	res := testResult(&flow.Page{})
	res.Doc.Meta = model.Metadata{Title: "T", Author: "A"}

	doc, err := New(fonts.NewSet(), nil).Render(res)
	if err != nil {
		t.Fatal(err)
	}
	info := doc.Info
	if info.Title != "T" || info.Author != "A" {
		t.Errorf("info = %+v", info)
	}
	if info.Producer != "quill" || info.Creator != "quill" {
		t.Errorf("producer = %q, creator = %q", info.Producer, info.Creator)
	}
	want := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if !info.CreationDate.Equal(want) {
		t.Errorf("creation date = %v, want fixed epoch", info.CreationDate)
	}
}

func TestRenderEncryptionPassthrough(t *testing.T) {
	res := testResult(&flow.Page{})
	res.Doc.Encryption = &model.Encryption{
		OwnerPassword: "o",
		UserPassword:  "u",
		Permissions:   model.Permissions{Print: true, Annotate: true},
	}
	doc, err := New(fonts.NewSet(), nil).Render(res)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Encrypted || doc.OwnerPassword != "o" || doc.UserPassword != "u" {
		t.Errorf("encryption not carried: %+v", doc)
	}
	p := doc.Permissions
	if !p.Print || !p.ModifyAnnotations || p.Modify || p.Copy {
		t.Errorf("permissions = %+v", p)
	}
}

func TestRenderPageGeometry(t *testing.T) {
	doc, err := New(fonts.NewSet(), nil).Render(testResult(&flow.Page{}, &flow.Page{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("page count = %d", len(doc.Pages))
	}
	mb := doc.Pages[0].MediaBox
	if mb.URX != 612 || mb.URY != 792 {
		t.Errorf("media box = %+v", mb)
	}
}

func TestRenderFontResources(t *testing.T) {
	res := testResult(&flow.Page{Content: []flow.Item{
		flow.TextItem{X: 72, Y: 700, Runs: []flow.TextRun{{Text: "hi", Font: "Helvetica", Size: 11}}},
	}})
	doc, err := New(fonts.NewSet(), nil).Render(res)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range doc.Pages[0].Resources.Fonts {
		if f != nil && f.BaseFont == "Helvetica" {
			found = true
		}
	}
	if !found {
		t.Errorf("page resources missing the drawn font")
	}
}

func TestEmbedJPEGColorSpace(t *testing.T) {
	var gray bytes.Buffer
	if err := jpeg.Encode(&gray, image.NewGray(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatal(err)
	}
	img, err := embedJPEG(gray.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.ColorSpace != "DeviceGray" || img.Filter != "DCTDecode" {
		t.Errorf("gray jpeg = %q under %q", img.ColorSpace, img.Filter)
	}
	if !bytes.Equal(img.Data, gray.Bytes()) {
		t.Errorf("jpeg data not passed through untouched")
	}

	var rgb bytes.Buffer
	if err := jpeg.Encode(&rgb, image.NewNRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatal(err)
	}
	img, err = embedJPEG(rgb.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.ColorSpace != "DeviceRGB" {
		t.Errorf("color jpeg = %q, want DeviceRGB", img.ColorSpace)
	}
}
