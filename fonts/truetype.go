package fonts

import (
	"fmt"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/quillpdf/quill/ir/semantic"
)

// LoadTrueType parses a TrueType/OpenType font, extracts metrics and the
// rune-to-glyph mapping, and returns a semantic.Font configured for Type0
// Identity-H usage with the full program embedded as FontFile2.
func LoadTrueType(name string, data []byte) (*semantic.Font, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("truetype font has invalid unitsPerEm")
	}
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(int32(unitsPerEm) << 6)

	baseName := strings.TrimSpace(name)
	if ps, _ := font.Name(buf, sfnt.NameIDPostScript); len(ps) > 0 {
		baseName = ps
	}

	widths := glyphWidths(font, buf, unitsPerEm, ppem)
	runeToGID := cmapIndex(font, buf)

	metrics, _ := font.Metrics(buf, ppem, xfont.HintingNone)
	bounds, _ := font.Bounds(buf, ppem, xfont.HintingNone)
	descriptor := &semantic.FontDescriptor{
		FontName:    baseName,
		Flags:       4, // nonsymbolic
		ItalicAngle: italicAngle(font),
		Ascent:      scaleFixed(metrics.Ascent, unitsPerEm),
		Descent:     -scaleFixed(metrics.Descent, unitsPerEm),
		CapHeight:   scaleFixed(metrics.CapHeight, unitsPerEm),
		StemV:       80,
		FontBBox: [4]float64{
			scaleFixed(bounds.Min.X, unitsPerEm),
			scaleFixed(bounds.Min.Y, unitsPerEm),
			scaleFixed(bounds.Max.X, unitsPerEm),
			scaleFixed(bounds.Max.Y, unitsPerEm),
		},
		FontFile: data,
	}

	return &semantic.Font{
		Subtype:    "Type0",
		BaseFont:   baseName,
		Encoding:   "Identity-H",
		Widths:     widths,
		RuneToGID:  runeToGID,
		Descriptor: descriptor,
	}, nil
}

func glyphWidths(font *sfnt.Font, buf *sfnt.Buffer, unitsPerEm sfnt.Units, ppem fixed.Int26_6) map[int]int {
	glyphs := font.NumGlyphs()
	widths := make(map[int]int, glyphs)
	for i := 0; i < glyphs; i++ {
		adv, err := font.GlyphAdvance(buf, sfnt.GlyphIndex(i), ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		widths[i] = int(math.Round(scaleFixed(adv, unitsPerEm)))
	}
	return widths
}

// cmapIndex builds rune -> glyph id over the Basic Multilingual Plane.
func cmapIndex(font *sfnt.Font, buf *sfnt.Buffer) map[rune]int {
	m := make(map[rune]int)
	for r := rune(0x20); r <= 0xFFFF; r++ {
		gid, err := font.GlyphIndex(buf, r)
		if err != nil || gid == 0 {
			continue
		}
		m[r] = int(gid)
	}
	return m
}

func italicAngle(font *sfnt.Font) float64 {
	post := font.PostTable()
	if post == nil {
		return 0
	}
	return post.ItalicAngle
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))
}
