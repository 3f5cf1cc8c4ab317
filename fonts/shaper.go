package fonts

import (
	"bytes"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/quillpdf/quill/ir/semantic"
)

// shapedAdvance measures text by shaping it with the embedded font
// program, which accounts for kerning and complex-script substitutions
// that per-glyph width tables miss. Returns the advance in 1/1000 em.
func shapedAdvance(font *semantic.Font, text string) (float64, bool) {
	if font == nil || font.Descriptor == nil || len(font.Descriptor.FontFile) == 0 {
		return 0, false
	}
	face, err := gofont.ParseTTF(bytes.NewReader(font.Descriptor.FontFile))
	if err != nil {
		return 0, false
	}

	runes := []rune(text)
	script := detectScript(runes)

	shaper := &shaping.HarfbuzzShaper{}
	// Shape at 1000 units per em so advances come out in PDF glyph space.
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}
	output := shaper.Shape(input)

	total := 0.0
	for _, g := range output.Glyphs {
		total += float64(g.XAdvance) / 64.0
	}
	return total, true
}

// ShapeGlyphs returns the glyph ids produced by shaping text with the
// embedded program; the renderer encodes these as Identity-H CIDs.
func ShapeGlyphs(font *semantic.Font, text string) ([]int, bool) {
	if font == nil || font.Descriptor == nil || len(font.Descriptor.FontFile) == 0 {
		return nil, false
	}
	face, err := gofont.ParseTTF(bytes.NewReader(font.Descriptor.FontFile))
	if err != nil {
		return nil, false
	}

	runes := []rune(text)
	script := detectScript(runes)

	shaper := &shaping.HarfbuzzShaper{}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}
	output := shaper.Shape(input)

	gids := make([]int, 0, len(output.Glyphs))
	for _, g := range output.Glyphs {
		gids = append(gids, int(g.GlyphID))
	}
	return gids, true
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin
	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			best = script
		}
	}
	return best
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	}
	return language.Unknown
}
