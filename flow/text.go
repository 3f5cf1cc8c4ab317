package flow

import (
	"strings"

	"github.com/quillpdf/quill/fonts"
	"github.com/quillpdf/quill/richtext"
	"github.com/quillpdf/quill/style"
)

// Line is one wrapped line of runs, measured.
type Line struct {
	Runs  []TextRun
	Width float64
}

var boldVariant = map[string]string{
	"Helvetica":       "Helvetica-Bold",
	"Times-Roman":     "Times-Bold",
	"Courier":         "Courier-Bold",
	"Helvetica-Bold":  "Helvetica-Bold",
	"Times-Bold":      "Times-Bold",
	"Courier-Bold":    "Courier-Bold",
}

var italicVariant = map[string]string{
	"Helvetica":   "Helvetica-Oblique",
	"Times-Roman": "Times-Italic",
	"Courier":     "Courier-Oblique",
}

var boldItalicVariant = map[string]string{
	"Helvetica":   "Helvetica-BoldOblique",
	"Times-Roman": "Times-BoldItalic",
	"Courier":     "Courier-BoldOblique",
}

// variantFont maps a base font to the face a span's styling asks for.
// Code spans switch to Courier. Fonts without a registered variant keep
// the base face rather than failing.
func variantFont(set *fonts.Set, base string, bold, italic, code bool) string {
	name := base
	if code {
		name = "Courier"
	}
	var want string
	switch {
	case bold && italic:
		want = boldItalicVariant[name]
	case bold:
		want = boldVariant[name]
	case italic:
		want = italicVariant[name]
	}
	if want == "" && (bold || italic) {
		// Registered TrueType families may carry suffixed variants.
		suffix := ""
		switch {
		case bold && italic:
			suffix = "-BoldItalic"
		case bold:
			suffix = "-Bold"
		case italic:
			suffix = "-Italic"
		}
		if set.Has(name + suffix) {
			want = name + suffix
		}
	}
	if want != "" && set.Has(want) {
		return want
	}
	return name
}

// word is the atomic wrapping unit: one token from one span.
type word struct {
	run   TextRun
	width float64
}

// wrapSpans breaks styled spans into lines no wider than maxW, greedy
// first-fit at word boundaries. A single word wider than maxW gets a
// line of its own and overhangs; layout treats that as unsplittable
// only when the line itself cannot be placed.
func wrapSpans(set *fonts.Set, spans []richtext.Span, rs style.Resolved, maxW float64) []Line {
	var words []word
	for _, sp := range spans {
		font := variantFont(set, rs.Font, sp.Bold, sp.Italic, sp.Code)
		for _, tok := range strings.Fields(sp.Text) {
			words = append(words, word{
				run: TextRun{
					Text:  tok,
					Font:  font,
					Size:  rs.Size,
					Color: rs.Color,
					Link:  sp.Link,
				},
				width: set.Measure(font, rs.Size, tok),
			})
		}
	}
	if len(words) == 0 {
		return nil
	}

	var lines []Line
	var cur []word
	curW := 0.0
	flush := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, assembleLine(set, cur))
		cur, curW = nil, 0
	}
	for _, w := range words {
		sep := 0.0
		if len(cur) > 0 {
			sep = set.Measure(w.run.Font, w.run.Size, " ")
		}
		if len(cur) > 0 && curW+sep+w.width > maxW {
			flush()
			sep = 0
		}
		cur = append(cur, w)
		curW += sep + w.width
	}
	flush()
	return lines
}

// assembleLine joins words into runs, merging neighbors that share
// styling so the content stream stays compact.
func assembleLine(set *fonts.Set, words []word) Line {
	var runs []TextRun
	width := 0.0
	for i, w := range words {
		if i > 0 {
			spaceW := set.Measure(w.run.Font, w.run.Size, " ")
			width += spaceW
			last := &runs[len(runs)-1]
			if last.Font == w.run.Font && last.Size == w.run.Size &&
				last.Color == w.run.Color && last.Link == w.run.Link {
				last.Text += " " + w.run.Text
				width += w.width
				continue
			}
			last.Text += " "
		}
		runs = append(runs, w.run)
		width += w.width
	}
	return Line{Runs: runs, Width: width}
}

// lineX positions a line inside a box per the alignment.
func lineX(align style.Alignment, boxX, boxW, lineW float64) float64 {
	switch align {
	case style.AlignCenter:
		return boxX + (boxW-lineW)/2
	case style.AlignRight:
		return boxX + boxW - lineW
	default:
		return boxX
	}
}
