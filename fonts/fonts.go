// Package fonts maintains the set of fonts available to a document
// generation and answers text-measurement queries for the layout engine.
// The core text fonts are always present with built-in metrics;
// TrueType programs can be registered for embedding.
package fonts

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/quillpdf/quill/ir/semantic"
)

// Set is the collection of fonts available to one generation. It is built
// up front and read-only afterwards, so layout can share it freely.
type Set struct {
	fonts map[string]*semantic.Font
}

// NewSet returns a Set preloaded with the core fonts.
func NewSet() *Set {
	s := &Set{fonts: make(map[string]*semantic.Font, len(coreWidthTables))}
	for name := range coreWidthTables {
		s.fonts[name] = &semantic.Font{
			Subtype:  "Type1",
			BaseFont: name,
			Encoding: "WinAnsiEncoding",
		}
	}
	return s
}

// RegisterTrueType parses a TrueType/OpenType program and makes it
// available under name as a Type0 Identity-H font with the full program
// embedded.
func (s *Set) RegisterTrueType(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("truetype font name is empty")
	}
	font, err := LoadTrueType(name, data)
	if err != nil {
		return err
	}
	s.fonts[name] = font
	return nil
}

// Lookup returns the font registered under name.
func (s *Set) Lookup(name string) (*semantic.Font, bool) {
	f, ok := s.fonts[name]
	return f, ok
}

// Has reports whether name is a known font.
func (s *Set) Has(name string) bool {
	_, ok := s.fonts[name]
	return ok
}

// Names returns the registered font names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.fonts))
	for n := range s.fonts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Measure returns the advance width of text in user units at the given
// size. Text is NFC-normalized first so composed and decomposed input
// measure identically. Unknown fonts measure as zero width; the style
// resolver rejects them before layout ever asks.
func (s *Set) Measure(fontName string, size float64, text string) float64 {
	font, ok := s.fonts[fontName]
	if !ok {
		return 0
	}
	text = norm.NFC.String(text)

	if font.Subtype == "Type0" {
		return measureEmbedded(font, size, text)
	}

	table := coreWidthTables[font.BaseFont]
	sum := 0
	for _, r := range text {
		sum += coreWidth(table, r)
	}
	return float64(sum) / 1000 * size
}

func measureEmbedded(font *semantic.Font, size float64, text string) float64 {
	if w, ok := shapedAdvance(font, text); ok {
		return w / 1000 * size
	}
	// Fall back to the cmap-derived width table.
	sum := 0
	for _, r := range text {
		gid, ok := font.RuneToGID[r]
		if !ok {
			sum += missingWidth
			continue
		}
		if w, ok := font.Widths[gid]; ok {
			sum += w
		} else {
			sum += missingWidth
		}
	}
	return float64(sum) / 1000 * size
}
