// Package style resolves the visual attributes applied to one element
// instance: the merge of document defaults, section overrides, and
// element overrides, last writer wins per attribute. Resolution is pure
// and deterministic; unknown fonts are a fatal error rather than a
// silent substitution so identical specifications always produce
// identical output.
package style

import (
	"fmt"

	"github.com/quillpdf/quill/fonts"
)

// Alignment positions text or a block horizontally.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Attributes is a partial style: nil fields inherit from the level below.
type Attributes struct {
	Font        *string
	Size        *float64
	LineHeight  *float64
	Color       *Color
	Alignment   *Alignment
	SpaceBefore *float64
	SpaceAfter  *float64
}

// Resolved is the flattened style actually applied to one element.
type Resolved struct {
	Font        string
	Size        float64
	LineHeight  float64 // multiplier, e.g. 1.2
	Color       Color
	Alignment   Alignment
	SpaceBefore float64
	SpaceAfter  float64
}

// LineAdvance returns the baseline-to-baseline distance in user units.
func (r Resolved) LineAdvance() float64 { return r.Size * r.LineHeight }

// UnknownFontError reports a font reference that is not in the configured
// font set. Fatal for the whole generation.
type UnknownFontError struct {
	Font string
}

func (e *UnknownFontError) Error() string {
	return fmt.Sprintf("style: unknown font %q", e.Font)
}

// Resolver resolves styles against a fixed font set.
type Resolver struct {
	Fonts    *fonts.Set
	Defaults Resolved
}

// NewResolver builds a resolver. The default font must exist in the set.
func NewResolver(set *fonts.Set, defaults Resolved) (*Resolver, error) {
	if defaults.Font == "" {
		defaults.Font = "Helvetica"
	}
	if defaults.Size == 0 {
		defaults.Size = 11
	}
	if defaults.LineHeight == 0 {
		defaults.LineHeight = 1.2
	}
	if defaults.Alignment == "" {
		defaults.Alignment = AlignLeft
	}
	if defaults.Color.IsZero() {
		defaults.Color = Color{A: 1}
	}
	if !set.Has(defaults.Font) {
		return nil, &UnknownFontError{Font: defaults.Font}
	}
	return &Resolver{Fonts: set, Defaults: defaults}, nil
}

// Resolve merges overrides over the document defaults, in order, last
// writer wins per attribute, and validates the winning font.
func (rs *Resolver) Resolve(overrides ...*Attributes) (Resolved, error) {
	out := rs.Defaults
	for _, o := range overrides {
		if o == nil {
			continue
		}
		if o.Font != nil {
			out.Font = *o.Font
		}
		if o.Size != nil {
			out.Size = *o.Size
		}
		if o.LineHeight != nil {
			out.LineHeight = *o.LineHeight
		}
		if o.Color != nil {
			out.Color = *o.Color
		}
		if o.Alignment != nil {
			out.Alignment = *o.Alignment
		}
		if o.SpaceBefore != nil {
			out.SpaceBefore = *o.SpaceBefore
		}
		if o.SpaceAfter != nil {
			out.SpaceAfter = *o.SpaceAfter
		}
	}
	if !rs.Fonts.Has(out.Font) {
		return Resolved{}, &UnknownFontError{Font: out.Font}
	}
	return out, nil
}

// HeadingSize returns the font size ladder for heading levels 1..6,
// scaled against the body size.
func (rs *Resolver) HeadingSize(level int) float64 {
	base := rs.Defaults.Size
	switch level {
	case 1:
		return base + 5
	case 2:
		return base + 3
	case 3:
		return base + 1
	case 4:
		return base
	default:
		return base - 1
	}
}
