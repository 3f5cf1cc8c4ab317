package style

import "fmt"

// Scheme names a predefined color palette.
type Scheme string

const (
	SchemeClassic       Scheme = "classic"
	SchemeCorporateBlue Scheme = "corporate_blue"
	SchemeModern        Scheme = "modern"
	SchemeVibrant       Scheme = "vibrant"
	SchemeMonochrome    Scheme = "monochrome"
	SchemeNature        Scheme = "nature"
)

// Palette is the resolved set of colors a scheme provides. Series feeds
// chart coloring; the rest style headings, rules, and callouts.
type Palette struct {
	Primary   Color
	Secondary Color
	Accent    Color
	Text      Color
	Muted     Color
	Series    []Color
}

var schemes = map[Scheme]Palette{
	SchemeClassic: {
		Primary:   MustColor("#000000"),
		Secondary: MustColor("#404040"),
		Accent:    MustColor("#808080"),
		Text:      MustColor("#000000"),
		Muted:     MustColor("#a0a0a0"),
		Series: []Color{
			MustColor("#404040"), MustColor("#707070"), MustColor("#9a9a9a"),
			MustColor("#c4c4c4"), MustColor("#2a2a2a"),
		},
	},
	SchemeCorporateBlue: {
		Primary:   MustColor("#1f4e79"),
		Secondary: MustColor("#2e75b6"),
		Accent:    MustColor("#5b9bd5"),
		Text:      MustColor("#1a1a1a"),
		Muted:     MustColor("#8eaadb"),
		Series: []Color{
			MustColor("#1f4e79"), MustColor("#2e75b6"), MustColor("#5b9bd5"),
			MustColor("#9dc3e6"), MustColor("#203864"),
		},
	},
	SchemeModern: {
		Primary:   MustColor("#2d3436"),
		Secondary: MustColor("#0984e3"),
		Accent:    MustColor("#00b894"),
		Text:      MustColor("#2d3436"),
		Muted:     MustColor("#b2bec3"),
		Series: []Color{
			MustColor("#0984e3"), MustColor("#00b894"), MustColor("#fdcb6e"),
			MustColor("#e17055"), MustColor("#6c5ce7"),
		},
	},
	SchemeVibrant: {
		Primary:   MustColor("#e74c3c"),
		Secondary: MustColor("#f39c12"),
		Accent:    MustColor("#9b59b6"),
		Text:      MustColor("#2c3e50"),
		Muted:     MustColor("#ecf0f1"),
		Series: []Color{
			MustColor("#e74c3c"), MustColor("#f39c12"), MustColor("#2ecc71"),
			MustColor("#3498db"), MustColor("#9b59b6"),
		},
	},
	SchemeMonochrome: {
		Primary:   MustColor("#111111"),
		Secondary: MustColor("#555555"),
		Accent:    MustColor("#888888"),
		Text:      MustColor("#111111"),
		Muted:     MustColor("#cccccc"),
		Series: []Color{
			MustColor("#111111"), MustColor("#444444"), MustColor("#777777"),
			MustColor("#aaaaaa"), MustColor("#dddddd"),
		},
	},
	SchemeNature: {
		Primary:   MustColor("#2d5016"),
		Secondary: MustColor("#538d22"),
		Accent:    MustColor("#73a942"),
		Text:      MustColor("#1e3a0f"),
		Muted:     MustColor("#aad576"),
		Series: []Color{
			MustColor("#2d5016"), MustColor("#538d22"), MustColor("#73a942"),
			MustColor("#aad576"), MustColor("#143601"),
		},
	},
}

// PaletteFor resolves a scheme name; the empty scheme means classic.
func PaletteFor(s Scheme) (Palette, error) {
	if s == "" {
		s = SchemeClassic
	}
	p, ok := schemes[s]
	if !ok {
		return Palette{}, fmt.Errorf("unknown color scheme %q", s)
	}
	return p, nil
}
