package model

import (
	"fmt"
	"sort"

	"github.com/quillpdf/quill/style"
)

// Template names a preconfigured document skeleton: page geometry,
// scheme, fonts, and furniture, with no content. Callers fill Sections.
type Template string

const (
	TemplateMinimal      Template = "minimal"
	TemplateReport       Template = "report"
	TemplateCorporate    Template = "corporate"
	TemplateCreative     Template = "creative"
	TemplateAcademic     Template = "academic"
	TemplateMagazine     Template = "magazine"
	TemplateNewspaper    Template = "newspaper"
	TemplateBrochure     Template = "brochure"
	TemplateInvoice      Template = "invoice"
	TemplateCertificate  Template = "certificate"
	TemplatePresentation Template = "presentation"
)

func inch(v float64) float64 { return v * 72 }

func uniformMargins(v float64) Margins {
	return Margins{Top: v, Bottom: v, Left: v, Right: v}
}

var templates = map[Template]func() *Document{
	TemplateMinimal: func() *Document {
		return &Document{
			Page:  PageSetup{Size: PageA4, Orientation: Portrait, Margins: uniformMargins(inch(1))},
			Style: StyleDefaults{Font: "Helvetica", Size: 11, LineHeight: 1.2, Scheme: style.SchemeClassic},
		}
	},
	TemplateReport: func() *Document {
		return &Document{
			Page:                PageSetup{Size: PageA4, Orientation: Portrait, Margins: uniformMargins(inch(1))},
			Style:               StyleDefaults{Font: "Helvetica", Size: 11, LineHeight: 1.25, Scheme: style.SchemeCorporateBlue},
			TOC:                 true,
			SectionNumbering:    true,
			BreakBeforeSections: true,
			Footer:              &Footer{Alignment: style.AlignCenter, ShowPageNumber: true},
		}
	},
	TemplateCorporate: func() *Document {
		return &Document{
			Page:   PageSetup{Size: PageLetter, Orientation: Portrait, Margins: uniformMargins(inch(1))},
			Style:  StyleDefaults{Font: "Helvetica", Size: 11, LineHeight: 1.2, Scheme: style.SchemeCorporateBlue},
			Footer: &Footer{Alignment: style.AlignRight, ShowPageNumber: true},
			Border: &Border{Style: BorderSingle, Color: style.MustColor("#1f4e79"), Width: 1, Inset: inch(0.3)},
		}
	},
	TemplateCreative: func() *Document {
		return &Document{
			Page:  PageSetup{Size: PageA4, Orientation: Portrait, Margins: uniformMargins(inch(0.75))},
			Style: StyleDefaults{Font: "Helvetica", Size: 11, LineHeight: 1.35, Scheme: style.SchemeVibrant},
		}
	},
	TemplateAcademic: func() *Document {
		return &Document{
			Page:             PageSetup{Size: PageA4, Orientation: Portrait, Margins: uniformMargins(inch(1.2))},
			Style:            StyleDefaults{Font: "Times-Roman", Size: 12, LineHeight: 1.5, Scheme: style.SchemeClassic},
			TOC:              true,
			SectionNumbering: true,
			Footer:           &Footer{Alignment: style.AlignCenter, ShowPageNumber: true},
		}
	},
	TemplateMagazine: func() *Document {
		return &Document{
			Page:  PageSetup{Size: PageA4, Orientation: Portrait, Margins: uniformMargins(inch(0.6))},
			Style: StyleDefaults{Font: "Helvetica", Size: 10, LineHeight: 1.25, Scheme: style.SchemeModern},
		}
	},
	TemplateNewspaper: func() *Document {
		return &Document{
			Page:  PageSetup{Size: PageA4, Orientation: Portrait, Margins: uniformMargins(inch(0.5))},
			Style: StyleDefaults{Font: "Times-Roman", Size: 9.5, LineHeight: 1.15, Scheme: style.SchemeMonochrome},
		}
	},
	TemplateBrochure: func() *Document {
		return &Document{
			Page:  PageSetup{Size: PageA4, Orientation: Landscape, Margins: uniformMargins(inch(0.5))},
			Style: StyleDefaults{Font: "Helvetica", Size: 10, LineHeight: 1.3, Scheme: style.SchemeNature},
		}
	},
	TemplateInvoice: func() *Document {
		return &Document{
			Page:   PageSetup{Size: PageLetter, Orientation: Portrait, Margins: uniformMargins(inch(0.75))},
			Style:  StyleDefaults{Font: "Helvetica", Size: 10, LineHeight: 1.2, Scheme: style.SchemeCorporateBlue},
			Footer: &Footer{Alignment: style.AlignCenter, ShowPageNumber: true},
		}
	},
	TemplateCertificate: func() *Document {
		return &Document{
			Page:   PageSetup{Size: PageLetter, Orientation: Landscape, Margins: uniformMargins(inch(1))},
			Style:  StyleDefaults{Font: "Times-Roman", Size: 14, LineHeight: 1.4, Scheme: style.SchemeClassic},
			Border: &Border{Style: BorderDecorative, Color: style.MustColor("#1f4e79"), Width: 2, Inset: inch(0.4)},
		}
	},
	TemplatePresentation: func() *Document {
		return &Document{
			Page:                PageSetup{Size: PageA4, Orientation: Landscape, Margins: uniformMargins(inch(0.8))},
			Style:               StyleDefaults{Font: "Helvetica", Size: 14, LineHeight: 1.3, Scheme: style.SchemeModern},
			BreakBeforeSections: true,
		}
	},
}

// FromTemplate returns a fresh document preconfigured for the named
// template. The returned value is independently mutable.
func FromTemplate(name Template) (*Document, error) {
	mk, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	return mk(), nil
}

// TemplateNames lists the available templates in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for t := range templates {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}
