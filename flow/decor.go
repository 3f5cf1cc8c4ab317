package flow

import (
	"strconv"

	"github.com/quillpdf/quill/richtext"
	"github.com/quillpdf/quill/style"
)

// prepareWatermark loads and sizes an image watermark once, before any
// page exists, so resource failures surface early.
func (e *Engine) prepareWatermark() error {
	wm := e.doc.Watermark
	if wm == nil || (wm.ImagePath == "" && len(wm.ImageData) == 0) {
		return nil
	}
	data, format, pxW, pxH, err := e.loadImage(wm.ImagePath, wm.ImageData)
	if err != nil {
		return err
	}
	w, h := imageBox(0, 0, pxW, pxH, e.pageW*0.5)
	if h > e.pageH*0.5 {
		w *= e.pageH * 0.5 / h
		h = e.pageH * 0.5
	}
	e.wmData, e.wmFormat, e.wmW, e.wmH = data, format, w, h
	return nil
}

// decoratePage attaches the fixed page furniture. Paint order is owned
// by the page's slice layout: background, watermark, border, content,
// footnotes, then header and footer.
func (e *Engine) decoratePage(p *Page) {
	e.decorateBackground(p)
	e.decorateWatermark(p)
	e.decorateBorder(p)
	e.renderPageNotes(p)
	if !p.cover {
		e.decorateFurniture(p)
	}
}

func (e *Engine) decorateBackground(p *Page) {
	bg := e.doc.Background
	if bg == nil {
		return
	}
	if bg.Gradient == nil {
		fill := bg.Color
		p.Background = append(p.Background, RectItem{X: 0, Y: 0, W: e.pageW, H: e.pageH, Fill: &fill})
		return
	}
	// A banded approximation keeps the gradient inside plain fill
	// operators.
	const bands = 48
	g := bg.Gradient
	for i := 0; i < bands; i++ {
		f := float64(i) / float64(bands-1)
		fill := style.Color{
			R: g.Start.R + (g.End.R-g.Start.R)*f,
			G: g.Start.G + (g.End.G-g.Start.G)*f,
			B: g.Start.B + (g.End.B-g.Start.B)*f,
			A: 1,
		}
		if g.Horizontal {
			w := e.pageW / bands
			p.Background = append(p.Background, RectItem{X: float64(i) * w, Y: 0, W: w + 0.5, H: e.pageH, Fill: &fill})
		} else {
			h := e.pageH / bands
			p.Background = append(p.Background, RectItem{X: 0, Y: e.pageH - float64(i+1)*h, W: e.pageW, H: h + 0.5, Fill: &fill})
		}
	}
}

func (e *Engine) decorateWatermark(p *Page) {
	wm := e.doc.Watermark
	if wm == nil {
		return
	}
	opacity := wm.Opacity
	if opacity == 0 {
		opacity = 0.2
	}
	if e.wmData != nil {
		p.Watermark = append(p.Watermark, ImageItem{
			X: (e.pageW - e.wmW) / 2, Y: (e.pageH - e.wmH) / 2,
			W: e.wmW, H: e.wmH,
			Data: e.wmData, Format: e.wmFormat,
			Opacity: opacity,
		})
		return
	}
	size := wm.FontSize
	if size == 0 {
		size = 40
	}
	rotation := wm.Rotation
	if rotation == 0 {
		rotation = 45
	}
	color := wm.Color
	if color.IsZero() {
		color = style.MustColor("#808080")
	}
	font := variantFont(e.fonts, e.res.Defaults.Font, true, false, false)
	w := e.fonts.Measure(font, size, wm.Text)
	p.Watermark = append(p.Watermark, TextItem{
		X: e.pageW/2 - w/2, Y: e.pageH / 2,
		Runs:    []TextRun{{Text: wm.Text, Font: font, Size: size, Color: color}},
		Rotate:  rotation,
		Opacity: opacity,
	})
}

func (e *Engine) decorateBorder(p *Page) {
	b := e.doc.Border
	if b == nil {
		return
	}
	color := b.Color
	if color.IsZero() {
		color = e.pal.Primary
	}
	width := b.Width
	if width == 0 {
		width = 1.5
	}
	inset := b.Inset
	if inset == 0 {
		inset = 14.4
	}
	outer := RectItem{
		X: inset, Y: inset, W: e.pageW - 2*inset, H: e.pageH - 2*inset,
		Stroke: &color, LineWidth: width,
	}
	p.Border = append(p.Border, outer)

	switch b.Style {
	case "", "single":
	default:
		innerW := width * 0.5
		gap := 3.0
		if b.Style == "decorative" {
			gap = 5
		}
		p.Border = append(p.Border, RectItem{
			X: inset + gap, Y: inset + gap,
			W: e.pageW - 2*(inset+gap), H: e.pageH - 2*(inset+gap),
			Stroke: &color, LineWidth: innerW,
		})
		if b.Style == "decorative" {
			const sq = 6.0
			for _, c := range [][2]float64{
				{inset, inset},
				{e.pageW - inset - sq, inset},
				{inset, e.pageH - inset - sq},
				{e.pageW - inset - sq, e.pageH - inset - sq},
			} {
				fill := color
				p.Border = append(p.Border, RectItem{X: c[0], Y: c[1], W: sq, H: sq, Fill: &fill})
			}
		}
	}
}

func (e *Engine) decorateFurniture(p *Page) {
	rs := e.res.Defaults
	rs.Size -= 2
	rs.Color = e.pal.Muted

	if h := p.header; h != nil && h.Text != "" {
		lines := wrapSpans(e.fonts, richtext.Plain(h.Text), rs, e.contentW())
		if len(lines) > 0 {
			y := e.pageH - e.m.Top/2
			x := lineX(h.Alignment, e.m.Left, e.contentW(), lines[0].Width)
			p.Furniture = append(p.Furniture, TextItem{X: x, Y: y, Runs: lines[0].Runs})
			p.Furniture = append(p.Furniture, LineItem{
				X1: e.m.Left, Y1: e.pageH - e.m.Top + 6,
				X2: e.pageW - e.m.Right, Y2: e.pageH - e.m.Top + 6,
				Color: e.pal.Muted, Width: 0.5,
			})
		}
	}

	f := p.footer
	if f == nil {
		return
	}
	y := e.m.Bottom / 2
	if f.Text != "" {
		lines := wrapSpans(e.fonts, richtext.Plain(f.Text), rs, e.contentW())
		if len(lines) > 0 {
			x := lineX(f.Alignment, e.m.Left, e.contentW(), lines[0].Width)
			p.Furniture = append(p.Furniture, TextItem{X: x, Y: y, Runs: lines[0].Runs})
		}
	}
	if f.ShowPageNumber {
		// The total stays deferred; right anchoring keeps the patched
		// text flush with the margin.
		p.Furniture = append(p.Furniture, TextItem{
			X: e.pageW - e.m.Right, Y: y, AnchorRight: true,
			Runs: []TextRun{
				{Text: "Page " + strconv.Itoa(p.Index+1) + " of ", Font: rs.Font, Size: rs.Size, Color: rs.Color},
				{Text: "00", Font: rs.Font, Size: rs.Size, Color: rs.Color, Ref: "pages.total"},
			},
		})
	}
}
