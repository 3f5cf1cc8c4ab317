package flow

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/richtext"
	"github.com/quillpdf/quill/style"
)

func (e *Engine) layoutElement(el model.Element) error {
	switch el := el.(type) {
	case model.Paragraph:
		return e.layoutParagraph(el)
	case model.Table:
		return e.layoutTable(el)
	case model.Image:
		return e.layoutImage(el)
	case model.Chart:
		return e.layoutChart(el)
	case model.List:
		return e.layoutList(el)
	case model.TextBox:
		return e.layoutTextBox(el)
	case model.Callout:
		return e.layoutCallout(el)
	case model.QRCode:
		return e.layoutQRCode(el)
	case model.SignatureBlock:
		return e.layoutSignature(el)
	case model.FormField:
		return e.layoutFormField(el)
	case model.Footnote:
		return e.layoutFootnote(el)
	case model.Appendix:
		// Collected up front; placed in the synthesized appendix section.
		return nil
	case model.PageBreak:
		e.startPage()
		return nil
	case model.ColumnBreak:
		e.ensurePage()
		e.nextColumn()
		return nil
	default:
		return fmt.Errorf("unhandled element %T", el)
	}
}

func (e *Engine) layoutParagraph(p model.Paragraph) error {
	var spans []richtext.Span
	switch {
	case p.Markdown:
		spans = richtext.ParseInline(p.Text)
	case p.HTML:
		var err error
		spans, err = richtext.ParseHTML(p.Text)
		if err != nil {
			return &ResourceError{Err: err}
		}
	default:
		spans = richtext.Plain(p.Text)
	}
	if len(spans) == 0 {
		return nil
	}
	if p.Level > 0 {
		return e.placeHeading(richtext.Text(spans), p.Level)
	}
	rs, err := e.resolve(p.Style)
	if err != nil {
		return err
	}
	lines := wrapSpans(e.fonts, spans, rs, e.colW)
	e.ensurePage()
	e.spaceBefore(rs.SpaceBefore)
	if err := e.placeLines(lines, rs, 0); err != nil {
		return err
	}
	after := rs.SpaceAfter
	if after == 0 {
		after = 6
	}
	e.spaceAfter(after)
	return nil
}

func (e *Engine) layoutList(l model.List) error {
	rs, err := e.resolve(l.Style)
	if err != nil {
		return err
	}
	const indent, childIndent = 16.0, 32.0
	for i, item := range l.Items {
		marker := "•"
		if l.Kind == model.ListNumber {
			marker = fmt.Sprintf("%d.", i+1)
		}
		if err := e.placeListItem(marker, item.Text, rs, indent); err != nil {
			return err
		}
		for _, child := range item.Children {
			childMarker := "–"
			if l.Kind == model.ListNumber {
				childMarker = "•"
			}
			if err := e.placeListItem(childMarker, child.Text, rs, childIndent); err != nil {
				return err
			}
		}
	}
	e.spaceAfter(6)
	return nil
}

// placeListItem draws the marker beside the first wrapped line; runover
// lines hang at the text indent.
func (e *Engine) placeListItem(marker, text string, rs style.Resolved, indent float64) error {
	lines := wrapSpans(e.fonts, richtext.ParseInline(text), rs, e.colW-indent)
	if len(lines) == 0 {
		return nil
	}
	lh := rs.LineAdvance()
	if err := e.ensureSpace(lh, "list item"); err != nil {
		return err
	}
	e.addContent(TextItem{X: e.x + indent - 12, Y: e.y - rs.Size, Runs: []TextRun{{
		Text: marker, Font: rs.Font, Size: rs.Size, Color: rs.Color,
	}}})
	e.addContent(TextItem{X: e.x + indent, Y: e.y - rs.Size, Runs: lines[0].Runs})
	e.y -= lh
	return e.placeLines(lines[1:], rs, indent)
}

func (e *Engine) loadImage(path string, data []byte) ([]byte, string, int, int, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, "", 0, 0, &ResourceError{Path: path, Err: err}
		}
		data = b
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", 0, 0, &ResourceError{Path: path, Err: err}
	}
	if format != "jpeg" && format != "png" {
		return nil, "", 0, 0, &ResourceError{Path: path, Err: fmt.Errorf("unsupported image format %q", format)}
	}
	return data, format, cfg.Width, cfg.Height, nil
}

// imageBox fits intrinsic pixel dimensions into the requested box,
// locking the aspect ratio when a side is unspecified.
func imageBox(wantW, wantH float64, pxW, pxH int, maxW float64) (w, h float64) {
	aspect := float64(pxW) / float64(pxH)
	switch {
	case wantW > 0 && wantH > 0:
		w, h = wantW, wantH
	case wantW > 0:
		w, h = wantW, wantW/aspect
	case wantH > 0:
		w, h = wantH*aspect, wantH
	default:
		w = float64(pxW)
		h = float64(pxH)
	}
	if w > maxW {
		h *= maxW / w
		w = maxW
	}
	return w, h
}

func (e *Engine) layoutImage(img model.Image) error {
	data, format, pxW, pxH, err := e.loadImage(img.Path, img.Data)
	if err != nil {
		return err
	}
	w, h := imageBox(img.Width, img.Height, pxW, pxH, e.colW)

	captionH := 0.0
	var captionLines []Line
	var captionStyle style.Resolved
	if img.Caption != "" {
		captionStyle = e.res.Defaults
		captionStyle.Size -= 1.5
		captionStyle.Color = e.pal.Muted
		captionStyle.Font = variantFont(e.fonts, captionStyle.Font, false, true, false)
		captionLines = wrapSpans(e.fonts, richtext.Plain(img.Caption), captionStyle, e.colW)
		captionH = float64(len(captionLines))*captionStyle.LineAdvance() + 4
	}

	if err := e.ensureSpace(h+captionH, "image"); err != nil {
		return err
	}
	x := lineX(img.Align, e.x, e.colW, w)
	e.addContent(ImageItem{X: x, Y: e.y - h, W: w, H: h, Data: data, Format: format})
	e.y -= h
	if len(captionLines) > 0 {
		e.y -= 4
		captionStyle.Alignment = style.AlignCenter
		if err := e.placeLines(captionLines, captionStyle, 0); err != nil {
			return err
		}
	}
	e.spaceAfter(8)
	return nil
}

func (e *Engine) layoutChart(c model.Chart) error {
	w := c.Width
	if w <= 0 || w > e.colW {
		w = e.colW
	}
	h := c.Height
	if h <= 0 {
		h = 220
	}
	if err := e.ensureSpace(h, "chart"); err != nil {
		return err
	}
	e.addContent(ChartItem{
		X: e.x, Y: e.y - h, W: w, H: h,
		Chart:     c,
		Palette:   e.pal,
		LabelFont: e.res.Defaults.Font,
		LabelSize: 8,
	})
	e.y -= h
	e.spaceAfter(8)
	return nil
}

func (e *Engine) layoutTextBox(tb model.TextBox) error {
	rs, err := e.resolve(tb.Style)
	if err != nil {
		return err
	}
	w := tb.Width
	if w <= 0 || w > e.colW {
		w = e.colW
	}
	pad := tb.Padding
	if pad <= 0 {
		pad = 8
	}
	lines := wrapSpans(e.fonts, richtext.Plain(tb.Text), rs, w-2*pad)
	h := float64(len(lines))*rs.LineAdvance() + 2*pad
	if err := e.ensureSpace(h, "text box"); err != nil {
		return err
	}

	border := tb.BorderColor
	if border.IsZero() {
		border = e.pal.Secondary
	}
	rect := RectItem{X: e.x, Y: e.y - h, W: w, H: h, Stroke: &border, LineWidth: 0.8}
	if !tb.FillColor.IsZero() {
		fill := tb.FillColor
		rect.Fill = &fill
	}
	e.addContent(rect)

	y := e.y - pad
	for _, ln := range lines {
		e.addContent(TextItem{X: e.x + pad, Y: y - rs.Size, Runs: ln.Runs})
		y -= rs.LineAdvance()
	}
	e.y -= h
	e.spaceAfter(8)
	return nil
}

var calloutAccents = map[model.CalloutKind][2]string{
	model.CalloutInfo:    {"#3498db", "#eaf4fd"},
	model.CalloutWarning: {"#f39c12", "#fef5e7"},
	model.CalloutSuccess: {"#2ecc71", "#eafaf1"},
	model.CalloutError:   {"#e74c3c", "#fdedec"},
}

var calloutTitles = map[model.CalloutKind]string{
	model.CalloutInfo:    "Note",
	model.CalloutWarning: "Warning",
	model.CalloutSuccess: "Success",
	model.CalloutError:   "Error",
}

func (e *Engine) layoutCallout(c model.Callout) error {
	rs, err := e.resolve(c.Style)
	if err != nil {
		return err
	}
	accent := style.MustColor(calloutAccents[c.Kind][0])
	fill := style.MustColor(calloutAccents[c.Kind][1])

	const pad, bar = 8.0, 4.0
	title := c.Title
	if title == "" {
		title = calloutTitles[c.Kind]
	}
	titleStyle := rs
	titleStyle.Font = variantFont(e.fonts, rs.Font, true, false, false)
	titleStyle.Color = accent

	textW := e.colW - bar - 2*pad
	titleLines := wrapSpans(e.fonts, richtext.Plain(title), titleStyle, textW)
	bodyLines := wrapSpans(e.fonts, richtext.ParseInline(c.Text), rs, textW)
	h := float64(len(titleLines))*titleStyle.LineAdvance() +
		float64(len(bodyLines))*rs.LineAdvance() + 2*pad + 2
	if err := e.ensureSpace(h, "callout"); err != nil {
		return err
	}

	e.addContent(RectItem{X: e.x, Y: e.y - h, W: e.colW, H: h, Fill: &fill})
	e.addContent(RectItem{X: e.x, Y: e.y - h, W: bar, H: h, Fill: &accent})

	y := e.y - pad
	for _, ln := range titleLines {
		e.addContent(TextItem{X: e.x + bar + pad, Y: y - titleStyle.Size, Runs: ln.Runs})
		y -= titleStyle.LineAdvance()
	}
	y -= 2
	for _, ln := range bodyLines {
		e.addContent(TextItem{X: e.x + bar + pad, Y: y - rs.Size, Runs: ln.Runs})
		y -= rs.LineAdvance()
	}
	e.y -= h
	e.spaceAfter(8)
	return nil
}

func (e *Engine) layoutQRCode(q model.QRCode) error {
	size := q.Size
	if size <= 0 {
		size = 96
	}
	if size > e.colW {
		size = e.colW
	}
	captionH := 0.0
	var captionLines []Line
	var cs style.Resolved
	if q.Caption != "" {
		cs = e.res.Defaults
		cs.Size -= 2
		cs.Color = e.pal.Muted
		captionLines = wrapSpans(e.fonts, richtext.Plain(q.Caption), cs, e.colW)
		captionH = float64(len(captionLines))*cs.LineAdvance() + 4
	}
	if err := e.ensureSpace(size+captionH, "qr code"); err != nil {
		return err
	}
	x := lineX(q.Align, e.x, e.colW, size)
	e.addContent(QRItem{X: x, Y: e.y - size, Size: size, Content: q.Content, Level: q.Level, Color: e.pal.Text})
	e.y -= size
	if len(captionLines) > 0 {
		e.y -= 4
		cs.Alignment = style.AlignCenter
		if err := e.placeLines(captionLines, cs, 0); err != nil {
			return err
		}
	}
	e.spaceAfter(8)
	return nil
}

func (e *Engine) layoutSignature(s model.SignatureBlock) error {
	rs := e.res.Defaults
	ruleW := 220.0
	if ruleW > e.colW {
		ruleW = e.colW
	}
	h := 24 + rs.Size + 2
	if s.Title != "" {
		h += rs.Size + 2
	}
	if s.ShowDate {
		h += 24 + rs.Size + 2
	}
	h += 4
	if err := e.ensureSpace(h, "signature block"); err != nil {
		return err
	}

	y := e.y - 24 // room to sign above the rule
	e.addContent(LineItem{X1: e.x, Y1: y, X2: e.x + ruleW, Y2: y, Color: rs.Color, Width: 0.8})
	y -= rs.Size + 2
	e.addContent(TextItem{X: e.x, Y: y, Runs: []TextRun{{
		Text: s.Name, Font: variantFont(e.fonts, rs.Font, true, false, false), Size: rs.Size, Color: rs.Color,
	}}})
	if s.Title != "" {
		y -= rs.Size + 2
		e.addContent(TextItem{X: e.x, Y: y, Runs: []TextRun{{
			Text: s.Title, Font: rs.Font, Size: rs.Size - 1, Color: e.pal.Muted,
		}}})
	}
	if s.ShowDate {
		y -= 24
		e.addContent(LineItem{X1: e.x, Y1: y, X2: e.x + ruleW*0.6, Y2: y, Color: rs.Color, Width: 0.8})
		y -= rs.Size + 2
		e.addContent(TextItem{X: e.x, Y: y, Runs: []TextRun{{
			Text: "Date", Font: rs.Font, Size: rs.Size - 1, Color: e.pal.Muted,
		}}})
	}
	e.y = y - 4
	e.spaceAfter(8)
	return nil
}

func (e *Engine) layoutFormField(f model.FormField) error {
	rs := e.res.Defaults
	lh := rs.LineAdvance()
	if err := e.ensureSpace(lh+6, "form field"); err != nil {
		return err
	}
	baseline := e.y - rs.Size
	labelW := e.fonts.Measure(rs.Font, rs.Size, f.Label+": ")

	switch f.Kind {
	case model.FieldCheckbox:
		box := rs.Size * 0.9
		e.addContent(RectItem{X: e.x, Y: baseline, W: box, H: box, Stroke: &rs.Color, LineWidth: 0.8})
		e.addContent(TextItem{X: e.x + box + 6, Y: baseline, Runs: []TextRun{{
			Text: f.Label, Font: rs.Font, Size: rs.Size, Color: rs.Color,
		}}})
	default:
		e.addContent(TextItem{X: e.x, Y: baseline, Runs: []TextRun{{
			Text: f.Label + ":", Font: rs.Font, Size: rs.Size, Color: rs.Color,
		}}})
		ruleW := f.Width
		if ruleW <= 0 {
			ruleW = 180
		}
		if e.x+labelW+ruleW > e.x+e.colW {
			ruleW = e.colW - labelW
		}
		dashed := f.Kind == model.FieldSignature
		e.addContent(LineItem{
			X1: e.x + labelW, Y1: baseline, X2: e.x + labelW + ruleW, Y2: baseline,
			Color: rs.Color, Width: 0.6, Dashed: dashed,
		})
	}
	e.y -= lh + 6
	return nil
}
