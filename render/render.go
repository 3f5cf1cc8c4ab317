// Package render serializes a laid-out page sequence into a semantic
// document. Rendering runs two passes: the first verifies every
// deferred reference has a value, the second emits content streams
// with the placeholders patched.
package render

import (
	"time"

	"github.com/quillpdf/quill/builder"
	"github.com/quillpdf/quill/flow"
	"github.com/quillpdf/quill/fonts"
	"github.com/quillpdf/quill/ir/raw"
	"github.com/quillpdf/quill/ir/semantic"
	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/observability"
)

// producerName identifies generated files in the info dictionary.
const producerName = "quill"

// Renderer turns layout results into semantic documents. Safe to reuse
// across documents sharing one font set.
type Renderer struct {
	Fonts *fonts.Set
	Log   observability.Logger

	imageCache map[*byte]*semantic.Image
}

func New(set *fonts.Set, log observability.Logger) *Renderer {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Renderer{Fonts: set, Log: log, imageCache: make(map[*byte]*semantic.Image)}
}

// Render produces the semantic document for a layout result.
func (r *Renderer) Render(res *flow.Result) (*semantic.Document, error) {
	if err := r.checkRefs(res); err != nil {
		return nil, err
	}

	doc := builder.NewDoc()
	doc.SetInfo(infoDict(res.Doc))
	for _, name := range r.Fonts.Names() {
		f, _ := r.Fonts.Lookup(name)
		doc.RegisterFont(name, f)
	}
	if enc := res.Doc.Encryption; enc != nil {
		doc.SetEncryption(enc.OwnerPassword, enc.UserPassword, permissions(enc.Permissions))
	}

	for _, page := range res.Pages {
		pb := doc.NewPage(res.PageW, res.PageH)
		for _, group := range [][]flow.Item{
			page.Background, page.Watermark, page.Border,
			page.Content, page.Footnotes, page.Furniture,
		} {
			for _, item := range group {
				if err := r.renderItem(pb, item, res.Refs); err != nil {
					return nil, err
				}
			}
		}
	}

	r.Log.Debug("render complete", observability.Int("pages", len(res.Pages)))
	return doc.Build(), nil
}

// checkRefs is the first pass: every placeholder must resolve.
func (r *Renderer) checkRefs(res *flow.Result) error {
	for _, page := range res.Pages {
		for _, group := range [][]flow.Item{
			page.Background, page.Watermark, page.Border,
			page.Content, page.Footnotes, page.Furniture,
		} {
			for _, item := range group {
				ti, ok := item.(flow.TextItem)
				if !ok {
					continue
				}
				for _, run := range ti.Runs {
					if run.Ref == "" {
						continue
					}
					if _, ok := res.Refs.Get(run.Ref); !ok {
						return &UnresolvedReferenceError{ID: run.Ref}
					}
				}
			}
		}
	}
	return nil
}

func (r *Renderer) renderItem(pb *builder.Page, item flow.Item, refs *flow.RefTable) error {
	switch it := item.(type) {
	case flow.TextItem:
		r.renderText(pb, it, refs)
	case flow.RectItem:
		opts := builder.PathOptions{LineWidth: it.LineWidth}
		if it.Fill != nil {
			opts.Fill = true
			opts.FillColor = *it.Fill
		}
		if it.Stroke != nil {
			opts.Stroke = true
			opts.StrokeColor = *it.Stroke
		}
		pb.DrawRect(it.X, it.Y, it.W, it.H, opts)
	case flow.LineItem:
		opts := builder.PathOptions{StrokeColor: it.Color, LineWidth: it.Width}
		if it.Dashed {
			opts.DashPattern = []float64{3, 2}
		}
		pb.DrawLine(it.X1, it.Y1, it.X2, it.Y2, opts)
	case flow.ImageItem:
		img, err := r.embedImage(it.Data, it.Format)
		if err != nil {
			return err
		}
		pb.DrawImage(img, it.X, it.Y, it.W, it.H, it.Opacity)
	case flow.ChartItem:
		r.renderChart(pb, it)
	case flow.QRItem:
		return r.renderQR(pb, it)
	}
	return nil
}

// renderText patches deferred runs and walks the baseline run by run.
func (r *Renderer) renderText(pb *builder.Page, it flow.TextItem, refs *flow.RefTable) {
	runs := make([]flow.TextRun, len(it.Runs))
	copy(runs, it.Runs)
	total := 0.0
	for i := range runs {
		if runs[i].Ref != "" {
			if v, ok := refs.Get(runs[i].Ref); ok {
				runs[i].Text = v
			}
		}
		total += r.Fonts.Measure(runs[i].Font, runs[i].Size, runs[i].Text)
	}

	x := it.X
	if it.AnchorRight {
		x -= total
	}
	for _, run := range runs {
		w := r.Fonts.Measure(run.Font, run.Size, run.Text)
		pb.DrawText(run.Text, x, it.Y, builder.TextOptions{
			Font:    run.Font,
			Size:    run.Size,
			Color:   run.Color,
			Rise:    run.Rise,
			Rotate:  it.Rotate,
			Opacity: it.Opacity,
		})
		if run.Link != "" {
			pb.DrawLine(x, it.Y-1.5, x+w, it.Y-1.5, builder.PathOptions{
				StrokeColor: run.Color, LineWidth: 0.5,
			})
		}
		x += w
	}
}

func infoDict(doc *model.Document) *semantic.DocumentInfo {
	created := doc.Meta.Created
	if created.IsZero() {
		// A fixed epoch keeps byte-identical output for identical
		// documents that never set a creation date.
		created = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &semantic.DocumentInfo{
		Title:        doc.Meta.Title,
		Author:       doc.Meta.Author,
		Subject:      doc.Meta.Subject,
		Keywords:     doc.Meta.Keywords,
		Creator:      producerName,
		Producer:     producerName,
		CreationDate: created,
	}
}

func permissions(p model.Permissions) raw.Permissions {
	return raw.Permissions{
		Print:             p.Print,
		Modify:            p.Modify,
		Copy:              p.Copy,
		ModifyAnnotations: p.Annotate,
	}
}
