package render

import (
	"fmt"
	"math"

	"github.com/quillpdf/quill/builder"
	"github.com/quillpdf/quill/flow"
	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/style"
)

var chartAxisColor = style.MustColor("#9a9a9a")
var chartGridColor = style.MustColor("#e0e0e0")

// renderChart draws a chart item as vector primitives: axes, series
// geometry, labels, and a legend, colored from the scheme palette.
func (r *Renderer) renderChart(pb *builder.Page, it flow.ChartItem) {
	const (
		titleH  = 18.0
		labelH  = 16.0
		yAxisW  = 34.0
		rightW  = 8.0
		legendH = 12.0
	)

	font := it.LabelFont
	size := it.LabelSize
	if size <= 0 {
		size = 8
	}

	// Title across the top of the box.
	top := it.Y + it.H
	if it.Chart.Title != "" {
		tw := r.Fonts.Measure(font, size+2, it.Chart.Title)
		pb.DrawText(it.Chart.Title, it.X+(it.W-tw)/2, top-size-2, builder.TextOptions{
			Font: font, Size: size + 2, Color: it.Palette.Primary,
		})
	}

	legend := len(it.Chart.Series) > 1 || (len(it.Chart.Series) == 1 && it.Chart.Series[0].Name != "")
	plotTop := top - titleH
	if legend && it.Chart.Type != model.ChartPie {
		plotTop -= legendH
		r.renderLegend(pb, it, font, size, plotTop+legendH)
	}

	plot := plotBox{
		x: it.X + yAxisW,
		y: it.Y + labelH,
		w: it.W - yAxisW - rightW,
		h: plotTop - (it.Y + labelH),
	}

	switch it.Chart.Type {
	case model.ChartPie:
		r.renderPie(pb, it, font, size, plotBox{x: it.X, y: it.Y, w: it.W, h: plotTop - it.Y})
	case model.ChartLine:
		r.renderAxes(pb, it, font, size, plot)
		r.renderLines(pb, it, plot)
	default:
		r.renderAxes(pb, it, font, size, plot)
		r.renderBars(pb, it, plot)
	}
}

type plotBox struct{ x, y, w, h float64 }

func chartMax(c model.Chart) float64 {
	max := 0.0
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v > max {
				max = v
			}
		}
	}
	if max == 0 {
		max = 1
	}
	return max
}

func (r *Renderer) renderLegend(pb *builder.Page, it flow.ChartItem, font string, size, y float64) {
	x := it.X
	for i, s := range it.Chart.Series {
		c := it.Palette.Series[i%len(it.Palette.Series)]
		pb.DrawRect(x, y-size, size, size, builder.PathOptions{Fill: true, FillColor: c})
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("Series %d", i+1)
		}
		pb.DrawText(label, x+size+3, y-size+1, builder.TextOptions{
			Font: font, Size: size, Color: it.Palette.Text,
		})
		x += size + 6 + r.Fonts.Measure(font, size, label) + 10
	}
}

// renderAxes draws the frame, four gridlines with scale labels, and the
// category labels under the x axis.
func (r *Renderer) renderAxes(pb *builder.Page, it flow.ChartItem, font string, size float64, p plotBox) {
	max := chartMax(it.Chart)

	pb.DrawLine(p.x, p.y, p.x, p.y+p.h, builder.PathOptions{StrokeColor: chartAxisColor, LineWidth: 0.8})
	pb.DrawLine(p.x, p.y, p.x+p.w, p.y, builder.PathOptions{StrokeColor: chartAxisColor, LineWidth: 0.8})

	const ticks = 4
	for i := 1; i <= ticks; i++ {
		f := float64(i) / ticks
		gy := p.y + p.h*f
		pb.DrawLine(p.x, gy, p.x+p.w, gy, builder.PathOptions{StrokeColor: chartGridColor, LineWidth: 0.4})
		label := formatTick(max * f)
		lw := r.Fonts.Measure(font, size, label)
		pb.DrawText(label, p.x-lw-3, gy-size/2, builder.TextOptions{Font: font, Size: size, Color: it.Palette.Muted})
	}

	n := len(it.Chart.Labels)
	if n == 0 {
		return
	}
	slot := p.w / float64(n)
	for i, label := range it.Chart.Labels {
		lw := r.Fonts.Measure(font, size, label)
		x := p.x + slot*float64(i) + (slot-lw)/2
		pb.DrawText(label, x, p.y-size-3, builder.TextOptions{Font: font, Size: size, Color: it.Palette.Text})
	}
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func (r *Renderer) renderBars(pb *builder.Page, it flow.ChartItem, p plotBox) {
	max := chartMax(it.Chart)
	n := len(it.Chart.Labels)
	ns := len(it.Chart.Series)
	if n == 0 || ns == 0 {
		return
	}
	slot := p.w / float64(n)
	gap := slot * 0.2
	barW := (slot - gap) / float64(ns)

	for si, s := range it.Chart.Series {
		c := it.Palette.Series[si%len(it.Palette.Series)]
		for i, v := range s.Values {
			h := p.h * v / max
			x := p.x + slot*float64(i) + gap/2 + barW*float64(si)
			pb.DrawRect(x, p.y, barW, h, builder.PathOptions{Fill: true, FillColor: c})
		}
	}
}

func (r *Renderer) renderLines(pb *builder.Page, it flow.ChartItem, p plotBox) {
	max := chartMax(it.Chart)
	n := len(it.Chart.Labels)
	if n == 0 {
		return
	}
	slot := p.w / float64(n)

	for si, s := range it.Chart.Series {
		c := it.Palette.Series[si%len(it.Palette.Series)]
		path := &builder.Path{}
		for i, v := range s.Values {
			x := p.x + slot*(float64(i)+0.5)
			y := p.y + p.h*v/max
			if i == 0 {
				path.MoveTo(x, y)
			} else {
				path.LineTo(x, y)
			}
		}
		pb.DrawPath(path, builder.PathOptions{Stroke: true, StrokeColor: c, LineWidth: 1.2})
		// Point markers.
		for i, v := range s.Values {
			x := p.x + slot*(float64(i)+0.5)
			y := p.y + p.h*v/max
			pb.DrawRect(x-1.5, y-1.5, 3, 3, builder.PathOptions{Fill: true, FillColor: c})
		}
	}
}

// renderPie draws the first series as wedges with a side legend of
// label and percentage.
func (r *Renderer) renderPie(pb *builder.Page, it flow.ChartItem, font string, size float64, p plotBox) {
	values := it.Chart.Series[0].Values
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return
	}

	radius := math.Min(p.w*0.3, p.h/2-4)
	cx := p.x + p.w*0.3
	cy := p.y + p.h/2

	angle := math.Pi / 2 // start at twelve o'clock, clockwise
	for i, v := range values {
		if v == 0 {
			continue
		}
		sweep := v / total * 2 * math.Pi
		c := it.Palette.Series[i%len(it.Palette.Series)]
		wedge(pb, cx, cy, radius, angle, angle-sweep, c)
		angle -= sweep
	}

	// Legend with percentages beside the pie.
	lx := p.x + p.w*0.62
	ly := p.y + p.h/2 + float64(len(values))*(size+4)/2
	for i, v := range values {
		c := it.Palette.Series[i%len(it.Palette.Series)]
		label := ""
		if i < len(it.Chart.Labels) {
			label = it.Chart.Labels[i]
		}
		text := fmt.Sprintf("%s (%.1f%%)", label, v/total*100)
		pb.DrawRect(lx, ly-size, size, size, builder.PathOptions{Fill: true, FillColor: c})
		pb.DrawText(text, lx+size+4, ly-size+1, builder.TextOptions{Font: font, Size: size, Color: it.Palette.Text})
		ly -= size + 4
	}
}

// wedge fills a circular sector from a1 to a2 (radians, a2 < a1),
// approximating each arc segment of at most a quarter turn with one
// cubic curve.
func wedge(pb *builder.Page, cx, cy, r, a1, a2 float64, c style.Color) {
	path := &builder.Path{}
	path.MoveTo(cx, cy)
	path.LineTo(cx+r*math.Cos(a1), cy+r*math.Sin(a1))

	from := a1
	for from > a2 {
		to := from - math.Pi/2
		if to < a2 {
			to = a2
		}
		seg := from - to
		k := 4.0 / 3.0 * math.Tan(seg/4)
		x1, y1 := math.Cos(from), math.Sin(from)
		x2, y2 := math.Cos(to), math.Sin(to)
		path.CurveTo(
			cx+r*(x1+k*y1), cy+r*(y1-k*x1),
			cx+r*(x2-k*y2), cy+r*(y2+k*x2),
			cx+r*x2, cy+r*y2,
		)
		from = to
	}
	path.Close()
	pb.DrawPath(path, builder.PathOptions{Fill: true, FillColor: c})
}
