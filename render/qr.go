package render

import (
	qrcode "github.com/skip2/go-qrcode"

	"github.com/quillpdf/quill/builder"
	"github.com/quillpdf/quill/flow"
	"github.com/quillpdf/quill/model"
)

func qrLevel(l model.QRLevel) qrcode.RecoveryLevel {
	switch l {
	case model.QRLow:
		return qrcode.Low
	case model.QRHigh:
		return qrcode.High
	case model.QRHighest:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// renderQR encodes the content and draws the dark modules as filled
// rectangles, keeping the symbol fully vector.
func (r *Renderer) renderQR(pb *builder.Page, it flow.QRItem) error {
	code, err := qrcode.New(it.Content, qrLevel(it.Level))
	if err != nil {
		return &flow.ResourceError{Err: err}
	}
	bitmap := code.Bitmap() // includes the quiet zone
	n := len(bitmap)
	if n == 0 {
		return nil
	}
	module := it.Size / float64(n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if !bitmap[row][col] {
				continue
			}
			x := it.X + float64(col)*module
			y := it.Y + it.Size - float64(row+1)*module
			// A hair of overlap avoids white seams between modules.
			pb.DrawRect(x, y, module+0.05, module+0.05, builder.PathOptions{
				Fill: true, FillColor: it.Color,
			})
		}
	}
	return nil
}
