package render

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/quillpdf/quill/flow"
	"github.com/quillpdf/quill/ir/semantic"
)

// embedImage converts raster data into an image XObject. JPEG passes
// through untouched under DCTDecode; PNG is decoded to raw samples
// under FlateDecode, with the alpha channel split into a soft mask.
// Results are cached per source slice so repeated placements (page
// watermarks) share one object.
func (r *Renderer) embedImage(data []byte, format string) (*semantic.Image, error) {
	if len(data) == 0 {
		return nil, &flow.ResourceError{Err: fmt.Errorf("empty image data")}
	}
	key := &data[0]
	if img, ok := r.imageCache[key]; ok {
		return img, nil
	}
	var (
		img *semantic.Image
		err error
	)
	switch format {
	case "jpeg":
		img, err = embedJPEG(data)
	case "png":
		img, err = embedPNG(data)
	default:
		err = &flow.ResourceError{Err: fmt.Errorf("unsupported image format %q", format)}
	}
	if err != nil {
		return nil, err
	}
	r.imageCache[key] = img
	return img, nil
}

func embedJPEG(data []byte) (*semantic.Image, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &flow.ResourceError{Err: err}
	}
	colorSpace := "DeviceRGB"
	switch cfg.ColorModel {
	case color.GrayModel:
		colorSpace = "DeviceGray"
	case color.CMYKModel:
		colorSpace = "DeviceCMYK"
	}
	return &semantic.Image{
		Width:            cfg.Width,
		Height:           cfg.Height,
		ColorSpace:       colorSpace,
		BitsPerComponent: 8,
		Filter:           "DCTDecode",
		Data:             data,
	}, nil
}

func embedPNG(data []byte) (*semantic.Image, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &flow.ResourceError{Err: err}
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, ca := src.At(x, y).RGBA()
			rgb = append(rgb, byte(cr>>8), byte(cg>>8), byte(cb>>8))
			a := byte(ca >> 8)
			alpha = append(alpha, a)
			if a != 0xFF {
				hasAlpha = true
			}
		}
	}

	img := &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Filter:           "FlateDecode",
		Data:             deflate(rgb),
	}
	if hasAlpha {
		img.SMask = &semantic.Image{
			Width:            w,
			Height:           h,
			ColorSpace:       "DeviceGray",
			BitsPerComponent: 8,
			Filter:           "FlateDecode",
			Data:             deflate(alpha),
		}
	}
	return img, nil
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}
