package imaging

import (
	"errors"
	"fmt"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/qr"
)

// ErrSymbology is returned for barcode kinds RenderBarcode does not know
var ErrSymbology = errors.New("unknown barcode symbology")

// Symbologies lists the kinds accepted by RenderBarcode
var Symbologies = []string{"qr", "datamatrix", "code128"}

// RenderBarcode encodes content and centres it on a white width x height
// page with a quiet zone of a tenth of the short side. 2D codes are square,
// code128 spans the width and half the height.
func RenderBarcode(kind, content string, width, height int) (*Gray, error) {
	var (
		code barcode.Barcode
		err  error
	)
	switch kind {
	case "qr":
		code, err = qr.Encode(content, qr.M, qr.Auto)
	case "datamatrix":
		code, err = datamatrix.Encode(content)
	case "code128":
		code, err = code128.Encode(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrSymbology, kind)
	}
	if err != nil {
		return nil, err
	}

	quiet := min(width, height) / 10
	w, h := width-2*quiet, height-2*quiet
	if kind == "code128" {
		h = height / 2
	} else {
		w = min(w, h)
		h = w
	}
	code, err = barcode.Scale(code, w, h)
	if err != nil {
		return nil, err
	}

	page := NewGray(width, height)
	src := GrayFromImage(code)
	ox, oy := (width-src.Width)/2, (height-src.Height)/2
	for y := 0; y < src.Height; y++ {
		copy(page.Pix[(oy+y)*width+ox:], src.Pix[y*src.Width:(y+1)*src.Width])
	}
	return page, nil
}
