package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"rw402b-filter/internal/config"
	"rw402b-filter/internal/imaging"
	"rw402b-filter/internal/raster"
)

type rasterOptions struct {
	size         string
	dpi          int
	text         string
	image        string
	barcode      string
	symbology    string
	fontSize     float64
	vertical     bool
	invert       bool
	wordBreak    bool
	pages        int
	out          string
	uncompressed bool
}

func runRaster(_ context.Context, args []string, _ io.Reader, stdout io.Writer) error {
	var o rasterOptions
	fs := flag.NewFlagSet("raster", flag.ContinueOnError)
	fs.StringVar(&o.size, "size", "50x30", "label `WxH` in millimetres")
	fs.IntVar(&o.dpi, "dpi", imaging.PrinterDPI, "printer resolution")
	fs.StringVar(&o.text, "text", "", "render this text")
	fs.StringVar(&o.image, "image", "", "render this image `file` (png, jpeg, gif, bmp, webp)")
	fs.StringVar(&o.barcode, "barcode", "", "render this barcode `content`")
	fs.StringVar(&o.symbology, "symbology", "qr", "barcode kind: "+strings.Join(imaging.Symbologies, ", "))
	fs.Float64Var(&o.fontSize, "font", 24, "font size in points")
	fs.BoolVar(&o.vertical, "vertical", false, "run text along the long edge")
	fs.BoolVar(&o.invert, "invert", false, "white text on black")
	fs.BoolVar(&o.wordBreak, "wrap-words", false, "only break text lines between words")
	fs.IntVar(&o.pages, "pages", 1, "number of pages")
	fs.StringVar(&o.out, "o", "", "output `file` (default stdout)")
	fs.BoolVar(&o.uncompressed, "uncompressed", false, "write version 3 (uncompressed) raster")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var widthMM, heightMM int
	if _, err := fmt.Sscanf(o.size, "%dx%d", &widthMM, &heightMM); err != nil || widthMM <= 0 || heightMM <= 0 {
		return fmt.Errorf("bad -size %q, want WxH in mm", o.size)
	}
	w, h := mmToDots(widthMM, o.dpi), mmToDots(heightMM, o.dpi)

	page, err := renderPage(&o, w, h)
	if err != nil {
		return err
	}

	out := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	header := raster.Header{
		HWResolution: [2]int{o.dpi, o.dpi},
		NumCopies:    1,
		PageSize:     [2]int{mmToPoints(widthMM), mmToPoints(heightMM)},
		Width:        w,
		Height:       h,
		BitsPerColor: 8,
		BitsPerPixel: 8,
		BytesPerLine: w,
		ColorSpace:   raster.ColorSpacesGray,
		NumColors:    1,
	}
	header.PageSizeName = fmt.Sprintf("w%dh%d", header.PageSize[0], header.PageSize[1])

	rw, err := raster.NewWriter(out, !o.uncompressed)
	if err != nil {
		return err
	}
	for i := 0; i < o.pages; i++ {
		if err := rw.WritePage(header, page.Pix); err != nil {
			return err
		}
	}
	if err := rw.Flush(); err != nil {
		return err
	}

	slog.Debug("wrote raster", "pages", o.pages, "dots", fmt.Sprintf("%dx%d", w, h), "page_size", header.PageSizeName)
	return nil
}

func renderPage(o *rasterOptions, w, h int) (*imaging.Gray, error) {
	switch {
	case o.image != "":
		img, err := imaging.LoadImage(o.image)
		if err != nil {
			return nil, err
		}
		g := imaging.FitGray(img, w, h)
		if o.invert {
			g = imaging.Negate(g)
		}
		return g, nil
	case o.barcode != "":
		g, err := imaging.RenderBarcode(o.symbology, o.barcode, w, h)
		if err != nil {
			return nil, err
		}
		if o.invert {
			g = imaging.Negate(g)
		}
		return g, nil
	case o.text != "":
		orientation := imaging.Horizontal
		if o.vertical {
			orientation = imaging.Vertical
		}
		return imaging.RenderText(o.text, w, h, imaging.TextOptions{
			FontSize:      o.fontSize,
			Orientation:   orientation,
			Invert:        o.invert,
			WordBreakOnly: o.wordBreak,
		})
	}
	return nil, errors.New("one of -text, -image or -barcode is required")
}

func mmToDots(mm, dpi int) int {
	return mm * dpi * 100 / 2540
}

// mmToPoints rounds up so the filter's truncating conversion gives mm back
func mmToPoints(mm int) int {
	return int(math.Ceil(float64(mm) * config.PointsPerMM))
}
