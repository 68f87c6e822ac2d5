package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// PrinterDPI is the head resolution of the RW402B (8 dots/mm)
const PrinterDPI = 203

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// TextOptions configures text rendering
type TextOptions struct {
	FontSize      float64
	Orientation   Orientation
	Invert        bool // White text on black background
	WordBreakOnly bool // Only break lines on spaces, not mid-word
}

// RenderText draws text centred on a width x height grayscale page.
// Vertical text is laid out on the swapped page and then turned clockwise.
func RenderText(text string, width, height int, opts TextOptions) (*Gray, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}

	renderW, renderH := width, height
	if opts.Orientation == Vertical {
		renderW, renderH = height, width
	}

	bg, fg := color.Gray{255}, color.Gray{0}
	if opts.Invert {
		bg, fg = fg, bg
	}

	img := image.NewGray(image.Rect(0, 0, renderW, renderH))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	c := freetype.NewContext()
	c.SetDPI(PrinterDPI)
	c.SetFont(f)
	c.SetFontSize(opts.FontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(&image.Uniform{fg})
	c.SetHinting(font.HintingFull)

	face := truetype.NewFace(f, &truetype.Options{Size: opts.FontSize, DPI: PrinterDPI})
	defer face.Close()
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()

	var lines []string
	if opts.WordBreakOnly {
		lines = wrapWords(text, face, renderW-10)
	} else {
		lines = wrapRunes(text, face, renderW-10)
	}

	y := (renderH-len(lines)*lineHeight)/2 + metrics.Ascent.Ceil()
	for _, line := range lines {
		x := (renderW - measureString(face, line)) / 2
		if _, err := c.DrawString(line, freetype.Pt(x, y)); err != nil {
			return nil, err
		}
		y += lineHeight
	}

	g := &Gray{Pix: img.Pix, Width: renderW, Height: renderH}
	if opts.Orientation == Vertical {
		return Rotate(g, Rotate270), nil
	}
	return g, nil
}

// wrapRunes splits text into lines that fit within maxWidth (breaks anywhere)
func wrapRunes(text string, face font.Face, maxWidth int) []string {
	var lines []string
	var current string

	for _, r := range text {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
			continue
		}
		next := current + string(r)
		if measureString(face, next) > maxWidth && current != "" {
			lines = append(lines, current)
			current = string(r)
		} else {
			current = next
		}
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// wrapWords splits text into lines, only breaking at word boundaries unless
// a single word is wider than the page
func wrapWords(text string, face font.Face, maxWidth int) []string {
	var lines []string

	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			next := current + " " + word
			if measureString(face, next) <= maxWidth {
				current = next
				continue
			}
			lines = append(lines, current)
			if measureString(face, word) > maxWidth {
				broken := wrapRunes(word, face, maxWidth)
				lines = append(lines, broken[:len(broken)-1]...)
				current = broken[len(broken)-1]
			} else {
				current = word
			}
		}
		lines = append(lines, current)
	}
	return lines
}

// measureString returns the width of a string in pixels
func measureString(face font.Face, s string) int {
	var width fixed.Int26_6
	for _, r := range s {
		if adv, ok := face.GlyphAdvance(r); ok {
			width += adv
		}
	}
	return width.Ceil()
}
