package imaging

import (
	"image"
	"image/color"
)

// Mono is a packed 1-bit bitmap in printer order.
// Bit 7 of each byte is the leftmost pixel, a set bit is background and a
// cleared bit is printed.
type Mono struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// RowBytes returns the number of bytes needed for a row of width pixels
func RowBytes(width int) int {
	return (width + 7) / 8
}

// NewMono allocates a blank (all background) bitmap
func NewMono(width, height int) *Mono {
	stride := RowBytes(width)
	pix := make([]byte, stride*height)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &Mono{Pix: pix, Width: width, Height: height, Stride: stride}
}

// Ink reports whether the pixel at (x, y) is printed
func (m *Mono) Ink(x, y int) bool {
	return m.Pix[y*m.Stride+x/8]&(1<<(7-uint(x%8))) == 0
}

// SetInk marks the pixel at (x, y) as printed
func (m *Mono) SetInk(x, y int) {
	m.Pix[y*m.Stride+x/8] &^= 1 << (7 - uint(x%8))
}

// Pack converts a quantized field to a packed bitmap.
// Pixels below Threshold become ink; padding bits at the end of a row stay set.
func Pack(f *Field) *Mono {
	m := NewMono(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		row := f.Pix[y*f.Width : (y+1)*f.Width]
		for x, v := range row {
			if v < Threshold {
				m.SetInk(x, y)
			}
		}
	}
	return m
}

// ToMono dithers g and packs the result
func ToMono(g *Gray) *Mono {
	return Pack(Dither(g))
}

// Preview creates a viewable image from a packed bitmap
func (m *Mono) Preview() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Ink(x, y) {
				img.SetGray(x, y, color.Gray{0})
			} else {
				img.SetGray(x, y, color.Gray{255})
			}
		}
	}
	return img
}
