package imaging

import (
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Gray is an 8-bit grayscale page, one sample per pixel, row-major.
// 0 is black and 255 is white.
type Gray struct {
	Pix    []byte
	Width  int
	Height int
}

// NewGray allocates a white page
func NewGray(width, height int) *Gray {
	pix := make([]byte, width*height)
	for i := range pix {
		pix[i] = 255
	}
	return &Gray{Pix: pix, Width: width, Height: height}
}

// At returns the sample at (x, y)
func (g *Gray) At(x, y int) byte {
	return g.Pix[y*g.Width+x]
}

// Image wraps the buffer as an image.Gray without copying
func (g *Gray) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

// LoadImage loads an image from file
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// GrayFromImage converts any image to a grayscale page
func GrayFromImage(img image.Image) *Gray {
	b := img.Bounds()
	g := &Gray{Pix: make([]byte, b.Dx()*b.Dy()), Width: b.Dx(), Height: b.Dy()}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			g.Pix[y*g.Width+x] = rgbToGray(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return g
}

// FitGray scales img to fit within width x height dots keeping its aspect
// ratio, centres it on a white page of exactly that size and converts it to
// grayscale.
func FitGray(img image.Image, width, height int) *Gray {
	b := img.Bounds()
	scaleW := float64(width) / float64(b.Dx())
	scaleH := float64(height) / float64(b.Dy())
	scale := min(scaleW, scaleH)

	newW := max(1, int(float64(b.Dx())*scale))
	newH := max(1, int(float64(b.Dy())*scale))
	scaled := resize.Resize(uint(newW), uint(newH), img, resize.Bilinear)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	offset := image.Pt((width-newW)/2, (height-newH)/2)
	draw.Draw(canvas, scaled.Bounds().Add(offset), scaled, scaled.Bounds().Min, draw.Over)

	return GrayFromImage(canvas)
}

// rgbToGray converts a color to grayscale value
func rgbToGray(c color.Color) uint8 {
	if g, ok := c.(color.Gray); ok {
		return g.Y
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 255 // transparent prints as paper
	}
	// Standard luminance formula, values are 16-bit so divide by 256
	gray := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 256
	return uint8(gray)
}
