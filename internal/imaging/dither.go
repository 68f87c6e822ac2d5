package imaging

// Threshold splits quantized samples into ink (below) and background.
const Threshold = 128

// Field is a grid of signed intensity samples used during error diffusion.
// Values may leave [0,255] while error is being propagated.
type Field struct {
	Pix    []int
	Width  int
	Height int
}

// NewField copies a grayscale buffer into a fresh intensity field
func NewField(g *Gray) *Field {
	f := &Field{
		Pix:    make([]int, len(g.Pix)),
		Width:  g.Width,
		Height: g.Height,
	}
	for i, v := range g.Pix {
		f.Pix[i] = int(v)
	}
	return f
}

// Diffuse quantizes f in place to 0/255 using Floyd-Steinberg error diffusion.
//
// Each of the four error terms is truncated on its own, so a little error is
// lost on every pixel. Dither patterns depend on that exact arithmetic.
func Diffuse(f *Field) {
	w, h := f.Width, f.Height
	pix := f.Pix

	for y := 0; y < h; y++ {
		row := y * w
		next := row + w
		for x := 0; x < w; x++ {
			old := pix[row+x]
			quant := 0
			if old >= Threshold {
				quant = 255
			}
			pix[row+x] = quant

			err := old - quant
			if x+1 < w {
				pix[row+x+1] += err * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					pix[next+x-1] += err * 3 / 16
				}
				pix[next+x] += err * 5 / 16
				if x+1 < w {
					pix[next+x+1] += err * 1 / 16
				}
			}
		}
	}
}

// Dither returns the error-diffused field for g. g is not modified.
func Dither(g *Gray) *Field {
	f := NewField(g)
	Diffuse(f)
	return f
}
