package imaging

import "fmt"

// Rotation is a page rotation in degrees.
type Rotation int

const (
	RotateNone Rotation = 0
	Rotate90   Rotation = 90
	Rotate180  Rotation = 180
	Rotate270  Rotation = 270
)

func (r Rotation) String() string {
	switch r {
	case RotateNone, Rotate90, Rotate180, Rotate270:
		return fmt.Sprintf("%d°", int(r))
	}
	return fmt.Sprintf("Rotation(%d)", int(r))
}

// Valid reports whether r is one of the supported quarter turns
func (r Rotation) Valid() bool {
	switch r {
	case RotateNone, Rotate90, Rotate180, Rotate270:
		return true
	}
	return false
}

// TransformOptions selects the geometric transforms for a page.
type TransformOptions struct {
	Negative bool
	Mirror   bool
	Rotate   Rotation
}

// Transform applies negate, mirror and rotate to g, in that order.
// g itself is never modified; when no transform is selected g is returned as is.
func Transform(g *Gray, opts TransformOptions) *Gray {
	out := g
	if opts.Negative {
		out = Negate(out)
	}
	if opts.Mirror {
		out = Mirror(out)
	}
	if opts.Rotate != RotateNone {
		out = Rotate(out, opts.Rotate)
	}
	return out
}

// Negate inverts every sample
func Negate(g *Gray) *Gray {
	dst := &Gray{Pix: make([]byte, len(g.Pix)), Width: g.Width, Height: g.Height}
	for i, v := range g.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}

// Mirror flips every row horizontally
func Mirror(g *Gray) *Gray {
	w := g.Width
	dst := &Gray{Pix: make([]byte, len(g.Pix)), Width: w, Height: g.Height}
	for y := 0; y < g.Height; y++ {
		src := g.Pix[y*w : (y+1)*w]
		row := dst.Pix[y*w : (y+1)*w]
		for x, v := range src {
			row[w-1-x] = v
		}
	}
	return dst
}

// Rotate turns g by r. Rotate90 maps (x, y) to (y, W-1-x) and swaps the
// dimensions; Rotate270 is its inverse. Unknown rotations return g unchanged.
func Rotate(g *Gray, r Rotation) *Gray {
	w, h := g.Width, g.Height
	switch r {
	case Rotate90:
		dst := &Gray{Pix: make([]byte, len(g.Pix)), Width: h, Height: w}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Pix[(w-1-x)*h+y] = g.Pix[y*w+x]
			}
		}
		return dst
	case Rotate180:
		dst := &Gray{Pix: make([]byte, len(g.Pix)), Width: w, Height: h}
		n := len(g.Pix)
		for i, v := range g.Pix {
			dst.Pix[n-1-i] = v
		}
		return dst
	case Rotate270:
		dst := &Gray{Pix: make([]byte, len(g.Pix)), Width: h, Height: w}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Pix[x*h+(h-1-y)] = g.Pix[y*w+x]
			}
		}
		return dst
	}
	return g
}
