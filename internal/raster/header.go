package raster

import (
	"encoding/binary"
	"math"
	"math/bits"
)

// HeaderSize is the on-disk size of a cups_page_header2_t
const HeaderSize = 1796

const (
	ChunkyPixels = 0
	BandedPixels = 1
	PlanarPixels = 2
)

const (
	ColorSpaceGray     = 0
	ColorSpaceRGB      = 1
	ColorSpaceRGBA     = 2
	ColorSpaceBlack    = 3
	ColorSpaceRGBW     = 17
	ColorSpacesGray    = 18
	ColorSpacesRGB     = 19
	ColorSpaceAdobeRGB = 20
)

// Field offsets inside the page header
const (
	offMediaClass   = 0
	offMediaColor   = 64
	offMediaType    = 128
	offOutputType   = 192
	offHWResolution = 276
	offMirrorPrint  = 332
	offNegative     = 336
	offNumCopies    = 340
	offOrientation  = 344
	offPageSize     = 352
	offWidth        = 372
	offHeight       = 376
	offCupsMedia    = 380
	offBitsPerColor = 384
	offBitsPerPixel = 388
	offBytesPerLine = 392
	offColorOrder   = 396
	offColorSpace   = 400
	offCompression  = 404
	offNumColors    = 420
	offPageSizeF    = 428
	offPageSizeName = 1732
)

// Header is the subset of the CUPS page header a label filter cares about.
type Header struct {
	MediaClass    string
	MediaColor    string
	MediaType     string
	OutputType    string
	HWResolution  [2]int
	MirrorPrint   bool
	NegativePrint bool
	NumCopies     int
	Orientation   int
	// PageSize is the media size in points
	PageSize [2]int

	Width        int
	Height       int
	CupsMedia    int
	BitsPerColor int
	BitsPerPixel int
	BytesPerLine int
	ColorOrder   int
	ColorSpace   int
	Compression  int

	NumColors    int
	PageSizeF    [2]float32
	PageSizeName string
}

// PageBytes returns the size of the page's pixel data. Header fields come
// straight from the stream, so the product saturates at math.MaxInt instead
// of wrapping.
func (h *Header) PageBytes() int {
	if h.BytesPerLine <= 0 || h.Height <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(h.BytesPerLine), uint64(h.Height))
	if hi != 0 || lo > math.MaxInt {
		return math.MaxInt
	}
	return int(lo)
}

// unitBytes is the size of one compression unit (a pixel, or a color sample
// for banded and planar data).
func (h *Header) unitBytes() int {
	bits := h.BitsPerPixel
	if h.ColorOrder != ChunkyPixels {
		bits = h.BitsPerColor
	}
	return max(1, (bits+7)/8)
}

func encodeHeader(h *Header, order binary.ByteOrder) []byte {
	b := make([]byte, HeaderSize)
	u := func(off, v int) { order.PutUint32(b[off:], uint32(v)) }
	f := func(off int, v float32) { order.PutUint32(b[off:], math.Float32bits(v)) }
	s := func(off int, v string) { copy(b[off:off+63], v) }
	flag := func(off int, v bool) {
		if v {
			u(off, 1)
		}
	}

	s(offMediaClass, h.MediaClass)
	s(offMediaColor, h.MediaColor)
	s(offMediaType, h.MediaType)
	s(offOutputType, h.OutputType)
	u(offHWResolution, h.HWResolution[0])
	u(offHWResolution+4, h.HWResolution[1])
	flag(offMirrorPrint, h.MirrorPrint)
	flag(offNegative, h.NegativePrint)
	u(offNumCopies, h.NumCopies)
	u(offOrientation, h.Orientation)
	u(offPageSize, h.PageSize[0])
	u(offPageSize+4, h.PageSize[1])
	u(offWidth, h.Width)
	u(offHeight, h.Height)
	u(offCupsMedia, h.CupsMedia)
	u(offBitsPerColor, h.BitsPerColor)
	u(offBitsPerPixel, h.BitsPerPixel)
	u(offBytesPerLine, h.BytesPerLine)
	u(offColorOrder, h.ColorOrder)
	u(offColorSpace, h.ColorSpace)
	u(offCompression, h.Compression)
	u(offNumColors, h.NumColors)
	f(offPageSizeF, h.PageSizeF[0])
	f(offPageSizeF+4, h.PageSizeF[1])
	s(offPageSizeName, h.PageSizeName)
	return b
}
