package raster

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	cups "honnef.co/go/cups/raster"
)

var (
	ErrBadSync     = errors.New("raster: not a CUPS raster stream")
	ErrPageOverrun = errors.New("raster: read past end of page")
	ErrLineTooLong = errors.New("raster: line too long")
)

// DefaultMaxLineBytes bounds BytesPerLine. A 600 dpi letter page in 16-bit
// RGB needs about 30 KiB per line.
const DefaultMaxLineBytes = 1 << 20

// Raster versions by sync word, in either byte order
var syncVersions = map[string]int{
	"RaSt": 1, "tSaR": 1,
	"RaS2": 2, "2SaR": 2,
	"RaS3": 3, "3SaR": 3,
}

// Reader hands out the pages of a CUPS raster stream as flat pixel data.
//
// Decoding, including version 2 run-length expansion, is done by
// honnef.co/go/cups/raster; Reader tracks how much of each page is left so
// pages can be read in arbitrary pieces or skipped.
type Reader struct {
	dec     *cups.Decoder
	version int

	page      *cups.Page
	header    Header
	remaining int // unread pixel bytes of the current page

	// partially consumed line, allocated on first use
	line    []byte
	linePos int

	// MaxLineBytes rejects pages whose lines are longer than this
	MaxLineBytes int
}

// NewReader checks the sync word and returns a reader positioned before the
// first page header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	sync, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSync, err)
	}
	version, ok := syncVersions[string(sync)]
	if !ok {
		return nil, fmt.Errorf("%w: sync word %q", ErrBadSync, sync)
	}

	dec, err := cups.NewDecoder(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSync, err)
	}
	return &Reader{dec: dec, version: version, MaxLineBytes: DefaultMaxLineBytes}, nil
}

// Version returns the raster format version (1, 2 or 3)
func (r *Reader) Version() int {
	return r.version
}

// Compressed reports whether pixel data is run-length encoded
func (r *Reader) Compressed() bool {
	return r.version == 2
}

// Header returns the header of the current page
func (r *Reader) Header() Header {
	return r.header
}

// Remaining returns the number of unread pixel bytes on the current page
func (r *Reader) Remaining() int {
	return r.remaining
}

// NextHeader skips whatever is left of the current page and reads the next
// page header. It returns io.EOF when the stream ends cleanly.
// A page with lines longer than MaxLineBytes yields ErrLineTooLong; the
// stream cannot be read past it.
func (r *Reader) NextHeader() (Header, error) {
	if err := r.skipPage(); err != nil {
		return Header{}, err
	}

	pg, err := r.dec.NextPage()
	if errors.Is(err, io.EOF) {
		return Header{}, io.EOF
	}
	if err != nil {
		return Header{}, fmt.Errorf("raster: page header: %w", err)
	}

	h := headerOf(pg)
	r.page, r.header, r.remaining = nil, Header{}, 0
	r.line, r.linePos = r.line[:0], 0
	if h.BytesPerLine > r.MaxLineBytes {
		return h, fmt.Errorf("%w: %d bytes per line (limit %d)", ErrLineTooLong, h.BytesPerLine, r.MaxLineBytes)
	}

	r.page, r.header = pg, h
	r.remaining = h.PageBytes()
	return h, nil
}

// ReadPixels fills p with the next len(p) bytes of the current page.
// A stream that ends early yields io.ErrUnexpectedEOF.
func (r *Reader) ReadPixels(p []byte) error {
	if len(p) > r.remaining {
		return ErrPageOverrun
	}

	size := r.header.BytesPerLine
	for len(p) > 0 {
		if r.linePos < len(r.line) {
			n := copy(p, r.line[r.linePos:])
			r.linePos += n
			r.remaining -= n
			p = p[n:]
			continue
		}

		if len(p) >= size {
			if err := r.readLine(p[:size]); err != nil {
				return err
			}
			r.remaining -= size
			p = p[size:]
			continue
		}

		if cap(r.line) < size {
			r.line = make([]byte, size)
		}
		r.line = r.line[:size]
		if err := r.readLine(r.line); err != nil {
			r.line = r.line[:0]
			return err
		}
		r.linePos = 0
	}
	return nil
}

func (r *Reader) readLine(b []byte) error {
	err := r.page.ReadLine(b)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (r *Reader) skipPage() error {
	scratch := make([]byte, min(r.remaining, 32*1024))
	for r.remaining > 0 {
		n := min(r.remaining, len(scratch))
		if err := r.ReadPixels(scratch[:n]); err != nil {
			return fmt.Errorf("raster: skip page: %w", err)
		}
	}
	return nil
}

func headerOf(pg *cups.Page) Header {
	h := pg.Header
	return Header{
		MediaClass:    h.MediaClass,
		MediaColor:    h.MediaColor,
		MediaType:     h.MediaType,
		OutputType:    h.OutputType,
		HWResolution:  [2]int{h.HorizDPI, h.VertDPI},
		MirrorPrint:   h.MirrorPrint,
		NegativePrint: h.NegativePrint,
		NumCopies:     h.NumCopies,
		Orientation:   h.Orientation,
		PageSize:      [2]int{h.Width, h.Length},
		Width:         h.CUPS.Width,
		Height:        h.CUPS.Height,
		CupsMedia:     h.CUPS.MediaType,
		BitsPerColor:  h.CUPS.BitsPerColor,
		BitsPerPixel:  h.CUPS.BitsPerPixel,
		BytesPerLine:  h.CUPS.BytesPerLine,
		ColorOrder:    h.CUPS.ColorOrder,
		ColorSpace:    h.CUPS.ColorSpace,
		Compression:   h.CUPS.Compression,
		NumColors:     h.CUPS.NumColors,
		PageSizeF:     h.CUPS.PageSize,
		PageSizeName:  h.CUPS.PageSizeName,
	}
}
