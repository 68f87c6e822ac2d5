package raster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrIncompletePage = errors.New("raster: page data incomplete")

// Writer produces a big-endian CUPS raster stream. Compressed writers emit
// version 2 (run-length encoded) data, others version 3.
type Writer struct {
	w          *bufio.Writer
	compressed bool

	header    Header
	remaining int
	started   bool

	// compressed line state
	partial []byte
	pending []byte
	repeat  int
}

// NewWriter writes the sync word and returns a writer ready for the first page
func NewWriter(w io.Writer, compressed bool) (*Writer, error) {
	bw := bufio.NewWriter(w)
	sync := "RaS3"
	if compressed {
		sync = "RaS2"
	}
	if _, err := bw.WriteString(sync); err != nil {
		return nil, err
	}
	return &Writer{w: bw, compressed: compressed}, nil
}

// WriteHeader starts a new page. The previous page must be complete.
func (w *Writer) WriteHeader(h Header) error {
	if w.started && w.remaining > 0 {
		return fmt.Errorf("%w: %d bytes missing", ErrIncompletePage, w.remaining)
	}
	if err := w.flushLine(); err != nil {
		return err
	}
	if _, err := w.w.Write(encodeHeader(&h, binary.BigEndian)); err != nil {
		return err
	}
	w.header = h
	w.remaining = h.PageBytes()
	w.started = true
	w.partial = w.partial[:0]
	return nil
}

// WritePixels appends pixel data to the current page
func (w *Writer) WritePixels(p []byte) error {
	if len(p) > w.remaining {
		return ErrPageOverrun
	}
	w.remaining -= len(p)
	if !w.compressed {
		_, err := w.w.Write(p)
		return err
	}

	bpl := w.header.BytesPerLine
	for len(p) > 0 {
		n := min(bpl-len(w.partial), len(p))
		w.partial = append(w.partial, p[:n]...)
		p = p[n:]
		if len(w.partial) == bpl {
			if err := w.addLine(w.partial); err != nil {
				return err
			}
			w.partial = w.partial[:0]
		}
	}
	return nil
}

// WritePage writes a header followed by all of its pixel data
func (w *Writer) WritePage(h Header, pix []byte) error {
	if err := w.WriteHeader(h); err != nil {
		return err
	}
	return w.WritePixels(pix)
}

// Flush writes any buffered data to the underlying writer
func (w *Writer) Flush() error {
	if w.remaining > 0 {
		return fmt.Errorf("%w: %d bytes missing", ErrIncompletePage, w.remaining)
	}
	if err := w.flushLine(); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) addLine(line []byte) error {
	if w.repeat > 0 && w.repeat < 256 && bytes.Equal(w.pending, line) {
		w.repeat++
		return nil
	}
	if err := w.flushLine(); err != nil {
		return err
	}
	w.pending = append(w.pending[:0], line...)
	w.repeat = 1
	return nil
}

func (w *Writer) flushLine() error {
	if w.repeat == 0 {
		return nil
	}
	buf := []byte{byte(w.repeat - 1)}
	buf = appendLine(buf, w.pending, w.header.unitBytes())
	w.repeat = 0
	w.pending = w.pending[:0]
	_, err := w.w.Write(buf)
	return err
}

// appendLine run-length encodes one line in units of unit bytes
func appendLine(dst, line []byte, unit int) []byte {
	units := len(line) / unit
	at := func(i int) []byte { return line[i*unit : (i+1)*unit] }

	for i := 0; i < units; {
		run := 1
		for i+run < units && run < 128 && bytes.Equal(at(i), at(i+run)) {
			run++
		}
		if run > 1 {
			dst = append(dst, byte(run-1))
			dst = append(dst, at(i)...)
			i += run
			continue
		}

		lit := 1
		for i+lit < units && lit < 128 {
			if i+lit+1 < units && bytes.Equal(at(i+lit), at(i+lit+1)) {
				break
			}
			lit++
		}
		if lit == 1 {
			// a lone unit is a run of one
			dst = append(dst, 0)
		} else {
			dst = append(dst, byte(257-lit))
		}
		dst = append(dst, line[i*unit:(i+lit)*unit]...)
		i += lit
	}

	if tail := line[units*unit:]; len(tail) > 0 {
		// a literal of two units, cut short by the end of the line
		dst = append(dst, 255)
		dst = append(dst, tail...)
	}
	return dst
}
