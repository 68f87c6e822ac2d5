package tspl

import (
	"fmt"
	"io"
)

// Label holds the per-label settings sent ahead of the bitmap.
// Sizes and gaps are whole millimetres, the reference point is in dots.
type Label struct {
	WidthMM   int
	HeightMM  int
	GapMM     int
	GapOffset int
	RefX      int
	RefY      int
	Density   int
	Speed     int
	Copies    int
}

// Command writes TSPL commands to an underlying writer.
// The first write error is kept and all later commands become no-ops.
type Command struct {
	w   io.Writer
	err error
}

// New starts a command stream on w
func New(w io.Writer) *Command {
	return &Command{w: w}
}

// Err returns the first write error, if any
func (c *Command) Err() error {
	return c.err
}

func (c *Command) printf(format string, args ...any) *Command {
	if c.err == nil {
		_, c.err = fmt.Fprintf(c.w, format, args...)
	}
	return c
}

func (c *Command) write(b []byte) *Command {
	if c.err == nil {
		_, c.err = c.w.Write(b)
	}
	return c
}

// Size sets label dimensions
func (c *Command) Size(widthMM, heightMM int) *Command {
	return c.printf("SIZE %d mm,%d mm\r\n", widthMM, heightMM)
}

// Gap sets gap between labels
func (c *Command) Gap(gapMM, offsetMM int) *Command {
	return c.printf("GAP %d mm,%d mm\r\n", gapMM, offsetMM)
}

// Direction sets print direction and mirroring (0 or 1 each)
func (c *Command) Direction(dir, mirror int) *Command {
	return c.printf("DIRECTION %d,%d\r\n", dir, mirror)
}

// Reference sets the origin of the label in dots
func (c *Command) Reference(x, y int) *Command {
	return c.printf("REFERENCE %d,%d\r\n", x, y)
}

// Density sets print darkness
func (c *Command) Density(level int) *Command {
	return c.printf("DENSITY %d\r\n", level)
}

// Speed sets print speed
func (c *Command) Speed(speed int) *Command {
	return c.printf("SPEED %d\r\n", speed)
}

// CLS clears the image buffer
func (c *Command) CLS() *Command {
	return c.write([]byte("CLS\r\n"))
}

// Bitmap adds a bitmap image
// x, y: position in dots
// widthBytes: width in bytes (pixels / 8, rounded up)
// height: height in dots
// data: raw 1-bit bitmap data, a cleared bit is printed
func (c *Command) Bitmap(x, y, widthBytes, height int, data []byte) *Command {
	c.printf("BITMAP %d,%d,%d,%d,1,", x, y, widthBytes, height)
	c.write(data)
	return c.write([]byte("\r\n"))
}

// Print prints one set of n copies
func (c *Command) Print(copies int) *Command {
	return c.printf("PRINT 1,%d\r\n", copies)
}

// Bitmap is the packed image of a label, as sent by BITMAP.
type Bitmap struct {
	WidthBytes int
	Height     int
	Data       []byte
}

// WriteLabel emits the complete command sequence for one label
func WriteLabel(w io.Writer, l Label, bm Bitmap) error {
	return New(w).
		Size(l.WidthMM, l.HeightMM).
		Gap(l.GapMM, l.GapOffset).
		Direction(0, 0).
		Reference(l.RefX, l.RefY).
		Density(l.Density).
		Speed(l.Speed).
		CLS().
		Bitmap(0, 0, bm.WidthBytes, bm.Height, bm.Data).
		Print(l.Copies).
		Err()
}
