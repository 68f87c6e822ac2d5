package tspl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("tspl: malformed command")

// Printed is one label recovered from a command stream.
type Printed struct {
	Label     Label
	Direction [2]int
	X, Y      int
	Bitmap    Bitmap
	Sets      int
	// Other lists commands the decoder does not interpret
	Other []string
}

// Decode parses a TSPL stream back into the labels it prints.
// Settings carry over from one label to the next, as they do on the printer.
func Decode(r io.Reader) ([]Printed, error) {
	br := bufio.NewReader(r)
	var (
		out []Printed
		cur Printed
	)

	for {
		line, err := readLine(br)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if line == "" {
			continue
		}

		name, rest, _ := strings.Cut(line, " ")
		switch name {
		case "SIZE":
			err = scanInts(rest, &cur.Label.WidthMM, &cur.Label.HeightMM)
		case "GAP":
			err = scanInts(rest, &cur.Label.GapMM, &cur.Label.GapOffset)
		case "DIRECTION":
			err = scanInts(rest, &cur.Direction[0], &cur.Direction[1])
		case "REFERENCE":
			err = scanInts(rest, &cur.Label.RefX, &cur.Label.RefY)
		case "DENSITY":
			err = scanInts(rest, &cur.Label.Density)
		case "SPEED":
			err = scanInts(rest, &cur.Label.Speed)
		case "CLS":
			cur.Bitmap = Bitmap{}
		case "BITMAP":
			err = readBitmap(br, rest, &cur)
		case "PRINT":
			cur.Sets, cur.Label.Copies = 1, 1
			if strings.Contains(rest, ",") {
				err = scanInts(rest, &cur.Sets, &cur.Label.Copies)
			} else {
				err = scanInts(rest, &cur.Sets)
			}
			out = append(out, cur)
			cur.Other = nil
		default:
			cur.Other = append(cur.Other, line)
		}
		if err != nil {
			return out, fmt.Errorf("%w: %q: %v", ErrSyntax, line, err)
		}
	}
}

// readLine reads up to a line feed, or up to the comma that ends a BITMAP
// header, whichever comes first. Binary bitmap data never goes through here.
func readLine(br *bufio.Reader) (string, error) {
	var b strings.Builder
	commas := 0
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		switch c {
		case '\n':
			return strings.TrimSuffix(b.String(), "\r"), nil
		case ',':
			commas++
			b.WriteByte(c)
			if commas == 5 && strings.HasPrefix(b.String(), "BITMAP ") {
				return b.String(), nil
			}
		default:
			b.WriteByte(c)
		}
	}
}

// readBitmap reads the payload announced by a BITMAP x,y,wb,h,mode, header
func readBitmap(br *bufio.Reader, params string, cur *Printed) error {
	var wb, h, mode int
	if err := scanInts(strings.TrimSuffix(params, ","), &cur.X, &cur.Y, &wb, &h, &mode); err != nil {
		return err
	}
	if wb < 0 || h < 0 {
		return fmt.Errorf("negative bitmap size %dx%d", wb, h)
	}

	data := make([]byte, wb*h)
	if _, err := io.ReadFull(br, data); err != nil {
		return fmt.Errorf("bitmap payload: %w", err)
	}
	cur.Bitmap = Bitmap{WidthBytes: wb, Height: h, Data: data}

	// the payload is followed by a line break
	tail, err := br.Peek(2)
	if err == nil && bytes.Equal(tail, []byte("\r\n")) {
		br.Discard(2)
	} else if len(tail) > 0 && tail[0] == '\n' {
		br.Discard(1)
	}
	return nil
}

// scanInts parses comma separated integers, ignoring unit suffixes
func scanInts(s string, dst ...*int) error {
	fields := strings.Split(s, ",")
	if len(fields) != len(dst) {
		return fmt.Errorf("want %d values, got %d", len(dst), len(fields))
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(f, "mm"), "dot"))
		if fv, err := strconv.ParseFloat(f, 64); err == nil {
			*dst[i] = int(fv)
			continue
		}
		return fmt.Errorf("bad number %q", f)
	}
	return nil
}
