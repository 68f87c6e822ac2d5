package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"rw402b-filter/internal/imaging"
	"rw402b-filter/internal/tspl"
)

func runPreview(_ context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	out := fs.String("o", "label.png", "output `file`; .png or .bmp, numbered when there are several labels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in, err := openInput(fs.Arg(0), stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	labels, err := tspl.Decode(in)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return errors.New("no labels in input")
	}

	for i, l := range labels {
		bm := l.Bitmap
		mono := &imaging.Mono{Pix: bm.Data, Width: bm.WidthBytes * 8, Height: bm.Height, Stride: bm.WidthBytes}

		path := *out
		if len(labels) > 1 {
			path = numbered(path, i+1)
		}
		if err := imaging.SavePreview(path, mono.Preview()); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %dx%d mm, %dx%d dots, density %d, speed %d, %d copies\n",
			path, l.Label.WidthMM, l.Label.HeightMM, mono.Width, mono.Height,
			l.Label.Density, l.Label.Speed, l.Sets*l.Label.Copies)
	}
	return nil
}

// numbered turns label.png into label-2.png
func numbered(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), n, ext)
}
