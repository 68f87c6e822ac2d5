// Command labeltool helps test the RW402B filter without a CUPS queue.
//
//	labeltool raster  [flags]          write a CUPS raster stream of a test label
//	labeltool preview [flags] [file]   render the labels in a TSPL stream as images
//	labeltool send    [flags] [file]   copy a TSPL stream to a serial printer
//	labeltool ports                    list serial ports
//
// A full round trip looks like:
//
//	labeltool raster -text "Hello" | rastertorw402b 1 me t 1 "PageSize=w142h86" | labeltool preview -o hello.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: labeltool <command> [flags]

commands:
  raster    write a CUPS raster stream of a test label
  preview   render the labels in a TSPL stream as images
  send      copy a TSPL stream to a serial printer
  ports     list serial ports
`

type command func(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error

var commands = map[string]command{
	"raster":  runRaster,
	"preview": runPreview,
	"send":    runSend,
	"ports":   runPorts,
}

func main() {
	if os.Getenv("DEBUG") == "1" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, os.Args[2:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("labeltool failed", "command", os.Args[1], "err", err)
		stop()
		os.Exit(1)
	}
}

// openInput returns the named file, or stdin for "" and "-"
func openInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(name)
}
