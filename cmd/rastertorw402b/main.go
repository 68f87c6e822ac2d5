// Command rastertorw402b is a CUPS filter converting CUPS raster pages into
// TSPL for Munbyn RW402B direct-thermal label printers.
//
//	rastertorw402b job-id user title copies options [file]
//
// Printer commands go to stdout; diagnostics go to stderr as CUPS message
// lines. Set RW402B_DEBUG=1 for DEBUG output.
package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"rw402b-filter/internal/config"
	"rw402b-filter/internal/cupslog"
	"rw402b-filter/internal/filter"
	"rw402b-filter/internal/raster"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	log := cupslog.New(stderr, getenv("RW402B_DEBUG") != "")

	args, err := config.ParseArgs(argv)
	if err != nil {
		log.Error(err.Error())
		return 1
	}

	cfg, warnings := config.Resolve(args, getenv)
	for _, w := range warnings {
		log.Warn("ignoring option value", "err", w)
	}
	log.Debug("job configuration", "cfg", cfg, "ppd", cfg.PPDPath)

	in := stdin
	if args.File != "" {
		f, err := os.Open(args.File)
		if err != nil {
			log.Error("unable to open input file", "err", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	r, err := raster.NewReader(in)
	if err != nil {
		log.Error("could not open raster stream", "err", err)
		return 1
	}
	log.Debug("raster stream", "version", r.Version())

	out := bufio.NewWriterSize(stdout, 64*1024)
	p := filter.New(cfg, out, log)
	p.OnPage = func(page, copies int) {
		cupslog.Page(stderr, page, copies)
	}

	stats, err := p.Run(ctx, r)
	if err != nil {
		log.Error("job aborted", "err", err, "state", p.State(), "printed", stats.Pages)
		return 1
	}
	log.Info("job complete", "labels", stats.Pages, "skipped", stats.Skipped)
	return 0
}
