package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"rw402b-filter/internal/printer"
)

func runSend(_ context.Context, args []string, stdin io.Reader, _ io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	port := fs.String("port", "", "serial `device`, e.g. /dev/ttyUSB0")
	baud := fs.Int("baud", printer.DefaultBaudRate, "baud rate")
	check := fs.Bool("check", true, "query printer status before sending")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *port == "" {
		return errors.New("-port is required")
	}

	in, err := openInput(fs.Arg(0), stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	p, err := printer.Connect(*port, *baud)
	if err != nil {
		return err
	}
	defer p.Close()

	if *check {
		st, err := p.Status()
		switch {
		case err != nil:
			slog.Warn("status query failed, sending anyway", "port", p.PortName(), "err", err)
		case !st.Ready():
			return fmt.Errorf("printer not ready: %s", st)
		}
	}

	n, err := p.Send(in)
	if err != nil {
		return err
	}
	slog.Info("sent", "port", p.PortName(), "bytes", n)
	return nil
}

func runPorts(_ context.Context, _ []string, _ io.Reader, stdout io.Writer) error {
	ports, err := printer.ListPorts()
	if err != nil {
		return err
	}
	for _, p := range ports {
		fmt.Fprintln(stdout, p)
	}
	return nil
}
