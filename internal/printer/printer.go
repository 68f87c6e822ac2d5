package printer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
)

var (
	ErrNotConnected = errors.New("printer not connected")
	ErrNoStatus     = errors.New("printer did not report status")
)

// DefaultBaudRate is the RW402B serial speed
const DefaultBaudRate = 115200

// chunkSize limits single writes so slow USB-serial bridges keep up
const chunkSize = 4096

// Status is the byte returned by the <ESC>!? status query.
type Status byte

const (
	StatusHeadOpen   Status = 0x01
	StatusPaperJam   Status = 0x02
	StatusPaperEmpty Status = 0x04
	StatusRibbonOut  Status = 0x08
	StatusPaused     Status = 0x10
	StatusPrinting   Status = 0x20
	StatusCoverOpen  Status = 0x40
)

// Ready reports whether the printer can accept a job. Send clears the pause
// state itself, so a paused printer counts as ready.
func (s Status) Ready() bool {
	return s&^(StatusPrinting|StatusPaused) == 0
}

func (s Status) String() string {
	if s == 0 {
		return "ready"
	}
	names := []struct {
		bit  Status
		name string
	}{
		{StatusHeadOpen, "head open"},
		{StatusPaperJam, "paper jam"},
		{StatusPaperEmpty, "out of paper"},
		{StatusRibbonOut, "out of ribbon"},
		{StatusPaused, "paused"},
		{StatusPrinting, "printing"},
		{StatusCoverOpen, "cover open"},
	}
	var parts []string
	for _, n := range names {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ", ")
}

// Printer is a label printer on a serial line
type Printer struct {
	port     io.ReadWriteCloser
	portName string
}

// ListPorts returns the serial ports present on this machine
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// Connect opens a connection to the printer on the given serial port
func Connect(portName string, baudRate int) (*Printer, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(3 * time.Second); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to configure port %s: %w", portName, err)
	}

	return NewPrinter(port, portName), nil
}

// NewPrinter wraps an already open connection
func NewPrinter(port io.ReadWriteCloser, name string) *Printer {
	return &Printer{port: port, portName: name}
}

// Close closes the printer connection
func (p *Printer) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// PortName returns the current port name
func (p *Printer) PortName() string {
	return p.portName
}

// Status queries the printer's status byte
func (p *Printer) Status() (Status, error) {
	if p.port == nil {
		return 0, ErrNotConnected
	}
	if _, err := p.port.Write([]byte("\x1b!?")); err != nil {
		return 0, fmt.Errorf("status query failed: %w", err)
	}
	buf := make([]byte, 1)
	n, err := p.port.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("status query failed: %w", err)
	}
	if n == 0 {
		return 0, ErrNoStatus
	}
	return Status(buf[0]), nil
}

// CancelPause sends the escape sequence that leaves pause state
func (p *Printer) CancelPause() error {
	if p.port == nil {
		return ErrNotConnected
	}
	_, err := p.port.Write([]byte("\x1b!O"))
	return err
}

// Send copies a TSPL command stream to the printer
func (p *Printer) Send(r io.Reader) (int64, error) {
	if p.port == nil {
		return 0, ErrNotConnected
	}
	if err := p.CancelPause(); err != nil {
		return 0, fmt.Errorf("print failed: %w", err)
	}

	var total int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, err := p.port.Write(buf[:n]); err != nil {
				return total, fmt.Errorf("print failed: %w", err)
			}
			total += int64(n)
		}
		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
