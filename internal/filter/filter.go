package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"rw402b-filter/internal/config"
	"rw402b-filter/internal/imaging"
	"rw402b-filter/internal/raster"
	"rw402b-filter/internal/tspl"
)

var (
	ErrShortRead    = errors.New("failed to read raster pixels")
	ErrPageTooLarge = errors.New("raster page too large")
)

// DefaultMaxPageBytes bounds the grayscale buffer of a single page.
// Diffusion needs eight times as much again.
const DefaultMaxPageBytes = 64 << 20

// PageSource yields raster pages. *raster.Reader implements it.
type PageSource interface {
	// NextHeader returns io.EOF once the stream is exhausted
	NextHeader() (raster.Header, error)
	ReadPixels(p []byte) error
}

// State is the step a Processor is working on.
type State int

const (
	AwaitingHeader State = iota
	ReadingPixels
	Transforming
	Quantizing
	Emitting
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingHeader:
		return "awaiting-header"
	case ReadingPixels:
		return "reading-pixels"
	case Transforming:
		return "transforming"
	case Quantizing:
		return "quantizing"
	case Emitting:
		return "emitting"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats summarises a finished run.
type Stats struct {
	Pages   int // labels emitted
	Skipped int // pages dropped as degenerate or unsupported
}

// Processor turns raster pages into TSPL labels, one page at a time.
type Processor struct {
	cfg   config.JobConfig
	out   io.Writer
	log   *slog.Logger
	state State

	// MaxPageBytes caps the pixel buffer of one page
	MaxPageBytes int
	// OnPage is called after each label has been written
	OnPage func(page, copies int)
}

// New returns a Processor writing labels for cfg to out. A nil log discards
// diagnostics.
func New(cfg config.JobConfig, out io.Writer, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		cfg:          cfg,
		out:          out,
		log:          log,
		MaxPageBytes: DefaultMaxPageBytes,
	}
}

// State returns the current processing step
func (p *Processor) State() State {
	return p.state
}

// Run processes pages until src is exhausted, the context is cancelled or a
// page fails fatally. Degenerate pages are skipped without failing the job.
func (p *Processor) Run(ctx context.Context, src PageSource) (Stats, error) {
	var stats Stats

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		p.enter(AwaitingHeader)
		h, err := src.NextHeader()
		if errors.Is(err, io.EOF) {
			p.enter(Done)
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("page %d: %w", n, err)
		}

		if reason := checkHeader(&h); reason != "" {
			stats.Skipped++
			p.log.Warn("skipping page", "page", n, "reason", reason,
				"width", h.Width, "height", h.Height, "bytes_per_line", h.BytesPerLine)
			continue
		}

		if err := p.page(n, &h, src); err != nil {
			return stats, fmt.Errorf("page %d: %w", n, err)
		}
		stats.Pages++
	}
}

// page drives one page from pixel read to emitted label. All buffers are
// local and dropped on return.
func (p *Processor) page(n int, h *raster.Header, src PageSource) error {
	// PageBytes saturates, so hostile dimensions land here too
	size := h.PageBytes()
	if size > p.MaxPageBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrPageTooLarge, size, p.MaxPageBytes)
	}

	p.enter(ReadingPixels)
	pix := make([]byte, size)
	if err := src.ReadPixels(pix); err != nil {
		return fmt.Errorf("%w: %w", ErrShortRead, err)
	}

	p.enter(Transforming)
	gray := imaging.Transform(&imaging.Gray{Pix: pix, Width: h.Width, Height: h.Height}, p.cfg.Transform())

	p.enter(Quantizing)
	mono := imaging.ToMono(gray)

	p.enter(Emitting)
	label := p.label(h)
	p.log.Debug("emitting label", "page", n,
		"dots", fmt.Sprintf("%dx%d", mono.Width, mono.Height),
		"size", fmt.Sprintf("%dx%dmm", label.WidthMM, label.HeightMM))

	bm := tspl.Bitmap{WidthBytes: mono.Stride, Height: mono.Height, Data: mono.Pix}
	if err := tspl.WriteLabel(p.out, label, bm); err != nil {
		return fmt.Errorf("write label: %w", err)
	}
	if f, ok := p.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("write label: %w", err)
		}
	}

	if p.OnPage != nil {
		p.OnPage(n, p.cfg.Copies)
	}
	return nil
}

// label maps the job configuration onto the label settings. A job without a
// PageSize option takes the media size from the page header; the RW402B
// reference driver sends SIZE 0 mm,0 mm in that case instead.
func (p *Processor) label(h *raster.Header) tspl.Label {
	l := tspl.Label{
		WidthMM:   p.cfg.PageWidthMM,
		HeightMM:  p.cfg.PageHeightMM,
		GapMM:     p.cfg.GapHeight,
		GapOffset: p.cfg.GapOffset,
		RefX:      p.cfg.Horizontal,
		RefY:      p.cfg.Vertical,
		Density:   p.cfg.Darkness,
		Speed:     p.cfg.Speed,
		Copies:    p.cfg.Copies,
	}
	if l.WidthMM == 0 && l.HeightMM == 0 {
		l.WidthMM = config.PointsToMM(h.PageSize[0])
		l.HeightMM = config.PointsToMM(h.PageSize[1])
	}
	return l
}

func (p *Processor) enter(s State) {
	p.state = s
	p.log.Debug("state", "state", s)
}

// checkHeader returns why a page cannot be printed, or "" if it can
func checkHeader(h *raster.Header) string {
	if h.Width <= 0 || h.Height <= 0 || h.BytesPerLine <= 0 {
		return "empty page"
	}
	if h.BitsPerPixel != 8 {
		return fmt.Sprintf("unsupported depth %d bits per pixel", h.BitsPerPixel)
	}
	if h.BytesPerLine != h.Width {
		return fmt.Sprintf("bytes per line %d does not match width %d", h.BytesPerLine, h.Width)
	}
	return ""
}
