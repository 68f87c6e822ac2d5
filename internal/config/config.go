package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"rw402b-filter/internal/imaging"
)

var (
	ErrUsage      = errors.New("usage: rastertorw402b job-id user title copies options [file]")
	ErrOutOfRange = errors.New("out of range")
	ErrBadValue   = errors.New("unrecognized value")
)

// Option names understood by the filter
const (
	OptDarkness   = "Darkness"
	OptPrintSpeed = "PrintSpeed"
	OptMediaType  = "MediaType"
	OptRotate     = "Rotate"
	OptPrintMode  = "PrintMode"
	OptHorizontal = "Horizontal"
	OptVertical   = "Vertical"
	OptGapHeight  = "GapHeight"
	OptGapOffset  = "GapOffset"
	OptMirror     = "GD41Mirror"
	OptNegative   = "GD41Negative"
	OptPageSize   = "PageSize"
)

// Defaults
const (
	DefaultSpeed     = 4
	DefaultDarkness  = 12
	DefaultMediaType = 1
	DefaultGapHeight = 3
)

// Documented value ranges, enforced by Validate
const (
	MinDarkness = 0
	MaxDarkness = 15
	MinSpeed    = 1
	MaxSpeed    = 12
	MinCopies   = 1
)

// PointsPerMM converts PostScript points to millimetres
const PointsPerMM = 2.835

// PPDDir is where cupsd keeps per-queue PPD files
const PPDDir = "/etc/cups/ppd"

// Args holds the positional arguments of a CUPS filter invocation.
type Args struct {
	JobID   string
	User    string
	Title   string
	Copies  string
	Options string
	// File is the input path; empty means standard input
	File string
}

// ParseArgs validates the filter's positional arguments (without argv[0])
func ParseArgs(argv []string) (Args, error) {
	if len(argv) < 5 || len(argv) > 6 {
		return Args{}, ErrUsage
	}
	a := Args{
		JobID:   argv[0],
		User:    argv[1],
		Title:   argv[2],
		Copies:  argv[3],
		Options: argv[4],
	}
	if len(argv) == 6 {
		a.File = argv[5]
	}
	return a, nil
}

// JobConfig is the resolved configuration of one print job.
// Distances are in millimetres, offsets in dots.
type JobConfig struct {
	JobID  int
	User   string
	Title  string
	Copies int

	Speed     int
	MediaType int
	Darkness  int
	PrintMode int

	GapHeight  int
	GapOffset  int
	Horizontal int
	Vertical   int

	Mirror   bool
	Negative bool
	Rotate   imaging.Rotation

	PageWidthMM  int
	PageHeightMM int

	// PPDPath is the queue's PPD file. It is reported, never parsed.
	PPDPath string
}

// Default returns a configuration with the built-in defaults
func Default() JobConfig {
	return JobConfig{
		Copies:    1,
		Speed:     DefaultSpeed,
		Darkness:  DefaultDarkness,
		MediaType: DefaultMediaType,
		GapHeight: DefaultGapHeight,
	}
}

// Transform returns the geometric transforms selected for the job
func (c JobConfig) Transform() imaging.TransformOptions {
	return imaging.TransformOptions{
		Negative: c.Negative,
		Mirror:   c.Mirror,
		Rotate:   c.Rotate,
	}
}

// LogValue groups the settings that matter when reading a job log
func (c JobConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("job", c.JobID),
		slog.String("user", c.User),
		slog.Int("copies", c.Copies),
		slog.Int("speed", c.Speed),
		slog.Int("darkness", c.Darkness),
		slog.String("size", fmt.Sprintf("%dx%dmm", c.PageWidthMM, c.PageHeightMM)),
		slog.String("gap", fmt.Sprintf("%d,%dmm", c.GapHeight, c.GapOffset)),
		slog.String("reference", fmt.Sprintf("%d,%d", c.Horizontal, c.Vertical)),
		slog.Bool("mirror", c.Mirror),
		slog.Bool("negative", c.Negative),
		slog.Any("rotate", c.Rotate),
	)
}

// Resolve builds the job configuration from the filter arguments, the
// option string and the environment. Problems with individual values are
// returned as warnings; the returned configuration is always usable.
func Resolve(args Args, getenv func(string) string) (JobConfig, []error) {
	cfg := Default()
	var warnings []error

	cfg.JobID = atoi(args.JobID)
	cfg.User = args.User
	cfg.Title = args.Title
	cfg.Copies = atoi(args.Copies)
	cfg.PPDPath = PPDPath(getenv)

	warnings = append(warnings, cfg.Apply(ParseOptions(args.Options))...)
	warnings = append(warnings, cfg.Validate()...)
	return cfg, warnings
}

// Apply overrides fields from named options
func (c *JobConfig) Apply(opts Options) []error {
	var warnings []error

	ints := []struct {
		name string
		dst  *int
	}{
		{OptDarkness, &c.Darkness},
		{OptPrintSpeed, &c.Speed},
		{OptMediaType, &c.MediaType},
		{OptPrintMode, &c.PrintMode},
		{OptHorizontal, &c.Horizontal},
		{OptVertical, &c.Vertical},
		{OptGapHeight, &c.GapHeight},
		{OptGapOffset, &c.GapOffset},
	}
	for _, o := range ints {
		if v, ok := opts.Get(o.name); ok {
			*o.dst = atoi(v)
		}
	}

	if v, ok := opts.Get(OptMirror); ok {
		c.Mirror = parseFlag(v)
	}
	if v, ok := opts.Get(OptNegative); ok {
		c.Negative = parseFlag(v)
	}

	if v, ok := opts.Get(OptRotate); ok {
		r, err := ParseRotation(v)
		if err != nil {
			warnings = append(warnings, err)
		}
		c.Rotate = r
	}

	if v, ok := opts.Get(OptPageSize); ok {
		if w, h, ok := ParsePageSize(v); ok {
			c.PageWidthMM, c.PageHeightMM = w, h
		} else {
			warnings = append(warnings, fmt.Errorf("%s=%q: %w", OptPageSize, v, ErrBadValue))
		}
	}
	return warnings
}

// Validate clamps values outside their documented ranges and reports each
// correction.
func (c *JobConfig) Validate() []error {
	var warnings []error
	clamp := func(name string, v *int, lo, hi int) {
		n := min(max(*v, lo), hi)
		if n != *v {
			warnings = append(warnings, fmt.Errorf("%s=%d %w [%d,%d], using %d", name, *v, ErrOutOfRange, lo, hi, n))
			*v = n
		}
	}
	const unbounded = int(^uint(0) >> 1)

	clamp("copies", &c.Copies, MinCopies, unbounded)
	clamp(OptDarkness, &c.Darkness, MinDarkness, MaxDarkness)
	clamp(OptPrintSpeed, &c.Speed, MinSpeed, MaxSpeed)
	clamp(OptGapHeight, &c.GapHeight, 0, unbounded)
	clamp(OptGapOffset, &c.GapOffset, 0, unbounded)
	clamp("page width", &c.PageWidthMM, 0, unbounded)
	clamp("page height", &c.PageHeightMM, 0, unbounded)

	if !c.Rotate.Valid() {
		warnings = append(warnings, fmt.Errorf("%s=%d: %w, not rotating", OptRotate, int(c.Rotate), ErrBadValue))
		c.Rotate = imaging.RotateNone
	}
	return warnings
}

// ParseRotation accepts degrees (0, 90, 180, 270) or the PPD choice 2,
// which selects a quarter turn.
func ParseRotation(s string) (imaging.Rotation, error) {
	n := atoi(s)
	switch n {
	case 2:
		return imaging.Rotate90, nil
	case 0, 90, 180, 270:
		return imaging.Rotation(n), nil
	}
	return imaging.RotateNone, fmt.Errorf("%s=%q: %w", OptRotate, s, ErrBadValue)
}

var (
	customSize = regexp.MustCompile(`^Custom\.(\d+)x(\d+)`)
	namedSize  = regexp.MustCompile(`^w(\d+)h(\d+)`)
)

// ParsePageSize converts a PageSize value given in points, either
// Custom.<W>x<H> or w<W>h<H>, to whole millimetres.
func ParsePageSize(s string) (widthMM, heightMM int, ok bool) {
	m := customSize.FindStringSubmatch(s)
	if m == nil {
		m = namedSize.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return PointsToMM(w), PointsToMM(h), true
}

// PointsToMM converts points to millimetres, truncating
func PointsToMM(points int) int {
	return int(float64(points) / PointsPerMM)
}

// PPDPath locates the queue's PPD file. cupsd exports it as PPD; otherwise
// it is derived from the PRINTER queue name.
func PPDPath(getenv func(string) string) string {
	if p := getenv("PPD"); p != "" {
		return p
	}
	if name := getenv("PRINTER"); name != "" {
		return filepath.Join(PPDDir, name+".ppd")
	}
	return ""
}

// atoi parses a leading decimal integer the way C's atoi does: surrounding
// junk is ignored and anything unparsable is 0.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	}
	return atoi(s) != 0
}
