package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rw402b-filter/internal/imaging"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Options
	}{
		{"empty", "", Options{}},
		{
			name: "pairs",
			in:   "Darkness=10  PrintSpeed=3\tPageSize=w144h72",
			want: Options{"Darkness": "10", "PrintSpeed": "3", "PageSize": "w144h72"},
		},
		{
			name: "bare flags",
			in:   "GD41Mirror noGD41Negative collate",
			want: Options{"GD41Mirror": "true", "GD41Negative": "false", "collate": "true"},
		},
		{
			name: "quoted values",
			in:   `job-name="My Label" title='a b' x=a\ b`,
			want: Options{"job-name": "My Label", "title": "a b", "x": "a b"},
		},
		{
			name: "braced collection",
			in:   `media-col={media-size={x-dimension=5000} media-type="a b"} Darkness=3`,
			want: Options{"media-col": `{media-size={x-dimension=5000} media-type="a b"}`, "Darkness": "3"},
		},
		{
			name: "case sensitive and last wins",
			in:   "darkness=1 Darkness=2 Darkness=5",
			want: Options{"darkness": "1", "Darkness": "5"},
		},
		{"stray equals", "=5 Speed=2", Options{"Speed": "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOptions(tt.in))
		})
	}
}

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		in     string
		w, h   int
		wantOK bool
	}{
		{"Custom.200x100", 70, 35, true},
		{"w200h100", 70, 35, true},
		{"w288h432", 101, 152, true},
		{"Custom.141.7x85", 0, 0, false},
		{"A4", 0, 0, false},
		{"Custom.x100", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, ok := ParsePageSize(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestParseArgs(t *testing.T) {
	_, err := ParseArgs([]string{"1", "bob", "t", "1"})
	assert.ErrorIs(t, err, ErrUsage)
	_, err = ParseArgs([]string{"1", "bob", "t", "1", "", "f", "extra"})
	assert.ErrorIs(t, err, ErrUsage)

	a, err := ParseArgs([]string{"7", "bob", "label", "2", "Darkness=3"})
	require.NoError(t, err)
	assert.Equal(t, "", a.File)

	a, err = ParseArgs([]string{"7", "bob", "label", "2", "Darkness=3", "/tmp/in.ras"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/in.ras", a.File)
	assert.Equal(t, "Darkness=3", a.Options)
}

func TestResolveDefaults(t *testing.T) {
	cfg, warnings := Resolve(Args{JobID: "42", User: "bob", Title: "t", Copies: "3"}, env(nil))
	assert.Empty(t, warnings)
	assert.Equal(t, JobConfig{
		JobID:     42,
		User:      "bob",
		Title:     "t",
		Copies:    3,
		Speed:     4,
		MediaType: 1,
		Darkness:  12,
		GapHeight: 3,
	}, cfg)
}

func TestResolveOptions(t *testing.T) {
	args := Args{
		JobID:  "1",
		Copies: "1",
		Options: "Darkness=8 PrintSpeed=2 MediaType=0 PrintMode=1 Horizontal=-4 Vertical=6 " +
			"GapHeight=2 GapOffset=1 GD41Mirror=1 GD41Negative Rotate=90 PageSize=Custom.200x100",
	}
	cfg, warnings := Resolve(args, env(map[string]string{"PRINTER": "rw402b"}))
	assert.Empty(t, warnings)

	assert.Equal(t, 8, cfg.Darkness)
	assert.Equal(t, 2, cfg.Speed)
	assert.Equal(t, 0, cfg.MediaType)
	assert.Equal(t, 1, cfg.PrintMode)
	assert.Equal(t, -4, cfg.Horizontal)
	assert.Equal(t, 6, cfg.Vertical)
	assert.Equal(t, 2, cfg.GapHeight)
	assert.Equal(t, 1, cfg.GapOffset)
	assert.True(t, cfg.Mirror)
	assert.True(t, cfg.Negative)
	assert.Equal(t, imaging.Rotate90, cfg.Rotate)
	assert.Equal(t, 70, cfg.PageWidthMM)
	assert.Equal(t, 35, cfg.PageHeightMM)
	assert.Equal(t, "/etc/cups/ppd/rw402b.ppd", cfg.PPDPath)
}

func TestResolveWarnings(t *testing.T) {
	args := Args{
		Copies:  "0",
		Options: "Darkness=40 PrintSpeed=abc Rotate=45 PageSize=Letter GapHeight=-1",
	}
	cfg, warnings := Resolve(args, env(nil))

	assert.Len(t, warnings, 6)
	assert.Equal(t, 1, cfg.Copies)
	assert.Equal(t, MaxDarkness, cfg.Darkness)
	assert.Equal(t, MinSpeed, cfg.Speed)
	assert.Equal(t, 0, cfg.GapHeight)
	assert.Equal(t, imaging.RotateNone, cfg.Rotate)
	assert.Zero(t, cfg.PageWidthMM)
	assert.Zero(t, cfg.PageHeightMM)
	for _, w := range warnings {
		assert.Error(t, w)
	}
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		in      string
		want    imaging.Rotation
		wantErr bool
	}{
		{"0", imaging.RotateNone, false},
		{"2", imaging.Rotate90, false},
		{"90", imaging.Rotate90, false},
		{"180", imaging.Rotate180, false},
		{"270", imaging.Rotate270, false},
		{"1", imaging.RotateNone, true},
		{"sideways", imaging.RotateNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRotation(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestAtoi(t *testing.T) {
	tests := map[string]int{
		"12":    12,
		" 7mm":  7,
		"-3":    -3,
		"+5":    5,
		"true":  0,
		"":      0,
		"4.5":   4,
		"99999": 99999,
	}
	for in, want := range tests {
		assert.Equal(t, want, atoi(in), "atoi(%q)", in)
	}
}

func TestPPDPath(t *testing.T) {
	assert.Equal(t, "", PPDPath(env(nil)))
	assert.Equal(t, "/x/y.ppd", PPDPath(env(map[string]string{"PPD": "/x/y.ppd", "PRINTER": "q"})))
	assert.Equal(t, "/etc/cups/ppd/q.ppd", PPDPath(env(map[string]string{"PRINTER": "q"})))
}
