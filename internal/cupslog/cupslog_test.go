package cupslog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Debug("hidden")
	log.Info("starting", "job", 12)
	log.Warn("clamped", "option", "Darkness", "value", 40)
	log.Error("short read\nabort", "err", "unexpected EOF")

	want := "INFO: starting job=12\n" +
		"WARNING: clamped option=Darkness value=40\n" +
		"ERROR: short read abort err=\"unexpected EOF\"\n"
	assert.Equal(t, want, buf.String())
}

func TestHandlerDebugAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true).With("job", 3).WithGroup("page")

	log.Debug("read", slog.Int("n", 1), slog.Group("size", slog.Int("w", 8), slog.Int("h", 2)))
	assert.Equal(t, "DEBUG: read job=3 page.n=1 page.size.w=8 page.size.h=2\n", buf.String())
}

func TestHandlerEmptyValue(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Info("config", "ppd", "")
	assert.Equal(t, "INFO: config ppd=\"\"\n", buf.String())
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Page(&buf, 2, 5))
	assert.Equal(t, "PAGE: 2 5\n", buf.String())
}
