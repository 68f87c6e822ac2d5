package printer

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopPort records writes and serves canned replies
type loopPort struct {
	written bytes.Buffer
	reply   *bytes.Reader
	closed  bool
	failOn  int // fail the nth write, 0 never
	writes  int
}

func (l *loopPort) Write(p []byte) (int, error) {
	l.writes++
	if l.failOn != 0 && l.writes == l.failOn {
		return 0, errors.New("line dropped")
	}
	return l.written.Write(p)
}

func (l *loopPort) Read(p []byte) (int, error) {
	if l.reply == nil {
		return 0, io.EOF
	}
	return l.reply.Read(p)
}

func (l *loopPort) Close() error {
	l.closed = true
	return nil
}

func TestSend(t *testing.T) {
	port := &loopPort{}
	p := NewPrinter(port, "/dev/ttyUSB0")

	job := strings.Repeat("BITMAP", 2000)
	n, err := p.Send(strings.NewReader(job))
	require.NoError(t, err)
	assert.Equal(t, int64(len(job)), n)
	assert.Equal(t, "\x1b!O"+job, port.written.String())
	assert.Greater(t, port.writes, 2, "large jobs are written in chunks")

	require.NoError(t, p.Close())
	assert.True(t, port.closed)
	_, err = p.Send(strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSendWriteError(t *testing.T) {
	p := NewPrinter(&loopPort{failOn: 2}, "x")
	_, err := p.Send(strings.NewReader("CLS\r\n"))
	assert.ErrorContains(t, err, "line dropped")
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		reply   []byte
		want    Status
		ready   bool
		text    string
		wantErr error
	}{
		{"ready", []byte{0x00}, 0, true, "ready", nil},
		{"printing", []byte{0x20}, StatusPrinting, true, "printing", nil},
		{"paused", []byte{0x10}, StatusPaused, true, "paused", nil},
		{"no paper and open", []byte{0x05}, StatusHeadOpen | StatusPaperEmpty, false, "head open, out of paper", nil},
		{"silent", nil, 0, false, "", ErrNoStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &loopPort{reply: bytes.NewReader(tt.reply)}
			st, err := NewPrinter(port, "x").Status()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, st)
			assert.Equal(t, tt.ready, st.Ready())
			assert.Equal(t, tt.text, st.String())
			assert.Equal(t, "\x1b!?", port.written.String())
		})
	}
}
