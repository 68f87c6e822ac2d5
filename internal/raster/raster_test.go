package raster

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayHeader(w, h int) Header {
	return Header{
		HWResolution: [2]int{203, 203},
		NumCopies:    1,
		PageSize:     [2]int{144, 72},
		Width:        w,
		Height:       h,
		BitsPerColor: 8,
		BitsPerPixel: 8,
		BytesPerLine: w,
		ColorSpace:   ColorSpacesGray,
		NumColors:    1,
		PageSizeName: "w144h72",
	}
}

func ramp(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 13)
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		compressed bool
		version    int
	}{
		{"uncompressed", false, 3},
		{"compressed", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			white := bytes.Repeat([]byte{0xFF}, 16*5)
			pages := []struct {
				h   Header
				pix []byte
			}{
				{grayHeader(16, 5), white},
				{grayHeader(7, 3), ramp(21)},
				{grayHeader(0, 0), nil},
			}

			var buf bytes.Buffer
			w, err := NewWriter(&buf, tt.compressed)
			require.NoError(t, err)
			for _, p := range pages {
				require.NoError(t, w.WritePage(p.h, p.pix))
			}
			require.NoError(t, w.Flush())

			if tt.compressed {
				assert.Less(t, buf.Len(), 4+3*HeaderSize+len(white))
			}

			r, err := NewReader(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.version, r.Version())

			for _, p := range pages {
				h, err := r.NextHeader()
				require.NoError(t, err)
				assert.Equal(t, p.h, h)

				got := make([]byte, h.PageBytes())
				require.NoError(t, r.ReadPixels(got))
				assert.Equal(t, len(p.pix), len(got))
				if len(p.pix) > 0 {
					assert.Equal(t, p.pix, got)
				}
			}
			_, err = r.NextHeader()
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestReadCompressedLines(t *testing.T) {
	h := grayHeader(4, 3)
	var buf bytes.Buffer
	buf.WriteString("RaS2")
	buf.Write(encodeHeader(&h, binary.BigEndian))
	// two copies of: run of two 0x10, literal 0x20 0x30
	buf.Write([]byte{0x01, 0x01, 0x10, 0xFF, 0x20, 0x30})
	// one line cleared to paper white
	buf.Write([]byte{0x00, 0x80})

	r, err := NewReader(&buf)
	require.NoError(t, err)
	_, err = r.NextHeader()
	require.NoError(t, err)

	got := make([]byte, 12)
	// read in odd sized pieces across line boundaries
	require.NoError(t, r.ReadPixels(got[:3]))
	require.NoError(t, r.ReadPixels(got[3:10]))
	require.NoError(t, r.ReadPixels(got[10:]))
	assert.Equal(t, []byte{
		0x10, 0x10, 0x20, 0x30,
		0x10, 0x10, 0x20, 0x30,
		0xFF, 0xFF, 0xFF, 0xFF,
	}, got)
	assert.ErrorIs(t, r.ReadPixels(make([]byte, 1)), ErrPageOverrun)
}

func TestLittleEndianHeader(t *testing.T) {
	h := grayHeader(3, 2)
	var buf bytes.Buffer
	buf.WriteString("3SaR")
	buf.Write(encodeHeader(&h, binary.LittleEndian))
	buf.Write(ramp(6))

	r, err := NewReader(&buf)
	require.NoError(t, err)
	got, err := r.NextHeader()
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestBadSync(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("%!PS-Adobe")))
	assert.ErrorIs(t, err, ErrBadSync)

	_, err = NewReader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrBadSync)
}

func TestShortPixels(t *testing.T) {
	h := grayHeader(8, 8)
	var buf bytes.Buffer
	buf.WriteString("RaS3")
	buf.Write(encodeHeader(&h, binary.BigEndian))
	buf.Write(ramp(20))

	r, err := NewReader(&buf)
	require.NoError(t, err)
	_, err = r.NextHeader()
	require.NoError(t, err)

	err = r.ReadPixels(make([]byte, 64))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTruncatedHeader(t *testing.T) {
	h := grayHeader(8, 8)
	var buf bytes.Buffer
	buf.WriteString("RaS3")
	buf.Write(encodeHeader(&h, binary.BigEndian)[:100])

	r, err := NewReader(&buf)
	require.NoError(t, err)
	_, err = r.NextHeader()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestNextHeaderSkipsUnreadPage(t *testing.T) {
	for _, compressed := range []bool{false, true} {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, compressed)
		require.NoError(t, err)
		require.NoError(t, w.WritePage(grayHeader(5, 4), ramp(20)))
		second := grayHeader(2, 1)
		require.NoError(t, w.WritePage(second, []byte{1, 2}))
		require.NoError(t, w.Flush())

		r, err := NewReader(&buf)
		require.NoError(t, err)
		_, err = r.NextHeader()
		require.NoError(t, err)
		require.NoError(t, r.ReadPixels(make([]byte, 3)))
		assert.Equal(t, 17, r.Remaining())

		h, err := r.NextHeader()
		require.NoError(t, err)
		assert.Equal(t, second, h)
		got := make([]byte, 2)
		require.NoError(t, r.ReadPixels(got))
		assert.Equal(t, []byte{1, 2}, got)
	}
}

func TestLineTooLong(t *testing.T) {
	h := grayHeader(0, 0)
	h.BytesPerLine = 1 << 30
	var buf bytes.Buffer
	buf.WriteString("RaS2")
	buf.Write(encodeHeader(&h, binary.BigEndian))

	r, err := NewReader(&buf)
	require.NoError(t, err)
	_, err = r.NextHeader()
	assert.ErrorIs(t, err, ErrLineTooLong)
	assert.Zero(t, r.Remaining())
	assert.ErrorIs(t, r.ReadPixels(make([]byte, 1)), ErrPageOverrun)
}

func TestMaxLineBytes(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, false)
	require.NoError(t, err)
	require.NoError(t, w.WritePage(grayHeader(5, 1), ramp(5)))
	require.NoError(t, w.Flush())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	r.MaxLineBytes = 4
	_, err = r.NextHeader()
	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestPageBytes(t *testing.T) {
	tests := []struct {
		name         string
		line, height int
		want         int
	}{
		{"normal", 50, 240, 12000},
		{"empty", 0, 240, 0},
		{"negative", -1, 240, 0},
		{"saturates", math.MaxInt / 2, 3, math.MaxInt},
		{"max by max", math.MaxInt, math.MaxInt, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header{BytesPerLine: tt.line, Height: tt.height}
			assert.Equal(t, tt.want, h.PageBytes())
		})
	}
}

func TestWriterIncompletePage(t *testing.T) {
	w, err := NewWriter(io.Discard, false)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(grayHeader(4, 4)))
	require.NoError(t, w.WritePixels(make([]byte, 8)))
	assert.ErrorIs(t, w.Flush(), ErrIncompletePage)
	assert.ErrorIs(t, w.WritePixels(make([]byte, 9)), ErrPageOverrun)
}

func TestAppendLine(t *testing.T) {
	tests := []struct {
		name string
		line []byte
		want []byte
	}{
		{"single", []byte{7}, []byte{0x00, 7}},
		{"run", []byte{5, 5, 5}, []byte{0x02, 5}},
		{"literal", []byte{1, 2, 3}, []byte{0xFE, 1, 2, 3}},
		{"literal then run", []byte{1, 2, 9, 9}, []byte{0xFF, 1, 2, 0x01, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appendLine(nil, tt.line, 1))
		})
	}
}
