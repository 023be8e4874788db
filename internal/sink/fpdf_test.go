package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFpdfSink_WritesDocument(t *testing.T) {
	s := NewFpdfSink("P")
	s.SetMetadata(Metadata{Title: "doc", Author: "tests"})

	page, err := s.AddPage(210, 297)
	require.NoError(t, err)
	assert.Equal(t, PageHandle(0), page)

	require.NoError(t, s.DrawImage(page, pngBytes(t), "PNG", 10, 10, 100, 100))
	require.NoError(t, s.DrawText(page, "1 / 1", 100, 290, TextOptions{SizePt: 9}))

	blob, err := s.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(blob[:5]), "%PDF-"))
	assert.Equal(t, 1, s.PageCount())
}

func TestFpdfSink_MultiplePagesAndSizes(t *testing.T) {
	s := NewFpdfSink("P")
	_, err := s.AddPage(210, 297)
	require.NoError(t, err)
	// A landscape page in the same document.
	_, err = s.AddPage(297, 210)
	require.NoError(t, err)
	assert.Equal(t, 2, s.PageCount())

	_, err = s.Bytes()
	require.NoError(t, err)
}

func TestFpdfSink_RejectsClosedPage(t *testing.T) {
	s := NewFpdfSink("P")
	first, err := s.AddPage(210, 297)
	require.NoError(t, err)
	_, err = s.AddPage(210, 297)
	require.NoError(t, err)

	err = s.DrawText(first, "late", 10, 10, TextOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
}

func TestFpdfSink_RejectsDrawingWithoutPage(t *testing.T) {
	s := NewFpdfSink("P")
	err := s.DrawText(0, "x", 10, 10, TextOptions{})
	assert.ErrorIs(t, err, ErrWrite)
}

func TestFpdfSink_TextWidth(t *testing.T) {
	s := NewFpdfSink("P")
	_, err := s.AddPage(210, 297)
	require.NoError(t, err)

	short := s.TextWidthMm("ab", 10)
	long := s.TextWidthMm("abcdef", 10)
	assert.Greater(t, long, short)
	assert.Greater(t, short, 0.0)
}

func TestFpdfSink_RotatedWatermarkText(t *testing.T) {
	s := NewFpdfSink("P")
	page, err := s.AddPage(210, 297)
	require.NoError(t, err)

	err = s.DrawText(page, "DRAFT", 60, 150, TextOptions{
		SizePt: 48, R: 150, G: 150, B: 150,
		Alpha: 0.15, AngleDeg: 45, Bold: true,
	})
	require.NoError(t, err)

	_, err = s.Bytes()
	require.NoError(t, err)
}
