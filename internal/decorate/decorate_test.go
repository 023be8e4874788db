package decorate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/compositor"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/sink"
)

type drawnText struct {
	text     string
	xMm, yMm float64
	opt      sink.TextOptions
}

type recordingSink struct {
	texts  []drawnText
	images int
}

func (r *recordingSink) AddPage(widthMm, heightMm float64) (sink.PageHandle, error) {
	return 0, nil
}

func (r *recordingSink) DrawImage(page sink.PageHandle, img []byte, format string, xMm, yMm, wMm, hMm float64) error {
	r.images++
	return nil
}

func (r *recordingSink) DrawText(page sink.PageHandle, text string, xMm, yMm float64, opt sink.TextOptions) error {
	r.texts = append(r.texts, drawnText{text: text, xMm: xMm, yMm: yMm, opt: opt})
	return nil
}

func (r *recordingSink) TextWidthMm(text string, sizePt float64) float64 {
	// 2mm per rune keeps alignment math simple.
	return float64(len([]rune(text))) * 2
}

func (r *recordingSink) SetMetadata(meta sink.Metadata) {}
func (r *recordingSink) Bytes() ([]byte, error)         { return nil, nil }
func (r *recordingSink) PageCount() int                 { return 0 }

func testGeometry() compositor.PageGeometry {
	return compositor.PageGeometry{
		PageWidthMm:    210,
		PageHeightMm:   297,
		MarginTopMm:    10,
		MarginRightMm:  10,
		MarginBottomMm: 10,
		MarginLeftMm:   10,
		DPI:            96,
	}
}

func TestApply_Disabled(t *testing.T) {
	rec := &recordingSink{}
	d := New(Options{}, testGeometry(), nil)
	require.NoError(t, d.Apply(rec, 0, 1, 3))
	assert.Empty(t, rec.texts)
	assert.Zero(t, rec.images)
}

func TestApply_TemplateExpansion(t *testing.T) {
	rec := &recordingSink{}
	d := New(Options{
		HeaderTemplate: "Report",
		FooterTemplate: "Page {page} of {pages}",
	}, testGeometry(), nil)
	require.NoError(t, d.Apply(rec, 0, 2, 7))

	require.Len(t, rec.texts, 2)
	assert.Equal(t, "Report", rec.texts[0].text)
	assert.Equal(t, "Page 2 of 7", rec.texts[1].text)
}

func TestApply_PageNumbersDefaultFooter(t *testing.T) {
	rec := &recordingSink{}
	d := New(Options{PageNumbers: true}, testGeometry(), nil)
	require.NoError(t, d.Apply(rec, 0, 3, 9))

	require.Len(t, rec.texts, 1)
	assert.Equal(t, "3 / 9", rec.texts[0].text)
	// Centered horizontally: width is 5 runes * 2mm.
	assert.InDelta(t, (210.0-10.0)/2, rec.texts[0].xMm, 1e-9)
	// Drawn in the bottom margin band.
	assert.Greater(t, rec.texts[0].yMm, 297.0-10.0)
}

func TestApply_FooterTemplateWinsOverPageNumbers(t *testing.T) {
	rec := &recordingSink{}
	d := New(Options{PageNumbers: true, FooterTemplate: "confidential"}, testGeometry(), nil)
	require.NoError(t, d.Apply(rec, 0, 1, 1))
	require.Len(t, rec.texts, 1)
	assert.Equal(t, "confidential", rec.texts[0].text)
}

func TestApply_HeaderAlignment(t *testing.T) {
	ltr := &recordingSink{}
	d := New(Options{HeaderTemplate: "Latin header"}, testGeometry(), nil)
	require.NoError(t, d.Apply(ltr, 0, 1, 1))
	require.Len(t, ltr.texts, 1)
	assert.InDelta(t, 10.0, ltr.texts[0].xMm, 1e-9)

	rtl := &recordingSink{}
	d = New(Options{HeaderTemplate: "שלום"}, testGeometry(), nil)
	require.NoError(t, d.Apply(rtl, 0, 1, 1))
	require.Len(t, rtl.texts, 1)
	// Right-aligned: page width minus right margin minus text width.
	assert.InDelta(t, 210.0-10.0-4*2, rtl.texts[0].xMm, 1e-9)
}

func TestApply_TextWatermark(t *testing.T) {
	rec := &recordingSink{}
	d := New(Options{WatermarkText: "DRAFT", WatermarkOpacity: 0.3}, testGeometry(), nil)
	require.NoError(t, d.Apply(rec, 0, 1, 1))

	require.Len(t, rec.texts, 1)
	wm := rec.texts[0]
	assert.Equal(t, "DRAFT", wm.text)
	assert.InDelta(t, 0.3, wm.opt.Alpha, 1e-9)
	assert.InDelta(t, 45.0, wm.opt.AngleDeg, 1e-9)
	assert.True(t, wm.opt.Bold)
	assert.InDelta(t, 297.0/2, wm.yMm, 1e-9)
}

func TestNew_Defaults(t *testing.T) {
	d := New(Options{WatermarkText: "x"}, testGeometry(), nil)
	assert.InDelta(t, 9.0, d.opts.FontSizePt, 1e-9)
	assert.InDelta(t, 0.15, d.opts.WatermarkOpacity, 1e-9)
	assert.InDelta(t, 45.0, d.opts.WatermarkAngleDeg, 1e-9)
}

func TestTextDirection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Direction
	}{
		{"latin", "hello", LeftToRight},
		{"hebrew", "שלום", RightToLeft},
		{"arabic", "مرحبا", RightToLeft},
		{"leading digits then latin", "123 pages", LeftToRight},
		{"leading digits then hebrew", "123 שלום", RightToLeft},
		{"empty", "", LeftToRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textDirection(tt.text))
		})
	}
}

func TestExpand(t *testing.T) {
	d := New(Options{}, testGeometry(), nil)
	assert.Equal(t, "2 / 9", d.expand("{page} / {pages}", 2, 9))
	assert.Equal(t, "no placeholders", d.expand("no placeholders", 1, 1))
}
