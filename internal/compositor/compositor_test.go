package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/capture"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/pagination"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/sink"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/tables"
)

type drawnImage struct {
	page           sink.PageHandle
	xMm, yMm       float64
	wMm, hMm       float64
	payloadPresent bool
}

// recordingSink captures draw calls for assertions.
type recordingSink struct {
	pages  int
	images []drawnImage
}

func (r *recordingSink) AddPage(widthMm, heightMm float64) (sink.PageHandle, error) {
	r.pages++
	return sink.PageHandle(r.pages - 1), nil
}

func (r *recordingSink) DrawImage(page sink.PageHandle, img []byte, format string, xMm, yMm, wMm, hMm float64) error {
	r.images = append(r.images, drawnImage{
		page: page, xMm: xMm, yMm: yMm, wMm: wMm, hMm: hMm,
		payloadPresent: len(img) > 0,
	})
	return nil
}

func (r *recordingSink) DrawText(page sink.PageHandle, text string, xMm, yMm float64, opt sink.TextOptions) error {
	return nil
}

func (r *recordingSink) TextWidthMm(text string, sizePt float64) float64 { return 0 }
func (r *recordingSink) SetMetadata(meta sink.Metadata)                 {}
func (r *recordingSink) Bytes() ([]byte, error)                         { return nil, nil }
func (r *recordingSink) PageCount() int                                 { return r.pages }

func testGeometry() PageGeometry {
	return PageGeometry{
		PageWidthMm:    210,
		PageHeightMm:   297,
		MarginTopMm:    10,
		MarginRightMm:  10,
		MarginBottomMm: 10,
		MarginLeftMm:   10,
		DPI:            96,
	}
}

func TestPageGeometry_Conversions(t *testing.T) {
	g := testGeometry()
	assert.InDelta(t, 190.0, g.UsableWidthMm(), 1e-9)
	assert.InDelta(t, 277.0, g.UsableHeightMm(), 1e-9)

	// 96 px at 96 DPI is one inch, 25.4 mm.
	assert.InDelta(t, 25.4, g.PxToMm(96), 1e-9)
	assert.Equal(t, 96, g.MmToPx(25.4))
}

func TestComposePage_SingleItem(t *testing.T) {
	rec := &recordingSink{}
	c := &Compositor{Sink: rec, Geometry: testGeometry()}
	items := []Item{{
		Surface:        capture.NewSurface(600, 1000),
		Scale:          1.0,
		ScaledHeightPx: 1000,
	}}

	page, err := c.ComposePage(pagination.Slice{Index: 0, StartPx: 0, EndPx: 400}, items)
	require.NoError(t, err)
	assert.Equal(t, sink.PageHandle(0), page)
	assert.Equal(t, 1, rec.pages)

	require.Len(t, rec.images, 1)
	img := rec.images[0]
	assert.True(t, img.payloadPresent)
	assert.InDelta(t, 10.0, img.xMm, 1e-9)
	assert.InDelta(t, 10.0, img.yMm, 1e-9)
	assert.InDelta(t, c.Geometry.UsableWidthMm(), img.wMm, 1e-9)
	assert.InDelta(t, c.Geometry.PxToMm(400), img.hMm, 1e-9)
}

func TestComposePage_DegenerateSlice(t *testing.T) {
	c := &Compositor{Sink: &recordingSink{}, Geometry: testGeometry()}
	_, err := c.ComposePage(pagination.Slice{StartPx: 100, EndPx: 100}, nil)
	assert.Error(t, err)
}

func TestComposePage_HeaderRepeatDrawsTwoBands(t *testing.T) {
	rec := &recordingSink{}
	c := &Compositor{Sink: rec, Geometry: testGeometry()}
	items := []Item{{
		Surface:        capture.NewSurface(600, 1500),
		Scale:          1.0,
		ScaledHeightPx: 1500,
	}}

	slice := pagination.Slice{
		Index:        1,
		StartPx:      500,
		EndPx:        900,
		RepeatHeader: &tables.HeaderRepeat{SrcStartPx: 0, SrcEndPx: 60},
	}
	_, err := c.ComposePage(slice, items)
	require.NoError(t, err)

	require.Len(t, rec.images, 2)
	header, body := rec.images[0], rec.images[1]
	assert.InDelta(t, c.Geometry.PxToMm(60), header.hMm, 1e-9)
	assert.InDelta(t, 10.0, header.yMm, 1e-9)
	// The content band starts below the repeated header.
	assert.InDelta(t, header.yMm+header.hMm, body.yMm, 1e-9)
}

func TestComposePage_OversizedSliceFitsPage(t *testing.T) {
	rec := &recordingSink{}
	g := testGeometry()
	c := &Compositor{Sink: rec, Geometry: g}

	// 2000px at 96 DPI is ~529mm, far beyond the 277mm usable height.
	items := []Item{{
		Surface:        capture.NewSurface(600, 2000),
		Scale:          1.0,
		ScaledHeightPx: 2000,
	}}
	_, err := c.ComposePage(pagination.Slice{StartPx: 0, EndPx: 2000}, items)
	require.NoError(t, err)

	require.Len(t, rec.images, 1)
	assert.InDelta(t, g.UsableHeightMm(), rec.images[0].hMm, 1e-6)
	assert.Less(t, rec.images[0].wMm, g.UsableWidthMm())

	// The scale-down is surfaced as a warning, not just a debug print.
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, progress.WarnRowOverflow, c.Warnings[0].Kind)
	assert.Equal(t, 0, c.Warnings[0].OffsetPx)
}

func TestComposePage_NormalSliceEmitsNoWarning(t *testing.T) {
	rec := &recordingSink{}
	c := &Compositor{Sink: rec, Geometry: testGeometry()}
	items := []Item{{
		Surface:        capture.NewSurface(600, 400),
		Scale:          1.0,
		ScaledHeightPx: 400,
	}}
	_, err := c.ComposePage(pagination.Slice{StartPx: 0, EndPx: 400}, items)
	require.NoError(t, err)
	assert.Empty(t, c.Warnings)
}

func TestComposePage_BandSpansItems(t *testing.T) {
	rec := &recordingSink{}
	c := &Compositor{Sink: rec, Geometry: testGeometry()}
	items := []Item{
		{Surface: capture.NewSurface(600, 300), Scale: 1.0, OffsetPx: 0, ScaledHeightPx: 300},
		{Surface: capture.NewSurface(600, 500), Scale: 1.0, OffsetPx: 300, ScaledHeightPx: 500},
	}

	_, err := c.ComposePage(pagination.Slice{StartPx: 100, EndPx: 600}, items)
	require.NoError(t, err)

	// One drawn band per overlapped item, stacked vertically.
	require.Len(t, rec.images, 2)
	assert.InDelta(t, c.Geometry.PxToMm(200), rec.images[0].hMm, 1e-9)
	assert.InDelta(t, c.Geometry.PxToMm(300), rec.images[1].hMm, 1e-9)
	assert.InDelta(t, rec.images[0].yMm+rec.images[0].hMm, rec.images[1].yMm, 1e-9)
}

func TestComposePage_ScaledItemResamples(t *testing.T) {
	rec := &recordingSink{}
	c := &Compositor{Sink: rec, Geometry: testGeometry()}
	// Natural 800px compressed to 400px in concatenated space.
	items := []Item{{
		Surface:        capture.NewSurface(600, 800),
		Scale:          0.5,
		ScaledHeightPx: 400,
	}}

	_, err := c.ComposePage(pagination.Slice{StartPx: 0, EndPx: 400}, items)
	require.NoError(t, err)
	require.Len(t, rec.images, 1)
	assert.InDelta(t, c.Geometry.PxToMm(400), rec.images[0].hMm, 1e-9)
}
