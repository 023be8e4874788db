// Package compositor turns page slices into drawing calls: it crops the
// captured surface per slice, resamples when a batch scale applies, and
// pastes the result onto the physical page through the PDF sink.
package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/capture"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/pagination"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/sink"
)

// PageGeometry fixes the physical page: size and margins in millimeters,
// and the pixel density tying surface pixels to millimeters.
type PageGeometry struct {
	PageWidthMm  float64
	PageHeightMm float64
	// Margins in CSS order: top, right, bottom, left
	MarginTopMm    float64
	MarginRightMm  float64
	MarginBottomMm float64
	MarginLeftMm   float64
	// ReservedMm is page height withheld for decoration (footer line)
	ReservedMm float64
	DPI        float64
}

// UsableWidthMm returns the content width between the side margins
func (g PageGeometry) UsableWidthMm() float64 {
	return g.PageWidthMm - g.MarginLeftMm - g.MarginRightMm
}

// UsableHeightMm returns the content height between the vertical margins,
// minus any decoration reservation
func (g PageGeometry) UsableHeightMm() float64 {
	return g.PageHeightMm - g.MarginTopMm - g.MarginBottomMm - g.ReservedMm
}

// PxToMm converts surface pixels to millimeters at the geometry's DPI
func (g PageGeometry) PxToMm(px int) float64 {
	return float64(px) * 25.4 / g.DPI
}

// MmToPx converts millimeters to surface pixels at the geometry's DPI
func (g PageGeometry) MmToPx(mm float64) int {
	return int(math.Round(mm * g.DPI / 25.4))
}

// Item is the compositor's view of one batch item: its surface and its
// placement in concatenated slice space. Single-document generation uses
// one item at scale 1.
type Item struct {
	Surface        *capture.Surface
	Scale          float64
	OffsetPx       int
	ScaledHeightPx int
}

// EndPx returns the item's end offset in concatenated space
func (it Item) EndPx() int {
	return it.OffsetPx + it.ScaledHeightPx
}

// Compositor crops and places slices. Warnings accumulates recovered
// conditions (overflow slices scaled to fit) across ComposePage calls.
type Compositor struct {
	Sink     sink.Sink
	Geometry PageGeometry
	Debug    bool
	Warnings []progress.Warning
}

// ComposePage writes one slice onto a fresh physical page and returns its
// handle so the decoration layer can draw on the same page. A slice that
// overflows the usable height (atomic unit taller than a page) is scaled
// down proportionally to fit the page box.
func (c *Compositor) ComposePage(slice pagination.Slice, items []Item) (sink.PageHandle, error) {
	if slice.HeightPx() <= 0 {
		return 0, fmt.Errorf("degenerate slice %d: [%d,%d)", slice.Index, slice.StartPx, slice.EndPx)
	}

	page, err := c.Sink.AddPage(c.Geometry.PageWidthMm, c.Geometry.PageHeightMm)
	if err != nil {
		return 0, err
	}

	headerPx := 0
	if slice.RepeatHeader != nil {
		headerPx = slice.RepeatHeader.SrcEndPx - slice.RepeatHeader.SrcStartPx
	}

	// Fit factor for controlled overflow.
	contentMm := c.Geometry.PxToMm(headerPx + slice.HeightPx())
	fit := 1.0
	if usable := c.Geometry.UsableHeightMm(); contentMm > usable && usable > 0 {
		fit = usable / contentMm
		c.Warnings = append(c.Warnings, progress.Warning{
			Kind:     progress.WarnRowOverflow,
			OffsetPx: slice.StartPx,
			Detail:   fmt.Sprintf("page %d: slice %.1fmm exceeds %.1fmm usable, fitted at %.2f", slice.Index+1, contentMm, usable, fit),
		})
		if c.Debug {
			fmt.Printf("Page %d: slice %.1fmm exceeds %.1fmm usable, fitting at %.2f\n",
				slice.Index+1, contentMm, usable, fit)
		}
	}

	yMm := c.Geometry.MarginTopMm
	if slice.RepeatHeader != nil {
		hMm, err := c.drawBand(page, slice.RepeatHeader.SrcStartPx, slice.RepeatHeader.SrcEndPx, yMm, fit, items)
		if err != nil {
			return 0, err
		}
		yMm += hMm
	}
	if _, err := c.drawBand(page, slice.StartPx, slice.EndPx, yMm, fit, items); err != nil {
		return 0, err
	}

	return page, nil
}

// drawBand draws the concatenated-space range [startPx, endPx) at vertical
// position yMm and returns the drawn height in millimeters. The range may
// span multiple items when they share a page.
func (c *Compositor) drawBand(page sink.PageHandle, startPx, endPx int, yMm, fit float64, items []Item) (float64, error) {
	drawnMm := 0.0
	for _, it := range items {
		a, b := startPx, endPx
		if a < it.OffsetPx {
			a = it.OffsetPx
		}
		if b > it.EndPx() {
			b = it.EndPx()
		}
		if b <= a {
			continue
		}

		natStart := unscalePx(a-it.OffsetPx, it.Scale)
		natEnd := unscalePx(b-it.OffsetPx, it.Scale)
		if natEnd > it.Surface.HeightPx {
			natEnd = it.Surface.HeightPx
		}
		if natEnd <= natStart {
			continue
		}

		crop := it.Surface.Crop(natStart, natEnd)
		if it.Scale != 1.0 {
			crop = resample(crop, it.Scale)
		}
		encoded, err := encodePNG(crop)
		if err != nil {
			return 0, fmt.Errorf("failed to encode slice image: %w", err)
		}

		wMm := c.Geometry.UsableWidthMm() * fit
		hMm := c.Geometry.PxToMm(b-a) * fit
		if err := c.Sink.DrawImage(page, encoded, "PNG", c.Geometry.MarginLeftMm, yMm+drawnMm, wMm, hMm); err != nil {
			return 0, err
		}
		drawnMm += hMm
	}
	return drawnMm, nil
}

// resample scales a crop to device resolution with Catmull-Rom filtering
func resample(src image.Image, scale float64) image.Image {
	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// unscalePx maps a concatenated-space offset back to natural surface pixels
func unscalePx(v int, scale float64) int {
	if scale == 1.0 {
		return v
	}
	return int(math.Round(float64(v) / scale))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
