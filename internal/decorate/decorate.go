// Package decorate overlays page furniture after compositing: page
// numbers, header and footer text, and text or image watermarks. It draws
// exclusively through the sink contract.
package decorate

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/compositor"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/res"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/sink"
)

// Options configures the decoration layer. Empty templates and paths
// disable the corresponding overlay.
type Options struct {
	// HeaderTemplate and FooterTemplate may contain {page} and {pages}
	HeaderTemplate string
	FooterTemplate string
	// PageNumbers draws "n / total" in the footer when no footer
	// template is set
	PageNumbers bool

	WatermarkText string
	// WatermarkImagePath points at a raster or SVG asset
	WatermarkImagePath string
	// WatermarkOpacity in (0, 1]; defaults to 0.15
	WatermarkOpacity float64
	// WatermarkAngleDeg defaults to 45 for text watermarks
	WatermarkAngleDeg float64

	FontSizePt float64
}

// Enabled reports whether any overlay is configured
func (o Options) Enabled() bool {
	return o.HeaderTemplate != "" || o.FooterTemplate != "" || o.PageNumbers ||
		o.WatermarkText != "" || o.WatermarkImagePath != ""
}

// Decorator applies overlays to composed pages.
type Decorator struct {
	opts   Options
	geom   compositor.PageGeometry
	loader *res.Loader

	// watermark raster, prepared once on first use
	watermark     []byte
	watermarkWmm  float64
	watermarkHmm  float64
	watermarkErr  error
	watermarkOnce bool
}

// New creates a decorator. The loader resolves watermark assets and may
// be nil when no image watermark is configured.
func New(opts Options, geom compositor.PageGeometry, loader *res.Loader) *Decorator {
	if opts.FontSizePt <= 0 {
		opts.FontSizePt = 9
	}
	if opts.WatermarkOpacity <= 0 || opts.WatermarkOpacity > 1 {
		opts.WatermarkOpacity = 0.15
	}
	if opts.WatermarkAngleDeg == 0 {
		opts.WatermarkAngleDeg = 45
	}
	if loader == nil {
		loader = res.NewLoader()
	}
	return &Decorator{opts: opts, geom: geom, loader: loader}
}

// Apply draws the configured overlays onto one page. pageNum is 1-based.
func (d *Decorator) Apply(snk sink.Sink, page sink.PageHandle, pageNum, pageCount int) error {
	if !d.opts.Enabled() {
		return nil
	}

	if d.opts.WatermarkImagePath != "" {
		if err := d.drawImageWatermark(snk, page); err != nil {
			return err
		}
	}
	if d.opts.WatermarkText != "" {
		if err := d.drawTextWatermark(snk, page); err != nil {
			return err
		}
	}

	if d.opts.HeaderTemplate != "" {
		text := d.expand(d.opts.HeaderTemplate, pageNum, pageCount)
		y := d.geom.MarginTopMm * 0.6
		if err := d.drawAligned(snk, page, text, y); err != nil {
			return err
		}
	}

	footer := d.opts.FooterTemplate
	if footer == "" && d.opts.PageNumbers {
		footer = "{page} / {pages}"
	}
	if footer != "" {
		text := d.expand(footer, pageNum, pageCount)
		y := d.geom.PageHeightMm - d.geom.MarginBottomMm*0.4
		if err := d.drawCentered(snk, page, text, y); err != nil {
			return err
		}
	}
	return nil
}

// expand substitutes the {page} and {pages} placeholders
func (d *Decorator) expand(template string, pageNum, pageCount int) string {
	out := strings.ReplaceAll(template, "{page}", strconv.Itoa(pageNum))
	return strings.ReplaceAll(out, "{pages}", strconv.Itoa(pageCount))
}

// drawAligned places header text left-aligned, or right-aligned for RTL
// content
func (d *Decorator) drawAligned(snk sink.Sink, page sink.PageHandle, text string, yMm float64) error {
	x := d.geom.MarginLeftMm
	if textDirection(text) == RightToLeft {
		x = d.geom.PageWidthMm - d.geom.MarginRightMm - snk.TextWidthMm(text, d.opts.FontSizePt)
	}
	return snk.DrawText(page, text, x, yMm, sink.TextOptions{
		SizePt: d.opts.FontSizePt, R: 100, G: 100, B: 100,
	})
}

func (d *Decorator) drawCentered(snk sink.Sink, page sink.PageHandle, text string, yMm float64) error {
	x := (d.geom.PageWidthMm - snk.TextWidthMm(text, d.opts.FontSizePt)) / 2
	return snk.DrawText(page, text, x, yMm, sink.TextOptions{
		SizePt: d.opts.FontSizePt, R: 100, G: 100, B: 100,
	})
}

// drawTextWatermark draws a large rotated text watermark across the page
// center
func (d *Decorator) drawTextWatermark(snk sink.Sink, page sink.PageHandle) error {
	size := 48.0
	x := (d.geom.PageWidthMm - snk.TextWidthMm(d.opts.WatermarkText, size)) / 2
	y := d.geom.PageHeightMm / 2
	return snk.DrawText(page, d.opts.WatermarkText, x, y, sink.TextOptions{
		SizePt:   size,
		R:        150, G: 150, B: 150,
		Alpha:    d.opts.WatermarkOpacity,
		AngleDeg: d.opts.WatermarkAngleDeg,
		Bold:     true,
	})
}

// drawImageWatermark centers the watermark asset at half the usable width
func (d *Decorator) drawImageWatermark(snk sink.Sink, page sink.PageHandle) error {
	if err := d.prepareWatermark(); err != nil {
		return err
	}
	x := (d.geom.PageWidthMm - d.watermarkWmm) / 2
	y := (d.geom.PageHeightMm - d.watermarkHmm) / 2
	return snk.DrawImage(page, d.watermark, "PNG", x, y, d.watermarkWmm, d.watermarkHmm)
}

// prepareWatermark loads the asset and rasterizes SVG art, once
func (d *Decorator) prepareWatermark() error {
	if d.watermarkOnce {
		return d.watermarkErr
	}
	d.watermarkOnce = true

	resource, err := d.loader.Load(d.opts.WatermarkImagePath)
	if err != nil {
		d.watermarkErr = err
		return err
	}

	var img image.Image
	if resource.IsSVG() {
		img, err = rasterizeSVG(resource.Data, d.opts.WatermarkOpacity)
	} else {
		img, _, err = image.Decode(bytes.NewReader(resource.Data))
	}
	if err != nil {
		d.watermarkErr = fmt.Errorf("failed to prepare watermark: %w", err)
		return d.watermarkErr
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		d.watermarkErr = fmt.Errorf("failed to encode watermark: %w", err)
		return d.watermarkErr
	}
	d.watermark = buf.Bytes()

	// Half the usable width, aspect preserved.
	b := img.Bounds()
	d.watermarkWmm = d.geom.UsableWidthMm() / 2
	if b.Dx() > 0 {
		d.watermarkHmm = d.watermarkWmm * float64(b.Dy()) / float64(b.Dx())
	} else {
		d.watermarkHmm = d.watermarkWmm
	}
	return nil
}

// rasterizeSVG renders vector art to a raster at its intrinsic size with
// the given opacity baked in
func rasterizeSVG(data []byte, opacity float64) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w < 1 || h < 1 {
		w, h = 512, 512
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), opacity)
	return img, nil
}
