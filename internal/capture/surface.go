package capture

import (
	"image"
	"image/color"
)

// Surface is the flattened raster snapshot of all content prior to
// pagination. It is produced once per render call and is read-only to every
// downstream stage.
type Surface struct {
	WidthPx  int
	HeightPx int

	img *image.RGBA
}

// NewSurface allocates a white surface of the given pixel dimensions
func NewSurface(widthPx, heightPx int) *Surface {
	if widthPx < 1 {
		widthPx = 1
	}
	if heightPx < 1 {
		heightPx = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, widthPx, heightPx))
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < heightPx; y++ {
		for x := 0; x < widthPx; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	return &Surface{WidthPx: widthPx, HeightPx: heightPx, img: img}
}

// Image returns the underlying raster. Callers must treat it as read-only
// once capture has completed.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Crop returns the horizontal band [startPx, endPx) of the surface. The
// returned image shares pixel memory with the surface; it is never written
// to after capture. Out-of-range bounds are clamped.
func (s *Surface) Crop(startPx, endPx int) image.Image {
	if startPx < 0 {
		startPx = 0
	}
	if endPx > s.HeightPx {
		endPx = s.HeightPx
	}
	if endPx < startPx {
		endPx = startPx
	}
	return s.img.SubImage(image.Rect(0, startPx, s.WidthPx, endPx))
}
