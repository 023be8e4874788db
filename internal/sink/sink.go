// Package sink defines the PDF output contract consumed by the compositor
// and decoration layer. The core never touches the PDF binary format; this
// is the only package that talks to the writer library.
package sink

import (
	"errors"
)

// ErrWrite marks a fatal sink failure: the whole generation call aborts
// and no artifact is returned.
var ErrWrite = errors.New("pdf sink write failure")

// PageHandle identifies a page issued by AddPage. Pages are written
// sequentially; drawing targets the most recently added page.
type PageHandle int

// Metadata holds document information fields.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// TextOptions controls text drawing.
type TextOptions struct {
	SizePt   float64
	R, G, B  int
	Alpha    float64 // 0 disables blending (fully opaque)
	AngleDeg float64 // counterclockwise rotation about the anchor point
	Bold     bool
}

// Sink accepts page images and overlay drawing calls and produces the
// final PDF bytes. All coordinates are millimeters.
type Sink interface {
	AddPage(widthMm, heightMm float64) (PageHandle, error)
	DrawImage(page PageHandle, img []byte, format string, xMm, yMm, wMm, hMm float64) error
	DrawText(page PageHandle, text string, xMm, yMm float64, opt TextOptions) error
	// TextWidthMm measures a string at the given size, for alignment
	TextWidthMm(text string, sizePt float64) float64
	SetMetadata(meta Metadata)
	// Bytes finalizes the document and returns it
	Bytes() ([]byte, error)
	// PageCount returns the number of pages added so far
	PageCount() int
}
