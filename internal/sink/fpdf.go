package sink

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
)

// FpdfSink writes pages with codeberg.org/go-pdf/fpdf. Drawing is only
// valid on the most recently added page; the compositor's sequential flow
// guarantees that, and out-of-order handles are rejected as write
// failures.
type FpdfSink struct {
	pdf      *fpdf.Fpdf
	pages    int
	imageSeq int
}

// NewFpdfSink creates a sink. Orientation is "P" or "L" and only seeds the
// document default; every page carries its own explicit size.
func NewFpdfSink(orientation string) *FpdfSink {
	if orientation == "" {
		orientation = "P"
	}
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 10)
	return &FpdfSink{pdf: pdf}
}

// AddPage appends a page of the given size in millimeters
func (s *FpdfSink) AddPage(widthMm, heightMm float64) (PageHandle, error) {
	orient := "P"
	if widthMm > heightMm {
		orient = "L"
	}
	s.pdf.AddPageFormat(orient, fpdf.SizeType{Wd: widthMm, Ht: heightMm})
	if err := s.check(); err != nil {
		return 0, err
	}
	s.pages++
	return PageHandle(s.pages - 1), nil
}

// DrawImage places encoded image bytes on the page at the given box
func (s *FpdfSink) DrawImage(page PageHandle, img []byte, format string, xMm, yMm, wMm, hMm float64) error {
	if err := s.onCurrentPage(page); err != nil {
		return err
	}
	s.imageSeq++
	name := fmt.Sprintf("img-%d", s.imageSeq)
	opts := fpdf.ImageOptions{ImageType: format, ReadDpi: false}
	s.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	s.pdf.ImageOptions(name, xMm, yMm, wMm, hMm, false, opts, 0, "")
	return s.check()
}

// DrawText draws a text overlay (page numbers, headers, watermarks)
func (s *FpdfSink) DrawText(page PageHandle, text string, xMm, yMm float64, opt TextOptions) error {
	if err := s.onCurrentPage(page); err != nil {
		return err
	}
	size := opt.SizePt
	if size <= 0 {
		size = 10
	}
	style := ""
	if opt.Bold {
		style = "B"
	}
	s.pdf.SetFont("Helvetica", style, size)
	s.pdf.SetTextColor(opt.R, opt.G, opt.B)

	blended := opt.Alpha > 0 && opt.Alpha < 1
	if blended {
		s.pdf.SetAlpha(opt.Alpha, "Normal")
	}
	if opt.AngleDeg != 0 {
		s.pdf.TransformBegin()
		s.pdf.TransformRotate(opt.AngleDeg, xMm, yMm)
		s.pdf.Text(xMm, yMm, text)
		s.pdf.TransformEnd()
	} else {
		s.pdf.Text(xMm, yMm, text)
	}
	if blended {
		s.pdf.SetAlpha(1, "Normal")
	}
	return s.check()
}

// TextWidthMm measures text at the given size
func (s *FpdfSink) TextWidthMm(text string, sizePt float64) float64 {
	s.pdf.SetFont("Helvetica", "", sizePt)
	return s.pdf.GetStringWidth(text)
}

// SetMetadata records document information fields
func (s *FpdfSink) SetMetadata(meta Metadata) {
	s.pdf.SetTitle(meta.Title, true)
	s.pdf.SetAuthor(meta.Author, true)
	s.pdf.SetSubject(meta.Subject, true)
	s.pdf.SetKeywords(meta.Keywords, true)
	s.pdf.SetCreator(meta.Creator, true)
	s.pdf.SetProducer(meta.Producer, true)
}

// Bytes finalizes and returns the document
func (s *FpdfSink) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return buf.Bytes(), nil
}

// PageCount returns the number of pages added
func (s *FpdfSink) PageCount() int {
	return s.pages
}

func (s *FpdfSink) onCurrentPage(page PageHandle) error {
	if s.pages == 0 {
		return fmt.Errorf("%w: no page added", ErrWrite)
	}
	if int(page) != s.pages-1 {
		return fmt.Errorf("%w: page %d is closed (current %d)", ErrWrite, page, s.pages-1)
	}
	return nil
}

func (s *FpdfSink) check() error {
	if s.pdf.Err() {
		return fmt.Errorf("%w: %v", ErrWrite, s.pdf.Error())
	}
	return nil
}
