package api

import (
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/decorate"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
)

// Format names a standard page size
type Format string

const (
	// FormatA4 is 210 x 297 mm
	FormatA4 Format = "A4"
	// FormatA3 is 297 x 420 mm
	FormatA3 Format = "A3"
	// FormatA5 is 148 x 210 mm
	FormatA5 Format = "A5"
	// FormatLetter is 215.9 x 279.4 mm
	FormatLetter Format = "Letter"
	// FormatLegal is 215.9 x 355.6 mm
	FormatLegal Format = "Legal"
)

// Orientation represents page orientation
type Orientation string

const (
	// OrientationPortrait sets the page to portrait orientation
	OrientationPortrait Orientation = "portrait"
	// OrientationLandscape sets the page to landscape orientation
	OrientationLandscape Orientation = "landscape"
)

// Options represents configuration options for the generator
type Options struct {
	// Page geometry
	Format      Format
	Orientation Orientation
	// PageWidthMm/PageHeightMm override Format when both are positive
	PageWidthMm  float64
	PageHeightMm float64
	// MarginsMm in CSS order: top, right, bottom, left
	MarginsMm [4]float64
	// DecorationReserveMm withholds extra page height for overlays
	DecorationReserveMm float64
	DPI                 float64

	// Break policy
	RespectExplicitBreaks bool
	AvoidOrphanHeadings   bool

	// Table policy
	RepeatTableHeaders bool
	AvoidTableRowSplit bool
	MinRowsPerPage     int

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string

	// Page decoration
	Decoration decorate.Options

	// Extra stylesheet applied after document styles
	Stylesheet string
	// ResourcePaths are searched for decoration assets
	ResourcePaths []string

	// Progress receives monotonic percentage updates
	Progress progress.Func

	Debug bool
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		Format:      FormatA4,
		Orientation: OrientationPortrait,
		MarginsMm:   [4]float64{12, 12, 12, 12},
		DPI:         96,

		RespectExplicitBreaks: true,
		AvoidOrphanHeadings:   true,
		RepeatTableHeaders:    true,
		AvoidTableRowSplit:    true,
		MinRowsPerPage:        1,
	}
}

// pageSizeMm returns the physical size for a format in portrait
func pageSizeMm(format Format) (w, h float64) {
	switch format {
	case FormatA3:
		return 297, 420
	case FormatA5:
		return 148, 210
	case FormatLetter:
		return 215.9, 279.4
	case FormatLegal:
		return 215.9, 355.6
	default:
		return 210, 297
	}
}

// WithFormat sets the page format
func WithFormat(format Format) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithOrientation sets the page orientation
func WithOrientation(orientation Orientation) Option {
	return func(o *Options) {
		o.Orientation = orientation
	}
}

// WithPageSize sets a custom page size in millimeters
func WithPageSize(widthMm, heightMm float64) Option {
	return func(o *Options) {
		o.PageWidthMm = widthMm
		o.PageHeightMm = heightMm
	}
}

// WithMargins sets the page margins in millimeters
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginsMm = [4]float64{top, right, bottom, left}
	}
}

// WithDPI sets the capture density
func WithDPI(dpi float64) Option {
	return func(o *Options) {
		o.DPI = dpi
	}
}

// WithExplicitBreaks toggles honoring page-break directives in content
func WithExplicitBreaks(respect bool) Option {
	return func(o *Options) {
		o.RespectExplicitBreaks = respect
	}
}

// WithOrphanHeadings toggles keeping headings attached to their content
func WithOrphanHeadings(avoid bool) Option {
	return func(o *Options) {
		o.AvoidOrphanHeadings = avoid
	}
}

// WithRepeatTableHeaders toggles header duplication on table continuation
// pages
func WithRepeatTableHeaders(repeat bool) Option {
	return func(o *Options) {
		o.RepeatTableHeaders = repeat
	}
}

// WithTableRowSplit allows raw pixel cuts through oversized table rows
func WithTableRowSplit(allow bool) Option {
	return func(o *Options) {
		o.AvoidTableRowSplit = !allow
	}
}

// WithMinRowsPerPage sets the minimum body rows left on a page by a snap
func WithMinRowsPerPage(n int) Option {
	return func(o *Options) {
		o.MinRowsPerPage = n
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithHeader sets the header template ({page} and {pages} expand)
func WithHeader(template string) Option {
	return func(o *Options) {
		o.Decoration.HeaderTemplate = template
	}
}

// WithFooter sets the footer template ({page} and {pages} expand)
func WithFooter(template string) Option {
	return func(o *Options) {
		o.Decoration.FooterTemplate = template
	}
}

// WithPageNumbers draws "n / total" in the footer
func WithPageNumbers() Option {
	return func(o *Options) {
		o.Decoration.PageNumbers = true
	}
}

// WithWatermarkText sets a rotated text watermark
func WithWatermarkText(text string) Option {
	return func(o *Options) {
		o.Decoration.WatermarkText = text
	}
}

// WithWatermarkImage sets an image or SVG watermark asset
func WithWatermarkImage(path string) Option {
	return func(o *Options) {
		o.Decoration.WatermarkImagePath = path
	}
}

// WithStylesheet appends CSS applied after document styles
func WithStylesheet(css string) Option {
	return func(o *Options) {
		o.Stylesheet = css
	}
}

// WithResourcePath adds a directory to search for decoration assets
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithProgress sets the progress callback
func WithProgress(fn progress.Func) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}
