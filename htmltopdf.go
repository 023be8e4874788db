package htmltopdf

import (
	"github.com/Encryptioner/html-to-pdf-generator-sub001/pkg/api"
)

type Generator = api.Generator
type Options = api.Options
type Option = api.Option
type Result = api.Result
type BatchResult = api.BatchResult
type BatchItem = api.BatchItem
type ItemRange = api.ItemRange
type Format = api.Format
type Orientation = api.Orientation

func New(opts ...Option) *Generator             { return api.New(opts...) }
func NewWithOptions(options Options) *Generator { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithFormat             = api.WithFormat
	WithOrientation        = api.WithOrientation
	WithPageSize           = api.WithPageSize
	WithMargins            = api.WithMargins
	WithDPI                = api.WithDPI
	WithExplicitBreaks     = api.WithExplicitBreaks
	WithOrphanHeadings     = api.WithOrphanHeadings
	WithRepeatTableHeaders = api.WithRepeatTableHeaders
	WithTableRowSplit      = api.WithTableRowSplit
	WithMinRowsPerPage     = api.WithMinRowsPerPage
	WithTitle              = api.WithTitle
	WithAuthor             = api.WithAuthor
	WithSubject            = api.WithSubject
	WithKeywords           = api.WithKeywords
	WithHeader             = api.WithHeader
	WithFooter             = api.WithFooter
	WithPageNumbers        = api.WithPageNumbers
	WithWatermarkText      = api.WithWatermarkText
	WithWatermarkImage     = api.WithWatermarkImage
	WithStylesheet         = api.WithStylesheet
	WithResourcePath       = api.WithResourcePath
	WithProgress           = api.WithProgress
	WithDebug              = api.WithDebug
)

const (
	FormatA4     = api.FormatA4
	FormatA3     = api.FormatA3
	FormatA5     = api.FormatA5
	FormatLetter = api.FormatLetter
	FormatLegal  = api.FormatLegal

	OrientationPortrait  = api.OrientationPortrait
	OrientationLandscape = api.OrientationLandscape
)
