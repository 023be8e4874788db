package api

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/analyzer"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/batch"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/capture"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/compositor"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/decorate"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/logger"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/pagination"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/res"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/sink"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/tables"
)

// Result describes one finished generation run.
type Result struct {
	PageCount        int
	FileSizeBytes    int64
	GenerationTimeMs int64
	Blob             []byte
	Warnings         []progress.Warning
}

// ItemRange is the 1-based inclusive page span one batch item landed on.
// Spans may overlap by one page when adjacent items share it.
type ItemRange struct {
	StartPage int
	EndPage   int
	PageCount int
}

// BatchResult is a Result plus the per-item page ranges, in input order.
type BatchResult struct {
	Result
	Items []ItemRange
}

// BatchItem is one content block in a batch request.
type BatchItem struct {
	Content string
	// PageCount requests a page budget; 0 keeps natural size
	PageCount int
	// NewPage is tri-state: nil breaks after the item (default), true
	// forces a fresh page before it, false lets it share a page
	NewPage *bool
}

// Generator converts HTML content to paginated PDF documents.
type Generator struct {
	options  Options
	renderer capture.Renderer
	loader   *res.Loader
}

// New creates a Generator with default options
func New(opts ...Option) *Generator {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a Generator with the given options
func NewWithOptions(options Options) *Generator {
	loader := res.NewLoader()
	for _, p := range options.ResourcePaths {
		loader.AddSearchPath(p)
	}
	if options.Debug {
		logger.Default().SetLevel(logger.LevelDebug)
	}
	return &Generator{
		options:  options,
		renderer: &capture.HTMLRenderer{Stylesheet: options.Stylesheet, Debug: options.Debug},
		loader:   loader,
	}
}

// SetRenderer substitutes the capture adapter. The built-in renderer
// covers a block subset of HTML; callers with an external engine plug it
// in here.
func (g *Generator) SetRenderer(r capture.Renderer) {
	g.renderer = r
}

// Options returns a copy of the generator's options
func (g *Generator) Options() Options {
	return g.options
}

// Generate converts a single HTML document into PDF bytes.
func (g *Generator) Generate(ctx context.Context, content string) (*Result, error) {
	start := time.Now()

	geom := g.geometry()
	capt, err := g.capture(ctx, content, geom)
	if err != nil {
		return nil, err
	}

	usablePx := geom.MmToPx(geom.UsableHeightMm())
	pagRes, err := g.paginator(usablePx).Paginate(ctx, capt.Surface.HeightPx,
		analyzer.Extract(capt.Root, g.breakPolicy()),
		tables.Collect(capt.Root, usablePx, g.tablePolicy()),
		nil, progress.NewReporter(g.options.Progress))
	if err != nil {
		return nil, err
	}

	items := []compositor.Item{{
		Surface:        capt.Surface,
		Scale:          1.0,
		OffsetPx:       0,
		ScaledHeightPx: capt.Surface.HeightPx,
	}}
	blob, warnings, err := g.compose(pagRes, items, geom)
	if err != nil {
		return nil, err
	}

	return &Result{
		PageCount:        len(pagRes.Slices),
		FileSizeBytes:    int64(len(blob)),
		GenerationTimeMs: time.Since(start).Milliseconds(),
		Blob:             blob,
		Warnings:         warnings,
	}, nil
}

// GenerateToFile converts HTML content and writes the PDF to a file.
// Nothing is written when generation fails.
func (g *Generator) GenerateToFile(ctx context.Context, content, outputPath string) (*Result, error) {
	result, err := g.Generate(ctx, content)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, result.Blob, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", sink.ErrWrite, err)
	}
	return result, nil
}

// GenerateBatch converts several content blocks into one PDF. Items are
// captured concurrently, then laid end to end in input order; an item
// with a page budget is scaled so its content occupies roughly that many
// pages.
func (g *Generator) GenerateBatch(ctx context.Context, inputs []BatchItem) (*BatchResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("batch is empty")
	}
	start := time.Now()

	geom := g.geometry()
	items := make([]*batch.Item, len(inputs))
	for i, in := range inputs {
		items[i] = &batch.Item{
			Content:            in.Content,
			RequestedPageCount: in.PageCount,
			NewPage:            in.NewPage,
		}
	}

	// Captures are independent; run them in parallel, results stay in
	// input order.
	var wg sync.WaitGroup
	errs := make([]error, len(items))
	for i, it := range items {
		wg.Add(1)
		go func(i int, it *batch.Item) {
			defer wg.Done()
			capt, err := g.capture(ctx, it.Content, geom)
			if err != nil {
				errs[i] = fmt.Errorf("item %d: %w", i, err)
				return
			}
			it.Capture = capt
		}(i, it)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	usablePx := geom.MmToPx(geom.UsableHeightMm())
	plan, err := batch.Concatenate(items, usablePx, g.breakPolicy(), g.tablePolicy())
	if err != nil {
		return nil, err
	}

	pagRes, err := g.paginator(usablePx).Paginate(ctx, plan.TotalHeightPx,
		plan.Constraints, plan.Segments, plan.ItemStartsPx,
		progress.NewReporter(g.options.Progress))
	if err != nil {
		return nil, err
	}

	compItems := make([]compositor.Item, len(items))
	for i, it := range items {
		compItems[i] = compositor.Item{
			Surface:        it.Capture.Surface,
			Scale:          it.ComputedScale,
			OffsetPx:       it.OffsetPx,
			ScaledHeightPx: it.ScaledHeightPx,
		}
	}
	blob, warnings, err := g.compose(pagRes, compItems, geom)
	if err != nil {
		return nil, err
	}
	warnings = append(plan.Warnings, warnings...)

	batch.AssignPages(items, pagRes.Slices)
	ranges := make([]ItemRange, len(items))
	for i, it := range items {
		ranges[i] = ItemRange{
			StartPage: it.StartPage,
			EndPage:   it.EndPage,
			PageCount: it.PageCount(),
		}
	}

	return &BatchResult{
		Result: Result{
			PageCount:        len(pagRes.Slices),
			FileSizeBytes:    int64(len(blob)),
			GenerationTimeMs: time.Since(start).Milliseconds(),
			Blob:             blob,
			Warnings:         warnings,
		},
		Items: ranges,
	}, nil
}

// capture renders content onto a surface sized to the usable page width.
func (g *Generator) capture(ctx context.Context, content string, geom compositor.PageGeometry) (*capture.Capture, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is empty", capture.ErrCapture)
	}
	widthPx := geom.MmToPx(geom.UsableWidthMm())
	capt, err := g.renderer.Render(ctx, content, widthPx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", capture.ErrCapture, err)
	}
	if capt.Surface == nil || capt.Surface.HeightPx <= 0 {
		return nil, fmt.Errorf("%w: renderer produced an empty surface", capture.ErrCapture)
	}
	return capt, nil
}

// compose writes every slice through the sink, decorates the pages, and
// verifies the finished document.
func (g *Generator) compose(pagRes pagination.Result, items []compositor.Item, geom compositor.PageGeometry) ([]byte, []progress.Warning, error) {
	orient := "P"
	if g.options.Orientation == OrientationLandscape {
		orient = "L"
	}
	snk := sink.NewFpdfSink(orient)
	snk.SetMetadata(sink.Metadata{
		Title:    g.options.Title,
		Author:   g.options.Author,
		Subject:  g.options.Subject,
		Keywords: g.options.Keywords,
	})

	comp := &compositor.Compositor{Sink: snk, Geometry: geom, Debug: g.options.Debug}
	dec := decorate.New(g.options.Decoration, geom, g.loader)
	pageCount := len(pagRes.Slices)

	for _, slice := range pagRes.Slices {
		page, err := comp.ComposePage(slice, items)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: page %d: %v", sink.ErrWrite, slice.Index+1, err)
		}
		if err := dec.Apply(snk, page, slice.Index+1, pageCount); err != nil {
			return nil, nil, fmt.Errorf("%w: decorating page %d: %v", sink.ErrWrite, slice.Index+1, err)
		}
	}

	blob, err := snk.Bytes()
	if err != nil {
		return nil, nil, err
	}
	if err := verifyPDF(blob, pageCount); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", sink.ErrWrite, err)
	}
	if g.options.Debug {
		logger.Debug("document finalized",
			logger.Int("pages", pageCount),
			logger.Int("bytes", len(blob)))
	}
	warnings := append(append([]progress.Warning(nil), pagRes.Warnings...), comp.Warnings...)
	return blob, warnings, nil
}

// verifyPDF parses the finished document back and validates it, so a
// malformed artifact is reported as a failure instead of handed to the
// caller.
func verifyPDF(blob []byte, wantPages int) error {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := pdfapi.ReadContext(bytes.NewReader(blob), conf)
	if err != nil {
		return fmt.Errorf("reading finished document: %v", err)
	}
	if err := pdfapi.ValidateContext(pdfCtx); err != nil {
		return fmt.Errorf("validating finished document: %v", err)
	}
	if pdfCtx.PageCount != wantPages {
		return fmt.Errorf("finished document has %d pages, expected %d", pdfCtx.PageCount, wantPages)
	}
	return nil
}

// geometry resolves the options into fixed page geometry
func (g *Generator) geometry() compositor.PageGeometry {
	w, h := pageSizeMm(g.options.Format)
	if g.options.PageWidthMm > 0 && g.options.PageHeightMm > 0 {
		w, h = g.options.PageWidthMm, g.options.PageHeightMm
	}
	if g.options.Orientation == OrientationLandscape {
		w, h = h, w
	}
	dpi := g.options.DPI
	if dpi <= 0 {
		dpi = 96
	}
	m := g.options.MarginsMm
	return compositor.PageGeometry{
		PageWidthMm:    w,
		PageHeightMm:   h,
		MarginTopMm:    m[0],
		MarginRightMm:  m[1],
		MarginBottomMm: m[2],
		MarginLeftMm:   m[3],
		ReservedMm:     g.options.DecorationReserveMm,
		DPI:            dpi,
	}
}

func (g *Generator) paginator(usablePx int) *pagination.Engine {
	eng := pagination.NewEngine()
	eng.SetOptions(pagination.Options{
		UsablePageHeightPx: usablePx,
		TablePolicy:        g.tablePolicy(),
	})
	return eng
}

func (g *Generator) breakPolicy() analyzer.Policy {
	return analyzer.Policy{
		RespectExplicitBreaks: g.options.RespectExplicitBreaks,
		AvoidOrphanHeadings:   g.options.AvoidOrphanHeadings,
	}
}

func (g *Generator) tablePolicy() tables.Policy {
	return tables.Policy{
		RepeatHeaders:  g.options.RepeatTableHeaders,
		AllowRowSplit:  !g.options.AvoidTableRowSplit,
		MinRowsPerPage: g.options.MinRowsPerPage,
	}
}
