package pagination

import (
	"context"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/analyzer"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/tables"
)

// Options represents options for the pagination engine
type Options struct {
	UsablePageHeightPx int
	TablePolicy        tables.Policy
}

// Engine handles the pagination process
type Engine struct {
	options Options
}

// NewEngine creates a new pagination engine
func NewEngine() *Engine {
	return &Engine{
		options: Options{
			UsablePageHeightPx: 1000,
			TablePolicy:        tables.Policy{MinRowsPerPage: 1},
		},
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Paginate slices a surface of totalHeightPx into pages honoring the
// merged constraint list and table segments
func (e *Engine) Paginate(ctx context.Context, totalHeightPx int, constraints []analyzer.Constraint, segments []tables.Segment, itemStartsPx []int, reporter *progress.Reporter) (Result, error) {
	return Paginate(ctx, Input{
		TotalHeightPx:      totalHeightPx,
		UsablePageHeightPx: e.options.UsablePageHeightPx,
		Constraints:        constraints,
		Segments:           segments,
		TablePolicy:        e.options.TablePolicy,
		ItemStartsPx:       itemStartsPx,
		Progress:           reporter,
	})
}
