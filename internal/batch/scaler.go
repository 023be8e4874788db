// Package batch maps independently captured content items onto a single
// concatenated surface space: each item gets a scale factor derived from
// its requested page budget, and item boundaries inject break constraints
// so concatenation offsets stay deterministic.
package batch

import (
	"fmt"
	"math"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/analyzer"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/capture"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/pagination"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/tables"
)

// Scale clamp bounds. A requested budget that would need a factor outside
// these bounds is clamped and reported, not failed.
const (
	MinScale = 0.1
	MaxScale = 4.0
)

// Item is one independently supplied content block with its own target
// page budget. Page range fields are assigned after slicing and are
// immutable thereafter.
type Item struct {
	Content string
	// RequestedPageCount of 0 means no budget: scale stays 1.0
	RequestedPageCount int
	// NewPage is tri-state: true forces the item onto a fresh page, false
	// lets it share a page with its predecessor, nil (unset) forces a
	// break after the item instead
	NewPage *bool

	// Populated by the pipeline:
	Capture        *capture.Capture
	ComputedScale  float64
	ScaledHeightPx int
	OffsetPx       int
	StartPage      int // 1-based, inclusive
	EndPage        int // 1-based, inclusive
}

// ComputeScale derives the scale factor mapping an item's natural height
// to its requested page budget, clamped to [MinScale, MaxScale]. The
// clamped flag reports whether clamping occurred.
func ComputeScale(naturalHeightPx, requestedPageCount, usablePageHeightPx int) (scale float64, clamped bool) {
	if requestedPageCount <= 0 || naturalHeightPx <= 0 {
		return 1.0, false
	}
	scale = float64(requestedPageCount*usablePageHeightPx) / float64(naturalHeightPx)
	if scale < MinScale {
		return MinScale, true
	}
	if scale > MaxScale {
		return MaxScale, true
	}
	return scale, false
}

// Plan is the concatenated pagination input derived from a batch.
type Plan struct {
	TotalHeightPx int
	Constraints   []analyzer.Constraint
	Segments      []tables.Segment
	ItemStartsPx  []int
	Warnings      []progress.Warning
}

// Concatenate lays the captured items end to end in caller order, scaling
// each item's geometry into concatenated space and injecting its newPage
// constraints. Every item must already carry a capture.
func Concatenate(items []*Item, usablePageHeightPx int, pol analyzer.Policy, tpol tables.Policy) (*Plan, error) {
	plan := &Plan{}
	offset := 0

	for i, it := range items {
		if it.Capture == nil || it.Capture.Surface == nil {
			return nil, fmt.Errorf("batch item %d has no capture", i)
		}
		natural := it.Capture.Surface.HeightPx

		scale, clamped := ComputeScale(natural, it.RequestedPageCount, usablePageHeightPx)
		if clamped {
			plan.Warnings = append(plan.Warnings, progress.Warning{
				Kind:     progress.WarnScaleOutOfRange,
				OffsetPx: offset,
				Detail: fmt.Sprintf("item %d: scale for %d page(s) over %dpx clamped to %.2f",
					i, it.RequestedPageCount, natural, scale),
			})
		}
		it.ComputedScale = scale
		it.ScaledHeightPx = scalePx(natural, scale)
		it.OffsetPx = offset
		plan.ItemStartsPx = append(plan.ItemStartsPx, offset)

		// Item-local constraints and table geometry, mapped into
		// concatenated space.
		for _, c := range analyzer.Extract(it.Capture.Root, pol) {
			plan.Constraints = append(plan.Constraints, analyzer.Constraint{
				OffsetPx: offset + scalePx(c.OffsetPx, scale),
				Kind:     c.Kind,
			})
		}
		naturalUsable := usablePageHeightPx
		if scale != 1.0 {
			naturalUsable = int(float64(usablePageHeightPx) / scale)
		}
		for _, seg := range tables.Collect(it.Capture.Root, naturalUsable, tpol) {
			scaled := tables.Segment{
				TableOffsetPx:  offset + scalePx(seg.TableOffsetPx, scale),
				HeaderHeightPx: scalePx(seg.HeaderHeightPx, scale),
				AllowSplit:     seg.AllowSplit,
			}
			for _, end := range seg.RowBoundariesPx {
				scaled.RowBoundariesPx = append(scaled.RowBoundariesPx, offset+scalePx(end, scale))
			}
			plan.Segments = append(plan.Segments, scaled)
		}

		// Item boundary constraints from the tri-state newPage flag.
		switch {
		case it.NewPage != nil && *it.NewPage:
			if offset > 0 {
				plan.Constraints = append(plan.Constraints, analyzer.Constraint{
					OffsetPx: offset, Kind: analyzer.ForceBefore,
				})
			}
		case it.NewPage != nil && !*it.NewPage:
			// Item may share a page with its predecessor.
		default:
			if i < len(items)-1 {
				plan.Constraints = append(plan.Constraints, analyzer.Constraint{
					OffsetPx: offset + it.ScaledHeightPx, Kind: analyzer.ForceAfter,
				})
			}
		}

		offset += it.ScaledHeightPx
	}

	plan.TotalHeightPx = offset
	return plan, nil
}

// AssignPages records each item's first and last page from the slice list.
// Page numbers are 1-based; an item whose span received no slice keeps
// zero values.
func AssignPages(items []*Item, slices []pagination.Slice) {
	for _, it := range items {
		spanStart := it.OffsetPx
		spanEnd := it.OffsetPx + it.ScaledHeightPx
		it.StartPage, it.EndPage = 0, 0
		for _, s := range slices {
			if s.EndPx <= spanStart || s.StartPx >= spanEnd {
				continue
			}
			page := s.Index + 1
			if it.StartPage == 0 {
				it.StartPage = page
			}
			it.EndPage = page
		}
	}
}

// PageCount returns the number of pages attributed to the item
func (it *Item) PageCount() int {
	if it.StartPage == 0 {
		return 0
	}
	return it.EndPage - it.StartPage + 1
}

// scalePx scales a pixel offset, rounding to nearest
func scalePx(v int, scale float64) int {
	if scale == 1.0 {
		return v
	}
	return int(math.Round(float64(v) * scale))
}
