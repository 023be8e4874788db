// Package pagination converts a continuous surface height and a merged
// constraint set into an ordered list of page slices. The scan is greedy
// and forward-only with local lookback: identical input always yields an
// identical slice list, and already-emitted slices are never revisited.
package pagination

import (
	"context"
	"fmt"
	"sort"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/analyzer"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/tables"
)

// Slice is the contract between the pagination engine and the compositor:
// one physical page's band of the surface, [StartPx, EndPx). Slices are
// contiguous, non-overlapping, and cover [0, TotalHeightPx) exactly. A
// slice may exceed the usable page height only when a single atomic unit
// is itself taller than one page.
type Slice struct {
	Index      int
	StartPx    int
	EndPx      int
	SourceItem int
	// RepeatHeader is non-nil when the page begins inside a table whose
	// header must be duplicated at the top of the page.
	RepeatHeader *tables.HeaderRepeat
}

// HeightPx returns the slice height
func (s Slice) HeightPx() int {
	return s.EndPx - s.StartPx
}

// Input carries everything the engine needs. Constraints must already be
// merged and sorted (analyzer.Extract guarantees this).
type Input struct {
	TotalHeightPx      int
	UsablePageHeightPx int
	Constraints        []analyzer.Constraint
	Segments           []tables.Segment
	TablePolicy        tables.Policy
	// ItemStartsPx lists each batch item's start offset in concatenated
	// surface space, ascending. Empty means a single item.
	ItemStartsPx []int
	// Progress receives cursor/total updates between slice emissions
	Progress *progress.Reporter
}

// Result is the slice list plus any recovered diagnostics.
type Result struct {
	Slices   []Slice
	Warnings []progress.Warning
}

// Paginate runs the scan. The context is checked between successive slice
// emissions; an in-flight slice is allowed to finish.
func Paginate(ctx context.Context, in Input) (Result, error) {
	if in.UsablePageHeightPx <= 0 {
		return Result{}, fmt.Errorf("usable page height must be positive, got %d", in.UsablePageHeightPx)
	}
	if in.TotalHeightPx <= 0 {
		return Result{}, fmt.Errorf("total height must be positive, got %d", in.TotalHeightPx)
	}

	forces := analyzer.Forces(in.Constraints)
	avoids := analyzer.Avoids(in.Constraints)

	var res Result
	res.Warnings = append(res.Warnings, degenerateWarnings(in.Constraints)...)

	cursor := 0
	for cursor < in.TotalHeightPx {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		budget := in.UsablePageHeightPx
		var repeat *tables.HeaderRepeat
		if seg := tables.FindAt(in.Segments, cursor); seg != nil {
			if hr := seg.HeaderFor(cursor, in.TablePolicy); hr != nil {
				if seg.HeaderHeightPx < budget {
					repeat = hr
					budget -= seg.HeaderHeightPx
				} else {
					res.Warnings = append(res.Warnings, progress.Warning{
						Kind:     progress.WarnRowOverflow,
						OffsetPx: cursor,
						Detail:   "table header taller than page, repetition skipped",
					})
				}
			}
		}

		end := cursor + budget
		if end > in.TotalHeightPx {
			end = in.TotalHeightPx
		}

		if f, ok := firstForceIn(forces, cursor, end); ok {
			// An explicit break shortens the page.
			end = f
		} else if rg := rangeContaining(avoids, end); rg != nil && end < in.TotalHeightPx {
			if rg.StartPx > cursor {
				// Shrink is preferred: page fill stays predictable.
				end = rg.StartPx
			} else {
				// The region covers the whole page; grow past it.
				end = rg.EndPx
				if end > in.TotalHeightPx {
					end = in.TotalHeightPx
				}
				res.Warnings = append(res.Warnings, progress.Warning{
					Kind:     progress.WarnConstraintConflict,
					OffsetPx: rg.StartPx,
					Detail:   fmt.Sprintf("avoid region [%d,%d) taller than page, forced overflow", rg.StartPx, rg.EndPx),
				})
			}
		} else if seg := tables.FindAt(in.Segments, end); seg != nil && end < in.TotalHeightPx {
			cut, overflow := seg.SnapCut(end, cursor, in.TablePolicy)
			end = cut
			if overflow {
				res.Warnings = append(res.Warnings, progress.Warning{
					Kind:     progress.WarnRowOverflow,
					OffsetPx: cut,
					Detail:   "snap forward past row to honor min rows per page",
				})
			}
		}

		if end <= cursor {
			// Defensive: constraints degenerated to an empty page; take a
			// full page instead of looping.
			end = cursor + budget
			if end > in.TotalHeightPx {
				end = in.TotalHeightPx
			}
		}

		res.Slices = append(res.Slices, Slice{
			Index:        len(res.Slices),
			StartPx:      cursor,
			EndPx:        end,
			SourceItem:   itemFor(in.ItemStartsPx, cursor),
			RepeatHeader: repeat,
		})
		cursor = end
		in.Progress.Report(float64(cursor) / float64(in.TotalHeightPx) * 100)
	}

	return res, nil
}

// firstForceIn returns the earliest force offset in (cursor, end], which
// shortens the page. Offsets at or before the cursor were consumed by
// earlier slices.
func firstForceIn(forces []int, cursor, end int) (int, bool) {
	i := sort.SearchInts(forces, cursor+1)
	if i < len(forces) && forces[i] <= end {
		return forces[i], true
	}
	return 0, false
}

// rangeContaining returns the merged avoid range strictly containing off
func rangeContaining(avoids []analyzer.Range, off int) *analyzer.Range {
	for i := range avoids {
		if avoids[i].Contains(off) {
			return &avoids[i]
		}
	}
	return nil
}

// itemFor maps a slice start offset to its batch item index
func itemFor(starts []int, off int) int {
	if len(starts) == 0 {
		return 0
	}
	i := sort.SearchInts(starts, off+1) - 1
	if i < 0 {
		i = 0
	}
	return i
}

// degenerateWarnings reports forced breaks that coincide, which would have
// produced zero-height pages; the scan merges them into the following
// slice.
func degenerateWarnings(cs []analyzer.Constraint) []progress.Warning {
	seen := map[int]int{}
	var out []progress.Warning
	for _, c := range cs {
		if c.Kind != analyzer.ForceBefore && c.Kind != analyzer.ForceAfter {
			continue
		}
		seen[c.OffsetPx]++
		if seen[c.OffsetPx] == 2 {
			out = append(out, progress.Warning{
				Kind:     progress.WarnDegenerateSlice,
				OffsetPx: c.OffsetPx,
				Detail:   "adjacent forced breaks merged",
			})
		}
	}
	return out
}
