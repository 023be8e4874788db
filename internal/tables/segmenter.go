// Package tables computes row-accurate safe cut points for tables that may
// cross pages. All geometry arrives frozen from capture; the segmenter
// never re-measures anything.
package tables

import (
	"sort"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/capture"
)

// Segment describes one table that may need to be split across pages, in
// surface pixel space.
type Segment struct {
	TableOffsetPx  int
	HeaderHeightPx int
	// RowBoundariesPx lists the bottom edge of each body row, ascending
	RowBoundariesPx []int
	AllowSplit      bool
}

// EndPx returns the bottom edge of the segment's last row
func (s Segment) EndPx() int {
	if len(s.RowBoundariesPx) == 0 {
		return s.TableOffsetPx
	}
	return s.RowBoundariesPx[len(s.RowBoundariesPx)-1]
}

// BodyStartPx returns the offset of the first body row (below the header)
func (s Segment) BodyStartPx() int {
	return s.TableOffsetPx + s.HeaderHeightPx
}

// Contains reports whether off lies strictly inside the segment's body
func (s Segment) Contains(off int) bool {
	return off > s.TableOffsetPx && off < s.EndPx()
}

// Policy controls table splitting behavior.
type Policy struct {
	RepeatHeaders bool
	AllowRowSplit bool
	// MinRowsPerPage is the minimum number of body rows a snap-back may
	// leave on the page being closed
	MinRowsPerPage int
}

// Collect walks the capture tree and returns segments for every table
// whose body could plausibly cross a page of usableHeightPx. Short tables
// are skipped; the pagination engine treats them like any other content.
func Collect(root *capture.Node, usableHeightPx int, pol Policy) []Segment {
	var segs []Segment
	var walk func(n *capture.Node)
	walk = func(n *capture.Node) {
		if n == nil {
			return
		}
		if t := n.Table; t != nil && len(t.RowEndsPx) > 0 {
			height := t.BottomPx() - t.TopPx
			if height > usableHeightPx || len(t.RowEndsPx) > 1 {
				segs = append(segs, Segment{
					TableOffsetPx:   t.TopPx,
					HeaderHeightPx:  t.HeaderHeightPx,
					RowBoundariesPx: append([]int(nil), t.RowEndsPx...),
					AllowSplit:      pol.AllowRowSplit,
				})
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	sort.Slice(segs, func(i, j int) bool {
		return segs[i].TableOffsetPx < segs[j].TableOffsetPx
	})
	return segs
}

// FindAt returns the segment whose body strictly contains off, or nil.
func FindAt(segs []Segment, off int) *Segment {
	for i := range segs {
		if segs[i].Contains(off) {
			return &segs[i]
		}
	}
	return nil
}

// SnapCut snaps a tentative page boundary landing inside the segment to a
// row boundary. A cut inside row i snaps backward to the end of row i-1,
// unless that would leave fewer than MinRowsPerPage rows on the page that
// starts at pageStartPx, in which case it snaps forward past row i
// (accepting overflow). The returned overflow flag reports a forward snap.
//
// When the boundary would land inside a single row taller than the page and
// AllowSplit is set, the tentative cut is kept: raw pixel cutting through
// row content is permitted.
func (s Segment) SnapCut(tentativePx, pageStartPx int, pol Policy) (cutPx int, overflow bool) {
	if tentativePx >= s.EndPx() || tentativePx <= s.TableOffsetPx {
		return tentativePx, false
	}

	// Row index containing the tentative cut, and the boundary below it.
	rowStart := s.BodyStartPx()
	for _, end := range s.RowBoundariesPx {
		if tentativePx < end {
			if tentativePx == rowStart {
				// Exactly on a row boundary already.
				return tentativePx, false
			}
			snapBack := rowStart
			if s.AllowSplit && end-rowStart > tentativePx-pageStartPx {
				// Row is taller than the remaining page; split it raw.
				return tentativePx, false
			}
			if rowsOnPage(s, pageStartPx, snapBack) >= pol.MinRowsPerPage && snapBack > pageStartPx {
				return snapBack, false
			}
			return end, true
		}
		if tentativePx == end {
			return tentativePx, false
		}
		rowStart = end
	}
	return tentativePx, false
}

// rowsOnPage counts body rows that end within (pageStartPx, cutPx]
func rowsOnPage(s Segment, pageStartPx, cutPx int) int {
	n := 0
	for _, end := range s.RowBoundariesPx {
		if end > pageStartPx && end <= cutPx {
			n++
		}
	}
	return n
}

// SafeCuts returns every row boundary of every segment, sorted ascending.
// These are the offsets at which slicing never bisects a row.
func SafeCuts(segs []Segment) []int {
	var cuts []int
	for _, s := range segs {
		cuts = append(cuts, s.TableOffsetPx)
		cuts = append(cuts, s.RowBoundariesPx...)
	}
	sort.Ints(cuts)
	out := cuts[:0]
	for i, c := range cuts {
		if i == 0 || c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

// HeaderRepeat describes the duplicated header block drawn at the top of a
// table continuation page.
type HeaderRepeat struct {
	// SrcStartPx / SrcEndPx bound the header rows in surface space
	SrcStartPx int
	SrcEndPx   int
}

// HeaderFor returns the header block to repeat when a page starts at
// pageStartPx inside the segment's body, or nil when no repetition applies.
func (s Segment) HeaderFor(pageStartPx int, pol Policy) *HeaderRepeat {
	if !pol.RepeatHeaders || s.HeaderHeightPx <= 0 {
		return nil
	}
	if pageStartPx < s.BodyStartPx() || pageStartPx >= s.EndPx() {
		return nil
	}
	return &HeaderRepeat{
		SrcStartPx: s.TableOffsetPx,
		SrcEndPx:   s.TableOffsetPx + s.HeaderHeightPx,
	}
}
