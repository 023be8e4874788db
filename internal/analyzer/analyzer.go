// Package analyzer extracts page-break constraints from frozen content
// geometry. It is a pure pass: one depth-first traversal over the capture
// tree yields an immutable, sorted constraint list, with no dependency on
// the rendering engine.
package analyzer

import (
	"sort"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/capture"
)

// Kind classifies a break constraint.
type Kind uint8

const (
	// ForceBefore requires a page boundary exactly at OffsetPx
	ForceBefore Kind = iota
	// ForceAfter requires a page boundary exactly at OffsetPx (the
	// emitting node's bottom edge)
	ForceAfter
	// AvoidInsideStart opens a region that page boundaries must not fall
	// strictly inside
	AvoidInsideStart
	// AvoidInsideEnd closes the most recent avoid region
	AvoidInsideEnd
	// OrphanHeading opens an avoid region that keeps a heading attached
	// to its following sibling; closed by AvoidInsideEnd
	OrphanHeading
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case ForceBefore:
		return "force-before"
	case ForceAfter:
		return "force-after"
	case AvoidInsideStart:
		return "avoid-inside-start"
	case AvoidInsideEnd:
		return "avoid-inside-end"
	case OrphanHeading:
		return "orphan-heading"
	default:
		return "unknown"
	}
}

// Constraint is one geometric rule restricting where a page boundary may
// fall, in surface pixel space.
type Constraint struct {
	OffsetPx int
	Kind     Kind
}

// Policy controls which constraints the analyzer emits.
type Policy struct {
	RespectExplicitBreaks bool
	AvoidOrphanHeadings   bool
}

// Range is a half-open [StartPx, EndPx) avoid region.
type Range struct {
	StartPx int
	EndPx   int
}

// Contains reports whether off lies strictly inside the range
func (r Range) Contains(off int) bool {
	return off > r.StartPx && off < r.EndPx
}

// Extract walks the capture tree and returns the sorted constraint list.
// Zero-height and malformed nodes are skipped. Overlapping avoid regions
// are merged into their union before the list is returned.
func Extract(root *capture.Node, pol Policy) []Constraint {
	var forces []Constraint
	var avoids []Range

	var walk func(n, nextSibling *capture.Node)
	walk = func(n, nextSibling *capture.Node) {
		if n == nil {
			return
		}
		if n.HeightPx > 0 {
			if pol.RespectExplicitBreaks {
				if n.Directives.ForceBefore {
					forces = append(forces, Constraint{OffsetPx: n.TopPx, Kind: ForceBefore})
				}
				if n.Directives.ForceAfter {
					forces = append(forces, Constraint{OffsetPx: n.BottomPx(), Kind: ForceAfter})
				}
				if n.Directives.AvoidInside {
					avoids = append(avoids, Range{StartPx: n.TopPx, EndPx: n.BottomPx()})
				}
			}
			if pol.AvoidOrphanHeadings && n.HeadingLevel > 0 {
				if r, ok := orphanRange(n, nextSibling); ok {
					avoids = append(avoids, r)
				}
			}
		}
		for i, c := range n.Children {
			var next *capture.Node
			if i+1 < len(n.Children) {
				next = n.Children[i+1]
			}
			walk(c, next)
		}
	}
	walk(root, nil)

	merged := MergeRanges(avoids)

	out := make([]Constraint, 0, len(forces)+2*len(merged))
	out = append(out, forces...)
	for _, r := range merged {
		out = append(out,
			Constraint{OffsetPx: r.StartPx, Kind: AvoidInsideStart},
			Constraint{OffsetPx: r.EndPx, Kind: AvoidInsideEnd},
		)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OffsetPx < out[j].OffsetPx
	})
	return out
}

// orphanRange spans from the heading's top through the end of its
// immediately following sibling, so the heading cannot be stranded as the
// last element on a page.
func orphanRange(heading, next *capture.Node) (Range, bool) {
	for next != nil && next.HeightPx <= 0 {
		next = firstDescendantWithHeight(next)
	}
	if next == nil {
		return Range{}, false
	}
	end := next.BottomPx()
	if end <= heading.TopPx {
		return Range{}, false
	}
	return Range{StartPx: heading.TopPx, EndPx: end}, true
}

func firstDescendantWithHeight(n *capture.Node) *capture.Node {
	for _, c := range n.Children {
		if c.HeightPx > 0 {
			return c
		}
		if found := firstDescendantWithHeight(c); found != nil {
			return found
		}
	}
	return nil
}

// Forces returns the sorted, deduplicated force boundary offsets from a
// merged constraint list. ForceBefore and ForceAfter both pin a boundary to
// their offset.
func Forces(cs []Constraint) []int {
	var out []int
	for _, c := range cs {
		if c.Kind == ForceBefore || c.Kind == ForceAfter {
			out = append(out, c.OffsetPx)
		}
	}
	sort.Ints(out)
	return dedupe(out)
}

// Avoids reconstructs the merged avoid regions from a constraint list.
func Avoids(cs []Constraint) []Range {
	var out []Range
	var open []int
	for _, c := range cs {
		switch c.Kind {
		case AvoidInsideStart, OrphanHeading:
			open = append(open, c.OffsetPx)
		case AvoidInsideEnd:
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			out = append(out, Range{StartPx: start, EndPx: c.OffsetPx})
		}
	}
	return MergeRanges(out)
}

// MergeRanges sorts ranges and merges overlapping or touching ones into
// their union. Empty ranges are dropped.
func MergeRanges(ranges []Range) []Range {
	var valid []Range
	for _, r := range ranges {
		if r.EndPx > r.StartPx {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].StartPx != valid[j].StartPx {
			return valid[i].StartPx < valid[j].StartPx
		}
		return valid[i].EndPx < valid[j].EndPx
	})
	out := []Range{valid[0]}
	for _, r := range valid[1:] {
		last := &out[len(out)-1]
		if r.StartPx <= last.EndPx {
			if r.EndPx > last.EndPx {
				last.EndPx = r.EndPx
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func dedupe(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
