// Package capture defines the capture boundary of the pipeline: a renderer
// turns markup into a raster surface plus a frozen geometry tree. All
// geometry is snapshotted into plain numeric fields immediately after
// rendering, so later stages never query a live layout.
package capture

import (
	"context"
	"errors"
)

// ErrCapture marks a fatal rendering failure at the capture boundary: the
// whole generation call aborts and surfaces it to the caller.
var ErrCapture = errors.New("capture failure")

// Directives are the page-break hints carried by a content node, resolved
// from its computed style during capture.
type Directives struct {
	// ForceBefore requires a page boundary at the node's top edge
	ForceBefore bool
	// ForceAfter requires a page boundary at the node's bottom edge
	ForceAfter bool
	// AvoidInside forbids page boundaries strictly inside the node
	AvoidInside bool
}

// Table holds the frozen row geometry of a rendered table, in surface
// pixel space.
type Table struct {
	// TopPx is the table's top edge, including any header rows
	TopPx int
	// HeaderHeightPx is the total height of the header rows (0 when the
	// table has no header)
	HeaderHeightPx int
	// RowEndsPx lists the bottom edge of each body row, ascending
	RowEndsPx []int
}

// BottomPx returns the bottom edge of the table's last body row, or 0 for
// a nil table.
func (t *Table) BottomPx() int {
	if t == nil {
		return 0
	}
	if len(t.RowEndsPx) == 0 {
		return t.TopPx
	}
	return t.RowEndsPx[len(t.RowEndsPx)-1]
}

// Node is one element of the frozen content geometry tree. Positions are
// absolute surface pixel offsets.
type Node struct {
	Tag          string
	TopPx        int
	HeightPx     int
	HeadingLevel int // 1-6 for h1-h6, 0 otherwise
	Directives   Directives
	Table        *Table // non-nil for table elements
	Children     []*Node
}

// BottomPx returns the node's bottom edge
func (n *Node) BottomPx() int {
	return n.TopPx + n.HeightPx
}

// Capture is the immutable result of one render call: the raster surface
// and the geometry tree describing it.
type Capture struct {
	Surface *Surface
	Root    *Node
}

// Renderer renders markup to a fixed-width raster surface. Implementations
// must be deterministic for identical input and report exact integer pixel
// geometry.
type Renderer interface {
	Render(ctx context.Context, content string, targetWidthPx int) (*Capture, error)
}
