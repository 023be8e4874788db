// Package progress carries progress reporting and non-fatal diagnostics
// through the generation pipeline as explicit values.
package progress

import (
	"fmt"
	"sync"
)

// Func receives progress updates in the range [0, 100].
type Func func(percent float64)

// Reporter forwards progress updates to a callback. Reported values are
// monotonically non-decreasing: a smaller value than the last reported one
// is dropped.
type Reporter struct {
	mu   sync.Mutex
	last float64
	fn   Func
}

// NewReporter creates a reporter wrapping fn. A nil fn is valid and
// discards all updates.
func NewReporter(fn Func) *Reporter {
	return &Reporter{fn: fn}
}

// Report forwards percent to the callback if it does not regress.
// Values are clamped to [0, 100].
func (r *Reporter) Report(percent float64) {
	if r == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if percent <= r.last {
		return
	}
	r.last = percent
	if r.fn != nil {
		r.fn(percent)
	}
}

// Last returns the most recently reported value.
func (r *Reporter) Last() float64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// WarningKind classifies a recovered, non-fatal condition.
type WarningKind int

const (
	// WarnConstraintConflict marks an avoid region that could not be
	// honored without forced overflow.
	WarnConstraintConflict WarningKind = iota
	// WarnDegenerateSlice marks a zero-height slice that was merged into
	// its successor.
	WarnDegenerateSlice
	// WarnScaleOutOfRange marks a batch scale factor that was clamped.
	WarnScaleOutOfRange
	// WarnRowOverflow marks a table row or atomic region taller than one
	// page that was emitted with overflow.
	WarnRowOverflow
)

// String returns the warning kind name
func (k WarningKind) String() string {
	switch k {
	case WarnConstraintConflict:
		return "constraint-conflict"
	case WarnDegenerateSlice:
		return "degenerate-slice"
	case WarnScaleOutOfRange:
		return "scale-out-of-range"
	case WarnRowOverflow:
		return "row-overflow"
	default:
		return "unknown"
	}
}

// Warning describes a recovered condition encountered during generation.
type Warning struct {
	Kind     WarningKind
	OffsetPx int
	Detail   string
}

// String formats the warning for logs and diagnostics output
func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s at %dpx", w.Kind, w.OffsetPx)
	}
	return fmt.Sprintf("%s at %dpx: %s", w.Kind, w.OffsetPx, w.Detail)
}
