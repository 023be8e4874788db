package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/analyzer"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/capture"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/pagination"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/progress"
	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/tables"
)

func captureOfHeight(h int) *capture.Capture {
	return &capture.Capture{
		Surface: capture.NewSurface(100, h),
		Root:    &capture.Node{Tag: "body", HeightPx: h},
	}
}

func boolPtr(b bool) *bool { return &b }

func TestComputeScale(t *testing.T) {
	tests := []struct {
		name        string
		natural     int
		requested   int
		usable      int
		wantScale   float64
		wantClamped bool
	}{
		{"no budget keeps natural size", 1000, 0, 400, 1.0, false},
		{"exact fit", 400, 1, 400, 1.0, false},
		{"compress to one page", 800, 1, 400, 0.5, false},
		{"expand to two pages", 400, 2, 400, 2.0, false},
		{"clamped low", 100000, 1, 400, MinScale, true},
		{"clamped high", 50, 2, 400, MaxScale, true},
		{"empty content", 0, 3, 400, 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, clamped := ComputeScale(tt.natural, tt.requested, tt.usable)
			assert.InDelta(t, tt.wantScale, scale, 1e-9)
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}

func TestConcatenate_OffsetsAndHeights(t *testing.T) {
	items := []*Item{
		{Capture: captureOfHeight(600)},
		{Capture: captureOfHeight(800), RequestedPageCount: 1},
		{Capture: captureOfHeight(300)},
	}
	plan, err := Concatenate(items, 400, analyzer.Policy{}, tables.Policy{})
	require.NoError(t, err)

	assert.Equal(t, 0, items[0].OffsetPx)
	assert.Equal(t, 600, items[0].ScaledHeightPx)
	assert.InDelta(t, 1.0, items[0].ComputedScale, 1e-9)

	// Second item compressed to one page: 400/800 = 0.5.
	assert.Equal(t, 600, items[1].OffsetPx)
	assert.Equal(t, 400, items[1].ScaledHeightPx)
	assert.InDelta(t, 0.5, items[1].ComputedScale, 1e-9)

	assert.Equal(t, 1000, items[2].OffsetPx)
	assert.Equal(t, 1300, plan.TotalHeightPx)
	assert.Equal(t, []int{0, 600, 1000}, plan.ItemStartsPx)
	assert.Empty(t, plan.Warnings)
}

func TestConcatenate_DefaultBreaksBetweenItems(t *testing.T) {
	items := []*Item{
		{Capture: captureOfHeight(500)},
		{Capture: captureOfHeight(500)},
	}
	plan, err := Concatenate(items, 400, analyzer.Policy{}, tables.Policy{})
	require.NoError(t, err)

	// The default puts a forced break after each item except the last.
	require.Len(t, plan.Constraints, 1)
	assert.Equal(t, analyzer.Constraint{OffsetPx: 500, Kind: analyzer.ForceAfter}, plan.Constraints[0])
}

func TestConcatenate_NewPageFalseSharesPage(t *testing.T) {
	items := []*Item{
		{Capture: captureOfHeight(100), NewPage: boolPtr(false)},
		{Capture: captureOfHeight(100), NewPage: boolPtr(false)},
	}
	plan, err := Concatenate(items, 400, analyzer.Policy{}, tables.Policy{})
	require.NoError(t, err)
	assert.Empty(t, plan.Constraints)
}

func TestConcatenate_NewPageTrueForcesBreakBefore(t *testing.T) {
	items := []*Item{
		{Capture: captureOfHeight(100), NewPage: boolPtr(false)},
		{Capture: captureOfHeight(100), NewPage: boolPtr(true)},
	}
	plan, err := Concatenate(items, 400, analyzer.Policy{}, tables.Policy{})
	require.NoError(t, err)
	require.Len(t, plan.Constraints, 1)
	assert.Equal(t, analyzer.Constraint{OffsetPx: 100, Kind: analyzer.ForceBefore}, plan.Constraints[0])
}

func TestConcatenate_ClampWarning(t *testing.T) {
	items := []*Item{
		{Capture: captureOfHeight(50), RequestedPageCount: 3},
	}
	plan, err := Concatenate(items, 400, analyzer.Policy{}, tables.Policy{})
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, progress.WarnScaleOutOfRange, plan.Warnings[0].Kind)
	assert.InDelta(t, MaxScale, items[0].ComputedScale, 1e-9)
}

func TestConcatenate_MissingCapture(t *testing.T) {
	_, err := Concatenate([]*Item{{}}, 400, analyzer.Policy{}, tables.Policy{})
	assert.Error(t, err)
}

func TestConcatenate_ScalesItemConstraints(t *testing.T) {
	capt := &capture.Capture{
		Surface: capture.NewSurface(100, 800),
		Root: &capture.Node{
			Tag: "body", HeightPx: 800,
			Children: []*capture.Node{
				{Tag: "div", TopPx: 400, HeightPx: 200, Directives: capture.Directives{ForceBefore: true}},
			},
		},
	}
	items := []*Item{
		{Capture: captureOfHeight(200)},
		{Capture: capt, RequestedPageCount: 1},
	}
	plan, err := Concatenate(items, 400, analyzer.Policy{RespectExplicitBreaks: true}, tables.Policy{})
	require.NoError(t, err)

	// Item 2 is scaled by 0.5, so the break at its natural 400px lands at
	// 200 + 400*0.5 = 400 in concatenated space.
	var got []analyzer.Constraint
	for _, c := range plan.Constraints {
		if c.Kind == analyzer.ForceBefore {
			got = append(got, c)
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, 400, got[0].OffsetPx)
}

func TestAssignPages(t *testing.T) {
	items := []*Item{
		{OffsetPx: 0, ScaledHeightPx: 500},
		{OffsetPx: 500, ScaledHeightPx: 700},
	}
	slices := []pagination.Slice{
		{Index: 0, StartPx: 0, EndPx: 400},
		{Index: 1, StartPx: 400, EndPx: 800},
		{Index: 2, StartPx: 800, EndPx: 1200},
	}
	AssignPages(items, slices)

	assert.Equal(t, 1, items[0].StartPage)
	assert.Equal(t, 2, items[0].EndPage)
	assert.Equal(t, 2, items[0].PageCount())

	// The second item shares page 2 with the first.
	assert.Equal(t, 2, items[1].StartPage)
	assert.Equal(t, 3, items[1].EndPage)
	assert.Equal(t, 2, items[1].PageCount())
}

func TestAssignPages_NoSliceKeepsZero(t *testing.T) {
	items := []*Item{{OffsetPx: 0, ScaledHeightPx: 100}}
	AssignPages(items, nil)
	assert.Equal(t, 0, items[0].StartPage)
	assert.Equal(t, 0, items[0].PageCount())
}
