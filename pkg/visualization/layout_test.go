package visualization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/visualization"
)

func widgetSet() []visualization.Widget {
	return []visualization.Widget{
		{ID: "w1", ChartType: visualization.ChartTimeseriesLine, Priority: visualization.PriorityCritical},
		{ID: "w2", ChartType: visualization.ChartBar, Priority: visualization.PriorityMedium},
		{ID: "w3", ChartType: visualization.ChartBillboard, Priority: visualization.PriorityHigh},
		{ID: "w4", ChartType: visualization.ChartTable, Priority: visualization.PriorityLow},
	}
}

func TestLayoutOptimizer_GridPlacesAllWidgetsWithoutOverlap(t *testing.T) {
	o := visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig())
	layout := o.Optimize(widgetSet(), visualization.DefaultLayoutConstraints(), visualization.LayoutGrid)

	require.Len(t, layout.Placements, 4)

	occupied := map[[2]int]bool{}
	for _, p := range layout.Placements {
		for x := p.Position.X; x < p.Position.X+p.Size.Width; x++ {
			for y := p.Position.Y; y < p.Position.Y+p.Size.Height; y++ {
				key := [2]int{x, y}
				assert.False(t, occupied[key], "cell (%d,%d) double-placed", x, y)
				occupied[key] = true
			}
		}
	}
}

func TestLayoutOptimizer_EmptyWidgetListReturnsEmptyLayout(t *testing.T) {
	o := visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig())
	layout := o.Optimize(nil, visualization.DefaultLayoutConstraints(), visualization.LayoutGrid)

	assert.Empty(t, layout.Placements)
	assert.Equal(t, visualization.LayoutGrid, layout.Strategy)
}

func TestLayoutOptimizer_MasonryFillsShortestColumnFirst(t *testing.T) {
	o := visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig())
	layout := o.Optimize(widgetSet(), visualization.DefaultLayoutConstraints(), visualization.LayoutMasonry)

	assert.Equal(t, visualization.LayoutMasonry, layout.Strategy)
	require.Len(t, layout.Placements, 4)

	// w1 (2 wide) fills columns 0-1 first; the single-width w3 then goes to
	// column 2, the leftmost of the shortest columns.
	for _, p := range layout.Placements {
		if p.WidgetID == "w3" {
			assert.Equal(t, visualization.GridPosition{X: 2, Y: 0}, p.Position)
		}
	}
}

func TestLayoutOptimizer_ScoresAreWithinUnitRange(t *testing.T) {
	o := visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig())
	layout := o.Optimize(widgetSet(), visualization.DefaultLayoutConstraints(), visualization.LayoutGrid)

	assert.GreaterOrEqual(t, layout.SpaceUtilization, 0.0)
	assert.LessOrEqual(t, layout.SpaceUtilization, 1.0)
	assert.GreaterOrEqual(t, layout.VisualBalance, 0.0)
	assert.LessOrEqual(t, layout.VisualBalance, 1.0)
	assert.GreaterOrEqual(t, layout.RelationshipScore, 0.0)
	assert.LessOrEqual(t, layout.RelationshipScore, 1.0)
}

func TestLayoutOptimizer_RelatedWidgetsPlacedNearbyScoreHigh(t *testing.T) {
	widgets := []visualization.Widget{
		{ID: "a", ChartType: visualization.ChartBillboard, Priority: visualization.PriorityHigh, RelatedWidgets: []string{"b"}},
		{ID: "b", ChartType: visualization.ChartBillboard, Priority: visualization.PriorityHigh, RelatedWidgets: []string{"a"}},
	}
	o := visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig())
	layout := o.Optimize(widgets, visualization.DefaultLayoutConstraints(), visualization.LayoutGrid)

	assert.Equal(t, 1.0, layout.RelationshipScore)
}

func TestLayoutOptimizer_MobileConstraintCollapsesToSingleColumn(t *testing.T) {
	constraints := visualization.DefaultLayoutConstraints()
	constraints.MobileFriendly = true
	o := visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig())
	layout := o.Optimize(widgetSet(), constraints, visualization.LayoutResponsive)

	assert.Equal(t, 1, layout.GridColumns)
	for _, p := range layout.Placements {
		assert.Equal(t, 0, p.Position.X)
	}
}

func TestLayoutOptimizer_SuggestImprovementsFlagsSparseLayout(t *testing.T) {
	o := visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig())
	layout := visualization.DashboardLayout{
		SpaceUtilization: 0.2,
		VisualBalance:    0.9,
		RelationshipScore: 0.9,
		Strategy:         visualization.LayoutGrid,
	}
	suggestions := o.SuggestImprovements(layout)
	assert.NotEmpty(t, suggestions)
}

func TestWidgetSize_Area(t *testing.T) {
	assert.Equal(t, 4, visualization.SizeLarge.Area())
	assert.Equal(t, 1, visualization.SizeSmall.Area())
}
