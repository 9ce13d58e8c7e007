package visualization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/visualization"
)

func TestChartRecommender_SingleMetricTimeSeriesPrefersLineChart(t *testing.T) {
	shape := visualization.DataShape{
		RowCount:       200,
		HasTimeSeries:  true,
		TimeColumn:     "timestamp",
		PrimaryMetrics: []string{"duration"},
	}
	r := visualization.NewChartRecommender()
	recs := r.Recommend(shape, visualization.DefaultRecommendationContext())

	require.NotEmpty(t, recs)
	assert.Equal(t, visualization.ChartTimeseriesLine, recs[0].ChartType)
	assert.Equal(t, "timestamp", recs[0].XAxis)
}

func TestChartRecommender_SingleRowSingleMetricIsBillboard(t *testing.T) {
	shape := visualization.DataShape{
		RowCount:       1,
		PrimaryMetrics: []string{"total_errors"},
	}
	ctx := visualization.DefaultRecommendationContext()
	ctx.VisualizationGoal = visualization.GoalComparison
	r := visualization.NewChartRecommender()
	recs := r.Recommend(shape, ctx)

	require.NotEmpty(t, recs)
	var hasBillboard bool
	for _, rec := range recs {
		if rec.ChartType == visualization.ChartBillboard {
			hasBillboard = true
		}
	}
	assert.True(t, hasBillboard)
}

func TestChartRecommender_CategoricalComparisonRecommendsBar(t *testing.T) {
	shape := visualization.DataShape{
		RowCount: 50,
		Columns: []visualization.ColumnCharacteristics{
			{Name: "region", DType: frame.DTypeCategoricalNominal, Cardinality: 5, CategoryDistribution: visualization.CategoryBalanced},
		},
		PrimaryMetrics:    []string{"revenue"},
		PrimaryDimensions: []string{"region"},
	}
	ctx := visualization.DefaultRecommendationContext()
	ctx.VisualizationGoal = visualization.GoalComparison
	r := visualization.NewChartRecommender()
	recs := r.Recommend(shape, ctx)

	require.NotEmpty(t, recs)
	assert.Equal(t, visualization.ChartBar, recs[0].ChartType)
	assert.Equal(t, "region", recs[0].XAxis)
}

func TestChartRecommender_ExcludedChartIsFilteredOut(t *testing.T) {
	shape := visualization.DataShape{
		RowCount:       200,
		HasTimeSeries:  true,
		TimeColumn:     "timestamp",
		PrimaryMetrics: []string{"duration"},
	}
	ctx := visualization.DefaultRecommendationContext()
	ctx.ExcludedCharts = []visualization.ChartType{visualization.ChartTimeseriesLine}
	r := visualization.NewChartRecommender()
	recs := r.Recommend(shape, ctx)

	for _, rec := range recs {
		assert.NotEqual(t, visualization.ChartTimeseriesLine, rec.ChartType)
	}
}

func TestChartRecommender_NoMatchFallsBackToTable(t *testing.T) {
	shape := visualization.DataShape{RowCount: 5}
	r := visualization.NewChartRecommender()
	recs := r.Recommend(shape, visualization.DefaultRecommendationContext())

	require.Len(t, recs, 1)
	assert.Equal(t, visualization.ChartTable, recs[0].ChartType)
}

func TestChartRecommender_PreferredChartBoostsConfidence(t *testing.T) {
	shape := visualization.DataShape{
		RowCount:       200,
		HasTimeSeries:  true,
		TimeColumn:     "timestamp",
		PrimaryMetrics: []string{"duration", "errors"},
	}
	plain := visualization.NewChartRecommender().Recommend(shape, visualization.DefaultRecommendationContext())

	ctx := visualization.DefaultRecommendationContext()
	ctx.PreferredCharts = []visualization.ChartType{visualization.ChartTimeseriesStack}
	preferred := visualization.NewChartRecommender().Recommend(shape, ctx)

	require.NotEmpty(t, plain)
	require.NotEmpty(t, preferred)
	assert.Equal(t, visualization.ChartTimeseriesStack, preferred[0].ChartType)
	assert.Greater(t, preferred[0].Confidence, plain[0].Confidence)
}
