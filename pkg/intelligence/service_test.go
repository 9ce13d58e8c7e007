package intelligence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/intelligence"
)

func outlierRows() []interface{} {
	rows := make([]interface{}, 0, 40)
	for i := 0; i < 38; i++ {
		rows = append(rows, map[string]interface{}{"latency": 50.0})
	}
	rows = append(rows,
		map[string]interface{}{"latency": 5000.0},
		map[string]interface{}{"latency": 5200.0},
	)
	return rows
}

func TestService_HealthCheckPassesWhenWired(t *testing.T) {
	s := intelligence.NewService(nil)
	assert.NoError(t, s.HealthCheck(context.Background()))
}

func TestService_AnalyzePatternsDetectsOutlier(t *testing.T) {
	s := intelligence.NewService(nil)
	data := map[string]interface{}{"rows": outlierRows()}

	result, err := s.AnalyzePatterns(context.Background(), data, nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	var hasOutlier bool
	for _, p := range result.Patterns {
		if p.Type == "outlier" {
			hasOutlier = true
		}
	}
	assert.True(t, hasOutlier)
	assert.Equal(t, false, result.Metadata["cache_hit"])
}

func TestService_AnalyzePatternsRequiresRowsKey(t *testing.T) {
	s := intelligence.NewService(nil)
	_, err := s.AnalyzePatterns(context.Background(), map[string]interface{}{}, nil)
	assert.Error(t, err)
}

func TestService_GenerateQueryReturnsNRQL(t *testing.T) {
	s := intelligence.NewService(nil)
	result, err := s.GenerateQuery(context.Background(), "show average duration for checkout", nil)
	require.NoError(t, err)
	assert.Contains(t, result.NRQL, "SELECT")
}

func TestService_RecommendChartsForTimeSeries(t *testing.T) {
	s := intelligence.NewService(nil)
	rows := make([]interface{}, 30)
	for i := range rows {
		rows[i] = map[string]interface{}{
			"timestamp": float64(1700000000 + i*3600),
			"duration":  float64(i),
		}
	}
	data := map[string]interface{}{"rows": rows}

	result, err := s.RecommendCharts(context.Background(), data, "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Recommendations)
}

func TestService_OptimizeLayoutPlacesAllWidgets(t *testing.T) {
	s := intelligence.NewService(nil)
	widgets := []intelligence.Widget{
		{ID: "w1", ChartType: "billboard", Priority: "critical"},
		{ID: "w2", ChartType: "bar", Priority: "low"},
	}

	layout, err := s.OptimizeLayout(context.Background(), widgets, nil)
	require.NoError(t, err)
	assert.Len(t, layout.Placements, 2)
	assert.Equal(t, "grid", layout.Strategy)
}

func TestService_OptimizeLayoutUsesResponsiveStrategyForMobile(t *testing.T) {
	s := intelligence.NewService(nil)
	widgets := []intelligence.Widget{{ID: "w1", ChartType: "billboard"}}
	constraints := &intelligence.LayoutConstraints{MobileFriendly: true}

	layout, err := s.OptimizeLayout(context.Background(), widgets, constraints)
	require.NoError(t, err)
	assert.Equal(t, "responsive", layout.Strategy)
	assert.Equal(t, 1, layout.Grid.Columns)
}
