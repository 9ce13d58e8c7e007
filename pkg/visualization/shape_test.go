package visualization_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/visualization"
)

func TestShapeAnalyzer_NumericColumnStatistics(t *testing.T) {
	vals := make([]interface{}, 50)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	f := frame.NewFromColumns([]string{"duration"}, map[string][]interface{}{"duration": vals})

	a := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())
	shape := a.Analyze(f, nil)

	require.Len(t, shape.Columns, 1)
	col := shape.Columns[0]
	assert.Equal(t, 1.0, col.Min)
	assert.Equal(t, 50.0, col.Max)
	assert.InDelta(t, 25.5, col.Mean, 0.01)
	assert.Contains(t, shape.PrimaryMetrics, "duration")
}

func TestShapeAnalyzer_DetectsTimeSeriesColumn(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]map[string]interface{}, 30)
	for i := range rows {
		rows[i] = map[string]interface{}{
			"timestamp": base.Add(time.Duration(i) * time.Hour),
			"value":     float64(i),
		}
	}
	f := frame.NewFromRows([]string{"timestamp", "value"}, rows)

	a := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())
	shape := a.Analyze(f, nil)

	assert.True(t, shape.HasTimeSeries)
	assert.Equal(t, "timestamp", shape.TimeColumn)
}

func TestShapeAnalyzer_CategoricalDominantDistribution(t *testing.T) {
	vals := make([]interface{}, 0, 50)
	for i := 0; i < 45; i++ {
		vals = append(vals, "ok")
	}
	for i := 0; i < 5; i++ {
		vals = append(vals, "error")
	}
	f := frame.NewFromColumns([]string{"status"}, map[string][]interface{}{"status": vals})

	a := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())
	shape := a.Analyze(f, nil)

	require.Len(t, shape.Columns, 1)
	col := shape.Columns[0]
	assert.Equal(t, visualization.CategoryDominant, col.CategoryDistribution)
	require.NotEmpty(t, col.TopCategories)
	assert.Equal(t, "ok", col.TopCategories[0].Value)
}

func TestShapeAnalyzer_BooleanSkewDetection(t *testing.T) {
	vals := make([]interface{}, 0, 40)
	for i := 0; i < 38; i++ {
		vals = append(vals, true)
	}
	for i := 0; i < 2; i++ {
		vals = append(vals, false)
	}
	f := frame.NewFromColumns([]string{"is_error"}, map[string][]interface{}{"is_error": vals})

	a := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())
	shape := a.Analyze(f, nil)

	require.Len(t, shape.Columns, 1)
	assert.Equal(t, visualization.CategoryDominant, shape.Columns[0].CategoryDistribution)
}

func TestShapeAnalyzer_CorrelationsAboveThreshold(t *testing.T) {
	xs := make([]interface{}, 40)
	ys := make([]interface{}, 40)
	for i := 0; i < 40; i++ {
		xs[i] = float64(i)
		ys[i] = float64(i) * 2
	}
	f := frame.NewFromColumns([]string{"a", "b"}, map[string][]interface{}{"a": xs, "b": ys})

	a := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())
	shape := a.Analyze(f, nil)

	colA := shape.Columns[0]
	if colA.Name != "a" {
		colA = shape.Columns[1]
	}
	assert.Contains(t, colA.Correlations, "b")
	assert.Greater(t, colA.Correlations["b"], 0.9)
}

func TestShapeAnalyzer_RestrictsToTargetColumns(t *testing.T) {
	vals := make([]interface{}, 10)
	for i := range vals {
		vals[i] = float64(i)
	}
	f := frame.NewFromColumns([]string{"a", "b"}, map[string][]interface{}{"a": vals, "b": vals})

	a := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())
	shape := a.Analyze(f, []string{"a"})

	require.Len(t, shape.Columns, 1)
	assert.Equal(t, "a", shape.Columns[0].Name)
}

func TestShapeAnalyzer_QualityScoreIsBounded(t *testing.T) {
	vals := make([]interface{}, 20)
	for i := range vals {
		vals[i] = float64(i)
	}
	f := frame.NewFromColumns([]string{"clean"}, map[string][]interface{}{"clean": vals})

	a := visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig())
	shape := a.Analyze(f, nil)

	assert.GreaterOrEqual(t, shape.DataQualityScore, 0.0)
	assert.LessOrEqual(t, shape.DataQualityScore, 1.0)
}
