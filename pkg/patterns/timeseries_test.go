package patterns_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/patterns"
)

func tsFrame(values []float64) *frame.Frame {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]map[string]interface{}, len(values))
	for i, v := range values {
		rows[i] = map[string]interface{}{
			"timestamp": base.Add(time.Duration(i) * time.Hour),
			"value":     v,
		}
	}
	return frame.NewFromRows([]string{"timestamp", "value"}, rows)
}

func TestTimeSeriesDetector_LinearTrend(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i) * 2
	}
	f := tsFrame(values)

	d := patterns.NewTimeSeriesDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"value"}, &patterns.Context{})

	require.NotEmpty(t, found)
	var trend *patterns.Pattern
	for i := range found {
		if found[i].Type == patterns.TypeTrendLinear || found[i].Type == patterns.TypeTrendExponential {
			trend = &found[i]
		}
	}
	require.NotNil(t, trend)
}

func TestTimeSeriesDetector_NoTemporalColumnReturnsNil(t *testing.T) {
	values := make([]interface{}, 40)
	for i := range values {
		values[i] = float64(i)
	}
	f := frame.NewFromColumns([]string{"value"}, map[string][]interface{}{"value": values})

	d := patterns.NewTimeSeriesDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"value"}, &patterns.Context{})
	assert.Empty(t, found)
}

func TestTimeSeriesDetector_StationarySeries(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		if i%2 == 0 {
			values[i] = 10
		} else {
			values[i] = 11
		}
	}
	f := tsFrame(values)

	d := patterns.NewTimeSeriesDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"value"}, &patterns.Context{})

	var stationary bool
	for _, p := range found {
		if p.Type == patterns.TypeStationary {
			stationary = true
		}
	}
	assert.True(t, stationary)
}

func TestTimeSeriesDetector_Name(t *testing.T) {
	d := patterns.NewTimeSeriesDetector(patterns.DefaultDetectorConfig(), nil)
	assert.Equal(t, "timeseries", d.Name())
}
