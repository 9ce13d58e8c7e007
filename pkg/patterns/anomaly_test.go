package patterns_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/patterns"
)

func TestAnomalyDetector_UnivariatePointAnomaly(t *testing.T) {
	vals := make([]interface{}, 40)
	for i := 0; i < 39; i++ {
		vals[i] = 100.0
	}
	vals[39] = 10000.0
	f := frame.NewFromColumns([]string{"response_ms"}, map[string][]interface{}{"response_ms": vals})

	d := patterns.NewAnomalyDetector(patterns.DetectorConfig{MinSamples: 30, ConfidenceThreshold: 0.01}, nil)
	found := d.Detect(f, []string{"response_ms"}, &patterns.Context{})

	require.NotEmpty(t, found)
	assert.Equal(t, patterns.TypeAnomalyPoint, found[0].Type)
	assert.Equal(t, []string{"response_ms"}, found[0].Columns)
}

func TestAnomalyDetector_MultivariateRequiresTwoNumericColumns(t *testing.T) {
	vals := make([]interface{}, 40)
	for i := range vals {
		vals[i] = float64(i)
	}
	f := frame.NewFromColumns([]string{"only"}, map[string][]interface{}{"only": vals})

	d := patterns.NewAnomalyDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"only"}, &patterns.Context{})
	for _, p := range found {
		assert.NotEqual(t, "Multivariate anomalies detected across 1 columns", p.Description)
	}
}

func TestAnomalyDetector_NoAnomaliesInUniformData(t *testing.T) {
	vals := make([]interface{}, 40)
	for i := range vals {
		vals[i] = 42.0
	}
	f := frame.NewFromColumns([]string{"constant"}, map[string][]interface{}{"constant": vals})

	d := patterns.NewAnomalyDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"constant"}, &patterns.Context{})
	assert.Empty(t, found)
}

func TestAnomalyDetector_Name(t *testing.T) {
	d := patterns.NewAnomalyDetector(patterns.DefaultDetectorConfig(), nil)
	assert.Equal(t, "anomaly", d.Name())
}
