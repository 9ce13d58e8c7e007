package patterns_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/patterns"
)

func columnFrame(t *testing.T, name string, values []interface{}) *frame.Frame {
	t.Helper()
	return frame.NewFromColumns([]string{name}, map[string][]interface{}{name: values})
}

func TestStatisticalDetector_OutlierDetection(t *testing.T) {
	vals := make([]interface{}, 0, 40)
	for i := 0; i < 39; i++ {
		vals = append(vals, 50.0)
	}
	vals = append(vals, 5000.0)
	f := columnFrame(t, "latency", vals)

	d := patterns.NewStatisticalDetector(patterns.DetectorConfig{MinSamples: 30, ConfidenceThreshold: 0.01}, nil)
	found := d.Detect(f, []string{"latency"}, &patterns.Context{})

	var hasOutlier bool
	for _, p := range found {
		if p.Type == patterns.TypeOutlier {
			hasOutlier = true
			assert.Equal(t, patterns.ImpactHigh, p.Impact)
			assert.NotEmpty(t, p.Evidence)
		}
	}
	assert.True(t, hasOutlier, "expected an outlier pattern for the planted spike")
}

func TestStatisticalDetector_SkewedDistribution(t *testing.T) {
	vals := make([]interface{}, 0, 60)
	for i := 1; i <= 60; i++ {
		vals = append(vals, math.Pow(float64(i), 3))
	}
	f := columnFrame(t, "size_bytes", vals)

	d := patterns.NewStatisticalDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"size_bytes"}, &patterns.Context{})

	for _, p := range found {
		assert.GreaterOrEqual(t, p.Confidence, patterns.DefaultDetectorConfig().ConfidenceThreshold)
		assert.Equal(t, []string{"size_bytes"}, p.Columns)
	}
}

func TestStatisticalDetector_MissingDataSeverity(t *testing.T) {
	vals := make([]interface{}, 40)
	for i := range vals {
		if i%5 == 0 {
			vals[i] = float64(i)
		}
	}
	f := columnFrame(t, "optional_field", vals)

	d := patterns.NewStatisticalDetector(patterns.DetectorConfig{MinSamples: 1, ConfidenceThreshold: 0}, nil)
	found := d.Detect(f, []string{"optional_field"}, &patterns.Context{})

	var missing *patterns.Pattern
	for i := range found {
		if found[i].Type == patterns.TypeMissingData {
			missing = &found[i]
		}
	}
	require.NotNil(t, missing)
	assert.Equal(t, patterns.ImpactHigh, missing.Impact)
}

func TestStatisticalDetector_InsufficientSamplesReturnsNil(t *testing.T) {
	f := columnFrame(t, "tiny", []interface{}{1.0, 2.0, 3.0})
	d := patterns.NewStatisticalDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"tiny"}, &patterns.Context{})
	assert.Empty(t, found)
}

func TestStatisticalDetector_RespectsDeadline(t *testing.T) {
	vals := make([]interface{}, 40)
	for i := range vals {
		vals[i] = float64(i)
	}
	f := columnFrame(t, "metric", vals)

	d := patterns.NewStatisticalDetector(patterns.DefaultDetectorConfig(), nil)
	ctx := &patterns.Context{Deadline: time.Now().Add(-time.Minute)}
	found := d.Detect(f, []string{"metric"}, ctx)
	assert.Empty(t, found)
}

func TestStatisticalDetector_CategoricalImbalance(t *testing.T) {
	vals := make([]interface{}, 0, 50)
	for i := 0; i < 45; i++ {
		vals = append(vals, "ok")
	}
	for i := 0; i < 5; i++ {
		vals = append(vals, "error")
	}
	f := columnFrame(t, "status", vals)

	d := patterns.NewStatisticalDetector(patterns.DetectorConfig{MinSamples: 1, ConfidenceThreshold: 0}, nil)
	found := d.Detect(f, []string{"status"}, &patterns.Context{})

	var dominant bool
	for _, p := range found {
		if p.Type == patterns.TypeSkewedDistribution {
			dominant = true
		}
	}
	assert.True(t, dominant)
}

func TestStatisticalDetector_BimodalDistribution(t *testing.T) {
	vals := make([]interface{}, 0, 80)
	for i := 0; i < 40; i++ {
		vals = append(vals, 10.0)
	}
	for i := 0; i < 40; i++ {
		vals = append(vals, 100.0)
	}
	f := columnFrame(t, "cluster_metric", vals)

	d := patterns.NewStatisticalDetector(patterns.DetectorConfig{MinSamples: 30, ConfidenceThreshold: 0.01}, nil)
	found := d.Detect(f, []string{"cluster_metric"}, &patterns.Context{})

	var bimodal bool
	for _, p := range found {
		if p.Type == patterns.TypeBimodalDistribution {
			bimodal = true
		}
	}
	assert.True(t, bimodal, "expected a bimodal pattern for two tight, well-separated clusters")
}

func TestStatisticalDetector_Name(t *testing.T) {
	d := patterns.NewStatisticalDetector(patterns.DefaultDetectorConfig(), nil)
	assert.Equal(t, "statistical", d.Name())
	assert.NotEmpty(t, d.SupportedTypes())
}
