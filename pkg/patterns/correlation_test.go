package patterns_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/patterns"
)

func twoColumnFrame(t *testing.T, a, b string, xs, ys []interface{}) *frame.Frame {
	t.Helper()
	return frame.NewFromColumns([]string{a, b}, map[string][]interface{}{a: xs, b: ys})
}

func TestCorrelationDetector_LinearCorrelation(t *testing.T) {
	xs := make([]interface{}, 40)
	ys := make([]interface{}, 40)
	for i := 0; i < 40; i++ {
		xs[i] = float64(i)
		ys[i] = float64(i)*2 + 1
	}
	f := twoColumnFrame(t, "cpu", "memory", xs, ys)

	d := patterns.NewCorrelationDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"cpu", "memory"}, &patterns.Context{})

	require.NotEmpty(t, found)
	var linear *patterns.Pattern
	for i := range found {
		if found[i].Type == patterns.TypeLinearCorrelation {
			linear = &found[i]
		}
	}
	require.NotNil(t, linear)
	assert.Equal(t, patterns.ImpactHigh, linear.Impact)
	assert.ElementsMatch(t, []string{"cpu", "memory"}, linear.Columns)
}

func TestCorrelationDetector_RequiresAtLeastTwoNumericColumns(t *testing.T) {
	xs := make([]interface{}, 40)
	for i := range xs {
		xs[i] = float64(i)
	}
	f := frame.NewFromColumns([]string{"only"}, map[string][]interface{}{"only": xs})

	d := patterns.NewCorrelationDetector(patterns.DefaultDetectorConfig(), nil)
	found := d.Detect(f, []string{"only"}, &patterns.Context{})
	assert.Empty(t, found)
}

func TestCorrelationDetector_NetworkCorrelationAcrossManyColumns(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	data := make(map[string][]interface{}, 4)
	base := make([]interface{}, 40)
	for i := 0; i < 40; i++ {
		base[i] = float64(i)
	}
	for _, name := range order {
		vals := make([]interface{}, 40)
		for i := 0; i < 40; i++ {
			vals[i] = float64(i) + 0.01 // near-identical series -> strong pairwise correlation
		}
		data[name] = vals
	}
	f := frame.NewFromColumns(order, data)

	d := patterns.NewCorrelationDetector(patterns.DetectorConfig{MinSamples: 30, ConfidenceThreshold: 0.01}, nil)
	found := d.Detect(f, order, &patterns.Context{})

	var network *patterns.Pattern
	for i := range found {
		if found[i].Type == patterns.TypeNetworkCorrelation {
			network = &found[i]
		}
	}
	require.NotNil(t, network, "expected a network correlation pattern across 4 mutually correlated columns")
	assert.Len(t, network.Columns, 4)
}

func TestCorrelationDetector_Name(t *testing.T) {
	d := patterns.NewCorrelationDetector(patterns.DefaultDetectorConfig(), nil)
	assert.Equal(t, "correlation", d.Name())
}
