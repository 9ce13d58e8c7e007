package patterns_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/patterns"
)

func outlierFrame(rows int) *frame.Frame {
	vals := make([]interface{}, rows)
	for i := 0; i < rows-1; i++ {
		vals[i] = 10.0
	}
	vals[rows-1] = 9999.0
	return frame.NewFromColumns([]string{"metric"}, map[string][]interface{}{"metric": vals})
}

func TestEngine_AnalyzeRunsAllDetectors(t *testing.T) {
	engine := patterns.NewDefaultEngine(nil)
	f := outlierFrame(40)

	result := engine.Analyze(context.Background(), f, []string{"metric"}, &patterns.Context{})
	assert.False(t, result.CacheHit)
	assert.NotEmpty(t, result.Patterns)
	assert.Equal(t, 4, result.Stats["detector_count"])
}

func TestEngine_AnalyzeCachesByDataShape(t *testing.T) {
	engine := patterns.NewDefaultEngine(nil)
	f := outlierFrame(40)

	first := engine.Analyze(context.Background(), f, []string{"metric"}, &patterns.Context{})
	second := engine.Analyze(context.Background(), f, []string{"metric"}, &patterns.Context{})

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Patterns, second.Patterns)
}

func TestEngine_AnalyzeWithNilContextDoesNotPanic(t *testing.T) {
	engine := patterns.NewDefaultEngine(nil)
	f := outlierFrame(40)

	assert.NotPanics(t, func() {
		engine.Analyze(context.Background(), f, []string{"metric"}, nil)
	})
}

func TestEngine_PatternsAreRankedByConfidenceDescending(t *testing.T) {
	engine := patterns.NewDefaultEngine(nil)
	f := outlierFrame(60)

	result := engine.Analyze(context.Background(), f, []string{"metric"}, &patterns.Context{})
	require.NotEmpty(t, result.Patterns)
	for i := 1; i < len(result.Patterns); i++ {
		assert.GreaterOrEqual(t, result.Patterns[i-1].Confidence, result.Patterns[i].Confidence)
	}
}

func TestEngine_CapsAtMaxPatterns(t *testing.T) {
	cfg := patterns.DefaultEngineConfig()
	cfg.MaxPatterns = 1
	engine := patterns.NewEngine(cfg, nil,
		patterns.NewStatisticalDetector(patterns.DetectorConfig{MinSamples: 1, ConfidenceThreshold: 0}, nil),
	)
	f := outlierFrame(40)

	result := engine.Analyze(context.Background(), f, []string{"metric"}, &patterns.Context{})
	assert.LessOrEqual(t, len(result.Patterns), 1)
}

func TestEngine_SynthesizesInsightsForMultiPatternColumns(t *testing.T) {
	engine := patterns.NewDefaultEngine(nil)
	f := outlierFrame(60)

	result := engine.Analyze(context.Background(), f, []string{"metric"}, &patterns.Context{})
	if len(result.Patterns) >= 2 {
		assert.NotEmpty(t, result.Insights)
	}
}
