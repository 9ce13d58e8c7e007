package queryintel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/queryintel"
)

func TestQueryOptimizer_DefaultsToBalancedMode(t *testing.T) {
	o := queryintel.NewQueryOptimizer("")
	assert.Equal(t, queryintel.ModeBalanced, o.Mode)
}

func TestQueryOptimizer_CostModeAddsLimitWhenMissing(t *testing.T) {
	intent := queryintel.QueryIntent{
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	o := queryintel.NewQueryOptimizer(queryintel.ModeCost)
	result := o.Optimize("SELECT count(*) FROM Transaction SINCE 1 hour ago", intent, nil)

	assert.Contains(t, result.OptimizationsApplied, "added_limit")
	assert.Contains(t, result.NRQL, "LIMIT 100")
}

func TestQueryOptimizer_SpeedModeReordersWhereBySelectivity(t *testing.T) {
	intent := queryintel.QueryIntent{
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	o := queryintel.NewQueryOptimizer(queryintel.ModeSpeed)
	result := o.Optimize("SELECT count(*) FROM Transaction WHERE host = 'x' AND appName = 'y' SINCE 1 hour ago", intent, nil)

	assert.Contains(t, result.NRQL, "appName = 'y' AND host = 'x'")
	assert.Contains(t, result.OptimizationsApplied, "reordered_where_conditions")
	assert.Contains(t, result.OptimizationsApplied, "added_limit")
	assert.Contains(t, result.NRQL, "LIMIT 1000")
}

func TestQueryOptimizer_BalancedModeFlagsLongTimeRange(t *testing.T) {
	intent := queryintel.QueryIntent{
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastMonth},
	}
	o := queryintel.NewQueryOptimizer(queryintel.ModeBalanced)
	result := o.Optimize("SELECT count(*) FROM Transaction SINCE 1 month ago", intent, nil)

	assert.Contains(t, result.OptimizationsApplied, "moderately_reduced_time_range")
}

func TestQueryOptimizer_CostIncreasesWithExpensiveOperators(t *testing.T) {
	intent := queryintel.QueryIntent{
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	o := queryintel.NewQueryOptimizer(queryintel.ModeBalanced)
	plain := o.Optimize("SELECT count(*) FROM Transaction SINCE 1 hour ago LIMIT 100", intent, nil)
	expensive := o.Optimize("SELECT percentile(duration, 95) FROM Transaction SINCE 1 hour ago LIMIT 100", intent, nil)

	assert.Greater(t, expensive.OriginalCost, plain.OriginalCost)
}

func TestQueryOptimizer_FacetQueryGetsCardinalityLimit(t *testing.T) {
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeFacet,
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	o := queryintel.NewQueryOptimizer(queryintel.ModeCost)
	result := o.Optimize("SELECT count(*) FROM Transaction FACET appName SINCE 1 hour ago", intent, nil)

	assert.Contains(t, result.OptimizationsApplied, "limited_facet_cardinality")
	assert.Contains(t, result.NRQL, "LIMIT 100")
}

func TestQueryOptimizer_TimeseriesBucketsSizedByRange(t *testing.T) {
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeTimeseries,
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastDay},
	}
	o := queryintel.NewQueryOptimizer(queryintel.ModeBalanced)
	result := o.Optimize("SELECT count(*) FROM Transaction SINCE 1 day ago TIMESERIES", intent, nil)

	assert.Contains(t, result.OptimizationsApplied, "optimized_timeseries_buckets")
	assert.Contains(t, result.NRQL, "TIMESERIES 5 minutes")
}
