package queryintel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/queryintel"
)

func TestQueryBuilder_BuildSelectAddsDefaultLimit(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeSelect,
		Entities:   []queryintel.QueryEntity{{Name: "*", Aggregation: queryintel.AggCount}},
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "SELECT count(*)")
	assert.Contains(t, nrql, "FROM Transaction")
	assert.Contains(t, nrql, "SINCE 1 hour ago")
	assert.Contains(t, nrql, "LIMIT 100")
}

func TestQueryBuilder_BuildFacetAddsFacetClause(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeFacet,
		Entities:   []queryintel.QueryEntity{{Name: "*", Aggregation: queryintel.AggCount}},
		EventTypes: []string{"Transaction"},
		GroupBy:    []string{"appName"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "FACET appName")
}

func TestQueryBuilder_BuildTimeseriesSkipsDefaultLimit(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeTimeseries,
		Entities:   []queryintel.QueryEntity{{Name: "*", Aggregation: queryintel.AggCount}},
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "TIMESERIES")
	assert.NotContains(t, nrql, "LIMIT 100")
}

func TestQueryBuilder_WhereClauseFromFilters(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeSelect,
		Entities:   []queryintel.QueryEntity{{Name: "*", Aggregation: queryintel.AggCount}},
		EventTypes: []string{"Transaction"},
		Filters:    []queryintel.QueryFilter{{Field: "appName", Operator: "=", Value: "checkout"}},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "WHERE appName = 'checkout'")
}

func TestQueryBuilder_EscapesReservedFieldNames(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeSelect,
		Entities:   []queryintel.QueryEntity{{Name: "host", Aggregation: queryintel.AggUniqueCount}},
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "uniqueCount(`host`)")
}

func TestQueryBuilder_ApplyLimitOrderBy(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeSelect,
		Entities:   []queryintel.QueryEntity{{Name: "*", Aggregation: queryintel.AggCount}},
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
		OrderBy:    "DESC",
		Limit:      25,
	}
	nrql := b.Build(intent)
	nrql = b.ApplyLimitOrderBy(nrql, intent)
	assert.Contains(t, nrql, "ORDER BY DESC")
	assert.Contains(t, nrql, "LIMIT 25")
	assert.NotContains(t, nrql, "LIMIT 100")
}

func TestQueryBuilder_BuildPercentileAliasesAndFacets(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypePercentile,
		Entities:   []queryintel.QueryEntity{{Name: "duration", Aggregation: queryintel.AggAverage}},
		EventTypes: []string{"Transaction"},
		Filters:    []queryintel.QueryFilter{{Field: "appName", Operator: "=", Value: "production"}},
		GroupBy:    []string{"service"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
		Metadata:   map[string]interface{}{"percentiles": []int{95}},
	}
	nrql := b.Build(intent)
	assert.Equal(t,
		"SELECT percentile(duration, 95) AS 'p95' FROM Transaction WHERE appName = 'production' SINCE 1 hour ago FACET service LIMIT 100",
		nrql)
}

func TestQueryBuilder_BuildPercentileDefaultsToP50P95P99(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypePercentile,
		Entities:   []queryintel.QueryEntity{{Name: "duration"}},
		EventTypes: []string{"Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "percentile(duration, 50) AS 'p50'")
	assert.Contains(t, nrql, "percentile(duration, 95) AS 'p95'")
	assert.Contains(t, nrql, "percentile(duration, 99) AS 'p99'")
}

func TestQueryBuilder_BuildHistogramFacetsWhenGrouped(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeHistogram,
		Entities:   []queryintel.QueryEntity{{Name: "duration"}},
		EventTypes: []string{"Transaction"},
		GroupBy:    []string{"service"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastHour},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "FACET service")
}

func TestQueryBuilder_BuildFunnel(t *testing.T) {
	b := queryintel.NewQueryBuilder()
	intent := queryintel.QueryIntent{
		QueryType:  queryintel.QueryTypeFunnel,
		EventTypes: []string{"PageView", "Transaction"},
		TimeRange:  queryintel.TimeRange{Type: queryintel.TimeRangeLastDay},
	}
	nrql := b.Build(intent)
	assert.Contains(t, nrql, "FUNNEL('PageView', 'Transaction')")
}
