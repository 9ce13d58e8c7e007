package queryintel_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/queryintel"
)

func newTestGenerator() *queryintel.QueryGenerator {
	return queryintel.NewQueryGenerator(queryintel.DefaultGeneratorConfig(), nil)
}

func TestQueryGenerator_GenerateProducesNRQL(t *testing.T) {
	g := newTestGenerator()
	result := g.Generate("show me average response time for checkout", nil)

	assert.Contains(t, result.NRQL, "SELECT")
	assert.Contains(t, result.NRQL, "FROM")
	assert.Equal(t, false, result.Metadata["cache_hit"])
}

func TestQueryGenerator_SecondCallIsCacheHit(t *testing.T) {
	g := newTestGenerator()
	first := g.Generate("show me error rate", nil)
	second := g.Generate("show me error rate", nil)

	assert.Equal(t, first.NRQL, second.NRQL)
	assert.Equal(t, true, second.Metadata["cache_hit"])
}

func TestQueryGenerator_GenerateBatchPreservesOrder(t *testing.T) {
	g := newTestGenerator()
	queries := []string{"show errors", "show transactions", "show latency"}
	results := g.GenerateBatch(queries, nil)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, queries[i], r.Intent.RawQuery)
	}
}

func TestQueryGenerator_SuggestQueriesMatchesPrefix(t *testing.T) {
	g := newTestGenerator()
	suggestions := g.SuggestQueries("show me", nil)
	assert.NotEmpty(t, suggestions)
	for _, s := range suggestions {
		assert.Contains(t, strings.ToLower(s), "show me")
	}
}

func TestQueryGenerator_SuggestQueriesIncludesSchemaSuggestions(t *testing.T) {
	g := newTestGenerator()
	ctx := &queryintel.QueryContext{AvailableSchemas: []queryintel.SchemaInfo{{Name: "Transaction"}}}
	suggestions := g.SuggestQueries("", ctx)

	var hasSchemaSuggestion bool
	for _, s := range suggestions {
		if s == "Show me all data from Transaction" {
			hasSchemaSuggestion = true
		}
	}
	assert.True(t, hasSchemaSuggestion)
}

func TestQueryGenerator_ExplainQueryDescribesClauses(t *testing.T) {
	g := newTestGenerator()
	explanation := g.ExplainQuery("SELECT average(duration) FROM Transaction WHERE appName = 'checkout' SINCE 1 hour ago FACET host")

	assert.Equal(t, "Transaction", explanation.DataSource)
	assert.Contains(t, explanation.Aggregations, "averaging")
	assert.NotEmpty(t, explanation.Filters)
	assert.NotEmpty(t, explanation.Grouping)
	assert.Contains(t, explanation.Summary, "Transaction")
}

func TestQueryGenerator_GetMetricsTracksHistoryAndConfidence(t *testing.T) {
	g := newTestGenerator()
	g.Generate("show errors", nil)
	g.Generate("show errors", nil)
	g.Generate("show latency", nil)

	metrics := g.GetMetrics()
	assert.Equal(t, 3, metrics.TotalQueries)
	assert.GreaterOrEqual(t, metrics.AverageConfidence, 0.0)
	assert.GreaterOrEqual(t, metrics.CacheHitRate, 0.0)
}

func TestQueryGenerator_GenerateWithContextAppliesOptimization(t *testing.T) {
	g := newTestGenerator()
	ctx := &queryintel.QueryContext{
		AvailableSchemas: []queryintel.SchemaInfo{
			{Name: "Transaction", RecordsPerHour: 50_000_000, CommonFacets: []string{"appName"}},
		},
	}
	result := g.Generate("show error rate for the last month", ctx)
	assert.NotEmpty(t, result.NRQL)
}
