package queryintel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/queryintel"
)

func TestIntentParser_DetectsTroubleshootIntent(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("help me debug the error in the payment service", nil)
	assert.Equal(t, queryintel.IntentTroubleshoot, intent.IntentType)
}

func TestIntentParser_ExtractsTimeRange(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("show errors in the last week", nil)
	assert.Equal(t, queryintel.TimeRangeLastWeek, intent.TimeRange.Type)
}

func TestIntentParser_ExtractsMetricEntity(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("what is the average response time for checkout", nil)
	assert.Equal(t, "duration", intent.Entities[0].Name)
	assert.Equal(t, queryintel.AggAverage, intent.Entities[0].Aggregation)
}

func TestIntentParser_ExtractsEventTypeFromKeyword(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("show me recent transaction errors", nil)
	assert.Contains(t, intent.EventTypes, "TransactionError")
}

func TestIntentParser_DefaultsToTransactionEventType(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("show me something", nil)
	assert.Equal(t, []string{"Transaction"}, intent.EventTypes)
}

func TestIntentParser_ExtractsGroupBy(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("count transactions grouped by appName", nil)
	assert.Equal(t, []string{"appname"}, intent.GroupBy)
	assert.Equal(t, queryintel.QueryTypeFacet, intent.QueryType)
}

func TestIntentParser_ExtractsWhereFilter(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("show transactions where appName = checkout", nil)
	assert.NotEmpty(t, intent.Filters)
	assert.Equal(t, "appname", intent.Filters[0].Field)
}

func TestIntentParser_ExtractsLimit(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("top 10 errors by count", nil)
	assert.Equal(t, 10, intent.Limit)
}

func TestIntentParser_DeterminesTimeseriesQueryType(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("show error rate over time", nil)
	assert.Equal(t, queryintel.QueryTypeTimeseries, intent.QueryType)
}

func TestIntentParser_VagueQueryLowersConfidence(t *testing.T) {
	p := queryintel.NewIntentParser()
	vague := p.Parse("show me something", nil)
	precise := p.Parse("select count(*) from Transaction where appName = 'checkout'", nil)
	assert.Less(t, vague.Confidence, precise.Confidence)
}

func TestIntentParser_MatchesAvailableSchemaName(t *testing.T) {
	p := queryintel.NewIntentParser()
	ctx := &queryintel.QueryContext{
		AvailableSchemas: []queryintel.SchemaInfo{{Name: "CustomEvent"}},
	}
	intent := p.Parse("show data from customevent", ctx)
	assert.Contains(t, intent.EventTypes, "CustomEvent")
}

func TestIntentParser_BareForExtractsAppNameNotServiceKeyword(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("95th percentile response time by service for production since 1 hour ago", nil)

	require.NotEmpty(t, intent.Filters)
	found := false
	for _, f := range intent.Filters {
		if f.Field == "appName" {
			assert.Equal(t, "production", f.Value)
			found = true
		}
	}
	assert.True(t, found, "expected an appName filter, got %+v", intent.Filters)
	assert.Equal(t, []string{"service"}, intent.GroupBy)
}

func TestIntentParser_AnchoredForServiceForm(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("show errors for service checkout", nil)

	require.NotEmpty(t, intent.Filters)
	assert.Equal(t, "appName", intent.Filters[0].Field)
	assert.Equal(t, "checkout", intent.Filters[0].Value)
}

func TestIntentParser_BareForIgnoresForEachFacetWord(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("count transactions for each appName", nil)

	for _, f := range intent.Filters {
		assert.NotEqual(t, "each", f.Value)
	}
}

func TestIntentParser_ExtractsPercentileNumberIntoMetadata(t *testing.T) {
	p := queryintel.NewIntentParser()
	intent := p.Parse("95th percentile response time by service for production since 1 hour ago", nil)

	percentiles, ok := intent.Metadata["percentiles"].([]int)
	require.True(t, ok)
	assert.Equal(t, []int{95}, percentiles)
	assert.Equal(t, queryintel.QueryTypePercentile, intent.QueryType)
}

func TestTimeRange_ToNRQL(t *testing.T) {
	assert.Equal(t, "SINCE 1 hour ago", queryintel.TimeRange{Type: queryintel.TimeRangeLastHour}.ToNRQL())
	assert.Equal(t, "SINCE 1 week ago", queryintel.TimeRange{Type: queryintel.TimeRangeLastWeek}.ToNRQL())
}

func TestQueryIntent_HasAggregation(t *testing.T) {
	intent := queryintel.QueryIntent{Entities: []queryintel.QueryEntity{{Name: "duration", Aggregation: queryintel.AggAverage}}}
	assert.True(t, intent.HasAggregation())

	noAgg := queryintel.QueryIntent{Entities: []queryintel.QueryEntity{{Name: "duration"}}}
	assert.False(t, noAgg.HasAggregation())
}
