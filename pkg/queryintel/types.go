// Package queryintel implements the natural-language-to-query pipeline
// (C4): intent parsing, query building, and cost/speed optimization over a
// New Relic NRQL-like dialect.
//
// Grounded on original_source/intelligence/query/{base,intent_parser,
// nrql_builder,query_optimizer,query_generator}.py.
package queryintel

import "time"

// QueryType is the shape of query to build (spec.md §6 dialect grammar).
type QueryType string

const (
	QueryTypeSelect     QueryType = "select"
	QueryTypeFacet      QueryType = "facet"
	QueryTypeTimeseries QueryType = "timeseries"
	QueryTypeFunnel     QueryType = "funnel"
	QueryTypeHistogram  QueryType = "histogram"
	QueryTypePercentile QueryType = "percentile"
	QueryTypeRate       QueryType = "rate"
	QueryTypeCompare    QueryType = "compare"
)

// TimeRangeType names a common relative time window.
type TimeRangeType string

const (
	TimeRangeLastHour    TimeRangeType = "last_hour"
	TimeRangeLastDay     TimeRangeType = "last_day"
	TimeRangeLastWeek    TimeRangeType = "last_week"
	TimeRangeLastMonth   TimeRangeType = "last_month"
	TimeRangeLastQuarter TimeRangeType = "last_quarter"
	TimeRangeCustom      TimeRangeType = "custom"
	TimeRangeRelative    TimeRangeType = "relative"
	TimeRangeAbsolute    TimeRangeType = "absolute"
)

// AggregationType is an NRQL aggregation function.
type AggregationType string

const (
	AggCount       AggregationType = "count"
	AggSum         AggregationType = "sum"
	AggAverage     AggregationType = "average"
	AggMin         AggregationType = "min"
	AggMax         AggregationType = "max"
	AggPercentile  AggregationType = "percentile"
	AggUniqueCount AggregationType = "uniqueCount"
	AggLatest      AggregationType = "latest"
	AggRate        AggregationType = "rate"
	AggHistogram   AggregationType = "histogram"
)

// IntentType is the high-level user goal behind a natural-language query.
type IntentType string

const (
	IntentExplore      IntentType = "explore"
	IntentMonitor      IntentType = "monitor"
	IntentAnalyze      IntentType = "analyze"
	IntentCompare      IntentType = "compare"
	IntentTroubleshoot IntentType = "troubleshoot"
	IntentForecast     IntentType = "forecast"
	IntentAlert        IntentType = "alert"
	IntentReport       IntentType = "report"
)

// TimeRange represents a query's time window.
type TimeRange struct {
	Type                 TimeRangeType
	Start                *time.Time
	End                  *time.Time
	Duration             time.Duration
	RelativeExpression   string
}

// ToNRQL converts the time range to its NRQL SINCE/UNTIL clause.
func (t TimeRange) ToNRQL() string {
	switch t.Type {
	case TimeRangeLastHour:
		return "SINCE 1 hour ago"
	case TimeRangeLastDay:
		return "SINCE 1 day ago"
	case TimeRangeLastWeek:
		return "SINCE 1 week ago"
	case TimeRangeLastMonth:
		return "SINCE 1 month ago"
	case TimeRangeLastQuarter:
		return "SINCE 3 months ago"
	case TimeRangeRelative:
		if t.RelativeExpression != "" {
			return t.RelativeExpression
		}
	case TimeRangeAbsolute:
		if t.Start != nil && t.End != nil {
			return "SINCE '" + t.Start.Format("2006-01-02 15:04:05") + "' UNTIL '" + t.End.Format("2006-01-02 15:04:05") + "'"
		}
	}
	return "SINCE 1 hour ago"
}

// Hours returns the approximate window length in hours, for cost modeling.
func (t TimeRange) Hours() float64 {
	switch t.Type {
	case TimeRangeLastHour:
		return 1
	case TimeRangeLastDay:
		return 24
	case TimeRangeLastWeek:
		return 168
	case TimeRangeLastMonth:
		return 720
	case TimeRangeLastQuarter:
		return 2160
	}
	return 1
}

// QueryEntity is a metric/attribute referenced by a query, with an optional
// aggregation and alias.
type QueryEntity struct {
	Name        string
	EntityType  string // metric, attribute, event_type
	Aggregation AggregationType
	Alias       string
}

// QueryFilter is a single WHERE condition.
type QueryFilter struct {
	Field    string
	Operator string // =, !=, >, <, >=, <=, IN, NOT IN, LIKE, NOT LIKE
	Value    interface{}
}

// QueryIntent is the parsed structured representation of a natural-language
// query.
type QueryIntent struct {
	IntentType IntentType
	QueryType  QueryType
	Entities   []QueryEntity
	EventTypes []string
	Filters    []QueryFilter
	TimeRange  TimeRange
	GroupBy    []string
	OrderBy    string
	Limit      int
	Confidence float64
	RawQuery   string
	Metadata   map[string]interface{}
}

// PrimaryEventType returns the first event type, or "" if none were parsed.
func (q QueryIntent) PrimaryEventType() string {
	if len(q.EventTypes) == 0 {
		return ""
	}
	return q.EventTypes[0]
}

// HasAggregation reports whether any entity carries an aggregation function.
func (q QueryIntent) HasAggregation() bool {
	for _, e := range q.Entities {
		if e.Aggregation != "" {
			return true
		}
	}
	return false
}

// SchemaInfo describes one available event-type schema, used for cost
// estimation and facet suggestion.
type SchemaInfo struct {
	Name           string
	RecordsPerHour float64
	CommonFacets   []string
}

// QueryContext carries schema and preference information into generation.
type QueryContext struct {
	AvailableSchemas []SchemaInfo
	UserPreferences  map[string]interface{}
	CostConstraints  map[string]interface{}
	PreviousQueries  []string
}

// SchemaByName returns the schema matching name, or (SchemaInfo{}, false).
func (c *QueryContext) SchemaByName(name string) (SchemaInfo, bool) {
	if c == nil {
		return SchemaInfo{}, false
	}
	for _, s := range c.AvailableSchemas {
		if s.Name == name {
			return s, true
		}
	}
	return SchemaInfo{}, false
}

// QueryResult is the final output of query generation.
type QueryResult struct {
	NRQL           string
	Intent         QueryIntent
	Confidence     float64
	EstimatedCost  float64
	Warnings       []string
	Suggestions    []string
	Alternatives   []string
	Metadata       map[string]interface{}
}
