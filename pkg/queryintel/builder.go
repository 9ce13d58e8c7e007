package queryintel

import (
	"fmt"
	"regexp"
	"strings"
)

// QueryBuilder constructs an NRQL-dialect query string from a QueryIntent.
//
// Grounded on original_source/intelligence/query/nrql_builder.py.
type QueryBuilder struct{}

// NewQueryBuilder constructs a QueryBuilder.
func NewQueryBuilder() *QueryBuilder { return &QueryBuilder{} }

var reservedFields = map[string]bool{
	"timestamp": true, "type": true, "name": true, "host": true, "user": true, "message": true,
}

// Build dispatches to the per-query-type builder and applies the shared
// "always add a LIMIT" optimization.
func (b *QueryBuilder) Build(intent QueryIntent) string {
	var nrql string
	switch intent.QueryType {
	case QueryTypeFacet:
		nrql = b.buildFacet(intent)
	case QueryTypeTimeseries:
		nrql = b.buildTimeseries(intent)
	case QueryTypePercentile:
		nrql = b.buildPercentile(intent)
	case QueryTypeHistogram:
		nrql = b.buildHistogram(intent)
	case QueryTypeRate:
		nrql = b.buildRate(intent)
	case QueryTypeCompare:
		nrql = b.buildCompare(intent)
	case QueryTypeFunnel:
		nrql = b.buildFunnel(intent)
	default:
		nrql = b.buildSelect(intent)
	}
	return b.optimize(nrql)
}

func (b *QueryBuilder) buildSelect(intent QueryIntent) string {
	return fmt.Sprintf("%s %s %s%s",
		b.selectClause(intent), b.fromClause(intent), b.whereClause(intent), b.timeClause(intent))
}

func (b *QueryBuilder) buildFacet(intent QueryIntent) string {
	q := b.buildSelect(intent)
	if len(intent.GroupBy) > 0 {
		q += " FACET " + strings.Join(escapeAll(intent.GroupBy), ", ")
	}
	return q
}

func (b *QueryBuilder) buildTimeseries(intent QueryIntent) string {
	q := b.buildSelect(intent)
	q += " TIMESERIES"
	if len(intent.GroupBy) > 0 {
		q += " FACET " + strings.Join(escapeAll(intent.GroupBy), ", ")
	}
	return q
}

var defaultPercentiles = []int{50, 95, 99}

// percentilesFromMetadata returns the percentile list parsed into
// intent.Metadata["percentiles"] by the intent parser, falling back to
// defaultPercentiles (spec.md §4.4 Stage B) when none were parsed.
func percentilesFromMetadata(metadata map[string]interface{}) []int {
	if raw, ok := metadata["percentiles"]; ok {
		if pcts, ok := raw.([]int); ok && len(pcts) > 0 {
			return pcts
		}
	}
	return defaultPercentiles
}

func (b *QueryBuilder) buildPercentile(intent QueryIntent) string {
	metric := "duration"
	if len(intent.Entities) > 0 {
		metric = intent.Entities[0].Name
	}
	percentiles := percentilesFromMetadata(intent.Metadata)
	exprs := make([]string, len(percentiles))
	for i, p := range percentiles {
		exprs[i] = fmt.Sprintf("percentile(%s, %d) AS 'p%d'", escapeField(metric), p, p)
	}
	q := fmt.Sprintf("SELECT %s %s %s%s",
		strings.Join(exprs, ", "), b.fromClause(intent), b.whereClause(intent), b.timeClause(intent))
	if len(intent.GroupBy) > 0 {
		q += " FACET " + strings.Join(escapeAll(intent.GroupBy), ", ")
	}
	return q
}

func (b *QueryBuilder) buildHistogram(intent QueryIntent) string {
	metric := "duration"
	if len(intent.Entities) > 0 {
		metric = intent.Entities[0].Name
	}
	q := fmt.Sprintf("SELECT histogram(%s, 20) %s %s%s",
		escapeField(metric), b.fromClause(intent), b.whereClause(intent), b.timeClause(intent))
	if len(intent.GroupBy) > 0 {
		q += " FACET " + strings.Join(escapeAll(intent.GroupBy), ", ")
	}
	return q
}

func (b *QueryBuilder) buildRate(intent QueryIntent) string {
	return fmt.Sprintf("SELECT rate(count(*), 1 minute) %s %s%s TIMESERIES",
		b.fromClause(intent), b.whereClause(intent), b.timeClause(intent))
}

func (b *QueryBuilder) buildCompare(intent QueryIntent) string {
	return fmt.Sprintf("%s %s %s%s COMPARE WITH 1 day ago",
		b.selectClause(intent), b.fromClause(intent), b.whereClause(intent), b.timeClause(intent))
}

func (b *QueryBuilder) buildFunnel(intent QueryIntent) string {
	steps := intent.EventTypes
	if len(steps) == 0 {
		steps = []string{"Transaction"}
	}
	quoted := make([]string, len(steps))
	for i, s := range steps {
		quoted[i] = fmt.Sprintf("'%s'", s)
	}
	return fmt.Sprintf("FUNNEL(%s) %s%s", strings.Join(quoted, ", "), b.fromClause(intent), b.timeClause(intent))
}

func (b *QueryBuilder) selectClause(intent QueryIntent) string {
	if len(intent.Entities) == 0 {
		return "SELECT count(*)"
	}
	exprs := make([]string, 0, len(intent.Entities))
	for _, e := range intent.Entities {
		exprs = append(exprs, formatEntity(e))
	}
	return "SELECT " + strings.Join(exprs, ", ")
}

func formatEntity(e QueryEntity) string {
	var expr string
	if e.Aggregation != "" {
		expr = fmt.Sprintf("%s(%s)", e.Aggregation, escapeField(e.Name))
	} else {
		expr = escapeField(e.Name)
	}
	if e.Alias != "" {
		expr += fmt.Sprintf(" AS '%s'", e.Alias)
	}
	return expr
}

func (b *QueryBuilder) fromClause(intent QueryIntent) string {
	events := intent.EventTypes
	if len(events) == 0 {
		events = []string{"Transaction"}
	}
	escaped := make([]string, len(events))
	for i, e := range events {
		escaped[i] = escapeEventType(e)
	}
	return "FROM " + strings.Join(escaped, ", ")
}

func (b *QueryBuilder) whereClause(intent QueryIntent) string {
	if len(intent.Filters) == 0 {
		return ""
	}
	conditions := make([]string, 0, len(intent.Filters))
	for _, f := range intent.Filters {
		conditions = append(conditions, formatFilter(f))
	}
	return "WHERE " + strings.Join(conditions, " AND ") + " "
}

func formatFilter(f QueryFilter) string {
	field := escapeField(f.Field)
	switch v := f.Value.(type) {
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = quoteIfString(item)
		}
		return fmt.Sprintf("%s %s (%s)", field, f.Operator, strings.Join(parts, ", "))
	case string:
		return fmt.Sprintf("%s %s '%s'", field, f.Operator, escapeString(v))
	default:
		return fmt.Sprintf("%s %s %v", field, f.Operator, v)
	}
}

func quoteIfString(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("'%s'", escapeString(s))
	}
	return fmt.Sprintf("%v", v)
}

func (b *QueryBuilder) timeClause(intent QueryIntent) string {
	return intent.TimeRange.ToNRQL()
}

func escapeField(field string) string {
	if reservedFields[strings.ToLower(field)] || strings.ContainsAny(field, " -") {
		return "`" + field + "`"
	}
	return field
}

func escapeAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = escapeField(f)
	}
	return out
}

func escapeEventType(event string) string {
	if strings.ContainsAny(event, " -") {
		return "`" + event + "`"
	}
	return event
}

func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

var hasLimitOrTimeseriesRe = regexp.MustCompile(`(?i)\bLIMIT\b|\bTIMESERIES\b`)

// optimize adds a default LIMIT 100 when the query has neither an explicit
// LIMIT nor a TIMESERIES clause, matching the Python builder's
// _optimize_query safety net.
func (b *QueryBuilder) optimize(nrql string) string {
	if hasLimitOrTimeseriesRe.MatchString(nrql) {
		return nrql
	}
	return strings.TrimSpace(nrql) + " LIMIT 100"
}

// ApplyLimitOrderBy appends explicit LIMIT/ORDER BY clauses parsed from the
// intent, run after Build so FACET/TIMESERIES clauses are already present.
func (b *QueryBuilder) ApplyLimitOrderBy(nrql string, intent QueryIntent) string {
	if intent.OrderBy != "" {
		nrql = removeLimit(nrql) + fmt.Sprintf(" ORDER BY %s", intent.OrderBy)
	}
	if intent.Limit > 0 {
		nrql = removeLimit(nrql) + fmt.Sprintf(" LIMIT %d", intent.Limit)
	}
	return nrql
}

var limitSuffixRe = regexp.MustCompile(`(?i)\s*LIMIT\s+\d+\s*$`)

func removeLimit(nrql string) string {
	return limitSuffixRe.ReplaceAllString(nrql, "")
}
