package queryintel

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// OptimizerMode selects which optimization strategy to apply.
type OptimizerMode string

const (
	ModeCost     OptimizerMode = "cost"
	ModeSpeed    OptimizerMode = "speed"
	ModeBalanced OptimizerMode = "balanced"
)

// QueryOptimizer rewrites an NRQL string for lower cost, lower latency, or a
// balance of both, and estimates its execution cost.
//
// Grounded on original_source/intelligence/query/query_optimizer.py.
type QueryOptimizer struct {
	Mode                 OptimizerMode
	AggressiveOptimization bool
}

// NewQueryOptimizer constructs a QueryOptimizer in the given mode.
func NewQueryOptimizer(mode OptimizerMode) *QueryOptimizer {
	if mode == "" {
		mode = ModeBalanced
	}
	return &QueryOptimizer{Mode: mode}
}

// OptimizationResult reports what was changed and the pre/post cost.
type OptimizationResult struct {
	NRQL                string
	OptimizationsApplied []string
	OriginalCost        float64
	OptimizedCost       float64
}

var highSelectivityFields = []string{"appName", "host", "entityGuid"}

// Optimize rewrites nrql according to o.Mode, validating that SELECT/FROM and
// all referenced event types survive the rewrite; on validation failure it
// reverts to the original query.
func (o *QueryOptimizer) Optimize(nrql string, intent QueryIntent, ctx *QueryContext) OptimizationResult {
	original := nrql
	originalCost := o.estimateCost(original, intent, ctx)

	var applied []string
	optimized := original

	switch o.Mode {
	case ModeCost:
		optimized, applied = o.optimizeForCost(optimized, intent, ctx)
	case ModeSpeed:
		optimized, applied = o.optimizeForSpeed(optimized, intent)
	default:
		optimized, applied = o.optimizeBalanced(optimized, intent, ctx)
	}

	optimized2, generalApplied := o.applyGeneralOptimizations(optimized, intent)
	optimized = optimized2
	applied = append(applied, generalApplied...)

	if !validateOptimization(original, optimized, intent) {
		return OptimizationResult{
			NRQL:                 original,
			OptimizationsApplied: []string{"validation_failed"},
			OriginalCost:         originalCost,
			OptimizedCost:        originalCost,
		}
	}

	return OptimizationResult{
		NRQL:                 optimized,
		OptimizationsApplied: applied,
		OriginalCost:         originalCost,
		OptimizedCost:        o.estimateCost(optimized, intent, ctx),
	}
}

func (o *QueryOptimizer) optimizeForCost(nrql string, intent QueryIntent, ctx *QueryContext) (string, []string) {
	var applied []string
	if (intent.TimeRange.Type == TimeRangeLastMonth || intent.TimeRange.Type == TimeRangeLastQuarter) &&
		intent.IntentType != IntentReport && intent.IntentType != IntentForecast {
		nrql = reduceTimeRange(nrql, intent.TimeRange.Type, false)
		applied = append(applied, "reduced_time_range")
	}
	if n, ok := o.addSampling(nrql, intent, ctx); ok {
		nrql = n
		applied = append(applied, "added_sampling")
	}
	if intent.QueryType == QueryTypeFacet {
		if n, ok := limitFacetCardinality(nrql); ok {
			nrql = n
			applied = append(applied, "limited_facet_cardinality")
		}
	}
	if o.AggressiveOptimization {
		if n, ok := replaceExpensiveAggregations(nrql); ok {
			nrql = n
			applied = append(applied, "replaced_expensive_aggregations")
		}
	}
	if n, ok := addLimit(nrql, 100); ok {
		nrql = n
		applied = append(applied, "added_limit")
	}
	return nrql, applied
}

func (o *QueryOptimizer) optimizeForSpeed(nrql string, intent QueryIntent) (string, []string) {
	var applied []string
	nrql = optimizeWhereClause(nrql)
	applied = append(applied, "reordered_where_conditions")

	if strings.Contains(strings.ToUpper(nrql), "WHERE") && !hasLimitOrTimeseriesRe.MatchString(nrql) {
		if n, ok := addLimit(nrql, 1000); ok {
			nrql = n
			applied = append(applied, "added_limit")
		}
	}
	if n, ok := simplifyAggregations(nrql); ok {
		nrql = n
		applied = append(applied, "simplified_aggregations")
	}
	if o.AggressiveOptimization {
		if n, ok := useApproximations(nrql); ok {
			nrql = n
			applied = append(applied, "used_approximations")
		}
	}
	return nrql, applied
}

func (o *QueryOptimizer) optimizeBalanced(nrql string, intent QueryIntent, ctx *QueryContext) (string, []string) {
	var applied []string
	if intent.TimeRange.Hours() > 168 {
		nrql = reduceTimeRange(nrql, intent.TimeRange.Type, true)
		applied = append(applied, "moderately_reduced_time_range")
	}
	if volume := estimateDataVolume(intent, ctx); volume > 1_000_000 {
		if n, ok := o.addSampling(nrql, intent, ctx); ok {
			nrql = n
			applied = append(applied, "smart_sampling")
		}
	}
	nrql = optimizeWhereClause(nrql)
	if !hasLimitOrTimeseriesRe.MatchString(nrql) {
		if n, ok := addLimit(nrql, 500); ok {
			nrql = n
			applied = append(applied, "added_limit")
		}
	}
	return nrql, applied
}

func (o *QueryOptimizer) applyGeneralOptimizations(nrql string, intent QueryIntent) (string, []string) {
	var applied []string
	if n, ok := removeRedundancies(nrql); ok {
		nrql = n
		applied = append(applied, "removed_redundancies")
	}
	if intent.QueryType == QueryTypeTimeseries {
		if n, ok := optimizeTimeseriesBuckets(nrql, intent.TimeRange.Hours()); ok {
			nrql = n
			applied = append(applied, "optimized_timeseries_buckets")
		}
	}
	return nrql, applied
}

var rangeReductions = map[TimeRangeType]TimeRangeType{
	TimeRangeLastQuarter: TimeRangeLastMonth,
	TimeRangeLastMonth:   TimeRangeLastWeek,
}

var moderateRangeReductions = map[TimeRangeType]TimeRangeType{
	TimeRangeLastQuarter: TimeRangeLastMonth,
}

func reduceTimeRange(nrql string, from TimeRangeType, moderate bool) string {
	table := rangeReductions
	if moderate {
		table = moderateRangeReductions
	}
	to, ok := table[from]
	if !ok {
		return nrql
	}
	oldClause := TimeRange{Type: from}.ToNRQL()
	newClause := TimeRange{Type: to}.ToNRQL()
	return strings.Replace(nrql, oldClause, newClause, 1)
}

var fromClauseRe = regexp.MustCompile(`(?i)(FROM\s+\S+(?:,\s*\S+)*)`)

func (o *QueryOptimizer) addSampling(nrql string, intent QueryIntent, ctx *QueryContext) (string, bool) {
	if strings.Contains(strings.ToUpper(nrql), "LIMIT") || strings.Contains(strings.ToUpper(nrql), "SAMPLE") {
		return nrql, false
	}
	if intent.QueryType == QueryTypePercentile || intent.QueryType == QueryTypeHistogram {
		return nrql, false
	}
	volume := estimateDataVolume(intent, ctx)
	var rate float64
	switch {
	case volume > 10_000_000:
		rate = 0.01
	case volume > 1_000_000:
		rate = 0.1
	default:
		return nrql, false
	}
	loc := fromClauseRe.FindStringIndex(nrql)
	if loc == nil {
		return nrql, false
	}
	insertion := fmt.Sprintf(" SAMPLE(%.2f)", rate)
	return nrql[:loc[1]] + insertion + nrql[loc[1]:], true
}

var facetRe = regexp.MustCompile(`(?i)\bFACET\b`)

func limitFacetCardinality(nrql string) (string, bool) {
	if !facetRe.MatchString(nrql) || strings.Contains(strings.ToUpper(nrql), "LIMIT") {
		return nrql, false
	}
	return strings.TrimSpace(nrql) + " LIMIT 100", true
}

var (
	uniqueCountRe = regexp.MustCompile(`uniqueCount\(([^)]+)\)`)
	percentile99Re = regexp.MustCompile(`percentile\(([^,]+),\s*99\)`)
	percentile50Re = regexp.MustCompile(`percentile\(([^,]+),\s*50\)`)
)

func replaceExpensiveAggregations(nrql string) (string, bool) {
	orig := nrql
	nrql = uniqueCountRe.ReplaceAllString(nrql, "approximateCount($1)")
	nrql = percentile99Re.ReplaceAllString(nrql, "max($1)")
	nrql = percentile50Re.ReplaceAllString(nrql, "average($1)")
	return nrql, nrql != orig
}

var limitAnywhereRe = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)

func addLimit(nrql string, n int) (string, bool) {
	if limitAnywhereRe.MatchString(nrql) {
		return nrql, false
	}
	return strings.TrimSpace(nrql) + fmt.Sprintf(" LIMIT %d", n), true
}

func simplifyAggregations(nrql string) (string, bool) {
	count := strings.Count(strings.ToLower(nrql), "percentile(")
	if count <= 3 {
		return nrql, false
	}
	re := regexp.MustCompile(`,\s*25\)|,\s*75\)`)
	simplified := re.ReplaceAllString(nrql, ")")
	return simplified, simplified != nrql
}

var approxUniqueCountRe = regexp.MustCompile(`uniqueCount\(([^)]+)\)`)

func useApproximations(nrql string) (string, bool) {
	simplified := approxUniqueCountRe.ReplaceAllString(nrql, "approximateUniqueCount($1)")
	return simplified, simplified != nrql
}

var whereClauseRe = regexp.MustCompile(`(?i)WHERE\s+(.+?)(\s+SINCE|\s+FACET|\s+LIMIT|\s+TIMESERIES|$)`)

func optimizeWhereClause(nrql string) string {
	m := whereClauseRe.FindStringSubmatchIndex(nrql)
	if m == nil {
		return nrql
	}
	whereStart, whereEnd := m[2], m[3]
	conditions := strings.Split(nrql[whereStart:whereEnd], " AND ")
	sort.SliceStable(conditions, func(i, j int) bool {
		return selectivityRank(conditions[i]) < selectivityRank(conditions[j])
	})
	return nrql[:whereStart] + strings.Join(conditions, " AND ") + nrql[whereEnd:]
}

func selectivityRank(condition string) int {
	for i, field := range highSelectivityFields {
		if strings.Contains(condition, field) {
			return i
		}
	}
	return len(highSelectivityFields)
}

func removeRedundancies(nrql string) (string, bool) {
	m := whereClauseRe.FindStringSubmatchIndex(nrql)
	if m == nil {
		return nrql, false
	}
	whereStart, whereEnd := m[2], m[3]
	conditions := strings.Split(nrql[whereStart:whereEnd], " AND ")
	seen := make(map[string]bool)
	var unique []string
	for _, c := range conditions {
		if !seen[c] {
			seen[c] = true
			unique = append(unique, c)
		}
	}
	if len(unique) == len(conditions) {
		return nrql, false
	}
	return nrql[:whereStart] + strings.Join(unique, " AND ") + nrql[whereEnd:], true
}

func optimizeTimeseriesBuckets(nrql string, hours float64) (string, bool) {
	if strings.Contains(strings.ToUpper(nrql), "TIMESERIES ") {
		return nrql, false // explicit bucket already set
	}
	var bucket string
	switch {
	case hours <= 1:
		bucket = "1 minute"
	case hours <= 24:
		bucket = "5 minutes"
	case hours <= 168:
		bucket = "1 hour"
	default:
		bucket = "1 day"
	}
	re := regexp.MustCompile(`(?i)\bTIMESERIES\b`)
	return re.ReplaceAllString(nrql, "TIMESERIES "+bucket), true
}

// estimateCost implements the §cost-model formula from
// original_source/intelligence/query/query_optimizer.py's _estimate_cost.
func (o *QueryOptimizer) estimateCost(nrql string, intent QueryIntent, ctx *QueryContext) float64 {
	volume := estimateDataVolume(intent, ctx)
	cost := 1.0 + (volume/1_000_000)*0.25

	upper := strings.ToUpper(nrql)
	if strings.Contains(upper, "TIMESERIES") {
		cost *= 1.5
	}
	if strings.Contains(upper, "FACET") {
		cost *= 1.2
	}
	if strings.Contains(upper, "PERCENTILE") {
		cost *= 2.0
	}
	if strings.Contains(upper, "UNIQUECOUNT") {
		cost *= 1.8
	}
	if !strings.Contains(upper, "LIMIT") && !strings.Contains(upper, "TIMESERIES") {
		cost *= 2.0
	}
	if m := regexp.MustCompile(`(?i)SAMPLE\(([\d.]+)\)`).FindStringSubmatch(nrql); m != nil {
		var rate float64
		fmt.Sscanf(m[1], "%f", &rate)
		cost *= rate
	}
	return cost
}

func estimateDataVolume(intent QueryIntent, ctx *QueryContext) float64 {
	schema, ok := ctx.SchemaByName(intent.PrimaryEventType())
	if !ok {
		return 100_000 * intent.TimeRange.Hours() / 24
	}
	return schema.RecordsPerHour * intent.TimeRange.Hours()
}

var selectFromRe = regexp.MustCompile(`(?i)SELECT\s+.+\s+FROM\s+\S+`)

// validateOptimization checks SELECT/FROM presence and that all event types
// parsed into the intent are still present after rewriting.
func validateOptimization(original, optimized string, intent QueryIntent) bool {
	if !selectFromRe.MatchString(optimized) {
		return false
	}
	for _, et := range intent.EventTypes {
		if !strings.Contains(optimized, et) {
			return false
		}
	}
	return true
}
