package queryintel

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/cache"
)

// GeneratorConfig configures the QueryGenerator.
type GeneratorConfig struct {
	OptimizerMode OptimizerMode
	CacheSize     int
	CacheTTL      time.Duration
	HistorySize   int
}

// DefaultGeneratorConfig matches spec.md §6's default config surface.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		OptimizerMode: ModeBalanced,
		CacheSize:     100,
		CacheTTL:      30 * time.Minute,
		HistorySize:   1000,
	}
}

type historyEntry struct {
	Query      string
	NRQL       string
	IntentType IntentType
	QueryType  QueryType
	Confidence float64
	Timestamp  time.Time
}

// QueryGenerator is the main entry point of the query pipeline (C4): it
// parses a natural-language query, builds an NRQL-dialect string, optimizes
// it, estimates cost, and annotates the result with warnings/suggestions/
// alternatives, with caching and a bounded history.
//
// Grounded on original_source/intelligence/query/query_generator.py.
type QueryGenerator struct {
	parser    *IntentParser
	builder   *QueryBuilder
	optimizer *QueryOptimizer
	cache     *cache.LRU
	log       *logrus.Logger

	historyMu sync.Mutex
	history   []historyEntry
	cfg       GeneratorConfig
}

// NewQueryGenerator constructs a QueryGenerator.
func NewQueryGenerator(cfg GeneratorConfig, log *logrus.Logger) *QueryGenerator {
	if log == nil {
		log = discardLogger()
	}
	return &QueryGenerator{
		parser:    NewIntentParser(),
		builder:   NewQueryBuilder(),
		optimizer: NewQueryOptimizer(cfg.OptimizerMode),
		cache:     cache.New(cfg.CacheSize, cfg.CacheTTL),
		log:       log,
		cfg:       cfg,
	}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Generate converts naturalQuery into an optimized QueryResult.
func (g *QueryGenerator) Generate(naturalQuery string, ctx *QueryContext) QueryResult {
	key := generateCacheKey(naturalQuery, ctx)
	if cached, ok := g.cache.Get(key); ok {
		result := cached.(QueryResult)
		if result.Metadata == nil {
			result.Metadata = map[string]interface{}{}
		}
		result.Metadata["cache_hit"] = true
		g.addToHistory(naturalQuery, result)
		return result
	}

	start := time.Now()
	intent := g.parser.Parse(naturalQuery, ctx)
	nrql := g.builder.Build(intent)
	nrql = g.builder.ApplyLimitOrderBy(nrql, intent)

	optimization := map[string]interface{}{}
	if ctx != nil {
		optResult := g.optimizer.Optimize(nrql, intent, ctx)
		if optResult.NRQL != nrql {
			nrql = optResult.NRQL
			optimization["applied"] = optResult.OptimizationsApplied
			optimization["original_cost"] = optResult.OriginalCost
			optimization["optimized_cost"] = optResult.OptimizedCost
		}
	}

	cost := g.optimizer.estimateCost(nrql, intent, ctx)

	result := QueryResult{
		NRQL:          nrql,
		Intent:        intent,
		Confidence:    intent.Confidence,
		EstimatedCost: cost,
		Warnings:      generateWarnings(intent),
		Suggestions:   generateSuggestions(intent),
		Alternatives:  g.generateAlternatives(intent, ctx),
		Metadata: map[string]interface{}{
			"generation_time_seconds": time.Since(start).Seconds(),
			"optimization":            optimization,
			"cache_hit":               false,
		},
	}

	g.cache.Set(key, result)
	g.addToHistory(naturalQuery, result)
	return result
}

// GenerateBatch generates queries for each input string, sharing ctx.
func (g *QueryGenerator) GenerateBatch(queries []string, ctx *QueryContext) []QueryResult {
	results := make([]QueryResult, len(queries))
	for i, q := range queries {
		results[i] = g.Generate(q, ctx)
	}
	return results
}

var suggestionPatterns = []string{
	"Show me {metric} for {service} in the last {time}",
	"What is the average {metric} by {dimension}",
	"Compare {metric} between {period1} and {period2}",
	"Find anomalies in {metric} for {service}",
	"Top 10 {dimension} by {metric}",
	"Error rate for {service} over time",
	"Performance metrics for {application}",
	"Alert when {metric} exceeds {threshold}",
}

// SuggestQueries suggests completions for a partial natural-language query.
func (g *QueryGenerator) SuggestQueries(partial string, ctx *QueryContext) []string {
	lower := strings.ToLower(partial)
	var suggestions []string

	for _, pattern := range suggestionPatterns {
		prefix := strings.ToLower(strings.SplitN(pattern, "{", 2)[0])
		if strings.HasPrefix(prefix, lower) {
			suggestions = append(suggestions, pattern)
		}
	}

	if ctx != nil {
		limit := len(ctx.AvailableSchemas)
		if limit > 5 {
			limit = 5
		}
		for _, schema := range ctx.AvailableSchemas[:limit] {
			suggestions = append(suggestions,
				fmt.Sprintf("Show me all data from %s", schema.Name),
				fmt.Sprintf("What are the top metrics in %s", schema.Name),
				fmt.Sprintf("Analyze patterns in %s", schema.Name),
			)
		}
	}

	g.historyMu.Lock()
	n := len(g.history)
	start := n - 10
	if start < 0 {
		start = 0
	}
	for _, entry := range g.history[start:n] {
		if strings.HasPrefix(strings.ToLower(entry.Query), lower) {
			suggestions = append(suggestions, entry.Query)
		}
	}
	g.historyMu.Unlock()

	seen := make(map[string]bool)
	var unique []string
	for _, s := range suggestions {
		if !seen[s] {
			seen[s] = true
			unique = append(unique, s)
		}
	}
	if len(unique) > 10 {
		unique = unique[:10]
	}
	return unique
}

// QueryExplanation is a natural-language breakdown of an NRQL query.
type QueryExplanation struct {
	Summary      string
	DataSource   string
	TimeRange    string
	Aggregations []string
	Filters      []string
	Grouping     []string
}

var (
	explainSelectRe = regexp.MustCompile(`(?i)SELECT\s+(.+?)\s+FROM`)
	explainFromRe   = regexp.MustCompile(`(?i)FROM\s+(\S+)`)
	explainWhereRe  = regexp.MustCompile(`(?i)WHERE\s+(.+?)(?:\s+SINCE|\s+FACET|\s+LIMIT|$)`)
	explainFacetRe  = regexp.MustCompile(`(?i)FACET\s+(\S+)`)
	explainSinceRe  = regexp.MustCompile(`(?i)SINCE\s+(\d+\s+\w+\s+ago)`)
)

var aggDescriptions = []struct {
	token string
	desc  string
}{
	{"COUNT", "counting records"},
	{"SUM", "summing"},
	{"AVERAGE", "averaging"},
	{"MAX", "finding maximum"},
	{"MIN", "finding minimum"},
	{"PERCENTILE", "calculating percentiles"},
}

// ExplainQuery produces a natural-language explanation of an NRQL string.
func (g *QueryGenerator) ExplainQuery(nrql string) QueryExplanation {
	var explanation QueryExplanation
	upper := strings.ToUpper(nrql)

	if m := explainSelectRe.FindStringSubmatch(upper); m != nil {
		for _, agg := range aggDescriptions {
			if strings.Contains(m[1], agg.token) {
				explanation.Aggregations = append(explanation.Aggregations, agg.desc)
			}
		}
	}
	if m := explainFromRe.FindStringSubmatch(nrql); m != nil {
		explanation.DataSource = m[1]
	}
	if m := explainSinceRe.FindStringSubmatch(nrql); m != nil {
		explanation.TimeRange = "Looking at data from " + m[1]
	}
	if m := explainWhereRe.FindStringSubmatch(nrql); m != nil {
		explanation.Filters = append(explanation.Filters, "Filtered by: "+m[1])
	}
	if m := explainFacetRe.FindStringSubmatch(nrql); m != nil {
		explanation.Grouping = append(explanation.Grouping, "Grouped by "+m[1])
	}

	var parts []string
	if len(explanation.Aggregations) > 0 {
		parts = append(parts, "This query is "+strings.Join(explanation.Aggregations, ", "))
	} else {
		parts = append(parts, "This query retrieves")
	}
	parts = append(parts, fmt.Sprintf("data from %s", explanation.DataSource))
	if explanation.TimeRange != "" {
		parts = append(parts, strings.ToLower(explanation.TimeRange))
	}
	if len(explanation.Filters) > 0 {
		parts = append(parts, "with filters: "+strings.Join(explanation.Filters, ", "))
	}
	if len(explanation.Grouping) > 0 {
		parts = append(parts, strings.Join(explanation.Grouping, ", "))
	}
	explanation.Summary = strings.Join(parts, " ") + "."
	return explanation
}

func generateWarnings(intent QueryIntent) []string {
	var warnings []string
	if intent.QueryType == QueryTypePercentile && intent.TimeRange.Hours() > 168 {
		warnings = append(warnings, "Percentile calculations over long time ranges can be expensive")
	}
	for _, field := range intent.GroupBy {
		if field == "userId" || field == "sessionId" || field == "requestId" {
			warnings = append(warnings, fmt.Sprintf("Grouping by %s may result in high cardinality", field))
		}
	}
	if len(intent.Filters) == 0 && intent.TimeRange.Hours() > 24 {
		warnings = append(warnings, "Consider adding filters to reduce data volume")
	}
	return warnings
}

func generateSuggestions(intent QueryIntent) []string {
	var suggestions []string
	if strings.Contains(strings.ToLower(intent.RawQuery), "over time") && intent.QueryType != QueryTypeTimeseries {
		suggestions = append(suggestions, "Consider using TIMESERIES for time-based visualization")
	}
	for _, e := range intent.Entities {
		lname := strings.ToLower(e.Name)
		if (strings.Contains(lname, "duration") || strings.Contains(lname, "latency")) && e.Aggregation != AggPercentile {
			suggestions = append(suggestions, fmt.Sprintf("Consider using percentiles for %s to better understand distribution", e.Name))
		}
	}
	if intent.IntentType == IntentTroubleshoot && intent.TimeRange.Type == TimeRangeLastMonth {
		suggestions = append(suggestions, "For troubleshooting, consider using a shorter time range for faster results")
	}
	return suggestions
}

func (g *QueryGenerator) generateAlternatives(intent QueryIntent, ctx *QueryContext) []string {
	var alternatives []string

	if !intent.HasAggregation() && len(intent.Entities) > 0 {
		alt := intent
		alt.Entities = append([]QueryEntity(nil), intent.Entities...)
		alt.Entities[0].Aggregation = AggCount
		alternatives = append(alternatives, g.builder.Build(alt))
	}

	if intent.QueryType == QueryTypeSelect && ctx != nil {
		if schema, ok := ctx.SchemaByName(intent.PrimaryEventType()); ok && len(schema.CommonFacets) > 0 {
			alt := intent
			alt.QueryType = QueryTypeFacet
			alt.GroupBy = []string{schema.CommonFacets[0]}
			alternatives = append(alternatives, g.builder.Build(alt))
		}
	}

	if len(alternatives) > 3 {
		alternatives = alternatives[:3]
	}
	return alternatives
}

func generateCacheKey(query string, ctx *QueryContext) string {
	key := strings.ToLower(strings.TrimSpace(query))
	if ctx != nil {
		key += fmt.Sprintf("|schemas:%d", len(ctx.AvailableSchemas))
	}
	return key
}

func (g *QueryGenerator) addToHistory(query string, result QueryResult) {
	g.historyMu.Lock()
	defer g.historyMu.Unlock()
	g.history = append(g.history, historyEntry{
		Query:      query,
		NRQL:       result.NRQL,
		IntentType: result.Intent.IntentType,
		QueryType:  result.Intent.QueryType,
		Confidence: result.Confidence,
		Timestamp:  time.Now(),
	})
	if len(g.history) > g.cfg.HistorySize {
		g.history = g.history[len(g.history)-g.cfg.HistorySize:]
	}
}

// Metrics reports generator-level counters.
type Metrics struct {
	TotalQueries      int
	CacheHitRate      float64
	HistorySize       int
	AverageConfidence float64
}

// GetMetrics returns a snapshot of the generator's counters.
func (g *QueryGenerator) GetMetrics() Metrics {
	stats := g.cache.Stats()
	g.historyMu.Lock()
	defer g.historyMu.Unlock()

	var confSum float64
	for _, h := range g.history {
		confSum += h.Confidence
	}
	avg := 0.0
	if len(g.history) > 0 {
		avg = confSum / float64(len(g.history))
	}

	return Metrics{
		TotalQueries:      len(g.history),
		CacheHitRate:      stats.HitRate(),
		HistorySize:       len(g.history),
		AverageConfidence: avg,
	}
}
