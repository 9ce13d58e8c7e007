package queryintel

import (
	"regexp"
	"strconv"
	"strings"
)

// IntentParser converts a natural-language query string into a QueryIntent.
//
// Grounded on original_source/intelligence/query/intent_parser.py.
type IntentParser struct{}

// NewIntentParser constructs an IntentParser.
func NewIntentParser() *IntentParser { return &IntentParser{} }

var intentKeywords = []struct {
	intent   IntentType
	keywords []string
}{
	{IntentTroubleshoot, []string{"troubleshoot", "debug", "issue", "problem", "error", "fail"}},
	{IntentMonitor, []string{"monitor", "watch", "real-time", "realtime", "live"}},
	{IntentCompare, []string{"compare", "versus", "vs", "difference between"}},
	{IntentForecast, []string{"forecast", "predict", "projection", "future"}},
	{IntentAlert, []string{"alert", "notify", "threshold", "exceeds"}},
	{IntentReport, []string{"report", "summary", "summarize"}},
	{IntentAnalyze, []string{"analyze", "analysis", "deep dive", "investigate"}},
}

// Parse parses a natural-language query into a QueryIntent.
func (p *IntentParser) Parse(query string, ctx *QueryContext) QueryIntent {
	lower := strings.ToLower(query)

	intent := QueryIntent{
		IntentType: detectIntentType(lower),
		RawQuery:   query,
		Metadata:   map[string]interface{}{},
	}
	intent.TimeRange = extractTimeRange(lower)
	intent.Entities = extractEntities(lower)
	intent.EventTypes = extractEventTypes(lower, ctx)
	intent.Filters = extractFilters(query)
	intent.GroupBy = extractGroupBy(lower)
	intent.QueryType = determineQueryType(lower, intent.GroupBy)
	intent.Limit = extractLimit(lower)
	intent.OrderBy = extractOrderBy(lower)
	if percentiles := extractPercentiles(lower); len(percentiles) > 0 {
		intent.Metadata["percentiles"] = percentiles
	}
	intent.Confidence = calculateConfidence(lower, intent)

	return intent
}

func detectIntentType(lower string) IntentType {
	for _, k := range intentKeywords {
		for _, kw := range k.keywords {
			if strings.Contains(lower, kw) {
				return k.intent
			}
		}
	}
	return IntentExplore
}

var timeRangePatterns = []struct {
	re    *regexp.Regexp
	tr    TimeRangeType
}{
	{regexp.MustCompile(`last\s+hour|past\s+hour`), TimeRangeLastHour},
	{regexp.MustCompile(`last\s+day|past\s+day|yesterday|24\s+hours?`), TimeRangeLastDay},
	{regexp.MustCompile(`last\s+week|past\s+week|7\s+days?`), TimeRangeLastWeek},
	{regexp.MustCompile(`last\s+month|past\s+month|30\s+days?`), TimeRangeLastMonth},
	{regexp.MustCompile(`last\s+quarter|past\s+quarter|90\s+days?`), TimeRangeLastQuarter},
}

func extractTimeRange(lower string) TimeRange {
	for _, p := range timeRangePatterns {
		if p.re.MatchString(lower) {
			return TimeRange{Type: p.tr}
		}
	}
	return TimeRange{Type: TimeRangeLastHour}
}

var metricKeywords = []struct {
	phrase string
	name   string
	agg    AggregationType
}{
	{"response time", "duration", AggAverage},
	{"latency", "duration", AggAverage},
	{"error rate", "error", AggRate},
	{"error count", "error", AggCount},
	{"throughput", "count", AggRate},
	{"cpu", "cpuPercent", AggAverage},
	{"memory", "memoryUsedPercent", AggAverage},
}

var aggVerbs = map[string]AggregationType{
	"average": AggAverage, "avg": AggAverage,
	"sum": AggSum, "total": AggSum,
	"max": AggMax, "maximum": AggMax,
	"min": AggMin, "minimum": AggMin,
}

func extractEntities(lower string) []QueryEntity {
	for _, mk := range metricKeywords {
		if strings.Contains(lower, mk.phrase) {
			return []QueryEntity{{Name: mk.name, EntityType: "metric", Aggregation: mk.agg}}
		}
	}
	if strings.Contains(lower, "count") || strings.Contains(lower, "total") {
		return []QueryEntity{{Name: "*", EntityType: "metric", Aggregation: AggCount}}
	}

	tokens := strings.Fields(lower)
	for i, tok := range tokens {
		tok = strings.Trim(tok, ",.:;")
		if agg, ok := aggVerbs[tok]; ok && i+1 < len(tokens) {
			name := strings.Trim(tokens[i+1], ",.:;")
			if name != "" {
				return []QueryEntity{{Name: name, EntityType: "metric", Aggregation: agg}}
			}
		}
	}

	return []QueryEntity{{Name: "*", EntityType: "metric", Aggregation: AggCount}}
}

var eventTypeKeywords = []struct {
	keyword string
	event   string
}{
	{"transaction", "Transaction"},
	{"error", "TransactionError"},
	{"log", "Log"},
	{"metric", "Metric"},
	{"span", "Span"},
	{"trace", "Span"},
	{"browser", "PageView"},
	{"mobile", "Mobile"},
	{"synthetic", "SyntheticCheck"},
	{"infrastructure", "SystemSample"},
	{"process", "ProcessSample"},
}

func extractEventTypes(lower string, ctx *QueryContext) []string {
	var events []string
	seen := map[string]bool{}
	for _, ek := range eventTypeKeywords {
		if strings.Contains(lower, ek.keyword) && !seen[ek.event] {
			events = append(events, ek.event)
			seen[ek.event] = true
		}
	}
	if ctx != nil {
		for _, schema := range ctx.AvailableSchemas {
			if strings.Contains(lower, strings.ToLower(schema.Name)) && !seen[schema.Name] {
				events = append(events, schema.Name)
				seen[schema.Name] = true
			}
		}
	}
	if len(events) == 0 {
		events = []string{"Transaction"}
	}
	return events
}

var (
	filterWhereRe      = regexp.MustCompile(`where\s+(\w+)\s*=\s*([^\s,]+)`)
	filterEqualsRe      = regexp.MustCompile(`(\w+)\s+equals\s+([^\s,]+)`)
	filterIsRe          = regexp.MustCompile(`(\w+)\s+is\s+([^\s,]+)`)
	filterGreaterRe     = regexp.MustCompile(`(\w+)\s+greater\s+than\s+([\d.]+)`)
	filterLessRe        = regexp.MustCompile(`(\w+)\s+less\s+than\s+([\d.]+)`)
	filterContainingRe  = regexp.MustCompile(`(\w+)\s+containing\s+([^\s,]+)`)
	filterNotContainRe  = regexp.MustCompile(`(\w+)\s+not\s+containing\s+([^\s,]+)`)

	// appNameAnchoredRe mirrors original_source/intelligence/query/intent_parser.py's
	// app_pattern: "for|from|in" anchoring the app/application/service keyword.
	appNameAnchoredRe = regexp.MustCompile(`(?:for|from|in)\s+(?:app|application|service)\s+(?:name\s+)?(?:is\s+|=\s*)?['"]?([a-zA-Z0-9_\-]+)['"]?`)
	// appNameBareForRe covers the "for NAME" shorthand (no app/application/service
	// keyword), e.g. "...by service for production...".
	appNameBareForRe = regexp.MustCompile(`\bfor\s+['"]?([a-zA-Z0-9_\-]+)['"]?`)
)

func extractFilters(raw string) []QueryFilter {
	lower := strings.ToLower(raw)
	var filters []QueryFilter

	for _, m := range filterNotContainRe.FindAllStringSubmatch(lower, -1) {
		filters = append(filters, QueryFilter{Field: m[1], Operator: "NOT LIKE", Value: "%" + m[2] + "%"})
	}
	for _, m := range filterContainingRe.FindAllStringSubmatch(lower, -1) {
		filters = append(filters, QueryFilter{Field: m[1], Operator: "LIKE", Value: "%" + m[2] + "%"})
	}
	for _, m := range filterGreaterRe.FindAllStringSubmatch(lower, -1) {
		filters = append(filters, QueryFilter{Field: m[1], Operator: ">", Value: numericOrString(m[2])})
	}
	for _, m := range filterLessRe.FindAllStringSubmatch(lower, -1) {
		filters = append(filters, QueryFilter{Field: m[1], Operator: "<", Value: numericOrString(m[2])})
	}
	for _, m := range filterWhereRe.FindAllStringSubmatch(lower, -1) {
		filters = append(filters, QueryFilter{Field: m[1], Operator: "=", Value: numericOrString(m[2])})
	}
	for _, m := range filterEqualsRe.FindAllStringSubmatch(lower, -1) {
		filters = append(filters, QueryFilter{Field: m[1], Operator: "=", Value: numericOrString(m[2])})
	}
	for _, m := range filterIsRe.FindAllStringSubmatch(lower, -1) {
		filters = append(filters, QueryFilter{Field: m[1], Operator: "=", Value: numericOrString(m[2])})
	}
	if m := appNameAnchoredRe.FindStringSubmatch(lower); m != nil {
		filters = append(filters, QueryFilter{Field: "appName", Operator: "=", Value: m[1]})
	} else if m := appNameBareForRe.FindStringSubmatch(lower); m != nil && !bareForStopwords[m[1]] {
		filters = append(filters, QueryFilter{Field: "appName", Operator: "=", Value: m[1]})
	}
	return filters
}

// bareForStopwords excludes words that follow "for" as ordinary English usage
// ("for the last month", "for each appName") rather than an app/service name.
var bareForStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "each": true, "this": true, "that": true,
}

func numericOrString(s string) interface{} {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

var (
	groupByRe = regexp.MustCompile(`group(?:ed)?\s+by\s+(\w+)`)
	facetWords = []string{"per ", "by ", "for each ", "breakdown by "}
)

func extractGroupBy(lower string) []string {
	if m := groupByRe.FindStringSubmatch(lower); m != nil {
		return []string{m[1]}
	}
	for _, w := range facetWords {
		if idx := strings.Index(lower, w); idx >= 0 {
			rest := strings.Fields(lower[idx+len(w):])
			if len(rest) > 0 {
				field := strings.Trim(rest[0], ",.:;")
				if field != "" {
					return []string{field}
				}
			}
		}
	}
	return nil
}

func determineQueryType(lower string, groupBy []string) QueryType {
	switch {
	case strings.Contains(lower, "over time") || strings.Contains(lower, "timeseries") || strings.Contains(lower, "trend"):
		return QueryTypeTimeseries
	case strings.Contains(lower, "percentile") || strings.Contains(lower, "p95") || strings.Contains(lower, "p99"):
		return QueryTypePercentile
	case strings.Contains(lower, "histogram") || strings.Contains(lower, "distribution"):
		return QueryTypeHistogram
	case strings.Contains(lower, "rate") || strings.Contains(lower, "throughput"):
		return QueryTypeRate
	case strings.Contains(lower, "compare") || strings.Contains(lower, "versus") || strings.Contains(lower, " vs "):
		return QueryTypeCompare
	case strings.Contains(lower, "funnel") || strings.Contains(lower, "conversion"):
		return QueryTypeFunnel
	case len(groupBy) > 0:
		return QueryTypeFacet
	default:
		return QueryTypeSelect
	}
}

var (
	limitTopRe   = regexp.MustCompile(`(?:top|first|limit)\s+(\d+)`)
	limitWordRe  = regexp.MustCompile(`(\d+)\s+(?:results?|records?|rows?)`)
)

func extractLimit(lower string) int {
	if m := limitTopRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := limitWordRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// percentileNumRe matches "95th percentile", "95 percentile", or "p95" forms.
var percentileNumRe = regexp.MustCompile(`(\d{1,3})(?:st|nd|rd|th)?\s+percentile|\bp(\d{1,3})\b`)

// extractPercentiles pulls explicit percentile numbers out of the query so
// buildPercentile can emit one aliased percentile() expression per number
// instead of always falling back to the {50, 95, 99} default.
func extractPercentiles(lower string) []int {
	var out []int
	seen := map[int]bool{}
	for _, m := range percentileNumRe.FindAllStringSubmatch(lower, -1) {
		numStr := m[1]
		if numStr == "" {
			numStr = m[2]
		}
		n, err := strconv.Atoi(numStr)
		if err != nil || n < 1 || n > 100 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func extractOrderBy(lower string) string {
	switch {
	case strings.Contains(lower, "highest") || strings.Contains(lower, "most") || strings.Contains(lower, "descending"):
		return "DESC"
	case strings.Contains(lower, "lowest") || strings.Contains(lower, "least") || strings.Contains(lower, "ascending"):
		return "ASC"
	}
	return ""
}

var vagueTerms = []string{"something", "anything", "stuff", "things"}
var explicitTerms = []string{"select", "from", "where", "group by"}

func calculateConfidence(lower string, intent QueryIntent) float64 {
	conf := 1.0
	for _, v := range vagueTerms {
		if strings.Contains(lower, v) {
			conf *= 0.8
		}
	}
	allDefaulted := true
	for _, e := range intent.Entities {
		if e.Name != "*" {
			allDefaulted = false
		}
	}
	if allDefaulted {
		conf *= 0.9
	}
	if len(intent.EventTypes) == 1 && intent.EventTypes[0] == "Transaction" {
		conf *= 0.95
	}
	for _, t := range explicitTerms {
		if strings.Contains(lower, t) {
			conf = minF(1.0, conf*1.1)
		}
	}
	if conf < 0.1 {
		conf = 0.1
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
