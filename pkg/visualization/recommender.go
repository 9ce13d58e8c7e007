package visualization

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ChartType is the catalog of renderable chart kinds.
type ChartType string

const (
	ChartLine            ChartType = "line"
	ChartArea            ChartType = "area"
	ChartBar             ChartType = "bar"
	ChartStackedBar      ChartType = "stacked_bar"
	ChartPie             ChartType = "pie"
	ChartTable           ChartType = "table"
	ChartBillboard       ChartType = "billboard"
	ChartHistogram       ChartType = "histogram"
	ChartHeatmap         ChartType = "heatmap"
	ChartScatter         ChartType = "scatter"
	ChartFunnel          ChartType = "funnel"
	ChartTimeseriesLine  ChartType = "timeseries_line"
	ChartTimeseriesArea  ChartType = "timeseries_area"
	ChartTimeseriesStack ChartType = "timeseries_stacked"
	ChartBoxPlot         ChartType = "box_plot"
	ChartViolin          ChartType = "violin"
	ChartGauge           ChartType = "gauge"
	ChartBullet          ChartType = "bullet"
	ChartSparkline       ChartType = "sparkline"
)

// VisualizationGoal is the high-level analytical goal a chart serves.
type VisualizationGoal string

const (
	GoalComparison  VisualizationGoal = "comparison"
	GoalTrend       VisualizationGoal = "trend"
	GoalDistribution VisualizationGoal = "distribution"
	GoalRelationship VisualizationGoal = "relationship"
	GoalComposition VisualizationGoal = "composition"
	GoalRanking     VisualizationGoal = "ranking"
	GoalDeviation   VisualizationGoal = "deviation"
	GoalCorrelation VisualizationGoal = "correlation"
)

// ChartRecommendation is one recommended chart configuration.
type ChartRecommendation struct {
	ChartType   ChartType
	Confidence  float64
	Reasoning   string
	XAxis       string
	YAxis       []string
	GroupBy     string
	Settings    map[string]interface{}
	Advantages  []string
	Limitations []string
	UseCases    []string
}

// RecommendationContext carries user preferences into recommendation.
type RecommendationContext struct {
	VisualizationGoal VisualizationGoal
	PreferredCharts   []ChartType
	ExcludedCharts    []ChartType
	MaxDataPoints     int
	IsDashboard       bool
}

// DefaultRecommendationContext matches the Python original's defaults.
func DefaultRecommendationContext() RecommendationContext {
	return RecommendationContext{MaxDataPoints: 1000}
}

type chartRule struct {
	name            string
	goal            VisualizationGoal
	confidenceBase  float64
	chartTypes      []ChartType
	applies         func(shape DataShape) bool
}

// ChartRecommender recommends chart configurations for a DataShape.
//
// Grounded on original_source/intelligence/visualization/chart_recommender.py.
type ChartRecommender struct {
	rules []chartRule
}

// NewChartRecommender constructs a ChartRecommender with the built-in rule
// catalog.
func NewChartRecommender() *ChartRecommender {
	return &ChartRecommender{rules: buildRuleCatalog()}
}

func buildRuleCatalog() []chartRule {
	return []chartRule{
		{
			name: "timeseries_single_metric", goal: GoalTrend, confidenceBase: 0.9,
			chartTypes: []ChartType{ChartTimeseriesLine},
			applies: func(s DataShape) bool {
				return s.HasTimeSeries && len(s.PrimaryMetrics) == 1
			},
		},
		{
			name: "timeseries_multiple_metrics", goal: GoalTrend, confidenceBase: 0.85,
			chartTypes: []ChartType{ChartTimeseriesLine, ChartTimeseriesStack},
			applies: func(s DataShape) bool {
				return s.HasTimeSeries && len(s.PrimaryMetrics) > 1
			},
		},
		{
			name: "distribution_continuous", goal: GoalDistribution, confidenceBase: 0.9,
			chartTypes: []ChartType{ChartHistogram},
			applies: func(s DataShape) bool { return hasContinuousNumeric(s) },
		},
		{
			name: "distribution_violin", goal: GoalDistribution, confidenceBase: 0.8,
			chartTypes: []ChartType{ChartViolin, ChartBoxPlot},
			applies: func(s DataShape) bool { return hasContinuousNumeric(s) && len(s.PrimaryDimensions) > 0 },
		},
		{
			name: "comparison_categorical", goal: GoalComparison, confidenceBase: 0.85,
			chartTypes: []ChartType{ChartBar},
			applies: func(s DataShape) bool { return hasCategorical(s) && len(s.PrimaryMetrics) > 0 },
		},
		{
			name: "comparison_stacked", goal: GoalComparison, confidenceBase: 0.8,
			chartTypes: []ChartType{ChartStackedBar},
			applies: func(s DataShape) bool { return hasCategorical(s) && len(s.PrimaryMetrics) > 1 },
		},
		{
			name: "correlation_scatter", goal: GoalCorrelation, confidenceBase: 0.9,
			chartTypes: []ChartType{ChartScatter},
			applies: func(s DataShape) bool { return len(s.PrimaryMetrics) >= 2 && hasAnyCorrelation(s) },
		},
		{
			name: "correlation_heatmap", goal: GoalCorrelation, confidenceBase: 0.8,
			chartTypes: []ChartType{ChartHeatmap},
			applies: func(s DataShape) bool { return len(s.PrimaryDimensions) >= 2 && len(s.PrimaryMetrics) >= 1 },
		},
		{
			name: "single_value_billboard", goal: GoalComparison, confidenceBase: 0.95,
			chartTypes: []ChartType{ChartBillboard},
			applies: func(s DataShape) bool { return len(s.PrimaryMetrics) == 1 && s.RowCount == 1 },
		},
		{
			name: "table_detailed", goal: GoalRanking, confidenceBase: 0.8,
			chartTypes: []ChartType{ChartTable},
			applies: func(s DataShape) bool { return hasHighCardinality(s) && len(s.Columns) > 3 },
		},
		{
			name: "composition_pie", goal: GoalComposition, confidenceBase: 0.75,
			chartTypes: []ChartType{ChartPie},
			applies: func(s DataShape) bool {
				return len(s.PrimaryDimensions) > 0 && len(s.PrimaryMetrics) > 0 && maxCardinality(s) <= 8
			},
		},
		{
			name: "funnel_process", goal: GoalComposition, confidenceBase: 0.85,
			chartTypes: []ChartType{ChartFunnel},
			applies: func(s DataShape) bool { return isProcessData(s) },
		},
	}
}

func hasContinuousNumeric(s DataShape) bool {
	for _, c := range s.Columns {
		if c.DType == "numeric_continuous" {
			return true
		}
	}
	return false
}

func hasCategorical(s DataShape) bool {
	return len(s.CategoricalColumns()) > 0
}

func hasAnyCorrelation(s DataShape) bool {
	for _, c := range s.Columns {
		if len(c.Correlations) > 0 {
			return true
		}
	}
	return false
}

func hasHighCardinality(s DataShape) bool {
	for _, c := range s.Columns {
		if c.DType.IsCategorical() && c.Cardinality > 20 {
			return true
		}
	}
	return false
}

func maxCardinality(s DataShape) int {
	max := 0
	for _, c := range s.Columns {
		if c.DType.IsCategorical() && c.Cardinality > max {
			max = c.Cardinality
		}
	}
	return max
}

func isProcessData(s DataShape) bool {
	keywords := []string{"step", "stage", "funnel", "phase"}
	for _, c := range s.Columns {
		lower := strings.ToLower(c.Name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// Recommend produces chart recommendations for shape, sorted by confidence
// descending, capped at 5, filtered by ctx.ExcludedCharts.
func (r *ChartRecommender) Recommend(shape DataShape, ctx RecommendationContext) []ChartRecommendation {
	if ctx.VisualizationGoal == "" {
		ctx.VisualizationGoal = inferGoal(shape)
	}
	if ctx.MaxDataPoints == 0 {
		ctx.MaxDataPoints = 1000
	}

	excluded := make(map[ChartType]bool)
	for _, c := range ctx.ExcludedCharts {
		excluded[c] = true
	}

	var recs []ChartRecommendation
	for _, rule := range r.rules {
		if rule.goal != ctx.VisualizationGoal {
			continue
		}
		if !rule.applies(shape) {
			continue
		}
		rec := r.createRecommendation(rule, shape, ctx)
		if excluded[rec.ChartType] {
			continue
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Confidence > recs[j].Confidence })
	if len(recs) > 5 {
		recs = recs[:5]
	}
	if len(recs) == 0 {
		recs = fallbackRecommendations(shape)
	}
	return recs
}

func inferGoal(shape DataShape) VisualizationGoal {
	switch {
	case shape.HasTimeSeries:
		return GoalTrend
	case hasAnyCorrelation(shape) && len(shape.PrimaryMetrics) >= 2:
		return GoalCorrelation
	case len(shape.PrimaryDimensions) > 0 && len(shape.PrimaryMetrics) > 0:
		return GoalComparison
	default:
		return GoalDistribution
	}
}

func (r *ChartRecommender) createRecommendation(rule chartRule, shape DataShape, ctx RecommendationContext) ChartRecommendation {
	chartType := rule.chartTypes[0]
	for _, preferred := range ctx.PreferredCharts {
		for _, ct := range rule.chartTypes {
			if ct == preferred {
				chartType = ct
			}
		}
	}

	confidence := adjustConfidence(rule.confidenceBase, shape, ctx, chartType)
	rec := ChartRecommendation{
		ChartType:  chartType,
		Confidence: confidence,
		Reasoning:  generateReasoning(shape, chartType),
		Settings:   map[string]interface{}{},
	}
	configureChart(&rec, shape, chartType)
	addProsCons(&rec, chartType)
	addUseCases(&rec, chartType)
	return rec
}

func adjustConfidence(base float64, shape DataShape, ctx RecommendationContext, chartType ChartType) float64 {
	conf := base
	for _, p := range ctx.PreferredCharts {
		if p == chartType {
			conf *= 1.1
			break
		}
	}
	if shape.RowCount > ctx.MaxDataPoints && (chartType == ChartScatter || chartType == ChartTable) {
		conf *= 0.8
	}
	switch {
	case shape.DataQualityScore > 0.9:
		conf *= 1.05
	case shape.DataQualityScore < 0.5:
		conf *= 0.9
	}
	return math.Min(0.99, math.Max(0.1, conf))
}

func configureChart(rec *ChartRecommendation, shape DataShape, chartType ChartType) {
	switch chartType {
	case ChartTimeseriesLine, ChartTimeseriesArea, ChartTimeseriesStack:
		rec.XAxis = shape.TimeColumn
		if rec.XAxis == "" {
			rec.XAxis = "timestamp"
		}
		rec.YAxis = limitStrings(shape.PrimaryMetrics, 3)
		if shape.RowCount > 1000 {
			rec.Settings["bucket_size"] = "auto"
		}
		if chartType == ChartTimeseriesStack {
			rec.Settings["stack_type"] = "normal"
		}
	case ChartBar, ChartStackedBar:
		if len(shape.PrimaryDimensions) > 0 {
			rec.XAxis = shape.PrimaryDimensions[0]
		}
		rec.YAxis = limitStrings(shape.PrimaryMetrics, 1)
		if char := findColumn(shape, rec.XAxis); char != nil && char.Cardinality > 10 {
			rec.Settings["orientation"] = "horizontal"
		}
	case ChartScatter:
		metrics := shape.PrimaryMetrics
		if len(metrics) >= 2 {
			rec.XAxis = metrics[0]
			rec.YAxis = []string{metrics[1]}
			if char := findColumn(shape, metrics[0]); char != nil && len(char.Correlations) > 0 {
				best, bestR := "", 0.0
				for other, r := range char.Correlations {
					if math.Abs(r) > math.Abs(bestR) {
						best, bestR = other, r
					}
				}
				if best != "" {
					rec.YAxis = []string{best}
				}
			}
		}
	case ChartPie:
		if len(shape.PrimaryDimensions) > 0 {
			rec.GroupBy = shape.PrimaryDimensions[0]
		}
		if len(shape.PrimaryMetrics) > 0 {
			rec.YAxis = []string{shape.PrimaryMetrics[0]}
		}
		rec.Settings["max_slices"] = 8
		rec.Settings["other_bucket"] = true
	case ChartHeatmap:
		dims := limitStrings(shape.PrimaryDimensions, 2)
		if len(dims) >= 2 {
			rec.XAxis = dims[0]
			rec.GroupBy = dims[1]
		}
		if len(shape.PrimaryMetrics) > 0 {
			rec.YAxis = []string{shape.PrimaryMetrics[0]}
		}
	case ChartBillboard:
		if len(shape.PrimaryMetrics) > 0 {
			rec.YAxis = []string{shape.PrimaryMetrics[0]}
		}
		rec.Settings["show_comparison"] = true
		rec.Settings["comparison_type"] = "previous_period"
	case ChartTable:
		cols := append(limitStrings(shape.PrimaryDimensions, 3), limitStrings(shape.PrimaryMetrics, 5)...)
		rec.Settings["columns"] = cols
		rec.Settings["sortable"] = true
		rec.Settings["pagination"] = shape.RowCount > 100
	case ChartHistogram:
		if len(shape.PrimaryMetrics) > 0 {
			rec.XAxis = shape.PrimaryMetrics[0]
		}
		rec.Settings["bins"] = 20
	}
}

func limitStrings(xs []string, n int) []string {
	if len(xs) > n {
		return append([]string(nil), xs[:n]...)
	}
	return append([]string(nil), xs...)
}

func findColumn(shape DataShape, name string) *ColumnCharacteristics {
	for i := range shape.Columns {
		if shape.Columns[i].Name == name {
			return &shape.Columns[i]
		}
	}
	return nil
}

func generateReasoning(shape DataShape, chartType ChartType) string {
	var reasons []string
	if shape.HasTimeSeries {
		reasons = append(reasons, fmt.Sprintf("Data contains time series with %d data points", shape.RowCount))
	}
	metricCount := len(shape.PrimaryMetrics)
	dimCount := len(shape.PrimaryDimensions)
	switch {
	case metricCount == 1:
		reasons = append(reasons, fmt.Sprintf("Single metric '%s' to visualize", shape.PrimaryMetrics[0]))
	case metricCount > 1:
		reasons = append(reasons, fmt.Sprintf("%d metrics available for comparison", metricCount))
	}
	if dimCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d dimensions available for grouping", dimCount))
	}
	for _, c := range shape.Columns {
		if c.Distribution != "" && c.Distribution != DistributionUnknown {
			reasons = append(reasons, fmt.Sprintf("'%s' shows %s distribution", c.Name, c.Distribution))
			break
		}
	}

	var strongCorrelations []string
	for _, c := range shape.Columns {
		for other, r := range c.Correlations {
			if math.Abs(r) > 0.7 {
				strongCorrelations = append(strongCorrelations, fmt.Sprintf("'%s' and '%s' (r=%.2f)", c.Name, other, r))
			}
		}
	}
	if len(strongCorrelations) > 0 {
		if len(strongCorrelations) > 2 {
			strongCorrelations = strongCorrelations[:2]
		}
		reasons = append(reasons, "Strong correlations found: "+strings.Join(strongCorrelations, ", "))
	}

	if reason, ok := chartTypeReasons[chartType]; ok {
		reasons = append(reasons, reason)
	}
	return strings.Join(reasons, ". ")
}

var chartTypeReasons = map[ChartType]string{
	ChartLine:      "Best for showing trends over time",
	ChartBar:       "Ideal for comparing categories",
	ChartPie:       "Shows composition of the whole",
	ChartScatter:   "Reveals relationships between variables",
	ChartHeatmap:   "Displays patterns across two dimensions",
	ChartHistogram: "Shows distribution of values",
	ChartBillboard: "Highlights a single important metric",
	ChartTable:     "Provides detailed view of all data",
}

var chartProsCons = map[ChartType]struct {
	pros, cons []string
}{
	ChartLine:      {[]string{"Excellent for showing trends", "Easy to read and understand", "Supports multiple series"}, []string{"Can become cluttered with many lines", "Not suitable for categorical comparisons"}},
	ChartBar:       {[]string{"Clear comparison between categories", "Shows exact values well", "Works with negative values"}, []string{"Limited to reasonable number of categories", "Not ideal for continuous data"}},
	ChartPie:       {[]string{"Shows part-to-whole relationships", "Visually appealing", "Easy to understand percentages"}, []string{"Limited to single data series", "Hard to compare similar-sized slices", "Not suitable for many categories"}},
	ChartScatter:   {[]string{"Shows relationships between variables", "Identifies clusters and outliers", "Can encode additional dimensions"}, []string{"Can be hard to read with many points", "Requires numeric data"}},
	ChartHeatmap:   {[]string{"Displays patterns across two dimensions", "Compact representation of dense data"}, []string{"Hard to read precise values", "Requires careful color scale choice"}},
	ChartHistogram: {[]string{"Shows distribution shape clearly", "Reveals skew and multimodality"}, []string{"Bin choice affects interpretation", "Not suitable for categorical data"}},
	ChartTable:     {[]string{"Shows exact values", "Supports sorting and filtering"}, []string{"Hard to spot trends visually", "Does not scale to large row counts"}},
	ChartBillboard: {[]string{"Immediately communicates a single value", "Good for at-a-glance dashboards"}, []string{"No context without comparison", "Only one metric per chart"}},
}

func addProsCons(rec *ChartRecommendation, chartType ChartType) {
	if pc, ok := chartProsCons[chartType]; ok {
		rec.Advantages = pc.pros
		rec.Limitations = pc.cons
	}
}

var chartUseCases = map[ChartType][]string{
	ChartLine:      {"Tracking a metric over time", "Comparing trends between series"},
	ChartBar:       {"Comparing totals across categories", "Ranking categories"},
	ChartPie:       {"Showing market share", "Visualizing budget allocation"},
	ChartScatter:   {"Exploring correlation between two metrics", "Spotting outliers"},
	ChartHeatmap:   {"Visualizing activity by hour and day", "Spotting hotspots across two dimensions"},
	ChartHistogram: {"Understanding latency distribution", "Spotting bimodal behavior"},
	ChartTable:     {"Drilling into raw records", "Exporting data for further analysis"},
	ChartBillboard: {"Highlighting a KPI on a dashboard", "Showing current system health"},
}

func addUseCases(rec *ChartRecommendation, chartType ChartType) {
	rec.UseCases = chartUseCases[chartType]
}

func fallbackRecommendations(shape DataShape) []ChartRecommendation {
	rec := ChartRecommendation{
		ChartType:  ChartTable,
		Confidence: 0.5,
		Reasoning:  "No specific rule matched; a table provides a safe general-purpose view",
		Settings:   map[string]interface{}{"sortable": true},
	}
	addProsCons(&rec, ChartTable)
	addUseCases(&rec, ChartTable)
	return []ChartRecommendation{rec}
}
