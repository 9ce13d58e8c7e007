// Package intelligence exposes the pattern-detection, query-generation, and
// visualization pipelines as a single native service, replacing the
// out-of-process Python/gRPC engine the original wrapper shelled out to.
package intelligence

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/patterns"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/queryintel"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/visualization"
)

// Service is the in-process intelligence engine: pattern detection, NRQL
// generation, and chart/layout recommendation over tabular data.
type Service struct {
	logger *logrus.Logger

	engine      *patterns.Engine
	generator   *queryintel.QueryGenerator
	shapeAn     *visualization.ShapeAnalyzer
	recommender *visualization.ChartRecommender
	layout      *visualization.LayoutOptimizer
}

// NewService constructs a Service with the default detector set, cache
// sizes, and optimizer configuration.
func NewService(logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}

	return &Service{
		logger:      logger,
		engine:      patterns.NewDefaultEngine(logger),
		generator:   queryintel.NewQueryGenerator(queryintel.DefaultGeneratorConfig(), logger),
		shapeAn:     visualization.NewShapeAnalyzer(visualization.DefaultShapeAnalyzerConfig()),
		recommender: visualization.NewChartRecommender(),
		layout:      visualization.NewLayoutOptimizer(visualization.DefaultLayoutOptimizerConfig()),
	}
}

// HealthCheck reports whether the service's internal components are wired
// and usable; there is no external process to probe.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.engine == nil || s.generator == nil || s.shapeAn == nil {
		return fmt.Errorf("intelligence service not fully initialized")
	}
	return nil
}

// AnalyzePatterns detects patterns in the provided tabular data. data must
// contain a "rows" key ([]map[string]interface{}) and may contain a
// "columns" key ([]string) giving explicit column order; columns restricts
// detection to a subset of columns when non-empty.
func (s *Service) AnalyzePatterns(ctx context.Context, data map[string]interface{}, columns []string) (*PatternAnalysisResult, error) {
	f, err := frameFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build frame: %w", err)
	}

	result := s.engine.Analyze(ctx, f, columns, &patterns.Context{})

	metadata := map[string]interface{}{"cache_hit": result.CacheHit}
	for k, v := range result.Stats {
		metadata[k] = v
	}

	out := &PatternAnalysisResult{
		Insights: result.Insights,
		Metadata: metadata,
	}
	for _, p := range result.Patterns {
		out.Patterns = append(out.Patterns, Pattern{
			Type:       string(p.Type),
			Confidence: p.Confidence,
			Evidence:   evidenceToMap(p.Evidence),
			Columns:    p.Columns,
		})
	}
	return out, nil
}

func evidenceToMap(evidence []patterns.Evidence) map[string]interface{} {
	if len(evidence) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(evidence))
	for i, e := range evidence {
		out[fmt.Sprintf("evidence_%d", i)] = e
	}
	return out
}

// GenerateQuery converts a natural-language request into an NRQL-dialect
// query plus warnings, suggestions, and alternatives.
func (s *Service) GenerateQuery(ctx context.Context, naturalQuery string, qctx *QueryContext) (*QueryResult, error) {
	intelCtx := queryintel.QueryContext{}
	if qctx != nil {
		for _, schema := range qctx.AvailableSchemas {
			intelCtx.AvailableSchemas = append(intelCtx.AvailableSchemas, queryintel.SchemaInfo{
				Name: schema.Name, RecordsPerHour: schema.RecordsPerHour, CommonFacets: schema.CommonFacets,
			})
		}
		intelCtx.CostConstraints = qctx.CostConstraints
		intelCtx.UserPreferences = qctx.UserPreferences
	}

	result := s.generator.Generate(naturalQuery, &intelCtx)
	return &QueryResult{
		NRQL:          result.NRQL,
		Confidence:    result.Confidence,
		EstimatedCost: result.EstimatedCost,
		Warnings:      result.Warnings,
		Suggestions:   result.Suggestions,
		Alternatives:  result.Alternatives,
		Metadata:      result.Metadata,
	}, nil
}

// RecommendCharts proposes chart configurations for the given tabular data.
func (s *Service) RecommendCharts(ctx context.Context, data map[string]interface{}, goal string) (*ChartRecommendations, error) {
	f, err := frameFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build frame: %w", err)
	}

	shape := s.shapeAn.Analyze(f, nil)
	rctx := visualization.DefaultRecommendationContext()
	if goal != "" {
		rctx.VisualizationGoal = visualization.VisualizationGoal(goal)
	}

	recs := s.recommender.Recommend(shape, rctx)
	out := &ChartRecommendations{}
	for _, r := range recs {
		out.Recommendations = append(out.Recommendations, ChartRecommendation{
			ChartType:     string(r.ChartType),
			Confidence:    r.Confidence,
			Reasoning:     r.Reasoning,
			Configuration: r.Settings,
			Advantages:    r.Advantages,
			Limitations:   r.Limitations,
		})
	}
	return out, nil
}

// OptimizeLayout arranges widgets into a scored dashboard layout.
func (s *Service) OptimizeLayout(ctx context.Context, widgets []Widget, constraints *LayoutConstraints) (*DashboardLayout, error) {
	vizWidgets := make([]visualization.Widget, len(widgets))
	for i, w := range widgets {
		vizWidgets[i] = visualization.Widget{
			ID:        w.ID,
			Title:     w.Title,
			ChartType: visualization.ChartType(w.ChartType),
			DataQuery: w.DataQuery,
			Priority:  priorityFromString(w.Priority),
		}
	}

	vizConstraints := visualization.DefaultLayoutConstraints()
	strategy := visualization.LayoutGrid
	if constraints != nil {
		if constraints.MaxColumns > 0 {
			vizConstraints.MaxColumns = constraints.MaxColumns
		}
		if constraints.MaxRows > 0 {
			vizConstraints.MaxRows = constraints.MaxRows
		}
		vizConstraints.MobileFriendly = constraints.MobileFriendly
		vizConstraints.TabletFriendly = constraints.TabletFriendly
		if constraints.MobileFriendly || constraints.TabletFriendly {
			strategy = visualization.LayoutResponsive
		}
	}

	result := s.layout.Optimize(vizWidgets, vizConstraints, strategy)

	out := &DashboardLayout{
		Strategy: string(result.Strategy),
		Grid:     GridDimensions{Columns: result.GridColumns, Rows: result.GridRows},
		Metrics: LayoutMetrics{
			SpaceUtilization:  result.SpaceUtilization,
			VisualBalance:     result.VisualBalance,
			RelationshipScore: result.RelationshipScore,
			OverallScore:      result.OverallScore,
		},
	}
	for _, p := range result.Placements {
		out.Placements = append(out.Placements, WidgetPlacement{
			WidgetID: p.WidgetID,
			Position: Position{X: p.Position.X, Y: p.Position.Y},
			Size:     Size{Width: p.Size.Width, Height: p.Size.Height},
		})
	}
	return out, nil
}

func priorityFromString(p string) visualization.WidgetPriority {
	switch p {
	case "critical":
		return visualization.PriorityCritical
	case "high":
		return visualization.PriorityHigh
	case "low":
		return visualization.PriorityLow
	case "optional":
		return visualization.PriorityOptional
	default:
		return visualization.PriorityMedium
	}
}

func frameFromData(data map[string]interface{}) (*frame.Frame, error) {
	rawRows, ok := data["rows"]
	if !ok {
		return nil, fmt.Errorf("data missing \"rows\" key")
	}
	rowsSlice, ok := rawRows.([]interface{})
	if !ok {
		if typed, ok := rawRows.([]map[string]interface{}); ok {
			return buildFrame(data, typed), nil
		}
		return nil, fmt.Errorf("\"rows\" must be a list of objects")
	}

	rows := make([]map[string]interface{}, 0, len(rowsSlice))
	for _, r := range rowsSlice {
		row, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("each row must be an object")
		}
		rows = append(rows, row)
	}
	return buildFrame(data, rows), nil
}

func buildFrame(data map[string]interface{}, rows []map[string]interface{}) *frame.Frame {
	var columnOrder []string
	if rawCols, ok := data["columns"]; ok {
		if colsSlice, ok := rawCols.([]interface{}); ok {
			for _, c := range colsSlice {
				if s, ok := c.(string); ok {
					columnOrder = append(columnOrder, s)
				}
			}
		} else if colsStrings, ok := rawCols.([]string); ok {
			columnOrder = colsStrings
		}
	}
	if len(columnOrder) == 0 {
		seen := make(map[string]bool)
		for _, row := range rows {
			for k := range row {
				if !seen[k] {
					seen[k] = true
					columnOrder = append(columnOrder, k)
				}
			}
		}
	}
	return frame.NewFromRows(columnOrder, rows)
}

// Types for intelligence service results

// PatternAnalysisResult contains detected patterns.
type PatternAnalysisResult struct {
	Patterns []Pattern              `json:"patterns"`
	Insights []string               `json:"insights"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Pattern represents a detected pattern.
type Pattern struct {
	Type       string                 `json:"type"`
	Confidence float64                `json:"confidence"`
	Evidence   map[string]interface{} `json:"evidence"`
	Columns    []string               `json:"columns"`
}

// QueryContext provides context for query generation.
type QueryContext struct {
	AvailableSchemas []SchemaInfo           `json:"available_schemas"`
	CostConstraints  map[string]interface{} `json:"cost_constraints,omitempty"`
	UserPreferences  map[string]interface{} `json:"user_preferences,omitempty"`
}

// SchemaInfo describes an available data schema.
type SchemaInfo struct {
	Name           string   `json:"name"`
	RecordsPerHour int64    `json:"records_per_hour"`
	CommonFacets   []string `json:"common_facets"`
}

// QueryResult contains a generated NRQL query.
type QueryResult struct {
	NRQL          string                 `json:"nrql"`
	Confidence    float64                `json:"confidence"`
	EstimatedCost float64                `json:"estimated_cost,omitempty"`
	Warnings      []string               `json:"warnings,omitempty"`
	Suggestions   []string               `json:"suggestions,omitempty"`
	Alternatives  []string               `json:"alternatives,omitempty"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// ChartRecommendations contains chart suggestions.
type ChartRecommendations struct {
	Recommendations []ChartRecommendation `json:"recommendations"`
}

// ChartRecommendation describes a recommended chart.
type ChartRecommendation struct {
	ChartType     string                 `json:"chart_type"`
	Confidence    float64                `json:"confidence"`
	Reasoning     string                 `json:"reasoning"`
	Configuration map[string]interface{} `json:"configuration"`
	Advantages    []string               `json:"advantages"`
	Limitations   []string               `json:"limitations"`
}

// Widget represents a dashboard widget.
type Widget struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ChartType string `json:"chart_type"`
	DataQuery string `json:"data_query"`
	Priority  string `json:"priority,omitempty"`
}

// LayoutConstraints defines layout optimization constraints.
type LayoutConstraints struct {
	MaxColumns     int  `json:"max_columns"`
	MaxRows        int  `json:"max_rows"`
	MobileFriendly bool `json:"mobile_friendly"`
	TabletFriendly bool `json:"tablet_friendly"`
}

// DashboardLayout contains an optimized layout.
type DashboardLayout struct {
	Strategy   string            `json:"strategy"`
	Grid       GridDimensions    `json:"grid"`
	Placements []WidgetPlacement `json:"placements"`
	Metrics    LayoutMetrics     `json:"metrics"`
}

// GridDimensions defines dashboard grid size.
type GridDimensions struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// WidgetPlacement defines a widget's position and size.
type WidgetPlacement struct {
	WidgetID string   `json:"widget_id"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Position defines x,y coordinates.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size defines width and height.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LayoutMetrics contains layout quality metrics.
type LayoutMetrics struct {
	SpaceUtilization  float64 `json:"space_utilization"`
	VisualBalance     float64 `json:"visual_balance"`
	RelationshipScore float64 `json:"relationship_score"`
	OverallScore      float64 `json:"overall_score"`
}
