// Package visualization implements data-shape analysis, chart recommendation,
// and dashboard layout optimization (C5).
//
// Grounded on original_source/intelligence/visualization/{data_shape_analyzer,
// chart_recommender,layout_optimizer}.py.
package visualization

import (
	"math"
	"sort"
	"strings"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// DistributionType is a coarse classification of a numeric column's shape.
type DistributionType string

const (
	DistributionNormal     DistributionType = "normal"
	DistributionSkewedLeft DistributionType = "skewed_left"
	DistributionSkewedRight DistributionType = "skewed_right"
	DistributionBimodal    DistributionType = "bimodal"
	DistributionUniform    DistributionType = "uniform"
	DistributionUnknown    DistributionType = "unknown"
)

// CategoryDistribution classifies how values are spread across categories.
type CategoryDistribution string

const (
	CategorySingleValue CategoryDistribution = "single_value"
	CategoryDominant    CategoryDistribution = "dominant"
	CategoryBalanced    CategoryDistribution = "balanced"
	CategoryImbalanced  CategoryDistribution = "imbalanced"
)

// ColumnCharacteristics is the per-column analysis produced for
// visualization purposes; narrower than the quality-assessor's broader
// profiling (DESIGN.md).
type ColumnCharacteristics struct {
	Name             string
	DType            frame.DType
	Cardinality      int
	NullPercentage   float64
	UniquePercentage float64

	Min, Max, Mean, Median, StdDev float64
	Distribution                  DistributionType
	OutlierPercentage             float64

	TopCategories        []CategoryCount
	CategoryDistribution CategoryDistribution

	Correlations map[string]float64
}

// CategoryCount pairs a category label with its share of non-null rows.
type CategoryCount struct {
	Value   string
	Percent float64
}

// DataShape is the overall shape summary of a Frame, used to drive chart and
// layout recommendations.
type DataShape struct {
	RowCount            int
	ColumnCount          int
	Columns              []ColumnCharacteristics
	HasTimeSeries        bool
	TimeColumn           string
	PrimaryMetrics       []string
	PrimaryDimensions    []string
	DataQualityScore     float64
	Warnings             []string
}

// NumericColumns returns the names of numeric columns in the shape.
func (s DataShape) NumericColumns() []string {
	var out []string
	for _, c := range s.Columns {
		if c.DType.IsNumeric() {
			out = append(out, c.Name)
		}
	}
	return out
}

// CategoricalColumns returns the names of categorical columns in the shape.
func (s DataShape) CategoricalColumns() []string {
	var out []string
	for _, c := range s.Columns {
		if c.DType.IsCategorical() {
			out = append(out, c.Name)
		}
	}
	return out
}

// ShapeAnalyzerConfig configures the ShapeAnalyzer.
type ShapeAnalyzerConfig struct {
	CorrelationThreshold float64
}

// DefaultShapeAnalyzerConfig matches the Python original's defaults.
func DefaultShapeAnalyzerConfig() ShapeAnalyzerConfig {
	return ShapeAnalyzerConfig{CorrelationThreshold: 0.5}
}

// ShapeAnalyzer analyzes a Frame's shape and per-column characteristics.
type ShapeAnalyzer struct {
	cfg ShapeAnalyzerConfig
}

// NewShapeAnalyzer constructs a ShapeAnalyzer.
func NewShapeAnalyzer(cfg ShapeAnalyzerConfig) *ShapeAnalyzer {
	return &ShapeAnalyzer{cfg: cfg}
}

// Analyze computes the DataShape for f, restricted to targetColumns if
// non-empty.
func (a *ShapeAnalyzer) Analyze(f *frame.Frame, targetColumns []string) DataShape {
	names := targetColumns
	if len(names) == 0 {
		names = f.Columns()
	}

	var chars []ColumnCharacteristics
	for _, name := range names {
		col := f.Column(name)
		if col == nil {
			continue
		}
		chars = append(chars, a.analyzeColumn(f, col))
	}

	timeCol := f.TemporalColumn()

	return DataShape{
		RowCount:          f.NumRows(),
		ColumnCount:       len(chars),
		Columns:           chars,
		HasTimeSeries:     timeCol != "",
		TimeColumn:        timeCol,
		PrimaryMetrics:    identifyPrimaryMetrics(chars),
		PrimaryDimensions: identifyPrimaryDimensions(chars),
		DataQualityScore:  calculateQualityScore(chars),
	}
}

func (a *ShapeAnalyzer) analyzeColumn(f *frame.Frame, col *frame.Column) ColumnCharacteristics {
	n := col.Len()
	nullPct := 0.0
	if n > 0 {
		nullPct = float64(col.NullCount()) / float64(n)
	}
	cardinality := col.UniqueCount()
	uniquePct := 0.0
	if n > 0 {
		uniquePct = float64(cardinality) / float64(n)
	}

	char := ColumnCharacteristics{
		Name:             col.Name,
		DType:            col.DType,
		Cardinality:      cardinality,
		NullPercentage:   nullPct,
		UniquePercentage: uniquePct,
	}

	switch {
	case col.DType.IsNumeric():
		a.analyzeNumeric(col, &char)
		char.Correlations = a.calculateCorrelations(f, col)
	case col.DType.IsCategorical():
		analyzeCategorical(col, &char)
	case col.DType == frame.DTypeBoolean:
		analyzeBoolean(col, &char)
	}
	return char
}

func (a *ShapeAnalyzer) analyzeNumeric(col *frame.Column, char *ColumnCharacteristics) {
	xs := col.Floats()
	if len(xs) == 0 {
		return
	}
	sorted := frame.Sorted(xs)
	char.Min = sorted[0]
	char.Max = sorted[len(sorted)-1]
	char.Mean = frame.Mean(xs)
	char.Median = frame.Quantile(sorted, 0.5)
	char.StdDev = frame.StdDev(xs)
	char.Distribution = detectDistribution(xs)
	char.OutlierPercentage = outlierFraction(sorted)
}

func detectDistribution(xs []float64) DistributionType {
	skew := frame.Skewness(xs)
	kurt := frame.Kurtosis(xs)
	mean := frame.Mean(xs)
	sd := frame.StdDev(xs)

	switch {
	case math.Abs(skew) < 0.5 && math.Abs(kurt) < 1:
		return DistributionNormal
	case skew > 1:
		return DistributionSkewedRight
	case skew < -1:
		return DistributionSkewedLeft
	case math.Abs(kurt) > 3:
		return DistributionBimodal
	case mean != 0 && sd/math.Abs(mean) < 0.1:
		return DistributionUniform
	default:
		return DistributionUnknown
	}
}

func outlierFraction(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	q1 := frame.Quantile(sorted, 0.25)
	q3 := frame.Quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	count := 0
	for _, x := range sorted {
		if x < lower || x > upper {
			count++
		}
	}
	return float64(count) / float64(len(sorted))
}

func (a *ShapeAnalyzer) calculateCorrelations(f *frame.Frame, col *frame.Column) map[string]float64 {
	correlations := make(map[string]float64)
	xs := col.Floats()
	for _, name := range f.Columns() {
		if name == col.Name {
			continue
		}
		other := f.Column(name)
		if other == nil || !other.DType.IsNumeric() {
			continue
		}
		ys := other.Floats()
		n := len(xs)
		if len(ys) < n {
			n = len(ys)
		}
		if n < 3 {
			continue
		}
		r := pearson(xs[:n], ys[:n])
		if math.Abs(r) > a.cfg.CorrelationThreshold {
			correlations[name] = math.Round(r*1000) / 1000
		}
	}
	return correlations
}

func pearson(xs, ys []float64) float64 {
	meanX, meanY := frame.Mean(xs), frame.Mean(ys)
	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

func analyzeCategorical(col *frame.Column, char *ColumnCharacteristics) {
	counts := make(map[string]int)
	total := col.Len()
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		counts[s]++
	}
	if total == 0 || len(counts) == 0 {
		return
	}

	type kv struct {
		k string
		v int
	}
	var sorted []kv
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].v != sorted[j].v {
			return sorted[i].v > sorted[j].v
		}
		return sorted[i].k < sorted[j].k
	})

	topN := 10
	if len(sorted) < topN {
		topN = len(sorted)
	}
	for i := 0; i < topN; i++ {
		char.TopCategories = append(char.TopCategories, CategoryCount{
			Value: sorted[i].k, Percent: float64(sorted[i].v) / float64(total),
		})
	}

	switch {
	case len(counts) == 1:
		char.CategoryDistribution = CategorySingleValue
	case float64(sorted[0].v)/float64(total) > 0.8:
		char.CategoryDistribution = CategoryDominant
	case coefficientOfVariationOfCounts(sorted) < 0.5:
		char.CategoryDistribution = CategoryBalanced
	default:
		char.CategoryDistribution = CategoryImbalanced
	}
}

func coefficientOfVariationOfCounts(sorted []struct {
	k string
	v int
}) float64 {
	xs := make([]float64, len(sorted))
	for i, kv := range sorted {
		xs[i] = float64(kv.v)
	}
	mean := frame.Mean(xs)
	if mean == 0 {
		return 0
	}
	return frame.StdDev(xs) / mean
}

func analyzeBoolean(col *frame.Column, char *ColumnCharacteristics) {
	total := col.Len()
	if total == 0 {
		return
	}
	trueCount := 0
	for _, v := range col.Values {
		if b, ok := v.(bool); ok && b {
			trueCount++
		}
	}
	truePct := float64(trueCount) / float64(total)
	char.TopCategories = []CategoryCount{
		{Value: "True", Percent: truePct},
		{Value: "False", Percent: 1 - truePct},
	}
	if truePct > 0.9 || truePct < 0.1 {
		char.CategoryDistribution = CategoryDominant
	} else {
		char.CategoryDistribution = CategoryBalanced
	}
}

var metricKeywords = []string{
	"count", "sum", "total", "amount", "value", "score",
	"rate", "ratio", "percentage", "duration", "latency",
	"cpu", "memory", "disk", "network",
}

func identifyPrimaryMetrics(chars []ColumnCharacteristics) []string {
	var metrics []string
	for _, c := range chars {
		if !c.DType.IsNumeric() {
			continue
		}
		nameLower := strings.ToLower(c.Name)
		hasKeyword := false
		for _, kw := range metricKeywords {
			if strings.Contains(nameLower, kw) {
				hasKeyword = true
				break
			}
		}
		if hasKeyword {
			metrics = append(metrics, c.Name)
		} else if c.Mean != 0 && c.StdDev/math.Abs(c.Mean) > 0.1 {
			metrics = append(metrics, c.Name)
		}
	}
	if len(metrics) > 5 {
		metrics = metrics[:5]
	}
	return metrics
}

var dimensionKeywords = []string{
	"name", "type", "category", "group", "class",
	"status", "region", "country", "department",
}

func identifyPrimaryDimensions(chars []ColumnCharacteristics) []string {
	var dimensions []string
	for _, c := range chars {
		if !c.DType.IsCategorical() {
			continue
		}
		if c.Cardinality < 2 || c.Cardinality > 50 {
			continue
		}
		nameLower := strings.ToLower(c.Name)
		hasKeyword := false
		for _, kw := range dimensionKeywords {
			if strings.Contains(nameLower, kw) {
				hasKeyword = true
				break
			}
		}
		if hasKeyword || c.CategoryDistribution == CategoryBalanced {
			dimensions = append(dimensions, c.Name)
		}
	}
	if len(dimensions) > 5 {
		dimensions = dimensions[:5]
	}
	return dimensions
}

func calculateQualityScore(chars []ColumnCharacteristics) float64 {
	if len(chars) == 0 {
		return 0
	}
	var sum float64
	for _, c := range chars {
		nullPenalty := 1 - c.NullPercentage
		diversity := 1.0
		if c.UniquePercentage < 0.1 {
			diversity = math.Min(1.0, c.UniquePercentage*10)
		}
		outlierPenalty := 1.0
		if c.DType.IsNumeric() {
			outlierPenalty = 1 - math.Min(0.5, c.OutlierPercentage*5)
		}
		sum += nullPenalty * diversity * outlierPenalty
	}
	return sum / float64(len(chars))
}
