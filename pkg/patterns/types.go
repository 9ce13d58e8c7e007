// Package patterns implements the four pluggable pattern detectors (C2) and the
// Pattern Engine (C3) that orchestrates them.
package patterns

import "time"

// Type is the closed enum of pattern kinds (spec.md §3).
type Type string

const (
	TypeNormalDistribution Type = "normal_distribution"
	TypeSkewedDistribution Type = "skewed_distribution"
	TypeBimodalDistribution Type = "bimodal_distribution"
	TypeUniformDistribution Type = "uniform_distribution"

	TypeTrendLinear      Type = "trend_linear"
	TypeTrendExponential Type = "trend_exponential"
	TypeSeasonal         Type = "seasonal"
	TypeCyclic           Type = "cyclic"
	TypeStationary       Type = "stationary"
	TypeNonStationary    Type = "non_stationary"

	TypeOutlier           Type = "outlier"
	TypeAnomalyPoint      Type = "anomaly_point"
	TypeAnomalyCollective Type = "anomaly_collective"
	TypeAnomalyContextual Type = "anomaly_contextual"
	TypeChangePoint       Type = "change_point"

	TypeLinearCorrelation    Type = "linear_correlation"
	TypeNonLinearCorrelation Type = "non_linear_correlation"
	TypeLagCorrelation       Type = "lag_correlation"
	TypeNetworkCorrelation   Type = "network_correlation"

	TypeMissingData     Type = "missing_data"
	TypeInconsistentData Type = "inconsistent_data"
)

// Impact is the coarse severity classification of a pattern.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Value is a JSON-like value union for free-form parameter/evidence/hint maps
// (spec.md §9: "Dynamic parameter maps"). It is simply interface{} constrained by
// convention to JSON-marshalable Go values (nil, bool, float64, string,
// []interface{}, map[string]interface{}); it exists as a named type purely to
// document intent at call sites.
type Value = interface{}

// Evidence is one piece of supporting evidence for a detected pattern.
type Evidence struct {
	Description      string             `json:"description"`
	StatisticalTests map[string]float64 `json:"statistical_tests,omitempty"`
	DataPoints       []map[string]Value `json:"data_points,omitempty"`
}

// Pattern is an immutable, confidence-scored observation about one or more
// columns of a Frame.
type Pattern struct {
	Type            Type              `json:"type"`
	Confidence      float64           `json:"confidence"`
	Description     string            `json:"description"`
	Columns         []string          `json:"columns"`
	Parameters      map[string]Value  `json:"parameters"`
	Evidence        []Evidence        `json:"evidence"`
	DetectedAt      time.Time         `json:"detected_at"`
	Impact          Impact            `json:"impact"`
	Recommendations []string          `json:"recommendations,omitempty"`
	VisualHints     map[string]Value  `json:"visual_hints,omitempty"`
}

// Context carries optional external context passed into detection. Unknown
// JSON keys are ignored when decoding; Extra is excluded from JSON and holds
// whatever Go callers put there (Open Question #2 in DESIGN.md).
type Context struct {
	DataProfile      map[string]Value `json:"data_profile,omitempty"`
	BusinessContext  map[string]string `json:"business_context,omitempty"`
	DetectionParams  map[string]Value `json:"detection_params,omitempty"`
	TimeRangeStart   *time.Time        `json:"time_range_start,omitempty"`
	TimeRangeEnd     *time.Time        `json:"time_range_end,omitempty"`
	Extra            map[string]Value `json:"-"`

	// Deadline is the soft per-detector deadline (spec.md §5).
	Deadline time.Time `json:"-"`
}

// DeadlineExceeded reports whether the context's soft deadline has passed.
func (c *Context) DeadlineExceeded() bool {
	if c == nil || c.Deadline.IsZero() {
		return false
	}
	return time.Now().After(c.Deadline)
}
