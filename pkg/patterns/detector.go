package patterns

import (
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// DetectorConfig holds detector-local configuration (spec.md §4.2 contract).
// This is a distinct knob from the Pattern Engine's own post-filter
// ConfidenceThreshold (see DESIGN.md Open Question resolution).
type DetectorConfig struct {
	MinSamples          int
	ConfidenceThreshold float64
}

// DefaultDetectorConfig matches original_source/intelligence/patterns/base.py's
// PatternDetector defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{MinSamples: 30, ConfidenceThreshold: 0.7}
}

// Detector is the capability every pattern detector implements (spec.md §9:
// "replace class inheritance by a Detector capability with a single operation
// detect"). Implementations are pure over their inputs.
type Detector interface {
	Name() string
	SupportedTypes() []Type
	Detect(f *frame.Frame, columns []string, ctx *Context) []Pattern
}

// validateColumns checks the §4.2 precondition: columns exist and each has at
// least MinSamples non-null values.
func validateColumns(f *frame.Frame, columns []string, cfg DetectorConfig) bool {
	if f == nil || f.NumRows() == 0 {
		return false
	}
	for _, name := range columns {
		col := f.Column(name)
		if col == nil {
			return false
		}
		if col.NonNullCount() < cfg.MinSamples {
			return false
		}
	}
	return true
}

// filterByConfidence drops patterns below the detector's own threshold,
// enforcing the §4.2 postcondition at the boundary of every detector.
func filterByConfidence(patterns []Pattern, threshold float64) []Pattern {
	out := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Confidence >= threshold && len(p.Evidence) > 0 && len(p.Columns) > 0 {
			out = append(out, p)
		}
	}
	return out
}
