package patterns

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/cache"
	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// EngineConfig configures the Pattern Engine (C3).
type EngineConfig struct {
	// ConfidenceThreshold is the engine-level post-filter applied after all
	// detectors run, independent of each detector's own DetectorConfig
	// threshold (DESIGN.md Open Question resolution).
	ConfidenceThreshold float64

	// MaxConcurrency bounds the number of detectors run in parallel.
	MaxConcurrency int

	// MaxPatterns caps the number of patterns returned after ranking.
	MaxPatterns int

	// DetectorTimeout is the soft per-detection-round deadline (spec.md §5).
	DetectorTimeout time.Duration

	// CacheSize bounds the number of cached detection results.
	CacheSize int

	// CacheTTL is the default cache entry lifetime.
	CacheTTL time.Duration
}

// DefaultEngineConfig matches spec.md §6's default config surface.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ConfidenceThreshold: 0.7,
		MaxConcurrency:      4,
		MaxPatterns:         50,
		DetectorTimeout:     10 * time.Second,
		CacheSize:           500,
		CacheTTL:            10 * time.Minute,
	}
}

// Engine is the Pattern Engine (C3): it dispatches a Frame to all registered
// detectors in parallel, deduplicates and ranks the results, synthesizes
// cross-pattern insights, and caches by data shape.
//
// Grounded on original_source/intelligence/patterns/engine.py for the
// dedup/rank/synthesize pipeline, on pkg/discovery/patterns/engine.go for the
// Go-idiomatic registry shape, and on pkg/discovery/relationships/miner.go's
// channel-based worker pool idiom, generalized here via sourcegraph/conc.
type Engine struct {
	cfg       EngineConfig
	detectors []Detector
	cache     *cache.LRU
	log       *logrus.Logger
}

// NewEngine constructs a Pattern Engine with the given detectors registered.
// Composite/meta detectors are deliberately never registered here (DESIGN.md
// Open Question #1: excluded at selection time).
func NewEngine(cfg EngineConfig, log *logrus.Logger, detectors ...Detector) *Engine {
	if log == nil {
		log = discardLogger()
	}
	return &Engine{
		cfg:       cfg,
		detectors: detectors,
		cache:     cache.New(cfg.CacheSize, cfg.CacheTTL),
		log:       log,
	}
}

// NewDefaultEngine constructs an Engine with all four built-in detectors
// registered, each using DefaultDetectorConfig.
func NewDefaultEngine(log *logrus.Logger) *Engine {
	dcfg := DefaultDetectorConfig()
	return NewEngine(DefaultEngineConfig(), log,
		NewStatisticalDetector(dcfg, log),
		NewTimeSeriesDetector(dcfg, log),
		NewAnomalyDetector(dcfg, log),
		NewCorrelationDetector(dcfg, log),
	)
}

// AnalysisResult is the output of a full Analyze pass.
type AnalysisResult struct {
	Patterns []Pattern         `json:"patterns"`
	Insights []string          `json:"insights"`
	CacheHit bool              `json:"cache_hit"`
	Stats    map[string]Value  `json:"stats"`
}

// Analyze runs every registered detector against the given columns of f in
// parallel, bounded by cfg.MaxConcurrency, then dedups, filters by the
// engine confidence threshold, ranks, caps at MaxPatterns, and synthesizes
// insights.
func (e *Engine) Analyze(ctx context.Context, f *frame.Frame, columns []string, pctx *Context) AnalysisResult {
	key := cacheKey(f, columns, e.detectors)
	if cached, ok := e.cache.Get(key); ok {
		result := cached.(AnalysisResult)
		result.CacheHit = true
		return result
	}

	if pctx == nil {
		pctx = &Context{}
	}
	if pctx.Deadline.IsZero() && e.cfg.DetectorTimeout > 0 {
		pctx.Deadline = time.Now().Add(e.cfg.DetectorTimeout)
	}

	p := pool.New().WithMaxGoroutines(maxInt(1, e.cfg.MaxConcurrency))
	results := make(chan []Pattern, len(e.detectors))
	for _, det := range e.detectors {
		det := det
		p.Go(func() {
			select {
			case <-ctx.Done():
				results <- nil
			default:
				results <- det.Detect(f, columns, pctx)
			}
		})
	}
	p.Wait()
	close(results)

	var all []Pattern
	for r := range results {
		all = append(all, r...)
	}

	all = dedupe(all)
	all = filterByConfidence(all, e.cfg.ConfidenceThreshold)
	all = rank(all)
	if len(all) > e.cfg.MaxPatterns {
		all = all[:e.cfg.MaxPatterns]
	}

	result := AnalysisResult{
		Patterns: all,
		Insights: synthesizeInsights(all),
		CacheHit: false,
		Stats: map[string]Value{
			"detector_count": len(e.detectors),
			"pattern_count":  len(all),
		},
	}
	e.cache.Set(key, result)
	return result
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// dedupe collapses patterns that share a Type and an identical (sorted)
// Columns set, keeping the highest-confidence instance.
func dedupe(patterns []Pattern) []Pattern {
	best := make(map[string]Pattern)
	order := make([]string, 0, len(patterns))
	for _, p := range patterns {
		k := dedupeKey(p)
		if existing, ok := best[k]; !ok || p.Confidence > existing.Confidence {
			if _, seen := best[k]; !seen {
				order = append(order, k)
			}
			best[k] = p
		}
	}
	out := make([]Pattern, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

func dedupeKey(p Pattern) string {
	cols := append([]string(nil), p.Columns...)
	sort.Strings(cols)
	return string(p.Type) + "|" + strings.Join(cols, ",")
}

// rank orders patterns by confidence desc, then by impact (high first), then
// by type name for determinism.
func rank(patterns []Pattern) []Pattern {
	impactWeight := map[Impact]int{ImpactHigh: 3, ImpactMedium: 2, ImpactLow: 1}
	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		wi, wj := impactWeight[patterns[i].Impact], impactWeight[patterns[j].Impact]
		if wi != wj {
			return wi > wj
		}
		return patterns[i].Type < patterns[j].Type
	})
	return patterns
}

// synthesizeInsights produces short human-readable summaries that combine
// multiple related patterns (e.g. a column that is both trending and
// anomalous), grounded on original_source/intelligence/patterns/engine.py's
// insight-synthesis stage.
func synthesizeInsights(patterns []Pattern) []string {
	if len(patterns) == 0 {
		return nil
	}

	byColumn := make(map[string][]Pattern)
	for _, p := range patterns {
		for _, c := range p.Columns {
			byColumn[c] = append(byColumn[c], p)
		}
	}

	var insights []string
	for col, ps := range byColumn {
		if len(ps) < 2 {
			continue
		}
		types := make([]string, 0, len(ps))
		for _, p := range ps {
			types = append(types, string(p.Type))
		}
		sort.Strings(types)
		insights = append(insights, fmt.Sprintf("%s exhibits multiple related patterns: %s", col, strings.Join(types, ", ")))
	}

	highImpact := 0
	for _, p := range patterns {
		if p.Impact == ImpactHigh {
			highImpact++
		}
	}
	if highImpact > 0 {
		insights = append(insights, fmt.Sprintf("%d high-impact pattern(s) detected across the dataset", highImpact))
	}

	sort.Strings(insights)
	return insights
}

// cacheKey builds a deterministic key from the data shape, sorted column
// set, sorted detector-name set, and a fingerprint of the first row, per
// spec.md §6's persisted-state cache-key contract.
func cacheKey(f *frame.Frame, columns []string, detectors []Detector) string {
	h := sha1.New()

	sortedCols := append([]string(nil), columns...)
	sort.Strings(sortedCols)
	fmt.Fprintf(h, "cols:%s;", strings.Join(sortedCols, ","))

	var detNames []string
	for _, d := range detectors {
		detNames = append(detNames, d.Name())
	}
	sort.Strings(detNames)
	fmt.Fprintf(h, "detectors:%s;", strings.Join(detNames, ","))

	fmt.Fprintf(h, "rows:%d;", f.NumRows())
	for _, name := range sortedCols {
		col := f.Column(name)
		if col == nil {
			continue
		}
		fmt.Fprintf(h, "dtype(%s):%s;", name, col.DType)
		if col.Len() > 0 {
			fmt.Fprintf(h, "first(%s):%v;", name, col.Values[0])
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
