package patterns

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// CorrelationDetector implements linear, non-linear, lag, and network
// correlation detection across pairs of numeric columns (spec.md §4.2.4).
//
// Grounded on original_source/intelligence/patterns/correlation.py.
type CorrelationDetector struct {
	cfg       DetectorConfig
	threshold float64 // minimum |r| to report, matching Python's default 0.5
	log       *logrus.Logger
}

// NewCorrelationDetector constructs a CorrelationDetector.
func NewCorrelationDetector(cfg DetectorConfig, log *logrus.Logger) *CorrelationDetector {
	if log == nil {
		log = discardLogger()
	}
	return &CorrelationDetector{cfg: cfg, threshold: 0.5, log: log}
}

func (d *CorrelationDetector) Name() string { return "correlation" }

func (d *CorrelationDetector) SupportedTypes() []Type {
	return []Type{TypeLinearCorrelation, TypeNonLinearCorrelation, TypeLagCorrelation, TypeNetworkCorrelation}
}

type pairSeries struct {
	a, b   string
	xs, ys []float64
}

func (d *CorrelationDetector) Detect(f *frame.Frame, columns []string, ctx *Context) (out []Pattern) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("detector", d.Name()).Warnf("recovered from panic: %v", r)
		}
	}()

	if !validateColumns(f, columns, d.cfg) {
		return nil
	}

	numericCols := make([]string, 0, len(columns))
	for _, name := range columns {
		if col := f.Column(name); col != nil && col.DType.IsNumeric() {
			numericCols = append(numericCols, name)
		}
	}
	if len(numericCols) < 2 {
		return nil
	}

	pairs := make([]pairSeries, 0)
	for i := 0; i < len(numericCols); i++ {
		for j := i + 1; j < len(numericCols); j++ {
			a, b := numericCols[i], numericCols[j]
			xs, ys := alignedPair(f.Column(a), f.Column(b))
			if len(xs) < d.cfg.MinSamples {
				continue
			}
			pairs = append(pairs, pairSeries{a: a, b: b, xs: xs, ys: ys})
		}
	}

	var edges []networkEdge
	for _, p := range pairs {
		if ctx.DeadlineExceeded() {
			break
		}
		r := pearsonCorrelation(p.xs, p.ys)
		if math.Abs(r) >= d.threshold {
			out = append(out, d.linearPattern(p, r))
			edges = append(edges, networkEdge{a: p.a, b: p.b, r: r})
		} else if p, ok := d.nonlinearPattern(p, r); ok {
			out = append(out, p)
		}
	}

	if tcol := f.TemporalColumn(); tcol != "" {
		order := f.SortedByTemporal()
		for _, p := range pairs {
			if ctx.DeadlineExceeded() {
				break
			}
			xsOrdered := reorder(p.xs, order)
			ysOrdered := reorder(p.ys, order)
			if lagPattern, ok := d.lagPattern(p.a, p.b, xsOrdered, ysOrdered); ok {
				out = append(out, lagPattern)
			}
		}
	}

	if len(edges) >= 3 {
		if netPattern, ok := d.networkPattern(edges); ok {
			out = append(out, netPattern)
		}
	}

	return filterByConfidence(out, d.cfg.ConfidenceThreshold)
}

func alignedPair(a, b *frame.Column) (xs, ys []float64) {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		fx, okx := frame.ToFloat(a.Values[i])
		fy, oky := frame.ToFloat(b.Values[i])
		if okx && oky {
			xs = append(xs, fx)
			ys = append(ys, fy)
		}
	}
	return xs, ys
}

func reorder(xs []float64, order []int) []float64 {
	out := make([]float64, 0, len(order))
	for _, idx := range order {
		if idx < len(xs) {
			out = append(out, xs[idx])
		}
	}
	return out
}

func pearsonCorrelation(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
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

// spearmanCorrelation computes Pearson correlation of the rank transforms.
func spearmanCorrelation(xs, ys []float64) float64 {
	return pearsonCorrelation(rankOf(xs), rankOf(ys))
}

func rankOf(xs []float64) []float64 {
	type idxVal struct {
		idx int
		val float64
	}
	sorted := make([]idxVal, len(xs))
	for i, v := range xs {
		sorted[i] = idxVal{i, v}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].val < sorted[j].val })
	ranks := make([]float64, len(xs))
	i := 0
	for i < len(sorted) {
		j := i
		for j < len(sorted) && sorted[j].val == sorted[i].val {
			j++
		}
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[sorted[k].idx] = avgRank
		}
		i = j
	}
	return ranks
}

func (d *CorrelationDetector) linearPattern(p pairSeries, r float64) Pattern {
	impact := ImpactLow
	if math.Abs(r) > 0.8 {
		impact = ImpactHigh
	} else if math.Abs(r) > 0.6 {
		impact = ImpactMedium
	}
	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	spearman := spearmanCorrelation(p.xs, p.ys)
	return Pattern{
		Type:        TypeLinearCorrelation,
		Confidence:  math.Min(1, math.Abs(r)),
		Description: fmt.Sprintf("%s and %s are %sly correlated (r=%.3f)", p.a, p.b, direction, r),
		Columns:     []string{p.a, p.b},
		Parameters:  map[string]Value{"pearson_r": r, "spearman_r": spearman, "direction": direction},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("Pearson r=%.3f, Spearman rho=%.3f", r, spearman),
			StatisticalTests: map[string]float64{"pearson_r": r, "spearman_r": spearman},
		}},
		Impact:      impact,
		VisualHints: map[string]Value{"chart": "scatter_plot"},
	}
}

// nonlinearPattern uses a binned mutual-information proxy (no sklearn
// mutual_info_regression vendored) normalized by the entropy of ys' decile
// bins, then sub-classifies quadratic/logarithmic relationships by whether
// transforming x increases the Pearson fit.
func (d *CorrelationDetector) nonlinearPattern(p pairSeries, linearR float64) (Pattern, bool) {
	mi := normalizedMutualInformation(p.xs, p.ys)
	if mi <= 0.3 || mi <= math.Abs(linearR) {
		return Pattern{}, false
	}

	shape := "non_linear"
	quad := make([]float64, len(p.xs))
	for i, x := range p.xs {
		quad[i] = x * x
	}
	quadR := pearsonCorrelation(quad, p.ys)

	var logR float64
	allPositive := true
	logX := make([]float64, len(p.xs))
	for i, x := range p.xs {
		if x <= 0 {
			allPositive = false
			break
		}
		logX[i] = math.Log(x)
	}
	if allPositive {
		logR = pearsonCorrelation(logX, p.ys)
	}

	if math.Abs(quadR) > math.Abs(linearR)*1.2 && math.Abs(quadR) >= math.Abs(logR) {
		shape = "quadratic"
	} else if allPositive && math.Abs(logR) > math.Abs(linearR)*1.2 {
		shape = "logarithmic"
	}

	return Pattern{
		Type:        TypeNonLinearCorrelation,
		Confidence:  math.Min(1, mi),
		Description: fmt.Sprintf("%s and %s show a %s relationship", p.a, p.b, shape),
		Columns:     []string{p.a, p.b},
		Parameters:  map[string]Value{"normalized_mi": mi, "shape": shape},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("Normalized mutual information %.3f exceeds linear correlation %.3f", mi, math.Abs(linearR)),
			StatisticalTests: map[string]float64{"normalized_mi": mi},
		}},
		Impact:      ImpactMedium,
		VisualHints: map[string]Value{"chart": "scatter_plot"},
	}, true
}

// normalizedMutualInformation bins y into 10 quantile buckets and estimates
// mutual information between x's decile bin and y's decile bin, normalized
// by the entropy of the y binning.
func normalizedMutualInformation(xs, ys []float64) float64 {
	n := len(xs)
	if n < 10 {
		return 0
	}
	xBins := quantileBins(xs, 10)
	yBins := quantileBins(ys, 10)

	joint := make(map[[2]int]int)
	xCounts := make(map[int]int)
	yCounts := make(map[int]int)
	for i := 0; i < n; i++ {
		joint[[2]int{xBins[i], yBins[i]}]++
		xCounts[xBins[i]]++
		yCounts[yBins[i]]++
	}

	var mi float64
	for k, cXY := range joint {
		pXY := float64(cXY) / float64(n)
		pX := float64(xCounts[k[0]]) / float64(n)
		pY := float64(yCounts[k[1]]) / float64(n)
		if pX > 0 && pY > 0 && pXY > 0 {
			mi += pXY * math.Log(pXY/(pX*pY))
		}
	}

	var hY float64
	for _, c := range yCounts {
		p := float64(c) / float64(n)
		if p > 0 {
			hY -= p * math.Log(p)
		}
	}
	if hY == 0 {
		return 0
	}
	return math.Max(0, mi/hY)
}

func quantileBins(xs []float64, nBins int) []int {
	sorted := frame.Sorted(xs)
	edges := make([]float64, nBins-1)
	for i := range edges {
		edges[i] = frame.Quantile(sorted, float64(i+1)/float64(nBins))
	}
	bins := make([]int, len(xs))
	for i, x := range xs {
		b := 0
		for b < len(edges) && x > edges[b] {
			b++
		}
		bins[i] = b
	}
	return bins
}

// lagPattern tests lags 1..min(20, n/4) in both directions, reporting the
// strongest significant lag with a leader/follower interpretation.
func (d *CorrelationDetector) lagPattern(a, b string, xs, ys []float64) (Pattern, bool) {
	n := len(xs)
	maxLag := n / 4
	if maxLag > 20 {
		maxLag = 20
	}
	if maxLag < 1 {
		return Pattern{}, false
	}

	bestLag := 0
	bestR := 0.0
	leader := ""
	for lag := 1; lag <= maxLag; lag++ {
		if lag >= n {
			break
		}
		// a leads b: compare a[:-lag] with b[lag:]
		rAleadsB := pearsonCorrelation(xs[:n-lag], ys[lag:])
		if math.Abs(rAleadsB) >= d.threshold && math.Abs(rAleadsB) > math.Abs(bestR) {
			bestR, bestLag, leader = rAleadsB, lag, a
		}
		rBleadsA := pearsonCorrelation(ys[:n-lag], xs[lag:])
		if math.Abs(rBleadsA) >= d.threshold && math.Abs(rBleadsA) > math.Abs(bestR) {
			bestR, bestLag, leader = rBleadsA, lag, b
		}
	}
	if bestLag == 0 {
		return Pattern{}, false
	}

	follower := b
	if leader == b {
		follower = a
	}
	return Pattern{
		Type:        TypeLagCorrelation,
		Confidence:  math.Min(1, math.Abs(bestR)),
		Description: fmt.Sprintf("%s leads %s by %d sample(s) (r=%.3f)", leader, follower, bestLag, bestR),
		Columns:     []string{a, b},
		Parameters:  map[string]Value{"lag": bestLag, "correlation": bestR, "leader": leader, "follower": follower},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("Best cross-correlation %.3f found at lag %d", bestR, bestLag),
			StatisticalTests: map[string]float64{"correlation": bestR},
		}},
		Impact: ImpactMedium,
	}, true
}

type networkEdge struct {
	a, b string
	r    float64
}

// networkPattern builds an undirected graph from strongly-correlated pairs
// and reports degree centrality, density, and the top connected variables,
// as a single TypeNetworkCorrelation pattern (spec.md §3 distinguishes this
// from TypeLinearCorrelation, unlike the Python original).
func (d *CorrelationDetector) networkPattern(edges []networkEdge) (Pattern, bool) {
	degree := make(map[string]int)
	nodesSet := make(map[string]struct{})
	for _, e := range edges {
		degree[e.a]++
		degree[e.b]++
		nodesSet[e.a] = struct{}{}
		nodesSet[e.b] = struct{}{}
	}
	nodeCount := len(nodesSet)
	if nodeCount < 3 {
		return Pattern{}, false
	}

	maxPossibleEdges := nodeCount * (nodeCount - 1) / 2
	density := 0.0
	if maxPossibleEdges > 0 {
		density = float64(len(edges)) / float64(maxPossibleEdges)
	}

	type centralNode struct {
		name   string
		degree int
	}
	var central []centralNode
	for name, deg := range degree {
		central = append(central, centralNode{name, deg})
	}
	sort.Slice(central, func(i, j int) bool {
		if central[i].degree != central[j].degree {
			return central[i].degree > central[j].degree
		}
		return central[i].name < central[j].name
	})
	topN := 3
	if len(central) < topN {
		topN = len(central)
	}
	topCentral := make([]string, topN)
	allColumns := make([]string, 0, nodeCount)
	for i := 0; i < topN; i++ {
		topCentral[i] = central[i].name
	}
	for name := range nodesSet {
		allColumns = append(allColumns, name)
	}
	sort.Strings(allColumns)

	sort.Slice(edges, func(i, j int) bool { return math.Abs(edges[i].r) > math.Abs(edges[j].r) })
	topEdgesN := 5
	if len(edges) < topEdgesN {
		topEdgesN = len(edges)
	}
	topEdges := make([]map[string]Value, topEdgesN)
	for i := 0; i < topEdgesN; i++ {
		topEdges[i] = map[string]Value{"a": edges[i].a, "b": edges[i].b, "r": edges[i].r}
	}

	return Pattern{
		Type:        TypeNetworkCorrelation,
		Confidence:  0.85,
		Description: fmt.Sprintf("%d columns form a correlation network with density %.3f", nodeCount, density),
		Columns:     allColumns,
		Parameters: map[string]Value{
			"node_count": nodeCount, "edge_count": len(edges), "density": density,
			"central_columns": topCentral,
		},
		Evidence: []Evidence{{
			Description: "Degree-centrality ranked correlation network",
			DataPoints:  topEdges,
		}},
		Impact: ImpactMedium,
	}, true
}
