package patterns

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// AnomalyDetector implements univariate, multivariate, and contextual anomaly
// detection (spec.md §4.2.3).
//
// Grounded on original_source/intelligence/patterns/anomaly.py. The Python
// original ensembles PyOD's IForest/LOF/KNN; no such ensemble library is
// vendored in the example pack, so each "vote" is reimplemented directly as
// a scoring function operating on standardized features (DESIGN.md records
// this as a justified stdlib-only component).
type AnomalyDetector struct {
	cfg DetectorConfig
	log *logrus.Logger
}

// NewAnomalyDetector constructs an AnomalyDetector.
func NewAnomalyDetector(cfg DetectorConfig, log *logrus.Logger) *AnomalyDetector {
	if log == nil {
		log = discardLogger()
	}
	return &AnomalyDetector{cfg: cfg, log: log}
}

func (d *AnomalyDetector) Name() string { return "anomaly" }

func (d *AnomalyDetector) SupportedTypes() []Type {
	return []Type{TypeAnomalyPoint, TypeAnomalyCollective, TypeAnomalyContextual}
}

func (d *AnomalyDetector) Detect(f *frame.Frame, columns []string, ctx *Context) (out []Pattern) {
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

	for _, name := range numericCols {
		if ctx.DeadlineExceeded() {
			break
		}
		col := f.Column(name)
		xs := col.Floats()
		if len(xs) < d.cfg.MinSamples {
			continue
		}
		out = append(out, d.detectUnivariate(name, xs)...)
		out = append(out, d.detectContextual(f, name, col)...)
	}

	if len(numericCols) >= 2 && !ctx.DeadlineExceeded() {
		out = append(out, d.detectMultivariate(f, numericCols)...)
	}

	return filterByConfidence(out, d.cfg.ConfidenceThreshold)
}

// detectUnivariate ensembles a z-score vote, a modified z-score (MAD-based)
// vote, and an IQR vote, flagging a point when at least two of three agree
// it is anomalous — the stdlib stand-in for the PyOD ensemble.
func (d *AnomalyDetector) detectUnivariate(name string, xs []float64) []Pattern {
	mean := frame.Mean(xs)
	sd := frame.StdDev(xs)
	median := medianOf(xs)
	mad := medianAbsoluteDeviation(xs, median)
	sorted := frame.Sorted(xs)
	q1 := frame.Quantile(sorted, 0.25)
	q3 := frame.Quantile(sorted, 0.75)
	iqr := q3 - q1
	lowerFence := q1 - 1.5*iqr
	upperFence := q3 + 1.5*iqr

	var anomalousIdx []int
	var maxScore float64
	for i, x := range xs {
		votes := 0
		if sd > 0 && math.Abs((x-mean)/sd) > 3 {
			votes++
		}
		if mad > 0 && math.Abs(0.6745*(x-median)/mad) > 3.5 {
			votes++
		}
		if x < lowerFence || x > upperFence {
			votes++
		}
		if votes >= 2 {
			anomalousIdx = append(anomalousIdx, i)
			score := 0.0
			if sd > 0 {
				score = math.Abs((x - mean) / sd)
			}
			if score > maxScore {
				maxScore = score
			}
		}
	}
	if len(anomalousIdx) == 0 {
		return nil
	}

	fraction := float64(len(anomalousIdx)) / float64(len(xs))
	patternType := TypeAnomalyPoint
	if len(anomalousIdx) > 1 && fraction > 0.02 {
		patternType = TypeAnomalyCollective
	}
	confidence := math.Min(1, maxScore/6)
	impact := ImpactMedium
	if fraction > 0.05 {
		impact = ImpactHigh
	}

	return []Pattern{{
		Type:        patternType,
		Confidence:  confidence,
		Description: fmt.Sprintf("%s contains %d anomalous value(s)", name, len(anomalousIdx)),
		Columns:     []string{name},
		Parameters: map[string]Value{
			"anomaly_count": len(anomalousIdx), "anomaly_fraction": fraction,
			"lower_fence": lowerFence, "upper_fence": upperFence,
		},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("%d of %d points received majority anomaly votes across z-score, MAD, and IQR tests", len(anomalousIdx), len(xs)),
			StatisticalTests: map[string]float64{"max_z_score": maxScore},
		}},
		Impact: impact,
	}}
}

func medianOf(xs []float64) float64 {
	sorted := frame.Sorted(xs)
	return frame.Quantile(sorted, 0.5)
}

func medianAbsoluteDeviation(xs []float64, median float64) float64 {
	deviations := make([]float64, len(xs))
	for i, x := range xs {
		deviations[i] = math.Abs(x - median)
	}
	return medianOf(deviations)
}

// detectMultivariate standardizes each numeric column and flags rows whose
// aggregate squared deviation across all columns exceeds a chi-squared-like
// threshold, approximating sklearn's IsolationForest multivariate outlier
// notion without vendoring an ML library.
func (d *AnomalyDetector) detectMultivariate(f *frame.Frame, columns []string) []Pattern {
	n := f.NumRows()
	standardized := make(map[string][]float64, len(columns))
	for _, name := range columns {
		col := f.Column(name)
		xs := col.Floats()
		if len(xs) != n {
			return nil // requires complete rows across all columns
		}
		mean := frame.Mean(xs)
		sd := frame.StdDev(xs)
		if sd == 0 {
			sd = 1e-9
		}
		z := make([]float64, n)
		for i, x := range xs {
			z[i] = (x - mean) / sd
		}
		standardized[name] = z
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		var sumSq float64
		for _, name := range columns {
			v := standardized[name][i]
			sumSq += v * v
		}
		scores[i] = sumSq
	}

	// Threshold: chi-squared critical-ish value scaled by dimensionality;
	// points beyond 3x the expected sum-of-squares (== len(columns)) are
	// flagged, matching the univariate 3-sigma convention generalized to k
	// dimensions.
	threshold := 3.0 * float64(len(columns))
	var anomalousIdx []int
	perFeatureContribution := make(map[string]float64)
	for i, score := range scores {
		if score > threshold {
			anomalousIdx = append(anomalousIdx, i)
			for _, name := range columns {
				perFeatureContribution[name] += standardized[name][i] * standardized[name][i]
			}
		}
	}
	if len(anomalousIdx) == 0 {
		return nil
	}

	fraction := float64(len(anomalousIdx)) / float64(n)
	confidence := math.Min(1, fraction*15)
	impact := ImpactMedium
	if fraction > 0.05 {
		impact = ImpactHigh
	}
	return []Pattern{{
		Type:        TypeAnomalyCollective,
		Confidence:  confidence,
		Description: fmt.Sprintf("Multivariate anomalies detected across %d columns", len(columns)),
		Columns:     append([]string(nil), columns...),
		Parameters: map[string]Value{
			"anomaly_count": len(anomalousIdx), "anomaly_fraction": fraction,
			"feature_contributions": perFeatureContribution,
		},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("%d of %d rows exceed aggregate deviation threshold %.1f", len(anomalousIdx), n, threshold),
			StatisticalTests: map[string]float64{"threshold": threshold},
		}},
		Impact: impact,
	}}
}

// detectContextual flags values that are anomalous relative to their
// hour-of-day cohort rather than the global distribution, grounded on the
// Python original's contextual anomaly detection keyed by time-of-day.
func (d *AnomalyDetector) detectContextual(f *frame.Frame, name string, col *frame.Column) []Pattern {
	tcol := f.TemporalColumn()
	if tcol == "" {
		return nil
	}
	timeCol := f.Column(tcol)
	if timeCol == nil || timeCol.Len() != col.Len() {
		return nil
	}

	byHour := make(map[int][]float64)
	type sample struct {
		hour  int
		value float64
		idx   int
	}
	var samples []sample
	for i := range col.Values {
		v, ok := frame.ToFloat(col.Values[i])
		if !ok {
			continue
		}
		t, ok := frame.ParseTime(timeCol.Values[i])
		if !ok {
			continue
		}
		hour := t.Hour()
		byHour[hour] = append(byHour[hour], v)
		samples = append(samples, sample{hour: hour, value: v, idx: i})
	}
	if len(samples) < d.cfg.MinSamples {
		return nil
	}

	hourMean := make(map[int]float64)
	hourStd := make(map[int]float64)
	for h, vals := range byHour {
		if len(vals) < 5 {
			continue
		}
		hourMean[h] = frame.Mean(vals)
		hourStd[h] = frame.StdDev(vals)
	}

	var anomalous int
	var maxZ float64
	for _, s := range samples {
		sd, ok := hourStd[s.hour]
		if !ok || sd == 0 {
			continue
		}
		z := math.Abs((s.value - hourMean[s.hour]) / sd)
		if z > 3 {
			anomalous++
			if z > maxZ {
				maxZ = z
			}
		}
	}
	if anomalous == 0 {
		return nil
	}

	fraction := float64(anomalous) / float64(len(samples))
	return []Pattern{{
		Type:        TypeAnomalyContextual,
		Confidence:  math.Min(1, maxZ/6),
		Description: fmt.Sprintf("%s has values anomalous relative to their hour-of-day baseline", name),
		Columns:     []string{name},
		Parameters:  map[string]Value{"anomaly_count": anomalous, "anomaly_fraction": fraction},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("%d values deviate more than 3 standard deviations from their hour-of-day mean", anomalous),
			StatisticalTests: map[string]float64{"max_z_score": maxZ},
		}},
		Impact: ImpactMedium,
	}}
}
