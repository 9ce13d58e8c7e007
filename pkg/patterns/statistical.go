package patterns

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// StatisticalDetector implements distribution, outlier, multimodal and
// missing-data detection for numeric columns and imbalance detection for
// categorical/boolean columns (spec.md §4.2.1).
//
// Grounded on original_source/intelligence/patterns/statistical.py.
type StatisticalDetector struct {
	cfg DetectorConfig
	log *logrus.Logger
}

// NewStatisticalDetector constructs a StatisticalDetector.
func NewStatisticalDetector(cfg DetectorConfig, log *logrus.Logger) *StatisticalDetector {
	if log == nil {
		log = discardLogger()
	}
	return &StatisticalDetector{cfg: cfg, log: log}
}

func (d *StatisticalDetector) Name() string { return "statistical" }

func (d *StatisticalDetector) SupportedTypes() []Type {
	return []Type{
		TypeNormalDistribution, TypeSkewedDistribution, TypeBimodalDistribution,
		TypeUniformDistribution, TypeOutlier, TypeMissingData, TypeInconsistentData,
	}
}

func (d *StatisticalDetector) Detect(f *frame.Frame, columns []string, ctx *Context) (out []Pattern) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("detector", d.Name()).Warnf("recovered from panic: %v", r)
			// Per §4.2 failure policy: return patterns successfully computed so far.
		}
	}()

	if !validateColumns(f, columns, d.cfg) {
		return nil
	}

	for _, name := range columns {
		if ctx.DeadlineExceeded() {
			break
		}
		col := f.Column(name)
		if col == nil {
			continue
		}
		switch {
		case col.DType.IsNumeric():
			out = append(out, d.detectNumeric(name, col)...)
		case col.DType.IsCategorical():
			out = append(out, d.detectCategorical(name, col)...)
		case col.DType == frame.DTypeBoolean:
			out = append(out, d.detectBoolean(name, col)...)
		}
		out = append(out, d.detectMissing(name, col)...)
	}
	return filterByConfidence(out, d.cfg.ConfidenceThreshold)
}

func (d *StatisticalDetector) detectNumeric(name string, col *frame.Column) []Pattern {
	var out []Pattern
	xs := col.Floats()
	if len(xs) < d.cfg.MinSamples {
		return nil
	}

	if p, ok := d.detectDistribution(name, xs); ok {
		out = append(out, p)
	}
	if p, ok := d.detectOutliers(name, xs); ok {
		out = append(out, p)
	}
	if p, ok := d.detectMultimodal(name, xs); ok {
		out = append(out, p)
	}
	return out
}

// detectDistribution classifies normal/skewed/uniform via omnibus-normality
// proxy (skew+kurtosis based, since no scipy.stats.normaltest equivalent is
// vendored), skewness, and coefficient of variation.
func (d *StatisticalDetector) detectDistribution(name string, xs []float64) (Pattern, bool) {
	skew := frame.Skewness(xs)
	kurt := frame.Kurtosis(xs)
	mean := frame.Mean(xs)
	sd := frame.StdDev(xs)

	// D'Agostino-Pearson-style omnibus statistic combining skew and kurtosis
	// z-scores; treated as "normal" when both are small, matching the
	// normaltest p>0.05 branch at contract level (spec.md §9: numeric routines
	// specified at contract level).
	n := float64(len(xs))
	seSkew := math.Sqrt(6 / n)
	seKurt := math.Sqrt(24 / n)
	zSkew := skew / seSkew
	zKurt := kurt / seKurt
	omnibus := zSkew*zSkew + zKurt*zKurt
	pApprox := chiSquarePValueDF2(omnibus)

	switch {
	case pApprox > 0.05:
		return Pattern{
			Type:        TypeNormalDistribution,
			Confidence:  math.Min(1, pApprox),
			Description: fmt.Sprintf("%s follows an approximately normal distribution", name),
			Columns:     []string{name},
			Parameters: map[string]Value{
				"mean": mean, "std": sd, "skew": skew, "kurtosis": kurt, "p_value": pApprox,
			},
			Evidence: []Evidence{{
				Description:      "Omnibus normality test",
				StatisticalTests: map[string]float64{"p_value": pApprox, "statistic": omnibus},
			}},
			Impact: ImpactLow,
		}, true
	case math.Abs(skew) > 1:
		direction := "right"
		if skew < 0 {
			direction = "left"
		}
		conf := math.Min(1, math.Abs(skew)/3)
		return Pattern{
			Type:        TypeSkewedDistribution,
			Confidence:  conf,
			Description: fmt.Sprintf("%s is %s-skewed", name, direction),
			Columns:     []string{name},
			Parameters:  map[string]Value{"skew": skew, "direction": direction},
			Evidence: []Evidence{{
				Description:      fmt.Sprintf("Skewness coefficient: %.3f", skew),
				StatisticalTests: map[string]float64{"skew": skew},
			}},
			Impact: ImpactMedium,
		}, true
	case sd < 0.1*math.Abs(mean):
		return Pattern{
			Type:        TypeUniformDistribution,
			Confidence:  0.6,
			Description: fmt.Sprintf("%s shows low relative variance consistent with a uniform distribution", name),
			Columns:     []string{name},
			Parameters:  map[string]Value{"mean": mean, "std": sd},
			Evidence: []Evidence{{
				Description:      "Coefficient of variation below 0.1",
				StatisticalTests: map[string]float64{"cv": sd / math.Max(math.Abs(mean), 1e-9)},
			}},
			Impact: ImpactLow,
		}, true
	}
	return Pattern{}, false
}

func (d *StatisticalDetector) detectOutliers(name string, xs []float64) (Pattern, bool) {
	sorted := frame.Sorted(xs)
	q1 := frame.Quantile(sorted, 0.25)
	q3 := frame.Quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var indices []int
	for i, x := range xs {
		if x < lower || x > upper {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return Pattern{}, false
	}
	fraction := float64(len(indices)) / float64(len(xs))
	confidence := math.Min(1, fraction*20)
	impact := ImpactMedium
	if fraction > 0.05 {
		impact = ImpactHigh
	}
	return Pattern{
		Type:        TypeOutlier,
		Confidence:  confidence,
		Description: fmt.Sprintf("%s contains %d outlier value(s) outside the IQR fence", name, len(indices)),
		Columns:     []string{name},
		Parameters: map[string]Value{
			"lower_bound": lower, "upper_bound": upper, "outlier_count": len(indices), "outlier_fraction": fraction,
		},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("%d of %d values fall outside [%.3f, %.3f]", len(indices), len(xs), lower, upper),
			StatisticalTests: map[string]float64{"iqr": iqr, "q1": q1, "q3": q3},
		}},
		Impact: impact,
	}, true
}

// detectMultimodal fits 1/2/3-component scalar Gaussian mixtures via EM and
// compares BIC, per spec.md §4.2.1.
func (d *StatisticalDetector) detectMultimodal(name string, xs []float64) (Pattern, bool) {
	bic1 := bicSingleGaussian(xs)
	fit2 := fitGaussianMixture(xs, 2)
	bic2 := fit2.bic

	if bic2 >= bic1 {
		return Pattern{}, false
	}
	confidence := math.Min(0.9, 10*(bic1-bic2)/math.Abs(bic1))
	if confidence <= 0 {
		return Pattern{}, false
	}
	return Pattern{
		Type:        TypeBimodalDistribution,
		Confidence:  confidence,
		Description: fmt.Sprintf("%s shows a bimodal distribution", name),
		Columns:     []string{name},
		Parameters: map[string]Value{
			"means": fit2.means, "weights": fit2.weights, "bic1": bic1, "bic2": bic2,
		},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("2-component BIC (%.2f) improves on 1-component BIC (%.2f)", bic2, bic1),
			StatisticalTests: map[string]float64{"bic1": bic1, "bic2": bic2},
		}},
		Impact: ImpactMedium,
	}, true
}

func (d *StatisticalDetector) detectMissing(name string, col *frame.Column) []Pattern {
	if col.Len() == 0 {
		return nil
	}
	nullFraction := float64(col.NullCount()) / float64(col.Len())
	if nullFraction <= 0 {
		return nil
	}
	severity := ImpactLow
	switch {
	case nullFraction > 0.5:
		severity = ImpactHigh
	case nullFraction > 0.2:
		severity = ImpactMedium
	}
	return []Pattern{{
		Type:        TypeMissingData,
		Confidence:  0.95,
		Description: fmt.Sprintf("%s has %.1f%% missing values", name, nullFraction*100),
		Columns:     []string{name},
		Parameters:  map[string]Value{"null_fraction": nullFraction, "severity": string(severity)},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("%d of %d values are null", col.NullCount(), col.Len()),
			StatisticalTests: map[string]float64{"null_fraction": nullFraction},
		}},
		Impact:          severity,
		Recommendations: []string{fmt.Sprintf("Address missing data in %s", name)},
	}}
}

func (d *StatisticalDetector) detectCategorical(name string, col *frame.Column) []Pattern {
	var out []Pattern
	nonNull := col.NonNullCount()
	if nonNull == 0 {
		return nil
	}
	cardinality := col.UniqueCount()
	cardinalityRatio := float64(cardinality) / float64(col.Len())
	if cardinalityRatio > 0.5 {
		out = append(out, Pattern{
			Type:        TypeInconsistentData,
			Confidence:  math.Min(1, cardinalityRatio),
			Description: fmt.Sprintf("%s has unusually high cardinality relative to row count", name),
			Columns:     []string{name},
			Parameters:  map[string]Value{"cardinality": cardinality, "cardinality_ratio": cardinalityRatio},
			Evidence: []Evidence{{
				Description:      fmt.Sprintf("Cardinality ratio %.3f exceeds 0.5", cardinalityRatio),
				StatisticalTests: map[string]float64{"cardinality_ratio": cardinalityRatio},
			}},
			Impact: ImpactMedium,
		})
	}

	counts := make(map[interface{}]int)
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		counts[v]++
	}
	var topFraction float64
	for _, c := range counts {
		frac := float64(c) / float64(nonNull)
		if frac > topFraction {
			topFraction = frac
		}
	}
	if topFraction > 0.8 {
		out = append(out, Pattern{
			Type:        TypeSkewedDistribution,
			Confidence:  topFraction,
			Description: fmt.Sprintf("%s is dominated by a single category (%.1f%%)", name, topFraction*100),
			Columns:     []string{name},
			Parameters:  map[string]Value{"top_fraction": topFraction},
			Evidence: []Evidence{{
				Description:      fmt.Sprintf("Most frequent category accounts for %.1f%% of values", topFraction*100),
				StatisticalTests: map[string]float64{"top_fraction": topFraction},
			}},
			Impact: ImpactMedium,
		})
	}
	return out
}

func (d *StatisticalDetector) detectBoolean(name string, col *frame.Column) []Pattern {
	nonNull := col.NonNullCount()
	if nonNull == 0 {
		return nil
	}
	trueCount := 0
	for _, v := range col.Values {
		if b, ok := v.(bool); ok && b {
			trueCount++
		}
	}
	ratio := float64(trueCount) / float64(nonNull)
	if math.Abs(ratio-0.5) <= 0.4 {
		return nil
	}
	confidence := math.Max(ratio, 1-ratio)
	return []Pattern{{
		Type:        TypeSkewedDistribution,
		Confidence:  confidence,
		Description: fmt.Sprintf("%s is heavily skewed toward %v", name, ratio > 0.5),
		Columns:     []string{name},
		Parameters:  map[string]Value{"true_ratio": ratio},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("True ratio %.3f deviates from balance by more than 0.4", ratio),
			StatisticalTests: map[string]float64{"true_ratio": ratio},
		}},
		Impact: ImpactLow,
	}}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
