package patterns

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// TimeSeriesDetector implements trend, seasonality, stationarity, and
// change-point detection over the Frame's temporal index (spec.md §4.2.2).
//
// Grounded on original_source/intelligence/patterns/timeseries.py.
type TimeSeriesDetector struct {
	cfg DetectorConfig
	log *logrus.Logger
}

// NewTimeSeriesDetector constructs a TimeSeriesDetector.
func NewTimeSeriesDetector(cfg DetectorConfig, log *logrus.Logger) *TimeSeriesDetector {
	if log == nil {
		log = discardLogger()
	}
	return &TimeSeriesDetector{cfg: cfg, log: log}
}

func (d *TimeSeriesDetector) Name() string { return "timeseries" }

func (d *TimeSeriesDetector) SupportedTypes() []Type {
	return []Type{
		TypeTrendLinear, TypeTrendExponential, TypeSeasonal, TypeCyclic,
		TypeStationary, TypeNonStationary, TypeChangePoint,
	}
}

func (d *TimeSeriesDetector) Detect(f *frame.Frame, columns []string, ctx *Context) (out []Pattern) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("detector", d.Name()).Warnf("recovered from panic: %v", r)
		}
	}()

	if f == nil || f.TemporalColumn() == "" {
		return nil
	}
	if !validateColumns(f, columns, d.cfg) {
		return nil
	}

	order := f.SortedByTemporal()

	for _, name := range columns {
		if ctx.DeadlineExceeded() {
			break
		}
		col := f.Column(name)
		if col == nil || !col.DType.IsNumeric() {
			continue
		}
		series := orderedFloats(col, order)
		if len(series) < d.cfg.MinSamples {
			continue
		}
		out = append(out, d.detectTrend(name, series)...)
		out = append(out, d.detectSeasonal(name, series)...)
		out = append(out, d.detectStationarity(name, series)...)
		out = append(out, d.detectChangePoints(name, series)...)
	}
	return filterByConfidence(out, d.cfg.ConfidenceThreshold)
}

func orderedFloats(col *frame.Column, order []int) []float64 {
	out := make([]float64, 0, len(order))
	for _, idx := range order {
		if idx >= len(col.Values) {
			continue
		}
		if f, ok := frame.ToFloat(col.Values[idx]); ok {
			out = append(out, f)
		}
	}
	return out
}

// linregress performs ordinary least squares y = a + b*x for x = 0..n-1,
// returning slope, intercept, and the correlation coefficient r.
func linregress(ys []float64) (slope, intercept, r float64) {
	n := float64(len(ys))
	if n < 2 {
		return 0, 0, 0
	}
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		sumYY += y * y
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, frame.Mean(ys), 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	covXY := n*sumXY - sumX*sumY
	varX := n*sumXX - sumX*sumX
	varY := n*sumYY - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return slope, intercept, 0
	}
	r = covXY / math.Sqrt(varX*varY)
	return slope, intercept, r
}

func (d *TimeSeriesDetector) detectTrend(name string, ys []float64) []Pattern {
	slope, intercept, r := linregress(ys)
	r2 := r * r
	if r2 < 0.3 {
		return nil
	}

	// Exponential trend sub-classification: regress log(y) (y > 0 only) and
	// require the log-regression slope to agree in sign with the linear
	// slope (DESIGN.md Open Question: conservative reimplementation chosen).
	isExponential := false
	var logSlope, logR2 float64
	positive := make([]float64, 0, len(ys))
	allPositive := true
	for _, y := range ys {
		if y <= 0 {
			allPositive = false
			break
		}
		positive = append(positive, math.Log(y))
	}
	if allPositive && len(positive) >= d.cfg.MinSamples {
		var logIntercept, logR float64
		logSlope, logIntercept, logR = linregress(positive)
		_ = logIntercept
		logR2 = logR * logR
		if logR2 > r2 && sameSign(slope, logSlope) && logR2 > 0.5 {
			isExponential = true
		}
	}

	conf := math.Min(1, r2)
	if isExponential {
		return []Pattern{{
			Type:        TypeTrendExponential,
			Confidence:  conf,
			Description: fmt.Sprintf("%s shows an exponential trend", name),
			Columns:     []string{name},
			Parameters:  map[string]Value{"log_slope": logSlope, "r_squared": logR2},
			Evidence: []Evidence{{
				Description:      fmt.Sprintf("Log-linear regression R^2=%.3f exceeds linear R^2=%.3f", logR2, r2),
				StatisticalTests: map[string]float64{"r_squared": logR2, "log_slope": logSlope},
			}},
			Impact: ImpactMedium,
		}}
	}

	direction := "increasing"
	if slope < 0 {
		direction = "decreasing"
	}
	return []Pattern{{
		Type:        TypeTrendLinear,
		Confidence:  conf,
		Description: fmt.Sprintf("%s shows a %s linear trend", name, direction),
		Columns:     []string{name},
		Parameters:  map[string]Value{"slope": slope, "intercept": intercept, "r_squared": r2},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("Linear regression R^2=%.3f", r2),
			StatisticalTests: map[string]float64{"r_squared": r2, "slope": slope},
		}},
		Impact: ImpactMedium,
	}}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// detectSeasonal performs an additive seasonal decomposition over candidate
// periods and reports the best-supported period by strength of the seasonal
// component relative to the residual.
func (d *TimeSeriesDetector) detectSeasonal(name string, ys []float64) []Pattern {
	candidates := []int{7, 24, 12, 4}
	n := len(ys)

	bestPeriod := 0
	bestStrength := 0.0
	for _, period := range candidates {
		if n < period*2 {
			continue
		}
		strength := seasonalStrength(ys, period)
		if strength > bestStrength {
			bestStrength = strength
			bestPeriod = period
		}
	}
	if bestPeriod == 0 || bestStrength < 0.4 {
		return nil
	}

	patternType := TypeSeasonal
	if bestPeriod != 7 && bestPeriod != 12 {
		patternType = TypeCyclic
	}
	return []Pattern{{
		Type:        patternType,
		Confidence:  math.Min(0.95, bestStrength),
		Description: fmt.Sprintf("%s shows a repeating pattern with period %d", name, bestPeriod),
		Columns:     []string{name},
		Parameters:  map[string]Value{"period": bestPeriod, "strength": bestStrength},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("Seasonal strength %.3f at period %d", bestStrength, bestPeriod),
			StatisticalTests: map[string]float64{"strength": bestStrength},
		}},
		Impact: ImpactLow,
	}}
}

// seasonalStrength performs a simple additive decomposition (moving-average
// trend removal + period-average seasonal component) and returns
// 1 - Var(residual)/Var(detrended), the classical seasonal-strength measure.
func seasonalStrength(ys []float64, period int) float64 {
	n := len(ys)
	trend := movingAverage(ys, period)
	detrended := make([]float64, n)
	for i := range ys {
		detrended[i] = ys[i] - trend[i]
	}

	seasonalAvg := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		if math.IsNaN(v) {
			continue
		}
		idx := i % period
		seasonalAvg[idx] += v
		counts[idx]++
	}
	for i := range seasonalAvg {
		if counts[i] > 0 {
			seasonalAvg[i] /= float64(counts[i])
		}
	}

	residual := make([]float64, 0, n)
	detrendedClean := make([]float64, 0, n)
	for i, v := range detrended {
		if math.IsNaN(v) {
			continue
		}
		residual = append(residual, v-seasonalAvg[i%period])
		detrendedClean = append(detrendedClean, v)
	}
	varResidual := frame.Variance(residual)
	varDetrended := frame.Variance(detrendedClean)
	if varDetrended == 0 {
		return 0
	}
	strength := 1 - varResidual/varDetrended
	return math.Max(0, math.Min(1, strength))
}

func movingAverage(ys []float64, window int) []float64 {
	n := len(ys)
	out := make([]float64, n)
	half := window / 2
	for i := range ys {
		lo := i - half
		hi := i + half
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		if hi <= lo {
			out[i] = math.NaN()
			continue
		}
		out[i] = frame.Mean(ys[lo : hi+1])
	}
	return out
}

// detectStationarity is a simplified augmented-Dickey-Fuller-style test: a
// series is treated as non-stationary when its variance across successive
// windows drifts, or when a unit-root-like autocorrelation persists.
func (d *TimeSeriesDetector) detectStationarity(name string, ys []float64) []Pattern {
	n := len(ys)
	if n < 3*d.cfg.MinSamples/2 {
		return nil
	}
	thirds := n / 3
	first := ys[:thirds]
	last := ys[n-thirds:]
	meanDrift := math.Abs(frame.Mean(last) - frame.Mean(first))
	overallStd := frame.StdDev(ys)
	if overallStd == 0 {
		return nil
	}
	driftRatio := meanDrift / overallStd

	acf1 := autocorrelation(ys, 1)

	if driftRatio > 0.5 || acf1 > 0.95 {
		conf := math.Min(1, math.Max(driftRatio, acf1))
		return []Pattern{{
			Type:        TypeNonStationary,
			Confidence:  conf,
			Description: fmt.Sprintf("%s is non-stationary", name),
			Columns:     []string{name},
			Parameters:  map[string]Value{"mean_drift_ratio": driftRatio, "acf_lag1": acf1},
			Evidence: []Evidence{{
				Description:      fmt.Sprintf("Mean drift ratio %.3f, lag-1 autocorrelation %.3f", driftRatio, acf1),
				StatisticalTests: map[string]float64{"drift_ratio": driftRatio, "acf_lag1": acf1},
			}},
			Impact: ImpactMedium,
		}}
	}
	return []Pattern{{
		Type:        TypeStationary,
		Confidence:  math.Min(1, 1-driftRatio),
		Description: fmt.Sprintf("%s is stationary", name),
		Columns:     []string{name},
		Parameters:  map[string]Value{"mean_drift_ratio": driftRatio, "acf_lag1": acf1},
		Evidence: []Evidence{{
			Description:      fmt.Sprintf("Mean drift ratio %.3f below 0.5, lag-1 autocorrelation %.3f below 0.95", driftRatio, acf1),
			StatisticalTests: map[string]float64{"drift_ratio": driftRatio, "acf_lag1": acf1},
		}},
		Impact: ImpactLow,
	}}
}

func autocorrelation(ys []float64, lag int) float64 {
	n := len(ys)
	if lag >= n {
		return 0
	}
	mean := frame.Mean(ys)
	var num, den float64
	for i := 0; i < n-lag; i++ {
		num += (ys[i] - mean) * (ys[i+lag] - mean)
	}
	for i := 0; i < n; i++ {
		den += (ys[i] - mean) * (ys[i] - mean)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// detectChangePoints scans a rolling window for shifts in local mean that
// exceed a multiple of the local standard deviation.
func (d *TimeSeriesDetector) detectChangePoints(name string, ys []float64) []Pattern {
	n := len(ys)
	window := 10
	if n < window*3 {
		return nil
	}

	var patterns []Pattern
	for i := window; i < n-window; i++ {
		before := ys[i-window : i]
		after := ys[i : i+window]
		meanBefore := frame.Mean(before)
		meanAfter := frame.Mean(after)
		pooledStd := frame.StdDev(append(append([]float64{}, before...), after...))
		if pooledStd == 0 {
			continue
		}
		shift := math.Abs(meanAfter-meanBefore) / pooledStd
		if shift > 2.0 {
			conf := math.Min(1, shift/4)
			patterns = append(patterns, Pattern{
				Type:        TypeChangePoint,
				Confidence:  conf,
				Description: fmt.Sprintf("%s shows a level shift near index %d", name, i),
				Columns:     []string{name},
				Parameters:  map[string]Value{"index": i, "mean_before": meanBefore, "mean_after": meanAfter},
				Evidence: []Evidence{{
					Description:      fmt.Sprintf("Normalized shift magnitude %.2f standard deviations", shift),
					StatisticalTests: map[string]float64{"shift": shift},
				}},
				Impact: ImpactMedium,
			})
			// Skip ahead to avoid reporting every index of a single shift.
			i += window
		}
	}
	// Cap to the 3 strongest change points to avoid noisy output.
	if len(patterns) > 3 {
		sortPatternsByConfidenceDesc(patterns)
		patterns = patterns[:3]
	}
	return patterns
}

func sortPatternsByConfidenceDesc(patterns []Pattern) {
	for i := 1; i < len(patterns); i++ {
		for j := i; j > 0 && patterns[j].Confidence > patterns[j-1].Confidence; j-- {
			patterns[j], patterns[j-1] = patterns[j-1], patterns[j]
		}
	}
}
