package patterns

import (
	"math"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/frame"
)

// chiSquarePValueDF2 approximates the upper-tail p-value of a chi-squared
// statistic with 2 degrees of freedom, used as the omnibus normality test
// statistic's p-value (skew^2 + kurtosis^2 ~ chi2(2) under normality).
// For df=2 the chi-squared survival function has the closed form exp(-x/2).
func chiSquarePValueDF2(x float64) float64 {
	if x < 0 {
		return 1
	}
	return math.Exp(-x / 2)
}

// gaussianMixtureFit holds the parameters of a fitted scalar Gaussian mixture.
type gaussianMixtureFit struct {
	means   []float64
	stdevs  []float64
	weights []float64
	bic     float64
}

// bicSingleGaussian computes the Bayesian Information Criterion for modeling
// xs as a single Gaussian component.
func bicSingleGaussian(xs []float64) float64 {
	n := float64(len(xs))
	mean := frame.Mean(xs)
	sd := frame.StdDev(xs)
	if sd == 0 {
		sd = 1e-9
	}
	ll := logLikelihoodGaussian(xs, []float64{mean}, []float64{sd}, []float64{1})
	k := 2.0 // mean + variance
	return -2*ll + k*math.Log(n)
}

// fitGaussianMixture fits a k-component scalar Gaussian mixture via
// expectation-maximization, initialized with a deterministic quantile split
// (avoiding randomness since results must be reproducible without a run).
func fitGaussianMixture(xs []float64, k int) gaussianMixtureFit {
	n := len(xs)
	sorted := frame.Sorted(xs)

	means := make([]float64, k)
	stdevs := make([]float64, k)
	weights := make([]float64, k)
	for i := 0; i < k; i++ {
		q := (float64(i) + 0.5) / float64(k)
		means[i] = frame.Quantile(sorted, q)
		stdevs[i] = math.Max(frame.StdDev(xs)/float64(k), 1e-6)
		weights[i] = 1.0 / float64(k)
	}

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}

	const maxIters = 50
	for iter := 0; iter < maxIters; iter++ {
		// E-step
		for i, x := range xs {
			var total float64
			densities := make([]float64, k)
			for c := 0; c < k; c++ {
				densities[c] = weights[c] * gaussianPDF(x, means[c], stdevs[c])
				total += densities[c]
			}
			if total == 0 {
				for c := 0; c < k; c++ {
					resp[i][c] = 1.0 / float64(k)
				}
				continue
			}
			for c := 0; c < k; c++ {
				resp[i][c] = densities[c] / total
			}
		}

		// M-step
		for c := 0; c < k; c++ {
			var sumResp, sumX float64
			for i, x := range xs {
				sumResp += resp[i][c]
				sumX += resp[i][c] * x
			}
			if sumResp < 1e-9 {
				continue
			}
			newMean := sumX / sumResp
			var sumSq float64
			for i, x := range xs {
				d := x - newMean
				sumSq += resp[i][c] * d * d
			}
			newStd := math.Sqrt(sumSq / sumResp)
			if newStd < 1e-6 {
				newStd = 1e-6
			}
			means[c] = newMean
			stdevs[c] = newStd
			weights[c] = sumResp / float64(n)
		}
	}

	ll := logLikelihoodMixture(xs, means, stdevs, weights)
	params := float64(3*k - 1) // k means + k stdevs + (k-1) free weights
	bic := -2*ll + params*math.Log(float64(n))

	return gaussianMixtureFit{means: means, stdevs: stdevs, weights: weights, bic: bic}
}

func gaussianPDF(x, mean, sd float64) float64 {
	if sd <= 0 {
		sd = 1e-9
	}
	z := (x - mean) / sd
	return math.Exp(-0.5*z*z) / (sd * math.Sqrt(2*math.Pi))
}

func logLikelihoodGaussian(xs []float64, means, stdevs, weights []float64) float64 {
	return logLikelihoodMixture(xs, means, stdevs, weights)
}

func logLikelihoodMixture(xs []float64, means, stdevs, weights []float64) float64 {
	var ll float64
	for _, x := range xs {
		var density float64
		for c := range means {
			density += weights[c] * gaussianPDF(x, means[c], stdevs[c])
		}
		if density <= 0 {
			density = 1e-300
		}
		ll += math.Log(density)
	}
	return ll
}
